package ezlegacy

import "context"

// ContentClass is a content type known to the CMS.
type ContentClass struct {
	ID         int
	Identifier string
}

// ContentObject is a published content node.
type ContentObject struct {
	NodeID int
	Name   string
}

// ViewCount is the view-counter record of a node.
type ViewCount struct {
	NodeID int
	Count  int
}

// Runtime is the set of CMS lookups the provider depends on.
type Runtime interface {
	// ListClasses returns the classes whose identifier is in identifiers.
	ListClasses(ctx context.Context, identifiers []string) ([]ContentClass, error)
	// ViewTopList returns up to limit top-viewed objects of a class within a section.
	ViewTopList(ctx context.Context, classID, sectionID, limit int) ([]ContentObject, error)
	// FetchViewCount returns the counter for a node, or nil when none is recorded.
	FetchViewCount(ctx context.Context, nodeID int) (*ViewCount, error)
}
