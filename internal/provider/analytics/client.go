package analytics

import "context"

// Analytics terms understood by the provider.
const (
	TermPageviews = "pageviews"
	TermTitle     = "title"
	TermPath      = "path"
)

// terms maps human terms to backend column tags.
var terms = [...]struct{ term, tag string }{
	{TermPageviews, "ga:pageviews"},
	{TermTitle, "ga:pageTitle"},
	{TermPath, "ga:pagePath"},
}

// TermToTag returns the backend tag for a term.
func TermToTag(term string) (string, bool) {
	for _, t := range terms {
		if t.term == term {
			return t.tag, true
		}
	}
	return "", false
}

// TagToTerm returns the term for a backend tag. Unknown tags pass through unchanged.
func TagToTerm(tag string) string {
	for _, t := range terms {
		if t.tag == tag {
			return t.term
		}
	}
	return tag
}

func mustTag(term string) string {
	tag, ok := TermToTag(term)
	if !ok {
		panic("analytics: unknown term " + term)
	}
	return tag
}

// Options are the optional query parameters.
type Options struct {
	// StartIndex is the zero-based offset. Clients translate it to the backend's convention.
	StartIndex int
	MaxResults int
	Sort       string
	// Dimensions and Filters are comma-joined and empty when unset.
	Dimensions string
	Filters    string
}

// Query is one report request.
type Query struct {
	ViewID    string
	StartDate string
	EndDate   string
	Metrics   string
	Options   Options
}

// ColumnHeader names one report column.
type ColumnHeader struct {
	Name string
}

// Report is the tabular response of a query. Rows align with ColumnHeaders.
type Report struct {
	TotalResults  int64
	ColumnHeaders []ColumnHeader
	Rows          [][]string
}

// Client executes report queries against the analytics backend.
type Client interface {
	Get(ctx context.Context, q Query) (*Report, error)
}

// ClientFactory builds a Client from a credential file path.
type ClientFactory func(ctx context.Context, authConfigFile string) (Client, error)
