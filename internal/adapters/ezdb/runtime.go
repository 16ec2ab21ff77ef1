package ezdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/okian/mostpopular/internal/provider/ezlegacy"
)

const (
	listClassesQuery = `SELECT id, identifier FROM ezcontentclass
WHERE version = 0 AND identifier IN (?)
ORDER BY id`

	viewTopListQuery = `SELECT ezview_counter.node_id, ezcontentobject.name
FROM ezview_counter
JOIN ezcontentobject_tree ON ezcontentobject_tree.node_id = ezview_counter.node_id
JOIN ezcontentobject ON ezcontentobject.id = ezcontentobject_tree.contentobject_id
WHERE ezcontentobject.contentclass_id = ? AND ezcontentobject.section_id = ?
  AND ezcontentobject.status = 1
ORDER BY ezview_counter.count DESC
LIMIT ?`

	viewCountQuery = `SELECT node_id, count FROM ezview_counter WHERE node_id = ?`
)

type classRow struct {
	ID         int    `db:"id"`
	Identifier string `db:"identifier"`
}

type objectRow struct {
	NodeID int    `db:"node_id"`
	Name   string `db:"name"`
}

type countRow struct {
	NodeID int `db:"node_id"`
	Count  int `db:"count"`
}

// Runtime implements ezlegacy.Runtime over the legacy schema tables
// ezcontentclass, ezcontentobject, ezcontentobject_tree and ezview_counter.
type Runtime struct {
	db *sqlx.DB
}

var _ ezlegacy.Runtime = (*Runtime)(nil)

// NewRuntime creates a Runtime on db.
func NewRuntime(db *sqlx.DB) *Runtime {
	return &Runtime{db: db}
}

// ListClasses implements ezlegacy.Runtime.
func (r *Runtime) ListClasses(ctx context.Context, identifiers []string) ([]ezlegacy.ContentClass, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(listClassesQuery, identifiers)
	if err != nil {
		return nil, fmt.Errorf("build class list query: %w", err)
	}

	var rows []classRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list content classes: %w", err)
	}

	classes := make([]ezlegacy.ContentClass, len(rows))
	for i, row := range rows {
		classes[i] = ezlegacy.ContentClass{ID: row.ID, Identifier: row.Identifier}
	}
	return classes, nil
}

// ViewTopList implements ezlegacy.Runtime.
func (r *Runtime) ViewTopList(ctx context.Context, classID, sectionID, limit int) ([]ezlegacy.ContentObject, error) {
	var rows []objectRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(viewTopListQuery), classID, sectionID, limit); err != nil {
		return nil, fmt.Errorf("list top viewed objects: %w", err)
	}

	objects := make([]ezlegacy.ContentObject, len(rows))
	for i, row := range rows {
		objects[i] = ezlegacy.ContentObject{NodeID: row.NodeID, Name: row.Name}
	}
	return objects, nil
}

// FetchViewCount implements ezlegacy.Runtime.
func (r *Runtime) FetchViewCount(ctx context.Context, nodeID int) (*ezlegacy.ViewCount, error) {
	var row countRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(viewCountQuery), nodeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch view count of node %d: %w", nodeID, err)
	}
	return &ezlegacy.ViewCount{NodeID: row.NodeID, Count: row.Count}, nil
}
