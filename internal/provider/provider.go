// Package provider defines the contract shared by every most-popular data source.
//
// A provider is configured through chained setters and queried with
// FetchMostPopular. Instances are not safe for concurrent reuse: give each
// concurrent caller its own provider, or serialize configure-then-fetch.
package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/mostpopular/internal/domain/result"
)

// Defaults applied by DefaultQuery.
const (
	DefaultLimit  = 5
	DefaultOffset = 0
	DefaultWindow = 24 * time.Hour
)

// SortDirection orders results by popularity.
type SortDirection int

// Sort directions. Positive values are ascending, negative descending.
const (
	SortAscending  SortDirection = 1
	SortDescending SortDirection = -1
)

// String returns "asc" or "desc".
func (d SortDirection) String() string {
	if d > 0 {
		return "asc"
	}
	return "desc"
}

// ParseSortDirection accepts asc/ascending and desc/descending, case-insensitive.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return SortAscending, nil
	case "desc", "descending":
		return SortDescending, nil
	default:
		return 0, fmt.Errorf("unknown sort direction %q", s)
	}
}

// Provider is the capability every data-source adapter implements.
// Setters return the provider so configuration can be chained.
type Provider interface {
	SetStartTime(t time.Time) Provider
	SetEndTime(t time.Time) Provider
	SetSortDirection(d SortDirection) Provider
	SetLimit(limit int) Provider
	SetOffset(offset int) Provider

	// FetchMostPopular returns at most Limit results in the configured order.
	// Failures are *Failure values.
	FetchMostPopular(ctx context.Context) ([]result.Result, error)
}

// Query is the configuration shared by all providers.
type Query struct {
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
	Sort      SortDirection
}

// DefaultQuery covers the day ending at now, limit 5, offset 0, ascending.
func DefaultQuery(now time.Time) Query {
	return Query{
		StartTime: now.Add(-DefaultWindow),
		EndTime:   now,
		Limit:     DefaultLimit,
		Offset:    DefaultOffset,
		Sort:      SortAscending,
	}
}

// Validate checks the parts of the query every backend depends on.
func (q Query) Validate() error {
	if q.Limit < 0 {
		return BadConfiguration(fmt.Sprintf("limit must not be negative, got %d", q.Limit))
	}
	return nil
}
