// Package googleanalytics adapts the Google Analytics Core Reporting API (v3)
// to the analytics provider's Client interface.
package googleanalytics

import (
	"context"
	"errors"
	"fmt"

	ga "google.golang.org/api/analytics/v3"
	"google.golang.org/api/option"

	"github.com/okian/mostpopular/internal/provider/analytics"
)

// ApplicationName is sent as the user agent of every request.
const ApplicationName = "Most_Popular"

// Sentinel kinds for client errors.
var (
	ErrNoCredentials = errors.New("no credentials file")
	ErrBuildService  = errors.New("build analytics service failed")
)

// Client runs report queries through the data.ga.get endpoint.
type Client struct {
	svc *ga.Service
}

var _ analytics.Client = (*Client)(nil)

// NewClient builds a read-only client authenticated with the service account
// credentials stored at authConfigFile. It satisfies analytics.ClientFactory.
func NewClient(ctx context.Context, authConfigFile string) (analytics.Client, error) {
	if authConfigFile == "" {
		return nil, ErrNoCredentials
	}
	return newClient(ctx,
		option.WithCredentialsFile(authConfigFile),
		option.WithScopes(ga.AnalyticsReadonlyScope),
	)
}

func newClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	opts = append(opts, option.WithUserAgent(ApplicationName))
	svc, err := ga.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildService, err)
	}
	return &Client{svc: svc}, nil
}

// Get implements analytics.Client. The zero-based StartIndex is sent as the
// API's one-based start-index.
func (c *Client) Get(ctx context.Context, q analytics.Query) (*analytics.Report, error) {
	call := c.svc.Data.Ga.Get(q.ViewID, q.StartDate, q.EndDate, q.Metrics).
		StartIndex(int64(q.Options.StartIndex) + 1).
		MaxResults(int64(q.Options.MaxResults))
	if q.Options.Sort != "" {
		call = call.Sort(q.Options.Sort)
	}
	if q.Options.Dimensions != "" {
		call = call.Dimensions(q.Options.Dimensions)
	}
	if q.Options.Filters != "" {
		call = call.Filters(q.Options.Filters)
	}

	data, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("data.ga.get %s: %w", q.ViewID, err)
	}

	report := &analytics.Report{
		TotalResults:  data.TotalResults,
		ColumnHeaders: make([]analytics.ColumnHeader, 0, len(data.ColumnHeaders)),
		Rows:          data.Rows,
	}
	for _, h := range data.ColumnHeaders {
		var name string
		if h != nil {
			name = h.Name
		}
		report.ColumnHeaders = append(report.ColumnHeaders, analytics.ColumnHeader{Name: name})
	}
	return report, nil
}
