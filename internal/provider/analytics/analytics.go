// Package analytics implements a most-popular provider backed by a web analytics reporting API.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/mostpopular/internal/domain/result"
	"github.com/okian/mostpopular/internal/provider"
	"github.com/okian/mostpopular/pkg/logger"
	"github.com/okian/mostpopular/pkg/metrics"
)

// Name identifies the provider in logs and metrics.
const Name = "analytics"

const (
	profilePrefix = "ga:"
	dateLayout    = "2006-01-02"
	listSeparator = ","
)

// Provider queries an analytics view for its most viewed pages.
type Provider struct {
	mu sync.Mutex

	query          provider.Query
	profileID      string
	authConfigFile string
	filters        []string
	metrics        []string
	dimensions     []string

	factory ClientFactory
	log     logger.Logger

	// client was built from clientAuth; a different authConfigFile invalidates it.
	client     Client
	clientAuth string
}

var _ provider.Provider = (*Provider)(nil)

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithClientFactory sets how the backend client is built.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Provider) {
		p.factory = f
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.log = l
		}
	}
}

// WithNow sets the clock used for the default time window.
func WithNow(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.query = provider.DefaultQuery(now())
		}
	}
}

// New creates a provider querying pageviews by page path and title.
func New(opts ...Option) *Provider {
	p := &Provider{
		query:      provider.DefaultQuery(time.Now()),
		metrics:    []string{mustTag(TermPageviews)},
		dimensions: []string{mustTag(TermPath), mustTag(TermTitle)},
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetStartTime implements provider.Provider.
func (p *Provider) SetStartTime(t time.Time) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.StartTime = t
	return p
}

// SetEndTime implements provider.Provider.
func (p *Provider) SetEndTime(t time.Time) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.EndTime = t
	return p
}

// SetSortDirection implements provider.Provider.
func (p *Provider) SetSortDirection(d provider.SortDirection) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Sort = d
	return p
}

// SetLimit implements provider.Provider. It is sent as max-results.
func (p *Provider) SetLimit(limit int) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Limit = limit
	return p
}

// SetOffset implements provider.Provider. It is sent as start-index.
func (p *Provider) SetOffset(offset int) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Offset = offset
	return p
}

// SetProfileID sets the analytics view to query. The "ga:" prefix is optional.
func (p *Provider) SetProfileID(id string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.profileID = id
	return p
}

// SetAuthConfigFile sets the service account credential path.
// The account needs read access to the configured view only.
func (p *Provider) SetAuthConfigFile(path string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authConfigFile = path
	return p
}

// AddFilter appends a backend filter expression.
func (p *Provider) AddFilter(filter string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = append(p.filters, filter)
	return p
}

// AddMetric appends a backend metric.
func (p *Provider) AddMetric(metric string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metrics = append(p.metrics, metric)
	return p
}

// AddDimension appends a backend dimension.
func (p *Provider) AddDimension(dimension string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dimensions = append(p.dimensions, dimension)
	return p
}

// FetchMostPopular implements provider.Provider. Rows keep the order the
// backend returned them in; sorting and paging are the backend's job.
func (p *Provider) FetchMostPopular(ctx context.Context) ([]result.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.query.Validate(); err != nil {
		return nil, err
	}
	if p.profileID == "" {
		return nil, provider.BadConfiguration("no profile id set, cannot query analytics without a profile id")
	}
	if p.query.Limit == 0 {
		return []result.Result{}, nil
	}

	client, err := p.clientFor(ctx)
	if err != nil {
		return nil, err
	}

	q := p.buildQuery()
	p.log.Debug(ctx, "querying analytics",
		logger.String("view", q.ViewID),
		logger.String("start", q.StartDate),
		logger.String("end", q.EndDate),
		logger.String("sort", q.Options.Sort),
		logger.Int("max_results", q.Options.MaxResults),
	)

	report, err := client.Get(ctx, q)
	if err != nil {
		return nil, provider.Remote("analytics query failed", err)
	}
	return mapReport(report, p.query.Limit)
}

func (p *Provider) buildQuery() Query {
	viewID := p.profileID
	if !strings.HasPrefix(viewID, profilePrefix) {
		viewID = profilePrefix + viewID
	}

	sort := mustTag(TermPageviews)
	if p.query.Sort != provider.SortAscending {
		sort = "-" + sort
	}

	return Query{
		ViewID:    viewID,
		StartDate: p.query.StartTime.Format(dateLayout),
		EndDate:   p.query.EndTime.Format(dateLayout),
		Metrics:   strings.Join(p.metrics, listSeparator),
		Options: Options{
			StartIndex: p.query.Offset,
			MaxResults: p.query.Limit,
			Sort:       sort,
			Dimensions: strings.Join(p.dimensions, listSeparator),
			Filters:    strings.Join(p.filters, listSeparator),
		},
	}
}

// clientFor returns the cached client, rebuilding it when the credential path changed.
func (p *Provider) clientFor(ctx context.Context) (Client, error) {
	if p.client != nil && p.clientAuth == p.authConfigFile {
		return p.client, nil
	}
	if p.authConfigFile == "" {
		return nil, provider.BadConfiguration("no auth config file set, cannot build an analytics client")
	}
	if p.factory == nil {
		return nil, provider.NotFound("no analytics client available", nil)
	}

	client, err := p.factory(ctx, p.authConfigFile)
	if err != nil {
		return nil, provider.NotFound("could not build analytics client", err)
	}
	if client == nil {
		return nil, provider.NotFound("analytics client factory returned no client", nil)
	}

	p.client, p.clientAuth = client, p.authConfigFile
	metrics.RecordClientBuild(Name)
	p.log.Info(ctx, "analytics client built", logger.String("auth_config_file", p.authConfigFile))
	return client, nil
}

func mapReport(report *Report, limit int) ([]result.Result, error) {
	if report == nil || report.TotalResults == 0 {
		return []result.Result{}, nil
	}

	columns := make(map[string]int, len(report.ColumnHeaders))
	for i, h := range report.ColumnHeaders {
		columns[TagToTerm(h.Name)] = i
	}
	pathCol, ok := columns[TermPath]
	if !ok {
		return nil, provider.Remote("analytics response has no path column", nil)
	}
	titleCol, ok := columns[TermTitle]
	if !ok {
		return nil, provider.Remote("analytics response has no title column", nil)
	}

	out := make([]result.Result, 0, min(len(report.Rows), limit))
	for i, row := range report.Rows {
		if len(out) == limit {
			break
		}
		if pathCol >= len(row) || titleCol >= len(row) {
			return nil, provider.Remote(fmt.Sprintf("analytics row %d has %d columns, want %d", i, len(row), len(report.ColumnHeaders)), nil)
		}
		out = append(out, result.New(row[pathCol], row[titleCol]))
	}
	return out, nil
}
