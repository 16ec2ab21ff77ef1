// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the fetch command.
package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mostpopular/internal/domain/result"
	"github.com/okian/mostpopular/internal/provider"
	"github.com/okian/mostpopular/pkg/logger"
	"github.com/okian/mostpopular/pkg/metrics"
)

// ErrNoProvider is returned by New when no provider is configured.
var ErrNoProvider = errors.New("no most-popular provider configured")

// Request carries per-call overrides. Nil or zero fields fall back to the
// service defaults.
type Request struct {
	Limit  *int
	Offset *int
	Sort   *provider.SortDirection
	Start  time.Time
	End    time.Time
}

// Service owns one configured provider. Providers hold mutable query state,
// so configure and fetch run under a single lock.
type Service struct {
	mu sync.Mutex

	provider     provider.Provider
	providerName string
	closers      []io.Closer

	// Defaults
	limit  int
	offset int
	sort   provider.SortDirection
	window time.Duration

	now    func() time.Time
	logger logger.Logger

	// Stats
	startedAt   time.Time
	fetches     atomic.Int64
	failures    atomic.Int64
	lastResults atomic.Int64
	lastFetch   atomic.Int64 // unix nanos
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithProvider sets the provider and the name it reports in metrics.
func WithProvider(name string, p provider.Provider) Option {
	return func(s *Service) {
		s.providerName = name
		s.provider = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLimit sets the default result limit.
func WithLimit(limit int) Option {
	return func(s *Service) {
		if limit >= 0 {
			s.limit = limit
		}
	}
}

// WithOffset sets the default offset.
func WithOffset(offset int) Option {
	return func(s *Service) {
		s.offset = offset
	}
}

// WithSortDirection sets the default sort direction.
func WithSortDirection(d provider.SortDirection) Option {
	return func(s *Service) {
		s.sort = d
	}
}

// WithWindow sets the lookback used when a request has no start time.
func WithWindow(window time.Duration) Option {
	return func(s *Service) {
		if window > 0 {
			s.window = window
		}
	}
}

// WithNow sets the clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCloser registers a resource released by Close.
func WithCloser(c io.Closer) Option {
	return func(s *Service) {
		if c != nil {
			s.closers = append(s.closers, c)
		}
	}
}

// New constructs a Service. A provider is required.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		limit:  provider.DefaultLimit,
		offset: provider.DefaultOffset,
		sort:   provider.SortDescending,
		window: provider.DefaultWindow,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.provider == nil {
		return nil, ErrNoProvider
	}
	s.logger = s.logger.Named(s.providerName)
	s.startedAt = s.now()
	return s, nil
}

// MostPopular configures the provider from req and the defaults, then fetches.
func (s *Service) MostPopular(ctx context.Context, req Request) ([]result.Result, error) {
	ctx, requestID := ensureRequestID(ctx)
	log := s.logger

	q := s.resolve(req)
	if q.StartTime.After(q.EndTime) {
		return nil, provider.BadConfiguration("start must not be after end")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.provider.
		SetStartTime(q.StartTime).
		SetEndTime(q.EndTime).
		SetSortDirection(q.Sort).
		SetLimit(q.Limit).
		SetOffset(q.Offset)

	start := time.Now()
	results, err := s.provider.FetchMostPopular(ctx)
	elapsed := time.Since(start)

	s.fetches.Add(1)
	s.lastFetch.Store(s.now().UnixNano())
	if recErr := metrics.RecordFetch(s.providerName, outcomeOf(err), float64(elapsed.Milliseconds())); recErr != nil {
		log.Warn(ctx, "failed to record fetch metrics", logger.Error(recErr))
	}

	if err != nil {
		s.failures.Add(1)
		log.Error(ctx, "most-popular fetch failed",
			logger.String("request_id", requestID),
			logger.Duration("elapsed", elapsed),
			logger.Error(err),
		)
		return nil, err
	}

	s.lastResults.Store(int64(len(results)))
	metrics.RecordResults(s.providerName, len(results))
	log.Info(ctx, "most-popular fetched",
		logger.String("request_id", requestID),
		logger.Int("limit", q.Limit),
		logger.Int("offset", q.Offset),
		logger.String("sort", q.Sort.String()),
		logger.Int("results", len(results)),
		logger.Duration("elapsed", elapsed),
	)
	return results, nil
}

func (s *Service) resolve(req Request) provider.Query {
	q := provider.Query{
		StartTime: req.Start,
		EndTime:   req.End,
		Limit:     s.limit,
		Offset:    s.offset,
		Sort:      s.sort,
	}
	if req.Limit != nil {
		q.Limit = *req.Limit
	}
	if req.Offset != nil {
		q.Offset = *req.Offset
	}
	if req.Sort != nil {
		q.Sort = *req.Sort
	}
	if q.EndTime.IsZero() {
		q.EndTime = s.now()
	}
	if q.StartTime.IsZero() {
		q.StartTime = q.EndTime.Add(-s.window)
	}
	return q
}

// Provider returns the configured provider name.
func (s *Service) Provider() string {
	return s.providerName
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	stats := map[string]interface{}{
		"provider":    s.providerName,
		"startedAt":   s.startedAt.UTC().Format(time.RFC3339),
		"fetches":     s.fetches.Load(),
		"failures":    s.failures.Load(),
		"lastResults": s.lastResults.Load(),
		"defaults": map[string]interface{}{
			"limit":  s.limit,
			"offset": s.offset,
			"sort":   s.sort.String(),
			"window": s.window.String(),
		},
	}
	if ts := s.lastFetch.Load(); ts != 0 {
		stats["lastFetch"] = time.Unix(0, ts).UTC().Format(time.RFC3339)
	}
	return stats
}

// Close releases resources registered with WithCloser.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, provider.ErrBadConfiguration):
		return metrics.OutcomeBadConfiguration
	case errors.Is(err, provider.ErrNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeRemoteError
	}
}

type requestIDKey struct{}

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// NewRequestID returns a fresh random request ID.
func NewRequestID() string {
	return uuid.NewString()
}

func ensureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestID(ctx); id != "" {
		return ctx, id
	}
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}
