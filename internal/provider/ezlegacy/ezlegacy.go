// Package ezlegacy implements a most-popular provider backed by the view
// counters of an eZ Publish legacy installation.
package ezlegacy

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/okian/mostpopular/internal/domain/result"
	"github.com/okian/mostpopular/internal/provider"
	"github.com/okian/mostpopular/pkg/logger"
	"github.com/okian/mostpopular/pkg/metrics"
)

// Name identifies the provider in logs and metrics.
const Name = "ezlegacy"

// Defaults.
const (
	DefaultSectionID    = 2
	DefaultContentClass = "article"
)

// Warning reasons recorded in metrics.
const (
	reasonOffsetUnsupported    = "offset_unsupported"
	reasonAscendingUnsupported = "ascending_unsupported"
)

// Provider ranks content objects by their recorded view count.
//
// Results are always ordered by descending view count: the sort direction is
// accepted but ignored, and offsets are reported but not applied.
type Provider struct {
	mu sync.Mutex

	query          provider.Query
	sectionID      int
	contentClasses []string

	runtime Runtime
	log     logger.Logger
}

var _ provider.Provider = (*Provider)(nil)

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithLogger sets a custom logger. Diagnostics are emitted as warnings.
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

// New creates a provider over rt. A nil runtime is a not-found failure.
func New(rt Runtime, opts ...Option) (*Provider, error) {
	if rt == nil {
		return nil, provider.NotFound("cannot use the eZ Publish legacy provider without an eZ Publish runtime", nil)
	}
	p := &Provider{
		query:     provider.DefaultQuery(time.Now()),
		sectionID: DefaultSectionID,
		runtime:   rt,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SetStartTime implements provider.Provider. The view counters carry no
// time dimension, so the window is accepted but not applied.
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

// SetSortDirection implements provider.Provider. It has no effect on ordering.
func (p *Provider) SetSortDirection(d provider.SortDirection) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Sort = d
	return p
}

// SetLimit implements provider.Provider.
func (p *Provider) SetLimit(limit int) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Limit = limit
	return p
}

// SetOffset implements provider.Provider. Nonzero offsets only produce a warning.
func (p *Provider) SetOffset(offset int) provider.Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query.Offset = offset
	return p
}

// SetSectionID sets the CMS section to search.
func (p *Provider) SetSectionID(id int) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sectionID = id
	return p
}

// AddContentClass adds a content class identifier to search. Duplicates are ignored.
func (p *Provider) AddContentClass(identifier string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !slices.Contains(p.contentClasses, identifier) {
		p.contentClasses = append(p.contentClasses, identifier)
	}
	return p
}

// FetchMostPopular implements provider.Provider.
func (p *Provider) FetchMostPopular(ctx context.Context) ([]result.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.runtime == nil {
		return nil, provider.NotFound("cannot use the eZ Publish legacy provider without an eZ Publish runtime", nil)
	}
	if err := p.query.Validate(); err != nil {
		return nil, err
	}

	classes := slices.Clone(p.contentClasses)
	if len(classes) == 0 {
		classes = []string{DefaultContentClass}
	}
	limit := p.query.Limit

	p.warnUnsupported(ctx)
	if limit == 0 {
		return []result.Result{}, nil
	}

	found, err := p.runtime.ListClasses(ctx, classes)
	if err != nil {
		return nil, provider.Remote("listing content classes failed", err)
	}

	objects := make(map[int]ContentObject)
	names := make(map[int]string)
	counts := make(map[int]int)
	var counted []int // node ids with a view count, first-seen order

	for _, class := range found {
		list, err := p.runtime.ViewTopList(ctx, class.ID, p.sectionID, limit)
		if err != nil {
			return nil, provider.Remote("listing top viewed objects of class "+class.Identifier+" failed", err)
		}
		for _, obj := range list {
			objects[obj.NodeID] = obj
			vc, err := p.runtime.FetchViewCount(ctx, obj.NodeID)
			if err != nil {
				return nil, provider.Remote("fetching view count of node "+strconv.Itoa(obj.NodeID)+" failed", err)
			}
			if vc == nil {
				continue
			}
			if _, ok := counts[obj.NodeID]; !ok {
				counted = append(counted, obj.NodeID)
			}
			names[obj.NodeID] = obj.Name
			counts[obj.NodeID] = vc.Count
		}
	}

	slices.SortStableFunc(counted, func(a, b int) int {
		return cmp.Compare(counts[b], counts[a])
	})

	ranked := make([]result.Result, 0, min(len(counted), limit))
	for _, nodeID := range counted {
		if len(ranked) == limit {
			break
		}
		if _, ok := objects[nodeID]; !ok {
			continue
		}
		ranked = append(ranked, result.New(strconv.Itoa(nodeID), names[nodeID]))
	}

	p.log.Debug(ctx, "ranked content objects",
		logger.Int("classes", len(found)),
		logger.Int("objects", len(objects)),
		logger.Int("counted", len(counted)),
		logger.Int("returned", len(ranked)),
	)
	return ranked, nil
}

// warnUnsupported reports offsets the CMS cannot apply. A negative offset is
// also reported as an ascending sort request, a signal inherited from older
// callers that mixed up the two settings; the sort direction itself is not checked.
func (p *Provider) warnUnsupported(ctx context.Context) {
	offset := p.query.Offset
	if offset != 0 {
		p.log.Warn(ctx, "offset is not supported by the eZ Publish legacy provider", logger.Int("offset", offset))
		metrics.RecordWarning(Name, reasonOffsetUnsupported)
	}
	if offset < 0 {
		p.log.Warn(ctx, "ascending sort is not supported by the eZ Publish legacy provider", logger.Int("offset", offset))
		metrics.RecordWarning(Name, reasonAscendingUnsupported)
	}
}
