package discover

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/metrics"
)

// ErrStale is returned by a fetch that a newer fetch or query change superseded.
// Its result was not applied.
var ErrStale = errors.New("stale result discarded")

// ErrNoQuery is returned by Reload before any query was set.
var ErrNoQuery = errors.New("no query set")

// Guard hands out tickets; only the most recent ticket is current.
type Guard struct {
	n atomic.Uint64
}

// Take returns a new ticket, superseding all earlier ones.
func (g *Guard) Take() uint64 {
	return g.n.Add(1)
}

// Invalidate supersedes all outstanding tickets.
func (g *Guard) Invalidate() {
	g.n.Add(1)
}

// IsCurrent reports whether ticket is still the latest one.
func (g *Guard) IsCurrent(ticket uint64) bool {
	return g.n.Load() == ticket
}

// Paginator tracks the current page of one view session.
// It is safe for concurrent use; the latest fetch always wins.
type Paginator struct {
	source PageSource
	guard  Guard

	mu      sync.Mutex
	query   core.Query
	current Page
	loaded  bool
}

// NewPaginator creates a Paginator over source.
func NewPaginator(source PageSource) *Paginator {
	return &Paginator{source: source}
}

// FetchPage fetches page n of q. When q differs from the active query,
// pagination resets and page 1 is fetched instead.
func (p *Paginator) FetchPage(ctx context.Context, q core.Query, n int) (Page, error) {
	p.mu.Lock()
	if !p.query.IsZero() && p.query.Encode() != q.Encode() {
		n = 1
		p.loaded = false
	}
	p.query = q
	ticket := p.guard.Take()
	p.mu.Unlock()

	page, err := p.source.Fetch(ctx, q, n)

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.guard.IsCurrent(ticket) {
		metrics.StaleDiscards.WithLabelValues("paginator").Inc()
		return Page{}, ErrStale
	}
	p.current = page
	p.loaded = true
	return page, err
}

// SetQuery replaces the active query and drops the current page. In-flight
// fetches complete with ErrStale.
func (p *Paginator) SetQuery(q core.Query) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.query = q
	p.current = Page{}
	p.loaded = false
	p.guard.Invalidate()
}

// NextPage fetches the page after the current one. At the last page, or with
// nothing loaded, it returns the current page unchanged.
func (p *Paginator) NextPage(ctx context.Context) (Page, error) {
	p.mu.Lock()
	if !p.loaded || !p.current.HasNext() {
		cur := p.current
		p.mu.Unlock()
		return cur, nil
	}
	q, n := p.query, p.current.Number+1
	p.mu.Unlock()
	return p.FetchPage(ctx, q, n)
}

// PreviousPage fetches the page before the current one. At page 1, or with
// nothing loaded, it returns the current page unchanged.
func (p *Paginator) PreviousPage(ctx context.Context) (Page, error) {
	p.mu.Lock()
	if !p.loaded || !p.current.HasPrevious() {
		cur := p.current
		p.mu.Unlock()
		return cur, nil
	}
	q, n := p.query, p.current.Number-1
	p.mu.Unlock()
	return p.FetchPage(ctx, q, n)
}

// Reload fetches the current page again, or page 1 when nothing is loaded.
func (p *Paginator) Reload(ctx context.Context) (Page, error) {
	p.mu.Lock()
	if p.query.IsZero() {
		p.mu.Unlock()
		return Page{}, ErrNoQuery
	}
	q, n := p.query, 1
	if p.loaded {
		n = p.current.Number
	}
	p.mu.Unlock()
	return p.FetchPage(ctx, q, n)
}

// Current returns the last applied page and whether one is loaded.
func (p *Paginator) Current() (Page, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, p.loaded
}

// Query returns the active query.
func (p *Paginator) Query() core.Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}
