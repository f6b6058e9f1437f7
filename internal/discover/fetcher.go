package discover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/metrics"
)

// PageSource fetches one enriched page of a query.
type PageSource interface {
	Fetch(ctx context.Context, q core.Query, n int) (Page, error)
}

// Fetcher is a stateless PageSource backed by a core.Catalog.
type Fetcher struct {
	catalog  core.Catalog
	enricher *Enricher
	logger   *slog.Logger
}

var _ PageSource = (*Fetcher)(nil)

// NewFetcher creates a Fetcher. concurrency bounds detail lookups per page.
func NewFetcher(catalog core.Catalog, concurrency int, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		catalog:  catalog,
		enricher: NewEnricher(catalog, concurrency, logger),
		logger:   logger,
	}
}

// Enricher exposes the enrichment step for callers that list outside Fetch.
func (f *Fetcher) Enricher() *Enricher {
	return f.enricher
}

// ListFunc lists raw page n of a listing.
type ListFunc func(ctx context.Context, n int) (*core.ResultPage, error)

// Fetch lists page n (minimum 1) of q and enriches every result. A listing
// failure returns a failed page together with the error; enrichment failures
// never surface as errors.
func (f *Fetcher) Fetch(ctx context.Context, q core.Query, n int) (Page, error) {
	return f.FetchList(ctx, q, n, func(ctx context.Context, n int) (*core.ResultPage, error) {
		return f.catalog.List(ctx, q, n)
	})
}

// FetchList is Fetch over an arbitrary listing. A request past the last page
// lists the last page instead. Failed pages keep the requested number so a
// reload retries it.
func (f *Fetcher) FetchList(ctx context.Context, q core.Query, n int, list ListFunc) (Page, error) {
	if n < 1 {
		n = 1
	}

	res, err := list(ctx, n)
	if err == nil && res.TotalPages > 0 && n > res.TotalPages {
		f.logger.Debug("page past the end, listing the last page",
			slog.String("query", q.Encode()),
			slog.Int("requested", n),
			slog.Int("total_pages", res.TotalPages),
		)
		n = res.TotalPages
		res, err = list(ctx, n)
	}
	if err != nil {
		metrics.PagesFetched.WithLabelValues(string(StatusFailed)).Inc()
		f.logger.Warn("listing failed",
			slog.String("query", q.Encode()),
			slog.Int("page", n),
			slog.String("error", err.Error()),
		)
		return Page{Number: n, Query: q, Status: StatusFailed}, fmt.Errorf("fetch %s page %d: %w", q.Encode(), n, err)
	}

	page := Page{
		Items:        f.enricher.Enrich(ctx, res.Results, q.MediaType),
		Number:       min(n, max(res.TotalPages, 1)),
		TotalPages:   max(res.TotalPages, 0),
		TotalResults: res.TotalResults,
		Query:        q,
		Status:       StatusReady,
	}
	if len(page.Items) == 0 {
		page.Status = StatusEmpty
	}

	metrics.PagesFetched.WithLabelValues(string(page.Status)).Inc()
	f.logger.Debug("page fetched",
		slog.String("query", q.Encode()),
		slog.Int("page", page.Number),
		slog.Int("total_pages", page.TotalPages),
		slog.Int("items", len(page.Items)),
	)
	return page, nil
}
