// Package browse assembles the pages cinescope shows: home rows, category
// and discover listings, title and person pages, search and suggestions.
package browse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

// Options tunes a Service. Zero values use package defaults.
type Options struct {
	EnrichConcurrency int
	SuggestionLimit   int
}

// Service builds pages from a metadata provider.
type Service struct {
	provider core.MetadataProvider
	fetcher  *discover.Fetcher
	taxonomy *Taxonomy
	opts     Options
	logger   *slog.Logger
}

// New creates a Service.
func New(provider core.MetadataProvider, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.EnrichConcurrency < 1 {
		opts.EnrichConcurrency = discover.DefaultEnrichConcurrency
	}
	if opts.SuggestionLimit < 1 {
		opts.SuggestionLimit = DefaultSuggestionLimit
	}
	return &Service{
		provider: provider,
		fetcher:  discover.NewFetcher(provider, opts.EnrichConcurrency, logger),
		taxonomy: NewTaxonomy(provider),
		opts:     opts,
		logger:   logger,
	}
}

// Fetcher returns the page fetcher shared by all views.
func (s *Service) Fetcher() *discover.Fetcher {
	return s.fetcher
}

// Taxonomy returns genre and country lookups.
func (s *Service) Taxonomy() *Taxonomy {
	return s.taxonomy
}

// NewPaginator starts a paginated view session. Search queries built with
// SearchQuery page through Search; all others through the fetcher.
func (s *Service) NewPaginator() *discover.Paginator {
	return discover.NewPaginator(s)
}

var _ discover.PageSource = (*Service)(nil)

// Fetch implements discover.PageSource.
func (s *Service) Fetch(ctx context.Context, q core.Query, n int) (discover.Page, error) {
	if q.Path == searchPath {
		query, _ := q.Get("query")
		return s.Search(ctx, query, n)
	}
	return s.fetcher.Fetch(ctx, q, n)
}

// NewSuggester starts a search-as-you-type session.
func (s *Service) NewSuggester() *Suggester {
	return NewSuggester(s.provider, s.fetcher.Enricher(), s.opts.SuggestionLimit, s.logger)
}

// Listing is a titled page of a category or filter.
type Listing struct {
	Category discover.Category `json:"-"`
	Token    string            `json:"category,omitempty"`
	Title    string            `json:"title"`
	Filter   string            `json:"filter,omitempty"`
	Page     discover.Page     `json:"page"`
}

// Category fetches page n of a category token. Unknown tokens fail with
// *discover.InvalidCategoryError before any request is made.
func (s *Service) Category(ctx context.Context, token string, n int) (*Listing, error) {
	cat, err := discover.ParseCategory(token)
	if err != nil {
		return nil, err
	}
	page, err := s.fetcher.Fetch(ctx, cat.Query, n)
	listing := &Listing{
		Category: cat,
		Token:    cat.Token,
		Title:    cat.TitleWith(s.taxonomy.Lookup(ctx)),
		Page:     page,
	}
	if err != nil {
		return listing, fmt.Errorf("category %s: %w", cat.Token, err)
	}
	return listing, nil
}

// Discover fetches page n of a filter. current is the media type used when
// the filter does not name one.
func (s *Service) Discover(ctx context.Context, f discover.FilterState, current core.MediaType, n int) (*Listing, error) {
	q, err := discover.BuildFilter(f, current)
	if err != nil {
		return nil, err
	}
	title := "Discover Movies"
	if q.MediaType == core.MediaTV {
		title = "Discover Series"
	}
	page, err := s.fetcher.Fetch(ctx, q, n)
	listing := &Listing{Title: title, Filter: f.String(), Page: page}
	if err != nil {
		return listing, fmt.Errorf("discover: %w", err)
	}
	return listing, nil
}
