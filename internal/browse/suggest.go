package browse

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
	"github.com/vadimtrunov/cinescope/internal/metrics"
)

// DefaultSuggestionLimit caps the suggestions returned per query.
const DefaultSuggestionLimit = 8

// Suggester answers search-as-you-type queries. The latest query wins:
// a call superseded by a newer one returns discover.ErrStale.
type Suggester struct {
	provider core.MetadataProvider
	enricher *discover.Enricher
	limit    int
	guard    discover.Guard
	logger   *slog.Logger
}

// NewSuggester creates a Suggester.
func NewSuggester(provider core.MetadataProvider, enricher *discover.Enricher, limit int, logger *slog.Logger) *Suggester {
	if logger == nil {
		logger = slog.Default()
	}
	if limit < 1 {
		limit = DefaultSuggestionLimit
	}
	return &Suggester{
		provider: provider,
		enricher: enricher,
		limit:    limit,
		logger:   logger,
	}
}

// Suggest returns the best movie and series matches for query. Blank
// queries return nothing and cancel interest in earlier calls.
func (s *Suggester) Suggest(ctx context.Context, query string) ([]discover.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		s.guard.Invalidate()
		return nil, nil
	}
	ticket := s.guard.Take()

	res, err := s.provider.SearchMulti(ctx, query, 1)
	if !s.guard.IsCurrent(ticket) {
		metrics.StaleDiscards.WithLabelValues("suggester").Inc()
		return nil, discover.ErrStale
	}
	if err != nil {
		return nil, fmt.Errorf("suggest %q: %w", query, err)
	}

	ranked := RankByTitle(query, movieAndTV(res.Results, len(res.Results)))
	if len(ranked) > s.limit {
		ranked = ranked[:s.limit]
	}
	items := s.enricher.Enrich(ctx, ranked, "")

	if !s.guard.IsCurrent(ticket) {
		metrics.StaleDiscards.WithLabelValues("suggester").Inc()
		return nil, discover.ErrStale
	}
	s.logger.Debug("suggestions", slog.String("query", query), slog.Int("count", len(items)))
	return items, nil
}

// RankByTitle orders results by how well their title matches query:
// exact, prefix, substring, fuzzy subsequence, then edit distance.
// Ties keep the provider's order.
func RankByTitle(query string, results []core.Result) []core.Result {
	query = strings.ToLower(strings.TrimSpace(query))
	type ranked struct {
		result core.Result
		score  int
	}
	scored := make([]ranked, len(results))
	for i, r := range results {
		scored[i] = ranked{result: r, score: matchScore(strings.ToLower(r.Title), query)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score < scored[j].score
	})
	out := make([]core.Result, len(scored))
	for i, r := range scored {
		out[i] = r.result
	}
	return out
}

// matchScore is lower for better matches.
func matchScore(title, query string) int {
	switch {
	case title == query:
		return 0
	case strings.HasPrefix(title, query):
		return 10
	case strings.Contains(title, query):
		return 50
	}
	if rank := fuzzy.RankMatchFold(query, title); rank >= 0 {
		return 100 + rank
	}
	return 10000 + fuzzy.LevenshteinDistance(query, title)
}

const searchPath = "search/multi"

// SearchQuery is the paginator query for a title search.
func SearchQuery(query string) core.Query {
	return core.Query{Path: searchPath, Params: []core.Param{{Key: "query", Value: strings.TrimSpace(query)}}}
}

// Search returns page n of movie and series matches for query, enriched.
func (s *Service) Search(ctx context.Context, query string, n int) (discover.Page, error) {
	query = strings.TrimSpace(query)
	q := SearchQuery(query)
	if query == "" {
		return discover.Page{Number: 1, Query: q, Status: discover.StatusEmpty}, nil
	}
	return s.fetcher.FetchList(ctx, q, n, func(ctx context.Context, n int) (*core.ResultPage, error) {
		res, err := s.provider.SearchMulti(ctx, query, n)
		if err != nil {
			return nil, err
		}
		filtered := *res
		filtered.Results = movieAndTV(res.Results, len(res.Results))
		return &filtered, nil
	})
}
