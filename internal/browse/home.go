package browse

import (
	"context"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

// Home page sizes.
const (
	RowLimit  = 10
	HeroLimit = 6
)

// HomeRowTokens are the fixed rows shown above the recommended row.
var HomeRowTokens = []string{"movie_now_playing", "trending_movie_week", "movie_upcoming", "tv_on_the_air"}

// RecommendedTokens are the choices for the switchable recommended row.
var RecommendedTokens = []string{"movie_top_rated", "tv_top_rated", "animation"}

// Row is one home row. ViewAll is the category token of the full listing.
type Row struct {
	Token   string          `json:"category"`
	Title   string          `json:"title"`
	ViewAll string          `json:"view_all"`
	Items   []discover.Item `json:"items"`
	Status  discover.Status `json:"status"`
}

// Home is the landing page.
type Home struct {
	Hero []discover.Item `json:"hero"`
	Rows []Row           `json:"rows"`
}

// Home builds the landing page. recommended picks the last row; an empty or
// unknown value uses movie_top_rated. Failed rows come back empty.
func (s *Service) Home(ctx context.Context, recommended string) (*Home, error) {
	recommended = discover.NormalizeToken(recommended)
	if !slices.Contains(RecommendedTokens, recommended) {
		recommended = RecommendedTokens[0]
	}
	tokens := append(append([]string(nil), HomeRowTokens...), recommended)

	home := &Home{Rows: make([]Row, len(tokens))}
	var trending []core.Result

	g, gctx := errgroup.WithContext(ctx)
	for i, token := range tokens {
		g.Go(func() error {
			row, raw := s.homeRow(gctx, token)
			home.Rows[i] = row
			if token == "trending_movie_week" {
				trending = raw
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	home.Hero = s.fetcher.Enricher().Enrich(ctx, pickHero(trending), core.MediaMovie)
	return home, nil
}

func (s *Service) homeRow(ctx context.Context, token string) (Row, []core.Result) {
	cat, err := discover.ParseCategory(token)
	if err != nil {
		return Row{Token: token, Title: discover.InvalidCategoryTitle, Status: discover.StatusFailed}, nil
	}
	row := Row{
		Token:   cat.Token,
		Title:   cat.Title,
		ViewAll: cat.Token,
		Status:  discover.StatusEmpty,
	}

	res, err := s.provider.List(ctx, cat.Query, 1)
	if err != nil {
		s.logger.Warn("home row failed", slog.String("category", token), slog.String("error", err.Error()))
		row.Status = discover.StatusFailed
		return row, nil
	}

	raw := res.Results
	if len(raw) > RowLimit {
		raw = raw[:RowLimit]
	}
	row.Items = s.fetcher.Enricher().Enrich(ctx, raw, cat.MediaType())
	if len(row.Items) > 0 {
		row.Status = discover.StatusReady
	}
	return row, res.Results
}

// pickHero returns the first HeroLimit results with a backdrop, or the first
// HeroLimit results when none have one.
func pickHero(results []core.Result) []core.Result {
	hero := make([]core.Result, 0, HeroLimit)
	for _, r := range results {
		if r.BackdropPath != "" {
			hero = append(hero, r)
			if len(hero) == HeroLimit {
				return hero
			}
		}
	}
	if len(hero) > 0 {
		return hero
	}
	if len(results) > HeroLimit {
		return results[:HeroLimit]
	}
	return results
}
