package browse

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vadimtrunov/cinescope/internal/core"
)

// CreditsLimit caps the credits shown on a person page.
const CreditsLimit = 12

// PersonPage is a biography with the person's best-known credits.
type PersonPage struct {
	Person  *core.PersonDetails `json:"person"`
	Credits []core.Result       `json:"credits"`
}

// Person builds a person page. A credits failure leaves the section empty.
func (s *Service) Person(ctx context.Context, id int) (*PersonPage, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid person id %d", id)
	}
	page := &PersonPage{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.provider.Person(gctx, id)
		if err != nil {
			return fmt.Errorf("person %d: %w", id, err)
		}
		page.Person = p
		return nil
	})
	g.Go(func() error {
		credits, err := s.provider.PersonCredits(gctx, id)
		if err != nil {
			s.logger.Warn("person credits failed", slog.Int("id", id), slog.String("error", err.Error()))
			return nil
		}
		page.Credits = movieAndTV(credits, CreditsLimit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// PopularPeople returns one page of popular people.
func (s *Service) PopularPeople(ctx context.Context, page int) ([]core.Person, error) {
	people, err := s.provider.PopularPeople(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("popular people: %w", err)
	}
	return people, nil
}

// movieAndTV keeps movie and series entries with a title, up to limit.
func movieAndTV(results []core.Result, limit int) []core.Result {
	out := make([]core.Result, 0, min(len(results), limit))
	for _, r := range results {
		if r.MediaType == "" || r.Title == "" {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}
