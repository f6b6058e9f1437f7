package browse

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

// Title page section sizes.
const (
	CastLimit            = 10
	RecommendationsLimit = 8
)

// TitlePage is the detail view of a movie or series.
type TitlePage struct {
	Details         *core.Details     `json:"details"`
	Runtime         string            `json:"runtime"`
	Rating          AgeRating         `json:"rating"`
	Cast            []core.CastMember `json:"cast"`
	Recommendations []discover.Item   `json:"recommendations"`
	Trailer         *core.Video       `json:"trailer,omitempty"`
}

// Title builds a title page. Only a details failure fails the page; cast,
// recommendations and videos degrade to empty sections.
func (s *Service) Title(ctx context.Context, mediaType core.MediaType, id int) (*TitlePage, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid %s id %d", mediaType, id)
	}
	page := &TitlePage{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.provider.Details(gctx, mediaType, id)
		if err != nil {
			return fmt.Errorf("title %s/%d: %w", mediaType, id, err)
		}
		page.Details = d
		return nil
	})
	g.Go(func() error {
		cast, err := s.provider.Credits(gctx, mediaType, id)
		if err != nil {
			s.sectionFailed("cast", mediaType, id, err)
			return nil
		}
		if len(cast) > CastLimit {
			cast = cast[:CastLimit]
		}
		page.Cast = cast
		return nil
	})
	g.Go(func() error {
		recs, err := s.provider.Recommendations(gctx, mediaType, id)
		if err != nil {
			s.sectionFailed("recommendations", mediaType, id, err)
			return nil
		}
		page.Recommendations = s.recommendations(gctx, recs, mediaType)
		return nil
	})
	g.Go(func() error {
		videos, err := s.provider.Videos(gctx, mediaType, id)
		if err != nil {
			s.sectionFailed("videos", mediaType, id, err)
			return nil
		}
		page.Trailer = PickTrailer(videos)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if mediaType == core.MediaTV {
		page.Runtime = discover.FormatSeasons(page.Details.NumberOfSeasons, page.Details.NumberOfEpisodes)
	} else {
		page.Runtime = discover.FormatRuntime(page.Details.Runtime)
	}
	page.Rating = RateTitle(page.Details)
	return page, nil
}

// recommendations keeps titles with a poster, enriched, up to the limit.
func (s *Service) recommendations(ctx context.Context, recs []core.Result, mediaType core.MediaType) []discover.Item {
	withPoster := make([]core.Result, 0, RecommendationsLimit)
	for _, r := range recs {
		if r.PosterPath == "" {
			continue
		}
		withPoster = append(withPoster, r)
		if len(withPoster) == RecommendationsLimit {
			break
		}
	}
	return s.fetcher.Enricher().Enrich(ctx, withPoster, mediaType)
}

func (s *Service) sectionFailed(section string, mediaType core.MediaType, id int, err error) {
	s.logger.Warn("title section failed",
		slog.String("section", section),
		slog.String("media_type", string(mediaType)),
		slog.Int("id", id),
		slog.String("error", err.Error()),
	)
}

// PickTrailer returns the first YouTube trailer, else the first video, else nil.
func PickTrailer(videos []core.Video) *core.Video {
	for i := range videos {
		if videos[i].Site == "YouTube" && videos[i].Type == "Trailer" {
			v := videos[i]
			return &v
		}
	}
	if len(videos) > 0 {
		v := videos[0]
		return &v
	}
	return nil
}

// VideoURL links to a video on its hosting site.
func VideoURL(v *core.Video) string {
	if v == nil || v.Key == "" {
		return ""
	}
	switch v.Site {
	case "YouTube":
		return "https://www.youtube.com/watch?v=" + v.Key
	case "Vimeo":
		return "https://vimeo.com/" + v.Key
	}
	return ""
}
