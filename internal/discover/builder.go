package discover

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vadimtrunov/cinescope/internal/core"
)

// ErrNoMediaType is returned when neither the filter nor the caller names a media type.
var ErrNoMediaType = errors.New("filter has no media type and no current context")

// BuildFilter translates a filter into a discover query. The filter's media
// type wins; otherwise current is kept. Identical filters always encode to
// identical queries regardless of the order facets were toggled in.
func BuildFilter(f FilterState, current core.MediaType) (core.Query, error) {
	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = current
	}
	switch mediaType {
	case core.MediaMovie, core.MediaTV:
	case "":
		return core.Query{}, ErrNoMediaType
	default:
		return core.Query{}, fmt.Errorf("build filter: unknown media type %q", mediaType)
	}

	q := core.Query{Path: "discover/" + string(mediaType), MediaType: mediaType}

	if len(f.Genres) > 0 {
		q.Params = append(q.Params, core.Param{Key: "with_genres", Value: joinInts(sortedCopy(f.Genres))})
	}

	if len(f.Countries) > 0 {
		codes := make([]string, 0, len(f.Countries))
		for _, c := range f.Countries {
			c = strings.ToUpper(c)
			if !slices.Contains(codes, c) {
				codes = append(codes, c)
			}
		}
		slices.Sort(codes)
		q.Params = append(q.Params, core.Param{Key: "with_origin_country", Value: strings.Join(codes, ",")})
	}

	if len(f.Years) > 0 {
		field := "primary_release_date"
		if mediaType == core.MediaTV {
			field = "first_air_date"
		}
		q.Params = append(q.Params,
			core.Param{Key: field + ".gte", Value: fmt.Sprintf("%04d-01-01", slices.Min(f.Years))},
			core.Param{Key: field + ".lte", Value: fmt.Sprintf("%04d-12-31", slices.Max(f.Years))},
		)
	}

	if f.Rating != nil {
		q.Params = append(q.Params, core.Param{Key: "vote_average.gte", Value: strconv.FormatFloat(*f.Rating, 'f', -1, 64)})
	}

	q.Params = append(q.Params, core.Param{Key: "sort_by", Value: f.Sort.String()})
	return q, nil
}

// Session is the per-view state: the category being browsed and the filter
// applied on top of it.
type Session struct {
	Category Category
	Filter   FilterState
}

// NewSession starts a session on a category token.
func NewSession(token string) (Session, error) {
	cat, err := ParseCategory(token)
	if err != nil {
		return Session{}, err
	}
	return Session{Category: cat}, nil
}

// Query returns the category query while the filter is empty, else the
// filter query in the category's media type.
func (s Session) Query() (core.Query, error) {
	if s.Filter.IsEmpty() {
		if s.Category.Query.IsZero() {
			return core.Query{}, ErrNoMediaType
		}
		return s.Category.Query, nil
	}
	return BuildFilter(s.Filter, s.Category.MediaType())
}

// WithFilter returns the session with f applied.
func (s Session) WithFilter(f FilterState) Session {
	s.Filter = f
	return s
}

// ResetFilter drops the filter and returns to the category listing.
func (s Session) ResetFilter() Session {
	s.Filter = FilterState{}
	return s
}
