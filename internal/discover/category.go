// Package discover turns category tokens and filter selections into provider
// queries and fetches enriched, paginated listing pages for them.
package discover

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/vadimtrunov/cinescope/internal/core"
)

// ErrInvalidCategory matches every *InvalidCategoryError.
var ErrInvalidCategory = errors.New("invalid category")

// InvalidCategoryError carries the token that could not be parsed.
type InvalidCategoryError struct {
	Token string
}

func (e *InvalidCategoryError) Error() string {
	return fmt.Sprintf("invalid category %q", e.Token)
}

// Is makes errors.Is(err, ErrInvalidCategory) hold.
func (e *InvalidCategoryError) Is(target error) bool {
	return target == ErrInvalidCategory
}

// InvalidCategoryTitle is shown in place of a listing title for unknown tokens.
const InvalidCategoryTitle = "Invalid Category"

// FacetKind classifies a category token.
type FacetKind string

// Facet kinds.
const (
	FacetFixed   FacetKind = "fixed"
	FacetGenre   FacetKind = "genre"
	FacetCountry FacetKind = "country"
)

// Category is a parsed category token.
type Category struct {
	Token string    // Normalized token
	Kind  FacetKind // fixed, genre or country
	Value string    // Fixed token, genre ID or upper-case country code
	Title string    // Display title without genre names
	Query core.Query
}

// MediaType returns the media type the category lists.
func (c Category) MediaType() core.MediaType {
	return c.Query.MediaType
}

// GenreLookup resolves a genre ID to its display name.
type GenreLookup func(mediaType core.MediaType, id int) (string, bool)

// TitleWith returns the display title, naming the genre when lookup knows it.
func (c Category) TitleWith(lookup GenreLookup) string {
	if c.Kind != FacetGenre || lookup == nil {
		return c.Title
	}
	id, err := strconv.Atoi(c.Value)
	if err != nil {
		return c.Title
	}
	name, ok := lookup(c.MediaType(), id)
	if !ok || name == "" {
		return c.Title
	}
	return genrePrefix(c.MediaType()) + name
}

type fixedCategory struct {
	path      string
	params    []core.Param
	mediaType core.MediaType
	title     string
}

var fixedCategories = map[string]fixedCategory{
	"movie_now_playing":   {path: "movie/now_playing", mediaType: core.MediaMovie, title: "Recently Updated"},
	"trending_movie_week": {path: "trending/movie/week", mediaType: core.MediaMovie, title: "Trending"},
	"movie_upcoming":      {path: "movie/upcoming", mediaType: core.MediaMovie, title: "New Release - Movies"},
	"tv_on_the_air":       {path: "tv/on_the_air", mediaType: core.MediaTV, title: "New Release - Series"},
	"movie_top_rated":     {path: "movie/top_rated", mediaType: core.MediaMovie, title: "Recommended"},
	"tv_top_rated":        {path: "tv/top_rated", mediaType: core.MediaTV, title: "Recommended Series"},
	"movie_popular":       {path: "movie/popular", mediaType: core.MediaMovie, title: "Most Popular Movies"},
	"tv_popular":          {path: "tv/popular", mediaType: core.MediaTV, title: "Most Popular Series"},
	"animation": {
		path:      "discover/movie",
		params:    []core.Param{{Key: "with_genres", Value: "16"}},
		mediaType: core.MediaMovie,
		title:     "Most Popular Animation",
	},
}

const (
	movieGenrePrefix = "movie_genre_"
	tvGenrePrefix    = "tv_genre_"
	countryPrefix    = "country_"
)

// NormalizeToken trims, lowercases and maps hyphens to underscores.
func NormalizeToken(token string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(token)), "-", "_")
}

// ParseCategory maps a category token to its listing query. Unknown or
// malformed tokens yield an *InvalidCategoryError carrying the original token.
func ParseCategory(token string) (Category, error) {
	norm := NormalizeToken(token)

	if fc, ok := fixedCategories[norm]; ok {
		return Category{
			Token: norm,
			Kind:  FacetFixed,
			Value: norm,
			Title: fc.title,
			Query: core.Query{Path: fc.path, Params: slices.Clone(fc.params), MediaType: fc.mediaType},
		}, nil
	}

	switch {
	case strings.HasPrefix(norm, movieGenrePrefix):
		return genreCategory(token, norm, strings.TrimPrefix(norm, movieGenrePrefix), core.MediaMovie)
	case strings.HasPrefix(norm, tvGenrePrefix):
		return genreCategory(token, norm, strings.TrimPrefix(norm, tvGenrePrefix), core.MediaTV)
	case strings.HasPrefix(norm, countryPrefix):
		code := strings.TrimPrefix(norm, countryPrefix)
		if !isCountryCode(code) {
			return Category{}, &InvalidCategoryError{Token: token}
		}
		code = strings.ToUpper(code)
		return Category{
			Token: norm,
			Kind:  FacetCountry,
			Value: code,
			Title: "Movies from " + code,
			Query: core.Query{
				Path:      "discover/movie",
				Params:    []core.Param{{Key: "with_origin_country", Value: code}},
				MediaType: core.MediaMovie,
			},
		}, nil
	}

	return Category{}, &InvalidCategoryError{Token: token}
}

func genreCategory(token, norm, rawID string, mediaType core.MediaType) (Category, error) {
	id, err := strconv.Atoi(rawID)
	if err != nil || id <= 0 || strconv.Itoa(id) != rawID {
		return Category{}, &InvalidCategoryError{Token: token}
	}
	value := strconv.Itoa(id)
	return Category{
		Token: norm,
		Kind:  FacetGenre,
		Value: value,
		Title: genrePrefix(mediaType) + "Genre " + value,
		Query: core.Query{
			Path:      "discover/" + string(mediaType),
			Params:    []core.Param{{Key: "with_genres", Value: value}},
			MediaType: mediaType,
		},
	}, nil
}

func genrePrefix(mediaType core.MediaType) string {
	if mediaType == core.MediaTV {
		return "Series - "
	}
	return "Movies - "
}

// GenreToken returns the category token listing a genre.
func GenreToken(mediaType core.MediaType, id int) string {
	if mediaType == core.MediaTV {
		return tvGenrePrefix + strconv.Itoa(id)
	}
	return movieGenrePrefix + strconv.Itoa(id)
}

// CountryToken returns the category token listing movies from a country.
func CountryToken(code string) string {
	return countryPrefix + strings.ToLower(code)
}

// CategoryToken maps a listing path such as "movie/now_playing" to its
// "view all" token.
func CategoryToken(path string) string {
	path, _, _ = strings.Cut(path, "?")
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", "_")
}

// FixedTokens lists the fixed category tokens in a stable order.
func FixedTokens() []string {
	return []string{
		"movie_now_playing",
		"trending_movie_week",
		"movie_upcoming",
		"tv_on_the_air",
		"movie_top_rated",
		"tv_top_rated",
		"movie_popular",
		"tv_popular",
		"animation",
	}
}
