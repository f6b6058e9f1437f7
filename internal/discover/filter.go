package discover

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/vadimtrunov/cinescope/internal/core"
)

// SortField is a discover sort key.
type SortField string

// Supported sort fields.
const (
	SortPopularity  SortField = "popularity"
	SortReleaseDate SortField = "release_date"
	SortVoteAverage SortField = "vote_average"
	SortVoteCount   SortField = "vote_count"
)

// SortOrder is the direction of a sort.
type SortOrder string

// Supported sort orders.
const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// Year bounds accepted by filters.
const (
	MinYear = 1870
	MaxYear = 2100
)

// SortBy is a field and direction. The zero value means popularity.desc.
type SortBy struct {
	Field SortField
	Order SortOrder
}

// DefaultSort is applied when a filter has no explicit sort.
var DefaultSort = SortBy{Field: SortPopularity, Order: Desc}

// IsZero reports whether no sort was chosen.
func (s SortBy) IsZero() bool {
	return s.Field == "" && s.Order == ""
}

// String returns the provider form, e.g. "vote_average.desc".
func (s SortBy) String() string {
	if s.IsZero() {
		s = DefaultSort
	}
	if s.Field == "" {
		s.Field = DefaultSort.Field
	}
	if s.Order == "" {
		s.Order = DefaultSort.Order
	}
	return string(s.Field) + "." + string(s.Order)
}

// ParseSortBy parses "field" or "field.order". A missing order means desc.
func ParseSortBy(s string) (SortBy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	field, order, hasOrder := strings.Cut(s, ".")
	sb := SortBy{Field: SortField(field), Order: Desc}
	switch sb.Field {
	case SortPopularity, SortReleaseDate, SortVoteAverage, SortVoteCount:
	default:
		return SortBy{}, fmt.Errorf("unknown sort field %q", field)
	}
	if hasOrder {
		sb.Order = SortOrder(order)
		if sb.Order != Asc && sb.Order != Desc {
			return SortBy{}, fmt.Errorf("unknown sort order %q (want asc or desc)", order)
		}
	}
	return sb, nil
}

// FilterState holds the facets a user selected for one view session.
// Collections are sets; an empty collection means no constraint.
// Methods never modify the receiver.
type FilterState struct {
	Genres    []int
	Countries []string // ISO 3166-1 alpha-2, upper case
	Years     []int
	Rating    *float64 // Minimum vote average
	Sort      SortBy
	MediaType core.MediaType // Empty keeps the caller's context
}

// IsEmpty reports whether no facet, sort or media type is set.
func (f FilterState) IsEmpty() bool {
	return len(f.Genres) == 0 && len(f.Countries) == 0 && len(f.Years) == 0 &&
		f.Rating == nil && f.Sort.IsZero() && f.MediaType == ""
}

// ToggleGenre adds the genre if absent, removes it otherwise.
func (f FilterState) ToggleGenre(id int) FilterState {
	f.Genres = toggle(f.Genres, id)
	return f
}

// ToggleCountry adds the country if absent, removes it otherwise.
func (f FilterState) ToggleCountry(code string) FilterState {
	f.Countries = toggle(f.Countries, strings.ToUpper(strings.TrimSpace(code)))
	return f
}

// ToggleYear adds the year if absent, removes it otherwise.
func (f FilterState) ToggleYear(year int) FilterState {
	f.Years = toggle(f.Years, year)
	return f
}

// WithRating sets the minimum vote average.
func (f FilterState) WithRating(threshold float64) FilterState {
	f.Rating = &threshold
	return f
}

// WithoutRating clears the rating threshold.
func (f FilterState) WithoutRating() FilterState {
	f.Rating = nil
	return f
}

// WithSort sets the sort order.
func (f FilterState) WithSort(s SortBy) FilterState {
	f.Sort = s
	return f
}

// WithMediaType pins the filter to movies or series.
func (f FilterState) WithMediaType(mt core.MediaType) FilterState {
	f.MediaType = mt
	return f
}

// Reset returns an empty filter.
func (f FilterState) Reset() FilterState {
	return FilterState{}
}

// Clone returns a deep copy.
func (f FilterState) Clone() FilterState {
	f.Genres = slices.Clone(f.Genres)
	f.Countries = slices.Clone(f.Countries)
	f.Years = slices.Clone(f.Years)
	if f.Rating != nil {
		r := *f.Rating
		f.Rating = &r
	}
	return f
}

// Values is the inverse of FilterFromValues. Sets are emitted sorted.
func (f FilterState) Values() url.Values {
	v := url.Values{}
	if f.MediaType != "" {
		v.Set("type", string(f.MediaType))
	}
	for _, g := range sortedCopy(f.Genres) {
		v.Add("genre", strconv.Itoa(g))
	}
	for _, c := range sortedCopy(f.Countries) {
		v.Add("country", c)
	}
	for _, y := range sortedCopy(f.Years) {
		v.Add("year", strconv.Itoa(y))
	}
	if f.Rating != nil {
		v.Set("rating", strconv.FormatFloat(*f.Rating, 'f', -1, 64))
	}
	if !f.Sort.IsZero() {
		v.Set("sort", f.Sort.String())
	}
	return v
}

// String summarizes the active facets, e.g. "type=movie genre=16,28 year=2018-2022".
func (f FilterState) String() string {
	if f.IsEmpty() {
		return "no filters"
	}
	var parts []string
	if f.MediaType != "" {
		parts = append(parts, "type="+string(f.MediaType))
	}
	if len(f.Genres) > 0 {
		parts = append(parts, "genre="+joinInts(sortedCopy(f.Genres)))
	}
	if len(f.Countries) > 0 {
		parts = append(parts, "country="+strings.Join(sortedCopy(f.Countries), ","))
	}
	if len(f.Years) > 0 {
		lo, hi := slices.Min(f.Years), slices.Max(f.Years)
		if lo == hi {
			parts = append(parts, "year="+strconv.Itoa(lo))
		} else {
			parts = append(parts, fmt.Sprintf("year=%d-%d", lo, hi))
		}
	}
	if f.Rating != nil {
		parts = append(parts, "rating>="+strconv.FormatFloat(*f.Rating, 'f', -1, 64))
	}
	if !f.Sort.IsZero() {
		parts = append(parts, "sort="+f.Sort.String())
	}
	return strings.Join(parts, " ")
}

// FilterFromValues parses type, genre, country, year, rating and sort from
// query-string style values. genre, country and year accept repeated keys and
// comma lists. Other keys are ignored.
func FilterFromValues(v url.Values) (FilterState, error) {
	var f FilterState

	if t := strings.TrimSpace(v.Get("type")); t != "" {
		mt, err := core.ParseMediaType(t)
		if err != nil {
			return FilterState{}, err
		}
		f.MediaType = mt
	}

	for _, s := range splitList(v["genre"]) {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			return FilterState{}, fmt.Errorf("genre %q must be a positive integer", s)
		}
		if !slices.Contains(f.Genres, id) {
			f.Genres = append(f.Genres, id)
		}
	}

	for _, s := range splitList(v["country"]) {
		if !isCountryCode(s) {
			return FilterState{}, fmt.Errorf("country %q must be a two-letter code", s)
		}
		code := strings.ToUpper(s)
		if !slices.Contains(f.Countries, code) {
			f.Countries = append(f.Countries, code)
		}
	}

	for _, s := range splitList(v["year"]) {
		year, err := strconv.Atoi(s)
		if err != nil || year < MinYear || year > MaxYear {
			return FilterState{}, fmt.Errorf("year %q must be between %d and %d", s, MinYear, MaxYear)
		}
		if !slices.Contains(f.Years, year) {
			f.Years = append(f.Years, year)
		}
	}

	if r := strings.TrimSpace(v.Get("rating")); r != "" {
		rating, err := strconv.ParseFloat(r, 64)
		if err != nil || rating < 0 || rating > 10 {
			return FilterState{}, fmt.Errorf("rating %q must be a number between 0 and 10", r)
		}
		f.Rating = &rating
	}

	if s := strings.TrimSpace(v.Get("sort")); s != "" {
		sb, err := ParseSortBy(s)
		if err != nil {
			return FilterState{}, err
		}
		f.Sort = sb
	}

	return f, nil
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

func sortedCopy[T int | string](s []T) []T {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}
