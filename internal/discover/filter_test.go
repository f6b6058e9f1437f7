package discover

import (
	"net/url"
	"slices"
	"testing"

	"github.com/vadimtrunov/cinescope/internal/core"
)

func TestFilterToggleSetSemantics(t *testing.T) {
	t.Parallel()

	base := FilterState{}.ToggleGenre(16)
	added := base.ToggleGenre(28)
	removed := added.ToggleGenre(16)

	if !slices.Equal(base.Genres, []int{16}) {
		t.Errorf("base mutated: %v", base.Genres)
	}
	if !slices.Equal(added.Genres, []int{16, 28}) {
		t.Errorf("added = %v", added.Genres)
	}
	if !slices.Equal(removed.Genres, []int{28}) {
		t.Errorf("removed = %v", removed.Genres)
	}

	c := FilterState{}.ToggleCountry("us").ToggleCountry("US")
	if len(c.Countries) != 0 {
		t.Errorf("country toggle should be case-insensitive: %v", c.Countries)
	}

	y := FilterState{}.ToggleYear(2000).ToggleYear(2001).ToggleYear(2000)
	if !slices.Equal(y.Years, []int{2001}) {
		t.Errorf("years = %v", y.Years)
	}
}

func TestFilterIsEmptyAndReset(t *testing.T) {
	t.Parallel()

	if !(FilterState{}).IsEmpty() {
		t.Error("zero filter should be empty")
	}
	f := FilterState{}.WithRating(6).WithSort(SortBy{Field: SortVoteAverage, Order: Desc})
	if f.IsEmpty() {
		t.Error("filter with rating should not be empty")
	}
	if !f.Reset().IsEmpty() {
		t.Error("Reset should clear all facets")
	}
	if f.WithoutRating().Rating != nil {
		t.Error("WithoutRating should clear rating")
	}
	if f.Rating == nil || *f.Rating != 6 {
		t.Error("WithoutRating mutated receiver")
	}
}

func TestFilterClone(t *testing.T) {
	t.Parallel()

	f := FilterState{Genres: []int{1}}.WithRating(5)
	c := f.Clone()
	c.Genres[0] = 99
	*c.Rating = 9
	if f.Genres[0] != 1 || *f.Rating != 5 {
		t.Errorf("clone shares memory: %+v", f)
	}
}

func TestParseSortBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    SortBy
		wantErr bool
	}{
		{"popularity.desc", SortBy{SortPopularity, Desc}, false},
		{"vote_average.asc", SortBy{SortVoteAverage, Asc}, false},
		{"RELEASE_DATE", SortBy{SortReleaseDate, Desc}, false},
		{"vote_count.desc", SortBy{SortVoteCount, Desc}, false},
		{"revenue.desc", SortBy{}, true},
		{"popularity.sideways", SortBy{}, true},
		{"", SortBy{}, true},
	}
	for _, tt := range tests {
		got, err := ParseSortBy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortBy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSortBy(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	if got := (SortBy{}).String(); got != "popularity.desc" {
		t.Errorf("zero SortBy = %q", got)
	}
	if got := (SortBy{Field: SortVoteCount}).String(); got != "vote_count.desc" {
		t.Errorf("field-only SortBy = %q", got)
	}
}

func TestFilterFromValues(t *testing.T) {
	t.Parallel()

	v := url.Values{
		"type":    {"tv"},
		"genre":   {"18", "80,18"},
		"country": {"kr"},
		"year":    {"2016,2019"},
		"rating":  {"7.5"},
		"sort":    {"vote_average"},
		"page":    {"3"},
	}
	f, err := FilterFromValues(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.MediaType != core.MediaTV {
		t.Errorf("MediaType = %q", f.MediaType)
	}
	if !slices.Equal(f.Genres, []int{18, 80}) {
		t.Errorf("Genres = %v", f.Genres)
	}
	if !slices.Equal(f.Countries, []string{"KR"}) {
		t.Errorf("Countries = %v", f.Countries)
	}
	if !slices.Equal(f.Years, []int{2016, 2019}) {
		t.Errorf("Years = %v", f.Years)
	}
	if f.Rating == nil || *f.Rating != 7.5 {
		t.Errorf("Rating = %v", f.Rating)
	}
	if f.Sort != (SortBy{SortVoteAverage, Desc}) {
		t.Errorf("Sort = %+v", f.Sort)
	}
}

func TestFilterFromValues_Invalid(t *testing.T) {
	t.Parallel()

	tests := map[string]url.Values{
		"bad_type":       {"type": {"person"}},
		"genre_text":     {"genre": {"action"}},
		"genre_zero":     {"genre": {"0"}},
		"country_long":   {"country": {"usa"}},
		"country_digits": {"country": {"12"}},
		"year_low":       {"year": {"1800"}},
		"year_high":      {"year": {"2101"}},
		"rating_high":    {"rating": {"11"}},
		"rating_neg":     {"rating": {"-1"}},
		"rating_text":    {"rating": {"good"}},
		"sort_unknown":   {"sort": {"budget.desc"}},
	}
	for name, v := range tests {
		if _, err := FilterFromValues(v); err == nil {
			t.Errorf("%s: expected error for %v", name, v)
		}
	}
}

func TestFilterValuesRoundTrip(t *testing.T) {
	t.Parallel()

	f := FilterState{}.ToggleGenre(28).ToggleGenre(12).ToggleCountry("fr").ToggleYear(1995).
		WithRating(6.5).WithSort(SortBy{SortReleaseDate, Asc}).WithMediaType(core.MediaMovie)

	back, err := FilterFromValues(f.Values())
	if err != nil {
		t.Fatal(err)
	}
	qa, _ := BuildFilter(f, "")
	qb, _ := BuildFilter(back, "")
	if qa.Encode() != qb.Encode() {
		t.Errorf("round trip changed query: %q vs %q", qa.Encode(), qb.Encode())
	}
}

func TestFilterString(t *testing.T) {
	t.Parallel()

	if got := (FilterState{}).String(); got != "no filters" {
		t.Errorf("empty String() = %q", got)
	}
	f := FilterState{}.WithMediaType(core.MediaMovie).ToggleGenre(28).ToggleGenre(16).ToggleYear(2022).ToggleYear(2018)
	if got := f.String(); got != "type=movie genre=16,28 year=2018-2022" {
		t.Errorf("String() = %q", got)
	}
}
