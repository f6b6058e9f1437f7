package core

import "testing"

func TestParseMediaType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    MediaType
		wantErr bool
	}{
		{"movie", MediaMovie, false},
		{"TV", MediaTV, false},
		{" tv ", MediaTV, false},
		{"person", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMediaType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMediaType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMediaType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQueryEncode(t *testing.T) {
	t.Parallel()

	q := Query{
		Path: "discover/movie",
		Params: []Param{
			{"with_genres", "28,12"},
			{"primary_release_date.gte", "2018-01-01"},
			{"sort_by", "popularity.desc"},
		},
	}
	want := "discover/movie?with_genres=28,12&primary_release_date.gte=2018-01-01&sort_by=popularity.desc"
	if got := q.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}

	if got := (Query{Path: "movie/popular"}).Encode(); got != "movie/popular" {
		t.Errorf("Encode() without params = %q", got)
	}
}

func TestQueryEncodeEscapesValues(t *testing.T) {
	t.Parallel()

	q := Query{Path: "search/multi", Params: []Param{{"query", "fast & furious"}}}
	if got := q.Encode(); got != "search/multi?query=fast+%26+furious" {
		t.Errorf("Encode() = %q", got)
	}
}

func TestQueryWith(t *testing.T) {
	t.Parallel()

	base := Query{Path: "discover/movie", Params: []Param{{"with_genres", "16"}}}

	appended := base.With("page", "2")
	if got := appended.Encode(); got != "discover/movie?with_genres=16&page=2" {
		t.Errorf("append: %q", got)
	}

	replaced := appended.With("with_genres", "28")
	if got := replaced.Encode(); got != "discover/movie?with_genres=28&page=2" {
		t.Errorf("replace: %q", got)
	}

	// The original is untouched.
	if got := base.Encode(); got != "discover/movie?with_genres=16" {
		t.Errorf("base mutated: %q", got)
	}
}

func TestQueryGetAndValues(t *testing.T) {
	t.Parallel()

	q := Query{Path: "discover/tv", Params: []Param{{"with_genres", "18"}, {"sort_by", "vote_count.asc"}}}
	if v, ok := q.Get("sort_by"); !ok || v != "vote_count.asc" {
		t.Errorf("Get(sort_by) = %q, %v", v, ok)
	}
	if _, ok := q.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}
	if got := q.Values().Get("with_genres"); got != "18" {
		t.Errorf("Values().Get(with_genres) = %q", got)
	}
}
