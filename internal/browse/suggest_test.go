package browse

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
	"github.com/vadimtrunov/cinescope/internal/metrics"
)

func TestRankByTitle(t *testing.T) {
	t.Parallel()
	results := []core.Result{
		{ID: 1, Title: "The Dark Knight"},
		{ID: 2, Title: "Batman Begins"},
		{ID: 3, Title: "Batman"},
		{ID: 4, Title: "Lego Batman Movie"},
		{ID: 5, Title: "Bat*21"},
		{ID: 6, Title: "Btmn Returns"},
	}

	got := RankByTitle("batman", results)
	want := []int{3, 2, 4, 1, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	// Exact, prefix, substring first; the rest by fuzzy then edit distance.
	for i, id := range want[:3] {
		if got[i].ID != id {
			t.Errorf("position %d = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestRankByTitle_StableOnTies(t *testing.T) {
	t.Parallel()
	results := []core.Result{
		{ID: 1, Title: "Alien Resurrection"},
		{ID: 2, Title: "Alien Covenant"},
		{ID: 3, Title: "Alien Romulus"},
	}
	got := RankByTitle("alien", results)
	for i, r := range got {
		if r.ID != i+1 {
			t.Fatalf("ties must keep provider order, got %+v", got)
		}
	}
}

func TestMatchScore(t *testing.T) {
	t.Parallel()
	tests := []struct {
		title, query string
		want         int
	}{
		{"inception", "inception", 0},
		{"inception 2", "inception", 10},
		{"the inception", "inception", 50},
	}
	for _, tt := range tests {
		if got := matchScore(tt.title, tt.query); got != tt.want {
			t.Errorf("matchScore(%q, %q) = %d, want %d", tt.title, tt.query, got, tt.want)
		}
	}
	if fz := matchScore("interstellar", "intrs"); fz < 100 || fz >= 10000 {
		t.Errorf("subsequence match scored %d, want fuzzy tier", fz)
	}
	if lv := matchScore("heat", "zzz"); lv < 10000 {
		t.Errorf("non-match scored %d, want edit distance tier", lv)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()
	p := newFakeProvider()
	results := []core.Result{
		{ID: 9, Kind: "person", Title: "Inception Person"},
		movie(1, "The Inception Story"),
		series(2, "Inception"),
	}
	for i := range 10 {
		results = append(results, movie(100+i, "Inception Sequel"))
	}
	p.search["inception"] = &core.ResultPage{Results: results}
	svc := newTestService(p)
	sg := svc.NewSuggester()

	items, err := sg.Suggest(context.Background(), "  inception ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != DefaultSuggestionLimit {
		t.Fatalf("expected %d suggestions, got %d", DefaultSuggestionLimit, len(items))
	}
	if items[0].ID != 2 || items[0].MediaType != core.MediaTV {
		t.Errorf("best match = %+v, want series 2", items[0])
	}
	for _, it := range items {
		if it.ID == 9 {
			t.Error("people must not be suggested")
		}
	}
}

func TestSuggest_Blank(t *testing.T) {
	t.Parallel()
	sg := newTestService(newFakeProvider()).NewSuggester()

	items, err := sg.Suggest(context.Background(), "   ")
	if err != nil || items != nil {
		t.Errorf("blank query = %v, %v; want nil, nil", items, err)
	}
}

func TestSuggest_Error(t *testing.T) {
	t.Parallel()
	p := newFakeProvider()
	p.searchErr = errUpstream
	sg := newTestService(p).NewSuggester()

	if _, err := sg.Suggest(context.Background(), "x"); !errors.Is(err, errUpstream) {
		t.Errorf("expected upstream error, got %v", err)
	}
}

func TestSuggest_LatestQueryWins(t *testing.T) {
	t.Parallel()
	p := newFakeProvider()
	p.search["in"] = &core.ResultPage{Results: []core.Result{movie(1, "Insomnia")}}
	p.search["inception"] = &core.ResultPage{Results: []core.Result{movie(2, "Inception")}}

	started := make(chan struct{})
	release := make(chan struct{})
	p.onSearch = func(query string) {
		if query == "in" {
			close(started)
			<-release
		}
	}
	sg := newTestService(p).NewSuggester()

	type outcome struct {
		items []discover.Item
		err   error
	}
	slow := make(chan outcome, 1)
	go func() {
		items, err := sg.Suggest(context.Background(), "in")
		slow <- outcome{items, err}
	}()
	<-started

	items, err := sg.Suggest(context.Background(), "inception")
	if err != nil || len(items) != 1 || items[0].ID != 2 {
		t.Fatalf("latest query = %+v, %v", items, err)
	}

	close(release)
	got := <-slow
	if !errors.Is(got.err, discover.ErrStale) {
		t.Errorf("superseded query err = %v, want ErrStale", got.err)
	}
	if got.items != nil {
		t.Errorf("superseded query must not return items, got %+v", got.items)
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	p := newFakeProvider()
	p.search["heat"] = &core.ResultPage{
		Results:      []core.Result{movie(949, "Heat"), {ID: 5, Kind: "person", Title: "Heat Person"}},
		Page:         1,
		TotalPages:   1,
		TotalResults: 2,
	}
	svc := newTestService(p)

	page, err := svc.Search(context.Background(), "heat", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Number != 1 {
		t.Errorf("page number = %d, want clamped to 1", page.Number)
	}
	if len(page.Items) != 1 || page.Items[0].ID != 949 {
		t.Errorf("items = %+v", page.Items)
	}
	if page.Status != discover.StatusReady {
		t.Errorf("status = %s", page.Status)
	}

	empty, err := svc.Search(context.Background(), " ", 1)
	if err != nil || empty.Status != discover.StatusEmpty {
		t.Errorf("blank search = %+v, %v", empty, err)
	}

	p.searchErr = errUpstream
	failed, err := svc.Search(context.Background(), "heat", 2)
	if !errors.Is(err, errUpstream) || failed.Status != discover.StatusFailed || failed.Number != 2 {
		t.Errorf("failed search = %+v, %v", failed, err)
	}
}

func TestSearch_PastLastPageListsLastPage(t *testing.T) {
	t.Parallel()
	p := newFakeProvider()
	p.search["alien"] = &core.ResultPage{
		Results:    []core.Result{movie(348, "Alien")},
		Page:       2,
		TotalPages: 2,
	}
	svc := newTestService(p)

	page, err := svc.Search(context.Background(), "alien", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Number != 2 || page.Status != discover.StatusReady || len(page.Items) != 1 {
		t.Errorf("page = %+v, want page 2 with its items", page)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.searchPages) != 2 || p.searchPages[0] != 7 || p.searchPages[1] != 2 {
		t.Errorf("search pages = %v, want [7 2]", p.searchPages)
	}
}

func TestSearch_FailureIsLoggedAndCounted(t *testing.T) {
	p := newFakeProvider()
	p.searchErr = errUpstream
	var logs bytes.Buffer
	svc := New(p, Options{}, slog.New(slog.NewTextHandler(&logs, nil)))

	failed := metrics.PagesFetched.WithLabelValues(string(discover.StatusFailed))
	before := testutil.ToFloat64(failed)

	if _, err := svc.Search(context.Background(), "heat", 1); !errors.Is(err, errUpstream) {
		t.Fatalf("err = %v, want upstream error", err)
	}
	if got := testutil.ToFloat64(failed); got < before+1 {
		t.Errorf("failed pages counter = %v, want at least %v", got, before+1)
	}
	if !strings.Contains(logs.String(), "listing failed") {
		t.Errorf("missing failure log, got %q", logs.String())
	}
}

func TestPaginator_PagesSearchResults(t *testing.T) {
	t.Parallel()
	p := newFakeProvider()
	p.search["alien"] = &core.ResultPage{
		Results:    []core.Result{movie(348, "Alien")},
		Page:       1,
		TotalPages: 3,
	}
	p.lists["movie/popular"] = &core.ResultPage{Results: []core.Result{{ID: 1, Title: "One"}}, Page: 1, TotalPages: 1}
	svc := newTestService(p)
	pg := svc.NewPaginator()

	page, err := pg.FetchPage(context.Background(), SearchQuery(" alien "), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].ID != 348 || !page.HasNext() {
		t.Errorf("search page = %+v", page)
	}

	cat, err := discover.ParseCategory("movie_popular")
	if err != nil {
		t.Fatal(err)
	}
	page, err = pg.FetchPage(context.Background(), cat.Query, 1)
	if err != nil || len(page.Items) != 1 || page.Items[0].ID != 1 {
		t.Errorf("category page = %+v, %v", page, err)
	}
}
