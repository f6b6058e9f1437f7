package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/vadimtrunov/cinescope/internal/core"
)

func threePageCatalog(q core.Query) *fakeCatalog {
	cat := newFakeCatalog()
	for n := 1; n <= 3; n++ {
		cat.setPage(q, n, &core.ResultPage{Page: n, TotalPages: 3, Results: results(n*100 + 1, n*100 + 2)})
	}
	return cat
}

func newTestPaginator(cat *fakeCatalog) *Paginator {
	return NewPaginator(NewFetcher(cat, 4, discardLogger()))
}

func TestPaginator_PreviousAtFirstPageIsNoop(t *testing.T) {
	t.Parallel()

	cat := threePageCatalog(popular)
	p := newTestPaginator(cat)
	ctx := context.Background()

	first, err := p.FetchPage(ctx, popular, 1)
	if err != nil {
		t.Fatal(err)
	}
	callsBefore := len(cat.calls())

	got, err := p.PreviousPage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Number != 1 || got.Items[0].ID != first.Items[0].ID {
		t.Errorf("page changed: %+v", got)
	}
	if len(cat.calls()) != callsBefore {
		t.Error("PreviousPage at page 1 must not fetch")
	}
	cur, _ := p.Current()
	if cur.Number != 1 {
		t.Errorf("Current().Number = %d", cur.Number)
	}
}

func TestPaginator_NextAtLastPageIsNoop(t *testing.T) {
	t.Parallel()

	cat := threePageCatalog(popular)
	p := newTestPaginator(cat)
	ctx := context.Background()

	if _, err := p.FetchPage(ctx, popular, 3); err != nil {
		t.Fatal(err)
	}
	callsBefore := len(cat.calls())

	got, err := p.NextPage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Number != 3 {
		t.Errorf("Number = %d, want 3", got.Number)
	}
	if len(cat.calls()) != callsBefore {
		t.Error("NextPage at last page must not fetch")
	}
}

func TestPaginator_StartPastLastPage(t *testing.T) {
	t.Parallel()

	cat := threePageCatalog(popular)
	cat.setPage(popular, 5, &core.ResultPage{Page: 5, TotalPages: 3})
	p := newTestPaginator(cat)
	ctx := context.Background()

	last, err := p.FetchPage(ctx, popular, 5)
	if err != nil {
		t.Fatal(err)
	}
	if last.Number != 3 || last.Status != StatusReady || len(last.Items) != 2 || last.Items[0].ID != 301 {
		t.Fatalf("page past the end = %+v, want page 3 with its items", last)
	}

	prev, err := p.PreviousPage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if prev.Number != 2 || prev.Items[0].ID != 201 {
		t.Errorf("previous = %+v, want page 2", prev)
	}

	want := []string{pageKey(popular, 5), pageKey(popular, 3), pageKey(popular, 2)}
	calls := cat.calls()
	if len(calls) != len(want) {
		t.Fatalf("list calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("list call %d = %s, want %s", i, calls[i], want[i])
		}
	}
}

func TestPaginator_NavigatesAdjacentPages(t *testing.T) {
	t.Parallel()

	p := newTestPaginator(threePageCatalog(popular))
	ctx := context.Background()

	if _, err := p.FetchPage(ctx, popular, 1); err != nil {
		t.Fatal(err)
	}
	next, err := p.NextPage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next.Number != 2 || next.Items[0].ID != 201 {
		t.Errorf("next = %+v", next)
	}
	prev, err := p.PreviousPage(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if prev.Number != 1 || prev.Items[0].ID != 101 {
		t.Errorf("prev = %+v", prev)
	}
}

func TestPaginator_NothingLoadedIsNoop(t *testing.T) {
	t.Parallel()

	cat := threePageCatalog(popular)
	p := newTestPaginator(cat)

	if page, err := p.NextPage(context.Background()); err != nil || page.Number != 0 {
		t.Errorf("NextPage on empty paginator = %+v, %v", page, err)
	}
	if page, err := p.PreviousPage(context.Background()); err != nil || page.Number != 0 {
		t.Errorf("PreviousPage on empty paginator = %+v, %v", page, err)
	}
	if len(cat.calls()) != 0 {
		t.Error("no fetch expected")
	}
	if _, err := p.Reload(context.Background()); !errors.Is(err, ErrNoQuery) {
		t.Errorf("Reload without query: %v", err)
	}
}

func TestPaginator_QueryChangeResetsToFirstPage(t *testing.T) {
	t.Parallel()

	action, _ := BuildFilter(FilterState{}.ToggleGenre(28), core.MediaMovie)
	comedy, _ := BuildFilter(FilterState{}.ToggleGenre(35), core.MediaMovie)

	cat := threePageCatalog(action)
	for n := 1; n <= 3; n++ {
		cat.setPage(comedy, n, &core.ResultPage{Page: n, TotalPages: 3, Results: results(n*1000 + 1)})
	}
	p := newTestPaginator(cat)
	ctx := context.Background()

	if _, err := p.FetchPage(ctx, action, 3); err != nil {
		t.Fatal(err)
	}

	page, err := p.FetchPage(ctx, comedy, 3)
	if err != nil {
		t.Fatal(err)
	}
	if page.Number != 1 || page.Items[0].ID != 1001 {
		t.Errorf("query change should fetch page 1, got %+v", page)
	}
	calls := cat.calls()
	if calls[len(calls)-1] != pageKey(comedy, 1) {
		t.Errorf("last request = %q, want page 1 of new query", calls[len(calls)-1])
	}

	// Same query keeps the requested page.
	page, err = p.FetchPage(ctx, comedy, 2)
	if err != nil {
		t.Fatal(err)
	}
	if page.Number != 2 {
		t.Errorf("same query: Number = %d, want 2", page.Number)
	}
}

func TestPaginator_StaleFetchDoesNotOverwrite(t *testing.T) {
	t.Parallel()

	slow := core.Query{Path: "movie/top_rated", MediaType: core.MediaMovie}
	fast := core.Query{Path: "tv/popular", MediaType: core.MediaTV}

	cat := newFakeCatalog()
	cat.setPage(slow, 1, &core.ResultPage{Page: 1, TotalPages: 1, Results: results(1)})
	cat.setPage(fast, 1, &core.ResultPage{Page: 1, TotalPages: 1, Results: results(2)})

	src := newGatedSource(NewFetcher(cat, 4, discardLogger()))
	release := src.gate(slow)
	p := NewPaginator(src)
	ctx := context.Background()

	type outcome struct {
		page Page
		err  error
	}
	slowDone := make(chan outcome, 1)
	go func() {
		page, err := p.FetchPage(ctx, slow, 1)
		slowDone <- outcome{page, err}
	}()
	<-src.started // slow fetch is in flight

	page, err := p.FetchPage(ctx, fast, 1)
	if err != nil {
		t.Fatal(err)
	}
	if page.Items[0].ID != 2 {
		t.Fatalf("fast page = %+v", page)
	}
	<-src.started

	close(release)
	res := <-slowDone
	if !errors.Is(res.err, ErrStale) {
		t.Fatalf("slow fetch error = %v, want ErrStale", res.err)
	}

	cur, ok := p.Current()
	if !ok || len(cur.Items) != 1 || cur.Items[0].ID != 2 {
		t.Errorf("current page overwritten by stale fetch: %+v", cur)
	}
	if p.Query().Encode() != fast.Encode() {
		t.Errorf("active query = %q", p.Query().Encode())
	}
}

func TestPaginator_SetQueryInvalidatesInFlight(t *testing.T) {
	t.Parallel()

	q := core.Query{Path: "movie/upcoming", MediaType: core.MediaMovie}
	cat := newFakeCatalog()
	cat.setPage(q, 1, &core.ResultPage{Page: 1, TotalPages: 1, Results: results(7)})

	src := newGatedSource(NewFetcher(cat, 4, discardLogger()))
	release := src.gate(q)
	p := NewPaginator(src)

	done := make(chan error, 1)
	go func() {
		_, err := p.FetchPage(context.Background(), q, 1)
		done <- err
	}()
	<-src.started

	next := core.Query{Path: "tv/on_the_air", MediaType: core.MediaTV}
	p.SetQuery(next)
	close(release)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
	if _, ok := p.Current(); ok {
		t.Error("no page should be loaded after SetQuery")
	}
	if p.Query().Encode() != next.Encode() {
		t.Errorf("Query() = %q", p.Query().Encode())
	}
}

func TestPaginator_ReloadAfterFailure(t *testing.T) {
	t.Parallel()

	cat := threePageCatalog(popular)
	p := newTestPaginator(cat)
	ctx := context.Background()

	if _, err := p.FetchPage(ctx, popular, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := p.NextPage(ctx); err != nil {
		t.Fatal(err)
	}

	cat.mu.Lock()
	cat.listErr = errUpstream
	cat.mu.Unlock()

	failed, err := p.Reload(ctx)
	if !errors.Is(err, errUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if failed.Status != StatusFailed || failed.Number != 2 {
		t.Errorf("failed page = %+v", failed)
	}

	cat.mu.Lock()
	cat.listErr = nil
	cat.mu.Unlock()

	page, err := p.Reload(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if page.Status != StatusReady || page.Number != 2 {
		t.Errorf("reloaded page = %+v", page)
	}
}

func TestGuard(t *testing.T) {
	t.Parallel()

	var g Guard
	a := g.Take()
	if !g.IsCurrent(a) {
		t.Error("fresh ticket should be current")
	}
	b := g.Take()
	if g.IsCurrent(a) || !g.IsCurrent(b) {
		t.Error("newer ticket should supersede older")
	}
	g.Invalidate()
	if g.IsCurrent(b) {
		t.Error("Invalidate should supersede all tickets")
	}
}
