package discover

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vadimtrunov/cinescope/internal/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errUpstream = errors.New("upstream unavailable")

// fakeCatalog serves canned listing pages and details.
type fakeCatalog struct {
	mu         sync.Mutex
	pages      map[string]*core.ResultPage // key: query#page
	listErr    error
	details    map[int]*core.Details
	detailErrs map[int]error
	delay      func(id int) time.Duration

	listCalls   []string
	detailCalls atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		pages:      make(map[string]*core.ResultPage),
		details:    make(map[int]*core.Details),
		detailErrs: make(map[int]error),
	}
}

func pageKey(q core.Query, n int) string {
	return fmt.Sprintf("%s#%d", q.Encode(), n)
}

func (f *fakeCatalog) setPage(q core.Query, n int, page *core.ResultPage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[pageKey(q, n)] = page
}

func (f *fakeCatalog) List(_ context.Context, q core.Query, n int) (*core.ResultPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls = append(f.listCalls, pageKey(q, n))
	if f.listErr != nil {
		return nil, f.listErr
	}
	if p, ok := f.pages[pageKey(q, n)]; ok {
		return p, nil
	}
	return &core.ResultPage{Page: n}, nil
}

func (f *fakeCatalog) Details(ctx context.Context, _ core.MediaType, id int) (*core.Details, error) {
	f.detailCalls.Add(1)
	cur := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		prev := f.maxInFlight.Load()
		if cur <= prev || f.maxInFlight.CompareAndSwap(prev, cur) {
			break
		}
	}

	if f.delay != nil {
		select {
		case <-time.After(f.delay(id)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.detailErrs[id]; ok {
		return nil, err
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return &core.Details{ID: id, Runtime: 90}, nil
}

func (f *fakeCatalog) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listCalls...)
}

// gatedSource blocks fetches of gated queries until released.
type gatedSource struct {
	inner   PageSource
	gates   map[string]chan struct{}
	started chan string
}

func newGatedSource(inner PageSource) *gatedSource {
	return &gatedSource{
		inner:   inner,
		gates:   make(map[string]chan struct{}),
		started: make(chan string, 16),
	}
}

func (g *gatedSource) gate(q core.Query) chan struct{} {
	ch := make(chan struct{})
	g.gates[q.Encode()] = ch
	return ch
}

func (g *gatedSource) Fetch(ctx context.Context, q core.Query, n int) (Page, error) {
	g.started <- q.Encode()
	if ch, ok := g.gates[q.Encode()]; ok {
		<-ch
	}
	return g.inner.Fetch(ctx, q, n)
}

func results(ids ...int) []core.Result {
	out := make([]core.Result, len(ids))
	for i, id := range ids {
		out[i] = core.Result{ID: id, Title: fmt.Sprintf("Title %d", id)}
	}
	return out
}
