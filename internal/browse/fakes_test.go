package browse

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/vadimtrunov/cinescope/internal/core"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var errUpstream = errors.New("upstream unavailable")

// fakeProvider is an in-memory MetadataProvider. Zero-valued maps yield
// empty responses.
type fakeProvider struct {
	mu sync.Mutex

	lists     map[string]*core.ResultPage // key: query path
	listErrs  map[string]error
	details   map[int]*core.Details
	detailErr error

	credits      []core.CastMember
	creditsErr   error
	recs         []core.Result
	recsErr      error
	videos       []core.Video
	videosErr    error
	search       map[string]*core.ResultPage
	searchErr    error
	searchPages  []int
	onSearch     func(query string)
	genres       map[core.MediaType][]core.Genre
	genresErr    error
	genreCalls   int
	countries    []core.Country
	countriesErr error
	people       []core.Person
	person       *core.PersonDetails
	personErr    error
	personCreds  []core.Result
	personCredEr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		lists:    make(map[string]*core.ResultPage),
		listErrs: make(map[string]error),
		details:  make(map[int]*core.Details),
		search:   make(map[string]*core.ResultPage),
		genres:   make(map[core.MediaType][]core.Genre),
	}
}

func (f *fakeProvider) List(_ context.Context, q core.Query, page int) (*core.ResultPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.listErrs[q.Path]; ok {
		return nil, err
	}
	if p, ok := f.lists[q.Path]; ok {
		return p, nil
	}
	return &core.ResultPage{Page: page}, nil
}

func (f *fakeProvider) Details(_ context.Context, mediaType core.MediaType, id int) (*core.Details, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return &core.Details{ID: id, MediaType: mediaType, Runtime: 100}, nil
}

func (f *fakeProvider) SearchMulti(_ context.Context, query string, page int) (*core.ResultPage, error) {
	if f.onSearch != nil {
		f.onSearch(query)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchPages = append(f.searchPages, page)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if p, ok := f.search[query]; ok {
		return p, nil
	}
	return &core.ResultPage{Page: page}, nil
}

func (f *fakeProvider) Credits(context.Context, core.MediaType, int) ([]core.CastMember, error) {
	return f.credits, f.creditsErr
}

func (f *fakeProvider) Recommendations(context.Context, core.MediaType, int) ([]core.Result, error) {
	return f.recs, f.recsErr
}

func (f *fakeProvider) Videos(context.Context, core.MediaType, int) ([]core.Video, error) {
	return f.videos, f.videosErr
}

func (f *fakeProvider) Genres(_ context.Context, mediaType core.MediaType) ([]core.Genre, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genreCalls++
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres[mediaType], nil
}

func (f *fakeProvider) Countries(context.Context) ([]core.Country, error) {
	return f.countries, f.countriesErr
}

func (f *fakeProvider) PopularPeople(context.Context, int) ([]core.Person, error) {
	return f.people, nil
}

func (f *fakeProvider) Person(_ context.Context, id int) (*core.PersonDetails, error) {
	if f.personErr != nil {
		return nil, f.personErr
	}
	if f.person != nil {
		return f.person, nil
	}
	return &core.PersonDetails{ID: id}, nil
}

func (f *fakeProvider) PersonCredits(context.Context, int) ([]core.Result, error) {
	return f.personCreds, f.personCredEr
}

func (f *fakeProvider) Name() string { return "fake" }

func movie(id int, title string) core.Result {
	return core.Result{ID: id, MediaType: core.MediaMovie, Kind: "movie", Title: title, PosterPath: "/p.jpg"}
}

func series(id int, title string) core.Result {
	return core.Result{ID: id, MediaType: core.MediaTV, Kind: "tv", Title: title, PosterPath: "/p.jpg"}
}

func newTestService(p *fakeProvider) *Service {
	return New(p, Options{}, discardLogger())
}
