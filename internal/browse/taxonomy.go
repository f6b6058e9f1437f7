package browse

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

// Taxonomy caches the genre and country lists for the life of the process.
type Taxonomy struct {
	provider core.MetadataProvider

	mu        sync.Mutex
	genres    map[core.MediaType][]core.Genre
	countries []core.Country
}

// NewTaxonomy creates a Taxonomy.
func NewTaxonomy(provider core.MetadataProvider) *Taxonomy {
	return &Taxonomy{
		provider: provider,
		genres:   make(map[core.MediaType][]core.Genre),
	}
}

// Genres returns the genres of a media type. Failures are not cached.
func (t *Taxonomy) Genres(ctx context.Context, mediaType core.MediaType) ([]core.Genre, error) {
	t.mu.Lock()
	cached, ok := t.genres[mediaType]
	t.mu.Unlock()
	if ok {
		return cached, nil
	}

	genres, err := t.provider.Genres(ctx, mediaType)
	if err != nil {
		return nil, fmt.Errorf("genres %s: %w", mediaType, err)
	}
	t.mu.Lock()
	t.genres[mediaType] = genres
	t.mu.Unlock()
	return genres, nil
}

// Countries returns the production countries. Failures are not cached.
func (t *Taxonomy) Countries(ctx context.Context) ([]core.Country, error) {
	t.mu.Lock()
	cached := t.countries
	t.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	countries, err := t.provider.Countries(ctx)
	if err != nil {
		return nil, fmt.Errorf("countries: %w", err)
	}
	t.mu.Lock()
	t.countries = countries
	t.mu.Unlock()
	return countries, nil
}

// Lookup returns a genre name resolver bound to ctx. Lists that fail to load
// resolve nothing, so titles fall back to the generic genre label.
func (t *Taxonomy) Lookup(ctx context.Context) discover.GenreLookup {
	return func(mediaType core.MediaType, id int) (string, bool) {
		genres, err := t.Genres(ctx, mediaType)
		if err != nil {
			return "", false
		}
		for _, g := range genres {
			if g.ID == id {
				return g.Name, true
			}
		}
		return "", false
	}
}

// ResolveGenre turns a genre ID or (possibly misspelled) name into an ID.
func (t *Taxonomy) ResolveGenre(ctx context.Context, mediaType core.MediaType, nameOrID string) (int, error) {
	nameOrID = strings.TrimSpace(nameOrID)
	if id, err := strconv.Atoi(nameOrID); err == nil && id > 0 {
		return id, nil
	}
	genres, err := t.Genres(ctx, mediaType)
	if err != nil {
		return 0, err
	}
	names := make([]string, len(genres))
	for i, g := range genres {
		if strings.EqualFold(g.Name, nameOrID) {
			return g.ID, nil
		}
		names[i] = g.Name
	}
	if i, ok := bestMatch(nameOrID, names); ok {
		return genres[i].ID, nil
	}
	return 0, fmt.Errorf("unknown %s genre %q", mediaType, nameOrID)
}

// ResolveCountry turns an ISO code or country name into an upper-case code.
func (t *Taxonomy) ResolveCountry(ctx context.Context, nameOrCode string) (string, error) {
	nameOrCode = strings.TrimSpace(nameOrCode)
	countries, err := t.Countries(ctx)
	if err != nil {
		if len(nameOrCode) == 2 {
			return strings.ToUpper(nameOrCode), nil
		}
		return "", err
	}
	names := make([]string, len(countries))
	for i, c := range countries {
		if strings.EqualFold(c.Code, nameOrCode) || strings.EqualFold(c.Name, nameOrCode) {
			return c.Code, nil
		}
		names[i] = c.Name
	}
	if i, ok := bestMatch(nameOrCode, names); ok {
		return countries[i].Code, nil
	}
	return "", fmt.Errorf("unknown country %q", nameOrCode)
}

func bestMatch(pattern string, names []string) (int, bool) {
	if pattern == "" {
		return 0, false
	}
	matches := fuzzy.Find(pattern, names)
	if len(matches) == 0 {
		return 0, false
	}
	return matches[0].Index, true
}
