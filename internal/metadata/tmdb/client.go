// Package tmdb implements core.MetadataProvider against the TMDb v3 API.
package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/httpclient"
	"github.com/vadimtrunov/cinescope/internal/metrics"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultLanguage = "en-US"
	defaultCacheTTL = 15 * time.Minute
	imageBaseURL    = "https://image.tmdb.org/t/p/"
	maxBodySize     = 4 << 20
)

// Options configures a Client. Zero values fall back to TMDb defaults.
type Options struct {
	APIKey   string
	BaseURL  string
	Language string
	Region   string // Sent with search requests when set
	CacheTTL time.Duration
	HTTP     httpclient.Config
}

// APIError is a non-200 response from TMDb.
type APIError struct {
	Status  int
	Message string
	Path    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("tmdb API error %d on %s", e.Status, e.Path)
	}
	return fmt.Sprintf("tmdb API error %d on %s: %s", e.Status, e.Path, e.Message)
}

// IsNotFound reports whether err is a TMDb 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client is a TMDb API v3 client.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	region   string
	http     *httpclient.Client
	cache    *cache
	logger   *slog.Logger
}

var _ core.MetadataProvider = (*Client)(nil)

// New creates a new TMDb client.
func New(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = defaultLanguage
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.HTTP == (httpclient.Config{}) {
		opts.HTTP = httpclient.DefaultConfig()
	}
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiKey:   opts.APIKey,
		language: opts.Language,
		region:   opts.Region,
		http:     httpclient.New(opts.HTTP, logger),
		cache:    newCache(opts.CacheTTL),
		logger:   logger.With(slog.String("provider", "tmdb")),
	}
}

// Name implements core.MetadataProvider.
func (c *Client) Name() string { return "tmdb" }

// List fetches one page of a curated listing or discover query.
func (c *Client) List(ctx context.Context, q core.Query, page int) (*core.ResultPage, error) {
	if q.IsZero() {
		return nil, errors.New("list: empty query path")
	}
	if page < 1 {
		page = 1
	}
	params := q.Values()
	params.Set("page", strconv.Itoa(page))

	var resp listResponse
	if err := c.get(ctx, "/"+strings.TrimPrefix(q.Path, "/"), params, &resp); err != nil {
		return nil, fmt.Errorf("list %s page %d: %w", q.Path, page, err)
	}
	return &core.ResultPage{
		Results:      toResults(resp.Results, q.MediaType),
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}, nil
}

// Details retrieves a movie or series with its US certification.
func (c *Client) Details(ctx context.Context, mediaType core.MediaType, id int) (*core.Details, error) {
	appendTo := "release_dates"
	if mediaType == core.MediaTV {
		appendTo = "content_ratings"
	}
	var dto detailsDTO
	path := fmt.Sprintf("/%s/%d", mediaType, id)
	if err := c.get(ctx, path, url.Values{"append_to_response": {appendTo}}, &dto); err != nil {
		return nil, fmt.Errorf("get %s %d: %w", mediaType, id, err)
	}
	return dto.toDetails(mediaType), nil
}

// SearchMulti searches movies, series and people.
func (c *Client) SearchMulti(ctx context.Context, query string, page int) (*core.ResultPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{
		"query":         {query},
		"page":          {strconv.Itoa(page)},
		"include_adult": {"false"},
	}
	if c.region != "" {
		params.Set("region", c.region)
	}

	var resp listResponse
	if err := c.get(ctx, "/search/multi", params, &resp); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return &core.ResultPage{
		Results:      toResults(resp.Results, ""),
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}, nil
}

// Credits returns the cast of a title in billing order.
func (c *Client) Credits(ctx context.Context, mediaType core.MediaType, id int) ([]core.CastMember, error) {
	var resp creditsResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/credits", mediaType, id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get credits for %s %d: %w", mediaType, id, err)
	}
	cast := make([]core.CastMember, 0, len(resp.Cast))
	for _, m := range resp.Cast {
		cast = append(cast, core.CastMember{
			ID:          m.ID,
			Name:        m.Name,
			Character:   m.Character,
			ProfilePath: m.ProfilePath,
			Order:       m.Order,
		})
	}
	return cast, nil
}

// Recommendations returns the first page of titles recommended for a title.
func (c *Client) Recommendations(ctx context.Context, mediaType core.MediaType, id int) ([]core.Result, error) {
	var resp listResponse
	path := fmt.Sprintf("/%s/%d/recommendations", mediaType, id)
	if err := c.get(ctx, path, url.Values{"page": {"1"}}, &resp); err != nil {
		return nil, fmt.Errorf("get recommendations for %s %d: %w", mediaType, id, err)
	}
	return toResults(resp.Results, mediaType), nil
}

// Videos returns the videos attached to a title.
func (c *Client) Videos(ctx context.Context, mediaType core.MediaType, id int) ([]core.Video, error) {
	var resp videosResponse
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/videos", mediaType, id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get videos for %s %d: %w", mediaType, id, err)
	}
	return resp.Results, nil
}

// Genres returns the genre list for a media type.
func (c *Client) Genres(ctx context.Context, mediaType core.MediaType) ([]core.Genre, error) {
	var resp genresResponse
	if err := c.get(ctx, fmt.Sprintf("/genre/%s/list", mediaType), nil, &resp); err != nil {
		return nil, fmt.Errorf("get %s genres: %w", mediaType, err)
	}
	return resp.Genres, nil
}

// Countries returns the ISO 3166-1 countries known to TMDb.
func (c *Client) Countries(ctx context.Context) ([]core.Country, error) {
	var resp []countryDTO
	if err := c.get(ctx, "/configuration/countries", nil, &resp); err != nil {
		return nil, fmt.Errorf("get countries: %w", err)
	}
	countries := make([]core.Country, 0, len(resp))
	for _, d := range resp {
		countries = append(countries, core.Country{Code: d.Code, Name: firstNonEmpty(d.EnglishName, d.NativeName)})
	}
	return countries, nil
}

// PopularPeople returns one page of popular people.
func (c *Client) PopularPeople(ctx context.Context, page int) ([]core.Person, error) {
	if page < 1 {
		page = 1
	}
	var resp popularPeopleResponse
	if err := c.get(ctx, "/person/popular", url.Values{"page": {strconv.Itoa(page)}}, &resp); err != nil {
		return nil, fmt.Errorf("get popular people: %w", err)
	}
	people := make([]core.Person, 0, len(resp.Results))
	for _, p := range resp.Results {
		people = append(people, p.toPerson())
	}
	return people, nil
}

// Person returns biography details for a person.
func (c *Client) Person(ctx context.Context, id int) (*core.PersonDetails, error) {
	var dto personDTO
	if err := c.get(ctx, fmt.Sprintf("/person/%d", id), nil, &dto); err != nil {
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}
	return dto.toDetails(), nil
}

// PersonCredits returns the combined movie and TV cast credits of a person.
func (c *Client) PersonCredits(ctx context.Context, id int) ([]core.Result, error) {
	var resp combinedCreditsResponse
	if err := c.get(ctx, fmt.Sprintf("/person/%d/combined_credits", id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get credits for person %d: %w", id, err)
	}
	return toResults(resp.Cast, ""), nil
}

// ImageURL returns the full URL for an image path at the given size
// ("w185", "w500", "original"). Empty paths yield an empty URL.
func ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "original"
	}
	return imageBaseURL + size + path
}

// get performs an authenticated GET request to the TMDb API and decodes the JSON response.
// Successful bodies are cached by path and parameters, excluding the API key.
func (c *Client) get(ctx context.Context, path string, params url.Values, result any) error {
	endpoint := endpointLabel(path)

	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("language", c.language)
	cacheKey := path + "?" + q.Encode()

	if body, ok := c.cache.Get(cacheKey); ok {
		metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeCached).Inc()
		return decode(body, result)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		outcome := metrics.OutcomeError
		if ctx.Err() != nil {
			outcome = metrics.OutcomeCancelled
		}
		metrics.UpstreamRequests.WithLabelValues(endpoint, outcome).Inc()
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		apiErr := &APIError{Status: resp.StatusCode, Path: path}
		var payload apiError
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.StatusMessage
		}
		c.logger.Debug("tmdb request failed",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
		)
		return apiErr
	}

	if err := decode(body, result); err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeError).Inc()
		return err
	}
	metrics.UpstreamRequests.WithLabelValues(endpoint, metrics.OutcomeOK).Inc()
	c.logger.Debug("tmdb request",
		slog.String("path", path),
		slog.Duration("elapsed", time.Since(start)),
	)
	c.cache.Set(cacheKey, body)
	return nil
}

func decode(body []byte, result any) error {
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// endpointLabel reduces a request path to a low-cardinality metric label:
// "/movie/550/credits" becomes "movie/credits", "/discover/tv" stays "discover/tv".
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	kept := parts[:0]
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, "/")
}
