// Package mcp exposes the browse views as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
)

// Deps holds the services behind the MCP tool handlers.
type Deps struct {
	Browse *browse.Service
}

// Server wraps an MCP SDK server with cinescope tool handlers.
type Server struct {
	server *mcpsdk.Server
	deps   Deps
	logger *slog.Logger
}

// NewServer creates an MCP server with all cinescope tools registered.
func NewServer(deps Deps, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}

	s := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "cinescope",
			Version: version,
		},
		&mcpsdk.ServerOptions{Logger: logger},
	)

	srv := &Server{server: s, deps: deps, logger: logger}
	srv.registerTools()
	return srv
}

// ServeStdio runs the MCP server over stdin/stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// MCPServer returns the underlying MCP SDK server (for testing).
func (s *Server) MCPServer() *mcpsdk.Server {
	return s.server
}

func (s *Server) registerTools() {
	s.server.AddTool(listCategoriesTool(), s.handleListCategories)
	s.server.AddTool(browseCategoryTool(), s.handleBrowseCategory)
	s.server.AddTool(discoverTitlesTool(), s.handleDiscoverTitles)
	s.server.AddTool(searchTitlesTool(), s.handleSearchTitles)
	s.server.AddTool(getTitleTool(), s.handleGetTitle)
	s.server.AddTool(getPersonTool(), s.handleGetPerson)
	s.server.AddTool(listGenresTool(), s.handleListGenres)
	s.server.AddTool(listCountriesTool(), s.handleListCountries)
}

func listCategoriesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name: "list_categories",
		Description: "List the fixed category tokens accepted by browse_category. " +
			"Genre and country categories use movie_genre_<id>, tv_genre_<id> and country_<code>.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func browseCategoryTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "browse_category",
		Description: "Fetch one page of a category listing such as movie_popular or tv_genre_18. Items include runtime or season info.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"category": map[string]any{
					"type":        "string",
					"description": "Category token, e.g. trending_movie_week, movie_genre_28, country_KR",
				},
				"page": pageProperty(),
			},
			"required": []any{"category"},
		},
	}
}

func discoverTitlesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "discover_titles",
		Description: "Discover movies or series by genre, country, release year, minimum rating and sort order.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": mediaTypeProperty(),
				"genres": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Genre names or IDs, e.g. [\"Drama\", \"16\"]",
				},
				"countries": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Origin countries as ISO codes or names",
				},
				"years": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "integer"},
					"description": "Release years; several years select their range",
				},
				"min_rating": map[string]any{
					"type":        "number",
					"description": "Minimum average vote, 0-10",
				},
				"sort": map[string]any{
					"type":        "string",
					"description": "Sort order such as popularity.desc, vote_average.desc or release_date.asc",
				},
				"page": pageProperty(),
			},
			"required": []any{"type"},
		},
	}
}

func searchTitlesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "search_titles",
		Description: "Search movies and series by title.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The title to search for",
				},
				"page": pageProperty(),
			},
			"required": []any{"query"},
		},
	}
}

func getTitleTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_title",
		Description: "Get a movie or series page: details, runtime, age rating, cast, recommendations and trailer.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type": mediaTypeProperty(),
				"id": map[string]any{
					"type":        "integer",
					"description": "The TMDb ID of the title",
				},
			},
			"required": []any{"type", "id"},
		},
	}
}

func getPersonTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "get_person",
		Description: "Get a person's biography and best-known credits.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"person_id": map[string]any{
					"type":        "integer",
					"description": "The TMDb ID of the person",
				},
			},
			"required": []any{"person_id"},
		},
	}
}

func listGenresTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_genres",
		Description: "List the genres of movies or series with their IDs.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"type": mediaTypeProperty()},
			"required":   []any{"type"},
		},
	}
}

func listCountriesTool() *mcpsdk.Tool {
	return &mcpsdk.Tool{
		Name:        "list_countries",
		Description: "List production countries with their ISO codes.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}
}

func pageProperty() map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": "Page number, starting at 1",
	}
}

func mediaTypeProperty() map[string]any {
	return map[string]any{
		"type":        "string",
		"enum":        []any{"movie", "tv"},
		"description": "movie or tv",
	}
}

// Tool handlers parse arguments, call the browse service and return JSON text content.

func (s *Server) handleListCategories(_ context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	return toolJSON(map[string]any{"categories": discover.FixedTokens()})
}

func (s *Server) handleBrowseCategory(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Browse == nil {
		return toolError("browse service not configured"), nil
	}

	token, err := extractStringFromArgs(req.Params.Arguments, "category")
	if err != nil {
		return toolError(err.Error()), nil
	}
	page, err := optionalPage(req.Params.Arguments)
	if err != nil {
		return toolError(err.Error()), nil
	}

	listing, err := s.deps.Browse.Category(ctx, token, page)
	if err != nil {
		var invalid *discover.InvalidCategoryError
		if errors.As(err, &invalid) {
			return toolError(fmt.Sprintf("%s; call list_categories for valid tokens", err)), nil
		}
		return toolError(fmt.Sprintf("browse category failed: %v", err)), nil
	}
	return toolJSON(listing)
}

func (s *Server) handleDiscoverTitles(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Browse == nil {
		return toolError("browse service not configured"), nil
	}

	var args struct {
		Type      string   `json:"type"`
		Genres    []string `json:"genres"`
		Countries []string `json:"countries"`
		Years     []int    `json:"years"`
		MinRating *float64 `json:"min_rating"`
		Sort      string   `json:"sort"`
		Page      int      `json:"page"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	mediaType, err := core.ParseMediaType(args.Type)
	if err != nil {
		return toolError(err.Error()), nil
	}

	f, err := s.buildFilter(ctx, mediaType, args.Genres, args.Countries, args.Years, args.MinRating, args.Sort)
	if err != nil {
		return toolError(err.Error()), nil
	}

	listing, err := s.deps.Browse.Discover(ctx, f, mediaType, max(args.Page, 1))
	if err != nil {
		return toolError(fmt.Sprintf("discover failed: %v", err)), nil
	}
	return toolJSON(listing)
}

// buildFilter resolves genre and country names through the taxonomy.
func (s *Server) buildFilter(ctx context.Context, mediaType core.MediaType, genres, countries []string,
	years []int, minRating *float64, sort string,
) (discover.FilterState, error) {
	f := discover.FilterState{}.WithMediaType(mediaType)
	tax := s.deps.Browse.Taxonomy()

	for _, g := range genres {
		id, err := tax.ResolveGenre(ctx, mediaType, g)
		if err != nil {
			return f, err
		}
		if !slices.Contains(f.Genres, id) {
			f = f.ToggleGenre(id)
		}
	}
	for _, c := range countries {
		code, err := tax.ResolveCountry(ctx, c)
		if err != nil {
			return f, err
		}
		if !slices.Contains(f.Countries, code) {
			f = f.ToggleCountry(code)
		}
	}
	for _, y := range years {
		if y < discover.MinYear || y > discover.MaxYear {
			return f, fmt.Errorf("year %d must be between %d and %d", y, discover.MinYear, discover.MaxYear)
		}
		if !slices.Contains(f.Years, y) {
			f = f.ToggleYear(y)
		}
	}
	if minRating != nil {
		if *minRating < 0 || *minRating > 10 {
			return f, fmt.Errorf("min_rating must be between 0 and 10")
		}
		f = f.WithRating(*minRating)
	}
	if strings.TrimSpace(sort) != "" {
		sb, err := discover.ParseSortBy(sort)
		if err != nil {
			return f, err
		}
		f = f.WithSort(sb)
	}
	return f, nil
}

func (s *Server) handleSearchTitles(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Browse == nil {
		return toolError("browse service not configured"), nil
	}

	query, err := extractStringFromArgs(req.Params.Arguments, "query")
	if err != nil {
		return toolError(err.Error()), nil
	}
	page, err := optionalPage(req.Params.Arguments)
	if err != nil {
		return toolError(err.Error()), nil
	}

	result, err := s.deps.Browse.Search(ctx, query, page)
	if err != nil {
		return toolError(fmt.Sprintf("search failed: %v", err)), nil
	}
	return toolJSON(result)
}

func (s *Server) handleGetTitle(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Browse == nil {
		return toolError("browse service not configured"), nil
	}

	rawType, err := extractStringFromArgs(req.Params.Arguments, "type")
	if err != nil {
		return toolError(err.Error()), nil
	}
	mediaType, err := core.ParseMediaType(rawType)
	if err != nil {
		return toolError(err.Error()), nil
	}
	id, err := extractIntFromArgs(req.Params.Arguments, "id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	page, err := s.deps.Browse.Title(ctx, mediaType, id)
	if err != nil {
		return toolError(fmt.Sprintf("get title failed: %v", err)), nil
	}
	return toolJSON(map[string]any{
		"title":       page,
		"trailer_url": browse.VideoURL(page.Trailer),
		"age_rating":  page.Rating.Label(),
	})
}

func (s *Server) handleGetPerson(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Browse == nil {
		return toolError("browse service not configured"), nil
	}

	id, err := extractIntFromArgs(req.Params.Arguments, "person_id")
	if err != nil {
		return toolError(err.Error()), nil
	}

	page, err := s.deps.Browse.Person(ctx, id)
	if err != nil {
		return toolError(fmt.Sprintf("get person failed: %v", err)), nil
	}
	return toolJSON(page)
}

func (s *Server) handleListGenres(ctx context.Context, req *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Browse == nil {
		return toolError("browse service not configured"), nil
	}

	rawType, err := extractStringFromArgs(req.Params.Arguments, "type")
	if err != nil {
		return toolError(err.Error()), nil
	}
	mediaType, err := core.ParseMediaType(rawType)
	if err != nil {
		return toolError(err.Error()), nil
	}

	genres, err := s.deps.Browse.Taxonomy().Genres(ctx, mediaType)
	if err != nil {
		return toolError(fmt.Sprintf("list genres failed: %v", err)), nil
	}
	return toolJSON(genres)
}

func (s *Server) handleListCountries(ctx context.Context, _ *mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
	if s.deps.Browse == nil {
		return toolError("browse service not configured"), nil
	}

	countries, err := s.deps.Browse.Taxonomy().Countries(ctx)
	if err != nil {
		return toolError(fmt.Sprintf("list countries failed: %v", err)), nil
	}
	return toolJSON(countries)
}

// Helper functions.

// toolJSON marshals v to JSON and returns it as text content.
func toolJSON(v any) (*mcpsdk.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: string(data)}},
	}, nil
}

// toolError returns a tool result indicating an error.
func toolError(msg string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: msg}},
		IsError: true,
	}
}

// optionalPage reads "page", defaulting to 1.
func optionalPage(raw json.RawMessage) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}
	if _, ok := args["page"]; !ok {
		return 1, nil
	}
	n, err := extractIntFromArgs(raw, "page")
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("page must be at least 1")
	}
	return n, nil
}

// extractIntFromArgs extracts an integer argument from raw JSON arguments.
func extractIntFromArgs(raw json.RawMessage, key string) (int, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return 0, fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}

	switch v := val.(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, val)
	}
}

// extractStringFromArgs extracts a string argument from raw JSON arguments.
func extractStringFromArgs(raw json.RawMessage, key string) (string, error) {
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return "", fmt.Errorf("invalid arguments: %w", err)
	}

	val, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}

	s, ok := val.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return s, nil
}
