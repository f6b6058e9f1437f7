package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vadimtrunov/cinescope/internal/browse"
	"github.com/vadimtrunov/cinescope/internal/config"
	"github.com/vadimtrunov/cinescope/internal/core"
	"github.com/vadimtrunov/cinescope/internal/discover"
	"github.com/vadimtrunov/cinescope/internal/metadata/tmdb"
	"github.com/vadimtrunov/cinescope/internal/metrics"
)

// NewRouter wires the JSON API routes onto svc.
func NewRouter(svc *browse.Service, logger *slog.Logger) http.Handler {
	if svc == nil {
		panic("web.NewRouter: service must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(logger), countRequests, middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/home", h.home)
		r.Get("/categories", h.categories)
		r.Get("/categories/{token}", h.category)
		r.Get("/discover", h.discover)
		r.Get("/search", h.search)
		r.Get("/suggest", h.suggest)
		r.Get("/titles/{type}/{id}", h.title)
		r.Get("/people/popular", h.popularPeople)
		r.Get("/people/{id}", h.person)
		r.Get("/genres/{type}", h.genres)
		r.Get("/countries", h.countries)
	})
	return r
}

type handlers struct {
	svc *browse.Service
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorJSON(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": code, "message": msg})
}

// upstreamError maps a provider failure to 404 or 502.
func upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if tmdb.IsNotFound(err) {
		errorJSON(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	config.LoggerFromContext(r.Context()).Warn("upstream request failed", slog.String("error", err.Error()))
	errorJSON(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
}

func (h *handlers) home(w http.ResponseWriter, r *http.Request) {
	home, err := h.svc.Home(r.Context(), r.URL.Query().Get("recommended"))
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, home)
}

func (h *handlers) categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": discover.FixedTokens()})
}

func (h *handlers) category(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}
	token := chi.URLParam(r, "token")
	listing, err := h.svc.Category(r.Context(), token, page)
	var invalid *discover.InvalidCategoryError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invalid_category", "category": invalid.Token})
	case err != nil:
		upstreamError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, listing)
	}
}

func (h *handlers) discover(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}
	f, err := discover.FilterFromValues(r.URL.Query())
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}
	listing, err := h.svc.Discover(r.Context(), f, core.MediaMovie, page)
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}
	q := r.URL.Query().Get("q")
	if q == "" {
		errorJSON(w, http.StatusBadRequest, "missing_query", "q is required")
		return
	}
	result, err := h.svc.Search(r.Context(), q, page)
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) suggest(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.NewSuggester().Suggest(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	if items == nil {
		items = []discover.Item{}
	}
	writeJSON(w, http.StatusOK, map[string][]discover.Item{"suggestions": items})
}

func (h *handlers) title(w http.ResponseWriter, r *http.Request) {
	mediaType, err := core.ParseMediaType(chi.URLParam(r, "type"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid_type", err.Error())
		return
	}
	id, ok := idParam(r)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	page, err := h.svc.Title(r.Context(), mediaType, id)
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handlers) popularPeople(w http.ResponseWriter, r *http.Request) {
	page, ok := pageParam(r)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
		return
	}
	people, err := h.svc.PopularPeople(r.Context(), page)
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"page": page, "people": people})
}

func (h *handlers) person(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		errorJSON(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	page, err := h.svc.Person(r.Context(), id)
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *handlers) genres(w http.ResponseWriter, r *http.Request) {
	mediaType, err := core.ParseMediaType(chi.URLParam(r, "type"))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid_type", err.Error())
		return
	}
	genres, err := h.svc.Taxonomy().Genres(r.Context(), mediaType)
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"media_type": mediaType, "genres": genres})
}

func (h *handlers) countries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.svc.Taxonomy().Countries(r.Context())
	if err != nil {
		upstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": countries})
}

func idParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
