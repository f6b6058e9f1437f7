package discover

import (
	"fmt"
	"strconv"

	"github.com/vadimtrunov/cinescope/internal/core"
)

// RuntimeUnavailable is the runtime shown when enrichment failed or reported nothing.
const RuntimeUnavailable = "N/A"

// Status tells "no results" apart from "error, try again".
type Status string

// Page statuses.
const (
	StatusReady  Status = "ready"
	StatusEmpty  Status = "empty"
	StatusFailed Status = "failed"
)

// Item is one listing entry after enrichment.
type Item struct {
	ID             int            `json:"id"`
	Title          string         `json:"title"`
	Overview       string         `json:"overview,omitempty"`
	PosterPath     string         `json:"poster_path,omitempty"`
	BackdropPath   string         `json:"backdrop_path,omitempty"`
	MediaType      core.MediaType `json:"media_type"`
	Runtime        string         `json:"runtime"`
	RuntimeMinutes int            `json:"runtime_minutes,omitempty"`
	Seasons        int            `json:"seasons,omitempty"`
	Episodes       int            `json:"episodes,omitempty"`
	Year           int            `json:"year,omitempty"`
	VoteAverage    float64        `json:"vote_average"`
	GenreIDs       []int          `json:"genre_ids,omitempty"`
	Certification  string         `json:"certification,omitempty"`
	Enriched       bool           `json:"enriched"`
}

// Page is one enriched page of a listing. For pages that did not fail,
// Number <= max(TotalPages, 1). Failed pages keep the requested number.
type Page struct {
	Items        []Item     `json:"items"`
	Number       int        `json:"page"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
	Query        core.Query `json:"-"`
	Status       Status     `json:"status"`
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Status != StatusFailed && p.Number < p.TotalPages
}

// HasPrevious reports whether an earlier page exists.
func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// FormatRuntime renders minutes as H:MM:00, or RuntimeUnavailable when unknown.
func FormatRuntime(minutes int) string {
	if minutes <= 0 {
		return RuntimeUnavailable
	}
	return fmt.Sprintf("%d:%02d:00", minutes/60, minutes%60)
}

// FormatSeasons renders a series length as "S2 • 16 Episodes" or "Season 2".
func FormatSeasons(seasons, episodes int) string {
	if seasons <= 0 {
		return RuntimeUnavailable
	}
	if episodes > 0 {
		return fmt.Sprintf("S%d • %d Episodes", seasons, episodes)
	}
	return fmt.Sprintf("Season %d", seasons)
}

// ReleaseYear extracts the year of a YYYY-MM-DD date, 0 if absent.
func ReleaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// itemFromResult copies listing fields; the runtime starts unavailable.
func itemFromResult(r core.Result, mediaType core.MediaType) Item {
	return Item{
		ID:           r.ID,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   r.PosterPath,
		BackdropPath: r.BackdropPath,
		MediaType:    mediaType,
		Runtime:      RuntimeUnavailable,
		Year:         ReleaseYear(r.ReleaseDate),
		VoteAverage:  r.VoteAverage,
		GenreIDs:     r.GenreIDs,
	}
}

// applyDetails merges a detail record into the item.
func (it *Item) applyDetails(d *core.Details) {
	if d.Title != "" {
		it.Title = d.Title
	}
	if it.PosterPath == "" {
		it.PosterPath = d.PosterPath
	}
	if it.BackdropPath == "" {
		it.BackdropPath = d.BackdropPath
	}
	if it.Year == 0 {
		it.Year = ReleaseYear(d.ReleaseDate)
	}
	it.Certification = d.Certification
	it.Enriched = true

	switch it.MediaType {
	case core.MediaTV:
		it.Seasons = d.NumberOfSeasons
		it.Episodes = d.NumberOfEpisodes
		it.RuntimeMinutes = d.Runtime
		it.Runtime = FormatSeasons(d.NumberOfSeasons, d.NumberOfEpisodes)
	default:
		it.RuntimeMinutes = d.Runtime
		it.Runtime = FormatRuntime(d.Runtime)
	}
}
