package tmdb

import (
	"github.com/vadimtrunov/cinescope/internal/core"
)

// resultDTO is a listing entry. Movies carry title/release_date, series
// carry name/first_air_date, search/multi adds media_type.
type resultDTO struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ProfilePath  string  `json:"profile_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int   `json:"genre_ids"`
	Character    string  `json:"character"`
}

// listResponse is the TMDb paginated response envelope.
type listResponse struct {
	Page         int         `json:"page"`
	Results      []resultDTO `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

type genreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type detailsDTO struct {
	ID               int        `json:"id"`
	Title            string     `json:"title"`
	Name             string     `json:"name"`
	Overview         string     `json:"overview"`
	Tagline          string     `json:"tagline"`
	Status           string     `json:"status"`
	PosterPath       string     `json:"poster_path"`
	BackdropPath     string     `json:"backdrop_path"`
	ReleaseDate      string     `json:"release_date"`
	FirstAirDate     string     `json:"first_air_date"`
	VoteAverage      float64    `json:"vote_average"`
	VoteCount        int        `json:"vote_count"`
	Runtime          int        `json:"runtime"`
	EpisodeRunTime   []int      `json:"episode_run_time"`
	NumberOfSeasons  int        `json:"number_of_seasons"`
	NumberOfEpisodes int        `json:"number_of_episodes"`
	Genres           []genreDTO `json:"genres"`

	ReleaseDates *struct {
		Results []struct {
			Country      string `json:"iso_3166_1"`
			ReleaseDates []struct {
				Certification string `json:"certification"`
				Type          int    `json:"type"`
			} `json:"release_dates"`
		} `json:"results"`
	} `json:"release_dates,omitempty"`

	ContentRatings *struct {
		Results []struct {
			Country string `json:"iso_3166_1"`
			Rating  string `json:"rating"`
		} `json:"results"`
	} `json:"content_ratings,omitempty"`
}

type creditsResponse struct {
	Cast []struct {
		ID          int    `json:"id"`
		Name        string `json:"name"`
		Character   string `json:"character"`
		ProfilePath string `json:"profile_path"`
		Order       int    `json:"order"`
	} `json:"cast"`
}

type videosResponse struct {
	Results []core.Video `json:"results"`
}

type genresResponse struct {
	Genres []core.Genre `json:"genres"`
}

type countryDTO struct {
	Code        string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
	NativeName  string `json:"native_name"`
}

type personDTO struct {
	ID                 int         `json:"id"`
	Name               string      `json:"name"`
	Biography          string      `json:"biography"`
	Birthday           string      `json:"birthday"`
	PlaceOfBirth       string      `json:"place_of_birth"`
	ProfilePath        string      `json:"profile_path"`
	KnownForDepartment string      `json:"known_for_department"`
	KnownFor           []resultDTO `json:"known_for"`
}

type popularPeopleResponse struct {
	Results []personDTO `json:"results"`
}

type combinedCreditsResponse struct {
	Cast []resultDTO `json:"cast"`
}

// apiError is the TMDb error body.
type apiError struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// certificationCountry is the release country whose rating is treated as authoritative.
const certificationCountry = "US"

func (d resultDTO) toResult(fallback core.MediaType) core.Result {
	r := core.Result{
		ID:           d.ID,
		Kind:         d.MediaType,
		Title:        firstNonEmpty(d.Title, d.Name),
		Overview:     d.Overview,
		PosterPath:   firstNonEmpty(d.PosterPath, d.ProfilePath),
		BackdropPath: d.BackdropPath,
		ReleaseDate:  firstNonEmpty(d.ReleaseDate, d.FirstAirDate),
		VoteAverage:  d.VoteAverage,
		GenreIDs:     d.GenreIDs,
		Character:    d.Character,
	}
	switch core.MediaType(d.MediaType) {
	case core.MediaMovie, core.MediaTV:
		r.MediaType = core.MediaType(d.MediaType)
	case "":
		r.MediaType = fallback
		r.Kind = string(fallback)
	}
	return r
}

func toResults(dtos []resultDTO, fallback core.MediaType) []core.Result {
	out := make([]core.Result, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.toResult(fallback))
	}
	return out
}

func (d detailsDTO) toDetails(mediaType core.MediaType) *core.Details {
	details := &core.Details{
		ID:               d.ID,
		MediaType:        mediaType,
		Title:            firstNonEmpty(d.Title, d.Name),
		Overview:         d.Overview,
		Tagline:          d.Tagline,
		Status:           d.Status,
		PosterPath:       d.PosterPath,
		BackdropPath:     d.BackdropPath,
		ReleaseDate:      firstNonEmpty(d.ReleaseDate, d.FirstAirDate),
		VoteAverage:      d.VoteAverage,
		VoteCount:        d.VoteCount,
		Runtime:          d.Runtime,
		NumberOfSeasons:  d.NumberOfSeasons,
		NumberOfEpisodes: d.NumberOfEpisodes,
		Certification:    d.certification(),
	}
	if details.Runtime == 0 && len(d.EpisodeRunTime) > 0 {
		details.Runtime = d.EpisodeRunTime[0]
	}
	for _, g := range d.Genres {
		details.Genres = append(details.Genres, core.Genre{ID: g.ID, Name: g.Name})
	}
	return details
}

// certification returns the first non-empty US rating from either
// release_dates (movies) or content_ratings (series).
func (d detailsDTO) certification() string {
	if d.ReleaseDates != nil {
		for _, country := range d.ReleaseDates.Results {
			if country.Country != certificationCountry {
				continue
			}
			for _, rd := range country.ReleaseDates {
				if rd.Certification != "" {
					return rd.Certification
				}
			}
		}
	}
	if d.ContentRatings != nil {
		for _, r := range d.ContentRatings.Results {
			if r.Country == certificationCountry && r.Rating != "" {
				return r.Rating
			}
		}
	}
	return ""
}

func (p personDTO) toPerson() core.Person {
	return core.Person{
		ID:          p.ID,
		Name:        p.Name,
		ProfilePath: p.ProfilePath,
		Department:  p.KnownForDepartment,
		KnownFor:    toResults(p.KnownFor, ""),
	}
}

func (p personDTO) toDetails() *core.PersonDetails {
	return &core.PersonDetails{
		ID:           p.ID,
		Name:         p.Name,
		Biography:    p.Biography,
		Birthday:     p.Birthday,
		PlaceOfBirth: p.PlaceOfBirth,
		ProfilePath:  p.ProfilePath,
		Department:   p.KnownForDepartment,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
