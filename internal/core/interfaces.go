package core

import "context"

// Catalog is the subset of a metadata provider needed to build listing pages.
type Catalog interface {
	// List fetches one page of a listing or discover query.
	List(ctx context.Context, q Query, page int) (*ResultPage, error)

	// Details fetches the detail record used to enrich a listing result.
	Details(ctx context.Context, mediaType MediaType, id int) (*Details, error)
}

// MetadataProvider defines the full interface of a movie/TV metadata source (TMDb).
type MetadataProvider interface {
	Catalog

	// SearchMulti searches movies, series and people in one call
	SearchMulti(ctx context.Context, query string, page int) (*ResultPage, error)

	// Credits returns the cast of a title in billing order
	Credits(ctx context.Context, mediaType MediaType, id int) ([]CastMember, error)

	// Recommendations returns titles recommended for a title
	Recommendations(ctx context.Context, mediaType MediaType, id int) ([]Result, error)

	// Videos returns trailers, teasers and clips for a title
	Videos(ctx context.Context, mediaType MediaType, id int) ([]Video, error)

	// Genres returns the genre taxonomy for a media type
	Genres(ctx context.Context, mediaType MediaType) ([]Genre, error)

	// Countries returns the list of production countries
	Countries(ctx context.Context) ([]Country, error)

	// PopularPeople returns one page of popular people
	PopularPeople(ctx context.Context, page int) ([]Person, error)

	// Person returns biography details for a person
	Person(ctx context.Context, id int) (*PersonDetails, error)

	// PersonCredits returns the combined movie and TV cast credits of a person
	PersonCredits(ctx context.Context, id int) ([]Result, error)

	// Name returns the provider name (e.g., "tmdb")
	Name() string
}

// Result is a single entry of a listing, discover or search response.
type Result struct {
	ID           int       // Provider ID
	MediaType    MediaType // Empty when the listing does not carry a media type
	Kind         string    // Raw media_type value ("movie", "tv", "person")
	Title        string    // Movie title or series name
	Overview     string    // Plot summary
	PosterPath   string    // Relative poster path
	BackdropPath string    // Relative backdrop path
	ReleaseDate  string    // release_date or first_air_date (YYYY-MM-DD)
	VoteAverage  float64   // Average vote (0-10)
	GenreIDs     []int     // Genre IDs
	Character    string    // Role name, only set on person credits
}

// ResultPage is one page of a paginated provider response.
type ResultPage struct {
	Results      []Result
	Page         int
	TotalPages   int
	TotalResults int
}

// Details holds the per-title fields used for enrichment and detail pages.
type Details struct {
	ID               int
	MediaType        MediaType
	Title            string
	Overview         string
	Tagline          string
	Status           string
	PosterPath       string
	BackdropPath     string
	ReleaseDate      string
	VoteAverage      float64
	VoteCount        int
	Runtime          int // Minutes; first episode run time for series
	NumberOfSeasons  int // Series only
	NumberOfEpisodes int // Series only
	Genres           []Genre
	Certification    string // US certification or content rating, empty if unknown
}

// CastMember is one credited performer.
type CastMember struct {
	ID          int
	Name        string
	Character   string
	ProfilePath string
	Order       int
}

// Video is a trailer, teaser or clip hosted on a video site.
type Video struct {
	Key  string
	Name string
	Site string // "YouTube", "Vimeo"
	Type string // "Trailer", "Teaser", "Clip"
}

// Genre is a taxonomy entry.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Country is an ISO 3166-1 region.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Person is an entry of the popular people list.
type Person struct {
	ID          int
	Name        string
	ProfilePath string
	Department  string
	KnownFor    []Result
}

// PersonDetails holds a person's biography.
type PersonDetails struct {
	ID           int
	Name         string
	Biography    string
	Birthday     string
	PlaceOfBirth string
	ProfilePath  string
	Department   string
}
