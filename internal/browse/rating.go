package browse

import "github.com/vadimtrunov/cinescope/internal/core"

// RatingSource tells where an age rating came from.
type RatingSource string

// Rating sources.
const (
	RatingCertified RatingSource = "certification"
	RatingEstimated RatingSource = "estimated"
	RatingUnknown   RatingSource = "none"
)

// AgeRating is a content rating. Estimated ratings are guesses from the
// audience score and must be labeled as such.
type AgeRating struct {
	Value     string       `json:"value"`
	Source    RatingSource `json:"source"`
	Estimated bool         `json:"estimated"`
}

// Label renders the rating for display, e.g. "PG-13" or "PG-13 (est.)".
func (r AgeRating) Label() string {
	if r.Estimated {
		return r.Value + " (est.)"
	}
	return r.Value
}

// RateTitle prefers the US certification and falls back to a vote-based
// estimate: >= 8 PG, >= 6 PG-13, otherwise R.
func RateTitle(d *core.Details) AgeRating {
	if d == nil {
		return AgeRating{Value: "N/A", Source: RatingUnknown}
	}
	if d.Certification != "" {
		return AgeRating{Value: d.Certification, Source: RatingCertified}
	}
	return EstimateRating(d.VoteAverage)
}

// EstimateRating derives a rating from the average vote alone.
func EstimateRating(voteAverage float64) AgeRating {
	var value string
	switch {
	case voteAverage <= 0:
		return AgeRating{Value: "N/A", Source: RatingUnknown}
	case voteAverage >= 8:
		value = "PG"
	case voteAverage >= 6:
		value = "PG-13"
	default:
		value = "R"
	}
	return AgeRating{Value: value, Source: RatingEstimated, Estimated: true}
}
