package dispatch

import (
	"math"
	"sort"

	"service-dispatch/internal/domain"
)

// unrated drivers compete as average ones
const defaultRating = 4.0

// maxScoredDistanceKm caps the proximity term; beyond it proximity adds nothing.
const maxScoredDistanceKm = 10.0

type scored struct {
	domain.Candidate
	Score float64
}

// score = rating + (10 - min(distance, 10)) / 10
func score(c domain.Candidate) float64 {
	rating := c.Rating
	if rating <= 0 {
		rating = defaultRating
	}
	return rating + (maxScoredDistanceKm-math.Min(c.DistanceKm, maxScoredDistanceKm))/maxScoredDistanceKm
}

// rank orders candidates best first, ties to the nearest. excluded is skipped.
func rank(cands []domain.Candidate, excluded string) []scored {
	out := make([]scored, 0, len(cands))
	for _, c := range cands {
		if excluded != "" && c.DriverID == excluded {
			continue
		}
		out = append(out, scored{Candidate: c, Score: score(c)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].DriverID < out[j].DriverID
	})
	return out
}
