// Package rating implements the Elo update applied after ranked matches.
package rating

import "math"

const (
	// KFactor controls how far a single match moves a rating.
	KFactor = 28

	MinRating = 1
	MaxRating = 9999
)

// Expected returns the expected score of side A against side B.
func Expected(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

// Apply computes both post-match ratings for a decided match.
// aWon selects the winner; the update is symmetric and keeps both
// ratings inside [MinRating, MaxRating].
func Apply(ratingA, ratingB int, aWon bool) (newA, newB int) {
	ea := Expected(ratingA, ratingB)
	eb := Expected(ratingB, ratingA)

	sa, sb := 0.0, 1.0
	if aWon {
		sa, sb = 1.0, 0.0
	}

	newA = clampRound(float64(ratingA) + KFactor*(sa-ea))
	newB = clampRound(float64(ratingB) + KFactor*(sb-eb))
	return newA, newB
}

func clampRound(r float64) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return int(math.Round(r))
}
