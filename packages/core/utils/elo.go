package utils

import "math"

const (
	InitialRating = 250.0
	K             = 50.0  // rating coefficient (Bonzini USA uses 50)
	F             = 100.0 // weight factor
)

// ExpectedScore returns the winning expectancy of a side whose rating exceeds
// the opponent's by diffRatings: We = 1 / (10^(-D/F) + 1)
func ExpectedScore(diffRatings float64) float64 {
	return 1.0 / (math.Pow(10.0, -diffRatings/F) + 1.0)
}

// RatingDelta returns K * (S - We) for an observed score fraction S
func RatingDelta(scoreFraction, diffRatings float64) float64 {
	return K * (scoreFraction - ExpectedScore(diffRatings))
}

// ScoreFractions returns each side's share of the goals scored.
// A game without goals counts as an even draw.
func ScoreFractions(leftScore, rightScore int) (float64, float64) {
	total := leftScore + rightScore
	if total == 0 {
		return 0.5, 0.5
	}

	left := float64(leftScore) / float64(total)
	return left, 1.0 - left
}

// PredictedScore turns the expectancy of the left side into a score line where
// the favourite reaches maxScore.
func PredictedScore(diffRatings float64, maxScore int) (int, int) {
	expected := ExpectedScore(diffRatings)
	if expected > 0.5 {
		right := int(math.Round(float64(maxScore) * ((1.0 - expected) / expected)))
		return maxScore, right
	}

	left := int(math.Round(float64(maxScore) * (expected / (1.0 - expected))))
	return left, maxScore
}

// WinPercentage returns wins over games played, 0 when nothing was played
func WinPercentage(wins, draws, losses int) float64 {
	played := wins + draws + losses
	if played == 0 {
		return 0
	}
	return 100.0 * float64(wins) / float64(played)
}
