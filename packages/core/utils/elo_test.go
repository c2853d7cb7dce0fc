package utils

import (
	"math"
	"testing"

	"github.com/bmizerany/assert"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-4
}

func TestExpectedScoreEvenRatings(t *testing.T) {
	assert.Equal(t, 0.5, ExpectedScore(0))
}

func TestExpectedScoreIsSymmetric(t *testing.T) {
	for _, diff := range []float64{1, 25, 100, 333.3} {
		sum := ExpectedScore(diff) + ExpectedScore(-diff)
		assert.T(t, math.Abs(sum-1) < 1e-12, diff, sum)
		assert.T(t, ExpectedScore(diff) > 0.5, diff)
	}
}

func TestExpectedScoreHundredPoints(t *testing.T) {
	// 100 points ahead is 10:1 odds
	assert.T(t, near(ExpectedScore(100), 10.0/11.0))
}

func TestScoreFractions(t *testing.T) {
	left, right := ScoreFractions(0, 0)
	assert.Equal(t, 0.5, left)
	assert.Equal(t, 0.5, right)

	left, right = ScoreFractions(10, 3)
	assert.T(t, near(left, 10.0/13.0), left)
	assert.T(t, near(right, 3.0/13.0), right)

	left, right = ScoreFractions(10, 0)
	assert.Equal(t, 1.0, left)
	assert.Equal(t, 0.0, right)
}

func TestRatingDeltaTenToThree(t *testing.T) {
	left, right := ScoreFractions(10, 3)

	winner := RatingDelta(left, 0)
	loser := RatingDelta(right, 0)

	assert.T(t, near(winner, 13.4615), winner)
	assert.T(t, near(loser, -13.4615), loser)
	assert.T(t, near(winner+loser, 0))
}

func TestRatingDeltaDrawBetweenEquals(t *testing.T) {
	left, _ := ScoreFractions(0, 0)
	assert.Equal(t, 0.0, RatingDelta(left, 0))
}

func TestPredictedScore(t *testing.T) {
	tests := []struct {
		diff        float64
		left, right int
	}{
		{0, 10, 10},
		{100, 10, 1},
		{-100, 1, 10},
	}

	for _, tt := range tests {
		left, right := PredictedScore(tt.diff, 10)
		assert.Equal(t, tt.left, left, tt.diff)
		assert.Equal(t, tt.right, right, tt.diff)
	}
}

func TestWinPercentage(t *testing.T) {
	assert.Equal(t, 0.0, WinPercentage(0, 0, 0))
	assert.Equal(t, 75.0, WinPercentage(3, 1, 0))
	assert.Equal(t, 50.0, WinPercentage(1, 0, 1))
}
