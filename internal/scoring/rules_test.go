package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(scores [4]int) int {
	total := 0
	for _, s := range scores {
		total += s
	}
	return total
}

func TestComputeScores(t *testing.T) {
	t.Run("Normal round with two winners", func(t *testing.T) {
		// Given: a normal round worth 2 points won by seats 0 and 1
		winners := [4]bool{true, true, false, false}

		// When: computing the scores
		scores := ComputeScores(2, winners, false)

		// Then: winners get +2, losers -2 and the round is zero-sum
		assert.Equal(t, [4]int{2, 2, -2, -2}, scores)
		assert.Zero(t, sum(scores))
	})

	t.Run("Normal round keeps seat alignment", func(t *testing.T) {
		// Given: winners in seats 1 and 3
		winners := [4]bool{false, true, false, true}

		// When: computing the scores
		scores := ComputeScores(5, winners, false)

		// Then: the deltas follow the winner mask order
		assert.Equal(t, [4]int{-5, 5, -5, 5}, scores)
	})

	t.Run("Solo player wins alone", func(t *testing.T) {
		// Given: a solo round worth 1 point won by seat 0
		winners := [4]bool{true, false, false, false}

		// When: computing the scores
		scores := ComputeScores(1, winners, true)

		// Then: the solo player gets three times the points
		assert.Equal(t, [4]int{3, -1, -1, -1}, scores)
		assert.Zero(t, sum(scores))
	})

	t.Run("Solo player loses against three", func(t *testing.T) {
		// Given: a solo round worth 4 points where seat 2 played alone and lost
		winners := [4]bool{true, true, false, true}

		// When: computing the scores
		scores := ComputeScores(4, winners, true)

		// Then: the solo player pays three times the points
		assert.Equal(t, [4]int{4, 4, -12, 4}, scores)
		assert.Zero(t, sum(scores))
	})

	t.Run("Zero points produce zero deltas", func(t *testing.T) {
		scores := ComputeScores(0, [4]bool{false, true, true, false}, false)

		assert.Equal(t, [4]int{0, 0, 0, 0}, scores)
	})

	t.Run("Valid rounds are always zero-sum", func(t *testing.T) {
		masks := [][4]bool{
			{true, true, false, false},
			{true, false, true, false},
			{false, false, true, true},
		}
		for points := 0; points <= 12; points++ {
			for _, mask := range masks {
				assert.Zero(t, sum(ComputeScores(points, mask, false)))
			}
			for seat := 0; seat < 4; seat++ {
				var alone, against [4]bool
				for i := range alone {
					alone[i] = i == seat
					against[i] = i != seat
				}
				assert.Zero(t, sum(ComputeScores(points, alone, true)))
				assert.Zero(t, sum(ComputeScores(points, against, true)))
			}
		}
	})
}

func TestValidateRoundInput(t *testing.T) {
	testCases := []struct {
		name    string
		points  float64
		winners [4]bool
		solo    bool
		message string
	}{
		{"Negative points", -1, [4]bool{true, true, false, false}, false, MsgInvalidPoints},
		{"Non-numeric points", math.NaN(), [4]bool{true, true, false, false}, false, MsgInvalidPoints},
		{"Infinite points", math.Inf(1), [4]bool{true, true, false, false}, false, MsgInvalidPoints},
		{"Fractional points", 1.5, [4]bool{true, true, false, false}, false, MsgInvalidPoints},
		{"Points just above the maximum", MaxPoints + 1, [4]bool{true, true, false, false}, false, MsgInvalidPoints},
		{"Points overflowing int", 1e19, [4]bool{true, true, false, false}, false, MsgInvalidPoints},
		{"Huge solo points", 4e18, [4]bool{true, false, false, false}, true, MsgInvalidPoints},
		{"No winner in normal round", 1, [4]bool{}, false, MsgNoWinner},
		{"No winner in solo round", 1, [4]bool{}, true, MsgNoWinner},
		{"One winner in normal round", 1, [4]bool{true, false, false, false}, false, MsgNormalWinnerCount},
		{"Three winners in normal round", 1, [4]bool{true, true, true, false}, false, MsgNormalWinnerCount},
		{"Four winners in normal round", 1, [4]bool{true, true, true, true}, false, MsgNormalWinnerCount},
		{"Two winners in solo round", 1, [4]bool{true, true, false, false}, true, MsgSoloWinnerCount},
		{"Four winners in solo round", 1, [4]bool{true, true, true, true}, true, MsgSoloWinnerCount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// When: validating the input
			result := ValidateRoundInput(tc.points, tc.winners, tc.solo)

			// Then: it is rejected with the expected message
			assert.False(t, result.Valid)
			assert.Equal(t, tc.message, result.Message)
		})
	}

	t.Run("Accepts a normal round with two winners", func(t *testing.T) {
		result := ValidateRoundInput(2, [4]bool{true, false, true, false}, false)

		require.True(t, result.Valid)
		assert.Empty(t, result.Message)
	})

	t.Run("Accepts zero points", func(t *testing.T) {
		result := ValidateRoundInput(0, [4]bool{true, false, true, false}, false)

		assert.True(t, result.Valid)
	})

	t.Run("Maximum points keep solo scores exact and zero-sum", func(t *testing.T) {
		// Given: the largest accepted point value
		winners := [4]bool{true, false, false, false}
		require.True(t, ValidateRoundInput(MaxPoints, winners, true).Valid)

		// When: scoring a won solo with it
		scores := ComputeScores(MaxPoints, winners, true)

		// Then: the winner gains, the others lose and nothing overflows
		assert.Positive(t, scores[0])
		assert.Equal(t, MaxPoints*SoloMultiplier, scores[0])
		assert.Equal(t, -MaxPoints, scores[1])
		assert.Zero(t, sum(scores))
	})

	t.Run("Accepts solo rounds with one or three winners", func(t *testing.T) {
		assert.True(t, ValidateRoundInput(1, [4]bool{false, false, true, false}, true).Valid)
		assert.True(t, ValidateRoundInput(1, [4]bool{true, true, false, true}, true).Valid)
	})
}

func TestCountWinners(t *testing.T) {
	assert.Equal(t, 0, CountWinners([4]bool{}))
	assert.Equal(t, 3, CountWinners([4]bool{true, false, true, true}))
}

func TestWinnersFromScores(t *testing.T) {
	t.Run("Positive deltas mark winners", func(t *testing.T) {
		assert.Equal(t, [4]bool{true, false, false, true}, WinnersFromScores([4]int{2, -2, -2, 2}))
	})

	t.Run("Recovers the mask of computed rounds", func(t *testing.T) {
		// Given: a solo round lost by seat 1
		mask := [4]bool{true, false, true, true}
		scores := ComputeScores(3, mask, true)

		// When: recovering the winners
		winners := WinnersFromScores(scores)

		// Then: the original mask comes back
		assert.Equal(t, mask, winners)
	})
}
