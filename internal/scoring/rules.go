package scoring

import (
	"math"
	"slices"

	"github.com/rocketscienceinc/doko-tracker/internal/entity"
)

const (
	SoloMultiplier    = 3
	NormalWinnerCount = 2
)

// MaxPoints is the largest accepted point value. Its solo multiple stays an
// exact integer in both int and a JSON number.
const MaxPoints = min((1<<53-1)/SoloMultiplier, math.MaxInt/SoloMultiplier)

// SoloWinnerCounts are the accepted winner counts of a solo round: the solo
// player alone, or the three players against them.
var SoloWinnerCounts = []int{1, 3}

const (
	MsgInvalidPoints     = "Please enter a valid point value (0 or greater)."
	MsgNoWinner          = "Please select at least one winner."
	MsgSoloWinnerCount   = "For a solo round, select exactly 1 winner (solo player) or 3 winners (against solo player)."
	MsgNormalWinnerCount = "For a normal round, select exactly 2 winners."
)

// Validation is the outcome of ValidateRoundInput. Message is empty when Valid.
type Validation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func invalid(message string) Validation {
	return Validation{Valid: false, Message: message}
}

// ComputeScores turns a round entry into per-seat deltas, aligned with winners.
// It does not validate: callers must run ValidateRoundInput first.
func ComputeScores(points int, winners [entity.PlayerCount]bool, solo bool) [entity.PlayerCount]int {
	var scores [entity.PlayerCount]int

	switch {
	case !solo:
		for i, won := range winners {
			scores[i] = pick(won, points, -points)
		}
	// the solo player won alone
	case CountWinners(winners) == 1:
		for i, won := range winners {
			scores[i] = pick(won, points*SoloMultiplier, -points)
		}
	// the three others beat the solo player
	default:
		for i, won := range winners {
			scores[i] = pick(won, points, -points*SoloMultiplier)
		}
	}

	return scores
}

func pick(won bool, win, loss int) int {
	if won {
		return win
	}
	return loss
}

// ValidateRoundInput checks a raw round entry. Points is a float so that
// non-numeric input (NaN), fractions and out of range values can be rejected.
func ValidateRoundInput(points float64, winners [entity.PlayerCount]bool, solo bool) Validation {
	if math.IsNaN(points) || points < 0 || points > MaxPoints || points != math.Trunc(points) {
		return invalid(MsgInvalidPoints)
	}

	winnerCount := CountWinners(winners)
	if winnerCount == 0 {
		return invalid(MsgNoWinner)
	}

	if solo {
		if !slices.Contains(SoloWinnerCounts, winnerCount) {
			return invalid(MsgSoloWinnerCount)
		}
	} else if winnerCount != NormalWinnerCount {
		return invalid(MsgNormalWinnerCount)
	}

	return Validation{Valid: true}
}

func CountWinners(winners [entity.PlayerCount]bool) int {
	count := 0
	for _, won := range winners {
		if won {
			count++
		}
	}

	return count
}

// WinnersFromScores recovers the winner mask of a stored round: every seat
// with a positive delta won.
func WinnersFromScores(scores [entity.PlayerCount]int) [entity.PlayerCount]bool {
	var winners [entity.PlayerCount]bool
	for i, score := range scores {
		winners[i] = score > 0
	}

	return winners
}
