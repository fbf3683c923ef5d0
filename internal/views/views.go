// Package views derives the score table and chart data from a game snapshot.
// Everything here is recomputed on demand and never stored.
package views

import (
	"sort"
	"strconv"

	"github.com/rocketscienceinc/doko-tracker/internal/entity"
)

const (
	// SoloLabel replaces the round number of solo rounds.
	SoloLabel = "S"

	// GameLength is the number of numbered rounds after which a separator is shown.
	GameLength = 4
)

// TotalsRow is one table row: the round itself plus the running totals after it.
type TotalsRow struct {
	Index     int                     `json:"index"`
	Label     string                  `json:"label"`
	Points    int                     `json:"points"`
	Solo      bool                    `json:"solo"`
	Scores    [entity.PlayerCount]int `json:"scores"`
	Totals    [entity.PlayerCount]int `json:"totals"`
	Separator bool                    `json:"separator"`
}

type Range struct {
	Min  int `json:"min"`
	Max  int `json:"max"`
	Span int `json:"span"`
}

type Standing struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// RunningTotals accumulates the per-seat scores in round order. Non-solo
// rounds are numbered from 1; solo rounds do not advance the counter.
func RunningTotals(rounds []entity.Round) []TotalsRow {
	rows := make([]TotalsRow, 0, len(rounds))

	var totals [entity.PlayerCount]int
	numbered := 0

	for index, round := range rounds {
		for seat, score := range round.Scores {
			totals[seat] += score
		}

		row := TotalsRow{
			Index:  index,
			Label:  SoloLabel,
			Points: round.Points,
			Solo:   round.Solo,
			Scores: round.Scores,
			Totals: totals,
		}

		if !round.Solo {
			numbered++
			row.Label = strconv.Itoa(numbered)
			row.Separator = numbered%GameLength == 0
		}

		rows = append(rows, row)
	}

	return rows
}

// CumulativeSeries returns, per seat, 0 followed by the total after each round.
func CumulativeSeries(rounds []entity.Round) [entity.PlayerCount][]int {
	var series [entity.PlayerCount][]int
	for seat := range series {
		series[seat] = make([]int, 1, len(rounds)+1)
	}

	for _, round := range rounds {
		for seat := range series {
			previous := series[seat][len(series[seat])-1]
			series[seat] = append(series[seat], previous+round.Scores[seat])
		}
	}

	return series
}

// SeriesRange spans all values of all series. Span is never zero.
func SeriesRange(series [entity.PlayerCount][]int) Range {
	first := true
	var result Range

	for _, values := range series {
		for _, value := range values {
			if first || value < result.Min {
				result.Min = value
			}
			if first || value > result.Max {
				result.Max = value
			}
			first = false
		}
	}

	result.Span = result.Max - result.Min
	if result.Span == 0 {
		result.Span = 1
	}

	return result
}

// Standings ranks the players by final total, best first; ties keep seat order.
func Standings(game *entity.Game) []Standing {
	standings := make([]Standing, entity.PlayerCount)
	for seat, name := range game.Players {
		standings[seat] = Standing{Seat: seat, Name: name}
	}

	for _, round := range game.Rounds {
		for seat, score := range round.Scores {
			standings[seat].Total += score
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Total > standings[j].Total
	})

	return standings
}
