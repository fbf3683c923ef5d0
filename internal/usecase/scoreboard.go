package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rocketscienceinc/doko-tracker/internal/apperror"
	"github.com/rocketscienceinc/doko-tracker/internal/entity"
	"github.com/rocketscienceinc/doko-tracker/internal/scoring"
	"github.com/rocketscienceinc/doko-tracker/internal/views"
)

type ScoreboardUseCase interface {
	Game() *entity.Game

	RecordRound(ctx context.Context, input RoundInput) (*RecordedRound, scoring.Validation, error)
	EditRound(ctx context.Context, index int, input RoundInput) (*RecordedRound, scoring.Validation, error)
	RoundWinners(index int) ([entity.PlayerCount]bool, error)
	Reset(ctx context.Context) error

	RenamePlayer(ctx context.Context, index int, name string) (string, error)
	ReplacePlayers(ctx context.Context, names [entity.PlayerCount]string) error

	Import(ctx context.Context, data ImportData) (int, error)
	Export() *entity.Game

	Overview() Overview
}

type scoreboard interface {
	Get() *entity.Game
	RenamePlayer(ctx context.Context, index int, name string) error
	AppendRound(ctx context.Context, round entity.Round) (int, error)
	ReplaceRoundAt(ctx context.Context, index int, round entity.Round) error
	ClearRounds(ctx context.Context) error
	ReplacePlayers(ctx context.Context, names [entity.PlayerCount]string) error
	ReplaceRounds(ctx context.Context, rounds []entity.Round) error
}

// RoundInput is a round as entered by a user, before validation.
type RoundInput struct {
	Points  float64
	Winners [entity.PlayerCount]bool
	Solo    bool
}

// RecordedRound is a stored round together with its position in the history.
type RecordedRound struct {
	Index int          `json:"index"`
	Round entity.Round `json:"round"`
}

// ImportData is the parsed structure handed over by an importer. Its shape is trusted.
type ImportData struct {
	PlayerNames [entity.PlayerCount]string `json:"playerNames"`
	Rounds      []ImportedRound            `json:"rounds"`
}

type ImportedRound struct {
	Points      int                     `json:"points"`
	RoundScores [entity.PlayerCount]int `json:"roundScores"`
	IsSolo      bool                    `json:"isSolo"`
}

// Overview bundles everything a table or chart renderer needs.
type Overview struct {
	Players   [entity.PlayerCount]string `json:"players"`
	Totals    []views.TotalsRow          `json:"totals"`
	Series    [entity.PlayerCount][]int  `json:"series"`
	Range     views.Range                `json:"range"`
	Standings []views.Standing           `json:"standings"`
}

type scoreboardUseCase struct {
	logger *slog.Logger
	board  scoreboard
}

func NewScoreboardUseCase(logger *slog.Logger, board scoreboard) ScoreboardUseCase {
	return &scoreboardUseCase{
		logger: logger.With("component", "usecase"),
		board:  board,
	}
}

func (that *scoreboardUseCase) Game() *entity.Game {
	return that.board.Get()
}

// RecordRound validates the input, computes the scores and appends the round.
// A rejected input is reported through the returned Validation, not as an error.
func (that *scoreboardUseCase) RecordRound(ctx context.Context, input RoundInput) (*RecordedRound, scoring.Validation, error) {
	round, validation := buildRound(input)
	if !validation.Valid {
		return nil, validation, nil
	}

	index, err := that.board.AppendRound(ctx, *round)
	if err != nil {
		return nil, validation, fmt.Errorf("failed to add round: %w", err)
	}

	that.logger.Debug("round recorded", "index", index, "points", round.Points, "solo", round.Solo)

	return &RecordedRound{Index: index, Round: *round}, validation, nil
}

func (that *scoreboardUseCase) EditRound(ctx context.Context, index int, input RoundInput) (*RecordedRound, scoring.Validation, error) {
	round, validation := buildRound(input)
	if !validation.Valid {
		return nil, validation, nil
	}

	if err := that.board.ReplaceRoundAt(ctx, index, *round); err != nil {
		return nil, validation, fmt.Errorf("failed to update round: %w", err)
	}

	that.logger.Debug("round edited", "index", index, "points", round.Points, "solo", round.Solo)

	return &RecordedRound{Index: index, Round: *round}, validation, nil
}

func buildRound(input RoundInput) (*entity.Round, scoring.Validation) {
	validation := scoring.ValidateRoundInput(input.Points, input.Winners, input.Solo)
	if !validation.Valid {
		return nil, validation
	}

	points := int(input.Points)

	return &entity.Round{
		Points: points,
		Scores: scoring.ComputeScores(points, input.Winners, input.Solo),
		Solo:   input.Solo,
	}, validation
}

// RoundWinners recovers the winner mask of a stored round, for pre-filling an edit.
func (that *scoreboardUseCase) RoundWinners(index int) ([entity.PlayerCount]bool, error) {
	game := that.board.Get()
	if !game.HasRound(index) {
		return [entity.PlayerCount]bool{}, fmt.Errorf("%w: index %d", apperror.ErrRoundNotFound, index)
	}

	return scoring.WinnersFromScores(game.Rounds[index].Scores), nil
}

func (that *scoreboardUseCase) Reset(ctx context.Context) error {
	if err := that.board.ClearRounds(ctx); err != nil {
		return fmt.Errorf("failed to reset game: %w", err)
	}

	that.logger.Info("game reset")

	return nil
}

// RenamePlayer trims the name and falls back to the seat's default name when
// nothing is left. It returns the name that was stored.
func (that *scoreboardUseCase) RenamePlayer(ctx context.Context, index int, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = entity.DefaultPlayerName(index)
	}

	if err := that.board.RenamePlayer(ctx, index, name); err != nil {
		return "", fmt.Errorf("failed to rename player: %w", err)
	}

	return name, nil
}

func (that *scoreboardUseCase) ReplacePlayers(ctx context.Context, names [entity.PlayerCount]string) error {
	if err := that.board.ReplacePlayers(ctx, names); err != nil {
		return fmt.Errorf("failed to replace players: %w", err)
	}

	return nil
}

// Import replaces players and rounds with the imported ones and returns the
// number of imported rounds.
func (that *scoreboardUseCase) Import(ctx context.Context, data ImportData) (int, error) {
	if err := that.board.ReplacePlayers(ctx, data.PlayerNames); err != nil {
		return 0, fmt.Errorf("failed to import players: %w", err)
	}

	rounds := make([]entity.Round, 0, len(data.Rounds))
	for _, imported := range data.Rounds {
		rounds = append(rounds, entity.Round{
			Points: imported.Points,
			Scores: imported.RoundScores,
			Solo:   imported.IsSolo,
		})
	}

	if err := that.board.ReplaceRounds(ctx, rounds); err != nil {
		return 0, fmt.Errorf("failed to import rounds: %w", err)
	}

	that.logger.Info("game imported", "rounds", len(rounds))

	return len(rounds), nil
}

func (that *scoreboardUseCase) Export() *entity.Game {
	return that.board.Get()
}

func (that *scoreboardUseCase) Overview() Overview {
	game := that.board.Get()
	series := views.CumulativeSeries(game.Rounds)

	return Overview{
		Players:   game.Players,
		Totals:    views.RunningTotals(game.Rounds),
		Series:    series,
		Range:     views.SeriesRange(series),
		Standings: views.Standings(game),
	}
}
