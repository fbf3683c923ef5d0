package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rocketscienceinc/doko-tracker/internal/apperror"
	"github.com/rocketscienceinc/doko-tracker/internal/entity"
	"github.com/rocketscienceinc/doko-tracker/internal/repository"
)

type gameRepo interface {
	Load(ctx context.Context) (*entity.Game, error)
	Save(ctx context.Context, game *entity.Game) error
}

// Scoreboard owns the single game state of the process. Every mutation is
// written through to the repository before it returns. If the write fails
// the in-memory change stays applied and the error is returned.
type Scoreboard struct {
	logger *slog.Logger
	repo   gameRepo

	mu    sync.RWMutex
	state *entity.Game
}

func NewScoreboard(logger *slog.Logger, repo gameRepo) *Scoreboard {
	return &Scoreboard{
		logger: logger.With("component", "scoreboard"),
		repo:   repo,
		state:  entity.NewGame(),
	}
}

// Load replaces the state with the persisted snapshot, if there is one.
func (that *Scoreboard) Load(ctx context.Context) (*entity.Game, error) {
	log := that.logger.With("method", "Load")

	game, err := that.repo.Load(ctx)
	if errors.Is(err, repository.ErrGameNotFound) {
		log.Info("no saved game found, starting with defaults")
		return that.Get(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	game.Normalize()

	that.mu.Lock()
	that.state = game
	that.mu.Unlock()

	log.Info("saved game loaded", "rounds", len(game.Rounds))

	return that.Get(), nil
}

// Get returns a copy of the current state.
func (that *Scoreboard) Get() *entity.Game {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return that.state.Clone()
}

func (that *Scoreboard) Replace(ctx context.Context, game *entity.Game) error {
	return that.mutate(ctx, "Replace", func(state *entity.Game) error {
		next := game.Clone()
		*state = *next
		return nil
	})
}

// RenamePlayer stores name as given; resolving empty names to a default is up to the caller.
func (that *Scoreboard) RenamePlayer(ctx context.Context, index int, name string) error {
	if !entity.IsValidPlayerIndex(index) {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidPlayerIndex, index)
	}

	return that.mutate(ctx, "RenamePlayer", func(state *entity.Game) error {
		state.Players[index] = name
		return nil
	})
}

// AppendRound adds round at the end of the history and returns its index.
func (that *Scoreboard) AppendRound(ctx context.Context, round entity.Round) (int, error) {
	var index int

	err := that.mutate(ctx, "AppendRound", func(state *entity.Game) error {
		state.Rounds = append(state.Rounds, round)
		index = len(state.Rounds) - 1
		return nil
	})
	if err != nil {
		return 0, err
	}

	return index, nil
}

// ReplaceRoundAt overwrites an existing round. The index must come from a current read.
func (that *Scoreboard) ReplaceRoundAt(ctx context.Context, index int, round entity.Round) error {
	return that.mutate(ctx, "ReplaceRoundAt", func(state *entity.Game) error {
		if !state.HasRound(index) {
			return fmt.Errorf("%w: index %d", apperror.ErrRoundNotFound, index)
		}

		state.Rounds[index] = round
		return nil
	})
}

// ClearRounds drops the round history and keeps the players.
func (that *Scoreboard) ClearRounds(ctx context.Context) error {
	return that.mutate(ctx, "ClearRounds", func(state *entity.Game) error {
		state.Rounds = []entity.Round{}
		return nil
	})
}

func (that *Scoreboard) ReplacePlayers(ctx context.Context, names [entity.PlayerCount]string) error {
	return that.mutate(ctx, "ReplacePlayers", func(state *entity.Game) error {
		state.Players = names
		return nil
	})
}

func (that *Scoreboard) ReplaceRounds(ctx context.Context, rounds []entity.Round) error {
	return that.mutate(ctx, "ReplaceRounds", func(state *entity.Game) error {
		next := make([]entity.Round, len(rounds))
		copy(next, rounds)
		state.Rounds = next
		return nil
	})
}

// mutate applies change under the write lock and persists the full snapshot.
func (that *Scoreboard) mutate(ctx context.Context, method string, change func(state *entity.Game) error) error {
	log := that.logger.With("method", method)

	that.mu.Lock()
	defer that.mu.Unlock()

	if err := change(that.state); err != nil {
		return err
	}

	if err := that.repo.Save(ctx, that.state); err != nil {
		log.Error("failed to persist game", "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}

	log.Debug("game updated", "rounds", len(that.state.Rounds))

	return nil
}
