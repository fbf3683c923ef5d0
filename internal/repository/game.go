package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/doko-tracker/internal/entity"
)

// DefaultKey is the key the snapshot is stored under unless configured otherwise.
const DefaultKey = "dokoGame"

var ErrGameNotFound = errors.New("game not found")

// GameRepository loads and saves the full game snapshot.
type GameRepository interface {
	Load(ctx context.Context) (*entity.Game, error)
	Save(ctx context.Context, game *entity.Game) error
}

type redisGame struct {
	client *redis.Client
	key    string
}

func NewGameRepository(client *redis.Client, key string) GameRepository {
	return &redisGame{
		client: client,
		key:    keyOrDefault(key),
	}
}

func (that *redisGame) Save(ctx context.Context, game *entity.Game) error {
	gameJSON, err := marshalGame(game)
	if err != nil {
		return err
	}

	err = that.client.Set(ctx, that.key, gameJSON, 0).Err()
	if err != nil {
		return fmt.Errorf("failed to set game: %w", err)
	}

	return nil
}

func (that *redisGame) Load(ctx context.Context) (*entity.Game, error) {
	response, err := that.client.Get(ctx, that.key).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrGameNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return unmarshalGame([]byte(response))
}

func keyOrDefault(key string) string {
	if key == "" {
		return DefaultKey
	}
	return key
}

func marshalGame(game *entity.Game) ([]byte, error) {
	snapshot := game.Clone()

	gameJSON, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("could not marshal game: %w", err)
	}

	return gameJSON, nil
}

func unmarshalGame(body []byte) (*entity.Game, error) {
	var game entity.Game
	if err := json.Unmarshal(body, &game); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}

	game.Normalize()

	return &game, nil
}
