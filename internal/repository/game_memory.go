package repository

import (
	"context"
	"sync"

	"github.com/rocketscienceinc/doko-tracker/internal/entity"
)

// memoryGame keeps the snapshot in process memory. It is lost on restart.
type memoryGame struct {
	mu   sync.Mutex
	body []byte
}

func NewMemoryGameRepository() GameRepository {
	return &memoryGame{}
}

func (that *memoryGame) Save(_ context.Context, game *entity.Game) error {
	gameJSON, err := marshalGame(game)
	if err != nil {
		return err
	}

	that.mu.Lock()
	that.body = gameJSON
	that.mu.Unlock()

	return nil
}

func (that *memoryGame) Load(_ context.Context) (*entity.Game, error) {
	that.mu.Lock()
	body := that.body
	that.mu.Unlock()

	if body == nil {
		return nil, ErrGameNotFound
	}

	return unmarshalGame(body)
}
