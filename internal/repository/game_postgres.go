package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rocketscienceinc/doko-tracker/internal/entity"
)

type postgresGame struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresGameRepository(pool *pgxpool.Pool, key string) GameRepository {
	return &postgresGame{
		pool: pool,
		key:  keyOrDefault(key),
	}
}

func (that *postgresGame) Save(ctx context.Context, game *entity.Game) error {
	gameJSON, err := marshalGame(game)
	if err != nil {
		return err
	}

	query := `INSERT INTO snapshots (key, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`

	if _, err = that.pool.Exec(ctx, query, that.key, string(gameJSON)); err != nil {
		return fmt.Errorf("can't save game: %w", err)
	}

	return nil
}

func (that *postgresGame) Load(ctx context.Context) (*entity.Game, error) {
	query := `SELECT body::text FROM snapshots WHERE key = $1`

	var body string

	err := that.pool.QueryRow(ctx, query, that.key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't load game: %w", err)
	}

	return unmarshalGame([]byte(body))
}
