package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/doko-tracker/internal/entity"
)

type sqliteGame struct {
	conn *sql.DB
	key  string
}

func NewSQLiteGameRepository(conn *sql.DB, key string) GameRepository {
	return &sqliteGame{
		conn: conn,
		key:  keyOrDefault(key),
	}
}

func (that *sqliteGame) Save(ctx context.Context, game *entity.Game) error {
	gameJSON, err := marshalGame(game)
	if err != nil {
		return err
	}

	query := `INSERT INTO snapshots (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`

	_, err = that.conn.ExecContext(ctx, query, that.key, string(gameJSON), time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save game: %w", err)
	}

	return nil
}

func (that *sqliteGame) Load(ctx context.Context) (*entity.Game, error) {
	query := `SELECT body FROM snapshots WHERE key = ?`

	var body string

	err := that.conn.QueryRowContext(ctx, query, that.key).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("can't load game: %w", err)
	}

	return unmarshalGame([]byte(body))
}
