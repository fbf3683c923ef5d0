package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/doko-tracker/internal/config"
	"github.com/rocketscienceinc/doko-tracker/internal/repository"
	"github.com/rocketscienceinc/doko-tracker/internal/repository/storage"
	"github.com/rocketscienceinc/doko-tracker/internal/service"
	"github.com/rocketscienceinc/doko-tracker/internal/usecase"
	"github.com/rocketscienceinc/doko-tracker/transport/rest"
)

var (
	ErrAddrNotFound  = errors.New("redis host is empty")
	ErrDSNNotFound   = errors.New("postgres dsn is empty")
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	gameRepo, closer, err := OpenRepository(ctx, conf)
	if err != nil {
		return fmt.Errorf("could not open %s storage: %w", conf.Storage.Driver, err)
	}

	defer func() {
		if err = closer.Close(); err != nil {
			log.Error("could not close storage", "error", err)
		}
	}()

	scoreboard := service.NewScoreboard(logger, gameRepo)
	if _, err = scoreboard.Load(ctx); err != nil {
		return fmt.Errorf("could not load game: %w", err)
	}

	scoreboardUseCase := usecase.NewScoreboardUseCase(logger, scoreboard)
	router := rest.NewRouter(logger, rest.NewHandlers(logger, scoreboardUseCase))

	log.Info("Starting HTTP server", "port", conf.HTTPPort, "storage", conf.Storage.Driver)
	if err = rest.Start(ctx, conf.HTTPPort, router); err != nil {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	log.Info("Application context canceled, shutting down")

	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenRepository connects the configured storage driver and returns the game
// repository on top of it, plus the connection to close on shutdown.
func OpenRepository(ctx context.Context, conf *config.Config) (repository.GameRepository, io.Closer, error) {
	switch conf.Storage.Driver {
	case config.DriverMemory:
		return repository.NewMemoryGameRepository(), nopCloser{}, nil

	case config.DriverRedis:
		if conf.Redis.Host == "" {
			return nil, nil, ErrAddrNotFound
		}

		redisStorage, err := storage.NewRedisStorage(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
		}

		return repository.NewGameRepository(redisStorage.Connection, conf.Storage.Key), redisStorage, nil

	case config.DriverSQLite:
		sqliteStorage, err := storage.NewSQLiteStorage(conf.SQLite.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("could not open sqlite storage: %w", err)
		}

		if err = sqliteStorage.Init(ctx); err != nil {
			_ = sqliteStorage.Close()
			return nil, nil, fmt.Errorf("could not init sqlite storage: %w", err)
		}

		return repository.NewSQLiteGameRepository(sqliteStorage.Connection, conf.Storage.Key), sqliteStorage, nil

	case config.DriverPostgres:
		if conf.Postgres.DSN == "" {
			return nil, nil, ErrDSNNotFound
		}

		postgresStorage, err := storage.NewPostgresStorage(ctx, conf.Postgres.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("could not connect to postgres storage: %w", err)
		}

		if err = postgresStorage.Init(ctx); err != nil {
			_ = postgresStorage.Close()
			return nil, nil, fmt.Errorf("could not init postgres storage: %w", err)
		}

		return repository.NewPostgresGameRepository(postgresStorage.Connection, conf.Storage.Key), postgresStorage, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, conf.Storage.Driver)
	}
}
