package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dgbank/dgbank/internal/config"
	"github.com/dgbank/dgbank/internal/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	Config *config.Config
	DB     *sql.DB
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := initDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := postgres.New(db).Bootstrap(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("error closing database after bootstrap failure: %w", closeErr)
		}
		return nil, err
	}

	return &App{
		Config: cfg,
		DB:     db,
	}, nil
}

func initDB(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err = db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("error closing database after ping failure: %w", closeErr)
		}
		return nil, fmt.Errorf("error pinging database: %w", err)
	}

	return db, nil
}
