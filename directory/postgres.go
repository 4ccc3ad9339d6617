/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Seednode/puzzlebox/directory/migrations"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// OpenPostgres migrates the schema at databaseURL and returns a directory
// backed by a fresh connection pool. The caller owns the pool and must Close
// it.
func OpenPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := migrations.New(databaseURL, logger)
	if err != nil {
		return nil, err
	}

	version, err := m.Up()
	if closeErr := m.Close(); closeErr != nil {
		logger.Warn("failed to close migrator", "error", closeErr)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("directory schema ready", "version", version)

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewPostgres(pool), nil
}

func (p *Postgres) RoomHost(ctx context.Context, roomID string) (string, error) {
	var host *string

	err := p.pool.QueryRow(ctx,
		`SELECT host_user_id FROM rooms WHERE id = $1`, roomID,
	).Scan(&host)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("query room host: %w", err)
	case host == nil:
		return "", nil
	}

	return *host, nil
}

func (p *Postgres) DeleteRoom(ctx context.Context, roomID string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	return nil
}

func (p *Postgres) DisplayName(ctx context.Context, userID string) (string, error) {
	var name string

	err := p.pool.QueryRow(ctx,
		`SELECT username FROM users WHERE id = $1`, userID,
	).Scan(&name)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return "", ErrNotFound
	case err != nil:
		return "", fmt.Errorf("query display name: %w", err)
	}

	return name, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}
