package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSeriesNotFound is returned when a series code is absent from the catalog.
var ErrSeriesNotFound = errors.New("series not found in catalog")

// Store is a Postgres-backed store for indicator observations and ETL run logs.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a new Store and verifies the connection.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Store{pool: pool, logger: slog.Default()}, nil
}

// SetLogger replaces the store's logger.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Migrate runs the schema DDL. It is idempotent.
func (s *Store) Migrate(ctx context.Context) error {
	return s.MigrateSQL(ctx, schemaDDL)
}

// MigrateSQL runs caller-provided DDL in place of the built-in schema.
func (s *Store) MigrateSQL(ctx context.Context, ddl string) error {
	_, err := s.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
