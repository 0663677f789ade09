// Package programdb persists hardware trees in the PostgreSQL program
// database.
package programdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/ramstk-analysis/pkg/hardware"
	"github.com/dd0wney/ramstk-analysis/pkg/logging"
	"github.com/dd0wney/ramstk-analysis/pkg/metrics"
)

// PGStore loads and saves hardware trees using PostgreSQL
type PGStore struct {
	pool    *pgxpool.Pool
	logger  logging.Logger
	metrics *metrics.Registry
}

var _ hardware.Store = (*PGStore)(nil)

// Option configures a PGStore.
type Option func(*PGStore)

// WithLogger sets the store's logger.
func WithLogger(l logging.Logger) Option {
	return func(s *PGStore) { s.logger = l }
}

// WithMetrics records store operations in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *PGStore) { s.metrics = r }
}

// NewPGStore connects to databaseURL and creates the tables if they don't
// exist.
func NewPGStore(ctx context.Context, databaseURL string, opts ...Option) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	s := &PGStore{pool: pool, logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

// Ping checks database connectivity
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the database connection pool
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// observe records the outcome of one store operation.
func (s *PGStore) observe(op string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
		s.logger.Error("program database operation failed", logging.Operation(op), logging.Error(err))
	} else {
		s.logger.Debug("program database operation", logging.Operation(op), logging.Latency(time.Since(start)))
	}
	if s.metrics != nil {
		s.metrics.RecordStoreOperation(op, status, time.Since(start))
	}
}
