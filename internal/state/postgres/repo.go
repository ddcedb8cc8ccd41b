// Package postgres implements a Postgres-backed state.Repository using
// pgxpool. It is the backend of choice when several pipeline deployments
// share one ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gem/internal/state"
)

func init() {
	state.Register("postgres", func(ctx context.Context, cfg state.Config) (state.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS gem_state (
	job        TEXT NOT NULL,
	resource   TEXT NOT NULL,
	digest     TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (job, resource)
);`

// Repository is a Postgres-backed implementation of state.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository connects a pgx pool using the provided DSN
// (e.g. "postgresql://user@host/db").
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Init creates the ledger table when missing.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("postgres: init schema: %w", err)
	}
	return nil
}

// Digest returns the stored digest for one resource, or "" when unrecorded.
func (r *Repository) Digest(ctx context.Context, job, resource string) (string, error) {
	var digest string
	err := r.pool.QueryRow(ctx,
		"SELECT digest FROM gem_state WHERE job = $1 AND resource = $2",
		job, resource,
	).Scan(&digest)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("postgres: digest lookup: %w", err)
	}
	return digest, nil
}

// Record stores or replaces the digest for one resource.
func (r *Repository) Record(ctx context.Context, job, resource, digest string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO gem_state (job, resource, digest, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (job, resource) DO UPDATE SET
		   digest = excluded.digest,
		   updated_at = excluded.updated_at`,
		job, resource, digest, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("postgres: record: %w", err)
	}
	return nil
}

// Close releases the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}
