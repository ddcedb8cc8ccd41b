// Package sqlite implements a SQLite-backed state.Repository using
// database/sql. One upsert per resource keeps the ledger small; a run touches
// at most a few hundred rows.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	// SQLite driver; replace with your preferred driver if desired.
	_ "modernc.org/sqlite" // alternative: github.com/mattn/go-sqlite3

	"gem/internal/state"
)

func init() {
	state.Register("sqlite", func(ctx context.Context, cfg state.Config) (state.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
}

const schema = `
CREATE TABLE IF NOT EXISTS gem_state (
	job        TEXT NOT NULL,
	resource   TEXT NOT NULL,
	digest     TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (job, resource)
);`

// Repository is a SQLite-backed implementation of state.Repository.
type Repository struct {
	db *sql.DB
}

// NewRepository opens a SQLite connection using the provided DSN.
//
// DSN is passed directly to database/sql; for example:
//
//	"file:state.db?cache=shared"
//	"state.db"
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// Apply a basic ping with context to fail fast on invalid DSNs.
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	return &Repository{db: db}, nil
}

// Init creates the ledger table when missing.
func (r *Repository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: init schema: %w", err)
	}
	return nil
}

// Digest returns the stored digest for one resource, or "" when unrecorded.
func (r *Repository) Digest(ctx context.Context, job, resource string) (string, error) {
	var digest string
	err := r.db.QueryRowContext(ctx,
		"SELECT digest FROM gem_state WHERE job = ? AND resource = ?",
		job, resource,
	).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: digest lookup: %w", err)
	}
	return digest, nil
}

// Record stores or replaces the digest for one resource.
func (r *Repository) Record(ctx context.Context, job, resource, digest string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO gem_state (job, resource, digest, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (job, resource) DO UPDATE SET
		   digest = excluded.digest,
		   updated_at = excluded.updated_at`,
		job, resource, digest, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (r *Repository) Close() error { return r.db.Close() }
