// Package state contains the backend-agnostic contract for the run ledger.
//
// The ledger remembers the content digest of every resource written in
// previous runs, keyed by job and resource name. Publication can then skip
// resources whose bytes did not change. Concrete backends (SQLite, Postgres)
// live in subpackages and register themselves through the factory registry;
// importing the "all" subpackage links every backend into a binary.
package state

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is the backend connection string (a file path for sqlite).
	DSN string
}

// Repository is the run-ledger contract.
type Repository interface {
	// Init creates the ledger schema when missing.
	Init(ctx context.Context) error

	// Digest returns the stored digest for one resource, or "" when the
	// resource has never been recorded.
	Digest(ctx context.Context, job, resource string) (string, error)

	// Record stores or replaces the digest for one resource.
	Record(ctx context.Context, job, resource, digest string) error

	Close() error
}

// Factory constructs a Repository from a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a backend factory under kind. Backends call Register from
// their init functions; a duplicate kind panics because it is a programming
// error, not a runtime condition.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[kind]; dup {
		panic(fmt.Sprintf("state: duplicate backend %q", kind))
	}
	factories[kind] = f
}

// New constructs the backend selected by cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("state: unknown backend %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Unchanged reports whether the stored digest for resource equals digest. A
// lookup error is returned rather than treated as "changed" so callers can
// decide how much to trust a degraded ledger.
func Unchanged(ctx context.Context, r Repository, job, resource, digest string) (bool, error) {
	old, err := r.Digest(ctx, job, resource)
	if err != nil {
		return false, err
	}
	return old != "" && old == digest, nil
}
