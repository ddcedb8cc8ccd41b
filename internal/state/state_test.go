package state

import (
	"context"
	"fmt"
	"testing"
)

type memRepo struct {
	digests map[string]string
	closed  bool
}

func (m *memRepo) Init(context.Context) error { return nil }

func (m *memRepo) Digest(_ context.Context, job, resource string) (string, error) {
	return m.digests[job+"/"+resource], nil
}

func (m *memRepo) Record(_ context.Context, job, resource, digest string) error {
	m.digests[job+"/"+resource] = digest
	return nil
}

func (m *memRepo) Close() error {
	m.closed = true
	return nil
}

/* TestRegistry covers Register, New, Kinds, and the unknown-kind error. */
func TestRegistry(t *testing.T) {
	repo := &memRepo{digests: map[string]string{}}
	Register("mem-test", func(ctx context.Context, cfg Config) (Repository, error) {
		if cfg.DSN != "dsn" {
			return nil, fmt.Errorf("unexpected dsn %q", cfg.DSN)
		}
		return repo, nil
	})

	got, err := New(context.Background(), Config{Kind: "mem-test", DSN: "dsn"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got != repo {
		t.Fatalf("factory not used")
	}

	found := false
	for _, k := range Kinds() {
		if k == "mem-test" {
			found = true
		}
	}
	if !found {
		t.Fatalf("Kinds() = %v; missing mem-test", Kinds())
	}

	if _, err := New(context.Background(), Config{Kind: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

/* TestUnchanged verifies the skip decision helper. */
func TestUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := &memRepo{digests: map[string]string{}}

	// Never recorded: changed.
	same, err := Unchanged(ctx, repo, "gem", "khm-gem-gii-national.csv", "aaaa")
	if err != nil || same {
		t.Fatalf("Unchanged(new) = %v, %v; want false, nil", same, err)
	}

	if err := repo.Record(ctx, "gem", "khm-gem-gii-national.csv", "aaaa"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	same, err = Unchanged(ctx, repo, "gem", "khm-gem-gii-national.csv", "aaaa")
	if err != nil || !same {
		t.Fatalf("Unchanged(same) = %v, %v; want true, nil", same, err)
	}

	same, err = Unchanged(ctx, repo, "gem", "khm-gem-gii-national.csv", "bbbb")
	if err != nil || same {
		t.Fatalf("Unchanged(different) = %v, %v; want false, nil", same, err)
	}
}
