package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"gem/internal/config"
)

func writeResourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "khm-gem-gii-national.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write resource: %v", err)
	}
	return path
}

/*
TestUpsert publishes one dataset and verifies the metadata POST and the
per-resource upload, including the auth header.
*/
func TestUpsert(t *testing.T) {
	type seen struct {
		path, auth, contentType string
		body                    []byte
	}
	var calls []seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, seen{r.URL.Path, r.Header.Get("Authorization"), r.Header.Get("Content-Type"), b})
	}))
	defer srv.Close()

	c, err := NewClient(config.Catalog{BaseURL: srv.URL, APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ds := Dataset{
		Name:     "khm-adpc-gem",
		Title:    "Cambodia - Gender Equality Monitor",
		Location: "KHM",
		Resources: []Resource{
			{Name: "khm-gem-gii-national.csv", Format: "csv", Path: writeResourceFile(t, "iso3,year\nKHM,2020\n")},
		},
	}
	if err := c.Upsert(context.Background(), ds); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("server saw %d calls; want 2", len(calls))
	}
	if calls[0].path != "/api/datasets" || calls[0].auth != "Bearer secret" {
		t.Fatalf("dataset call = %+v", calls[0])
	}
	var got Dataset
	if err := json.Unmarshal(calls[0].body, &got); err != nil {
		t.Fatalf("dataset payload: %v", err)
	}
	if got.Name != "khm-adpc-gem" || len(got.Resources) != 1 {
		t.Fatalf("payload = %+v", got)
	}

	if calls[1].path != "/api/datasets/khm-adpc-gem/resources/khm-gem-gii-national.csv" {
		t.Fatalf("resource call path = %q", calls[1].path)
	}
	if calls[1].contentType != "text/csv" || string(calls[1].body) != "iso3,year\nKHM,2020\n" {
		t.Fatalf("resource call = %+v", calls[1])
	}
}

/*
TestUpsert_UnknownLocation maps a 404 from the catalog to ErrUnknownLocation
so callers can skip the country.
*/
func TestUpsert_UnknownLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c, err := NewClient(config.Catalog{BaseURL: srv.URL, APIKey: "secret"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	err = c.Upsert(context.Background(), Dataset{Name: "zzz-adpc-gem", Location: "ZZZ"})
	if !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("err = %v; want ErrUnknownLocation", err)
	}
}

/* TestUpsert_DryRun sends nothing. */
func TestUpsert_DryRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("dry run must not hit the catalog")
	}))
	defer srv.Close()

	c, err := NewClient(config.Catalog{BaseURL: srv.URL, DryRun: true}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if err := c.Upsert(context.Background(), Dataset{Name: "khm-adpc-gem"}); err != nil {
		t.Fatalf("Upsert dry-run: %v", err)
	}
}

/* TestNewClient_EnvKey resolves env: keys and rejects empty ones. */
func TestNewClient_EnvKey(t *testing.T) {
	t.Setenv("GEM_TEST_CATALOG_KEY", "from-env")
	c, err := NewClient(config.Catalog{BaseURL: "http://x", APIKey: "env:GEM_TEST_CATALOG_KEY"}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.apiKey != "from-env" {
		t.Fatalf("apiKey = %q", c.apiKey)
	}

	t.Setenv("GEM_TEST_CATALOG_KEY", "")
	if _, err := NewClient(config.Catalog{BaseURL: "http://x", APIKey: "env:GEM_TEST_CATALOG_KEY"}, nil); err == nil {
		t.Fatalf("expected error for empty env key")
	}
}
