// Package retriever resolves the six logical GEM sources to bytes and parses
// them. Resolution order: the saved-file cache (when use_saved is set), the
// local data directory, then the HTTP origin. Files fetched from the origin
// can be copied into the cache for later offline runs.
package retriever

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"gem/internal/config"
	"gem/internal/datasource"
	"gem/internal/datasource/file"
	"gem/internal/datasource/httpds"
	csvparser "gem/internal/parser/csv"
	"gem/internal/parser/geojson"
	"gem/pkg/records"
)

// Retriever implements the pipeline's source-loading contract. One instance
// serves a whole run; it is safe for concurrent reads.
type Retriever struct {
	local    datasource.Source // data dir, nil when unconfigured
	origin   datasource.Source // HTTP origin, nil when unconfigured
	saved    datasource.Source // saved-file cache, nil when unconfigured
	savedDir string
	save     bool
	useSaved bool

	csv *csvparser.Parser
}

// New builds a Retriever from the run's data block. client is used for origin
// fetches; pass nil for defaults.
func New(d config.Data, client *httpds.Client) *Retriever {
	r := &Retriever{
		savedDir: d.SavedDir,
		save:     d.Save,
		useSaved: d.UseSaved,
		csv:      csvparser.NewParser(csvparser.Options{TrimSpace: true}),
	}
	if d.Dir != "" {
		r.local = file.NewLocal(d.Dir)
	}
	if d.OriginURL != "" {
		r.origin = httpds.NewOrigin(d.OriginURL, client)
	}
	if d.SavedDir != "" {
		r.saved = file.NewLocal(d.SavedDir)
	}
	return r
}

// open resolves one file name to a byte stream.
func (r *Retriever) open(ctx context.Context, filename string) (io.ReadCloser, error) {
	if r.useSaved {
		if r.saved == nil {
			return nil, fmt.Errorf("retriever: use_saved set but no saved_dir configured")
		}
		return r.saved.Open(ctx, filename)
	}

	if r.local != nil {
		rc, err := r.local.Open(ctx, filename)
		if err == nil {
			return rc, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if r.origin == nil {
		return nil, fmt.Errorf("retriever: %s: not found locally and no origin configured", filename)
	}
	rc, err := r.origin.Open(ctx, filename)
	if err != nil {
		return nil, err
	}
	if !r.save {
		return rc, nil
	}

	// Persist the fetched bytes before handing them to the parser.
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("retriever: read %s: %w", filename, err)
	}
	if err := r.saveFile(filename, b); err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (r *Retriever) saveFile(filename string, b []byte) error {
	if r.savedDir == "" {
		return fmt.Errorf("retriever: save set but no saved_dir configured")
	}
	if err := os.MkdirAll(r.savedDir, 0o755); err != nil {
		return fmt.Errorf("retriever: create saved_dir: %w", err)
	}
	path := filepath.Join(r.savedDir, filename)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("retriever: save %s: %w", path, err)
	}
	log.Printf("retriever: saved file=%s bytes=%d", path, len(b))
	return nil
}

// Rows loads and parses one CSV source. The logical name gets a .csv
// extension. The int is the number of malformed rows the parser skipped.
func (r *Retriever) Rows(ctx context.Context, name string) ([]records.Record, int, error) {
	rc, err := r.open(ctx, name+".csv")
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	rows, skipped, err := r.csv.Parse(rc)
	if err != nil {
		return nil, 0, fmt.Errorf("retriever: parse %s: %w", name, err)
	}
	return rows, skipped, nil
}

// Boundaries loads and parses one GeoJSON source. The logical name gets a
// .json extension.
func (r *Retriever) Boundaries(ctx context.Context, name string) (*geojson.FeatureCollection, error) {
	rc, err := r.open(ctx, name+".json")
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	fc, err := geojson.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("retriever: parse %s: %w", name, err)
	}
	return fc, nil
}
