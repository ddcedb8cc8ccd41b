// Package sink writes one country's publication files into the work
// directory: up to seven CSV tables plus the two boundary collections. Empty
// tables and empty collections produce no file. Every written file carries an
// xxh3 content digest so the state ledger can detect unchanged outputs.
package sink

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"gem/internal/gem"
	"gem/internal/parser/geojson"
)

// Resource formats.
const (
	FormatCSV     = "csv"
	FormatGeoJSON = "geojson"
)

// Boundary resource suffixes.
const (
	SuffixCountryBoundary  = "country-boundary"
	SuffixProvinceBoundary = "province-boundaries"
)

// Resource describes one written file.
type Resource struct {
	// Name is the file name, e.g. "khm-gem-gii-national.csv".
	Name string

	// Suffix is the table or boundary suffix the name was built from,
	// e.g. "gii-national" or "country-boundary".
	Suffix string

	// Path is the location on disk.
	Path string

	// Format is FormatCSV or FormatGeoJSON.
	Format string

	// Digest is the xxh3 hash of the file contents, hex-encoded.
	Digest string

	// Rows is the number of data rows (CSV) or features (GeoJSON).
	Rows int
}

// Writer writes country bundles into a single directory.
type Writer struct{ dir string }

// NewWriter creates the work directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create workdir: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// FileName returns the canonical per-country resource file name.
func FileName(iso3, suffix, format string) string {
	ext := ".csv"
	if format == FormatGeoJSON {
		ext = ".geojson"
	}
	return strings.ToLower(iso3) + "-gem-" + suffix + ext
}

// WriteCountry writes every non-empty table and boundary collection for one
// country and returns the resources in publication order. A write failure
// aborts the country; partially written files are left for inspection.
func (w *Writer) WriteCountry(cd gem.CountryData) ([]Resource, error) {
	var out []Resource

	for _, tr := range cd.Tables.TableResources() {
		if tr.Empty() {
			continue
		}
		res, err := w.writeCSV(cd.ISO3, tr)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}

	if cd.CountryBoundary != nil && len(cd.CountryBoundary.Features) > 0 {
		res, err := w.writeGeoJSON(cd.ISO3, SuffixCountryBoundary, cd.CountryBoundary)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if cd.ProvinceBoundaries != nil && len(cd.ProvinceBoundaries.Features) > 0 {
		res, err := w.writeGeoJSON(cd.ISO3, SuffixProvinceBoundary, cd.ProvinceBoundaries)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}

	return out, nil
}

// writeCSV writes one table: header row first, then data rows in their
// already-sorted order. The digest is computed while writing.
func (w *Writer) writeCSV(iso3 string, tr gem.TableResource) (Resource, error) {
	name := FileName(iso3, tr.Suffix, FormatCSV)
	path := filepath.Join(w.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return Resource{}, fmt.Errorf("sink: create %s: %w", path, err)
	}
	defer f.Close()

	h := xxh3.New()
	cw := csv.NewWriter(io.MultiWriter(f, h))
	if err := cw.Write(tr.Columns); err != nil {
		return Resource{}, fmt.Errorf("sink: write %s: %w", path, err)
	}
	for _, row := range tr.Rows {
		if err := cw.Write(row); err != nil {
			return Resource{}, fmt.Errorf("sink: write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return Resource{}, fmt.Errorf("sink: flush %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return Resource{}, fmt.Errorf("sink: close %s: %w", path, err)
	}

	return Resource{
		Name:   name,
		Suffix: tr.Suffix,
		Path:   path,
		Format: FormatCSV,
		Digest: fmt.Sprintf("%016x", h.Sum64()),
		Rows:   len(tr.Rows),
	}, nil
}

// writeGeoJSON re-serializes a filtered collection; features keep their
// source bytes.
func (w *Writer) writeGeoJSON(iso3, suffix string, fc *geojson.FeatureCollection) (Resource, error) {
	name := FileName(iso3, suffix, FormatGeoJSON)
	path := filepath.Join(w.dir, name)

	b, err := json.Marshal(fc)
	if err != nil {
		return Resource{}, fmt.Errorf("sink: marshal %s: %w", name, err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return Resource{}, fmt.Errorf("sink: write %s: %w", path, err)
	}

	return Resource{
		Name:   name,
		Suffix: suffix,
		Path:   path,
		Format: FormatGeoJSON,
		Digest: fmt.Sprintf("%016x", xxh3.Hash(b)),
		Rows:   len(fc.Features),
	}, nil
}
