// Package config defines the canonical, JSON-serializable configuration model
// for the GEM pipeline. It is intentionally small, explicit, and dependency-
// free so that run configs can be loaded from disk and passed through the
// program without additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in run files
//     under configs/*.json.
//  3. Minimalism: No third-party config libraries; decoding is performed by the
//     standard library, with a light Options helper for typed access.
//
// Example (trimmed):
//
//	{
//	  "job":     "gem",
//	  "data":    { "dir": "data", "origin_url": "https://example.org/gem/" },
//	  "work":    { "dir": "out" },
//	  "catalog": { "base_url": "https://catalog.example.org", "tags": ["gender"] },
//	  "state":   { "kind": "sqlite", "dsn": "state.db" },
//	  "runtime": { "workers": 4 }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Run describes one full pipeline run in JSON. It is the top-level object
// decoded from a run file.
type Run struct {
	// Job names the run for logging, metrics labeling, and the state ledger.
	Job string `json:"job"`

	// Data describes where the six input files come from.
	Data Data `json:"data"`

	// Work configures the scratch directory that receives generated outputs.
	Work Work `json:"work"`

	// Catalog configures publication of per-country datasets.
	Catalog Catalog `json:"catalog"`

	// State configures the run ledger used to skip unchanged inputs.
	State State `json:"state"`

	Runtime RuntimeConfig `json:"runtime"`
}

// RuntimeConfig controls per-run concurrency.
type RuntimeConfig struct {
	// Workers bounds concurrent country processing. Values below 2 run
	// countries sequentially.
	Workers int `json:"workers"`
}

// Data identifies the input files. The six logical sources are resolved
// against Dir first and fetched from OriginURL when missing.
type Data struct {
	// Dir is the local directory holding the input files.
	Dir string `json:"dir"`

	// OriginURL is the base URL downloads are fetched from when a source is
	// not present under Dir. Empty disables remote fetch.
	OriginURL string `json:"origin_url"`

	// SavedDir, when set with Save, receives a copy of every fetched file;
	// with UseSaved, sources are read from it instead of Dir or the origin.
	SavedDir string `json:"saved_dir"`
	Save     bool   `json:"save"`
	UseSaved bool   `json:"use_saved"`
}

// Work configures the output scratch area.
type Work struct {
	// Dir receives the generated CSV and GeoJSON files. Created if missing.
	Dir string `json:"dir"`
}

// Catalog configures the dataset catalog the per-country bundles are
// published to.
type Catalog struct {
	// BaseURL is the catalog API root. Empty disables publication.
	BaseURL string `json:"base_url"`

	// APIKey authenticates write operations. Read from the environment when
	// it has the form "env:VARNAME".
	APIKey string `json:"api_key"`

	// StaticMetadata is the path of a JSON file with dataset fields that do
	// not vary per country (maintainer, organization, license).
	StaticMetadata string `json:"static_metadata"`

	// Tags are attached to every published dataset.
	Tags []string `json:"tags"`

	// DryRun builds datasets without uploading them.
	DryRun bool `json:"dry_run"`

	// Extra is a free-form bag passed through to the catalog client.
	Extra Options `json:"extra"`
}

// State selects the run-ledger backend.
type State struct {
	// Kind selects the backend implementation. Current values: "sqlite",
	// "postgres". Empty disables the ledger.
	Kind string `json:"kind"`

	// DSN is the backend connection string (a file path for sqlite).
	DSN string `json:"dsn"`
}

// Options is a small helper to fetch typed values from arbitrary JSON maps
// without introducing third-party configuration libraries. It purposefully
// performs only minimal type coercion and returns provided defaults when a key
// is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to int.
// If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// StringSlice returns a []string for key when the value is an array of strings
// (or an array of interface values containing strings). Returns nil when the
// key is missing or the value is not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key (which may itself be a nested
// map[string]any, []any, or primitive).
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null "extra"
// object in JSON decodes to a non-nil, empty Options map. This simplifies call
// sites by removing the need to nil-check Options values.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// Load reads and decodes one run config file.
func Load(path string) (Run, error) {
	var r Run
	b, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return r, nil
}
