// Package geojson decodes the GEM boundary files just far enough to filter
// them.
//
// Boundary collections are republished as-is per country, so a feature keeps
// its original JSON bytes and re-serializes to exactly what was read; only
// the properties object is additionally decoded so callers can select
// features by country code and read the reference fields (iso, name_0,
// name_1, area_id). A geometry library would decode and re-encode
// coordinates, which breaks that pass-through guarantee.
package geojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// FeatureCollection is a GeoJSON FeatureCollection with features in source
// order.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is one GeoJSON feature. The raw source bytes are retained; only
// the properties member is decoded.
type Feature struct {
	raw        json.RawMessage
	properties map[string]any
}

// UnmarshalJSON keeps the feature's verbatim bytes and decodes its
// properties object.
func (f *Feature) UnmarshalJSON(b []byte) error {
	var envelope struct {
		Properties map[string]any `json:"properties"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return err
	}
	f.raw = append(json.RawMessage(nil), b...)
	f.properties = envelope.Properties
	return nil
}

// MarshalJSON emits the feature exactly as it appeared in the source file.
func (f Feature) MarshalJSON() ([]byte, error) {
	if f.raw == nil {
		return []byte("null"), nil
	}
	return f.raw, nil
}

// PropString returns the string property named key, or "" when absent or not
// a string.
func (f Feature) PropString(key string) string {
	if s, ok := f.properties[key].(string); ok {
		return s
	}
	return ""
}

// PropInt returns the numeric property named key as an int. JSON numbers
// decode as float64; anything else yields (0, false).
func (f Feature) PropInt(key string) (int, bool) {
	switch n := f.properties[key].(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

// Parse decodes a FeatureCollection from r. A document that is not valid
// JSON or does not carry a features array is a hard error; reference data
// cannot be built from a partial boundary file.
func Parse(r io.Reader) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("geojson: decode: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("geojson: unexpected type %q", fc.Type)
	}
	return &fc, nil
}

// NewCollection builds a FeatureCollection around an already-filtered
// feature slice. The slice is used as-is; callers own its ordering.
func NewCollection(features []Feature) *FeatureCollection {
	return &FeatureCollection{Type: "FeatureCollection", Features: features}
}
