// Package records defines the raw row type shared by parsers and the
// per-country transformation engine.
//
// A Record is one source CSV row keyed by the file's verbatim header names.
// The GEM exports use header cells that are not identifier-friendly ("F/M",
// "Unit", even an unnamed "" column), so keys are kept exactly as they appear
// in the source and all values stay strings until a transformer interprets
// them.
package records

import "strconv"

// Record is a single raw source row: column name -> string value.
type Record map[string]string

// Get returns the value for key, or "" when the column is absent. This
// mirrors the missing-field policy of the output schemas: absent source
// columns become empty strings, never errors.
func (r Record) Get(key string) string {
	return r[key]
}

// Int parses the value for key as a base-10 integer. The second return is
// false when the column is absent, empty, or not an integer.
func (r Record) Int(key string) (int, bool) {
	s, ok := r[key]
	if !ok || s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clone returns a copy of the record. Transformers never mutate their input,
// but callers that cache partition slices across transforms may want an
// isolated copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
