// Package csv parses the GEM CSV exports into header-keyed records.
//
// Unlike a warehouse loader, the downstream transformers address columns by
// the source file's verbatim header names ("area_id", "F/M", "Unit", and in
// one file an unnamed "" column), so the parser does not canonicalize headers
// beyond stripping a UTF-8 BOM and optional edge whitespace. Rows whose field
// count does not match the header are skipped (soft-fail) and counted rather
// than failing the whole file.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"gem/pkg/records"
)

// Options configures parsing. The zero value is correct for all four GEM
// source tables.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from every field value.
	TrimSpace bool

	// HeaderMap optionally renames source header cells to canonical keys
	// before rows are built. Unmapped headers are kept verbatim.
	HeaderMap map[string]string
}

// Parser reads an entire CSV document into records. It is safe to reuse
// across inputs; it is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Parse consumes r and returns the parsed rows plus the number of rows
// skipped for parse errors or width mismatches. The first line is always the
// header. An unreadable header is a hard error: nothing can be keyed from a
// file whose shape is unknown.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("csv: read header: %w", err)
	}
	headers := make([]string, len(hdr))
	for i, h := range hdr {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if mapped, ok := p.opt.HeaderMap[h]; ok {
			h = mapped
		}
		headers[i] = h
	}

	var out []records.Record
	var skipped int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(row) != len(headers) {
			skipped++
			continue
		}
		rec := make(records.Record, len(row))
		for i, v := range row {
			if p.opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			rec[headers[i]] = v
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}
