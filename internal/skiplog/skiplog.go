// Package skiplog journals dropped rows to a CSV file so data-quality
// problems in the source tables can be reviewed after a run.
package skiplog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Journal appends one line per dropped row. Safe for concurrent use; the
// country workers share one journal.
type Journal struct {
	mu      sync.Mutex
	reasons map[string]int
	w       *csv.Writer
}

// New creates the journal file (parent directories included) and writes the
// header. The returned closer flushes and closes the file.
func New(path string) (*Journal, func(), error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("skiplog: create dir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("skiplog: open %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"table", "reason", "area_id", "year"})
	j := &Journal{reasons: make(map[string]int), w: w}
	return j, func() {
		j.mu.Lock()
		defer j.mu.Unlock()
		w.Flush()
		_ = f.Close()
	}, nil
}

// Add journals one dropped row.
func (j *Journal) Add(table, reason, areaID, year string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reasons[reason]++
	_ = j.w.Write([]string{table, reason, areaID, year})
}

// Counts returns a copy of the per-reason totals.
func (j *Journal) Counts() map[string]int {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make(map[string]int, len(j.reasons))
	for k, v := range j.reasons {
		out[k] = v
	}
	return out
}
