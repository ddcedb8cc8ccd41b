package skiplog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

/* TestJournal writes a few drops and reads the file back. */
func TestJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "skipped.csv")
	j, closer, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	j.Add("gii-subnational", "bad_year", "12345", "abc")
	j.Add("gii-subnational", "bad_year", "12346", "")
	j.Add("indicator-national", "bad_area_id", "x", "2020")
	closer()

	counts := j.Counts()
	if counts["bad_year"] != 2 || counts["bad_area_id"] != 1 {
		t.Fatalf("counts = %v", counts)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("journal has %d rows; want header + 3", len(rows))
	}
	if rows[0][0] != "table" || rows[1][1] != "bad_year" || rows[3][3] != "2020" {
		t.Fatalf("journal rows = %v", rows)
	}
}

/* TestJournal_Concurrent exercises the mutex under parallel writers. */
func TestJournal_Concurrent(t *testing.T) {
	j, closer, err := New(filepath.Join(t.TempDir(), "skipped.csv"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				j.Add("gii-national", "bad_year", "1", "x")
			}
		}()
	}
	wg.Wait()

	if got := j.Counts()["bad_year"]; got != 800 {
		t.Fatalf("count = %d; want 800", got)
	}
}
