package gem

import "testing"

/* TestYearRange covers the normal, mixed, and empty cases. */
func TestYearRange(t *testing.T) {
	cases := []struct {
		name     string
		in       []string
		min, max int
	}{
		{"single", []string{"2019"}, 2019, 2019},
		{"spread", []string{"2019", "2005", "2021"}, 2005, 2021},
		{"mixed junk ignored", []string{"abc", "2010", "", "20x1"}, 2010, 2010},
		{"all junk falls back", []string{"abc", ""}, 2000, 2024},
		{"empty falls back", nil, 2000, 2024},
	}
	for _, c := range cases {
		mn, mx := YearRange(c.in)
		if mn != c.min || mx != c.max {
			t.Fatalf("%s: YearRange(%v) = %d, %d; want %d, %d", c.name, c.in, mn, mx, c.min, c.max)
		}
	}
}
