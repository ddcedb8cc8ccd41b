package gem

import "strconv"

// Fallback year range used when a country's combined outputs carry no
// parsable year at all. A sentinel for "no usable temporal data", not an
// estimate; catalog consumers rely on it being exactly these values.
const (
	fallbackMinYear = 2000
	fallbackMaxYear = 2024
)

// YearRange returns the minimum and maximum integer year found in ys.
// Non-integer entries are ignored; when nothing parses, the fixed fallback
// range (2000, 2024) is returned.
func YearRange(ys []string) (minYear, maxYear int) {
	found := false
	for _, s := range ys {
		if s == "" {
			continue
		}
		y, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		if !found {
			minYear, maxYear = y, y
			found = true
			continue
		}
		if y < minYear {
			minYear = y
		}
		if y > maxYear {
			maxYear = y
		}
	}
	if !found {
		return fallbackMinYear, fallbackMaxYear
	}
	return minYear, maxYear
}
