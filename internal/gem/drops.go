package gem

// DropReason classifies why a source row was excluded from an output table.
// Drops are data-quality events, never errors: the row is counted, optionally
// journaled, and processing continues.
type DropReason string

const (
	// DropBadYear marks a row whose year field is missing or not an
	// integer. Every output ordering keys on the year, so such rows cannot
	// be placed and are excluded from the table.
	DropBadYear DropReason = "bad_year"

	// DropBadAreaID marks a row whose area_id is missing or not an
	// integer. Such rows can never be attributed to a country, so the
	// load-time audit records them once per source table.
	DropBadAreaID DropReason = "bad_area_id"
)

// DropCounts aggregates drops per output table and reason.
type DropCounts map[string]map[DropReason]int

// add records one drop for the named table.
func (d DropCounts) add(table string, reason DropReason) {
	m := d[table]
	if m == nil {
		m = make(map[DropReason]int)
		d[table] = m
	}
	m[reason]++
}

// Merge folds other into d.
func (d DropCounts) Merge(other DropCounts) {
	for table, reasons := range other {
		for reason, n := range reasons {
			m := d[table]
			if m == nil {
				m = make(map[DropReason]int)
				d[table] = m
			}
			m[reason] += n
		}
	}
}

// Total returns the number of dropped rows across all tables and reasons.
func (d DropCounts) Total() int {
	var n int
	for _, reasons := range d {
		for _, c := range reasons {
			n += c
		}
	}
	return n
}

// DropHook observes individual drops as they happen. The raw row is the
// source record as parsed; hooks must not retain it past the call.
type DropHook func(table string, reason DropReason, areaID, year string)
