package gem

import "testing"

/*
TestDropCountsMerge verifies Merge folds counts across tables and reasons
and that Total sums the combined map, the way the run summary aggregates
audit drops with every country's transform drops.
*/
func TestDropCountsMerge(t *testing.T) {
	all := make(DropCounts)
	all.Merge(DropCounts{
		SrcGII: {DropBadAreaID: 2},
	})
	all.Merge(DropCounts{
		SrcGII:              {DropBadAreaID: 1},
		TableGIISubnational: {DropBadYear: 3},
	})

	if all[SrcGII][DropBadAreaID] != 3 {
		t.Fatalf("merged counts = %v; want 3 bad_area_id for %s", all, SrcGII)
	}
	if all[TableGIISubnational][DropBadYear] != 3 {
		t.Fatalf("merged counts = %v; want 3 bad_year for %s", all, TableGIISubnational)
	}
	if got := all.Total(); got != 6 {
		t.Fatalf("Total = %d; want 6", got)
	}
}
