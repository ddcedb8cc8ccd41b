package gem

import (
	"testing"

	"gem/pkg/records"
)

func testMapping(t *testing.T) ProvinceMapping {
	t.Helper()
	return BuildProvinceMapping(parseFixture(t, provinceFixture))
}

/*
TestGIISubnational_ConcreteScenario pins the reference scenario: one
province row for KHM becomes exactly one output record with the resolved
province name and the caller-supplied country name.
*/
func TestGIISubnational_ConcreteScenario(t *testing.T) {
	tr := NewTransformer(testMapping(t), nil)
	rows := []records.Record{
		{"area_id": "12345", "admin_level": "province", "admin_name": "x", "year": "2019", "gii": "0.42"},
	}

	out := tr.GIISubnational(rows, "KHM", "Cambodia")
	if len(out) != 1 {
		t.Fatalf("got %d records; want 1", len(out))
	}
	want := GIISubnational{
		ISO3:                  "KHM",
		Country:               "Cambodia",
		Province:              "Phnom Penh",
		Year:                  "2019",
		GenderInequalityIndex: "0.42",
		yearNum:               2019,
	}
	if out[0] != want {
		t.Fatalf("record = %+v; want %+v", out[0], want)
	}
}

/*
TestGIINational verifies the admin_level re-check, the admin_name-as-country
mapping, and the descending year order.
*/
func TestGIINational(t *testing.T) {
	tr := NewTransformer(testMapping(t), nil)
	rows := []records.Record{
		{"area_id": "100", "admin_level": "country", "admin_name": "Cambodia", "year": "2018", "gii": "0.47"},
		{"area_id": "12345", "admin_level": "province", "admin_name": "x", "year": "2021", "gii": "0.40"},
		{"area_id": "100", "admin_level": "country", "admin_name": "Cambodia", "year": "2021", "gii": "0.43"},
	}

	out := tr.GIINational(rows, "KHM")
	if len(out) != 2 {
		t.Fatalf("got %d records; want 2 (province row excluded)", len(out))
	}
	if out[0].Year != "2021" || out[1].Year != "2018" {
		t.Fatalf("year order: %v then %v; want 2021 then 2018", out[0].Year, out[1].Year)
	}
	if out[0].Country != "Cambodia" {
		t.Fatalf("national country comes from admin_name; got %q", out[0].Country)
	}
}

/*
TestBadYearDropped verifies the controlled data-quality drop: a row with a
non-integer year appears in no output and raises nothing, and the drop is
counted per table with its reason.
*/
func TestBadYearDropped(t *testing.T) {
	var hooked []string
	hook := func(table string, reason DropReason, areaID, year string) {
		hooked = append(hooked, table+"/"+string(reason)+"/"+year)
	}
	tr := NewTransformer(testMapping(t), hook)
	rows := []records.Record{
		{"area_id": "12345", "admin_level": "province", "year": "abc", "gii": "0.1"},
		{"area_id": "12345", "admin_level": "province", "year": "2020", "gii": "0.2"},
		{"area_id": "12346", "admin_level": "province", "gii": "0.3"}, // missing year
	}

	out := tr.GIISubnational(rows, "KHM", "Cambodia")
	if len(out) != 1 || out[0].Year != "2020" {
		t.Fatalf("bad-year rows must be dropped; got %+v", out)
	}

	drops := tr.Drops()
	if drops[TableGIISubnational][DropBadYear] != 2 {
		t.Fatalf("drop counts = %v; want 2 bad_year for %s", drops, TableGIISubnational)
	}
	if len(hooked) != 2 {
		t.Fatalf("hook calls = %v; want 2", hooked)
	}
}

/*
TestUnknownProvinceKept verifies that an area_id missing from the mapping
resolves to an empty province but does not drop the row.
*/
func TestUnknownProvinceKept(t *testing.T) {
	tr := NewTransformer(testMapping(t), nil)
	rows := []records.Record{
		{"area_id": "99999", "admin_level": "province", "year": "2020", "gii": "0.5"},
	}
	out := tr.GIISubnational(rows, "KHM", "Cambodia")
	if len(out) != 1 {
		t.Fatalf("unresolved province must not drop the row; got %d", len(out))
	}
	if out[0].Province != "" {
		t.Fatalf("province = %q; want empty", out[0].Province)
	}
}

/*
TestDimensionSubnational_SortOrder verifies the full four-key ordering:
year desc, then province, category, dimension ascending. Also checks that
the unnamed source column feeds dimension_category.
*/
func TestDimensionSubnational_SortOrder(t *testing.T) {
	tr := NewTransformer(testMapping(t), nil)
	rows := []records.Record{
		{"area_id": "12346", "admin_level": "province", "year": "2020", "": "health", "dimension_name": "b", "F/M": "F", "value": "1", "Unit": "%"},
		{"area_id": "12345", "admin_level": "province", "year": "2021", "": "health", "dimension_name": "a", "F/M": "F", "value": "2", "Unit": "%"},
		{"area_id": "12345", "admin_level": "province", "year": "2020", "": "education", "dimension_name": "z", "F/M": "M", "value": "3", "Unit": "%"},
		{"area_id": "12345", "admin_level": "province", "year": "2020", "": "health", "dimension_name": "a", "F/M": "M", "value": "4", "Unit": "%"},
	}

	out := tr.DimensionSubnational(rows, "KHM", "Cambodia")
	if len(out) != 4 {
		t.Fatalf("got %d records; want 4", len(out))
	}

	// 2021 first, then 2020 Kandal sorts after Phnom Penh's two rows
	// (province asc), which order by category then dimension.
	if out[0].Year != "2021" {
		t.Fatalf("row 0 year = %s; want 2021", out[0].Year)
	}
	if out[1].Province != "Phnom Penh" || out[1].DimensionCategory != "education" {
		t.Fatalf("row 1 = %+v; want Phnom Penh/education", out[1])
	}
	if out[2].Province != "Phnom Penh" || out[2].DimensionCategory != "health" {
		t.Fatalf("row 2 = %+v; want Phnom Penh/health", out[2])
	}
	if out[3].Province != "Kandal" {
		t.Fatalf("row 3 = %+v; want Kandal last", out[3])
	}
	if out[0].DimensionCategory != "health" || out[0].Dimension != "a" {
		t.Fatalf("unnamed category column not mapped: %+v", out[0])
	}
}

/*
TestIndicatorNational verifies the common_name/indicator_name mapping and
that the caller-supplied country name is used (unlike gii/dimension
national, which take admin_name from the row).
*/
func TestIndicatorNational(t *testing.T) {
	tr := NewTransformer(testMapping(t), nil)
	rows := []records.Record{
		{"area_id": "100", "admin_level": "country", "year": "2020", "common_name": "Labour", "indicator_name": "participation", "F/M": "F", "value": "0.8", "Unit": "ratio"},
	}
	out := tr.IndicatorNational(rows, "KHM", "Cambodia")
	if len(out) != 1 {
		t.Fatalf("got %d records; want 1", len(out))
	}
	r := out[0]
	if r.Country != "Cambodia" || r.IndicatorCategory != "Labour" || r.Indicator != "participation" || r.Unit != "ratio" {
		t.Fatalf("record = %+v", r)
	}
}

/*
TestSexDisaggregated_PassThrough documents that the sex-disaggregated
transform does not re-check admin_level: whatever survived partitioning is
transformed, including country-level rows, which get an empty province.
*/
func TestSexDisaggregated_PassThrough(t *testing.T) {
	tr := NewTransformer(testMapping(t), nil)
	rows := []records.Record{
		{"area_id": "100", "admin_level": "country", "year": "2020", "dataset_name_l1": "edu", "dataset_name_l2": "primary", "F/M": "F", "value": "91", "Unit": "%", "calc": "mean", "Definition": "def"},
		{"area_id": "12345", "admin_level": "province", "year": "2020", "dataset_name_l1": "edu", "dataset_name_l2": "primary", "F/M": "M", "value": "93", "Unit": "%", "calc": "mean", "Definition": "def"},
	}

	out := tr.SexDisaggregated(rows, "KHM", "Cambodia")
	if len(out) != 2 {
		t.Fatalf("got %d records; want 2 (no admin_level re-check)", len(out))
	}
	// Country-level row resolves no province and sorts first ("" < name).
	if out[0].Province != "" || out[1].Province != "Phnom Penh" {
		t.Fatalf("province resolution: %+v", out)
	}
	if out[0].CalculationType != "mean" || out[0].Definition != "def" || out[0].SubIndicator != "primary" {
		t.Fatalf("field mapping: %+v", out[0])
	}
}

/*
TestTableResources_SkipsEmptyMarks verifies the generic view: suffix and
column order per table, and Empty reporting for omitted resources.
*/
func TestTableResources_SkipsEmptyMarks(t *testing.T) {
	tables := Tables{
		GIINational: []GIINational{{ISO3: "KHM", Country: "Cambodia", Year: "2020", GenderInequalityIndex: "0.4"}},
	}
	res := tables.TableResources()
	if len(res) != 7 {
		t.Fatalf("got %d resources; want 7", len(res))
	}
	if res[0].Suffix != TableGIINational || res[0].Empty() {
		t.Fatalf("gii-national resource: %+v", res[0])
	}
	wantCols := []string{"iso3", "country", "year", "gender_inequality_index"}
	for i, c := range wantCols {
		if res[0].Columns[i] != c {
			t.Fatalf("gii-national columns = %v; want %v", res[0].Columns, wantCols)
		}
	}
	if res[0].Rows[0][3] != "0.4" {
		t.Fatalf("gii-national row = %v", res[0].Rows[0])
	}
	for _, r := range res[1:] {
		if !r.Empty() {
			t.Fatalf("resource %s should be empty", r.Suffix)
		}
	}
}
