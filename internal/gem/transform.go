package gem

import (
	"sort"

	"gem/pkg/records"
)

// Output table suffixes. They double as resource-name suffixes
// (<iso3>-gem-<suffix>.csv) and as the table label on drop counts and
// metrics.
const (
	TableGIINational          = "gii-national"
	TableGIISubnational       = "gii-subnational"
	TableDimensionNational    = "dimension-national"
	TableDimensionSubnational = "dimension-subnational"
	TableIndicatorNational    = "indicator-national"
	TableIndicatorSubnational = "indicator-subnational"
	TableSexDisaggregated     = "sex-disaggregated"
)

// Source column names. The dimension table carries its category in an
// unnamed column; the parser preserves the empty header verbatim.
const (
	colAreaID        = "area_id"
	colAdminLevel    = "admin_level"
	colAdminName     = "admin_name"
	colYear          = "year"
	colGII           = "gii"
	colDimCategory   = ""
	colDimName       = "dimension_name"
	colGender        = "F/M"
	colValue         = "value"
	colUnit          = "Unit"
	colCommonName    = "common_name"
	colIndicatorName = "indicator_name"
	colDatasetL1     = "dataset_name_l1"
	colDatasetL2     = "dataset_name_l2"
	colCalc          = "calc"
	colDefinition    = "Definition"
)

// GIINational is one national index score.
type GIINational struct {
	ISO3                  string
	Country               string
	Year                  string
	GenderInequalityIndex string

	yearNum int
}

// GIISubnational is one province-level index score.
type GIISubnational struct {
	ISO3                  string
	Country               string
	Province              string
	Year                  string
	GenderInequalityIndex string

	yearNum int
}

// DimensionNational is one national index-by-dimension observation.
type DimensionNational struct {
	ISO3              string
	Country           string
	DimensionCategory string
	Dimension         string
	Gender            string
	Year              string
	Value             string
	Unit              string

	yearNum int
}

// DimensionSubnational is one province-level index-by-dimension observation.
type DimensionSubnational struct {
	ISO3              string
	Country           string
	Province          string
	DimensionCategory string
	Dimension         string
	Gender            string
	Year              string
	Value             string
	Unit              string

	yearNum int
}

// IndicatorNational is one national index-by-indicator observation.
type IndicatorNational struct {
	ISO3              string
	Country           string
	IndicatorCategory string
	Indicator         string
	Gender            string
	Year              string
	Value             string
	Unit              string

	yearNum int
}

// IndicatorSubnational is one province-level index-by-indicator observation.
type IndicatorSubnational struct {
	ISO3              string
	Country           string
	Province          string
	IndicatorCategory string
	Indicator         string
	Gender            string
	Year              string
	Value             string
	Unit              string

	yearNum int
}

// SexDisaggregated is one sex-disaggregated observation. The source table
// has no admin_level distinction of its own; whatever the partitioner let
// through is transformed as-is, so country-level rows (if the export ever
// carries them) appear here with an empty province.
type SexDisaggregated struct {
	ISO3            string
	Country         string
	Province        string
	Indicator       string
	SubIndicator    string
	Gender          string
	Year            string
	Value           string
	Unit            string
	CalculationType string
	Definition      string

	yearNum int
}

// dropRecorder aggregates drop counts and forwards each drop to an optional
// hook (skip journal, metrics).
type dropRecorder struct {
	counts DropCounts
	hook   DropHook
}

func newDropRecorder(hook DropHook) *dropRecorder {
	return &dropRecorder{counts: make(DropCounts), hook: hook}
}

func (d *dropRecorder) drop(table string, reason DropReason, row records.Record) {
	d.counts.add(table, reason)
	if d.hook != nil {
		d.hook(table, reason, row.Get(colAreaID), row.Get(colYear))
	}
}

// Transformer maps country-filtered rows into the seven output schemas.
// The drop recorder is shared across its methods and not concurrency-safe,
// so parallel country processing builds one Transformer per country.
type Transformer struct {
	provinces ProvinceMapping
	rec       *dropRecorder
}

// NewTransformer builds a Transformer over the province mapping. hook may be
// nil.
func NewTransformer(provinces ProvinceMapping, hook DropHook) *Transformer {
	return &Transformer{provinces: provinces, rec: newDropRecorder(hook)}
}

// Drops returns the accumulated per-table drop counts.
func (t *Transformer) Drops() DropCounts { return t.rec.counts }

// year extracts the sortable integer year, recording a drop when the field
// is missing or not an integer. Every output ordering keys on the year, so
// such rows cannot appear in any table.
func (t *Transformer) year(table string, row records.Record) (int, bool) {
	y, ok := row.Int(colYear)
	if !ok {
		t.rec.drop(table, DropBadYear, row)
	}
	return y, ok
}

// GIINational transforms national index rows, newest year first.
func (t *Transformer) GIINational(rows []records.Record, iso3 string) []GIINational {
	var out []GIINational
	for _, row := range rows {
		if row.Get(colAdminLevel) != adminCountry {
			continue
		}
		y, ok := t.year(TableGIINational, row)
		if !ok {
			continue
		}
		out = append(out, GIINational{
			ISO3:                  iso3,
			Country:               row.Get(colAdminName),
			Year:                  row.Get(colYear),
			GenderInequalityIndex: row.Get(colGII),
			yearNum:               y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].yearNum > out[j].yearNum
	})
	return out
}

// GIISubnational transforms province index rows: newest year first, then
// province ascending.
func (t *Transformer) GIISubnational(rows []records.Record, iso3, countryName string) []GIISubnational {
	var out []GIISubnational
	for _, row := range rows {
		if row.Get(colAdminLevel) != adminProvince {
			continue
		}
		y, ok := t.year(TableGIISubnational, row)
		if !ok {
			continue
		}
		out = append(out, GIISubnational{
			ISO3:                  iso3,
			Country:               countryName,
			Province:              t.provinces.Resolve(row.Get(colAreaID)),
			Year:                  row.Get(colYear),
			GenderInequalityIndex: row.Get(colGII),
			yearNum:               y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.yearNum != b.yearNum {
			return a.yearNum > b.yearNum
		}
		return a.Province < b.Province
	})
	return out
}

// DimensionNational transforms national by-dimension rows: newest year
// first, then category and dimension ascending.
func (t *Transformer) DimensionNational(rows []records.Record, iso3 string) []DimensionNational {
	var out []DimensionNational
	for _, row := range rows {
		if row.Get(colAdminLevel) != adminCountry {
			continue
		}
		y, ok := t.year(TableDimensionNational, row)
		if !ok {
			continue
		}
		out = append(out, DimensionNational{
			ISO3:              iso3,
			Country:           row.Get(colAdminName),
			DimensionCategory: row.Get(colDimCategory),
			Dimension:         row.Get(colDimName),
			Gender:            row.Get(colGender),
			Year:              row.Get(colYear),
			Value:             row.Get(colValue),
			Unit:              row.Get(colUnit),
			yearNum:           y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.yearNum != b.yearNum {
			return a.yearNum > b.yearNum
		}
		if a.DimensionCategory != b.DimensionCategory {
			return a.DimensionCategory < b.DimensionCategory
		}
		return a.Dimension < b.Dimension
	})
	return out
}

// DimensionSubnational transforms province by-dimension rows: newest year
// first, then province, category, dimension ascending.
func (t *Transformer) DimensionSubnational(rows []records.Record, iso3, countryName string) []DimensionSubnational {
	var out []DimensionSubnational
	for _, row := range rows {
		if row.Get(colAdminLevel) != adminProvince {
			continue
		}
		y, ok := t.year(TableDimensionSubnational, row)
		if !ok {
			continue
		}
		out = append(out, DimensionSubnational{
			ISO3:              iso3,
			Country:           countryName,
			Province:          t.provinces.Resolve(row.Get(colAreaID)),
			DimensionCategory: row.Get(colDimCategory),
			Dimension:         row.Get(colDimName),
			Gender:            row.Get(colGender),
			Year:              row.Get(colYear),
			Value:             row.Get(colValue),
			Unit:              row.Get(colUnit),
			yearNum:           y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.yearNum != b.yearNum {
			return a.yearNum > b.yearNum
		}
		if a.Province != b.Province {
			return a.Province < b.Province
		}
		if a.DimensionCategory != b.DimensionCategory {
			return a.DimensionCategory < b.DimensionCategory
		}
		return a.Dimension < b.Dimension
	})
	return out
}

// IndicatorNational transforms national by-indicator rows: newest year
// first, then category and indicator ascending.
func (t *Transformer) IndicatorNational(rows []records.Record, iso3, countryName string) []IndicatorNational {
	var out []IndicatorNational
	for _, row := range rows {
		if row.Get(colAdminLevel) != adminCountry {
			continue
		}
		y, ok := t.year(TableIndicatorNational, row)
		if !ok {
			continue
		}
		out = append(out, IndicatorNational{
			ISO3:              iso3,
			Country:           countryName,
			IndicatorCategory: row.Get(colCommonName),
			Indicator:         row.Get(colIndicatorName),
			Gender:            row.Get(colGender),
			Year:              row.Get(colYear),
			Value:             row.Get(colValue),
			Unit:              row.Get(colUnit),
			yearNum:           y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.yearNum != b.yearNum {
			return a.yearNum > b.yearNum
		}
		if a.IndicatorCategory != b.IndicatorCategory {
			return a.IndicatorCategory < b.IndicatorCategory
		}
		return a.Indicator < b.Indicator
	})
	return out
}

// IndicatorSubnational transforms province by-indicator rows: newest year
// first, then province, category, indicator ascending.
func (t *Transformer) IndicatorSubnational(rows []records.Record, iso3, countryName string) []IndicatorSubnational {
	var out []IndicatorSubnational
	for _, row := range rows {
		if row.Get(colAdminLevel) != adminProvince {
			continue
		}
		y, ok := t.year(TableIndicatorSubnational, row)
		if !ok {
			continue
		}
		out = append(out, IndicatorSubnational{
			ISO3:              iso3,
			Country:           countryName,
			Province:          t.provinces.Resolve(row.Get(colAreaID)),
			IndicatorCategory: row.Get(colCommonName),
			Indicator:         row.Get(colIndicatorName),
			Gender:            row.Get(colGender),
			Year:              row.Get(colYear),
			Value:             row.Get(colValue),
			Unit:              row.Get(colUnit),
			yearNum:           y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.yearNum != b.yearNum {
			return a.yearNum > b.yearNum
		}
		if a.Province != b.Province {
			return a.Province < b.Province
		}
		if a.IndicatorCategory != b.IndicatorCategory {
			return a.IndicatorCategory < b.IndicatorCategory
		}
		return a.Indicator < b.Indicator
	})
	return out
}

// SexDisaggregated transforms sex-disaggregated rows without an admin_level
// re-check: newest year first, then province and indicator ascending.
func (t *Transformer) SexDisaggregated(rows []records.Record, iso3, countryName string) []SexDisaggregated {
	var out []SexDisaggregated
	for _, row := range rows {
		y, ok := t.year(TableSexDisaggregated, row)
		if !ok {
			continue
		}
		out = append(out, SexDisaggregated{
			ISO3:            iso3,
			Country:         countryName,
			Province:        t.provinces.Resolve(row.Get(colAreaID)),
			Indicator:       row.Get(colDatasetL1),
			SubIndicator:    row.Get(colDatasetL2),
			Gender:          row.Get(colGender),
			Year:            row.Get(colYear),
			Value:           row.Get(colValue),
			Unit:            row.Get(colUnit),
			CalculationType: row.Get(colCalc),
			Definition:      row.Get(colDefinition),
			yearNum:         y,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.yearNum != b.yearNum {
			return a.yearNum > b.yearNum
		}
		if a.Province != b.Province {
			return a.Province < b.Province
		}
		return a.Indicator < b.Indicator
	})
	return out
}
