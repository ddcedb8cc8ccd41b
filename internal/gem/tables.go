package gem

// Tables holds all seven output tables for one country. Each field is a
// fixed-schema record slice; the typed structs keep column references
// compile-checked while TableResources exposes a generic view for the sink.
type Tables struct {
	GIINational          []GIINational
	GIISubnational       []GIISubnational
	DimensionNational    []DimensionNational
	DimensionSubnational []DimensionSubnational
	IndicatorNational    []IndicatorNational
	IndicatorSubnational []IndicatorSubnational
	SexDisaggregated     []SexDisaggregated
}

// TableResource is a serialization-ready view of one output table: the
// resource suffix, header order, and rows as string slices aligned to it.
type TableResource struct {
	Suffix  string
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table holds no rows. Empty tables are skipped at
// the sink; no resource is emitted for them.
func (r TableResource) Empty() bool { return len(r.Rows) == 0 }

// TableResources returns the seven tables in their fixed publication order.
func (t Tables) TableResources() []TableResource {
	giiNat := TableResource{
		Suffix:  TableGIINational,
		Columns: []string{"iso3", "country", "year", "gender_inequality_index"},
	}
	for _, r := range t.GIINational {
		giiNat.Rows = append(giiNat.Rows, []string{r.ISO3, r.Country, r.Year, r.GenderInequalityIndex})
	}

	giiSub := TableResource{
		Suffix:  TableGIISubnational,
		Columns: []string{"iso3", "country", "province", "year", "gender_inequality_index"},
	}
	for _, r := range t.GIISubnational {
		giiSub.Rows = append(giiSub.Rows, []string{r.ISO3, r.Country, r.Province, r.Year, r.GenderInequalityIndex})
	}

	dimNat := TableResource{
		Suffix:  TableDimensionNational,
		Columns: []string{"iso3", "country", "dimension_category", "dimension", "gender", "year", "value", "unit"},
	}
	for _, r := range t.DimensionNational {
		dimNat.Rows = append(dimNat.Rows, []string{r.ISO3, r.Country, r.DimensionCategory, r.Dimension, r.Gender, r.Year, r.Value, r.Unit})
	}

	dimSub := TableResource{
		Suffix:  TableDimensionSubnational,
		Columns: []string{"iso3", "country", "province", "dimension_category", "dimension", "gender", "year", "value", "unit"},
	}
	for _, r := range t.DimensionSubnational {
		dimSub.Rows = append(dimSub.Rows, []string{r.ISO3, r.Country, r.Province, r.DimensionCategory, r.Dimension, r.Gender, r.Year, r.Value, r.Unit})
	}

	indNat := TableResource{
		Suffix:  TableIndicatorNational,
		Columns: []string{"iso3", "country", "indicator_category", "indicator", "gender", "year", "value", "unit"},
	}
	for _, r := range t.IndicatorNational {
		indNat.Rows = append(indNat.Rows, []string{r.ISO3, r.Country, r.IndicatorCategory, r.Indicator, r.Gender, r.Year, r.Value, r.Unit})
	}

	indSub := TableResource{
		Suffix:  TableIndicatorSubnational,
		Columns: []string{"iso3", "country", "province", "indicator_category", "indicator", "gender", "year", "value", "unit"},
	}
	for _, r := range t.IndicatorSubnational {
		indSub.Rows = append(indSub.Rows, []string{r.ISO3, r.Country, r.Province, r.IndicatorCategory, r.Indicator, r.Gender, r.Year, r.Value, r.Unit})
	}

	sexDis := TableResource{
		Suffix:  TableSexDisaggregated,
		Columns: []string{"iso3", "country", "province", "indicator", "sub_indicator", "gender", "year", "value", "unit", "calculation_type", "definition"},
	}
	for _, r := range t.SexDisaggregated {
		sexDis.Rows = append(sexDis.Rows, []string{r.ISO3, r.Country, r.Province, r.Indicator, r.SubIndicator, r.Gender, r.Year, r.Value, r.Unit, r.CalculationType, r.Definition})
	}

	return []TableResource{giiNat, giiSub, dimNat, dimSub, indNat, indSub, sexDis}
}

// years collects every row's year field across all seven tables.
func (t Tables) years() []string {
	var ys []string
	for _, r := range t.GIINational {
		ys = append(ys, r.Year)
	}
	for _, r := range t.GIISubnational {
		ys = append(ys, r.Year)
	}
	for _, r := range t.DimensionNational {
		ys = append(ys, r.Year)
	}
	for _, r := range t.DimensionSubnational {
		ys = append(ys, r.Year)
	}
	for _, r := range t.IndicatorNational {
		ys = append(ys, r.Year)
	}
	for _, r := range t.IndicatorSubnational {
		ys = append(ys, r.Year)
	}
	for _, r := range t.SexDisaggregated {
		ys = append(ys, r.Year)
	}
	return ys
}
