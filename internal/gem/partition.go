package gem

import (
	"gem/internal/parser/geojson"
	"gem/pkg/records"
)

// Admin levels recognized by the partitioner. Rows carrying any other value
// (or none) never reach a transformer.
const (
	adminCountry  = "country"
	adminProvince = "province"
)

// FilterRowsByCountry selects the rows belonging to one country at national
// or subnational granularity:
//
//   - admin_level == "country"  and area_id == countryAreaID, or
//   - admin_level == "province" and area_id in provinceAreaIDs.
//
// The same predicate applies to all four source tables, including the
// sex-disaggregated one; its transformer simply does not re-check
// admin_level afterwards. Rows without a parsable integer area_id are
// silently excluded here; the pipeline's load-time audit counts and
// journals them once per source table, before any per-country filtering.
func FilterRowsByCountry(rows []records.Record, countryAreaID int, provinceAreaIDs map[int]struct{}) (kept []records.Record) {
	for _, row := range rows {
		areaID, ok := row.Int("area_id")
		if !ok {
			continue
		}
		switch row.Get("admin_level") {
		case adminCountry:
			if areaID == countryAreaID {
				kept = append(kept, row)
			}
		case adminProvince:
			if _, in := provinceAreaIDs[areaID]; in {
				kept = append(kept, row)
			}
		}
	}
	return kept
}

// FilterFeaturesByCountry returns a new collection holding only the features
// whose properties.iso equals iso3, in source order, bytes untouched.
func FilterFeaturesByCountry(fc *geojson.FeatureCollection, iso3 string) *geojson.FeatureCollection {
	var filtered []geojson.Feature
	for _, f := range fc.Features {
		if f.PropString("iso") == iso3 {
			filtered = append(filtered, f)
		}
	}
	return geojson.NewCollection(filtered)
}
