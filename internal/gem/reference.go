// Package gem implements the per-country transformation engine for the
// Gender Equality Monitor exports: reference data loading, country/province
// partitioning, the seven output schemas, year-range derivation, and the
// per-country aggregation that bundles it all for publication.
package gem

import (
	"strconv"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"gem/internal/parser/geojson"
)

// Country identifies one national-level geographic unit from the country
// boundary file.
type Country struct {
	ISO3   string
	Name   string
	AreaID int
}

// Province is the owning country and display name for one subnational area.
type Province struct {
	ISO3 string
	Name string
}

// ProvinceMapping maps a province area_id to its owning country and name.
// Immutable after load; unresolved lookups degrade to an empty name.
type ProvinceMapping map[int]Province

// AreaIDs returns the set of province area_ids belonging to iso3.
func (m ProvinceMapping) AreaIDs(iso3 string) map[int]struct{} {
	ids := make(map[int]struct{})
	for areaID, p := range m {
		if p.ISO3 == iso3 {
			ids[areaID] = struct{}{}
		}
	}
	return ids
}

// Resolve returns the province name for the stringified area_id, or "" when
// the id is empty, unparsable, or unknown. Resolution never fails.
func (m ProvinceMapping) Resolve(areaID string) string {
	if areaID == "" {
		return ""
	}
	id, err := strconv.Atoi(areaID)
	if err != nil {
		return ""
	}
	return m[id].Name
}

// nameCleaner canonicalizes admin names: NFC composition plus removal of
// control runes that occasionally leak into the exports. Sort keys and
// equality checks then compare canonical forms.
var nameCleaner = transform.Chain(norm.NFC, runes.Remove(runes.In(unicode.Cc)))

// cleanName applies nameCleaner, returning the input unchanged when the
// transform fails (it cannot for valid UTF-8).
func cleanName(s string) string {
	out, _, err := transform.String(nameCleaner, s)
	if err != nil {
		return s
	}
	return out
}

// LoadCountries extracts the ordered country list from the country boundary
// collection. Source feature order is preserved; a duplicated iso keeps both
// entries (last wins for area-id lookups via AreaIDByISO3).
func LoadCountries(fc *geojson.FeatureCollection) []Country {
	countries := make([]Country, 0, len(fc.Features))
	for _, f := range fc.Features {
		areaID, _ := f.PropInt("area_id")
		countries = append(countries, Country{
			ISO3:   f.PropString("iso"),
			Name:   cleanName(f.PropString("name_0")),
			AreaID: areaID,
		})
	}
	return countries
}

// BuildProvinceMapping extracts the area_id -> province mapping from the
// provinces boundary collection. Later features overwrite earlier ones on a
// duplicated area_id, matching source behavior.
func BuildProvinceMapping(fc *geojson.FeatureCollection) ProvinceMapping {
	mapping := make(ProvinceMapping, len(fc.Features))
	for _, f := range fc.Features {
		areaID, ok := f.PropInt("area_id")
		if !ok {
			continue
		}
		mapping[areaID] = Province{
			ISO3: f.PropString("iso"),
			Name: cleanName(f.PropString("name_1")),
		}
	}
	return mapping
}

// AreaIDByISO3 scans countries for iso3 and returns its area_id. The second
// return is false when no country carries that code.
func AreaIDByISO3(countries []Country, iso3 string) (int, bool) {
	id, found := 0, false
	for _, c := range countries {
		if c.ISO3 == iso3 {
			id, found = c.AreaID, true
		}
	}
	return id, found
}
