// Package catalog builds per-country dataset descriptions and publishes them
// to the data catalog API.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gem/internal/gem"
	"gem/internal/sink"
)

// Dataset is the publication payload for one country.
type Dataset struct {
	Name        string     `json:"name"`
	Title       string     `json:"title"`
	Location    string     `json:"location"`
	MinYear     int        `json:"min_year"`
	MaxYear     int        `json:"max_year"`
	Subnational bool       `json:"subnational"`
	Tags        []string   `json:"tags,omitempty"`
	Resources   []Resource `json:"resources"`

	// Extra carries static metadata fields (maintainer, organization,
	// license) merged from the configured metadata file. Computed fields
	// above always win over static ones.
	Extra map[string]any `json:"extra,omitempty"`
}

// Resource is one file attached to a dataset.
type Resource struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Digest      string `json:"digest"`

	// Path is the local file location; not serialized, used for upload.
	Path string `json:"-"`
}

// BuildDataset assembles the catalog payload for one country from its
// pipeline bundle and the files the sink wrote.
func BuildDataset(cd gem.CountryData, files []sink.Resource, tags []string, static map[string]any) Dataset {
	isoLower := strings.ToLower(cd.ISO3)

	ds := Dataset{
		Name:        isoLower + "-adpc-gem",
		Title:       cd.Name + " - Gender Equality Monitor",
		Location:    cd.ISO3,
		MinYear:     cd.MinYear,
		MaxYear:     cd.MaxYear,
		Subnational: true,
		Tags:        tags,
		Extra:       static,
	}
	for _, f := range files {
		ds.Resources = append(ds.Resources, Resource{
			Name:        f.Name,
			Description: resourceDescription(f.Suffix, cd.Name),
			Format:      f.Format,
			Digest:      f.Digest,
			Path:        f.Path,
		})
	}
	return ds
}

// resourceDescription returns the human description for one resource suffix.
func resourceDescription(suffix, countryName string) string {
	switch suffix {
	case gem.TableGIINational:
		return fmt.Sprintf("National Gender Inequality Index scores for %s", countryName)
	case gem.TableGIISubnational:
		return fmt.Sprintf("Subnational Gender Inequality Index scores for %s", countryName)
	case gem.TableDimensionNational:
		return fmt.Sprintf("National Gender Inequality Index by dimension for %s", countryName)
	case gem.TableDimensionSubnational:
		return fmt.Sprintf("Subnational Gender Inequality Index by dimension for %s", countryName)
	case gem.TableIndicatorNational:
		return fmt.Sprintf("National Gender Inequality Index by indicator for %s", countryName)
	case gem.TableIndicatorSubnational:
		return fmt.Sprintf("Subnational Gender Inequality Index by indicator for %s", countryName)
	case gem.TableSexDisaggregated:
		return fmt.Sprintf("Sex-disaggregated data for %s", countryName)
	case sink.SuffixCountryBoundary:
		return fmt.Sprintf("Country boundary for %s", countryName)
	case sink.SuffixProvinceBoundary:
		return fmt.Sprintf("Province boundaries for %s", countryName)
	}
	return ""
}

// LoadStaticMetadata reads the JSON file of dataset fields that do not vary
// per country. An empty path yields an empty map.
func LoadStaticMetadata(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read static metadata: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("catalog: decode static metadata %s: %w", path, err)
	}
	return m, nil
}
