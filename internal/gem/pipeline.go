package gem

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"gem/internal/parser/geojson"
	"gem/pkg/records"
)

// Logical source names. The store maps them to files in the data directory
// (CSV tables get a .csv extension, boundary collections .json).
const (
	SrcGII                = "GEM-GII"
	SrcDimension          = "GEM-GII_dimension"
	SrcIndicator          = "GEM-GII_indicator"
	SrcSexDisaggregated   = "GEM-Sex-disaggregated"
	SrcCountryBoundaries  = "country"
	SrcProvinceBoundaries = "provinces"
)

// SourceStore is the file-loading capability the engine consumes. Retrieval,
// caching, and parsing live behind it; the engine only sees parsed rows and
// feature collections.
type SourceStore interface {
	// Rows loads and parses one CSV source. The int is the number of rows
	// the parser skipped as malformed.
	Rows(ctx context.Context, name string) ([]records.Record, int, error)

	// Boundaries loads and parses one GeoJSON source.
	Boundaries(ctx context.Context, name string) (*geojson.FeatureCollection, error)
}

// CountryData is the complete publication bundle for one country: all seven
// output tables, the two filtered boundary collections, and the derived year
// range. Built once, never mutated, independently consumable.
type CountryData struct {
	ISO3    string
	Name    string
	MinYear int
	MaxYear int

	Tables             Tables
	CountryBoundary    *geojson.FeatureCollection
	ProvinceBoundaries *geojson.FeatureCollection

	// Drops counts the rows excluded from this country's tables, per table
	// and reason.
	Drops DropCounts
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers enables bounded parallel processing across countries. Values
// below 2 keep the default sequential order of work; output order is
// load order either way.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithDropHook installs a per-drop observer (skip journal, metrics).
func WithDropHook(h DropHook) Option {
	return func(p *Pipeline) { p.dropHook = h }
}

// Pipeline is the per-country transformation engine. Reference data is
// loaded once at construction; LoadCountryData then derives every country's
// bundle from the four raw tables and two boundary collections.
type Pipeline struct {
	store     SourceStore
	countries []Country
	provinces ProvinceMapping
	workers   int
	dropHook  DropHook

	// srcDrops holds the load-time area_id audit results, keyed by source
	// name. Reset on every LoadCountryData call.
	srcDrops DropCounts
}

// NewPipeline loads the reference data (country list, province mapping) from
// store. A boundary collection that cannot be loaded or parsed is fatal: no
// partial reference data is acceptable.
func NewPipeline(ctx context.Context, store SourceStore, opts ...Option) (*Pipeline, error) {
	countryFC, err := store.Boundaries(ctx, SrcCountryBoundaries)
	if err != nil {
		return nil, fmt.Errorf("gem: load country boundaries: %w", err)
	}
	provinceFC, err := store.Boundaries(ctx, SrcProvinceBoundaries)
	if err != nil {
		return nil, fmt.Errorf("gem: load province boundaries: %w", err)
	}

	p := &Pipeline{
		store:     store,
		countries: LoadCountries(countryFC),
		provinces: BuildProvinceMapping(provinceFC),
		srcDrops:  make(DropCounts),
	}
	for _, opt := range opts {
		opt(p)
	}
	log.Printf("gem: reference loaded countries=%d provinces=%d", len(p.countries), len(p.provinces))
	return p, nil
}

// Countries returns the country list in source load order.
func (p *Pipeline) Countries() []Country { return p.countries }

// Provinces returns the province mapping.
func (p *Pipeline) Provinces() ProvinceMapping { return p.provinces }

// SourceDrops returns the rows excluded by the load-time area_id audit of
// the last LoadCountryData call, keyed by source name. These drops belong to
// no country, so they are reported here instead of on CountryData.
func (p *Pipeline) SourceDrops() DropCounts { return p.srcDrops }

// auditAreaIDs records one drop per row whose area_id is missing or not an
// integer. It runs once per source table, before any per-country filtering,
// so the count is independent of how many countries re-scan the table.
func (p *Pipeline) auditAreaIDs(name string, rows []records.Record) {
	for _, row := range rows {
		if _, ok := row.Int("area_id"); !ok {
			p.srcDrops.add(name, DropBadAreaID)
			if p.dropHook != nil {
				p.dropHook(name, DropBadAreaID, row.Get("area_id"), row.Get("year"))
			}
		}
	}
}

// sources is the fully materialized raw input for one run.
type sources struct {
	gii        []records.Record
	dimension  []records.Record
	indicator  []records.Record
	sexDisagg  []records.Record
	countryFC  *geojson.FeatureCollection
	provinceFC *geojson.FeatureCollection
}

// loadSources eagerly loads all six inputs. Any failure here aborts the run.
func (p *Pipeline) loadSources(ctx context.Context) (*sources, error) {
	s := &sources{}
	var err error
	p.srcDrops = make(DropCounts)

	load := func(name string, dst *[]records.Record) error {
		rows, skipped, err := p.store.Rows(ctx, name)
		if err != nil {
			return fmt.Errorf("gem: load %s: %w", name, err)
		}
		if skipped > 0 {
			log.Printf("gem: source=%s parsed=%d skipped=%d", name, len(rows), skipped)
		}
		p.auditAreaIDs(name, rows)
		*dst = rows
		return nil
	}
	if err = load(SrcGII, &s.gii); err != nil {
		return nil, err
	}
	if err = load(SrcDimension, &s.dimension); err != nil {
		return nil, err
	}
	if err = load(SrcIndicator, &s.indicator); err != nil {
		return nil, err
	}
	if err = load(SrcSexDisaggregated, &s.sexDisagg); err != nil {
		return nil, err
	}

	if s.countryFC, err = p.store.Boundaries(ctx, SrcCountryBoundaries); err != nil {
		return nil, fmt.Errorf("gem: load %s: %w", SrcCountryBoundaries, err)
	}
	if s.provinceFC, err = p.store.Boundaries(ctx, SrcProvinceBoundaries); err != nil {
		return nil, fmt.Errorf("gem: load %s: %w", SrcProvinceBoundaries, err)
	}
	return s, nil
}

// buildCountry assembles one country's bundle: partition the four tables,
// run the seven transformers, filter the two boundary collections, derive
// the year range.
func (p *Pipeline) buildCountry(c Country, src *sources) CountryData {
	provinceIDs := p.provinces.AreaIDs(c.ISO3)

	// The country area_id comes from a code lookup, not the entry itself:
	// a duplicated iso filters with the last entry's id. Bad area_id rows
	// were already counted once by the load-time audit; the filters just
	// skip them again.
	areaID, _ := AreaIDByISO3(p.countries, c.ISO3)
	giiRows := FilterRowsByCountry(src.gii, areaID, provinceIDs)
	dimRows := FilterRowsByCountry(src.dimension, areaID, provinceIDs)
	indRows := FilterRowsByCountry(src.indicator, areaID, provinceIDs)
	sexRows := FilterRowsByCountry(src.sexDisagg, areaID, provinceIDs)

	tr := NewTransformer(p.provinces, p.dropHook)
	tables := Tables{
		GIINational:          tr.GIINational(giiRows, c.ISO3),
		GIISubnational:       tr.GIISubnational(giiRows, c.ISO3, c.Name),
		DimensionNational:    tr.DimensionNational(dimRows, c.ISO3),
		DimensionSubnational: tr.DimensionSubnational(dimRows, c.ISO3, c.Name),
		IndicatorNational:    tr.IndicatorNational(indRows, c.ISO3, c.Name),
		IndicatorSubnational: tr.IndicatorSubnational(indRows, c.ISO3, c.Name),
		SexDisaggregated:     tr.SexDisaggregated(sexRows, c.ISO3, c.Name),
	}

	minYear, maxYear := YearRange(tables.years())

	return CountryData{
		ISO3:               c.ISO3,
		Name:               c.Name,
		MinYear:            minYear,
		MaxYear:            maxYear,
		Tables:             tables,
		CountryBoundary:    FilterFeaturesByCountry(src.countryFC, c.ISO3),
		ProvinceBoundaries: FilterFeaturesByCountry(src.provinceFC, c.ISO3),
		Drops:              tr.Drops(),
	}
}

// LoadCountryData is the engine's sole entry point: it materializes all
// source data, then produces one CountryData per known country in load
// order. With workers > 1 countries are processed concurrently; results
// stay in load order because no state is shared between countries.
func (p *Pipeline) LoadCountryData(ctx context.Context) ([]CountryData, error) {
	src, err := p.loadSources(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]CountryData, len(p.countries))
	if p.workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for i, c := range p.countries {
			i, c := i, c
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = p.buildCountry(c, src)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return results, nil
	}

	for i, c := range p.countries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Printf("gem: processing %s (%s)", c.Name, c.ISO3)
		results[i] = p.buildCountry(c, src)
	}
	return results, nil
}
