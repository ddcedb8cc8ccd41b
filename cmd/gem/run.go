package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"gem/internal/catalog"
	"gem/internal/config"
	"gem/internal/gem"
	"gem/internal/metrics"
	"gem/internal/retriever"
	"gem/internal/sink"
	"gem/internal/skiplog"
	"gem/internal/state"
)

// execute performs one full run: retrieve, transform, write, publish.
// Failures before country processing are fatal; per-country publication
// failures are logged and the batch continues.
func execute(ctx context.Context, run config.Run, countryFilter map[string]struct{}) error {
	writer, err := sink.NewWriter(run.Work.Dir)
	if err != nil {
		return err
	}

	journal, closeJournal, err := skiplog.New(filepath.Join(run.Work.Dir, "skipped.csv"))
	if err != nil {
		return err
	}
	defer closeJournal()

	dropHook := func(table string, reason gem.DropReason, areaID, year string) {
		journal.Add(table, string(reason), areaID, year)
		metrics.RecordRows(run.Job, string(reason), 1)
	}

	var repo state.Repository
	if run.State.Kind != "" {
		repo, err = state.New(ctx, state.Config{Kind: run.State.Kind, DSN: run.State.DSN})
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.Init(ctx); err != nil {
			return err
		}
	}

	var client *catalog.Client
	if run.Catalog.BaseURL != "" || run.Catalog.DryRun {
		client, err = catalog.NewClient(run.Catalog, nil)
		if err != nil {
			return err
		}
	}
	static, err := catalog.LoadStaticMetadata(run.Catalog.StaticMetadata)
	if err != nil {
		return err
	}

	src := retriever.New(run.Data, nil)

	stageStart := time.Now()
	pipeline, err := gem.NewPipeline(ctx, src,
		gem.WithWorkers(run.Runtime.Workers),
		gem.WithDropHook(dropHook),
	)
	metrics.RecordStage(run.Job, "reference", err, time.Since(stageStart))
	if err != nil {
		return err
	}

	stageStart = time.Now()
	data, err := pipeline.LoadCountryData(ctx)
	metrics.RecordStage(run.Job, "transform", err, time.Since(stageStart))
	if err != nil {
		return err
	}

	var published, skipped, failed int
	for _, cd := range data {
		if countryFilter != nil {
			if _, ok := countryFilter[cd.ISO3]; !ok {
				continue
			}
		}

		status, err := publishCountry(ctx, run, cd, writer, client, repo, static)
		metrics.RecordCountry(run.Job, status)
		switch status {
		case "published", "dry_run":
			published++
		case "skipped":
			skipped++
		case "failed":
			failed++
			log.Printf("publish %s: %v", cd.ISO3, err)
		}
	}

	log.Printf("run complete: countries=%d published=%d skipped=%d failed=%d dropped_rows=%d",
		len(data), published, skipped, failed, totalDrops(pipeline.SourceDrops(), data))
	if failed > 0 {
		return fmt.Errorf("run: %d countries failed to publish", failed)
	}
	return nil
}

// publishCountry writes one country's files and upserts its dataset.
// Returned status is one of "published", "dry_run", "skipped", "failed".
func publishCountry(
	ctx context.Context,
	run config.Run,
	cd gem.CountryData,
	writer *sink.Writer,
	client *catalog.Client,
	repo state.Repository,
	static map[string]any,
) (string, error) {
	start := time.Now()

	files, err := writer.WriteCountry(cd)
	if err != nil {
		metrics.RecordStage(run.Job, "write", err, time.Since(start))
		return "failed", err
	}
	metrics.RecordStage(run.Job, "write", nil, time.Since(start))
	if len(files) == 0 {
		log.Printf("publish %s: no resources, skipping", cd.ISO3)
		return "skipped", nil
	}

	if client == nil {
		log.Printf("publish %s: catalog disabled, wrote %d resources", cd.ISO3, len(files))
		return "skipped", nil
	}

	// With a ledger, an all-unchanged country needs no upload.
	if repo != nil {
		ds := catalog.BuildDataset(cd, files, run.Catalog.Tags, static)
		unchanged := 0
		for _, f := range files {
			same, err := state.Unchanged(ctx, repo, run.Job, f.Name, f.Digest)
			if err != nil {
				return "failed", err
			}
			if same {
				unchanged++
			}
		}
		if unchanged == len(files) {
			log.Printf("publish %s: all %d resources unchanged, skipping", cd.ISO3, len(files))
			return "skipped", nil
		}
		return uploadAndRecord(ctx, run, ds, files, client, repo)
	}

	ds := catalog.BuildDataset(cd, files, run.Catalog.Tags, static)
	return uploadAndRecord(ctx, run, ds, files, client, nil)
}

func uploadAndRecord(
	ctx context.Context,
	run config.Run,
	ds catalog.Dataset,
	files []sink.Resource,
	client *catalog.Client,
	repo state.Repository,
) (string, error) {
	start := time.Now()
	err := client.Upsert(ctx, ds)
	metrics.RecordStage(run.Job, "publish", err, time.Since(start))
	if errors.Is(err, catalog.ErrUnknownLocation) {
		log.Printf("publish %s: couldn't find country, skipping", ds.Location)
		return "skipped", nil
	}
	if err != nil {
		return "failed", err
	}
	if run.Catalog.DryRun {
		return "dry_run", nil
	}

	if repo != nil {
		for _, f := range files {
			if err := repo.Record(ctx, run.Job, f.Name, f.Digest); err != nil {
				return "failed", err
			}
		}
	}
	log.Printf("publish %s: dataset=%s resources=%d years=%d-%d",
		ds.Location, ds.Name, len(files), ds.MinYear, ds.MaxYear)
	return "published", nil
}

// totalDrops folds the load-time audit drops and every country's transform
// drops into one count for the run summary.
func totalDrops(src gem.DropCounts, data []gem.CountryData) int {
	all := make(gem.DropCounts)
	all.Merge(src)
	for _, cd := range data {
		all.Merge(cd.Drops)
	}
	return all.Total()
}
