// Package config provides configuration models and helpers for GEM runs.
//
// This file adds a lightweight linter/validator for Run values. It performs
// static checks over a decoded Run and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Run.
//
// Path is a dotted path into the config (e.g. "catalog.base_url",
// "state.kind"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// ValidateRun performs static validation / linting of a Run.
//
// It does not mutate the run. Instead it returns a slice of Issue values.
// Callers may decide whether to treat warnings as fatal or not.
func ValidateRun(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateData(r.Data)...)
	issues = append(issues, validateWork(r.Work)...)
	issues = append(issues, validateCatalog(r.Catalog)...)
	issues = append(issues, validateState(r.State)...)
	issues = append(issues, validateRuntime(r.Runtime)...)

	return issues
}

// validateData validates input-location configuration.
func validateData(d Data) []Issue {
	var issues []Issue

	if strings.TrimSpace(d.Dir) == "" && strings.TrimSpace(d.OriginURL) == "" && !d.UseSaved {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data",
			Message:  "no input location configured; set data.dir, data.origin_url, or data.use_saved",
		})
	}
	if d.UseSaved && strings.TrimSpace(d.SavedDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data.saved_dir",
			Message:  "use_saved is true but saved_dir is empty",
		})
	}
	if d.Save && strings.TrimSpace(d.SavedDir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data.saved_dir",
			Message:  "save is true but saved_dir is empty",
		})
	}
	if d.Save && d.UseSaved {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "data",
			Message:  "save and use_saved are both set; saved files will be rewritten from themselves",
		})
	}
	if u := strings.TrimSpace(d.OriginURL); u != "" && !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "data.origin_url",
			Message:  fmt.Sprintf("origin_url %q must be an http(s) URL", u),
		})
	}

	return issues
}

// validateWork validates the output scratch area.
func validateWork(w Work) []Issue {
	var issues []Issue

	if strings.TrimSpace(w.Dir) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "work.dir",
			Message:  "work.dir must not be empty; generated files need a destination",
		})
	}

	return issues
}

// validateCatalog validates publication settings. Publication is optional:
// an empty base_url just disables it.
func validateCatalog(c Catalog) []Issue {
	var issues []Issue

	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		if !c.DryRun {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "catalog.base_url",
				Message:  "catalog.base_url is empty; datasets will be built but not published",
			})
		}
		return issues
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "catalog.base_url",
			Message:  fmt.Sprintf("base_url %q must be an http(s) URL", base),
		})
	}
	if strings.TrimSpace(c.APIKey) == "" && !c.DryRun {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "catalog.api_key",
			Message:  "catalog.api_key must not be empty when publishing",
		})
	}
	if len(c.Tags) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "catalog.tags",
			Message:  "no tags configured; published datasets will be hard to discover",
		})
	}

	return issues
}

// validateState validates the run-ledger backend selection.
func validateState(s State) []Issue {
	var issues []Issue

	kind := strings.TrimSpace(s.Kind)
	if kind == "" {
		return issues // ledger disabled
	}

	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
	}
	if _, ok := known[kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "state.kind",
			Message:  fmt.Sprintf("unknown state kind %q; ensure a matching backend is registered", kind),
		})
	}
	if strings.TrimSpace(s.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "state.dsn",
			Message:  "state.dsn must not be empty when a state backend is selected",
		})
	}

	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}

	return issues
}
