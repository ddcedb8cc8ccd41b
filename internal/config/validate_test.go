package config

import (
	"strings"
	"testing"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

// validRun is a baseline that should lint clean.
func validRun() Run {
	return Run{
		Job:  "gem",
		Data: Data{Dir: "data", OriginURL: "https://example.org/gem/"},
		Work: Work{Dir: "out"},
		Catalog: Catalog{
			BaseURL: "https://catalog.example.org",
			APIKey:  "env:CATALOG_KEY",
			Tags:    []string{"gender"},
		},
		State:   State{Kind: "sqlite", DSN: "state.db"},
		Runtime: RuntimeConfig{Workers: 2},
	}
}

/*
TestValidateRun_ValidMinimal verifies that a well-formed run produces no
issues (errors or warnings).
*/
func TestValidateRun_ValidMinimal(t *testing.T) {
	if issues := ValidateRun(validRun()); len(issues) != 0 {
		t.Fatalf("expected no issues; got %+v", issues)
	}
}

/*
TestValidateRun_MissingJob verifies that a missing or empty Job field
produces a SeverityError with path "job".
*/
func TestValidateRun_MissingJob(t *testing.T) {
	r := validRun()
	r.Job = ""
	issues := ValidateRun(r)
	if !hasIssue(t, issues, SeverityError, "job", "job must not be empty") {
		t.Fatalf("expected SeverityError for job; got issues: %+v", issues)
	}
}

/* TestValidateRun_Data covers the input-location checks. */
func TestValidateRun_Data(t *testing.T) {
	r := validRun()
	r.Data = Data{}
	if !hasIssue(t, ValidateRun(r), SeverityError, "data", "no input location") {
		t.Fatalf("expected error for empty data block")
	}

	r = validRun()
	r.Data.UseSaved = true
	r.Data.SavedDir = ""
	if !hasIssue(t, ValidateRun(r), SeverityError, "data.saved_dir", "use_saved") {
		t.Fatalf("expected error for use_saved without saved_dir")
	}

	r = validRun()
	r.Data.OriginURL = "ftp://example.org"
	if !hasIssue(t, ValidateRun(r), SeverityError, "data.origin_url", "http(s)") {
		t.Fatalf("expected error for non-http origin url")
	}

	r = validRun()
	r.Data.Save = true
	r.Data.UseSaved = true
	r.Data.SavedDir = "saved"
	if !hasIssue(t, ValidateRun(r), SeverityWarning, "data", "save and use_saved") {
		t.Fatalf("expected warning for save+use_saved")
	}
}

/* TestValidateRun_Catalog covers the publication checks. */
func TestValidateRun_Catalog(t *testing.T) {
	r := validRun()
	r.Catalog.APIKey = ""
	if !hasIssue(t, ValidateRun(r), SeverityError, "catalog.api_key", "must not be empty") {
		t.Fatalf("expected error for missing api key")
	}

	// Dry run needs no key.
	r.Catalog.DryRun = true
	if hasIssue(t, ValidateRun(r), SeverityError, "catalog.api_key", "") {
		t.Fatalf("dry run should not require an api key")
	}

	// Empty base_url disables publication with only a warning.
	r = validRun()
	r.Catalog.BaseURL = ""
	r.Catalog.APIKey = ""
	issues := ValidateRun(r)
	if !hasIssue(t, issues, SeverityWarning, "catalog.base_url", "not published") {
		t.Fatalf("expected warning for disabled publication; got %+v", issues)
	}
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			t.Fatalf("disabled publication must not error: %+v", iss)
		}
	}
}

/* TestValidateRun_State covers the ledger backend checks. */
func TestValidateRun_State(t *testing.T) {
	r := validRun()
	r.State = State{} // disabled
	if len(ValidateRun(r)) != 0 {
		t.Fatalf("empty state block should lint clean")
	}

	r.State = State{Kind: "etcd", DSN: "x"}
	if !hasIssue(t, ValidateRun(r), SeverityWarning, "state.kind", "unknown state kind") {
		t.Fatalf("expected warning for unknown state kind")
	}

	r.State = State{Kind: "sqlite"}
	if !hasIssue(t, ValidateRun(r), SeverityError, "state.dsn", "must not be empty") {
		t.Fatalf("expected error for missing dsn")
	}
}

/* TestValidateRun_Runtime rejects negative worker counts. */
func TestValidateRun_Runtime(t *testing.T) {
	r := validRun()
	r.Runtime.Workers = -1
	if !hasIssue(t, ValidateRun(r), SeverityError, "runtime.workers", "negative") {
		t.Fatalf("expected error for negative workers")
	}
}
