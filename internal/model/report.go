package model

import "time"

// ImportReport summarizes one document import run. Dry-run and commit mode
// produce identical counts for the same input; only commit mode persists.
type ImportReport struct {
	Document string    `json:"document"`
	Format   string    `json:"format"`
	DryRun   bool      `json:"dry_run"`
	RunAt    time.Time `json:"run_at"`

	FrameworksCreated  int `json:"frameworks_created"`
	FrameworksUpdated  int `json:"frameworks_updated"`
	CriteriaCreated    int `json:"criteria_created"`
	CriteriaUpdated    int `json:"criteria_updated"`
	DefinitionsCreated int `json:"definitions_created"`

	// SectionsSkipped counts document sections that could not be
	// interpreted. They are warnings, never fatal.
	SectionsSkipped int      `json:"sections_skipped"`
	Warnings        []string `json:"warnings,omitempty"`
}

// CleanupReport summarizes one duplicate-cleanup pass over the whole store.
type CleanupReport struct {
	DryRun bool      `json:"dry_run"`
	RunAt  time.Time `json:"run_at"`

	FrameworksMerged   int      `json:"frameworks_merged"`
	CriteriaMerged     int      `json:"criteria_merged"`
	DefinitionsRemoved int      `json:"definitions_removed"`
	Warnings           []string `json:"warnings,omitempty"`
}

// ImproveReport summarizes one description-improvement run.
type ImproveReport struct {
	DryRun bool      `json:"dry_run"`
	RunAt  time.Time `json:"run_at"`

	// CriteriaSparse counts criteria whose description was empty or short
	// enough to rewrite and which carry definitions to rewrite from.
	CriteriaSparse   int      `json:"criteria_sparse"`
	CriteriaImproved int      `json:"criteria_improved"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Comparison is the result of comparing one criterion across frameworks.
type Comparison struct {
	Criterion string          `json:"criterion"`
	Rows      []ComparisonRow `json:"rows"`

	// Enhancement is optional LLM output. It is best-effort and
	// non-authoritative: nil whenever no provider was usable.
	Enhancement *Enhancement `json:"enhancement,omitempty"`
}

// ComparisonRow is one framework's view of the compared criterion.
type ComparisonRow struct {
	Framework   string   `json:"framework"`
	Year        *int     `json:"year,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Definitions []string `json:"definitions,omitempty"`
}

// Enhancement holds the LLM-backed semantic pass over a comparison.
type Enhancement struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`

	// SimilarityGroups maps a framework name to the frameworks whose
	// definitions of the criterion are semantically closest (top 3,
	// cosine similarity >= the configured threshold).
	SimilarityGroups map[string][]string `json:"similarity_groups,omitempty"`

	// Summary is a short free-text synthesis of how the frameworks
	// define the criterion.
	Summary string `json:"summary,omitempty"`
}
