package model

import "time"

// Framework represents a Knowledge Graph quality assessment framework
// extracted from literature (e.g. "Chen et al. 2019").
type Framework struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Authors       string `json:"authors,omitempty"`
	Year          *int   `json:"year,omitempty"` // nil when the source never stated one
	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Objectives    string `json:"objectives,omitempty"`
	Methodology   string `json:"methodology,omitempty"`
	AlgorithmUsed string `json:"algorithm_used,omitempty"`
	TopModel      string `json:"top_model,omitempty"`
	Accuracy      string `json:"accuracy,omitempty"`
	Advantages    string `json:"advantages,omitempty"`
	Drawbacks     string `json:"drawbacks,omitempty"`
	Source        string `json:"source,omitempty"`

	// DataSourceID back-references the provenance record of the import
	// that created this framework, if any.
	DataSourceID *int64 `json:"data_source_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Criteria are populated on snapshot loads, ordered by position.
	Criteria []*Criterion `json:"criteria,omitempty"`
}

// Criterion is a named quality dimension belonging to exactly one framework.
// (FrameworkID, normalized name) is unique at the store level.
type Criterion struct {
	ID          int64  `json:"id"`
	FrameworkID int64  `json:"framework_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Position    int    `json:"position"` // document order within the framework

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Definitions []*Definition `json:"definitions,omitempty"`
}

// Definition is explanatory text for one criterion. Definitions of the same
// criterion may differ across source documents.
type Definition struct {
	ID          int64     `json:"id"`
	CriterionID int64     `json:"criterion_id"`
	Text        string    `json:"text"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DataSource records where imported data came from (one row per commit-mode
// import run). Frameworks hold a weak back-reference to it.
type DataSource struct {
	ID         int64     `json:"id"`
	Label      string    `json:"label"` // typically the document path
	Kind       string    `json:"kind"`  // "docx", "pdf"
	ImportedAt time.Time `json:"imported_at"`
}

// Snapshot is a fully-loaded in-memory copy of the store: every framework
// with its criteria and definitions. Cleanup and import planning operate on
// a snapshot so the reconciliation logic stays a pure function of it.
type Snapshot struct {
	Frameworks []*Framework
}

// YearOf returns the framework's year or 0 when unset.
func (f *Framework) YearOf() int {
	if f.Year == nil {
		return 0
	}
	return *f.Year
}

// CompletenessScore counts non-empty descriptive fields. Cleanup uses it to
// pick the survivor of a duplicate group.
func (f *Framework) CompletenessScore() int {
	score := 0
	for _, s := range []string{
		f.Authors, f.Title, f.Description, f.Objectives, f.Methodology,
		f.AlgorithmUsed, f.TopModel, f.Accuracy, f.Advantages, f.Drawbacks, f.Source,
	} {
		if s != "" {
			score++
		}
	}
	if f.Year != nil {
		score++
	}
	return score
}

// CompletenessScore counts non-empty descriptive fields of a criterion.
func (c *Criterion) CompletenessScore() int {
	score := 0
	if c.Description != "" {
		score++
	}
	if c.Category != "" {
		score++
	}
	return score
}
