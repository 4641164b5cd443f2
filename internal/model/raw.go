package model

// RawFramework is a framework candidate as parsed from a document, before
// matching against the store. Field values are exactly what the parser could
// extract; absent fields stay zero so merge can tell "unknown" from
// "explicitly empty".
type RawFramework struct {
	Name          string
	Authors       string
	Year          *int
	Title         string
	Description   string
	Objectives    string
	Methodology   string
	AlgorithmUsed string
	TopModel      string
	Accuracy      string
	Advantages    string
	Drawbacks     string
	Source        string

	// Criteria in document order. Document order becomes the criterion
	// position when no explicit ordering exists.
	Criteria []RawCriterion
}

// RawCriterion is a criterion candidate nested under its framework section.
type RawCriterion struct {
	Name        string
	Description string
	Category    string

	// Definitions holds raw definition texts in document order.
	Definitions []string
}

// YearOf returns the candidate's year or 0 when unset.
func (r *RawFramework) YearOf() int {
	if r.Year == nil {
		return 0
	}
	return *r.Year
}
