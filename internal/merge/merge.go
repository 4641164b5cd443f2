// Package merge reconciles an existing record with a candidate judged
// equivalent, without silently discarding previously-captured information.
// Merges are pure functions over field values; the orchestrators apply the
// results.
package merge

import (
	"strings"

	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/textnorm"
)

// DefinitionLengthSlack bounds the normalized-length difference under which
// a substring relation counts as a near-duplicate. It guards against merging
// a short fragment into a long unrelated text that happens to contain it.
const DefinitionLengthSlack = 20

// longer picks the candidate only when it is strictly longer or the existing
// value is empty. Used for free-text fields where "more complete" is the
// best available heuristic for conflicting values.
func longer(existing, candidate string) string {
	if existing == "" {
		return candidate
	}
	if candidate != "" && len(candidate) > len(existing) {
		return candidate
	}
	return existing
}

// fillEmpty keeps the existing value unless it is empty. Used for short
// categorical fields where overwriting would lose the original source's
// statement.
func fillEmpty(existing, candidate string) string {
	if existing == "" {
		return candidate
	}
	return existing
}

// Frameworks merges candidate field values into a copy of the existing
// framework. Identity (ID, Name, timestamps, children) is taken from the
// existing record; name only fills in when the existing one is empty.
func Frameworks(existing *model.Framework, cand *model.RawFramework) model.Framework {
	merged := *existing

	merged.Name = fillEmpty(existing.Name, cand.Name)
	merged.Authors = fillEmpty(existing.Authors, cand.Authors)
	merged.Title = fillEmpty(existing.Title, cand.Title)
	merged.AlgorithmUsed = fillEmpty(existing.AlgorithmUsed, cand.AlgorithmUsed)
	merged.TopModel = fillEmpty(existing.TopModel, cand.TopModel)
	merged.Accuracy = fillEmpty(existing.Accuracy, cand.Accuracy)
	merged.Source = fillEmpty(existing.Source, cand.Source)

	merged.Description = longer(existing.Description, cand.Description)
	merged.Objectives = longer(existing.Objectives, cand.Objectives)
	merged.Methodology = longer(existing.Methodology, cand.Methodology)
	merged.Advantages = longer(existing.Advantages, cand.Advantages)
	merged.Drawbacks = longer(existing.Drawbacks, cand.Drawbacks)

	if existing.Year == nil && cand.Year != nil {
		y := *cand.Year
		merged.Year = &y
	}

	return merged
}

// FrameworkRecords merges one stored framework into another (cleanup path).
// The duplicate's fields flow into the survivor under the same policy as
// Frameworks.
func FrameworkRecords(survivor, duplicate *model.Framework) model.Framework {
	cand := &model.RawFramework{
		Name:          duplicate.Name,
		Authors:       duplicate.Authors,
		Year:          duplicate.Year,
		Title:         duplicate.Title,
		Description:   duplicate.Description,
		Objectives:    duplicate.Objectives,
		Methodology:   duplicate.Methodology,
		AlgorithmUsed: duplicate.AlgorithmUsed,
		TopModel:      duplicate.TopModel,
		Accuracy:      duplicate.Accuracy,
		Advantages:    duplicate.Advantages,
		Drawbacks:     duplicate.Drawbacks,
		Source:        duplicate.Source,
	}
	return Frameworks(survivor, cand)
}

// Criteria merges candidate criterion fields into a copy of the existing
// criterion. Position is sticky: the first-seen document order wins.
func Criteria(existing *model.Criterion, cand *model.RawCriterion) model.Criterion {
	merged := *existing
	merged.Description = longer(existing.Description, cand.Description)
	merged.Category = fillEmpty(existing.Category, cand.Category)
	return merged
}

// CriterionRecords merges one stored criterion into another (cleanup path).
func CriterionRecords(survivor, duplicate *model.Criterion) model.Criterion {
	return Criteria(survivor, &model.RawCriterion{
		Description: duplicate.Description,
		Category:    duplicate.Category,
	})
}

// NearDuplicateDefinitions reports whether two definition texts are
// near-duplicates: normalized texts equal, or one a substring of the other
// with a length difference below DefinitionLengthSlack.
func NearDuplicateDefinitions(a, b string) bool {
	na, nb := textnorm.Normalize(a), textnorm.Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		diff := len(na) - len(nb)
		if diff < 0 {
			diff = -diff
		}
		return diff < DefinitionLengthSlack
	}
	return false
}

// PreferDefinition returns the text to keep out of two near-duplicates: the
// longer one, the existing on ties.
func PreferDefinition(existing, candidate string) string {
	if len(textnorm.Normalize(candidate)) > len(textnorm.Normalize(existing)) {
		return candidate
	}
	return existing
}
