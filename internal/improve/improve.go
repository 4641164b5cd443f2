// Package improve rewrites sparse criterion descriptions. Criteria often
// arrive from survey tables with definitions but little or no description;
// this pass asks the configured LLM provider to synthesize one from the
// stored definition texts. LLM output overwrites only descriptions below the
// sparseness threshold, never curated ones.
package improve

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kgquality/fwcat/internal/llm"
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/store"
)

// sparseLength is the description length below which a criterion counts as
// sparse enough to rewrite.
const sparseLength = 40

// Describer produces a criterion description from definition texts.
type Describer interface {
	Describe(ctx context.Context, criterion string, defs []llm.FrameworkDefinition) (string, error)
}

// Improver rewrites sparse criterion descriptions from their definitions.
type Improver struct {
	store     *store.Store
	describer Describer
}

// New creates an Improver. The describer may be nil for dry runs, which
// only count candidates.
func New(st *store.Store, d Describer) *Improver {
	return &Improver{store: st, describer: d}
}

// Run walks every criterion and rewrites descriptions that are sparse and
// have definitions to rewrite from. A provider failure on one criterion
// becomes a warning; the run continues.
func (imp *Improver) Run(ctx context.Context, dryRun bool) (*model.ImproveReport, error) {
	if !dryRun && imp.describer == nil {
		return nil, fmt.Errorf("no LLM provider available")
	}

	snap, err := imp.store.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	report := &model.ImproveReport{DryRun: dryRun, RunAt: time.Now().UTC()}
	for _, fw := range snap.Frameworks {
		for _, c := range fw.Criteria {
			if !sparse(c) {
				continue
			}
			report.CriteriaSparse++
			if dryRun {
				continue
			}

			desc, err := imp.describer.Describe(ctx, c.Name, definitionInputs(fw, c))
			if err != nil {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("%s / %s: %v", fw.Name, c.Name, err))
				continue
			}
			if desc == "" {
				continue
			}

			c.Description = desc
			if err := imp.store.UpdateCriterion(c); err != nil {
				return report, err
			}
			report.CriteriaImproved++
		}
	}
	return report, nil
}

// sparse reports whether the criterion's description is worth rewriting.
func sparse(c *model.Criterion) bool {
	return len(c.Definitions) > 0 && len(strings.TrimSpace(c.Description)) < sparseLength
}

// definitionInputs converts a criterion's stored definitions into provider
// input, labeled with the owning framework.
func definitionInputs(fw *model.Framework, c *model.Criterion) []llm.FrameworkDefinition {
	defs := make([]llm.FrameworkDefinition, 0, len(c.Definitions))
	for _, d := range c.Definitions {
		defs = append(defs, llm.FrameworkDefinition{
			Framework: fw.Name,
			Year:      fw.Year,
			Text:      d.Text,
		})
	}
	return defs
}
