// Package importer orchestrates document imports: parse, match against the
// stored catalog, merge, and persist. The reconciliation plan is computed
// entirely over an in-memory snapshot, so a dry run reports exactly the
// counts a committing run would produce.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/kgquality/fwcat/internal/match"
	"github.com/kgquality/fwcat/internal/merge"
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/parse"
	"github.com/kgquality/fwcat/internal/store"
	"github.com/kgquality/fwcat/internal/worker"
)

// Importer reconciles parsed documents with the stored catalog.
type Importer struct {
	store  *store.Store
	parser *parse.Parser
}

// New creates an Importer backed by the given store and parser.
func New(st *store.Store, p *parse.Parser) *Importer {
	return &Importer{store: st, parser: p}
}

// ImportDocument parses the document at path and reconciles its framework
// candidates with the catalog. When dryRun is set nothing is persisted; the
// report carries the counts the commit would have produced.
func (imp *Importer) ImportDocument(ctx context.Context, path string, dryRun bool) (*model.ImportReport, error) {
	parsed, err := imp.parser.Parse(path)
	if err != nil {
		return nil, err
	}
	return imp.importParsed(ctx, path, parsed, dryRun)
}

// ImportDocuments imports several documents in one run: parsing happens
// concurrently on the pool, reconciliation sequentially in argument order so
// results match importing the documents one by one.
func (imp *Importer) ImportDocuments(ctx context.Context, paths []string, workers int, dryRun bool) ([]*model.ImportReport, error) {
	pool := worker.NewPool(workers)
	pool.Start()
	for i, path := range paths {
		pool.Submit(parseJob{index: i, path: path, parser: imp.parser})
	}

	ordered := make([]*parse.Result, len(paths))
	for _, result := range pool.Wait() {
		r := result.(parseResult)
		if r.err != nil {
			return nil, fmt.Errorf("parse %s: %w", r.path, r.err)
		}
		ordered[r.index] = r.parsed
	}

	reports := make([]*model.ImportReport, 0, len(paths))
	for i, parsed := range ordered {
		report, err := imp.importParsed(ctx, paths[i], parsed, dryRun)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// parseJob parses one document on the pool.
type parseJob struct {
	index  int
	path   string
	parser *parse.Parser
}

type parseResult struct {
	index  int
	path   string
	parsed *parse.Result
	err    error
}

func (r parseResult) Err() error { return r.err }

func (j parseJob) Execute(ctx context.Context) worker.Result {
	parsed, err := j.parser.Parse(j.path)
	return parseResult{index: j.index, path: j.path, parsed: parsed, err: err}
}

// importParsed reconciles one parsed document against a fresh snapshot.
func (imp *Importer) importParsed(ctx context.Context, path string, parsed *parse.Result, dryRun bool) (*model.ImportReport, error) {
	snap, err := imp.store.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	report := &model.ImportReport{
		Document:        path,
		Format:          string(parsed.Format),
		DryRun:          dryRun,
		RunAt:           time.Now().UTC(),
		SectionsSkipped: parsed.SectionsSkipped,
		Warnings:        append([]string(nil), parsed.Warnings...),
	}

	// Working set starts as the stored catalog; staged creations join it so
	// later candidates in the same document match them instead of creating
	// duplicates.
	working := append([]*model.Framework(nil), snap.Frameworks...)
	changedFrameworks := make(map[*model.Framework]bool)
	changedCriteria := make(map[*model.Criterion]bool)

	for i := range parsed.Frameworks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cand := &parsed.Frameworks[i]

		fw, _ := match.Framework(cand, working)
		if fw == nil {
			fw = stageFramework(cand, report)
			working = append(working, fw)
		} else {
			merged := merge.Frameworks(fw, cand)
			if !frameworksEqual(fw, &merged) {
				*fw = merged
				changedFrameworks[fw] = true
				report.FrameworksUpdated++
			}
		}

		// Criteria go through matching even for a just-staged framework: a
		// document section can list the same criterion twice under names
		// that normalize to one, and those must merge, not collide on the
		// store's uniqueness constraint.
		for j := range cand.Criteria {
			reconcileCriterion(fw, &cand.Criteria[j], changedCriteria, report)
		}
	}

	if dryRun {
		return report, nil
	}
	if err := imp.commit(path, parsed.Format, working, changedFrameworks, changedCriteria); err != nil {
		return nil, err
	}
	return report, nil
}

// stageFramework builds an in-memory framework (ID zero, no criteria) from a
// candidate and counts it as created. Its criteria are reconciled afterwards
// like any other so duplicates within one document section merge.
func stageFramework(cand *model.RawFramework, report *model.ImportReport) *model.Framework {
	fw := &model.Framework{
		Name:          cand.Name,
		Authors:       cand.Authors,
		Title:         cand.Title,
		Description:   cand.Description,
		Objectives:    cand.Objectives,
		Methodology:   cand.Methodology,
		AlgorithmUsed: cand.AlgorithmUsed,
		TopModel:      cand.TopModel,
		Accuracy:      cand.Accuracy,
		Advantages:    cand.Advantages,
		Drawbacks:     cand.Drawbacks,
		Source:        cand.Source,
	}
	if cand.Year != nil {
		y := *cand.Year
		fw.Year = &y
	}
	report.FrameworksCreated++
	return fw
}

// reconcileCriterion matches one criterion candidate within fw and stages a
// creation, a field merge, and any non-duplicate definitions.
func reconcileCriterion(fw *model.Framework, rc *model.RawCriterion, changed map[*model.Criterion]bool, report *model.ImportReport) {
	existing, _ := match.Criterion(rc, fw.Criteria)
	if existing == nil {
		c := &model.Criterion{
			FrameworkID: fw.ID,
			Name:        rc.Name,
			Description: rc.Description,
			Category:    rc.Category,
			Position:    len(fw.Criteria),
		}
		for _, text := range rc.Definitions {
			c.Definitions = append(c.Definitions, &model.Definition{Text: text})
			report.DefinitionsCreated++
		}
		fw.Criteria = append(fw.Criteria, c)
		report.CriteriaCreated++
		return
	}

	merged := merge.Criteria(existing, rc)
	if merged.Description != existing.Description || merged.Category != existing.Category {
		*existing = merged
		// A staged criterion (ID zero) is still a pending creation; merged
		// fields ride along with the insert and are not a separate update.
		if existing.ID != 0 {
			changed[existing] = true
			report.CriteriaUpdated++
		}
	}

	for _, text := range rc.Definitions {
		if hasNearDuplicate(existing.Definitions, text) {
			continue
		}
		existing.Definitions = append(existing.Definitions, &model.Definition{
			CriterionID: existing.ID,
			Text:        text,
		})
		report.DefinitionsCreated++
	}
}

// hasNearDuplicate reports whether text near-duplicates any staged or stored
// definition of the criterion.
func hasNearDuplicate(definitions []*model.Definition, text string) bool {
	for _, d := range definitions {
		if merge.NearDuplicateDefinitions(d.Text, text) {
			return true
		}
	}
	return false
}

// commit persists the staged plan: a provenance record for the run, then
// creations and updates in parent-before-child order so foreign keys resolve.
func (imp *Importer) commit(path string, format parse.Format, working []*model.Framework, changedFrameworks map[*model.Framework]bool, changedCriteria map[*model.Criterion]bool) error {
	ds := &model.DataSource{Label: filepath.Base(path), Kind: string(format)}
	if err := imp.store.CreateDataSource(ds); err != nil {
		return err
	}

	for _, fw := range working {
		switch {
		case fw.ID == 0:
			fw.DataSourceID = &ds.ID
			if err := imp.store.CreateFramework(fw); err != nil {
				return err
			}
		case changedFrameworks[fw]:
			if err := imp.store.UpdateFramework(fw); err != nil {
				return err
			}
		}

		for _, c := range fw.Criteria {
			switch {
			case c.ID == 0:
				c.FrameworkID = fw.ID
				if err := imp.store.CreateCriterion(c); err != nil {
					if store.IsConstraintViolation(err) {
						return fmt.Errorf("criterion %q conflicts with an existing one in framework %q: %w", c.Name, fw.Name, err)
					}
					return err
				}
			case changedCriteria[c]:
				if err := imp.store.UpdateCriterion(c); err != nil {
					return err
				}
			}

			for _, d := range c.Definitions {
				if d.ID != 0 {
					continue
				}
				d.CriterionID = c.ID
				if err := imp.store.CreateDefinition(d); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// frameworksEqual compares the mergeable scalar fields of two frameworks.
func frameworksEqual(a, b *model.Framework) bool {
	if (a.Year == nil) != (b.Year == nil) {
		return false
	}
	if a.Year != nil && *a.Year != *b.Year {
		return false
	}
	return a.Name == b.Name &&
		a.Authors == b.Authors &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.Objectives == b.Objectives &&
		a.Methodology == b.Methodology &&
		a.AlgorithmUsed == b.AlgorithmUsed &&
		a.TopModel == b.TopModel &&
		a.Accuracy == b.Accuracy &&
		a.Advantages == b.Advantages &&
		a.Drawbacks == b.Drawbacks &&
		a.Source == b.Source
}
