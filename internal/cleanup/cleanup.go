// Package cleanup reconciles duplicates that accumulated across imports:
// frameworks matching under the same tiers the importer uses are merged into
// a single survivor, their criteria are reparented or merged, and
// near-duplicate definitions are collapsed to the most complete text. The
// plan is computed over an in-memory snapshot; destructive operations run
// only in commit mode.
package cleanup

import (
	"context"
	"time"

	"github.com/kgquality/fwcat/internal/match"
	"github.com/kgquality/fwcat/internal/merge"
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/store"
)

// Cleaner deduplicates the stored catalog.
type Cleaner struct {
	store *store.Store
}

// New creates a Cleaner backed by the given store.
func New(st *store.Store) *Cleaner {
	return &Cleaner{store: st}
}

// plan is the set of operations a cleanup pass would perform, in apply
// order: survivor updates first, then reparents, then deletions.
type plan struct {
	updateFrameworks []*model.Framework
	updateCriteria   []*model.Criterion
	reparentCriteria []*model.Criterion
	reparentDefs     []move
	deleteDefs       []int64
	deleteCriteria   []int64
	deleteFrameworks []int64
}

// move reparents the record with ID under the new parent.
type move struct {
	id     int64
	parent int64
}

// Run computes and (unless dryRun) applies a cleanup pass.
func (c *Cleaner) Run(ctx context.Context, dryRun bool) (*model.CleanupReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap, err := c.store.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	p, report := buildPlan(snap)
	report.DryRun = dryRun
	report.RunAt = time.Now().UTC()
	if dryRun {
		return report, nil
	}
	if err := c.apply(p); err != nil {
		return nil, err
	}
	return report, nil
}

// buildPlan groups duplicate frameworks, picks survivors, and stages merges.
// It mutates only the in-memory snapshot.
func buildPlan(snap *model.Snapshot) (*plan, *model.CleanupReport) {
	p := &plan{}
	report := &model.CleanupReport{}

	groups := groupFrameworks(snap.Frameworks)
	var survivors []*model.Framework

	for _, group := range groups {
		survivor := pickSurvivor(group)
		survivors = append(survivors, survivor)

		for _, dup := range group {
			if dup == survivor {
				continue
			}
			mergeFramework(p, report, survivor, dup)
			report.FrameworksMerged++
		}
	}

	// Definitions are deduplicated for every surviving criterion, merged or
	// not: near-duplicates can accumulate within one framework across runs
	// of different documents.
	for _, fw := range survivors {
		for _, criterion := range fw.Criteria {
			dedupeDefinitions(p, report, criterion)
		}
	}

	return p, report
}

// groupFrameworks partitions frameworks into duplicate groups: a framework
// joins the first group any of whose members it matches.
func groupFrameworks(frameworks []*model.Framework) [][]*model.Framework {
	var groups [][]*model.Framework

next:
	for _, fw := range frameworks {
		for i, group := range groups {
			for _, member := range group {
				if same, _ := match.SameFramework(fw, member); same {
					groups[i] = append(groups[i], fw)
					continue next
				}
			}
		}
		groups = append(groups, []*model.Framework{fw})
	}
	return groups
}

// pickSurvivor selects the group's most complete framework; completeness
// ties go to the earliest created, then the lowest ID.
func pickSurvivor(group []*model.Framework) *model.Framework {
	survivor := group[0]
	for _, fw := range group[1:] {
		switch {
		case fw.CompletenessScore() > survivor.CompletenessScore():
			survivor = fw
		case fw.CompletenessScore() == survivor.CompletenessScore():
			if fw.CreatedAt.Before(survivor.CreatedAt) ||
				(fw.CreatedAt.Equal(survivor.CreatedAt) && fw.ID < survivor.ID) {
				survivor = fw
			}
		}
	}
	return survivor
}

// mergeFramework folds one duplicate into the survivor: field merge, then
// per-criterion reparent-or-merge, then deletion of the emptied duplicate.
func mergeFramework(p *plan, report *model.CleanupReport, survivor, dup *model.Framework) {
	merged := merge.FrameworkRecords(survivor, dup)
	*survivor = merged
	p.updateFrameworks = append(p.updateFrameworks, survivor)

	for _, criterion := range dup.Criteria {
		target := findCriterion(survivor.Criteria, criterion)
		if target == nil {
			// No counterpart in the survivor: the criterion moves over whole.
			criterion.FrameworkID = survivor.ID
			survivor.Criteria = append(survivor.Criteria, criterion)
			p.reparentCriteria = append(p.reparentCriteria, criterion)
			continue
		}

		mergedCriterion := merge.CriterionRecords(target, criterion)
		*target = mergedCriterion
		p.updateCriteria = append(p.updateCriteria, target)
		report.CriteriaMerged++

		// The duplicate criterion's definitions move under the target; the
		// later dedupe pass collapses any near-duplicates among them.
		for _, def := range criterion.Definitions {
			def.CriterionID = target.ID
			target.Definitions = append(target.Definitions, def)
			p.reparentDefs = append(p.reparentDefs, move{id: def.ID, parent: target.ID})
		}
		p.deleteCriteria = append(p.deleteCriteria, criterion.ID)
	}

	p.deleteFrameworks = append(p.deleteFrameworks, dup.ID)
}

// findCriterion returns the survivor criterion matching c, or nil.
func findCriterion(existing []*model.Criterion, c *model.Criterion) *model.Criterion {
	for _, candidate := range existing {
		if match.SameCriterion(c, candidate) {
			return candidate
		}
	}
	return nil
}

// dedupeDefinitions collapses near-duplicate definitions of one criterion,
// keeping the most complete text of each duplicate set.
func dedupeDefinitions(p *plan, report *model.CleanupReport, criterion *model.Criterion) {
	var kept []*model.Definition

next:
	for _, def := range criterion.Definitions {
		for i, k := range kept {
			if !merge.NearDuplicateDefinitions(k.Text, def.Text) {
				continue
			}
			if merge.PreferDefinition(k.Text, def.Text) == def.Text && def.Text != k.Text {
				p.deleteDefs = append(p.deleteDefs, k.ID)
				kept[i] = def
			} else {
				p.deleteDefs = append(p.deleteDefs, def.ID)
			}
			report.DefinitionsRemoved++
			continue next
		}
		kept = append(kept, def)
	}
	criterion.Definitions = kept
}

// apply executes the plan. Reparents run before deletions so surviving
// children are out of the way when duplicate parents cascade.
func (c *Cleaner) apply(p *plan) error {
	for _, fw := range p.updateFrameworks {
		if err := c.store.UpdateFramework(fw); err != nil {
			return err
		}
	}
	for _, criterion := range p.updateCriteria {
		if err := c.store.UpdateCriterion(criterion); err != nil {
			return err
		}
	}
	for _, criterion := range p.reparentCriteria {
		if err := c.store.UpdateCriterion(criterion); err != nil {
			return err
		}
	}
	for _, m := range p.reparentDefs {
		if err := c.store.ReparentDefinition(m.id, m.parent); err != nil {
			return err
		}
	}
	for _, id := range p.deleteDefs {
		if err := c.store.DeleteDefinition(id); err != nil {
			return err
		}
	}
	for _, id := range p.deleteCriteria {
		if err := c.store.DeleteCriterion(id); err != nil {
			return err
		}
	}
	for _, id := range p.deleteFrameworks {
		if err := c.store.DeleteFramework(id); err != nil {
			return err
		}
	}
	return nil
}
