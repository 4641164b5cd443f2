// Package compare builds side-by-side views of how stored frameworks define
// one quality criterion, optionally enhanced with LLM similarity groups and
// a summary.
package compare

import (
	"context"
	"fmt"
	"sort"

	"github.com/kgquality/fwcat/internal/llm"
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/store"
	"github.com/kgquality/fwcat/internal/textnorm"
)

// Comparator assembles criterion comparisons from the store.
type Comparator struct {
	store    *store.Store
	enhancer *llm.Enhancer
}

// New creates a Comparator. A nil enhancer disables the LLM pass.
func New(st *store.Store, enhancer *llm.Enhancer) *Comparator {
	return &Comparator{store: st, enhancer: enhancer}
}

// Criterion collects every framework's take on the named criterion. The
// lookup uses normalized names, so "completeness" finds "Completeness".
// Newest frameworks come first; year-less ones sort last.
func (c *Comparator) Criterion(ctx context.Context, name string) (*model.Comparison, error) {
	if textnorm.Normalize(name) == "" {
		return nil, fmt.Errorf("empty criterion name")
	}

	snap, err := c.store.LoadSnapshot()
	if err != nil {
		return nil, err
	}

	comparison := &model.Comparison{Criterion: name}
	for _, fw := range snap.Frameworks {
		for _, criterion := range fw.Criteria {
			if !textnorm.Equal(criterion.Name, name) {
				continue
			}
			row := model.ComparisonRow{
				Framework:   fw.Name,
				Year:        fw.Year,
				Description: criterion.Description,
				Category:    criterion.Category,
			}
			for _, def := range criterion.Definitions {
				row.Definitions = append(row.Definitions, def.Text)
			}
			comparison.Rows = append(comparison.Rows, row)
		}
	}
	if len(comparison.Rows) == 0 {
		return nil, fmt.Errorf("no framework defines criterion %q", name)
	}

	sort.SliceStable(comparison.Rows, func(i, j int) bool {
		a, b := comparison.Rows[i], comparison.Rows[j]
		switch {
		case a.Year == nil:
			return false
		case b.Year == nil:
			return true
		case *a.Year != *b.Year:
			return *a.Year > *b.Year
		}
		return a.Framework < b.Framework
	})

	if c.enhancer != nil {
		// Best-effort: a failed enhancement degrades to the plain table.
		if enh, err := c.enhancer.Enhance(ctx, name, enhanceInput(comparison.Rows)); err == nil {
			comparison.Enhancement = enh
		}
	}
	return comparison, nil
}

// enhanceInput picks one definition text per row: the first recorded
// definition, falling back to the criterion description.
func enhanceInput(rows []model.ComparisonRow) []llm.FrameworkDefinition {
	var defs []llm.FrameworkDefinition
	for _, row := range rows {
		text := row.Description
		if len(row.Definitions) > 0 {
			text = row.Definitions[0]
		}
		if text == "" {
			continue
		}
		defs = append(defs, llm.FrameworkDefinition{
			Framework: row.Framework,
			Year:      row.Year,
			Text:      text,
		})
	}
	return defs
}
