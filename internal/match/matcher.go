// Package match decides whether a parsed candidate corresponds to an
// already-stored framework or criterion. Matching is an ordered list of
// predicates evaluated in a fixed sequence; the first hit wins, which makes
// the tie-break order explicit and independently testable.
package match

import (
	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/textnorm"
)

// Tier identifies which matching rule produced a hit.
type Tier string

const (
	TierExactName      Tier = "exact_name"
	TierNormalizedName Tier = "normalized_name"
	TierYearTitle      Tier = "year_title"
	TierYearNormTitle  Tier = "year_normalized_title"
	TierNone           Tier = ""
)

// frameworkTier is one matching predicate. Predicates never mutate their
// arguments.
type frameworkTier struct {
	tier  Tier
	match func(cand *model.RawFramework, fw *model.Framework) bool
}

// frameworkTiers is the fixed evaluation order. Exact equality ranks above
// normalized equality, which ranks above year/title agreement; the weakest
// tier compares year plus normalized title.
var frameworkTiers = []frameworkTier{
	{TierExactName, func(c *model.RawFramework, f *model.Framework) bool {
		return c.Name != "" && c.Name == f.Name
	}},
	{TierNormalizedName, func(c *model.RawFramework, f *model.Framework) bool {
		return textnorm.Equal(c.Name, f.Name)
	}},
	{TierYearTitle, func(c *model.RawFramework, f *model.Framework) bool {
		return c.Year != nil && f.Year != nil && *c.Year == *f.Year &&
			c.Title != "" && c.Title == f.Title
	}},
	{TierYearNormTitle, func(c *model.RawFramework, f *model.Framework) bool {
		return c.Year != nil && f.Year != nil && *c.Year == *f.Year &&
			textnorm.Equal(c.Title, f.Title)
	}},
}

// Framework returns the existing framework the candidate corresponds to, or
// nil when all tiers miss. At most one framework is returned: within a tier
// the first stored framework wins, and the existing slice keeps store order,
// so the decision is deterministic.
func Framework(cand *model.RawFramework, existing []*model.Framework) (*model.Framework, Tier) {
	for _, t := range frameworkTiers {
		for _, fw := range existing {
			if t.match(cand, fw) {
				return fw, t.tier
			}
		}
	}
	return nil, TierNone
}

// Criterion matches a criterion candidate within one framework. Criteria
// carry no year/title, so only the two name tiers apply.
func Criterion(cand *model.RawCriterion, existing []*model.Criterion) (*model.Criterion, Tier) {
	for _, c := range existing {
		if cand.Name != "" && cand.Name == c.Name {
			return c, TierExactName
		}
	}
	for _, c := range existing {
		if textnorm.Equal(cand.Name, c.Name) {
			return c, TierNormalizedName
		}
	}
	return nil, TierNone
}

// SameFramework reports whether two stored frameworks are duplicates under
// the same four tiers. Cleanup uses it for pairwise grouping.
func SameFramework(a, b *model.Framework) (bool, Tier) {
	cand := &model.RawFramework{Name: a.Name, Year: a.Year, Title: a.Title}
	fw, tier := Framework(cand, []*model.Framework{b})
	return fw != nil, tier
}

// SameCriterion reports whether two stored criteria are duplicates under the
// two name tiers.
func SameCriterion(a, b *model.Criterion) bool {
	cand := &model.RawCriterion{Name: a.Name}
	c, _ := Criterion(cand, []*model.Criterion{b})
	return c != nil
}
