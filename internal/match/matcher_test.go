package match

import (
	"testing"

	"github.com/kgquality/fwcat/internal/model"
)

func intp(v int) *int { return &v }

func TestFrameworkTierOrder(t *testing.T) {
	existing := []*model.Framework{
		{ID: 1, Name: "Chen et al. 2019", Year: intp(2019), Title: "KG Quality"},
		{ID: 2, Name: "Wang 2020", Year: intp(2020), Title: "Graph Assessment"},
	}

	tests := []struct {
		name     string
		cand     *model.RawFramework
		wantID   int64
		wantTier Tier
	}{
		{
			"exact name",
			&model.RawFramework{Name: "Chen et al. 2019"},
			1, TierExactName,
		},
		{
			"normalized name",
			&model.RawFramework{Name: "chen  ET AL. (2019)"},
			1, TierNormalizedName,
		},
		{
			"year and title",
			&model.RawFramework{Name: "Different Name", Year: intp(2020), Title: "Graph Assessment"},
			2, TierYearTitle,
		},
		{
			"year and normalized title",
			&model.RawFramework{Name: "Different Name", Year: intp(2020), Title: "graph   assessment"},
			2, TierYearNormTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw, tier := Framework(tt.cand, existing)
			if fw == nil {
				t.Fatalf("expected a match, got none")
			}
			if fw.ID != tt.wantID {
				t.Errorf("matched framework %d, want %d", fw.ID, tt.wantID)
			}
			if tier != tt.wantTier {
				t.Errorf("matched at tier %q, want %q", tier, tt.wantTier)
			}
		})
	}
}

func TestFrameworkNoMatch(t *testing.T) {
	existing := []*model.Framework{
		{ID: 1, Name: "Chen et al. 2019", Year: intp(2019), Title: "KG Quality"},
	}

	cands := []*model.RawFramework{
		{Name: "Zaveri et al. 2016"},
		{Name: "Other", Year: intp(2019), Title: "A Different Paper"},
		{Name: "Other", Year: intp(2018), Title: "KG Quality"}, // year mismatch
		{},
	}

	for _, cand := range cands {
		if fw, tier := Framework(cand, existing); fw != nil {
			t.Errorf("candidate %+v unexpectedly matched %q at tier %q", cand, fw.Name, tier)
		}
	}
}

func TestFrameworkEmptyNamesNeverMatch(t *testing.T) {
	existing := []*model.Framework{{ID: 1, Name: ""}}
	if fw, _ := Framework(&model.RawFramework{Name: ""}, existing); fw != nil {
		t.Error("empty names must not match each other")
	}
}

func TestFrameworkMissingYearNeverReachesYearTiers(t *testing.T) {
	existing := []*model.Framework{
		{ID: 1, Name: "Chen et al. 2019", Title: "KG Quality"}, // no year stored
	}
	cand := &model.RawFramework{Name: "Other", Year: intp(2019), Title: "KG Quality"}
	if fw, _ := Framework(cand, existing); fw != nil {
		t.Error("year tiers require both sides to carry a year")
	}
}

func TestCriterionTwoTiers(t *testing.T) {
	existing := []*model.Criterion{
		{ID: 1, Name: "Completeness"},
		{ID: 2, Name: "Semantic Accuracy"},
	}

	if c, tier := Criterion(&model.RawCriterion{Name: "Completeness"}, existing); c == nil || tier != TierExactName {
		t.Errorf("exact criterion match failed: %+v %q", c, tier)
	}
	if c, tier := Criterion(&model.RawCriterion{Name: "semantic   accuracy"}, existing); c == nil || c.ID != 2 || tier != TierNormalizedName {
		t.Errorf("normalized criterion match failed: %+v %q", c, tier)
	}
	if c, _ := Criterion(&model.RawCriterion{Name: "Timeliness"}, existing); c != nil {
		t.Errorf("unexpected criterion match: %+v", c)
	}
}

func TestSameFramework(t *testing.T) {
	a := &model.Framework{Name: "Chen et al. 2019", Year: intp(2019), Title: "KG Quality"}
	b := &model.Framework{Name: "Chen et al. (2019)", Year: intp(2019), Title: "kg quality"}

	same, tier := SameFramework(a, b)
	if !same {
		t.Fatal("expected duplicates to be judged the same")
	}
	if tier != TierNormalizedName {
		t.Errorf("expected tier %q, got %q", TierNormalizedName, tier)
	}
}
