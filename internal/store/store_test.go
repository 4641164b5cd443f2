package store

import (
	"testing"

	"github.com/kgquality/fwcat/internal/model"
)

func intp(v int) *int { return &v }

func TestFrameworkRoundTrip(t *testing.T) {
	s := OpenMemory(t)

	fw := &model.Framework{
		Name:        "Chen et al. 2019",
		Authors:     "Chen, Li",
		Year:        intp(2019),
		Title:       "KG Quality",
		Description: "A framework for assessing knowledge graph quality.",
	}
	if err := s.CreateFramework(fw); err != nil {
		t.Fatalf("create framework: %v", err)
	}
	if fw.ID == 0 {
		t.Fatal("create must assign an ID")
	}

	list, err := s.ListFrameworks()
	if err != nil {
		t.Fatalf("list frameworks: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 framework, got %d", len(list))
	}
	got := list[0]
	if got.Name != fw.Name || got.Authors != fw.Authors || got.Title != fw.Title {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Year == nil || *got.Year != 2019 {
		t.Errorf("year lost in round trip: %v", got.Year)
	}
}

func TestNilYearStaysNil(t *testing.T) {
	s := OpenMemory(t)

	fw := &model.Framework{Name: "Undated Framework"}
	if err := s.CreateFramework(fw); err != nil {
		t.Fatalf("create framework: %v", err)
	}

	list, err := s.ListFrameworks()
	if err != nil {
		t.Fatalf("list frameworks: %v", err)
	}
	if list[0].Year != nil {
		t.Errorf("expected nil year, got %d", *list[0].Year)
	}
}

func TestCriterionUniquenessConstraint(t *testing.T) {
	s := OpenMemory(t)

	fw := &model.Framework{Name: "Chen et al. 2019"}
	if err := s.CreateFramework(fw); err != nil {
		t.Fatalf("create framework: %v", err)
	}

	c1 := &model.Criterion{FrameworkID: fw.ID, Name: "Completeness"}
	if err := s.CreateCriterion(c1); err != nil {
		t.Fatalf("create criterion: %v", err)
	}

	// Same normalized name, different surface form.
	c2 := &model.Criterion{FrameworkID: fw.ID, Name: "  COMPLETENESS "}
	err := s.CreateCriterion(c2)
	if err == nil {
		t.Fatal("expected uniqueness violation for duplicate normalized name")
	}
	if !IsConstraintViolation(err) {
		t.Errorf("expected constraint violation, got: %v", err)
	}

	// The same name under a different framework is fine.
	other := &model.Framework{Name: "Wang 2020"}
	if err := s.CreateFramework(other); err != nil {
		t.Fatalf("create framework: %v", err)
	}
	c3 := &model.Criterion{FrameworkID: other.ID, Name: "Completeness"}
	if err := s.CreateCriterion(c3); err != nil {
		t.Errorf("same criterion name in another framework must be allowed: %v", err)
	}
}

func TestCascadeDelete(t *testing.T) {
	s := OpenMemory(t)

	fw := &model.Framework{Name: "Chen et al. 2019"}
	if err := s.CreateFramework(fw); err != nil {
		t.Fatalf("create framework: %v", err)
	}
	c := &model.Criterion{FrameworkID: fw.ID, Name: "Completeness"}
	if err := s.CreateCriterion(c); err != nil {
		t.Fatalf("create criterion: %v", err)
	}
	d := &model.Definition{CriterionID: c.ID, Text: "All required data is present."}
	if err := s.CreateDefinition(d); err != nil {
		t.Fatalf("create definition: %v", err)
	}

	if err := s.DeleteFramework(fw.ID); err != nil {
		t.Fatalf("delete framework: %v", err)
	}

	frameworks, criteria, definitions, err := s.Counts()
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if frameworks != 0 || criteria != 0 || definitions != 0 {
		t.Errorf("cascade delete left rows behind: %d/%d/%d", frameworks, criteria, definitions)
	}
}

func TestLoadSnapshotNesting(t *testing.T) {
	s := OpenMemory(t)

	fw := &model.Framework{Name: "Chen et al. 2019"}
	if err := s.CreateFramework(fw); err != nil {
		t.Fatalf("create framework: %v", err)
	}
	c := &model.Criterion{FrameworkID: fw.ID, Name: "Completeness", Position: 0}
	if err := s.CreateCriterion(c); err != nil {
		t.Fatalf("create criterion: %v", err)
	}
	d := &model.Definition{CriterionID: c.ID, Text: "All required data is present."}
	if err := s.CreateDefinition(d); err != nil {
		t.Fatalf("create definition: %v", err)
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if len(snap.Frameworks) != 1 {
		t.Fatalf("expected 1 framework in snapshot, got %d", len(snap.Frameworks))
	}
	sf := snap.Frameworks[0]
	if len(sf.Criteria) != 1 || sf.Criteria[0].Name != "Completeness" {
		t.Fatalf("criteria not nested: %+v", sf.Criteria)
	}
	defs := sf.Criteria[0].Definitions
	if len(defs) != 1 || defs[0].Text != "All required data is present." {
		t.Fatalf("definitions not nested: %+v", defs)
	}
}

func TestReparentDefinition(t *testing.T) {
	s := OpenMemory(t)

	fw := &model.Framework{Name: "Chen et al. 2019"}
	if err := s.CreateFramework(fw); err != nil {
		t.Fatalf("create framework: %v", err)
	}
	c1 := &model.Criterion{FrameworkID: fw.ID, Name: "Completeness"}
	c2 := &model.Criterion{FrameworkID: fw.ID, Name: "Accuracy"}
	for _, c := range []*model.Criterion{c1, c2} {
		if err := s.CreateCriterion(c); err != nil {
			t.Fatalf("create criterion: %v", err)
		}
	}
	d := &model.Definition{CriterionID: c1.ID, Text: "Some definition."}
	if err := s.CreateDefinition(d); err != nil {
		t.Fatalf("create definition: %v", err)
	}

	if err := s.ReparentDefinition(d.ID, c2.ID); err != nil {
		t.Fatalf("reparent definition: %v", err)
	}

	snap, err := s.LoadSnapshot()
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	for _, c := range snap.Frameworks[0].Criteria {
		switch c.Name {
		case "Completeness":
			if len(c.Definitions) != 0 {
				t.Error("definition still under old parent")
			}
		case "Accuracy":
			if len(c.Definitions) != 1 {
				t.Error("definition missing under new parent")
			}
		}
	}
}
