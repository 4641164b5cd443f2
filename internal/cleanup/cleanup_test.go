package cleanup

import (
	"context"
	"testing"

	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/store"
)

func intp(v int) *int { return &v }

// seedFramework inserts a framework with the given criteria, each carrying
// the listed definition texts.
func seedFramework(t *testing.T, st *store.Store, fw *model.Framework, criteria map[string][]string) *model.Framework {
	t.Helper()
	if err := st.CreateFramework(fw); err != nil {
		t.Fatal(err)
	}
	for name, defs := range criteria {
		c := &model.Criterion{FrameworkID: fw.ID, Name: name}
		if err := st.CreateCriterion(c); err != nil {
			t.Fatal(err)
		}
		for _, text := range defs {
			d := &model.Definition{CriterionID: c.ID, Text: text}
			if err := st.CreateDefinition(d); err != nil {
				t.Fatal(err)
			}
		}
	}
	return fw
}

func TestCleanupMergesDuplicateFrameworks(t *testing.T) {
	st := store.OpenMemory(t)

	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. 2016", Year: intp(2016)},
		map[string][]string{"Completeness": {"All required information is present."}})
	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. (2016)", Year: intp(2016)},
		map[string][]string{"Accuracy": {"Data correctly represents the world."}})
	seedFramework(t, st, &model.Framework{Name: "zaveri et al. 2016", Year: intp(2016)},
		map[string][]string{"Timeliness": {"How current the data is."}})

	report, err := New(st).Run(context.Background(), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.FrameworksMerged != 2 {
		t.Errorf("frameworks merged = %d, want 2", report.FrameworksMerged)
	}

	snap, err := st.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Frameworks) != 1 {
		t.Fatalf("got %d frameworks, want 1", len(snap.Frameworks))
	}
	fw := snap.Frameworks[0]
	if len(fw.Criteria) != 3 {
		t.Errorf("got %d criteria, want 3 redistributed", len(fw.Criteria))
	}
	for _, c := range fw.Criteria {
		if len(c.Definitions) != 1 {
			t.Errorf("criterion %q has %d definitions, want 1", c.Name, len(c.Definitions))
		}
	}
}

func TestCleanupPicksMostCompleteSurvivor(t *testing.T) {
	st := store.OpenMemory(t)

	sparse := seedFramework(t, st, &model.Framework{Name: "Chen 2019", Year: intp(2019)}, nil)
	rich := seedFramework(t, st, &model.Framework{
		Name:        "Chen (2019)",
		Year:        intp(2019),
		Authors:     "Chen",
		Title:       "A Quality Model for Knowledge Graphs",
		Description: "Evaluates knowledge graph quality across dimensions.",
	}, nil)

	if _, err := New(st).Run(context.Background(), false); err != nil {
		t.Fatal(err)
	}

	frameworks, err := st.ListFrameworks()
	if err != nil {
		t.Fatal(err)
	}
	if len(frameworks) != 1 {
		t.Fatalf("got %d frameworks, want 1", len(frameworks))
	}
	if frameworks[0].ID != rich.ID {
		t.Errorf("survivor ID = %d, want the more complete %d (not %d)",
			frameworks[0].ID, rich.ID, sparse.ID)
	}
	// The survivor keeps its fields; nothing from the sparse record can
	// overwrite them.
	if frameworks[0].Description == "" {
		t.Error("survivor lost its description")
	}
}

func TestCleanupMergesMatchingCriteria(t *testing.T) {
	st := store.OpenMemory(t)

	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. 2016", Year: intp(2016)},
		map[string][]string{"Completeness": {"All required information is present."}})
	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. (2016)", Year: intp(2016)},
		map[string][]string{"completeness": {"All required information is present, for the task at hand."}})

	report, err := New(st).Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if report.CriteriaMerged != 1 {
		t.Errorf("criteria merged = %d, want 1", report.CriteriaMerged)
	}

	snap, err := st.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	fw := snap.Frameworks[0]
	if len(fw.Criteria) != 1 {
		t.Fatalf("got %d criteria, want 1", len(fw.Criteria))
	}
	if len(fw.Criteria[0].Definitions) != 2 {
		t.Errorf("got %d definitions, want both distinct texts kept", len(fw.Criteria[0].Definitions))
	}
}

func TestCleanupCollapsesNearDuplicateDefinitions(t *testing.T) {
	st := store.OpenMemory(t)

	longText := "All required information is present in the graph."
	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. 2016", Year: intp(2016)},
		map[string][]string{"Completeness": {
			"All required information is present in the graph",
			longText,
			"An unrelated definition about population completeness of entities.",
		}})

	report, err := New(st).Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if report.DefinitionsRemoved != 1 {
		t.Errorf("definitions removed = %d, want 1", report.DefinitionsRemoved)
	}

	snap, err := st.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	defs := snap.Frameworks[0].Criteria[0].Definitions
	if len(defs) != 2 {
		t.Fatalf("got %d definitions, want 2", len(defs))
	}
}

func TestCleanupDryRunLeavesStoreUntouched(t *testing.T) {
	st := store.OpenMemory(t)

	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. 2016", Year: intp(2016)},
		map[string][]string{"Completeness": {"All required information is present."}})
	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. (2016)", Year: intp(2016)},
		map[string][]string{"Accuracy": {"Data correctly represents the world."}})

	dry, err := New(st).Run(context.Background(), true)
	if err != nil {
		t.Fatal(err)
	}
	if !dry.DryRun {
		t.Error("report not flagged as dry run")
	}
	if dry.FrameworksMerged != 1 {
		t.Errorf("dry run frameworks merged = %d, want 1", dry.FrameworksMerged)
	}

	frameworks, _, _, err := st.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if frameworks != 2 {
		t.Errorf("dry run modified the store: %d frameworks, want 2", frameworks)
	}

	commit, err := New(st).Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if commit.FrameworksMerged != dry.FrameworksMerged ||
		commit.CriteriaMerged != dry.CriteriaMerged ||
		commit.DefinitionsRemoved != dry.DefinitionsRemoved {
		t.Errorf("commit counts %+v differ from dry run counts %+v", commit, dry)
	}
}

func TestCleanupNoDuplicatesIsNoop(t *testing.T) {
	st := store.OpenMemory(t)

	seedFramework(t, st, &model.Framework{Name: "Zaveri et al. 2016", Year: intp(2016)},
		map[string][]string{"Completeness": {"All required information is present."}})
	seedFramework(t, st, &model.Framework{Name: "Chen 2019", Year: intp(2019)},
		map[string][]string{"Timeliness": {"How current the data is."}})

	report, err := New(st).Run(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if report.FrameworksMerged != 0 || report.CriteriaMerged != 0 || report.DefinitionsRemoved != 0 {
		t.Errorf("noop cleanup reported %+v", report)
	}

	frameworks, criteria, definitions, err := st.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if frameworks != 2 || criteria != 2 || definitions != 2 {
		t.Errorf("store counts = %d/%d/%d, want 2/2/2", frameworks, criteria, definitions)
	}
}
