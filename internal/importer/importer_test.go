package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/kgquality/fwcat/internal/model"
	"github.com/kgquality/fwcat/internal/parse"
	"github.com/kgquality/fwcat/internal/store"
)

// writeGroupedDocx builds a DOCX carrying one grouped framework/criterion
// table from the given rows.
func writeGroupedDocx(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}

	doc := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:tbl>`
	for _, row := range rows {
		doc += `<w:tr>`
		for _, cell := range row {
			var esc bytes.Buffer
			if err := xml.EscapeText(&esc, []byte(cell)); err != nil {
				t.Fatal(err)
			}
			doc += `<w:tc><w:p><w:r><w:t>` + esc.String() + `</w:t></w:r></w:p></w:tc>`
		}
		doc += `</w:tr>`
	}
	doc += `</w:tbl></w:body></w:document>`

	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func newImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	st := store.OpenMemory(t)
	return New(st, parse.New(model.DefaultConfig().Parse)), st
}

var groupedRows = [][]string{
	{"Framework", "Criterion", "Definition", "Category"},
	{"Zaveri et al. 2016", "Completeness", "Degree to which all required information is present.", "Intrinsic"},
	{"", "Accuracy", "Degree to which data correctly represents the real world.", "Intrinsic"},
	{"Chen 2019", "Timeliness", "How current the data is with respect to the world.", ""},
}

func TestImportIntoEmptyStore(t *testing.T) {
	imp, st := newImporter(t)
	path := writeGroupedDocx(t, groupedRows)

	report, err := imp.ImportDocument(context.Background(), path, false)
	if err != nil {
		t.Fatalf("ImportDocument: %v", err)
	}

	if report.FrameworksCreated != 2 || report.FrameworksUpdated != 0 {
		t.Errorf("frameworks created/updated = %d/%d, want 2/0",
			report.FrameworksCreated, report.FrameworksUpdated)
	}
	if report.CriteriaCreated != 3 {
		t.Errorf("criteria created = %d, want 3", report.CriteriaCreated)
	}
	if report.DefinitionsCreated != 3 {
		t.Errorf("definitions created = %d, want 3", report.DefinitionsCreated)
	}

	frameworks, criteria, definitions, err := st.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if frameworks != 2 || criteria != 3 || definitions != 3 {
		t.Errorf("store counts = %d/%d/%d, want 2/3/3", frameworks, criteria, definitions)
	}
}

func TestImportSameDocumentTwice(t *testing.T) {
	imp, st := newImporter(t)
	path := writeGroupedDocx(t, groupedRows)
	ctx := context.Background()

	if _, err := imp.ImportDocument(ctx, path, false); err != nil {
		t.Fatal(err)
	}
	report, err := imp.ImportDocument(ctx, path, false)
	if err != nil {
		t.Fatal(err)
	}

	if report.FrameworksCreated != 0 || report.CriteriaCreated != 0 || report.DefinitionsCreated != 0 {
		t.Errorf("second import created %d/%d/%d, want 0/0/0",
			report.FrameworksCreated, report.CriteriaCreated, report.DefinitionsCreated)
	}

	frameworks, criteria, definitions, err := st.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if frameworks != 2 || criteria != 3 || definitions != 3 {
		t.Errorf("store counts after reimport = %d/%d/%d, want 2/3/3", frameworks, criteria, definitions)
	}
}

func TestImportMergesIntoExistingFramework(t *testing.T) {
	imp, st := newImporter(t)
	ctx := context.Background()

	sparse := writeGroupedDocx(t, [][]string{
		{"Framework", "Criterion", "Definition"},
		{"Zaveri et al. 2016", "Completeness", ""},
	})
	if _, err := imp.ImportDocument(ctx, sparse, false); err != nil {
		t.Fatal(err)
	}

	richer := writeGroupedDocx(t, [][]string{
		{"Framework", "Criterion", "Definition", "Category"},
		{"Zaveri et al. 2016", "Completeness", "All required information is present.", "Intrinsic"},
	})
	report, err := imp.ImportDocument(ctx, richer, false)
	if err != nil {
		t.Fatal(err)
	}

	if report.FrameworksCreated != 0 {
		t.Errorf("frameworks created = %d, want 0", report.FrameworksCreated)
	}
	if report.CriteriaUpdated != 1 {
		t.Errorf("criteria updated = %d, want 1", report.CriteriaUpdated)
	}
	if report.DefinitionsCreated != 1 {
		t.Errorf("definitions created = %d, want 1", report.DefinitionsCreated)
	}

	snap, err := st.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Frameworks) != 1 {
		t.Fatalf("got %d frameworks, want 1", len(snap.Frameworks))
	}
	c := snap.Frameworks[0].Criteria[0]
	if c.Description != "All required information is present." {
		t.Errorf("description = %q", c.Description)
	}
	if c.Category != "Intrinsic" {
		t.Errorf("category = %q", c.Category)
	}
}

func TestImportSkipsNearDuplicateDefinitions(t *testing.T) {
	imp, st := newImporter(t)
	ctx := context.Background()

	first := writeGroupedDocx(t, [][]string{
		{"Framework", "Criterion", "Definition"},
		{"Zaveri et al. 2016", "Completeness", "All required information is present."},
	})
	if _, err := imp.ImportDocument(ctx, first, false); err != nil {
		t.Fatal(err)
	}

	// Same text modulo quotes and trailing punctuation: a near-duplicate.
	second := writeGroupedDocx(t, [][]string{
		{"Framework", "Criterion", "Definition"},
		{"Zaveri et al. 2016", "Completeness", "“All required information is present”"},
	})
	report, err := imp.ImportDocument(ctx, second, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.DefinitionsCreated != 0 {
		t.Errorf("definitions created = %d, want 0", report.DefinitionsCreated)
	}

	_, _, definitions, err := st.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if definitions != 1 {
		t.Errorf("store definitions = %d, want 1", definitions)
	}
}

func TestDryRunMatchesCommitCounts(t *testing.T) {
	path := writeGroupedDocx(t, groupedRows)
	ctx := context.Background()

	impDry, stDry := newImporter(t)
	dry, err := impDry.ImportDocument(ctx, path, true)
	if err != nil {
		t.Fatal(err)
	}
	if !dry.DryRun {
		t.Error("dry run report not flagged as dry run")
	}

	impCommit, _ := newImporter(t)
	commit, err := impCommit.ImportDocument(ctx, path, false)
	if err != nil {
		t.Fatal(err)
	}

	if dry.FrameworksCreated != commit.FrameworksCreated ||
		dry.FrameworksUpdated != commit.FrameworksUpdated ||
		dry.CriteriaCreated != commit.CriteriaCreated ||
		dry.CriteriaUpdated != commit.CriteriaUpdated ||
		dry.DefinitionsCreated != commit.DefinitionsCreated {
		t.Errorf("dry run counts %+v differ from commit counts %+v", dry, commit)
	}

	frameworks, criteria, definitions, err := stDry.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if frameworks != 0 || criteria != 0 || definitions != 0 {
		t.Errorf("dry run persisted %d/%d/%d records, want none", frameworks, criteria, definitions)
	}
}

func TestImportMergesRepeatedCriterionInNewFramework(t *testing.T) {
	// One section lists the same criterion twice under names that normalize
	// to one; the occurrences must merge into a single staged criterion
	// instead of colliding on the store's uniqueness constraint.
	rows := [][]string{
		{"Framework", "Criterion", "Definition", "Category"},
		{"Chen 2019", "Accuracy", "Data is correct.", ""},
		{"", "accuracy", "Data correctly reflects the real world and is free of errors.", "Intrinsic"},
	}

	impDry, _ := newImporter(t)
	dry, err := impDry.ImportDocument(context.Background(), writeGroupedDocx(t, rows), true)
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}

	imp, st := newImporter(t)
	commit, err := imp.ImportDocument(context.Background(), writeGroupedDocx(t, rows), false)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	if commit.CriteriaCreated != 1 {
		t.Errorf("criteria created = %d, want 1", commit.CriteriaCreated)
	}
	if dry.CriteriaCreated != commit.CriteriaCreated ||
		dry.CriteriaUpdated != commit.CriteriaUpdated ||
		dry.DefinitionsCreated != commit.DefinitionsCreated {
		t.Errorf("dry run counts %+v differ from commit counts %+v", dry, commit)
	}

	snap, err := st.LoadSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Frameworks) != 1 || len(snap.Frameworks[0].Criteria) != 1 {
		t.Fatalf("got %d frameworks / %d criteria, want 1/1",
			len(snap.Frameworks), len(snap.Frameworks[0].Criteria))
	}
	c := snap.Frameworks[0].Criteria[0]
	if c.Category != "Intrinsic" {
		t.Errorf("category = %q, want merged value from the second occurrence", c.Category)
	}
	if len(c.Definitions) != 2 {
		t.Errorf("got %d definitions, want both distinct texts kept", len(c.Definitions))
	}
}

func TestImportDocumentsAcrossFiles(t *testing.T) {
	imp, st := newImporter(t)

	// The second document revisits a framework from the first; parsing runs
	// in parallel but reconciliation follows argument order, so the overlap
	// merges instead of duplicating.
	first := writeGroupedDocx(t, groupedRows)
	second := writeGroupedDocx(t, [][]string{
		{"Framework", "Criterion", "Definition"},
		{"Zaveri et al. 2016", "Consistency", "Data is free of contradictions."},
		{"Wang & Strong 1996", "Believability", "Extent to which data is regarded as true."},
	})

	reports, err := imp.ImportDocuments(context.Background(), []string{first, second}, 2, false)
	if err != nil {
		t.Fatalf("ImportDocuments: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}

	if reports[0].FrameworksCreated != 2 {
		t.Errorf("first document created %d frameworks, want 2", reports[0].FrameworksCreated)
	}
	if reports[1].FrameworksCreated != 1 {
		t.Errorf("second document created %d frameworks, want 1", reports[1].FrameworksCreated)
	}
	if reports[1].CriteriaCreated != 2 {
		t.Errorf("second document created %d criteria, want 2", reports[1].CriteriaCreated)
	}

	frameworks, criteria, definitions, err := st.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if frameworks != 3 || criteria != 5 || definitions != 5 {
		t.Errorf("store counts = %d/%d/%d, want 3/5/5", frameworks, criteria, definitions)
	}
}

func TestImportDocumentsReportsParseFailure(t *testing.T) {
	imp, _ := newImporter(t)
	good := writeGroupedDocx(t, groupedRows)
	missing := filepath.Join(t.TempDir(), "absent.docx")

	if _, err := imp.ImportDocuments(context.Background(), []string{good, missing}, 2, false); err == nil {
		t.Fatal("expected error for unreadable document")
	}
}

func TestImportStagedFrameworksVisibleWithinRun(t *testing.T) {
	imp, st := newImporter(t)

	// The same framework name appears twice in one document; the second
	// occurrence must merge into the staged first one.
	path := writeGroupedDocx(t, [][]string{
		{"Framework", "Criterion", "Definition"},
		{"Zaveri et al. 2016", "Completeness", "All required information is present."},
		{"Zaveri et al. (2016)", "Accuracy", "Data correctly represents the world."},
	})

	report, err := imp.ImportDocument(context.Background(), path, false)
	if err != nil {
		t.Fatal(err)
	}
	if report.FrameworksCreated != 1 {
		t.Errorf("frameworks created = %d, want 1", report.FrameworksCreated)
	}

	frameworks, criteria, _, err := st.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if frameworks != 1 || criteria != 2 {
		t.Errorf("store counts = %d frameworks / %d criteria, want 1/2", frameworks, criteria)
	}
}
