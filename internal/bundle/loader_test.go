package bundle_test

import (
	"strings"
	"testing"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/testutil"
)

func TestLoadSampleBundle(t *testing.T) {
	tb := testutil.NewSampleBundle(t)

	b, diags, err := bundle.Load(tb.Path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if b.Store.Len() != 2 {
		t.Errorf("expected 2 entities, got %d", b.Store.Len())
	}

	feat, ok := b.Store.Get("Feature", "FEAT-1")
	if !ok {
		t.Fatal("FEAT-1 not loaded")
	}
	if feat.Data["title"] != "Login" {
		t.Errorf("unexpected title: %v", feat.Data["title"])
	}
	if !strings.HasSuffix(feat.FilePath, "features/feat-1.yaml") {
		t.Errorf("unexpected file path: %s", feat.FilePath)
	}
}

func TestLoadMissingManifest(t *testing.T) {
	tb := testutil.NewTestBundle(t).Build()

	if _, _, err := bundle.Load(tb.Path); err == nil {
		t.Fatal("expected hard error for missing manifest")
	}
}

func TestLoadContinuesPastBadEntities(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/broken.yaml", "id: [unclosed\n")
	tb.WriteFile("features/anon.yaml", "title: No id here\n")

	b, diags, err := bundle.Load(tb.Path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// The two good entities still load.
	if b.Store.Len() != 2 {
		t.Errorf("expected 2 entities, got %d", b.Store.Len())
	}

	codes := make(map[string]int)
	for _, d := range diags {
		codes[d.Code]++
		if d.Severity != diag.SeverityError {
			t.Errorf("gate diagnostics should be errors, got %s", d.Severity)
		}
	}
	if codes[diag.CodeParseError] != 1 {
		t.Errorf("expected 1 PARSE_ERROR, got %d", codes[diag.CodeParseError])
	}
	if codes[diag.CodeMissingID] != 1 {
		t.Errorf("expected 1 MISSING_ID, got %d", codes[diag.CodeMissingID])
	}
}

func TestLoadDuplicateIDAcrossTypes(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	// Same id as FEAT-1 but in the requirements directory. Ids are
	// bundle-global, so the second occurrence is rejected.
	tb.WriteFile("requirements/dupe.yaml", "id: FEAT-1\ntitle: Impostor\n")

	b, diags, err := bundle.Load(tb.Path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var dupes []diag.Diagnostic
	for _, d := range diags {
		if d.Code == diag.CodeDuplicateID {
			dupes = append(dupes, d)
		}
	}
	if len(dupes) != 1 {
		t.Fatalf("expected 1 DUPLICATE_ID diagnostic, got %d", len(dupes))
	}
	if dupes[0].EntityID != "FEAT-1" {
		t.Errorf("unexpected entity id: %s", dupes[0].EntityID)
	}

	// First occurrence wins: the Feature stays, the Requirement is dropped.
	if _, ok := b.Store.Get("Feature", "FEAT-1"); !ok {
		t.Error("first occurrence should remain in the store")
	}
	if _, ok := b.Store.Get("Requirement", "FEAT-1"); ok {
		t.Error("duplicate should not be in the store")
	}
}

func TestLoadIgnoresForeignFiles(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/notes.md", "# not an entity\n")
	tb.WriteFile("features/subdir/nested.yaml", "id: NESTED\n")

	b, diags, err := bundle.Load(tb.Path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
	if b.Store.Len() != 2 {
		t.Errorf("expected only the 2 sample entities, got %d", b.Store.Len())
	}
}

func TestLoadMissingTypeDirectory(t *testing.T) {
	tb := testutil.NewTestBundle(t).
		WithManifest(testutil.SampleManifest).
		WithFile("bundle-type.yaml", testutil.SampleBundleType).
		WithFile("schemas/feature.yaml", testutil.SampleFeatureSchema).
		WithFile("schemas/requirement.yaml", testutil.SampleRequirementSchema).
		Build()

	b, diags, err := bundle.Load(tb.Path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("a type with no directory yet should not produce diagnostics, got %v", diags)
	}
	if b.Store.Len() != 0 {
		t.Errorf("expected empty bundle, got %d entities", b.Store.Len())
	}
}

func TestRelPath(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	b, _, err := bundle.Load(tb.Path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	feat, _ := b.Store.Get("Feature", "FEAT-1")
	if got := b.RelPath(feat.FilePath); got != "features/feat-1.yaml" {
		t.Errorf("RelPath = %q, want features/feat-1.yaml", got)
	}
}
