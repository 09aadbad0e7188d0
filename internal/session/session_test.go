package session_test

import (
	"errors"
	"testing"

	"github.com/bindery-dev/bindery/internal/session"
	"github.com/bindery-dev/bindery/internal/testutil"
	"github.com/bindery-dev/bindery/internal/txn"
)

func boolPtr(v bool) *bool { return &v }

func TestOpenAndValidate(t *testing.T) {
	tb := testutil.NewSampleBundle(t)

	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	summary, diags := sess.Validate()
	if !summary.IsValid {
		t.Errorf("sample bundle should be valid, got %v", diags)
	}
	if summary.TotalErrors != 0 {
		t.Errorf("totalErrors = %d", summary.TotalErrors)
	}
}

func TestValidateMergesAllPhases(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/broken.yaml", "id: [bad\n")                      // gate
	tb.WriteFile("features/feat-2.yaml", "id: FEAT-2\ntitle: 42\n")         // schema
	tb.WriteFile("requirements/req-2.yaml",
		"id: REQ-2\ntitle: Ghost\nrealizesFeatureIds:\n  - FEAT-404\n") // reference

	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	summary, diags := sess.Validate()
	if summary.IsValid {
		t.Fatal("bundle with errors must be invalid")
	}

	sources := make(map[string]bool)
	for _, d := range diags {
		sources[string(d.Source)] = true
	}
	for _, want := range []string{"gate", "schema", "lint"} {
		if !sources[want] {
			t.Errorf("expected a %s diagnostic, got %v", want, diags)
		}
	}
}

func TestGetEntity(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	entity, err := sess.GetEntity("Feature", "FEAT-1")
	if err != nil {
		t.Fatalf("GetEntity failed: %v", err)
	}
	if entity.Data["title"] != "Login" {
		t.Errorf("title = %v", entity.Data["title"])
	}

	_, err = sess.GetEntity("Feature", "FEAT-404")
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListEntitiesPaging(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/feat-2.yaml", "id: FEAT-2\ntitle: B\n")
	tb.WriteFile("features/feat-3.yaml", "id: FEAT-3\ntitle: C\n")

	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ids, total, err := sess.ListEntities("Feature", 0, 0)
	if err != nil {
		t.Fatalf("ListEntities failed: %v", err)
	}
	if total != 3 || len(ids) != 3 {
		t.Errorf("total = %d, ids = %v", total, ids)
	}
	if ids[0] != "FEAT-1" {
		t.Errorf("ids should be sorted, got %v", ids)
	}

	ids, total, err = sess.ListEntities("Feature", 1, 1)
	if err != nil {
		t.Fatalf("ListEntities paged failed: %v", err)
	}
	if total != 3 || len(ids) != 1 || ids[0] != "FEAT-2" {
		t.Errorf("page = %v (total %d)", ids, total)
	}

	// Offset past the end yields an empty page, not an error.
	ids, _, err = sess.ListEntities("Feature", 99, 10)
	if err != nil || len(ids) != 0 {
		t.Errorf("overshoot page = %v, err = %v", ids, err)
	}

	if _, _, err := sess.ListEntities("Gadget", 0, 0); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("unknown type should be ErrNotFound, got %v", err)
	}
}

func TestApplyReloadsCanonicalState(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	resp, err := sess.Apply(&txn.Request{
		DryRun: boolPtr(false),
		Changes: []txn.Change{{
			Operation:  txn.OpCreate,
			EntityType: "Feature",
			EntityID:   "FEAT-2",
			Data:       map[string]interface{}{"title": "Export"},
		}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if resp.Applied != 1 {
		t.Fatalf("applied = %d: %+v", resp.Applied, resp.Results)
	}

	// The canonical snapshot reflects the write without a manual reload.
	if _, err := sess.GetEntity("Feature", "FEAT-2"); err != nil {
		t.Errorf("created entity missing from canonical state: %v", err)
	}
}

func TestDryRunLeavesCanonicalStateAlone(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	_, err = sess.Apply(&txn.Request{
		Changes: []txn.Change{{
			Operation:  txn.OpCreate,
			EntityType: "Feature",
			EntityID:   "FEAT-2",
			Data:       map[string]interface{}{"title": "Export"},
		}},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if _, err := sess.GetEntity("Feature", "FEAT-2"); !errors.Is(err, session.ErrNotFound) {
		t.Error("dry run must not change canonical state")
	}
}

func TestRejectedApplyLeavesCanonicalStateAlone(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	resp, err := sess.Apply(&txn.Request{
		DryRun: boolPtr(false),
		Changes: []txn.Change{
			{
				Operation:  txn.OpCreate,
				EntityType: "Feature",
				EntityID:   "FEAT-2",
				Data:       map[string]interface{}{"title": "Good"},
			},
			{
				Operation:  txn.OpDelete,
				EntityType: "Feature",
				EntityID:   "FEAT-1", // referenced; restrict blocks
			},
		},
	})
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !resp.Rejected() {
		t.Fatal("expected rejection")
	}

	if _, err := sess.GetEntity("Feature", "FEAT-2"); !errors.Is(err, session.ErrNotFound) {
		t.Error("rejected batch must not change canonical state")
	}
	if _, err := sess.GetEntity("Feature", "FEAT-1"); err != nil {
		t.Errorf("FEAT-1 should survive a blocked delete: %v", err)
	}
}

func TestReloadPicksUpExternalEdits(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	sess, err := session.Open(tb.Path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tb.WriteFile("features/feat-2.yaml", "id: FEAT-2\ntitle: External\n")
	if _, err := sess.GetEntity("Feature", "FEAT-2"); err == nil {
		t.Fatal("external edit should not be visible before reload")
	}

	if err := sess.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if _, err := sess.GetEntity("Feature", "FEAT-2"); err != nil {
		t.Errorf("external edit missing after reload: %v", err)
	}
}
