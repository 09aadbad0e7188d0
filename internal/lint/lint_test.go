package lint_test

import (
	"testing"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/lint"
	"github.com/bindery-dev/bindery/internal/refgraph"
	"github.com/bindery-dev/bindery/internal/schema"
	"github.com/bindery-dev/bindery/internal/testutil"
)

func lintContext(t *testing.T, tb *testutil.TestBundle) *lint.Context {
	t.Helper()
	b, _, err := bundle.Load(tb.Path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	set, _ := schema.Compile(tb.Path, b.Manifest.Schemas)
	return &lint.Context{Bundle: b, Schemas: set, Graph: refgraph.Build(b)}
}

func TestInlineRefsRule(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/feat-2.yaml",
		"id: FEAT-2\ntitle: Linked\ndescription: \"See [[FEAT-1]] and [[FEAT-404]].\"\n")

	ctx := lintContext(t, tb)
	diags := lint.Run(ctx, &lint.Config{}, lint.BuiltinRules())

	var inline []diag.Diagnostic
	for _, d := range diags {
		if d.Code == "inline-refs" {
			inline = append(inline, d)
		}
	}
	if len(inline) != 1 {
		t.Fatalf("expected 1 inline-refs finding, got %v", inline)
	}
	d := inline[0]
	if d.Severity != diag.SeverityWarning {
		t.Errorf("inline-refs defaults to warning, got %s", d.Severity)
	}
	if d.EntityID != "FEAT-2" || d.Path != "/description" {
		t.Errorf("unexpected attribution: %+v", d)
	}
}

func TestInlineRefsSkipsCodeBlocks(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/feat-2.yaml",
		"id: FEAT-2\ntitle: Code\ndescription: \"Use `[[NOT-A-REF]]` in templates.\"\n")

	ctx := lintContext(t, tb)
	diags := lint.Run(ctx, &lint.Config{}, lint.BuiltinRules())
	for _, d := range diags {
		if d.Code == "inline-refs" {
			t.Errorf("refs inside code spans should be ignored: %+v", d)
		}
	}
}

func TestOrphanEntityRule(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/feat-2.yaml", "id: FEAT-2\ntitle: Island\n")

	ctx := lintContext(t, tb)
	diags := lint.Run(ctx, &lint.Config{}, lint.BuiltinRules())

	var orphans []string
	for _, d := range diags {
		if d.Code == "orphan-entity" {
			orphans = append(orphans, d.EntityID)
		}
	}
	if len(orphans) != 1 || orphans[0] != "FEAT-2" {
		t.Errorf("expected FEAT-2 flagged as orphan, got %v", orphans)
	}
}

func TestRuleDisableAndSeverityOverride(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("features/feat-2.yaml", "id: FEAT-2\ntitle: Island\n")
	ctx := lintContext(t, tb)

	off := false
	cfg := &lint.Config{Rules: map[string]lint.RuleConfig{
		"orphan-entity": {Enabled: &off},
	}}
	for _, d := range lint.Run(ctx, cfg, lint.BuiltinRules()) {
		if d.Code == "orphan-entity" {
			t.Errorf("disabled rule still ran: %+v", d)
		}
	}

	cfg = &lint.Config{Rules: map[string]lint.RuleConfig{
		"orphan-entity": {Severity: "error"},
	}}
	found := false
	for _, d := range lint.Run(ctx, cfg, lint.BuiltinRules()) {
		if d.Code == "orphan-entity" {
			found = true
			if d.Severity != diag.SeverityError {
				t.Errorf("severity override not applied: %s", d.Severity)
			}
		}
	}
	if !found {
		t.Error("expected orphan-entity finding")
	}
}

func TestLoadConfig(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("lint.yaml", "rules:\n  orphan-entity:\n    enabled: false\n")

	cfg, err := lint.LoadConfig(tb.Path, "lint.yaml")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	rc, ok := cfg.Rules["orphan-entity"]
	if !ok || rc.Enabled == nil || *rc.Enabled {
		t.Errorf("unexpected config: %+v", cfg)
	}

	// No lint config declared: empty config, no error.
	cfg, err = lint.LoadConfig(tb.Path, "")
	if err != nil || cfg == nil {
		t.Errorf("empty relPath should yield empty config, got %v, %v", cfg, err)
	}

	if _, err := lint.LoadConfig(tb.Path, "missing.yaml"); err == nil {
		t.Error("expected error for missing declared config")
	}
}
