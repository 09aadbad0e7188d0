package diag

import (
	"strings"
	"testing"
)

func TestSummarize(t *testing.T) {
	diags := []Diagnostic{
		Errorf(SourceGate, CodeParseError, "bad yaml"),
		Warnf(SourceLint, "orphan-entity", "unconnected"),
		Errorf(SourceSchema, "required", "missing title"),
	}

	s := Summarize(diags)
	if s.TotalErrors != 2 || s.TotalWarnings != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.IsValid {
		t.Error("errors must invalidate the bundle")
	}

	if s := Summarize([]Diagnostic{Warnf(SourceLint, "x", "y")}); !s.IsValid {
		t.Error("warnings alone must not invalidate the bundle")
	}
	if s := Summarize(nil); !s.IsValid {
		t.Error("empty diagnostics are valid")
	}
}

func TestErrorsFilter(t *testing.T) {
	diags := []Diagnostic{
		Errorf(SourceGate, CodeParseError, "a"),
		Warnf(SourceLint, "rule", "b"),
	}
	errs := Errors(diags)
	if len(errs) != 1 || errs[0].Severity != SeverityError {
		t.Errorf("Errors = %+v", errs)
	}
}

func TestString(t *testing.T) {
	d := Errorf(SourceSchema, "required", "required field is missing")
	d.FilePath = "features/feat-1.yaml"
	d.Path = "/title"

	s := d.String()
	for _, want := range []string{"error", "features/feat-1.yaml/title", "required field is missing"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}

	bare := Warnf(SourceLint, "rule", "msg")
	if got := bare.String(); got != "warning: msg" {
		t.Errorf("String() = %q", got)
	}
}
