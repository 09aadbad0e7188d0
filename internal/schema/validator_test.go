package schema_test

import (
	"testing"

	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/schema"
	"github.com/bindery-dev/bindery/internal/testutil"
)

func compileSample(t *testing.T) *schema.Set {
	t.Helper()
	tb := testutil.NewSampleBundle(t)
	set, diags := schema.Compile(tb.Path, map[string]string{
		"Feature":     "schemas/feature.yaml",
		"Requirement": "schemas/requirement.yaml",
	})
	if len(diags) != 0 {
		t.Fatalf("unexpected compile diagnostics: %v", diags)
	}
	return set
}

func TestValidateClean(t *testing.T) {
	set := compileSample(t)
	diags := set.Validate("Requirement", map[string]interface{}{
		"id":       "REQ-1",
		"title":    "Password login",
		"priority": 3,
		"realizesFeatureIds": []interface{}{
			"FEAT-1",
		},
		"metadata": map[string]interface{}{"owner": "alice"},
	})
	if len(diags) != 0 {
		t.Errorf("expected no diagnostics, got %v", diags)
	}
}

func TestValidateKeywords(t *testing.T) {
	set := compileSample(t)

	tests := []struct {
		name string
		data map[string]interface{}
		path string
		code string
	}{
		{
			name: "missing required",
			data: map[string]interface{}{"id": "REQ-9"},
			path: "/title",
			code: "required",
		},
		{
			name: "wrong type",
			data: map[string]interface{}{"id": "REQ-9", "title": 42},
			path: "/title",
			code: "type",
		},
		{
			name: "below minimum",
			data: map[string]interface{}{"id": "REQ-9", "title": "x", "priority": 0},
			path: "/priority",
			code: "minimum",
		},
		{
			name: "above maximum",
			data: map[string]interface{}{"id": "REQ-9", "title": "x", "priority": 9},
			path: "/priority",
			code: "maximum",
		},
		{
			name: "undeclared field",
			data: map[string]interface{}{"id": "REQ-9", "title": "x", "color": "red"},
			path: "/color",
			code: "additionalProperties",
		},
		{
			name: "nested object field",
			data: map[string]interface{}{
				"id": "REQ-9", "title": "x",
				"metadata": map[string]interface{}{"owner": 7},
			},
			path: "/metadata/owner",
			code: "type",
		},
		{
			name: "empty ref",
			data: map[string]interface{}{
				"id": "REQ-9", "title": "x",
				"realizesFeatureIds": []interface{}{""},
			},
			path: "/realizesFeatureIds",
			code: "format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := set.Validate("Requirement", tt.data)
			if len(diags) != 1 {
				t.Fatalf("expected 1 diagnostic, got %v", diags)
			}
			d := diags[0]
			if d.Path != tt.path {
				t.Errorf("path = %q, want %q", d.Path, tt.path)
			}
			if d.Code != tt.code {
				t.Errorf("code = %q, want %q", d.Code, tt.code)
			}
			if d.Source != diag.SourceSchema {
				t.Errorf("source = %q, want schema", d.Source)
			}
		})
	}
}

func TestValidateEnum(t *testing.T) {
	set := compileSample(t)

	diags := set.Validate("Feature", map[string]interface{}{
		"id": "FEAT-9", "title": "x", "status": "shipped",
	})
	if len(diags) != 1 || diags[0].Code != "enum" {
		t.Fatalf("expected single enum diagnostic, got %v", diags)
	}

	diags = set.Validate("Feature", map[string]interface{}{
		"id": "FEAT-9", "title": "x", "status": "approved",
	})
	if len(diags) != 0 {
		t.Errorf("valid enum value flagged: %v", diags)
	}
}

func TestValidateNullIsNotAbsent(t *testing.T) {
	set := compileSample(t)

	// An explicit null on a required field still counts as missing.
	diags := set.Validate("Feature", map[string]interface{}{
		"id": "FEAT-9", "title": nil,
	})
	found := false
	for _, d := range diags {
		if d.Code == "required" && d.Path == "/title" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected required diagnostic for null title, got %v", diags)
	}

	// A null optional field is fine.
	diags = set.Validate("Feature", map[string]interface{}{
		"id": "FEAT-9", "title": "x", "status": nil,
	})
	if len(diags) != 0 {
		t.Errorf("null optional field flagged: %v", diags)
	}
}

func TestValidateUnknownType(t *testing.T) {
	set := compileSample(t)
	diags := set.Validate("Gadget", map[string]interface{}{"id": "G-1"})
	if len(diags) != 1 || diags[0].Code != diag.CodeUnknownType {
		t.Fatalf("expected UNKNOWN_TYPE, got %v", diags)
	}
}

func TestHasFieldPath(t *testing.T) {
	set := compileSample(t)

	tests := []struct {
		path []string
		want bool
	}{
		{[]string{"title"}, true},
		{[]string{"metadata", "owner"}, true},
		{[]string{"metadata", "missing"}, false},
		{[]string{"color"}, false},
	}
	for _, tt := range tests {
		if got := set.HasFieldPath("Requirement", tt.path); got != tt.want {
			t.Errorf("HasFieldPath(%v) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCompileBadSchemaFile(t *testing.T) {
	tb := testutil.NewSampleBundle(t)
	tb.WriteFile("schemas/feature.yaml", "fields: [not a map\n")

	set, diags := schema.Compile(tb.Path, map[string]string{
		"Feature":     "schemas/feature.yaml",
		"Requirement": "schemas/requirement.yaml",
	})
	if len(diags) != 1 || diags[0].Code != diag.CodeSchemaInvalid {
		t.Fatalf("expected SCHEMA_INVALID, got %v", diags)
	}

	// The other type still compiles.
	if _, ok := set.Schema("Requirement"); !ok {
		t.Error("Requirement schema should survive a broken Feature schema")
	}
	if _, ok := set.Schema("Feature"); ok {
		t.Error("broken Feature schema should not be compiled")
	}
}

func TestDateAndDatetimeFormats(t *testing.T) {
	tb := testutil.NewTestBundle(t).
		WithFile("schemas/event.yaml", `type: Event
fields:
  id:
    type: string
    required: true
  on:
    type: date
  at:
    type: datetime
`).Build()

	set, diags := schema.Compile(tb.Path, map[string]string{"Event": "schemas/event.yaml"})
	if len(diags) != 0 {
		t.Fatalf("compile diagnostics: %v", diags)
	}

	valid := map[string]interface{}{"id": "E-1", "on": "2026-08-26", "at": "2026-08-26T09:30:00Z"}
	if diags := set.Validate("Event", valid); len(diags) != 0 {
		t.Errorf("valid dates flagged: %v", diags)
	}

	bad := map[string]interface{}{"id": "E-1", "on": "2026-13-40", "at": "yesterday"}
	diags = set.Validate("Event", bad)
	if len(diags) != 2 {
		t.Fatalf("expected 2 format diagnostics, got %v", diags)
	}
	for _, d := range diags {
		if d.Code != "format" {
			t.Errorf("code = %q, want format", d.Code)
		}
	}
}
