package bundle

import (
	"strings"
	"testing"
)

func TestDefinitionDefaults(t *testing.T) {
	def := &Definition{
		Entities: map[string]*TypeConfig{
			"Feature": {Directory: "features", FilePattern: "{id}.yaml", IDField: "id"},
		},
	}

	path, err := def.FilePathFor("/bundle", "Feature", "FEAT-1")
	if err != nil {
		t.Fatalf("FilePathFor failed: %v", err)
	}
	// Ids are slugified for file names: lowercase, url-safe.
	if !strings.HasSuffix(path, "features/feat-1.yaml") {
		t.Errorf("unexpected path: %s", path)
	}

	if _, err := def.FilePathFor("/bundle", "Nope", "x"); err == nil {
		t.Error("expected error for unknown entity type")
	}
}

func TestTypeConfigExtension(t *testing.T) {
	tests := []struct {
		pattern string
		want    string
	}{
		{"{id}.yaml", ".yaml"},
		{"{id}.yml", ".yml"},
		{"", ".yaml"},
	}
	for _, tt := range tests {
		cfg := &TypeConfig{FilePattern: tt.pattern}
		if got := cfg.Extension(); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.pattern, got, tt.want)
		}
	}
}

func TestRelationsFrom(t *testing.T) {
	def := &Definition{
		Relations: []Relation{
			{Title: "realizes", FromEntity: "Requirement", FromField: "realizesFeatureIds", ToEntity: "Feature"},
			{Title: "depends", FromEntity: "Component", FromField: "dependsOnIds", ToEntity: "Component"},
		},
	}

	rels := def.RelationsFrom("Requirement")
	if len(rels) != 1 || rels[0].Title != "realizes" {
		t.Errorf("RelationsFrom(Requirement) = %+v", rels)
	}
	if rels := def.RelationsFrom("Feature"); len(rels) != 0 {
		t.Errorf("expected no relations from Feature, got %+v", rels)
	}
}
