package schema

import (
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bindery-dev/bindery/internal/diag"
)

// Set holds the compiled schema for every entity type that has one.
type Set struct {
	schemas map[string]*Schema
}

// Compile loads and compiles one schema per entity type from the
// manifest's schema map (entity type -> bundle-relative file).
//
// A type whose schema file is missing or unparseable yields an error
// diagnostic and is left uncompiled; the remaining types still
// validate, so one misconfigured type does not block the bundle.
func Compile(bundleDir string, schemaFiles map[string]string) (*Set, []diag.Diagnostic) {
	set := &Set{schemas: make(map[string]*Schema, len(schemaFiles))}
	var diags []diag.Diagnostic

	types := make([]string, 0, len(schemaFiles))
	for t := range schemaFiles {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, entityType := range types {
		path := filepath.Join(bundleDir, schemaFiles[entityType])
		s, err := loadSchema(path)
		if err != nil {
			d := diag.Errorf(diag.SourceGate, diag.CodeSchemaInvalid, "schema for type '%s': %v", entityType, err)
			d.EntityType = entityType
			d.FilePath = path
			diags = append(diags, d)
			continue
		}
		if s.Name == "" {
			s.Name = entityType
		}
		set.schemas[entityType] = s
	}

	return set, diags
}

func loadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Fields == nil {
		s.Fields = make(map[string]*FieldDefinition)
	}
	return &s, nil
}

// Schema returns the compiled schema for an entity type.
func (s *Set) Schema(entityType string) (*Schema, bool) {
	sch, ok := s.schemas[entityType]
	return sch, ok
}

// HasFieldPath reports whether the dotted field path is declared in the
// entity type's schema. Updates are non-upserting: they may only touch
// declared paths.
func (s *Set) HasFieldPath(entityType string, path []string) bool {
	sch, ok := s.schemas[entityType]
	if !ok {
		return false
	}
	_, ok = sch.FieldAt(path)
	return ok
}

// Types returns the sorted entity types with a compiled schema.
func (s *Set) Types() []string {
	out := make([]string, 0, len(s.schemas))
	for t := range s.schemas {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
