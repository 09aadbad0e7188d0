package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bindery-dev/bindery/internal/diag"
)

// Bundle is a fully discovered bundle: its manifest, its bundle-type
// definition, and the entity store built from disk.
type Bundle struct {
	Dir      string
	Manifest *Manifest
	Def      *Definition
	Store    *Store
}

// Load discovers and parses every entity in bundleDir.
//
// Per-entity problems (bad YAML, missing id, unreadable directory) are
// absorbed as error diagnostics and loading continues; only a missing
// or unparseable manifest/definition propagates as a hard error, since
// nothing else can proceed without them.
func Load(bundleDir string) (*Bundle, []diag.Diagnostic, error) {
	manifest, err := LoadManifest(bundleDir)
	if err != nil {
		return nil, nil, err
	}
	def, err := LoadDefinition(bundleDir, manifest)
	if err != nil {
		return nil, nil, err
	}

	b := &Bundle{
		Dir:      bundleDir,
		Manifest: manifest,
		Def:      def,
		Store:    NewStore(),
	}

	var diags []diag.Diagnostic

	// Deterministic enumeration: types sorted by name, files in
	// directory order.
	typeNames := make([]string, 0, len(def.Entities))
	for name := range def.Entities {
		typeNames = append(typeNames, name)
	}
	sort.Strings(typeNames)

	for _, typeName := range typeNames {
		cfg := def.Entities[typeName]
		diags = append(diags, b.loadType(typeName, cfg)...)
	}

	return b, diags, nil
}

func (b *Bundle) loadType(typeName string, cfg *TypeConfig) []diag.Diagnostic {
	var diags []diag.Diagnostic

	dir := filepath.Join(b.Dir, cfg.Directory)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			// A type with no entities yet is not an error.
			return nil
		}
		d := diag.Errorf(diag.SourceGate, diag.CodeUnreadableDir, "cannot read directory %s: %v", cfg.Directory, err)
		d.EntityType = typeName
		d.FilePath = dir
		return append(diags, d)
	}

	ext := cfg.Extension()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ext) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if d, ok := b.loadEntity(typeName, cfg, path); !ok {
			diags = append(diags, d)
		}
	}
	return diags
}

// loadEntity parses one entity file and inserts it into the store.
// Returns a diagnostic (and ok=false) when the file is rejected.
func (b *Bundle) loadEntity(typeName string, cfg *TypeConfig, path string) (diag.Diagnostic, bool) {
	fail := func(code, format string, args ...interface{}) (diag.Diagnostic, bool) {
		d := diag.Errorf(diag.SourceGate, code, format, args...)
		d.EntityType = typeName
		d.FilePath = path
		return d, false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fail(diag.CodeParseError, "cannot read file: %v", err)
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return fail(diag.CodeParseError, "invalid YAML: %v", err)
	}
	if data == nil {
		return fail(diag.CodeParseError, "file is empty")
	}

	id, ok := data[cfg.IDField].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return fail(diag.CodeMissingID, "field '%s' is missing or not a non-empty string", cfg.IDField)
	}

	entity := &Entity{
		ID:         id,
		EntityType: typeName,
		Data:       data,
		FilePath:   path,
	}
	if err := b.Store.Insert(entity); err != nil {
		d, _ := fail(diag.CodeDuplicateID, "%v", err)
		d.EntityID = id
		return d, false
	}
	return diag.Diagnostic{}, true
}

// FilePathFor exposes the definition's path rule against this bundle's
// directory. The transaction engine uses it when instantiating created
// entities.
func (b *Bundle) FilePathFor(entityType, id string) (string, error) {
	return b.Def.FilePathFor(b.Dir, entityType, id)
}

// RelPath returns a bundle-relative rendering of an absolute entity
// path for display and API payloads.
func (b *Bundle) RelPath(path string) string {
	rel, err := filepath.Rel(b.Dir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// String describes the bundle for logs and errors.
func (b *Bundle) String() string {
	name := b.Manifest.Name
	if name == "" {
		name = filepath.Base(b.Dir)
	}
	return fmt.Sprintf("%s (%d entities)", name, b.Store.Len())
}
