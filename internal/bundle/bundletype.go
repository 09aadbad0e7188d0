package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

// TypeConfig declares how one entity type is stored on disk.
type TypeConfig struct {
	// Directory is the bundle-relative directory holding this type's
	// entity files, e.g. "features".
	Directory string `yaml:"directory"`

	// FilePattern names entity files; "{id}" is replaced with the
	// slugified entity id. Defaults to "{id}.yaml".
	FilePattern string `yaml:"filePattern,omitempty"`

	// IDField is the data field holding the entity's id. Defaults to "id".
	IDField string `yaml:"idField,omitempty"`
}

// Extension returns the file extension the pattern implies, used as the
// loader's discovery filter.
func (c *TypeConfig) Extension() string {
	ext := filepath.Ext(c.FilePattern)
	if ext == "" {
		return ".yaml"
	}
	return ext
}

// Relation is a declared edge template: entities of FromEntity hold
// reference(s) to ToEntity in FromField.
type Relation struct {
	Title        string `yaml:"title,omitempty"`
	FromEntity   string `yaml:"fromEntity"`
	FromField    string `yaml:"fromField"`
	ToEntity     string `yaml:"toEntity"`
	Multiplicity string `yaml:"multiplicity,omitempty"` // "one" or "many"
}

// Definition is the bundle-type definition: per-type storage layout
// plus the declared relations. Loaded once; immutable.
type Definition struct {
	Name      string                 `yaml:"name,omitempty"`
	Entities  map[string]*TypeConfig `yaml:"entities"`
	Relations []Relation             `yaml:"relations,omitempty"`
}

// LoadDefinition reads the bundle-type definition named by the
// manifest. Like the manifest itself, failure here is fatal.
func LoadDefinition(bundleDir string, m *Manifest) (*Definition, error) {
	path := filepath.Join(bundleDir, m.BundleType)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle-type definition %s: %w", path, err)
	}

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse bundle-type definition %s: %w", path, err)
	}
	if len(def.Entities) == 0 {
		return nil, fmt.Errorf("bundle-type definition %s declares no entity types", path)
	}

	for name, cfg := range def.Entities {
		if cfg == nil {
			cfg = &TypeConfig{}
			def.Entities[name] = cfg
		}
		if cfg.Directory == "" {
			cfg.Directory = strings.ToLower(name) + "s"
		}
		if cfg.FilePattern == "" {
			cfg.FilePattern = "{id}.yaml"
		}
		if cfg.IDField == "" {
			cfg.IDField = "id"
		}
	}
	return &def, nil
}

// TypeConfigFor returns the storage config for an entity type.
func (d *Definition) TypeConfigFor(entityType string) (*TypeConfig, bool) {
	cfg, ok := d.Entities[entityType]
	return cfg, ok
}

// RelationsFrom returns all relations whose source is the given type.
func (d *Definition) RelationsFrom(entityType string) []Relation {
	var out []Relation
	for _, rel := range d.Relations {
		if rel.FromEntity == entityType {
			out = append(out, rel)
		}
	}
	return out
}

// FilePathFor computes the absolute file path for an entity id of the
// given type, applying the type's directory and file-name pattern.
// Create operations use this; the loader only records observed paths.
func (d *Definition) FilePathFor(bundleDir, entityType, id string) (string, error) {
	cfg, ok := d.TypeConfigFor(entityType)
	if !ok {
		return "", fmt.Errorf("unknown entity type '%s'", entityType)
	}
	name := strings.ReplaceAll(cfg.FilePattern, "{id}", slug.Make(id))
	return filepath.Join(bundleDir, cfg.Directory, name), nil
}
