package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the fixed name of the manifest at the bundle root.
const ManifestFileName = "manifest.yaml"

// Manifest is the top-level bundle descriptor. It names the bundle-type
// definition, the per-entity-type schema files, and optional lint and
// domain-knowledge files. Loaded once per bundle directory; immutable
// for the lifetime of a load.
type Manifest struct {
	Name       string            `yaml:"name,omitempty"`
	BundleType string            `yaml:"bundleType"`
	Schemas    map[string]string `yaml:"schemas"`

	// LintConfig points at an optional lint configuration file.
	LintConfig string `yaml:"lintConfig,omitempty"`

	// DomainKnowledge points at an optional markdown document describing
	// the bundle's domain, surfaced to humans and agents as a guide.
	DomainKnowledge string `yaml:"domainKnowledge,omitempty"`
}

// LoadManifest reads the manifest at the root of bundleDir. Unlike
// per-entity problems this is a hard failure: nothing can proceed
// without a manifest.
func LoadManifest(bundleDir string) (*Manifest, error) {
	path := filepath.Join(bundleDir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if m.BundleType == "" {
		return nil, fmt.Errorf("manifest %s does not name a bundleType definition", path)
	}
	if m.Schemas == nil {
		m.Schemas = make(map[string]string)
	}
	return &m, nil
}

// SchemaPath returns the bundle-relative schema file for an entity
// type, or "" when the manifest does not declare one.
func (m *Manifest) SchemaPath(entityType string) string {
	return m.Schemas[entityType]
}
