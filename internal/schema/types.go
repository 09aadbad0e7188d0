// Package schema handles per-entity-type schema loading and validation.
//
// Each entity type gets one schema file (named by the manifest). A
// schema is a field map; entity data is validated field by field and
// failures carry the instance path ("/title") plus the failing keyword
// as the diagnostic code.
package schema

// FieldType represents the declared type of a field.
type FieldType string

const (
	FieldTypeString      FieldType = "string"
	FieldTypeStringArray FieldType = "string[]"
	FieldTypeNumber      FieldType = "number"
	FieldTypeNumberArray FieldType = "number[]"
	FieldTypeDate        FieldType = "date"
	FieldTypeDatetime    FieldType = "datetime"
	FieldTypeEnum        FieldType = "enum"
	FieldTypeBool        FieldType = "bool"
	FieldTypeObject      FieldType = "object"

	// FieldTypeRef marks a field whose value is an entity id; the
	// field's Targets list restricts which entity types that id may
	// resolve to. The validator only checks shape (non-empty string);
	// cross-entity checking belongs to the reference graph, which has
	// the whole-bundle id index.
	FieldTypeRef      FieldType = "ref"
	FieldTypeRefArray FieldType = "ref[]"
)

// FieldDefinition defines one field of an entity type.
type FieldDefinition struct {
	Type     FieldType   `yaml:"type"`
	Required bool        `yaml:"required,omitempty"`
	Values   []string    `yaml:"values,omitempty"`  // for enum
	Targets  []string    `yaml:"targets,omitempty"` // for ref / ref[]
	Min      *float64    `yaml:"min,omitempty"`     // for number
	Max      *float64    `yaml:"max,omitempty"`     // for number
	Default  interface{} `yaml:"default,omitempty"`

	// Fields holds nested definitions for object fields.
	Fields map[string]*FieldDefinition `yaml:"fields,omitempty"`
}

// IsRef reports whether the field holds entity reference(s).
func (f *FieldDefinition) IsRef() bool {
	return f.Type == FieldTypeRef || f.Type == FieldTypeRefArray
}

// Schema is the compiled schema for one entity type.
type Schema struct {
	Name   string                      `yaml:"type,omitempty"`
	Fields map[string]*FieldDefinition `yaml:"fields"`
}

// FieldAt resolves a dotted field path against the schema, descending
// into object fields. Used by updates: a path absent from the schema
// cannot be written.
func (s *Schema) FieldAt(path []string) (*FieldDefinition, bool) {
	fields := s.Fields
	var def *FieldDefinition
	for _, seg := range path {
		if fields == nil {
			return nil, false
		}
		d, ok := fields[seg]
		if !ok || d == nil {
			return nil, false
		}
		def = d
		fields = d.Fields
	}
	if def == nil {
		return nil, false
	}
	return def, true
}

// RefField pairs a field path with its reference definition.
type RefField struct {
	// Path is the dotted path of the field within entity data.
	Path string

	Def *FieldDefinition
}

// RefFields lists every ref / ref[] field in the schema, including
// those nested inside object fields.
func (s *Schema) RefFields() []RefField {
	var out []RefField
	collectRefFields("", s.Fields, &out)
	return out
}

func collectRefFields(prefix string, fields map[string]*FieldDefinition, out *[]RefField) {
	for name, def := range fields {
		if def == nil {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		if def.IsRef() {
			*out = append(*out, RefField{Path: path, Def: def})
		}
		if def.Type == FieldTypeObject {
			collectRefFields(path, def.Fields, out)
		}
	}
}
