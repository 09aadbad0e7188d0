// Package bundle implements the document model: manifests, bundle-type
// definitions, entity discovery, and the in-memory entity store.
package bundle

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entity is one stored document: an id, a type, open-ended structured
// data, and the file it was loaded from (or will be written to).
type Entity struct {
	ID         string                 `json:"id"`
	EntityType string                 `json:"entityType"`
	Data       map[string]interface{} `json:"data"`
	FilePath   string                 `json:"filePath"`
}

// Clone returns a deep copy of the entity. Lookups hand out clones so
// callers can never mutate the canonical store through a result.
func (e *Entity) Clone() *Entity {
	return &Entity{
		ID:         e.ID,
		EntityType: e.EntityType,
		Data:       cloneData(e.Data).(map[string]interface{}),
		FilePath:   e.FilePath,
	}
}

// Marshal serializes the entity data as a YAML document.
func (e *Entity) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(e.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal entity %s:%s: %w", e.EntityType, e.ID, err)
	}
	return out, nil
}

// Field resolves a dotted field path ("metadata.title") against the
// entity data. The second return is false when any segment is absent
// or a non-map value is traversed.
func (e *Entity) Field(path string) (interface{}, bool) {
	segments := strings.Split(path, ".")
	var current interface{} = e.Data
	for _, seg := range segments {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func cloneData(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = cloneData(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneData(item)
		}
		return out
	default:
		return val
	}
}
