package schema

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bindery-dev/bindery/internal/diag"
)

// Validate checks entity data against the entity type's compiled
// schema. An entity type with no compiled schema is itself an error
// diagnostic rather than a thrown error.
func (s *Set) Validate(entityType string, data map[string]interface{}) []diag.Diagnostic {
	sch, ok := s.schemas[entityType]
	if !ok {
		d := diag.Errorf(diag.SourceSchema, diag.CodeUnknownType, "no schema compiled for entity type '%s'", entityType)
		d.EntityType = entityType
		return []diag.Diagnostic{d}
	}
	return validateObject("", data, sch.Fields, entityType)
}

// validateObject validates one level of a data record against a field
// map. prefix is the instance path of the enclosing object ("" at the
// root, "/metadata" one level down).
func validateObject(prefix string, data map[string]interface{}, fields map[string]*FieldDefinition, entityType string) []diag.Diagnostic {
	var diags []diag.Diagnostic

	report := func(path, keyword, format string, args ...interface{}) {
		d := diag.Errorf(diag.SourceSchema, keyword, format, args...)
		d.EntityType = entityType
		d.Path = path
		diags = append(diags, d)
	}

	// Required fields first.
	for name, def := range fields {
		if def == nil || !def.Required {
			continue
		}
		if v, ok := data[name]; !ok || v == nil {
			if def.Default == nil {
				report(prefix+"/"+name, "required", "required field is missing")
			}
		}
	}

	// Then each provided field.
	for name, value := range data {
		path := prefix + "/" + name
		def, declared := fields[name]
		if !declared || def == nil {
			report(path, "additionalProperties", "field is not declared in the schema")
			continue
		}
		if value == nil {
			// Null is valid; the required check above covers absence.
			continue
		}
		diags = append(diags, validateValue(path, value, def, entityType)...)
	}

	return diags
}

func validateValue(path string, value interface{}, def *FieldDefinition, entityType string) []diag.Diagnostic {
	report := func(keyword, format string, args ...interface{}) []diag.Diagnostic {
		d := diag.Errorf(diag.SourceSchema, keyword, format, args...)
		d.EntityType = entityType
		d.Path = path
		return []diag.Diagnostic{d}
	}

	switch def.Type {
	case FieldTypeString:
		if _, ok := value.(string); !ok {
			return report("type", "expected string, got %s", typeName(value))
		}

	case FieldTypeStringArray:
		arr, ok := value.([]interface{})
		if !ok {
			return report("type", "expected array of strings, got %s", typeName(value))
		}
		for i, item := range arr {
			if _, ok := item.(string); !ok {
				return report("type", "expected string at index %d, got %s", i, typeName(item))
			}
		}

	case FieldTypeNumber:
		n, ok := asNumber(value)
		if !ok {
			return report("type", "expected number, got %s", typeName(value))
		}
		if def.Min != nil && n < *def.Min {
			return report("minimum", "value %v is below minimum %v", n, *def.Min)
		}
		if def.Max != nil && n > *def.Max {
			return report("maximum", "value %v is above maximum %v", n, *def.Max)
		}

	case FieldTypeNumberArray:
		arr, ok := value.([]interface{})
		if !ok {
			return report("type", "expected array of numbers, got %s", typeName(value))
		}
		for i, item := range arr {
			if _, ok := asNumber(item); !ok {
				return report("type", "expected number at index %d, got %s", i, typeName(item))
			}
		}

	case FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return report("type", "expected date string, got %s", typeName(value))
		}
		if !isValidDate(s) {
			return report("format", "invalid date '%s', expected YYYY-MM-DD", s)
		}

	case FieldTypeDatetime:
		s, ok := value.(string)
		if !ok {
			return report("type", "expected datetime string, got %s", typeName(value))
		}
		if !isValidDatetime(s) {
			return report("format", "invalid datetime '%s'", s)
		}

	case FieldTypeEnum:
		s, ok := value.(string)
		if !ok {
			return report("type", "expected enum value (string), got %s", typeName(value))
		}
		if len(def.Values) == 0 {
			return report("enum", "enum field has no 'values' definition")
		}
		for _, allowed := range def.Values {
			if s == allowed {
				return nil
			}
		}
		return report("enum", "invalid value '%s', expected one of: %v", s, def.Values)

	case FieldTypeBool:
		if _, ok := value.(bool); !ok {
			return report("type", "expected boolean, got %s", typeName(value))
		}

	case FieldTypeRef:
		// Shape only: a reference is a non-empty string. Whether the id
		// resolves, and to an allowed type, is the graph's concern.
		s, ok := value.(string)
		if !ok {
			return report("type", "expected reference (string), got %s", typeName(value))
		}
		if strings.TrimSpace(s) == "" {
			return report("format", "reference must be a non-empty string")
		}

	case FieldTypeRefArray:
		arr, ok := value.([]interface{})
		if !ok {
			return report("type", "expected array of references, got %s", typeName(value))
		}
		for i, item := range arr {
			s, ok := item.(string)
			if !ok {
				return report("type", "expected reference at index %d, got %s", i, typeName(item))
			}
			if strings.TrimSpace(s) == "" {
				return report("format", "reference at index %d must be a non-empty string", i)
			}
		}

	case FieldTypeObject:
		m, ok := value.(map[string]interface{})
		if !ok {
			return report("type", "expected object, got %s", typeName(value))
		}
		return validateObject(path, m, def.Fields, entityType)

	default:
		return report("type", "schema declares unknown field type '%s'", def.Type)
	}

	return nil
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func typeName(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, float32, float64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func isValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

func isValidDatetime(s string) bool {
	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if _, err := time.Parse(format, s); err == nil {
			return true
		}
	}
	return false
}
