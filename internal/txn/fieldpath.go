package txn

import (
	"fmt"
	"strings"
)

// ParseFieldPath splits a dotted field path ("metadata.title") into
// segments, rejecting empty paths and empty segments.
func ParseFieldPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("field path is empty")
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if strings.TrimSpace(seg) == "" {
			return nil, fmt.Errorf("field path '%s' has an empty segment", path)
		}
	}
	return segments, nil
}

// SetFieldPath sets one field path on a data record, creating
// intermediate maps only where the parent segment is absent. It fails
// when a path segment traverses an existing non-map value.
func SetFieldPath(data map[string]interface{}, segments []string, value interface{}) error {
	if len(segments) == 1 {
		data[segments[0]] = value
		return nil
	}

	head := segments[0]
	child, exists := data[head]
	if !exists || child == nil {
		next := make(map[string]interface{})
		data[head] = next
		return SetFieldPath(next, segments[1:], value)
	}

	next, ok := child.(map[string]interface{})
	if !ok {
		return fmt.Errorf("segment '%s' holds a %T, not an object", head, child)
	}
	return SetFieldPath(next, segments[1:], value)
}
