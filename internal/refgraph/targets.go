package refgraph

import (
	"strings"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/schema"
)

// ValidateTargets flags every edge whose resolved target type is not in
// the allow-list declared on the source entity's schema field.
//
// The allow-list comes from the raw schema, not the relation: a ref or
// ref[] field may declare several permitted target types. Edges whose
// target id does not resolve are skipped here — that is the broken
// reference check's concern; target-type validation only means
// something once the id resolves.
func ValidateTargets(b *bundle.Bundle, schemas *schema.Set, g *Graph) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, e := range g.Edges {
		loc, ok := b.Store.Resolve(e.ToID)
		if !ok {
			continue
		}

		sch, ok := schemas.Schema(e.FromEntityType)
		if !ok {
			continue
		}
		def, ok := sch.FieldAt(strings.Split(e.FromField, "."))
		if !ok || !def.IsRef() || len(def.Targets) == 0 {
			// No ref declaration or an open target list: nothing to check.
			continue
		}

		if containsString(def.Targets, loc.EntityType) {
			continue
		}

		d := diag.Errorf(diag.SourceSchema, diag.CodeRefTypeMismatch,
			"field '%s' references '%s' of type %s, allowed types: %v",
			e.FromField, e.ToID, loc.EntityType, def.Targets)
		d.EntityType = e.FromEntityType
		d.EntityID = e.FromID
		d.Path = "/" + strings.ReplaceAll(e.FromField, ".", "/")
		if from, ok := b.Store.Resolve(e.FromID); ok {
			d.FilePath = from.FilePath
		}
		diags = append(diags, d)
	}

	return diags
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
