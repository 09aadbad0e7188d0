// Package refgraph derives the concrete reference graph from a loaded
// bundle and checks reference integrity against it.
package refgraph

import (
	"strings"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
)

// Edge is one concrete reference between entity instances. Derived,
// never persisted.
type Edge struct {
	FromEntityType string `json:"fromEntityType"`
	FromID         string `json:"fromId"`
	FromField      string `json:"fromField"`
	ToEntityType   string `json:"toEntityType"`
	ToID           string `json:"toId"`
}

// Graph is the set of derived edges.
type Graph struct {
	Edges []Edge
}

// Build walks every declared relation and extracts edges from entity
// data. Reference values may be a single string or an array of
// strings; empty and whitespace-only strings are ignored.
//
// When the target id resolves in the id registry, the edge carries the
// id's actual type; otherwise it falls back to the relation's declared
// type, so a broken reference still produces an edge for diagnostics.
func Build(b *bundle.Bundle) *Graph {
	g := &Graph{}

	for _, rel := range b.Def.Relations {
		for _, entity := range b.Store.EntitiesOf(rel.FromEntity) {
			value, ok := entity.Field(rel.FromField)
			if !ok || value == nil {
				continue
			}
			for _, toID := range RefStrings(value) {
				toType := rel.ToEntity
				if loc, ok := b.Store.Resolve(toID); ok {
					toType = loc.EntityType
				}
				g.Edges = append(g.Edges, Edge{
					FromEntityType: rel.FromEntity,
					FromID:         entity.ID,
					FromField:      rel.FromField,
					ToEntityType:   toType,
					ToID:           toID,
				})
			}
		}
	}

	return g
}

// RefStrings normalizes a reference field value into its id list: a
// single string or an array of strings, with empty and whitespace-only
// entries dropped. Anything else yields no ids.
func RefStrings(value interface{}) []string {
	var out []string
	add := func(v interface{}) {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	switch v := value.(type) {
	case string:
		add(v)
	case []interface{}:
		for _, item := range v {
			add(item)
		}
	}
	return out
}

// EdgesTo returns every edge whose target is the given id. Delete
// safety scans this.
func (g *Graph) EdgesTo(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.ToID == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesFrom returns every edge originating at the given id.
func (g *Graph) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.FromID == id {
			out = append(out, e)
		}
	}
	return out
}

// CheckBroken reports an error diagnostic for every edge whose target
// id does not resolve anywhere in the bundle.
func CheckBroken(b *bundle.Bundle, g *Graph) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, e := range g.Edges {
		if _, ok := b.Store.Resolve(e.ToID); ok {
			continue
		}
		d := diag.Errorf(diag.SourceGate, diag.CodeBrokenRef, "field '%s' references unknown id '%s'", e.FromField, e.ToID)
		d.EntityType = e.FromEntityType
		d.EntityID = e.FromID
		d.Path = "/" + strings.ReplaceAll(e.FromField, ".", "/")
		if loc, ok := b.Store.Resolve(e.FromID); ok {
			d.FilePath = loc.FilePath
		}
		diags = append(diags, d)
	}
	return diags
}
