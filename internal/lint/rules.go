package lint

import (
	"sort"

	"github.com/bindery-dev/bindery/internal/diag"
)

// inlineRefsRule flags [[id]] references embedded in markdown prose
// fields that do not resolve to any entity in the bundle.
type inlineRefsRule struct{}

func (r *inlineRefsRule) Name() string { return "inline-refs" }

func (r *inlineRefsRule) Check(ctx *Context) []diag.Diagnostic {
	var diags []diag.Diagnostic

	for _, entityType := range ctx.Bundle.Store.Types() {
		for _, entity := range ctx.Bundle.Store.EntitiesOf(entityType) {
			for _, field := range sortedKeys(entity.Data) {
				prose, ok := entity.Data[field].(string)
				if !ok {
					continue
				}
				for _, ref := range extractInlineRefs(prose) {
					if _, found := ctx.Bundle.Store.Resolve(ref); found {
						continue
					}
					d := diag.Warnf(diag.SourceLint, r.Name(), "inline reference [[%s]] does not resolve", ref)
					d.EntityType = entityType
					d.EntityID = entity.ID
					d.FilePath = entity.FilePath
					d.Path = "/" + field
					diags = append(diags, d)
				}
			}
		}
	}

	return diags
}

// relationTitleRule asks that every declared relation carry a title, so
// graph renderings and agent guides can label edges.
type relationTitleRule struct{}

func (r *relationTitleRule) Name() string { return "relation-title" }

func (r *relationTitleRule) Check(ctx *Context) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, rel := range ctx.Bundle.Def.Relations {
		if rel.Title != "" {
			continue
		}
		diags = append(diags, diag.Warnf(diag.SourceLint, r.Name(),
			"relation %s.%s -> %s has no title", rel.FromEntity, rel.FromField, rel.ToEntity))
	}
	return diags
}

// orphanEntityRule flags entities that participate in no edge at all,
// in either direction. Often a sign of an entity the bundle forgot to
// wire in.
type orphanEntityRule struct{}

func (r *orphanEntityRule) Name() string { return "orphan-entity" }

func (r *orphanEntityRule) Check(ctx *Context) []diag.Diagnostic {
	if len(ctx.Bundle.Def.Relations) == 0 {
		return nil
	}

	connected := make(map[string]struct{}, len(ctx.Graph.Edges)*2)
	for _, e := range ctx.Graph.Edges {
		connected[e.FromID] = struct{}{}
		connected[e.ToID] = struct{}{}
	}

	var diags []diag.Diagnostic
	for _, entityType := range ctx.Bundle.Store.Types() {
		for _, entity := range ctx.Bundle.Store.EntitiesOf(entityType) {
			if _, ok := connected[entity.ID]; ok {
				continue
			}
			d := diag.Warnf(diag.SourceLint, r.Name(), "entity is not referenced by and does not reference anything")
			d.EntityType = entityType
			d.EntityID = entity.ID
			d.FilePath = entity.FilePath
			diags = append(diags, d)
		}
	}
	return diags
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
