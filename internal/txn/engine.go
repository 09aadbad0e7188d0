package txn

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/refgraph"
	"github.com/bindery-dev/bindery/internal/schema"
)

// Engine applies batches against a bundle directory. Each batch gets
// its own working copy reloaded fresh from disk; the engine never
// touches any long-lived in-memory bundle.
type Engine struct {
	bundleDir string
}

// New creates an engine for the bundle at bundleDir.
func New(bundleDir string) *Engine {
	return &Engine{bundleDir: bundleDir}
}

// Apply validates the whole batch against a private working copy and,
// when no change produced a blocking error and DryRun is off, flushes
// the touched files to disk.
//
// Atomicity: one blocking error anywhere in the batch rejects the
// entire batch with zero file-system writes, including changes earlier
// in the list that individually passed.
func (e *Engine) Apply(req *Request) (*Response, error) {
	if len(req.Changes) == 0 {
		return nil, fmt.Errorf("batch contains no changes")
	}

	dryRun := req.IsDryRun()
	b := &batch{
		dryRun:     dryRun,
		validate:   effectiveMode(req.Validate, dryRun),
		refPolicy:  effectiveMode(req.ReferencePolicy, dryRun),
		deleteMode: req.DeleteMode,
		touched:    make(map[string]*bundle.Entity),
		deleted:    make(map[string]string),
	}
	if b.deleteMode == "" {
		b.deleteMode = DeleteRestrict
	}

	// Private working copy, never the canonical bundle.
	work, _, err := bundle.Load(e.bundleDir)
	if err != nil {
		return nil, fmt.Errorf("load working copy: %w", err)
	}
	b.work = work
	b.schemas, b.compileDiags = schema.Compile(e.bundleDir, work.Manifest.Schemas)

	for i, change := range req.Changes {
		var res ChangeResult
		switch change.Operation {
		case OpCreate:
			res = b.create(change)
		case OpUpdate:
			res = b.update(change)
		case OpDelete:
			res = b.delete(change)
		default:
			res = b.fail(change, diag.CodeBadRequest, "unknown operation '%s'", change.Operation)
		}
		res.Index = i
		b.results = append(b.results, res)
	}

	resp := &Response{DryRun: dryRun, Results: b.results}
	blocked := resp.Rejected()

	modified := b.modifiedPaths()
	deleted := b.deletedPaths()

	if dryRun || blocked {
		for i := range resp.Results {
			if resp.Results[i].Status == "" {
				resp.Results[i].Status = StatusWouldApply
			}
		}
		resp.WouldApply = countStatus(resp.Results, StatusWouldApply)
		if !blocked {
			resp.ModifiedFiles = modified
			resp.WouldDelete = deleted
		}
		return resp, nil
	}

	// Flush phase: all changes validated clean and this is a real write.
	if err := b.flush(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}
	for i := range resp.Results {
		if resp.Results[i].Status == "" {
			resp.Results[i].Status = StatusApplied
		}
	}
	resp.Applied = countStatus(resp.Results, StatusApplied)
	resp.ModifiedFiles = modified
	resp.DeletedFiles = deleted
	return resp, nil
}

// effectiveMode resolves a tri-state default: strict for real writes,
// warn for dry runs.
func effectiveMode(m Mode, dryRun bool) Mode {
	if m != "" {
		return m
	}
	if dryRun {
		return ModeWarn
	}
	return ModeStrict
}

// batch is the per-request state machine.
type batch struct {
	dryRun     bool
	validate   Mode
	refPolicy  Mode
	deleteMode DeleteMode

	work         *bundle.Bundle
	schemas      *schema.Set
	compileDiags []diag.Diagnostic

	// touched maps entity id to the entity whose file must be written;
	// deleted maps entity id to the file that must be removed.
	touched map[string]*bundle.Entity
	deleted map[string]string

	results []ChangeResult
}

func (b *batch) base(ch Change) ChangeResult {
	return ChangeResult{
		Operation:  ch.Operation,
		EntityType: ch.EntityType,
		EntityID:   ch.EntityID,
	}
}

// fail produces a blocking error result with a single diagnostic.
func (b *batch) fail(ch Change, code, format string, args ...interface{}) ChangeResult {
	res := b.base(ch)
	res.Status = StatusError
	res.Error = fmt.Sprintf(format, args...)
	d := diag.Errorf(diag.SourceGate, code, format, args...)
	d.EntityType = ch.EntityType
	d.EntityID = ch.EntityID
	res.Diagnostics = []diag.Diagnostic{d}
	return res
}

func (b *batch) create(ch Change) ChangeResult {
	if strings.TrimSpace(ch.EntityID) == "" {
		return b.fail(ch, diag.CodeBadRequest, "create requires an entityId")
	}
	cfg, ok := b.work.Def.TypeConfigFor(ch.EntityType)
	if !ok {
		return b.fail(ch, diag.CodeBadRequest, "unknown entity type '%s'", ch.EntityType)
	}
	if loc, exists := b.work.Store.Resolve(ch.EntityID); exists {
		return b.fail(ch, diag.CodeValidationError, "id '%s' already exists (%s at %s)", ch.EntityID, loc.EntityType, loc.FilePath)
	}

	// Synthesize the entity data: the explicit payload or a minimal stub
	// carrying only the id field.
	data := make(map[string]interface{})
	for k, v := range ch.Data {
		data[k] = v
	}
	if existing, ok := data[cfg.IDField].(string); ok && existing != ch.EntityID {
		return b.fail(ch, diag.CodeBadRequest, "data field '%s' (%s) does not match entityId (%s)", cfg.IDField, existing, ch.EntityID)
	}
	data[cfg.IDField] = ch.EntityID

	path, err := b.work.FilePathFor(ch.EntityType, ch.EntityID)
	if err != nil {
		return b.fail(ch, diag.CodeBadRequest, "%v", err)
	}

	// Distinct ids can slug to the same file name. The path must not be
	// claimed by any other entity in the working copy, nor by a file on
	// disk the loader does not account for, or the create would clobber
	// it at flush time.
	if owner, ok := b.pathOwner(path); ok {
		return b.fail(ch, diag.CodeValidationError,
			"file '%s' already holds %s:%s", b.work.RelPath(path), owner.EntityType, owner.ID)
	}
	if !b.pathDeletedInBatch(path) {
		if _, err := os.Stat(path); err == nil {
			return b.fail(ch, diag.CodeValidationError,
				"file '%s' already exists and is not tracked as an entity", b.work.RelPath(path))
		}
	}

	entity := &bundle.Entity{
		ID:         ch.EntityID,
		EntityType: ch.EntityType,
		Data:       data,
		FilePath:   path,
	}
	if err := b.work.Store.Insert(entity); err != nil {
		return b.fail(ch, diag.CodeValidationError, "%v", err)
	}
	b.touched[entity.ID] = entity
	// An id deleted earlier in the batch and recreated at the same path
	// must not be removed at flush time. A recreate under a different
	// type still deletes the old file.
	if old, ok := b.deleted[entity.ID]; ok && old == path {
		delete(b.deleted, entity.ID)
	}

	res := b.base(ch)
	res.ResultData = entity.Data
	res.AffectedFiles = []string{b.work.RelPath(path)}
	b.revalidate(entity, &res)
	return res
}

func (b *batch) update(ch Change) ChangeResult {
	entity, ok := b.work.Store.Get(ch.EntityType, ch.EntityID)
	if !ok {
		return b.fail(ch, diag.CodeNotFound, "entity %s:%s not found", ch.EntityType, ch.EntityID)
	}

	segments, err := ParseFieldPath(ch.FieldPath)
	if err != nil {
		return b.fail(ch, diag.CodeBadRequest, "update requires a field path: %v", err)
	}

	// The id field keys the store registry and the file name; rewriting
	// it in place would bypass the bundle-wide uniqueness check.
	if cfg, ok := b.work.Def.TypeConfigFor(ch.EntityType); ok && segments[0] == cfg.IDField {
		return b.fail(ch, diag.CodeBadRequest,
			"field '%s' is the id field of type '%s'; ids are immutable, delete and recreate instead",
			ch.FieldPath, ch.EntityType)
	}

	if cd := b.compileDiagsFor(ch.EntityType); len(cd) > 0 {
		return b.fail(ch, diag.CodeSchemaInvalid, "%s", cd[0].Message)
	}

	// Updates are non-upserting: a path the schema does not declare is
	// rejected outright, regardless of validation mode.
	if !b.schemas.HasFieldPath(ch.EntityType, segments) {
		return b.fail(ch, diag.CodeValidationError,
			"field path '%s' is not declared in the schema for type '%s'", ch.FieldPath, ch.EntityType)
	}

	if err := SetFieldPath(entity.Data, segments, ch.Value); err != nil {
		return b.fail(ch, diag.CodeValidationError, "cannot set '%s': %v", ch.FieldPath, err)
	}
	b.touched[entity.ID] = entity

	res := b.base(ch)
	res.ResultData = entity.Data
	res.AffectedFiles = []string{b.work.RelPath(entity.FilePath)}
	b.revalidate(entity, &res)
	return res
}

func (b *batch) delete(ch Change) ChangeResult {
	entity, ok := b.work.Store.Get(ch.EntityType, ch.EntityID)
	if !ok {
		return b.fail(ch, diag.CodeNotFound, "entity %s:%s not found", ch.EntityType, ch.EntityID)
	}

	if b.deleteMode == DeleteRestrict {
		graph := refgraph.Build(b.work)
		var referrers []string
		for _, edge := range graph.EdgesTo(ch.EntityID) {
			if edge.FromID == ch.EntityID {
				continue
			}
			referrers = append(referrers, fmt.Sprintf("%s:%s (field %s)", edge.FromEntityType, edge.FromID, edge.FromField))
		}
		if len(referrers) > 0 {
			sort.Strings(referrers)
			return b.fail(ch, diag.CodeDeleteBlocked,
				"entity %s:%s is still referenced by: %s", ch.EntityType, ch.EntityID, strings.Join(referrers, ", "))
		}
	}

	b.work.Store.Remove(ch.EntityType, ch.EntityID)
	delete(b.touched, ch.EntityID)
	b.deleted[ch.EntityID] = entity.FilePath

	res := b.base(ch)
	res.AffectedFiles = []string{b.work.RelPath(entity.FilePath)}
	return res
}

// revalidate runs schema validation and reference-target checks on a
// created or mutated entity, absorbing diagnostics under the active
// modes. A blocking diagnostic flips the result to an error status.
func (b *batch) revalidate(entity *bundle.Entity, res *ChangeResult) {
	if b.validate != ModeNone {
		// A type whose schema failed to compile surfaces the compile
		// diagnostic itself, not a generic unknown-type error.
		schemaDiags := b.compileDiagsFor(entity.EntityType)
		if len(schemaDiags) == 0 {
			schemaDiags = b.schemas.Validate(entity.EntityType, entity.Data)
		}
		b.absorb(b.validate, diag.CodeValidationError, schemaDiags, entity, res)
	}

	if b.refPolicy != ModeNone {
		b.absorb(b.refPolicy, diag.CodeReferenceError, b.checkRefs(entity), entity, res)
	}
}

// checkRefs extracts every reference field from the entity data and
// confirms each target id exists in the working copy's id registry and
// resolves to a type the field allows.
func (b *batch) checkRefs(entity *bundle.Entity) []diag.Diagnostic {
	var diags []diag.Diagnostic
	sch, hasSchema := b.schemas.Schema(entity.EntityType)

	for _, fieldPath := range b.refFieldPaths(entity.EntityType) {
		value, ok := entity.Field(fieldPath)
		if !ok || value == nil {
			continue
		}
		for _, id := range refgraph.RefStrings(value) {
			loc, resolved := b.work.Store.Resolve(id)
			if !resolved {
				d := diag.Errorf(diag.SourceGate, diag.CodeReferenceError,
					"field '%s' references unknown id '%s'", fieldPath, id)
				d.Path = "/" + strings.ReplaceAll(fieldPath, ".", "/")
				diags = append(diags, d)
				continue
			}
			if !hasSchema {
				continue
			}
			def, ok := sch.FieldAt(strings.Split(fieldPath, "."))
			if !ok || !def.IsRef() || len(def.Targets) == 0 {
				continue
			}
			allowed := false
			for _, t := range def.Targets {
				if t == loc.EntityType {
					allowed = true
					break
				}
			}
			if !allowed {
				d := diag.Errorf(diag.SourceGate, diag.CodeReferenceError,
					"field '%s' references '%s' of type %s, allowed types: %v", fieldPath, id, loc.EntityType, def.Targets)
				d.Path = "/" + strings.ReplaceAll(fieldPath, ".", "/")
				diags = append(diags, d)
			}
		}
	}
	return diags
}

// refFieldPaths merges the reference fields declared by the type's
// schema with the fields named by the bundle-type relations.
func (b *batch) refFieldPaths(entityType string) []string {
	seen := make(map[string]struct{})
	var paths []string
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}

	if sch, ok := b.schemas.Schema(entityType); ok {
		for _, rf := range sch.RefFields() {
			add(rf.Path)
		}
	}
	for _, rel := range b.work.Def.RelationsFrom(entityType) {
		add(rel.FromField)
	}
	sort.Strings(paths)
	return paths
}

// absorb folds check diagnostics into a result under the given mode:
// strict keeps errors blocking, warn degrades them to advisory
// warnings.
func (b *batch) absorb(mode Mode, code string, diags []diag.Diagnostic, entity *bundle.Entity, res *ChangeResult) {
	for _, d := range diags {
		d.EntityType = entity.EntityType
		d.EntityID = entity.ID
		d.FilePath = entity.FilePath
		if d.Severity == diag.SeverityError {
			switch mode {
			case ModeWarn:
				d.Severity = diag.SeverityWarning
			default:
				res.Status = StatusError
				if res.Error == "" {
					res.Error = codeMessage(code, d)
				}
			}
		}
		res.Diagnostics = append(res.Diagnostics, d)
	}
}

func codeMessage(code string, d diag.Diagnostic) string {
	return fmt.Sprintf("%s: %s", code, d.Message)
}

// compileDiagsFor returns the schema-compile diagnostics attributed to
// one entity type.
func (b *batch) compileDiagsFor(entityType string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range b.compileDiags {
		if d.EntityType == entityType {
			out = append(out, d)
		}
	}
	return out
}

// pathOwner finds the working-copy entity whose file is path, if any.
func (b *batch) pathOwner(path string) (*bundle.Entity, bool) {
	for _, entityType := range b.work.Store.Types() {
		for _, e := range b.work.Store.EntitiesOf(entityType) {
			if e.FilePath == path {
				return e, true
			}
		}
	}
	return nil, false
}

// pathDeletedInBatch reports whether an earlier delete in this batch
// freed the path, which makes rewriting it legitimate.
func (b *batch) pathDeletedInBatch(path string) bool {
	for _, p := range b.deleted {
		if p == path {
			return true
		}
	}
	return false
}

func (b *batch) modifiedPaths() []string {
	out := make([]string, 0, len(b.touched))
	for _, e := range b.touched {
		out = append(out, b.work.RelPath(e.FilePath))
	}
	sort.Strings(out)
	return out
}

func (b *batch) deletedPaths() []string {
	out := make([]string, 0, len(b.deleted))
	for _, path := range b.deleted {
		out = append(out, b.work.RelPath(path))
	}
	sort.Strings(out)
	return out
}

func countStatus(results []ChangeResult, status string) int {
	n := 0
	for _, r := range results {
		if r.Status == status {
			n++
		}
	}
	return n
}
