// Package session owns the long-lived canonical bundle state.
//
// The canonical snapshot has a simple lifecycle: populated at open,
// wholesale-replaced after a successful flush, otherwise never mutated.
// Transactions run against their own working copies inside the engine;
// the session only swaps the handle once the disk state has changed.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/bindery-dev/bindery/internal/bundle"
	"github.com/bindery-dev/bindery/internal/diag"
	"github.com/bindery-dev/bindery/internal/lint"
	"github.com/bindery-dev/bindery/internal/refgraph"
	"github.com/bindery-dev/bindery/internal/schema"
	"github.com/bindery-dev/bindery/internal/txn"
)

// ErrNotFound marks entity lookups that missed.
var ErrNotFound = errors.New("entity not found")

// Snapshot is one immutable view of a loaded, fully validated bundle.
type Snapshot struct {
	Bundle      *bundle.Bundle
	Schemas     *schema.Set
	Graph       *refgraph.Graph
	Diagnostics []diag.Diagnostic
}

// Summary aggregates the snapshot's diagnostics.
func (s *Snapshot) Summary() diag.Summary {
	return diag.Summarize(s.Diagnostics)
}

// Session is the injected, swappable handle to the canonical bundle.
type Session struct {
	mu      sync.RWMutex
	dir     string
	current *Snapshot
	engine  *txn.Engine
}

// Open loads the bundle at dir and returns a session holding it.
func Open(dir string) (*Session, error) {
	snap, err := load(dir)
	if err != nil {
		return nil, err
	}
	return &Session{
		dir:     dir,
		current: snap,
		engine:  txn.New(dir),
	}, nil
}

// load performs a full canonical load: discovery, schema validation,
// reference graph, integrity checks, and the lint pass, with every
// phase's diagnostics merged into one list.
func load(dir string) (*Snapshot, error) {
	b, diags, err := bundle.Load(dir)
	if err != nil {
		return nil, err
	}

	schemas, schemaDiags := schema.Compile(dir, b.Manifest.Schemas)
	diags = append(diags, schemaDiags...)

	for _, entityType := range b.Store.Types() {
		for _, entity := range b.Store.EntitiesOf(entityType) {
			for _, d := range schemas.Validate(entityType, entity.Data) {
				d.EntityID = entity.ID
				d.FilePath = entity.FilePath
				diags = append(diags, d)
			}
		}
	}

	graph := refgraph.Build(b)
	diags = append(diags, refgraph.CheckBroken(b, graph)...)
	diags = append(diags, refgraph.ValidateTargets(b, schemas, graph)...)

	lintCfg, err := lint.LoadConfig(dir, b.Manifest.LintConfig)
	if err != nil {
		diags = append(diags, diag.Errorf(diag.SourceGate, diag.CodeParseError, "%v", err))
		lintCfg = &lint.Config{}
	}
	lintCtx := &lint.Context{Bundle: b, Schemas: schemas, Graph: graph}
	diags = append(diags, lint.Run(lintCtx, lintCfg, lint.BuiltinRules())...)

	return &Snapshot{
		Bundle:      b,
		Schemas:     schemas,
		Graph:       graph,
		Diagnostics: diags,
	}, nil
}

// Dir returns the bundle directory this session serves.
func (s *Session) Dir() string {
	return s.dir
}

// Snapshot returns the current canonical snapshot.
func (s *Session) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload replaces the canonical snapshot with a fresh disk read.
func (s *Session) Reload() error {
	snap, err := load(s.dir)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return nil
}

// Validate returns the canonical snapshot's merged diagnostics and
// their summary. Reads never mutate canonical state.
func (s *Session) Validate() (diag.Summary, []diag.Diagnostic) {
	snap := s.Snapshot()
	return snap.Summary(), snap.Diagnostics
}

// GetEntity returns the full entity for a type and id. The result is a
// deep copy; mutating it never touches the canonical snapshot.
func (s *Session) GetEntity(entityType, id string) (*bundle.Entity, error) {
	snap := s.Snapshot()
	entity, ok := snap.Bundle.Store.Get(entityType, id)
	if !ok {
		return nil, fmt.Errorf("%s:%s: %w", entityType, id, ErrNotFound)
	}
	return entity.Clone(), nil
}

// ListEntities returns a sorted page of ids for a type plus the total
// count. limit <= 0 means no limit.
func (s *Session) ListEntities(entityType string, offset, limit int) ([]string, int, error) {
	snap := s.Snapshot()
	if _, ok := snap.Bundle.Def.TypeConfigFor(entityType); !ok {
		return nil, 0, fmt.Errorf("entity type '%s': %w", entityType, ErrNotFound)
	}

	ids := snap.Bundle.Store.IDsOf(entityType)
	total := len(ids)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, total, nil
}

// Apply runs a batch through the transaction engine. After a
// successful real write the canonical snapshot is replaced by a full
// reload, so the long-lived state reflects exactly what is on disk —
// the engine's working copy is never promoted to canonical truth.
func (s *Session) Apply(req *txn.Request) (*txn.Response, error) {
	resp, err := s.engine.Apply(req)
	if err != nil {
		return nil, err
	}
	if !resp.DryRun && !resp.Rejected() {
		if err := s.Reload(); err != nil {
			return resp, fmt.Errorf("batch applied but canonical reload failed: %w", err)
		}
	}
	return resp, nil
}
