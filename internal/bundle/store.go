package bundle

import (
	"fmt"
	"sort"
)

// Location records where an id lives. The registry exists so a
// reference can be resolved to its actual type without scanning every
// type bucket.
type Location struct {
	EntityType string `json:"entityType"`
	ID         string `json:"id"`
	FilePath   string `json:"filePath"`
}

// Store holds all entities grouped by type plus a global id registry.
// Ids are unique across the entire bundle, not just within a type.
type Store struct {
	buckets  map[string]map[string]*Entity
	registry map[string]Location
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		buckets:  make(map[string]map[string]*Entity),
		registry: make(map[string]Location),
	}
}

// Insert adds an entity. It fails if the id is already registered
// anywhere in the bundle; the caller turns that into a diagnostic and
// keeps the first occurrence.
func (s *Store) Insert(e *Entity) error {
	if existing, ok := s.registry[e.ID]; ok {
		return fmt.Errorf("duplicate id '%s' (already used by %s at %s)", e.ID, existing.EntityType, existing.FilePath)
	}
	bucket, ok := s.buckets[e.EntityType]
	if !ok {
		bucket = make(map[string]*Entity)
		s.buckets[e.EntityType] = bucket
	}
	bucket[e.ID] = e
	s.registry[e.ID] = Location{EntityType: e.EntityType, ID: e.ID, FilePath: e.FilePath}
	return nil
}

// Get returns the entity with the given type and id.
func (s *Store) Get(entityType, id string) (*Entity, bool) {
	bucket, ok := s.buckets[entityType]
	if !ok {
		return nil, false
	}
	e, ok := bucket[id]
	return e, ok
}

// Resolve looks up an id in the global registry.
func (s *Store) Resolve(id string) (Location, bool) {
	loc, ok := s.registry[id]
	return loc, ok
}

// Remove deletes an entity from both its type bucket and the registry.
func (s *Store) Remove(entityType, id string) bool {
	bucket, ok := s.buckets[entityType]
	if !ok {
		return false
	}
	if _, ok := bucket[id]; !ok {
		return false
	}
	delete(bucket, id)
	delete(s.registry, id)
	return true
}

// EntitiesOf returns all entities of a type, sorted by id.
func (s *Store) EntitiesOf(entityType string) []*Entity {
	bucket := s.buckets[entityType]
	out := make([]*Entity, 0, len(bucket))
	for _, e := range bucket {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// IDsOf returns the sorted ids of a type.
func (s *Store) IDsOf(entityType string) []string {
	bucket := s.buckets[entityType]
	out := make([]string, 0, len(bucket))
	for id := range bucket {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Types returns the sorted entity types present in the store.
func (s *Store) Types() []string {
	out := make([]string, 0, len(s.buckets))
	for t := range s.buckets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of entities.
func (s *Store) Len() int {
	return len(s.registry)
}
