// Package memory provides a map-backed entity store implementing both sides
// of the pipeline's persistence boundary: a unit of work with a change
// tracker on the producer side, and a replica store with a soft-delete flag
// on the consumer side.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/nanokit/nano"
)

type row struct {
	entity  any
	deleted bool
}

// Store holds entities keyed by type name and wire-form identity.
type Store struct {
	registry *nano.Registry

	mu   sync.RWMutex
	rows map[string]map[string]*row
}

var _ nano.ReplicaStore = (*Store)(nil)

func NewStore(registry *nano.Registry) *Store {
	if registry == nil {
		panic("memory: store requires a registry")
	}
	return &Store{
		registry: registry,
		rows:     make(map[string]map[string]*row),
	}
}

// NewUnitOfWork opens a fresh transactional boundary over the store.
func (s *Store) NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{store: s}
}

// Lookup implements nano.ReplicaStore.
func (s *Store) Lookup(ctx context.Context, t nano.Type, id nano.Identity) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[t.Name][id.String()]
	if !ok {
		return false, false, nil
	}
	return true, r.deleted, nil
}

// Insert implements nano.ReplicaStore by materializing a stub entity.
func (s *Store) Insert(ctx context.Context, t nano.Type, id nano.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(t.Name, id.String(), &row{entity: t.New(id)})
	return nil
}

// Remove implements nano.ReplicaStore with a soft delete: the row stays,
// flagged, so a redelivered Deleted envelope is recognized as applied.
func (s *Store) Remove(ctx context.Context, t nano.Type, id nano.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rows[t.Name][id.String()]; ok {
		r.deleted = true
	}
	return nil
}

// Get returns the stored entity, if present and not soft-deleted.
func (s *Store) Get(typeName, id string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rows[typeName][id]
	if !ok || r.deleted {
		return nil, false
	}
	return r.entity, true
}

// Count returns the number of live rows of a type.
func (s *Store) Count(typeName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, r := range s.rows[typeName] {
		if !r.deleted {
			n++
		}
	}
	return n
}

func (s *Store) put(typeName, id string, r *row) {
	if s.rows[typeName] == nil {
		s.rows[typeName] = make(map[string]*row)
	}
	s.rows[typeName][id] = r
}

// UnitOfWork stages mutations against the store and applies them atomically
// at Commit. The pending view clears once the commit succeeds, so callers
// observing Added/Deleted state must capture it first.
type UnitOfWork struct {
	store *Store

	mu      sync.Mutex
	pending []nano.Mutation
}

var _ nano.UnitOfWork = (*UnitOfWork)(nil)

// Add tracks the entity for insertion. The entity's type must be
// registered so its identity can be resolved.
func (u *UnitOfWork) Add(entity any) error {
	return u.track(nano.Added, entity)
}

// Update tracks the entity for modification.
func (u *UnitOfWork) Update(entity any) error {
	return u.track(nano.Modified, entity)
}

// Delete tracks the entity for removal.
func (u *UnitOfWork) Delete(entity any) error {
	return u.track(nano.Deleted, entity)
}

func (u *UnitOfWork) track(kind nano.Kind, entity any) error {
	t, ok := u.store.registry.TypeOf(entity)
	if !ok {
		return fmt.Errorf("memory: unregistered entity type %s", nano.TypeName(entity))
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.pending = append(u.pending, nano.Mutation{
		Kind:   kind,
		Type:   t,
		ID:     t.ID(entity),
		Entity: entity,
	})
	return nil
}

// Pending implements nano.UnitOfWork.
func (u *UnitOfWork) Pending() []nano.Mutation {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]nano.Mutation, len(u.pending))
	copy(out, u.pending)
	return out
}

// Commit applies the staged mutations under one lock acquisition and clears
// the pending view. Cancellation is honored before any state changes.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	for _, m := range u.pending {
		id := m.ID.String()
		switch m.Kind {
		case nano.Added, nano.Modified:
			u.store.put(m.Type.Name, id, &row{entity: m.Entity})
		case nano.Deleted:
			if r, ok := u.store.rows[m.Type.Name][id]; ok {
				r.deleted = true
			}
		}
	}

	u.pending = nil
	return nil
}
