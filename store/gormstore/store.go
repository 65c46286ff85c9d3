// Package gormstore adapts a gorm database to the pipeline's persistence
// boundary: a staged unit of work committed in one transaction on the
// producer side, and a soft-deleting replica store on the consumer side.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/nanokit/nano"
)

// Store binds a gorm handle to the entity registry. Consumer-side types
// additionally need a model factory registered so lookups and inserts know
// which table to touch.
type Store struct {
	db       *gorm.DB
	registry *nano.Registry

	mu     sync.RWMutex
	models map[string]func() Model
}

var _ nano.ReplicaStore = (*Store)(nil)

func New(db *gorm.DB, registry *nano.Registry) *Store {
	if db == nil {
		panic("gormstore: store requires a gorm handle")
	}
	if registry == nil {
		panic("gormstore: store requires a registry")
	}
	return &Store{
		db:       db,
		registry: registry,
		models:   make(map[string]func() Model),
	}
}

// RegisterModel maps an entity type name to its gorm model factory. Panics
// on duplicates; model registration runs at startup.
func (s *Store) RegisterModel(name string, factory func() Model) {
	if name == "" || factory == nil {
		panic("gormstore: model registration needs a name and a factory")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.models[name]; exists {
		panic(fmt.Sprintf("gormstore: model already registered: %s", name))
	}
	s.models[name] = factory
}

func (s *Store) model(name string) (Model, error) {
	s.mu.RLock()
	factory, ok := s.models[name]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("gormstore: no model registered for %s", name)
	}
	return factory(), nil
}

// Lookup implements nano.ReplicaStore. The query is unscoped so a soft
// deleted row is found and reported as deleted rather than invisible.
func (s *Store) Lookup(ctx context.Context, t nano.Type, id nano.Identity) (bool, bool, error) {
	m, err := s.model(t.Name)
	if err != nil {
		return false, false, err
	}

	err = s.db.WithContext(ctx).Unscoped().Where("id = ?", id.String()).First(m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("gormstore: lookup %s %s: %w", t.Name, id, err)
	}
	return true, m.ReplicaDeleted(), nil
}

// Insert implements nano.ReplicaStore by creating a stub row carrying only
// the identity.
func (s *Store) Insert(ctx context.Context, t nano.Type, id nano.Identity) error {
	m, err := s.model(t.Name)
	if err != nil {
		return err
	}
	m.SetReplicaID(id.String())

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("gormstore: insert %s %s: %w", t.Name, id, err)
	}
	return nil
}

// Remove implements nano.ReplicaStore with gorm's soft delete.
func (s *Store) Remove(ctx context.Context, t nano.Type, id nano.Identity) error {
	m, err := s.model(t.Name)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(m).Error; err != nil {
		return fmt.Errorf("gormstore: remove %s %s: %w", t.Name, id, err)
	}
	return nil
}
