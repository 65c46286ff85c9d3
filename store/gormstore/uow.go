package gormstore

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/nanokit/nano"
)

type stagedOp struct {
	mutation nano.Mutation
	run      func(tx *gorm.DB) error
}

// UnitOfWork stages gorm operations and executes them inside a single
// database transaction at Commit. The change-tracker view clears once the
// commit succeeds; capture it before committing.
type UnitOfWork struct {
	store *Store

	mu  sync.Mutex
	ops []stagedOp
}

var _ nano.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork opens a fresh transactional boundary over the store.
func (s *Store) NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{store: s}
}

// Add stages an insert of the entity.
func (u *UnitOfWork) Add(entity any) error {
	return u.track(nano.Added, entity, func(tx *gorm.DB) error {
		return tx.Create(entity).Error
	})
}

// Update stages a full save of the entity.
func (u *UnitOfWork) Update(entity any) error {
	return u.track(nano.Modified, entity, func(tx *gorm.DB) error {
		return tx.Save(entity).Error
	})
}

// Delete stages a delete of the entity. With a gorm.DeletedAt field on the
// model this is a soft delete.
func (u *UnitOfWork) Delete(entity any) error {
	return u.track(nano.Deleted, entity, func(tx *gorm.DB) error {
		return tx.Delete(entity).Error
	})
}

func (u *UnitOfWork) track(kind nano.Kind, entity any, run func(tx *gorm.DB) error) error {
	t, ok := u.store.registry.TypeOf(entity)
	if !ok {
		return fmt.Errorf("gormstore: unregistered entity type %s", nano.TypeName(entity))
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.ops = append(u.ops, stagedOp{
		mutation: nano.Mutation{
			Kind:   kind,
			Type:   t,
			ID:     t.ID(entity),
			Entity: entity,
		},
		run: run,
	})
	return nil
}

// Pending implements nano.UnitOfWork.
func (u *UnitOfWork) Pending() []nano.Mutation {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]nano.Mutation, 0, len(u.ops))
	for _, op := range u.ops {
		out = append(out, op.mutation)
	}
	return out
}

// Commit runs the staged operations in one transaction and clears the
// pending view on success. Faults and cancellation propagate unchanged.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	err := u.store.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range u.ops {
			if err := op.run(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	u.ops = nil
	return nil
}
