package fixtures

import (
	"context"
	"sync"

	"github.com/nanokit/nano"
)

// FailingUnitOfWork wraps a unit of work so its Commit fails with the given
// error while its pending view stays intact, simulating a storage fault at
// commit time.
type FailingUnitOfWork struct {
	Inner     nano.UnitOfWork
	CommitErr error

	mu          sync.Mutex
	CommitCalls int
}

var _ nano.UnitOfWork = (*FailingUnitOfWork)(nil)

func (u *FailingUnitOfWork) Pending() []nano.Mutation {
	return u.Inner.Pending()
}

func (u *FailingUnitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	u.CommitCalls++
	u.mu.Unlock()

	if u.CommitErr != nil {
		return u.CommitErr
	}
	return u.Inner.Commit(ctx)
}

// ReplicaStoreSpy is a configurable mock ReplicaStore for testing apply
// behavior without a real store.
type ReplicaStoreSpy struct {
	mu sync.Mutex

	// Function overrides
	LookupFn func(ctx context.Context, t nano.Type, id nano.Identity) (bool, bool, error)
	InsertFn func(ctx context.Context, t nano.Type, id nano.Identity) error
	RemoveFn func(ctx context.Context, t nano.Type, id nano.Identity) error

	// Call tracking
	LookupCalls int
	InsertCalls int
	RemoveCalls int
}

var _ nano.ReplicaStore = (*ReplicaStoreSpy)(nil)

func (s *ReplicaStoreSpy) Lookup(ctx context.Context, t nano.Type, id nano.Identity) (bool, bool, error) {
	s.mu.Lock()
	s.LookupCalls++
	s.mu.Unlock()

	if s.LookupFn != nil {
		return s.LookupFn(ctx, t, id)
	}
	return false, false, nil
}

func (s *ReplicaStoreSpy) Insert(ctx context.Context, t nano.Type, id nano.Identity) error {
	s.mu.Lock()
	s.InsertCalls++
	s.mu.Unlock()

	if s.InsertFn != nil {
		return s.InsertFn(ctx, t, id)
	}
	return nil
}

func (s *ReplicaStoreSpy) Remove(ctx context.Context, t nano.Type, id nano.Identity) error {
	s.mu.Lock()
	s.RemoveCalls++
	s.mu.Unlock()

	if s.RemoveFn != nil {
		return s.RemoveFn(ctx, t, id)
	}
	return nil
}
