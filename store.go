package nano

import "context"

// UnitOfWork is the transactional boundary the pipeline wraps: a group of
// entity mutations committed as one atomic persistence operation, exposing
// its change-tracker state for capture before the commit runs.
type UnitOfWork interface {
	// Pending returns a snapshot of the currently tracked mutations. The
	// snapshot is only meaningful before Commit: implementations clear
	// tracked state once the commit succeeds.
	Pending() []Mutation

	// Commit atomically persists the tracked mutations. Faults and
	// cancellation are returned unchanged to the caller.
	Commit(ctx context.Context) error
}

// ReplicaStore is the consumer-side persistence boundary the apply handler
// mutates. The soft-delete discriminator lives on the stored entity itself;
// Lookup reports it so a Deleted envelope can be recognized as already
// applied.
type ReplicaStore interface {
	// Lookup reports whether an entity of the given type exists under the
	// identity, and whether it is marked deleted.
	Lookup(ctx context.Context, t Type, id Identity) (found bool, deleted bool, err error)

	// Insert persists a minimal stub entity with only the identity
	// populated.
	Insert(ctx context.Context, t Type, id Identity) error

	// Remove marks the entity deleted (or removes it, per local policy).
	Remove(ctx context.Context, t Type, id Identity) error
}
