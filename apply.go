package nano

import (
	"context"
	"log/slog"
)

// Applier is the idempotent apply handler: it reconstructs local replicas
// from delivered envelopes. Applying the same envelope N times has the same
// observable effect as applying it once, because both branches check the
// current local state before mutating.
//
// The applier writes through a plain ReplicaStore, never through a
// Publisher, so replicated mutations cannot re-enter the pipeline and
// publish again.
type Applier struct {
	registry *Registry
	store    ReplicaStore
	log      *slog.Logger
}

type ApplierOption func(*Applier)

// WithApplierLogger sets the logger for apply decisions and warnings.
func WithApplierLogger(log *slog.Logger) ApplierOption {
	return func(a *Applier) {
		if log != nil {
			a.log = log
		}
	}
}

func NewApplier(registry *Registry, store ReplicaStore, options ...ApplierOption) *Applier {
	if registry == nil {
		panic("nano: applier requires a registry")
	}
	if store == nil {
		panic("nano: applier requires a replica store")
	}
	a := &Applier{
		registry: registry,
		store:    store,
		log:      slog.Default(),
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// Handle applies one envelope to local state. A malformed or unknown
// envelope must not crash the consumer: unresolvable types and unparsable
// identities are logged as warnings and treated as no-ops. Store errors are
// returned so the dispatcher can log them.
func (a *Applier) Handle(ctx context.Context, env Envelope) error {
	t, ok := a.registry.Lookup(env.Type)
	if !ok {
		a.log.Warn("ignoring envelope for unknown type",
			"envelope_type", env.Type,
			"envelope_id", env.ID)
		return nil
	}

	id, err := ParseIdentity(t.Identity, env.ID)
	if err != nil {
		a.log.Warn("ignoring envelope with unparsable identity",
			"envelope_type", env.Type,
			"envelope_id", env.ID,
			"identity_kind", t.Identity.String(),
			"error", err)
		return nil
	}

	switch env.State {
	case Added:
		return a.applyAdded(ctx, t, id)
	case Deleted:
		return a.applyDeleted(ctx, t, id)
	default:
		// Modified, Unchanged and Detached are reserved; nothing to apply.
		return nil
	}
}

func (a *Applier) applyAdded(ctx context.Context, t Type, id Identity) error {
	found, _, err := a.store.Lookup(ctx, t, id)
	if err != nil {
		return err
	}
	if found {
		a.log.Debug("add already applied",
			"envelope_type", t.Name,
			"envelope_id", id.String())
		return nil
	}
	return a.store.Insert(ctx, t, id)
}

func (a *Applier) applyDeleted(ctx context.Context, t Type, id Identity) error {
	found, deleted, err := a.store.Lookup(ctx, t, id)
	if err != nil {
		return err
	}
	if !found || deleted {
		a.log.Debug("delete already applied",
			"envelope_type", t.Name,
			"envelope_id", id.String())
		return nil
	}
	return a.store.Remove(ctx, t, id)
}

// Handlers returns a dispatcher handler map with this applier registered
// for every published type in the registry.
func (a *Applier) Handlers() map[string]EnvelopeHandler {
	m := make(map[string]EnvelopeHandler)
	for _, name := range a.registry.PublishedNames() {
		m[name] = a
	}
	return m
}
