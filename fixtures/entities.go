// Package fixtures provides shared test doubles for the pipeline: sample
// entity types, a broker spy and failure-injecting units of work.
package fixtures

import (
	"github.com/google/uuid"

	"github.com/nanokit/nano"
)

// Widget is a published entity with a UUID identity.
type Widget struct {
	ID   uuid.UUID
	Name string
}

// Gadget is a published entity with a string identity.
type Gadget struct {
	Serial string
	Label  string
}

// Doodad is persisted but not published: mutations of it must never produce
// envelopes.
type Doodad struct {
	ID uuid.UUID
}

// NewRegistry builds a registry with Widget and Gadget published and Doodad
// registered without publication.
func NewRegistry() *nano.Registry {
	r := nano.NewRegistry()

	nano.Register[Widget](r, nano.Type{
		Name:     "Widget",
		Identity: nano.IdentityUUID,
		Publish:  true,
		ID: func(entity any) nano.Identity {
			return nano.UUIDIdentity(entity.(*Widget).ID)
		},
		New: func(id nano.Identity) any {
			parsed, _ := uuid.Parse(id.String())
			return &Widget{ID: parsed}
		},
	})

	nano.Register[Gadget](r, nano.Type{
		Name:     "Gadget",
		Identity: nano.IdentityString,
		Publish:  true,
		ID: func(entity any) nano.Identity {
			return nano.StringIdentity(entity.(*Gadget).Serial)
		},
		New: func(id nano.Identity) any {
			return &Gadget{Serial: id.String()}
		},
	})

	nano.Register[Doodad](r, nano.Type{
		Name:     "Doodad",
		Identity: nano.IdentityUUID,
		ID: func(entity any) nano.Identity {
			return nano.UUIDIdentity(entity.(*Doodad).ID)
		},
		New: func(id nano.Identity) any {
			parsed, _ := uuid.Parse(id.String())
			return &Doodad{ID: parsed}
		},
	})

	return r
}
