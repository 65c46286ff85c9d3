package nano

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Type describes one entity type known to the pipeline. All entity types a
// unit of work touches must be registered so their identity representation
// is resolved once, up front; only types registered with Publish set take
// part in eventing.
type Type struct {
	// Name is the stable, globally unique name of the entity type. It must
	// be a simple name (no package qualifier): it doubles as the broker
	// topic and routing key, and publisher and consumer must derive the
	// identical key from it.
	Name string

	// Identity declares how identities of this type are serialized and
	// parsed.
	Identity IdentityKind

	// ID extracts the identity from an entity value.
	ID func(entity any) Identity

	// New constructs a minimal stub entity carrying only the identity. Used
	// by the consumer side to materialize a replica for an Added envelope.
	New func(id Identity) any

	// Publish marks the type as event-publishing. Mutations of types
	// without it are persisted normally but never produce envelopes.
	Publish bool
}

// Registry holds the entity types an application has opted in to the
// pipeline. It replaces marker-attribute scanning: types are registered
// explicitly at startup and the registry is passed to the components that
// need it.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]Type
	byGo    map[reflect.Type]Type
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Type),
		byGo:   make(map[reflect.Type]Type),
	}
}

// Register adds an entity type for the Go type T. It panics on invalid
// descriptors or duplicate names; registration runs at startup and a bad
// descriptor is a programming error.
func Register[T any](r *Registry, t Type) {
	if t.Name == "" {
		panic("nano: register entity type with empty name")
	}
	if strings.ContainsAny(t.Name, ". /") {
		panic(fmt.Sprintf("nano: entity type name %q must be a simple name", t.Name))
	}
	if t.ID == nil {
		panic(fmt.Sprintf("nano: entity type %s has no identity accessor", t.Name))
	}
	if t.New == nil {
		panic(fmt.Sprintf("nano: entity type %s has no stub factory", t.Name))
	}

	goType := reflect.TypeOf((*T)(nil)).Elem()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[t.Name]; exists {
		panic(fmt.Sprintf("nano: entity type already registered: %s", t.Name))
	}
	r.byName[t.Name] = t
	r.byGo[goType] = t
}

// Lookup resolves a type descriptor by its stable name.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// TypeOf resolves the descriptor for an entity value. Pointer entities
// resolve to their element type's descriptor.
func (r *Registry) TypeOf(entity any) (Type, bool) {
	if entity == nil {
		return Type{}, false
	}
	goType := reflect.TypeOf(entity)
	for goType.Kind() == reflect.Pointer {
		goType = goType.Elem()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byGo[goType]
	return t, ok
}

// Names returns the registered type names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PublishedNames returns the sorted names of types that take part in
// eventing. The consumer side subscribes to exactly this set.
func (r *Registry) PublishedNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.byName))
	for name, t := range r.byName {
		if t.Publish {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// TypeName returns the simple name of a value's Go type, following
// pointers. Useful as a default Type.Name for registration.
func TypeName(v any) string {
	if v == nil {
		return ""
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
