package nano

// Extractor selects, from a unit of work's pending mutations, the ones that
// require an event: mutations of a published type whose kind is Added or
// Deleted. Everything else is silently excluded; extraction itself is a
// query over in-memory state and never fails.
type Extractor struct {
	registry *Registry
}

// NewExtractor panics on a nil registry: wiring the extractor without one
// is a programming error, not a recoverable condition.
func NewExtractor(registry *Registry) *Extractor {
	if registry == nil {
		panic("nano: extractor requires a registry")
	}
	return &Extractor{registry: registry}
}

// Extract must be called on the pending view immediately before the
// physical commit proceeds; trackers clear Added/Deleted state once the
// commit lands. Iteration order of the result carries no meaning.
func (e *Extractor) Extract(pending []Mutation) []Mutation {
	var out []Mutation
	for _, m := range pending {
		if m.Kind != Added && m.Kind != Deleted {
			continue
		}
		if m.Type.Name == "" || !m.Type.Publish {
			continue
		}
		if _, ok := e.registry.Lookup(m.Type.Name); !ok {
			continue
		}
		out = append(out, m)
	}
	return out
}
