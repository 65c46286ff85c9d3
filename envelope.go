package nano

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the immutable unit transmitted through the broker: the wire
// record of one entity mutation. Its JSON form has exactly three fields.
type Envelope struct {
	// ID is the entity identity in wire (string) form. The native identity
	// type is recovered consumer-side from the target type's declared
	// identity kind.
	ID string `json:"id"`

	// Type is the stable name of the entity type, used by the consumer to
	// resolve the local type and handler.
	Type string `json:"type"`

	// State is the mutation kind at commit time.
	State Kind `json:"state"`
}

// NewEnvelope materializes a tracked mutation into an envelope. It is pure
// and total for qualifying mutations: given a mutation with a resolvable
// type and identity it always succeeds, and it fails fast on an empty
// identity or type name since those indicate a broken tracker.
func NewEnvelope(m Mutation) (Envelope, error) {
	if m.Type.Name == "" {
		return Envelope{}, fmt.Errorf("materialize %s mutation: empty type name", m.Kind)
	}
	if m.ID.IsZero() {
		return Envelope{}, fmt.Errorf("materialize %s mutation of %s: empty identity", m.Kind, m.Type.Name)
	}
	return Envelope{ID: m.ID.String(), Type: m.Type.Name, State: m.Kind}, nil
}

// Validate checks the envelope invariants shared by both ends of the wire.
func (e Envelope) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("envelope with empty id")
	}
	if e.Type == "" {
		return fmt.Errorf("envelope with empty type")
	}
	return nil
}

// Encode serializes the envelope to its wire JSON form.
func (e Envelope) Encode() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// DecodeEnvelope parses and validates a wire envelope.
func DecodeEnvelope(body []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(body, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// MarshalJSON writes the mutation kind as its wire name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON reads the wire name of a mutation kind.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// RoutingKey derives the broker routing key for an entity type name. Both
// ends must derive the identical key from the same type for delivery to
// occur, so the derivation lives in exactly one place: the simple name,
// with any qualifier or pointer marker stripped.
func RoutingKey(typeName string) string {
	name := strings.TrimPrefix(typeName, "*")
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
