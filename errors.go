package nano

import (
	"errors"
	"fmt"
)

// ErrDuplicateHandler is reported when two handlers are registered for the
// same envelope type.
var ErrDuplicateHandler = errors.New("duplicate handler")

// UnknownTypeError marks an envelope whose declared type has no local
// registration. Consumers treat it as a warning, never a crash.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown entity type %q", e.Name)
}

// PublishError wraps a broker failure on the publish leg. It is only ever
// observed through the publisher's error channel and logs; it never reaches
// the caller of Save.
type PublishError struct {
	Topic      string
	RoutingKey string
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish to %s (key %s): %v", e.Topic, e.RoutingKey, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
