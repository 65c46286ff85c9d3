package nano

import "context"

// EnvelopeHandler processes one delivered envelope. Handlers see the same
// envelope more than once under broker redelivery; deduplication belongs to
// the handler, because only it knows the domain-level idempotency key.
type EnvelopeHandler interface {
	Handle(ctx context.Context, env Envelope) error
}

// NewEnvelopeHandlerFunc wraps a plain function as an EnvelopeHandler.
func NewEnvelopeHandlerFunc(fn func(ctx context.Context, env Envelope) error) EnvelopeHandler {
	return envelopeHandlerFunc(fn)
}

type envelopeHandlerFunc func(ctx context.Context, env Envelope) error

func (h envelopeHandlerFunc) Handle(ctx context.Context, env Envelope) error {
	return h(ctx, env)
}
