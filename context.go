package nano

import "context"

type ctxKey string

const (
	envelopeIDKey    ctxKey = "envelopeID"
	envelopeTypeKey  ctxKey = "envelopeType"
	envelopeStateKey ctxKey = "envelopeState"
	routingKeyKey    ctxKey = "routingKey"
)

// WithEnvelope adds the envelope's fields to the context so middleware and
// handlers can report them without threading the envelope everywhere.
func WithEnvelope(ctx context.Context, env Envelope) context.Context {
	ctx = context.WithValue(ctx, envelopeIDKey, env.ID)
	ctx = context.WithValue(ctx, envelopeTypeKey, env.Type)
	ctx = context.WithValue(ctx, envelopeStateKey, env.State)
	ctx = context.WithValue(ctx, routingKeyKey, RoutingKey(env.Type))
	return ctx
}

// EnvelopeIDFromContext returns the envelope id or "" if not present.
func EnvelopeIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(envelopeIDKey).(string); ok {
		return v
	}
	return ""
}

// EnvelopeTypeFromContext returns the envelope type name or "" if not present.
func EnvelopeTypeFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(envelopeTypeKey).(string); ok {
		return v
	}
	return ""
}

// EnvelopeStateFromContext returns the envelope state or Detached if not present.
func EnvelopeStateFromContext(ctx context.Context) Kind {
	if v, ok := ctx.Value(envelopeStateKey).(Kind); ok {
		return v
	}
	return Detached
}

// RoutingKeyFromContext returns the routing key or "" if not present.
func RoutingKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(routingKeyKey).(string); ok {
		return v
	}
	return ""
}
