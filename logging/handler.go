package logging

import (
	"context"
	"log/slog"

	"github.com/nanokit/nano"
)

// WithHandlerLogging wraps an envelope handler so each apply is logged with
// the envelope fields carried in the context.
func WithHandlerLogging(logger *slog.Logger, next nano.EnvelopeHandler) nano.EnvelopeHandler {
	return nano.NewEnvelopeHandlerFunc(func(ctx context.Context, env nano.Envelope) error {
		l := logger.With(
			"envelope_id", nano.EnvelopeIDFromContext(ctx),
			"envelope_type", nano.EnvelopeTypeFromContext(ctx),
			"envelope_state", nano.EnvelopeStateFromContext(ctx).String(),
			"routing_key", nano.RoutingKeyFromContext(ctx),
		)

		l.DebugContext(ctx, "envelope apply started")

		err := next.Handle(ctx, env)

		if err != nil {
			l.ErrorContext(ctx, "error applying envelope", "error", err)
		} else {
			l.DebugContext(ctx, "envelope applied")
		}

		return err
	})
}
