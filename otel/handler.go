package otel

import (
	"context"

	"github.com/nanokit/nano"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// WithHandlerTelemetry wraps an envelope handler so each apply runs inside
// an internal span carrying the envelope attributes.
func WithHandlerTelemetry(next nano.EnvelopeHandler, options ...Option) nano.EnvelopeHandler {
	cfg := &config{}
	for _, o := range options {
		o.apply(cfg)
	}

	return nano.NewEnvelopeHandlerFunc(func(ctx context.Context, env nano.Envelope) error {
		attrs := append([]attribute.KeyValue(nil), cfg.Attributes...)
		if cfg.GetAttributes != nil {
			attrs = append(attrs, cfg.GetAttributes(ctx)...)
		}
		attrs = append(attrs,
			nano.AttrEnvelopeType.String(env.Type),
			nano.AttrEnvelopeID.String(env.ID),
			nano.AttrEnvelopeState.String(env.State.String()),
		)

		ctx, span := tracer.Start(ctx, "envelope.apply "+env.Type,
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(attrs...),
		)
		defer span.End()

		if err := next.Handle(ctx, env); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	})
}
