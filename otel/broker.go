package otel

import (
	"context"

	"github.com/nanokit/nano"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ nano.Broker = (*TelemetryBroker)(nil)

// TelemetryBroker wraps a Broker with OpenTelemetry tracing. Publishes get
// a producer span; each delivered message gets a consumer span wrapping the
// subscription handler.
type TelemetryBroker struct {
	next nano.Broker
	cfg  *config
}

// WithBrokerTelemetry wraps a Broker with OpenTelemetry tracing.
func WithBrokerTelemetry(next nano.Broker, options ...Option) *TelemetryBroker {
	cfg := &config{}
	for _, o := range options {
		o.apply(cfg)
	}
	return &TelemetryBroker{next: next, cfg: cfg}
}

// Publish creates a producer span around the underlying publish.
func (t *TelemetryBroker) Publish(ctx context.Context, topic, routingKey string, body []byte) error {
	spanAttrs := t.attributes(ctx)
	spanAttrs = append(spanAttrs,
		nano.AttrTopic.String(topic),
		nano.AttrRoutingKey.String(routingKey),
	)

	ctx, span := tracer.Start(ctx, "broker.publish "+topic,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(spanAttrs...),
	)
	defer span.End()

	if err := t.next.Publish(ctx, topic, routingKey, body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// Subscribe wraps the handler so every delivery runs inside a consumer
// span.
func (t *TelemetryBroker) Subscribe(ctx context.Context, topic, routingKey string, handler nano.MessageHandler) error {
	return t.next.Subscribe(ctx, topic, routingKey, func(ctx context.Context, body []byte) error {
		spanAttrs := t.attributes(ctx)
		spanAttrs = append(spanAttrs,
			nano.AttrTopic.String(topic),
			nano.AttrRoutingKey.String(routingKey),
		)

		ctx, span := tracer.Start(ctx, "broker.receive "+topic,
			trace.WithSpanKind(trace.SpanKindConsumer),
			trace.WithAttributes(spanAttrs...),
		)
		defer span.End()

		if err := handler(ctx, body); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		span.SetStatus(codes.Ok, "")
		return nil
	})
}

// Errors returns the error channel from the underlying broker.
func (t *TelemetryBroker) Errors() <-chan error {
	return t.next.Errors()
}

// Close closes the underlying broker.
func (t *TelemetryBroker) Close() error {
	return t.next.Close()
}

func (t *TelemetryBroker) attributes(ctx context.Context) []attribute.KeyValue {
	out := append([]attribute.KeyValue(nil), t.cfg.Attributes...)
	if t.cfg.GetAttributes != nil {
		out = append(out, t.cfg.GetAttributes(ctx)...)
	}
	return out
}
