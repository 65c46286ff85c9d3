package nano

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Dispatcher routes raw broker deliveries to the handler registered for the
// envelope's declared type. The handler map is supplied at construction;
// there is no process-wide registry.
//
// Dispatch is at-least-once and performs no deduplication. A handler error
// or an unknown type is logged and the message is treated as handled; the
// dispatcher never crashes the consume loop and never triggers redelivery
// itself.
type Dispatcher struct {
	handlers map[string]EnvelopeHandler
	log      *slog.Logger
}

type DispatcherOption func(*Dispatcher)

// WithDispatcherLogger sets the logger for dispatch warnings and handler
// failures.
func WithDispatcherLogger(log *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// NewDispatcher builds a dispatcher over an explicit handler map keyed by
// envelope type name. It panics on an empty key or nil handler: the map is
// assembled at startup and a broken entry is a programming error.
func NewDispatcher(handlers map[string]EnvelopeHandler, options ...DispatcherOption) *Dispatcher {
	m := make(map[string]EnvelopeHandler, len(handlers))
	for name, h := range handlers {
		if name == "" {
			panic("nano: dispatcher handler with empty type name")
		}
		if h == nil {
			panic(fmt.Sprintf("nano: nil handler for type %s", name))
		}
		m[name] = h
	}

	d := &Dispatcher{
		handlers: m,
		log:      slog.Default(),
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Dispatch decodes one raw message and invokes the matching handler. It
// always reports the message as handled: malformed bodies and unknown types
// are warnings, handler failures are errors, none of them propagate.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) error {
	env, err := DecodeEnvelope(body)
	if err != nil {
		d.log.Warn("discarding undecodable message", "error", err)
		return nil
	}

	handler, ok := d.handlers[env.Type]
	if !ok {
		d.log.Warn("no handler for envelope type",
			"envelope_type", env.Type,
			"envelope_id", env.ID)
		return nil
	}

	ctx = WithEnvelope(ctx, env)
	attrs := metric.WithAttributes(AttrEnvelopeType.String(env.Type))

	ConsumerHandled.Add(ctx, 1, attrs)
	start := time.Now()
	err = handler.Handle(ctx, env)
	ConsumerDuration.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

	if err != nil {
		ConsumerErrors.Add(ctx, 1, attrs)
		d.log.Error("envelope handler failed",
			"envelope_type", env.Type,
			"envelope_id", env.ID,
			"envelope_state", env.State.String(),
			"error", err)
	}
	return nil
}

// Bind subscribes the dispatcher to one topic per handled type, each with
// the routing key derived from the type name. Subscriptions end when ctx is
// cancelled.
func (d *Dispatcher) Bind(ctx context.Context, b Broker) error {
	for _, name := range d.Types() {
		key := RoutingKey(name)
		if err := b.Subscribe(ctx, key, key, d.Dispatch); err != nil {
			return fmt.Errorf("subscribe %s: %w", key, err)
		}
	}
	return nil
}

// Types returns the sorted list of envelope types this dispatcher handles.
func (d *Dispatcher) Types() []string {
	out := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
