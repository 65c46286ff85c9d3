package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
)

// config holds the options for the telemetry decorators.
type config struct {
	// Attributes holds the default attributes for each span created by this
	// decorator.
	Attributes []attribute.KeyValue

	// GetAttributes is an optional function that can extract trace
	// attributes from the context and add them to the span.
	GetAttributes func(ctx context.Context) []attribute.KeyValue
}

// Option configures a telemetry decorator.
type Option interface {
	apply(*config)
}

type optionFunc func(*config)

func (o optionFunc) apply(c *config) {
	o(c)
}

// WithAttributes sets the default attributes for the spans created by a
// decorator.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return optionFunc(func(o *config) {
		o.Attributes = attrs
	})
}

// WithAttributeGetter extracts additional attributes from the context.
func WithAttributeGetter(fn func(ctx context.Context) []attribute.KeyValue) Option {
	return optionFunc(func(o *config) {
		o.GetAttributes = fn
	})
}
