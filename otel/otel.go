// Package otel provides OpenTelemetry decorators for the pipeline: a Broker
// wrapper spanning publishes and deliveries, and an envelope-handler wrapper
// spanning applies.
package otel

import (
	"github.com/nanokit/nano"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/nanokit/nano/otel"

var tracer = otel.Tracer(instrumentationName, trace.WithInstrumentationVersion(nano.InstrumentationVersion))
