package nano

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nanokit/nano"

// Semantic attribute keys shared by the core metrics and the otel
// decorators.
const (
	AttrEnvelopeType  = attribute.Key("nano.envelope.type")
	AttrEnvelopeID    = attribute.Key("nano.envelope.id")
	AttrEnvelopeState = attribute.Key("nano.envelope.state")
	AttrRoutingKey    = attribute.Key("nano.routing.key")
	AttrTopic         = attribute.Key("nano.topic")
)

var (
	meter = otel.Meter(instrumentationName, metric.WithInstrumentationVersion(InstrumentationVersion))

	// Save metrics
	SavesHandled, _ = meter.Int64Counter(
		"nano.saves.handled",
		metric.WithDescription("Number of unit-of-work commits completed through the publisher"),
		metric.WithUnit("{commit}"),
	)

	SaveDuration, _ = meter.Float64Histogram(
		"nano.saves.duration",
		metric.WithDescription("Unit-of-work commit duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	// Publish-leg metrics
	EnvelopesPublished, _ = meter.Int64Counter(
		"nano.envelopes.published",
		metric.WithDescription("Number of envelopes handed to the broker after commit"),
		metric.WithUnit("{envelope}"),
	)

	PublishErrors, _ = meter.Int64Counter(
		"nano.publish.errors",
		metric.WithDescription("Number of broker publish failures after a successful commit"),
		metric.WithUnit("{error}"),
	)

	// Consumer metrics
	ConsumerHandled, _ = meter.Int64Counter(
		"nano.consumer.handled",
		metric.WithDescription("Number of envelopes dispatched to handlers"),
		metric.WithUnit("{envelope}"),
	)

	ConsumerDuration, _ = meter.Float64Histogram(
		"nano.consumer.duration",
		metric.WithDescription("Envelope handler duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)

	ConsumerErrors, _ = meter.Int64Counter(
		"nano.consumer.errors",
		metric.WithDescription("Number of envelope handler failures"),
		metric.WithUnit("{error}"),
	)
)
