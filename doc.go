// Package nano implements an entity-change eventing pipeline: mutations made
// inside a unit of work are captured at save time, turned into immutable
// envelopes after the commit has provably succeeded, published through a
// broker, and applied idempotently on the consumer side to reconstruct remote
// replicas of the entities.
//
// The pipeline is a dual write, not a distributed transaction. Publication
// happens on a detached goroutine after the local commit returns, so a crash
// or broker outage between commit and publish loses the event; there is no
// outbox. Consumers must therefore tolerate both duplicate delivery (the
// apply handler is idempotent) and missing events (replicas converge only on
// the next mutation of the same entity).
//
// The wire format of an envelope is a JSON object with exactly three fields:
// id, type and state. There is no version field; schema evolution of the
// envelope is unsolved.
package nano

// InstrumentationVersion is reported alongside telemetry emitted by this
// module and its otel decorators.
const InstrumentationVersion = "0.1.0"
