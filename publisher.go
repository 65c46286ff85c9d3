package nano

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Publisher wraps a unit of work's commit so that envelopes for the commit's
// qualifying mutations are handed to the broker if and only if the commit
// provably succeeded.
//
// Publication is fire-and-forget with respect to the caller: Save returns as
// soon as the commit does, a detached goroutine performs the broker calls,
// and a publish failure never turns an already successful commit into a
// reported failure. Failures surface on Errors and in the log. The caller
// may observe a successful Save before the corresponding publish has
// completed or even started.
type Publisher struct {
	broker    Broker
	extractor *Extractor
	log       *slog.Logger

	wg   sync.WaitGroup
	errs chan error

	mu     sync.Mutex
	closed bool
}

type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger used for publish failures.
func WithPublisherLogger(log *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if log != nil {
			p.log = log
		}
	}
}

func NewPublisher(broker Broker, registry *Registry, options ...PublisherOption) *Publisher {
	if broker == nil {
		panic("nano: publisher requires a broker")
	}
	p := &Publisher{
		broker:    broker,
		extractor: NewExtractor(registry),
		log:       slog.Default(),
		errs:      make(chan error, 64),
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// Save captures the unit of work's change set, commits it, and on success
// schedules publication of one envelope per captured mutation. The capture
// happens strictly before the commit: the pending view is the only reliable
// place to observe Added/Deleted state, since trackers clear it once the
// commit lands.
//
// Commit faults and cancellation propagate unchanged, and suppress
// publication entirely. A cancellation arriving after the commit has
// succeeded does not retract anything.
func (p *Publisher) Save(ctx context.Context, uow UnitOfWork) error {
	if uow == nil {
		panic("nano: save with nil unit of work")
	}

	captured := p.extractor.Extract(uow.Pending())

	start := time.Now()
	if err := uow.Commit(ctx); err != nil {
		return err
	}
	SaveDuration.Record(ctx, float64(time.Since(start).Milliseconds()))
	SavesHandled.Add(ctx, 1)

	if len(captured) == 0 {
		return nil
	}

	// Detach from the caller's cancellation: the commit is durable, the
	// publish leg must not be cut short by a request context ending.
	p.wg.Add(1)
	go p.publish(context.WithoutCancel(ctx), captured)

	return nil
}

func (p *Publisher) publish(ctx context.Context, captured []Mutation) {
	defer p.wg.Done()

	for _, m := range captured {
		env, err := NewEnvelope(m)
		if err != nil {
			p.report(err)
			p.log.Error("dropping unmaterializable mutation",
				"type", m.Type.Name,
				"state", m.Kind.String(),
				"error", err)
			continue
		}

		body, err := env.Encode()
		if err != nil {
			p.report(err)
			continue
		}

		key := RoutingKey(env.Type)
		if err := p.broker.Publish(ctx, key, key, body); err != nil {
			perr := &PublishError{Topic: key, RoutingKey: key, Err: err}
			p.report(perr)
			PublishErrors.Add(ctx, 1, metric.WithAttributes(AttrEnvelopeType.String(env.Type)))
			p.log.Error("publish after commit failed",
				"topic", key,
				"routing_key", key,
				"envelope_id", env.ID,
				"envelope_type", env.Type,
				"envelope_state", env.State.String(),
				"error", err)
			continue
		}

		EnvelopesPublished.Add(ctx, 1, metric.WithAttributes(AttrEnvelopeType.String(env.Type)))
	}
}

func (p *Publisher) report(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.errs <- err:
	default:
		// Drop when full; the log line already carries the failure.
	}
}

// Errors returns the channel where publish-leg failures are sent.
func (p *Publisher) Errors() <-chan error {
	return p.errs
}

// Wait blocks until all publish goroutines scheduled so far have finished.
// Intended for shutdown and tests.
func (p *Publisher) Wait() {
	p.wg.Wait()
}

// Close waits for in-flight publishes and closes the error channel.
func (p *Publisher) Close() error {
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.errs)
	}
	return nil
}
