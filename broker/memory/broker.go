// Package memory provides an in-process Broker for tests, embedded use and
// single-process deployments. Delivery is per-subscription serial and
// concurrent across subscriptions; a full subscriber buffer drops the
// message and reports it on the error channel.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nanokit/nano"
)

type subscriber struct {
	topic      string
	routingKey string
	handler    nano.MessageHandler
	deliveries chan []byte
	cancel     context.CancelFunc
}

// Broker is an in-process implementation of nano.Broker. Publish fans a
// message out to every subscription whose topic and routing key match; each
// subscription drains its own buffered channel on a dedicated worker.
type Broker struct {
	mu         sync.RWMutex
	subs       []*subscriber
	closed     bool
	errs       chan error
	wg         sync.WaitGroup
	bufferSize int
}

var _ nano.Broker = (*Broker)(nil)

// New constructs a broker with the given per-subscription buffer size.
func New(bufferSize int) *Broker {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Broker{
		errs:       make(chan error, 64),
		bufferSize: bufferSize,
	}
}

// Publish delivers the body to all matching subscriptions. Safe to call
// concurrently from multiple in-flight commits.
func (b *Broker) Publish(ctx context.Context, topic, routingKey string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return errors.New("broker is closed")
	}

	for _, s := range b.subs {
		if s.topic != topic || s.routingKey != routingKey {
			continue
		}
		select {
		case s.deliveries <- body:
		default:
			b.reportLocked(fmt.Errorf("dropping message for slow subscriber on %s (key %s)", topic, routingKey))
		}
	}
	return nil
}

// Subscribe registers a handler for the topic and routing key and starts
// its delivery worker. The subscription is removed when ctx ends.
func (b *Broker) Subscribe(ctx context.Context, topic, routingKey string, handler nano.MessageHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return errors.New("broker is closed")
	}

	workerCtx, cancel := context.WithCancel(context.Background())
	s := &subscriber{
		topic:      topic,
		routingKey: routingKey,
		handler:    handler,
		deliveries: make(chan []byte, b.bufferSize),
		cancel:     cancel,
	}
	b.subs = append(b.subs, s)

	b.wg.Add(1)
	go b.runSubscriber(workerCtx, s)

	go func() {
		<-ctx.Done()
		b.removeSubscriber(s)
	}()

	return nil
}

// runSubscriber processes deliveries for a single subscription, one at a
// time.
func (b *Broker) runSubscriber(ctx context.Context, s *subscriber) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case body, ok := <-s.deliveries:
			if !ok {
				return
			}
			if err := s.handler(ctx, body); err != nil {
				b.report(fmt.Errorf("subscriber on %s (key %s): %w", s.topic, s.routingKey, err))
			}
		}
	}
}

func (b *Broker) removeSubscriber(target *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == target {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			s.cancel()
			close(s.deliveries)
			return
		}
	}
}

func (b *Broker) report(err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	b.reportLocked(err)
}

func (b *Broker) reportLocked(err error) {
	if b.closed {
		return
	}
	select {
	case b.errs <- err:
	default:
		// Drop error if channel full
	}
}

func (b *Broker) Errors() <-chan error {
	return b.errs
}

// Close shuts down all subscriptions and waits for their workers.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	for _, s := range subs {
		s.cancel()
		close(s.deliveries)
	}
	b.mu.Unlock()

	b.wg.Wait()
	close(b.errs)
	return nil
}
