package fixtures

import (
	"context"
	"sync"

	"github.com/nanokit/nano"
)

// Publication captures details of a Publish call.
type Publication struct {
	Topic      string
	RoutingKey string
	Body       []byte
}

// Subscription captures details of a Subscribe call.
type Subscription struct {
	Topic      string
	RoutingKey string
	Handler    nano.MessageHandler
}

// BrokerSpy is a configurable mock Broker for testing. It records publishes
// and subscriptions and allows injecting failures.
type BrokerSpy struct {
	mu sync.Mutex

	// Function overrides
	PublishFn   func(ctx context.Context, topic, routingKey string, body []byte) error
	SubscribeFn func(ctx context.Context, topic, routingKey string, handler nano.MessageHandler) error

	// Call tracking
	PublishCalls   int
	SubscribeCalls int
	CloseCalls     int

	// Captured calls
	Publications  []Publication
	Subscriptions []Subscription

	// Error injection
	publishErr   error
	subscribeErr error
	errChan      chan error
	closed       bool
}

var _ nano.Broker = (*BrokerSpy)(nil)

// NewBrokerSpy creates a new BrokerSpy.
func NewBrokerSpy() *BrokerSpy {
	return &BrokerSpy{
		errChan: make(chan error, 10),
	}
}

// FailOnPublish configures the broker to return an error on Publish.
func (b *BrokerSpy) FailOnPublish(err error) *BrokerSpy {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.publishErr = err
	return b
}

// FailOnSubscribe configures the broker to return an error on Subscribe.
func (b *BrokerSpy) FailOnSubscribe(err error) *BrokerSpy {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribeErr = err
	return b
}

// Publish implements Broker.Publish.
func (b *BrokerSpy) Publish(ctx context.Context, topic, routingKey string, body []byte) error {
	b.mu.Lock()
	b.PublishCalls++
	b.Publications = append(b.Publications, Publication{
		Topic:      topic,
		RoutingKey: routingKey,
		Body:       append([]byte(nil), body...),
	})
	publishFn := b.PublishFn
	publishErr := b.publishErr
	b.mu.Unlock()

	if publishFn != nil {
		return publishFn(ctx, topic, routingKey, body)
	}
	return publishErr
}

// Subscribe implements Broker.Subscribe.
func (b *BrokerSpy) Subscribe(ctx context.Context, topic, routingKey string, handler nano.MessageHandler) error {
	b.mu.Lock()
	b.SubscribeCalls++
	b.Subscriptions = append(b.Subscriptions, Subscription{
		Topic:      topic,
		RoutingKey: routingKey,
		Handler:    handler,
	})
	subscribeFn := b.SubscribeFn
	subscribeErr := b.subscribeErr
	b.mu.Unlock()

	if subscribeFn != nil {
		return subscribeFn(ctx, topic, routingKey, handler)
	}
	return subscribeErr
}

// Errors implements Broker.Errors.
func (b *BrokerSpy) Errors() <-chan error {
	return b.errChan
}

// Close implements Broker.Close.
func (b *BrokerSpy) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.CloseCalls++
	if !b.closed {
		b.closed = true
		close(b.errChan)
	}
	return nil
}

// PublicationCount returns the number of recorded publishes.
func (b *BrokerSpy) PublicationCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Publications)
}

// LastPublication returns the most recent publish, or a zero Publication.
func (b *BrokerSpy) LastPublication() Publication {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Publications) == 0 {
		return Publication{}
	}
	return b.Publications[len(b.Publications)-1]
}

// Reset clears all call counts and captured calls.
func (b *BrokerSpy) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.PublishCalls = 0
	b.SubscribeCalls = 0
	b.Publications = nil
	b.Subscriptions = nil
	b.publishErr = nil
	b.subscribeErr = nil
}
