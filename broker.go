package nano

import (
	"context"
	"encoding/json"
	"fmt"
)

// MessageHandler consumes one delivered message body. Delivery is
// at-least-once: the same body may arrive more than once and handlers must
// tolerate it.
type MessageHandler func(ctx context.Context, body []byte) error

// Broker is the narrow publish/subscribe capability the pipeline runs on.
// A topic identifies the message stream; the routing key narrows delivery
// within it. Publish must be safe to call concurrently from multiple
// in-flight commits. Implementations surface connection and topology errors
// to the caller; a no-op implementation satisfies the contract by
// completing trivially and never invoking handlers.
type Broker interface {
	// Publish sends one message. Calling it twice sends two messages;
	// delivery semantics beyond that (duplicates, ordering) are properties
	// of the underlying transport and are not designed away here.
	Publish(ctx context.Context, topic, routingKey string, body []byte) error

	// Subscribe registers a handler invoked once per delivered message
	// matching the topic and routing key, declaring the underlying
	// topology as a side effect if needed. The subscription ends when ctx
	// is cancelled.
	Subscribe(ctx context.Context, topic, routingKey string, handler MessageHandler) error

	// Errors returns a channel where asynchronous delivery errors are
	// sent.
	Errors() <-chan error

	// Close shuts the broker down and waits for in-flight deliveries.
	Close() error
}

// PublishMessage publishes an arbitrary message body, deriving the topic
// from the body type's simple name and encoding it as JSON.
func PublishMessage[T any](ctx context.Context, b Broker, msg T, routingKey string) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", topicOf[T](), err)
	}
	return b.Publish(ctx, topicOf[T](), routingKey, body)
}

// SubscribeMessage registers a typed handler, deriving the topic from the
// body type's simple name and decoding each delivery as JSON.
func SubscribeMessage[T any](ctx context.Context, b Broker, routingKey string, fn func(ctx context.Context, msg T) error) error {
	return b.Subscribe(ctx, topicOf[T](), routingKey, func(ctx context.Context, body []byte) error {
		var msg T
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("decode %s message: %w", topicOf[T](), err)
		}
		return fn(ctx, msg)
	})
}

func topicOf[T any]() string {
	var zero T
	return TypeName(&zero)
}
