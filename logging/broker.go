// Package logging provides slog middleware for the pipeline's broker and
// handler surfaces.
package logging

import (
	"context"
	"log/slog"

	"github.com/nanokit/nano"
)

type loggingBroker struct {
	next   nano.Broker
	logger *slog.Logger
}

var _ nano.Broker = (*loggingBroker)(nil)

// WithBrokerLogging wraps a Broker so every publish and subscription is
// logged with its topic and routing key.
func WithBrokerLogging(logger *slog.Logger, next nano.Broker) nano.Broker {
	return &loggingBroker{next: next, logger: logger}
}

func (b *loggingBroker) Publish(ctx context.Context, topic, routingKey string, body []byte) error {
	err := b.next.Publish(ctx, topic, routingKey, body)
	if err != nil {
		b.logger.ErrorContext(ctx, "publish failed",
			"topic", topic,
			"routing_key", routingKey,
			"error", err)
		return err
	}
	b.logger.InfoContext(ctx, "message published",
		"topic", topic,
		"routing_key", routingKey,
		"bytes", len(body))
	return nil
}

func (b *loggingBroker) Subscribe(ctx context.Context, topic, routingKey string, handler nano.MessageHandler) error {
	err := b.next.Subscribe(ctx, topic, routingKey, handler)
	if err != nil {
		b.logger.ErrorContext(ctx, "subscribe failed",
			"topic", topic,
			"routing_key", routingKey,
			"error", err)
		return err
	}
	b.logger.InfoContext(ctx, "subscription established",
		"topic", topic,
		"routing_key", routingKey)
	return nil
}

func (b *loggingBroker) Errors() <-chan error {
	return b.next.Errors()
}

func (b *loggingBroker) Close() error {
	return b.next.Close()
}
