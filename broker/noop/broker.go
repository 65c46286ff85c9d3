// Package noop provides the Broker used when eventing is disabled: every
// operation completes trivially and no handler is ever invoked.
package noop

import (
	"context"

	"github.com/nanokit/nano"
)

// Broker satisfies nano.Broker without doing anything.
type Broker struct {
	errs chan error
}

var _ nano.Broker = (*Broker)(nil)

func New() *Broker {
	return &Broker{errs: make(chan error)}
}

func (b *Broker) Publish(ctx context.Context, topic, routingKey string, body []byte) error {
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, topic, routingKey string, handler nano.MessageHandler) error {
	return nil
}

func (b *Broker) Errors() <-chan error {
	return b.errs
}

func (b *Broker) Close() error {
	close(b.errs)
	return nil
}
