package noop

import (
	"context"
	"testing"
)

func TestNoopBroker(t *testing.T) {
	b := New()

	if err := b.Publish(context.Background(), "Widget", "Widget", []byte("{}")); err != nil {
		t.Errorf("publish: %v", err)
	}

	invoked := false
	err := b.Subscribe(context.Background(), "Widget", "Widget", func(ctx context.Context, body []byte) error {
		invoked = true
		return nil
	})
	if err != nil {
		t.Errorf("subscribe: %v", err)
	}
	if err := b.Publish(context.Background(), "Widget", "Widget", []byte("{}")); err != nil {
		t.Errorf("publish: %v", err)
	}
	if invoked {
		t.Error("noop broker must never invoke handlers")
	}

	if err := b.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if _, open := <-b.Errors(); open {
		t.Error("error channel should be closed")
	}
}
