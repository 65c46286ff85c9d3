package nano_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nanokit/nano"
	brokermemory "github.com/nanokit/nano/broker/memory"
	"github.com/nanokit/nano/fixtures"
	storememory "github.com/nanokit/nano/store/memory"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// pipeline wires a producer store and a consumer store to the same
// in-process broker, the way two services would share one exchange.
type pipeline struct {
	producer  *storememory.Store
	consumer  *storememory.Store
	publisher *nano.Publisher
	broker    *brokermemory.Broker
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()

	registry := fixtures.NewRegistry()
	broker := brokermemory.New(16)
	t.Cleanup(func() { _ = broker.Close() })

	producer := storememory.NewStore(registry)
	consumer := storememory.NewStore(registry)

	publisher := nano.NewPublisher(broker, registry)
	t.Cleanup(func() { _ = publisher.Close() })

	applier := nano.NewApplier(registry, consumer)
	dispatcher := nano.NewDispatcher(applier.Handlers())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := dispatcher.Bind(ctx, broker); err != nil {
		t.Fatalf("bind: %v", err)
	}

	return &pipeline{
		producer:  producer,
		consumer:  consumer,
		publisher: publisher,
		broker:    broker,
	}
}

func TestEndToEndAddAndRedeliver(t *testing.T) {
	p := newPipeline(t)
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	widget := &fixtures.Widget{ID: id, Name: "w"}

	uow := p.producer.NewUnitOfWork()
	if err := uow.Add(widget); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := p.publisher.Save(context.Background(), uow); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.publisher.Wait()

	waitFor(t, "widget replica", func() bool {
		return p.consumer.Count("Widget") == 1
	})
	if _, ok := p.consumer.Get("Widget", id.String()); !ok {
		t.Fatal("replica should exist under the original id")
	}

	// Redeliver the same envelope; the replica count must not change.
	env := nano.Envelope{ID: id.String(), Type: "Widget", State: nano.Added}
	body, err := env.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := p.broker.Publish(context.Background(), "Widget", "Widget", body); err != nil {
		t.Fatalf("publish: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if n := p.consumer.Count("Widget"); n != 1 {
		t.Errorf("redelivery duplicated the replica: %d rows", n)
	}
}

func TestEndToEndDeleteAndRedeliver(t *testing.T) {
	p := newPipeline(t)
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	widget := &fixtures.Widget{ID: id, Name: "w"}

	uow := p.producer.NewUnitOfWork()
	if err := uow.Add(widget); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := p.publisher.Save(context.Background(), uow); err != nil {
		t.Fatalf("save add: %v", err)
	}
	p.publisher.Wait()
	waitFor(t, "widget replica", func() bool {
		return p.consumer.Count("Widget") == 1
	})

	uow = p.producer.NewUnitOfWork()
	if err := uow.Delete(widget); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := p.publisher.Save(context.Background(), uow); err != nil {
		t.Fatalf("save delete: %v", err)
	}
	p.publisher.Wait()

	waitFor(t, "widget replica removal", func() bool {
		return p.consumer.Count("Widget") == 0
	})

	// Redeliver the delete; the soft-deleted replica must absorb it.
	env := nano.Envelope{ID: id.String(), Type: "Widget", State: nano.Deleted}
	body, err := env.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := p.broker.Publish(context.Background(), "Widget", "Widget", body); err != nil {
		t.Fatalf("publish: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if n := p.consumer.Count("Widget"); n != 0 {
		t.Errorf("redelivered delete changed state: %d rows", n)
	}
}

func TestEndToEndMixedTypesRouteSeparately(t *testing.T) {
	p := newPipeline(t)

	uow := p.producer.NewUnitOfWork()
	if err := uow.Add(&fixtures.Widget{ID: uuid.New()}); err != nil {
		t.Fatalf("add widget: %v", err)
	}
	if err := uow.Add(&fixtures.Gadget{Serial: "serial-1"}); err != nil {
		t.Fatalf("add gadget: %v", err)
	}
	if err := uow.Add(&fixtures.Doodad{ID: uuid.New()}); err != nil {
		t.Fatalf("add doodad: %v", err)
	}
	if err := p.publisher.Save(context.Background(), uow); err != nil {
		t.Fatalf("save: %v", err)
	}
	p.publisher.Wait()

	waitFor(t, "both replicas", func() bool {
		return p.consumer.Count("Widget") == 1 && p.consumer.Count("Gadget") == 1
	})
	if n := p.consumer.Count("Doodad"); n != 0 {
		t.Errorf("unpublished doodad replicated: %d rows", n)
	}
}
