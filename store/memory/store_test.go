package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/nanokit/nano"
	"github.com/nanokit/nano/fixtures"
)

func TestUnitOfWorkTracksAndCommits(t *testing.T) {
	store := NewStore(fixtures.NewRegistry())
	id := uuid.New()

	uow := store.NewUnitOfWork()
	if err := uow.Add(&fixtures.Widget{ID: id, Name: "w"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	pending := uow.Pending()
	if len(pending) != 1 || pending[0].Kind != nano.Added {
		t.Fatalf("unexpected pending view: %+v", pending)
	}
	if pending[0].ID.String() != id.String() {
		t.Errorf("unexpected identity: %s", pending[0].ID)
	}

	if err := uow.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if len(uow.Pending()) != 0 {
		t.Error("pending view should clear after commit")
	}
	if _, ok := store.Get("Widget", id.String()); !ok {
		t.Error("committed widget should be readable")
	}
}

func TestUnitOfWorkRejectsUnregisteredTypes(t *testing.T) {
	store := NewStore(fixtures.NewRegistry())
	uow := store.NewUnitOfWork()

	type stranger struct{ ID string }
	if err := uow.Add(&stranger{ID: "x"}); err == nil {
		t.Error("expected error for unregistered type")
	}
}

func TestCommitHonorsCancellation(t *testing.T) {
	store := NewStore(fixtures.NewRegistry())
	id := uuid.New()

	uow := store.NewUnitOfWork()
	if err := uow.Add(&fixtures.Widget{ID: id}); err != nil {
		t.Fatalf("add: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := uow.Commit(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
	if _, ok := store.Get("Widget", id.String()); ok {
		t.Error("cancelled commit must not persist state")
	}
	if len(uow.Pending()) != 1 {
		t.Error("pending view must survive a failed commit")
	}
}

func TestDeleteIsSoftAndVisibleToLookup(t *testing.T) {
	registry := fixtures.NewRegistry()
	store := NewStore(registry)
	widget := &fixtures.Widget{ID: uuid.New()}

	uow := store.NewUnitOfWork()
	_ = uow.Add(widget)
	if err := uow.Commit(context.Background()); err != nil {
		t.Fatalf("commit add: %v", err)
	}

	uow = store.NewUnitOfWork()
	_ = uow.Delete(widget)
	if err := uow.Commit(context.Background()); err != nil {
		t.Fatalf("commit delete: %v", err)
	}

	typ, _ := registry.Lookup("Widget")
	found, deleted, err := store.Lookup(context.Background(), typ, nano.UUIDIdentity(widget.ID))
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if !found || !deleted {
		t.Errorf("soft-deleted row should be found and flagged: found=%v deleted=%v", found, deleted)
	}
	if store.Count("Widget") != 0 {
		t.Error("soft-deleted rows must not count as live")
	}
}

func TestReplicaStoreInsertBuildsStub(t *testing.T) {
	registry := fixtures.NewRegistry()
	store := NewStore(registry)
	typ, _ := registry.Lookup("Gadget")

	if err := store.Insert(context.Background(), typ, nano.StringIdentity("serial-9")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	entity, ok := store.Get("Gadget", "serial-9")
	if !ok {
		t.Fatal("stub should exist")
	}
	if entity.(*fixtures.Gadget).Serial != "serial-9" {
		t.Errorf("stub identity not populated: %+v", entity)
	}
}
