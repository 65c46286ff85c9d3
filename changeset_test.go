package nano

import "testing"

func TestExtractorFiltersKinds(t *testing.T) {
	r := NewRegistry()
	Register[trinket](r, trinketType())
	exr := NewExtractor(r)

	typ, _ := r.Lookup("Trinket")
	pending := []Mutation{
		{Kind: Added, Type: typ, ID: StringIdentity("a")},
		{Kind: Modified, Type: typ, ID: StringIdentity("b")},
		{Kind: Deleted, Type: typ, ID: StringIdentity("c")},
		{Kind: Unchanged, Type: typ, ID: StringIdentity("d")},
		{Kind: Detached, Type: typ, ID: StringIdentity("e")},
	}

	out := exr.Extract(pending)
	if len(out) != 2 {
		t.Fatalf("expected 2 mutations, got %d", len(out))
	}
	if out[0].Kind != Added || out[1].Kind != Deleted {
		t.Errorf("unexpected kinds: %v %v", out[0].Kind, out[1].Kind)
	}
}

func TestExtractorExcludesUnpublishedTypes(t *testing.T) {
	r := NewRegistry()
	Register[trinket](r, trinketType())

	unpublished := trinketType()
	unpublished.Name = "Bauble"
	unpublished.Publish = false
	Register[bauble](r, unpublished)

	exr := NewExtractor(r)
	baubleType, _ := r.Lookup("Bauble")

	out := exr.Extract([]Mutation{
		{Kind: Added, Type: baubleType, ID: StringIdentity("a")},
		{Kind: Deleted, Type: baubleType, ID: StringIdentity("b")},
		{Kind: Added, ID: StringIdentity("c")}, // zero Type: unregistered
	})
	if len(out) != 0 {
		t.Errorf("expected no mutations, got %d", len(out))
	}
}

func TestExtractorEmptyInput(t *testing.T) {
	exr := NewExtractor(NewRegistry())
	if out := exr.Extract(nil); out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}

func TestNewExtractorNilRegistryPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	NewExtractor(nil)
}
