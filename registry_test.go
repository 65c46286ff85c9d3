package nano

import (
	"reflect"
	"testing"
)

type trinket struct {
	Serial string
}

type bauble struct {
	Serial string
}

func trinketType() Type {
	return Type{
		Name:     "Trinket",
		Identity: IdentityString,
		Publish:  true,
		ID: func(entity any) Identity {
			return StringIdentity(entity.(*trinket).Serial)
		},
		New: func(id Identity) any {
			return &trinket{Serial: id.String()}
		},
	}
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	Register[trinket](r, trinketType())

	typ, ok := r.Lookup("Trinket")
	if !ok {
		t.Fatal("expected Trinket to be registered")
	}
	if typ.Identity != IdentityString || !typ.Publish {
		t.Errorf("unexpected descriptor: %+v", typ)
	}

	if _, ok := r.Lookup("Unknown"); ok {
		t.Error("unexpected lookup hit")
	}
}

func TestRegistryTypeOf(t *testing.T) {
	r := NewRegistry()
	Register[trinket](r, trinketType())

	typ, ok := r.TypeOf(&trinket{Serial: "s"})
	if !ok || typ.Name != "Trinket" {
		t.Fatalf("pointer resolution failed: %v %v", typ, ok)
	}
	typ, ok = r.TypeOf(trinket{Serial: "s"})
	if !ok || typ.Name != "Trinket" {
		t.Fatalf("value resolution failed: %v %v", typ, ok)
	}
	if _, ok := r.TypeOf(&bauble{}); ok {
		t.Error("unregistered type resolved")
	}
	if _, ok := r.TypeOf(nil); ok {
		t.Error("nil entity resolved")
	}
}

func TestRegistryPanics(t *testing.T) {
	cases := map[string]func(){
		"duplicate name": func() {
			r := NewRegistry()
			Register[trinket](r, trinketType())
			Register[bauble](r, trinketType())
		},
		"qualified name": func() {
			r := NewRegistry()
			typ := trinketType()
			typ.Name = "models.Trinket"
			Register[trinket](r, typ)
		},
		"missing accessor": func() {
			r := NewRegistry()
			typ := trinketType()
			typ.ID = nil
			Register[trinket](r, typ)
		},
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestRegistryPublishedNames(t *testing.T) {
	r := NewRegistry()
	Register[trinket](r, trinketType())

	unpublished := trinketType()
	unpublished.Name = "Bauble"
	unpublished.Publish = false
	Register[bauble](r, unpublished)

	if got := r.Names(); !reflect.DeepEqual(got, []string{"Bauble", "Trinket"}) {
		t.Errorf("Names() = %v", got)
	}
	if got := r.PublishedNames(); !reflect.DeepEqual(got, []string{"Trinket"}) {
		t.Errorf("PublishedNames() = %v", got)
	}
}

func TestTypeName(t *testing.T) {
	if got := TypeName(trinket{}); got != "trinket" {
		t.Errorf("TypeName(value) = %q", got)
	}
	if got := TypeName(&trinket{}); got != "trinket" {
		t.Errorf("TypeName(pointer) = %q", got)
	}
	if got := TypeName(nil); got != "" {
		t.Errorf("TypeName(nil) = %q", got)
	}
}
