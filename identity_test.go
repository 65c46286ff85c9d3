package nano

import (
	"testing"

	"github.com/google/uuid"
)

func TestIdentityWireForms(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	if got := UUIDIdentity(id).String(); got != "11111111-1111-1111-1111-111111111111" {
		t.Errorf("uuid wire form: %s", got)
	}
	if got := StringIdentity("serial-9").String(); got != "serial-9" {
		t.Errorf("string wire form: %s", got)
	}
	if got := IntegerIdentity(-42).String(); got != "-42" {
		t.Errorf("integer wire form: %s", got)
	}
	if got := OpaqueIdentity([]byte{0xde, 0xad}).String(); got != "dead" {
		t.Errorf("opaque wire form: %s", got)
	}
}

func TestParseIdentityRoundTrip(t *testing.T) {
	cases := []Identity{
		UUIDIdentity(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
		StringIdentity("serial-9"),
		IntegerIdentity(7),
		OpaqueIdentity([]byte{0x01, 0xff}),
	}
	for _, id := range cases {
		parsed, err := ParseIdentity(id.Kind(), id.String())
		if err != nil {
			t.Fatalf("parse %s %q: %v", id.Kind(), id, err)
		}
		if parsed.String() != id.String() {
			t.Errorf("round trip %s: %q != %q", id.Kind(), parsed, id)
		}
	}
}

func TestParseIdentityErrors(t *testing.T) {
	if _, err := ParseIdentity(IdentityUUID, "not-a-uuid"); err == nil {
		t.Error("expected uuid parse error")
	}
	if _, err := ParseIdentity(IdentityInteger, "seven"); err == nil {
		t.Error("expected integer parse error")
	}
}

func TestParseIdentityOpaqueFallback(t *testing.T) {
	// Non-hex input still yields a usable opaque identity.
	parsed, err := ParseIdentity(IdentityOpaque, "zz-not-hex")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.IsZero() {
		t.Error("fallback identity should not be zero")
	}
}

func TestIdentityIsZero(t *testing.T) {
	if !UUIDIdentity(uuid.Nil).IsZero() {
		t.Error("nil uuid should be zero")
	}
	if !StringIdentity("").IsZero() {
		t.Error("empty string should be zero")
	}
	if StringIdentity("x").IsZero() {
		t.Error("non-empty string should not be zero")
	}
	if IntegerIdentity(0).IsZero() {
		t.Error("integer zero is a valid identity")
	}
}
