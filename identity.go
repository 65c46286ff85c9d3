package nano

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// IdentityKind is the closed set of identity representations an entity type
// may declare. The kind is fixed once per type at registration time; the
// pipeline never inspects entity values to guess how an identity should be
// serialized or parsed.
type IdentityKind uint8

const (
	IdentityUUID IdentityKind = iota
	IdentityString
	IdentityInteger
	IdentityOpaque
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityUUID:
		return "uuid"
	case IdentityString:
		return "string"
	case IdentityInteger:
		return "integer"
	case IdentityOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("IdentityKind(%d)", uint8(k))
	}
}

// Identity is an entity identity value of one of the declared kinds. The
// zero Identity reports IsZero and is rejected by the materializer.
type Identity struct {
	kind IdentityKind
	uid  uuid.UUID
	str  string
	num  int64
	raw  []byte
}

func UUIDIdentity(id uuid.UUID) Identity {
	return Identity{kind: IdentityUUID, uid: id}
}

func StringIdentity(s string) Identity {
	return Identity{kind: IdentityString, str: s}
}

func IntegerIdentity(n int64) Identity {
	return Identity{kind: IdentityInteger, num: n}
}

func OpaqueIdentity(b []byte) Identity {
	raw := make([]byte, len(b))
	copy(raw, b)
	return Identity{kind: IdentityOpaque, raw: raw}
}

func (i Identity) Kind() IdentityKind { return i.kind }

// IsZero reports whether the identity carries no value at all. A zero
// identity on a tracked mutation indicates a programming error upstream.
func (i Identity) IsZero() bool {
	switch i.kind {
	case IdentityUUID:
		return i.uid == uuid.Nil
	case IdentityString:
		return i.str == ""
	case IdentityInteger:
		return false
	case IdentityOpaque:
		return len(i.raw) == 0
	default:
		return true
	}
}

// String returns the wire form of the identity. This is the value carried in
// the envelope id field and the value consumers parse back with
// ParseIdentity. Opaque identities are hex encoded.
func (i Identity) String() string {
	switch i.kind {
	case IdentityUUID:
		return i.uid.String()
	case IdentityString:
		return i.str
	case IdentityInteger:
		return strconv.FormatInt(i.num, 10)
	case IdentityOpaque:
		return hex.EncodeToString(i.raw)
	default:
		return ""
	}
}

// ParseIdentity recovers an identity from its wire form according to the
// kind declared by the target entity type. An unparsable value for the UUID
// or integer kinds is an error; string and opaque kinds accept any input so
// that a best-effort identity always round-trips.
func ParseIdentity(kind IdentityKind, s string) (Identity, error) {
	switch kind {
	case IdentityUUID:
		id, err := uuid.Parse(s)
		if err != nil {
			return Identity{}, fmt.Errorf("parse uuid identity %q: %w", s, err)
		}
		return UUIDIdentity(id), nil
	case IdentityString:
		return StringIdentity(s), nil
	case IdentityInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Identity{}, fmt.Errorf("parse integer identity %q: %w", s, err)
		}
		return IntegerIdentity(n), nil
	case IdentityOpaque:
		raw, err := hex.DecodeString(s)
		if err != nil {
			// Fall back to the literal bytes; the consumer only needs a
			// stable key, not the original encoding.
			return OpaqueIdentity([]byte(s)), nil
		}
		return OpaqueIdentity(raw), nil
	default:
		return Identity{}, fmt.Errorf("unknown identity kind %v", kind)
	}
}
