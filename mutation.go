package nano

import "fmt"

// Kind is the state of a tracked mutation inside a unit of work. The full
// enum is carried on the wire for forward compatibility, but the pipeline
// only ever publishes Added and Deleted.
type Kind uint8

const (
	Detached Kind = iota
	Unchanged
	Added
	Modified
	Deleted
)

var kindNames = map[Kind]string{
	Detached:  "Detached",
	Unchanged: "Unchanged",
	Added:     "Added",
	Modified:  "Modified",
	Deleted:   "Deleted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind parses the wire form of a mutation kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return Detached, fmt.Errorf("unknown mutation kind %q", s)
}

// Mutation is a read-only snapshot of one pending change inside a unit of
// work. It exists only for the duration of one commit cycle: the tracker
// clears its pending view once the commit succeeds, which is why the change
// set must be captured before the physical commit runs.
type Mutation struct {
	Kind   Kind
	Type   Type // zero (Name == "") when the entity type is unregistered
	ID     Identity
	Entity any
}
