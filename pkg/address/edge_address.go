package address

import (
	"encoding/json"
	"fmt"
)

// EdgeAddress identifies a Markov-process edge's underlying address
// (distinct from the source/destination node addresses it connects).
// See NodeAddress for why this is a separate type rather than a type
// alias.
type EdgeAddress struct {
	raw Raw
}

// EmptyEdgeAddress is the zero-length address, a prefix of every
// edge address.
var EmptyEdgeAddress = EdgeAddress{}

// NewEdgeAddress builds an EdgeAddress from parts.
func NewEdgeAddress(parts ...string) (EdgeAddress, error) {
	r, err := FromPartsRaw(parts...)
	if err != nil {
		return EdgeAddress{}, err
	}
	return EdgeAddress{raw: r}, nil
}

// MustEdgeAddress is like NewEdgeAddress but panics on error.
func MustEdgeAddress(parts ...string) EdgeAddress {
	a, err := NewEdgeAddress(parts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Append returns e with extra parts appended.
func (e EdgeAddress) Append(extra ...string) EdgeAddress {
	return EdgeAddress{raw: e.raw.Append(extra...)}
}

// ToParts returns a copy of e's parts.
func (e EdgeAddress) ToParts() []string { return e.raw.ToParts() }

// HasPrefix reports whether prefix is a prefix of e.
func (e EdgeAddress) HasPrefix(prefix EdgeAddress) bool {
	return e.raw.HasPrefix(prefix.raw)
}

// Less implements the deterministic address ordering used to sort
// edge order (spec.md §5).
func (e EdgeAddress) Less(other EdgeAddress) bool {
	return e.raw.Less(other.raw)
}

// Equal reports whether e and other have identical parts.
func (e EdgeAddress) Equal(other EdgeAddress) bool {
	return e.raw.Equal(other.raw)
}

// ToString renders the canonical, injective string form.
func (e EdgeAddress) ToString() string { return e.raw.ToString() }

// ParseEdgeAddress is the inverse of ToString.
func ParseEdgeAddress(s string) (EdgeAddress, error) {
	r, err := ParseRaw(s)
	if err != nil {
		return EdgeAddress{}, err
	}
	return EdgeAddress{raw: r}, nil
}

// MarshalJSON renders an EdgeAddress as its canonical string form.
func (e EdgeAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToString())
}

// UnmarshalJSON parses an EdgeAddress from its canonical string form.
func (e *EdgeAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("address: edge address must be a JSON string: %w", err)
	}
	a, err := ParseEdgeAddress(s)
	if err != nil {
		return err
	}
	*e = a
	return nil
}

// EdgeAddressesByAddress sorts a slice of EdgeAddress in canonical
// address order.
type EdgeAddressesByAddress []EdgeAddress

func (s EdgeAddressesByAddress) Len() int           { return len(s) }
func (s EdgeAddressesByAddress) Less(i, j int) bool { return s[i].Less(s[j]) }
func (s EdgeAddressesByAddress) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
