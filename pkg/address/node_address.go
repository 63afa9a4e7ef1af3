package address

import (
	"encoding/json"
	"fmt"
)

// NodeAddress identifies a Markov-process node. It shares the Raw
// algebra with EdgeAddress but the two are distinct Go types — a
// NodeAddress can never be passed where an EdgeAddress is expected,
// even though both wrap the same part-sequence representation.
type NodeAddress struct {
	raw Raw
}

// EmptyNodeAddress is the zero-length address, a prefix of every
// node address.
var EmptyNodeAddress = NodeAddress{}

// NewNodeAddress builds a NodeAddress from parts.
func NewNodeAddress(parts ...string) (NodeAddress, error) {
	r, err := FromPartsRaw(parts...)
	if err != nil {
		return NodeAddress{}, err
	}
	return NodeAddress{raw: r}, nil
}

// MustNodeAddress is like NewNodeAddress but panics on error. Intended
// for constant structural addresses known at compile time.
func MustNodeAddress(parts ...string) NodeAddress {
	a, err := NewNodeAddress(parts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Append returns n with extra parts appended.
func (n NodeAddress) Append(extra ...string) NodeAddress {
	return NodeAddress{raw: n.raw.Append(extra...)}
}

// ToParts returns a copy of n's parts.
func (n NodeAddress) ToParts() []string { return n.raw.ToParts() }

// HasPrefix reports whether prefix is a prefix of n.
func (n NodeAddress) HasPrefix(prefix NodeAddress) bool {
	return n.raw.HasPrefix(prefix.raw)
}

// Less implements the deterministic address ordering used to sort
// node order (spec invariant 6).
func (n NodeAddress) Less(other NodeAddress) bool {
	return n.raw.Less(other.raw)
}

// Equal reports whether n and other have identical parts.
func (n NodeAddress) Equal(other NodeAddress) bool {
	return n.raw.Equal(other.raw)
}

// ToString renders the canonical, injective string form.
func (n NodeAddress) ToString() string { return n.raw.ToString() }

// ParseNodeAddress is the inverse of ToString.
func ParseNodeAddress(s string) (NodeAddress, error) {
	r, err := ParseRaw(s)
	if err != nil {
		return NodeAddress{}, err
	}
	return NodeAddress{raw: r}, nil
}

// MarshalJSON renders a NodeAddress as its canonical string form.
func (n NodeAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToString())
}

// UnmarshalJSON parses a NodeAddress from its canonical string form.
func (n *NodeAddress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("address: node address must be a JSON string: %w", err)
	}
	a, err := ParseNodeAddress(s)
	if err != nil {
		return err
	}
	*n = a
	return nil
}

// NodeAddressesByAddress sorts a slice of NodeAddress in canonical
// address order.
type NodeAddressesByAddress []NodeAddress

func (s NodeAddressesByAddress) Len() int           { return len(s) }
func (s NodeAddressesByAddress) Less(i, j int) bool { return s[i].Less(s[j]) }
func (s NodeAddressesByAddress) Swap(i, j int)      { s[i], s[j] = s[j], s[i] }
