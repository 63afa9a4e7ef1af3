package address

import "testing"

func TestNodeAddressRoundTrip(t *testing.T) {
	a := MustNodeAddress("core", "USER_EPOCH", "1000", "alice")
	s := a.ToString()

	b, err := ParseNodeAddress(s)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("round-trip mismatch: %v != %v", a.ToParts(), b.ToParts())
	}
}

func TestNodeAddressEscaping(t *testing.T) {
	a := MustNodeAddress("weird/part", `back\slash`)
	s := a.ToString()

	b, err := ParseNodeAddress(s)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("round-trip mismatch for escaped parts: %v != %v", a.ToParts(), b.ToParts())
	}
}

func TestNodeAddressHasPrefix(t *testing.T) {
	base := MustNodeAddress("core", "SEED")
	empty := EmptyNodeAddress

	if !base.HasPrefix(empty) {
		t.Fatalf("expected empty address to be a prefix of every address")
	}
	if !base.HasPrefix(base) {
		t.Fatalf("expected an address to be a prefix of itself")
	}
	if !base.HasPrefix(MustNodeAddress("core")) {
		t.Fatalf("expected core/SEED to have prefix core")
	}
	if base.HasPrefix(MustNodeAddress("core", "EPOCH_ACCUMULATOR")) {
		t.Fatalf("did not expect core/SEED to have prefix core/EPOCH_ACCUMULATOR")
	}
}

func TestNodeAddressOrderingIsPartwise(t *testing.T) {
	// [a b] < [a!] part-wise, since "a" < "a!", even though the
	// canonical strings compare the other way: "a!" < "a/b", because
	// '!' sorts before the separator '/'.
	x := MustNodeAddress("a", "b")
	y := MustNodeAddress("a!")

	if !x.Less(y) {
		t.Fatalf("expected [a b] to sort before [a!] under part-wise order")
	}
}

func TestNodeAddressEmptyPartRejected(t *testing.T) {
	if _, err := NewNodeAddress("core", ""); err != ErrEmptyPart {
		t.Fatalf("expected ErrEmptyPart, got %v", err)
	}
}

func TestEdgeAddressDistinctType(t *testing.T) {
	// NodeAddress and EdgeAddress must not be interchangeable: this
	// is enforced at compile time by distinct struct types, so the
	// only thing to test at runtime is that their algebras agree.
	n := MustNodeAddress("x", "y")
	e := MustEdgeAddress("x", "y")

	if n.ToString() != e.ToString() {
		t.Fatalf("expected identical canonical form for identical parts across types")
	}
}
