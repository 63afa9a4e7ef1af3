// Package address implements the hierarchical, prefix-ordered address
// algebra shared by Markov-process nodes and edges.
//
// An address is an ordered sequence of string parts. Two addresses
// compare lexicographically part-by-part (not by their canonical
// string form), so sorting stays stable even when a part happens to
// contain the separator character used by ToString. The empty address
// is a prefix of every address.
package address

import (
	"errors"
	"strings"
)

// Separator is used only for the canonical string form (ToString). It
// plays no role in ordering or prefix tests, which operate on parts.
const Separator = "/"

// ErrEmptyPart is returned when a part is the empty string, which
// would make the canonical string form ambiguous with adjacent
// separators.
var ErrEmptyPart = errors.New("address: part must not be empty")

// ErrInvalidEscape is returned by parsing a canonical string that
// contains a malformed escape sequence.
var ErrInvalidEscape = errors.New("address: invalid escape sequence")

// Raw is the underlying ordered list of parts. NodeAddress and
// EdgeAddress each wrap Raw so the two remain distinct, non-
// interchangeable types while sharing one algebra.
type Raw []string

// FromPartsRaw builds a Raw address from parts, validating each part
// is non-empty.
func FromPartsRaw(parts ...string) (Raw, error) {
	for _, p := range parts {
		if p == "" {
			return nil, ErrEmptyPart
		}
	}
	out := make(Raw, len(parts))
	copy(out, parts)
	return out, nil
}

// AssertValid panics if any part of r is empty. Used at construction
// sites where an invalid address indicates a programmer error rather
// than a caller error.
func (r Raw) AssertValid() {
	for _, p := range r {
		if p == "" {
			panic(ErrEmptyPart)
		}
	}
}

// Append returns a new Raw address with extra appended after r's
// parts. r is not mutated.
func (r Raw) Append(extra ...string) Raw {
	out := make(Raw, 0, len(r)+len(extra))
	out = append(out, r...)
	out = append(out, extra...)
	return out
}

// ToParts returns a copy of the address's parts.
func (r Raw) ToParts() []string {
	out := make([]string, len(r))
	copy(out, r)
	return out
}

// HasPrefix reports whether prefix's parts are a leading subsequence
// of r's parts. The empty address is a prefix of every address,
// including itself.
func (r Raw) HasPrefix(prefix Raw) bool {
	if len(prefix) > len(r) {
		return false
	}
	for i, p := range prefix {
		if r[i] != p {
			return false
		}
	}
	return true
}

// Less implements the lexicographic part-wise order used for
// deterministic sorting. Shorter addresses sort before longer ones
// that share the shorter's parts as a prefix.
func (r Raw) Less(other Raw) bool {
	n := len(r)
	if len(other) < n {
		n = len(other)
	}
	for i := 0; i < n; i++ {
		if r[i] != other[i] {
			return r[i] < other[i]
		}
	}
	return len(r) < len(other)
}

// Equal reports whether two addresses have identical parts.
func (r Raw) Equal(other Raw) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if r[i] != other[i] {
			return false
		}
	}
	return true
}

// ToString renders the canonical, injective string form: parts joined
// by Separator, with any literal Separator or backslash inside a part
// escaped by a leading backslash. Two distinct Raw addresses never
// produce the same string.
func (r Raw) ToString() string {
	escaped := make([]string, len(r))
	for i, p := range r {
		escaped[i] = escapePart(p)
	}
	return strings.Join(escaped, Separator)
}

func escapePart(p string) string {
	var b strings.Builder
	for _, c := range p {
		if string(c) == Separator || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

// ParseRaw is the inverse of ToString: it splits a canonical string
// back into parts, honoring backslash escapes. It returns
// ErrInvalidEscape if the string ends mid-escape.
func ParseRaw(s string) (Raw, error) {
	if s == "" {
		return Raw{}, nil
	}
	var parts []string
	var cur strings.Builder
	escaping := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaping:
			cur.WriteByte(c)
			escaping = false
		case c == '\\':
			escaping = true
		case string(c) == Separator:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if escaping {
		return nil, ErrInvalidEscape
	}
	parts = append(parts, cur.String())
	return Raw(parts), nil
}
