// Package index implements the engine's in-memory secondary index
// builder: normalized scalar keys over single or compound columns, and a
// constraint-based planner that narrows a query to a candidate id set.
//
// Grounded on original_source/deeb_core/src/database/index.rs (Index,
// IndexOptions, IndexKey, ValueKey, BuiltIndex, IndexStore, build_index)
// and index_constrant.rs (Constraint, collect_constraints,
// query_with_index). Go has no BTreeMap in the standard library, so the
// ordered-map role is played by a slice of entries kept sorted by key
// plus sort.Search for binary-search lookups and range scans.
package index

import (
	"math"

	"github.com/shelfdb/shelfdb/value"
)

// ValueKeyKind identifies which normalized scalar a ValueKey holds.
type ValueKeyKind int

const (
	KeyNull ValueKeyKind = iota
	KeyBool
	KeyNumber
	KeyString
)

// ValueKey is a normalized, orderable scalar: null, bool, a signed
// 64-bit integer, or a string. Floats outside an exact integer
// representation have no ValueKey and exclude their document from the
// index, per spec.
type ValueKey struct {
	kind ValueKeyKind
	b    bool
	n    int64
	s    string
}

func NullKey() ValueKey          { return ValueKey{kind: KeyNull} }
func BoolKey(b bool) ValueKey    { return ValueKey{kind: KeyBool, b: b} }
func NumberKey(n int64) ValueKey { return ValueKey{kind: KeyNumber, n: n} }
func StringKey(s string) ValueKey { return ValueKey{kind: KeyString, s: s} }

// MaxStringKey is an upper sentinel used as an open range's end bound.
func MaxStringKey() ValueKey { return ValueKey{kind: KeyString, s: "\U0010FFFF"} }

// valueToKey normalizes a stored scalar to a ValueKey. It returns
// ok=false for objects, arrays, and floats with a fractional part or
// magnitude outside int64 range.
func valueToKey(v value.Value) (ValueKey, bool) {
	switch v.Kind() {
	case value.KindNull:
		return NullKey(), true
	case value.KindBool:
		b, _ := v.AsBool()
		return BoolKey(b), true
	case value.KindString:
		s, _ := v.AsString()
		return StringKey(s), true
	case value.KindInt:
		i, _ := v.AsInt64()
		return NumberKey(i), true
	case value.KindFloat:
		f, _ := v.AsFloat64()
		if math.Trunc(f) != f || f >= math.MaxInt64 || f < math.MinInt64 {
			return ValueKey{}, false
		}
		return NumberKey(int64(f)), true
	default:
		return ValueKey{}, false
	}
}

// Compare orders ValueKeys: Null < Bool < Number < String, then by value
// within a kind.
func (k ValueKey) Compare(other ValueKey) int {
	if k.kind != other.kind {
		if k.kind < other.kind {
			return -1
		}
		return 1
	}
	switch k.kind {
	case KeyNull:
		return 0
	case KeyBool:
		if k.b == other.b {
			return 0
		}
		if !k.b {
			return -1
		}
		return 1
	case KeyNumber:
		switch {
		case k.n < other.n:
			return -1
		case k.n > other.n:
			return 1
		default:
			return 0
		}
	case KeyString:
		switch {
		case k.s < other.s:
			return -1
		case k.s > other.s:
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

// IndexKeyKind distinguishes a single-column key from a compound one.
type IndexKeyKind int

const (
	KindSingle IndexKeyKind = iota
	KindCompound
)

// IndexKey is the lookup key stored in a BuiltIndex: one ValueKey for a
// single-column index, or an ordered tuple for a compound one.
type IndexKey struct {
	kind  IndexKeyKind
	parts []ValueKey
}

func SingleKey(v ValueKey) IndexKey      { return IndexKey{kind: KindSingle, parts: []ValueKey{v}} }
func CompoundKey(vs []ValueKey) IndexKey { return IndexKey{kind: KindCompound, parts: vs} }

// keyFromParts returns a Single key for one part, a Compound key otherwise.
func keyFromParts(parts []ValueKey) IndexKey {
	if len(parts) == 1 {
		return SingleKey(parts[0])
	}
	return CompoundKey(parts)
}

// Compare orders IndexKeys lexicographically over their parts.
func (k IndexKey) Compare(other IndexKey) int {
	for i := 0; i < len(k.parts) && i < len(other.parts); i++ {
		if c := k.parts[i].Compare(other.parts[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(k.parts) < len(other.parts):
		return -1
	case len(k.parts) > len(other.parts):
		return 1
	default:
		return 0
	}
}
