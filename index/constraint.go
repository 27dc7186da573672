package index

import "github.com/shelfdb/shelfdb/query"

// ConstraintKind distinguishes an equality constraint from a range one.
type ConstraintKind int

const (
	ConstraintEq ConstraintKind = iota
	ConstraintRange
)

// Constraint is a single field's narrowing from a query tree: either an
// exact value or a [min, max] range with either bound optional.
type Constraint struct {
	Kind     ConstraintKind
	Eq       ValueKey
	Min, Max *ValueKey
}

// Merge combines two constraints on the same field, matching the
// original's Constraint::merge: two equal Eq constraints collapse to
// one; two Ranges intersect (max of the mins, min of the maxes); an Eq
// against a Range narrows the range to a point; anything else keeps the
// receiver unchanged (a conservative fallback, not a precise merge).
func (c Constraint) Merge(other Constraint) Constraint {
	if c.Kind == ConstraintEq && other.Kind == ConstraintEq {
		// Conflicting Eq constraints on the same field are unsatisfiable;
		// keep the first and let the linear scan apply the real predicate.
		return c
	}
	if c.Kind == ConstraintRange && other.Kind == ConstraintRange {
		min := tighterMin(c.Min, other.Min)
		max := tighterMax(c.Max, other.Max)
		return Constraint{Kind: ConstraintRange, Min: min, Max: max}
	}
	if c.Kind == ConstraintEq && other.Kind == ConstraintRange {
		v := c.Eq
		return Constraint{Kind: ConstraintRange, Min: &v, Max: &v}
	}
	if c.Kind == ConstraintRange && other.Kind == ConstraintEq {
		v := other.Eq
		return Constraint{Kind: ConstraintRange, Min: &v, Max: &v}
	}
	return c
}

func tighterMin(a, b *ValueKey) *ValueKey {
	switch {
	case a != nil && b != nil:
		if a.Compare(*b) >= 0 {
			return a
		}
		return b
	case a != nil:
		return a
	default:
		return b
	}
}

func tighterMax(a, b *ValueKey) *ValueKey {
	switch {
	case a != nil && b != nil:
		if a.Compare(*b) <= 0 {
			return a
		}
		return b
	case a != nil:
		return a
	default:
		return b
	}
}

// CollectConstraints walks a query tree's And/Eq/Lt/Lte/Gt/Gte subtrees
// and accumulates one merged Constraint per field path. Other node kinds
// (Or, Like, Ne, Associated, All) contribute no index constraint and are
// left to the linear scan.
//
// Grounded on index_constrant.rs's collect_constraints, extended to also
// handle Gte/Lte (the original only recognizes Gt/Lt) since the same
// inclusive range-bound handling applies to both.
func CollectConstraints(pred query.Predicate, out map[string]Constraint) {
	switch pred.Kind() {
	case query.KindAnd:
		for _, c := range pred.Children() {
			CollectConstraints(c, out)
		}
	case query.KindEq:
		if k, ok := valueToKey(pred.Value()); ok {
			mergeInto(out, pred.Path(), Constraint{Kind: ConstraintEq, Eq: k})
		}
	case query.KindGt, query.KindGte:
		if k, ok := valueToKey(pred.Value()); ok {
			mergeInto(out, pred.Path(), Constraint{Kind: ConstraintRange, Min: &k})
		}
	case query.KindLt, query.KindLte:
		if k, ok := valueToKey(pred.Value()); ok {
			mergeInto(out, pred.Path(), Constraint{Kind: ConstraintRange, Max: &k})
		}
	}
}

func mergeInto(out map[string]Constraint, field string, c Constraint) {
	if existing, ok := out[field]; ok {
		out[field] = existing.Merge(c)
		return
	}
	out[field] = c
}

// QueryWithIndex narrows a built index using field constraints: the
// longest equality prefix over the index's column order, then at most
// one trailing range on the next column. Returns ok=false when the
// index's leading column has no constraint at all (no coverage).
//
// Grounded on index_constrant.rs's query_with_index.
func QueryWithIndex(built *BuiltIndex, constraints map[string]Constraint) ([]int, bool) {
	var prefix []ValueKey

	for _, col := range built.Columns {
		c, ok := constraints[col]
		if !ok {
			break
		}
		if c.Kind == ConstraintEq {
			prefix = append(prefix, c.Eq)
			continue
		}
		start := append(append([]ValueKey(nil), prefix...), minOr(c.Min))
		end := append(append([]ValueKey(nil), prefix...), maxOr(c.Max))
		return built.Range(keyFromParts(start), keyFromParts(end)), true
	}

	if len(prefix) == 0 {
		return nil, false
	}
	if len(prefix) < len(built.Columns) {
		end := append(append([]ValueKey(nil), prefix...), MaxStringKey())
		return built.Range(keyFromParts(prefix), keyFromParts(end)), true
	}
	ids, _ := built.Lookup(keyFromParts(prefix))
	return ids, true
}

func minOr(v *ValueKey) ValueKey {
	if v != nil {
		return *v
	}
	return NullKey()
}

func maxOr(v *ValueKey) ValueKey {
	if v != nil {
		return *v
	}
	return MaxStringKey()
}
