package opengine

import (
	"sort"

	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/value"
)

// applyOptions runs order, then skip, then limit over matched, per the
// engine's pinned find_many contract.
func applyOptions(matched []value.Value, opts FindOptions) []value.Value {
	if len(opts.Order) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			return compareByTerms(matched[i], matched[j], opts.Order) < 0
		})
	}
	if opts.Skip > 0 {
		if opts.Skip >= len(matched) {
			return nil
		}
		matched = matched[opts.Skip:]
	}
	if opts.Limit != nil && *opts.Limit < len(matched) {
		if *opts.Limit <= 0 {
			return nil
		}
		matched = matched[:*opts.Limit]
	}
	return matched
}

func compareByTerms(a, b value.Value, terms []OrderTerm) int {
	for _, t := range terms {
		c := compareField(a, b, t.Path)
		if t.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// compareField resolves path on both documents and compares them.
// Missing or null fields sort after present ones; numeric values compare
// numerically, strings lexicographically, and anything else ties (the
// caller's stable sort then preserves insertion order).
func compareField(a, b value.Value, path string) int {
	av, aok := query.GetPath(a, path)
	bv, bok := query.GetPath(b, path)
	aAbsent := !aok || av.IsNull()
	bAbsent := !bok || bv.IsNull()
	if aAbsent && bAbsent {
		return 0
	}
	if aAbsent {
		return 1
	}
	if bAbsent {
		return -1
	}

	if af, aIsNum := av.AsFloat64(); aIsNum {
		if bf, bIsNum := bv.AsFloat64(); bIsNum {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	if as, aIsStr := av.AsString(); aIsStr {
		if bs, bIsStr := bv.AsString(); bIsStr {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
	}
	return 0
}
