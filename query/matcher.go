package query

import (
	"strings"

	"github.com/shelfdb/shelfdb/value"
)

// Matches reports whether doc satisfies the predicate. doc is the
// (possibly join-enriched) document under evaluation; Associated
// predicates evaluate their sub-predicate against this same value, since
// the sub-predicate's own path already carries the join alias as a prefix.
func (p Predicate) Matches(doc value.Value) bool {
	switch p.kind {
	case KindEq:
		return matchPath(doc, p.path, func(v value.Value) bool { return value.Equal(v, p.value) })
	case KindNe:
		return !matchPath(doc, p.path, func(v value.Value) bool { return value.Equal(v, p.value) })
	case KindLike:
		return matchPath(doc, p.path, func(v value.Value) bool {
			s, ok := v.AsString()
			return ok && strings.Contains(s, p.substr)
		})
	case KindLt:
		return matchCompare(doc, p.path, p.value, func(a, b float64) bool { return a < b })
	case KindLte:
		return matchCompare(doc, p.path, p.value, func(a, b float64) bool { return a <= b })
	case KindGt:
		return matchCompare(doc, p.path, p.value, func(a, b float64) bool { return a > b })
	case KindGte:
		return matchCompare(doc, p.path, p.value, func(a, b float64) bool { return a >= b })
	case KindAnd:
		for _, c := range p.children {
			if !c.Matches(doc) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range p.children {
			if c.Matches(doc) {
				return true
			}
		}
		return false
	case KindAssociated:
		return p.Sub().Matches(doc)
	case KindAll:
		return true
	default:
		return false
	}
}

func matchCompare(doc value.Value, path string, qv value.Value, cmp func(a, b float64) bool) bool {
	qf, qok := qv.AsFloat64()
	if !qok {
		return false
	}
	return matchPath(doc, path, func(v value.Value) bool {
		f, ok := v.AsFloat64()
		return ok && cmp(f, qf)
	})
}

// matchPath resolves path against doc and applies scalarMatch to the
// result. When the resolved value is an array it fans out existentially:
// a match on any element satisfies the predicate. Array elements that are
// themselves objects are additionally checked field-by-field against the
// last path segment, so "a.b" matches {"a":[{"b":1},{"b":2}]} by treating
// each element's "b" field as a candidate scalar, in addition to treating
// the element itself as one.
//
// Grounded on deeb_core/src/database/query.rs's per-variant match arms
// (Eq/Ne/Like/Lt/Lte/Gt/Gte), which repeat this exact array/object descent
// once per operator; collapsed here into one higher-order helper since Go
// has first-class function values where the original used macro-free
// per-arm duplication.
func matchPath(doc value.Value, path string, scalarMatch func(value.Value) bool) bool {
	key, v, found := resolve(doc, path)
	if !found {
		return false
	}
	if !v.IsArray() {
		return scalarMatch(v)
	}
	items, _ := v.AsArray()
	for _, item := range items {
		if item.IsObject() {
			obj, _ := item.AsObject()
			matched := false
			obj.Range(func(k string, fv value.Value) bool {
				if k == key && scalarMatch(fv) {
					matched = true
					return false
				}
				return true
			})
			if matched {
				return true
			}
		}
		if scalarMatch(item) {
			return true
		}
	}
	return false
}
