package query

import "github.com/shelfdb/shelfdb/value"

// GetPath performs a straightforward dotted-path lookup, requiring an
// object at every intermediate segment. Unlike the matcher's internal
// resolve (used by Matches), it does not special-case arrays mid-path:
// callers that need scalar field values for comparison (ordering) rather
// than existential matching use this instead.
func GetPath(doc value.Value, path string) (value.Value, bool) {
	segs := splitPath(path)
	cur := doc
	for _, seg := range segs {
		if !cur.IsObject() {
			return value.Value{}, false
		}
		nested, ok := cur.Get(seg)
		if !ok {
			return value.Value{}, false
		}
		cur = nested
	}
	return cur, true
}
