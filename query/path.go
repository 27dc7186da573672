package query

import "github.com/shelfdb/shelfdb/value"

// resolve walks path's dot-separated segments against doc, stopping descent
// as soon as the current value stops being an object. It returns the
// segment at which descent stopped (the final segment when the whole path
// resolved) and the value reached at that point.
//
// Grounded on deeb_core/src/database/query.rs's get_kv: descent into a
// segment is only attempted while the current value is an object, so
// hitting an array mid-path stops there and leaves the array itself (not a
// per-element value) for the caller to fan out over.
func resolve(doc value.Value, path string) (lastKey string, val value.Value, found bool) {
	segs := splitPath(path)
	if len(segs) == 1 {
		v, ok := doc.Get(segs[0])
		return segs[0], v, ok
	}
	cur := doc
	var last string
	for _, seg := range segs {
		last = seg
		if !cur.IsObject() {
			break
		}
		nested, ok := cur.Get(seg)
		if !ok {
			return "", value.Value{}, false
		}
		cur = nested
	}
	return last, cur, true
}
