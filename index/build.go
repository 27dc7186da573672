package index

import (
	"sort"
	"strconv"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/value"
)

// entry is one (key, document-ids) pair, kept sorted by Key inside a
// BuiltIndex's Entries slice — the sorted-slice substitute for Go's
// absent BTreeMap.
type entry struct {
	Key IndexKey
	IDs []int
}

// BuiltIndex is the ordered map over one entity index's declared
// columns: key (single or compound, lexicographically ordered) to the
// positional document ids (the document's index within its entity's
// sequence) that projected to that key.
type BuiltIndex struct {
	Name    string
	Columns []string
	entries []entry
}

// Lookup returns the document ids stored under key, if any.
func (b *BuiltIndex) Lookup(key IndexKey) ([]int, bool) {
	i := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].Key.Compare(key) >= 0 })
	if i < len(b.entries) && b.entries[i].Key.Compare(key) == 0 {
		return b.entries[i].IDs, true
	}
	return nil, false
}

// Range returns the concatenation of every entry's ids whose key falls
// within [start, end] inclusive.
func (b *BuiltIndex) Range(start, end IndexKey) []int {
	lo := sort.Search(len(b.entries), func(i int) bool { return b.entries[i].Key.Compare(start) >= 0 })
	var out []int
	for i := lo; i < len(b.entries); i++ {
		if b.entries[i].Key.Compare(end) > 0 {
			break
		}
		out = append(out, b.entries[i].IDs...)
	}
	return out
}

// IndexStore holds every BuiltIndex declared on an entity.
type IndexStore struct {
	Indexes []*BuiltIndex
}

// Find returns the built index with the given name, if any.
func (s *IndexStore) Find(name string) (*BuiltIndex, bool) {
	for _, ix := range s.Indexes {
		if ix.Name == name {
			return ix, true
		}
	}
	return nil, false
}

// Build produces one BuiltIndex per IndexSpec declared on ent, from its
// documents. Documents missing any of an index's columns are skipped
// (sparse behavior regardless of the Sparse flag, matching spec). This
// takes docs directly rather than re-querying, since the index builder
// operates over whatever document set the caller (the engine facade)
// already holds under its lock.
//
// Grounded on deeb_core/src/database/index.rs's Database::build_index.
func Build(ent entity.Entity, docs []value.Value) *IndexStore {
	store := &IndexStore{}
	for _, spec := range ent.Indexes {
		if len(spec.Columns) == 0 {
			continue
		}
		built := &BuiltIndex{Name: spec.Name, Columns: spec.Columns}
		grouped := map[string][]int{}
		keyByRepr := map[string]IndexKey{}

		for id, doc := range docs {
			parts := make([]ValueKey, 0, len(spec.Columns))
			skip := false
			for _, col := range spec.Columns {
				v, ok := query.GetPath(doc, col)
				if !ok {
					skip = true
					break
				}
				k, ok := valueToKey(v)
				if !ok {
					skip = true
					break
				}
				parts = append(parts, k)
			}
			if skip {
				continue
			}
			key := keyFromParts(parts)
			repr := reprOf(key)
			grouped[repr] = append(grouped[repr], id)
			keyByRepr[repr] = key
		}

		entries := make([]entry, 0, len(grouped))
		for repr, ids := range grouped {
			entries = append(entries, entry{Key: keyByRepr[repr], IDs: ids})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Key.Compare(entries[j].Key) < 0 })
		built.entries = entries

		store.Indexes = append(store.Indexes, built)
	}
	return store
}

// reprOf gives each distinct IndexKey a stable grouping string, since
// ValueKey/IndexKey hold unexported fields and can't key a Go map
// directly.
func reprOf(k IndexKey) string {
	out := make([]byte, 0, 16*len(k.parts))
	for _, p := range k.parts {
		out = append(out, byte(p.kind), 0)
		switch p.kind {
		case KeyBool:
			if p.b {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		case KeyNumber:
			out = append(out, []byte(strconv.FormatInt(p.n, 10))...)
		case KeyString:
			out = append(out, []byte(p.s)...)
		}
		out = append(out, 0xff)
	}
	return string(out)
}
