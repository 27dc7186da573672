package opengine

import (
	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/errs"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/value"
)

// dedupeEntities preserves first-occurrence order while dropping repeats,
// per spec's "callers deduplicate if needed" on AssociatedEntities.
func dedupeEntities(names []entity.Name) []entity.Name {
	seen := make(map[entity.Name]bool, len(names))
	out := make([]entity.Name, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// joinedDocs builds a transient view of docs with each association named
// in assocEntities embedded at its alias. Storage itself is untouched:
// each source document is cloned, and the joined arrays are copies
// produced by a recursive find_many against the associated entity.
//
// Grounded on deeb_core/src/database/mod.rs's find_many, which builds
// `Eq(to, document[from])` and recurses before embedding the result at
// the association's alias.
func (e *Engine) joinedDocs(ent entity.Entity, docs []value.Value, assocEntities []entity.Name) ([]value.Value, error) {
	if len(assocEntities) == 0 {
		return docs, nil
	}
	assocEntities = dedupeEntities(assocEntities)

	assocs := make([]entity.Association, 0, len(assocEntities))
	for _, name := range assocEntities {
		a, ok := ent.FindAssociation(name)
		if !ok {
			return nil, errs.InvalidArgumentf("entity %q declares no association to %q", ent.Name, name)
		}
		assocs = append(assocs, a)
	}

	out := make([]value.Value, len(docs))
	for i, d := range docs {
		cloned := value.Clone(d)
		obj, ok := cloned.AsObject()
		if !ok {
			return nil, errs.InvalidArgumentf("document in entity %q is not an object", ent.Name)
		}
		for _, a := range assocs {
			from, ok := d.Get(a.From)
			if !ok {
				from = value.Null()
			}
			joined, err := e.FindMany(a.EntityName, query.Eq(a.To, from), FindOptions{})
			if err != nil {
				return nil, err
			}
			obj.Set(a.Alias, value.Arr(joined))
		}
		out[i] = cloned
	}
	return out, nil
}
