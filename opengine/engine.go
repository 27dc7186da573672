package opengine

import (
	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/errs"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/storage"
	"github.com/shelfdb/shelfdb/value"
)

// Engine implements the primitive document operations against a storage
// manager. It holds no lock of its own; callers (the engine facade)
// serialize access per spec's single reader/writer coordination point.
type Engine struct {
	storage *storage.Manager
}

// New returns an operation engine over the given storage manager.
func New(m *storage.Manager) *Engine {
	return &Engine{storage: m}
}

func (e *Engine) docs(name entity.Name) (*storage.Instance, entity.Entity, error) {
	inst, err := e.storage.LookupInstanceByEntity(name)
	if err != nil {
		return nil, entity.Entity{}, err
	}
	ent, err := e.storage.FindEntity(name)
	if err != nil {
		return nil, entity.Entity{}, err
	}
	return inst, ent, nil
}

func requireObject(v value.Value) error {
	if !v.IsObject() {
		return errs.InvalidArgumentf("document must be a JSON object")
	}
	return nil
}

// InsertOne appends document to entity's sequence, returning the stored
// (cloned) document.
func (e *Engine) InsertOne(name entity.Name, document value.Value) (value.Value, error) {
	if err := requireObject(document); err != nil {
		return value.Value{}, err
	}
	inst, _, err := e.docs(name)
	if err != nil {
		return value.Value{}, err
	}
	stored := value.Clone(document)
	inst.Data[name] = append(inst.Data[name], stored)
	return value.Clone(stored), nil
}

// InsertMany validates and appends documents in order, returning the
// stored documents in input order.
func (e *Engine) InsertMany(name entity.Name, documents []value.Value) ([]value.Value, error) {
	for _, d := range documents {
		if err := requireObject(d); err != nil {
			return nil, err
		}
	}
	inst, _, err := e.docs(name)
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(documents))
	for i, d := range documents {
		stored := value.Clone(d)
		inst.Data[name] = append(inst.Data[name], stored)
		out[i] = value.Clone(stored)
	}
	return out, nil
}

// FindOne returns the first document matching pred, or a NotFound error.
func (e *Engine) FindOne(name entity.Name, pred query.Predicate) (value.Value, error) {
	inst, ent, err := e.docs(name)
	if err != nil {
		return value.Value{}, err
	}
	view, err := e.joinedDocs(ent, inst.Data[name], pred.AssociatedEntities())
	if err != nil {
		return value.Value{}, err
	}
	for _, d := range view {
		if pred.Matches(d) {
			return value.Clone(d), nil
		}
	}
	return value.Value{}, errs.NotFoundf("no document in entity %q matched the query", name)
}

// FindMany filters, joins, orders, skips, and limits entity's documents.
func (e *Engine) FindMany(name entity.Name, pred query.Predicate, opts FindOptions) ([]value.Value, error) {
	inst, ent, err := e.docs(name)
	if err != nil {
		return nil, err
	}
	view, err := e.joinedDocs(ent, inst.Data[name], pred.AssociatedEntities())
	if err != nil {
		return nil, err
	}
	var matched []value.Value
	for _, d := range view {
		if pred.Matches(d) {
			matched = append(matched, value.Clone(d))
		}
	}
	return applyOptions(matched, opts), nil
}

// DeleteOne removes the first matching document and returns it.
func (e *Engine) DeleteOne(name entity.Name, pred query.Predicate) (value.Value, error) {
	inst, _, err := e.docs(name)
	if err != nil {
		return value.Value{}, err
	}
	docs := inst.Data[name]
	for i, d := range docs {
		if pred.Matches(d) {
			removed := value.Clone(d)
			inst.Data[name] = append(docs[:i], docs[i+1:]...)
			return removed, nil
		}
	}
	return value.Value{}, errs.NotFoundf("no document in entity %q matched the query", name)
}

// DeleteMany removes every matching document, returning the removed
// documents in their original order.
func (e *Engine) DeleteMany(name entity.Name, pred query.Predicate) ([]value.Value, error) {
	inst, _, err := e.docs(name)
	if err != nil {
		return nil, err
	}
	docs := inst.Data[name]
	var removedIdx []int
	for i, d := range docs {
		if pred.Matches(d) {
			removedIdx = append(removedIdx, i)
		}
	}
	removed := make([]value.Value, len(removedIdx))
	for k, i := range removedIdx {
		removed[k] = value.Clone(docs[i])
	}
	for k := len(removedIdx) - 1; k >= 0; k-- {
		i := removedIdx[k]
		docs = append(docs[:i], docs[i+1:]...)
	}
	inst.Data[name] = docs
	return removed, nil
}

// UpdateOne merges patch into the first matching document and returns
// the merged result. Keys present in patch with a null value are left
// untouched in the stored document.
func (e *Engine) UpdateOne(name entity.Name, pred query.Predicate, patch value.Value) (value.Value, error) {
	if err := requireObject(patch); err != nil {
		return value.Value{}, err
	}
	inst, _, err := e.docs(name)
	if err != nil {
		return value.Value{}, err
	}
	docs := inst.Data[name]
	for i, d := range docs {
		if pred.Matches(d) {
			merged, err := mergeDoc(d, patch)
			if err != nil {
				return value.Value{}, err
			}
			docs[i] = merged
			return value.Clone(merged), nil
		}
	}
	return value.Value{}, errs.NotFoundf("no document in entity %q matched the query", name)
}

// UpdateMany merges patch into every matching document and returns the
// merged results.
func (e *Engine) UpdateMany(name entity.Name, pred query.Predicate, patch value.Value) ([]value.Value, error) {
	if err := requireObject(patch); err != nil {
		return nil, err
	}
	inst, _, err := e.docs(name)
	if err != nil {
		return nil, err
	}
	docs := inst.Data[name]
	var out []value.Value
	for i, d := range docs {
		if pred.Matches(d) {
			merged, err := mergeDoc(d, patch)
			if err != nil {
				return nil, err
			}
			docs[i] = merged
			out = append(out, value.Clone(merged))
		}
	}
	return out, nil
}

func mergeDoc(stored, patch value.Value) (value.Value, error) {
	storedObj, ok := stored.AsObject()
	if !ok {
		return value.Value{}, errs.InvalidArgumentf("stored document is not an object")
	}
	patchObj, _ := patch.AsObject()
	merged := storedObj.Clone()
	patchObj.Range(func(k string, v value.Value) bool {
		if !v.IsNull() {
			merged.Set(k, value.Clone(v))
		}
		return true
	})
	return value.Obj(merged), nil
}
