package opengine

import (
	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/errs"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/value"
)

// CommitInstances flushes the physical instances backing the given
// entities to disk, deduplicating entities that share an instance. Used
// by the transaction engine to commit once, after every queued operation
// in a transaction has executed successfully.
func (e *Engine) CommitInstances(names []entity.Name) error {
	seen := make(map[entity.InstanceName]bool)
	var instances []entity.InstanceName
	for _, n := range names {
		inst, _, err := e.docs(n)
		if err != nil {
			return err
		}
		if !seen[inst.Name] {
			seen[inst.Name] = true
			instances = append(instances, inst.Name)
		}
	}
	return e.storage.Commit(instances)
}

// MatchIndices returns the positional indices of every document in
// entity matching pred, without association join (used by the
// transaction engine to snapshot pre-images before a mutation).
func (e *Engine) MatchIndices(name entity.Name, pred query.Predicate) ([]int, error) {
	inst, _, err := e.docs(name)
	if err != nil {
		return nil, err
	}
	docs := inst.Data[name]
	var idx []int
	for i, d := range docs {
		if pred.Matches(d) {
			idx = append(idx, i)
		}
	}
	return idx, nil
}

// DocAt returns a clone of the document at index within entity's
// sequence.
func (e *Engine) DocAt(name entity.Name, index int) (value.Value, error) {
	inst, _, err := e.docs(name)
	if err != nil {
		return value.Value{}, err
	}
	docs := inst.Data[name]
	if index < 0 || index >= len(docs) {
		return value.Value{}, errs.NotFoundf("index %d out of range for entity %q", index, name)
	}
	return value.Clone(docs[index]), nil
}

// ReplaceAt overwrites the document at index within entity's sequence,
// bypassing predicate matching. Used to restore an update's pre-image
// during transaction rollback, since the fields a predicate matched on
// may themselves be exactly what the update changed.
func (e *Engine) ReplaceAt(name entity.Name, index int, doc value.Value) error {
	inst, _, err := e.docs(name)
	if err != nil {
		return err
	}
	docs := inst.Data[name]
	if index < 0 || index >= len(docs) {
		return errs.NotFoundf("index %d out of range for entity %q", index, name)
	}
	docs[index] = value.Clone(doc)
	return nil
}

// Documents returns the declared entity and a clone of its raw (un-joined)
// document sequence, for callers outside the package such as the index
// builder.
func (e *Engine) Documents(name entity.Name) (entity.Entity, []value.Value, error) {
	inst, ent, err := e.docs(name)
	if err != nil {
		return entity.Entity{}, nil, err
	}
	docs := inst.Data[name]
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		out[i] = value.Clone(d)
	}
	return ent, out, nil
}

// Snapshot returns a deep clone of entity's entire document sequence.
// Used to checkpoint an entity before a whole-entity mutation (AddKey,
// DropKey) that a predicate-indexed compensation can't undo field by
// field.
func (e *Engine) Snapshot(name entity.Name) ([]value.Value, error) {
	inst, _, err := e.docs(name)
	if err != nil {
		return nil, err
	}
	docs := inst.Data[name]
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		out[i] = value.Clone(d)
	}
	return out, nil
}

// Restore replaces entity's entire document sequence with a clone of
// docs, undoing a whole-entity mutation captured by Snapshot.
func (e *Engine) Restore(name entity.Name, docs []value.Value) error {
	inst, _, err := e.docs(name)
	if err != nil {
		return err
	}
	out := make([]value.Value, len(docs))
	for i, d := range docs {
		out[i] = value.Clone(d)
	}
	inst.Data[name] = out
	return nil
}
