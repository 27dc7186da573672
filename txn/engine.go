package txn

import (
	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/errs"
	"github.com/shelfdb/shelfdb/logging"
	"github.com/shelfdb/shelfdb/opengine"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/value"
)

// Engine executes transactions against an operation engine. It holds no
// lock of its own; the caller (the root engine facade) is expected to
// hold a single exclusive lock for the whole commit-and-possible-rollback
// sequence, since Go's sync.RWMutex is not reentrant.
//
// Grounded on original_source/deeb/src/deeb.rs's commit loop: execute
// each queued operation against the live database, and on the first
// failure, undo every previously executed operation in reverse before
// returning the error — with no write-through to storage ever occurring
// for a transaction that fails.
type Engine struct {
	ops *opengine.Engine
}

// New returns a transaction engine over ops.
func New(ops *opengine.Engine) *Engine {
	return &Engine{ops: ops}
}

// executed records what a single operation did, enough to compensate it.
type executed struct {
	op Operation

	removedOne  value.Value
	removedMany []value.Value

	updateIdx []int
	updatePre []value.Value

	snapshot []value.Value
}

// Commit executes every operation queued on t, in order. If every
// operation succeeds, the instances backing all mutating operations are
// committed to storage exactly once. If any operation fails, every
// previously executed operation in this transaction is compensated in
// reverse order and storage is never written.
func (eng *Engine) Commit(t *Transaction) error {
	logging.Logger.Debug("committing transaction", "transaction", t.ID)
	if t.State != StateOpen {
		return errs.InvalidArgumentf("transaction %s is %s, cannot commit", t.ID, t.State)
	}
	t.State = StateCommitting

	var log []executed
	touched := make(map[entity.Name]bool)

	rollback := func(cause error) error {
		logging.Logger.Error("transaction operation failed, rolling back", "transaction", t.ID, "error", cause)
		for i := len(log) - 1; i >= 0; i-- {
			eng.compensate(log[i])
		}
		t.State = StateRolledBack
		return errs.Txn(cause)
	}

	for _, op := range t.Ops {
		entry := executed{op: op}

		switch op.Kind {
		case KindInsertOne:
			if _, err := eng.ops.InsertOne(op.Entity, op.Doc); err != nil {
				return rollback(err)
			}
		case KindInsertMany:
			if _, err := eng.ops.InsertMany(op.Entity, op.Docs); err != nil {
				return rollback(err)
			}
		case KindFindOne, KindFindMany:
			// A find enqueued inside a transaction is a no-op at commit
			// time: its result was already handed back as the "queued"
			// sentinel when it was enqueued, and there is no read-your-
			// writes view to honor mid-transaction (spec: a read enqueued
			// after a write inside the same transaction sees the
			// pre-commit view; callers who need that must bypass the
			// transaction).
		case KindDeleteOne:
			removed, err := eng.ops.DeleteOne(op.Entity, op.Pred)
			if err != nil {
				return rollback(err)
			}
			entry.removedOne = removed
		case KindDeleteMany:
			removed, err := eng.ops.DeleteMany(op.Entity, op.Pred)
			if err != nil {
				return rollback(err)
			}
			entry.removedMany = removed
		case KindUpdateOne:
			idx, err := eng.ops.MatchIndices(op.Entity, op.Pred)
			if err != nil {
				return rollback(err)
			}
			if len(idx) > 0 {
				pre, err := eng.ops.DocAt(op.Entity, idx[0])
				if err != nil {
					return rollback(err)
				}
				entry.updateIdx = idx[:1]
				entry.updatePre = []value.Value{pre}
			}
			if _, err := eng.ops.UpdateOne(op.Entity, op.Pred, op.Patch); err != nil {
				return rollback(err)
			}
		case KindUpdateMany:
			idx, err := eng.ops.MatchIndices(op.Entity, op.Pred)
			if err != nil {
				return rollback(err)
			}
			pre := make([]value.Value, len(idx))
			for i, at := range idx {
				d, err := eng.ops.DocAt(op.Entity, at)
				if err != nil {
					return rollback(err)
				}
				pre[i] = d
			}
			entry.updateIdx = idx
			entry.updatePre = pre
			if _, err := eng.ops.UpdateMany(op.Entity, op.Pred, op.Patch); err != nil {
				return rollback(err)
			}
		case KindAddKey:
			snap, err := eng.ops.Snapshot(op.Entity)
			if err != nil {
				return rollback(err)
			}
			entry.snapshot = snap
			if err := eng.ops.AddKey(op.Entity, op.Path, op.Default); err != nil {
				return rollback(err)
			}
		case KindDropKey:
			snap, err := eng.ops.Snapshot(op.Entity)
			if err != nil {
				return rollback(err)
			}
			entry.snapshot = snap
			if err := eng.ops.DropKey(op.Entity, op.Path); err != nil {
				return rollback(err)
			}
		}

		log = append(log, entry)
		if op.Kind.touchesStorage() {
			touched[op.Entity] = true
		}
	}

	names := make([]entity.Name, 0, len(touched))
	for n := range touched {
		names = append(names, n)
	}
	if err := eng.ops.CommitInstances(names); err != nil {
		// Every queued operation already succeeded in memory; a failure
		// writing to disk here is a storage fault, not an operation
		// conflict, so it is reported as-is rather than compensated.
		logging.Logger.Error("transaction storage commit failed", "transaction", t.ID, "error", err)
		t.State = StateRolledBack
		return err
	}

	t.State = StateCommitted
	return nil
}

// compensate undoes the effect of one already-executed operation.
func (eng *Engine) compensate(e executed) {
	switch e.op.Kind {
	case KindInsertOne:
		eng.ops.DeleteOne(e.op.Entity, eqAllFields(e.op.Doc))
	case KindInsertMany:
		for i := len(e.op.Docs) - 1; i >= 0; i-- {
			eng.ops.DeleteOne(e.op.Entity, eqAllFields(e.op.Docs[i]))
		}
	case KindDeleteOne:
		if !e.removedOne.IsNull() {
			eng.ops.InsertOne(e.op.Entity, e.removedOne)
		}
	case KindDeleteMany:
		if len(e.removedMany) > 0 {
			eng.ops.InsertMany(e.op.Entity, e.removedMany)
		}
	case KindUpdateOne, KindUpdateMany:
		for i, at := range e.updateIdx {
			eng.ops.ReplaceAt(e.op.Entity, at, e.updatePre[i])
		}
	case KindAddKey, KindDropKey:
		eng.ops.Restore(e.op.Entity, e.snapshot)
	}
}

// eqAllFields builds a predicate matching a document that has exactly
// the same top-level fields as doc, used to locate and remove the
// document an InsertOne/InsertMany call produced when compensating a
// failed transaction. Mirrors deeb.rs's own insert-rollback, which
// rebuilds a query from the inserted document's fields rather than
// tracking its storage position.
func eqAllFields(doc value.Value) query.Predicate {
	obj, ok := doc.AsObject()
	if !ok {
		return query.All()
	}
	var clauses []query.Predicate
	obj.Range(func(k string, v value.Value) bool {
		clauses = append(clauses, query.Eq(k, v))
		return true
	})
	return query.And(clauses...)
}
