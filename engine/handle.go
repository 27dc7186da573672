// Package engine is the root facade: a single handle coordinating the
// storage manager, the operation engine, and the transaction engine
// behind one reader/writer lock, per spec §5's "do not spread locks
// across entities" guidance.
//
// Grounded on original_source/deeb/src/deeb.rs's `Deeb` struct (a single
// handle wrapping an async RwLock<Database>), adapted to a synchronous
// sync.RWMutex since this core has no cooperative scheduler to suspend.
package engine

import (
	"os"
	"sync"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/index"
	"github.com/shelfdb/shelfdb/logging"
	"github.com/shelfdb/shelfdb/opengine"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/storage"
	"github.com/shelfdb/shelfdb/txn"
	"github.com/shelfdb/shelfdb/value"
)

// Handle is a cheap, shareable reference to the engine's state; callers
// hold it concurrently from multiple goroutines.
type Handle struct {
	mu      sync.RWMutex
	storage *storage.Manager
	ops     *opengine.Engine
	txns    *txn.Engine
}

// New returns a handle persisting its `_meta` descriptor at metaPath and
// creating instance files with the given permission mode.
func New(metaPath string, fileMode os.FileMode) *Handle {
	m := storage.New(metaPath, fileMode)
	ops := opengine.New(m)
	return &Handle{storage: m, ops: ops, txns: txn.New(ops)}
}

// RegisterInstance declares an instance backed by path, hosting entities,
// then loads its file (creating it with an empty array per entity if
// absent).
func (h *Handle) RegisterInstance(name entity.InstanceName, path string, entities []entity.Entity) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.storage.Register(name, path, entities); err != nil {
		return err
	}
	return h.storage.Load(name)
}

// BeginTransaction starts a fresh, open transaction. It does not touch
// the engine's lock: enqueueing never touches storage.
func (h *Handle) BeginTransaction() *txn.Transaction {
	logging.Logger.Debug("beginning transaction")
	return txn.New()
}

// Commit executes tx's queued operations under a single exclusive lock,
// committing every touched instance on success or compensating in
// reverse on the first failure.
func (h *Handle) Commit(tx *txn.Transaction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.txns.Commit(tx); err != nil {
		logging.Logger.Error("transaction commit failed", "transaction", tx.ID, "error", err)
		return err
	}
	return nil
}

// BuildIndexes produces one BuiltIndex per IndexSpec declared on entity,
// from its current documents.
func (h *Handle) BuildIndexes(name entity.Name) (*index.IndexStore, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	ent, docs, err := h.ops.Documents(name)
	if err != nil {
		return nil, err
	}
	return index.Build(ent, docs), nil
}

// InsertOne inserts document into entity. If tx is non-nil the operation
// is queued and executes at commit time; otherwise it executes eagerly
// and its instance is committed immediately (no transaction is created).
func (h *Handle) InsertOne(name entity.Name, document value.Value, tx *txn.Transaction) (value.Value, error) {
	logging.Logger.Debug("inserting", "entity", name)
	if tx != nil {
		return value.Value{}, tx.Enqueue(txn.InsertOne(name, document))
	}
	return h.runOne(txn.InsertOne(name, document), func() (value.Value, error) {
		return h.ops.InsertOne(name, document)
	})
}

// InsertMany inserts documents into entity.
func (h *Handle) InsertMany(name entity.Name, documents []value.Value, tx *txn.Transaction) ([]value.Value, error) {
	logging.Logger.Debug("inserting many", "entity", name, "count", len(documents))
	if tx != nil {
		return nil, tx.Enqueue(txn.InsertMany(name, documents))
	}
	return h.runMany(txn.InsertMany(name, documents), func() ([]value.Value, error) {
		return h.ops.InsertMany(name, documents)
	})
}

// FindOne returns the first document in entity matching pred. Supplying
// tx queues the find as a no-op (spec: finds inside a transaction do not
// execute; callers needing read-your-writes must bypass the
// transaction) and returns the "queued" sentinel, the zero Value.
func (h *Handle) FindOne(name entity.Name, pred query.Predicate, tx *txn.Transaction) (value.Value, error) {
	logging.Logger.Debug("finding one", "entity", name)
	if tx != nil {
		return value.Value{}, tx.Enqueue(txn.FindOne(name, pred))
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ops.FindOne(name, pred)
}

// FindMany filters, joins, orders, skips, and limits entity's documents.
func (h *Handle) FindMany(name entity.Name, pred query.Predicate, opts opengine.FindOptions, tx *txn.Transaction) ([]value.Value, error) {
	logging.Logger.Debug("finding many", "entity", name)
	if tx != nil {
		return nil, tx.Enqueue(txn.FindMany(name, pred, opts))
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ops.FindMany(name, pred, opts)
}

// UpdateOne merges patch into the first document in entity matching pred.
func (h *Handle) UpdateOne(name entity.Name, pred query.Predicate, patch value.Value, tx *txn.Transaction) (value.Value, error) {
	logging.Logger.Debug("updating one", "entity", name)
	if tx != nil {
		return value.Value{}, tx.Enqueue(txn.UpdateOne(name, pred, patch))
	}
	return h.runOne(txn.UpdateOne(name, pred, patch), func() (value.Value, error) {
		return h.ops.UpdateOne(name, pred, patch)
	})
}

// UpdateMany merges patch into every document in entity matching pred.
func (h *Handle) UpdateMany(name entity.Name, pred query.Predicate, patch value.Value, tx *txn.Transaction) ([]value.Value, error) {
	logging.Logger.Debug("updating many", "entity", name)
	if tx != nil {
		return nil, tx.Enqueue(txn.UpdateMany(name, pred, patch))
	}
	return h.runMany(txn.UpdateMany(name, pred, patch), func() ([]value.Value, error) {
		return h.ops.UpdateMany(name, pred, patch)
	})
}

// DeleteOne removes the first document in entity matching pred.
func (h *Handle) DeleteOne(name entity.Name, pred query.Predicate, tx *txn.Transaction) (value.Value, error) {
	logging.Logger.Debug("deleting one", "entity", name)
	if tx != nil {
		return value.Value{}, tx.Enqueue(txn.DeleteOne(name, pred))
	}
	return h.runOne(txn.DeleteOne(name, pred), func() (value.Value, error) {
		return h.ops.DeleteOne(name, pred)
	})
}

// DeleteMany removes every document in entity matching pred.
func (h *Handle) DeleteMany(name entity.Name, pred query.Predicate, tx *txn.Transaction) ([]value.Value, error) {
	logging.Logger.Debug("deleting many", "entity", name)
	if tx != nil {
		return nil, tx.Enqueue(txn.DeleteMany(name, pred))
	}
	return h.runMany(txn.DeleteMany(name, pred), func() ([]value.Value, error) {
		return h.ops.DeleteMany(name, pred)
	})
}

// AddKey ensures path exists (with def as its terminal value) on every
// document in entity.
func (h *Handle) AddKey(name entity.Name, path string, def value.Value, tx *txn.Transaction) error {
	logging.Logger.Debug("adding key", "entity", name, "path", path)
	if tx != nil {
		return tx.Enqueue(txn.AddKey(name, path, def))
	}
	_, err := h.runOne(txn.AddKey(name, path, def), func() (value.Value, error) {
		return value.Value{}, h.ops.AddKey(name, path, def)
	})
	return err
}

// DropKey removes path from every document in entity.
func (h *Handle) DropKey(name entity.Name, path string, tx *txn.Transaction) error {
	logging.Logger.Debug("deleting key", "entity", name, "path", path)
	if tx != nil {
		return tx.Enqueue(txn.DropKey(name, path))
	}
	_, err := h.runOne(txn.DropKey(name, path), func() (value.Value, error) {
		return value.Value{}, h.ops.DropKey(name, path)
	})
	return err
}

// runOne implements the "implicit single-operation commit" contract for
// a direct (non-transactional) call that produces one value: run the
// operation engine's own method directly, then commit the touched
// instance. A failure leaves nothing to compensate, since a direct call
// is a single step; only a successful mutation needs a follow-up commit.
func (h *Handle) runOne(op txn.Operation, run func() (value.Value, error)) (value.Value, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	result, err := run()
	if err != nil {
		return value.Value{}, err
	}
	if err := h.ops.CommitInstances([]entity.Name{op.Entity}); err != nil {
		logging.Logger.Error("commit failed", "entity", op.Entity, "error", err)
		return value.Value{}, err
	}
	return result, nil
}

// runMany is runOne's counterpart for calls that produce a slice.
func (h *Handle) runMany(op txn.Operation, run func() ([]value.Value, error)) ([]value.Value, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	result, err := run()
	if err != nil {
		return nil, err
	}
	if err := h.ops.CommitInstances([]entity.Name{op.Entity}); err != nil {
		logging.Logger.Error("commit failed", "entity", op.Entity, "error", err)
		return nil, err
	}
	return result, nil
}
