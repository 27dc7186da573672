// Package txn implements the transaction engine: an ordered operation
// queue executed against the operation engine, committed atomically via
// the storage manager, and rolled back by compensating operations in
// reverse on any failure.
//
// Grounded on original_source/deeb/src/deeb.rs's commit/rollback and
// deeb_core/src/database/mod.rs's Operation/ExecutedValue enums, and
// original_source/deeb_core/src/database/transaction.rs's Transaction
// (uuid-identified operation queue).
package txn

import (
	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/opengine"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/value"
)

// Kind identifies which primitive operation a queued Operation performs.
type Kind int

const (
	KindInsertOne Kind = iota
	KindInsertMany
	KindFindOne
	KindFindMany
	KindDeleteOne
	KindDeleteMany
	KindUpdateOne
	KindUpdateMany
	KindAddKey
	KindDropKey
)

// Operation is one queued unit of work. Exactly the fields relevant to
// Kind are populated; see the constructors below.
type Operation struct {
	Kind   Kind
	Entity entity.Name

	Doc  value.Value
	Docs []value.Value

	Pred  query.Predicate
	Opts  opengine.FindOptions
	Patch value.Value

	Path    string
	Default value.Value
}

func InsertOne(e entity.Name, doc value.Value) Operation {
	return Operation{Kind: KindInsertOne, Entity: e, Doc: doc}
}

func InsertMany(e entity.Name, docs []value.Value) Operation {
	return Operation{Kind: KindInsertMany, Entity: e, Docs: docs}
}

func FindOne(e entity.Name, pred query.Predicate) Operation {
	return Operation{Kind: KindFindOne, Entity: e, Pred: pred}
}

func FindMany(e entity.Name, pred query.Predicate, opts opengine.FindOptions) Operation {
	return Operation{Kind: KindFindMany, Entity: e, Pred: pred, Opts: opts}
}

func DeleteOne(e entity.Name, pred query.Predicate) Operation {
	return Operation{Kind: KindDeleteOne, Entity: e, Pred: pred}
}

func DeleteMany(e entity.Name, pred query.Predicate) Operation {
	return Operation{Kind: KindDeleteMany, Entity: e, Pred: pred}
}

func UpdateOne(e entity.Name, pred query.Predicate, patch value.Value) Operation {
	return Operation{Kind: KindUpdateOne, Entity: e, Pred: pred, Patch: patch}
}

func UpdateMany(e entity.Name, pred query.Predicate, patch value.Value) Operation {
	return Operation{Kind: KindUpdateMany, Entity: e, Pred: pred, Patch: patch}
}

func AddKey(e entity.Name, path string, def value.Value) Operation {
	return Operation{Kind: KindAddKey, Entity: e, Path: path, Default: def}
}

func DropKey(e entity.Name, path string) Operation {
	return Operation{Kind: KindDropKey, Entity: e, Path: path}
}

// touchesStorage reports whether a successfully executed operation of
// this kind should mark its owning instance for commit.
func (k Kind) touchesStorage() bool {
	switch k {
	case KindInsertOne, KindInsertMany, KindDeleteOne, KindDeleteMany,
		KindUpdateOne, KindUpdateMany, KindAddKey, KindDropKey:
		return true
	default:
		return false
	}
}
