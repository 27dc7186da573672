package index

import (
	"testing"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/value"
)

func obj(pairs ...any) value.Value {
	o := value.NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1].(value.Value))
	}
	return value.Obj(o)
}

func TestBuildSkipsDocumentsMissingAColumn(t *testing.T) {
	ent := entity.New("user").WithIndex("by_age", "age")
	docs := []value.Value{
		obj("age", value.Int(10)),
		obj("name", value.String("no age field")),
		obj("age", value.Int(20)),
	}
	store := Build(ent, docs)
	built, ok := store.Find("by_age")
	if !ok {
		t.Fatalf("expected by_age index to be built")
	}
	ids, ok := built.Lookup(SingleKey(NumberKey(10)))
	if !ok || len(ids) != 1 || ids[0] != 0 {
		t.Fatalf("lookup(10) = %v, %v", ids, ok)
	}
	if _, ok := built.Lookup(SingleKey(NumberKey(30))); ok {
		t.Fatalf("did not expect a match for 30")
	}
}

func TestBuildCompoundKeyGroupsByAllColumns(t *testing.T) {
	ent := entity.New("order").WithIndex("by_user_status", "user", "status")
	docs := []value.Value{
		obj("user", value.Int(1), "status", value.String("open")),
		obj("user", value.Int(1), "status", value.String("open")),
		obj("user", value.Int(1), "status", value.String("closed")),
	}
	store := Build(ent, docs)
	built, _ := store.Find("by_user_status")
	ids, ok := built.Lookup(CompoundKey([]ValueKey{NumberKey(1), StringKey("open")}))
	if !ok || len(ids) != 2 {
		t.Fatalf("expected 2 ids for (1,open), got %v ok=%v", ids, ok)
	}
}

func TestRangeScanCoversInclusiveBounds(t *testing.T) {
	ent := entity.New("item").WithIndex("by_price", "price")
	docs := []value.Value{
		obj("price", value.Int(5)),
		obj("price", value.Int(10)),
		obj("price", value.Int(15)),
		obj("price", value.Int(20)),
	}
	store := Build(ent, docs)
	built, _ := store.Find("by_price")
	ids := built.Range(SingleKey(NumberKey(10)), SingleKey(NumberKey(15)))
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids in [10,15], got %v", ids)
	}
}

func TestQueryWithIndexUsesEqualityPrefixThenRange(t *testing.T) {
	ent := entity.New("order").WithIndex("by_user_amount", "user", "amount")
	docs := []value.Value{
		obj("user", value.Int(1), "amount", value.Int(5)),
		obj("user", value.Int(1), "amount", value.Int(15)),
		obj("user", value.Int(2), "amount", value.Int(5)),
	}
	store := Build(ent, docs)
	built, _ := store.Find("by_user_amount")

	pred := query.And(
		query.Eq("user", value.Int(1)),
		query.Gte("amount", value.Int(10)),
	)
	constraints := map[string]Constraint{}
	CollectConstraints(pred, constraints)

	ids, ok := QueryWithIndex(built, constraints)
	if !ok {
		t.Fatalf("expected index coverage")
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("expected doc id 1, got %v", ids)
	}
}

func TestQueryWithIndexReportsNoCoverageWithoutLeadingConstraint(t *testing.T) {
	ent := entity.New("order").WithIndex("by_user_amount", "user", "amount")
	docs := []value.Value{obj("user", value.Int(1), "amount", value.Int(5))}
	store := Build(ent, docs)
	built, _ := store.Find("by_user_amount")

	pred := query.Gt("amount", value.Int(1))
	constraints := map[string]Constraint{}
	CollectConstraints(pred, constraints)

	if _, ok := QueryWithIndex(built, constraints); ok {
		t.Fatalf("did not expect coverage without a constraint on the leading column")
	}
}
