package txn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/opengine"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/storage"
	"github.com/shelfdb/shelfdb/value"
)

func newTestSetup(t *testing.T) (*Engine, *opengine.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "users.json")
	m := storage.New(filepath.Join(dir, "_meta.json"), 0o644)
	user := entity.New("user").WithPrimaryKey("id")
	if err := m.Register("users", dataPath, []entity.Entity{user}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Load("users"); err != nil {
		t.Fatalf("load: %v", err)
	}
	ops := opengine.New(m)
	return New(ops), ops, dataPath
}

func obj(pairs ...any) value.Value {
	o := value.NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1].(value.Value))
	}
	return value.Obj(o)
}

func TestCommitEmptyTransactionIsANoOp(t *testing.T) {
	eng, _, _ := newTestSetup(t)
	tx := New()
	if err := eng.Commit(tx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if tx.State != StateCommitted {
		t.Fatalf("state = %v, want committed", tx.State)
	}
}

func TestFailedInsertRollsBackEarlierInsertsAndTouchesNoFile(t *testing.T) {
	eng, ops, dataPath := newTestSetup(t)
	tx := New()
	must(t, tx.Enqueue(InsertOne("user", obj("id", value.Int(1)))))
	must(t, tx.Enqueue(InsertOne("user", obj("id", value.Int(2)))))
	must(t, tx.Enqueue(InsertOne("user", value.String("not an object"))))

	if err := eng.Commit(tx); err == nil {
		t.Fatalf("expected commit to fail")
	}
	if tx.State != StateRolledBack {
		t.Fatalf("state = %v, want rolled_back", tx.State)
	}

	remaining, err := ops.FindMany("user", query.All(), opengine.FindOptions{})
	if err != nil {
		t.Fatalf("find_many: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no documents after rollback, got %v", remaining)
	}

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	if string(raw) != `{"user":[]}` {
		t.Fatalf("data file = %s, want empty user array untouched by the failed transaction", raw)
	}
}

func TestSuccessfulTransactionCommitsAllMutatingKinds(t *testing.T) {
	eng, ops, dataPath := newTestSetup(t)
	tx := New()
	must(t, tx.Enqueue(InsertOne("user", obj("id", value.Int(1), "name", value.String("a")))))
	must(t, tx.Enqueue(UpdateOne("user", query.Eq("id", value.Int(1)), obj("name", value.String("b")))))

	if err := eng.Commit(tx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if tx.State != StateCommitted {
		t.Fatalf("state = %v, want committed", tx.State)
	}

	got, err := ops.FindOne("user", query.Eq("id", value.Int(1)))
	if err != nil {
		t.Fatalf("find_one: %v", err)
	}
	name, _ := got.Get("name")
	if s, _ := name.AsString(); s != "b" {
		t.Fatalf("name = %q, want %q", s, "b")
	}

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("expected committed transaction to write the data file")
	}
}

func TestFailedUpdateRollsBackToExactPreImage(t *testing.T) {
	eng, ops, _ := newTestSetup(t)

	seed := New()
	must(t, seed.Enqueue(InsertOne("user", obj("id", value.Int(1), "name", value.String("original")))))
	if err := eng.Commit(seed); err != nil {
		t.Fatalf("seed commit: %v", err)
	}

	tx := New()
	must(t, tx.Enqueue(UpdateOne("user", query.Eq("id", value.Int(1)), obj("name", value.String("changed")))))
	must(t, tx.Enqueue(InsertOne("user", value.Bool(true))))

	if err := eng.Commit(tx); err == nil {
		t.Fatalf("expected commit to fail")
	}

	got, err := ops.FindOne("user", query.Eq("id", value.Int(1)))
	if err != nil {
		t.Fatalf("find_one: %v", err)
	}
	name, _ := got.Get("name")
	if s, _ := name.AsString(); s != "original" {
		t.Fatalf("name = %q, want the pre-update value %q restored", s, "original")
	}
}

func TestEnqueueOntoNonOpenTransactionFails(t *testing.T) {
	tx := New()
	tx.State = StateCommitted
	if err := tx.Enqueue(InsertOne("user", obj())); err == nil {
		t.Fatalf("expected enqueue onto a committed transaction to fail")
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
}
