package opengine

import (
	"path/filepath"
	"testing"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/query"
	"github.com/shelfdb/shelfdb/storage"
	"github.com/shelfdb/shelfdb/value"
)

func obj(pairs ...any) value.Value {
	o := value.NewObject()
	for i := 0; i+1 < len(pairs); i += 2 {
		o.Set(pairs[i].(string), pairs[i+1].(value.Value))
	}
	return value.Obj(o)
}

func newTestEngine(t *testing.T, entities ...entity.Entity) *Engine {
	t.Helper()
	dir := t.TempDir()
	m := storage.New(filepath.Join(dir, "_meta.json"), 0o644)
	if err := m.Register("default", filepath.Join(dir, "default.json"), entities); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Load("default"); err != nil {
		t.Fatalf("load: %v", err)
	}
	return New(m)
}

func TestInsertThenFindOneRoundTrips(t *testing.T) {
	eng := newTestEngine(t, entity.New("user"))
	doc := obj("id", value.Int(1), "name", value.String("A"))
	stored, err := eng.InsertOne("user", doc)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	pred := query.And(
		query.Eq("id", value.Int(1)),
		query.Eq("name", value.String("A")),
	)
	found, err := eng.FindOne("user", pred)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !value.Equal(stored, found) {
		t.Fatalf("round trip mismatch: %v != %v", stored, found)
	}
}

func TestUpdateMergeSkipsNullPatchFields(t *testing.T) {
	eng := newTestEngine(t, entity.New("user"))
	if _, err := eng.InsertOne("user", obj("id", value.Int(1), "name", value.String("A"), "age", value.Int(10))); err != nil {
		t.Fatalf("insert: %v", err)
	}
	patch := obj("name", value.Null(), "age", value.Int(11))
	merged, err := eng.UpdateOne("user", query.Eq("id", value.Int(1)), patch)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	name, _ := merged.Get("name")
	age, _ := merged.Get("age")
	if s, _ := name.AsString(); s != "A" {
		t.Fatalf("expected name to stay A, got %v", name)
	}
	if a, _ := age.AsInt64(); a != 11 {
		t.Fatalf("expected age 11, got %v", age)
	}
}

func TestDeleteManyRemovesAllMatches(t *testing.T) {
	eng := newTestEngine(t, entity.New("user"))
	for i := int64(1); i <= 3; i++ {
		if _, err := eng.InsertOne("user", obj("id", value.Int(i), "active", value.Bool(i != 2))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	removed, err := eng.DeleteMany("user", query.Eq("active", value.Bool(true)))
	if err != nil {
		t.Fatalf("delete many: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("expected 2 removed, got %d", len(removed))
	}
	remaining, err := eng.FindMany("user", query.All(), FindOptions{})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining, got %d", len(remaining))
	}
}

func TestOrderingWithTiesPreservesInsertionOrder(t *testing.T) {
	eng := newTestEngine(t, entity.New("user"))
	ages := []int64{5, 5, 7, 5}
	for i, a := range ages {
		if _, err := eng.InsertOne("user", obj("seq", value.Int(int64(i)+1), "age", value.Int(a))); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	results, err := eng.FindMany("user", query.All(), FindOptions{Order: []OrderTerm{{Path: "age"}}})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	wantSeq := []int64{1, 2, 4, 3}
	if len(results) != len(wantSeq) {
		t.Fatalf("expected %d results, got %d", len(wantSeq), len(results))
	}
	for i, want := range wantSeq {
		seq, _ := results[i].Get("seq")
		got, _ := seq.AsInt64()
		if got != want {
			t.Fatalf("position %d: got seq %d, want %d", i, got, want)
		}
	}
}

func TestAddKeyThenDropKeyRestoresDocument(t *testing.T) {
	eng := newTestEngine(t, entity.New("user"))
	original := obj("id", value.Int(1), "name", value.String("A"))
	stored, err := eng.InsertOne("user", original)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := eng.AddKey("user", "profile.bio", value.String("n/a")); err != nil {
		t.Fatalf("add key: %v", err)
	}
	afterAdd, err := eng.FindOne("user", query.Eq("id", value.Int(1)))
	if err != nil {
		t.Fatalf("find after add: %v", err)
	}
	profile, ok := afterAdd.Get("profile")
	if !ok || !profile.IsObject() {
		t.Fatalf("expected profile object to be created, got %v", afterAdd)
	}
	if err := eng.DropKey("user", "profile.bio"); err != nil {
		t.Fatalf("drop key: %v", err)
	}
	if err := eng.DropKey("user", "profile"); err != nil {
		t.Fatalf("drop key: %v", err)
	}
	final, err := eng.FindOne("user", query.Eq("id", value.Int(1)))
	if err != nil {
		t.Fatalf("find after drop: %v", err)
	}
	if !value.Equal(stored, final) {
		t.Fatalf("expected document restored to %v, got %v", stored, final)
	}
}

func TestAssociationJoinEmbedsMatchingChildren(t *testing.T) {
	dir := t.TempDir()
	m := storage.New(filepath.Join(dir, "_meta.json"), 0o644)
	comment := entity.New("comment")
	user := entity.New("user").WithAssociation("comment", "id", "user_id", "user_comment")

	if err := m.Register("main", filepath.Join(dir, "main.json"), []entity.Entity{user, comment}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Load("main"); err != nil {
		t.Fatalf("load: %v", err)
	}
	eng := New(m)

	for _, id := range []int64{1, 2, 3} {
		if _, err := eng.InsertOne("user", obj("id", value.Int(id))); err != nil {
			t.Fatalf("insert user: %v", err)
		}
	}
	commentRows := []struct {
		userID int64
		text   string
	}{
		{1, "H"}, {1, "I"}, {2, "J"},
	}
	for _, c := range commentRows {
		if _, err := eng.InsertOne("comment", obj("user_id", value.Int(c.userID), "c", value.String(c.text))); err != nil {
			t.Fatalf("insert comment: %v", err)
		}
	}

	pred := query.Associated(entity.Name("comment"), query.Eq("user_comment.c", value.String("H")))
	results, err := eng.FindMany("user", pred, FindOptions{})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly 1 user, got %d", len(results))
	}
	id, _ := results[0].Get("id")
	if i, _ := id.AsInt64(); i != 1 {
		t.Fatalf("expected user id 1, got %v", id)
	}
	userComment, ok := results[0].Get("user_comment")
	if !ok {
		t.Fatalf("expected user_comment to be embedded")
	}
	items, _ := userComment.AsArray()
	found := false
	for _, it := range items {
		c, _ := it.Get("c")
		if s, _ := c.AsString(); s == "H" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected embedded comments to contain c=H, got %v", items)
	}
}
