package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/value"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	m := New(filepath.Join(dir, "_meta.json"), 0o644)
	return m, dir
}

func TestRegisterThenLoadInitializesEmptyArrays(t *testing.T) {
	m, dir := newTestManager(t)
	path := filepath.Join(dir, "users.json")
	user := entity.New("user")

	if err := m.Register("users", path, []entity.Entity{user}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Load("users"); err != nil {
		t.Fatalf("load: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != `{"user":[]}` {
		t.Fatalf("file = %s, want {\"user\":[]}", raw)
	}
}

func TestRegisterConflictingEntityFails(t *testing.T) {
	m, dir := newTestManager(t)
	user := entity.New("user")

	if err := m.Register("a", filepath.Join(dir, "a.json"), []entity.Entity{user}); err != nil {
		t.Fatalf("register a: %v", err)
	}
	err := m.Register("b", filepath.Join(dir, "b.json"), []entity.Entity{user})
	if err == nil {
		t.Fatalf("expected conflict registering the same entity twice")
	}
}

func TestCommitRoundTripsData(t *testing.T) {
	m, dir := newTestManager(t)
	path := filepath.Join(dir, "users.json")
	user := entity.New("user")

	if err := m.Register("users", path, []entity.Entity{user}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Load("users"); err != nil {
		t.Fatalf("load: %v", err)
	}

	inst, err := m.Instance("users")
	if err != nil {
		t.Fatalf("instance: %v", err)
	}
	o := value.NewObject()
	o.Set("id", value.Int(1))
	inst.Data["user"] = append(inst.Data["user"], value.Obj(o))

	if err := m.Commit([]entity.InstanceName{"users"}); err != nil {
		t.Fatalf("commit: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) != `{"user":[{"id":1}]}` {
		t.Fatalf("file = %s", raw)
	}

	m2, _ := newTestManagerAt(dir)
	if err := m2.Register("users", path, []entity.Entity{user}); err != nil {
		t.Fatalf("register m2: %v", err)
	}
	if err := m2.Load("users"); err != nil {
		t.Fatalf("load m2: %v", err)
	}
	inst2, _ := m2.Instance("users")
	if len(inst2.Data["user"]) != 1 {
		t.Fatalf("expected 1 document after reload, got %d", len(inst2.Data["user"]))
	}
}

func newTestManagerAt(dir string) (*Manager, string) {
	return New(filepath.Join(dir, "_meta.json"), 0o644), dir
}

func TestMetaPersistsEntityDescriptors(t *testing.T) {
	m, dir := newTestManager(t)
	user := entity.New("user").WithPrimaryKey("id").WithIndex("by_name", "name")

	if err := m.Register("users", filepath.Join(dir, "users.json"), []entity.Entity{user}); err != nil {
		t.Fatalf("register: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "_meta.json"))
	if err != nil {
		t.Fatalf("read meta: %v", err)
	}
	doc, err := value.Parse(raw)
	if err != nil {
		t.Fatalf("parse meta: %v", err)
	}
	obj, ok := doc.AsObject()
	if !ok {
		t.Fatalf("meta is not an object")
	}
	descriptors, ok := obj.Get("_meta")
	if !ok {
		t.Fatalf("meta missing _meta key")
	}
	items, _ := descriptors.AsArray()
	if len(items) != 1 {
		t.Fatalf("expected 1 descriptor, got %d", len(items))
	}
}
