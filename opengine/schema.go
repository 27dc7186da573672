package opengine

import (
	"strings"

	"github.com/shelfdb/shelfdb/entity"
	"github.com/shelfdb/shelfdb/value"
)

// AddKey ensures path exists on every document in entity, creating
// intermediate objects where missing or null (replacing any non-object
// found along the way with an empty object), then sets the terminal key
// to def.
func (e *Engine) AddKey(name entity.Name, path string, def value.Value) error {
	inst, _, err := e.docs(name)
	if err != nil {
		return err
	}
	segs := strings.Split(path, ".")
	docs := inst.Data[name]
	for i, d := range docs {
		docs[i] = addKeyAlong(d, segs, def)
	}
	return nil
}

func addKeyAlong(doc value.Value, segs []string, def value.Value) value.Value {
	obj, ok := doc.AsObject()
	if !ok {
		obj = value.NewObject()
		doc = value.Obj(obj)
	}
	if len(segs) == 1 {
		obj.Set(segs[0], def)
		return doc
	}
	head, rest := segs[0], segs[1:]
	child, ok := obj.Get(head)
	if !ok || child.IsNull() || !child.IsObject() {
		child = value.Obj(value.NewObject())
	}
	obj.Set(head, addKeyAlong(child, rest, def))
	return doc
}

// DropKey removes the terminal key named by path from every document in
// entity. A document whose path's parent is missing or not an object is
// left untouched.
func (e *Engine) DropKey(name entity.Name, path string) error {
	inst, _, err := e.docs(name)
	if err != nil {
		return err
	}
	segs := strings.Split(path, ".")
	for _, d := range inst.Data[name] {
		dropKeyAlong(d, segs)
	}
	return nil
}

func dropKeyAlong(doc value.Value, segs []string) {
	obj, ok := doc.AsObject()
	if !ok {
		return
	}
	if len(segs) == 1 {
		obj.Delete(segs[0])
		return
	}
	child, ok := obj.Get(segs[0])
	if !ok || !child.IsObject() {
		return
	}
	dropKeyAlong(child, segs[1:])
}
