package value

import "testing"

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", Int(1))
	o.Set("a", Int(2))
	o.Set("m", Int(3))

	got := o.Keys()
	want := []string{"z", "a", "m"}
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
}

func TestObjectSetOverwritesInPlace(t *testing.T) {
	o := NewObject()
	o.Set("a", Int(1))
	o.Set("b", Int(2))
	o.Set("a", Int(99))

	got := o.Keys()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("keys = %v, want [a b]", got)
	}
	v, ok := o.Get("a")
	if !ok {
		t.Fatalf("expected a to be present")
	}
	if i, _ := v.AsInt64(); i != 99 {
		t.Fatalf("a = %d, want 99", i)
	}
}

func TestRoundTripJSON(t *testing.T) {
	const doc = `{"name":"A","age":10,"tags":["x","y"],"nested":{"ok":true,"n":null}}`
	v, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != doc {
		t.Fatalf("round trip = %s, want %s", out, doc)
	}
}

func TestEqualDistinguishesIntAndFloat(t *testing.T) {
	if Equal(Int(5), Float(5)) {
		t.Fatalf("Int(5) should not equal Float(5)")
	}
	if !Equal(Int(5), Int(5)) {
		t.Fatalf("Int(5) should equal Int(5)")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	o := NewObject()
	o.Set("a", Arr([]Value{Int(1), Int(2)}))
	v := Obj(o)
	clone := Clone(v)

	o.Set("a", Arr([]Value{Int(99)}))

	cloneObj, _ := clone.AsObject()
	arr, _ := cloneObj.Get("a")
	items, _ := arr.AsArray()
	if len(items) != 2 {
		t.Fatalf("clone was mutated by source change: %v", items)
	}
}

func TestIntegerPreservedThroughJSON(t *testing.T) {
	v, err := Parse([]byte(`9007199254740993`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	i, ok := v.AsInt64()
	if !ok || i != 9007199254740993 {
		t.Fatalf("expected lossless int64, got %v ok=%v", i, ok)
	}
}
