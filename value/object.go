package value

// Object is an insertion-order-preserving mapping from string keys to
// Values with unique keys. Go's map type has no stable iteration order and
// encoding/json sorts map keys alphabetically on marshal, which would
// violate the engine's "insertion order preserved" invariant for stored
// documents, so Object is backed by a slice plus an index for O(1) lookup.
type Object struct {
	keys []string
	vals []Value
	idx  map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{idx: make(map[string]int)}
}

// Set assigns key to v, preserving the key's original position if it
// already existed, or appending it at the end otherwise.
func (o *Object) Set(key string, v Value) {
	if i, ok := o.idx[key]; ok {
		o.vals[i] = v
		return
	}
	o.idx[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
}

// Get returns the value stored under key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	i, ok := o.idx[key]
	if !ok {
		return Value{}, false
	}
	return o.vals[i], true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.idx[key]
	return ok
}

// Delete removes key if present, preserving the relative order of the
// remaining keys.
func (o *Object) Delete(key string) {
	i, ok := o.idx[key]
	if !ok {
		return
	}
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.vals = append(o.vals[:i], o.vals[i+1:]...)
	delete(o.idx, key)
	for k, v := range o.idx {
		if v > i {
			o.idx[k] = v - 1
		}
	}
}

// Keys returns the object's keys in insertion order. The returned slice
// must not be mutated by the caller.
func (o *Object) Keys() []string { return o.keys }

// Len returns the number of keys in the object.
func (o *Object) Len() int { return len(o.keys) }

// Range calls fn for each key/value pair in insertion order, stopping early
// if fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	for i, k := range o.keys {
		if !fn(k, o.vals[i]) {
			return
		}
	}
}

// Clone returns a deep copy of the object.
func (o *Object) Clone() *Object {
	c := &Object{
		keys: append([]string(nil), o.keys...),
		vals: make([]Value, len(o.vals)),
		idx:  make(map[string]int, len(o.idx)),
	}
	for i, v := range o.vals {
		c.vals[i] = Clone(v)
	}
	for k, i := range o.idx {
		c.idx[k] = i
	}
	return c
}

// Equal reports deep structural equality, including key order.
func (o *Object) Equal(other *Object) bool {
	if o == nil || other == nil {
		return o == other
	}
	if len(o.keys) != len(other.keys) {
		return false
	}
	for i, k := range o.keys {
		if other.keys[i] != k {
			return false
		}
		if !Equal(o.vals[i], other.vals[i]) {
			return false
		}
	}
	return true
}
