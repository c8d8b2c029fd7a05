package typesys

import (
	"maps"
	"slices"
)

// Attrs is an attribute map that remembers insertion order.
// The zero value is not usable; create one with NewAttrs.
type Attrs struct {
	keys   []string
	values map[string]any
}

// NewAttrs creates an empty Attrs.
func NewAttrs() *Attrs {
	return &Attrs{values: make(map[string]any)}
}

// AttrsOf builds an Attrs from a plain map. Keys are sorted to keep the
// resulting order deterministic.
func AttrsOf(m map[string]any) *Attrs {
	a := NewAttrs()
	for _, k := range slices.Sorted(maps.Keys(m)) {
		a.Set(k, m[k])
	}

	return a
}

// Set assigns value to key. A new key is appended to the order; an existing
// key keeps its position.
func (a *Attrs) Set(key string, value any) {
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}

	a.values[key] = value
}

// Get returns the value stored under key.
func (a *Attrs) Get(key string) (any, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Has reports whether key is present.
func (a *Attrs) Has(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Delete removes key. Deleting a missing key is a no-op.
func (a *Attrs) Delete(key string) {
	if _, ok := a.values[key]; !ok {
		return
	}

	delete(a.values, key)
	a.keys = slices.DeleteFunc(a.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in insertion order.
func (a *Attrs) Keys() []string {
	return slices.Clone(a.keys)
}

// Len returns the number of attributes.
func (a *Attrs) Len() int {
	return len(a.keys)
}

// Range calls fn for every attribute in insertion order until fn returns false.
func (a *Attrs) Range(fn func(key string, value any) bool) {
	for _, k := range a.keys {
		if !fn(k, a.values[k]) {
			return
		}
	}
}

// Clone returns a copy. Values are copied as-is, so later assignments on
// either side do not affect the other.
func (a *Attrs) Clone() *Attrs {
	if a == nil {
		return NewAttrs()
	}

	return &Attrs{
		keys:   slices.Clone(a.keys),
		values: maps.Clone(a.values),
	}
}

// Map returns the attributes as a plain map.
func (a *Attrs) Map() map[string]any {
	return maps.Clone(a.values)
}
