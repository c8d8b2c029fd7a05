package typesys

import (
	"reflect"
)

// Surface is the attribute capability a decorator mutates: get, set and
// delete named attributes, and enumerate the current own mapping.
// Both *Type and *Shim implement it.
type Surface interface {
	Get(name string) (any, bool)
	Set(name string, value any)
	Delete(name string)
	Snapshot() *Attrs
}

// Decorator mutates a type through its Surface.
type Decorator func(Surface) error

var (
	_ Surface = (*Type)(nil)
	_ Surface = (*Shim)(nil)
)

// Shim is a stand-in for a type that does not exist yet. It lets a decorator
// written for finished types run against a pending attribute map instead.
type Shim struct {
	attrs *Attrs
}

// NewShim creates a shim seeded with name (under NameAttr) and a copy of attrs.
func NewShim(name string, attrs *Attrs) *Shim {
	seeded := NewAttrs()
	seeded.Set(NameAttr, name)

	if attrs != nil {
		attrs.Range(func(k string, v any) bool {
			seeded.Set(k, v)
			return true
		})
	}

	return &Shim{attrs: seeded}
}

func (s *Shim) Get(name string) (any, bool) { return s.attrs.Get(name) }

func (s *Shim) Set(name string, value any) { s.attrs.Set(name, value) }

func (s *Shim) Delete(name string) { s.attrs.Delete(name) }

func (s *Shim) Snapshot() *Attrs { return s.attrs.Clone() }

// Delta is the net effect of a mutation between two snapshots.
type Delta struct {
	Removed []string
	Added   []string
	Changed []string
}

// IsEmpty reports whether nothing changed.
func (d Delta) IsEmpty() bool {
	return len(d.Removed) == 0 && len(d.Added) == 0 && len(d.Changed) == 0
}

// Diff compares two snapshots. Keys are reported in snapshot order.
func Diff(before, after *Attrs) Delta {
	var d Delta

	before.Range(func(k string, _ any) bool {
		if !after.Has(k) {
			d.Removed = append(d.Removed, k)
		}

		return true
	})

	after.Range(func(k string, v any) bool {
		old, ok := before.Get(k)

		switch {
		case !ok:
			d.Added = append(d.Added, k)
		case !sameValue(old, v):
			d.Changed = append(d.Changed, k)
		}

		return true
	})

	return d
}

// sameValue treats uncomparable values (funcs, maps, slices) by deep equality,
// so an untouched func is reported as changed and simply rewritten.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	if va.Comparable() {
		return va.Equal(vb)
	}

	return reflect.DeepEqual(a, b)
}
