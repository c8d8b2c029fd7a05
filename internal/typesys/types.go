package typesys

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// NameAttr is the attribute key under which a type exposes its own name.
const NameAttr = "__name__"

// DocAttr is the conventional attribute key for a type's documentation.
const DocAttr = "__doc__"

var (
	// ErrInconsistentHierarchy is returned when bases admit no C3 linearization.
	ErrInconsistentHierarchy = errors.New("inconsistent base class hierarchy")
	// ErrMetaclassConflict is returned when the selected meta is unrelated to a base's meta.
	ErrMetaclassConflict = errors.New("metaclass conflict")
)

// Meta is a meta-type: the constructor that builds Types.
type Meta struct {
	name     string
	parent   *Meta
	onCreate func(*Type) error
}

// TypeMeta is the default meta-type.
var TypeMeta = &Meta{name: "type"}

// Object is the universal root type. Every linearization ends with it.
var Object = newRoot()

func newRoot() *Type {
	t := &Type{
		id:    uuid.Nil,
		name:  "object",
		meta:  TypeMeta,
		attrs: NewAttrs(),
	}
	t.mro = []*Type{t}

	return t
}

// NewMeta creates a meta-type derived from parent (TypeMeta when nil).
// onCreate, when set, runs on every type the meta constructs and may reject it.
func NewMeta(name string, parent *Meta, onCreate func(*Type) error) *Meta {
	if parent == nil {
		parent = TypeMeta
	}

	return &Meta{name: name, parent: parent, onCreate: onCreate}
}

// Name returns the meta's name.
func (m *Meta) Name() string {
	return m.name
}

// Parent returns the meta this one derives from, or nil for TypeMeta.
func (m *Meta) Parent() *Meta {
	return m.parent
}

// IsSubmetaOf reports whether m is other or derives from it.
func (m *Meta) IsSubmetaOf(other *Meta) bool {
	for cur := m; cur != nil; cur = cur.parent {
		if cur == other {
			return true
		}
	}

	return false
}

// String returns the meta's name.
func (m *Meta) String() string {
	return m.name
}

// New constructs a type from a name, an ordered base list and attributes.
//
// The constructing meta is the most derived of m and the metas of all bases;
// when they are not on one derivation chain ErrMetaclassConflict is returned.
// attrs is copied, so the caller may keep mutating its own map.
func (m *Meta) New(name string, bases []*Type, attrs *Attrs) (*Type, error) {
	winner, err := m.mostDerived(bases)
	if err != nil {
		return nil, fmt.Errorf("constructing %s: %w", name, err)
	}

	t := &Type{
		id:    uuid.New(),
		name:  name,
		bases: slices.Clone(bases),
		meta:  winner,
		attrs: attrs.Clone(),
	}

	t.mro, err = linearize(t, bases)
	if err != nil {
		return nil, fmt.Errorf("constructing %s: %w", name, err)
	}

	if winner.onCreate != nil {
		if err := winner.onCreate(t); err != nil {
			return nil, fmt.Errorf("%s rejected %s: %w", winner.name, name, err)
		}
	}

	return t, nil
}

func (m *Meta) mostDerived(bases []*Type) (*Meta, error) {
	winner := m
	for _, b := range bases {
		bm := b.meta
		switch {
		case winner.IsSubmetaOf(bm):
		case bm.IsSubmetaOf(winner):
			winner = bm
		default:
			return nil, fmt.Errorf("%w: %s and %s (of base %s) are unrelated",
				ErrMetaclassConflict, winner.name, bm.name, b.Name())
		}
	}

	return winner, nil
}

// linearize computes the C3 method resolution order of t.
func linearize(t *Type, bases []*Type) ([]*Type, error) {
	for i, b := range bases {
		if slices.Index(bases[:i], b) >= 0 {
			return nil, fmt.Errorf("%w: duplicate base %s", ErrInconsistentHierarchy, b.Name())
		}
	}

	effective := bases
	if len(effective) == 0 {
		effective = []*Type{Object}
	}

	seqs := make([][]*Type, 0, len(effective)+1)
	for _, b := range effective {
		seqs = append(seqs, slices.Clone(b.mro))
	}

	seqs = append(seqs, slices.Clone(effective))

	out := []*Type{t}

	for {
		seqs = slices.DeleteFunc(seqs, func(s []*Type) bool { return len(s) == 0 })
		if len(seqs) == 0 {
			return out, nil
		}

		var head *Type

		for _, s := range seqs {
			if !inTail(seqs, s[0]) {
				head = s[0]
				break
			}
		}

		if head == nil {
			names := make([]string, 0, len(bases))
			for _, b := range bases {
				names = append(names, b.Name())
			}

			return nil, fmt.Errorf("%w: cannot order bases %s", ErrInconsistentHierarchy, strings.Join(names, ", "))
		}

		out = append(out, head)

		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
}

func inTail(seqs [][]*Type, t *Type) bool {
	for _, s := range seqs {
		if slices.Index(s[1:], t) >= 0 {
			return true
		}
	}

	return false
}

// Type is a constructed type. Its identity is the pointer; ID is a stable
// printable form of that identity.
type Type struct {
	id    uuid.UUID
	bases []*Type
	meta  *Meta
	mro   []*Type

	mu    sync.RWMutex
	name  string
	attrs *Attrs
}

// ID returns the type's unique identifier. Object has the nil UUID.
func (t *Type) ID() uuid.UUID {
	return t.id
}

// Name returns the type's current name.
func (t *Type) Name() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.name
}

// Bases returns the declared bases in order.
func (t *Type) Bases() []*Type {
	return slices.Clone(t.bases)
}

// Meta returns the meta that constructed the type.
func (t *Type) Meta() *Meta {
	return t.meta
}

// MRO returns the full linearization, starting at t and ending at Object.
func (t *Type) MRO() []*Type {
	return slices.Clone(t.mro)
}

// Ancestors returns the linearization without the universal root,
// most derived first. The first element is t itself.
func (t *Type) Ancestors() []*Type {
	return slices.DeleteFunc(t.MRO(), func(a *Type) bool { return a == Object })
}

// IsSubtypeOf reports whether other appears in t's linearization.
func (t *Type) IsSubtypeOf(other *Type) bool {
	return slices.Contains(t.mro, other)
}

// OwnAttrs returns a copy of the attributes defined directly on t.
func (t *Type) OwnAttrs() *Attrs {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.attrs.Clone()
}

// Lookup resolves name through the linearization.
func (t *Type) Lookup(name string) (any, bool) {
	for _, a := range t.mro {
		if v, ok := a.Get(name); ok {
			return v, true
		}
	}

	return nil, false
}

// Get returns an attribute defined directly on t. NameAttr yields the name.
func (t *Type) Get(name string) (any, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if name == NameAttr {
		return t.name, true
	}

	return t.attrs.Get(name)
}

// Set assigns an attribute in place. Assigning a string to NameAttr renames
// the type.
func (t *Type) Set(name string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if name == NameAttr {
		if s, ok := value.(string); ok {
			t.name = s
			return
		}
	}

	t.attrs.Set(name, value)
}

// Delete removes an attribute defined directly on t.
func (t *Type) Delete(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.attrs.Delete(name)
}

// Snapshot returns t's own attributes with NameAttr included.
func (t *Type) Snapshot() *Attrs {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := NewAttrs()
	out.Set(NameAttr, t.name)
	t.attrs.Range(func(k string, v any) bool {
		out.Set(k, v)
		return true
	})

	return out
}

// String returns the type's name.
func (t *Type) String() string {
	return t.Name()
}
