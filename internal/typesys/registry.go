package typesys

import (
	"fmt"
	"slices"
	"sync"
)

// Registry binds names to types and metas. It plays the role of a module
// namespace: declaring a type binds its name, patching rebinds the same object.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Type
	order []string
	metas map[string]*Meta
}

// NewRegistry creates a registry with "object" and "type" pre-bound.
func NewRegistry() *Registry {
	r := &Registry{
		types: make(map[string]*Type),
		metas: make(map[string]*Meta),
	}
	r.Bind(Object.Name(), Object)
	r.metas[TypeMeta.Name()] = TypeMeta

	return r
}

// Bind binds name to t, replacing any previous binding.
func (r *Registry) Bind(name string, t *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.types[name]; !ok {
		r.order = append(r.order, name)
	}

	r.types[name] = t
}

// Lookup returns the type bound to name.
func (r *Registry) Lookup(name string) (*Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]

	return t, ok
}

// Names returns bound type names in first-bind order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.order)
}

// DefineMeta registers m under its name. Redefinition is an error.
func (r *Registry) DefineMeta(m *Meta) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.metas[m.Name()]; ok {
		return fmt.Errorf("metaclass %q already defined", m.Name())
	}

	r.metas[m.Name()] = m

	return nil
}

// LookupMeta returns the meta registered under name.
func (r *Registry) LookupMeta(name string) (*Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.metas[name]

	return m, ok
}

// MetaNames returns all registered meta names, sorted.
func (r *Registry) MetaNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.metas))
	for n := range r.metas {
		names = append(names, n)
	}

	slices.Sort(names)

	return names
}
