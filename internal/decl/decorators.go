package decl

import (
	"errors"
	"fmt"
	"slices"

	"class-composer/internal/typesys"
)

// SealedAttr is set to true by the seal decorator.
const SealedAttr = "__sealed__"

var (
	// ErrUnknownDecorator is returned for a decorator name with no registered definition.
	ErrUnknownDecorator = errors.New("unknown decorator")
	// ErrDecoratorArg is returned when a decorator's argument is missing or unexpected.
	ErrDecoratorArg = errors.New("bad decorator argument")
)

// DecoratorFactory builds a decorator from its argument. Types are
// looked up in the registry the file is applied against.
type DecoratorFactory func(arg string, types *typesys.Registry) (typesys.Decorator, error)

// DecoratorDef describes a named decorator available to declaration files.
type DecoratorDef struct {
	Name string
	// ArgKind is "" for decorators without an argument, "type" when the
	// argument names a type, "text" otherwise.
	ArgKind     string
	Description string
	Factory     DecoratorFactory
}

// TakesArg reports whether the decorator expects an argument.
func (d *DecoratorDef) TakesArg() bool {
	return d.ArgKind != ""
}

// DecoratorRegistry holds the decorators a file may refer to.
type DecoratorRegistry struct {
	defs map[string]*DecoratorDef
}

// NewDecoratorRegistry returns a registry preloaded with wraps, rename,
// drop, doc and seal.
func NewDecoratorRegistry() *DecoratorRegistry {
	r := &DecoratorRegistry{defs: make(map[string]*DecoratorDef)}

	for _, def := range builtinDecorators() {
		r.defs[def.Name] = def
	}

	return r
}

// Register adds def. Names must be unique.
func (r *DecoratorRegistry) Register(def *DecoratorDef) error {
	if def.Name == "" || def.Factory == nil {
		return errors.New("decorator needs a name and a factory")
	}

	if _, exists := r.defs[def.Name]; exists {
		return fmt.Errorf("duplicate decorator %q", def.Name)
	}

	r.defs[def.Name] = def

	return nil
}

// Get returns the definition registered under name, or nil.
func (r *DecoratorRegistry) Get(name string) *DecoratorDef {
	return r.defs[name]
}

// Has returns true if a decorator with the given name exists.
func (r *DecoratorRegistry) Has(name string) bool {
	_, exists := r.defs[name]
	return exists
}

// Names returns all decorator names, sorted.
func (r *DecoratorRegistry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Build instantiates spec.
func (r *DecoratorRegistry) Build(spec DecoratorSpec, types *typesys.Registry) (typesys.Decorator, error) {
	def := r.Get(spec.Name)
	if def == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDecorator, spec.Name)
	}

	if err := checkArg(def, spec); err != nil {
		return nil, err
	}

	return def.Factory(spec.Arg, types)
}

func checkArg(def *DecoratorDef, spec DecoratorSpec) error {
	switch {
	case def.TakesArg() && spec.Arg == "":
		return fmt.Errorf("%w: %s requires a %s argument", ErrDecoratorArg, def.Name, def.ArgKind)
	case !def.TakesArg() && spec.Arg != "":
		return fmt.Errorf("%w: %s takes no argument, got %q", ErrDecoratorArg, def.Name, spec.Arg)
	}

	return nil
}

func builtinDecorators() []*DecoratorDef {
	return []*DecoratorDef{
		{
			Name:        "wraps",
			ArgKind:     "type",
			Description: "copy __name__ and __doc__ from the named type",
			Factory:     wrapsFactory,
		},
		{
			Name:        "rename",
			ArgKind:     "text",
			Description: "set __name__",
			Factory: func(arg string, _ *typesys.Registry) (typesys.Decorator, error) {
				return func(s typesys.Surface) error {
					s.Set(typesys.NameAttr, arg)
					return nil
				}, nil
			},
		},
		{
			Name:        "drop",
			ArgKind:     "text",
			Description: "remove an attribute",
			Factory: func(arg string, _ *typesys.Registry) (typesys.Decorator, error) {
				return func(s typesys.Surface) error {
					if _, ok := s.Get(arg); !ok {
						return fmt.Errorf("drop: no attribute %q", arg)
					}

					s.Delete(arg)

					return nil
				}, nil
			},
		},
		{
			Name:        "doc",
			ArgKind:     "text",
			Description: "set __doc__",
			Factory: func(arg string, _ *typesys.Registry) (typesys.Decorator, error) {
				return func(s typesys.Surface) error {
					s.Set(typesys.DocAttr, arg)
					return nil
				}, nil
			},
		},
		{
			Name:        "seal",
			Description: "mark the type sealed",
			Factory: func(string, *typesys.Registry) (typesys.Decorator, error) {
				return func(s typesys.Surface) error {
					s.Set(SealedAttr, true)
					return nil
				}, nil
			},
		},
	}
}

func wrapsFactory(arg string, types *typesys.Registry) (typesys.Decorator, error) {
	orig, ok := types.Lookup(arg)
	if !ok {
		return nil, &DependencyError{What: "type", Name: arg}
	}

	return func(s typesys.Surface) error {
		s.Set(typesys.NameAttr, orig.Name())

		if doc, ok := orig.Get(typesys.DocAttr); ok {
			s.Set(typesys.DocAttr, doc)
		} else {
			s.Delete(typesys.DocAttr)
		}

		return nil
	}, nil
}
