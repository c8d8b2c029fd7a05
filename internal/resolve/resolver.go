package resolve

import (
	"errors"
	"fmt"
	"log/slog"

	"class-composer/internal/directive"
	"class-composer/internal/logging"
	"class-composer/internal/typesys"
)

// Context is the per-declaration state directive handlers mutate.
// It is never shared between resolutions.
type Context struct {
	Name  string
	Bases []*typesys.Type
	Attrs *typesys.Attrs
	Meta  *typesys.Meta
	Final *typesys.Type
}

// Declaration is one type declaration.
type Declaration struct {
	Name  string
	Items []directive.Item
	// Attrs is the declared attribute map. Directive handlers mutate it in place.
	Attrs *typesys.Attrs
	// Meta is a metaclass selected outside the item list. A metaclass
	// directive in Items then conflicts with it.
	Meta *typesys.Meta
}

// Config holds resolver settings.
type Config struct {
	// Logger receives a debug record per applied directive. Nil discards.
	Logger *slog.Logger
}

type handlerFunc func(r *Resolver, ctx *Context, d *directive.Directive) error

// Resolver applies directives and constructs final types. It holds no
// per-declaration state and may be reused.
type Resolver struct {
	logger   *slog.Logger
	handlers map[directive.Kind]handlerFunc
}

// New creates a Resolver.
func New(cfg Config) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Resolver{
		logger: logger,
		handlers: map[directive.Kind]handlerFunc{
			directive.KindPatch:     applyPatch,
			directive.KindInclude:   applyInclude,
			directive.KindInherits:  applyInherits,
			directive.KindMetaclass: applyMetaclass,
			directive.KindDecorate:  applyDecorate,
			directive.KindComposite: applyComposite,
		},
	}
}

// Option adjusts a single Resolve call.
type Option func(*Declaration)

// WithMetaclass selects a metaclass outside the item list.
func WithMetaclass(m *typesys.Meta) Option {
	return func(d *Declaration) { d.Meta = m }
}

// Resolve declares a type with a default Resolver.
func Resolve(name string, items []directive.Item, attrs *typesys.Attrs, opts ...Option) (*typesys.Type, error) {
	decl := Declaration{Name: name, Items: items, Attrs: attrs}
	for _, opt := range opts {
		opt(&decl)
	}

	return New(Config{}).Resolve(decl)
}

// Resolve turns decl into its final type: either the patched pre-existing
// type (same identity) or a newly constructed one.
func (r *Resolver) Resolve(decl Declaration) (*typesys.Type, error) {
	if decl.Name == "" {
		return nil, newError(decl.Name, nil, fmt.Errorf("%w: empty name", ErrInvalidDeclaration))
	}

	attrs := decl.Attrs
	if attrs == nil {
		attrs = typesys.NewAttrs()
	}

	var (
		bases      []*typesys.Type
		directives []*directive.Directive
	)

	for i, item := range decl.Items {
		switch {
		case item.IsDirective():
			directives = append(directives, item.Directive())
		case item.Base() != nil:
			bases = append(bases, item.Base())
		default:
			return nil, newError(decl.Name, nil, fmt.Errorf("%w: item %d is empty", ErrInvalidDeclaration, i))
		}
	}

	ctx := &Context{
		Name:  decl.Name,
		Bases: bases,
		Attrs: attrs,
		Meta:  decl.Meta,
	}

	if err := r.apply(ctx, directives); err != nil {
		return nil, err
	}

	if ctx.Final != nil {
		r.logger.Debug("patched type", "name", ctx.Name, "id", ctx.Final.ID())
		return ctx.Final, nil
	}

	meta := ctx.Meta
	if meta == nil {
		meta = typesys.TypeMeta
	}

	t, err := meta.New(ctx.Name, ctx.Bases, ctx.Attrs)
	if err != nil {
		return nil, newError(ctx.Name, nil, err)
	}

	r.logger.Debug("constructed type", "name", t.Name(), "meta", t.Meta().Name(), "id", t.ID())

	return t, nil
}

// apply checks the solo rule and runs handlers right to left.
func (r *Resolver) apply(ctx *Context, directives []*directive.Directive) error {
	if err := checkSolo(directives); err != nil {
		return newError(ctx.Name, err.d, err.err)
	}

	for i := len(directives) - 1; i >= 0; i-- {
		d := directives[i]

		h, ok := r.handlers[d.Kind()]
		if !ok {
			return newError(ctx.Name, d, fmt.Errorf("%w: %s", directive.ErrUnrecognizedDirectiveKind, d.Kind()))
		}

		r.logger.Debug("applying directive", "decl", ctx.Name, "directive", d.String())

		if err := h(r, ctx, d); err != nil {
			var rerr *Error
			if errors.As(err, &rerr) {
				return err
			}

			return newError(ctx.Name, d, err)
		}
	}

	return nil
}

type soloError struct {
	d   *directive.Directive
	err error
}

func checkSolo(directives []*directive.Directive) *soloError {
	if len(directives) < 2 {
		return nil
	}

	for _, d := range directives {
		if d.Solo() {
			return &soloError{
				d:   d,
				err: fmt.Errorf("%w: %s must be the only directive, found %d", ErrSoloConflict, d.Kind(), len(directives)),
			}
		}
	}

	return nil
}
