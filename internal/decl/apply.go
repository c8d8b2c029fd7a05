package decl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"class-composer/internal/diagnostic"
	"class-composer/internal/directive"
	"class-composer/internal/logging"
	"class-composer/internal/resolve"
	"class-composer/internal/typesys"
)

// CodeUnresolvedDependency marks a declaration that refers to one which failed.
const CodeUnresolvedDependency = "unresolved_dependency"

// ErrInvalidFile is returned by Apply in strict mode when the file has errors.
var ErrInvalidFile = errors.New("declaration file has errors")

// Options controls Apply.
type Options struct {
	// Strict stops at the first error instead of skipping the failing
	// declaration.
	Strict bool
	// Decorators available to decorate directives. Nil means the built-in set.
	Decorators *DecoratorRegistry
	Logger     *slog.Logger
}

// Resolved is one successfully resolved declaration.
type Resolved struct {
	Decl string
	Type *typesys.Type
	// Patched is true when the declaration patched a type already bound.
	Patched bool
}

// Result is the outcome of Apply.
type Result struct {
	Imported    []typesys.TypeID
	Types       []Resolved
	Diagnostics *diagnostic.Diagnostics
}

// LoadImports loads f's Go package imports into reg.
func LoadImports(f *File, reg *typesys.Registry) ([]typesys.TypeID, error) {
	if len(f.Imports) == 0 {
		return nil, nil
	}

	ids, err := typesys.NewImporter(reg).LoadPackages(f.Imports...)
	if err != nil {
		return nil, fmt.Errorf("failed to import %v: %w", f.Imports, err)
	}

	return ids, nil
}

// Apply loads f's imports, defines its metaclasses, then resolves each
// type declaration in file order with r and binds the result under the
// declared name in reg.
//
// Declarations that fail validation or resolution are reported in the
// result's diagnostics and skipped; later declarations that refer to them
// fail as well. In strict mode Apply returns at the first error.
func Apply(ctx context.Context, f *File, reg *typesys.Registry, r *resolve.Resolver, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	decorators := opts.Decorators
	if decorators == nil {
		decorators = NewDecoratorRegistry()
	}

	if r == nil {
		r = resolve.New(resolve.Config{Logger: logger})
	}

	res := &Result{Diagnostics: &diagnostic.Diagnostics{}}

	if f == nil || reg == nil {
		diags := Validate(f, reg, decorators)
		res.Diagnostics.Merge(*diags)

		return res, fmt.Errorf("%w: %w", ErrInvalidFile, diags.Error())
	}

	imported, err := LoadImports(f, reg)
	if err != nil {
		return res, err
	}

	res.Imported = imported
	logger.Debug("imports loaded", "count", len(imported))

	diags, failed := validate(f, reg, decorators)
	res.Diagnostics.Merge(*diags)

	if opts.Strict && diags.HasErrors() {
		return res, fmt.Errorf("%w: %w", ErrInvalidFile, diags.Error())
	}

	defineMetaclasses(f, reg, res.Diagnostics)

	for i := range f.Types {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		td := &f.Types[i]
		if failed[i] {
			logger.Debug("skipping invalid declaration", "decl", td.Name)
			continue
		}

		resolved, err := applyDecl(r, reg, decorators, td)
		if err != nil {
			reportFailure(res.Diagnostics, td.Name, err)

			if opts.Strict {
				return res, fmt.Errorf("%w: %w", ErrInvalidFile, err)
			}

			logger.Warn("declaration failed", "decl", td.Name, "error", err)

			continue
		}

		res.Types = append(res.Types, resolved)
		logger.Debug("declared type", "decl", td.Name, "name", resolved.Type.Name(), "patched", resolved.Patched)
	}

	return res, nil
}

func defineMetaclasses(f *File, reg *typesys.Registry, diags *diagnostic.Diagnostics) {
	for _, md := range f.Metaclasses {
		if _, exists := reg.LookupMeta(md.Name); exists || md.Name == "" {
			continue
		}

		parentName := md.Parent
		if parentName == "" {
			parentName = typesys.TypeMeta.Name()
		}

		parent, ok := reg.LookupMeta(parentName)
		if !ok {
			continue
		}

		if err := reg.DefineMeta(typesys.NewMeta(md.Name, parent, nil)); err != nil {
			diags.AddError(CodeDuplicateMetaclass, err.Error(), md.Name, "")
		}
	}
}

func applyDecl(r *resolve.Resolver, reg *typesys.Registry, decorators *DecoratorRegistry, td *TypeDecl) (Resolved, error) {
	items, err := buildItems(reg, decorators, td)
	if err != nil {
		return Resolved{}, err
	}

	decl := resolve.Declaration{
		Name:  td.Name,
		Items: items,
		Attrs: td.Attrs.ToAttrs(),
	}

	if td.Meta != "" {
		m, ok := reg.LookupMeta(td.Meta)
		if !ok {
			return Resolved{}, dependencyError(td.Name, "meta", "metaclass", td.Meta)
		}

		decl.Meta = m
	}

	prev, bound := reg.Lookup(td.Name)

	t, err := r.Resolve(decl)
	if err != nil {
		return Resolved{}, err
	}

	reg.Bind(td.Name, t)

	return Resolved{Decl: td.Name, Type: t, Patched: bound && prev == t}, nil
}

// buildItems turns textual items into directive items bound to reg.
func buildItems(reg *typesys.Registry, decorators *DecoratorRegistry, td *TypeDecl) ([]directive.Item, error) {
	b := &itemBuilder{reg: reg, decorators: decorators, decl: td.Name}

	items := make([]directive.Item, 0, len(td.Items))
	for i := range td.Items {
		it := &td.Items[i]
		b.loc = fmt.Sprintf("items[%d]", i)

		if !it.IsDirective() {
			t, err := b.typ(it.Base)
			if err != nil {
				return nil, err
			}

			items = append(items, directive.BaseItem(t))

			continue
		}

		d, err := b.directive(it)
		if err != nil {
			return nil, err
		}

		items = append(items, d.Item())
	}

	return items, nil
}

type itemBuilder struct {
	reg        *typesys.Registry
	decorators *DecoratorRegistry
	decl       string
	loc        string
}

func (b *itemBuilder) directive(it *Item) (*directive.Directive, error) {
	kind, err := it.Kind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case directive.KindPatch:
		if !it.Names.IsSingle() {
			return nil, fmt.Errorf("%w: patch takes exactly one type", resolve.ErrInvalidOperand)
		}

		t, err := b.typ(it.Names.First())
		if err != nil {
			return nil, err
		}

		return directive.Patch(t), nil

	case directive.KindMetaclass:
		if !it.Names.IsSingle() {
			return nil, fmt.Errorf("%w: metaclass takes exactly one metaclass", resolve.ErrInvalidOperand)
		}

		m, err := b.meta(it.Names.First())
		if err != nil {
			return nil, err
		}

		return directive.Metaclass(m), nil

	case directive.KindDecorate:
		decs := make([]typesys.Decorator, 0, len(it.Decorators))
		for _, spec := range it.Decorators {
			dec, err := b.decorators.Build(spec, b.reg)
			if err != nil {
				var dep *DependencyError
				if errors.As(err, &dep) {
					dep.Decl, dep.Loc = b.decl, b.loc
				}

				return nil, err
			}

			decs = append(decs, dec)
		}

		return directive.Decorate(decs), nil

	case directive.KindComposite:
		return b.compose(it.Compose)

	default:
		types, err := b.types(it.Names)
		if err != nil {
			return nil, err
		}

		return directive.New(kind, types)
	}
}

func (b *itemBuilder) compose(spec *ComposeSpec) (*directive.Directive, error) {
	if spec.IsEmpty() {
		return nil, fmt.Errorf("%w: empty compose", resolve.ErrInvalidOperand)
	}

	bases, err := b.types(spec.Bases)
	if err != nil {
		return nil, err
	}

	var opts []directive.ComposeOption

	if spec.Metaclass != "" {
		m, err := b.meta(spec.Metaclass)
		if err != nil {
			return nil, err
		}

		opts = append(opts, directive.WithMetaclass(m))
	}

	if len(spec.Includes) > 0 {
		includes, err := b.types(spec.Includes)
		if err != nil {
			return nil, err
		}

		opts = append(opts, directive.WithIncludes(includes))
	}

	return directive.Compose(bases, opts...), nil
}

func (b *itemBuilder) types(names []string) ([]*typesys.Type, error) {
	out := make([]*typesys.Type, 0, len(names))
	for _, name := range names {
		t, err := b.typ(name)
		if err != nil {
			return nil, err
		}

		out = append(out, t)
	}

	return out, nil
}

func (b *itemBuilder) typ(name string) (*typesys.Type, error) {
	t, ok := b.reg.Lookup(name)
	if !ok {
		return nil, dependencyError(b.decl, b.loc, "type", name)
	}

	return t, nil
}

func (b *itemBuilder) meta(name string) (*typesys.Meta, error) {
	m, ok := b.reg.LookupMeta(name)
	if !ok {
		return nil, dependencyError(b.decl, b.loc, "metaclass", name)
	}

	return m, nil
}

// DependencyError reports a reference that is not bound when the
// declaration is resolved.
type DependencyError struct {
	Decl string
	Loc  string
	What string
	Name string
}

func dependencyError(decl, loc, what, name string) *DependencyError {
	return &DependencyError{Decl: decl, Loc: loc, What: what, Name: name}
}

func (e *DependencyError) Error() string {
	if e.Loc == "" {
		return fmt.Sprintf("%s %q is not bound", e.What, e.Name)
	}

	return fmt.Sprintf("%s: %s %q is not bound", e.Loc, e.What, e.Name)
}

func reportFailure(diags *diagnostic.Diagnostics, decl string, err error) {
	var (
		dep  *DependencyError
		rerr *resolve.Error
	)

	switch {
	case errors.As(err, &dep):
		diags.AddError(CodeUnresolvedDependency, err.Error(), decl, dep.Loc)
	case errors.As(err, &rerr):
		diags.AddError(rerr.Code, rerr.Err.Error(), decl, rerr.Directive)
	case errors.Is(err, ErrUnknownDecorator):
		diags.AddError(CodeUnknownDecorator, err.Error(), decl, "")
	case errors.Is(err, ErrDecoratorArg):
		diags.AddError(resolve.CodeInvalidOperand, err.Error(), decl, "")
	default:
		diags.AddError(resolve.CodeOf(err), err.Error(), decl, "")
	}
}
