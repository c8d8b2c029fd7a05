package resolve

import (
	"fmt"

	"class-composer/internal/directive"
	"class-composer/internal/typesys"
)

// applyPatch assigns the declared attributes onto the existing target and
// makes it the final type.
func applyPatch(_ *Resolver, ctx *Context, d *directive.Directive) error {
	target, err := singleType(d)
	if err != nil {
		return err
	}

	if target == typesys.Object {
		return fmt.Errorf("%w: cannot patch the root type", ErrInvalidOperand)
	}

	if target.Name() != ctx.Name {
		return fmt.Errorf("%w: orig=%s, new=%s", ErrNameMismatch, target.Name(), ctx.Name)
	}

	if len(ctx.Bases) > 0 {
		return ErrIllegalAncestryChange
	}

	// The target was already constructed by its own meta.
	if ctx.Meta != nil {
		return fmt.Errorf("%w: %s cannot be applied to existing %s (built by %s)",
			ErrDuplicateMetaclassDeclaration, ctx.Meta.Name(), target.Name(), target.Meta().Name())
	}

	ctx.Attrs.Range(func(k string, v any) bool {
		target.Set(k, v)
		return true
	})

	ctx.Final = target

	return nil
}

// applyInclude copies the own attributes of every ancestor of each operand.
// Operands are walked right to left so the first-listed one is written last.
func applyInclude(_ *Resolver, ctx *Context, d *directive.Directive) error {
	sources, err := typeOperands(d)
	if err != nil {
		return err
	}

	for i := len(sources) - 1; i >= 0; i-- {
		for _, ancestor := range sources[i].Ancestors() {
			ancestor.OwnAttrs().Range(func(k string, v any) bool {
				ctx.Attrs.Set(k, v)
				return true
			})
		}
	}

	return nil
}

func applyInherits(_ *Resolver, ctx *Context, d *directive.Directive) error {
	bases, err := typeOperands(d)
	if err != nil {
		return err
	}

	if len(ctx.Bases) > 0 {
		return fmt.Errorf("%w: bases already declared as %v", ErrDuplicateBaseDeclaration, ctx.Bases)
	}

	ctx.Bases = bases

	return nil
}

func applyMetaclass(_ *Resolver, ctx *Context, d *directive.Directive) error {
	args := d.Args()
	if len(args) != 1 {
		return fmt.Errorf("%w: metaclass takes exactly one meta, got %d", ErrInvalidOperand, len(args))
	}

	meta, ok := args[0].(*typesys.Meta)
	if !ok || meta == nil {
		return fmt.Errorf("%w: expected a metaclass, got %T", ErrInvalidOperand, args[0])
	}

	if ctx.Meta != nil {
		return fmt.Errorf("%w: %s already selected, cannot also use %s",
			ErrDuplicateMetaclassDeclaration, ctx.Meta.Name(), meta.Name())
	}

	ctx.Meta = meta

	return nil
}

// applyDecorate runs each decorator, right to left, against a fresh shim and
// copies the net change back into the context.
func applyDecorate(r *Resolver, ctx *Context, d *directive.Directive) error {
	decorators, err := decoratorOperands(d)
	if err != nil {
		return err
	}

	for i := len(decorators) - 1; i >= 0; i-- {
		shim := typesys.NewShim(ctx.Name, ctx.Attrs)
		before := shim.Snapshot()

		if err := decorators[i](shim); err != nil {
			return fmt.Errorf("decorator %d: %w", i, err)
		}

		after := shim.Snapshot()
		delta := typesys.Diff(before, after)

		for _, k := range delta.Removed {
			if k == typesys.NameAttr {
				r.logger.Debug("ignoring removal of type name", "decl", ctx.Name)
				continue
			}

			ctx.Attrs.Delete(k)
		}

		for _, k := range append(delta.Added, delta.Changed...) {
			v, _ := after.Get(k)
			if k != typesys.NameAttr {
				ctx.Attrs.Set(k, v)
				continue
			}

			name, ok := v.(string)
			if !ok || name == "" {
				return fmt.Errorf("%w: decorator %d set %s to %v", ErrInvalidOperand, i, typesys.NameAttr, v)
			}

			ctx.Name = name
		}
	}

	return nil
}

// applyComposite re-enters directive application with the nested directives.
func applyComposite(r *Resolver, ctx *Context, d *directive.Directive) error {
	args := d.Args()
	nested := make([]*directive.Directive, 0, len(args))

	for _, a := range args {
		nd, ok := a.(*directive.Directive)
		if !ok || nd == nil {
			return fmt.Errorf("%w: compose expects directives, got %T", ErrInvalidOperand, a)
		}

		nested = append(nested, nd)
	}

	return r.apply(ctx, nested)
}

func singleType(d *directive.Directive) (*typesys.Type, error) {
	ts, err := typeOperands(d)
	if err != nil {
		return nil, err
	}

	if len(ts) != 1 {
		return nil, fmt.Errorf("%w: %s takes exactly one type, got %d", ErrInvalidOperand, d.Kind(), len(ts))
	}

	return ts[0], nil
}

// typeOperands requires every operand to be a type. Mappings and other
// values are rejected rather than iterated.
func typeOperands(d *directive.Directive) ([]*typesys.Type, error) {
	args := d.Args()
	out := make([]*typesys.Type, 0, len(args))

	for i, a := range args {
		t, ok := a.(*typesys.Type)
		if !ok || t == nil {
			return nil, fmt.Errorf("%w: %s operand %d must be a type, got %T", ErrInvalidOperand, d.Kind(), i, a)
		}

		out = append(out, t)
	}

	return out, nil
}

func decoratorOperands(d *directive.Directive) ([]typesys.Decorator, error) {
	args := d.Args()
	out := make([]typesys.Decorator, 0, len(args))

	for i, a := range args {
		var dec typesys.Decorator

		switch fn := a.(type) {
		case typesys.Decorator:
			dec = fn
		case func(typesys.Surface) error:
			dec = fn
		}

		if dec == nil {
			return nil, fmt.Errorf("%w: decorate operand %d must be a decorator, got %T", ErrInvalidOperand, i, a)
		}

		out = append(out, dec)
	}

	return out, nil
}
