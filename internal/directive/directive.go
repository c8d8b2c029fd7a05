package directive

import (
	"errors"
	"fmt"
	"iter"
	"reflect"
	"slices"
	"strings"

	"class-composer/internal/typesys"
)

// Directive is an immutable instruction for the type under construction.
type Directive struct {
	kind Kind
	args []any
}

// New builds a directive of the given kind. valueOrSeq is either a single
// operand or an ordered sequence of operands (slice, array or iter.Seq[any]);
// operand types are checked later, when the directive is applied.
func New(kind Kind, valueOrSeq any) (*Directive, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUnrecognizedDirectiveKind, int(kind))
	}

	return &Directive{kind: kind, args: normalize(valueOrSeq)}, nil
}

// MustNew is like New but panics on an unrecognized kind.
func MustNew(kind Kind, valueOrSeq any) *Directive {
	d, err := New(kind, valueOrSeq)
	if err != nil {
		panic(err)
	}

	return d
}

// Patch rewrites an existing type in place instead of creating a new one.
func Patch(target any) *Directive { return MustNew(KindPatch, target) }

// Include copies the attributes of the given types without inheriting them.
func Include(valueOrSeq any) *Directive { return MustNew(KindInclude, valueOrSeq) }

// Inherits replaces the declaration's base list.
func Inherits(valueOrSeq any) *Directive { return MustNew(KindInherits, valueOrSeq) }

// Metaclass selects the meta-type that constructs the declared type.
func Metaclass(meta any) *Directive { return MustNew(KindMetaclass, meta) }

// Decorate runs legacy decorators against the pending attributes.
func Decorate(valueOrSeq any) *Directive { return MustNew(KindDecorate, valueOrSeq) }

// normalize materializes sequences in order and wraps anything else.
// Maps are unordered and therefore wrapped as a single operand.
func normalize(v any) []any {
	switch seq := v.(type) {
	case nil:
		return []any{nil}
	case []any:
		return slices.Clone(seq)
	case iter.Seq[any]:
		return slices.Collect(seq)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}

		return out
	default:
		return []any{v}
	}
}

// Kind returns the directive's kind.
func (d *Directive) Kind() Kind {
	return d.kind
}

// Args returns a copy of the normalized operands.
func (d *Directive) Args() []any {
	return slices.Clone(d.args)
}

// Len returns the number of operands.
func (d *Directive) Len() int {
	return len(d.args)
}

// Solo reports whether the directive must be the only one in a declaration.
func (d *Directive) Solo() bool {
	return d.kind.IsSolo()
}

// String renders the directive as kind(arg, ...).
func (d *Directive) String() string {
	parts := make([]string, 0, len(d.args))
	for _, a := range d.args {
		parts = append(parts, operandString(a))
	}

	return d.kind.String() + "(" + strings.Join(parts, ", ") + ")"
}

func operandString(a any) string {
	switch v := a.(type) {
	case *typesys.Type:
		return v.Name()
	case *typesys.Meta:
		return v.Name()
	case *Directive:
		return v.String()
	case typesys.Decorator, func(typesys.Surface) error:
		return "<decorator>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ErrInvalidItem is returned by Items for values that are neither a type nor a directive.
var ErrInvalidItem = errors.New("declaration item must be a type or a directive")

// Item is one entry of a declaration's base list: either a genuine base
// type or a directive.
type Item struct {
	base      *typesys.Type
	directive *Directive
}

// BaseItem wraps a genuine base type.
func BaseItem(t *typesys.Type) Item {
	return Item{base: t}
}

// Item wraps the directive as a declaration item.
func (d *Directive) Item() Item {
	return Item{directive: d}
}

// Base returns the genuine base, or nil when the item is a directive.
func (i Item) Base() *typesys.Type {
	return i.base
}

// Directive returns the directive, or nil when the item is a genuine base.
func (i Item) Directive() *Directive {
	return i.directive
}

// IsDirective reports whether the item is a directive.
func (i Item) IsDirective() bool {
	return i.directive != nil
}

// Items builds a declaration item list from types and directives in order.
func Items(vals ...any) ([]Item, error) {
	out := make([]Item, 0, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case *typesys.Type:
			out = append(out, BaseItem(x))
		case *Directive:
			out = append(out, x.Item())
		case Item:
			out = append(out, x)
		default:
			return nil, fmt.Errorf("%w: item %d is %T", ErrInvalidItem, i, v)
		}
	}

	return out, nil
}
