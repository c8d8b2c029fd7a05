package directive

import (
	"maps"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-composer/internal/typesys"
)

func newType(t *testing.T, name string) *typesys.Type {
	t.Helper()

	typ, err := typesys.TypeMeta.New(name, nil, typesys.NewAttrs())
	require.NoError(t, err)

	return typ
}

func TestNew_Normalization(t *testing.T) {
	a, b, c := newType(t, "A"), newType(t, "B"), newType(t, "C")

	tests := []struct {
		name  string
		input any
		want  []any
	}{
		{name: "single value", input: a, want: []any{a}},
		{name: "slice with single value", input: []*typesys.Type{a}, want: []any{a}},
		{name: "slice with many values", input: []*typesys.Type{a, b, c}, want: []any{a, b, c}},
		{name: "array", input: [2]*typesys.Type{b, a}, want: []any{b, a}},
		{name: "any slice", input: []any{c, "x"}, want: []any{c, "x"}},
		{name: "iterator", input: slices.Values([]any{b, c}), want: []any{b, c}},
		{name: "string is one operand", input: "abc", want: []any{"abc"}},
		{name: "map is one operand", input: map[string]int{"k": 1}, want: []any{map[string]int{"k": 1}}},
		{name: "nil", input: nil, want: []any{nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(KindInclude, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Args())
			assert.Equal(t, len(tt.want), d.Len())
		})
	}
}

func TestNew_UnrecognizedKind(t *testing.T) {
	_, err := New(Kind(0), nil)
	require.ErrorIs(t, err, ErrUnrecognizedDirectiveKind)

	_, err = New(Kind(KindTotal), nil)
	require.ErrorIs(t, err, ErrUnrecognizedDirectiveKind)

	assert.Panics(t, func() { MustNew(Kind(42), nil) })
}

func TestDirective_ArgsAreCopied(t *testing.T) {
	a, b := newType(t, "A"), newType(t, "B")
	src := []*typesys.Type{a}
	d := Inherits(src)

	src[0] = b
	args := d.Args()
	args[0] = "mutated"

	assert.Equal(t, []any{a}, d.Args())
}

func TestDirective_Solo(t *testing.T) {
	a := newType(t, "A")

	assert.True(t, Patch(a).Solo())
	assert.True(t, Compose(nil).Solo())
	assert.False(t, Include(a).Solo())
	assert.False(t, Inherits(a).Solo())
	assert.False(t, Metaclass(typesys.TypeMeta).Solo())
	assert.False(t, Decorate(typesys.Decorator(nil)).Solo())
}

func TestKind_StringAndParse(t *testing.T) {
	for k := KindPatch; int(k) < KindTotal; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	k, err := ParseKind(" Includes ")
	require.NoError(t, err)
	assert.Equal(t, KindInclude, k)

	k, err = ParseKind("py3")
	require.NoError(t, err)
	assert.Equal(t, KindComposite, k)

	_, err = ParseKind("mixin")
	assert.ErrorIs(t, err, ErrUnrecognizedDirectiveKind)

	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestCompose(t *testing.T) {
	a, b, e := newType(t, "A"), newType(t, "B"), newType(t, "E")
	meta := typesys.NewMeta("M", nil, nil)

	d := Compose([]*typesys.Type{a, b}, WithMetaclass(meta), WithIncludes(e))
	require.Equal(t, KindComposite, d.Kind())

	args := d.Args()
	require.Len(t, args, 3)

	kinds := make([]Kind, 0, len(args))
	for _, arg := range args {
		nested, ok := arg.(*Directive)
		require.True(t, ok)
		kinds = append(kinds, nested.Kind())
	}

	assert.Equal(t, []Kind{KindInherits, KindMetaclass, KindInclude}, kinds)
	assert.Equal(t, []any{a, b}, args[0].(*Directive).Args())
	assert.Equal(t, "compose(inherits(A, B), metaclass(M), include(E))", d.String())
}

func TestCompose_OmitsMissingParts(t *testing.T) {
	e := newType(t, "E")

	d := Compose(nil, WithIncludes([]*typesys.Type{e}))
	require.Len(t, d.Args(), 1)
	assert.Equal(t, KindInclude, d.Args()[0].(*Directive).Kind())

	assert.Empty(t, Compose(nil).Args())
}

func TestItems(t *testing.T) {
	a := newType(t, "A")
	inc := Include(a)

	items, err := Items(a, inc, BaseItem(a))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Same(t, a, items[0].Base())
	assert.False(t, items[0].IsDirective())
	assert.Same(t, inc, items[1].Directive())
	assert.Nil(t, items[1].Base())
	assert.Same(t, a, items[2].Base())

	_, err = Items(a, map[string]any{"x": 1})
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestNew_IteratorFromMapKeysIsSequence(t *testing.T) {
	keys := slices.Sorted(maps.Keys(map[string]int{"b": 1, "a": 2}))
	d := Include(slices.Values(keys))

	// iter.Seq[string] is not iter.Seq[any]; it is a single operand.
	assert.Equal(t, 1, d.Len())
}
