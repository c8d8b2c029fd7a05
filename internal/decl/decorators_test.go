package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-composer/internal/typesys"
)

func TestDecoratorRegistry_Builtins(t *testing.T) {
	r := NewDecoratorRegistry()
	assert.Equal(t, []string{"doc", "drop", "rename", "seal", "wraps"}, r.Names())
	assert.True(t, r.Has("wraps"))
	assert.False(t, r.Has("missing"))
	assert.Nil(t, r.Get("missing"))
	assert.True(t, r.Get("wraps").TakesArg())
	assert.False(t, r.Get("seal").TakesArg())
}

func TestDecoratorRegistry_Register(t *testing.T) {
	r := NewDecoratorRegistry()
	upper := &DecoratorDef{
		Name: "tag",
		Factory: func(string, *typesys.Registry) (typesys.Decorator, error) {
			return func(s typesys.Surface) error {
				s.Set("tagged", true)
				return nil
			}, nil
		},
	}

	require.NoError(t, r.Register(upper))
	require.Error(t, r.Register(upper))
	require.Error(t, r.Register(&DecoratorDef{Name: "nofactory"}))
	assert.True(t, r.Has("tag"))
}

func TestDecoratorRegistry_Build(t *testing.T) {
	types := typesys.NewRegistry()
	foo, err := typesys.TypeMeta.New("Foo", nil, typesys.AttrsOf(map[string]any{
		typesys.DocAttr: "foo doc",
		"x":             3,
	}))
	require.NoError(t, err)
	types.Bind("Foo", foo)

	r := NewDecoratorRegistry()

	tests := []struct {
		name  string
		spec  DecoratorSpec
		check func(t *testing.T, s *typesys.Shim)
	}{
		{
			name: "wraps copies name and doc",
			spec: DecoratorSpec{Name: "wraps", Arg: "Foo"},
			check: func(t *testing.T, s *typesys.Shim) {
				t.Helper()

				name, _ := s.Get(typesys.NameAttr)
				doc, _ := s.Get(typesys.DocAttr)
				x, _ := s.Get("x")
				assert.Equal(t, "Foo", name)
				assert.Equal(t, "foo doc", doc)
				assert.Equal(t, 4, x)
			},
		},
		{
			name: "rename",
			spec: DecoratorSpec{Name: "rename", Arg: "Renamed"},
			check: func(t *testing.T, s *typesys.Shim) {
				t.Helper()

				name, _ := s.Get(typesys.NameAttr)
				assert.Equal(t, "Renamed", name)
			},
		},
		{
			name: "drop",
			spec: DecoratorSpec{Name: "drop", Arg: "x"},
			check: func(t *testing.T, s *typesys.Shim) {
				t.Helper()

				_, ok := s.Get("x")
				assert.False(t, ok)
			},
		},
		{
			name: "doc",
			spec: DecoratorSpec{Name: "doc", Arg: "bar doc"},
			check: func(t *testing.T, s *typesys.Shim) {
				t.Helper()

				doc, _ := s.Get(typesys.DocAttr)
				assert.Equal(t, "bar doc", doc)
			},
		},
		{
			name: "seal",
			spec: DecoratorSpec{Name: "seal"},
			check: func(t *testing.T, s *typesys.Shim) {
				t.Helper()

				sealed, _ := s.Get(SealedAttr)
				assert.Equal(t, true, sealed)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, err := r.Build(tt.spec, types)
			require.NoError(t, err)

			shim := typesys.NewShim("Bar", typesys.AttrsOf(map[string]any{"x": 4}))
			require.NoError(t, dec(shim))
			tt.check(t, shim)
		})
	}
}

func TestDecoratorRegistry_BuildErrors(t *testing.T) {
	types := typesys.NewRegistry()
	r := NewDecoratorRegistry()

	_, err := r.Build(DecoratorSpec{Name: "missing"}, types)
	require.ErrorIs(t, err, ErrUnknownDecorator)

	_, err = r.Build(DecoratorSpec{Name: "wraps"}, types)
	require.ErrorIs(t, err, ErrDecoratorArg)

	_, err = r.Build(DecoratorSpec{Name: "seal", Arg: "x"}, types)
	require.ErrorIs(t, err, ErrDecoratorArg)

	_, err = r.Build(DecoratorSpec{Name: "wraps", Arg: "Nope"}, types)

	var dep *DependencyError
	require.ErrorAs(t, err, &dep)
	assert.Equal(t, "Nope", dep.Name)
	assert.Contains(t, err.Error(), "Nope")

	drop, err := r.Build(DecoratorSpec{Name: "drop", Arg: "absent"}, types)
	require.NoError(t, err)
	require.Error(t, drop(typesys.NewShim("A", typesys.NewAttrs())))
}

func TestDecoratorSpec_String(t *testing.T) {
	assert.Equal(t, "seal", DecoratorSpec{Name: "seal"}.String())
	assert.Equal(t, "wraps Foo", DecoratorSpec{Name: "wraps", Arg: "Foo"}.String())
}
