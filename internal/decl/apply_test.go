package decl

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"class-composer/internal/resolve"
	"class-composer/internal/typesys"
)

const applyYAML = `
metaclasses:
  - name: ABCMeta
types:
  - name: Base
    attrs: {first_name: Base First, last_name: Base Last}
  - name: FooBase
    items: [Base]
    attrs: {first_name: Foo First}
  - name: Person
    items:
      - include: FooBase
    attrs: {age: 30}
  - name: Person
    items:
      - patch: Person
    attrs: {nickname: Steve}
  - name: Abstract
    items:
      - metaclass: ABCMeta
  - name: Wrapped
    items:
      - decorate: [{wraps: Base}, seal]
    attrs: {x: 4}
  - name: Composed
    items:
      - compose: {bases: [FooBase], metaclass: ABCMeta, includes: Person}
`

func TestApply(t *testing.T) {
	reg := typesys.NewRegistry()
	f := mustParse(t, applyYAML)

	res, err := Apply(context.Background(), f, reg, nil, Options{})
	require.NoError(t, err)
	require.True(t, res.Diagnostics.IsValid(), "unexpected errors: %v", res.Diagnostics.Errors)
	require.Len(t, res.Types, 7)

	base, ok := reg.Lookup("Base")
	require.True(t, ok)

	fooBase, ok := reg.Lookup("FooBase")
	require.True(t, ok)
	assert.Equal(t, []*typesys.Type{fooBase, base, typesys.Object}, fooBase.MRO())

	person, ok := reg.Lookup("Person")
	require.True(t, ok)
	assert.Empty(t, person.Bases())
	assert.Equal(t, []*typesys.Type{person, typesys.Object}, person.MRO())

	last, _ := person.Get("last_name")
	assert.Equal(t, "Base Last", last)

	first, _ := person.Get("first_name")
	assert.Equal(t, "Base First", first)

	age, _ := person.Get("age")
	assert.Equal(t, 30, age)

	// The patch keeps identity and adds attributes in place.
	assert.False(t, res.Types[2].Patched)
	assert.True(t, res.Types[3].Patched)
	assert.Same(t, res.Types[2].Type, res.Types[3].Type)

	nick, _ := person.Get("nickname")
	assert.Equal(t, "Steve", nick)

	abstract, ok := reg.Lookup("Abstract")
	require.True(t, ok)
	assert.Equal(t, "ABCMeta", abstract.Meta().Name())

	wrapped, ok := reg.Lookup("Wrapped")
	require.True(t, ok)
	assert.Equal(t, "Base", wrapped.Name())
	assert.Equal(t, "Wrapped", res.Types[5].Decl)

	sealed, _ := wrapped.Get(SealedAttr)
	assert.Equal(t, true, sealed)

	x, _ := wrapped.Get("x")
	assert.Equal(t, 4, x)

	composed, ok := reg.Lookup("Composed")
	require.True(t, ok)
	assert.Equal(t, "ABCMeta", composed.Meta().Name())
	assert.True(t, composed.IsSubtypeOf(base))

	nick, _ = composed.Get("nickname")
	assert.Equal(t, "Steve", nick)
}

func TestApply_SkipsFailuresWhenLenient(t *testing.T) {
	reg := newTestRegistry(t, "Base")
	f := mustParse(t, `
types:
  - name: Derived
    items: [Base]
  - name: Bad
    items: [Base, Derived]
  - name: Dependent
    items: [Bad]
  - name: Typo
    items: [Bsae1]
  - name: Good
    items: [Derived]
`)

	res, err := Apply(context.Background(), f, reg, nil, Options{})
	require.NoError(t, err)

	var decls []string
	for _, r := range res.Types {
		decls = append(decls, r.Decl)
	}

	assert.Equal(t, []string{"Derived", "Good"}, decls)

	hierarchy := findError(res.Diagnostics, resolve.CodeInconsistentHierarchy)
	require.NotNil(t, hierarchy)
	assert.Equal(t, "Bad", hierarchy.Decl)

	dep := findError(res.Diagnostics, CodeUnresolvedDependency)
	require.NotNil(t, dep)
	assert.Equal(t, "Dependent", dep.Decl)
	assert.Equal(t, "items[0]", dep.Item)

	assert.NotNil(t, findError(res.Diagnostics, CodeUnknownType))

	_, ok := reg.Lookup("Bad")
	assert.False(t, ok)
}

func TestApply_WrapsUnboundType(t *testing.T) {
	reg := newTestRegistry(t, "Base")
	f := mustParse(t, `
types:
  - name: Derived
    items: [Base]
  - name: Bad
    items: [Base, Derived]
  - name: Wrapper
    items:
      - decorate: {wraps: Bad}
`)

	res, err := Apply(context.Background(), f, reg, nil, Options{})
	require.NoError(t, err)
	require.Len(t, res.Types, 1)

	var wrapper []string
	for _, d := range res.Diagnostics.Errors {
		if d.Decl == "Wrapper" {
			wrapper = append(wrapper, d.Code)

			assert.Equal(t, "items[0]", d.Item)
		}
	}

	assert.Equal(t, []string{CodeUnresolvedDependency}, wrapper)
}

func TestApply_Strict(t *testing.T) {
	t.Run("validation error", func(t *testing.T) {
		reg := typesys.NewRegistry()
		f := mustParse(t, "types:\n  - name: A\n  - name: B\n    items: [Missing]\n")

		res, err := Apply(context.Background(), f, reg, nil, Options{Strict: true})
		require.ErrorIs(t, err, ErrInvalidFile)
		assert.Empty(t, res.Types)

		_, ok := reg.Lookup("A")
		assert.False(t, ok)
	})

	t.Run("resolution error", func(t *testing.T) {
		reg := newTestRegistry(t, "Base")
		f := mustParse(t, `
types:
  - name: Derived
    items: [Base]
  - name: Bad
    items: [Base, Derived]
  - name: Later
`)

		res, err := Apply(context.Background(), f, reg, nil, Options{Strict: true})
		require.ErrorIs(t, err, ErrInvalidFile)
		require.ErrorIs(t, err, typesys.ErrInconsistentHierarchy)
		require.Len(t, res.Types, 1)

		_, ok := reg.Lookup("Later")
		assert.False(t, ok)
	})
}

func TestApply_Imports(t *testing.T) {
	reg := typesys.NewRegistry()
	f := mustParse(t, `
imports: ["class-composer/fixtures/zoo"]
types:
  - name: Kennel
    items: [zoo.Pet]
    attrs: {capacity: 3}
`)

	res, err := Apply(context.Background(), f, reg, nil, Options{})
	require.NoError(t, err)
	require.True(t, res.Diagnostics.IsValid(), "unexpected errors: %v", res.Diagnostics.Errors)
	assert.NotEmpty(t, res.Imported)

	animal, ok := reg.Lookup("zoo.Animal")
	require.True(t, ok)

	kennel, ok := reg.Lookup("Kennel")
	require.True(t, ok)
	assert.True(t, kennel.IsSubtypeOf(animal))
}

func TestApply_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := Apply(ctx, mustParse(t, "types:\n  - name: A\n"), typesys.NewRegistry(), nil, Options{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Types)
}

func TestApply_LogsDeclarations(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := resolve.New(resolve.Config{Logger: logger})

	_, err := Apply(context.Background(), mustParse(t, "types:\n  - name: A\n"), typesys.NewRegistry(), r,
		Options{Logger: logger})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "declared type")
	assert.Contains(t, out, "constructed type")
}

func TestApply_NilFile(t *testing.T) {
	res, err := Apply(context.Background(), nil, typesys.NewRegistry(), nil, Options{})
	require.ErrorIs(t, err, ErrInvalidFile)
	assert.NotNil(t, findError(res.Diagnostics, CodeFileIsNil))
}
