package typesys

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShim_SeededWithNameAndAttrs(t *testing.T) {
	s := NewShim("Bar", AttrsOf(map[string]any{"x": 4}))

	v, ok := s.Get(NameAttr)
	assert.True(t, ok)
	assert.Equal(t, "Bar", v)

	v, ok = s.Get("x")
	assert.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestDiff(t *testing.T) {
	before := AttrsOf(map[string]any{"keep": 1, "change": 2, "drop": 3})
	after := before.Clone()
	after.Set("change", 20)
	after.Delete("drop")
	after.Set("add", 4)

	d := Diff(before, after)
	assert.Equal(t, []string{"drop"}, d.Removed)
	assert.Equal(t, []string{"add"}, d.Added)
	assert.Equal(t, []string{"change"}, d.Changed)
	assert.False(t, d.IsEmpty())

	assert.True(t, Diff(before, before.Clone()).IsEmpty())
}

func TestDiff_UncomparableValues(t *testing.T) {
	before := AttrsOf(map[string]any{"list": []int{1, 2}, "nil": nil})
	after := before.Clone()

	assert.True(t, Diff(before, after).IsEmpty())

	after.Set("list", []int{1, 2, 3})
	after.Set("nil", 0)
	assert.Equal(t, []string{"list", "nil"}, Diff(before, after).Changed)
}

func TestDecorator_RunsOnTypeAndShim(t *testing.T) {
	tag := Decorator(func(s Surface) error {
		s.Set("tagged", true)
		return nil
	})

	typ, err := TypeMeta.New("A", nil, NewAttrs())
	assert.NoError(t, err)
	assert.NoError(t, tag(typ))

	v, _ := typ.Get("tagged")
	assert.Equal(t, true, v)

	shim := NewShim("A", nil)
	assert.NoError(t, tag(shim))
	assert.Equal(t, []string{NameAttr, "tagged"}, shim.Snapshot().Keys())
}
