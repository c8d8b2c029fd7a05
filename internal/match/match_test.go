package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"ABC", "abc", 3},
		{"FooBase", "BarBase", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "distance must be symmetric")
		})
	}
}

func TestLevenshteinNormalized(t *testing.T) {
	assert.InDelta(t, 1.0, LevenshteinNormalized("", ""), 0.001)
	assert.InDelta(t, 0.0, LevenshteinNormalized("abc", "xyz"), 0.001)
	assert.InDelta(t, 1.0-3.0/7.0, LevenshteinNormalized("kitten", "sitting"), 0.001)
}

func TestTokenizeIdent(t *testing.T) {
	assert.Equal(t, []string{"base", "person"}, TokenizeIdent("BasePerson"))
	assert.Equal(t, []string{"xml", "parser"}, TokenizeIdent("XMLParser"))
	assert.Equal(t, []string{"first", "name"}, TokenizeIdent("first_name"))
	assert.Equal(t, []string{"zoo.", "animal"}, TokenizeIdent("zoo.Animal"))
	assert.Empty(t, TokenizeIdent(""))
}

func TestNormalizeIdent(t *testing.T) {
	assert.Equal(t, "baseperson", NormalizeIdent("BasePerson"))
	assert.Equal(t, "baseperson", NormalizeIdent("base_person"))
	assert.Equal(t, "baseperson", NormalizeIdent("base-person"))
	assert.Equal(t, "zoo.animal", NormalizeIdent("zoo.Animal"))
}

func TestSuggest(t *testing.T) {
	known := []string{"object", "BasePerson", "FooBase", "BarBase", "zoo.Animal"}

	assert.Equal(t, []string{"BasePerson"}, Suggest("BasPerson", known, 3))
	assert.Equal(t, []string{"FooBase"}, Suggest("FoBase", known, 3))
	assert.Equal(t, []string{"zoo.Animal"}, Suggest("Animl", known, 3))
	assert.Empty(t, Suggest("Completely", known, 3))
	assert.Empty(t, Suggest("FooBase", []string{"FooBase"}, 3))
	assert.Equal(t, []string{"Base1"}, Suggest("Base", []string{"Base1", "Base2"}, 1))
}

func TestRank_StableOnTies(t *testing.T) {
	ranked := Rank("ab", []string{"ax", "xb", "ab"})
	assert.Equal(t, "ab", ranked[0].Name)
	assert.Equal(t, "ax", ranked[1].Name)
	assert.Equal(t, "xb", ranked[2].Name)
}
