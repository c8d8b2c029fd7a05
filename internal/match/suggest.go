package match

import (
	"slices"
	"strings"
)

// DefaultMinScore is the similarity a name needs to be suggested.
const DefaultMinScore = 0.6

// Candidate is a known name and its similarity to the reference.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every candidate against ref, best first. Ties keep the
// candidates' input order.
func Rank(ref string, candidates []string) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Candidate{Name: c, Score: NameScore(ref, unqualified(ref, c))})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	return out
}

// Suggest returns up to limit candidate names scoring at least
// DefaultMinScore against ref. ref itself is never suggested.
func Suggest(ref string, candidates []string, limit int) []string {
	var out []string

	for _, c := range Rank(ref, candidates) {
		if len(out) >= limit || c.Score < DefaultMinScore {
			break
		}

		if c.Name != ref {
			out = append(out, c.Name)
		}
	}

	return out
}

// unqualified drops the package qualifier of c when ref has none, so
// "Animl" still finds "zoo.Animal".
func unqualified(ref, c string) string {
	if strings.Contains(ref, ".") {
		return c
	}

	if i := strings.LastIndexByte(c, '.'); i >= 0 {
		return c[i+1:]
	}

	return c
}
