package typesys

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrEmbeddingCycle is returned when imported structs embed each other.
var ErrEmbeddingCycle = errors.New("embedding cycle")

// embedOrder orders pending structs so every embedded struct is built
// before the structs that embed it. Ties go to the lower index.
func embedOrder(pending []*pendingStruct) ([]int, error) {
	waiting := make([]int, len(pending))
	embedders := make([][]int, len(pending))

	for i, p := range pending {
		for _, j := range p.embeds {
			if j < 0 || j >= len(pending) {
				return nil, fmt.Errorf("%s embeds unknown struct #%d", p.id, j)
			}

			waiting[i]++
			embedders[j] = append(embedders[j], i)
		}
	}

	var ready []int

	for i, n := range waiting {
		if n == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, len(pending))

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]
		order = append(order, i)

		for _, j := range embedders[i] {
			if waiting[j]--; waiting[j] == 0 {
				k, _ := slices.BinarySearch(ready, j)
				ready = slices.Insert(ready, k, j)
			}
		}
	}

	if len(order) < len(pending) {
		var stuck []string

		for i, n := range waiting {
			if n > 0 {
				stuck = append(stuck, pending[i].id.String())
			}
		}

		return nil, fmt.Errorf("%w: %s", ErrEmbeddingCycle, strings.Join(stuck, ", "))
	}

	return order, nil
}
