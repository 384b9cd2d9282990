package escrow

import (
	"fmt"
	"sort"

	"github.com/gachabox/platform/internal/domain"
)

// descendingIndices copies, validates and sorts withdrawal indices
// highest-to-lowest. Duplicates and negative indices are rejected.
func descendingIndices(indices []int) ([]int, error) {
	if len(indices) == 0 {
		return nil, domain.ErrValidation("no indices to withdraw")
	}

	seen := make(map[int]bool, len(indices))
	ordered := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 {
			return nil, domain.ErrValidation(fmt.Sprintf("negative index %d", idx))
		}
		if seen[idx] {
			return nil, domain.ErrValidation(fmt.Sprintf("duplicate index %d", idx))
		}
		seen[idx] = true
		ordered = append(ordered, idx)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(ordered)))
	return ordered, nil
}
