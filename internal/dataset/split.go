package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Split holds row indices for the train and test partitions.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles 0..n-1 with a seeded permutation and reserves
// ceil(n*testFraction) rows for testing. Both partitions are non-empty.
func TrainTestSplit(n int, testFraction float64, seed uint64) (Split, error) {
	if n < 2 {
		return Split{}, fmt.Errorf("split needs at least 2 rows, got %d", n)
	}
	if !(testFraction > 0 && testFraction < 1) {
		return Split{}, fmt.Errorf("test fraction must be in (0,1), got %v", testFraction)
	}

	nTest := int(math.Ceil(float64(n) * testFraction))
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewPCG(seed, splitStream)).Perm(n)
	return Split{
		Train: perm[nTest:],
		Test:  perm[:nTest],
	}, nil
}

// Rows gathers the rows at idx.
func Rows[T any](all []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, j := range idx {
		out[i] = all[j]
	}
	return out
}
