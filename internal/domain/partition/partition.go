// Package partition splits a roster into groups whose sizes respect a
// minimum and maximum bound.
package partition

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrEmpty is returned when there is nobody to partition.
	ErrEmpty = errors.New("no students to group")
	// ErrBounds is returned when min/max are not 1 ≤ min ≤ max.
	ErrBounds = errors.New("invalid group size bounds")
	// ErrInfeasible is returned when no balanced split satisfies the bounds.
	ErrInfeasible = errors.New("students cannot be split within the size bounds")
)

// Sizes returns the group sizes for n students: the fewest groups that keep
// every group at or below max, with sizes differing by at most one.
func Sizes(n, min, max int) ([]int, error) {
	if min < 1 || max < min {
		return nil, ErrBounds
	}
	if n <= 0 {
		return nil, ErrEmpty
	}
	k := (n + max - 1) / max
	base, extra := n/k, n%k
	if base < min {
		return nil, fmt.Errorf("%w: %d students into groups of %d-%d", ErrInfeasible, n, min, max)
	}
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = base
		if i < extra {
			sizes[i]++
		}
	}
	return sizes, nil
}

// Split shuffles ids with rnd and cuts them into balanced groups.
// A nil rnd uses the package-level source.
func Split[T any](ids []T, min, max int, rnd *rand.Rand) ([][]T, error) {
	sizes, err := Sizes(len(ids), min, max)
	if err != nil {
		return nil, err
	}

	shuffled := make([]T, len(ids))
	copy(shuffled, ids)
	swap := func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] }
	if rnd != nil {
		rnd.Shuffle(len(shuffled), swap)
	} else {
		rand.Shuffle(len(shuffled), swap)
	}

	out := make([][]T, 0, len(sizes))
	start := 0
	for _, sz := range sizes {
		out = append(out, shuffled[start:start+sz])
		start += sz
	}
	return out, nil
}
