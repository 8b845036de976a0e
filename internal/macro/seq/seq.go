// Package seq provides list subsets and integer ranges.
package seq

import (
	"math"

	"github.com/dshills/keymacro/internal/macro"
)

// Subset returns the elements of data at the given indices, in index order.
// Indices may repeat and appear in any order. Any index outside
// [0, len(data)) yields a *macro.IndexError.
func Subset[T any](indices []int, data []T) ([]T, error) {
	out := make([]T, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(data) {
			return nil, &macro.IndexError{Index: idx, Len: len(data)}
		}
		out[i] = data[idx]
	}
	return out, nil
}

// RangeOption bounds a Range.
type RangeOption func(*bounds)

type bounds struct {
	end    *int
	length *int
}

// To makes the range end at end, inclusive.
func To(end int) RangeOption {
	return func(b *bounds) {
		b.end = &end
	}
}

// Length makes the range n elements long.
func Length(n int) RangeOption {
	return func(b *bounds) {
		b.length = &n
	}
}

// MaxRangeLen is the largest number of elements Range will produce.
const MaxRangeLen = 1 << 24

// Range returns the ascending integers from start to the end given by To,
// inclusive, or the n integers from start given by Length. To takes
// precedence when both are set; setting neither is a configuration error.
// An end below start, or a non-positive length, gives an empty range.
// A range longer than MaxRangeLen, or one whose last element would not fit
// in an int, is a configuration error.
func Range(start int, opts ...RangeOption) ([]int, error) {
	var b bounds
	for _, opt := range opts {
		opt(&b)
	}

	var count int
	switch {
	case b.end != nil:
		end := *b.end
		if end < start {
			return []int{}, nil
		}
		// end-start is exact in uint even when it overflows int.
		diff := uint(end) - uint(start)
		if diff >= MaxRangeLen {
			return nil, macro.Configf("range", "range %d..%d exceeds %d elements", start, end, MaxRangeLen)
		}
		count = int(diff) + 1
	case b.length != nil:
		count = *b.length
		if count <= 0 {
			return []int{}, nil
		}
		if count > MaxRangeLen {
			return nil, macro.Configf("range", "length %d exceeds %d elements", count, MaxRangeLen)
		}
		if start > math.MaxInt-(count-1) {
			return nil, macro.Configf("range", "range of length %d from %d overflows", count, start)
		}
	default:
		return nil, macro.Configf("range", "either an end or a length is required")
	}

	out := make([]int, count)
	for i := range out {
		out[i] = start + i
	}
	return out, nil
}
