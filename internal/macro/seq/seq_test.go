package seq

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/keymacro/internal/macro"
)

func TestSubset(t *testing.T) {
	data := []string{"a", "b", "c", "d"}

	tests := []struct {
		name    string
		indices []int
		want    []string
	}{
		{"in order", []int{0, 2}, []string{"a", "c"}},
		{"reordered", []int{3, 0, 1}, []string{"d", "a", "b"}},
		{"duplicates", []int{1, 1, 1}, []string{"b", "b", "b"}},
		{"empty", []int{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Subset(tt.indices, data)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Subset() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSubsetMatchesIndexing(t *testing.T) {
	data := []int{10, 20, 30, 40, 50, 60, 70}
	indices := []int{6, 0, 3, 3, 5, 1}

	got, err := Subset(indices, data)
	require.NoError(t, err)
	require.Len(t, got, len(indices))
	for i, idx := range indices {
		assert.Equal(t, data[idx], got[i], "position %d", i)
	}
}

func TestSubsetOutOfRange(t *testing.T) {
	data := []int{1, 2, 3}

	for _, idx := range []int{3, -1, 100} {
		_, err := Subset([]int{0, idx}, data)
		assert.ErrorIs(t, err, macro.ErrIndex, "index %d", idx)

		var ie *macro.IndexError
		if assert.ErrorAs(t, err, &ie) {
			assert.Equal(t, idx, ie.Index)
			assert.Equal(t, 3, ie.Len)
		}
	}

	_, err := Subset([]int{0}, []int(nil))
	assert.ErrorIs(t, err, macro.ErrIndex)
}

func TestRange(t *testing.T) {
	tests := []struct {
		name  string
		start int
		opts  []RangeOption
		want  []int
	}{
		{"to end", 1, []RangeOption{To(5)}, []int{1, 2, 3, 4, 5}},
		{"by length", 1, []RangeOption{Length(3)}, []int{1, 2, 3}},
		{"end before start", 5, []RangeOption{To(3)}, []int{}},
		{"single", 4, []RangeOption{To(4)}, []int{4}},
		{"negative start", -2, []RangeOption{To(1)}, []int{-2, -1, 0, 1}},
		{"zero length", 9, []RangeOption{Length(0)}, []int{}},
		{"negative length", 9, []RangeOption{Length(-4)}, []int{}},
		{"end wins over length", 1, []RangeOption{Length(10), To(2)}, []int{1, 2}},
		{"ends at max int", math.MaxInt - 1, []RangeOption{To(math.MaxInt)}, []int{math.MaxInt - 1, math.MaxInt}},
		{"single max int", math.MaxInt, []RangeOption{To(math.MaxInt)}, []int{math.MaxInt}},
		{"starts at min int", math.MinInt, []RangeOption{Length(2)}, []int{math.MinInt, math.MinInt + 1}},
		{"length up to max int", math.MaxInt - 2, []RangeOption{Length(3)}, []int{math.MaxInt - 2, math.MaxInt - 1, math.MaxInt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Range(tt.start, tt.opts...)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Range() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRangeRequiresBound(t *testing.T) {
	_, err := Range(1)
	assert.ErrorIs(t, err, macro.ErrConfiguration)
}

func TestRangeTooLarge(t *testing.T) {
	tests := []struct {
		name  string
		start int
		opts  []RangeOption
	}{
		{"length overflows", math.MaxInt, []RangeOption{Length(2)}},
		{"whole int span", math.MinInt, []RangeOption{To(math.MaxInt)}},
		{"zero to max int", 0, []RangeOption{To(math.MaxInt)}},
		{"end past cap", 0, []RangeOption{To(MaxRangeLen)}},
		{"length past cap", 0, []RangeOption{Length(MaxRangeLen + 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Range(tt.start, tt.opts...)
			assert.ErrorIs(t, err, macro.ErrConfiguration)
			assert.Nil(t, got)
		})
	}
}
