package tile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntersect(t *testing.T) {
	tests := []struct {
		name       string
		aO, aD     []int64
		bO, bD     []int64
		wantOrigin []int64
		wantDims   []int64
		wantOK     bool
	}{
		{"identical", []int64{0, 0}, []int64{3, 4}, []int64{0, 0}, []int64{3, 4}, []int64{0, 0}, []int64{3, 4}, true},
		{"partial", []int64{0, 0}, []int64{3, 4}, []int64{1, -2}, []int64{5, 4}, []int64{1, 0}, []int64{2, 2}, true},
		{"touching", []int64{0}, []int64{3}, []int64{3}, []int64{2}, nil, nil, false},
		{"disjoint", []int64{0, 0}, []int64{3, 3}, []int64{10, 0}, []int64{1, 1}, nil, nil, false},
		{"rank mismatch", []int64{0}, []int64{3}, []int64{0, 0}, []int64{3, 3}, nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origin, dims, ok := Intersect(tt.aO, tt.aD, tt.bO, tt.bD)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOrigin, origin)
			assert.Equal(t, tt.wantDims, dims)

			// Commutative.
			origin2, dims2, ok2 := Intersect(tt.bO, tt.bD, tt.aO, tt.aD)
			assert.Equal(t, ok, ok2)
			assert.Equal(t, origin, origin2)
			assert.Equal(t, dims, dims2)
		})
	}
}

func TestStrides(t *testing.T) {
	assert.Equal(t, []int64{1, 3, 12}, Strides([]int64{3, 4, 5}, true))
	assert.Equal(t, []int64{20, 5, 1}, Strides([]int64{3, 4, 5}, false))
}

func TestRowIteratorDisjoint(t *testing.T) {
	it, ok := NewRowIterator([]int64{0}, []int64{4}, []int64{10}, []int64{2}, true)
	assert.False(t, ok)
	assert.Nil(t, it)
}

// copyTile copies the overlap of a into b using the iterator.
func copyTile(a []int, aO, aD []int64, b []int, bO, bD []int64, firstFastest bool) int64 {
	it, ok := NewRowIterator(aO, aD, bO, bD, firstFastest)
	if !ok {
		return 0
	}
	var rows int64
	n := it.RowLength()
	for it.Next() {
		copy(b[it.OffsetB():it.OffsetB()+n], a[it.OffsetA():it.OffsetA()+n])
		rows++
	}
	return rows
}

func TestRowIteratorCopy(t *testing.T) {
	// A is a 4x3 box at origin (0,0); value encodes position as 10*x + y.
	aO, aD := []int64{0, 0}, []int64{4, 3}
	bO, bD := []int64{2, 1}, []int64{3, 3}

	for _, firstFastest := range []bool{true, false} {
		aStride := Strides(aD, firstFastest)
		bStride := Strides(bD, firstFastest)

		a := make([]int, 12)
		for x := int64(0); x < 4; x++ {
			for y := int64(0); y < 3; y++ {
				a[x*aStride[0]+y*aStride[1]] = int(10*x + y)
			}
		}
		b := make([]int, 9)
		for i := range b {
			b[i] = -1
		}

		rows := copyTile(a, aO, aD, b, bO, bD, firstFastest)
		assert.Equal(t, int64(2), rows)

		for x := int64(2); x < 5; x++ {
			for y := int64(1); y < 4; y++ {
				got := b[(x-2)*bStride[0]+(y-1)*bStride[1]]
				if x < 4 && y < 3 {
					assert.Equal(t, int(10*x+y), got, "x=%d y=%d", x, y)
				} else {
					assert.Equal(t, -1, got, "x=%d y=%d", x, y)
				}
			}
		}
	}
}

func TestRowIteratorMonotonic(t *testing.T) {
	it, ok := NewRowIterator(
		[]int64{0, 0, 0}, []int64{5, 4, 3},
		[]int64{1, 1, 0}, []int64{3, 2, 3},
		false,
	)
	require.True(t, ok)
	assert.Equal(t, int64(3), it.RowLength())
	assert.Equal(t, int64(6), it.Rows())
	assert.Equal(t, []int64{1, 1, 0}, it.Origin())
	assert.Equal(t, []int64{3, 2, 3}, it.Dims())

	var lastA, lastB int64 = -1, -1
	var count int64
	for it.Next() {
		assert.Greater(t, it.OffsetA(), lastA)
		assert.Greater(t, it.OffsetB(), lastB)
		lastA, lastB = it.OffsetA(), it.OffsetB()
		count++
	}
	assert.Equal(t, it.Rows(), count)
	assert.False(t, it.Next())
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]int64{0, 0}, []int64{5, 5}, []int64{1, 1}, []int64{4, 4}))
	assert.False(t, Contains([]int64{0, 0}, []int64{5, 5}, []int64{1, 1}, []int64{5, 4}))
	assert.False(t, Contains([]int64{0}, []int64{5}, []int64{0, 0}, []int64{1, 1}))
}
