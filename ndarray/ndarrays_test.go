package ndarray

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyConvertsAndReorders(t *testing.T) {
	s := MustShape([]int64{0, 0}, []int64{2, 3})
	src := sliceArray(t, MustOrderedShape(s, LastIndexFastest), []int16{1, 2, 3, math.MinInt16, 5, 6})
	data := make([]float32, 6)
	dst := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), data)

	require.NoError(t, Copy(src, dst, WithConfig(Config{ChunkSize: 4, ScratchHeapFraction: 0.5})))
	assert.Equal(t, float32(1), data[0])
	assert.True(t, math.IsNaN(float64(data[1])))
	assert.Equal(t, []float32{2, 5, 3, 6}, data[2:])
}

func TestCopySequentialDestination(t *testing.T) {
	s := MustShape([]int64{0, 0}, []int64{2, 2})
	src := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), []int32{1, 2, 3, 4})
	impl := newMemImpl(t, MustOrderedShape(s, LastIndexFastest), make([]int32, 4))
	impl.random = false
	require.NoError(t, Copy(src, NewBridgeArray(impl)))
	assert.Equal(t, []int32{1, 3, 2, 4}, impl.data)

	// A sequential source keeps its order and the destination is remapped.
	impl = newMemImpl(t, MustOrderedShape(s, LastIndexFastest), []int32{1, 2, 3, 4})
	impl.random = false
	seq := NewBridgeArray(impl)
	dst := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), make([]int32, 4))
	require.NoError(t, Copy(seq, dst))
	assert.Equal(t, []int32{1, 3, 2, 4}, readAll(t, dst))
}

func TestCopyRejectsMismatch(t *testing.T) {
	a := sliceArray(t, shape1(t, 0, 3), []int8{1, 2, 3})
	b := sliceArray(t, shape1(t, 1, 3), []int8{1, 2, 3})
	require.ErrorIs(t, Copy(a, b), ErrInvalidArgument)

	impl := newMemImpl(t, shape1(t, 0, 3), []int8{1, 2, 3})
	impl.writable = false
	require.ErrorIs(t, Copy(a, NewBridgeArray(impl)), ErrUnsupported)
}

func TestEqual(t *testing.T) {
	nan := float32(math.NaN())
	a := sliceArray(t, shape1(t, 0, 4), []float32{1, nan, 3, 4})

	for _, tc := range []struct {
		name string
		b    NDArray
		eq   bool
	}{
		{"same", sliceArray(t, shape1(t, 0, 4), []float32{1, nan, 3, 4}), true},
		{"value", sliceArray(t, shape1(t, 0, 4), []float32{1, nan, 3, 5}), false},
		{"bad position", sliceArray(t, shape1(t, 0, 4), []float32{1, 2, nan, 4}), false},
		{"type", sliceArray(t, shape1(t, 0, 4), []float64{1, math.NaN(), 3, 4}), false},
		{"origin", sliceArray(t, shape1(t, 1, 4), []float32{1, nan, 3, 4}), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			eq, err := Equal(a, tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.eq, eq)
		})
	}
}

func TestEqualHonoursSentinels(t *testing.T) {
	a := sliceArray(t, shape1(t, 0, 3), []int16{1, math.MinInt16, 3})
	b, err := NewSliceArray(shape1(t, 0, 3), MustBadHandler(Int16, -1), []int16{1, -1, 3})
	require.NoError(t, err)
	eq, err := Equal(a, b)
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestChecksum(t *testing.T) {
	s := MustShape([]int64{0, 0}, []int64{2, 2})
	a := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), []float64{1, 2, math.NaN(), 4})
	b := sliceArray(t, MustOrderedShape(s, LastIndexFastest), []float64{1, math.NaN(), 2, 4})
	c := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), []float64{1, 2, 3, 4})
	d := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), []float64{1, 2, math.NaN(), math.Copysign(0, -1)})
	e := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), []float64{1, 2, math.NaN(), 0})

	sa, err := Checksum(a)
	require.NoError(t, err)
	sb, err := Checksum(b)
	require.NoError(t, err)
	sc, err := Checksum(c)
	require.NoError(t, err)
	sd, err := Checksum(d)
	require.NoError(t, err)
	se, err := Checksum(e)
	require.NoError(t, err)

	assert.Equal(t, sa, sb, "order does not matter")
	assert.NotEqual(t, sa, sc)
	assert.Equal(t, sd, se, "negative zero equals zero")

	moved := sliceArray(t, oshape(t, []int64{1, 0}, []int64{2, 2}, FirstIndexFastest), []float64{1, 2, math.NaN(), 4})
	sm, err := Checksum(moved)
	require.NoError(t, err)
	assert.NotEqual(t, sa, sm)
}
