package ndarray

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-ndarray/internal/alloc"
)

func TestRequirementsSetters(t *testing.T) {
	req := NewRequirements()
	_, ok := req.Type()
	assert.False(t, ok)

	req.SetBadHandler(MustBadHandler(Int16, 0))
	typ, ok := req.Type()
	require.True(t, ok)
	assert.Equal(t, Int16, typ)

	req.SetType(Int16)
	_, ok = req.BadHandler()
	assert.True(t, ok, "same type keeps the handler")

	req.SetType(Float32)
	_, ok = req.BadHandler()
	assert.False(t, ok, "another type drops the handler")

	req.SetOrder(LastIndexFastest).SetRandom(true).SetMode(Update).SetWindow(MustShape([]int64{0}, []int64{3}))
	o, _ := req.Order()
	assert.Equal(t, LastIndexFastest, o)
	assert.True(t, req.Random())
	m, _ := req.Mode()
	assert.Equal(t, Update, m)
	assert.Equal(t, "Requirements(type=float32,window=(0:3),order=last-index-fastest,random,mode=update)", req.String())
}

func TestToRequiredNoChange(t *testing.T) {
	arr := sliceArray(t, shape1(t, 0, 3), []int32{1, 2, 3})

	got, err := ToRequired(arr, nil)
	require.NoError(t, err)
	assert.Same(t, arr, got)

	got, err = ToRequired(arr, NewRequirements().SetType(Int32).SetOrder(FirstIndexFastest).SetWindow(MustShape([]int64{0}, []int64{3})))
	require.NoError(t, err)
	assert.Same(t, arr, got)
}

func TestToRequiredConvertsAndWindows(t *testing.T) {
	arr := sliceArray(t, shape1(t, 0, 3), []int32{1, math.MinInt32, 3})
	got, err := ToRequired(arr, NewRequirements().SetType(Float64).SetWindow(MustShape([]int64{1}, []int64{3})))
	require.NoError(t, err)
	assert.Equal(t, Float64, got.Type())
	assert.True(t, got.BadHandler().Equal(Float64.DefaultBadHandler()))

	vals := readAll(t, got).([]float64)
	assert.True(t, math.IsNaN(vals[0]))
	assert.Equal(t, 3.0, vals[1])
	assert.True(t, math.IsNaN(vals[2]))
}

func TestToRequiredReordersRandomArray(t *testing.T) {
	s := MustShape([]int64{0, 0}, []int64{2, 2})
	arr := sliceArray(t, MustOrderedShape(s, FirstIndexFastest), []int8{1, 2, 3, 4})
	got, err := ToRequired(arr, NewRequirements().SetOrder(LastIndexFastest))
	require.NoError(t, err)
	assert.Equal(t, LastIndexFastest, got.Shape().Order())
	assert.Equal(t, []int8{1, 3, 2, 4}, readAll(t, got))

	// Reordering into a different window uses the general mapper.
	got, err = ToRequired(arr, NewRequirements().SetOrder(LastIndexFastest).SetWindow(MustShape([]int64{1, 0}, []int64{2, 2})))
	require.NoError(t, err)
	const bad = math.MinInt8
	assert.Equal(t, []int8{2, 4, bad, bad}, readAll(t, got))
}

func TestToRequiredCopiesSequentialArray(t *testing.T) {
	s := MustShape([]int64{0, 0}, []int64{2, 2})
	impl := newMemImpl(t, MustOrderedShape(s, FirstIndexFastest), []float32{1, 2, 3, 4})
	impl.random = false
	seq := NewBridgeArray(impl)

	got, err := ToRequired(seq, NewRequirements().SetRandom(true).SetMode(Read))
	require.NoError(t, err)
	assert.True(t, got.IsRandom())
	assert.True(t, got.MultipleAccess())
	assert.Equal(t, []float32{1, 2, 3, 4}, readAll(t, got))
	assert.Equal(t, []float32{1, 2, 3, 4}, readAll(t, got))

	require.NoError(t, got.Close())
	assert.Equal(t, 1, impl.closes, "the copy owns its base")

	impl = newMemImpl(t, MustOrderedShape(s, FirstIndexFastest), []float32{1, 2, 3, 4})
	impl.random = false
	got, err = ToRequired(NewBridgeArray(impl), NewRequirements().SetOrder(LastIndexFastest).SetMode(Read))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 3, 2, 4}, readAll(t, got))
}

func TestToRequiredRejectsUnsupportedMode(t *testing.T) {
	impl := newMemImpl(t, shape1(t, 0, 2), []int16{1, 2})
	impl.writable = false
	_, err := ToRequired(NewBridgeArray(impl), NewRequirements().SetMode(Update))
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestModeFor(t *testing.T) {
	d := description{readable: true, writable: true}
	assert.Equal(t, Update, ModeFor(d))
	d.readable = false
	assert.Equal(t, Write, ModeFor(d))
	d = description{readable: true}
	assert.Equal(t, Read, ModeFor(d))
}

func withAllocator(a *alloc.Allocator) Option {
	return func(o *options) { o.allocator = a }
}

func TestToRequiredRejectsWindowBeforeBuilding(t *testing.T) {
	a := alloc.New(1<<20, false)
	impl := newMemImpl(t, shape1(t, 0, 4), []int16{1, 2, 3, 4})
	impl.random = false
	seq := NewBridgeArray(impl)

	_, err := ToRequired(seq, NewRequirements().SetRandom(true).SetWindow(MustShape([]int64{0, 0}, []int64{2, 2})), withAllocator(a))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, a.Stats().TotalAllocations)

	// The sequential array still has its only accessor to give.
	assert.Equal(t, []int16{1, 2, 3, 4}, readAll(t, seq))
	assert.Equal(t, 0, impl.closes)
}

func TestToRequiredReleasesLayersOnFailure(t *testing.T) {
	a := alloc.New(1<<20, false)
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	impl := newMemImpl(t, shape1(t, 0, 4), []int16{1, 2, 3, 4})
	impl.random = false
	impl.failReads = true
	seq := NewBridgeArray(impl, WithMetrics(m))

	// The conversion layer is built, then copying through it fails.
	_, err := ToRequired(seq, NewRequirements().SetType(Float64).SetRandom(true), withAllocator(a))
	require.ErrorIs(t, err, ErrIO)

	stats := a.Stats()
	assert.Equal(t, uint64(1), stats.TotalAllocations)
	assert.Equal(t, stats.TotalBytesAlloc, stats.TotalBytesFree)
	assert.Equal(t, 0, impl.closes, "the caller's array stays open")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OpenArrays), "only the caller's array is open")

	require.NoError(t, seq.Close())
	assert.Equal(t, 1, impl.closes)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.OpenArrays))
}
