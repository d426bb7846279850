package ndarray

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend failure")

// memImpl is an in-memory backend with configurable capabilities. It does
// not map its buffer, so every transfer goes through its accessors.
type memImpl struct {
	description
	data  any
	multi bool

	failReads bool
	opens     int
	closes    int

	// busy and overlaps detect concurrent transfers on one cursor.
	busy     atomic.Int32
	overlaps atomic.Int32

	mu       sync.Mutex
	accesses int
	handed   []*memAccess
}

func newMemImpl(t *testing.T, shape OrderedShape, data any) *memImpl {
	t.Helper()
	typ, ok := TypeOf(data)
	require.True(t, ok)
	require.Equal(t, shape.NumPixels(), int64(bufferLen(data)))
	return &memImpl{
		description: description{
			shape:    shape,
			typ:      typ,
			bh:       typ.DefaultBadHandler(),
			random:   true,
			readable: true,
			writable: true,
		},
		data: data,
	}
}

func (m *memImpl) MultipleAccess() bool { return m.multi }
func (m *memImpl) CanMap() bool { return false }
func (m *memImpl) Mapped() any { return nil }

func (m *memImpl) Open() error {
	m.opens++
	return nil
}

func (m *memImpl) Close() error {
	m.closes++
	return nil
}

func (m *memImpl) NewAccess() (AccessImpl, error) {
	acc := &memAccess{impl: m}
	m.mu.Lock()
	m.accesses++
	m.handed = append(m.handed, acc)
	m.mu.Unlock()
	return acc, nil
}

type memAccess struct {
	impl   *memImpl
	offset int64
	closed bool
}

func (a *memAccess) SetOffset(off int64) error {
	a.offset = off
	return nil
}

func (a *memAccess) transfer(fn func()) error {
	if a.impl.busy.Add(1) != 1 {
		a.impl.overlaps.Add(1)
	}
	defer a.impl.busy.Add(-1)
	fn()
	return nil
}

func (a *memAccess) Read(buf any, start, size int) error {
	if a.impl.failReads {
		return errBackend
	}
	return a.transfer(func() {
		copyBuffer(a.impl.data, int(a.offset), buf, start, size)
		a.offset += int64(size)
	})
}

func (a *memAccess) Write(buf any, start, size int) error {
	return a.transfer(func() {
		copyBuffer(buf, start, a.impl.data, int(a.offset), size)
		a.offset += int64(size)
	})
}

func (a *memAccess) Close() error {
	a.closed = true
	return nil
}

func shape1(t *testing.T, origin, dim int64) OrderedShape {
	t.Helper()
	s, err := NewShape([]int64{origin}, []int64{dim})
	require.NoError(t, err)
	return newOrderedShape(s, FirstIndexFastest)
}

func oshape(t *testing.T, origin, dims []int64, o Order) OrderedShape {
	t.Helper()
	s, err := NewShape(origin, dims)
	require.NoError(t, err)
	os, err := NewOrderedShape(s, o)
	require.NoError(t, err)
	return os
}

func sliceArray(t *testing.T, shape OrderedShape, data any) *BridgeArray {
	t.Helper()
	arr, err := NewSliceArray(shape, BadHandler{}, data)
	require.NoError(t, err)
	return arr
}

// readAll reads every pixel of nda through a fresh accessor.
func readAll(t *testing.T, nda NDArray) any {
	t.Helper()
	acc, err := nda.Access()
	require.NoError(t, err)
	defer acc.Close()
	buf := nda.Type().NewBuffer(int(nda.Shape().NumPixels()))
	require.NoError(t, acc.Read(buf, 0, bufferLen(buf)))
	return buf
}
