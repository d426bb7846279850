package ndarray

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/robert-malhotra/go-ndarray/internal/alloc"
)

// sliceArrayImpl is a random, mappable backend holding its pixels in one
// in-memory buffer.
type sliceArrayImpl struct {
	description
	data    any
	release func() error
}

func newSliceImpl(shape OrderedShape, bh BadHandler, data any) *sliceArrayImpl {
	return &sliceArrayImpl{
		description: description{
			shape:    shape,
			typ:      bh.Type(),
			bh:       bh,
			random:   true,
			readable: true,
			writable: true,
		},
		data: data,
	}
}

func (s *sliceArrayImpl) MultipleAccess() bool { return true }
func (s *sliceArrayImpl) Open() error { return nil }
func (s *sliceArrayImpl) CanMap() bool { return true }
func (s *sliceArrayImpl) Mapped() any { return s.data }

func (s *sliceArrayImpl) NewAccess() (AccessImpl, error) {
	return &sliceAccess{data: s.data}, nil
}

func (s *sliceArrayImpl) Close() error {
	if s.release == nil {
		return nil
	}
	release := s.release
	s.release = nil
	return release()
}

type sliceAccess struct {
	data   any
	offset int64
}

func (s *sliceAccess) SetOffset(off int64) error {
	s.offset = off
	return nil
}

func (s *sliceAccess) Read(buf any, start, size int) error {
	copyBuffer(s.data, int(s.offset), buf, start, size)
	s.offset += int64(size)
	return nil
}

func (s *sliceAccess) Write(buf any, start, size int) error {
	copyBuffer(buf, start, s.data, int(s.offset), size)
	s.offset += int64(size)
	return nil
}

func (s *sliceAccess) Close() error { return nil }

// NewSliceArray exposes data, a pixel buffer such as []float32, as a
// random access array of the given shape. The array shares data with the
// caller. A zero bh selects the default for the buffer's type.
func NewSliceArray(shape OrderedShape, bh BadHandler, data any, opts ...Option) (*BridgeArray, error) {
	if shape.IsZero() {
		return nil, fmt.Errorf("%w: empty shape", ErrInvalidArgument)
	}
	t, ok := TypeOf(data)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a pixel buffer", ErrInvalidArgument, data)
	}
	if bh.IsZero() {
		bh = t.DefaultBadHandler()
	}
	if bh.Type() != t {
		return nil, fmt.Errorf("%w: %s used with %s data", ErrInvalidArgument, bh, t)
	}
	if int64(bufferLen(data)) != shape.NumPixels() {
		return nil, fmt.Errorf("%w: %d elements for %d pixels", ErrInvalidArgument, bufferLen(data), shape.NumPixels())
	}
	return NewBridgeArray(newSliceImpl(shape, bh, data), opts...), nil
}

// newScratchImpl allocates a zeroed backend from the options' allocator.
func newScratchImpl(shape OrderedShape, t Type, bh BadHandler, o *options, locator string) (*sliceArrayImpl, error) {
	if shape.IsZero() {
		return nil, fmt.Errorf("%w: empty shape", ErrInvalidArgument)
	}
	if !t.Valid() {
		return nil, fmt.Errorf("%w: scratch array of %s", ErrInvalidArgument, t)
	}
	if bh.IsZero() {
		bh = t.DefaultBadHandler()
	}
	if bh.Type() != t {
		return nil, fmt.Errorf("%w: %s used with %s scratch array", ErrInvalidArgument, bh, t)
	}
	npix := shape.NumPixels()
	if npix > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d pixels exceed scratch capacity", ErrInvalidArgument, npix)
	}

	a := o.scratchAllocator()
	blk, err := a.Alloc(npix, t.Size())
	if errors.Is(err, alloc.ErrTooLarge) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: allocating scratch: %w", ErrIO, err)
	}
	o.metrics.scratch(blk.Store.String(), len(blk.Data))
	level.Debug(o.logger).Log("msg", "allocated scratch", "array", locator, "store", blk.Store, "bytes", len(blk.Data))

	impl := newSliceImpl(shape, bh, viewBuffer(t, blk.Data, int(npix)))
	impl.release = func() error {
		return a.Free(blk)
	}
	return impl, nil
}

// NewScratchArray returns a new zeroed in-memory array: random access,
// readable, writable and mappable. Large arrays are allocated outside the
// Go heap when the configuration allows. A zero bh selects the default for
// t. Close releases the memory.
func NewScratchArray(shape OrderedShape, t Type, bh BadHandler, opts ...Option) (*BridgeArray, error) {
	o := buildOptions(opts)
	locator := o.locator
	if locator == "" {
		locator = "scratch:" + uuid.NewString()
	}
	impl, err := newScratchImpl(shape, t, bh, o, locator)
	if err != nil {
		return nil, err
	}
	return NewBridgeArray(impl, append(opts[:len(opts):len(opts)], WithLocator(locator))...), nil
}

// copyArrayImpl is a scratch backend holding a copy of a base array, which
// it writes back and closes on Close.
type copyArrayImpl struct {
	*sliceArrayImpl
	base   NDArray
	mode   AccessMode
	opts   []Option
	logger log.Logger
}

func (c *copyArrayImpl) Close() error {
	var errs []error
	if c.mode.IsWritable() {
		src := NewBridgeArray(newSliceImpl(c.shape, c.bh, c.data))
		if err := Copy(src, c.base, c.opts...); err != nil {
			errs = append(errs, fmt.Errorf("copying back to %s: %w", c.base.Locator(), err))
		} else {
			level.Debug(c.logger).Log("msg", "copied scratch back", "base", c.base.Locator())
		}
	}
	errs = append(errs, c.base.Close(), c.sliceArrayImpl.Close())
	return errors.Join(errs...)
}

// NewCopyArray returns a scratch copy of base for use in the given mode.
// If the mode is readable the pixels of base are copied in now. The copy
// is writable only if the mode is. The copy
// owns base: on Close it writes its pixels back if the mode is writable,
// then closes base.
func NewCopyArray(base NDArray, mode AccessMode, opts ...Option) (*BridgeArray, error) {
	if err := checkMode(base, mode); err != nil {
		return nil, err
	}
	opts = deriveOptions(base, opts)
	o := buildOptions(opts)
	locator := "scratch:" + uuid.NewString()

	impl, err := newScratchImpl(base.Shape(), base.Type(), base.BadHandler(), o, locator)
	if err != nil {
		return nil, err
	}
	if mode.IsReadable() {
		dst := NewBridgeArray(newSliceImpl(impl.shape, impl.bh, impl.data))
		if err := Copy(base, dst, opts...); err != nil {
			return nil, errors.Join(err, impl.Close())
		}
	}
	impl.writable = mode.IsWritable()
	cimpl := &copyArrayImpl{
		sliceArrayImpl: impl,
		base:           base,
		mode:           mode,
		opts:           opts,
		logger:         log.With(o.logger, "array", locator),
	}
	return NewBridgeArray(cimpl, append(opts[:len(opts):len(opts)], WithLocator(locator))...), nil
}
