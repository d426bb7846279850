package ndarray

import (
	"fmt"

	"github.com/robert-malhotra/go-ndarray/internal/tile"
)

// OrderedShape is a Shape together with an Order, giving a bijection
// between the pixels of the shape and the offsets [0, NumPixels).
type OrderedShape struct {
	shape   Shape
	order   Order
	strides []int64
}

// NewOrderedShape returns s pixel-ordered according to o.
func NewOrderedShape(s Shape, o Order) (OrderedShape, error) {
	if s.IsZero() {
		return OrderedShape{}, fmt.Errorf("%w: empty shape", ErrInvalidArgument)
	}
	if !o.Valid() {
		return OrderedShape{}, fmt.Errorf("%w: invalid order %s", ErrInvalidArgument, o)
	}
	return newOrderedShape(s, o), nil
}

// MustOrderedShape is like NewOrderedShape but panics on error.
func MustOrderedShape(s Shape, o Order) OrderedShape {
	sh, err := NewOrderedShape(s, o)
	if err != nil {
		panic(err)
	}
	return sh
}

func newOrderedShape(s Shape, o Order) OrderedShape {
	return OrderedShape{
		shape:   s,
		order:   o,
		strides: tile.Strides(s.dims, o.IsFirstIndexFastest()),
	}
}

// IsZero reports whether sh is the zero OrderedShape.
func (sh OrderedShape) IsZero() bool {
	return sh.shape.IsZero()
}

// Shape returns the unordered shape.
func (sh OrderedShape) Shape() Shape {
	return sh.shape
}

func (sh OrderedShape) Order() Order {
	return sh.order
}

// WithOrder returns the same shape under another ordering.
func (sh OrderedShape) WithOrder(o Order) (OrderedShape, error) {
	return NewOrderedShape(sh.shape, o)
}

func (sh OrderedShape) NumDims() int { return sh.shape.NumDims() }
func (sh OrderedShape) Origin() []int64 { return sh.shape.Origin() }
func (sh OrderedShape) Dims() []int64 { return sh.shape.Dims() }
func (sh OrderedShape) Limits() []int64 { return sh.shape.Limits() }
func (sh OrderedShape) UpperBounds() []int64 { return sh.shape.UpperBounds() }
func (sh OrderedShape) NumPixels() int64 { return sh.shape.NumPixels() }
func (sh OrderedShape) Contains(p []int64) bool { return sh.shape.Contains(p) }

// SameSequence reports whether sh and o cover the same region in the same
// pixel order.
func (sh OrderedShape) SameSequence(o OrderedShape) bool {
	return sh.order == o.order && sh.shape.SameShape(o.shape)
}

// fastAxis returns the index of the axis with stride 1.
func (sh OrderedShape) fastAxis() int {
	if sh.order.IsFirstIndexFastest() {
		return 0
	}
	return len(sh.shape.dims) - 1
}

// PositionToOffset returns the offset of the pixel at pos.
func (sh OrderedShape) PositionToOffset(pos []int64) (int64, error) {
	if len(pos) != len(sh.shape.dims) {
		return 0, fmt.Errorf("%w: position has %d axes, shape has %d", ErrInvalidArgument, len(pos), len(sh.shape.dims))
	}
	if !sh.shape.Contains(pos) {
		return 0, fmt.Errorf("%w: position %v outside %s", ErrOutOfBounds, pos, sh.shape)
	}
	return sh.offsetOf(pos), nil
}

// offsetOf is PositionToOffset without validation.
func (sh OrderedShape) offsetOf(pos []int64) int64 {
	var off int64
	for i, p := range pos {
		off += (p - sh.shape.origin[i]) * sh.strides[i]
	}
	return off
}

// OffsetToPosition returns the position of the pixel at off.
func (sh OrderedShape) OffsetToPosition(off int64) ([]int64, error) {
	if off < 0 || off >= sh.shape.NumPixels() {
		return nil, fmt.Errorf("%w: offset %d outside [0,%d)", ErrOutOfBounds, off, sh.shape.NumPixels())
	}
	pos := make([]int64, len(sh.shape.dims))
	sh.positionInto(off, pos)
	return pos, nil
}

// positionInto writes the position of a valid offset into pos.
func (sh OrderedShape) positionInto(off int64, pos []int64) {
	n := len(sh.shape.dims)
	if sh.order.IsFirstIndexFastest() {
		for i := n - 1; i >= 0; i-- {
			pos[i] = sh.shape.origin[i] + off/sh.strides[i]
			off %= sh.strides[i]
		}
		return
	}
	for i := 0; i < n; i++ {
		pos[i] = sh.shape.origin[i] + off/sh.strides[i]
		off %= sh.strides[i]
	}
}

// PixelIterator returns an iterator over length pixels starting at offset
// start.
func (sh OrderedShape) PixelIterator(start, length int64) (*PixelIterator, error) {
	if start < 0 || length < 0 || start > sh.NumPixels()-length {
		return nil, fmt.Errorf("%w: pixel range %d+%d outside %s", ErrOutOfBounds, start, length, sh.shape)
	}
	return &PixelIterator{shape: sh, offset: start, remaining: length}, nil
}

// Pixels returns an iterator over every pixel of the shape.
func (sh OrderedShape) Pixels() *PixelIterator {
	return &PixelIterator{shape: sh, remaining: sh.NumPixels()}
}

func (sh OrderedShape) String() string {
	return sh.shape.String() + "/" + sh.order.String()
}

// PixelIterator steps through pixel positions in the sequence order of an
// OrderedShape. It cannot be restarted.
type PixelIterator struct {
	shape     OrderedShape
	pos       []int64
	offset    int64
	remaining int64
}

// Next moves to the next pixel, returning false when there are none left.
func (it *PixelIterator) Next() bool {
	if it.remaining == 0 {
		return false
	}
	it.remaining--
	if it.pos == nil {
		it.pos = make([]int64, it.shape.NumDims())
		it.shape.positionInto(it.offset, it.pos)
		return true
	}
	it.offset++
	s := it.shape.shape
	n := len(it.pos)
	for k := 0; k < n; k++ {
		i := k
		if !it.shape.order.IsFirstIndexFastest() {
			i = n - 1 - k
		}
		it.pos[i]++
		if it.pos[i] < s.origin[i]+s.dims[i] {
			break
		}
		it.pos[i] = s.origin[i]
	}
	return true
}

// Position returns a copy of the current pixel position.
func (it *PixelIterator) Position() []int64 {
	return append([]int64(nil), it.pos...)
}

// Offset returns the offset of the current pixel.
func (it *PixelIterator) Offset() int64 {
	return it.offset
}
