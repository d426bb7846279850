package ndarray

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/robert-malhotra/go-ndarray/internal/tile"
)

// Shape is a rectangular region of N-dimensional pixel space: an origin and
// a positive extent along each axis. Shapes are immutable; slices passed in
// or handed out are always copies.
type Shape struct {
	origin []int64
	dims   []int64
}

// NewShape returns the shape with the given origin and dimensions.
func NewShape(origin, dims []int64) (Shape, error) {
	if len(dims) == 0 {
		return Shape{}, fmt.Errorf("%w: shape needs at least one dimension", ErrInvalidArgument)
	}
	if len(origin) != len(dims) {
		return Shape{}, fmt.Errorf("%w: origin has %d axes, dims has %d", ErrInvalidArgument, len(origin), len(dims))
	}
	npix := int64(1)
	for i, d := range dims {
		if d <= 0 {
			return Shape{}, fmt.Errorf("%w: dimension %d has non-positive extent %d", ErrInvalidArgument, i, d)
		}
		if origin[i] > math.MaxInt64-d {
			return Shape{}, fmt.Errorf("%w: dimension %d overflows: %d+%d", ErrInvalidArgument, i, origin[i], d)
		}
		if npix > math.MaxInt64/d {
			return Shape{}, fmt.Errorf("%w: pixel count overflows", ErrInvalidArgument)
		}
		npix *= d
	}
	return Shape{
		origin: append([]int64(nil), origin...),
		dims:   append([]int64(nil), dims...),
	}, nil
}

// ShapeFromDims returns a shape with the given dimensions and a zero origin.
func ShapeFromDims(dims ...int64) (Shape, error) {
	return NewShape(make([]int64, len(dims)), dims)
}

// ShapeFromBounds returns the shape with inclusive lower and upper bounds.
func ShapeFromBounds(lower, upper []int64) (Shape, error) {
	if len(lower) != len(upper) {
		return Shape{}, fmt.Errorf("%w: bounds have %d and %d axes", ErrInvalidArgument, len(lower), len(upper))
	}
	dims := make([]int64, len(lower))
	for i := range lower {
		dims[i] = upper[i] - lower[i] + 1
	}
	return NewShape(lower, dims)
}

// MustShape is like NewShape but panics on error.
func MustShape(origin, dims []int64) Shape {
	s, err := NewShape(origin, dims)
	if err != nil {
		panic(err)
	}
	return s
}

// IsZero reports whether s is the zero Shape, which describes nothing.
func (s Shape) IsZero() bool {
	return len(s.dims) == 0
}

func (s Shape) NumDims() int {
	return len(s.dims)
}

func (s Shape) Origin() []int64 {
	return append([]int64(nil), s.origin...)
}

func (s Shape) Dims() []int64 {
	return append([]int64(nil), s.dims...)
}

// Limits returns the exclusive upper bound of each axis.
func (s Shape) Limits() []int64 {
	lim := make([]int64, len(s.dims))
	for i := range lim {
		lim[i] = s.origin[i] + s.dims[i]
	}
	return lim
}

// UpperBounds returns the inclusive upper bound of each axis.
func (s Shape) UpperBounds() []int64 {
	ub := s.Limits()
	for i := range ub {
		ub[i]--
	}
	return ub
}

// NumPixels returns the number of pixels in the shape.
func (s Shape) NumPixels() int64 {
	if len(s.dims) == 0 {
		return 0
	}
	n := int64(1)
	for _, d := range s.dims {
		n *= d
	}
	return n
}

// Contains reports whether pos lies inside the shape.
func (s Shape) Contains(pos []int64) bool {
	if len(pos) != len(s.dims) || len(pos) == 0 {
		return false
	}
	for i, p := range pos {
		if p < s.origin[i] || p-s.origin[i] >= s.dims[i] {
			return false
		}
	}
	return true
}

// ContainsShape reports whether every pixel of o lies inside s.
func (s Shape) ContainsShape(o Shape) bool {
	if len(o.dims) != len(s.dims) || len(o.dims) == 0 {
		return false
	}
	return tile.Contains(s.origin, s.dims, o.origin, o.dims)
}

// Intersection returns the region common to s and o. ok is false if they do
// not overlap.
func (s Shape) Intersection(o Shape) (inter Shape, ok bool, err error) {
	if err := s.checkDims(o); err != nil {
		return Shape{}, false, err
	}
	origin, dims, ok := tile.Intersect(s.origin, s.dims, o.origin, o.dims)
	if !ok {
		return Shape{}, false, nil
	}
	return Shape{origin: origin, dims: dims}, true, nil
}

// Union returns the smallest shape containing both s and o.
func (s Shape) Union(o Shape) (Shape, error) {
	if err := s.checkDims(o); err != nil {
		return Shape{}, err
	}
	origin := make([]int64, len(s.dims))
	dims := make([]int64, len(s.dims))
	for i := range s.dims {
		lo := min(s.origin[i], o.origin[i])
		hi := max(s.origin[i]+s.dims[i], o.origin[i]+o.dims[i])
		origin[i] = lo
		dims[i] = hi - lo
	}
	return NewShape(origin, dims)
}

// SameShape reports whether s and o cover the same region.
func (s Shape) SameShape(o Shape) bool {
	if len(s.dims) != len(o.dims) {
		return false
	}
	for i := range s.dims {
		if s.origin[i] != o.origin[i] || s.dims[i] != o.dims[i] {
			return false
		}
	}
	return true
}

func (s Shape) checkDims(o Shape) error {
	if len(s.dims) != len(o.dims) || len(s.dims) == 0 {
		return fmt.Errorf("%w: dimensionality mismatch %d != %d", ErrInvalidArgument, len(s.dims), len(o.dims))
	}
	return nil
}

// String renders the shape as "(o0:l0,o1:l1,...)" with exclusive limits.
func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := range s.dims {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(s.origin[i], 10))
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatInt(s.origin[i]+s.dims[i], 10))
	}
	sb.WriteByte(')')
	return sb.String()
}
