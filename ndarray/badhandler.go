package ndarray

import (
	"fmt"
	"math"
)

// BadHandler identifies bad pixels of one element type. A pixel is bad if
// its raw bits equal the sentinel value. Floating point NaNs are always bad,
// whatever the sentinel. An integer handler may have no sentinel, in which
// case no pixel is ever bad.
//
// BadHandler is a small value type and is compared with Equal.
type BadHandler struct {
	typ    Type
	hasBad bool
	ival   int64  // integer sentinel
	fbits  uint64 // float sentinel; float32 bits in the low word
}

var (
	nan32bits = math.Float32bits(float32(math.NaN()))
	nan64bits = math.Float64bits(math.NaN())
)

// NewBadHandler returns a handler for t using bad as the sentinel. bad may be
// nil, meaning no sentinel for integer types and NaN for floating types.
// Otherwise it must be a Go numeric value exactly representable in t.
func NewBadHandler(t Type, bad any) (BadHandler, error) {
	if !t.Valid() {
		return BadHandler{}, fmt.Errorf("%w: bad handler for invalid %s", ErrInvalidArgument, t)
	}
	bh := BadHandler{typ: t}
	if bad == nil {
		if t.IsFloating() {
			bh.setFloat(math.NaN())
		}
		return bh, nil
	}

	v, integral, ok := numericValue(bad)
	if !ok {
		return BadHandler{}, fmt.Errorf("%w: bad value %v (%T) is not numeric", ErrInvalidArgument, bad, bad)
	}
	switch t {
	case Float32:
		if f32, isF32 := bad.(float32); isF32 {
			bh.hasBad = true
			bh.fbits = uint64(math.Float32bits(f32))
			if f32 != f32 {
				bh.fbits = uint64(nan32bits)
			}
			return bh, nil
		}
		if !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) > math.MaxFloat32 {
			return BadHandler{}, fmt.Errorf("%w: bad value %v out of %s range", ErrInvalidArgument, bad, t)
		}
		bh.setFloat(v)
	case Float64:
		bh.setFloat(v)
	default:
		if !integral || v < t.Min() || v > t.Max() {
			return BadHandler{}, fmt.Errorf("%w: bad value %v not representable as %s", ErrInvalidArgument, bad, t)
		}
		bh.hasBad = true
		bh.ival = int64(v)
	}
	return bh, nil
}

// MustBadHandler is like NewBadHandler but panics on error.
func MustBadHandler(t Type, bad any) BadHandler {
	bh, err := NewBadHandler(t, bad)
	if err != nil {
		panic(err)
	}
	return bh
}

func (bh *BadHandler) setFloat(v float64) {
	bh.hasBad = true
	switch {
	case bh.typ == Float32 && math.IsNaN(v):
		bh.fbits = uint64(nan32bits)
	case bh.typ == Float32:
		bh.fbits = uint64(math.Float32bits(float32(v)))
	case math.IsNaN(v):
		bh.fbits = nan64bits
	default:
		bh.fbits = math.Float64bits(v)
	}
}

// numericValue widens a Go number to float64, reporting whether it is
// integral.
func numericValue(v any) (f float64, integral, ok bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true, true
	case int8:
		return float64(x), true, true
	case int16:
		return float64(x), true, true
	case int32:
		return float64(x), true, true
	case int64:
		return float64(x), true, true
	case uint8:
		return float64(x), true, true
	case uint16:
		return float64(x), true, true
	case uint32:
		return float64(x), true, true
	case float32:
		f = float64(x)
	case float64:
		f = x
	default:
		return 0, false, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f), true
}

// IsZero reports whether bh is the zero BadHandler, bound to no type.
func (bh BadHandler) IsZero() bool {
	return bh.typ == 0
}

func (bh BadHandler) Type() Type {
	return bh.typ
}

// BadValue returns the sentinel with the Go type matching the handler's
// type. ok is false if the handler has no sentinel.
func (bh BadHandler) BadValue() (v any, ok bool) {
	if !bh.hasBad {
		return nil, false
	}
	switch bh.typ {
	case Int8:
		return int8(bh.ival), true
	case Int16:
		return int16(bh.ival), true
	case Int32:
		return int32(bh.ival), true
	case Float32:
		return math.Float32frombits(uint32(bh.fbits)), true
	case Float64:
		return math.Float64frombits(bh.fbits), true
	}
	return nil, false
}

// fillValue returns the value PutBad writes. Integer handlers without a
// sentinel write the type's default bad value.
func fillValue[T pixel](bh BadHandler) T {
	var v T
	switch p := any(&v).(type) {
	case *int8:
		*p = math.MinInt8
		if bh.hasBad {
			*p = int8(bh.ival)
		}
	case *int16:
		*p = math.MinInt16
		if bh.hasBad {
			*p = int16(bh.ival)
		}
	case *int32:
		*p = math.MinInt32
		if bh.hasBad {
			*p = int32(bh.ival)
		}
	case *float32:
		*p = math.Float32frombits(uint32(bh.fbits))
	case *float64:
		*p = math.Float64frombits(bh.fbits)
	}
	return v
}

// ArrayHandler tests and sets bad pixels of one buffer.
type ArrayHandler interface {
	IsBad(i int) bool
	PutBad(i int)
}

type intArrayHandler[T int8 | int16 | int32] struct {
	buf    []T
	bad    T
	hasBad bool
}

func (h intArrayHandler[T]) IsBad(i int) bool { return h.hasBad && h.buf[i] == h.bad }
func (h intArrayHandler[T]) PutBad(i int) { h.buf[i] = h.bad }

type float32ArrayHandler struct {
	buf  []float32
	bits uint32
}

func (h float32ArrayHandler) IsBad(i int) bool {
	v := h.buf[i]
	return v != v || math.Float32bits(v) == h.bits
}

func (h float32ArrayHandler) PutBad(i int) { h.buf[i] = math.Float32frombits(h.bits) }

type float64ArrayHandler struct {
	buf  []float64
	bits uint64
}

func (h float64ArrayHandler) IsBad(i int) bool {
	v := h.buf[i]
	return v != v || math.Float64bits(v) == h.bits
}

func (h float64ArrayHandler) PutBad(i int) { h.buf[i] = math.Float64frombits(h.bits) }

// ArrayHandler returns a handler bound to buf, which must be a buffer of
// the handler's type.
func (bh BadHandler) ArrayHandler(buf any) ArrayHandler {
	switch b := buf.(type) {
	case []int8:
		bh.mustBe(Int8)
		return intArrayHandler[int8]{buf: b, bad: fillValue[int8](bh), hasBad: bh.hasBad}
	case []int16:
		bh.mustBe(Int16)
		return intArrayHandler[int16]{buf: b, bad: fillValue[int16](bh), hasBad: bh.hasBad}
	case []int32:
		bh.mustBe(Int32)
		return intArrayHandler[int32]{buf: b, bad: fillValue[int32](bh), hasBad: bh.hasBad}
	case []float32:
		bh.mustBe(Float32)
		return float32ArrayHandler{buf: b, bits: uint32(bh.fbits)}
	case []float64:
		bh.mustBe(Float64)
		return float64ArrayHandler{buf: b, bits: bh.fbits}
	default:
		panic(fmt.Sprintf("ndarray: %T is not a pixel buffer", buf))
	}
}

func (bh BadHandler) mustBe(t Type) {
	if bh.typ != t {
		panic(fmt.Sprintf("ndarray: %s bad handler used with %s buffer", bh.typ, t))
	}
}

// IsBad reports whether buf[i] is bad.
func (bh BadHandler) IsBad(buf any, i int) bool {
	return bh.ArrayHandler(buf).IsBad(i)
}

// PutBad sets buf[i] to the bad value.
func (bh BadHandler) PutBad(buf any, i int) {
	bh.ArrayHandler(buf).PutBad(i)
}

// PutBadRun sets n elements of buf starting at start to the bad value.
func (bh BadHandler) PutBadRun(buf any, start, n int) {
	switch b := buf.(type) {
	case []int8:
		bh.mustBe(Int8)
		fill(b[start:start+n], fillValue[int8](bh))
	case []int16:
		bh.mustBe(Int16)
		fill(b[start:start+n], fillValue[int16](bh))
	case []int32:
		bh.mustBe(Int32)
		fill(b[start:start+n], fillValue[int32](bh))
	case []float32:
		bh.mustBe(Float32)
		fill(b[start:start+n], fillValue[float32](bh))
	case []float64:
		bh.mustBe(Float64)
		fill(b[start:start+n], fillValue[float64](bh))
	default:
		panic(fmt.Sprintf("ndarray: %T is not a pixel buffer", buf))
	}
}

func fill[T pixel](s []T, v T) {
	for i := range s {
		s[i] = v
	}
}

// Value returns buf[i] as a float64. ok is false if the pixel is bad.
func (bh BadHandler) Value(buf any, i int) (v float64, ok bool) {
	if bh.IsBad(buf, i) {
		return 0, false
	}
	switch b := buf.(type) {
	case []int8:
		return float64(b[i]), true
	case []int16:
		return float64(b[i]), true
	case []int32:
		return float64(b[i]), true
	case []float32:
		return float64(b[i]), true
	case []float64:
		return b[i], true
	}
	return 0, false
}

// Equal reports whether bh and o flag the same pixels as bad.
func (bh BadHandler) Equal(o BadHandler) bool {
	return bh == o
}

func (bh BadHandler) String() string {
	v, ok := bh.BadValue()
	if !ok {
		return fmt.Sprintf("BadHandler(%s:none)", bh.typ)
	}
	return fmt.Sprintf("BadHandler(%s:%v)", bh.typ, v)
}
