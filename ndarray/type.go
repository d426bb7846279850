package ndarray

import (
	"fmt"
	"math"
	"strings"
)

// Type is the primitive element type of an array. The set is closed.
type Type int

const (
	Int8 Type = iota + 1
	Int16
	Int32
	Float32
	Float64
)

var allTypes = []Type{Int8, Int16, Int32, Float32, Float64}

// Types returns every element type.
func Types() []Type {
	return append([]Type(nil), allTypes...)
}

// ParseType parses the name of a type as returned by String.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "int8", "byte":
		return Int8, nil
	case "int16", "short":
		return Int16, nil
	case "int32", "int":
		return Int32, nil
	case "float32", "float":
		return Float32, nil
	case "float64", "double":
		return Float64, nil
	default:
		return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidArgument, s)
	}
}

// Valid reports whether t is one of the defined types.
func (t Type) Valid() bool {
	return t >= Int8 && t <= Float64
}

func (t Type) String() string {
	switch t {
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Size returns the width of one element in bytes.
func (t Type) Size() int {
	switch t {
	case Int8:
		return 1
	case Int16:
		return 2
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// IsFloating reports whether t is a floating point type.
func (t Type) IsFloating() bool {
	return t == Float32 || t == Float64
}

// Min returns the smallest finite value representable by t.
func (t Type) Min() float64 {
	switch t {
	case Int8:
		return math.MinInt8
	case Int16:
		return math.MinInt16
	case Int32:
		return math.MinInt32
	case Float32:
		return -math.MaxFloat32
	case Float64:
		return -math.MaxFloat64
	default:
		return math.NaN()
	}
}

// Max returns the largest finite value representable by t.
func (t Type) Max() float64 {
	switch t {
	case Int8:
		return math.MaxInt8
	case Int16:
		return math.MaxInt16
	case Int32:
		return math.MaxInt32
	case Float32:
		return math.MaxFloat32
	case Float64:
		return math.MaxFloat64
	default:
		return math.NaN()
	}
}

// DefaultBadValue returns the sentinel used by the default bad value
// handler: the most negative integer for integer types, NaN otherwise. The
// value has the Go type matching t.
func (t Type) DefaultBadValue() any {
	switch t {
	case Int8:
		return int8(math.MinInt8)
	case Int16:
		return int16(math.MinInt16)
	case Int32:
		return int32(math.MinInt32)
	case Float32:
		return float32(math.NaN())
	case Float64:
		return math.NaN()
	default:
		return nil
	}
}

// DefaultBadHandler returns the handler using DefaultBadValue.
func (t Type) DefaultBadHandler() BadHandler {
	bh, err := NewBadHandler(t, t.DefaultBadValue())
	if err != nil {
		panic(err)
	}
	return bh
}

// NewBuffer allocates a pixel buffer of n elements of type t.
func (t Type) NewBuffer(n int) any {
	switch t {
	case Int8:
		return make([]int8, n)
	case Int16:
		return make([]int16, n)
	case Int32:
		return make([]int32, n)
	case Float32:
		return make([]float32, n)
	case Float64:
		return make([]float64, n)
	default:
		panic(fmt.Sprintf("ndarray: NewBuffer on invalid %s", t))
	}
}

// BufferLen returns the length of buf, which must be a pixel buffer of
// type t.
func (t Type) BufferLen(buf any) (int, error) {
	bt, ok := TypeOf(buf)
	if !ok || bt != t {
		return 0, fmt.Errorf("%w: %T is not a %s buffer", ErrInvalidArgument, buf, t)
	}
	return bufferLen(buf), nil
}

// TypeOf returns the element type of a pixel buffer.
func TypeOf(buf any) (Type, bool) {
	switch buf.(type) {
	case []int8:
		return Int8, true
	case []int16:
		return Int16, true
	case []int32:
		return Int32, true
	case []float32:
		return Float32, true
	case []float64:
		return Float64, true
	default:
		return 0, false
	}
}
