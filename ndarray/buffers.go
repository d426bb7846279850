package ndarray

import (
	"fmt"
	"unsafe"
)

type pixel interface {
	int8 | int16 | int32 | float32 | float64
}

func bufferLen(buf any) int {
	switch b := buf.(type) {
	case []int8:
		return len(b)
	case []int16:
		return len(b)
	case []int32:
		return len(b)
	case []float32:
		return len(b)
	case []float64:
		return len(b)
	default:
		return -1
	}
}

// copyBuffer copies n elements between two buffers of the same type.
func copyBuffer(src any, srcPos int, dst any, dstPos int, n int) {
	switch s := src.(type) {
	case []int8:
		copy(dst.([]int8)[dstPos:dstPos+n], s[srcPos:srcPos+n])
	case []int16:
		copy(dst.([]int16)[dstPos:dstPos+n], s[srcPos:srcPos+n])
	case []int32:
		copy(dst.([]int32)[dstPos:dstPos+n], s[srcPos:srcPos+n])
	case []float32:
		copy(dst.([]float32)[dstPos:dstPos+n], s[srcPos:srcPos+n])
	case []float64:
		copy(dst.([]float64)[dstPos:dstPos+n], s[srcPos:srcPos+n])
	default:
		panic(fmt.Sprintf("ndarray: %T is not a pixel buffer", src))
	}
}

// viewBuffer reinterprets b as n elements of type t. b must be suitably
// aligned and hold at least n*t.Size() bytes.
func viewBuffer(t Type, b []byte, n int) any {
	if n == 0 {
		return t.NewBuffer(0)
	}
	p := unsafe.Pointer(unsafe.SliceData(b))
	switch t {
	case Int8:
		return unsafe.Slice((*int8)(p), n)
	case Int16:
		return unsafe.Slice((*int16)(p), n)
	case Int32:
		return unsafe.Slice((*int32)(p), n)
	case Float32:
		return unsafe.Slice((*float32)(p), n)
	case Float64:
		return unsafe.Slice((*float64)(p), n)
	default:
		panic(fmt.Sprintf("ndarray: no view for %s", t))
	}
}
