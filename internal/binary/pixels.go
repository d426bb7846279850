package binary

// Pixel codec
//
// Pixel buffers are plain Go slices of one of the five primitive element
// types. On disk the same values are stored in a fixed byte order.
//
// When the file byte order matches the platform we take the fast path and
// move bytes with a single copy through an unsafe byte view of the slice.
// Otherwise every element is encoded or decoded individually.

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

type pixel interface {
	int8 | int16 | int32 | float32 | float64
}

var littleEndianHost = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// isNative reports whether order matches the host byte order.
func isNative(order binary.ByteOrder) bool {
	switch order {
	case binary.LittleEndian:
		return littleEndianHost
	case binary.BigEndian:
		return !littleEndianHost
	default:
		return false
	}
}

// ElementSize returns the byte width of the elements of a pixel buffer, or 0
// if buf is not a pixel buffer.
func ElementSize(buf any) int {
	switch buf.(type) {
	case []int8:
		return 1
	case []int16:
		return 2
	case []int32, []float32:
		return 4
	case []float64:
		return 8
	default:
		return 0
	}
}

func asBytes[T pixel](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}

// DecodePixels decodes n elements from src into dst[start:start+n].
func DecodePixels(order binary.ByteOrder, src []byte, dst any, start, n int) error {
	size := ElementSize(dst)
	if size == 0 {
		return fmt.Errorf("unsupported pixel buffer %T", dst)
	}
	if len(src) < n*size {
		return fmt.Errorf("source too short: %d bytes for %d elements", len(src), n)
	}

	switch d := dst.(type) {
	case []int8:
		for i := 0; i < n; i++ {
			d[start+i] = int8(src[i])
		}
	case []int16:
		if isNative(order) {
			copy(asBytes(d[start:start+n]), src)
			return nil
		}
		for i := 0; i < n; i++ {
			d[start+i] = int16(order.Uint16(src[2*i:]))
		}
	case []int32:
		if isNative(order) {
			copy(asBytes(d[start:start+n]), src)
			return nil
		}
		for i := 0; i < n; i++ {
			d[start+i] = int32(order.Uint32(src[4*i:]))
		}
	case []float32:
		if isNative(order) {
			copy(asBytes(d[start:start+n]), src)
			return nil
		}
		for i := 0; i < n; i++ {
			d[start+i] = math.Float32frombits(order.Uint32(src[4*i:]))
		}
	case []float64:
		if isNative(order) {
			copy(asBytes(d[start:start+n]), src)
			return nil
		}
		for i := 0; i < n; i++ {
			d[start+i] = math.Float64frombits(order.Uint64(src[8*i:]))
		}
	}
	return nil
}

// EncodePixels encodes src[start:start+n] into dst.
func EncodePixels(order binary.ByteOrder, src any, start, n int, dst []byte) error {
	size := ElementSize(src)
	if size == 0 {
		return fmt.Errorf("unsupported pixel buffer %T", src)
	}
	if len(dst) < n*size {
		return fmt.Errorf("destination too short: %d bytes for %d elements", len(dst), n)
	}

	switch s := src.(type) {
	case []int8:
		for i := 0; i < n; i++ {
			dst[i] = byte(s[start+i])
		}
	case []int16:
		if isNative(order) {
			copy(dst, asBytes(s[start:start+n]))
			return nil
		}
		for i := 0; i < n; i++ {
			order.PutUint16(dst[2*i:], uint16(s[start+i]))
		}
	case []int32:
		if isNative(order) {
			copy(dst, asBytes(s[start:start+n]))
			return nil
		}
		for i := 0; i < n; i++ {
			order.PutUint32(dst[4*i:], uint32(s[start+i]))
		}
	case []float32:
		if isNative(order) {
			copy(dst, asBytes(s[start:start+n]))
			return nil
		}
		for i := 0; i < n; i++ {
			order.PutUint32(dst[4*i:], math.Float32bits(s[start+i]))
		}
	case []float64:
		if isNative(order) {
			copy(dst, asBytes(s[start:start+n]))
			return nil
		}
		for i := 0; i < n; i++ {
			order.PutUint64(dst[8*i:], math.Float64bits(s[start+i]))
		}
	}
	return nil
}
