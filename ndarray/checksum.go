package ndarray

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/robert-malhotra/go-ndarray/internal/stepper"
)

const badMarker = 0xff

// Checksum returns a 64-bit hash of the type, shape and pixels of nda.
// Pixels are hashed in FirstIndexFastest order, so arrays that are Equal
// have the same checksum whatever their order.
func Checksum(nda NDArray, opts ...Option) (sum uint64, err error) {
	if !nda.IsReadable() {
		return 0, fmt.Errorf("%w: %s is not readable", ErrUnsupported, nda.Locator())
	}
	opts = deriveOptions(nda, opts)
	src, release, err := inOrder(nda, FirstIndexFastest, Read, opts)
	if err != nil {
		return 0, err
	}
	defer closeInto(&err, closerFunc(release))

	acc, err := src.Access()
	if err != nil {
		return 0, err
	}
	defer closeInto(&err, acc)

	d := xxhash.New()
	shape := src.Shape()
	var word [8]byte
	d.WriteString(src.Type().String())
	for i, o := range shape.shape.origin {
		binary.BigEndian.PutUint64(word[:], uint64(o))
		d.Write(word[:])
		binary.BigEndian.PutUint64(word[:], uint64(shape.shape.dims[i]))
		d.Write(word[:])
	}

	step := stepper.New(shape.NumPixels(), buildOptions(opts).chunkSize())
	buf := src.Type().NewBuffer(step.BufferSize())
	h := src.BadHandler().ArrayHandler(buf)
	out := make([]byte, 0, 9*step.BufferSize())
	for ; step.HasNext(); step.Next() {
		n := step.Size()
		if err := acc.Read(buf, 0, n); err != nil {
			return 0, err
		}
		out = appendPixels(out[:0], buf, h, n)
		d.Write(out)
	}
	return d.Sum64(), nil
}

// appendPixels encodes each pixel as a bad marker or a zero byte followed
// by its float64 bits.
func appendPixels(out []byte, buf any, h ArrayHandler, n int) []byte {
	switch b := buf.(type) {
	case []int8:
		return appendValues(out, b, h, n)
	case []int16:
		return appendValues(out, b, h, n)
	case []int32:
		return appendValues(out, b, h, n)
	case []float32:
		return appendValues(out, b, h, n)
	case []float64:
		return appendValues(out, b, h, n)
	}
	return out
}

func appendValues[T pixel](out []byte, b []T, h ArrayHandler, n int) []byte {
	for i := 0; i < n; i++ {
		if h.IsBad(i) {
			out = append(out, badMarker)
			continue
		}
		v := float64(b[i])
		if v == 0 {
			v = 0 // fold -0
		}
		out = append(out, 0)
		out = binary.BigEndian.AppendUint64(out, math.Float64bits(v))
	}
	return out
}
