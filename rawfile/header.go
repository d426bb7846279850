package rawfile

import (
	"bytes"
	encbinary "encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/robert-malhotra/go-ndarray/internal/binary"
	"github.com/robert-malhotra/go-ndarray/ndarray"
)

// Header layout
//
//	magic     8 bytes  "NDRAW\x00\x01\x00"
//	type      u8       ndarray.Type code
//	order     u8       ndarray.Order code
//	flags     u8       bit 0: sentinel present, bit 1: little-endian pixels
//	ndims     u8
//	sentinel  8 bytes  int64, or float64 bits for floating types
//	axes      ndims x (origin i64, dim i64)
//
// Header fields are always big-endian.

var magic = [8]byte{'N', 'D', 'R', 'A', 'W', 0, 1, 0}

const (
	flagSentinel     = 1 << 0
	flagLittleEndian = 1 << 1

	fixedHeaderSize = len(magic) + 4 + 8
	axisSize        = 16
	maxDims         = math.MaxUint8
)

type header struct {
	shape ndarray.OrderedShape
	typ   ndarray.Type
	bh    ndarray.BadHandler
	order encbinary.ByteOrder
}

// size returns the header length in bytes, which is also the offset of the
// first pixel.
func (h header) size() int64 {
	return int64(fixedHeaderSize + axisSize*h.shape.NumDims())
}

// dataSize returns the length of the pixel data in bytes.
func (h header) dataSize() int64 {
	return h.shape.NumPixels() * int64(h.typ.Size())
}

func (h header) write(w *binary.Writer) error {
	flags := uint8(0)
	if h.order == encbinary.LittleEndian {
		flags |= flagLittleEndian
	}
	var sentinel uint64
	if v, ok := h.bh.BadValue(); ok {
		flags |= flagSentinel
		switch x := v.(type) {
		case int8:
			sentinel = uint64(int64(x))
		case int16:
			sentinel = uint64(int64(x))
		case int32:
			sentinel = uint64(int64(x))
		case float32:
			sentinel = math.Float64bits(float64(x))
		case float64:
			sentinel = math.Float64bits(x)
		}
	}

	if err := w.WriteBytes(magic[:]); err != nil {
		return err
	}
	for _, b := range []uint8{uint8(h.typ), uint8(h.shape.Order()), flags, uint8(h.shape.NumDims())} {
		if err := w.WriteUint8(b); err != nil {
			return err
		}
	}
	if err := w.WriteUint64(sentinel); err != nil {
		return err
	}
	origin, dims := h.shape.Origin(), h.shape.Dims()
	for i := range dims {
		if err := w.WriteInt64(origin[i]); err != nil {
			return err
		}
		if err := w.WriteInt64(dims[i]); err != nil {
			return err
		}
	}
	return nil
}

// readHeader reads a header from the start of r, leaving r positioned at
// the first pixel.
func readHeader(r io.Reader) (header, error) {
	buf := make([]byte, fixedHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return header{}, fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(buf[:len(magic)], magic[:]) {
		return header{}, fmt.Errorf("%w: not a raw pixel file", ndarray.ErrInvalidArgument)
	}
	ndims := int(buf[len(magic)+3])
	if ndims == 0 {
		return header{}, fmt.Errorf("%w: header has no axes", ndarray.ErrInvalidArgument)
	}
	axes := make([]byte, axisSize*ndims)
	if _, err := io.ReadFull(r, axes); err != nil {
		return header{}, fmt.Errorf("reading axes: %w", err)
	}
	return parseHeader(binary.NewReader(bytes.NewReader(append(buf, axes...)), encbinary.BigEndian))
}

func parseHeader(r *binary.Reader) (header, error) {
	r.Skip(int64(len(magic)))
	var codes [4]uint8
	for i := range codes {
		b, err := r.ReadUint8()
		if err != nil {
			return header{}, err
		}
		codes[i] = b
	}
	typ, order, flags, ndims := ndarray.Type(codes[0]), ndarray.Order(codes[1]), codes[2], int(codes[3])
	if !typ.Valid() {
		return header{}, fmt.Errorf("%w: unknown type code %d", ndarray.ErrInvalidArgument, codes[0])
	}
	if !order.Valid() {
		return header{}, fmt.Errorf("%w: unknown order code %d", ndarray.ErrInvalidArgument, codes[1])
	}
	sentinel, err := r.ReadUint64()
	if err != nil {
		return header{}, err
	}
	origin := make([]int64, ndims)
	dims := make([]int64, ndims)
	for i := range dims {
		if origin[i], err = r.ReadInt64(); err != nil {
			return header{}, err
		}
		if dims[i], err = r.ReadInt64(); err != nil {
			return header{}, err
		}
	}

	h := header{typ: typ, order: encbinary.BigEndian}
	if flags&flagLittleEndian != 0 {
		h.order = encbinary.LittleEndian
	}
	var bad any
	if flags&flagSentinel != 0 {
		if typ.IsFloating() {
			bad = math.Float64frombits(sentinel)
		} else {
			bad = int64(sentinel)
		}
	}
	if h.bh, err = ndarray.NewBadHandler(typ, bad); err != nil {
		return header{}, err
	}
	shape, err := ndarray.NewShape(origin, dims)
	if err != nil {
		return header{}, err
	}
	if h.shape, err = ndarray.NewOrderedShape(shape, order); err != nil {
		return header{}, err
	}
	return h, nil
}
