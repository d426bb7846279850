// Package binary provides byte-order aware I/O for raw pixel files: header
// fields through Reader and Writer, and pixel runs through DecodePixels and
// EncodePixels.
package binary

import (
	"encoding/binary"
	"io"
)

// Reader reads fixed-width values from an io.ReaderAt at a tracked position.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	pos   int64
}

// NewReader creates a reader positioned at offset 0.
func NewReader(r io.ReaderAt, order binary.ByteOrder) *Reader {
	if order == nil {
		order = binary.BigEndian
	}
	return &Reader{r: r, order: order}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{r: r.r, order: r.order, pos: offset}
}

// Pos returns the current read position.
func (r *Reader) Pos() int64 {
	return r.pos
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// ReadBytes reads exactly n bytes from the current position.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.ReadFull(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadFull fills buf from the current position. A short read is reported as
// io.ErrUnexpectedEOF.
func (r *Reader) ReadFull(buf []byte) error {
	n, err := r.r.ReadAt(buf, r.pos)
	r.pos += int64(n)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	buf, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return r.order.Uint64(buf), nil
}

// ReadInt64 reads a signed 64-bit integer.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// Skip advances the position by n bytes.
func (r *Reader) Skip(n int64) {
	r.pos += n
}
