package binary

import (
	"encoding/binary"
	"io"
)

// Writer writes fixed-width values to an io.WriterAt at a tracked position.
type Writer struct {
	w     io.WriterAt
	order binary.ByteOrder
	pos   int64
}

// NewWriter creates a writer positioned at offset 0.
func NewWriter(w io.WriterAt, order binary.ByteOrder) *Writer {
	if order == nil {
		order = binary.BigEndian
	}
	return &Writer{w: w, order: order}
}

// At returns a new writer positioned at the given offset.
// The new writer shares the underlying io.WriterAt but has independent position.
func (w *Writer) At(offset int64) *Writer {
	return &Writer{w: w.w, order: w.order, pos: offset}
}

// Pos returns the current write position.
func (w *Writer) Pos() int64 {
	return w.pos
}

// WriteBytes writes the given bytes at the current position.
func (w *Writer) WriteBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	n, err := w.w.WriteAt(data, w.pos)
	w.pos += int64(n)
	if err == nil && n < len(data) {
		err = io.ErrShortWrite
	}
	return err
}

// WriteUint8 writes an unsigned 8-bit integer.
func (w *Writer) WriteUint8(v uint8) error {
	return w.WriteBytes([]byte{v})
}

// WriteUint64 writes an unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) error {
	buf := make([]byte, 8)
	w.order.PutUint64(buf, v)
	return w.WriteBytes(buf)
}

// WriteInt64 writes a signed 64-bit integer.
func (w *Writer) WriteInt64(v int64) error {
	return w.WriteUint64(uint64(v))
}
