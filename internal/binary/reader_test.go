package binary

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// bytesWriterAt is a growable io.WriterAt.
type bytesWriterAt struct {
	data []byte
}

func (b *bytesWriterAt) WriteAt(p []byte, off int64) (int, error) {
	end := int(off) + len(p)
	if end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	return copy(b.data[off:], p), nil
}

func TestReaderValues(t *testing.T) {
	data := bytesReaderAt{0x42, 0, 0, 0, 0, 0, 0, 0x01, 0x02, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE}
	r := NewReader(data, binary.BigEndian)

	v8, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), v8)

	v64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102), v64)

	i64, err := r.ReadInt64()
	require.NoError(t, err)
	assert.Equal(t, int64(-2), i64)
	assert.Equal(t, int64(17), r.Pos())
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytesReaderAt{1, 2, 3}, binary.LittleEndian)
	_, err := r.ReadUint64()
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReaderAtSkip(t *testing.T) {
	r := NewReader(bytesReaderAt{1, 2, 3, 4}, nil)
	assert.Equal(t, binary.BigEndian, r.ByteOrder())

	r2 := r.At(2)
	v, err := r2.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), v)
	assert.Equal(t, int64(0), r.Pos())

	r.Skip(3)
	v, err = r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(4), v)
}

func TestWriterRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		buf := &bytesWriterAt{}
		w := NewWriter(buf, order)
		require.NoError(t, w.WriteUint8(7))
		require.NoError(t, w.WriteUint64(math.MaxUint64-1))
		require.NoError(t, w.WriteInt64(-12345))
		assert.Equal(t, int64(17), w.Pos())

		r := NewReader(bytesReaderAt(buf.data), order)
		v8, _ := r.ReadUint8()
		v64, _ := r.ReadUint64()
		i64, err := r.ReadInt64()
		require.NoError(t, err)
		assert.Equal(t, uint8(7), v8)
		assert.Equal(t, uint64(math.MaxUint64-1), v64)
		assert.Equal(t, int64(-12345), i64)
	}
}

func TestWriterAt(t *testing.T) {
	buf := &bytesWriterAt{}
	w := NewWriter(buf, binary.BigEndian).At(4)
	require.NoError(t, w.WriteUint8(9))
	assert.Equal(t, []byte{0, 0, 0, 0, 9}, buf.data)
}
