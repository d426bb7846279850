package rawfile

import (
	"fmt"
	"io"

	"github.com/robert-malhotra/go-ndarray/internal/binary"
	"github.com/robert-malhotra/go-ndarray/ndarray"
)

// streamImpl reads a raw file sequentially from an io.Reader. It allows a
// single accessor which can only move forwards.
type streamImpl struct {
	header
	r io.Reader
}

func (s *streamImpl) Shape() ndarray.OrderedShape { return s.shape }
func (s *streamImpl) Type() ndarray.Type { return s.typ }
func (s *streamImpl) BadHandler() ndarray.BadHandler { return s.bh }
func (s *streamImpl) IsRandom() bool { return false }
func (s *streamImpl) IsReadable() bool { return true }
func (s *streamImpl) IsWritable() bool { return false }
func (s *streamImpl) MultipleAccess() bool { return false }
func (s *streamImpl) Open() error { return nil }
func (s *streamImpl) CanMap() bool { return false }
func (s *streamImpl) Mapped() any { return nil }

func (s *streamImpl) NewAccess() (ndarray.AccessImpl, error) {
	return &streamAccess{impl: s}, nil
}

func (s *streamImpl) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type streamAccess struct {
	impl   *streamImpl
	offset int64
	buf    []byte
}

// SetOffset skips forward to off. Moving backwards is rejected by the
// bridge before it gets here.
func (a *streamAccess) SetOffset(off int64) error {
	if off == a.offset {
		return nil
	}
	if off < a.offset {
		return fmt.Errorf("%w: stream cannot seek backwards", ndarray.ErrUnsupported)
	}
	skip := (off - a.offset) * int64(a.impl.typ.Size())
	if _, err := io.CopyN(io.Discard, a.impl.r, skip); err != nil {
		return fmt.Errorf("skipping to offset %d: %w", off, err)
	}
	a.offset = off
	return nil
}

func (a *streamAccess) Read(buf any, start, size int) error {
	elem := a.impl.typ.Size()
	step := min(size, maxIOBytes/elem)
	if cap(a.buf) < step*elem {
		a.buf = make([]byte, step*elem)
	}
	for done := 0; done < size; {
		n := min(step, size-done)
		chunk := a.buf[:n*elem]
		if _, err := io.ReadFull(a.impl.r, chunk); err != nil {
			return fmt.Errorf("reading pixels at offset %d: %w", a.offset, err)
		}
		if err := binary.DecodePixels(a.impl.order, chunk, buf, start+done, n); err != nil {
			return err
		}
		a.offset += int64(n)
		done += n
	}
	return nil
}

func (a *streamAccess) Write(any, int, int) error {
	return fmt.Errorf("%w: stream is read-only", ndarray.ErrUnsupported)
}

func (a *streamAccess) Close() error { return nil }

// NewStream returns a sequential, read-only array reading a raw file from
// r. The header is read immediately. If r is an io.Closer the array closes
// it on Close.
func NewStream(r io.Reader, opts ...Option) (*ndarray.BridgeArray, error) {
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return ndarray.NewBridgeArray(&streamImpl{header: h, r: r}, o.arrayOptions(nameOf(r))...), nil
}
