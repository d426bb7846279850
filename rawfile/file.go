// Package rawfile stores N-dimensional arrays as raw pixel files: a small
// header followed by the pixels in the array's order.
//
// Files opened with Open or Create are random access and may be read by
// several accessors at once. NewStream reads the same format sequentially
// from any io.Reader.
package rawfile

import (
	encbinary "encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-kit/log/level"

	"github.com/robert-malhotra/go-ndarray/internal/binary"
	"github.com/robert-malhotra/go-ndarray/ndarray"
)

// Extension is the file name suffix recognised by Resolver.
const Extension = ".ndr"

// maxIOBytes caps the scratch buffer used per transfer.
const maxIOBytes = 1 << 20

// File is the storage a random access raw array lives in. *os.File
// satisfies it.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// fileImpl is the backend for a raw file.
type fileImpl struct {
	header
	f        File
	dataOff  int64
	writable bool
}

func (fi *fileImpl) Shape() ndarray.OrderedShape { return fi.shape }
func (fi *fileImpl) Type() ndarray.Type { return fi.typ }
func (fi *fileImpl) BadHandler() ndarray.BadHandler { return fi.bh }
func (fi *fileImpl) IsRandom() bool { return true }
func (fi *fileImpl) IsReadable() bool { return true }
func (fi *fileImpl) IsWritable() bool { return fi.writable }
func (fi *fileImpl) MultipleAccess() bool { return true }
func (fi *fileImpl) Open() error { return nil }
func (fi *fileImpl) CanMap() bool { return false }
func (fi *fileImpl) Mapped() any { return nil }
func (fi *fileImpl) Close() error { return fi.f.Close() }

func (fi *fileImpl) NewAccess() (ndarray.AccessImpl, error) {
	return &fileAccess{
		impl: fi,
		r:    binary.NewReader(fi.f, fi.order),
		w:    binary.NewWriter(fi.f, fi.order),
	}, nil
}

type fileAccess struct {
	impl   *fileImpl
	r      *binary.Reader
	w      *binary.Writer
	offset int64
	buf    []byte
}

func (a *fileAccess) SetOffset(off int64) error {
	a.offset = off
	return nil
}

func (a *fileAccess) pos() int64 {
	return a.impl.dataOff + a.offset*int64(a.impl.typ.Size())
}

// chunk returns the number of pixels moved per transfer step and a byte
// buffer big enough for them.
func (a *fileAccess) chunk(size int) (int, []byte) {
	elem := a.impl.typ.Size()
	n := min(size, maxIOBytes/elem)
	if cap(a.buf) < n*elem {
		a.buf = make([]byte, n*elem)
	}
	return n, a.buf[:n*elem]
}

func (a *fileAccess) Read(buf any, start, size int) error {
	step, raw := a.chunk(size)
	for done := 0; done < size; {
		n := min(step, size-done)
		r := a.r.At(a.pos())
		if err := r.ReadFull(raw[:n*a.impl.typ.Size()]); err != nil {
			return fmt.Errorf("reading pixels at offset %d: %w", a.offset, err)
		}
		if err := binary.DecodePixels(a.impl.order, raw, buf, start+done, n); err != nil {
			return err
		}
		a.offset += int64(n)
		done += n
	}
	return nil
}

func (a *fileAccess) Write(buf any, start, size int) error {
	step, raw := a.chunk(size)
	for done := 0; done < size; {
		n := min(step, size-done)
		chunk := raw[:n*a.impl.typ.Size()]
		if err := binary.EncodePixels(a.impl.order, buf, start+done, n, chunk); err != nil {
			return err
		}
		if err := a.w.At(a.pos()).WriteBytes(chunk); err != nil {
			return fmt.Errorf("writing pixels at offset %d: %w", a.offset, err)
		}
		a.offset += int64(n)
		done += n
	}
	return nil
}

func (a *fileAccess) Close() error { return nil }

// New returns an array over an existing raw file held in f. The array
// owns f and closes it on Close.
func New(f File, writable bool, opts ...Option) (*ndarray.BridgeArray, error) {
	o := buildOptions(opts)
	h, err := readHeader(io.NewSectionReader(f, 0, math.MaxInt64))
	if err != nil {
		return nil, err
	}
	impl := &fileImpl{header: h, f: f, dataOff: h.size(), writable: writable}
	return ndarray.NewBridgeArray(impl, o.arrayOptions(nameOf(f))...), nil
}

func nameOf(f any) string {
	if n, ok := f.(interface{ Name() string }); ok {
		return n.Name()
	}
	return ""
}

// Open opens the raw file at path. Read mode opens it read-only; Write and
// Update modes open it for reading and writing.
func Open(path string, mode ndarray.AccessMode, opts ...Option) (*ndarray.BridgeArray, error) {
	flag := os.O_RDONLY
	if mode.IsWritable() {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	arr, err := New(f, mode.IsWritable(), opts...)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	level.Debug(buildOptions(opts).logger).Log("msg", "opened raw file", "path", path, "shape", arr.Shape(), "type", arr.Type(), "mode", mode)
	return arr, nil
}

// Create creates or truncates the raw file at path and returns a writable
// array over it with every pixel zero. If bh is zero or not of type t the
// type's default bad value handling is used.
func Create(path string, shape ndarray.OrderedShape, t ndarray.Type, bh ndarray.BadHandler, opts ...Option) (*ndarray.BridgeArray, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: creating file of %s", ndarray.ErrInvalidArgument, t)
	}
	if shape.IsZero() || shape.NumDims() > maxDims {
		return nil, fmt.Errorf("%w: cannot store shape %s", ndarray.ErrInvalidArgument, shape)
	}
	o := buildOptions(opts)
	if bh.IsZero() || bh.Type() != t {
		if !bh.IsZero() {
			level.Warn(o.logger).Log("msg", "bad value handling not storable, using default", "path", path, "requested", bh, "type", t)
		}
		bh = t.DefaultBadHandler()
	}
	h := header{shape: shape, typ: t, bh: bh, order: o.order}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	if err := initFile(f, h); err != nil {
		return nil, errors.Join(fmt.Errorf("creating %s: %w", path, err), f.Close())
	}
	level.Debug(o.logger).Log("msg", "created raw file", "path", path, "shape", shape, "type", t, "bytes", h.size()+h.dataSize())

	impl := &fileImpl{header: h, f: f, dataOff: h.size(), writable: true}
	return ndarray.NewBridgeArray(impl, o.arrayOptions(path)...), nil
}

func initFile(f *os.File, h header) error {
	if err := h.write(binary.NewWriter(f, encbinary.BigEndian)); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return f.Truncate(h.size() + h.dataSize())
}
