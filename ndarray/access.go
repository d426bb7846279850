package ndarray

import (
	"fmt"

	"github.com/go-kit/log/level"

	"github.com/robert-malhotra/go-ndarray/internal/tile"
)

// access is the ArrayAccess handed out by BridgeArray. It owns one
// AccessImpl and validates every request before passing it on. Requests
// on mappable arrays are served from the mapped buffer.
type access struct {
	description
	array  *BridgeArray
	impl   AccessImpl
	mapped any
	npix   int64
	offset int64
	closed bool
}

func newAccess(a *BridgeArray, impl AccessImpl) *access {
	return &access{
		description: a.desc,
		array:       a,
		impl:        impl,
		mapped:      a.mapped,
		npix:        a.desc.shape.NumPixels(),
	}
}

func (acc *access) checkOpen() error {
	if acc.closed || acc.array.closed.Load() {
		return fmt.Errorf("%w: accessor on %s", ErrClosed, acc.array.locator)
	}
	return nil
}

// fail closes the accessor after a backend error and wraps the error.
func (acc *access) fail(op string, err error) error {
	acc.closed = true
	cerr := acc.impl.Close()
	acc.array.opts.metrics.ioFailure()
	level.Warn(acc.array.logger).Log("msg", "accessor closed after backend failure", "op", op, "offset", acc.offset, "err", err, "close_err", cerr)
	return fmt.Errorf("%w: %s %s at offset %d: %w", ErrIO, op, acc.array.locator, acc.offset, err)
}

func (acc *access) Offset() int64 {
	return acc.offset
}

func (acc *access) Position() []int64 {
	if acc.offset >= acc.npix {
		return nil
	}
	pos := make([]int64, acc.shape.NumDims())
	acc.shape.positionInto(acc.offset, pos)
	return pos
}

func (acc *access) SetOffset(off int64) error {
	if err := acc.checkOpen(); err != nil {
		return err
	}
	if off < 0 || off > acc.npix {
		return fmt.Errorf("%w: offset %d outside [0,%d]", ErrOutOfBounds, off, acc.npix)
	}
	if off == acc.offset {
		return nil
	}
	if off < acc.offset && !acc.random {
		return fmt.Errorf("%w: backward seek from %d to %d on sequential array %s", ErrUnsupported, acc.offset, off, acc.array.locator)
	}
	if acc.mapped == nil {
		if err := acc.impl.SetOffset(off); err != nil {
			return acc.fail("seek", err)
		}
	}
	acc.offset = off
	return nil
}

func (acc *access) SetPosition(pos []int64) error {
	off, err := acc.shape.PositionToOffset(pos)
	if err != nil {
		return err
	}
	return acc.SetOffset(off)
}

// checkRun validates a transfer of size pixels to or from buf[start:].
func (acc *access) checkRun(buf any, start, size int) error {
	n, err := acc.typ.BufferLen(buf)
	if err != nil {
		return err
	}
	if start < 0 || size < 0 || start > n-size {
		return fmt.Errorf("%w: run %d+%d outside buffer of length %d", ErrInvalidArgument, start, size, n)
	}
	if int64(size) > acc.npix-acc.offset {
		return fmt.Errorf("%w: %d pixels from offset %d overrun %d", ErrOutOfBounds, size, acc.offset, acc.npix)
	}
	return nil
}

func (acc *access) Read(buf any, start, size int) error {
	if err := acc.checkOpen(); err != nil {
		return err
	}
	if !acc.readable {
		return fmt.Errorf("%w: %s is not readable", ErrUnsupported, acc.array.locator)
	}
	if err := acc.checkRun(buf, start, size); err != nil {
		return err
	}
	return acc.read(buf, start, size)
}

// read transfers a validated run.
func (acc *access) read(buf any, start, size int) error {
	if size == 0 {
		return nil
	}
	if acc.mapped != nil {
		copyBuffer(acc.mapped, int(acc.offset), buf, start, size)
	} else if err := acc.impl.Read(buf, start, size); err != nil {
		return acc.fail("read", err)
	}
	acc.offset += int64(size)
	acc.array.opts.metrics.read(acc.typ, size)
	return nil
}

func (acc *access) Write(buf any, start, size int) error {
	if err := acc.checkOpen(); err != nil {
		return err
	}
	if !acc.writable {
		return fmt.Errorf("%w: %s is not writable", ErrUnsupported, acc.array.locator)
	}
	if err := acc.checkRun(buf, start, size); err != nil {
		return err
	}
	return acc.write(buf, start, size)
}

func (acc *access) write(buf any, start, size int) error {
	if size == 0 {
		return nil
	}
	if acc.mapped != nil {
		copyBuffer(buf, start, acc.mapped, int(acc.offset), size)
	} else if err := acc.impl.Write(buf, start, size); err != nil {
		return acc.fail("write", err)
	}
	acc.offset += int64(size)
	acc.array.opts.metrics.written(acc.typ, size)
	return nil
}

// checkTile validates a tile transfer and returns the tile's pixel count.
func (acc *access) checkTile(buf any, t Shape) (int, error) {
	if t.NumDims() != acc.shape.NumDims() {
		return 0, fmt.Errorf("%w: tile %s has %d axes, array has %d", ErrInvalidArgument, t, t.NumDims(), acc.shape.NumDims())
	}
	n, err := acc.typ.BufferLen(buf)
	if err != nil {
		return 0, err
	}
	if t.NumPixels() > int64(n) {
		return 0, fmt.Errorf("%w: buffer of length %d too short for tile %s", ErrInvalidArgument, n, t)
	}
	return int(t.NumPixels()), nil
}

func (acc *access) ReadTile(buf any, t Shape) error {
	if err := acc.checkOpen(); err != nil {
		return err
	}
	if !acc.readable {
		return fmt.Errorf("%w: %s is not readable", ErrUnsupported, acc.array.locator)
	}
	npix, err := acc.checkTile(buf, t)
	if err != nil {
		return err
	}
	s := acc.shape.shape
	if !s.ContainsShape(t) {
		acc.bh.PutBadRun(buf, 0, npix)
	}
	return acc.tileRuns(t, func(arrayOff, tileOff int64, n int) error {
		if err := acc.SetOffset(arrayOff); err != nil {
			return err
		}
		return acc.read(buf, int(tileOff), n)
	})
}

func (acc *access) WriteTile(buf any, t Shape) error {
	if err := acc.checkOpen(); err != nil {
		return err
	}
	if !acc.writable {
		return fmt.Errorf("%w: %s is not writable", ErrUnsupported, acc.array.locator)
	}
	if _, err := acc.checkTile(buf, t); err != nil {
		return err
	}
	return acc.tileRuns(t, func(arrayOff, tileOff int64, n int) error {
		if err := acc.SetOffset(arrayOff); err != nil {
			return err
		}
		return acc.write(buf, int(tileOff), n)
	})
}

// tileRuns calls fn for each contiguous run of the intersection of the
// array and tile t, merging rows that are contiguous in both.
func (acc *access) tileRuns(t Shape, fn func(arrayOff, tileOff int64, n int) error) error {
	s := acc.shape.shape
	it, ok := tile.NewRowIterator(s.origin, s.dims, t.origin, t.dims, acc.shape.order.IsFirstIndexFastest())
	if !ok {
		return nil
	}
	row := it.RowLength()
	var (
		runA, runB, runN int64
		pending          bool
	)
	for it.Next() {
		a, b := it.OffsetA(), it.OffsetB()
		if pending && a == runA+runN && b == runB+runN {
			runN += row
			continue
		}
		if pending {
			if err := fn(runA, runB, int(runN)); err != nil {
				return err
			}
		}
		runA, runB, runN, pending = a, b, row, true
	}
	if pending {
		return fn(runA, runB, int(runN))
	}
	return nil
}

func (acc *access) IsMapped() bool {
	return acc.mapped != nil
}

// Mapped returns nil once the accessor or its array is closed.
func (acc *access) Mapped() any {
	if acc.checkOpen() != nil {
		return nil
	}
	return acc.mapped
}

func (acc *access) Close() error {
	if acc.closed {
		return nil
	}
	acc.closed = true
	if err := acc.impl.Close(); err != nil {
		return fmt.Errorf("%w: closing accessor on %s: %w", ErrIO, acc.array.locator, err)
	}
	return nil
}
