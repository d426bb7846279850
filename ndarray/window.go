package ndarray

import "fmt"

// WindowArrayImpl presents a base array through a different region of
// pixel space, in the base's order. Pixels of the window outside the base
// read as bad and are dropped on write.
type WindowArrayImpl struct {
	*WrapperArrayImpl
	shape OrderedShape
}

// NewWindowArrayImpl returns a window on base covering window.
func NewWindowArrayImpl(base NDArray, window Shape) (*WindowArrayImpl, error) {
	if window.NumDims() != base.Shape().NumDims() {
		return nil, fmt.Errorf("%w: window %s does not match %d-dimensional array", ErrInvalidArgument, window, base.Shape().NumDims())
	}
	return &WindowArrayImpl{
		WrapperArrayImpl: NewWrapperArrayImpl(base),
		shape:            newOrderedShape(window, base.Shape().Order()),
	}, nil
}

func (w *WindowArrayImpl) Shape() OrderedShape {
	return w.shape
}

func (w *WindowArrayImpl) NewAccess() (AccessImpl, error) {
	acc, err := w.base.Access()
	if err != nil {
		return nil, err
	}
	return &windowAccess{
		base:      acc,
		window:    w.shape,
		baseShape: w.base.Shape(),
		bh:        w.base.BadHandler(),
		pos:       make([]int64, w.shape.NumDims()),
	}, nil
}

type windowAccess struct {
	base      ArrayAccess
	window    OrderedShape
	baseShape OrderedShape
	bh        BadHandler
	offset    int64
	pos       []int64
}

func (w *windowAccess) SetOffset(off int64) error {
	w.offset = off
	return nil
}

// segments splits size pixels from the current offset into window rows and
// calls fn for each row segment of n pixels at bufOff: the first pre pixels
// lie before the base, the next inLen pixels lie in it starting at baseOff,
// and the rest after it.
func (w *windowAccess) segments(size int, fn func(bufOff, n, pre int, baseOff int64, inLen int) error) error {
	fast := w.window.fastAxis()
	ws, bs := w.window.shape, w.baseShape.shape
	done := 0
	for done < size {
		w.window.positionInto(w.offset+int64(done), w.pos)
		rowEnd := ws.origin[fast] + ws.dims[fast]
		n := int(min(int64(size-done), rowEnd-w.pos[fast]))

		inside := true
		for i, p := range w.pos {
			if i != fast && (p < bs.origin[i] || p >= bs.origin[i]+bs.dims[i]) {
				inside = false
				break
			}
		}
		lo := max(w.pos[fast], bs.origin[fast])
		hi := min(w.pos[fast]+int64(n), bs.origin[fast]+bs.dims[fast])
		if !inside || lo >= hi {
			if err := fn(done, n, n, -1, 0); err != nil {
				return err
			}
		} else {
			pre := int(lo - w.pos[fast])
			w.pos[fast] = lo
			if err := fn(done, n, pre, w.baseShape.offsetOf(w.pos), int(hi-lo)); err != nil {
				return err
			}
		}
		done += n
	}
	return nil
}

func (w *windowAccess) Read(buf any, start, size int) error {
	var (
		runBase      int64 = -1
		runBuf, runN int
	)
	flush := func() error {
		if runN == 0 {
			return nil
		}
		if err := w.base.SetOffset(runBase); err != nil {
			return err
		}
		err := w.base.Read(buf, start+runBuf, runN)
		runN = 0
		return err
	}
	err := w.segments(size, func(bufOff, n, pre int, baseOff int64, inLen int) error {
		if pre > 0 {
			w.bh.PutBadRun(buf, start+bufOff, pre)
		}
		if post := n - pre - inLen; post > 0 {
			w.bh.PutBadRun(buf, start+bufOff+pre+inLen, post)
		}
		if inLen == 0 {
			return nil
		}
		if runN > 0 && baseOff == runBase+int64(runN) && bufOff+pre == runBuf+runN {
			runN += inLen
			return nil
		}
		if err := flush(); err != nil {
			return err
		}
		runBase, runBuf, runN = baseOff, bufOff+pre, inLen
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return err
	}
	w.offset += int64(size)
	return nil
}

func (w *windowAccess) Write(buf any, start, size int) error {
	var (
		runBase      int64 = -1
		runBuf, runN int
	)
	flush := func() error {
		if runN == 0 {
			return nil
		}
		if err := w.base.SetOffset(runBase); err != nil {
			return err
		}
		err := w.base.Write(buf, start+runBuf, runN)
		runN = 0
		return err
	}
	err := w.segments(size, func(bufOff, n, pre int, baseOff int64, inLen int) error {
		if inLen == 0 {
			return nil
		}
		if runN > 0 && baseOff == runBase+int64(runN) && bufOff+pre == runBuf+runN {
			runN += inLen
			return nil
		}
		if err := flush(); err != nil {
			return err
		}
		runBase, runBuf, runN = baseOff, bufOff+pre, inLen
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return err
	}
	w.offset += int64(size)
	return nil
}

func (w *windowAccess) Close() error {
	return w.base.Close()
}
