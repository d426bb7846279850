package ndarray

import (
	"fmt"

	"github.com/robert-malhotra/go-ndarray/internal/stepper"
)

// closeInto closes c, recording its error in err unless err is already set.
func closeInto(err *error, c interface{ Close() error }) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// inOrder returns nda presented in order o, and a function releasing
// anything created for it. nda itself is never closed by the release.
// Sequential arrays are first copied to scratch.
func inOrder(nda NDArray, o Order, mode AccessMode, opts []Option) (NDArray, func() error, error) {
	if nda.Shape().Order() == o {
		return nda, func() error { return nil }, nil
	}
	base := borrow(nda)
	if !nda.IsRandom() {
		if mode.IsWritable() {
			return nil, nil, fmt.Errorf("%w: reordering writes to sequential array %s", ErrUnsupported, nda.Locator())
		}
		scratch, err := ScratchCopy(nda, opts...)
		if err != nil {
			return nil, nil, err
		}
		base = scratch
	}
	r, err := ToRequired(base, NewRequirements().SetOrder(o).SetMode(mode), opts...)
	if err != nil {
		return nil, nil, err
	}
	return r, r.Close, nil
}

// Copy copies every pixel of src into dst. The arrays must cover the same
// shape but may differ in order, type and bad value handling.
func Copy(src, dst NDArray, opts ...Option) (err error) {
	if !src.Shape().Shape().SameShape(dst.Shape().Shape()) {
		return fmt.Errorf("%w: copying %s to %s", ErrInvalidArgument, src.Shape(), dst.Shape())
	}
	if !src.IsReadable() {
		return fmt.Errorf("%w: %s is not readable", ErrUnsupported, src.Locator())
	}
	if !dst.IsWritable() {
		return fmt.Errorf("%w: %s is not writable", ErrUnsupported, dst.Locator())
	}
	opts = deriveOptions(src, opts)

	if src.Shape().Order() != dst.Shape().Order() {
		var release func() error
		if src.IsRandom() || !dst.IsRandom() {
			src, release, err = inOrder(src, dst.Shape().Order(), Read, opts)
		} else {
			dst, release, err = inOrder(dst, src.Shape().Order(), Write, opts)
		}
		if err != nil {
			return err
		}
		defer closeInto(&err, closerFunc(release))
	}

	sacc, err := src.Access()
	if err != nil {
		return err
	}
	defer closeInto(&err, sacc)
	dacc, err := dst.Access()
	if err != nil {
		return err
	}
	defer closeInto(&err, dacc)

	return copyAccess(sacc, dacc, buildOptions(opts).chunkSize())
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// copyAccess copies all pixels between two fresh accessors on arrays with
// the same pixel sequence.
func copyAccess(s, d ArrayAccess, chunk int) error {
	conv, err := NewTypeConverter(s.Type(), s.BadHandler(), d.Type(), d.BadHandler(), nil)
	if err != nil {
		return err
	}
	npix := s.Shape().NumPixels()
	switch {
	case s.IsMapped() && d.IsMapped():
		return conv.Convert12(s.Mapped(), 0, d.Mapped(), 0, int(npix))
	case s.IsMapped() && conv.IsUnit12():
		return d.Write(s.Mapped(), 0, int(npix))
	case d.IsMapped() && conv.IsUnit12():
		return s.Read(d.Mapped(), 0, int(npix))
	}

	step := stepper.New(npix, chunk)
	sbuf := s.Type().NewBuffer(step.BufferSize())
	dbuf := sbuf
	if !conv.IsUnit12() {
		dbuf = d.Type().NewBuffer(step.BufferSize())
	}
	for ; step.HasNext(); step.Next() {
		n := step.Size()
		if err := s.Read(sbuf, 0, n); err != nil {
			return err
		}
		if !conv.IsUnit12() {
			if err := conv.Convert12(sbuf, 0, dbuf, 0, n); err != nil {
				return err
			}
		}
		if err := d.Write(dbuf, 0, n); err != nil {
			return err
		}
	}
	return nil
}

// ScratchCopy returns a scratch array holding a copy of nda.
func ScratchCopy(nda NDArray, opts ...Option) (*BridgeArray, error) {
	opts = deriveOptions(nda, opts)
	scratch, err := NewScratchArray(nda.Shape(), nda.Type(), nda.BadHandler(), opts...)
	if err != nil {
		return nil, err
	}
	if err := Copy(nda, scratch, opts...); err != nil {
		scratch.Close()
		return nil, err
	}
	return scratch, nil
}

// Equal reports whether a and b have the same type and shape, are bad at
// the same positions and hold the same values elsewhere. Their orders may
// differ.
func Equal(a, b NDArray, opts ...Option) (eq bool, err error) {
	if a.Type() != b.Type() || !a.Shape().Shape().SameShape(b.Shape().Shape()) {
		return false, nil
	}
	if !a.IsReadable() || !b.IsReadable() {
		return false, fmt.Errorf("%w: comparing unreadable arrays", ErrUnsupported)
	}
	opts = deriveOptions(a, opts)

	if a.Shape().Order() != b.Shape().Order() {
		var release func() error
		if a.IsRandom() || !b.IsRandom() {
			a, release, err = inOrder(a, b.Shape().Order(), Read, opts)
		} else {
			b, release, err = inOrder(b, a.Shape().Order(), Read, opts)
		}
		if err != nil {
			return false, err
		}
		defer closeInto(&err, closerFunc(release))
	}

	acc1, err := a.Access()
	if err != nil {
		return false, err
	}
	defer closeInto(&err, acc1)
	acc2, err := b.Access()
	if err != nil {
		return false, err
	}
	defer closeInto(&err, acc2)

	step := stepper.New(a.Shape().NumPixels(), buildOptions(opts).chunkSize())
	buf1 := a.Type().NewBuffer(step.BufferSize())
	buf2 := b.Type().NewBuffer(step.BufferSize())
	h1 := a.BadHandler().ArrayHandler(buf1)
	h2 := b.BadHandler().ArrayHandler(buf2)
	for ; step.HasNext(); step.Next() {
		n := step.Size()
		if err := acc1.Read(buf1, 0, n); err != nil {
			return false, err
		}
		if err := acc2.Read(buf2, 0, n); err != nil {
			return false, err
		}
		if !equalRun(buf1, h1, buf2, h2, n) {
			return false, nil
		}
	}
	return true, nil
}

func equalRun(buf1 any, h1 ArrayHandler, buf2 any, h2 ArrayHandler, n int) bool {
	switch b1 := buf1.(type) {
	case []int8:
		return equalValues(b1, h1, buf2.([]int8), h2, n)
	case []int16:
		return equalValues(b1, h1, buf2.([]int16), h2, n)
	case []int32:
		return equalValues(b1, h1, buf2.([]int32), h2, n)
	case []float32:
		return equalValues(b1, h1, buf2.([]float32), h2, n)
	case []float64:
		return equalValues(b1, h1, buf2.([]float64), h2, n)
	}
	return false
}

func equalValues[T pixel](b1 []T, h1 ArrayHandler, b2 []T, h2 ArrayHandler, n int) bool {
	for i := 0; i < n; i++ {
		bad := h1.IsBad(i)
		if bad != h2.IsBad(i) {
			return false
		}
		if !bad && b1[i] != b2[i] {
			return false
		}
	}
	return true
}
