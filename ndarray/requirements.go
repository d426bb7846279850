package ndarray

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-kit/log/level"
)

// Requirements lists properties an array must have. Unset properties are
// not required. The zero value requires nothing.
type Requirements struct {
	typ    Type
	window Shape
	order  Order
	bh     BadHandler
	random bool
	mode   AccessMode
}

// NewRequirements returns an empty set of requirements.
func NewRequirements() *Requirements {
	return &Requirements{}
}

// SetType requires element type t. A bad handler of another type is
// dropped.
func (r *Requirements) SetType(t Type) *Requirements {
	r.typ = t
	if !r.bh.IsZero() && r.bh.Type() != t {
		r.bh = BadHandler{}
	}
	return r
}

// SetBadHandler requires bad value handling bh, and its type.
func (r *Requirements) SetBadHandler(bh BadHandler) *Requirements {
	r.bh = bh
	r.typ = bh.Type()
	return r
}

// SetWindow requires the array to cover exactly window.
func (r *Requirements) SetWindow(window Shape) *Requirements {
	r.window = window
	return r
}

func (r *Requirements) SetOrder(o Order) *Requirements {
	r.order = o
	return r
}

func (r *Requirements) SetRandom(random bool) *Requirements {
	r.random = random
	return r
}

func (r *Requirements) SetMode(m AccessMode) *Requirements {
	r.mode = m
	return r
}

func (r *Requirements) Type() (Type, bool) { return r.typ, r.typ != 0 }
func (r *Requirements) Window() (Shape, bool) { return r.window, !r.window.IsZero() }
func (r *Requirements) Order() (Order, bool) { return r.order, r.order != 0 }
func (r *Requirements) BadHandler() (BadHandler, bool) { return r.bh, !r.bh.IsZero() }
func (r *Requirements) Random() bool { return r.random }
func (r *Requirements) Mode() (AccessMode, bool) { return r.mode, r.mode != 0 }

func (r *Requirements) String() string {
	var parts []string
	if t, ok := r.Type(); ok {
		parts = append(parts, "type="+t.String())
	}
	if w, ok := r.Window(); ok {
		parts = append(parts, "window="+w.String())
	}
	if o, ok := r.Order(); ok {
		parts = append(parts, "order="+o.String())
	}
	if bh, ok := r.BadHandler(); ok {
		parts = append(parts, "bad="+bh.String())
	}
	if r.random {
		parts = append(parts, "random")
	}
	if m, ok := r.Mode(); ok {
		parts = append(parts, "mode="+m.String())
	}
	return "Requirements(" + strings.Join(parts, ",") + ")"
}

// ToRequired returns an array presenting nda with every property req asks
// for, adding as few virtual layers as possible. If nothing needs to change
// nda itself is returned; otherwise the result owns nda and closing it
// closes nda.
//
// The layers are applied in this order: type conversion; a scratch copy if
// random access or a reordering is needed and nda is sequential; a
// reordering pixel map, which also applies any window; otherwise a window.
func ToRequired(nda NDArray, req *Requirements, opts ...Option) (NDArray, error) {
	if req == nil {
		return nda, nil
	}
	opts = deriveOptions(nda, opts)
	logger := buildOptions(opts).logger

	mode, ok := req.Mode()
	if !ok {
		mode = ModeFor(nda)
	}
	if err := checkMode(nda, mode); err != nil {
		return nil, err
	}
	if w, ok := req.Window(); ok && w.NumDims() != nda.Shape().NumDims() {
		return nil, fmt.Errorf("%w: window %s does not match %d-dimensional array", ErrInvalidArgument, w, nda.Shape().NumDims())
	}

	// Layers are built over a handle that closes nda only once the result
	// is returned, so a failure part way leaves nda open.
	base := &handoff{NDArray: nda}
	cur := NDArray(base)
	var outer NDArray
	for _, f := range []func(NDArray) (NDArray, string, error){
		func(a NDArray) (NDArray, string, error) { return requireType(a, req, opts) },
		func(a NDArray) (NDArray, string, error) { return requireRandom(a, req, mode, opts) },
		func(a NDArray) (NDArray, string, error) { return requireShape(a, req, opts) },
	} {
		next, step, err := f(cur)
		if err != nil {
			err = fmt.Errorf("requiring %s: %w", req, err)
			if outer != nil {
				err = errors.Join(err, outer.Close())
			}
			return nil, err
		}
		if step != "" {
			level.Debug(logger).Log("msg", "added layer", "step", step, "array", next.Locator(), "base", cur.Locator())
			cur, outer = next, next
		}
	}
	if outer == nil {
		return nda, nil
	}
	base.owned = true
	return outer, nil
}

func requireType(nda NDArray, req *Requirements, opts []Option) (NDArray, string, error) {
	t, hasType := req.Type()
	bh, hasBH := req.BadHandler()
	if !hasType {
		t = nda.Type()
	}
	if !hasBH {
		if t == nda.Type() {
			bh = nda.BadHandler()
		} else {
			bh = t.DefaultBadHandler()
		}
	}
	if t == nda.Type() && bh.Equal(nda.BadHandler()) {
		return nda, "", nil
	}
	conv, err := NewTypeConverter(nda.Type(), nda.BadHandler(), t, bh, nil)
	if err != nil {
		return nil, "", err
	}
	impl, err := NewConvertArrayImpl(nda, conv)
	if err != nil {
		return nil, "", err
	}
	return NewBridgeArray(impl, opts...), "convert", nil
}

func requireRandom(nda NDArray, req *Requirements, mode AccessMode, opts []Option) (NDArray, string, error) {
	o, hasOrder := req.Order()
	reorder := hasOrder && o != nda.Shape().Order()
	if nda.IsRandom() || !(req.Random() || reorder) {
		return nda, "", nil
	}
	copied, err := NewCopyArray(nda, mode, opts...)
	if err != nil {
		return nil, "", err
	}
	return copied, "copy", nil
}

func requireShape(nda NDArray, req *Requirements, opts []Option) (NDArray, string, error) {
	cur := nda.Shape()
	window, hasWindow := req.Window()
	if !hasWindow {
		window = cur.Shape()
	}
	if window.NumDims() != cur.NumDims() {
		return nil, "", fmt.Errorf("%w: window %s does not match %d-dimensional array", ErrInvalidArgument, window, cur.NumDims())
	}

	if o, ok := req.Order(); ok && o != cur.Order() {
		shape := newOrderedShape(window, o)
		var mapper OffsetMapper
		if window.SameShape(cur.Shape()) {
			mapper = NewReorderingMapper(window, o, cur.Order())
		} else {
			mapper = NewOrderedShapeMapper(shape, cur)
		}
		impl, err := NewPixelMapArrayImpl(nda, shape, mapper)
		if err != nil {
			return nil, "", err
		}
		return NewBridgeArray(impl, opts...), "reorder", nil
	}

	if window.SameShape(cur.Shape()) {
		return nda, "", nil
	}
	impl, err := NewWindowArrayImpl(nda, window)
	if err != nil {
		return nil, "", err
	}
	return NewBridgeArray(impl, opts...), "window", nil
}
