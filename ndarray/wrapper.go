package ndarray

// WrapperArrayImpl is an ArrayImpl passing every call through to a base
// NDArray. Virtual layers embed it and override what they change. Closing
// the wrapper closes the base.
type WrapperArrayImpl struct {
	base NDArray
}

// NewWrapperArrayImpl returns a pass-through backend over base.
func NewWrapperArrayImpl(base NDArray) *WrapperArrayImpl {
	return &WrapperArrayImpl{base: base}
}

// Base returns the wrapped array.
func (w *WrapperArrayImpl) Base() NDArray { return w.base }

func (w *WrapperArrayImpl) Shape() OrderedShape { return w.base.Shape() }
func (w *WrapperArrayImpl) Type() Type { return w.base.Type() }
func (w *WrapperArrayImpl) BadHandler() BadHandler { return w.base.BadHandler() }
func (w *WrapperArrayImpl) IsRandom() bool { return w.base.IsRandom() }
func (w *WrapperArrayImpl) IsReadable() bool { return w.base.IsReadable() }
func (w *WrapperArrayImpl) IsWritable() bool { return w.base.IsWritable() }
func (w *WrapperArrayImpl) MultipleAccess() bool { return w.base.MultipleAccess() }
func (w *WrapperArrayImpl) Open() error { return nil }
func (w *WrapperArrayImpl) CanMap() bool { return false }
func (w *WrapperArrayImpl) Mapped() any { return nil }
func (w *WrapperArrayImpl) Close() error { return w.base.Close() }

func (w *WrapperArrayImpl) NewAccess() (AccessImpl, error) {
	return w.base.Access()
}

// chunkSizeOf returns the configured bulk transfer size of an array.
func chunkSizeOf(nda NDArray) int {
	if c, ok := nda.(optionsCarrier); ok {
		return c.arrayOptions().chunkSize()
	}
	return DefaultChunkSize
}

// borrowed is an NDArray whose Close leaves the underlying array open. It
// lets a temporary pipeline be closed without closing the caller's array.
type borrowed struct {
	NDArray
}

func borrow(nda NDArray) NDArray {
	return borrowed{nda}
}

func (borrowed) Close() error { return nil }

func (b borrowed) arrayOptions() *options {
	if c, ok := b.NDArray.(optionsCarrier); ok {
		return c.arrayOptions()
	}
	return defaultOptions()
}

// handoff presents an array to layers under construction. Closing it
// closes the array only once owned is set.
type handoff struct {
	NDArray
	owned bool
}

func (h *handoff) Close() error {
	if !h.owned {
		return nil
	}
	return h.NDArray.Close()
}

func (h *handoff) arrayOptions() *options {
	if c, ok := h.NDArray.(optionsCarrier); ok {
		return c.arrayOptions()
	}
	return defaultOptions()
}
