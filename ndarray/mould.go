package ndarray

import "fmt"

// MouldArrayImpl presents the pixel sequence of a base array under another
// shape with the same number of pixels. No pixels move.
type MouldArrayImpl struct {
	*WrapperArrayImpl
	shape OrderedShape
}

// NewMouldArrayImpl returns base reinterpreted as shape.
func NewMouldArrayImpl(base NDArray, shape OrderedShape) (*MouldArrayImpl, error) {
	if shape.NumPixels() != base.Shape().NumPixels() {
		return nil, fmt.Errorf("%w: mould %s has %d pixels, array has %d", ErrInvalidArgument, shape, shape.NumPixels(), base.Shape().NumPixels())
	}
	return &MouldArrayImpl{WrapperArrayImpl: NewWrapperArrayImpl(base), shape: shape}, nil
}

func (m *MouldArrayImpl) Shape() OrderedShape {
	return m.shape
}
