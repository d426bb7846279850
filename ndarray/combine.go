package ndarray

import (
	"errors"
	"fmt"
	"math"
)

// Combiner computes an output pixel from two input pixels.
type Combiner interface {
	Combine(x1, x2 float64) float64
}

// CombinerFunc adapts an ordinary function to a Combiner.
type CombinerFunc func(x1, x2 float64) float64

func (f CombinerFunc) Combine(x1, x2 float64) float64 { return f(x1, x2) }

var (
	Add      = CombinerFunc(func(x1, x2 float64) float64 { return x1 + x2 })
	Subtract = CombinerFunc(func(x1, x2 float64) float64 { return x1 - x2 })
	Multiply = CombinerFunc(func(x1, x2 float64) float64 { return x1 * x2 })
	Divide   = CombinerFunc(func(x1, x2 float64) float64 { return x1 / x2 })
)

// CombineArrayImpl is a read-only array whose pixels are the combination
// of the corresponding pixels of two operands. A pixel is bad if either
// input is bad or the result is NaN or out of range for the output type.
// Closing it closes both operands.
type CombineArrayImpl struct {
	nda1, nda2 NDArray
	combiner   Combiner
	shape      OrderedShape
	typ        Type
	bh         BadHandler
	conv       *TypeConverter
	chunk      int
}

// NewCombineArrayImpl combines nda1 and nda2 over shape. The operands are
// windowed and reordered to shape as needed; their pixels outside their own
// bounds count as bad. A zero bh selects the default for t.
func NewCombineArrayImpl(nda1, nda2 NDArray, c Combiner, shape OrderedShape, t Type, bh BadHandler) (*CombineArrayImpl, error) {
	if !nda1.IsReadable() || !nda2.IsReadable() {
		return nil, fmt.Errorf("%w: combining unreadable arrays", ErrUnsupported)
	}
	if bh.IsZero() {
		bh = t.DefaultBadHandler()
	}
	conv, err := NewTypeConverter(Float64, Float64.DefaultBadHandler(), t, bh, nil)
	if err != nil {
		return nil, err
	}
	req := NewRequirements().
		SetBadHandler(Float64.DefaultBadHandler()).
		SetWindow(shape.Shape()).
		SetOrder(shape.Order()).
		SetMode(Read)
	r1, err := ToRequired(nda1, req)
	if err != nil {
		return nil, fmt.Errorf("first operand: %w", err)
	}
	r2, err := ToRequired(nda2, req)
	if err != nil {
		return nil, fmt.Errorf("second operand: %w", err)
	}
	return &CombineArrayImpl{
		nda1:     r1,
		nda2:     r2,
		combiner: c,
		shape:    shape,
		typ:      t,
		bh:       bh,
		conv:     conv,
		chunk:    chunkSizeOf(nda1),
	}, nil
}

func (c *CombineArrayImpl) Shape() OrderedShape { return c.shape }
func (c *CombineArrayImpl) Type() Type { return c.typ }
func (c *CombineArrayImpl) BadHandler() BadHandler { return c.bh }
func (c *CombineArrayImpl) IsRandom() bool { return c.nda1.IsRandom() && c.nda2.IsRandom() }
func (c *CombineArrayImpl) IsReadable() bool { return true }
func (c *CombineArrayImpl) IsWritable() bool { return false }
func (c *CombineArrayImpl) Open() error { return nil }
func (c *CombineArrayImpl) CanMap() bool { return false }
func (c *CombineArrayImpl) Mapped() any { return nil }

func (c *CombineArrayImpl) MultipleAccess() bool {
	return c.nda1.MultipleAccess() && c.nda2.MultipleAccess()
}

func (c *CombineArrayImpl) NewAccess() (AccessImpl, error) {
	acc1, err := c.nda1.Access()
	if err != nil {
		return nil, err
	}
	acc2, err := c.nda2.Access()
	if err != nil {
		acc1.Close()
		return nil, err
	}
	n := int(min(int64(c.chunk), c.shape.NumPixels()))
	return &combineAccess{
		acc1:     acc1,
		acc2:     acc2,
		combiner: c.combiner,
		conv:     c.conv,
		buf1:     make([]float64, n),
		buf2:     make([]float64, n),
	}, nil
}

func (c *CombineArrayImpl) Close() error {
	return errors.Join(c.nda1.Close(), c.nda2.Close())
}

type combineAccess struct {
	acc1, acc2 ArrayAccess
	combiner   Combiner
	conv       *TypeConverter
	buf1, buf2 []float64
}

func (c *combineAccess) SetOffset(off int64) error {
	if err := c.acc1.SetOffset(off); err != nil {
		return err
	}
	return c.acc2.SetOffset(off)
}

func (c *combineAccess) Read(buf any, start, size int) error {
	for done := 0; done < size; {
		n := min(len(c.buf1), size-done)
		b1, b2 := c.buf1[:n], c.buf2[:n]
		if err := c.acc1.Read(b1, 0, n); err != nil {
			return err
		}
		if err := c.acc2.Read(b2, 0, n); err != nil {
			return err
		}
		for i := range b1 {
			if math.IsNaN(b1[i]) || math.IsNaN(b2[i]) {
				b1[i] = math.NaN()
				continue
			}
			b1[i] = c.combiner.Combine(b1[i], b2[i])
		}
		if err := c.conv.Convert12(b1, 0, buf, start+done, n); err != nil {
			return err
		}
		done += n
	}
	return nil
}

func (c *combineAccess) Write(any, int, int) error {
	return fmt.Errorf("%w: combined arrays are read-only", ErrUnsupported)
}

func (c *combineAccess) Close() error {
	return errors.Join(c.acc1.Close(), c.acc2.Close())
}
