package ndarray

import (
	"fmt"
	"math"
)

// Function is a monotonic real function applied by a TypeConverter to
// every good pixel. Inverse undoes Forward.
type Function interface {
	Forward(x float64) float64
	Inverse(y float64) float64
}

// LinearFunction maps x to x*Scale + Zero, as FITS BSCALE and BZERO do.
type LinearFunction struct {
	Scale float64
	Zero  float64
}

func (f LinearFunction) Forward(x float64) float64 { return x*f.Scale + f.Zero }
func (f LinearFunction) Inverse(y float64) float64 { return (y - f.Zero) / f.Scale }

// Converter converts pixels between two element types, each with its own
// bad value handling.
type Converter interface {
	Type1() Type
	Type2() Type
	BadHandler1() BadHandler
	BadHandler2() BadHandler
	// Convert12 converts n pixels from src (of Type1) into dst (of Type2).
	Convert12(src any, srcPos int, dst any, dstPos int, n int) error
	// Convert21 converts n pixels from src (of Type2) into dst (of Type1).
	Convert21(src any, srcPos int, dst any, dstPos int, n int) error
	// IsUnit12 reports whether Convert12 copies every pixel unchanged.
	IsUnit12() bool
	IsUnit21() bool
}

// TypeConverter is the standard Converter. Bad pixels become bad. Good
// pixels pass through the optional Function, are rounded half away from
// zero for integer destinations, and become bad if NaN or out of the
// destination's range.
type TypeConverter struct {
	t1, t2   Type
	bh1, bh2 BadHandler
	fn       Function
	unit     bool
}

// NewTypeConverter returns a converter between (t1, bh1) and (t2, bh2). A
// zero BadHandler selects the type's default. fn may be nil.
func NewTypeConverter(t1 Type, bh1 BadHandler, t2 Type, bh2 BadHandler, fn Function) (*TypeConverter, error) {
	if !t1.Valid() || !t2.Valid() {
		return nil, fmt.Errorf("%w: converter between %s and %s", ErrInvalidArgument, t1, t2)
	}
	if bh1.IsZero() {
		bh1 = t1.DefaultBadHandler()
	}
	if bh2.IsZero() {
		bh2 = t2.DefaultBadHandler()
	}
	if bh1.Type() != t1 || bh2.Type() != t2 {
		return nil, fmt.Errorf("%w: bad handlers %s, %s do not match types %s, %s", ErrInvalidArgument, bh1, bh2, t1, t2)
	}
	return &TypeConverter{
		t1:   t1,
		t2:   t2,
		bh1:  bh1,
		bh2:  bh2,
		fn:   fn,
		unit: t1 == t2 && bh1.Equal(bh2) && fn == nil,
	}, nil
}

func (c *TypeConverter) Type1() Type { return c.t1 }
func (c *TypeConverter) Type2() Type { return c.t2 }
func (c *TypeConverter) BadHandler1() BadHandler { return c.bh1 }
func (c *TypeConverter) BadHandler2() BadHandler { return c.bh2 }
func (c *TypeConverter) IsUnit12() bool { return c.unit }
func (c *TypeConverter) IsUnit21() bool { return c.unit }

func (c *TypeConverter) Convert12(src any, srcPos int, dst any, dstPos int, n int) error {
	var fwd func(float64) float64
	if c.fn != nil {
		fwd = c.fn.Forward
	}
	return convert(src, srcPos, c.t1, c.bh1, dst, dstPos, c.t2, c.bh2, n, c.unit, fwd)
}

func (c *TypeConverter) Convert21(src any, srcPos int, dst any, dstPos int, n int) error {
	var inv func(float64) float64
	if c.fn != nil {
		inv = c.fn.Inverse
	}
	return convert(src, srcPos, c.t2, c.bh2, dst, dstPos, c.t1, c.bh1, n, c.unit, inv)
}

func (c *TypeConverter) String() string {
	return fmt.Sprintf("TypeConverter(%s -> %s)", c.bh1, c.bh2)
}

func checkRange(buf any, t Type, pos, n int) error {
	size, err := t.BufferLen(buf)
	if err != nil {
		return err
	}
	if pos < 0 || n < 0 || pos > size-n {
		return fmt.Errorf("%w: run %d+%d outside buffer of length %d", ErrInvalidArgument, pos, n, size)
	}
	return nil
}

func convert(src any, sp int, st Type, sbh BadHandler, dst any, dp int, dt Type, dbh BadHandler, n int, unit bool, fn func(float64) float64) error {
	if err := checkRange(src, st, sp, n); err != nil {
		return err
	}
	if err := checkRange(dst, dt, dp, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if unit {
		copyBuffer(src, sp, dst, dp, n)
		return nil
	}
	sh := sbh.ArrayHandler(src)
	dh := dbh.ArrayHandler(dst)
	switch s := src.(type) {
	case []int8:
		convertFrom(s, sp, sh, dst, dp, dh, dt, n, fn)
	case []int16:
		convertFrom(s, sp, sh, dst, dp, dh, dt, n, fn)
	case []int32:
		convertFrom(s, sp, sh, dst, dp, dh, dt, n, fn)
	case []float32:
		convertFrom(s, sp, sh, dst, dp, dh, dt, n, fn)
	case []float64:
		convertFrom(s, sp, sh, dst, dp, dh, dt, n, fn)
	}
	return nil
}

func convertFrom[S pixel](src []S, sp int, sh ArrayHandler, dst any, dp int, dh ArrayHandler, dt Type, n int, fn func(float64) float64) {
	lo, hi := dt.Min(), dt.Max()
	switch d := dst.(type) {
	case []int8:
		convertRun(src, sp, sh, d, dp, dh, n, fn, lo, hi, true)
	case []int16:
		convertRun(src, sp, sh, d, dp, dh, n, fn, lo, hi, true)
	case []int32:
		convertRun(src, sp, sh, d, dp, dh, n, fn, lo, hi, true)
	case []float32:
		convertRun(src, sp, sh, d, dp, dh, n, fn, lo, hi, false)
	case []float64:
		convertRun(src, sp, sh, d, dp, dh, n, fn, lo, hi, false)
	}
}

func convertRun[S, D pixel](src []S, sp int, sh ArrayHandler, dst []D, dp int, dh ArrayHandler, n int, fn func(float64) float64, lo, hi float64, integral bool) {
	for i := 0; i < n; i++ {
		if sh.IsBad(sp + i) {
			dh.PutBad(dp + i)
			continue
		}
		v := float64(src[sp+i])
		if fn != nil {
			v = fn(v)
		}
		switch {
		case math.IsNaN(v):
			dh.PutBad(dp + i)
			continue
		case integral:
			v = math.Round(v)
			if v < lo || v > hi {
				dh.PutBad(dp + i)
				continue
			}
		case !math.IsInf(v, 0) && (v < lo || v > hi):
			dh.PutBad(dp + i)
			continue
		}
		dst[dp+i] = D(v)
	}
}
