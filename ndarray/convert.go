package ndarray

import "fmt"

// ConvertArrayImpl presents a base array converted to another element type
// or bad value handling.
type ConvertArrayImpl struct {
	*WrapperArrayImpl
	conv  Converter
	chunk int
}

// NewConvertArrayImpl returns base converted by conv, whose first side
// must match base.
func NewConvertArrayImpl(base NDArray, conv Converter) (*ConvertArrayImpl, error) {
	if conv.Type1() != base.Type() || !conv.BadHandler1().Equal(base.BadHandler()) {
		return nil, fmt.Errorf("%w: converter from %s does not match array %s", ErrInvalidArgument, conv.BadHandler1(), base.BadHandler())
	}
	return &ConvertArrayImpl{
		WrapperArrayImpl: NewWrapperArrayImpl(base),
		conv:             conv,
		chunk:            chunkSizeOf(base),
	}, nil
}

func (c *ConvertArrayImpl) Type() Type { return c.conv.Type2() }
func (c *ConvertArrayImpl) BadHandler() BadHandler { return c.conv.BadHandler2() }

func (c *ConvertArrayImpl) NewAccess() (AccessImpl, error) {
	acc, err := c.base.Access()
	if err != nil {
		return nil, err
	}
	return &convertAccess{base: acc, conv: c.conv, chunk: c.chunk}, nil
}

type convertAccess struct {
	base  ArrayAccess
	conv  Converter
	chunk int
	buf   any
}

func (c *convertAccess) SetOffset(off int64) error {
	return c.base.SetOffset(off)
}

func (c *convertAccess) buffer(size int) (any, int) {
	n := min(size, c.chunk)
	if c.buf == nil || bufferLen(c.buf) < n {
		c.buf = c.conv.Type1().NewBuffer(n)
	}
	return c.buf, bufferLen(c.buf)
}

func (c *convertAccess) Read(buf any, start, size int) error {
	if c.conv.IsUnit12() {
		return c.base.Read(buf, start, size)
	}
	tmp, bufLen := c.buffer(size)
	for done := 0; done < size; {
		n := min(bufLen, size-done)
		if err := c.base.Read(tmp, 0, n); err != nil {
			return err
		}
		if err := c.conv.Convert12(tmp, 0, buf, start+done, n); err != nil {
			return err
		}
		done += n
	}
	return nil
}

func (c *convertAccess) Write(buf any, start, size int) error {
	if c.conv.IsUnit21() {
		return c.base.Write(buf, start, size)
	}
	tmp, bufLen := c.buffer(size)
	for done := 0; done < size; {
		n := min(bufLen, size-done)
		if err := c.conv.Convert21(buf, start+done, tmp, 0, n); err != nil {
			return err
		}
		if err := c.base.Write(tmp, 0, n); err != nil {
			return err
		}
		done += n
	}
	return nil
}

func (c *convertAccess) Close() error {
	return c.base.Close()
}
