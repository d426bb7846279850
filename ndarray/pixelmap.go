package ndarray

import "fmt"

// PixelMapArrayImpl presents a random base array under a new shape whose
// pixel at offset k is the base pixel at offset mapper.Mapping(k). Pixels
// mapped outside the base read as bad and are dropped on write.
type PixelMapArrayImpl struct {
	*WrapperArrayImpl
	shape   OrderedShape
	mapper  OffsetMapper
	checked bool
}

// NewPixelMapArrayImpl returns base remapped by mapper. base must be
// random.
func NewPixelMapArrayImpl(base NDArray, shape OrderedShape, mapper OffsetMapper) (*PixelMapArrayImpl, error) {
	if !base.IsRandom() {
		return nil, fmt.Errorf("%w: pixel map over sequential array %s", ErrUnsupported, base.Locator())
	}
	lo, hi, ok := mapper.MappingRange()
	return &PixelMapArrayImpl{
		WrapperArrayImpl: NewWrapperArrayImpl(base),
		shape:            shape,
		mapper:           mapper,
		checked:          !ok || lo < 0 || hi >= base.Shape().NumPixels(),
	}, nil
}

func (p *PixelMapArrayImpl) Shape() OrderedShape {
	return p.shape
}

func (p *PixelMapArrayImpl) NewAccess() (AccessImpl, error) {
	acc, err := p.base.Access()
	if err != nil {
		return nil, err
	}
	return &pixelMapAccess{
		base:    acc,
		mapper:  p.mapper,
		checked: p.checked,
		npix:    p.base.Shape().NumPixels(),
		bh:      p.base.BadHandler(),
	}, nil
}

type pixelMapAccess struct {
	base    ArrayAccess
	mapper  OffsetMapper
	checked bool
	npix    int64
	bh      BadHandler
	offset  int64
}

func (p *pixelMapAccess) SetOffset(off int64) error {
	p.offset = off
	return nil
}

func (p *pixelMapAccess) valid(m int64) bool {
	return !p.checked || (m >= 0 && m < p.npix)
}

// runs calls fn for each maximal run of consecutive valid targets, and
// outside for each pixel without a target.
func (p *pixelMapAccess) runs(size int, fn func(bufOff int, target int64, n int) error, outside func(bufOff int)) error {
	i := 0
	next := p.mapper.Mapping(p.offset)
	for i < size {
		m := next
		if !p.valid(m) {
			outside(i)
			i++
			if i < size {
				next = p.mapper.Mapping(p.offset + int64(i))
			}
			continue
		}
		j := i + 1
		for j < size {
			next = p.mapper.Mapping(p.offset + int64(j))
			if next != m+int64(j-i) || !p.valid(next) {
				break
			}
			j++
		}
		if err := fn(i, m, j-i); err != nil {
			return err
		}
		i = j
	}
	return nil
}

func (p *pixelMapAccess) Read(buf any, start, size int) error {
	err := p.runs(size, func(bufOff int, target int64, n int) error {
		if err := p.base.SetOffset(target); err != nil {
			return err
		}
		return p.base.Read(buf, start+bufOff, n)
	}, func(bufOff int) {
		p.bh.PutBad(buf, start+bufOff)
	})
	if err != nil {
		return err
	}
	p.offset += int64(size)
	return nil
}

func (p *pixelMapAccess) Write(buf any, start, size int) error {
	err := p.runs(size, func(bufOff int, target int64, n int) error {
		if err := p.base.SetOffset(target); err != nil {
			return err
		}
		return p.base.Write(buf, start+bufOff, n)
	}, func(int) {})
	if err != nil {
		return err
	}
	p.offset += int64(size)
	return nil
}

func (p *pixelMapAccess) Close() error {
	return p.base.Close()
}
