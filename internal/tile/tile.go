package tile

// Intersect returns the overlap of box A and box B. ok is false when the
// boxes do not overlap on at least one axis or have different rank.
func Intersect(aOrigin, aDims, bOrigin, bDims []int64) (origin, dims []int64, ok bool) {
	ndim := len(aOrigin)
	if ndim == 0 || len(aDims) != ndim || len(bOrigin) != ndim || len(bDims) != ndim {
		return nil, nil, false
	}
	origin = make([]int64, ndim)
	dims = make([]int64, ndim)
	for i := 0; i < ndim; i++ {
		lo := max(aOrigin[i], bOrigin[i])
		hi := min(aOrigin[i]+aDims[i], bOrigin[i]+bDims[i])
		if hi <= lo {
			return nil, nil, false
		}
		origin[i] = lo
		dims[i] = hi - lo
	}
	return origin, dims, true
}

// Strides returns the offset step of each axis for a box with the given dims.
// The fastest axis has stride 1.
func Strides(dims []int64, firstFastest bool) []int64 {
	ndim := len(dims)
	strides := make([]int64, ndim)
	if ndim == 0 {
		return strides
	}
	step := int64(1)
	if firstFastest {
		for i := 0; i < ndim; i++ {
			strides[i] = step
			step *= dims[i]
		}
	} else {
		for i := ndim - 1; i >= 0; i-- {
			strides[i] = step
			step *= dims[i]
		}
	}
	return strides
}

// Contains reports whether box outer wholly contains box inner.
func Contains(outerOrigin, outerDims, innerOrigin, innerDims []int64) bool {
	if len(outerOrigin) != len(innerOrigin) {
		return false
	}
	for i := range outerOrigin {
		if innerOrigin[i] < outerOrigin[i] ||
			innerOrigin[i]+innerDims[i] > outerOrigin[i]+outerDims[i] {
			return false
		}
	}
	return true
}

// RowIterator walks the intersection of two boxes row by row.
type RowIterator struct {
	origin []int64 // intersection origin
	dims   []int64 // intersection dims

	aOrigin []int64
	bOrigin []int64
	aStride []int64
	bStride []int64

	// outer holds the non-fastest axes, fastest varying first.
	outer   []int
	counter []int64

	rowLength int64
	rows      int64
	offA      int64
	offB      int64
	started   bool
	done      bool
}

// NewRowIterator prepares an iterator over the overlap of boxes A and B. ok is
// false if the boxes do not intersect, in which case the iterator is nil.
func NewRowIterator(aOrigin, aDims, bOrigin, bDims []int64, firstFastest bool) (*RowIterator, bool) {
	origin, dims, ok := Intersect(aOrigin, aDims, bOrigin, bDims)
	if !ok {
		return nil, false
	}
	ndim := len(origin)

	fast := 0
	outer := make([]int, 0, ndim-1)
	if firstFastest {
		for i := 1; i < ndim; i++ {
			outer = append(outer, i)
		}
	} else {
		fast = ndim - 1
		for i := ndim - 2; i >= 0; i-- {
			outer = append(outer, i)
		}
	}

	rows := int64(1)
	for _, ax := range outer {
		rows *= dims[ax]
	}

	return &RowIterator{
		origin:    origin,
		dims:      dims,
		aOrigin:   append([]int64(nil), aOrigin...),
		bOrigin:   append([]int64(nil), bOrigin...),
		aStride:   Strides(aDims, firstFastest),
		bStride:   Strides(bDims, firstFastest),
		outer:     outer,
		counter:   make([]int64, ndim),
		rowLength: dims[fast],
		rows:      rows,
	}, true
}

// RowLength returns the number of contiguous pixels in every row.
func (it *RowIterator) RowLength() int64 {
	return it.rowLength
}

// Rows returns the total number of rows the iterator will yield.
func (it *RowIterator) Rows() int64 {
	return it.rows
}

// Origin returns the origin of the intersection box.
func (it *RowIterator) Origin() []int64 {
	return append([]int64(nil), it.origin...)
}

// Dims returns the dims of the intersection box.
func (it *RowIterator) Dims() []int64 {
	return append([]int64(nil), it.dims...)
}

// Next advances to the next row. It returns false when all rows are done.
func (it *RowIterator) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
	} else if !it.advance() {
		it.done = true
		return false
	}
	it.offA, it.offB = 0, 0
	for i := range it.origin {
		p := it.origin[i] + it.counter[i]
		it.offA += (p - it.aOrigin[i]) * it.aStride[i]
		it.offB += (p - it.bOrigin[i]) * it.bStride[i]
	}
	return true
}

// advance bumps the outer odometer, returning false on overflow of the
// slowest axis.
func (it *RowIterator) advance() bool {
	for _, ax := range it.outer {
		it.counter[ax]++
		if it.counter[ax] < it.dims[ax] {
			return true
		}
		it.counter[ax] = 0
	}
	return false
}

// OffsetA returns the offset in box A of the current row's first pixel.
func (it *RowIterator) OffsetA() int64 {
	return it.offA
}

// OffsetB returns the offset in box B of the current row's first pixel.
func (it *RowIterator) OffsetB() int64 {
	return it.offB
}
