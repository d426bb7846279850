package ndarray

// OffsetMapper maps offsets in one pixel sequence to offsets in another.
type OffsetMapper interface {
	// Mapping returns the target offset of off. Targets outside the base
	// array mean the pixel has no counterpart.
	Mapping(off int64) int64
	// MappingRange returns inclusive bounds on every target offset. ok is
	// false if no bounds are known.
	MappingRange() (lo, hi int64, ok bool)
}

const stackDims = 8

// ReorderingMapper maps offsets between two orderings of one shape.
type ReorderingMapper struct {
	from, to OrderedShape
}

// NewReorderingMapper maps offsets of shape in order from to offsets of
// shape in order to.
func NewReorderingMapper(shape Shape, from, to Order) *ReorderingMapper {
	return &ReorderingMapper{
		from: newOrderedShape(shape, from),
		to:   newOrderedShape(shape, to),
	}
}

func (m *ReorderingMapper) Mapping(off int64) int64 {
	var buf [stackDims]int64
	pos := posBuffer(buf[:], m.from.NumDims())
	m.from.positionInto(off, pos)
	return m.to.offsetOf(pos)
}

func (m *ReorderingMapper) MappingRange() (lo, hi int64, ok bool) {
	return 0, m.to.NumPixels() - 1, true
}

// OrderedShapeMapper maps offsets of one ordered shape to offsets of the
// same positions in another. Positions outside the target map to -1.
type OrderedShapeMapper struct {
	from, to OrderedShape
	inside   bool
}

// NewOrderedShapeMapper maps offsets of from to offsets of to.
func NewOrderedShapeMapper(from, to OrderedShape) *OrderedShapeMapper {
	return &OrderedShapeMapper{
		from:   from,
		to:     to,
		inside: to.shape.ContainsShape(from.shape),
	}
}

func (m *OrderedShapeMapper) Mapping(off int64) int64 {
	var buf [stackDims]int64
	pos := posBuffer(buf[:], m.from.NumDims())
	m.from.positionInto(off, pos)
	if !m.inside && !m.to.shape.Contains(pos) {
		return -1
	}
	return m.to.offsetOf(pos)
}

func (m *OrderedShapeMapper) MappingRange() (lo, hi int64, ok bool) {
	if !m.inside {
		return 0, 0, false
	}
	return 0, m.to.NumPixels() - 1, true
}

func posBuffer(buf []int64, n int) []int64 {
	if n <= len(buf) {
		return buf[:n]
	}
	return make([]int64, n)
}
