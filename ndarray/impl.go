package ndarray

// ArrayDescription is implemented by every array, accessor and backend.
// The values it reports never change over the object's lifetime.
type ArrayDescription interface {
	Shape() OrderedShape
	Type() Type
	BadHandler() BadHandler
	IsRandom() bool
	IsReadable() bool
	IsWritable() bool
}

// ArrayImpl is the contract a storage backend or virtual layer implements.
// It is never used by clients directly: BridgeArray wraps it and performs
// all validation, so an ArrayImpl may assume its arguments are in range.
//
// Open is called at most once, before any call to Mapped or NewAccess.
// Close is called at most once, whether or not Open was called.
type ArrayImpl interface {
	ArrayDescription

	// MultipleAccess reports whether NewAccess may be called more than once,
	// yielding independent cursors.
	MultipleAccess() bool
	Open() error
	// CanMap reports whether the whole pixel sequence is available as one
	// in-memory buffer. Only valid after Open.
	CanMap() bool
	// Mapped returns the buffer when CanMap is true.
	Mapped() any
	NewAccess() (AccessImpl, error)
	Close() error
}

// AccessImpl is a cursor into the pixel sequence of an ArrayImpl. Errors
// returned by its methods are treated as I/O failures.
type AccessImpl interface {
	SetOffset(off int64) error
	Read(buf any, start, size int) error
	Write(buf any, start, size int) error
	Close() error
}

// NDArray is an N-dimensional array of primitive pixels presented as a
// single pixel sequence.
type NDArray interface {
	ArrayDescription

	// MultipleAccess reports whether Access may be called more than once.
	MultipleAccess() bool
	// Access returns a new accessor positioned at offset zero.
	Access() (ArrayAccess, error)
	// Locator names the array's underlying resource, if any.
	Locator() string
	// Close releases the array's resources. Accessors obtained from it
	// become unusable.
	Close() error
}

// ArrayAccess reads and writes pixels of an NDArray through a cursor. An
// accessor is not safe for concurrent use; separate goroutines should each
// obtain their own.
type ArrayAccess interface {
	ArrayDescription

	Offset() int64
	// Position returns the position of the pixel at the current offset, or
	// nil if the offset is at the end of the array.
	Position() []int64
	SetOffset(off int64) error
	SetPosition(pos []int64) error
	// Read fills buf[start:start+size] from the current offset onwards and
	// advances the offset by size.
	Read(buf any, start, size int) error
	Write(buf any, start, size int) error
	// ReadTile fills buf with the pixels of tile, in the array's order.
	// Pixels outside the array are bad.
	ReadTile(buf any, tile Shape) error
	// WriteTile writes the pixels of tile held in buf. Pixels outside the
	// array are ignored.
	WriteTile(buf any, tile Shape) error
	IsMapped() bool
	// Mapped returns the array's whole pixel buffer when IsMapped is true.
	// The buffer is only valid until the array is closed, and Mapped
	// returns nil after that.
	Mapped() any
	Close() error
}

// description is a fixed ArrayDescription.
type description struct {
	shape    OrderedShape
	typ      Type
	bh       BadHandler
	random   bool
	readable bool
	writable bool
}

func describe(d ArrayDescription) description {
	return description{
		shape:    d.Shape(),
		typ:      d.Type(),
		bh:       d.BadHandler(),
		random:   d.IsRandom(),
		readable: d.IsReadable(),
		writable: d.IsWritable(),
	}
}

func (d description) Shape() OrderedShape { return d.shape }
func (d description) Type() Type { return d.typ }
func (d description) BadHandler() BadHandler { return d.bh }
func (d description) IsRandom() bool { return d.random }
func (d description) IsReadable() bool { return d.readable }
func (d description) IsWritable() bool { return d.writable }
