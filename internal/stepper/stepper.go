// Package stepper splits a long run of pixels into buffer-sized chunks.
//
// Bulk operations such as copying or comparing arrays never allocate a
// buffer for the whole pixel sequence, which may be far larger than memory.
// They walk it in chunks instead:
//
//	for s := stepper.New(npix, 0); s.HasNext(); s.Next() {
//		acc.Read(buf, 0, s.Size())
//	}
package stepper

// DefaultChunkSize is the chunk length used when none is given.
const DefaultChunkSize = 16384

// Chunk steps through [0, length) in chunks of at most size elements.
type Chunk struct {
	length int64
	size   int
	base   int64
}

// New returns a stepper over length elements. A chunkSize <= 0 selects
// DefaultChunkSize.
func New(length int64, chunkSize int) *Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Chunk{length: length, size: chunkSize}
}

// HasNext reports whether the current chunk is valid.
func (c *Chunk) HasNext() bool {
	return c.base < c.length
}

// Next moves on to the following chunk.
func (c *Chunk) Next() {
	c.base += int64(c.size)
}

// Base returns the offset of the first element in the current chunk.
func (c *Chunk) Base() int64 {
	return c.base
}

// Size returns the number of elements in the current chunk. Only the last
// chunk can be shorter than the configured size.
func (c *Chunk) Size() int {
	if rem := c.length - c.base; rem < int64(c.size) {
		return int(rem)
	}
	return c.size
}

// BufferSize returns the size of buffer needed to hold any chunk.
func (c *Chunk) BufferSize() int {
	if c.length < int64(c.size) {
		return int(c.length)
	}
	return c.size
}

// Length returns the total number of elements stepped over.
func (c *Chunk) Length() int64 {
	return c.length
}
