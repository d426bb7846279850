// Package alloc provides backing storage for scratch arrays.
//
// A scratch array needs one linear buffer large enough to hold every pixel
// of its shape. Small buffers live on the Go heap; large ones are placed in
// anonymous memory mappings ("direct" storage) so that they neither count
// against the garbage collector's heap target nor get scanned by it.
//
// # Choosing a Store
//
// [Allocator.Alloc] compares the requested byte size with the allocator's
// heap threshold:
//
//   - below the threshold the block is a heap slice ([Heap]);
//   - at or above it the block is an anonymous mapping ([Direct]), as long
//     as the platform supports it and direct storage is enabled;
//   - a block whose size cannot be addressed by a 32-bit count is rejected
//     with [ErrTooLarge].
//
// The threshold is usually derived from the process memory limit with
// [HeapThreshold].
//
// # Usage
//
//	a := alloc.New(alloc.HeapThreshold(0.25), true)
//	blk, err := a.Alloc(npix, 8)
//	...
//	defer a.Free(blk)
//
// Blocks are always 8-byte aligned so they can be reinterpreted as any
// primitive slice type.
//
// The allocator keeps running [Stats] which callers may surface as metrics.
package alloc
