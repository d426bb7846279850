// Package tile computes the overlap of two N-dimensional boxes and walks it
// as a sequence of contiguous rows.
//
// Both boxes are described by an origin and a dims vector and share one pixel
// ordering: either the first index varies fastest (column-major) or the last
// one does (row-major). Within a box every pixel has a linear offset, and a
// run of pixels along the fastest axis is contiguous in that offset space.
//
// # Row Iteration
//
// [RowIterator] is the engine behind tiled reads and writes. Instead of
// copying pixel by pixel it yields, for each row of the intersection, the
// offset of the row's first pixel in box A and in box B. The row length is
// the extent of the intersection along the fastest axis, so each step copies
// one run:
//
//	it, ok := tile.NewRowIterator(aOrigin, aDims, bOrigin, bDims, true)
//	for ok && it.Next() {
//		copy(b[it.OffsetB():], a[it.OffsetA():it.OffsetA()+it.RowLength()])
//	}
//
// The remaining N-1 axes are advanced odometer style, the axis next to the
// fastest one first and the slowest axis last, so offsets in both boxes
// increase monotonically. Sequential (non-seekable) sources can therefore be
// driven by the iterator as long as they are positioned at or before the
// first row.
package tile
