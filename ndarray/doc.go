// Package ndarray provides access to large N-dimensional arrays of
// primitive pixels, independent of where the pixels are stored.
//
// An array presents its pixels as a single sequence whose order is given by
// an OrderedShape. Pixels are moved through accessors obtained from the
// array, either as runs of the sequence or as rectangular tiles:
//
//	acc, err := arr.Access()
//	if err != nil {
//		return err
//	}
//	defer acc.Close()
//	buf := arr.Type().NewBuffer(int(tile.NumPixels()))
//	err = acc.ReadTile(buf, tile)
//
// Pixel buffers are ordinary Go slices of int8, int16, int32, float32 or
// float64. Missing pixels are represented in-band by a BadHandler.
//
// Storage backends implement ArrayImpl and AccessImpl and are wrapped in a
// BridgeArray, which validates every request. Virtual layers, such as
// windows, reorderings, type conversions and combinations of two arrays,
// are ArrayImpls built over other arrays. ToRequired composes them to
// present an array with a requested type, window, order and access.
package ndarray
