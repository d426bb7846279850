package rawfile

import (
	"strings"

	"github.com/robert-malhotra/go-ndarray/ndarray"
)

// Resolver opens and creates raw files named by paths ending in Extension.
type Resolver struct {
	opts []Option
}

var _ ndarray.Resolver = (*Resolver)(nil)

// NewResolver returns a resolver applying opts to every file it opens or
// creates.
func NewResolver(opts ...Option) *Resolver {
	return &Resolver{opts: opts}
}

func (r *Resolver) Resolve(locator string, mode ndarray.AccessMode) (ndarray.NDArray, error) {
	if !strings.HasSuffix(locator, Extension) {
		return nil, nil
	}
	arr, err := Open(locator, mode, r.opts...)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

func (r *Resolver) Create(locator string, shape ndarray.OrderedShape, t ndarray.Type, bh ndarray.BadHandler) (ndarray.NDArray, error) {
	if !strings.HasSuffix(locator, Extension) {
		return nil, nil
	}
	arr, err := Create(locator, shape, t, bh, r.opts...)
	if err != nil {
		return nil, err
	}
	return arr, nil
}
