package ndarray

import (
	"fmt"
	"sync"
)

// Resolver opens or creates arrays named by a locator. A resolver that does
// not recognise a locator returns a nil array and a nil error.
type Resolver interface {
	Resolve(locator string, mode AccessMode) (NDArray, error)
	// Create makes a new array. The returned array's bad value handling may
	// fall back to the type's default if the storage cannot hold bh.
	Create(locator string, shape OrderedShape, t Type, bh BadHandler) (NDArray, error)
}

// ResolverChain tries a list of resolvers in order and uses the first that
// recognises a locator.
type ResolverChain struct {
	mu        sync.RWMutex
	resolvers []Resolver
}

// NewResolverChain returns a chain trying rs in the given order.
func NewResolverChain(rs ...Resolver) *ResolverChain {
	return &ResolverChain{resolvers: append([]Resolver(nil), rs...)}
}

// Register appends r to the end of the chain.
func (c *ResolverChain) Register(r Resolver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolvers = append(c.resolvers, r)
}

func (c *ResolverChain) list() []Resolver {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolvers
}

func (c *ResolverChain) Resolve(locator string, mode AccessMode) (NDArray, error) {
	for _, r := range c.list() {
		nda, err := r.Resolve(locator, mode)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", locator, err)
		}
		if nda != nil {
			return nda, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, locator)
}

func (c *ResolverChain) Create(locator string, shape OrderedShape, t Type, bh BadHandler) (NDArray, error) {
	for _, r := range c.list() {
		nda, err := r.Create(locator, shape, t, bh)
		if err != nil {
			return nil, fmt.Errorf("creating %q: %w", locator, err)
		}
		if nda != nil {
			return nda, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, locator)
}
