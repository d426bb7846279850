package ndarray

import "errors"

// Common errors. Every error returned by this package wraps one of these and
// can be tested with errors.Is.
var (
	// ErrInvalidArgument reports shape, type or buffer mismatches.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfBounds reports an offset or position outside a shape.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrUnsupported reports a capability the array does not have: backward
	// seeks without random access, reads of unreadable or writes of
	// unwritable arrays, or a second accessor where only one is allowed.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrClosed reports use of an array or accessor after Close.
	ErrClosed = errors.New("closed")
	// ErrIO wraps a failure reported by a backend. An accessor that
	// returns it has been closed.
	ErrIO = errors.New("i/o failure")
	// ErrNotFound is returned by a ResolverChain when no resolver
	// recognises a locator.
	ErrNotFound = errors.New("no resolver recognised locator")
)
