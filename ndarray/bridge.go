package ndarray

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
)

// BridgeArray is the NDArray built over an ArrayImpl. It validates every
// call before it reaches the backend, so backends and virtual layers never
// need to.
//
// The backend is opened on the first call to Access. Whether Access may be
// called repeatedly depends on the backend: backends supporting multiple
// access get an independent cursor per accessor; random backends without
// it share one cursor between all accessors, serialised by a mutex; other
// backends allow exactly one accessor.
type BridgeArray struct {
	impl    ArrayImpl
	desc    description
	opts    *options
	logger  log.Logger
	locator string

	mu       sync.Mutex
	opened   bool
	accessed bool
	mapped   any
	shared   *sharedCursor

	closed atomic.Bool
}

// NewBridgeArray returns an NDArray over impl.
func NewBridgeArray(impl ArrayImpl, opts ...Option) *BridgeArray {
	o := buildOptions(opts)
	locator := o.locator
	if locator == "" {
		locator = "virtual:" + uuid.NewString()
	}
	return &BridgeArray{
		impl:    impl,
		desc:    describe(impl),
		opts:    o,
		logger:  log.With(o.logger, "array", locator),
		locator: locator,
	}
}

func (a *BridgeArray) Shape() OrderedShape { return a.desc.shape }
func (a *BridgeArray) Type() Type { return a.desc.typ }
func (a *BridgeArray) BadHandler() BadHandler { return a.desc.bh }
func (a *BridgeArray) IsRandom() bool { return a.desc.random }
func (a *BridgeArray) IsReadable() bool { return a.desc.readable }
func (a *BridgeArray) IsWritable() bool { return a.desc.writable }
func (a *BridgeArray) Locator() string { return a.locator }

// MultipleAccess reports whether Access may be called more than once. This
// holds for random backends even when they offer a single cursor.
func (a *BridgeArray) MultipleAccess() bool {
	return a.desc.random || a.impl.MultipleAccess()
}

func (a *BridgeArray) arrayOptions() *options {
	return a.opts
}

// Impl returns the backend of the array.
func (a *BridgeArray) Impl() ArrayImpl {
	return a.impl
}

func (a *BridgeArray) open() error {
	if a.opened {
		return nil
	}
	if err := a.impl.Open(); err != nil {
		return fmt.Errorf("%w: opening %s: %w", ErrIO, a.locator, err)
	}
	a.opened = true
	if a.impl.CanMap() {
		a.mapped = a.impl.Mapped()
	}
	a.opts.metrics.opened()
	level.Debug(a.logger).Log("msg", "opened array", "mapped", a.mapped != nil)
	return nil
}

// Access returns a new accessor positioned at offset zero.
func (a *BridgeArray) Access() (ArrayAccess, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed.Load() {
		return nil, fmt.Errorf("%w: array %s", ErrClosed, a.locator)
	}
	if err := a.open(); err != nil {
		return nil, err
	}

	switch {
	case a.impl.MultipleAccess():
		acc, err := a.impl.NewAccess()
		if err != nil {
			return nil, fmt.Errorf("%w: new accessor on %s: %w", ErrIO, a.locator, err)
		}
		return newAccess(a, acc), nil

	case a.desc.random:
		if a.shared == nil {
			acc, err := a.impl.NewAccess()
			if err != nil {
				return nil, fmt.Errorf("%w: new accessor on %s: %w", ErrIO, a.locator, err)
			}
			a.shared = &sharedCursor{impl: acc}
		}
		return newAccess(a, &multiplexAccessImpl{cursor: a.shared}), nil

	case !a.accessed:
		acc, err := a.impl.NewAccess()
		if err != nil {
			return nil, fmt.Errorf("%w: new accessor on %s: %w", ErrIO, a.locator, err)
		}
		a.accessed = true
		return newAccess(a, acc), nil

	default:
		return nil, fmt.Errorf("%w: %s allows a single accessor", ErrUnsupported, a.locator)
	}
}

// Close closes the backend. Accessors obtained from the array fail with
// ErrClosed afterwards. Closing twice is a no-op.
func (a *BridgeArray) Close() error {
	if a.closed.Swap(true) {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.shared != nil {
		errs = append(errs, a.shared.close())
	}
	if err := a.impl.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.opened {
		a.opts.metrics.closed()
	}
	a.mapped = nil
	if err := errors.Join(errs...); err != nil {
		level.Warn(a.logger).Log("msg", "closing array failed", "err", err)
		return fmt.Errorf("%w: closing %s: %w", ErrIO, a.locator, err)
	}
	level.Debug(a.logger).Log("msg", "closed array")
	return nil
}

func (a *BridgeArray) String() string {
	return fmt.Sprintf("%s %s %s", a.locator, a.desc.typ, a.desc.shape)
}
