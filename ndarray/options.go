package ndarray

import (
	"sync"

	"github.com/go-kit/log"

	"github.com/robert-malhotra/go-ndarray/internal/alloc"
)

// Option configures arrays created by this package.
type Option func(*options)

type options struct {
	logger    log.Logger
	metrics   *Metrics
	cfg       Config
	allocator *alloc.Allocator
	locator   string
}

var defaultAllocator = sync.OnceValue(func() *alloc.Allocator {
	return DefaultConfig().newAllocator()
})

func defaultOptions() *options {
	return &options{
		logger: log.NewNopLogger(),
		cfg:    DefaultConfig(),
	}
}

// WithLogger sets the logger for lifecycle and failure events.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records pixel traffic and scratch allocation in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithConfig replaces the default configuration. Scratch arrays created
// with it share an allocator derived from cfg.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.cfg = cfg
		o.allocator = cfg.newAllocator()
	}
}

// WithLocator names the array's underlying resource.
func WithLocator(locator string) Option {
	return func(o *options) {
		o.locator = locator
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) scratchAllocator() *alloc.Allocator {
	if o.allocator == nil {
		return defaultAllocator()
	}
	return o.allocator
}

func (o *options) chunkSize() int {
	if o.cfg.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.cfg.ChunkSize
}

// inherited returns an Option reproducing o without its locator, so that
// arrays derived from another carry the same logger, metrics and config.
func (o *options) inherited() Option {
	return func(dst *options) {
		dst.logger = o.logger
		dst.metrics = o.metrics
		dst.cfg = o.cfg
		dst.allocator = o.allocator
	}
}

// optionsCarrier is implemented by arrays built with options.
type optionsCarrier interface {
	arrayOptions() *options
}

// deriveOptions returns the options for an array derived from base: those
// of base, overridden by opts.
func deriveOptions(base NDArray, opts []Option) []Option {
	c, ok := base.(optionsCarrier)
	if !ok {
		return opts
	}
	return append([]Option{c.arrayOptions().inherited()}, opts...)
}
