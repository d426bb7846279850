package rawfile

import (
	encbinary "encoding/binary"

	"github.com/go-kit/log"

	"github.com/robert-malhotra/go-ndarray/ndarray"
)

// Option configures how raw files are opened and created.
type Option func(*options)

type options struct {
	order     encbinary.ByteOrder
	logger    log.Logger
	arrayOpts []ndarray.Option
}

func defaultOptions() *options {
	return &options{
		order:  encbinary.BigEndian,
		logger: log.NewNopLogger(),
	}
}

func buildOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithByteOrder sets the byte order of the pixels of created files. Only
// big and little endian are supported; other values are ignored. Existing
// files record their own byte order.
func WithByteOrder(order encbinary.ByteOrder) Option {
	return func(o *options) {
		if order == encbinary.BigEndian || order == encbinary.LittleEndian {
			o.order = order
		}
	}
}

// WithLogger sets the logger used by the package and by the arrays it
// returns.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
			o.arrayOpts = append(o.arrayOpts, ndarray.WithLogger(l))
		}
	}
}

// WithArrayOptions passes options on to the arrays returned.
func WithArrayOptions(opts ...ndarray.Option) Option {
	return func(o *options) {
		o.arrayOpts = append(o.arrayOpts, opts...)
	}
}

// arrayOptions returns the array options with locator appended.
func (o *options) arrayOptions(locator string) []ndarray.Option {
	opts := o.arrayOpts[:len(o.arrayOpts):len(o.arrayOpts)]
	if locator != "" {
		opts = append(opts, ndarray.WithLocator(locator))
	}
	return opts
}
