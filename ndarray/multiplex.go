package ndarray

import (
	"fmt"
	"sync"
)

// sharedCursor is the single physical cursor of a random backend that does
// not support multiple access.
type sharedCursor struct {
	mu     sync.Mutex
	impl   AccessImpl
	closed bool
}

func (c *sharedCursor) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.impl.Close()
}

// multiplexAccessImpl is one logical cursor over a sharedCursor. It keeps
// its own offset and moves the physical cursor there under the lock before
// every transfer, so no two transfers on the shared cursor overlap.
type multiplexAccessImpl struct {
	cursor *sharedCursor
	offset int64
}

func (m *multiplexAccessImpl) SetOffset(off int64) error {
	m.offset = off
	return nil
}

func (m *multiplexAccessImpl) Read(buf any, start, size int) error {
	return m.transfer(func(impl AccessImpl) error {
		return impl.Read(buf, start, size)
	}, size)
}

func (m *multiplexAccessImpl) Write(buf any, start, size int) error {
	return m.transfer(func(impl AccessImpl) error {
		return impl.Write(buf, start, size)
	}, size)
}

func (m *multiplexAccessImpl) transfer(op func(AccessImpl) error, size int) error {
	c := m.cursor
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("shared cursor %w", ErrClosed)
	}
	if err := c.impl.SetOffset(m.offset); err != nil {
		return err
	}
	if err := op(c.impl); err != nil {
		return err
	}
	m.offset += int64(size)
	return nil
}

// Close is a no-op: the shared cursor belongs to the array.
func (m *multiplexAccessImpl) Close() error {
	return nil
}
