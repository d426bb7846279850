package alloc

import (
	"errors"
	"fmt"
	"math"
	"runtime/debug"
	"sync"
	"unsafe"
)

// ErrTooLarge is returned when a block cannot be addressed by a 32-bit count.
var ErrTooLarge = errors.New("block too large for a single linear buffer")

// nominalMemory is the memory budget assumed when no limit has been set on
// the runtime.
const nominalMemory = 1 << 30

// Store identifies where a block's memory lives.
type Store int

const (
	// Heap blocks are ordinary Go slices.
	Heap Store = iota
	// Direct blocks are anonymous memory mappings outside the Go heap.
	Direct
)

func (s Store) String() string {
	switch s {
	case Heap:
		return "heap"
	case Direct:
		return "direct"
	default:
		return fmt.Sprintf("Store(%d)", int(s))
	}
}

// Block is a region of memory handed out by an Allocator.
type Block struct {
	// Data is the block's memory. Its length is the requested byte size.
	Data  []byte
	Store Store

	// Elements is the number of elements the block was sized for.
	Elements int

	released bool
}

// Stats contains allocation statistics.
type Stats struct {
	TotalAllocations  uint64 // Number of blocks allocated
	HeapAllocations   uint64 // Blocks placed on the heap
	DirectAllocations uint64 // Blocks placed in mappings
	TotalBytesAlloc   uint64 // Total bytes allocated
	TotalBytesFree    uint64 // Total bytes released
	LargestAlloc      uint64 // Largest single allocation
}

// Allocator hands out scratch blocks and tracks their use. It is safe for
// concurrent use.
type Allocator struct {
	mu sync.Mutex

	// heapThreshold is the byte size at which blocks move off the heap.
	heapThreshold int64
	direct        bool

	stats Stats
}

// New creates an Allocator. Blocks of heapThreshold bytes or more are
// placed in direct storage when direct is true.
func New(heapThreshold int64, direct bool) *Allocator {
	return &Allocator{
		heapThreshold: heapThreshold,
		direct:        direct,
	}
}

// HeapThreshold returns fraction of the runtime memory limit, or of a
// nominal 1GiB when no limit is set.
func HeapThreshold(fraction float64) int64 {
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		limit = nominalMemory
	}
	return int64(float64(limit) * fraction)
}

// Threshold returns the heap threshold in bytes.
func (a *Allocator) Threshold() int64 {
	return a.heapThreshold
}

// StoreFor reports which store a block of the given size would use.
func (a *Allocator) StoreFor(nbytes int64) Store {
	if !a.direct || nbytes < a.heapThreshold || !directSupported {
		return Heap
	}
	return Direct
}

// Alloc allocates a zeroed block holding n elements of elemSize bytes.
func (a *Allocator) Alloc(n int64, elemSize int) (*Block, error) {
	if n < 0 || elemSize <= 0 {
		return nil, fmt.Errorf("invalid block size: %d x %d", n, elemSize)
	}
	if n > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d elements", ErrTooLarge, n)
	}
	store := a.StoreFor(n * int64(elemSize))
	if store == Direct && n*int64(elemSize) > math.MaxInt32 {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrTooLarge, n, elemSize)
	}
	nbytes := int(n) * elemSize

	var (
		data []byte
		err  error
	)
	switch store {
	case Direct:
		data, err = mapAnon(nbytes)
		if err != nil {
			return nil, fmt.Errorf("mapping %d bytes: %w", nbytes, err)
		}
	default:
		data = heapBytes(nbytes)
	}

	a.mu.Lock()
	a.stats.TotalAllocations++
	if store == Direct {
		a.stats.DirectAllocations++
	} else {
		a.stats.HeapAllocations++
	}
	a.stats.TotalBytesAlloc += uint64(nbytes)
	if uint64(nbytes) > a.stats.LargestAlloc {
		a.stats.LargestAlloc = uint64(nbytes)
	}
	a.mu.Unlock()

	return &Block{Data: data, Store: store, Elements: int(n)}, nil
}

// Free releases a block. Freeing a block twice is a no-op. The block's Data
// must not be used afterwards.
func (a *Allocator) Free(b *Block) error {
	if b == nil || b.released {
		return nil
	}
	b.released = true

	var err error
	if b.Store == Direct {
		err = unmap(b.Data)
	}

	a.mu.Lock()
	a.stats.TotalBytesFree += uint64(len(b.Data))
	a.mu.Unlock()

	b.Data = nil
	return err
}

// Stats returns a copy of the allocation statistics.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// heapBytes returns an 8-byte aligned heap slice of n bytes.
func heapBytes(n int) []byte {
	if n == 0 {
		return []byte{}
	}
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), n)
}
