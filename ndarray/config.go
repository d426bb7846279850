package ndarray

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-ndarray/internal/alloc"
	"github.com/robert-malhotra/go-ndarray/internal/stepper"
)

const (
	DefaultChunkSize           = stepper.DefaultChunkSize
	DefaultScratchHeapFraction = 0.25
)

// Config tunes bulk copies and scratch allocation.
type Config struct {
	// ChunkSize is the number of pixels moved per step by bulk copies,
	// comparisons, conversions and combinations.
	ChunkSize int `yaml:"chunk_size"`

	// ScratchHeapFraction is the fraction of the runtime memory limit above
	// which scratch arrays are allocated outside the Go heap.
	ScratchHeapFraction float64 `yaml:"scratch_heap_fraction"`

	// ScratchHeapLimit overrides ScratchHeapFraction with an absolute byte
	// count when positive.
	ScratchHeapLimit int64 `yaml:"scratch_heap_limit_bytes"`

	// DirectScratch enables anonymous memory mappings for large scratch
	// arrays. Without it every scratch array lives on the heap.
	DirectScratch bool `yaml:"direct_scratch"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		ChunkSize:           DefaultChunkSize,
		ScratchHeapFraction: DefaultScratchHeapFraction,
		DirectScratch:       true,
	}
}

// LoadConfig reads a YAML configuration. Fields not present keep their
// default values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// RegisterFlags registers flags for every field, using the current values
// as defaults.
func (cfg *Config) RegisterFlags(prefix string, f *flag.FlagSet) {
	f.IntVar(&cfg.ChunkSize, prefixed(prefix, "chunk-size"), cfg.ChunkSize, "Pixels moved per step by bulk operations.")
	f.Float64Var(&cfg.ScratchHeapFraction, prefixed(prefix, "scratch.heap-fraction"), cfg.ScratchHeapFraction, "Fraction of the memory limit above which scratch arrays are mapped outside the heap.")
	f.Int64Var(&cfg.ScratchHeapLimit, prefixed(prefix, "scratch.heap-limit-bytes"), cfg.ScratchHeapLimit, "Absolute heap threshold for scratch arrays in bytes; overrides the fraction when positive.")
	f.BoolVar(&cfg.DirectScratch, prefixed(prefix, "scratch.direct"), cfg.DirectScratch, "Allow large scratch arrays to use anonymous memory mappings.")
}

func prefixed(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Validate checks that every field is in range.
func (cfg Config) Validate() error {
	if cfg.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidArgument, cfg.ChunkSize)
	}
	if cfg.ScratchHeapFraction <= 0 || cfg.ScratchHeapFraction > 1 {
		return fmt.Errorf("%w: scratch heap fraction must be in (0,1], got %v", ErrInvalidArgument, cfg.ScratchHeapFraction)
	}
	if cfg.ScratchHeapLimit < 0 {
		return fmt.Errorf("%w: scratch heap limit must not be negative, got %d", ErrInvalidArgument, cfg.ScratchHeapLimit)
	}
	return nil
}

// heapThreshold returns the scratch size in bytes from which direct
// allocation is used.
func (cfg Config) heapThreshold() int64 {
	if cfg.ScratchHeapLimit > 0 {
		return cfg.ScratchHeapLimit
	}
	return alloc.HeapThreshold(cfg.ScratchHeapFraction)
}

func (cfg Config) newAllocator() *alloc.Allocator {
	return alloc.New(cfg.heapThreshold(), cfg.DirectScratch)
}
