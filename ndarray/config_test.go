package ndarray

import (
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	for _, tc := range []struct {
		name    string
		input   string
		want    Config
		wantErr bool
	}{
		{
			name:  "empty",
			input: "",
			want:  DefaultConfig(),
		},
		{
			name: "all fields",
			input: `
chunk_size: 1024
scratch_heap_fraction: 0.5
scratch_heap_limit_bytes: 4096
direct_scratch: false
`,
			want: Config{ChunkSize: 1024, ScratchHeapFraction: 0.5, ScratchHeapLimit: 4096},
		},
		{
			name:  "partial",
			input: "chunk_size: 8\n",
			want:  Config{ChunkSize: 8, ScratchHeapFraction: DefaultScratchHeapFraction, DirectScratch: true},
		},
		{name: "unknown field", input: "chunksize: 8\n", wantErr: true},
		{name: "negative chunk", input: "chunk_size: -1\n", wantErr: true},
		{name: "fraction too large", input: "scratch_heap_fraction: 2\n", wantErr: true},
		{name: "malformed", input: "chunk_size: [\n", wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := LoadConfig(strings.NewReader(tc.input))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, cfg)
		})
	}
}

func TestConfigRegisterFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags("ndarray", fs)

	require.NoError(t, fs.Parse([]string{
		"-ndarray.chunk-size=64",
		"-ndarray.scratch.heap-limit-bytes=1024",
		"-ndarray.scratch.direct=false",
	}))
	assert.Equal(t, 64, cfg.ChunkSize)
	assert.Equal(t, int64(1024), cfg.ScratchHeapLimit)
	assert.False(t, cfg.DirectScratch)
	assert.Equal(t, DefaultScratchHeapFraction, cfg.ScratchHeapFraction)
	assert.Equal(t, int64(1024), cfg.heapThreshold())

	fs = flag.NewFlagSet("bare", flag.ContinueOnError)
	cfg.RegisterFlags("", fs)
	assert.NotNil(t, fs.Lookup("chunk-size"))
}
