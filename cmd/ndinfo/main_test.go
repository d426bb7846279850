package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robert-malhotra/go-ndarray/ndarray"
	"github.com/robert-malhotra/go-ndarray/rawfile"
)

func TestParseWindow(t *testing.T) {
	w, err := parseWindow("0:10, -5:5", 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{0, -5}, w.Origin())
	assert.Equal(t, []int64{10, 10}, w.Dims())

	for _, bad := range []string{"0:10", "0-10,1:2", "a:1,1:2", "1:1,0:1"} {
		_, err := parseWindow(bad, 2)
		assert.Error(t, err, bad)
	}
}

func TestLoadConfigKeepsExplicitFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndinfo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 128\nscratch_heap_limit_bytes: 99\n"), 0o644))

	cfg := ndarray.DefaultConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlags("", fs)
	require.NoError(t, fs.Parse([]string{"-chunk-size=7"}))
	require.NoError(t, loadConfig(&cfg, path, fs))
	assert.Equal(t, 7, cfg.ChunkSize)
	assert.Equal(t, int64(99), cfg.ScratchHeapLimit)
}

func TestRunWritesConvertedWindow(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in"+rawfile.Extension)
	out := filepath.Join(dir, "out"+rawfile.Extension)

	s, err := ndarray.NewShape([]int64{0, 0}, []int64{2, 2})
	require.NoError(t, err)
	arr, err := rawfile.Create(in, ndarray.MustOrderedShape(s, ndarray.FirstIndexFastest), ndarray.Int16, ndarray.BadHandler{})
	require.NoError(t, err)
	acc, err := arr.Access()
	require.NoError(t, err)
	require.NoError(t, acc.Write([]int16{1, 2, 3, 4}, 0, 4))
	require.NoError(t, acc.Close())
	require.NoError(t, arr.Close())

	f := flags{
		window: "1:3,0:2",
		typ:    "float",
		order:  "c",
		out:    out,
		cfg:    ndarray.DefaultConfig(),
	}
	require.NoError(t, run(f, in, log.NewNopLogger()))

	got, err := rawfile.Open(out, ndarray.Read)
	require.NoError(t, err)
	defer got.Close()
	assert.Equal(t, ndarray.Float32, got.Type())
	assert.Equal(t, ndarray.LastIndexFastest, got.Shape().Order())
	assert.Equal(t, []int64{1, 0}, got.Shape().Origin())

	ra, err := got.Access()
	require.NoError(t, err)
	defer ra.Close()
	buf := make([]float32, 4)
	require.NoError(t, ra.Read(buf, 0, 4))
	assert.Equal(t, float32(2), buf[0])
	assert.Equal(t, float32(4), buf[1])
	h := got.BadHandler()
	assert.True(t, h.IsBad(buf, 2))
	assert.True(t, h.IsBad(buf, 3))
}
