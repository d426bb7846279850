package stepper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkSteps(t *testing.T) {
	tests := []struct {
		name      string
		length    int64
		chunk     int
		wantSizes []int
		wantBuf   int
	}{
		{"exact", 8, 4, []int{4, 4}, 4},
		{"remainder", 10, 4, []int{4, 4, 2}, 4},
		{"short", 3, 4, []int{3}, 3},
		{"empty", 0, 4, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sizes []int
			var total int64
			s := New(tt.length, tt.chunk)
			for ; s.HasNext(); s.Next() {
				assert.Equal(t, total, s.Base())
				sizes = append(sizes, s.Size())
				total += int64(s.Size())
			}
			assert.Equal(t, tt.wantSizes, sizes)
			assert.Equal(t, tt.length, total)
			assert.Equal(t, tt.wantBuf, s.BufferSize())
		})
	}
}

func TestChunkDefaultSize(t *testing.T) {
	s := New(DefaultChunkSize*2+1, 0)
	assert.Equal(t, DefaultChunkSize, s.Size())
	assert.Equal(t, int64(DefaultChunkSize*2+1), s.Length())
}
