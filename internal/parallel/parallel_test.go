package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestFor_SmallChunk(t *testing.T) {
	// Small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	if counter != int64(n) {
		t.Errorf("Expected %d, got %d", n, counter)
	}
}

func TestChunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 2}

	ranges := Chunks(10, cfg)
	require.Len(t, ranges, 4)
	assert.Equal(t, Range{0, 3}, ranges[0])
	assert.Equal(t, Range{9, 10}, ranges[3])

	covered := 0
	for i, r := range ranges {
		if i > 0 {
			assert.Equal(t, ranges[i-1].End, r.Start, "ranges must be contiguous")
		}
		covered += r.Len()
	}
	assert.Equal(t, 10, covered)

	assert.Nil(t, Chunks(0, cfg))
	assert.Equal(t, []Range{{0, 5}}, Chunks(5, Sequential()))
	assert.Equal(t, []Range{{0, 1}}, Chunks(1, cfg))
}

func TestForErr(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}
	boom := errors.New("boom")

	err := ForErr(100, func(i int) error {
		if i == 57 {
			return boom
		}
		return nil
	}, cfg)
	assert.ErrorIs(t, err, boom)

	var counter int64
	err = ForErr(100, func(_ int) error {
		atomic.AddInt64(&counter, 1)
		return nil
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(100), counter)
}

func TestForChunks_Index(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}
	seen := make([]Range, 3)

	err := ForChunks(9, func(c int, r Range) error {
		seen[c] = r
		return nil
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, []Range{{0, 3}, {3, 6}, {6, 9}}, seen)
}

func BenchmarkFor(b *testing.B) {
	cfg := DefaultConfig()
	n := 10000

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			For(n, func(i int) {
				atomic.AddInt64(&sum, int64(i))
			}, cfgSeq)
		}
	})
}
