package parallel

import (
	"sync/atomic"
	"testing"
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

func TestLanes(t *testing.T) {
	cfg := DefaultConfig()

	// Small batch counts must still fan out: every lane runs exactly once.
	for _, batch := range []int{1, 2, 3, 8} {
		hits := make([]int64, batch)
		Lanes(batch, func(b int) {
			atomic.AddInt64(&hits[b], 1)
		}, cfg)

		for b, h := range hits {
			if h != 1 {
				t.Errorf("batch=%d: lane %d ran %d times, want 1", batch, b, h)
			}
		}
	}
}

func TestLanes_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	order := make([]int, 0, 4)
	Lanes(4, func(b int) {
		order = append(order, b)
	}, cfg)

	for b, got := range order {
		if got != b {
			t.Errorf("sequential lanes out of order: %v", order)
			break
		}
	}
}

func TestForBatch(t *testing.T) {
	cfg := DefaultConfig()

	batch, channels := 4, 8
	results := make([][]bool, batch)
	for b := range results {
		results[b] = make([]bool, channels)
	}

	ForBatch(batch, channels, func(b, c int) {
		results[b][c] = true
	}, cfg)

	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			if !results[b][c] {
				t.Errorf("Missing result at [%d][%d]", b, c)
			}
		}
	}
}

func BenchmarkLanes(b *testing.B) {
	cfg := DefaultConfig()
	batch := 16

	b.Run("parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var sum int64
			Lanes(batch, func(lane int) {
				atomic.AddInt64(&sum, int64(lane))
			}, cfg)
		}
	})

	b.Run("sequential", func(b *testing.B) {
		cfgSeq := cfg
		cfgSeq.Enabled = false
		for i := 0; i < b.N; i++ {
			var sum int64
			Lanes(batch, func(lane int) {
				atomic.AddInt64(&sum, int64(lane))
			}, cfgSeq)
		}
	})
}
