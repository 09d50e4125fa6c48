package dynamo

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelFor_CoversRange(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1000} {
		hits := make([]int32, n)
		ParallelFor(n, 8, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: index %d visited %d times", n, i, h)
			}
		}
	}
}

func TestParallelForErr(t *testing.T) {
	var visited int64
	err := ParallelForErr(500, 10, func(start, end int) error {
		atomic.AddInt64(&visited, int64(end-start))
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if visited != 500 {
		t.Errorf("visited %d indices, want 500", visited)
	}

	boom := errors.New("boom")
	err = ParallelForErr(500, 10, func(start, end int) error {
		if start <= 250 && 250 < end {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected chunk error, got %v", err)
	}
}
