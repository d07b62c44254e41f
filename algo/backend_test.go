package algo

import (
	"sync/atomic"
	"testing"
)

func TestForEachIndexVisitsEveryIndexOnce(t *testing.T) {
	backends := []Backend{NewSingleThreaded(), NewThreadPool(4)}
	for _, b := range backends {
		n := 1000
		var counts [1000]int32
		b.ForEachIndex(Span{0, n}, func(i int) {
			atomic.AddInt32(&counts[i], 1)
		})
		for i, c := range counts {
			if c != 1 {
				t.Fatalf("index %d visited %d times", i, c)
			}
		}
	}
}

func TestSortByKeyReordersValues(t *testing.T) {
	for _, b := range []Backend{NewSingleThreaded(), NewThreadPool(4)} {
		keys := []uint64{5, 3, 4, 1, 2}
		values := []int{50, 30, 40, 10, 20}
		b.SortByKey(keys, values)
		for i := 1; i < len(keys); i++ {
			if keys[i] < keys[i-1] {
				t.Fatalf("keys not sorted: %v", keys)
			}
		}
		for i, k := range keys {
			if values[i] != int(k)*10 {
				t.Fatalf("value %d misaligned with key %d", values[i], k)
			}
		}
	}
}

func TestLowerUpperBound(t *testing.T) {
	sorted := []uint64{0, 0, 1, 1, 1, 3, 3, 5}
	lower := make([]int, 6)
	upper := make([]int, 6)
	b := NewSingleThreaded()
	b.LowerBound(sorted, Span{0, 6}, lower)
	b.UpperBound(sorted, Span{0, 6}, upper)

	// bin id 2 and 4 are absent: lower==upper at the insertion point.
	if lower[2] != 5 || upper[2] != 5 {
		t.Fatalf("bin 2 bounds = [%d,%d), want empty at 5", lower[2], upper[2])
	}
	if lower[1] != 2 || upper[1] != 5 {
		t.Fatalf("bin 1 bounds = [%d,%d), want [2,5)", lower[1], upper[1])
	}
}

func TestPartitionSplitsByPredicate(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6, 7, 8}
	pivot := Partition(Span{0, len(data)}, func(i int) bool {
		return data[i]%2 == 0
	}, func(i, j int) {
		data[i], data[j] = data[j], data[i]
	})
	for i := 0; i < pivot; i++ {
		if data[i]%2 != 0 {
			t.Fatalf("element %d at %d should be even (even-first partition): %v", data[i], i, data)
		}
	}
	for i := pivot; i < len(data); i++ {
		if data[i]%2 == 0 {
			t.Fatalf("element %d at %d should be odd: %v", data[i], i, data)
		}
	}
}
