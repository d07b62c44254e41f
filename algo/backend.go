package algo

import (
	"runtime"
	"sort"
	"sync"
)

// Backend dispatches the four parallel primitives of spec §4.7. The solver,
// neighbor index and distributor depend only on this interface, never on a
// concrete backend (spec §9).
type Backend interface {
	// ForEachIndex invokes body(i) for every i in span. Order is
	// unspecified; body must not race on shared writes (spec §4.7).
	ForEachIndex(span Span, body func(i int))

	// SortByKey sorts keys, reordering values (a same-length index array)
	// to match. Not required to be stable. Both backends in this package
	// run it sequentially.
	SortByKey(keys []uint64, values []int)

	// LowerBound computes, for every search key s in [searchSpan.Begin,
	// searchSpan.End) interpreted as the keys themselves, the first index
	// in sorted at which s could be inserted without violating order.
	// Matches the source's use: sorted is a bin-id array, the search keys
	// are literally every integer bin id in range.
	LowerBound(sorted []uint64, searchSpan Span, out []int)
	UpperBound(sorted []uint64, searchSpan Span, out []int)
}

// threadPool is the CPU worker-pool backend: for_each_index fans out across
// runtime.GOMAXPROCS(0) goroutines over contiguous chunks of the span,
// grounded on spatialmodel-inmap's own sync.WaitGroup/goroutine fan-out
// (lib.inmap/framework.go) rather than any third-party parallel-for library.
type threadPool struct {
	workers int
}

// NewThreadPool returns the CPU thread-team backend (spec §5 "CPU thread
// pool"). workers<=0 selects runtime.GOMAXPROCS(0).
func NewThreadPool(workers int) Backend {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &threadPool{workers: workers}
}

func (b *threadPool) ForEachIndex(span Span, body func(i int)) {
	n := span.Len()
	if n <= 0 {
		return
	}
	workers := b.workers
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := span.Begin + w*chunk
		hi := lo + chunk
		if hi > span.End {
			hi = span.End
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				body(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// SortByKey, LowerBound and UpperBound run sequentially even in the
// thread-pool backend: they operate once per step over at most
// max_particles_local keys, and the in-place reordering they and Partition
// perform does not parallelize safely without a merge step the scale here
// does not justify (see DESIGN.md).
func (b *threadPool) SortByKey(keys []uint64, values []int) {
	sortByKeySequential(keys, values)
}

func (b *threadPool) LowerBound(sorted []uint64, searchSpan Span, out []int) {
	lowerBoundSequential(sorted, searchSpan, out)
}

func (b *threadPool) UpperBound(sorted []uint64, searchSpan Span, out []int) {
	upperBoundSequential(sorted, searchSpan, out)
}

// singleThreaded is the trivial backend (spec §5 "single-thread"), used by
// tests and by small local runs where goroutine fan-out overhead dominates.
type singleThreaded struct{}

// NewSingleThreaded returns the serial backend.
func NewSingleThreaded() Backend { return singleThreaded{} }

func (singleThreaded) ForEachIndex(span Span, body func(i int)) {
	for i := span.Begin; i < span.End; i++ {
		body(i)
	}
}

func (singleThreaded) SortByKey(keys []uint64, values []int) { sortByKeySequential(keys, values) }

func (singleThreaded) LowerBound(sorted []uint64, searchSpan Span, out []int) {
	lowerBoundSequential(sorted, searchSpan, out)
}

func (singleThreaded) UpperBound(sorted []uint64, searchSpan Span, out []int) {
	upperBoundSequential(sorted, searchSpan, out)
}

func sortByKeySequential(keys []uint64, values []int) {
	n := len(keys)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return keys[idx[i]] < keys[idx[j]] })

	sortedKeys := make([]uint64, n)
	sortedValues := make([]int, n)
	for i, j := range idx {
		sortedKeys[i] = keys[j]
		sortedValues[i] = values[j]
	}
	copy(keys, sortedKeys)
	copy(values, sortedValues)
}

func lowerBoundSequential(sorted []uint64, searchSpan Span, out []int) {
	for s := searchSpan.Begin; s < searchSpan.End; s++ {
		key := uint64(s)
		i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= key })
		out[s-searchSpan.Begin] = i
	}
}

func upperBoundSequential(sorted []uint64, searchSpan Span, out []int) {
	for s := searchSpan.Begin; s < searchSpan.End; s++ {
		key := uint64(s)
		i := sort.Search(len(sorted), func(i int) bool { return sorted[i] > key })
		out[s-searchSpan.Begin] = i
	}
}

// Partition performs an in-place two-way partition of [span.Begin,span.End):
// elements for which pred returns true are moved before elements for which
// it returns false. swap(i,j) must swap every parallel array the caller
// cares about at indices i and j (position, position_star, velocity — the
// source's zip-iterator tuple, spec §4.6). Returns the index of the first
// element not satisfying pred, i.e. the boundary between the two parts.
//
// spec §4.7 describes three-way partition as two consecutive two-way
// partitions; distr/exchange.go performs exactly that by calling Partition
// twice.
func Partition(span Span, pred func(i int) bool, swap func(i, j int)) int {
	lo, hi := span.Begin, span.End-1
	for lo <= hi {
		for lo <= hi && pred(lo) {
			lo++
		}
		for lo <= hi && !pred(hi) {
			hi--
		}
		if lo < hi {
			swap(lo, hi)
			lo++
			hi--
		}
	}
	return lo
}
