// Package algo implements the parallel algorithm layer that sits underneath
// the neighbor index and the solver (spec component G, §4.7): for_each_index,
// sort_by_key, lower_bound/upper_bound and partition, dispatched to a single
// configured backend the way gofem picks a single LinSol implementation at
// start-up and depends only on the interface from then on (spec §9
// "Dispatch over execution backend").
//
// The source dispatches between CUDA/OpenMP/CPP backends with build-time
// #ifdefs around calls into Thrust. This module has no GPU backend (the
// viewer/GPU path is out of scope, spec §1); the chosen backend is a
// goroutine worker pool over runtime.GOMAXPROCS(0) workers, grounded on
// spatialmodel-inmap's own raw sync.WaitGroup/goroutine fan-out in
// lib.inmap/framework.go — the pack contains no dedicated parallel-for
// library, so this is the idiomatic choice rather than a stdlib fallback
// (see DESIGN.md).
package algo

// Span is a half-open index range [Begin,End) (spec §3).
type Span struct {
	Begin, End int
}

func (s Span) Len() int { return s.End - s.Begin }
func (s Span) Empty() bool { return s.End <= s.Begin }
