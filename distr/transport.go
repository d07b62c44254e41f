// Package distr implements the distributed-memory domain decomposition
// (spec component F, §4.6), grounded on the source's Distributor<Real,Dim>
// class (Simulation/Source/distributor.h): per-process x-axis slab
// ownership, load balancing, and the OOB/halo particle exchange protocol.
package distr

import "github.com/cpmech/gosph/vec"

// Transport is the point-to-point and collective surface the distributor
// needs. mpiTransport (transport_mpi.go) implements it over
// github.com/cpmech/gosl/mpi for real multi-process runs; localTransport
// (transport_local.go) implements it in-process for single-rank runs and
// tests, mirroring gosl/mpi's rank-0-degenerate-case semantics.
//
// gosl/mpi's Go wrapper is blocking and float64-oriented; it has no
// MPI_Get_count equivalent to discover how many elements a receive actually
// matched. Rather than inventing one, every region transfer here sends an
// explicit element-count header immediately before its payload, so the
// receiver always knows exactly how much to read next. That header+payload
// pair is what PostRecvRegion/PostSendRegion treat as a single "request".
type Transport interface {
	Rank() int
	Size() int

	// PostSendRegion starts sending data (tagged) to rank `to` and returns a
	// handle to wait on.
	PostSendRegion(to, tag int, data []vec.Real) Request

	// PostRecvRegion starts receiving into buf[:n] (n discovered from the
	// sender's header) from rank `from`, tagged, and returns a handle whose
	// Wait reports how many elements actually arrived.
	PostRecvRegion(from, tag int, buf []vec.Real) Request

	AllReduceSumUint64(local uint64) uint64
	GatherUint64(value uint64, root int) []uint64
	GatherVarReals(data []vec.Real, root int) []vec.Real
	BroadcastReals(data []vec.Real, root int)
}

// Request is a pending point-to-point operation; Wait blocks until it
// completes. For a send, Wait returns the number of elements sent; for a
// receive, the number actually received.
type Request interface {
	Wait() (count int)
}

// NullRank marks an absent neighbor (domain edge), matching the source's
// MPI_PROC_NULL sentinel: sends/receives addressed to it are no-ops.
const NullRank = -1
