package distr

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"

	"github.com/cpmech/gosph/vec"
)

// mpiTransport wraps github.com/cpmech/gosl/mpi's world communicator. gosl's
// wrapper exposes a blocking, float64-oriented Send/Recv surface (no
// MPI_Get_count), so every region transfer here is a synchronous
// header-then-payload pair run on its own goroutine to get the overlap the
// source's nonblocking Isend/Irecv gives it.
type mpiTransport struct{}

// NewMPITransport assumes mpi.Start has already run (spec §6.4: the
// executable owns the MPI lifecycle).
func NewMPITransport() Transport {
	if !mpi.IsOn() {
		chk.Panic("distr: mpi transport requires mpi.Start to have run first")
	}
	return mpiTransport{}
}

func (mpiTransport) Rank() int { return mpi.Rank() }
func (mpiTransport) Size() int { return mpi.Size() }

type mpiRequest struct {
	done  chan struct{}
	count int
}

func (r *mpiRequest) Wait() int {
	<-r.done
	return r.count
}

func toFloat64(data []vec.Real) []float64 {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return out
}

func fromFloat64(dst []vec.Real, src []float64) int {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = vec.Real(src[i])
	}
	return n
}

func (mpiTransport) PostSendRegion(to, tag int, data []vec.Real) Request {
	req := &mpiRequest{done: make(chan struct{}), count: len(data)}
	if to == NullRank {
		close(req.done)
		return req
	}
	go func() {
		header := []float64{float64(len(data))}
		mpi.SendOne(header, to, tag*2)
		if len(data) > 0 {
			mpi.Send(toFloat64(data), to, tag*2+1)
		}
		close(req.done)
	}()
	return req
}

func (mpiTransport) PostRecvRegion(from, tag int, buf []vec.Real) Request {
	req := &mpiRequest{done: make(chan struct{})}
	if from == NullRank {
		close(req.done)
		return req
	}
	go func() {
		header := make([]float64, 1)
		mpi.RecvOne(header, from, tag*2)
		n := int(header[0])
		if n > 0 {
			payload := make([]float64, n)
			mpi.Recv(payload, from, tag*2+1)
			req.count = fromFloat64(buf, payload)
		}
		close(req.done)
	}()
	return req
}

func (mpiTransport) AllReduceSumUint64(local uint64) uint64 {
	orig := []float64{float64(local)}
	dest := make([]float64, 1)
	mpi.AllReduceSum(dest, orig)
	return uint64(dest[0])
}

func (mpiTransport) GatherUint64(value uint64, root int) []uint64 {
	orig := []float64{float64(value)}
	var gathered []float64
	if mpi.Rank() == root {
		gathered = make([]float64, mpi.Size())
	}
	mpi.Gather(gathered, orig, root)
	if mpi.Rank() != root {
		return nil
	}
	out := make([]uint64, len(gathered))
	for i, v := range gathered {
		out[i] = uint64(v)
	}
	return out
}

func (mpiTransport) GatherVarReals(data []vec.Real, root int) []vec.Real {
	counts := mpiTransport{}.GatherUint64(uint64(len(data)), root)
	total := 0
	for _, c := range counts {
		total += int(c)
	}
	var gathered []float64
	if mpi.Rank() == root {
		gathered = make([]float64, total)
	}
	mpi.GatherV(gathered, toFloat64(data), root)
	if mpi.Rank() != root {
		return nil
	}
	out := make([]vec.Real, total)
	fromFloat64(out, gathered)
	return out
}

func (mpiTransport) BroadcastReals(data []vec.Real, root int) {
	buf := toFloat64(data)
	mpi.BcastFromRoot(buf, root)
	fromFloat64(data, buf)
}
