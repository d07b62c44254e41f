package distr

import (
	"sync"

	"github.com/cpmech/gosph/vec"
)

// localNetwork wires several localTransport ranks together in-process, for
// single-rank runs (where all traffic is to/from NullRank and never touches
// the network) and for tests exercising multi-rank exchange without MPI.
type localNetwork struct {
	size int

	mu    sync.Mutex
	chans map[chanKey]chan []vec.Real

	reduceSum  *collectiveBarrier
	gatherCnt  *collectiveBarrier
	gatherVar  *collectiveBarrier
	broadcast  *collectiveBarrier
}

type chanKey struct{ from, to, tag int }

// NewLocalNetwork builds size in-process ranks. Rank 0's Transport is
// typically used standalone for a 1-process run.
func NewLocalNetwork(size int) []Transport {
	net := &localNetwork{
		size:      size,
		chans:     make(map[chanKey]chan []vec.Real),
		reduceSum: newCollectiveBarrier(size),
		gatherCnt: newCollectiveBarrier(size),
		gatherVar: newCollectiveBarrier(size),
		broadcast: newCollectiveBarrier(size),
	}
	out := make([]Transport, size)
	for r := 0; r < size; r++ {
		out[r] = &localTransport{net: net, rank: r}
	}
	return out
}

func (n *localNetwork) chanFor(from, to, tag int) chan []vec.Real {
	n.mu.Lock()
	defer n.mu.Unlock()
	k := chanKey{from, to, tag}
	c, ok := n.chans[k]
	if !ok {
		c = make(chan []vec.Real, 4)
		n.chans[k] = c
	}
	return c
}

type localTransport struct {
	net  *localNetwork
	rank int
}

func (t *localTransport) Rank() int { return t.rank }
func (t *localTransport) Size() int { return t.net.size }

type doneRequest struct{ count int }

func (r doneRequest) Wait() int { return r.count }

type localSendRequest struct{ count int }

func (r *localSendRequest) Wait() int { return r.count }

type localRecvRequest struct {
	ch  chan []vec.Real
	buf []vec.Real
}

func (r *localRecvRequest) Wait() int {
	payload := <-r.ch
	return copy(r.buf, payload)
}

func (t *localTransport) PostSendRegion(to, tag int, data []vec.Real) Request {
	if to == NullRank {
		return doneRequest{0}
	}
	payload := append([]vec.Real(nil), data...)
	t.net.chanFor(t.rank, to, tag) <- payload
	return &localSendRequest{count: len(data)}
}

func (t *localTransport) PostRecvRegion(from, tag int, buf []vec.Real) Request {
	if from == NullRank {
		return doneRequest{0}
	}
	return &localRecvRequest{ch: t.net.chanFor(from, t.rank, tag), buf: buf}
}

func (t *localTransport) AllReduceSumUint64(local uint64) uint64 {
	results := t.net.reduceSum.enter(t.rank, local)
	var sum uint64
	for _, v := range results {
		sum += v.(uint64)
	}
	return sum
}

func (t *localTransport) GatherUint64(value uint64, root int) []uint64 {
	results := t.net.gatherCnt.enter(t.rank, value)
	if t.rank != root {
		return nil
	}
	out := make([]uint64, len(results))
	for i, v := range results {
		out[i] = v.(uint64)
	}
	return out
}

func (t *localTransport) GatherVarReals(data []vec.Real, root int) []vec.Real {
	cp := append([]vec.Real(nil), data...)
	results := t.net.gatherVar.enter(t.rank, cp)
	if t.rank != root {
		return nil
	}
	var out []vec.Real
	for _, v := range results {
		out = append(out, v.([]vec.Real)...)
	}
	return out
}

func (t *localTransport) BroadcastReals(data []vec.Real, root int) {
	var send []vec.Real
	if t.rank == root {
		send = append([]vec.Real(nil), data...)
	}
	results := t.net.broadcast.enter(t.rank, send)
	rootData := results[root].([]vec.Real)
	copy(data, rootData)
}

// collectiveBarrier rendezvous-es size goroutines at one named collective
// call site, handing every participant the full, rank-ordered set of
// contributed values once the last one arrives.
type collectiveBarrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	size    int
	arrived int
	values  []interface{}
	result  []interface{}
	gen     int
}

func newCollectiveBarrier(size int) *collectiveBarrier {
	b := &collectiveBarrier{size: size, values: make([]interface{}, size)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *collectiveBarrier) enter(rank int, value interface{}) []interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	myGen := b.gen
	b.values[rank] = value
	b.arrived++
	if b.arrived == b.size {
		result := make([]interface{}, b.size)
		copy(result, b.values)
		b.result = result
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
		return result
	}
	for b.gen == myGen {
		b.cond.Wait()
	}
	result := make([]interface{}, b.size)
	copy(result, b.result)
	return result
}
