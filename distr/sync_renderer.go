package distr

import (
	"github.com/cpmech/gosph/params"
	"github.com/cpmech/gosph/vec"
)

// SyncFromRenderer broadcasts the runtime-editable subset of parameters a
// viewer could change: simulation_mode bits and mover_center (spec §3's
// viewer-facing fields; everything else is load-time-only). world's rank 0
// is authoritative; every other rank's copy of these fields is overwritten
// by the broadcast result. The gather half of the §6.3 renderer protocol
// (resident counts, positions) is already implemented by snap.TraceSink /
// snap.GatherSink; this method is the other direction of that same
// world-rank-0 channel, not a duplicate of it.
func (d *Distributor) SyncFromRenderer(world Transport, p *params.Parameters) {
	buf := []vec.Real{vec.Real(p.SimulationMode), p.MoverCenter.X, p.MoverCenter.Y, p.MoverCenter.Z}
	world.BroadcastReals(buf, 0)
	p.SimulationMode = params.Mode(buf[0])
	p.MoverCenter = vec.Vec{X: buf[1], Y: buf[2], Z: buf[3]}
}
