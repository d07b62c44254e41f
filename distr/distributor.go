package distr

import (
	"math"

	"github.com/cpmech/gosph/algo"
	"github.com/cpmech/gosph/params"
	"github.com/cpmech/gosph/prt"
	"github.com/cpmech/gosph/vec"
)

// tag values for the region-exchange protocol: each of the 3 per-particle
// arrays gets its own tag so left/right send/recv pairs never collide.
const (
	tagPositionStar = 10
	tagPosition     = 11
	tagVelocity     = 12
)

// Distributor owns this process's x-axis slab and the particle-region
// layout within the store: [interior, edge_left, edge_right, halo_left,
// halo_right] (spec §4.6).
type Distributor struct {
	transport Transport

	domainBegin, domainEnd vec.Real
	edgeWidth              vec.Real

	residentCount   int
	edgeLeftCount   int
	edgeRightCount  int
	haloCountLeft   int
	haloCountRight  int
}

// New builds a distributor bound to the given transport. Domain bounds are
// set by InitializeFluid.
func New(transport Transport) *Distributor {
	return &Distributor{transport: transport}
}

func (d *Distributor) Rank() int { return d.transport.Rank() }
func (d *Distributor) Size() int { return d.transport.Size() }

func (d *Distributor) isFirstDomain() bool { return d.Rank() == 0 }
func (d *Distributor) isLastDomain() bool  { return d.Rank() == d.Size()-1 }

func (d *Distributor) domainToLeft() int {
	if d.Rank() > 0 {
		return d.Rank() - 1
	}
	return NullRank
}

func (d *Distributor) domainToRight() int {
	if d.Rank() != d.Size()-1 {
		return d.Rank() + 1
	}
	return NullRank
}

// ResidentCount is the count of interior+edge (non-halo) particles.
func (d *Distributor) ResidentCount() int { return d.residentCount }

func (d *Distributor) edgeCount() int { return d.edgeLeftCount + d.edgeRightCount }
func (d *Distributor) haloCount() int { return d.haloCountLeft + d.haloCountRight }

// ResidentSpan is [0, resident_count).
func (d *Distributor) ResidentSpan() algo.Span {
	return algo.Span{Begin: 0, End: d.residentCount}
}

// InteriorSpan is the sub-span of ResidentSpan untouched by halo data.
func (d *Distributor) InteriorSpan() algo.Span {
	return algo.Span{Begin: 0, End: d.residentCount - d.edgeCount()}
}

// EdgeSpan is the tail of ResidentSpan shared with neighboring domains.
func (d *Distributor) EdgeSpan() algo.Span {
	return algo.Span{Begin: d.residentCount - d.edgeCount(), End: d.residentCount}
}

// HaloSpan is the region just past ResidentSpan holding neighbor copies.
func (d *Distributor) HaloSpan() algo.Span {
	return algo.Span{Begin: d.residentCount, End: d.residentCount + d.haloCount()}
}

// LocalSpan is resident+halo, the full span solver steps operate over.
func (d *Distributor) LocalSpan() algo.Span {
	return algo.Span{Begin: 0, End: d.residentCount + d.haloCount()}
}

// GlobalResidentCount all-reduces ResidentCount across every process.
func (d *Distributor) GlobalResidentCount() uint64 {
	return d.transport.AllReduceSumUint64(uint64(d.residentCount))
}

// setDomainBounds divides initialFluid's x-extent evenly across processes,
// stretching the first/last slab to the global boundary (spec §4.6).
func (d *Distributor) setDomainBounds(initialFluid, globalBoundary vec.AABB) {
	domainLength := initialFluid.Length() / vec.Real(d.Size())
	d.domainBegin = initialFluid.Min.X + vec.Real(d.Rank())*domainLength
	d.domainEnd = d.domainBegin + domainLength
	if d.isLastDomain() {
		d.domainEnd = globalBoundary.Max.X
	}
	if d.isFirstDomain() {
		d.domainBegin = globalBoundary.Min.X
	}
}

// InitializeFluid sets domain bounds from p.InitialFluid/p.Boundary, derives
// edge_width, then seeds this process's slab with the fluid lattice (spec
// §4.6).
func (d *Distributor) InitializeFluid(store *prt.Store, p *params.Parameters) {
	d.setDomainBounds(p.InitialFluid, p.Boundary)
	d.edgeWidth = p.EdgeWidth()
	d.distributeFluid(p.InitialFluid, store, p.ParticleRestSpacing, vec.Zero)
}

// distributeFluid seeds the portion of globalFluid that falls in this
// process's slab, spacing-aligned to the global lattice via a floor-count
// offset (spec §4.6).
func (d *Distributor) distributeFluid(globalFluid vec.AABB, store *prt.Store, spacing vec.Real, velocity vec.Vec) {
	containsStart := globalFluid.Min.X >= d.domainBegin && globalFluid.Min.X <= d.domainEnd
	containsEnd := globalFluid.Max.X >= d.domainBegin && globalFluid.Max.X <= d.domainEnd
	filled := globalFluid.Min.X <= d.domainBegin && globalFluid.Max.X >= d.domainBegin
	if !containsStart && !containsEnd && !filled {
		return
	}

	local := globalFluid
	xCountPrevious := math.Max(0, math.Floor(float64((d.domainBegin-globalFluid.Min.X)/spacing)))
	local.Min.X = globalFluid.Min.X + vec.Real(xCountPrevious)*spacing

	if containsEnd {
		local.Max.X = globalFluid.Max.X
	} else {
		local.Max.X = d.domainEnd
	}

	added := store.ConstructFluid(local, spacing, velocity)
	d.residentCount += added
}

// ProcessParameters injects emitter particles when active (spec §4.6).
func (d *Distributor) ProcessParameters(p *params.Parameters, store *prt.Store) {
	if !p.SimulationMode.Has(params.EmitterActive) {
		return
	}
	extent := vec.New(1.1 * p.ParticleRestSpacing)
	addVolume := vec.AABB{
		Min: p.EmitterCenter.Sub(extent.Scale(0.5)),
	}
	addVolume.Max = addVolume.Min.Add(extent)
	d.distributeFluid(addVolume, store, p.ParticleRestSpacing, p.EmitterVelocity)
}

// InvalidateHalo pops halo particles from the tail of every field, per
// spec's "must be called before domain_sync" contract.
func (d *Distributor) InvalidateHalo(store *prt.Store) {
	store.Pop(d.haloCount())
	d.haloCountLeft = 0
	d.haloCountRight = 0
}

// BalanceDomains is the cheap per-step load balancer driven by resident
// counts exchanged with neighbors (spec §4.6). The right-side "too few"
// branch intentionally compares against this process's own slab width, not
// the right neighbor's — that asymmetry is in the source and is preserved
// here rather than silently "fixed".
func (d *Distributor) BalanceDomains() {
	globalResident := d.GlobalResidentCount()
	evenCount := int64(globalResident) / int64(d.Size())
	maxDiff := int64(float64(evenCount) * 0.05)

	dx := d.edgeWidth * 0.15
	minWidth := 3 * d.edgeWidth

	myCount := uint64(d.residentCount)
	rightCount := d.sendRecvUint64(myCount, d.domainToLeft(), d.domainToRight())

	myLength := d.domainEnd - d.domainBegin
	leftLength := d.sendRecvReal(myLength, d.domainToLeft(), d.domainToLeft())
	rightLength := d.sendRecvReal(myLength, d.domainToRight(), d.domainToRight())

	diff := int64(myCount) - evenCount
	rightDiff := int64(rightCount) - evenCount

	if d.domainToLeft() != NullRank {
		if diff > maxDiff && myLength > minWidth {
			d.domainBegin += dx
		}
		if diff < -maxDiff && leftLength > minWidth {
			d.domainBegin -= dx
		}
	}

	if d.domainToRight() != NullRank {
		if rightDiff > maxDiff && rightLength > minWidth {
			d.domainEnd += dx
		}
		if rightDiff < -maxDiff && myLength > minWidth {
			d.domainEnd -= dx
		}
	}
}

// sendRecvUint64/sendRecvReal implement the source's blocking send_recv
// pairing used only by balance_domains, a much lighter exchange than the
// 12-request region protocol: a single scalar each way.
func (d *Distributor) sendRecvUint64(value uint64, sendTo, recvFrom int) uint64 {
	buf := make([]vec.Real, 1)
	recv := d.transport.PostRecvRegion(recvFrom, 900, buf)
	send := d.transport.PostSendRegion(sendTo, 900, []vec.Real{vec.Real(value)})
	send.Wait()
	if recv.Wait() == 0 {
		return 0
	}
	return uint64(buf[0])
}

func (d *Distributor) sendRecvReal(value vec.Real, sendTo, recvFrom int) vec.Real {
	buf := make([]vec.Real, 1)
	recv := d.transport.PostRecvRegion(recvFrom, 901, buf)
	send := d.transport.PostSendRegion(sendTo, 901, []vec.Real{value})
	send.Wait()
	if recv.Wait() == 0 {
		return 0
	}
	return buf[0]
}
