package distr

import (
	"github.com/cpmech/gosph/algo"
	"github.com/cpmech/gosph/prt"
	"github.com/cpmech/gosph/vec"
)

func swapParticles(store *prt.Store, i, j int) {
	store.Position[i], store.Position[j] = store.Position[j], store.Position[i]
	store.PositionStar[i], store.PositionStar[j] = store.PositionStar[j], store.PositionStar[i]
	store.Velocity[i], store.Velocity[j] = store.Velocity[j], store.Velocity[i]
}

// regionRequests is the 3-message-type x 2-direction x {send,recv} bundle
// the source calls its 12 MPI_Requests.
type regionRequests struct {
	recvLeftPosStar, recvRightPosStar Request
	recvLeftPos, recvRightPos         Request
	recvLeftVel, recvRightVel         Request
	sendLeftPosStar, sendRightPosStar Request
	sendLeftPos, sendRightPos         Request
	sendLeftVel, sendRightVel         Request
}

func (d *Distributor) postRegionExchange(
	store *prt.Store,
	sendLeftBegin, sendLeftCount, sendRightBegin, sendRightCount int,
	recvLeftBuf, recvRightBuf [3][]vec.Real,
) regionRequests {
	t := d.transport
	left, right := d.domainToLeft(), d.domainToRight()

	var r regionRequests
	r.recvLeftPosStar = t.PostRecvRegion(left, tagPositionStar, recvLeftBuf[0])
	r.recvRightPosStar = t.PostRecvRegion(right, tagPositionStar, recvRightBuf[0])
	r.recvLeftPos = t.PostRecvRegion(left, tagPosition, recvLeftBuf[1])
	r.recvRightPos = t.PostRecvRegion(right, tagPosition, recvRightBuf[1])
	r.recvLeftVel = t.PostRecvRegion(left, tagVelocity, recvLeftBuf[2])
	r.recvRightVel = t.PostRecvRegion(right, tagVelocity, recvRightBuf[2])

	r.sendLeftPosStar = t.PostSendRegion(left, tagPositionStar, vec.Flatten(store.PositionStar[sendLeftBegin:sendLeftBegin+sendLeftCount]))
	r.sendLeftPos = t.PostSendRegion(left, tagPosition, vec.Flatten(store.Position[sendLeftBegin:sendLeftBegin+sendLeftCount]))
	r.sendLeftVel = t.PostSendRegion(left, tagVelocity, vec.Flatten(store.Velocity[sendLeftBegin:sendLeftBegin+sendLeftCount]))

	r.sendRightPosStar = t.PostSendRegion(right, tagPositionStar, vec.Flatten(store.PositionStar[sendRightBegin:sendRightBegin+sendRightCount]))
	r.sendRightPos = t.PostSendRegion(right, tagPosition, vec.Flatten(store.Position[sendRightBegin:sendRightBegin+sendRightCount]))
	r.sendRightVel = t.PostSendRegion(right, tagVelocity, vec.Flatten(store.Velocity[sendRightBegin:sendRightBegin+sendRightCount]))

	return r
}

// waitRegionExchange blocks on all 12 requests and returns how many Reals
// (flattened Vecs) actually arrived from each side.
func waitRegionExchange(r regionRequests) (recvLeft, recvRight int) {
	recvLeft = r.recvLeftPosStar.Wait()
	r.recvLeftPos.Wait()
	r.recvLeftVel.Wait()
	recvRight = r.recvRightPosStar.Wait()
	r.recvRightPos.Wait()
	r.recvRightVel.Wait()
	r.sendLeftPosStar.Wait()
	r.sendLeftPos.Wait()
	r.sendLeftVel.Wait()
	r.sendRightPosStar.Wait()
	r.sendRightPos.Wait()
	r.sendRightVel.Wait()
	return
}

// DomainSync performs the two-phase exchange (spec §4.6): out-of-bounds
// particles first, then the halo region. InvalidateHalo must have been
// called beforehand.
func (d *Distributor) DomainSync(store *prt.Store) {
	d.syncOOB(store)
	d.syncHalo(store)
}

func (d *Distributor) syncOOB(store *prt.Store) {
	span := algo.Span{Begin: 0, End: d.residentCount}
	domainBegin, domainEnd := d.domainBegin, d.domainEnd

	oobBegin := algo.Partition(span, func(i int) bool {
		x := store.PositionStar[i].X
		return x >= domainBegin && x <= domainEnd
	}, func(i, j int) { swapParticles(store, i, j) })

	oobRightBegin := algo.Partition(algo.Span{Begin: oobBegin, End: span.End}, func(i int) bool {
		return store.PositionStar[i].X <= domainBegin
	}, func(i, j int) { swapParticles(store, i, j) })

	oobLeftCount := oobRightBegin - oobBegin
	oobRightCount := span.End - oobRightBegin

	recvLeftBuf, recvRightBuf := newRegionBuffers(store)

	requests := d.postRegionExchange(store, oobBegin, oobLeftCount, oobRightBegin, oobRightCount, recvLeftBuf, recvRightBuf)
	recvLeftReals, recvRightReals := waitRegionExchange(requests)
	recvLeftN, recvRightN := recvLeftReals/vec.Stride(), recvRightReals/vec.Stride()

	sentCount := oobLeftCount + oobRightCount
	store.Pop(sentCount)
	d.residentCount -= sentCount

	appendRegion(store, recvLeftBuf, recvLeftN)
	d.residentCount += recvLeftN
	appendRegion(store, recvRightBuf, recvRightN)
	d.residentCount += recvRightN
}

func (d *Distributor) syncHalo(store *prt.Store) {
	span := algo.Span{Begin: 0, End: d.residentCount}
	edgeLeft := d.domainBegin + d.edgeWidth
	edgeRight := d.domainEnd - d.edgeWidth

	edgeBegin := algo.Partition(span, func(i int) bool {
		x := store.PositionStar[i].X
		return x >= edgeLeft && x <= edgeRight
	}, func(i, j int) { swapParticles(store, i, j) })

	edgeRightBegin := algo.Partition(algo.Span{Begin: edgeBegin, End: span.End}, func(i int) bool {
		return store.PositionStar[i].X <= edgeLeft
	}, func(i, j int) { swapParticles(store, i, j) })

	d.edgeLeftCount = edgeRightBegin - edgeBegin
	d.edgeRightCount = span.End - edgeRightBegin

	recvLeftBuf, recvRightBuf := newRegionBuffers(store)

	requests := d.postRegionExchange(store, edgeBegin, d.edgeLeftCount, edgeRightBegin, d.edgeRightCount, recvLeftBuf, recvRightBuf)
	recvLeftReals, recvRightReals := waitRegionExchange(requests)
	recvLeftN, recvRightN := recvLeftReals/vec.Stride(), recvRightReals/vec.Stride()

	appendRegion(store, recvLeftBuf, recvLeftN)
	d.haloCountLeft = recvLeftN
	appendRegion(store, recvRightBuf, recvRightN)
	d.haloCountRight = recvRightN
}

func newRegionBuffers(store *prt.Store) (left, right [3][]vec.Real) {
	maxRecvPerSide := store.Available() / 2
	if maxRecvPerSide < 1 {
		maxRecvPerSide = 1
	}
	n := maxRecvPerSide * vec.Stride()
	for k := 0; k < 3; k++ {
		left[k] = make([]vec.Real, n)
		right[k] = make([]vec.Real, n)
	}
	return
}

func appendRegion(store *prt.Store, buf [3][]vec.Real, n int) {
	if n == 0 {
		return
	}
	positionStars := vec.Unflatten(buf[0], n*vec.Stride())
	positions := vec.Unflatten(buf[1], n*vec.Stride())
	velocities := vec.Unflatten(buf[2], n*vec.Stride())
	store.AppendMany(positions, positionStars, velocities, n)
}
