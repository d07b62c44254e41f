package distr

import "github.com/cpmech/gosph/vec"

const (
	tagScalarHalo = 20
	tagVecHalo    = 21
)

// SyncScalar implements solver.HaloSync: it posts the 4-request halo sync
// for an arbitrary per-particle scalar array (spec §4.6
// initiate/finalize_sync_halo_scalar) and waits for it inline. field must be
// indexed the same way the store's own fields are: halo slots live at
// [resident, resident+halo_left) and [resident+halo_left, local).
func (d *Distributor) SyncScalar(field []vec.Real) {
	interiorCount := d.residentCount - d.edgeCount()
	sendLeftIndex := interiorCount
	sendRightIndex := sendLeftIndex + d.edgeLeftCount
	recvLeftIndex := d.residentCount
	recvRightIndex := recvLeftIndex + d.haloCountLeft

	left, right := d.domainToLeft(), d.domainToRight()
	t := d.transport

	recvLeft := t.PostRecvRegion(left, tagScalarHalo, field[recvLeftIndex:recvLeftIndex+d.haloCountLeft])
	recvRight := t.PostRecvRegion(right, tagScalarHalo, field[recvRightIndex:recvRightIndex+d.haloCountRight])
	sendLeft := t.PostSendRegion(left, tagScalarHalo, field[sendLeftIndex:sendLeftIndex+d.edgeLeftCount])
	sendRight := t.PostSendRegion(right, tagScalarHalo, field[sendRightIndex:sendRightIndex+d.edgeRightCount])

	recvLeft.Wait()
	recvRight.Wait()
	sendLeft.Wait()
	sendRight.Wait()
}

// SyncVec is SyncScalar's vector counterpart (spec §4.6
// initiate/finalize_sync_halo_vec).
func (d *Distributor) SyncVec(field []vec.Vec) {
	interiorCount := d.residentCount - d.edgeCount()
	sendLeftIndex := interiorCount
	sendRightIndex := sendLeftIndex + d.edgeLeftCount
	recvLeftIndex := d.residentCount
	recvRightIndex := recvLeftIndex + d.haloCountLeft

	left, right := d.domainToLeft(), d.domainToRight()
	t := d.transport

	recvLeftBuf := make([]vec.Real, d.haloCountLeft*vec.Stride())
	recvRightBuf := make([]vec.Real, d.haloCountRight*vec.Stride())

	recvLeft := t.PostRecvRegion(left, tagVecHalo, recvLeftBuf)
	recvRight := t.PostRecvRegion(right, tagVecHalo, recvRightBuf)
	sendLeft := t.PostSendRegion(left, tagVecHalo, vec.Flatten(field[sendLeftIndex:sendLeftIndex+d.edgeLeftCount]))
	sendRight := t.PostSendRegion(right, tagVecHalo, vec.Flatten(field[sendRightIndex:sendRightIndex+d.edgeRightCount]))

	nLeft := recvLeft.Wait()
	nRight := recvRight.Wait()
	sendLeft.Wait()
	sendRight.Wait()

	copy(field[recvLeftIndex:recvLeftIndex+d.haloCountLeft], vec.Unflatten(recvLeftBuf, nLeft))
	copy(field[recvRightIndex:recvRightIndex+d.haloCountRight], vec.Unflatten(recvRightBuf, nRight))
}
