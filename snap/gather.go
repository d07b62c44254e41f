package snap

import "github.com/cpmech/gosph/vec"

// World is the collective surface GatherSink needs from the world
// communicator (spec §6.2: rank 0 of world is reserved for the
// snapshot/renderer consumer). distr.Transport satisfies this directly; it
// is restated here so snap does not import distr for a three-method subset.
type World interface {
	Rank() int
	GatherUint64(value uint64, root int) []uint64
	GatherVarReals(data []vec.Real, root int) []vec.Real
}

// GatherSink implements Sink with the in-process counting protocol (spec
// §6.3): every rank calls Emit with its own resident positions; only world
// rank 0 sees the assembled whole (its own positions included) and invokes
// Collect.
//
// The per-rank count gather mirrors the source's world-gather of per-process
// size_t counts even though GatherVarReals's own element-count header makes
// the counts redundant here: it keeps the protocol's two collective calls in
// the same order a real renderer consumer expects (count pass, then data
// pass), so a differently-shaped consumer can be swapped in without
// reordering calls.
type GatherSink struct {
	World   World
	Collect func(step uint64, positions []vec.Vec)
}

func (g *GatherSink) Emit(step uint64, positions []vec.Vec) error {
	g.World.GatherUint64(uint64(len(positions)), 0)
	gathered := g.World.GatherVarReals(vec.Flatten(positions), 0)
	if g.World.Rank() != 0 {
		return nil
	}
	if g.Collect != nil {
		g.Collect(step, vec.Unflatten(gathered, len(gathered)))
	}
	return nil
}
