// Package grid implements the uniform-grid neighbor index (spec component
// D, §4.4), grounded on the source's sim::Neighbors<Real,Dim> class
// (Simulation/Source/neighbors.h): bin/sort/bound over a parallel backend,
// then a bounded per-particle neighbor list.
package grid

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gosph/algo"
	"github.com/cpmech/gosph/vec"
)

// MaxNeighbors is the fixed per-particle neighbor-list capacity (spec §4.4,
// §9: "a physics assumption tied to bin_spacing=1.2h and the configured rest
// density"). Overflow beyond it is silently dropped, per spec contract.
const MaxNeighbors = 60

// NeighborList is a fixed-capacity neighbor bucket.
type NeighborList struct {
	Indices [MaxNeighbors]int
	Count   int
}

// Index is the uniform grid over the global boundary, padded by one bin on
// every side (spec §4.4).
type Index struct {
	backend     algo.Backend
	binSpacing  vec.Real
	dims        [3]int // per-axis bin counts
	binCount    int

	beginIdx []int
	endIdx   []int
	binIDs   []uint64
	particleIDs []int

	lists []NeighborList
}

// New builds a neighbor index over the given global boundary, sized for up
// to maxLocal particles.
func New(backend algo.Backend, boundary vec.AABB, binSpacing vec.Real, maxLocal int) *Index {
	if binSpacing <= 0 {
		chk.Panic("grid: bin spacing must be positive, got %v", binSpacing)
	}
	extent := boundary.Extent()
	n := 2
	if vec.D == vec.D3 {
		n = 3
	}
	var dims [3]int
	total := 1
	comps := [3]vec.Real{extent.X, extent.Y, extent.Z}
	for i := 0; i < n; i++ {
		dims[i] = int(math.Ceil(float64(comps[i]/binSpacing))) + 2
		total *= dims[i]
	}
	for i := n; i < 3; i++ {
		dims[i] = 1
	}

	return &Index{
		backend:     backend,
		binSpacing:  binSpacing,
		dims:        dims,
		binCount:    total,
		beginIdx:    make([]int, total),
		endIdx:      make([]int, total),
		binIDs:      make([]uint64, maxLocal),
		particleIDs: make([]int, maxLocal),
		lists:       make([]NeighborList, maxLocal),
	}
}

// BinDimensions returns the per-axis bin counts (spec §4.4).
func (idx *Index) BinDimensions() [3]int { return idx.dims }

func floorDiv(p vec.Real, spacing vec.Real) int {
	return int(math.Floor(float64(p / spacing)))
}

// binIDFloor mirrors the source's floor((p+spacing)/spacing) exactly: using
// floor rather than truncation matters for points shifted to land exactly
// on a bin boundary or (in pathological cases) below -bin_spacing.
func (idx *Index) binIDFloor(p vec.Vec) uint64 {
	bx := floorDiv(p.X+idx.binSpacing, idx.binSpacing)
	by := floorDiv(p.Y+idx.binSpacing, idx.binSpacing)
	if vec.D == vec.D2 {
		return uint64(by*idx.dims[0] + bx)
	}
	bz := floorDiv(p.Z+idx.binSpacing, idx.binSpacing)
	return uint64(idx.dims[0]*idx.dims[1]*bz + by*idx.dims[0] + bx)
}

// Find rebuilds the index: bins/sorts toBinSpan, then fills neighbor lists
// for toFillSpan (spec §4.4). positions is indexed by the full local span.
func (idx *Index) Find(toBinSpan, toFillSpan algo.Span, positions []vec.Vec) {
	n := toBinSpan.Len()

	idx.backend.ForEachIndex(toBinSpan, func(i int) {
		idx.binIDs[i] = idx.binIDFloor(positions[i])
		idx.particleIDs[i] = i
	})

	idx.backend.SortByKey(idx.binIDs[:n], idx.particleIDs[:n])

	searchSpan := algo.Span{Begin: 0, End: idx.binCount}
	idx.backend.LowerBound(idx.binIDs[:n], searchSpan, idx.beginIdx)
	idx.backend.UpperBound(idx.binIDs[:n], searchSpan, idx.endIdx)

	validRadiusSquared := idx.binSpacing * idx.binSpacing

	idx.backend.ForEachIndex(toFillSpan, func(p int) {
		list := &idx.lists[p]
		list.Count = 0

		for _, binID := range idx.neighborBinIDs(positions[p]) {
			if binID >= uint64(idx.binCount) {
				continue
			}
			begin := idx.beginIdx[binID]
			end := idx.endIdx[binID]
			for j := begin; j < end; j++ {
				q := idx.particleIDs[j]
				if q == p {
					continue
				}
				d2 := positions[p].Sub(positions[q]).MagnitudeSquared()
				if d2 < validRadiusSquared && list.Count < MaxNeighbors {
					list.Indices[list.Count] = q
					list.Count++
				}
			}
		}
	})
}

// neighborBinIDs returns the 3^D candidate bin ids surrounding coord,
// iterated row-major (k,j,i) per spec §4.4.
func (idx *Index) neighborBinIDs(coord vec.Vec) []uint64 {
	if vec.D == vec.D2 {
		out := make([]uint64, 0, 9)
		for i := -1; i <= 1; i++ {
			for j := -1; j <= 1; j++ {
				neighborCoord := vec.Vec{
					X: coord.X + vec.Real(i)*idx.binSpacing,
					Y: coord.Y + vec.Real(j)*idx.binSpacing,
				}
				out = append(out, idx.binIDFloor(neighborCoord))
			}
		}
		return out
	}

	out := make([]uint64, 0, 27)
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			for k := -1; k <= 1; k++ {
				neighborCoord := vec.Vec{
					X: coord.X + vec.Real(i)*idx.binSpacing,
					Y: coord.Y + vec.Real(j)*idx.binSpacing,
					Z: coord.Z + vec.Real(k)*idx.binSpacing,
				}
				out = append(out, idx.binIDFloor(neighborCoord))
			}
		}
	}
	return out
}

// Neighbors returns the neighbor list for particle i, valid for the
// position_star snapshot passed to the most recent Find call (spec §3
// invariant 5, §4.4 lifecycle).
func (idx *Index) Neighbors(i int) NeighborList { return idx.lists[i] }
