package vec

// AABB is an axis-aligned bounding box, a pair of Vecs (min,max) (spec §3).
type AABB struct {
	Min, Max Vec
}

func (b AABB) Length() Real { return b.Max.X - b.Min.X }
func (b AABB) Height() Real { return b.Max.Y - b.Min.Y }
func (b AABB) Depth() Real  { return b.Max.Z - b.Min.Z }

// Extent returns the per-axis span, i.e. Max-Min.
func (b AABB) Extent() Vec { return b.Max.Sub(b.Min) }

func (b AABB) Center() Vec { return b.Min.Add(b.Max).Scale(0.5) }

// Volume returns area in 2-D, volume in 3-D (spec §4.1).
func (b AABB) Volume() Real {
	e := b.Extent()
	if D == D3 {
		return e.X * e.Y * e.Z
	}
	return e.X * e.Y
}

// Contains reports whether p lies within the box on every active axis.
func (b AABB) Contains(p Vec) bool {
	if p.X < b.Min.X || p.X > b.Max.X || p.Y < b.Min.Y || p.Y > b.Max.Y {
		return false
	}
	if D == D3 && (p.Z < b.Min.Z || p.Z > b.Max.Z) {
		return false
	}
	return true
}

// BinCountInVolume returns floor(extent/s) per axis, the integer lattice
// dimensions used by fluid seeding and the neighbor grid (spec §4.1).
func BinCountInVolume(b AABB, s Real) [3]int {
	e := b.Extent()
	counts := [3]Real{e.X / s, e.Y / s, e.Z / s}
	var out [3]int
	n := 2
	if D == D3 {
		n = 3
	}
	for i := 0; i < n; i++ {
		if counts[i] < 0 {
			out[i] = 0
			continue
		}
		out[i] = int(counts[i])
	}
	return out
}
