package solver

import (
	"math"

	"github.com/cpmech/gosph/params"
	"github.com/cpmech/gosph/vec"
)

// applyBoundaryConditions pushes position outside the fixed mover-sphere
// obstacle, then clamps it into the domain boundary (spec §4.5). Applied
// wherever position_star is written.
func applyBoundaryConditions(position vec.Vec, p *params.Parameters) vec.Vec {
	moverRadius := params.MoverRadius()
	d := position.Sub(p.MoverCenter)
	drSquared := d.MagnitudeSquared()
	if drSquared < moverRadius*moverRadius {
		dr := vec.Real(math.Sqrt(float64(drSquared)))
		position = position.Add(d.Scale((moverRadius - dr) / dr))
	}
	return position.ClampVec(p.Boundary.Min, p.Boundary.Max)
}
