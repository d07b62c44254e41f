package krn

import (
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/cpmech/gosph/vec"
)

// TestPoly6NormalizationConverges3D is scenario S4: a uniform lattice of
// spacing 2h/100 filling a region just past h around the origin should sum
// Poly6 weights * dx^3 to 1, within 0.1% (spec §8 S4, §4.2 testable
// property 7).
func TestPoly6NormalizationConverges3D(t *testing.T) {
	vec.SetDim(vec.D3)
	const h = 0.05
	dx := 2 * h / 100
	extent := h * 1.02

	w := NewPoly6(h)

	var weights []vec.Real
	for x := -extent; x <= extent; x += dx {
		for y := -extent; y <= extent; y += dx {
			for z := -extent; z <= extent; z += dx {
				r := vec.Vec{X: x, Y: y, Z: z}.Magnitude()
				weights = append(weights, w.Eval(r))
			}
		}
	}

	sum := floats.Sum(weights) * dx * dx * dx
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("Poly6 3-D normalization sum = %v, want 1.0 +/- 0.001", sum)
	}
}

// TestPoly6NormalizationConverges2D is S4's 2-D counterpart.
func TestPoly6NormalizationConverges2D(t *testing.T) {
	vec.SetDim(vec.D2)
	const h = 0.05
	dx := 2 * h / 100
	extent := h * 1.02

	w := NewPoly6(h)

	var weights []vec.Real
	for x := -extent; x <= extent; x += dx {
		for y := -extent; y <= extent; y += dx {
			r := vec.Vec{X: x, Y: y}.Magnitude()
			weights = append(weights, w.Eval(r))
		}
	}

	sum := floats.Sum(weights) * dx * dx
	if sum < 0.999 || sum > 1.001 {
		t.Fatalf("Poly6 2-D normalization sum = %v, want 1.0 +/- 0.001", sum)
	}
}

func TestPoly6ZeroBeyondSmoothingRadius(t *testing.T) {
	vec.SetDim(vec.D3)
	w := NewPoly6(0.1)
	if w.Eval(0.10001) != 0 {
		t.Fatalf("Poly6 should vanish beyond h")
	}
	if w.Eval(0) <= 0 {
		t.Fatalf("Poly6 should be positive at r=0")
	}
}

func TestDelSpikeyPointsTowardNeighbor(t *testing.T) {
	vec.SetDim(vec.D3)
	delW := NewDelSpikey(0.1)
	p := vec.Vec{X: 0.05, Y: 0, Z: 0}
	q := vec.Zero
	g := delW.Eval(p, q)
	if g.X >= 0 {
		t.Fatalf("negative normalization constant should make the gradient point from p back toward q (-X), got %v", g)
	}
}
