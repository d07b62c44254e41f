package vec

import "math"

// Vec is a D-tuple of Real with componentwise arithmetic (spec §3). The Z
// component is simply unused when vec.D == D2, the same way the original
// C++ source keeps a dense 3-component struct and ignores Z in 2-D builds.
type Vec struct {
	X, Y, Z Real
}

// Zero is the additive identity.
var Zero = Vec{}

// New builds a Vec from a value applied to every active component, mirroring
// the source's `Vec<Real,Dim>{scalar}` uniform-initialization constructor.
func New(v Real) Vec {
	if D == D3 {
		return Vec{v, v, v}
	}
	return Vec{X: v, Y: v}
}

func (a Vec) Add(b Vec) Vec { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec) Sub(b Vec) Vec { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec) Mul(b Vec) Vec { return Vec{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a Vec) Div(b Vec) Vec { return Vec{a.X / b.X, a.Y / b.Y, a.Z / b.Z} }

func (a Vec) Scale(s Real) Vec  { return Vec{a.X * s, a.Y * s, a.Z * s} }
func (a Vec) DivS(s Real) Vec   { return Vec{a.X / s, a.Y / s, a.Z / s} }
func (a Vec) AddS(s Real) Vec   { return Vec{a.X + s, a.Y + s, a.Z + s} }
func (a Vec) Neg() Vec          { return Vec{-a.X, -a.Y, -a.Z} }

// Scale is also expressible the other way round for readability at call
// sites, e.g. vec.Scale(2, v).
func Scale(s Real, a Vec) Vec { return a.Scale(s) }

func (a Vec) Dot(b Vec) Real {
	if D == D3 {
		return a.X*b.X + a.Y*b.Y + a.Z*b.Z
	}
	return a.X*b.X + a.Y*b.Y
}

// Cross is only meaningful in 3-D; spec §3 restricts it to the 3-D build.
func (a Vec) Cross(b Vec) Vec {
	return Vec{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec) MagnitudeSquared() Real { return a.Dot(a) }

func (a Vec) Magnitude() Real { return Real(math.Sqrt(float64(a.MagnitudeSquared()))) }

// InverseMagnitude returns 1/|a|; callers needing a normalized vector use
// this rather than dividing twice.
func (a Vec) InverseMagnitude() Real { return 1 / a.Magnitude() }

func (a Vec) Normalize() Vec { return a.Scale(a.InverseMagnitude()) }

func (a Vec) Floor() Vec {
	return Vec{
		X: Real(math.Floor(float64(a.X))),
		Y: Real(math.Floor(float64(a.Y))),
		Z: Real(math.Floor(float64(a.Z))),
	}
}

func (a Vec) Ceil() Vec {
	return Vec{
		X: Real(math.Ceil(float64(a.X))),
		Y: Real(math.Ceil(float64(a.Y))),
		Z: Real(math.Ceil(float64(a.Z))),
	}
}

func clampOne(v, lo, hi Real) Real {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp clamps every active component to the scalar bounds [lo,hi].
func (a Vec) Clamp(lo, hi Real) Vec {
	return Vec{clampOne(a.X, lo, hi), clampOne(a.Y, lo, hi), clampOne(a.Z, lo, hi)}
}

// ClampVec clamps componentwise to per-component bounds.
func (a Vec) ClampVec(lo, hi Vec) Vec {
	return Vec{
		X: clampOne(a.X, lo.X, hi.X),
		Y: clampOne(a.Y, lo.Y, hi.Y),
		Z: clampOne(a.Z, lo.Z, hi.Z),
	}
}

// Component returns the i'th component (0=X,1=Y, anything else Z).
func (a Vec) Component(i int) Real {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	default:
		return a.Z
	}
}
