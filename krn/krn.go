// Package krn implements the smoothing kernels used by the solver (spec
// component B, §4.2): Poly6, gradient-Poly6, gradient-Spikey and the
// C-spline cohesion kernel, each normalized per the configured dimension.
// Kernels are stateless value types, safe to copy into parallel-for bodies
// exactly as the source's DEVICE_CALLABLE functor classes are.
package krn

import (
	"math"

	"github.com/cpmech/gosph/vec"
)


// Poly6 is the density-estimation kernel, normalized per spec §4.2.
type Poly6 struct {
	h, h2, norm vec.Real
}

// NewPoly6 builds a Poly6 kernel for smoothing radius h, normalized for the
// process-wide configured dimension.
func NewPoly6(h vec.Real) Poly6 {
	var norm vec.Real
	if vec.D == vec.D3 {
		norm = vec.Real(315.0 / (64.0 * math.Pi * math.Pow(float64(h), 9)))
	} else {
		norm = vec.Real(4.0 / (math.Pi * math.Pow(float64(h), 8)))
	}
	return Poly6{h: h, h2: h * h, norm: norm}
}

// Eval returns the scalar weight for a scalar distance r, zero beyond h.
func (k Poly6) Eval(r vec.Real) vec.Real {
	if r > k.h {
		return 0
	}
	d := k.h2 - r*r
	return k.norm * d * d * d
}

// DelPoly6 is the gradient of Poly6. The solver does not call it; its
// color-field pass uses DelSpikey.
type DelPoly6 struct {
	h, h2, norm vec.Real
}

func NewDelPoly6(h vec.Real) DelPoly6 {
	var norm vec.Real
	if vec.D == vec.D3 {
		norm = vec.Real(-945.0 / (32.0 * math.Pi * math.Pow(float64(h), 9)))
	} else {
		norm = vec.Real(-24.0 / (math.Pi * math.Pow(float64(h), 8)))
	}
	return DelPoly6{h: h, h2: h * h, norm: norm}
}

// Eval returns the gradient pointing from q to p; zero beyond h.
func (k DelPoly6) Eval(p, q vec.Vec) vec.Vec {
	r := p.Sub(q)
	r2 := r.MagnitudeSquared()
	if r2 > k.h2 {
		return vec.Zero
	}
	d := k.h2 - r2
	return r.Scale(k.norm * d * d)
}

// DelSpikey is the gradient used by the pressure/λ constraint, vorticity
// and surface-tension color-field terms. A small ε guards the r-division
// (spec §4.2).
type DelSpikey struct {
	h, norm, rEpsilon vec.Real
}

func NewDelSpikey(h vec.Real) DelSpikey {
	var norm vec.Real
	if vec.D == vec.D3 {
		norm = vec.Real(-45.0 / (math.Pi * math.Pow(float64(h), 6)))
	} else {
		norm = vec.Real(-30.0 / (math.Pi * math.Pow(float64(h), 5)))
	}
	return DelSpikey{h: h, norm: norm, rEpsilon: vec.Epsilon}
}

// Eval returns zero when |p-q| >= h (beyond h by the cutoff, at h because
// the (h-r)^2 factor vanishes) or |p-q| == 0 (the p-q vector it scales is
// zero, and the r+ε guard keeps the division finite).
func (k DelSpikey) Eval(p, q vec.Vec) vec.Vec {
	r := p.Sub(q)
	rMag := r.Magnitude()
	if rMag > k.h {
		return vec.Zero
	}
	d := k.h - rMag
	return r.Scale(k.norm * d * d / (rMag + k.rEpsilon))
}

// CSpline is the cohesion kernel used by surface tension.
type CSpline struct {
	h, norm vec.Real
}

func NewCSpline(h vec.Real) CSpline {
	var norm vec.Real
	if vec.D == vec.D3 {
		norm = vec.Real(32.0 / (math.Pi * math.Pow(float64(h), 9)))
	} else {
		norm = vec.Real(32.0 / (math.Pi * math.Pow(float64(h), 8)))
	}
	return CSpline{h: h, norm: norm}
}

// Eval is the piecewise cohesion term: one branch for r<=h/2, another for
// h/2<r<=h, zero beyond h (spec §4.2).
func (k CSpline) Eval(r vec.Real) vec.Real {
	if r > k.h {
		return 0
	}
	hr := k.h - r
	cube := hr * hr * hr * r * r * r
	if r <= k.h*0.5 {
		h6 := k.h * k.h * k.h * k.h * k.h * k.h
		return k.norm * (2*cube - h6/64.0)
	}
	return k.norm * cube
}
