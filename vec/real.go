//go:build !sph32

// Package vec implements the fixed-rank vector and AABB algebra shared by
// every other component of the solver (spec component A).
package vec

// Real is the floating point type used throughout the solver. The solver is
// precision-generic in principle (spec §2); a single process picks one
// precision at build time via the sph32 build tag (see real32.go) and never
// mixes precisions within a run (spec §1 non-goals).
type Real = float64

// Epsilon mirrors std::numeric_limits<Real>::epsilon() for the active
// precision, used by the vorticity apply step's zero-magnitude guard.
const Epsilon Real = 2.220446049250313e-16
