package vec

import (
	"math"
	"testing"
)

func closeEnough(t *testing.T, got, want, tol Real, msg string) {
	t.Helper()
	if math.Abs(float64(got-want)) > float64(tol) {
		t.Fatalf("%s: got %v want %v", msg, got, want)
	}
}

func TestVecArithmetic3D(t *testing.T) {
	SetDim(D3)
	a := Vec{1, 2, 3}
	b := Vec{4, 5, 6}

	closeEnough(t, a.Add(b).X, 5, 1e-12, "add.x")
	closeEnough(t, a.Sub(b).Z, -3, 1e-12, "sub.z")
	closeEnough(t, a.Dot(b), 32, 1e-12, "dot")

	c := a.Cross(b)
	closeEnough(t, c.X, -3, 1e-12, "cross.x")
	closeEnough(t, c.Y, 6, 1e-12, "cross.y")
	closeEnough(t, c.Z, -3, 1e-12, "cross.z")

	closeEnough(t, a.MagnitudeSquared(), 14, 1e-12, "mag2")
}

func TestVecDot2D(t *testing.T) {
	SetDim(D2)
	defer SetDim(D3)

	a := Vec{3, 4, 100}
	closeEnough(t, a.Magnitude(), 5, 1e-9, "mag ignores z in 2D")
}

func TestVecClamp(t *testing.T) {
	SetDim(D3)
	a := Vec{-1, 5, 10}
	c := a.Clamp(0, 4)
	closeEnough(t, c.X, 0, 1e-12, "clamp.x")
	closeEnough(t, c.Y, 4, 1e-12, "clamp.y")
	closeEnough(t, c.Z, 4, 1e-12, "clamp.z")
}

func TestVecNormalize(t *testing.T) {
	SetDim(D3)
	a := Vec{3, 4, 0}
	n := a.Normalize()
	closeEnough(t, n.Magnitude(), 1, 1e-9, "unit length")
}

func TestAABBVolume(t *testing.T) {
	SetDim(D3)
	box := AABB{Min: Vec{0, 0, 0}, Max: Vec{2, 3, 4}}
	closeEnough(t, box.Volume(), 24, 1e-12, "3D volume")

	SetDim(D2)
	defer SetDim(D3)
	box2 := AABB{Min: Vec{X: 0, Y: 0}, Max: Vec{X: 2, Y: 3}}
	closeEnough(t, box2.Volume(), 6, 1e-12, "2D area")
}

func TestBinCountInVolume(t *testing.T) {
	SetDim(D3)
	box := AABB{Min: Vec{0, 0, 0}, Max: Vec{1, 1, 1}}
	counts := BinCountInVolume(box, 0.25)
	if counts[0] != 4 || counts[1] != 4 || counts[2] != 4 {
		t.Fatalf("unexpected bin counts: %v", counts)
	}
}
