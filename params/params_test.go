package params

import (
	"math"
	"testing"

	"github.com/cpmech/gosph/vec"
)

func TestDeriveDefaultsFromSpacing(t *testing.T) {
	vec.SetDim(vec.D3)
	p := &Parameters{
		InitialGlobalParticleCount: 1000,
		InitialFluid:               vec.AABB{Min: vec.Zero, Max: vec.Vec{X: 1, Y: 1, Z: 1}},
		ParticleRestSpacing:        Sentinel,
		SmoothingRadius:            Sentinel,
		NeighborBinSpacing:         Sentinel,
		SolveStepCount:             4,
		TimeStep:                   0.008,
		MaxSpeed:                   Sentinel,
		RestDensity:                1000, // configured density, must be overridden
	}
	p.DeriveDefaults()

	wantSpacing := vec.Real(math.Pow(1.0/1000.0, 1.0/3.0))
	if math.Abs(float64(p.ParticleRestSpacing-wantSpacing)) > 1e-9 {
		t.Fatalf("particle_rest_spacing = %v, want %v", p.ParticleRestSpacing, wantSpacing)
	}
	if math.Abs(float64(p.SmoothingRadius-1.8*wantSpacing)) > 1e-9 {
		t.Fatalf("smoothing_radius = %v, want 1.8*spacing", p.SmoothingRadius)
	}
	if math.Abs(float64(p.NeighborBinSpacing-1.2*p.SmoothingRadius)) > 1e-9 {
		t.Fatalf("neighbor_bin_spacing = %v, want 1.2*h", p.NeighborBinSpacing)
	}
	if p.ConfiguredDensity != 1000 {
		t.Fatalf("configured density not preserved: %v", p.ConfiguredDensity)
	}
	wantRestDensity := 1.0 / math.Pow(float64(wantSpacing), 3)
	if math.Abs(float64(p.RestDensity)-wantRestDensity) > 1e-6 {
		t.Fatalf("rest_density = %v, want derived %v (not the configured density)", p.RestDensity, wantRestDensity)
	}
	if p.RestMass != 1 {
		t.Fatalf("rest_mass = %v, want 1", p.RestMass)
	}
}

func TestDeriveDefaultsSkipsConfiguredValues(t *testing.T) {
	vec.SetDim(vec.D2)
	p := &Parameters{
		ParticleRestSpacing: 0.05,
		SmoothingRadius:     0.1,
		NeighborBinSpacing:  0.2,
		MaxSpeed:            3,
		SolveStepCount:      4,
		TimeStep:            0.01,
	}
	p.DeriveDefaults()
	if p.SmoothingRadius != 0.1 {
		t.Fatalf("explicit smoothing_radius overwritten: %v", p.SmoothingRadius)
	}
	if p.MaxSpeed != 3 {
		t.Fatalf("explicit max_speed overwritten: %v", p.MaxSpeed)
	}
}

func TestModeBits(t *testing.T) {
	var m Mode
	m.Set(EmitterActive)
	m.Set(PauseCompute)
	if !m.Has(EmitterActive) || !m.Has(PauseCompute) {
		t.Fatalf("expected both bits set: %b", m)
	}
	if m.Has(EditView) {
		t.Fatalf("unexpected bit set: %b", m)
	}
	m.Clear(EmitterActive)
	if m.Has(EmitterActive) {
		t.Fatalf("clear did not unset bit")
	}
	m.Toggle(Exit)
	if !m.Has(Exit) {
		t.Fatalf("toggle did not set bit")
	}
	m.Toggle(Exit)
	if m.Has(Exit) {
		t.Fatalf("toggle did not unset bit")
	}
}

func TestValidatePanicsOnNonPositiveRestDensity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for non-positive rest_density")
		}
	}()
	p := &Parameters{RestDensity: 0, SmoothingRadius: 1, TimeStep: 1, MaxParticlesLocal: 1}
	p.Validate()
}
