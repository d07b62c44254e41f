// Package params implements the process-wide simulation parameters (spec
// §3), their INI-derived defaults (spec §6.1) and the simulation-mode
// bitset. Configuration parsing is, per spec §1, an external collaborator
// specified only at interface level; this package owns the struct and the
// derivation rules, and provides a thin loader (params_ini.go) rather than
// a full `.ini` dialect.
package params

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gosph/vec"
)

// Sentinel is the INI "missing key" marker (spec §6.1).
const Sentinel = -1

// Parameters holds every process-wide, broadcast-on-change quantity named
// in spec §3.
type Parameters struct {
	MaxParticlesLocal       int
	InitialGlobalParticleCount int
	SolveStepCount           int // S
	ParticleRestSpacing      vec.Real
	ParticleRadius           vec.Real
	SmoothingRadius          vec.Real // h
	NeighborBinSpacing       vec.Real // b = 1.2h
	RestDensity              vec.Real // rho_0
	RestMass                 vec.Real // m
	Gravity                  vec.Real // g
	SurfaceTensionGamma      vec.Real // gamma
	LambdaEpsilon            vec.Real // epsilon
	KStiff                   vec.Real
	Viscosity                vec.Real // c
	TimeStep                 vec.Real // dt
	MaxSpeed                 vec.Real
	VorticityCoef            vec.Real
	Boundary                 vec.AABB
	InitialFluid             vec.AABB
	SimulationMode           Mode
	ExecutionMode            ExecutionMode
	EmitterCenter            vec.Vec
	EmitterVelocity          vec.Vec
	MoverCenter              vec.Vec

	// ConfiguredDensity is the INI `density` key, kept as read-only
	// metadata (spec §9 open question 1: RestDensity/RestMass are always
	// derived from ParticleRestSpacing, never from this field).
	ConfiguredDensity vec.Real
}

// ExecutionMode selects the §4.7 parallel backend family.
type ExecutionMode int

const (
	ExecCPU ExecutionMode = iota
	ExecGPU
)

const moverRadius = vec.Real(0.2)

// MoverRadius is the fixed mover-sphere obstacle radius (spec §4.5).
func MoverRadius() vec.Real { return moverRadius }

// EdgeWidth returns 1.2*SmoothingRadius (spec §3).
func (p *Parameters) EdgeWidth() vec.Real { return 1.2 * p.SmoothingRadius }

// MinSlabWidth returns the minimum allowed domain slab width, 3*edge_width
// (spec §3).
func (p *Parameters) MinSlabWidth() vec.Real { return 3 * p.EdgeWidth() }

// DeriveDefaults fills in every sentinel-valued scalar from the formulas in
// spec §6.1, and resolves the §9 rest-mass/rest-density override: the INI
// `density` key never feeds RestDensity; it is only preserved for display.
// Must be called once after loading, before any other component reads the
// parameters.
func (p *Parameters) DeriveDefaults() {
	n := p.InitialGlobalParticleCount
	if p.ParticleRestSpacing == Sentinel {
		if n <= 0 {
			chk.Panic("params: cannot derive particle_rest_spacing without a positive initial_global_particle_count")
		}
		vol := p.InitialFluid.Volume()
		d := 2.0
		if vec.D == vec.D3 {
			d = 3.0
		}
		p.ParticleRestSpacing = vec.Real(math.Pow(float64(vol)/float64(n), 1.0/d))
	}
	if p.SmoothingRadius == Sentinel {
		p.SmoothingRadius = 1.8 * p.ParticleRestSpacing
	}
	if p.NeighborBinSpacing == Sentinel {
		p.NeighborBinSpacing = 1.2 * p.SmoothingRadius
	}
	if p.MaxSpeed == Sentinel {
		if p.TimeStep == 0 {
			chk.Panic("params: cannot derive max_speed with time_step == 0")
		}
		p.MaxSpeed = 0.5 * p.SmoothingRadius * vec.Real(p.SolveStepCount) / p.TimeStep
	}

	// §9 open question 1: rest_mass and rest_density are always derived,
	// overriding any configured density. The configured value is kept only
	// as metadata so the override is visible, not silently dropped.
	p.ConfiguredDensity = p.RestDensity
	p.RestMass = 1
	spacingPow := math.Pow(float64(p.ParticleRestSpacing), float64(dimOf()))
	if spacingPow == 0 {
		chk.Panic("params: particle_rest_spacing must be positive")
	}
	p.RestDensity = vec.Real(1.0 / spacingPow)
}

func dimOf() int {
	if vec.D == vec.D3 {
		return 3
	}
	return 2
}

// Validate checks the fatal preconditions spec §4.5/§7 call out explicitly
// ("an assertion/abort is acceptable for clearly invalid states").
func (p *Parameters) Validate() {
	if p.RestDensity <= 0 {
		chk.Panic("params: rest_density must be positive, got %v", p.RestDensity)
	}
	if p.SmoothingRadius <= 0 {
		chk.Panic("params: smoothing_radius must be positive, got %v", p.SmoothingRadius)
	}
	if p.TimeStep == 0 {
		chk.Panic("params: time_step must be non-zero")
	}
	if p.MaxParticlesLocal <= 0 {
		chk.Panic("params: max_particles_local must be positive")
	}
}
