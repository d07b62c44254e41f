package params

import (
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/cpmech/gosl/chk"
	"github.com/go-ini/ini"

	"github.com/cpmech/gosph/vec"
)

// Load reads a parameters file per spec §6.1: sections [SimParameters],
// [PhysicalParameters], [Boundary], [InitialFluid], [Mover]; vector keys are
// comma-separated "x,y[,z]"; missing scalar keys default to Sentinel
// (except [SimParameters] dimension, below).
// Derivation (DeriveDefaults) is not run here, matching the source's
// two-step "read, then derive" sequence.
//
// [SimParameters] dimension (2 or 3, default 3) is read first and applied
// via vec.SetDim before any other key is parsed, since every vector-valued
// key below and every later derivation reads the process-wide rank.
//
// Every process in a run reads the same path, often a shared or networked
// filesystem mount; the read gets one bounded exponential-backoff retry
// window before a failure is reported, rather than failing a whole launch
// on a single transient stat/open error.
func Load(path string) (*Parameters, error) {
	var cfg *ini.File
	err := backoff.Retry(func() error {
		var loadErr error
		cfg, loadErr = ini.Load(path)
		return loadErr
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		return nil, chk.Err("params: cannot load %q: %v", path, err)
	}

	p := &Parameters{}

	sim := cfg.Section("SimParameters")
	dimension := intKey(sim, "dimension", 3)
	if dimension == 2 {
		vec.SetDim(vec.D2)
	} else {
		vec.SetDim(vec.D3)
	}

	p.MaxParticlesLocal = int(intKey(sim, "max_particles_local", Sentinel))
	p.InitialGlobalParticleCount = int(intKey(sim, "initial_global_particle_count", Sentinel))
	p.SolveStepCount = int(intKey(sim, "solve_step_count", Sentinel))
	p.TimeStep = realKey(sim, "time_step", Sentinel)
	p.ExecutionMode = ExecCPU
	if sim.HasKey("execution_mode") && strings.EqualFold(sim.Key("execution_mode").String(), "gpu") {
		p.ExecutionMode = ExecGPU
	}

	phys := cfg.Section("PhysicalParameters")
	p.ParticleRestSpacing = realKey(phys, "particle_rest_spacing", Sentinel)
	p.ParticleRadius = realKey(phys, "particle_radius", Sentinel)
	p.SmoothingRadius = realKey(phys, "smoothing_radius", Sentinel)
	p.NeighborBinSpacing = realKey(phys, "neighbor_bin_spacing", Sentinel)
	p.RestDensity = realKey(phys, "density", Sentinel)
	p.Gravity = realKey(phys, "gravity", Sentinel)
	p.SurfaceTensionGamma = realKey(phys, "surface_tension", Sentinel)
	p.LambdaEpsilon = realKey(phys, "lambda_epsilon", Sentinel)
	p.KStiff = realKey(phys, "k_stiff", Sentinel)
	p.Viscosity = realKey(phys, "viscosity", Sentinel)
	p.MaxSpeed = realKey(phys, "max_speed", Sentinel)
	p.VorticityCoef = realKey(phys, "vorticity_coef", Sentinel)

	p.Boundary = aabbFrom(cfg.Section("Boundary"))
	p.InitialFluid = aabbFrom(cfg.Section("InitialFluid"))

	mover := cfg.Section("Mover")
	p.MoverCenter = vecKey(mover, "center")

	emitter := cfg.Section("SimParameters")
	p.EmitterCenter = vecKey(emitter, "emitter_center")
	p.EmitterVelocity = vecKey(emitter, "emitter_velocity")

	return p, nil
}

func aabbFrom(s *ini.Section) vec.AABB {
	return vec.AABB{
		Min: vecKey(s, "min"),
		Max: vecKey(s, "max"),
	}
}

func intKey(s *ini.Section, name string, def vec.Real) int64 {
	if !s.HasKey(name) {
		return int64(def)
	}
	v, err := s.Key(name).Int64()
	if err != nil {
		return int64(def)
	}
	return v
}

func realKey(s *ini.Section, name string, def vec.Real) vec.Real {
	if !s.HasKey(name) {
		return def
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s.Key(name).String()), 64)
	if err != nil {
		return def
	}
	return vec.Real(v)
}

// vecKey parses a comma-separated "x,y[,z]" key, ignoring whitespace.
// Missing keys or short components default to 0.
func vecKey(s *ini.Section, name string) vec.Vec {
	if !s.HasKey(name) {
		return vec.Zero
	}
	parts := strings.Split(s.Key(name).String(), ",")
	var comps [3]vec.Real
	for i := 0; i < len(parts) && i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			continue
		}
		comps[i] = vec.Real(v)
	}
	return vec.Vec{X: comps[0], Y: comps[1], Z: comps[2]}
}
