// Package solver implements the PBD-SPH simulation step (spec component E,
// §4.5), grounded on the source's Particles<Real,Dim> physics methods
// (Simulation/Source/particles.h): predict, constrain-project (lambda/delta
// position, iterated S times), then velocity integration, surface tension,
// viscosity and vorticity confinement.
package solver

import (
	"github.com/cpmech/gosph/algo"
	"github.com/cpmech/gosph/grid"
	"github.com/cpmech/gosph/krn"
	"github.com/cpmech/gosph/params"
	"github.com/cpmech/gosph/prt"
	"github.com/cpmech/gosph/vec"
)

// HaloSync is the subset of the distributor's halo-exchange protocol the
// solver needs between pressure-projection iterations (spec §4.6). A
// single-process run can satisfy this with a no-op.
type HaloSync interface {
	SyncScalar(field []vec.Real)
	SyncVec(field []vec.Vec)
}

// NoopHaloSync is the HaloSync used by single-process runs (spec §9: "a
// 1-rank run is a degenerate distributed run, not a special case").
type NoopHaloSync struct{}

func (NoopHaloSync) SyncScalar(field []vec.Real) {}
func (NoopHaloSync) SyncVec(field []vec.Vec)     {}

// Solver runs one PBD-SPH step over a particle store, using a neighbor
// index rebuilt once per step.
type Solver struct {
	backend  algo.Backend
	store    *prt.Store
	index    *grid.Index
	params   *params.Parameters
	config   Config
}

// New builds a solver over the given store and neighbor index. Both must be
// sized for the same max_particles_local as params.MaxParticlesLocal.
func New(backend algo.Backend, store *prt.Store, index *grid.Index, p *params.Parameters, config Config) *Solver {
	return &Solver{backend: backend, store: store, index: index, params: p, config: config}
}

// Step runs the constraint-projection and integration pipeline (spec §4.5)
// over residentSpan (this process's owned particles) and localSpan
// (resident+halo). halo is used to propagate
// lambda/position_star/density/velocity/vorticity between the inner-loop
// iterations.
//
// External-force application and position prediction are NOT part of Step:
// the source (main.cpp) runs apply_external_forces/predict_positions over
// resident_span *before* domain balancing and halo exchange, so that
// decomposition and halo selection see this step's predicted position_star
// rather than the previous step's committed position. Callers must invoke
// ApplyExternalForces and PredictPositions over the resident span first,
// then run domain balancing/sync, and only then call Step.
func (s *Solver) Step(residentSpan, localSpan algo.Span, halo HaloSync) {
	p := s.params
	st := s.store

	s.index.Find(localSpan, localSpan, st.PositionStar)

	for iter := 0; iter < p.SolveStepCount; iter++ {
		s.computeDensities(residentSpan)
		s.computePressureLambdas(residentSpan)
		halo.SyncScalar(st.Lambda)

		s.computePressureDps(residentSpan)
		s.updatePositionStars(residentSpan)
		halo.SyncVec(st.PositionStar)

		if s.config.SurfaceTensionPasses >= 1 {
			s.applySurfaceTension(localSpan, residentSpan)
		}
	}

	s.updateVelocities(localSpan)
	halo.SyncScalar(st.Density)

	if s.config.SurfaceTensionPasses >= 2 {
		s.applySurfaceTension(localSpan, residentSpan)
	}

	s.applyViscosity(residentSpan)
	halo.SyncVec(st.Velocity)

	s.computeVorticity(residentSpan)
	halo.SyncVec(st.ScratchVec)

	s.applyVorticity(residentSpan)
	s.applyViscosity(residentSpan)

	s.updatePositions(residentSpan)
}

// ApplyExternalForces applies gravity to span (spec §4.5 step 1). Callers
// run this over the resident span, before domain balancing/halo sync, per
// Step's doc comment.
func (s *Solver) ApplyExternalForces(span algo.Span) {
	g, dt := s.params.Gravity, s.params.TimeStep
	st := s.store
	s.backend.ForEachIndex(span, func(p int) {
		st.Velocity[p].Y += g * dt
	})
}

// PredictPositions writes position_star = position + velocity*dt over span
// (spec §4.5 step 2). Callers run this over the resident span, before
// domain balancing/halo sync, per Step's doc comment.
func (s *Solver) PredictPositions(span algo.Span) {
	dt := s.params.TimeStep
	st := s.store
	p := s.params
	s.backend.ForEachIndex(span, func(i int) {
		positionStar := st.Position[i].Add(st.Velocity[i].Scale(dt))
		st.PositionStar[i] = applyBoundaryConditions(positionStar, p)
	})
}

// coincidenceThreshold guards against zero-distance kernel evaluation when
// two particles land on top of each other (spec §4.5 step 4, collision
// regularization).
const coincidenceThreshold = vec.Real(1e-8)
const coincidenceNudge = vec.Real(50)

func (s *Solver) computeDensities(span algo.Span) {
	w := krn.NewPoly6(s.params.SmoothingRadius)
	w0 := w.Eval(0)
	mass := s.params.RestMass
	dt := s.params.TimeStep
	st := s.store

	s.backend.ForEachIndex(span, func(p int) {
		density := mass * w0
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			if st.PositionStar[p].Sub(st.PositionStar[q]).Magnitude() < coincidenceThreshold {
				st.PositionStar[p] = st.PositionStar[p].Sub(st.Velocity[p].Scale(dt / coincidenceNudge))
			}
			rMag := st.PositionStar[p].Sub(st.PositionStar[q]).Magnitude()
			density += mass * w.Eval(rMag)
		}
		st.Density[p] = density
	})
}

func (s *Solver) computePressureLambdas(span algo.Span) {
	delW := krn.NewDelSpikey(s.params.SmoothingRadius)
	restDensity := s.params.RestDensity
	epsilon := s.params.LambdaEpsilon
	st := s.store

	s.backend.ForEachIndex(span, func(p int) {
		constraint := st.Density[p]/restDensity - 1
		cp := constraint
		if cp < 0 {
			cp = 0
		}

		var sumC vec.Real
		sumGradient := vec.Zero
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			gradient := delW.Eval(st.PositionStar[p], st.PositionStar[q]).Scale(-1 / restDensity)
			sumGradient = sumGradient.Sub(gradient)
			sumC += gradient.MagnitudeSquared()
		}
		sumC += sumGradient.MagnitudeSquared()

		st.Lambda[p] = -cp / (sumC + epsilon)
	})
}

func (s *Solver) computePressureDps(span algo.Span) {
	delW := krn.NewDelSpikey(s.params.SmoothingRadius)
	invRestDensity := 1 / s.params.RestDensity
	st := s.store

	s.backend.ForEachIndex(span, func(p int) {
		dp := vec.Zero
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			dp = dp.Add(delW.Eval(st.PositionStar[p], st.PositionStar[q]).Scale(st.Lambda[p] + st.Lambda[q]))
		}
		st.ScratchVec[p] = dp.Scale(invRestDensity)
	})
}

func (s *Solver) updatePositionStars(span algo.Span) {
	st := s.store
	p := s.params
	s.backend.ForEachIndex(span, func(i int) {
		updated := st.PositionStar[i].Add(st.ScratchVec[i])
		st.PositionStar[i] = applyBoundaryConditions(updated, p)
	})
}

func (s *Solver) updateVelocities(span algo.Span) {
	dt := s.params.TimeStep
	maxSpeed := s.params.MaxSpeed
	st := s.store
	s.backend.ForEachIndex(span, func(p int) {
		velocity := st.PositionStar[p].Sub(st.Position[p]).DivS(dt)
		if velocity.MagnitudeSquared() < 1e-6*maxSpeed {
			velocity = vec.Zero
		}
		st.Velocity[p] = velocity
	})
}

func (s *Solver) updatePositions(span algo.Span) {
	st := s.store
	s.backend.ForEachIndex(span, func(p int) {
		st.Position[p] = st.PositionStar[p]
	})
}

const surfaceTensionREpsilonScale = vec.Real(1e-6)

// applySurfaceTension runs the two-pass color-field/cohesion term (spec
// §4.5): a gradient pass over colorFieldSpan (needs the full local span, so
// every neighbor's gradient is available) then the force pass over
// tensionSpan (residents only).
func (s *Solver) applySurfaceTension(colorFieldSpan, tensionSpan algo.Span) {
	delW := krn.NewDelSpikey(s.params.SmoothingRadius)
	cSpline := krn.NewCSpline(s.params.SmoothingRadius)
	h := s.params.SmoothingRadius
	gamma := s.params.SurfaceTensionGamma
	restDensity := s.params.RestDensity
	dt := s.params.TimeStep
	st := s.store

	s.backend.ForEachIndex(colorFieldSpan, func(p int) {
		color := vec.Zero
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			color = color.Add(delW.Eval(st.PositionStar[p], st.PositionStar[q]).DivS(st.Density[q]))
		}
		st.ScratchVec[p] = color.Scale(h)
	})

	rEpsilon := h * surfaceTensionREpsilonScale
	s.backend.ForEachIndex(tensionSpan, func(p int) {
		force := vec.Zero
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			r := st.PositionStar[p].Sub(st.PositionStar[q])
			rMag := r.Magnitude()
			if rMag < rEpsilon {
				rMag = rEpsilon
			}
			cohesion := r.Scale(-gamma * cSpline.Eval(rMag) / rMag)
			curvature := st.ScratchVec[p].Sub(st.ScratchVec[q]).Scale(-gamma)
			k := 2 * restDensity / (st.Density[p] + st.Density[q])
			force = force.Add(cohesion.Add(curvature).Scale(k))
		}
		st.Velocity[p] = st.Velocity[p].Add(force.DivS(st.Density[p]).Scale(dt))
	})
}

func (s *Solver) applyViscosity(span algo.Span) {
	w := krn.NewPoly6(s.params.SmoothingRadius)
	c := s.params.Viscosity
	st := s.store
	s.backend.ForEachIndex(span, func(p int) {
		dv := vec.Zero
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			rMag := st.PositionStar[p].Sub(st.PositionStar[q]).Magnitude()
			dv = dv.Add(st.Velocity[q].Sub(st.Velocity[p]).Scale(w.Eval(rMag) / st.Density[q]))
		}
		st.Velocity[p] = st.Velocity[p].Add(dv.Scale(c))
	})
}

func (s *Solver) computeVorticity(span algo.Span) {
	delW := krn.NewDelSpikey(s.params.SmoothingRadius)
	st := s.store
	s.backend.ForEachIndex(span, func(p int) {
		vorticity := vec.Zero
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			del := delW.Eval(st.PositionStar[p], st.PositionStar[q])
			vDiff := st.Velocity[q].Sub(st.Velocity[p])
			vorticity = vorticity.Add(vDiff.Cross(del))
		}
		st.ScratchVec[p] = vorticity
	})
}

func (s *Solver) applyVorticity(span algo.Span) {
	delW := krn.NewDelSpikey(s.params.SmoothingRadius)
	coef := s.params.VorticityCoef
	dt := s.params.TimeStep
	st := s.store
	s.backend.ForEachIndex(span, func(p int) {
		eta := vec.Zero
		neighbors := s.index.Neighbors(p)
		for n := 0; n < neighbors.Count; n++ {
			q := neighbors.Indices[n]
			del := delW.Eval(st.PositionStar[p], st.PositionStar[q])
			vorticityMagnitude := st.ScratchVec[q].Magnitude()
			eta = eta.Add(del.Scale(vorticityMagnitude))
		}
		n := eta.Scale(1 / (eta.Magnitude() + vec.Epsilon))
		st.Velocity[p] = st.Velocity[p].Add(n.Cross(st.ScratchVec[p]).Scale(coef * dt))
	})
}
