// Package prt implements the particle store: SoA buffers for every
// per-particle field, append/pop, and fluid-volume seeding (spec component
// C, §4.3). It is grounded on the source's Particles<Real,Dim> class and on
// gofem's own ownership discipline (§9: "one owning store per process;
// every other component borrows via index-keyed views").
package prt

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gosph/vec"
)

// Store holds every particle field as a flat slice sized to a fixed
// capacity (spec §3, §9: "all particle arrays are sized once to
// max_particles_local; no reallocation during a run").
type Store struct {
	capacity int
	size     int

	Position     []vec.Vec
	PositionStar []vec.Vec
	Velocity     []vec.Vec
	Density      []vec.Real
	Lambda       []vec.Real
	ScratchVec   []vec.Vec
	ScratchScal  []vec.Real
}

// New allocates a store with the given maximum capacity (N_max).
func New(capacity int) *Store {
	return &Store{
		capacity:     capacity,
		Position:     make([]vec.Vec, 0, capacity),
		PositionStar: make([]vec.Vec, 0, capacity),
		Velocity:     make([]vec.Vec, 0, capacity),
		Density:      make([]vec.Real, 0, capacity),
		Lambda:       make([]vec.Real, 0, capacity),
		ScratchVec:   make([]vec.Vec, 0, capacity),
		ScratchScal:  make([]vec.Real, 0, capacity),
	}
}

func (s *Store) Size() int      { return s.size }
func (s *Store) Capacity() int  { return s.capacity }
func (s *Store) Available() int { return s.capacity - s.size }

// Append adds a single particle with the given position/position-star/
// velocity; every scalar field defaults to zero (spec §4.3).
func (s *Store) Append(position, positionStar, velocity vec.Vec) {
	s.AppendMany([]vec.Vec{position}, []vec.Vec{positionStar}, []vec.Vec{velocity}, 1)
}

// AppendMany is the batched append. It panics ("fails loudly") if count
// exceeds Available(), per spec §4.3's hard-engineering-error contract.
func (s *Store) AppendMany(positions, positionStars, velocities []vec.Vec, count int) {
	if count > s.Available() {
		chk.Panic("prt: append of %d particles exceeds available capacity %d (size=%d, capacity=%d)",
			count, s.Available(), s.size, s.capacity)
	}
	if count == 0 {
		return
	}
	s.Position = append(s.Position, positions[:count]...)
	s.PositionStar = append(s.PositionStar, positionStars[:count]...)
	s.Velocity = append(s.Velocity, velocities[:count]...)
	for i := 0; i < count; i++ {
		s.Density = append(s.Density, 0)
		s.Lambda = append(s.Lambda, 0)
		s.ScratchVec = append(s.ScratchVec, vec.Zero)
		s.ScratchScal = append(s.ScratchScal, 0)
	}
	s.size += count
}

// Pop removes count particles from the tail of every field atomically
// (spec §3 invariant 6).
func (s *Store) Pop(count int) {
	if count > s.size {
		chk.Panic("prt: pop of %d exceeds current size %d", count, s.size)
	}
	newSize := s.size - count
	s.Position = s.Position[:newSize]
	s.PositionStar = s.PositionStar[:newSize]
	s.Velocity = s.Velocity[:newSize]
	s.Density = s.Density[:newSize]
	s.Lambda = s.Lambda[:newSize]
	s.ScratchVec = s.ScratchVec[:newSize]
	s.ScratchScal = s.ScratchScal[:newSize]
	s.size = newSize
}

// ConstructFluid tiles aabb with a regular lattice at spacing, placing each
// particle at the cell center, and returns the number of particles added
// (spec §4.3). Every seeded particle starts at position==positionStar with
// the given initial velocity.
func (s *Store) ConstructFluid(aabb vec.AABB, spacing vec.Real, velocity vec.Vec) int {
	counts := vec.BinCountInVolume(aabb, spacing)
	half := spacing / 2

	added := 0
	if vec.D == vec.D3 {
		for z := 0; z < counts[2]; z++ {
			for y := 0; y < counts[1]; y++ {
				for x := 0; x < counts[0]; x++ {
					coord := vec.Vec{
						X: vec.Real(x)*spacing + aabb.Min.X + half,
						Y: vec.Real(y)*spacing + aabb.Min.Y + half,
						Z: vec.Real(z)*spacing + aabb.Min.Z + half,
					}
					s.Append(coord, coord, velocity)
					added++
				}
			}
		}
		return added
	}

	for y := 0; y < counts[1]; y++ {
		for x := 0; x < counts[0]; x++ {
			coord := vec.Vec{
				X: vec.Real(x)*spacing + aabb.Min.X + half,
				Y: vec.Real(y)*spacing + aabb.Min.Y + half,
			}
			s.Append(coord, coord, velocity)
			added++
		}
	}
	return added
}
