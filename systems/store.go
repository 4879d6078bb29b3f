package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/components"
)

// ParticleStore keeps particle bodies as ECS entities in index order. It is
// the ParticleSet the game hands to the fluid solver.
type ParticleStore struct {
	world    *ecs.World
	mapper   *ecs.Map4[components.Position, components.Velocity, components.Body, components.Particle]
	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	bodyMap  *ecs.Map1[components.Body]
	entities []ecs.Entity
}

// NewParticleStore creates an empty store backed by w.
func NewParticleStore(w *ecs.World) *ParticleStore {
	return &ParticleStore{
		world:   w,
		mapper:  ecs.NewMap4[components.Position, components.Velocity, components.Body, components.Particle](w),
		posMap:  ecs.NewMap1[components.Position](w),
		velMap:  ecs.NewMap1[components.Velocity](w),
		bodyMap: ecs.NewMap1[components.Body](w),
	}
}

// Add creates a resting particle at (x, y) and returns its index.
func (s *ParticleStore) Add(x, y, radius, mass float64) int {
	idx := len(s.entities)
	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	body := components.Body{Radius: radius, Mass: mass}
	tag := components.Particle{Index: idx}

	e := s.mapper.NewEntity(&pos, &vel, &body, &tag)
	s.entities = append(s.entities, e)
	return idx
}

// Clear removes every particle entity.
func (s *ParticleStore) Clear() {
	for _, e := range s.entities {
		s.world.RemoveEntity(e)
	}
	s.entities = s.entities[:0]
}

// Len returns the number of particles.
func (s *ParticleStore) Len() int { return len(s.entities) }

// Entity returns the entity of particle i.
func (s *ParticleStore) Entity(i int) ecs.Entity { return s.entities[i] }

// Position returns the position of particle i.
func (s *ParticleStore) Position(i int) r2.Vec {
	p := s.posMap.Get(s.entities[i])
	return r2.Vec{X: p.X, Y: p.Y}
}

// SetPosition moves particle i.
func (s *ParticleStore) SetPosition(i int, p r2.Vec) {
	pos := s.posMap.Get(s.entities[i])
	pos.X, pos.Y = p.X, p.Y
}

// Velocity returns the velocity of particle i.
func (s *ParticleStore) Velocity(i int) r2.Vec {
	v := s.velMap.Get(s.entities[i])
	return r2.Vec{X: v.X, Y: v.Y}
}

// SetVelocity overwrites the velocity of particle i.
func (s *ParticleStore) SetVelocity(i int, v r2.Vec) {
	vel := s.velMap.Get(s.entities[i])
	vel.X, vel.Y = v.X, v.Y
}

// AddVelocity adds dv to the velocity of particle i.
func (s *ParticleStore) AddVelocity(i int, dv r2.Vec) {
	vel := s.velMap.Get(s.entities[i])
	vel.X += dv.X
	vel.Y += dv.Y
}

// Mass returns the mass of particle i.
func (s *ParticleStore) Mass(i int) float64 {
	return s.bodyMap.Get(s.entities[i]).Mass
}

// Radius returns the render radius of particle i.
func (s *ParticleStore) Radius(i int) float64 {
	return s.bodyMap.Get(s.entities[i]).Radius
}
