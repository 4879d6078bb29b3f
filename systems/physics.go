package systems

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/sph2d/components"
)

// PhysicsSystem integrates particle bodies and bounces them off the four
// bounding walls. It stands in for the rigid-body engine: the fluid solver
// only adjusts velocities, this system turns them into motion.
type PhysicsSystem struct {
	filter *ecs.Filter3[components.Position, components.Velocity, components.Body]
	bounds Bounds

	GravityX, GravityY float64
	Restitution        float64 // fraction of normal speed kept on wall contact
	MaxSpeed           float64 // 0 = unlimited
}

// Bounds represents the domain and the wall thickness on each side.
type Bounds struct {
	Width, Height float64
	Wall          float64
}

// NewPhysicsSystem creates a new physics system.
func NewPhysicsSystem(w *ecs.World, bounds Bounds) *PhysicsSystem {
	return &PhysicsSystem{
		filter:      ecs.NewFilter3[components.Position, components.Velocity, components.Body](w),
		bounds:      bounds,
		Restitution: 1,
	}
}

// Bounds returns the simulation bounds.
func (s *PhysicsSystem) Bounds() Bounds { return s.bounds }

// Update advances every body by dt seconds.
func (s *PhysicsSystem) Update(dt float64) {
	query := s.filter.Query()
	for query.Next() {
		pos, vel, body := query.Get()

		vel.X += s.GravityX * dt
		vel.Y += s.GravityY * dt

		// Limit velocity
		if s.MaxSpeed > 0 {
			speed := math.Hypot(vel.X, vel.Y)
			if speed > s.MaxSpeed {
				scale := s.MaxSpeed / speed
				vel.X *= scale
				vel.Y *= scale
			}
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		s.collideWalls(pos, vel, body.Radius)
	}
}

// collideWalls clamps a body inside the walls and reflects the normal velocity
// component, scaled by restitution.
func (s *PhysicsSystem) collideWalls(pos *components.Position, vel *components.Velocity, radius float64) {
	minX := s.bounds.Wall + radius
	maxX := s.bounds.Width - s.bounds.Wall - radius
	minY := s.bounds.Wall + radius
	maxY := s.bounds.Height - s.bounds.Wall - radius

	if pos.X < minX {
		pos.X = minX
		if vel.X < 0 {
			vel.X = -vel.X * s.Restitution
		}
	} else if pos.X > maxX {
		pos.X = maxX
		if vel.X > 0 {
			vel.X = -vel.X * s.Restitution
		}
	}
	if pos.Y < minY {
		pos.Y = minY
		if vel.Y < 0 {
			vel.Y = -vel.Y * s.Restitution
		}
	} else if pos.Y > maxY {
		pos.Y = maxY
		if vel.Y > 0 {
			vel.Y = -vel.Y * s.Restitution
		}
	}
}
