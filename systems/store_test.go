package systems

import (
	"math"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestParticleStore(t *testing.T) {
	world := ecs.NewWorld()
	store := NewParticleStore(world)

	for i := 0; i < 3; i++ {
		if idx := store.Add(float64(100+i*10), 200, 5, 1000); idx != i {
			t.Fatalf("Add returned index %d, want %d", idx, i)
		}
	}
	if store.Len() != 3 {
		t.Fatalf("Len = %d, want 3", store.Len())
	}

	if got := store.Position(1); got != (r2.Vec{X: 110, Y: 200}) {
		t.Errorf("Position(1) = %v", got)
	}
	if store.Mass(2) != 1000 || store.Radius(2) != 5 {
		t.Errorf("body of particle 2 = (%g, %g)", store.Mass(2), store.Radius(2))
	}

	store.AddVelocity(0, r2.Vec{X: 1, Y: -2})
	store.AddVelocity(0, r2.Vec{X: 1, Y: -2})
	if got := store.Velocity(0); got != (r2.Vec{X: 2, Y: -4}) {
		t.Errorf("Velocity(0) = %v, want (2, -4)", got)
	}

	store.SetPosition(2, r2.Vec{X: 7, Y: 8})
	store.SetVelocity(2, r2.Vec{X: 3})
	if store.Position(2) != (r2.Vec{X: 7, Y: 8}) || store.Velocity(2) != (r2.Vec{X: 3}) {
		t.Errorf("setters not applied: pos %v vel %v", store.Position(2), store.Velocity(2))
	}

	store.Clear()
	if store.Len() != 0 {
		t.Errorf("Len after Clear = %d", store.Len())
	}
	if idx := store.Add(1, 1, 5, 1000); idx != 0 {
		t.Errorf("first index after Clear = %d, want 0", idx)
	}
}

// The store must satisfy what the solver needs, and the solver must run on it.
func TestParticleStoreDrivesFluid(t *testing.T) {
	world := ecs.NewWorld()
	store := NewParticleStore(world)
	store.Add(100, 100, 5, 100)
	store.Add(110, 100, 5, 100)

	s := newTestFluid(t, func(p *FluidParams) { p.EOS.TargetDensity = 0 })
	if err := s.Step(store, nil); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if v := store.Velocity(0); v.X >= 0 {
		t.Errorf("particle 0 velocity %v, want pushed left", v)
	}
}

func TestPhysicsWallBounce(t *testing.T) {
	bounds := Bounds{Width: 640, Height: 1040, Wall: 20}

	tests := []struct {
		name    string
		pos     r2.Vec
		vel     r2.Vec
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{"left wall", r2.Vec{X: 26, Y: 500}, r2.Vec{X: -120, Y: 0}, r2.Vec{X: 25, Y: 500}, r2.Vec{X: 60, Y: 0}},
		{"right wall", r2.Vec{X: 614, Y: 500}, r2.Vec{X: 120, Y: 0}, r2.Vec{X: 615, Y: 500}, r2.Vec{X: -60, Y: 0}},
		{"floor", r2.Vec{X: 300, Y: 1014}, r2.Vec{X: 0, Y: 120}, r2.Vec{X: 300, Y: 1015}, r2.Vec{X: 0, Y: -60}},
		{"ceiling", r2.Vec{X: 300, Y: 26}, r2.Vec{X: 0, Y: -120}, r2.Vec{X: 300, Y: 25}, r2.Vec{X: 0, Y: 60}},
		{"free flight", r2.Vec{X: 300, Y: 300}, r2.Vec{X: 60, Y: -60}, r2.Vec{X: 301, Y: 299}, r2.Vec{X: 60, Y: -60}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			world := ecs.NewWorld()
			store := NewParticleStore(world)
			store.Add(tc.pos.X, tc.pos.Y, 5, 1000)
			store.SetVelocity(0, tc.vel)

			phys := NewPhysicsSystem(world, bounds)
			phys.Restitution = 0.5
			phys.Update(1.0 / 60)

			if got := store.Position(0); !vecNear(got, tc.wantPos, 1e-9) {
				t.Errorf("position %v, want %v", got, tc.wantPos)
			}
			if got := store.Velocity(0); !vecNear(got, tc.wantVel, 1e-9) {
				t.Errorf("velocity %v, want %v", got, tc.wantVel)
			}
		})
	}
}

func TestPhysicsGravityAndSpeedLimit(t *testing.T) {
	world := ecs.NewWorld()
	store := NewParticleStore(world)
	store.Add(300, 300, 5, 1000)

	phys := NewPhysicsSystem(world, Bounds{Width: 640, Height: 1040, Wall: 20})
	phys.GravityY = 600
	phys.Update(0.1)
	if got := store.Velocity(0); !vecNear(got, r2.Vec{Y: 60}, 1e-9) {
		t.Errorf("velocity after gravity = %v, want (0, 60)", got)
	}

	store.SetVelocity(0, r2.Vec{X: 300, Y: 400})
	phys.GravityY = 0
	phys.MaxSpeed = 50
	phys.Update(0.01)
	if speed := r2.Norm(store.Velocity(0)); math.Abs(speed-50) > 1e-9 {
		t.Errorf("speed = %g, want clamped to 50", speed)
	}
}

func vecNear(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}
