package game

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/systems"
	"github.com/pthm-cable/sph2d/telemetry"
)

// Reset removes every particle and respawns the configured count using the
// named pattern. The tick counter keeps running.
func (g *Game) Reset(pattern string) error {
	cfg := g.cfg
	area := systems.SpawnArea{
		Width:  cfg.Derived.DomainW,
		Height: cfg.Derived.DomainH,
		Wall:   cfg.Domain.WallThickness,
	}
	positions, err := systems.Layout(pattern, cfg.Particles.Count, area,
		cfg.Particles.Radius, cfg.Particles.SpacingFactor, g.rng)
	if err != nil {
		return err
	}

	g.clearParticles()
	for _, p := range positions {
		g.particles.Add(p.X, p.Y, cfg.Particles.Radius, cfg.Particles.Mass)
	}

	slog.Info("reset", "pattern", pattern, "particles", len(positions), "tick", g.tick)
	return nil
}

// AddParticle spawns one resting particle at (x, y) and returns its index.
func (g *Game) AddParticle(x, y float64) int {
	return g.particles.Add(x, y, g.cfg.Particles.Radius, g.cfg.Particles.Mass)
}

// RestoreSnapshot replaces the particle state with s. The snapshot must have
// been taken on a domain of the same size.
func (g *Game) RestoreSnapshot(s *telemetry.Snapshot) error {
	if s.Width != g.cfg.Derived.DomainW || s.Height != g.cfg.Derived.DomainH {
		return fmt.Errorf("snapshot domain %gx%g does not match %gx%g",
			s.Width, s.Height, g.cfg.Derived.DomainW, g.cfg.Derived.DomainH)
	}
	if s.KernelFamily != g.cfg.SPH.KernelFamily || s.SmoothingRadius != g.cfg.SPH.SmoothingRadius {
		slog.Warn("snapshot kernel differs from config",
			"snapshot_kernel", s.KernelFamily,
			"snapshot_h", s.SmoothingRadius,
			"kernel", g.cfg.SPH.KernelFamily,
			"h", g.cfg.SPH.SmoothingRadius,
		)
	}

	g.clearParticles()
	for _, p := range s.Particles {
		i := g.particles.Add(p.X, p.Y, p.Radius, p.Mass)
		g.particles.SetVelocity(i, r2.Vec{X: p.VelX, Y: p.VelY})
	}
	g.tick = s.Tick

	slog.Info("snapshot restored", "tick", s.Tick, "particles", len(s.Particles))
	return nil
}

// clearParticles empties the store and forgets anything derived from the old
// particle set.
func (g *Game) clearParticles() {
	g.particles.Clear()
	g.fluid.Reset()
	g.bookmarkDetector.Reset()
}
