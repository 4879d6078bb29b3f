package game

import (
	"fmt"

	"github.com/pthm-cable/sph2d/telemetry"
)

// simulationStep runs a single tick: grid rebuild, density pass, pressure
// pass, optional pointer impulse, integration, then telemetry.
func (g *Game) simulationStep() error {
	g.perfCollector.StartTick()
	defer g.perfCollector.EndTick()

	// 1. Bin particles into the uniform grid
	g.perfCollector.StartPhase(telemetry.PhaseGridBuild)
	g.fluid.Rebuild(g.particles)

	// 2. Density for every particle
	g.perfCollector.StartPhase(telemetry.PhaseDensity)
	if err := g.fluid.ComputeDensities(g.particles); err != nil {
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}

	// 3. Pressure impulses from the frozen density field
	g.perfCollector.StartPhase(telemetry.PhasePressure)
	if err := g.fluid.ApplyPressure(g.particles); err != nil {
		return fmt.Errorf("tick %d: %w", g.tick, err)
	}

	// 4. Pointer impulse
	if g.interacting {
		g.perfCollector.StartPhase(telemetry.PhaseInteraction)
		if _, err := g.fluid.ApplyInteraction(g.particles, g.pointer); err != nil {
			return fmt.Errorf("tick %d: %w", g.tick, err)
		}
		g.collector.RecordInteraction()
	}

	// 5. Move bodies and bounce off the walls
	g.perfCollector.StartPhase(telemetry.PhaseIntegrate)
	g.physics.Update(g.cfg.Derived.DT)
	g.fluid.Invalidate()

	// 6. Counters and window flush
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	guards := g.fluid.Guards()
	g.collector.RecordGuards(guards.ZeroDistance, guards.ZeroDensity)

	g.tick++
	g.flushTelemetry()
	return nil
}
