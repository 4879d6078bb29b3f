package game

import (
	"fmt"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/systems"
)

// Params are the solver settings that can change while the game runs.
type Params struct {
	PressureMultiplier  float64
	TargetDensity       float64
	InteractionMode     string
	InteractionStrength float64
}

// Params returns the current runtime settings.
func (g *Game) Params() Params {
	return Params{
		PressureMultiplier:  g.cfg.SPH.PressureMultiplier,
		TargetDensity:       g.cfg.SPH.TargetDensity,
		InteractionMode:     g.cfg.Interaction.Mode,
		InteractionStrength: g.cfg.Interaction.Strength,
	}
}

// SetParams applies p to the solver and to the game's config copy, so that
// snapshots and config dumps record what actually ran. Invalid settings leave
// both untouched.
func (g *Game) SetParams(p Params) error {
	next := g.cfg.Clone()
	next.SPH.PressureMultiplier = p.PressureMultiplier
	next.SPH.TargetDensity = p.TargetDensity
	next.Interaction.Mode = p.InteractionMode
	next.Interaction.Strength = p.InteractionStrength
	if err := next.Recompute(); err != nil {
		return fmt.Errorf("applying params: %w", err)
	}

	if err := g.fluid.SetInteractionMode(p.InteractionMode); err != nil {
		return err
	}
	g.fluid.SetInteractionStrength(p.InteractionStrength)
	g.fluid.SetEOS(systems.EquationOfState{
		TargetDensity:      p.TargetDensity,
		PressureMultiplier: p.PressureMultiplier,
	})
	g.cfg = next
	return nil
}

// ToggleInteractionMode flips between repel and attract.
func (g *Game) ToggleInteractionMode() error {
	p := g.Params()
	if p.InteractionMode == config.InteractionAttract {
		p.InteractionMode = config.InteractionRepel
	} else {
		p.InteractionMode = config.InteractionAttract
	}
	return g.SetParams(p)
}
