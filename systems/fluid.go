package systems

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/config"
)

// Phase is the point a frame has reached in the fluid pipeline.
type Phase uint8

const (
	PhaseIdle      Phase = iota // nothing built since the last reset or move
	PhaseGridBuilt              // grid rebuilt, densities not yet computed
	PhaseDensities              // densities final for every particle
	PhaseForces                 // pressure impulses applied
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseGridBuilt:
		return "grid_built"
	case PhaseDensities:
		return "densities"
	case PhaseForces:
		return "forces"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// FluidParams configures a FluidSystem.
type FluidParams struct {
	Width, Height       float64
	Margin              float64 // total wall thickness along each axis
	SmoothingRadius     float64
	KernelFamily        string
	EOS                 EquationOfState
	InteractionMode     string
	InteractionStrength float64
}

// FluidParamsFromConfig extracts solver parameters from cfg.
func FluidParamsFromConfig(cfg *config.Config) FluidParams {
	return FluidParams{
		Width:           cfg.Derived.DomainW,
		Height:          cfg.Derived.DomainH,
		Margin:          cfg.Derived.Margin,
		SmoothingRadius: cfg.SPH.SmoothingRadius,
		KernelFamily:    cfg.SPH.KernelFamily,
		EOS: EquationOfState{
			TargetDensity:      cfg.SPH.TargetDensity,
			PressureMultiplier: cfg.SPH.PressureMultiplier,
		},
		InteractionMode:     cfg.Interaction.Mode,
		InteractionStrength: cfg.Interaction.Strength,
	}
}

// GuardCounts records pair contributions skipped this frame to keep NaN and
// Inf out of velocities.
type GuardCounts struct {
	ZeroDistance int // coincident pairs, direction undefined
	ZeroDensity  int // neighbour density of exactly 0
}

// FluidSystem runs the per-frame SPH pipeline: grid rebuild, density pass,
// pressure pass and the optional pointer interaction. Calls must follow that
// order every frame; out-of-order calls return an error instead of reading
// stale state.
type FluidSystem struct {
	grid        *SpatialGrid
	kernel      Kernel
	eos         EquationOfState
	interaction Interaction

	phase     Phase
	densities []float64
	forces    []r2.Vec
	search    []int // scratch for CellsToSearch
	guards    GuardCounts
}

// NewFluidSystem builds the grid and kernel described by p.
func NewFluidSystem(p FluidParams) (*FluidSystem, error) {
	if !(p.SmoothingRadius > 0) {
		return nil, fmt.Errorf("smoothing radius must be positive, got %g", p.SmoothingRadius)
	}
	kernel, err := NewKernel(p.KernelFamily, p.SmoothingRadius)
	if err != nil {
		return nil, err
	}
	interaction, err := NewInteraction(p.InteractionMode, p.InteractionStrength)
	if err != nil {
		return nil, err
	}

	return &FluidSystem{
		grid:        NewSpatialGrid(p.Width, p.Height, p.Margin, p.SmoothingRadius),
		kernel:      kernel,
		eos:         p.EOS,
		interaction: interaction,
		search:      make([]int, 0, 9),
	}, nil
}

// Grid returns the spatial grid. Callers must not mutate it.
func (s *FluidSystem) Grid() *SpatialGrid { return s.grid }

// Kernel returns the smoothing kernel.
func (s *FluidSystem) Kernel() Kernel { return s.kernel }

// EOS returns the equation of state.
func (s *FluidSystem) EOS() EquationOfState { return s.eos }

// SetEOS replaces the equation of state. Takes effect on the next pressure pass.
func (s *FluidSystem) SetEOS(eos EquationOfState) { s.eos = eos }

// Interaction returns the pointer interaction settings.
func (s *FluidSystem) Interaction() Interaction { return s.interaction }

// SetInteractionStrength changes the pointer impulse scale.
func (s *FluidSystem) SetInteractionStrength(strength float64) {
	s.interaction.Strength = strength
}

// SetInteractionMode switches between repel and attract.
func (s *FluidSystem) SetInteractionMode(mode string) error {
	in, err := NewInteraction(mode, s.interaction.Strength)
	if err != nil {
		return err
	}
	s.interaction = in
	return nil
}

// Phase reports how far the current frame has progressed.
func (s *FluidSystem) Phase() Phase { return s.phase }

// Guards returns the skipped-contribution counts for the current frame.
func (s *FluidSystem) Guards() GuardCounts { return s.guards }

// Densities returns the density field of the current frame, or nil if the
// density pass has not completed. The slice is reused across frames.
func (s *FluidSystem) Densities() []float64 {
	if s.phase < PhaseDensities {
		return nil
	}
	return s.densities
}

// LastDensities returns the density field of the most recent density pass,
// even after the particles have moved on. Entries may be missing for particles
// added since then. Empty after Reset.
func (s *FluidSystem) LastDensities() []float64 { return s.densities }

// LastForces returns the pressure impulses of the most recent pressure pass.
// Empty after Reset.
func (s *FluidSystem) LastForces() []r2.Vec { return s.forces }

// Invalidate marks the grid stale after the particles were moved. Grid,
// density and pressure queries fail with ErrGridNotBuilt until the next
// Rebuild; LastDensities and LastForces keep the results of the last solve.
func (s *FluidSystem) Invalidate() {
	s.phase = PhaseIdle
}

// Reset clears the grid and discards the density field.
func (s *FluidSystem) Reset() {
	s.grid.Reset()
	s.densities = s.densities[:0]
	s.forces = s.forces[:0]
	s.guards = GuardCounts{}
	s.phase = PhaseIdle
}

// Rebuild starts a new frame: it assigns every particle to a cell and
// invalidates the previous frame's densities.
func (s *FluidSystem) Rebuild(ps ParticleSet) {
	s.grid.Rebuild(ps)
	s.guards = GuardCounts{}
	s.phase = PhaseGridBuilt
}

// Step runs one full solve: rebuild, densities, pressure and, when pointer is
// non-nil, the interaction impulse.
func (s *FluidSystem) Step(ps ParticleSet, pointer *r2.Vec) error {
	s.Rebuild(ps)
	if err := s.ComputeDensities(ps); err != nil {
		return err
	}
	if err := s.ApplyPressure(ps); err != nil {
		return err
	}
	if pointer != nil {
		if _, err := s.ApplyInteraction(ps, *pointer); err != nil {
			return err
		}
	}
	return nil
}

// checkBuilt verifies the grid is current for ps.
func (s *FluidSystem) checkBuilt(ps ParticleSet) error {
	if s.phase == PhaseIdle {
		return ErrGridNotBuilt
	}
	if ps.Len() != s.grid.Built() {
		return fmt.Errorf("%w: grid has %d, set has %d", ErrParticleCountChanged, s.grid.Built(), ps.Len())
	}
	return nil
}

// neighborCells returns the cells to search around particle i. The result
// aliases s.search.
func (s *FluidSystem) neighborCells(cell int) []int {
	s.search = s.grid.CellsToSearch(cell, s.search[:0])
	return s.search
}
