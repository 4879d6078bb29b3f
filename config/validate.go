package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalid, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate checks the configuration and returns a *ValidationError if anything
// would reach the solver in an unusable state.
func (c *Config) Validate() error {
	var problems []string
	fail := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		fail("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height)
	}
	if c.Screen.TargetFPS <= 0 {
		fail("screen.target_fps must be positive, got %d", c.Screen.TargetFPS)
	}
	if c.Domain.WallThickness < 0 {
		fail("domain.wall_thickness must not be negative, got %g", c.Domain.WallThickness)
	}

	if c.Particles.Count <= 0 {
		fail("particles.count must be positive, got %d", c.Particles.Count)
	}
	if c.Particles.Mass <= 0 {
		fail("particles.mass must be positive, got %g", c.Particles.Mass)
	}
	if c.Particles.Radius <= 0 {
		fail("particles.radius must be positive, got %g", c.Particles.Radius)
	}
	if c.Particles.SpacingFactor <= 0 {
		fail("particles.spacing_factor must be positive, got %g", c.Particles.SpacingFactor)
	}
	switch c.Particles.SpawnPattern {
	case SpawnRandom, SpawnOrganized:
	default:
		fail("particles.spawn_pattern %q is not one of %s, %s", c.Particles.SpawnPattern, SpawnRandom, SpawnOrganized)
	}

	h := c.SPH.SmoothingRadius
	if h <= 0 {
		fail("sph.smoothing_radius must be positive, got %g", h)
	} else {
		margin := 2 * c.Domain.WallThickness
		if float64(c.Screen.Width)-margin < h || float64(c.Screen.Height)-margin < h {
			fail("domain interior %gx%g is smaller than one grid cell of %g",
				float64(c.Screen.Width)-margin, float64(c.Screen.Height)-margin, h)
		}
	}
	switch c.SPH.KernelFamily {
	case KernelMixed, KernelQuadratic, KernelCubic:
	default:
		fail("sph.kernel_family %q is not one of %s, %s, %s", c.SPH.KernelFamily, KernelMixed, KernelQuadratic, KernelCubic)
	}

	switch c.Interaction.Mode {
	case InteractionRepel, InteractionAttract:
	default:
		fail("interaction.mode %q is not one of %s, %s", c.Interaction.Mode, InteractionRepel, InteractionAttract)
	}

	if c.Physics.Restitution < 0 || c.Physics.Restitution > 1 {
		fail("physics.restitution must be within [0, 1], got %g", c.Physics.Restitution)
	}
	if c.Physics.MaxSpeed < 0 {
		fail("physics.max_speed must not be negative, got %g", c.Physics.MaxSpeed)
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
