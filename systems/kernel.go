package systems

import (
	"fmt"
	"math"

	"github.com/pthm-cable/sph2d/config"
)

// Kernel is a smoothing kernel with compact support h. Weight is used for the
// density sum and Slope for pressure and interaction gradients. Both return
// exactly 0 for d >= h. d must be non-negative.
type Kernel interface {
	Radius() float64
	Weight(d float64) float64
	Slope(d float64) float64
}

// NewKernel returns the kernel family named by config.Kernel* for radius h.
func NewKernel(family string, h float64) (Kernel, error) {
	if !(h > 0) {
		return nil, fmt.Errorf("kernel radius must be positive, got %g", h)
	}
	switch family {
	case config.KernelMixed:
		return MixedKernel{cubic: newCubic(h), slopeScale: quadraticSlopeScale(h)}, nil
	case config.KernelQuadratic:
		return QuadraticKernel{h: h, volume: math.Pi * math.Pow(h, 4) / 6, slopeScale: quadraticSlopeScale(h)}, nil
	case config.KernelCubic:
		return newCubic(h), nil
	default:
		return nil, fmt.Errorf("unknown kernel family %q", family)
	}
}

func quadraticSlopeScale(h float64) float64 {
	return 12 / (math.Pi * math.Pow(h, 4))
}

// CubicKernel is (h-d)^3 normalised by pi*h^5/10, with its exact derivative.
type CubicKernel struct {
	h      float64
	volume float64
}

func newCubic(h float64) CubicKernel {
	return CubicKernel{h: h, volume: math.Pi * math.Pow(h, 5) / 10}
}

func (k CubicKernel) Radius() float64 { return k.h }

func (k CubicKernel) Weight(d float64) float64 {
	if d >= k.h {
		return 0
	}
	x := k.h - d
	return x * x * x / k.volume
}

func (k CubicKernel) Slope(d float64) float64 {
	if d >= k.h {
		return 0
	}
	x := k.h - d
	return -3 * x * x / k.volume
}

// QuadraticKernel is (h-d)^2 normalised by pi*h^4/6. Its slope 12/(pi*h^4)*(d-h)
// is the exact derivative.
type QuadraticKernel struct {
	h          float64
	volume     float64
	slopeScale float64
}

func (k QuadraticKernel) Radius() float64 { return k.h }

func (k QuadraticKernel) Weight(d float64) float64 {
	if d >= k.h {
		return 0
	}
	x := k.h - d
	return x * x / k.volume
}

func (k QuadraticKernel) Slope(d float64) float64 {
	if d >= k.h {
		return 0
	}
	return k.slopeScale * (d - k.h)
}

// MixedKernel weights density with the cubic kernel but takes its slope from
// the quadratic kernel. The pair is not consistent; it is kept because it is
// what the simulation has always run with.
type MixedKernel struct {
	cubic      CubicKernel
	slopeScale float64
}

func (k MixedKernel) Radius() float64 { return k.cubic.h }

func (k MixedKernel) Weight(d float64) float64 { return k.cubic.Weight(d) }

func (k MixedKernel) Slope(d float64) float64 {
	if d >= k.cubic.h {
		return 0
	}
	return k.slopeScale * (d - k.cubic.h)
}
