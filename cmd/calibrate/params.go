// Package main provides CMA-ES calibration of the fluid solver parameters.
package main

import (
	"math"

	"github.com/pthm-cable/sph2d/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Log     bool    // Search in log10 space
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure_multiplier", Path: "sph.pressure_multiplier", Min: 1e2, Max: 1e6, Default: 1e4, Log: true},
			{Name: "target_density", Path: "sph.target_density", Min: 0.2, Max: 3.0, Default: 1.0},
			{Name: "smoothing_radius", Path: "sph.smoothing_radius", Min: 20, Max: 80, Default: 50},
			{Name: "restitution", Path: "physics.restitution", Min: 0, Max: 0.9, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		if spec.Log {
			lo, hi := math.Log10(spec.Min), math.Log10(spec.Max)
			normalized[i] = (math.Log10(raw[i]) - lo) / (hi - lo)
			continue
		}
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		if spec.Log {
			lo, hi := math.Log10(spec.Min), math.Log10(spec.Max)
			raw[i] = math.Pow(10, lo+normalized[i]*(hi-lo))
			continue
		}
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Max(spec.Min, math.Min(spec.Max, v[i]))
	}
	return clamped
}

// ApplyToConfig applies clamped parameter values to cfg and recomputes its
// derived values. Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	cfg.SPH.PressureMultiplier = clamped[0]
	cfg.SPH.TargetDensity = clamped[1]
	cfg.SPH.SmoothingRadius = clamped[2]
	cfg.Physics.Restitution = clamped[3]

	return cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.SPH.PressureMultiplier,
		cfg.SPH.TargetDensity,
		cfg.SPH.SmoothingRadius,
		cfg.Physics.Restitution,
	}
}
