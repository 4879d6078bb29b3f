// Package telemetry provides run statistics, step timings, bookmarks and snapshots.
package telemetry

import "math"

// Collector accumulates per-tick counters over a stats window and produces
// FrameStats when the window closes.
type Collector struct {
	windowTicks int32
	dt          float64

	windowStart int32

	zeroDistance     int
	zeroDensity      int
	interactionTicks int
}

// NewCollector creates a collector for windows of windowSec simulated seconds
// at dt seconds per tick.
func NewCollector(windowSec, dt float64) *Collector {
	ticks := int32(windowSec / dt)
	if ticks < 1 {
		ticks = 1
	}
	return &Collector{windowTicks: ticks, dt: dt}
}

// RecordGuards adds the solver's skipped-pair counts for one tick.
func (c *Collector) RecordGuards(zeroDistance, zeroDensity int) {
	c.zeroDistance += zeroDistance
	c.zeroDensity += zeroDensity
}

// RecordInteraction counts a tick in which the pointer impulse was applied.
func (c *Collector) RecordInteraction() {
	c.interactionTicks++
}

// ShouldFlush reports whether the window ending at tick is complete.
func (c *Collector) ShouldFlush(tick int32) bool {
	return tick-c.windowStart >= c.windowTicks
}

// WindowTicks returns the window length in ticks.
func (c *Collector) WindowTicks() int32 { return c.windowTicks }

// Sample is the fluid state at the end of a window.
type Sample struct {
	Densities []float64
	Speeds    []float64
	Masses    []float64
}

// Flush summarises the window ending at tick and starts the next one.
func (c *Collector) Flush(tick int32, s Sample) FrameStats {
	dens := Summarize(finite(s.Densities))

	var speedSum, maxSpeed, kinetic float64
	for i, v := range s.Speeds {
		if !isFinite(v) {
			continue
		}
		speedSum += v
		if v > maxSpeed {
			maxSpeed = v
		}
		if i < len(s.Masses) {
			kinetic += 0.5 * s.Masses[i] * v * v
		}
	}
	var meanSpeed float64
	if len(s.Speeds) > 0 {
		meanSpeed = speedSum / float64(len(s.Speeds))
	}

	stats := FrameStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   tick,
		SimTimeSec:      float64(tick) * c.dt,

		Particles: len(s.Speeds),

		DensityMean: dens.Mean,
		DensityStd:  dens.Std,
		DensityMin:  dens.Min,
		DensityMax:  dens.Max,
		DensityP10:  dens.P10,
		DensityP50:  dens.P50,
		DensityP90:  dens.P90,
		DensityCV:   dens.CV(),

		MeanSpeed:     meanSpeed,
		MaxSpeed:      maxSpeed,
		KineticEnergy: kinetic,

		ZeroDistanceSkips: c.zeroDistance,
		ZeroDensitySkips:  c.zeroDensity,
		InteractionTicks:  c.interactionTicks,
		NonFinite:         countNonFiniteParticles(s),
	}

	c.windowStart = tick
	c.zeroDistance = 0
	c.zeroDensity = 0
	c.interactionTicks = 0

	return stats
}

// countNonFiniteParticles counts particles whose density or speed is NaN or
// Inf. Each particle counts once.
func countNonFiniteParticles(s Sample) int {
	n := 0
	for i := 0; i < max(len(s.Densities), len(s.Speeds)); i++ {
		if (i < len(s.Densities) && !isFinite(s.Densities[i])) ||
			(i < len(s.Speeds) && !isFinite(s.Speeds[i])) {
			n++
		}
	}
	return n
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finite(values []float64) []float64 {
	if countFinite(values) == len(values) {
		return values
	}
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	return out
}

func countFinite(values []float64) int {
	n := 0
	for _, v := range values {
		if isFinite(v) {
			n++
		}
	}
	return n
}
