package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FrameStats summarises the fluid over one stats window. Distribution fields
// are sampled at the window end; counters cover the whole window.
type FrameStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`

	DensityMean float64 `csv:"density_mean"`
	DensityStd  float64 `csv:"density_std"`
	DensityMin  float64 `csv:"density_min"`
	DensityMax  float64 `csv:"density_max"`
	DensityP10  float64 `csv:"density_p10"`
	DensityP50  float64 `csv:"density_p50"`
	DensityP90  float64 `csv:"density_p90"`
	DensityCV   float64 `csv:"density_cv"` // std / mean

	MeanSpeed     float64 `csv:"mean_speed"`
	MaxSpeed      float64 `csv:"max_speed"`
	KineticEnergy float64 `csv:"kinetic_energy"`

	ZeroDistanceSkips int `csv:"zero_distance_skips"`
	ZeroDensitySkips  int `csv:"zero_density_skips"`
	InteractionTicks  int `csv:"interaction_ticks"`
	NonFinite         int `csv:"non_finite"`
}

// Distribution holds summary statistics of a sample.
type Distribution struct {
	Mean, Std     float64
	Min, Max      float64
	P10, P50, P90 float64
}

// Summarize computes the distribution of values. An empty sample yields zeros;
// a single value has zero spread.
func Summarize(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	d := Distribution{
		Min: floats.Min(sorted),
		Max: floats.Max(sorted),
		P10: stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		d.Mean, d.Std = stat.MeanStdDev(sorted, nil)
	} else {
		d.Mean = sorted[0]
	}
	return d
}

// CV returns the coefficient of variation, or 0 for a zero mean.
func (d Distribution) CV() float64 {
	if d.Mean == 0 {
		return 0
	}
	return d.Std / d.Mean
}

// LogValue implements slog.LogValuer.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("density_mean", s.DensityMean),
		slog.Float64("density_std", s.DensityStd),
		slog.Float64("density_min", s.DensityMin),
		slog.Float64("density_max", s.DensityMax),
		slog.Float64("density_p50", s.DensityP50),
		slog.Float64("density_cv", s.DensityCV),
		slog.Float64("mean_speed", s.MeanSpeed),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Int("zero_distance_skips", s.ZeroDistanceSkips),
		slog.Int("zero_density_skips", s.ZeroDensitySkips),
		slog.Int("interaction_ticks", s.InteractionTicks),
		slog.Int("non_finite", s.NonFinite),
	)
}

// LogStats writes the window as a single "stats" record.
func (s FrameStats) LogStats() {
	slog.Info("stats", "stats", s)
}
