package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/telemetry"
)

// Fitness terms.
const (
	settleWindows    = 3    // trailing windows scored; earlier ones are warmup
	nonFinitePenalty = 1e3  // per particle with a NaN or Inf density or speed
	failedRunFitness = 1e6  // config rejected or solver error
	densityErrWeight = 0.5  // weight of |mean/target - 1|
	speedWeight      = 0.01 // weight of mean speed in px/s
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	mu          sync.Mutex
	lastSummary runSummary
}

// runSummary describes the settled state of one evaluation, averaged over
// seeds.
type runSummary struct {
	DensityCV   float64
	DensityMean float64
	MeanSpeed   float64
	NonFinite   int
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 1.0,
	}
}

// LastSummary returns the settled state from the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() runSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	summary runSummary
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel, each in its own game.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameters", "error", err)
		return failedRunFitness
	}

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(cfg, s)
		}(i, seed)
	}
	wg.Wait()

	fitness := make([]float64, len(results))
	var avg runSummary
	for i, r := range results {
		fitness[i] = r.fitness
		avg.DensityCV += r.summary.DensityCV
		avg.DensityMean += r.summary.DensityMean
		avg.MeanSpeed += r.summary.MeanSpeed
		avg.NonFinite += r.summary.NonFinite
	}
	n := float64(len(results))
	avg.DensityCV /= n
	avg.DensityMean /= n
	avg.MeanSpeed /= n

	fe.mu.Lock()
	fe.lastSummary = avg
	fe.mu.Unlock()

	return floats.Sum(fitness) / n
}

// runSimulation executes a single headless run and scores it.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) seedResult {
	var windows []telemetry.FrameStats
	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.FrameStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		slog.Warn("game creation failed", "seed", seed, "error", err)
		return seedResult{fitness: failedRunFitness}
	}
	defer g.Unload()

	for g.Tick() < fe.maxTicks {
		if err := g.UpdateHeadless(); err != nil {
			slog.Warn("simulation failed", "seed", seed, "tick", g.Tick(), "error", err)
			return seedResult{fitness: failedRunFitness}
		}
	}

	summary := summarize(windows)
	return seedResult{
		fitness: computeFitness(summary, cfg.SPH.TargetDensity),
		summary: summary,
	}
}

// summarize averages the trailing settled windows. Non-finite counts are
// summed over the whole run.
func summarize(windows []telemetry.FrameStats) runSummary {
	var s runSummary
	for _, w := range windows {
		s.NonFinite += w.NonFinite
	}
	if len(windows) == 0 {
		return s
	}
	tail := windows[max(0, len(windows)-settleWindows):]
	for _, w := range tail {
		s.DensityCV += w.DensityCV
		s.DensityMean += w.DensityMean
		s.MeanSpeed += w.MeanSpeed
	}
	n := float64(len(tail))
	s.DensityCV /= n
	s.DensityMean /= n
	s.MeanSpeed /= n
	return s
}

// computeFitness scores a settled run (lower = better): a uniform field at
// the target density with particles at rest scores 0.
func computeFitness(s runSummary, targetDensity float64) float64 {
	densityErr := 1.0
	if targetDensity > 0 {
		densityErr = math.Abs(s.DensityMean/targetDensity - 1)
	}
	fitness := s.DensityCV + densityErrWeight*densityErr + speedWeight*s.MeanSpeed
	fitness += nonFinitePenalty * float64(s.NonFinite)
	if math.IsNaN(fitness) || math.IsInf(fitness, 0) {
		return failedRunFitness
	}
	return fitness
}
