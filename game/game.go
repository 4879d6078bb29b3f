// Package game wires the particle store, the fluid solver, the integrator and
// telemetry into a steppable simulation. It has no window dependency; the
// viewer package drives it interactively.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/systems"
	"github.com/pthm-cable/sph2d/telemetry"
)

// MaxStepsPerUpdate caps the speed multiplier.
const MaxStepsPerUpdate = 10

// Options configures game creation.
type Options struct {
	Seed           int64
	LogStats       bool    // log window stats and perf through slog
	StatsWindowSec float64 // 0 = telemetry.stats_window from config
	SnapshotDir    string  // snapshots on bookmarks; empty disables
	OutputDir      string  // CSV logs and config copy; empty disables
	Headless       bool
	StepsPerUpdate int
	StatsCallback  func(telemetry.FrameStats) // called on every window flush

	// Config overrides the global configuration. It is cloned, so runtime
	// parameter changes never leak back to the caller.
	Config *config.Config
}

// Game holds the complete simulation state.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	particles *systems.ParticleStore
	fluid     *systems.FluidSystem
	physics   *systems.PhysicsSystem

	// State
	tick           int32
	paused         bool
	stepsPerUpdate int

	// Pointer interaction
	interacting bool
	pointer     r2.Vec

	// Telemetry
	perfCollector    *telemetry.PerfCollector
	collector        *telemetry.Collector
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	logStats         bool
	snapshotDir      string
	statsCallback    func(telemetry.FrameStats)
	lastStats        telemetry.FrameStats
	hasStats         bool
}

// NewGameWithOptions creates a game and spawns the configured particles.
func NewGameWithOptions(opts Options) (*Game, error) {
	base := opts.Config
	if base == nil {
		base = config.Cfg()
	}
	cfg := base.Clone()

	fluid, err := systems.NewFluidSystem(systems.FluidParamsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating fluid solver: %w", err)
	}

	world := ecs.NewWorld()

	physics := systems.NewPhysicsSystem(world, systems.Bounds{
		Width:  cfg.Derived.DomainW,
		Height: cfg.Derived.DomainH,
		Wall:   cfg.Domain.WallThickness,
	})
	physics.GravityX = cfg.Physics.GravityX
	physics.GravityY = cfg.Physics.GravityY
	physics.Restitution = cfg.Physics.Restitution
	physics.MaxSpeed = cfg.Physics.MaxSpeed

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}
	if steps > MaxStepsPerUpdate {
		steps = MaxStepsPerUpdate
	}

	g := &Game{
		cfg:            cfg,
		world:          world,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		seed:           opts.Seed,
		particles:      systems.NewParticleStore(world),
		fluid:          fluid,
		physics:        physics,
		stepsPerUpdate: steps,

		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:        telemetry.NewCollector(statsWindow, cfg.Derived.DT),
		bookmarkDetector: telemetry.NewBookmarkDetector(10),
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		statsCallback:    opts.StatsCallback,
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("creating output manager: %w", err)
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, err
		}
		g.outputManager = om
	}

	if err := g.Reset(cfg.Particles.SpawnPattern); err != nil {
		g.Unload()
		return nil, err
	}

	slog.Info("game created",
		"seed", opts.Seed,
		"particles", g.particles.Len(),
		"grid_cols", fluid.Grid().Cols(),
		"grid_rows", fluid.Grid().Rows(),
		"kernel", cfg.SPH.KernelFamily,
		"headless", opts.Headless,
	)
	return g, nil
}

// UpdateHeadless runs stepsPerUpdate ticks regardless of the pause flag.
func (g *Game) UpdateHeadless() error {
	for i := 0; i < g.stepsPerUpdate; i++ {
		if err := g.simulationStep(); err != nil {
			return err
		}
	}
	return nil
}

// Update runs stepsPerUpdate ticks unless paused.
func (g *Game) Update() error {
	if g.paused {
		return nil
	}
	return g.UpdateHeadless()
}

// Step runs exactly one tick, even while paused.
func (g *Game) Step() error {
	return g.simulationStep()
}

// Unload releases output files.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output files", "error", err)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 { return g.tick }

// Seed returns the RNG seed the game was created with.
func (g *Game) Seed() int64 { return g.seed }

// Paused reports whether Update is currently a no-op.
func (g *Game) Paused() bool { return g.paused }

// TogglePause flips the pause flag and returns the new state.
func (g *Game) TogglePause() bool {
	g.paused = !g.paused
	return g.paused
}

// StepsPerUpdate returns the number of ticks run per Update call.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate clamps n to [1, MaxStepsPerUpdate].
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = max(1, min(n, MaxStepsPerUpdate))
}

// SetInteraction turns the pointer impulse on or off.
func (g *Game) SetInteraction(on bool) { g.interacting = on }

// Interacting reports whether the pointer impulse is applied each tick.
func (g *Game) Interacting() bool { return g.interacting }

// SetPointer moves the interaction point, in domain coordinates.
func (g *Game) SetPointer(x, y float64) { g.pointer = r2.Vec{X: x, Y: y} }

// Pointer returns the interaction point.
func (g *Game) Pointer() r2.Vec { return g.pointer }

// SetStatsCallback replaces the window flush callback.
func (g *Game) SetStatsCallback(fn func(telemetry.FrameStats)) { g.statsCallback = fn }

// Particles returns the particle store.
func (g *Game) Particles() *systems.ParticleStore { return g.particles }

// Fluid returns the SPH solver.
func (g *Game) Fluid() *systems.FluidSystem { return g.fluid }

// Config returns the game's private copy of the configuration.
func (g *Game) Config() *config.Config { return g.cfg }

// LastStats returns the most recent window stats, if any window has closed.
func (g *Game) LastStats() (telemetry.FrameStats, bool) { return g.lastStats, g.hasStats }

// Perf returns rolling step timings.
func (g *Game) Perf() telemetry.PerfStats { return g.perfCollector.Stats() }

// RecordFrame marks a rendered frame for FPS reporting.
func (g *Game) RecordFrame() { g.perfCollector.RecordFrame() }
