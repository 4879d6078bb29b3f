package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/sph2d/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sample())
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats
	g.hasStats = true

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	g.handleBookmarks(g.bookmarkDetector.Check(stats))
}

// handleBookmarks logs the window's bookmarks and saves one snapshot for
// them, however many fired. It returns the number of snapshots written.
func (g *Game) handleBookmarks(bookmarks []telemetry.Bookmark) int {
	if g.logStats {
		for _, bm := range bookmarks {
			bm.LogBookmark()
		}
	}
	if len(bookmarks) == 0 || g.snapshotDir == "" {
		return 0
	}
	if !g.saveSnapshot(g.snapshotDir) {
		return 0
	}
	return 1
}

// sample collects the per-particle values the collector summarises.
func (g *Game) sample() telemetry.Sample {
	n := g.particles.Len()
	s := telemetry.Sample{
		Densities: g.fluid.LastDensities(),
		Speeds:    make([]float64, n),
		Masses:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		v := g.particles.Velocity(i)
		s.Speeds[i] = math.Hypot(v.X, v.Y)
		s.Masses[i] = g.particles.Mass(i)
	}
	return s
}

// SaveSnapshot writes the current state to dir, or to the configured snapshot
// directory when dir is empty.
func (g *Game) SaveSnapshot(dir string) (string, error) {
	if dir == "" {
		dir = g.snapshotDir
	}
	if dir == "" {
		dir = "snapshots"
	}
	return telemetry.SaveSnapshot(g.createSnapshot(), dir)
}

// saveSnapshot writes a snapshot and logs the outcome.
func (g *Game) saveSnapshot(dir string) bool {
	path, err := g.SaveSnapshot(dir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return false
	}
	slog.Info("snapshot saved", "path", path, "tick", g.tick)
	return true
}

// createSnapshot builds a snapshot from the current state.
func (g *Game) createSnapshot() *telemetry.Snapshot {
	cfg := g.cfg
	snapshot := &telemetry.Snapshot{
		Version:            telemetry.SnapshotVersion,
		Seed:               g.seed,
		Tick:               g.tick,
		Width:              cfg.Derived.DomainW,
		Height:             cfg.Derived.DomainH,
		KernelFamily:       cfg.SPH.KernelFamily,
		SmoothingRadius:    cfg.SPH.SmoothingRadius,
		TargetDensity:      cfg.SPH.TargetDensity,
		PressureMultiplier: cfg.SPH.PressureMultiplier,
	}

	// Densities lag behind particles added since the last density pass
	densities := g.fluid.LastDensities()

	n := g.particles.Len()
	snapshot.Particles = make([]telemetry.ParticleState, n)
	for i := 0; i < n; i++ {
		pos := g.particles.Position(i)
		vel := g.particles.Velocity(i)
		state := telemetry.ParticleState{
			X:      pos.X,
			Y:      pos.Y,
			VelX:   vel.X,
			VelY:   vel.Y,
			Mass:   g.particles.Mass(i),
			Radius: g.particles.Radius(i),
		}
		if i < len(densities) {
			state.Density = densities[i]
		}
		snapshot.Particles[i] = state
	}

	return snapshot
}
