package game

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/telemetry"
)

// testConfig returns the embedded defaults with a smaller particle count.
func testConfig(t testing.TB, count int) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default: %v", err)
	}
	cfg.Particles.Count = count
	return cfg
}

func newTestGame(t testing.TB, opts Options) *Game {
	t.Helper()
	if opts.Config == nil {
		opts.Config = testConfig(t, 64)
	}
	opts.Headless = true
	g, err := NewGameWithOptions(opts)
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(g.Unload)
	return g
}

func runTicks(t testing.TB, g *Game, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := g.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNewGameDefaults(t *testing.T) {
	cfg := testConfig(t, 200)
	g := newTestGame(t, Options{Seed: 1, Config: cfg})

	if got := g.Particles().Len(); got != 200 {
		t.Errorf("particles = %d, want 200", got)
	}
	if g.Tick() != 0 {
		t.Errorf("tick = %d, want 0", g.Tick())
	}
	if g.StepsPerUpdate() != 1 {
		t.Errorf("steps per update = %d, want 1", g.StepsPerUpdate())
	}
	if g.Config() == cfg {
		t.Error("game should keep its own copy of the config")
	}
	if g.Fluid().Grid().Cols() != cfg.Derived.GridCols || g.Fluid().Grid().Rows() != cfg.Derived.GridRows {
		t.Errorf("grid %dx%d, want %dx%d", g.Fluid().Grid().Cols(), g.Fluid().Grid().Rows(),
			cfg.Derived.GridCols, cfg.Derived.GridRows)
	}
}

func TestUpdateHeadlessStaysFiniteAndInsideWalls(t *testing.T) {
	cfg := testConfig(t, 200)
	g := newTestGame(t, Options{Seed: 7, Config: cfg, StepsPerUpdate: 10})

	for i := 0; i < 12; i++ {
		if err := g.UpdateHeadless(); err != nil {
			t.Fatalf("UpdateHeadless: %v", err)
		}
	}
	if g.Tick() != 120 {
		t.Fatalf("tick = %d, want 120", g.Tick())
	}

	wall := cfg.Domain.WallThickness
	ps := g.Particles()
	for i := 0; i < ps.Len(); i++ {
		p, v := ps.Position(i), ps.Velocity(i)
		for _, x := range []float64{p.X, p.Y, v.X, v.Y} {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				t.Fatalf("particle %d has non-finite state pos=%v vel=%v", i, p, v)
			}
		}
		if p.X < wall || p.X > cfg.Derived.DomainW-wall || p.Y < wall || p.Y > cfg.Derived.DomainH-wall {
			t.Errorf("particle %d escaped the walls: %v", i, p)
		}
	}
}

func TestRandomSpawnStaysInsideWalls(t *testing.T) {
	cfg := testConfig(t, 100)
	cfg.Particles.SpawnPattern = config.SpawnRandom
	g := newTestGame(t, Options{Seed: 3, Config: cfg})

	runTicks(t, g, 60)
	wall := cfg.Domain.WallThickness
	ps := g.Particles()
	for i := 0; i < ps.Len(); i++ {
		p := ps.Position(i)
		if p.X < wall || p.X > cfg.Derived.DomainW-wall || p.Y < wall || p.Y > cfg.Derived.DomainH-wall {
			t.Errorf("particle %d escaped the walls: %v", i, p)
		}
	}
}

func TestReset(t *testing.T) {
	tests := []struct {
		pattern string
		wantErr bool
	}{
		{config.SpawnRandom, false},
		{config.SpawnOrganized, false},
		{"spiral", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			g := newTestGame(t, Options{Seed: 1})
			g.AddParticle(320, 520)
			before := g.Particles().Len()

			err := g.Reset(tt.pattern)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if g.Particles().Len() != before {
					t.Errorf("failed reset changed the particle count to %d", g.Particles().Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("Reset: %v", err)
			}
			if got := g.Particles().Len(); got != 64 {
				t.Errorf("particles = %d, want 64", got)
			}
			runTicks(t, g, 1)
		})
	}
}

func TestAddParticle(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1})
	runTicks(t, g, 2)

	idx := g.AddParticle(100, 200)
	if idx != 64 {
		t.Errorf("index = %d, want 64", idx)
	}
	if g.Particles().Len() != 65 {
		t.Fatalf("particles = %d, want 65", g.Particles().Len())
	}
	if p := g.Particles().Position(idx); p.X != 100 || p.Y != 200 {
		t.Errorf("position = %v, want (100, 200)", p)
	}

	runTicks(t, g, 1)
	if n := len(g.Fluid().LastDensities()); n != 65 {
		t.Errorf("density field has %d entries after step, want 65", n)
	}
}

func TestStatsCallback(t *testing.T) {
	var got []telemetry.FrameStats
	g := newTestGame(t, Options{
		Seed:           1,
		StatsWindowSec: 0.5,
		StatsCallback:  func(s telemetry.FrameStats) { got = append(got, s) },
	})

	runTicks(t, g, 60)
	if len(got) != 2 {
		t.Fatalf("callback fired %d times, want 2", len(got))
	}
	if got[0].WindowEndTick != 30 || got[1].WindowEndTick != 60 {
		t.Errorf("window ends = %d, %d; want 30, 60", got[0].WindowEndTick, got[1].WindowEndTick)
	}
	for _, s := range got {
		if s.Particles != 64 {
			t.Errorf("particles = %d, want 64", s.Particles)
		}
		if !(s.DensityMean > 0) {
			t.Errorf("density mean = %g, want > 0", s.DensityMean)
		}
		if s.NonFinite != 0 {
			t.Errorf("non-finite = %d, want 0", s.NonFinite)
		}
	}

	last, ok := g.LastStats()
	if !ok || last.WindowEndTick != 60 {
		t.Errorf("LastStats = %+v, %v", last, ok)
	}
}

func TestInteractionTicksCounted(t *testing.T) {
	var stats telemetry.FrameStats
	g := newTestGame(t, Options{
		Seed:           1,
		StatsWindowSec: 0.5,
		StatsCallback:  func(s telemetry.FrameStats) { stats = s },
	})

	g.SetInteraction(true)
	g.SetPointer(320, 520)
	runTicks(t, g, 30)

	if stats.InteractionTicks != 30 {
		t.Errorf("interaction ticks = %d, want 30", stats.InteractionTicks)
	}
	if !g.Interacting() || g.Pointer().X != 320 {
		t.Error("interaction state not kept")
	}
}

func TestPauseAndStepping(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1, StepsPerUpdate: 3})

	if !g.TogglePause() {
		t.Fatal("TogglePause should report paused")
	}
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if g.Tick() != 0 {
		t.Errorf("paused Update advanced to tick %d", g.Tick())
	}
	if err := g.Step(); err != nil {
		t.Fatal(err)
	}
	if g.Tick() != 1 {
		t.Errorf("Step while paused: tick = %d, want 1", g.Tick())
	}

	g.TogglePause()
	if err := g.Update(); err != nil {
		t.Fatal(err)
	}
	if g.Tick() != 4 {
		t.Errorf("tick = %d, want 4", g.Tick())
	}

	g.SetStepsPerUpdate(50)
	if g.StepsPerUpdate() != MaxStepsPerUpdate {
		t.Errorf("steps = %d, want %d", g.StepsPerUpdate(), MaxStepsPerUpdate)
	}
	g.SetStepsPerUpdate(0)
	if g.StepsPerUpdate() != 1 {
		t.Errorf("steps = %d, want 1", g.StepsPerUpdate())
	}
}

func TestSetParams(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1})

	want := Params{
		PressureMultiplier:  500,
		TargetDensity:       2,
		InteractionMode:     config.InteractionAttract,
		InteractionStrength: 42,
	}
	if err := g.SetParams(want); err != nil {
		t.Fatalf("SetParams: %v", err)
	}
	if got := g.Params(); got != want {
		t.Errorf("Params = %+v, want %+v", got, want)
	}
	eos := g.Fluid().EOS()
	if eos.PressureMultiplier != 500 || eos.TargetDensity != 2 {
		t.Errorf("solver EOS = %+v", eos)
	}
	if in := g.Fluid().Interaction(); in.Strength != 42 || in.Mode != config.InteractionAttract {
		t.Errorf("solver interaction = %+v", in)
	}

	bad := want
	bad.InteractionMode = "swirl"
	if err := g.SetParams(bad); err == nil {
		t.Error("expected error for unknown mode")
	}
	if got := g.Params(); got != want {
		t.Errorf("failed SetParams changed params to %+v", got)
	}

	if err := g.ToggleInteractionMode(); err != nil {
		t.Fatal(err)
	}
	if g.Params().InteractionMode != config.InteractionRepel {
		t.Errorf("mode = %s, want repel", g.Params().InteractionMode)
	}
}

func TestSnapshotRestore(t *testing.T) {
	g := newTestGame(t, Options{Seed: 5})
	g.SetInteraction(true)
	g.SetPointer(300, 500)
	runTicks(t, g, 20)

	path, err := g.SaveSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.Tick != 20 || len(snap.Particles) != 64 {
		t.Fatalf("snapshot tick=%d particles=%d", snap.Tick, len(snap.Particles))
	}
	if snap.Particles[0].Density == 0 {
		t.Error("snapshot should carry the last density pass")
	}

	other := newTestGame(t, Options{Seed: 99})
	if err := other.RestoreSnapshot(snap); err != nil {
		t.Fatalf("RestoreSnapshot: %v", err)
	}
	if other.Tick() != 20 {
		t.Errorf("tick = %d, want 20", other.Tick())
	}
	for i := 0; i < g.Particles().Len(); i++ {
		if g.Particles().Position(i) != other.Particles().Position(i) {
			t.Fatalf("particle %d position %v, want %v", i, other.Particles().Position(i), g.Particles().Position(i))
		}
		if g.Particles().Velocity(i) != other.Particles().Velocity(i) {
			t.Fatalf("particle %d velocity %v, want %v", i, other.Particles().Velocity(i), g.Particles().Velocity(i))
		}
	}

	// Both copies evolve identically from here
	g.SetInteraction(false)
	runTicks(t, g, 5)
	runTicks(t, other, 5)
	if g.Particles().Position(10) != other.Particles().Position(10) {
		t.Error("restored game diverged")
	}
}

func TestBookmarksSaveOneSnapshotPerWindow(t *testing.T) {
	dir := t.TempDir()
	g := newTestGame(t, Options{Seed: 1, SnapshotDir: dir})
	runTicks(t, g, 1)

	if n := g.handleBookmarks(nil); n != 0 {
		t.Errorf("quiet window wrote %d snapshots", n)
	}
	n := g.handleBookmarks([]telemetry.Bookmark{
		{Type: telemetry.BookmarkNonFinite, Tick: g.Tick()},
		{Type: telemetry.BookmarkEnergySpike, Tick: g.Tick()},
		{Type: telemetry.BookmarkCompression, Tick: g.Tick()},
	})
	if n != 1 {
		t.Errorf("three bookmarks wrote %d snapshots, want 1", n)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("snapshot files = %d, want 1", len(entries))
	}
}

func TestRestoreSnapshotDomainMismatch(t *testing.T) {
	g := newTestGame(t, Options{Seed: 1})
	snap := &telemetry.Snapshot{Version: telemetry.SnapshotVersion, Width: 100, Height: 100}
	if err := g.RestoreSnapshot(snap); err == nil {
		t.Error("expected error for mismatched domain")
	}
	if g.Particles().Len() != 64 {
		t.Error("failed restore should keep the particles")
	}
}

func TestOutputDirWritesFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t, 32)
	g, err := NewGameWithOptions(Options{Seed: 1, Config: cfg, OutputDir: dir, StatsWindowSec: 0.25, Headless: true})
	if err != nil {
		t.Fatal(err)
	}
	runTicks(t, g, 30)
	g.Unload()

	for _, name := range []string{"telemetry.csv", "perf.csv", "config.yaml"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	reloaded, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if reloaded.Particles.Count != 32 {
		t.Errorf("written particle count = %d, want 32", reloaded.Particles.Count)
	}
}

func BenchmarkGameStep(b *testing.B) {
	g := newTestGame(b, Options{Seed: 1, Config: testConfig(b, 500)})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := g.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
