package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/telemetry"
	"github.com/pthm-cable/sph2d/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")
	restore := flag.String("restore", "", "Snapshot file to resume from")
	streamAddr := flag.String("stream-addr", "", "Serve window stats over websocket at this address, path /ws (empty = off)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *streamAddr != "" {
		stream := startStatsStream(*streamAddr)
		defer stream.Close()
		opts.StatsCallback = stream.Broadcast
	}

	if *headless {
		if err := runHeadless(opts, *restore, *maxTicks); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "SPH Fluid")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	if err := runWindowed(opts, *restore, *maxTicks); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// startStatsStream serves the stats websocket in the background.
func startStatsStream(addr string) *telemetry.StatsStream {
	stream := telemetry.NewStatsStream()
	mux := http.NewServeMux()
	mux.Handle("/ws", stream)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("stats stream server stopped", "addr", addr, "error", err)
		}
	}()
	slog.Info("stats stream listening", "addr", addr, "path", "/ws")
	return stream
}

// newGame creates a game and optionally resumes it from a snapshot.
func newGame(opts game.Options, restore string) (*game.Game, error) {
	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return nil, err
	}
	if restore == "" {
		return g, nil
	}
	snap, err := telemetry.LoadSnapshot(restore)
	if err != nil {
		g.Unload()
		return nil, err
	}
	if err := g.RestoreSnapshot(snap); err != nil {
		g.Unload()
		return nil, err
	}
	slog.Info("snapshot restored", "path", restore, "tick", g.Tick())
	return g, nil
}

func runHeadless(opts game.Options, restore string, maxTicks int) error {
	g, err := newGame(opts, restore)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		if err := g.UpdateHeadless(); err != nil {
			return err
		}
		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
	}
}

func runWindowed(opts game.Options, restore string, maxTicks int) error {
	g, err := newGame(opts, restore)
	if err != nil {
		return err
	}
	defer g.Unload()

	v, err := viewer.New(g)
	if err != nil {
		return err
	}

	for !rl.WindowShouldClose() {
		if err := v.Update(); err != nil {
			return err
		}
		v.Draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			return nil
		}
	}
	return nil
}
