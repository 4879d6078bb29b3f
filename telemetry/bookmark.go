package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSettled     BookmarkType = "settled"      // density spread flat for several windows
	BookmarkEnergySpike BookmarkType = "energy_spike" // kinetic energy far above its recent mean
	BookmarkCompression BookmarkType = "compression"  // peak density far above its recent mean
	BookmarkNonFinite   BookmarkType = "non_finite"   // NaN or Inf reached the particle state
)

// Bookmark marks a stats window worth a snapshot.
type Bookmark struct {
	Type        BookmarkType
	Tick        int32
	Description string
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches a rolling history of FrameStats for notable windows.
type BookmarkDetector struct {
	history []FrameStats
	next    int
	full    bool

	stableWindows int
	settledFired  bool
	nonFiniteSeen bool
}

// NewBookmarkDetector creates a detector keeping historySize windows.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{history: make([]FrameStats, historySize)}
}

// Check compares stats with the history, records it, and returns any bookmarks.
func (bd *BookmarkDetector) Check(stats FrameStats) []Bookmark {
	var out []Bookmark
	for _, check := range []func(FrameStats) *Bookmark{
		bd.checkNonFinite,
		bd.checkEnergySpike,
		bd.checkCompression,
		bd.checkSettled,
	} {
		if b := check(stats); b != nil {
			out = append(out, *b)
		}
	}

	bd.history[bd.next] = stats
	bd.next = (bd.next + 1) % len(bd.history)
	if bd.next == 0 {
		bd.full = true
	}
	return out
}

func (bd *BookmarkDetector) recent() []FrameStats {
	if bd.full {
		return bd.history
	}
	return bd.history[:bd.next]
}

// Reset forgets the history, for use after the particles are respawned.
func (bd *BookmarkDetector) Reset() {
	bd.next = 0
	bd.full = false
	bd.stableWindows = 0
	bd.settledFired = false
	bd.nonFiniteSeen = false
}

func (bd *BookmarkDetector) checkNonFinite(stats FrameStats) *Bookmark {
	if stats.NonFinite == 0 || bd.nonFiniteSeen {
		return nil
	}
	bd.nonFiniteSeen = true
	return &Bookmark{
		Type:        BookmarkNonFinite,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d non-finite values in particle state", stats.NonFinite),
	}
}

func (bd *BookmarkDetector) checkEnergySpike(stats FrameStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 {
		return nil
	}
	var sum float64
	for _, h := range history {
		sum += h.KineticEnergy
	}
	avg := sum / float64(len(history))
	if avg <= 0 {
		return nil
	}
	if stats.KineticEnergy > 3*avg {
		return &Bookmark{
			Type:        BookmarkEnergySpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Kinetic energy %.3g is %.1fx average (%.3g)", stats.KineticEnergy, stats.KineticEnergy/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCompression(stats FrameStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 {
		return nil
	}
	var sum float64
	for _, h := range history {
		sum += h.DensityMax
	}
	avg := sum / float64(len(history))
	if avg <= 0 {
		return nil
	}
	if stats.DensityMax > 2*avg {
		return &Bookmark{
			Type:        BookmarkCompression,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Peak density %.3g is %.1fx average (%.3g)", stats.DensityMax, stats.DensityMax/avg, avg),
		}
	}
	return nil
}

// checkSettled fires once when the density CV has moved less than 0.02 between
// consecutive windows five times in a row.
func (bd *BookmarkDetector) checkSettled(stats FrameStats) *Bookmark {
	history := bd.recent()
	if len(history) == 0 || bd.settledFired {
		return nil
	}
	last := history[(bd.next-1+len(bd.history))%len(bd.history)]

	delta := stats.DensityCV - last.DensityCV
	if delta < 0 {
		delta = -delta
	}
	if delta < 0.02 && stats.Particles > 0 {
		bd.stableWindows++
	} else {
		bd.stableWindows = 0
	}

	if bd.stableWindows == 5 {
		bd.settledFired = true
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Density CV steady at %.3f over 5 windows", stats.DensityCV),
		}
	}
	return nil
}
