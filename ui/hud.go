package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/telemetry"
)

// HUDData holds everything the heads-up panel shows.
type HUDData struct {
	Tick           int32
	SimTime        float64
	Particles      int
	StepsPerUpdate int
	Paused         bool
	Interacting    bool
	Mode           string
	Kernel         string

	Stats    telemetry.FrameStats
	HasStats bool

	Perf     telemetry.PerfStats
	ShowPerf bool
}

func hud(data any) *HUDData { return data.(*HUDData) }

func hasStats(data any) bool { return hud(data).HasStats }

// HUDPanel describes the stats panel.
func HUDPanel() PanelDescriptor {
	return PanelDescriptor{
		ID:    "hud",
		Title: "SPH Fluid",
		Width: 240,
		Sections: []SectionDescriptor{
			{
				ID: "simulation",
				Fields: []FieldDescriptor{
					{ID: "tick", Label: "Tick", Widget: WidgetText, TextGetter: func(d any) string {
						return fmt.Sprintf("%d (%.1fs)", hud(d).Tick, hud(d).SimTime)
					}},
					{ID: "particles", Label: "Particles", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return float64(hud(d).Particles) }},
					{ID: "speed", Label: "Speed", Widget: WidgetText, TextGetter: func(d any) string {
						return fmt.Sprintf("%dx  [</>]", hud(d).StepsPerUpdate)
					}},
					{ID: "fps", Label: "FPS", Widget: WidgetText, Format: "%.0f",
						Getter: func(d any) float64 { return hud(d).Perf.FPS }},
					{ID: "kernel", Label: "Kernel", Widget: WidgetText,
						TextGetter: func(d any) string { return hud(d).Kernel }},
					{ID: "pointer", Label: "Pointer", Widget: WidgetText, TextGetter: func(d any) string {
						if hud(d).Interacting {
							return hud(d).Mode
						}
						return "off"
					}},
				},
			},
			{
				ID:      "density",
				Title:   "Density",
				Visible: hasStats,
				Fields: []FieldDescriptor{
					{ID: "rho_mean", Label: "Mean", Widget: WidgetText, Format: "%.4f",
						Getter: func(d any) float64 { return hud(d).Stats.DensityMean }},
					{ID: "rho_cv", Label: "CV", Widget: WidgetBar, Range: DefaultRange(),
						Getter: func(d any) float64 { return hud(d).Stats.DensityCV }},
					{ID: "rho_pct", Label: "p10/50/90", Widget: WidgetText, TextGetter: func(d any) string {
						s := hud(d).Stats
						return fmt.Sprintf("%.3f %.3f %.3f", s.DensityP10, s.DensityP50, s.DensityP90)
					}},
					{ID: "rho_max", Label: "Max", Widget: WidgetText, Format: "%.4f",
						Getter: func(d any) float64 { return hud(d).Stats.DensityMax }},
				},
			},
			{
				ID:      "motion",
				Title:   "Motion",
				Visible: hasStats,
				Fields: []FieldDescriptor{
					{ID: "mean_speed", Label: "Mean speed", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return hud(d).Stats.MeanSpeed }},
					{ID: "max_speed", Label: "Max speed", Widget: WidgetText, Format: "%.1f",
						Getter: func(d any) float64 { return hud(d).Stats.MaxSpeed }},
					{ID: "kinetic", Label: "Kinetic", Widget: WidgetText, Format: "%.3g",
						Getter: func(d any) float64 { return hud(d).Stats.KineticEnergy }},
					{ID: "skips", Label: "Skipped", Widget: WidgetText, TextGetter: func(d any) string {
						s := hud(d).Stats
						return fmt.Sprintf("%d dist, %d rho", s.ZeroDistanceSkips, s.ZeroDensitySkips)
					}},
				},
			},
			perfSection(),
		},
	}
}

// perfSection shows each phase's share of the step time.
func perfSection() SectionDescriptor {
	sd := SectionDescriptor{
		ID:      "perf",
		Title:   "Step timings",
		Visible: func(d any) bool { return hud(d).ShowPerf },
		Fields: []FieldDescriptor{
			{ID: "tick_avg", Label: "Avg tick", Widget: WidgetText,
				TextGetter: func(d any) string { return hud(d).Perf.AvgTickDuration.String() }},
		},
	}
	for _, phase := range telemetry.Phases {
		sd.Fields = append(sd.Fields, FieldDescriptor{
			ID:     "pct_" + phase,
			Label:  phase,
			Widget: WidgetBar,
			Range:  FieldRange{Min: 0, Max: 100},
			Getter: func(d any) float64 { return hud(d).Perf.PhasePct[phase] },
		})
	}
	return sd
}

// HUD renders the stats panel and the status line.
type HUD struct {
	renderer *Renderer
	panel    PanelDescriptor
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		panel:    HUDPanel(),
	}
}

// Draw renders the HUD at (x, y) and returns its bottom edge.
func (h *HUD) Draw(x, y int32, data *HUDData) int32 {
	bottom := h.renderer.DrawPanelDescriptor(x, y, h.panel, data)
	if data.Paused {
		rl.DrawText("PAUSED", x, bottom+6, 20, rl.Yellow)
		bottom += 26
	}
	return bottom
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-20, 12, rl.Gray)
}
