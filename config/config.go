// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Kernel families selectable through sph.kernel_family.
const (
	KernelMixed     = "mixed"     // cubic density kernel, quadratic-kernel slope
	KernelQuadratic = "quadratic" // quadratic kernel and its own derivative
	KernelCubic     = "cubic"     // cubic kernel and its own derivative
)

// Spawn patterns selectable through particles.spawn_pattern.
const (
	SpawnRandom    = "random"
	SpawnOrganized = "organized"
)

// Interaction modes selectable through interaction.mode.
const (
	InteractionRepel   = "repel"
	InteractionAttract = "attract"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen      ScreenConfig      `yaml:"screen"`
	Domain      DomainConfig      `yaml:"domain"`
	Particles   ParticlesConfig   `yaml:"particles"`
	SPH         SPHConfig         `yaml:"sph"`
	Interaction InteractionConfig `yaml:"interaction"`
	Physics     PhysicsConfig     `yaml:"physics"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings. The simulation domain is the screen.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// DomainConfig describes the bounding walls around the domain.
type DomainConfig struct {
	WallThickness float64 `yaml:"wall_thickness"` // Each wall; the grid margin is twice this
}

// ParticlesConfig holds particle creation parameters.
type ParticlesConfig struct {
	Count         int     `yaml:"count"`
	Mass          float64 `yaml:"mass"`
	Radius        float64 `yaml:"radius"`         // Render/layout only, not the SPH radius
	SpawnPattern  string  `yaml:"spawn_pattern"`  // random | organized
	SpacingFactor float64 `yaml:"spacing_factor"` // Organized lattice spacing = radius * this
}

// SPHConfig holds the smoothing kernel and equation-of-state parameters.
type SPHConfig struct {
	SmoothingRadius    float64 `yaml:"smoothing_radius"` // Also the grid cell size
	KernelFamily       string  `yaml:"kernel_family"`
	TargetDensity      float64 `yaml:"target_density"`
	PressureMultiplier float64 `yaml:"pressure_multiplier"`
}

// InteractionConfig holds pointer interaction parameters.
type InteractionConfig struct {
	Mode     string  `yaml:"mode"` // repel | attract
	Strength float64 `yaml:"strength"`
}

// PhysicsConfig holds integrator parameters for the body store.
type PhysicsConfig struct {
	GravityX    float64 `yaml:"gravity_x"`
	GravityY    float64 `yaml:"gravity_y"`
	Restitution float64 `yaml:"restitution"` // Velocity kept (and flipped) on wall contact
	MaxSpeed    float64 `yaml:"max_speed"`   // 0 = unlimited
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT       float64 // 1 / TargetFPS
	Margin   float64 // Total wall thickness per axis
	GridCols int     // floor((Width - Margin) / SmoothingRadius)
	GridRows int     // floor((Height - Margin) / SmoothingRadius)
	DomainW  float64 // Screen.Width as float64
	DomainH  float64 // Screen.Height as float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults, validated and derived.
func Default() (*Config, error) {
	return Load("")
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	return Parse(data)
}

// Parse merges YAML data over the embedded defaults, then validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if len(data) > 0 {
		// Unmarshal into same struct - only overwrites fields present in data
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Recompute validates c and refreshes derived values after fields were edited in place.
func (c *Config) Recompute() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT = 1.0 / float64(c.Screen.TargetFPS)
	c.Derived.Margin = 2 * c.Domain.WallThickness
	c.Derived.DomainW = float64(c.Screen.Width)
	c.Derived.DomainH = float64(c.Screen.Height)
	c.Derived.GridCols = int(math.Floor((c.Derived.DomainW - c.Derived.Margin) / c.SPH.SmoothingRadius))
	c.Derived.GridRows = int(math.Floor((c.Derived.DomainH - c.Derived.Margin) / c.SPH.SmoothingRadius))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
