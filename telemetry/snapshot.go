package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// ErrSnapshotVersion is returned when reading a snapshot of another format version.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// Snapshot is the particle state at one tick, enough to resume a run.
type Snapshot struct {
	Version int   `json:"version"`
	Seed    int64 `json:"seed"`
	Tick    int32 `json:"tick"`

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	KernelFamily       string  `json:"kernel_family"`
	SmoothingRadius    float64 `json:"smoothing_radius"`
	TargetDensity      float64 `json:"target_density"`
	PressureMultiplier float64 `json:"pressure_multiplier"`

	Particles []ParticleState `json:"particles"`
}

// ParticleState is one particle in a snapshot. Density is the value from the
// last completed density pass, 0 if none ran.
type ParticleState struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	VelX    float64 `json:"vel_x"`
	VelY    float64 `json:"vel_y"`
	Mass    float64 `json:"mass"`
	Radius  float64 `json:"radius"`
	Density float64 `json:"density"`
}

// SaveSnapshot writes s to dir as snapshot_<tick>.json and returns the path.
func SaveSnapshot(s *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", s.Tick))

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}
	return &s, nil
}
