// Package colormap turns scalar particle values into colours through a
// precomputed HSV hue ramp.
package colormap

import (
	"fmt"
	"image/color"
	"math"

	"github.com/crazy3lf/colorconv"
)

// Map is a lookup table of colours indexed by a value in [0, 1].
type Map struct {
	table []color.RGBA
}

// NewHueRamp builds a size-entry table sweeping hue from hueFrom to hueTo
// degrees at full saturation and value.
func NewHueRamp(hueFrom, hueTo float64, size int, alpha uint8) (*Map, error) {
	if size < 2 {
		return nil, fmt.Errorf("colormap needs at least 2 entries, got %d", size)
	}
	for _, h := range []float64{hueFrom, hueTo} {
		if h < 0 || h > 360 {
			return nil, fmt.Errorf("hue %g outside [0, 360]", h)
		}
	}

	m := &Map{table: make([]color.RGBA, size)}
	for i := range m.table {
		t := float64(i) / float64(size-1)
		hue := hueFrom + (hueTo-hueFrom)*t
		r, g, b, err := colorconv.HSVToRGB(hue, 1, 1)
		if err != nil {
			return nil, fmt.Errorf("hue %g: %w", hue, err)
		}
		m.table[i] = color.RGBA{R: r, G: g, B: b, A: alpha}
	}
	return m, nil
}

// Len returns the number of table entries.
func (m *Map) Len() int { return len(m.table) }

// At returns the colour for t, clamped to [0, 1]. NaN maps to the low end.
func (m *Map) At(t float64) color.RGBA {
	if !(t > 0) {
		return m.table[0]
	}
	if t >= 1 {
		return m.table[len(m.table)-1]
	}
	return m.table[int(math.Round(t*float64(len(m.table)-1)))]
}

// Scaled returns the colour for v on the range [lo, hi].
func (m *Map) Scaled(v, lo, hi float64) color.RGBA {
	if !(hi > lo) {
		return m.table[0]
	}
	return m.At((v - lo) / (hi - lo))
}
