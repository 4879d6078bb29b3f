package systems

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/config"
)

// SpawnArea describes where particles may be placed.
type SpawnArea struct {
	Width, Height float64
	Wall          float64
}

// Layout returns n spawn positions for the named pattern.
func Layout(pattern string, n int, area SpawnArea, radius, spacingFactor float64, rng *rand.Rand) ([]r2.Vec, error) {
	switch pattern {
	case config.SpawnRandom:
		return RandomLayout(n, area, rng), nil
	case config.SpawnOrganized:
		return OrganizedLayout(n, area, radius*spacingFactor, radius), nil
	}
	return nil, fmt.Errorf("unknown spawn pattern %q", pattern)
}

// RandomLayout scatters n particles at integer coordinates inside the walls,
// bounds inclusive.
func RandomLayout(n int, area SpawnArea, rng *rand.Rand) []r2.Vec {
	lo := int(area.Wall)
	spanX := int(area.Width-area.Wall) - lo + 1
	spanY := int(area.Height-area.Wall) - lo + 1
	if spanX < 1 {
		spanX = 1
	}
	if spanY < 1 {
		spanY = 1
	}

	out := make([]r2.Vec, n)
	for i := range out {
		out[i] = r2.Vec{
			X: float64(lo + rng.Intn(spanX)),
			Y: float64(lo + rng.Intn(spanY)),
		}
	}
	return out
}

// OrganizedLayout places particles on a square lattice centred in the area.
// The largest square that fits n is filled first; the remainder is stacked in
// rows above it, each at most as wide as the square.
func OrganizedLayout(n int, area SpawnArea, spacing, radius float64) []r2.Vec {
	side := int(math.Sqrt(float64(n)))
	remaining := n - side*side

	startX := (area.Width-float64(side)*spacing)/2 + radius
	startY := (area.Height-float64(side)*spacing)/2 + radius

	out := make([]r2.Vec, 0, n)
	for row := 0; row < side; row++ {
		for col := 0; col < side; col++ {
			out = append(out, r2.Vec{
				X: startX + float64(col)*spacing,
				Y: startY + float64(row)*spacing,
			})
		}
	}

	if remaining > 0 {
		rowWidth := side
		if rowWidth < 1 {
			rowWidth = 1
		}
		x := startX
		y := startY - spacing
		inRow := 0
		for i := 0; i < remaining; i++ {
			if inRow >= rowWidth {
				y -= spacing
				x = startX
				inRow = 0
			}
			out = append(out, r2.Vec{X: x, Y: y})
			x += spacing
			inRow++
		}
	}
	return out
}
