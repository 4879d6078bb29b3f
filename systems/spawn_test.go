package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/sph2d/config"
)

var testArea = SpawnArea{Width: 640, Height: 1040, Wall: 20}

func TestRandomLayoutBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pts := RandomLayout(500, testArea, rng)

	if len(pts) != 500 {
		t.Fatalf("got %d points, want 500", len(pts))
	}
	for i, p := range pts {
		if p.X < 20 || p.X > 620 || p.Y < 20 || p.Y > 1020 {
			t.Errorf("point %d = %v outside walls", i, p)
		}
		if p.X != math.Trunc(p.X) || p.Y != math.Trunc(p.Y) {
			t.Errorf("point %d = %v not on integer coordinates", i, p)
		}
	}
}

func TestRandomLayoutDeterministic(t *testing.T) {
	a := RandomLayout(50, testArea, rand.New(rand.NewSource(42)))
	b := RandomLayout(50, testArea, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs for equal seeds: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestOrganizedLayout(t *testing.T) {
	const spacing, radius = 25.0, 5.0

	tests := []struct {
		name  string
		n     int
		extra int // points outside the square
	}{
		{"perfect square", 196, 0},
		{"default count", 200, 4},
		{"single", 1, 0},
		{"two rows of leftovers", 15, 6},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pts := OrganizedLayout(tc.n, testArea, spacing, radius)
			if len(pts) != tc.n {
				t.Fatalf("got %d points, want %d", len(pts), tc.n)
			}

			side := int(math.Sqrt(float64(tc.n)))
			startX := (testArea.Width-float64(side)*spacing)/2 + radius
			startY := (testArea.Height-float64(side)*spacing)/2 + radius

			if pts[0].X != startX || pts[0].Y != startY {
				t.Errorf("first point %v, want (%g, %g)", pts[0], startX, startY)
			}
			above := 0
			for _, p := range pts {
				if p.Y < startY {
					above++
				}
				if p.X < startX || p.X > startX+float64(side-1)*spacing {
					t.Errorf("point %v wider than the square", p)
				}
			}
			if above != tc.extra {
				t.Errorf("%d points above the square, want %d", above, tc.extra)
			}
		})
	}
}

func TestOrganizedLayoutSpacing(t *testing.T) {
	pts := OrganizedLayout(9, testArea, 25, 5)
	for i := 1; i < 3; i++ {
		if d := pts[i].X - pts[i-1].X; d != 25 {
			t.Errorf("column spacing %g, want 25", d)
		}
	}
	if d := pts[3].Y - pts[0].Y; d != 25 {
		t.Errorf("row spacing %g, want 25", d)
	}
}

func TestLayoutPatterns(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, pattern := range []string{config.SpawnRandom, config.SpawnOrganized} {
		pts, err := Layout(pattern, 30, testArea, 5, 5, rng)
		if err != nil {
			t.Fatalf("Layout(%q): %v", pattern, err)
		}
		if len(pts) != 30 {
			t.Errorf("Layout(%q) returned %d points", pattern, len(pts))
		}
	}
	if _, err := Layout("spiral", 30, testArea, 5, 5, rng); err == nil {
		t.Error("expected error for unknown pattern")
	}
}
