package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/config"
)

// 500x500 domain without walls: a 10x10 grid of 50px cells.
func testParams() FluidParams {
	return FluidParams{
		Width:               500,
		Height:              500,
		SmoothingRadius:     50,
		KernelFamily:        config.KernelMixed,
		EOS:                 EquationOfState{TargetDensity: 1, PressureMultiplier: 10000},
		InteractionMode:     config.InteractionRepel,
		InteractionStrength: 1e7,
	}
}

func newTestFluid(t testing.TB, mutate func(*FluidParams)) *FluidSystem {
	t.Helper()
	p := testParams()
	if mutate != nil {
		mutate(&p)
	}
	s, err := NewFluidSystem(p)
	if err != nil {
		t.Fatalf("NewFluidSystem: %v", err)
	}
	return s
}

func pair(dx float64, mass float64) Particles {
	return Particles{
		{Position: r2.Vec{X: 100, Y: 100}, Mass: mass, Radius: 5},
		{Position: r2.Vec{X: 100 + dx, Y: 100}, Mass: mass, Radius: 5},
	}
}

func assertFinite(t *testing.T, ps Particles) {
	t.Helper()
	for i, p := range ps {
		v := p.Velocity
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) {
			t.Fatalf("particle %d has non-finite velocity %v", i, v)
		}
	}
}

func TestNewFluidSystemRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FluidParams)
	}{
		{"zero radius", func(p *FluidParams) { p.SmoothingRadius = 0 }},
		{"NaN radius", func(p *FluidParams) { p.SmoothingRadius = math.NaN() }},
		{"unknown kernel", func(p *FluidParams) { p.KernelFamily = "spiky" }},
		{"unknown interaction", func(p *FluidParams) { p.InteractionMode = "swirl" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := testParams()
			tc.mutate(&p)
			if _, err := NewFluidSystem(p); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFluidParamsFromConfig(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default: %v", err)
	}
	s, err := NewFluidSystem(FluidParamsFromConfig(cfg))
	if err != nil {
		t.Fatalf("NewFluidSystem: %v", err)
	}
	if s.Grid().Cols() != cfg.Derived.GridCols || s.Grid().Rows() != cfg.Derived.GridRows {
		t.Errorf("grid %dx%d, config derives %dx%d",
			s.Grid().Cols(), s.Grid().Rows(), cfg.Derived.GridCols, cfg.Derived.GridRows)
	}
	if s.Kernel().Radius() != cfg.SPH.SmoothingRadius {
		t.Errorf("kernel radius %g, want %g", s.Kernel().Radius(), cfg.SPH.SmoothingRadius)
	}
}

func TestTwoParticleDensity(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := pair(10, 100)

	s.Rebuild(ps)
	if err := s.ComputeDensities(ps); err != nil {
		t.Fatalf("ComputeDensities: %v", err)
	}

	const h = 50.0
	volume := math.Pi * math.Pow(h, 5) / 10
	w := func(d float64) float64 { return math.Pow(h-d, 3) / volume }
	want := w(10)*100 + w(0)*100

	for i, got := range s.Densities() {
		if math.Abs(got-want) > 1e-12*want {
			t.Errorf("density[%d] = %g, want %g", i, got, want)
		}
	}
}

func TestDensityIgnoresDistantParticles(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := pair(200, 100)

	s.Rebuild(ps)
	got, err := s.Density(ps, 0)
	if err != nil {
		t.Fatalf("Density: %v", err)
	}
	want := s.Kernel().Weight(0) * 100
	if got != want {
		t.Errorf("density = %g, want self contribution %g", got, want)
	}
}

// The grid search must find exactly what an all-pairs sum finds.
func TestDensityMatchesBruteForce(t *testing.T) {
	for _, family := range kernelFamilies {
		t.Run(family, func(t *testing.T) {
			s := newTestFluid(t, func(p *FluidParams) { p.KernelFamily = family })
			ps := randomParticles(rand.New(rand.NewSource(7)), 400, 0, 499, 0, 499, 100)

			s.Rebuild(ps)
			if err := s.ComputeDensities(ps); err != nil {
				t.Fatalf("ComputeDensities: %v", err)
			}

			k := s.Kernel()
			for i := range ps {
				want := 0.0
				for j := range ps {
					want += k.Weight(r2.Norm(r2.Sub(ps[j].Position, ps[i].Position))) * ps[j].Mass
				}
				got := s.Densities()[i]
				if math.Abs(got-want) > 1e-9*want {
					t.Fatalf("density[%d] = %g, brute force %g", i, got, want)
				}
			}
		})
	}
}

func TestPressurePushesCompressedPairApart(t *testing.T) {
	s := newTestFluid(t, func(p *FluidParams) { p.EOS.TargetDensity = 0 })
	ps := pair(10, 100)

	s.Rebuild(ps)
	if err := s.ComputeDensities(ps); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyPressure(ps); err != nil {
		t.Fatal(err)
	}

	v0, v1 := ps[0].Velocity, ps[1].Velocity
	if v0.X >= 0 || v1.X <= 0 {
		t.Fatalf("expected particles pushed apart, got v0=%v v1=%v", v0, v1)
	}
	if v0.Y != 0 || v1.Y != 0 {
		t.Errorf("expected no vertical impulse, got v0=%v v1=%v", v0, v1)
	}
	if math.Abs(v0.X+v1.X) > 1e-9*math.Abs(v0.X) {
		t.Errorf("impulses not equal and opposite: %g vs %g", v0.X, v1.X)
	}

	// Equal densities: shared pressure is rho*mult, so the impulse is mult*slope*m.
	want := 10000 * s.Kernel().Slope(10) * 100
	if math.Abs(v0.X-want) > 1e-9*math.Abs(want) {
		t.Errorf("impulse = %g, want %g", v0.X, want)
	}
}

func TestPressureAtRestDensityIsZero(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := pair(10, 100)

	s.Rebuild(ps)
	if err := s.ComputeDensities(ps); err != nil {
		t.Fatal(err)
	}
	s.SetEOS(EquationOfState{TargetDensity: s.Densities()[0], PressureMultiplier: 10000})
	if err := s.ApplyPressure(ps); err != nil {
		t.Fatal(err)
	}
	if ps[0].Velocity != (r2.Vec{}) || ps[1].Velocity != (r2.Vec{}) {
		t.Errorf("expected no impulse at rest density, got %v %v", ps[0].Velocity, ps[1].Velocity)
	}
}

func TestPhaseOrdering(t *testing.T) {
	ps := pair(10, 100)

	t.Run("density before rebuild", func(t *testing.T) {
		s := newTestFluid(t, nil)
		if err := s.ComputeDensities(ps); !errors.Is(err, ErrGridNotBuilt) {
			t.Errorf("got %v, want ErrGridNotBuilt", err)
		}
		if _, err := s.Density(ps, 0); !errors.Is(err, ErrGridNotBuilt) {
			t.Errorf("got %v, want ErrGridNotBuilt", err)
		}
	})

	t.Run("pressure before density", func(t *testing.T) {
		s := newTestFluid(t, nil)
		s.Rebuild(ps)
		if err := s.ApplyPressure(ps); !errors.Is(err, ErrDensitiesStale) {
			t.Errorf("ApplyPressure: got %v, want ErrDensitiesStale", err)
		}
		if _, err := s.PressureForce(ps, 0); !errors.Is(err, ErrDensitiesStale) {
			t.Errorf("PressureForce: got %v, want ErrDensitiesStale", err)
		}
		if s.Densities() != nil {
			t.Error("Densities should be nil before the density pass")
		}
	})

	t.Run("densities invalidated by rebuild", func(t *testing.T) {
		s := newTestFluid(t, nil)
		s.Rebuild(ps)
		if err := s.ComputeDensities(ps); err != nil {
			t.Fatal(err)
		}
		s.Rebuild(ps)
		if _, err := s.PressureForce(ps, 0); !errors.Is(err, ErrDensitiesStale) {
			t.Errorf("got %v, want ErrDensitiesStale", err)
		}
	})

	t.Run("pressure twice", func(t *testing.T) {
		s := newTestFluid(t, nil)
		s.Rebuild(ps)
		if err := s.ComputeDensities(ps); err != nil {
			t.Fatal(err)
		}
		if err := s.ApplyPressure(ps); err != nil {
			t.Fatal(err)
		}
		if err := s.ApplyPressure(ps); !errors.Is(err, ErrForcesApplied) {
			t.Errorf("got %v, want ErrForcesApplied", err)
		}
		if s.Phase() != PhaseForces {
			t.Errorf("phase = %v, want %v", s.Phase(), PhaseForces)
		}
	})

	t.Run("particle added after rebuild", func(t *testing.T) {
		s := newTestFluid(t, nil)
		s.Rebuild(ps)
		grown := append(Particles{}, ps...)
		grown = append(grown, Particle{Position: r2.Vec{X: 300, Y: 300}, Mass: 100})
		if err := s.ComputeDensities(grown); !errors.Is(err, ErrParticleCountChanged) {
			t.Errorf("got %v, want ErrParticleCountChanged", err)
		}
	})
}

func TestCoincidentParticlesStayFinite(t *testing.T) {
	s := newTestFluid(t, func(p *FluidParams) { p.EOS.TargetDensity = 0 })
	ps := pair(0, 100)

	if err := s.Step(ps, nil); err != nil {
		t.Fatalf("Step: %v", err)
	}
	assertFinite(t, ps)

	if ps[0].Velocity != (r2.Vec{}) {
		t.Errorf("coincident pair should get no pressure impulse, got %v", ps[0].Velocity)
	}
	if got := s.Guards().ZeroDistance; got != 2 {
		t.Errorf("ZeroDistance guards = %d, want 2", got)
	}
}

func TestZeroDensityNeighbourSkipped(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := pair(10, 0)

	if err := s.Step(ps, nil); err != nil {
		t.Fatalf("Step: %v", err)
	}
	assertFinite(t, ps)
	if got := s.Guards().ZeroDensity; got != 2 {
		t.Errorf("ZeroDensity guards = %d, want 2", got)
	}
}

func TestInteraction(t *testing.T) {
	pointer := r2.Vec{X: 100, Y: 100}

	tests := []struct {
		name        string
		mode        string
		dx          float64
		wantTouched int
		wantSign    float64
	}{
		{"repel pushes away", config.InteractionRepel, 10, 1, 1},
		{"attract pulls in", config.InteractionAttract, 10, 1, -1},
		{"outside support", config.InteractionRepel, 60, 0, 0},
		{"under pointer", config.InteractionRepel, 0, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestFluid(t, func(p *FluidParams) { p.InteractionMode = tc.mode })
			ps := Particles{{Position: r2.Vec{X: 100 + tc.dx, Y: 100}, Mass: 100}}

			s.Rebuild(ps)
			touched, err := s.ApplyInteraction(ps, pointer)
			if err != nil {
				t.Fatalf("ApplyInteraction: %v", err)
			}
			assertFinite(t, ps)
			if touched != tc.wantTouched {
				t.Errorf("touched = %d, want %d", touched, tc.wantTouched)
			}

			vx := ps[0].Velocity.X
			switch {
			case tc.wantSign > 0 && vx <= 0:
				t.Errorf("velocity %g, want positive", vx)
			case tc.wantSign < 0 && vx >= 0:
				t.Errorf("velocity %g, want negative", vx)
			case tc.wantSign == 0 && vx != 0:
				t.Errorf("velocity %g, want 0", vx)
			}
		})
	}
}

func TestInteractionMagnitude(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := Particles{{Position: r2.Vec{X: 100, Y: 110}, Mass: 100}}

	s.Rebuild(ps)
	if _, err := s.ApplyInteraction(ps, r2.Vec{X: 100, Y: 100}); err != nil {
		t.Fatal(err)
	}
	want := -s.Kernel().Slope(10) * 1e7
	if got := ps[0].Velocity.Y; math.Abs(got-want) > 1e-9*want {
		t.Errorf("impulse = %g, want %g", got, want)
	}
}

func TestInteractionPointerUnderParticleCounted(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := Particles{{Position: r2.Vec{X: 100, Y: 100}, Mass: 100}}

	s.Rebuild(ps)
	if _, err := s.ApplyInteraction(ps, r2.Vec{X: 100, Y: 100}); err != nil {
		t.Fatal(err)
	}
	if got := s.Guards().ZeroDistance; got != 1 {
		t.Errorf("ZeroDistance guards = %d, want 1", got)
	}
}

func TestInteractionPointerOutsideDomain(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := Particles{{Position: r2.Vec{X: 5, Y: 5}, Mass: 100}}

	s.Rebuild(ps)
	for _, p := range []r2.Vec{{X: -1000, Y: -1000}, {X: 1e9, Y: 1e9}, {X: math.NaN(), Y: 0}} {
		if _, err := s.ApplyInteraction(ps, p); err != nil {
			t.Fatalf("ApplyInteraction(%v): %v", p, err)
		}
	}
	if ps[0].Velocity != (r2.Vec{}) {
		t.Errorf("far pointer moved particle: %v", ps[0].Velocity)
	}
}

func TestInteractionBeforeRebuild(t *testing.T) {
	s := newTestFluid(t, nil)
	if _, err := s.ApplyInteraction(pair(10, 100), r2.Vec{}); !errors.Is(err, ErrGridNotBuilt) {
		t.Errorf("got %v, want ErrGridNotBuilt", err)
	}
}

func TestQueriesFailAfterMove(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := Particles{
		{Position: r2.Vec{X: 25, Y: 25}, Mass: 100},
		{Position: r2.Vec{X: 175, Y: 25}, Mass: 100},
	}
	if err := s.Step(ps, nil); err != nil {
		t.Fatal(err)
	}
	solved := append([]float64(nil), s.LastDensities()...)

	// Particle 0 now sits 5px from particle 1, three cells from where it was binned
	ps[0].Position = r2.Vec{X: 170, Y: 25}
	s.Invalidate()

	if s.Phase() != PhaseIdle {
		t.Errorf("phase = %v, want %v", s.Phase(), PhaseIdle)
	}
	if _, err := s.Neighbors(ps, 0, nil); !errors.Is(err, ErrGridNotBuilt) {
		t.Errorf("Neighbors: got %v, want ErrGridNotBuilt", err)
	}
	if _, err := s.Density(ps, 0); !errors.Is(err, ErrGridNotBuilt) {
		t.Errorf("Density: got %v, want ErrGridNotBuilt", err)
	}
	if _, err := s.PressureForce(ps, 0); !errors.Is(err, ErrGridNotBuilt) {
		t.Errorf("PressureForce: got %v, want ErrGridNotBuilt", err)
	}
	if _, err := s.ApplyInteraction(ps, r2.Vec{X: 170, Y: 25}); !errors.Is(err, ErrGridNotBuilt) {
		t.Errorf("ApplyInteraction: got %v, want ErrGridNotBuilt", err)
	}
	if s.Densities() != nil {
		t.Error("Densities should be nil once the grid is stale")
	}
	last := s.LastDensities()
	if len(last) != 2 || last[0] != solved[0] || last[1] != solved[1] {
		t.Errorf("LastDensities = %v, want %v", last, solved)
	}

	s.Rebuild(ps)
	got, err := s.Neighbors(ps, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("Neighbors after rebuild = %v, want [1]", got)
	}
}

func TestWithinRadius(t *testing.T) {
	ps := Particles{
		{Position: r2.Vec{X: 100, Y: 100}},
		{Position: r2.Vec{X: 149, Y: 100}},
		{Position: r2.Vec{X: 150, Y: 100}},
		{Position: r2.Vec{X: 100, Y: 100}},
	}
	got := WithinRadius(ps, 0, 50, nil)
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("WithinRadius = %v, want [1 3]", got)
	}
}

func TestStepThenReset(t *testing.T) {
	s := newTestFluid(t, nil)
	ps := randomParticles(rand.New(rand.NewSource(9)), 200, 0, 499, 0, 499, 100)
	pointer := r2.Vec{X: 250, Y: 250}

	for frame := 0; frame < 3; frame++ {
		if err := s.Step(ps, &pointer); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
	}
	assertFinite(t, ps)

	s.Reset()
	if s.Phase() != PhaseIdle {
		t.Errorf("phase after Reset = %v, want %v", s.Phase(), PhaseIdle)
	}
	if s.Densities() != nil {
		t.Error("Densities should be nil after Reset")
	}
	for c := 0; c < s.Grid().NumCells(); c++ {
		if len(s.Grid().Cell(c)) != 0 {
			t.Fatalf("cell %d not empty after Reset", c)
		}
	}
	if err := s.ComputeDensities(ps); !errors.Is(err, ErrGridNotBuilt) {
		t.Errorf("got %v, want ErrGridNotBuilt", err)
	}
}

func TestPhaseString(t *testing.T) {
	if got := PhaseDensities.String(); got != "densities" {
		t.Errorf("got %q", got)
	}
	if got := Phase(42).String(); got != "phase(42)" {
		t.Errorf("got %q", got)
	}
}

func BenchmarkFluidStep(b *testing.B) {
	cfg, err := config.Default()
	if err != nil {
		b.Fatal(err)
	}
	s, err := NewFluidSystem(FluidParamsFromConfig(cfg))
	if err != nil {
		b.Fatal(err)
	}
	ps := randomParticles(rand.New(rand.NewSource(11)), 1000, 20, 620, 20, 1020, cfg.Particles.Mass)

	b.ResetTimer()
	for n := 0; n < b.N; n++ {
		if err := s.Step(ps, nil); err != nil {
			b.Fatal(err)
		}
	}
}
