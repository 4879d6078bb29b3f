package colormap

import (
	"image/color"
	"math"
	"testing"
)

func mustRamp(t *testing.T, size int) *Map {
	t.Helper()
	m, err := NewHueRamp(240, 0, size, 200)
	if err != nil {
		t.Fatalf("NewHueRamp: %v", err)
	}
	return m
}

func TestHueRampEndpoints(t *testing.T) {
	m := mustRamp(t, 3)

	tests := []struct {
		name string
		t    float64
		want color.RGBA
	}{
		{"slow is blue", 0, color.RGBA{B: 255, A: 200}},
		{"middle is green", 0.5, color.RGBA{G: 255, A: 200}},
		{"fast is red", 1, color.RGBA{R: 255, A: 200}},
		{"below range clamps", -3, color.RGBA{B: 255, A: 200}},
		{"above range clamps", 7, color.RGBA{R: 255, A: 200}},
		{"NaN maps low", math.NaN(), color.RGBA{B: 255, A: 200}},
		{"+Inf maps high", math.Inf(1), color.RGBA{R: 255, A: 200}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.At(tt.t); got != tt.want {
				t.Errorf("At(%g) = %+v, want %+v", tt.t, got, tt.want)
			}
		})
	}
}

func TestScaled(t *testing.T) {
	m := mustRamp(t, 3)

	if got := m.Scaled(150, 100, 200); got != m.At(0.5) {
		t.Errorf("Scaled(150, 100, 200) = %+v, want %+v", got, m.At(0.5))
	}
	if got := m.Scaled(5, 1, 1); got != m.At(0) {
		t.Errorf("empty range should map low, got %+v", got)
	}
	if got := m.Scaled(5, 2, 1); got != m.At(0) {
		t.Errorf("inverted range should map low, got %+v", got)
	}
}

func TestNewHueRampRejectsBadInput(t *testing.T) {
	tests := []struct {
		name     string
		from, to float64
		size     int
	}{
		{"one entry", 240, 0, 1},
		{"negative hue", -10, 0, 16},
		{"hue above 360", 0, 400, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHueRamp(tt.from, tt.to, tt.size, 255); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestHueRampLength(t *testing.T) {
	if got := mustRamp(t, 256).Len(); got != 256 {
		t.Errorf("Len = %d, want 256", got)
	}
}
