package components

// Position represents a body's position in screen space.
type Position struct {
	X, Y float64
}

// Velocity represents a body's velocity in screen units per second.
type Velocity struct {
	X, Y float64
}
