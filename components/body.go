package components

// Body holds physical properties of a particle body.
type Body struct {
	Radius float64 // render and spawn layout only
	Mass   float64
}

// Particle tags a body as a fluid particle. Index is the particle's slot in
// the store and stays stable until the next reset.
type Particle struct {
	Index int
}
