package systems

// EquationOfState maps density to pressure linearly around a rest density.
type EquationOfState struct {
	TargetDensity      float64
	PressureMultiplier float64
}

// Pressure returns (rho - TargetDensity) * PressureMultiplier.
func (e EquationOfState) Pressure(rho float64) float64 {
	return (rho - e.TargetDensity) * e.PressureMultiplier
}

// SharedPressure is the mean pressure of a pair, which keeps pair forces symmetric.
func (e EquationOfState) SharedPressure(rhoA, rhoB float64) float64 {
	return (e.Pressure(rhoA) + e.Pressure(rhoB)) / 2
}
