package rocketsolver

import "math"

// dischargeCoefficient returns the nozzle discharge term H of the chamber
// pressure balance. Choked flow makes it a constant of the gas; unchoked
// flow depends on the pressure ratio across the nozzle.
func dischargeCoefficient(chamberPressure, externalPressure, k float64) float64 {
	if externalPressure/chamberPressure <= CriticalPressureRatio(k) {
		return math.Sqrt(k/(k+1)) * math.Pow(2/(k+1), 1/(k-1))
	}
	pr := externalPressure / chamberPressure
	return math.Pow(pr, 1/k) * math.Sqrt((k/(k-1))*(1-math.Pow(pr, (k-1)/k)))
}

// chamberPressureDerivative evaluates the lumped chamber pressure balance
// (mass generated by the burning grain minus mass discharged through the
// throat, divided by the instantaneous free volume).
//
// The burn area, burn rate and free volume are held by the caller over the
// integration step; only the pressure varies between stage evaluations.
func chamberPressureDerivative(chamberPressure, externalPressure, burnArea, burnRate, freeVolume, throatArea float64, prop Propellant) float64 {
	r := prop.GasConstant
	t0 := prop.FlameTemperature
	h := dischargeCoefficient(chamberPressure, externalPressure, prop.SpecificHeatRatio)
	generated := r * t0 * burnArea * prop.EffectiveDensity() * burnRate
	discharged := chamberPressure * throatArea * h * math.Sqrt(2*r*t0)
	return (generated - discharged) / freeVolume
}
