package rocketsolver

import "math"

// paToPsi converts pascal to psi (the loss correlations are imperial).
const paToPsi = 1.450377e-4

// metersToInches converts meters to inches.
const metersToInches = 1 / 0.0254

// CriticalPressureRatio returns the exit/chamber pressure ratio below which
// the nozzle flow is choked.
func CriticalPressureRatio(k float64) float64 {
	return math.Pow(2/(k+1), k/(k-1))
}

// ExitMach solves the supersonic branch of the area–Mach relation for the
// given expansion ratio by bisection.
func ExitMach(expansionRatio, k float64) float64 {
	if expansionRatio <= 1 {
		return 1
	}
	areaRatio := func(m float64) float64 {
		return math.Pow((2/(k+1))*(1+(k-1)/2*m*m), (k+1)/(2*(k-1))) / m
	}
	lo, hi := 1.0, 50.0
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if areaRatio(mid) < expansionRatio {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// ExitPressure returns the nozzle exit pressure for isentropic expansion
// from chamber pressure p0 through the given expansion ratio.
func ExitPressure(p0, expansionRatio, k float64) float64 {
	m := ExitMach(expansionRatio, k)
	return p0 * math.Pow(1+(k-1)/2*m*m, -k/(k-1))
}

// ThrustCoefficients returns the ideal and the corrected thrust coefficient.
// nCf is the combined correction factor (losses, divergence, combustion
// efficiency) applied multiplicatively to the ideal coefficient.
func ThrustCoefficients(chamberPressure, exitPressure, externalPressure, expansionRatio, k, nCf float64) (cfIdeal, cfReal float64) {
	pr := exitPressure / chamberPressure
	momentum := (2 * k * k / (k - 1)) *
		math.Pow(2/(k+1), (k+1)/(k-1)) *
		(1 - math.Pow(pr, (k-1)/k))
	if momentum < 0 {
		momentum = 0
	}
	cfIdeal = math.Sqrt(momentum) + (exitPressure-externalPressure)/chamberPressure*expansionRatio
	return cfIdeal, cfIdeal * nCf
}

// ThrustFromCf converts a thrust coefficient into thrust.
func ThrustFromCf(cf, chamberPressure, throatArea float64) float64 {
	return cf * chamberPressure * throatArea
}

// OptimalExpansionRatio returns the expansion ratio that matches the exit
// pressure to the external pressure, 1 when the flow is unchoked.
func OptimalExpansionRatio(externalPressure, chamberPressure, k float64) float64 {
	pr := externalPressure / chamberPressure
	if pr > CriticalPressureRatio(k) {
		return 1
	}
	inv := math.Pow((k+1)/2, 1/(k-1)) * math.Pow(pr, 1/k) *
		math.Sqrt((k+1)/(k-1)*(1-math.Pow(pr, (k-1)/k)))
	return 1 / inv
}

// LossFactors are the empirical thrust-coefficient losses, in percent.
type LossFactors struct {
	Kinetic       float64
	TwoPhase      float64
	BoundaryLayer float64
}

// Total is the combined loss percentage.
func (l LossFactors) Total() float64 {
	return l.Kinetic + l.TwoPhase + l.BoundaryLayer
}

// Boundary-layer loss constants (a015140 correlation).
const (
	lossC1 = 0.00506
	lossC2 = 0.0
)

// OperationalCorrectionFactors evaluates the kinetic, two-phase and
// boundary-layer loss correlations (a015140) for one sample of the burn.
// They are defined only below the nozzle's critical pressure ratio; above
// it the losses are zero. freeVolume is the early-burn chamber free volume
// used by the two-phase residence term.
func OperationalCorrectionFactors(chamberPressure, externalPressure, expansionRatio, freeVolume, elapsed float64,
	prop Propellant, nozzle Nozzle) LossFactors {

	var l LossFactors
	p0psi := chamberPressure * paToPsi
	if p0psi >= 200 {
		l.Kinetic = 33.3 * 200 * (prop.IspFrozen / prop.IspShifting) / p0psi
	}

	if externalPressure/chamberPressure > CriticalPressureRatio(prop.ExhaustSpecificHeatRatio) {
		return LossFactors{Kinetic: 0, TwoPhase: 0, BoundaryLayer: 0}
	}

	dtIn := nozzle.ThroatDiameter * metersToInches
	termC2 := 1 + 2*math.Exp(-lossC2*math.Pow(p0psi, 0.8)*elapsed/math.Pow(dtIn, 0.2))
	eCf := 1 + 0.016*math.Pow(expansionRatio, -9)
	l.BoundaryLayer = lossC1 * (math.Pow(p0psi, 0.8) / math.Pow(dtIn, 0.2)) * termC2 * eCf

	qsi := prop.TwoPhaseFraction
	charLength := freeVolume / nozzle.ThroatArea() * metersToInches
	c7 := 0.454 * math.Pow(p0psi, 0.33) * math.Pow(qsi, 0.33) *
		(1 - math.Exp(-0.004*charLength)*(1+0.045*dtIn))

	molarMass := 8314.5 / prop.GasConstant // kg/kmol
	var c3, c4, c5, c6 float64
	if 1/molarMass >= 0.9 {
		c4 = 0.5
		switch {
		case dtIn < 1:
			c3, c5, c6 = 9, 1, 1
		case dtIn < 2:
			c3, c5, c6 = 9, 1, 0.8
		default:
			switch {
			case c7 < 4:
				c3, c5, c6 = 13.4, 0.8, 0.8
			case c7 <= 8:
				c3, c5, c6 = 10.2, 0.8, 0.4
			default:
				c3, c5, c6 = 7.58, 0.8, 0.33
			}
		}
	} else {
		c4 = 1
		switch {
		case dtIn < 1:
			c3, c5, c6 = 44.5, 0.8, 0.8
		case dtIn < 2:
			c3, c5, c6 = 30.4, 0.8, 0.4
		default:
			switch {
			case c7 < 4:
				c3, c5, c6 = 44.5, 0.8, 0.8
			case c7 <= 8:
				c3, c5, c6 = 30.4, 0.8, 0.4
			default:
				c3, c5, c6 = 25.2, 0.8, 0.33
			}
		}
	}
	l.TwoPhase = c3 * (qsi * c4 * math.Pow(c7, c5)) /
		(math.Pow(p0psi, 0.15) * math.Pow(expansionRatio, 0.08) * math.Pow(dtIn, c6))
	return l
}

// CorrectionFactor composes the loss percentages with the divergence and
// combustion-efficiency corrections into the multiplier applied to the
// ideal thrust coefficient.
func CorrectionFactor(losses LossFactors, nozzle Nozzle, prop Propellant) float64 {
	return (100 - losses.Total()) / 100 * nozzle.DivergentCorrectionFactor() * prop.CombustionEfficiency
}
