package rocketsolver

import (
	"fmt"
	"math"
	"strings"
)

// Propellant supplies the combustion properties the solver consumes: a
// piecewise empirical burn-rate law over pressure bands and the gas
// properties of the combustion products. Property tables themselves are
// upstream inputs; this file only carries the premixes the examples and
// tests use.
type Propellant struct {
	Name                     string
	Density                  float64 // kg/m³, ideal
	CombustionEfficiency     float64
	FlameTemperature         float64 // K, T0
	SpecificHeatRatio        float64 // k of the chamber mix
	ExhaustSpecificHeatRatio float64 // k of the two-phase exhaust
	GasConstant              float64 // J/(kg·K), per molecular weight
	IspFrozen                float64 // s
	IspShifting              float64 // s
	TwoPhaseFraction         float64 // condensed-phase mass fraction
	BurnRateBands            []BurnRateBand
}

// BurnRateBand is one pressure band of the empirical law r = A·(P/MPa)^N,
// with r in mm/s.
type BurnRateBand struct {
	MinPressure float64 // Pa
	MaxPressure float64 // Pa
	A           float64
	N           float64
}

// BurnRate returns the burn rate in m/s at the given chamber pressure.
// Pressures outside the measured bands clamp to the nearest band, matching
// the source tables.
func (p Propellant) BurnRate(pressure float64) float64 {
	bands := p.BurnRateBands
	if len(bands) == 0 {
		return 0
	}
	band := bands[0]
	for _, b := range bands {
		band = b
		if pressure <= b.MaxPressure {
			break
		}
	}
	mpa := pressure * 1e-6
	if mpa < band.MinPressure*1e-6 {
		mpa = band.MinPressure * 1e-6
	}
	if mpa > band.MaxPressure*1e-6 {
		mpa = band.MaxPressure * 1e-6
	}
	return band.A * math.Pow(mpa, band.N) * 1e-3
}

// EffectiveDensity is the ideal density derated by combustion efficiency.
func (p Propellant) EffectiveDensity() float64 {
	return p.Density * p.CombustionEfficiency
}

/* Premix catalog (Nakka characterization data). */

// KNSB is potassium nitrate / sorbitol, 65/35.
var KNSB = Propellant{
	Name:                     "KNSB",
	Density:                  1837.3,
	CombustionEfficiency:     0.95,
	FlameTemperature:         1600,
	SpecificHeatRatio:        1.1361,
	ExhaustSpecificHeatRatio: 1.1371,
	GasConstant:              8314.5 / 39.86,
	IspFrozen:                152.4,
	IspShifting:              154.1,
	TwoPhaseFraction:         0.44,
	BurnRateBands: []BurnRateBand{
		{0.103e6, 0.807e6, 10.71, 0.625},
		{0.807e6, 1.503e6, 8.763, -0.314},
		{1.503e6, 3.792e6, 7.852, -0.013},
		{3.792e6, 7.033e6, 3.907, 0.535},
		{7.033e6, 10.67e6, 9.653, 0.064},
	},
}

// KNDX is potassium nitrate / dextrose, 65/35.
var KNDX = Propellant{
	Name:                     "KNDX",
	Density:                  1879.0,
	CombustionEfficiency:     0.95,
	FlameTemperature:         1710,
	SpecificHeatRatio:        1.1308,
	ExhaustSpecificHeatRatio: 1.1318,
	GasConstant:              8314.5 / 42.39,
	IspFrozen:                153.2,
	IspShifting:              154.9,
	TwoPhaseFraction:         0.44,
	BurnRateBands: []BurnRateBand{
		{0.103e6, 0.779e6, 8.875, 0.619},
		{0.779e6, 2.572e6, 7.553, -0.009},
		{2.572e6, 5.930e6, 3.841, 0.688},
		{5.930e6, 8.502e6, 17.20, -0.148},
		{8.502e6, 11.20e6, 4.775, 0.442},
	},
}

// KNSU is potassium nitrate / sucrose, 65/35.
var KNSU = Propellant{
	Name:                     "KNSU",
	Density:                  1889.0,
	CombustionEfficiency:     0.95,
	FlameTemperature:         1720,
	SpecificHeatRatio:        1.1330,
	ExhaustSpecificHeatRatio: 1.1340,
	GasConstant:              8314.5 / 41.98,
	IspFrozen:                153.1,
	IspShifting:              155.0,
	TwoPhaseFraction:         0.44,
	BurnRateBands: []BurnRateBand{
		{0.1e6, 10.3e6, 8.26, 0.319},
	},
}

// KNER is potassium nitrate / erythritol, 65/35.
var KNER = Propellant{
	Name:                     "KNER",
	Density:                  1820.0,
	CombustionEfficiency:     0.95,
	FlameTemperature:         1608,
	SpecificHeatRatio:        1.1390,
	ExhaustSpecificHeatRatio: 1.1400,
	GasConstant:              8314.5 / 38.78,
	IspFrozen:                153.8,
	IspShifting:              156.0,
	TwoPhaseFraction:         0.44,
	BurnRateBands: []BurnRateBand{
		{0.1e6, 10.3e6, 2.903, 0.395},
	},
}

// PropellantFromString returns the propellant from its name
func PropellantFromString(name string) (Propellant, error) {
	switch strings.ToUpper(name) {
	case "KNSB":
		return KNSB, nil
	case "KNDX":
		return KNDX, nil
	case "KNSU":
		return KNSU, nil
	case "KNER":
		return KNER, nil
	default:
		return Propellant{}, fmt.Errorf("undefined propellant '%s'", name)
	}
}
