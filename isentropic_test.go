package rocketsolver

import (
	"math"
	"testing"

	floats "gonum.org/v1/gonum/floats/scalar"
)

const flowε = 1e-6

func TestCriticalPressureRatio(t *testing.T) {
	// Air: (2/2.4)^(1.4/0.4) = 0.528282...
	if !floats.EqualWithinAbs(CriticalPressureRatio(1.4), 0.5282817877171742, flowε) {
		t.Fatalf("critical pressure ratio for k=1.4: %f", CriticalPressureRatio(1.4))
	}
}

func TestExitMach(t *testing.T) {
	if !floats.EqualWithinAbs(ExitMach(1, 1.4), 1, flowε) {
		t.Fatal("unit expansion ratio is sonic")
	}
	// Canonical compressible-flow table value: A/A* = 2.403 at M = 2.4,
	// k = 1.4.
	m := ExitMach(2.403, 1.4)
	if !floats.EqualWithinAbs(m, 2.4, 1e-3) {
		t.Fatalf("exit Mach for A/A*=2.403: %f", m)
	}
	// The area-Mach relation must invert consistently.
	for _, e := range []float64{2, 4, 8, 16} {
		m := ExitMach(e, 1.2)
		back := math.Pow((2/2.2)*(1+0.1*m*m), 2.2/0.4) / m
		if !floats.EqualWithinAbs(back, e, e*1e-6) {
			t.Fatalf("area ratio round trip at E=%f: %f", e, back)
		}
	}
}

func TestExitPressure(t *testing.T) {
	// At M=1 the exit pressure is the critical pressure.
	p0 := 5e6
	if !floats.EqualWithinAbs(ExitPressure(p0, 1, 1.4), p0*CriticalPressureRatio(1.4), p0*1e-6) {
		t.Fatal("sonic exit pressure")
	}
	// More expansion, less pressure.
	if ExitPressure(p0, 8, 1.2) >= ExitPressure(p0, 4, 1.2) {
		t.Fatal("exit pressure must drop with expansion ratio")
	}
}

// The optimal expansion ratio expands exactly to the external pressure.
func TestOptimalExpansionRatio(t *testing.T) {
	const (
		k    = 1.1371
		p0   = 5e6
		pExt = 1e5
	)
	e := OptimalExpansionRatio(pExt, p0, k)
	if e <= 1 {
		t.Fatalf("optimal expansion ratio: %f", e)
	}
	pe := ExitPressure(p0, e, k)
	if !floats.EqualWithinAbs(pe, pExt, pExt*1e-3) {
		t.Fatalf("exit pressure at the optimal ratio: %f, expected %f", pe, pExt)
	}
	// Unchoked flow keeps the throat section.
	if OptimalExpansionRatio(9.9e4, 1e5, k) != 1 {
		t.Fatal("unchoked flow must not expand")
	}
}

func TestThrustCoefficients(t *testing.T) {
	const (
		k    = 1.1371
		p0   = 5e6
		pExt = 1e5
	)
	e := OptimalExpansionRatio(pExt, p0, k)
	pe := ExitPressure(p0, e, k)
	cfIdeal, cfReal := ThrustCoefficients(p0, pe, pExt, e, k, 0.9)
	// At matched expansion the pressure term vanishes.
	if cfIdeal < 1.4 || cfIdeal > 1.8 {
		t.Fatalf("ideal thrust coefficient out of range: %f", cfIdeal)
	}
	if !floats.EqualWithinAbs(cfReal, 0.9*cfIdeal, flowε) {
		t.Fatalf("corrected thrust coefficient: %f", cfReal)
	}
	// Overexpansion (higher E than matched) loses thrust.
	peOver := ExitPressure(p0, 2*e, k)
	cfOver, _ := ThrustCoefficients(p0, peOver, pExt, 2*e, k, 1)
	if cfOver >= cfIdeal {
		t.Fatalf("overexpanded Cf %f should be below matched %f", cfOver, cfIdeal)
	}
	if !floats.EqualWithinAbs(ThrustFromCf(1.5, 5e6, 1e-3), 7500, flowε) {
		t.Fatal("thrust from Cf")
	}
}

func TestOperationalCorrectionFactors(t *testing.T) {
	nozzle := Nozzle{ThroatDiameter: 0.037, DivergentAngle: 12, ConvergentAngle: 45, ExpansionRatio: 8}
	// A healthy chamber pressure: all three losses are active and small.
	l := OperationalCorrectionFactors(5e6, 1e5, 8, 5e-3, 1, KNSB, nozzle)
	if l.Kinetic <= 0 || l.BoundaryLayer <= 0 || l.TwoPhase <= 0 {
		t.Fatalf("expected active losses, got %+v", l)
	}
	if l.Total() <= 0 || l.Total() >= 30 {
		t.Fatalf("combined losses out of range: %f%%", l.Total())
	}
	// Below 200 psi the kinetic correlation is out of its domain.
	low := OperationalCorrectionFactors(1e6, 1e5, 8, 5e-3, 1, KNSB, nozzle)
	if low.Kinetic != 0 {
		t.Fatalf("kinetic loss below 200 psi: %f", low.Kinetic)
	}
	// Unchoked flow has no nozzle losses at all.
	unchoked := OperationalCorrectionFactors(1.2e5, 1e5, 8, 5e-3, 1, KNSB, nozzle)
	if unchoked.Total() != 0 {
		t.Fatalf("unchoked losses must vanish: %+v", unchoked)
	}
	// The correction factor composes losses, divergence and combustion
	// efficiency into a sub-unity multiplier.
	n := CorrectionFactor(l, nozzle, KNSB)
	if n <= 0.5 || n >= 1 {
		t.Fatalf("correction factor out of range: %f", n)
	}
}

func TestDivergentCorrectionFactor(t *testing.T) {
	n := Nozzle{ThroatDiameter: 0.037, DivergentAngle: 12}
	// λ = (1 + cos 12°) / 2
	if !floats.EqualWithinAbs(n.DivergentCorrectionFactor(), (1+math.Cos(12*math.Pi/180))/2, flowε) {
		t.Fatalf("divergence factor: %f", n.DivergentCorrectionFactor())
	}
}

func TestDischargeCoefficient(t *testing.T) {
	const k = 1.2
	// Choked flow: a constant of the gas.
	exp := math.Sqrt(k/(k+1)) * math.Pow(2/(k+1), 1/(k-1))
	if !floats.EqualWithinAbs(dischargeCoefficient(5e6, 1e5, k), exp, flowε) {
		t.Fatalf("choked discharge coefficient: %f", dischargeCoefficient(5e6, 1e5, k))
	}
	// The unchoked branch meets the choked one at the critical ratio.
	pc := 1e5 / CriticalPressureRatio(k)
	if !floats.EqualWithinAbs(dischargeCoefficient(pc*0.9999, 1e5, k), exp, 1e-3) {
		t.Fatalf("discharge coefficient discontinuous at the critical ratio")
	}
	// Deep unchoked flow discharges nothing.
	if h := dischargeCoefficient(1.0001e5, 1e5, k); h > 0.1 {
		t.Fatalf("near-ambient discharge coefficient: %f", h)
	}
}

// The pressure balance must push low pressures up and high pressures down
// towards the equilibrium set by Kn and the burn-rate law.
func TestChamberPressureDerivative(t *testing.T) {
	const (
		burnArea   = 0.347
		throatArea = 1.0752e-3 // 37 mm throat
		freeVolume = 5e-3
		pExt       = 1e5
	)
	low := chamberPressureDerivative(1e6, pExt, burnArea, KNSB.BurnRate(1e6), freeVolume, throatArea, KNSB)
	if low <= 0 {
		t.Fatalf("pressure must build from 1 MPa: %g", low)
	}
	high := chamberPressureDerivative(50e6, pExt, burnArea, KNSB.BurnRate(50e6), freeVolume, throatArea, KNSB)
	if high >= 0 {
		t.Fatalf("pressure must decay from 50 MPa: %g", high)
	}
	// With no propellant left the chamber can only blow down.
	down := chamberPressureDerivative(5e6, pExt, 0, 0, freeVolume, throatArea, KNSB)
	if down >= 0 {
		t.Fatalf("blowdown must be negative: %g", down)
	}
}
