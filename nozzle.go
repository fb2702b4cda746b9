package rocketsolver

import (
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Nozzle carries the read-only nozzle geometry the thrust model consumes.
// Angles are in degrees.
type Nozzle struct {
	ThroatDiameter  float64
	DivergentAngle  float64
	ConvergentAngle float64
	ExpansionRatio  float64
}

// ThroatArea returns the throat cross-section area.
func (n Nozzle) ThroatArea() float64 {
	return CircleArea(n.ThroatDiameter)
}

// DivergentCorrectionFactor is the conical-divergence thrust correction
// λ = (1 + cos α)/2.
func (n Nozzle) DivergentCorrectionFactor() float64 {
	return 0.5 * (1 + math.Cos(n.DivergentAngle*math.Pi/180))
}

// CombustionChamber carries the casing geometry needed to derive the free
// chamber volume. Structural sizing is out of scope.
type CombustionChamber struct {
	InnerDiameter float64
	Length        float64
}

// EmptyVolume returns the chamber volume with no propellant loaded.
func (c CombustionChamber) EmptyVolume() float64 {
	return CylinderVolume(c.InnerDiameter, c.Length)
}

// MotorStructure groups the structural inputs of the simulation.
type MotorStructure struct {
	DryMass float64 // kg
	Nozzle  Nozzle
	Chamber CombustionChamber
}

// SolidMotor ties a grain, its propellant and the motor structure together.
type SolidMotor struct {
	Name       string
	Grain      *Grain
	Propellant Propellant
	Structure  MotorStructure
	logger     kitlog.Logger // logger
}

// NewSolidMotor validates the cross-component invariants the constructor can
// check cheaply: a non-empty grain that fits the chamber, and a positive
// throat.
func NewSolidMotor(name string, grain *Grain, propellant Propellant, structure MotorStructure) (*SolidMotor, error) {
	if grain.SegmentCount() == 0 {
		return nil, GeometryError{"motor", "grain has no segments"}
	}
	if structure.Nozzle.ThroatDiameter <= 0 {
		return nil, GeometryError{"motor", fmt.Sprintf("throat diameter must be positive, got %g", structure.Nozzle.ThroatDiameter)}
	}
	if structure.Chamber.Length < grain.TotalLength() {
		return nil, GeometryError{"motor", fmt.Sprintf("chamber length %g is shorter than the grain %g",
			structure.Chamber.Length, grain.TotalLength())}
	}
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "motor", name)
	return &SolidMotor{Name: name, Grain: grain, Propellant: propellant, Structure: structure, logger: klog}, nil
}

// InitialPropellantMass is the loaded propellant mass before ignition.
func (m *SolidMotor) InitialPropellantMass() float64 {
	return m.Propellant.EffectiveDensity() * m.Grain.Volume(0)
}

// FreeVolume is the chamber volume not occupied by propellant at web x.
func (m *SolidMotor) FreeVolume(x float64) float64 {
	return m.Structure.Chamber.EmptyVolume() - m.Grain.Volume(x)
}

// PortToThroat is the aft segment port area over the throat area at web x.
func (m *SolidMotor) PortToThroat(x float64) float64 {
	segs := m.Grain.Segments()
	if len(segs) == 0 {
		return 0
	}
	return segs[len(segs)-1].PortArea(x) / m.Structure.Nozzle.ThroatArea()
}
