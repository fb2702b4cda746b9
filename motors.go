package rocketsolver

/* Available motor designs */

// NewOlympusMotor returns the Olympus O-class test motor: seven BATES
// segments of KNSB, four with 45 mm cores forward and three with 60 mm
// cores aft.
func NewOlympusMotor() (*SolidMotor, error) {
	grain := NewGrain()
	for i := 0; i < 4; i++ {
		seg, err := NewBatesSegment(0.117, 0.045, 0.200, 0.01)
		if err != nil {
			return nil, err
		}
		if err = grain.AddSegment(seg); err != nil {
			return nil, err
		}
	}
	for i := 0; i < 3; i++ {
		seg, err := NewBatesSegment(0.117, 0.060, 0.200, 0.01)
		if err != nil {
			return nil, err
		}
		if err = grain.AddSegment(seg); err != nil {
			return nil, err
		}
	}

	structure := MotorStructure{
		DryMass: 19,
		Nozzle: Nozzle{
			ThroatDiameter:  0.037,
			DivergentAngle:  12,
			ConvergentAngle: 45,
			ExpansionRatio:  8,
		},
		Chamber: CombustionChamber{
			// Casing inner diameter less the 3 mm thermal liner.
			InnerDiameter: 0.1282 - 2*0.003,
			Length:        grain.TotalLength() + 0.01,
		},
	}
	return NewSolidMotor("Olympus", grain, KNSB, structure)
}
