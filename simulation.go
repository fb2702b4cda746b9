package rocketsolver

const (
	// DefaultDT is the default integration step of the burn, in seconds.
	DefaultDT = 0.01
	// DefaultIgniterPressure is the chamber pressure delivered by the
	// igniter, in Pa.
	DefaultIgniterPressure = 1e6
	// DefaultExternalPressure is sea-level atmospheric pressure, in Pa.
	DefaultExternalPressure = 1e5
	// DefaultMaxBurnTime caps runaway simulations, in seconds.
	DefaultMaxBurnTime = 120
)

// SimulationParams are the operating conditions of a burn. The zero value
// is usable: zero fields fall back to the defaults above.
type SimulationParams struct {
	DT               float64 // s
	IgniterPressure  float64 // Pa
	ExternalPressure float64 // Pa
	MaxBurnTime      float64 // s
	// AmbientPressure, if set, supplies the pressure outside the nozzle at
	// each step (e.g. from an altitude profile). Overrides ExternalPressure.
	AmbientPressure func(elapsed float64) float64
}

func (p *SimulationParams) defaults() {
	if p.DT <= 0 {
		p.DT = DefaultDT
	}
	if p.IgniterPressure <= 0 {
		p.IgniterPressure = DefaultIgniterPressure
	}
	if p.ExternalPressure <= 0 {
		p.ExternalPressure = DefaultExternalPressure
	}
	if p.MaxBurnTime <= 0 {
		p.MaxBurnTime = DefaultMaxBurnTime
	}
}

// InternalBallistics runs a full burn of the given motor and returns its
// summary. The full history remains available on the returned operation.
func InternalBallistics(motor *SolidMotor, params SimulationParams, conf ExportConfig) (*MotorOperation, BurnSummary) {
	op := NewMotorOperation(motor, params, conf)
	op.Burn()
	return op, op.Summary()
}
