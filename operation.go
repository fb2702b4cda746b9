package rocketsolver

import (
	"fmt"
	"math"
	"sync"

	"github.com/ChristopherRabotin/ode"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var wg sync.WaitGroup

// MotorState is the phase of the motor burn.
type MotorState uint8

const (
	// Ignition is the startup transient before steady pressure is reached.
	Ignition MotorState = iota
	// Burning is the main phase, while propellant remains.
	Burning
	// EndThrust marks propellant exhaustion.
	EndThrust
	// Burnout is the terminal state.
	Burnout
)

func (s MotorState) String() string {
	switch s {
	case Ignition:
		return "ignition"
	case Burning:
		return "burning"
	case EndThrust:
		return "end_thrust"
	default:
		return "burnout"
	}
}

// BurnRecord is one sample of the burn history.
type BurnRecord struct {
	Time            float64
	State           MotorState
	WebDistance     float64
	ChamberPressure float64
	ExitPressure    float64
	Thrust          float64
	Cf              float64
	BurnArea        float64
	PortArea        float64
	BurnRate        float64
	Kn              float64
	OptimalExpRatio float64
	FreeVolume      float64
	PropellantVol   float64
	PropellantMass  float64
	MassFlux        []float64
}

// MotorOperation drives one motor through its burn. It implements
// ode.Integrable on the single-element chamber pressure state; the grain
// regression, thrust and bookkeeping happen around the integrator calls.
type MotorOperation struct {
	Motor   *SolidMotor
	Params  SimulationParams
	State   MotorState
	Elapsed float64
	// WebDistance is the regressed web, identical for all live segments.
	WebDistance     float64
	ChamberPressure float64
	PropellantMass  float64
	History         []BurnRecord

	// Quantities held constant over one integration step.
	burnArea, burnRate, freeVolume float64
	exitPressure, cf, thrust       float64
	portArea, kn, optimalExpRatio  float64
	propVolume, extPressure        float64
	ignitionVolume                 float64

	histChan chan<- BurnRecord
	stopChan chan bool
	nanSeen  bool
}

// NewMotorOperation returns a motor operation ready to burn. If conf requests
// any output, the burn history is streamed to the exporter as it is computed.
func NewMotorOperation(motor *SolidMotor, params SimulationParams, conf ExportConfig) *MotorOperation {
	params.defaults()
	var histChan chan BurnRecord
	if !conf.IsUseless() {
		histChan = make(chan BurnRecord, 1000) // a 1k entry buffer
		wg.Add(1)
		go func() {
			defer wg.Done()
			StreamRecords(conf, motor, params, histChan)
		}()
	} else {
		histChan = nil
	}
	o := &MotorOperation{Motor: motor, Params: params, State: Ignition, stopChan: make(chan bool, 1), histChan: histChan}
	o.extPressure = params.ExternalPressure
	if params.AmbientPressure != nil {
		o.extPressure = params.AmbientPressure(0)
	}
	o.ChamberPressure = math.Max(params.IgniterPressure, o.extPressure)
	o.PropellantMass = motor.InitialPropellantMass()
	o.ignitionVolume = motor.FreeVolume(0)
	o.refresh()
	o.record()
	return o
}

// LogStatus logs the current state of the burn.
func (o *MotorOperation) LogStatus() {
	o.Motor.logger.Log("level", "info", "subsys", "ballistics", "t(s)", fmt.Sprintf("%.3f", o.Elapsed), "state", o.State, "P0(MPa)", fmt.Sprintf("%.3f", o.ChamberPressure/1e6), "prop(kg)", fmt.Sprintf("%.3f", o.PropellantMass))
}

// Burn runs the simulation until burnout.
func (o *MotorOperation) Burn() {
	o.LogStatus()
	ode.NewRK4(0, o.Params.DT, o).Solve() // Blocking.
	last := o.History[len(o.History)-1]
	o.Motor.logger.Log("level", "notice", "subsys", "ballistics", "status", "finished", "burnTime(s)", fmt.Sprintf("%.3f", last.Time), "maxP0(MPa)", fmt.Sprintf("%.3f", o.maxPressure()/1e6))
	wg.Wait() // Don't return until we're done writing all the files.
}

// StopBurn is used to stop the simulation before burnout.
func (o *MotorOperation) StopBurn() {
	o.stopChan <- true
}

// refresh recomputes the quantities held constant over the next step from
// the current web distance and chamber pressure.
func (o *MotorOperation) refresh() {
	motor := o.Motor
	prop := motor.Propellant
	if o.Params.AmbientPressure != nil {
		o.extPressure = o.Params.AmbientPressure(o.Elapsed)
	}
	if o.State == EndThrust {
		o.burnArea = 0
		o.burnRate = 0
	} else {
		o.burnArea = motor.Grain.BurnArea(o.WebDistance)
		o.burnRate = prop.BurnRate(o.ChamberPressure)
	}
	o.portArea = motor.Grain.PortArea(o.WebDistance)
	o.freeVolume = motor.FreeVolume(o.WebDistance)
	o.propVolume = motor.Grain.Volume(o.WebDistance)
	o.PropellantMass = o.propVolume * prop.EffectiveDensity()
	o.kn = o.burnArea / motor.Structure.Nozzle.ThroatArea()

	expansionRatio := motor.Structure.Nozzle.ExpansionRatio
	kEx := prop.ExhaustSpecificHeatRatio
	o.exitPressure = ExitPressure(o.ChamberPressure, expansionRatio, kEx)
	o.optimalExpRatio = OptimalExpansionRatio(o.extPressure, o.ChamberPressure, kEx)
	losses := OperationalCorrectionFactors(o.ChamberPressure, o.extPressure, expansionRatio, o.ignitionVolume, o.Elapsed, prop, motor.Structure.Nozzle)
	nCf := CorrectionFactor(losses, motor.Structure.Nozzle, prop)
	_, o.cf = ThrustCoefficients(o.ChamberPressure, o.exitPressure, o.extPressure, expansionRatio, kEx, nCf)
	o.thrust = ThrustFromCf(o.cf, o.ChamberPressure, motor.Structure.Nozzle.ThroatArea())
}

// record appends the current sample to the history and streams it.
func (o *MotorOperation) record() {
	rec := BurnRecord{
		Time:            o.Elapsed,
		State:           o.State,
		WebDistance:     o.WebDistance,
		ChamberPressure: o.ChamberPressure,
		ExitPressure:    o.exitPressure,
		Thrust:          o.thrust,
		Cf:              o.cf,
		BurnArea:        o.burnArea,
		PortArea:        o.portArea,
		BurnRate:        o.burnRate,
		Kn:              o.kn,
		OptimalExpRatio: o.optimalExpRatio,
		FreeVolume:      o.freeVolume,
		PropellantVol:   o.propVolume,
		PropellantMass:  o.PropellantMass,
		MassFlux:        o.Motor.Grain.MassFlux(o.burnRate, o.Motor.Propellant.EffectiveDensity(), o.WebDistance),
	}
	o.History = append(o.History, rec)
	if o.histChan != nil {
		o.histChan <- rec
	}
}

// Stop implements the stop call of the integrator. To stop the burn early,
// call StopBurn().
func (o *MotorOperation) Stop(t float64) bool {
	select {
	case <-o.stopChan:
		o.State = Burnout
		if o.histChan != nil {
			close(o.histChan)
		}
		return true
	default:
		switch o.State {
		case Ignition:
			if o.ChamberPressure >= o.Params.IgniterPressure {
				o.State = Burning
			}
		case Burning:
			if o.PropellantMass <= 0 {
				o.State = EndThrust
				o.Motor.logger.Log("level", "notice", "subsys", "ballistics", "status", "end_thrust", "t(s)", fmt.Sprintf("%.3f", o.Elapsed))
				o.State = Burnout
				if o.histChan != nil {
					close(o.histChan)
				}
				return true
			}
		}
		if o.Elapsed > o.Params.MaxBurnTime {
			o.Motor.logger.Log("level", "critical", "subsys", "ballistics", "status", "killed", "t(s)", o.Elapsed)
			o.State = Burnout
			if o.histChan != nil {
				close(o.histChan)
			}
			return true
		}
		o.refresh()
		return false
	}
}

// GetState returns the state vector for the integrator.
func (o *MotorOperation) GetState() []float64 {
	return []float64{o.ChamberPressure}
}

// SetState applies the integrated state and advances the regression.
func (o *MotorOperation) SetState(t float64, s []float64) {
	if math.IsNaN(s[0]) && !o.nanSeen {
		o.nanSeen = true
		o.Motor.logger.Log("level", "critical", "subsys", "ballistics", "P0", s[0], "t(s)", o.Elapsed)
	}
	o.ChamberPressure = math.Max(s[0], o.extPressure)
	if o.State == Burning || o.State == Ignition {
		o.WebDistance += o.burnRate * o.Params.DT
	}
	o.Elapsed += o.Params.DT
	// Recompute the sampled quantities at the new state before recording.
	o.refresh()
	o.record()
}

// Func is the integration function, the lumped chamber pressure balance.
func (o *MotorOperation) Func(t float64, f []float64) []float64 {
	p0 := f[0]
	if p0 < o.extPressure {
		p0 = o.extPressure
	}
	return []float64{chamberPressureDerivative(p0, o.extPressure, o.burnArea, o.burnRate, o.freeVolume, o.Motor.Structure.Nozzle.ThroatArea(), o.Motor.Propellant)}
}

func (o *MotorOperation) maxPressure() float64 {
	max := 0.0
	for _, rec := range o.History {
		if rec.ChamberPressure > max {
			max = rec.ChamberPressure
		}
	}
	return max
}

// BurnSummary aggregates a completed burn history.
type BurnSummary struct {
	BurnTime          float64 // propellant consumption time, s
	MaxPressure       float64 // Pa
	MeanPressure      float64 // Pa
	MaxThrust         float64 // N
	MeanThrust        float64 // N
	TotalImpulse      float64 // N·s
	SpecificImpulse   float64 // s
	InitialKn         float64
	MaxKn             float64
	MeanKn            float64
	KnRatio           float64 // initial to final
	PropellantMass    float64 // initial, kg
	VolumetricEff     float64
	BurnProfile       string
	MaxMassFlux       float64 // kg/(m²·s)
	InitialPortThroat float64
}

// Summary reduces the burn history to its figures of merit.
func (o *MotorOperation) Summary() BurnSummary {
	n := len(o.History)
	pressures := make([]float64, n)
	thrusts := make([]float64, n)
	burnAreas := make([]float64, 0, n)
	var maxKn, maxFlux float64
	throat := o.Motor.Structure.Nozzle.ThroatArea()
	for i, rec := range o.History {
		pressures[i] = rec.ChamberPressure
		thrusts[i] = rec.Thrust
		if rec.BurnArea > 0 {
			burnAreas = append(burnAreas, rec.BurnArea)
		}
		if kn := rec.BurnArea / throat; kn > maxKn {
			maxKn = kn
		}
		for _, flux := range rec.MassFlux {
			if flux > maxFlux {
				maxFlux = flux
			}
		}
	}
	endTime := o.History[n-1].Time
	meanThrust := stat.Mean(thrusts, nil)
	m0 := o.Motor.InitialPropellantMass()
	total := meanThrust * endTime
	kns := make([]float64, len(burnAreas))
	for i, ab := range burnAreas {
		kns[i] = ab / throat
	}
	return BurnSummary{
		BurnTime:          endTime,
		MaxPressure:       floats.Max(pressures),
		MeanPressure:      stat.Mean(pressures, nil),
		MaxThrust:         floats.Max(thrusts),
		MeanThrust:        meanThrust,
		TotalImpulse:      total,
		SpecificImpulse:   total / (m0 * 9.81),
		InitialKn:         kns[0],
		MaxKn:             maxKn,
		MeanKn:            stat.Mean(kns, nil),
		KnRatio:           kns[0] / kns[len(kns)-1],
		PropellantMass:    m0,
		VolumetricEff:     o.Motor.Grain.Volume(0) / o.Motor.Structure.Chamber.EmptyVolume(),
		BurnProfile:       BurnProfile(burnAreas),
		MaxMassFlux:       maxFlux,
		InitialPortThroat: o.Motor.PortToThroat(0),
	}
}
