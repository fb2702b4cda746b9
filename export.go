package rocketsolver

import (
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/interp"
)

// engSampleCount is the number of thrust samples written to .eng files.
const engSampleCount = 25

// ExportConfig configures the exporting of the simulation.
type ExportConfig struct {
	Filename     string
	AsCSV        bool
	AsENG        bool
	Timestamp    bool
	Manufacturer string
	CSVAppend    func(rec BurnRecord) string // Custom export (do not include leading comma)
	CSVAppendHdr func() string               // Header for the custom export
}

// IsUseless returns whether this config doesn't actually do anything.
func (c ExportConfig) IsUseless() bool {
	return !c.AsCSV && !c.AsENG
}

func createBurnCSVFile(filename string, conf ExportConfig) *os.File {
	config := solverConfig()
	if err := os.MkdirAll(config.outputDir, 0755); err != nil {
		panic(err)
	}
	if conf.Timestamp {
		t := time.Now()
		filename = fmt.Sprintf("%s/burn-%s-%d-%02d-%02dT%02d.%02d.%02d.csv", config.outputDir, filename, t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
	} else {
		filename = fmt.Sprintf("%s/burn-%s.csv", config.outputDir, filename)
	}
	f, err := os.Create(filename)
	if err != nil {
		panic(err)
	}
	// Header
	f.WriteString(fmt.Sprintf(`# Creation date (UTC): %s
# Pressures in Pa, thrust in N, lengths in m, masses in kg.
time,state,web,chamberPressure,exitPressure,thrust,cf,burnArea,portArea,burnRate,kn,optimalExpRatio,freeVolume,propellantVolume,propellantMass,`, time.Now()))
	if conf.CSVAppendHdr != nil {
		// Append the headers for the appended columns.
		f.WriteString(conf.CSVAppendHdr())
	}
	return f
}

// StreamRecords streams the burn history of the channel to the configured
// files. The .eng file needs the complete history, so it is buffered and
// written once the channel closes.
func StreamRecords(conf ExportConfig, motor *SolidMotor, params SimulationParams, recChan <-chan (BurnRecord)) {
	var fAsCSV *os.File
	var buffered []BurnRecord
	first := true
	for {
		rec, more := <-recChan
		if !more {
			break
		}
		if first {
			first = false
			if conf.AsCSV {
				fAsCSV = createBurnCSVFile(conf.Filename, conf)
			}
		}
		if conf.AsCSV {
			fAsCSV.WriteString(fmt.Sprintf("\n%f,%s,%f,%f,%f,%f,%f,%f,%f,%f,%f,%f,%f,%f,%f,", rec.Time, rec.State, rec.WebDistance, rec.ChamberPressure, rec.ExitPressure, rec.Thrust, rec.Cf, rec.BurnArea, rec.PortArea, rec.BurnRate, rec.Kn, rec.OptimalExpRatio, rec.FreeVolume, rec.PropellantVol, rec.PropellantMass))
			if conf.CSVAppend != nil {
				fAsCSV.WriteString(conf.CSVAppend(rec))
			}
		}
		if conf.AsENG {
			buffered = append(buffered, rec)
		}
	}
	if fAsCSV != nil {
		fAsCSV.Close()
	}
	if conf.AsENG && len(buffered) > 1 {
		if err := writeENGFile(conf, motor, buffered); err != nil {
			panic(err)
		}
	}
}

// writeENGFile writes a RASP motor file from a completed burn history. The
// thrust curve is resampled to engSampleCount points, none of them at t=0,
// and the final sample is forced to zero thrust.
func writeENGFile(conf ExportConfig, motor *SolidMotor, history []BurnRecord) error {
	config := solverConfig()
	if err := os.MkdirAll(config.outputDir, 0755); err != nil {
		return err
	}
	f, err := os.Create(fmt.Sprintf("%s/%s.eng", config.outputDir, conf.Filename))
	if err != nil {
		return err
	}
	defer f.Close()

	times := make([]float64, len(history))
	thrusts := make([]float64, len(history))
	for i, rec := range history {
		times[i] = rec.Time
		thrusts[i] = rec.Thrust
	}
	var curve interp.FritschButland
	if err = curve.Fit(times, thrusts); err != nil {
		return err
	}

	manufacturer := conf.Manufacturer
	if manufacturer == "" {
		manufacturer = "rocket-solver"
	}
	propMass := motor.InitialPropellantMass()
	totalMass := propMass + motor.Structure.DryMass
	fmt.Fprintf(f, "; Generated by rocket-solver on %s\n", time.Now().UTC().Format("2006-01-02"))
	fmt.Fprintf(f, "%s %.0f %.0f P %.4f %.4f %s\n",
		motor.Name,
		motor.Structure.Chamber.InnerDiameter*1e3,
		motor.Structure.Chamber.Length*1e3,
		propMass, totalMass, manufacturer)

	end := times[len(times)-1]
	for i := 1; i <= engSampleCount; i++ {
		t := end * float64(i) / engSampleCount
		thrust := curve.Predict(t)
		if i == engSampleCount {
			thrust = 0
		}
		fmt.Fprintf(f, "   %.3f %.3f\n", t, thrust)
	}
	f.WriteString(";\n")
	return nil
}
