package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	rocketsolver "github.com/felipebogaertsm/rocket-solver"
	"github.com/spf13/viper"
)

// This code effectively only reads the scenario file and runs the burn.

const defaultScenario = "~~unset~~"

var (
	scenario string
	verbose  bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "motor scenario TOML file")
	flag.BoolVar(&verbose, "verbose", false, "really verbose (esp. for configuration)")
}

func main() {
	flag.Parse()
	// Load scenario
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	scenario = strings.Replace(scenario, ".toml", "", 1)
	viper.AddConfigPath(".")
	viper.SetConfigName(scenario)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("./%s.toml: Error %s", scenario, err)
	}

	// Read motor
	name := viper.GetString("motor.name")
	propName := viper.GetString("motor.propellant")
	propellant, err := rocketsolver.PropellantFromString(propName)
	if err != nil {
		log.Fatalf("could not understand propellant `%s`: %s", propName, err)
	}

	// Read grain segments
	grain := rocketsolver.NewGrain()
	segments := viper.Get("grain.segments")
	segList, ok := segments.([]interface{})
	if !ok || len(segList) == 0 {
		log.Fatal("no grain segments in scenario")
	}
	for sno, raw := range segList {
		segConf, ok := raw.(map[string]interface{})
		if !ok {
			log.Fatalf("segment #%d is not a table", sno)
		}
		seg, err := segmentFromConf(segConf)
		if err != nil {
			log.Fatalf("segment #%d: %s", sno, err)
		}
		count := intOr(segConf, "count", 1)
		for i := 0; i < count; i++ {
			if err = grain.AddSegment(seg); err != nil {
				log.Fatalf("segment #%d: %s", sno, err)
			}
		}
	}
	if verbose {
		log.Printf("[conf] grain: %d segments, %.3f m\n", grain.SegmentCount(), grain.TotalLength())
	}

	// Read structure
	structure := rocketsolver.MotorStructure{
		DryMass: viper.GetFloat64("motor.dry_mass"),
		Nozzle: rocketsolver.Nozzle{
			ThroatDiameter:  viper.GetFloat64("nozzle.throat_diameter"),
			DivergentAngle:  viper.GetFloat64("nozzle.divergent_angle"),
			ConvergentAngle: viper.GetFloat64("nozzle.convergent_angle"),
			ExpansionRatio:  viper.GetFloat64("nozzle.expansion_ratio"),
		},
		Chamber: rocketsolver.CombustionChamber{
			InnerDiameter: viper.GetFloat64("chamber.inner_diameter"),
			Length:        viper.GetFloat64("chamber.length"),
		},
	}
	motor, err := rocketsolver.NewSolidMotor(name, grain, propellant, structure)
	if err != nil {
		log.Fatalf("invalid motor: %s", err)
	}

	params := rocketsolver.SimulationParams{
		DT:               viper.GetFloat64("simulation.dt"),
		IgniterPressure:  viper.GetFloat64("simulation.igniter_pressure"),
		ExternalPressure: viper.GetFloat64("simulation.external_pressure"),
		MaxBurnTime:      viper.GetFloat64("simulation.max_burn_time"),
	}
	export := rocketsolver.ExportConfig{
		Filename:     name,
		AsCSV:        viper.GetBool("export.csv"),
		AsENG:        viper.GetBool("export.eng"),
		Timestamp:    viper.GetBool("export.timestamp"),
		Manufacturer: viper.GetString("export.manufacturer"),
	}

	_, summary := rocketsolver.InternalBallistics(motor, params, export)
	fmt.Printf("burn time: %.3f s\n", summary.BurnTime)
	fmt.Printf("max / mean pressure: %.3f / %.3f MPa\n", summary.MaxPressure/1e6, summary.MeanPressure/1e6)
	fmt.Printf("max / mean thrust: %.1f / %.1f N\n", summary.MaxThrust, summary.MeanThrust)
	fmt.Printf("total impulse: %.1f N.s\n", summary.TotalImpulse)
	fmt.Printf("specific impulse: %.1f s\n", summary.SpecificImpulse)
	fmt.Printf("initial / mean / max Kn: %.1f / %.1f / %.1f\n", summary.InitialKn, summary.MeanKn, summary.MaxKn)
	fmt.Printf("volumetric efficiency: %.3f\n", summary.VolumetricEff)
	fmt.Printf("burn profile: %s\n", summary.BurnProfile)
}

func segmentFromConf(conf map[string]interface{}) (rocketsolver.GrainSegment, error) {
	shape, _ := conf["type"].(string)
	switch strings.ToLower(shape) {
	case "bates":
		return rocketsolver.NewBatesSegment(
			floatOf(conf, "outer_diameter"),
			floatOf(conf, "core_diameter"),
			floatOf(conf, "length"),
			floatOf(conf, "spacing"))
	case "conical":
		return rocketsolver.NewConicalSegment(
			floatOf(conf, "outer_diameter"),
			floatOf(conf, "lower_core_diameter"),
			floatOf(conf, "upper_core_diameter"),
			floatOf(conf, "length"),
			floatOf(conf, "spacing"))
	case "dgrain":
		return rocketsolver.NewDGrainSegment(
			floatOf(conf, "outer_diameter"),
			floatOf(conf, "length"),
			floatOf(conf, "slot_offset"),
			floatOf(conf, "spacing"),
			intOr(conf, "map_dim", 0))
	case "multiport":
		return rocketsolver.NewMultiPortSegment(
			floatOf(conf, "outer_diameter"),
			floatOf(conf, "length"),
			floatOf(conf, "port_diameter"),
			floatOf(conf, "spacing"),
			intOr(conf, "port_radial_count", 1),
			intOr(conf, "port_level_count", 0),
			intOr(conf, "map_dim", 0))
	default:
		return nil, fmt.Errorf("undefined segment type '%s'", shape)
	}
}

func floatOf(conf map[string]interface{}, key string) float64 {
	switch v := conf[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func intOr(conf map[string]interface{}, key string, def int) int {
	switch v := conf[key].(type) {
	case int64:
		return int(v)
	case int:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}
