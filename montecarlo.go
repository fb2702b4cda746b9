package rocketsolver

import (
	"fmt"
	"sync"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution selects how a randomized parameter is drawn.
type Distribution uint8

const (
	// NormalDist draws from a normal centered on the nominal value with the
	// tolerance as its 3-sigma bound.
	NormalDist Distribution = iota
	// UniformDist draws uniformly from nominal ± tolerance.
	UniformDist
)

// Parameter is a motor input with manufacturing uncertainty.
type Parameter struct {
	Value     float64
	Tolerance float64
	Dist      Distribution
}

// draw samples the parameter with the given source. A zero tolerance returns
// the nominal value.
func (p Parameter) draw(src rand.Source) float64 {
	if p.Tolerance == 0 {
		return p.Value
	}
	switch p.Dist {
	case UniformDist:
		return distuv.Uniform{Min: p.Value - p.Tolerance, Max: p.Value + p.Tolerance, Src: src}.Rand()
	default:
		return distuv.Normal{Mu: p.Value, Sigma: p.Tolerance / 3, Src: src}.Rand()
	}
}

// MotorFactory builds one independent motor instance per scenario. Each call
// must return a fresh motor: scenarios run concurrently and may not share a
// grain. draw samples one randomized parameter.
type MotorFactory func(draw func(Parameter) float64) (*SolidMotor, error)

// MonteCarlo runs randomized burn scenarios in parallel.
type MonteCarlo struct {
	Factory MotorFactory
	Params  SimulationParams
	Runs    int
	Workers int // concurrent scenarios, defaults to 4
	Seed    uint64
}

// MonteCarloResult collects the per-scenario summaries of a campaign.
type MonteCarloResult struct {
	Summaries []BurnSummary
	Failures  int
}

// Aggregate reduces one figure of merit across the campaign.
func (r MonteCarloResult) Aggregate(pick func(BurnSummary) float64) (mean, stddev float64) {
	vals := make([]float64, len(r.Summaries))
	for i, s := range r.Summaries {
		vals[i] = pick(s)
	}
	return stat.Mean(vals, nil), stat.StdDev(vals, nil)
}

// Run executes the campaign. Scenarios are seeded deterministically from
// the campaign seed, so a campaign is reproducible regardless of worker
// count.
func (mc MonteCarlo) Run() (MonteCarloResult, error) {
	if mc.Factory == nil {
		return MonteCarloResult{}, fmt.Errorf("monte carlo needs a motor factory")
	}
	if mc.Runs <= 0 {
		return MonteCarloResult{}, fmt.Errorf("monte carlo needs a positive number of runs, got %d", mc.Runs)
	}
	workers := mc.Workers
	if workers <= 0 {
		workers = 4
	}

	summaries := make([]BurnSummary, mc.Runs)
	failed := make([]bool, mc.Runs)
	scenarios := make(chan int, mc.Runs)
	var runWG sync.WaitGroup
	for w := 0; w < workers; w++ {
		runWG.Add(1)
		go func() {
			defer runWG.Done()
			for i := range scenarios {
				src := rand.NewSource(mc.Seed + uint64(i))
				motor, err := mc.Factory(func(p Parameter) float64 { return p.draw(src) })
				if err != nil {
					failed[i] = true
					continue
				}
				_, summaries[i] = InternalBallistics(motor, mc.Params, ExportConfig{})
			}
		}()
	}
	for i := 0; i < mc.Runs; i++ {
		scenarios <- i
	}
	close(scenarios)
	runWG.Wait()

	result := MonteCarloResult{Summaries: make([]BurnSummary, 0, mc.Runs)}
	for i := range summaries {
		if failed[i] {
			result.Failures++
			continue
		}
		result.Summaries = append(result.Summaries, summaries[i])
	}
	return result, nil
}
