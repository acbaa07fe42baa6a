package main

import (
	"io"
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/config"
	"github.com/pthm-cable/growth/game"
	"github.com/pthm-cable/growth/systems"
	"github.com/pthm-cable/growth/telemetry"
)

// Fitness weights.
const (
	weightEdgeCV     = 2.0  // penalty per unit of edge length coefficient of variation
	weightMissRate   = 5.0  // penalty per grid miss per node-tick
	blowUpPenalty    = 10.0 // added when a run exceeds maxNodes
	seedJitter       = 0.05 // radial seed noise so seeds differ
	statsWindowTicks = 100
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int32
	maxNodes   int
	seeds      []int64
	baseConfig *config.Config
	logger     *slog.Logger

	mu      sync.Mutex
	lastRun runResult // averaged over seeds, from the most recent Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, maxNodes int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		maxNodes:   maxNodes,
		seeds:      seeds,
		baseConfig: baseCfg,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// runResult holds the outcome of a single simulation run.
type runResult struct {
	Growth   float64 // final curve length / initial curve length
	EdgeCV   float64 // edge length std / mean at the end
	MissRate float64 // grid misses per node-tick
	Nodes    int
	Ticks    int32
	BlownUp  bool
}

// LastRun returns the seed-averaged result of the most recent evaluation.
func (fe *FitnessEvaluator) LastRun() runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastRun
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var avg runResult
	for _, r := range results {
		total += computeFitness(r)
		avg.Growth += r.Growth
		avg.EdgeCV += r.EdgeCV
		avg.MissRate += r.MissRate
		avg.Nodes += r.Nodes
		avg.Ticks += r.Ticks
		avg.BlownUp = avg.BlownUp || r.BlownUp
	}
	n := float64(len(results))
	avg.Growth /= n
	avg.EdgeCV /= n
	avg.MissRate /= n
	avg.Nodes /= len(results)
	avg.Ticks /= int32(len(results))
	fitness := total / n

	fe.mu.Lock()
	fe.lastRun = avg
	fe.mu.Unlock()

	return fitness
}

// runSimulation executes a single headless run until maxTicks or until the
// curve exceeds maxNodes.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Seed.NoiseSeed = seed
	cfg.Seed.Jitter = seedJitter

	g, err := game.NewGameWithOptions(game.Options{
		Config:      cfg,
		Logger:      fe.logger,
		StatsWindow: statsWindowTicks,
	})
	if err != nil {
		return runResult{BlownUp: true}
	}
	defer g.Shutdown()

	initial := curveStats(g.Topology()).Sum

	var misses, nodeTicks int
	var res runResult
	for g.Tick() < fe.maxTicks {
		g.Step(cfg.SystemsTuner())
		misses += g.GridMisses()
		nodeTicks += g.Topology().LiveCount()
		if g.Topology().LiveCount() > fe.maxNodes {
			res.BlownUp = true
			break
		}
	}

	final := curveStats(g.Topology())
	res.Nodes = g.Topology().LiveCount()
	res.Ticks = g.Tick()
	if initial > 0 {
		res.Growth = final.Sum / initial
	}
	if final.Mean > 0 {
		res.EdgeCV = final.Std / final.Mean
	}
	if nodeTicks > 0 {
		res.MissRate = float64(misses) / float64(nodeTicks)
	}
	return res
}

// copyConfig returns a copy of the base config. Config holds no shared
// references, so a value copy is enough.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// curveStats summarizes the edge lengths of topo.
func curveStats(topo *systems.Topology) telemetry.EdgeStats {
	var lengths []float64
	for a, b := range topo.Edges() {
		lengths = append(lengths, r2.Norm(r2.Sub(topo.Node(b).Pos, topo.Node(a).Pos)))
	}
	return telemetry.ComputeEdgeStats(lengths)
}

// computeFitness rewards growth and penalizes irregular edges, nodes
// escaping the grid and runaway node counts.
func computeFitness(r runResult) float64 {
	f := weightEdgeCV*r.EdgeCV + weightMissRate*r.MissRate
	if r.Growth > 0 {
		f -= math.Log(r.Growth)
	}
	if r.BlownUp {
		f += blowUpPenalty
	}
	return f
}
