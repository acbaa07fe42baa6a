// Package game drives the differential growth simulation: it owns the
// topology, spatial grid and scratch buffers, and advances them one step
// at a time under a caller-supplied tuner.
package game

import (
	"fmt"
	"iter"
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/config"
	"github.com/pthm-cable/growth/systems"
	"github.com/pthm-cable/growth/telemetry"
)

// Options configures a Game.
type Options struct {
	// Config is the simulation configuration. nil uses config.Cfg().
	Config *config.Config

	// Logger receives diagnostics. nil uses slog.Default().
	Logger *slog.Logger

	LogStats       bool
	StatsWindow    int    // ticks per stats window, 0 = config value
	OutputDir      string // empty disables CSV output
	StepsPerUpdate int
}

// Game holds the complete simulation state.
type Game struct {
	cfg    *config.Config
	logger *slog.Logger

	seed  Seed
	tuner systems.Tuner

	topo       *systems.Topology
	grid       *systems.SpatialGrid
	gridLevel  int
	elementIDs []int     // handle -> grid element id, -1 when not indexed
	field      []r2.Vec  // velocity field, indexed by handle
	refiner    *systems.Refiner
	boundary   systems.Boundary
	brute      bool
	velocity   systems.VelocityMode
	unit       float64
	validate   bool

	tick           int32
	paused         bool
	stepsPerUpdate int

	// Last step
	lastRefine systems.RefineStats
	gridMisses int

	// Telemetry
	perfCollector *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewGameWithOptions creates a game seeded from the configured circle and
// tuned from the configured tuner section.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	window := opts.StatsWindow
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}
	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	w, h := cfg.Derived.WorldW, cfg.Derived.WorldH
	g := &Game{
		cfg:            cfg,
		logger:         logger,
		topo:           systems.NewTopology(4 * max(cfg.Seed.Count, 16)),
		gridLevel:      -1,
		boundary:       systems.RectBoundary(w, h),
		brute:          cfg.Derived.BruteNeighbors,
		velocity:       cfg.Derived.VelocityMode,
		unit:           cfg.World.Unit,
		validate:       cfg.Debug.ValidateTopology,
		stepsPerUpdate: steps,
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:      telemetry.NewCollector(window),
		outputManager:  om,
		logStats:       opts.LogStats,
	}
	g.refiner = systems.NewRefiner(systems.Distances{})

	g.Initialize(SeedFromConfig(cfg), cfg.SystemsTuner())
	return g, nil
}

// Initialize replaces the curve with the chains of seed and adopts tuner.
// The grid is rebuilt if the tuner's grid level differs from the current one.
func (g *Game) Initialize(seed Seed, tuner systems.Tuner) {
	g.seed = seed
	g.tuner = tuner
	g.ensureGrid(tuner.GridLevel)
	g.reseed()

	g.logger.Info("simulation initialized",
		"nodes", g.topo.LiveCount(),
		"grid_cells", g.grid.CellCount(),
		"grid_cell_size", g.grid.CellSize(),
		"neighbor_search", g.cfg.Physics.NeighborSearch,
		"velocity_mode", g.cfg.Physics.VelocityMode,
	)
}

// Restart discards the current curve and rebuilds it from the last seed.
func (g *Game) Restart() {
	g.reseed()
	g.logger.Info("simulation restarted", "nodes", g.topo.LiveCount())
}

// reseed resets the topology and the tick counters, then appends the seed.
func (g *Game) reseed() {
	g.topo.Reset()
	clear(g.field)
	g.tick = 0
	g.lastRefine = systems.RefineStats{}
	g.gridMisses = 0
	g.collector.Reset(0)

	if g.seed == nil {
		return
	}
	for _, c := range g.seed.Chains() {
		g.topo.AppendChain(c.Points, c.Closed)
	}
}

// ensureGrid builds a grid covering the world plus the boundary gap when
// the level changes.
func (g *Game) ensureGrid(level int) {
	if g.grid != nil && level == g.gridLevel {
		return
	}
	gap := g.cfg.Grid.BoundaryGap
	extent := r2.Vec{
		X: g.cfg.Derived.WorldW + 2*gap,
		Y: g.cfg.Derived.WorldH + 2*gap,
	}
	count, size := systems.RecommendGrid(extent, systems.CellsForLevel(level))
	g.grid = systems.NewSpatialGrid(count, size, gap)
	g.grid.SetLogger(g.logger)
	g.gridLevel = level

	g.logger.Debug("spatial grid rebuilt", "level", level, "cells", count, "cell_size", size)
}

// Step advances the simulation by one tick under tuner.
func (g *Game) Step(tuner systems.Tuner) {
	g.tuner = tuner
	g.simulationStep()
}

// Update advances stepsPerUpdate ticks with the current tuner unless paused.
func (g *Game) Update() {
	if g.paused {
		g.perfCollector.RecordFrame()
		return
	}
	for range g.stepsPerUpdate {
		g.simulationStep()
	}
	g.perfCollector.RecordFrame()
}

// LivePositions yields the positions of live nodes in chain order.
func (g *Game) LivePositions() iter.Seq[r2.Vec] {
	return g.topo.Positions()
}

// Shutdown flushes and closes telemetry output.
func (g *Game) Shutdown() error {
	if err := g.outputManager.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}
	g.outputManager = nil
	return nil
}

// Tick returns the number of steps since the last (re)start.
func (g *Game) Tick() int32 { return g.tick }

// Tuner returns the tuner used by the most recent step.
func (g *Game) Tuner() systems.Tuner { return g.tuner }

// SetTuner replaces the tuner used by Update.
func (g *Game) SetTuner(t systems.Tuner) { g.tuner = t }

// Topology exposes the curve store for rendering and inspection.
func (g *Game) Topology() *systems.Topology { return g.topo }

// Boundary returns the containment region.
func (g *Game) Boundary() systems.Boundary { return g.boundary }

// World returns the world dimensions.
func (g *Game) World() (w, h float64) { return g.cfg.Derived.WorldW, g.cfg.Derived.WorldH }

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool { return g.paused }

// SetPaused suspends or resumes Update.
func (g *Game) SetPaused(p bool) { g.paused = p }

// StepsPerUpdate returns the ticks run per Update call.
func (g *Game) StepsPerUpdate() int { return g.stepsPerUpdate }

// SetStepsPerUpdate sets the ticks run per Update call, minimum 1.
func (g *Game) SetStepsPerUpdate(n int) { g.stepsPerUpdate = max(n, 1) }

// LastRefine returns the edits made by the most recent step.
func (g *Game) LastRefine() systems.RefineStats { return g.lastRefine }

// GridMisses returns the nodes left out of the grid by the most recent step.
func (g *Game) GridMisses() int { return g.gridMisses }

// PerfStats returns timing over the perf collector window.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perfCollector.Stats() }

// SetStatsCallback registers fn to receive every flushed stats window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) { g.statsCallback = fn }

// Grid returns the spatial grid used by the most recent step.
func (g *Game) Grid() *systems.SpatialGrid { return g.grid }
