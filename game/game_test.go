package game

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/config"
	"github.com/pthm-cable/growth/systems"
	"github.com/pthm-cable/growth/telemetry"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Debug.ValidateTopology = true
	return cfg
}

func newTestGame(t *testing.T, cfg *config.Config) *Game {
	t.Helper()
	g, err := NewGameWithOptions(Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	t.Cleanup(func() { g.Shutdown() })
	return g
}

func testTuner() systems.Tuner {
	return systems.Tuner{
		Scale:             1,
		TimeStep:          0.01,
		MinDistance:       1,
		MaxDistance:       5,
		RepulsionDistance: 10,
		RepulsionForce:    0.2,
		AttractionForce:   0.5,
		AlignmentForce:    0.45,
		GridLevel:         5,
	}
}

func circle(n int, r float64) CircleSeed {
	return CircleSeed{Center: r2.Vec{X: 640, Y: 360}, Radius: r, Count: n}
}

func edgeLengths(topo *systems.Topology) []float64 {
	var out []float64
	for a, b := range topo.Edges() {
		out = append(out, r2.Norm(r2.Sub(topo.Node(b).Pos, topo.Node(a).Pos)))
	}
	return out
}

func TestFirstStepDoublesCircle(t *testing.T) {
	g := newTestGame(t, testConfig(t))
	g.Initialize(circle(10, 100), testTuner())

	if got := g.Topology().LiveCount(); got != 10 {
		t.Fatalf("seeded %d nodes, want 10", got)
	}

	g.Step(testTuner())

	if got := g.Topology().LiveCount(); got != 20 {
		t.Errorf("after one step: %d nodes, want 20", got)
	}
	if s := g.LastRefine(); s.Split != 10 || s.Collapsed != 0 {
		t.Errorf("refine = %+v, want 10 splits and no collapses", s)
	}
	if err := g.Topology().Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}

	var chains []systems.Chain
	for c := range g.Topology().Chains() {
		chains = append(chains, c)
	}
	if len(chains) != 1 || !chains[0].Closed {
		t.Errorf("chains = %+v, want one closed loop", chains)
	}
}

func TestRestartIsIdempotent(t *testing.T) {
	g := newTestGame(t, testConfig(t))
	g.Initialize(circle(10, 100), testTuner())
	seeded := slices.Collect(g.LivePositions())

	for range 50 {
		g.Step(testTuner())
	}
	if g.Topology().LiveCount() == 10 {
		t.Fatal("curve did not grow")
	}

	g.Restart()
	if g.Tick() != 0 {
		t.Errorf("tick = %d after restart, want 0", g.Tick())
	}
	got := slices.Collect(g.LivePositions())
	if !slices.Equal(got, seeded) {
		t.Errorf("positions after restart differ from seed:\n got %v\nwant %v", got, seeded)
	}

	g.Restart()
	again := slices.Collect(g.LivePositions())
	if !slices.Equal(again, seeded) {
		t.Error("second restart differs from first")
	}
}

func TestZeroForcesConverge(t *testing.T) {
	tuner := testTuner()
	tuner.AttractionForce = 0
	tuner.RepulsionForce = 0
	tuner.AlignmentForce = 0

	g := newTestGame(t, testConfig(t))
	g.Initialize(circle(10, 100), tuner)

	for range 10 {
		g.Step(tuner)
	}

	for _, l := range edgeLengths(g.Topology()) {
		if l > tuner.MaxDistance {
			t.Fatalf("edge of length %v exceeds max distance %v", l, tuner.MaxDistance)
		}
	}
	// 61.8 / 16 < 5 needs four halvings.
	if got := g.Topology().LiveCount(); got != 160 {
		t.Errorf("live = %d, want 160", got)
	}
}

func TestNodesStayInsideBoundary(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg)

	// A loop larger than the world is pushed inside on the first step.
	seed := CircleSeed{
		Center: r2.Vec{X: cfg.Derived.WorldW / 2, Y: cfg.Derived.WorldH / 2},
		Radius: cfg.Derived.WorldW,
		Count:  12,
	}
	g.Initialize(seed, testTuner())

	for range 5 {
		g.Step(testTuner())
		for h := range g.Topology().Live() {
			p := g.Topology().Node(h).Pos
			if v := g.Boundary().Violation(p); v > 1e-9 {
				t.Fatalf("tick %d: node %d at %v outside by %v", g.Tick(), h, p, v)
			}
		}
	}
}

func TestOutOfGridNodesAreCounted(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg)

	far := r2.Vec{X: cfg.Derived.WorldW + 10*cfg.Grid.BoundaryGap, Y: 100}
	seed := StaticSeed{
		{Points: []r2.Vec{{X: 100, Y: 100}, {X: 102, Y: 100}}},
		{Points: []r2.Vec{far}},
	}
	g.Initialize(seed, testTuner())
	g.Step(testTuner())

	if got := g.GridMisses(); got != 1 {
		t.Errorf("grid misses = %d, want 1", got)
	}
	// The stray node is still moved inside by the boundary.
	for h := range g.Topology().Live() {
		if v := g.Boundary().Violation(g.Topology().Node(h).Pos); v > 1e-9 {
			t.Errorf("node %d outside by %v", h, v)
		}
	}
}

func TestOpenSeedKeepsEndpoints(t *testing.T) {
	cfg := testConfig(t)
	g := newTestGame(t, cfg)

	seed := circle(10, 100)
	seed.Group = 2
	g.Initialize(seed, testTuner())

	for range 20 {
		g.Step(testTuner())
	}

	open := 0
	for c := range g.Topology().Chains() {
		if c.Closed {
			t.Error("open seed produced a closed loop")
		}
		open++
	}
	if open != 5 {
		t.Errorf("chains = %d, want 5", open)
	}
}

func TestNeighborSearchModesAgree(t *testing.T) {
	gridCfg := testConfig(t)
	bruteCfg := testConfig(t)
	bruteCfg.Derived.BruteNeighbors = true

	a := newTestGame(t, gridCfg)
	b := newTestGame(t, bruteCfg)
	a.Initialize(circle(40, 30), testTuner())
	b.Initialize(circle(40, 30), testTuner())

	for range 5 {
		a.Step(testTuner())
		b.Step(testTuner())
	}

	pa := slices.Collect(a.LivePositions())
	pb := slices.Collect(b.LivePositions())
	if len(pa) != len(pb) {
		t.Fatalf("grid has %d nodes, brute has %d", len(pa), len(pb))
	}
	for i := range pa {
		if r2.Norm(r2.Sub(pa[i], pb[i])) > 1e-6 {
			t.Fatalf("node %d: grid %v, brute %v", i, pa[i], pb[i])
		}
	}
}

func TestDampedModeCarriesVelocity(t *testing.T) {
	cfg := testConfig(t)
	cfg.Derived.VelocityMode = systems.VelocityDamped

	tuner := testTuner()
	tuner.Damping = 0.5
	// Nodes far apart so no refinement runs and repulsion is out of range.
	tuner.MaxDistance = 1000

	g := newTestGame(t, cfg)
	g.Initialize(StaticSeed{{Points: []r2.Vec{{X: 100, Y: 100}, {X: 110, Y: 100}}}}, tuner)

	g.Step(tuner)
	v1 := g.Topology().Node(0).Vel
	g.Step(tuner)
	v2 := g.Topology().Node(0).Vel

	// Second step adds the new field to half the old velocity.
	if v2.X <= v1.X {
		t.Errorf("velocity did not accumulate: %v then %v", v1, v2)
	}
}

func TestGridLevelChangeRebuildsGrid(t *testing.T) {
	g := newTestGame(t, testConfig(t))
	g.Initialize(circle(10, 100), testTuner())
	before := g.grid.CellCount()

	tuner := testTuner()
	tuner.GridLevel = 3
	g.Step(tuner)

	after := g.grid.CellCount()
	if after == before {
		t.Errorf("grid not rebuilt: %v", after)
	}
	if after[1] != systems.CellsForLevel(3) {
		t.Errorf("rows = %d, want %d", after[1], systems.CellsForLevel(3))
	}
}

func TestStatsWindowFlush(t *testing.T) {
	cfg := testConfig(t)
	g, err := NewGameWithOptions(Options{
		Config:      cfg,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		StatsWindow: 4,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Shutdown()
	g.Initialize(circle(10, 100), testTuner())

	var windows []telemetry.WindowStats
	g.SetStatsCallback(func(s telemetry.WindowStats) { windows = append(windows, s) })
	for range 8 {
		g.Step(testTuner())
	}

	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if windows[0].WindowEndTick != 4 || windows[1].WindowEndTick != 8 {
		t.Errorf("window ends = %d, %d", windows[0].WindowEndTick, windows[1].WindowEndTick)
	}
	if windows[0].Splits < 10 {
		t.Errorf("first window splits = %d, want at least 10", windows[0].Splits)
	}
	if windows[1].Nodes != g.Topology().LiveCount() {
		t.Errorf("window nodes = %d, live = %d", windows[1].Nodes, g.Topology().LiveCount())
	}
}

func TestLongRunStaysValid(t *testing.T) {
	cfg := testConfig(t)
	var logs bytes.Buffer
	g, err := NewGameWithOptions(Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(&logs, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	defer g.Shutdown()

	tuner := testTuner()
	tuner.TimeStep = 0.1
	g.Initialize(circle(10, 100), tuner)

	// validate_topology panics on corruption.
	for range 200 {
		g.Step(tuner)
	}
	for _, l := range edgeLengths(g.Topology()) {
		if math.IsNaN(l) {
			t.Fatal("NaN edge length")
		}
	}
}

func TestUpdateRespectsPause(t *testing.T) {
	g := newTestGame(t, testConfig(t))
	g.SetStepsPerUpdate(3)

	g.Update()
	if g.Tick() != 3 {
		t.Errorf("tick = %d, want 3", g.Tick())
	}
	g.SetPaused(true)
	g.Update()
	if g.Tick() != 3 {
		t.Errorf("tick advanced while paused: %d", g.Tick())
	}
}
