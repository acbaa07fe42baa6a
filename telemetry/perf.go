package telemetry

import (
	"log/slog"
	"time"
)

// Step phases, in execution order. Forces usually dominate: every node
// scans the grid cells within the repulsion distance. Refine walks the
// curve twice and is linear in nodes; the other phases are a single
// linear pass.
const (
	PhaseSpatialGrid = "spatial_grid" // clear and reinsert every live node
	PhaseForces      = "forces"       // attraction, repulsion, alignment
	PhaseIntegrate   = "integrate"
	PhaseBoundary    = "boundary"
	PhaseRefine      = "refine" // collapse then split
	PhaseTelemetry   = "telemetry"
)

// Phases lists the step phases in execution order.
var Phases = []string{
	PhaseSpatialGrid, PhaseForces, PhaseIntegrate,
	PhaseBoundary, PhaseRefine, PhaseTelemetry,
}

// tickSample is the timing of one step.
type tickSample struct {
	total  time.Duration
	nodes  int // live nodes at the end of the step
	phases [numPhases]time.Duration
	other  map[string]time.Duration // phases outside Phases
}

const numPhases = 6

// phaseIndex maps the known phases to fixed sample slots so a step does
// not allocate.
var phaseIndex = map[string]int{
	PhaseSpatialGrid: 0,
	PhaseForces:      1,
	PhaseIntegrate:   2,
	PhaseBoundary:    3,
	PhaseRefine:      4,
	PhaseTelemetry:   5,
}

// PerfCollector times step phases over a rolling window of ticks.
type PerfCollector struct {
	samples []tickSample
	next    int
	count   int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      string

	// Frame timing (graphics mode)
	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{samples: make([]tickSample, windowSize)}
}

// StartTick begins timing a step.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{}
	p.phase = ""
}

// StartPhase ends the running phase, if any, and begins timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	now := time.Now()
	p.closePhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase == "" {
		return
	}
	d := now.Sub(p.phaseStart)
	if i, ok := phaseIndex[p.phase]; ok {
		p.cur.phases[i] += d
		return
	}
	if p.cur.other == nil {
		p.cur.other = make(map[string]time.Duration)
	}
	p.cur.other[p.phase] += d
}

// EndTick records the step. nodes is the live node count after the step
// and is used to report cost per node.
func (p *PerfCollector) EndTick(nodes int) {
	now := time.Now()
	p.closePhase(now)
	p.phase = ""

	p.cur.total = now.Sub(p.tickStart)
	p.cur.nodes = nodes
	p.samples[p.next] = p.cur
	p.next = (p.next + 1) % len(p.samples)
	p.count = min(p.count+1, len(p.samples))
}

// RecordFrame records frame timing for graphics mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats aggregates the window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Average duration and share of tick time per phase
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Curve size over the window and step cost per live node. Growth makes
	// tick time alone misleading; NsPerNode stays flat while the grid keeps
	// neighbor search local.
	AvgNodes  float64
	NsPerNode float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration),
		PhasePct:      make(map[string]float64),
		FrameDuration: p.frame,
	}
	if p.frame > 0 {
		stats.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return stats
	}

	var total time.Duration
	var nodes int
	phaseSum := make(map[string]time.Duration)
	for i, s := range p.samples[:p.count] {
		total += s.total
		nodes += s.nodes
		if i == 0 || s.total < stats.MinTickDuration {
			stats.MinTickDuration = s.total
		}
		stats.MaxTickDuration = max(stats.MaxTickDuration, s.total)

		for name, j := range phaseIndex {
			if s.phases[j] > 0 {
				phaseSum[name] += s.phases[j]
			}
		}
		for name, d := range s.other {
			phaseSum[name] += d
		}
	}

	n := time.Duration(p.count)
	avg := total / n
	stats.AvgTickDuration = avg
	stats.AvgNodes = float64(nodes) / float64(p.count)
	for phase, sum := range phaseSum {
		stats.PhaseAvg[phase] = sum / n
		if avg > 0 {
			stats.PhasePct[phase] = float64(stats.PhaseAvg[phase]) / float64(avg) * 100
		}
	}
	if avg > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(avg)
	}
	if stats.AvgNodes > 0 {
		stats.NsPerNode = float64(avg.Nanoseconds()) / stats.AvgNodes
	}
	return stats
}

// Dominant returns the phase with the largest share of tick time, or ""
// when nothing has been timed.
func (s PerfStats) Dominant() (phase string, pct float64) {
	for _, name := range Phases {
		if v := s.PhasePct[name]; v > pct {
			phase, pct = name, v
		}
	}
	return phase, pct
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
		"ns_per_node", int(s.NsPerNode),
	}
	if phase, pct := s.Dominant(); phase != "" {
		attrs = append(attrs, "dominant", phase, "dominant_pct", int(pct))
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
		slog.Float64("ns_per_node", s.NsPerNode),
	}
	for _, phase := range Phases {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	AvgNodes     float64 `csv:"avg_nodes"`
	NsPerNode    float64 `csv:"ns_per_node"`
	FPS          float64 `csv:"fps"`
	GridPct      float64 `csv:"spatial_grid_pct"`
	ForcesPct    float64 `csv:"forces_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	BoundaryPct  float64 `csv:"boundary_pct"`
	RefinePct    float64 `csv:"refine_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		AvgNodes:     s.AvgNodes,
		NsPerNode:    s.NsPerNode,
		FPS:          s.FPS,
		GridPct:      s.PhasePct[PhaseSpatialGrid],
		ForcesPct:    s.PhasePct[PhaseForces],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		BoundaryPct:  s.PhasePct[PhaseBoundary],
		RefinePct:    s.PhasePct[PhaseRefine],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
