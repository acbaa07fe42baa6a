package telemetry

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/systems"
)

// Collector accumulates refinement events within tick windows and
// produces WindowStats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32

	splits     int
	collapses  int
	gridMisses int

	lengths []float64 // scratch for edge lengths
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// RecordRefine records the edits of one refinement pass.
func (c *Collector) RecordRefine(s systems.RefineStats) {
	c.splits += s.Split
	c.collapses += s.Collapsed
}

// RecordGridMisses records nodes left out of the spatial grid this tick.
func (c *Collector) RecordGridMisses(n int) {
	c.gridMisses += n
}

// ShouldFlush reports whether the window ending at tick is complete.
func (c *Collector) ShouldFlush(tick int32) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// Flush produces the stats for the current window and starts a new one.
func (c *Collector) Flush(tick int32, topo *systems.Topology) WindowStats {
	s := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		Nodes:           topo.LiveCount(),
		Slots:           topo.Slots(),
		Free:            topo.FreeCount(),
		Splits:          c.splits,
		Collapses:       c.collapses,
		GridMisses:      c.gridMisses,
	}
	for range topo.Chains() {
		s.Chains++
	}

	c.lengths = c.lengths[:0]
	for a, b := range topo.Edges() {
		c.lengths = append(c.lengths, r2.Norm(r2.Sub(topo.Node(b).Pos, topo.Node(a).Pos)))
	}
	s.Edges = len(c.lengths)
	es := ComputeEdgeStats(c.lengths)
	s.CurveLength = es.Sum
	s.EdgeMean = es.Mean
	s.EdgeStd = es.Std
	s.EdgeMin = es.Min
	s.EdgeP50 = es.P50
	s.EdgeMax = es.Max

	c.windowStartTick = tick
	c.splits = 0
	c.collapses = 0
	c.gridMisses = 0
	return s
}

// Reset discards the current window, e.g. on restart.
func (c *Collector) Reset(tick int32) {
	c.windowStartTick = tick
	c.splits = 0
	c.collapses = 0
	c.gridMisses = 0
}
