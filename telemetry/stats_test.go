package telemetry

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/systems"
)

func TestComputeEdgeStats(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   EdgeStats
	}{
		{"empty", nil, EdgeStats{}},
		{"single", []float64{3}, EdgeStats{Sum: 3, Mean: 3, Min: 3, P50: 3, Max: 3}},
		{
			name:   "unsorted odd",
			values: []float64{5, 1, 3, 2, 4},
			want:   EdgeStats{Sum: 15, Mean: 3, Std: math.Sqrt(2.5), Min: 1, P50: 3, Max: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeEdgeStats(tt.values)
			fields := []struct {
				name      string
				got, want float64
			}{
				{"sum", got.Sum, tt.want.Sum},
				{"mean", got.Mean, tt.want.Mean},
				{"std", got.Std, tt.want.Std},
				{"min", got.Min, tt.want.Min},
				{"p50", got.P50, tt.want.P50},
				{"max", got.Max, tt.want.Max},
			}
			for _, f := range fields {
				if math.Abs(f.got-f.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
				}
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	topo := systems.NewTopology(0)
	topo.AppendChain([]r2.Vec{{X: 0}, {X: 3}, {X: 3, Y: 4}}, true)
	topo.AppendChain([]r2.Vec{{X: 10}, {X: 12}}, false)

	c := NewCollector(10)
	c.RecordRefine(systems.RefineStats{Split: 4, Collapsed: 1})
	c.RecordRefine(systems.RefineStats{Split: 2})
	c.RecordGridMisses(3)

	if c.ShouldFlush(9) {
		t.Error("window should not be complete at tick 9")
	}
	if !c.ShouldFlush(10) {
		t.Error("window should be complete at tick 10")
	}

	s := c.Flush(10, topo)
	if s.Nodes != 5 || s.Chains != 2 || s.Edges != 4 {
		t.Errorf("nodes=%d chains=%d edges=%d, want 5, 2, 4", s.Nodes, s.Chains, s.Edges)
	}
	if s.Splits != 6 || s.Collapses != 1 || s.GridMisses != 3 {
		t.Errorf("splits=%d collapses=%d misses=%d, want 6, 1, 3", s.Splits, s.Collapses, s.GridMisses)
	}
	// Triangle 3-4-5 plus an open edge of 2.
	if math.Abs(s.CurveLength-14) > 1e-9 {
		t.Errorf("curve length = %v, want 14", s.CurveLength)
	}
	if s.EdgeMin != 2 || s.EdgeMax != 5 {
		t.Errorf("edge range = [%v,%v], want [2,5]", s.EdgeMin, s.EdgeMax)
	}

	next := c.Flush(20, topo)
	if next.WindowStartTick != 10 || next.Splits != 0 {
		t.Errorf("second window start=%d splits=%d, want 10 and 0", next.WindowStartTick, next.Splits)
	}
}
