package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds curve statistics for a window of ticks.
type WindowStats struct {
	WindowStartTick int32 `csv:"-"`
	WindowEndTick   int32 `csv:"window_end"`

	// Topology at window end
	Nodes  int `csv:"nodes"`
	Slots  int `csv:"slots"`
	Free   int `csv:"free"`
	Chains int `csv:"chains"`
	Edges  int `csv:"edges"`

	// Events during window
	Splits     int `csv:"splits"`
	Collapses  int `csv:"collapses"`
	GridMisses int `csv:"grid_misses"`

	// Edge lengths at window end
	CurveLength float64 `csv:"curve_length"`
	EdgeMean    float64 `csv:"edge_mean"`
	EdgeStd     float64 `csv:"edge_std"`
	EdgeMin     float64 `csv:"edge_min"`
	EdgeP50     float64 `csv:"edge_p50"`
	EdgeMax     float64 `csv:"edge_max"`
}

// EdgeStats summarizes a set of edge lengths.
type EdgeStats struct {
	Sum, Mean, Std, Min, P50, Max float64
}

// ComputeEdgeStats summarizes lengths. The slice is sorted in place.
func ComputeEdgeStats(lengths []float64) EdgeStats {
	n := len(lengths)
	if n == 0 {
		return EdgeStats{}
	}
	slices.Sort(lengths)

	var s EdgeStats
	for _, l := range lengths {
		s.Sum += l
	}
	if n > 1 {
		s.Mean, s.Std = stat.MeanStdDev(lengths, nil)
	} else {
		s.Mean = lengths[0]
	}
	s.Min = lengths[0]
	s.Max = lengths[n-1]
	s.P50 = stat.Quantile(0.5, stat.Empirical, lengths, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Int("nodes", s.Nodes),
		slog.Int("slots", s.Slots),
		slog.Int("free", s.Free),
		slog.Int("chains", s.Chains),
		slog.Int("edges", s.Edges),
		slog.Int("splits", s.Splits),
		slog.Int("collapses", s.Collapses),
		slog.Int("grid_misses", s.GridMisses),
		slog.Float64("curve_length", s.CurveLength),
		slog.Float64("edge_mean", s.EdgeMean),
		slog.Float64("edge_std", s.EdgeStd),
		slog.Float64("edge_min", s.EdgeMin),
		slog.Float64("edge_p50", s.EdgeP50),
		slog.Float64("edge_max", s.EdgeMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"nodes", s.Nodes,
		"chains", s.Chains,
		"splits", s.Splits,
		"collapses", s.Collapses,
		"grid_misses", s.GridMisses,
		"curve_length", s.CurveLength,
		"edge_mean", s.EdgeMean,
		"edge_std", s.EdgeStd,
	)
}
