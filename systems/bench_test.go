package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// benchLoop builds a wobbly closed loop of n nodes spaced about 3 apart,
// centered at (1000,1000). n up to 2000 stays inside benchGrid.
func benchLoop(n int) *Topology {
	rng := rand.New(rand.NewSource(1))
	r := 3 * float64(n) / (2 * math.Pi)
	pts := make([]r2.Vec, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		rr := r + rng.Float64()*2
		pts[i] = r2.Vec{X: 1000 + rr*math.Cos(a), Y: 1000 + rr*math.Sin(a)}
	}
	topo := NewTopology(2 * n)
	topo.AppendChain(pts, true)
	return topo
}

func benchGrid(level int) *SpatialGrid {
	count, size := RecommendGrid(r2.Vec{X: 2020, Y: 2020}, CellsForLevel(level))
	return NewSpatialGrid(count, size, 10)
}

func BenchmarkForcesGrid(b *testing.B) {
	topo := benchLoop(2000)
	grid := benchGrid(7)
	ids := buildGrid(topo, grid)
	fm := NewForceModel(DefaultTuner(), 1)
	src := GridNeighbors{Grid: grid, ElementIDs: ids}

	var field []r2.Vec
	for b.Loop() {
		field = fm.Apply(topo, src, field)
	}
}

func BenchmarkForcesBrute(b *testing.B) {
	topo := benchLoop(500)
	fm := NewForceModel(DefaultTuner(), 1)
	src := BruteNeighbors{Topo: topo}

	var field []r2.Vec
	for b.Loop() {
		field = fm.Apply(topo, src, field)
	}
}

func BenchmarkGridRebuild(b *testing.B) {
	topo := benchLoop(2000)
	grid := benchGrid(7)

	for b.Loop() {
		grid.Clear()
		for h := range topo.Live() {
			grid.Insert(h, topo.Node(h).Pos)
		}
	}
}

func BenchmarkRefine(b *testing.B) {
	base := benchLoop(2000)
	r := NewRefiner(DefaultTuner().Scaled(1))

	for b.Loop() {
		b.StopTimer()
		topo := NewTopology(base.Slots())
		topo.AppendChain(collectPositions(base), true)
		b.StartTimer()
		r.Refine(topo)
	}
}

func collectPositions(topo *Topology) []r2.Vec {
	var out []r2.Vec
	for p := range topo.Positions() {
		out = append(out, p)
	}
	return out
}
