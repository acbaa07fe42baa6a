package systems

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r2"
)

// NeighborSource yields candidate handles near a node. Candidates may
// include far nodes; the force model does the distance test.
type NeighborSource interface {
	Candidates(h int, pos r2.Vec, radius float64) iter.Seq[int]
}

// GridNeighbors answers candidate queries from a populated SpatialGrid.
// ElementIDs maps handle to element id, -1 for nodes that were not indexed.
type GridNeighbors struct {
	Grid       *SpatialGrid
	ElementIDs []int
}

// Candidates implements NeighborSource. Nodes outside the grid get none.
func (n GridNeighbors) Candidates(h int, pos r2.Vec, radius float64) iter.Seq[int] {
	return func(yield func(int) bool) {
		if h >= len(n.ElementIDs) {
			return
		}
		self := n.ElementIDs[h]
		if self < 0 {
			return
		}
		r := r2.Vec{X: radius, Y: radius}
		box := r2.Box{Min: r2.Sub(pos, r), Max: r2.Add(pos, r)}
		for eid := range n.Grid.Query(box) {
			if eid == self {
				continue
			}
			if !yield(n.Grid.Element(eid).ID) {
				return
			}
		}
	}
}

// BruteNeighbors offers every other live node as a candidate.
type BruteNeighbors struct {
	Topo *Topology
}

// Candidates implements NeighborSource.
func (n BruteNeighbors) Candidates(h int, _ r2.Vec, _ float64) iter.Seq[int] {
	return func(yield func(int) bool) {
		for j := range n.Topo.Live() {
			if j == h {
				continue
			}
			if !yield(j) {
				return
			}
		}
	}
}

// ForceModel computes the velocity field driving the curve.
type ForceModel struct {
	Dist Distances

	Attraction float64
	Repulsion  float64
	Alignment  float64
}

// NewForceModel builds a force model from tuner values in world units.
func NewForceModel(t Tuner, unit float64) ForceModel {
	return ForceModel{
		Dist:       t.Scaled(unit),
		Attraction: t.AttractionForce,
		Repulsion:  t.RepulsionForce,
		Alignment:  t.AlignmentForce,
	}
}

// QueryRange returns the half extent of a repulsion query.
func (f ForceModel) QueryRange() r2.Vec {
	return r2.Vec{X: f.Dist.Repulse, Y: f.Dist.Repulse}
}

// Velocity returns the net velocity for live node h.
func (f ForceModel) Velocity(topo *Topology, h int, src NeighborSource) r2.Vec {
	var v r2.Vec
	pos := topo.Node(h).Pos
	prev, next := topo.Neighbors(h)

	// attraction
	attractSq := f.Dist.Attract * f.Dist.Attract
	for _, nb := range [2]int{prev, next} {
		if nb < 0 {
			continue
		}
		dx := r2.Sub(topo.Node(nb).Pos, pos)
		if r2.Norm2(dx) > attractSq {
			v = r2.Add(v, r2.Scale(f.Attraction, dx))
		}
	}

	// repulsion, normalized by total weight
	v = r2.Add(v, f.repulsion(topo, h, pos, src))

	// alignment
	if prev >= 0 && next >= 0 {
		mid := r2.Scale(0.5, r2.Add(topo.Node(prev).Pos, topo.Node(next).Pos))
		v = r2.Add(v, r2.Scale(f.Alignment, r2.Sub(mid, pos)))
	}
	return v
}

func (f ForceModel) repulsion(topo *Topology, h int, pos r2.Vec, src NeighborSource) r2.Vec {
	if src == nil {
		return r2.Vec{}
	}
	epsSq := f.Dist.Eps * f.Dist.Eps
	repulseSq := f.Dist.Repulse * f.Dist.Repulse

	var sum r2.Vec
	var weights float64
	for j := range src.Candidates(h, pos, f.Dist.Repulse) {
		if j == h {
			continue
		}
		dx := r2.Sub(topo.Node(j).Pos, pos)
		distSq := r2.Norm2(dx)
		if epsSq < distSq && distSq < repulseSq {
			w := 1 / distSq
			sum = r2.Add(sum, r2.Scale(-f.Repulsion*w, dx))
			weights += w
		}
	}
	if weights <= 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/weights, sum)
}

// Apply writes the velocity field of every live node into field, indexed
// by handle. field is grown to the arena size and returned.
func (f ForceModel) Apply(topo *Topology, src NeighborSource, field []r2.Vec) []r2.Vec {
	field = resize(field, topo.Slots())
	for h := range topo.Live() {
		field[h] = f.Velocity(topo, h, src)
	}
	return field
}

func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		s = make([]T, n)
	}
	s = s[:n]
	clear(s)
	return s
}
