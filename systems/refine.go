package systems

import "gonum.org/v1/gonum/spatial/r2"

// Edge is a directed chain edge, B == next(A).
type Edge struct {
	A, B int
}

// RefineStats counts topology edits made by one refinement.
type RefineStats struct {
	Collapsed int
	Split     int
}

// Refiner collapses crowded interior nodes and splits long edges. Each
// pass collects its candidates from the current topology before editing
// anything, so the result does not depend on traversal order.
type Refiner struct {
	Dist Distances

	collapse []int
	split    []Edge
}

// NewRefiner creates a refiner using the given world-unit distances.
func NewRefiner(d Distances) *Refiner {
	return &Refiner{Dist: d}
}

// Refine runs the collapse pass then the split pass.
func (r *Refiner) Refine(topo *Topology) RefineStats {
	var s RefineStats
	r.collapse = r.CollapseCandidates(topo, r.collapse[:0])
	s.Collapsed = ApplyCollapses(topo, r.collapse)
	r.split = r.SplitCandidates(topo, r.split[:0])
	s.Split = ApplySplits(topo, r.split)
	return s
}

// CollapseCandidates appends every interior node whose neighbors lie closer
// than 2*minDistance to each other.
func (r *Refiner) CollapseCandidates(topo *Topology, dst []int) []int {
	limit := 4 * r.Dist.Attract * r.Dist.Attract
	for h := range topo.Live() {
		prev, next := topo.Neighbors(h)
		if prev < 0 || next < 0 {
			continue
		}
		if r2.Norm2(r2.Sub(topo.Node(next).Pos, topo.Node(prev).Pos)) < limit {
			dst = append(dst, h)
		}
	}
	return dst
}

// SplitCandidates appends every live edge longer than maxDistance.
func (r *Refiner) SplitCandidates(topo *Topology, dst []Edge) []Edge {
	limit := r.Dist.Insert * r.Dist.Insert
	for a, b := range topo.Edges() {
		if r2.Norm2(r2.Sub(topo.Node(b).Pos, topo.Node(a).Pos)) > limit {
			dst = append(dst, Edge{A: a, B: b})
		}
	}
	return dst
}

// ApplyCollapses removes each candidate. Refused collapses are skipped.
func ApplyCollapses(topo *Topology, handles []int) int {
	n := 0
	for _, h := range handles {
		if topo.Collapse(h) {
			n++
		}
	}
	return n
}

// ApplySplits inserts a midpoint on every edge. Midpoints are taken from
// the positions before any insertion; edges are distinct so splices never
// overlap.
func ApplySplits(topo *Topology, edges []Edge) int {
	n := 0
	for _, e := range edges {
		if topo.Split(e.A, e.B) >= 0 {
			n++
		}
	}
	return n
}
