package systems

import "gonum.org/v1/gonum/spatial/r2"

// HalfPlane is the region dot(pos, Normal) <= Offset.
type HalfPlane struct {
	Normal r2.Vec
	Offset float64
}

// Boundary is a convex region described by half-planes, applied in order.
type Boundary struct {
	Planes []HalfPlane
}

// BoundaryFromPolygon builds one half-plane per polygon edge. The normal of
// edge p0->p1 is normalize(-d.y, d.x), so vertices must be ordered such
// that this points outward (clockwise with y up, e.g. (0,0),(0,h),(w,h),(w,0)).
func BoundaryFromPolygon(vertices []r2.Vec) Boundary {
	b := Boundary{Planes: make([]HalfPlane, 0, len(vertices))}
	for i, p0 := range vertices {
		p1 := vertices[(i+1)%len(vertices)]
		d := r2.Sub(p1, p0)
		n := r2.Unit(r2.Vec{X: -d.Y, Y: d.X})
		b.Planes = append(b.Planes, HalfPlane{Normal: n, Offset: r2.Dot(p0, n)})
	}
	return b
}

// RectBoundary returns the boundary of the rectangle [0,w]x[0,h].
func RectBoundary(w, h float64) Boundary {
	return BoundaryFromPolygon([]r2.Vec{
		{X: 0, Y: 0},
		{X: 0, Y: h},
		{X: w, Y: h},
		{X: w, Y: 0},
	})
}

// Project moves pos back along each violated plane normal, one pass.
func (b Boundary) Project(pos r2.Vec) r2.Vec {
	for _, hp := range b.Planes {
		if diff := r2.Dot(pos, hp.Normal) - hp.Offset; diff > 0 {
			pos = r2.Sub(pos, r2.Scale(diff, hp.Normal))
		}
	}
	return pos
}

// Violation returns the largest amount by which pos lies outside any plane,
// or zero if pos is inside.
func (b Boundary) Violation(pos r2.Vec) float64 {
	var worst float64
	for _, hp := range b.Planes {
		worst = max(worst, r2.Dot(pos, hp.Normal)-hp.Offset)
	}
	return worst
}

// Apply projects every live node of topo.
func (b Boundary) Apply(topo *Topology) {
	for h := range topo.Live() {
		n := topo.Node(h)
		n.Pos = b.Project(n.Pos)
	}
}
