package systems

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestRectBoundaryNormals(t *testing.T) {
	b := RectBoundary(100, 50)
	want := []HalfPlane{
		{Normal: r2.Vec{X: -1}, Offset: 0},
		{Normal: r2.Vec{Y: 1}, Offset: 50},
		{Normal: r2.Vec{X: 1}, Offset: 100},
		{Normal: r2.Vec{Y: -1}, Offset: 0},
	}
	if len(b.Planes) != len(want) {
		t.Fatalf("planes = %d, want %d", len(b.Planes), len(want))
	}
	for i, hp := range b.Planes {
		if !vecNear(hp.Normal, want[i].Normal, 1e-12) || math.Abs(hp.Offset-want[i].Offset) > 1e-12 {
			t.Errorf("plane %d = %+v, want %+v", i, hp, want[i])
		}
	}
}

func TestBoundaryProject(t *testing.T) {
	b := RectBoundary(100, 50)

	tests := []struct {
		name string
		in   r2.Vec
		want r2.Vec
	}{
		{"inside untouched", r2.Vec{X: 10, Y: 10}, r2.Vec{X: 10, Y: 10}},
		{"left", r2.Vec{X: -3, Y: 10}, r2.Vec{X: 0, Y: 10}},
		{"top", r2.Vec{X: 10, Y: 55}, r2.Vec{X: 10, Y: 50}},
		{"corner", r2.Vec{X: 120, Y: -8}, r2.Vec{X: 100, Y: 0}},
		{"on edge", r2.Vec{X: 100, Y: 50}, r2.Vec{X: 100, Y: 50}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := b.Project(tc.in)
			if !vecNear(got, tc.want, 1e-12) {
				t.Errorf("Project(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestBoundaryContainment(t *testing.T) {
	b := RectBoundary(640, 360)
	rng := rand.New(rand.NewSource(3))

	topo := NewTopology(0)
	pts := make([]r2.Vec, 500)
	for i := range pts {
		pts[i] = r2.Vec{X: rng.Float64()*900 - 130, Y: rng.Float64()*600 - 120}
	}
	topo.AppendChain(pts, false)
	b.Apply(topo)

	for h := range topo.Live() {
		if v := b.Violation(topo.Node(h).Pos); v > 1e-9 {
			t.Errorf("handle %d at %v violates boundary by %v", h, topo.Node(h).Pos, v)
		}
	}
}

func TestTriangleBoundary(t *testing.T) {
	// Clockwise with y up so normals face outward.
	b := BoundaryFromPolygon([]r2.Vec{{X: 0, Y: 0}, {X: 50, Y: 100}, {X: 100, Y: 0}})

	inside := r2.Vec{X: 50, Y: 30}
	if b.Violation(inside) > 0 {
		t.Errorf("interior point reported outside: %v", b.Violation(inside))
	}
	out := b.Project(r2.Vec{X: 50, Y: -10})
	if math.Abs(out.Y) > 1e-12 {
		t.Errorf("projected point = %v, want y=0", out)
	}
}
