// Package renderer draws the simulation world through a camera.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/camera"
	"github.com/pthm-cable/growth/systems"
)

// CurveStyle controls how chains are drawn.
type CurveStyle struct {
	LineColor   rl.Color
	NodeColor   rl.Color
	Thickness   float32 // screen pixels
	NodeRadius  float32 // screen pixels
	ShowNodes   bool
	ChainColors bool // color each chain by index
}

// DefaultCurveStyle returns the stock style.
func DefaultCurveStyle() CurveStyle {
	return CurveStyle{
		LineColor:  rl.Color{R: 230, G: 230, B: 220, A: 255},
		NodeColor:  rl.Color{R: 255, G: 170, B: 60, A: 255},
		Thickness:  1.5,
		NodeRadius: 2,
	}
}

// CurveRenderer draws every chain of a topology as a polyline.
type CurveRenderer struct {
	Style CurveStyle
}

// NewCurveRenderer creates a renderer with the default style.
func NewCurveRenderer() *CurveRenderer {
	return &CurveRenderer{Style: DefaultCurveStyle()}
}

func toScreen(cam *camera.Camera, p r2.Vec) rl.Vector2 {
	sx, sy := cam.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.Vector2{X: sx, Y: sy}
}

// Draw renders all chains of topo.
func (r *CurveRenderer) Draw(topo *systems.Topology, cam *camera.Camera) {
	s := r.Style
	chain := 0
	for c := range topo.Chains() {
		color := s.LineColor
		if s.ChainColors {
			color = rl.ColorFromHSV(float32((chain*47)%360), 0.6, 0.95)
		}
		chain++

		first, prev := systems.Nil, systems.Nil
		for h := range topo.Walk(c.Head) {
			if prev != systems.Nil {
				r.drawEdge(cam, topo.Node(prev).Pos, topo.Node(h).Pos, color)
			}
			if first == systems.Nil {
				first = h
			}
			prev = h
		}
		if c.Closed && prev != first {
			r.drawEdge(cam, topo.Node(prev).Pos, topo.Node(first).Pos, color)
		}
	}

	if !s.ShowNodes {
		return
	}
	for h := range topo.Live() {
		p := topo.Node(h).Pos
		if !cam.IsVisible(float32(p.X), float32(p.Y), s.NodeRadius) {
			continue
		}
		rl.DrawCircleV(toScreen(cam, p), s.NodeRadius, s.NodeColor)
	}
}

func (r *CurveRenderer) drawEdge(cam *camera.Camera, a, b r2.Vec, color rl.Color) {
	rl.DrawLineEx(toScreen(cam, a), toScreen(cam, b), r.Style.Thickness, color)
}

// DrawBoundary outlines the world rectangle.
func DrawBoundary(cam *camera.Camera, w, h float64, color rl.Color) {
	corners := [4]r2.Vec{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
	for i, c := range corners {
		rl.DrawLineEx(toScreen(cam, c), toScreen(cam, corners[(i+1)%4]), 1, color)
	}
}

// DrawGrid draws the cell lines of grid.
func DrawGrid(cam *camera.Camera, grid *systems.SpatialGrid, color rl.Color) {
	b := grid.Bounds()
	size := grid.CellSize()
	n := grid.CellCount()
	for i := 0; i <= n[0]; i++ {
		x := b.Min.X + float64(i)*size.X
		rl.DrawLineV(toScreen(cam, r2.Vec{X: x, Y: b.Min.Y}), toScreen(cam, r2.Vec{X: x, Y: b.Max.Y}), color)
	}
	for j := 0; j <= n[1]; j++ {
		y := b.Min.Y + float64(j)*size.Y
		rl.DrawLineV(toScreen(cam, r2.Vec{X: b.Min.X, Y: y}), toScreen(cam, r2.Vec{X: b.Max.X, Y: y}), color)
	}
}
