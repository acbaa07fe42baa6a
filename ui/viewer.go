package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/growth/camera"
	"github.com/pthm-cable/growth/game"
	"github.com/pthm-cable/growth/renderer"
	"github.com/pthm-cable/growth/systems"
)

const controlsLegend = "SPACE pause | R restart | , . speed | F fit | wheel zoom | right-drag pan"

// Viewer is the graphical host: it feeds input to a game and draws it.
type Viewer struct {
	game     *game.Game
	camera   *camera.Camera
	curve    *renderer.CurveRenderer
	overlays *OverlayRegistry
	hud      *HUD
	perf     *PerfPanel
	tuner    *TunerPanel

	defaults     systems.Tuner
	screenWidth  float32
	screenHeight float32
}

// NewViewer creates a viewer for g sized to the current window.
func NewViewer(g *game.Game) *Viewer {
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	ww, wh := g.World()

	v := &Viewer{
		game:         g,
		camera:       camera.New(w, h, float32(ww), float32(wh)),
		curve:        renderer.NewCurveRenderer(),
		overlays:     NewOverlayRegistry(),
		hud:          NewHUD(),
		perf:         NewPerfPanel(10, 0),
		tuner:        NewTunerPanel(int32(w)-290, 10, 280),
		defaults:     g.Tuner(),
		screenWidth:  w,
		screenHeight: h,
	}
	v.placePanels()
	v.camera.Fit()
	return v
}

// placePanels anchors the tuner to the top right and the perf panel above
// the controls legend.
func (v *Viewer) placePanels() {
	v.tuner.SetPosition(int32(v.screenWidth)-290, 10)
	v.perf.SetPosition(10, int32(v.screenHeight)-v.perf.Height()-35)
}

// Update handles input and advances the simulation.
func (v *Viewer) Update() {
	v.handleInput()
	v.game.Update()
}

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		v.game.SetPaused(!v.game.Paused())
	}
	if rl.IsKeyPressed(rl.KeyR) {
		v.game.Restart()
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.game.StepsPerUpdate() < 20 {
		v.game.SetStepsPerUpdate(v.game.StepsPerUpdate() + 1)
	}

	if key := rl.GetKeyPressed(); key != 0 {
		v.overlays.HandleKeyPress(key)
	}

	v.handleCameraInput()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.camera.Resize(w, h)
	v.placePanels()
}

// handleCameraInput pans and zooms the camera.
func (v *Viewer) handleCameraInput() {
	mouse := rl.GetMousePosition()
	overPanel := v.overlays.IsEnabled(OverlayTuner) && v.tuner.Contains(mouse.X, mouse.Y)

	if wheel := rl.GetMouseWheelMove(); wheel != 0 && !overPanel {
		factor := float32(1.1)
		if wheel < 0 {
			factor = 1 / factor
		}
		v.camera.ZoomAt(mouse.X, mouse.Y, factor)
	}

	if rl.IsMouseButtonDown(rl.MouseButtonRight) || rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		v.camera.Pan(-d.X, -d.Y)
	}

	const panSpeed = 8
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.camera.Fit()
	}
}

// Draw renders the world and the panels.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 20, B: 24, A: 255})

	if v.overlays.IsEnabled(OverlayGrid) {
		renderer.DrawGrid(v.camera, v.game.Grid(), rl.Color{R: 45, G: 50, B: 60, A: 255})
	}
	ww, wh := v.game.World()
	renderer.DrawBoundary(v.camera, ww, wh, rl.Color{R: 90, G: 100, B: 110, A: 255})

	v.curve.Style.ShowNodes = v.overlays.IsEnabled(OverlayNodes)
	v.curve.Style.ChainColors = v.overlays.IsEnabled(OverlayChainColors)
	v.curve.Draw(v.game.Topology(), v.camera)

	v.drawUI()
	rl.EndDrawing()
}

// drawUI renders the HUD and the enabled panels.
func (v *Viewer) drawUI() {
	topo := v.game.Topology()
	chains := 0
	for range topo.Chains() {
		chains++
	}
	refine := v.game.LastRefine()

	v.hud.Draw(HUDData{
		Title:      "Differential Growth",
		Nodes:      topo.LiveCount(),
		Slots:      topo.Slots(),
		Free:       topo.FreeCount(),
		Chains:     chains,
		Tick:       v.game.Tick(),
		Speed:      v.game.StepsPerUpdate(),
		FPS:        rl.GetFPS(),
		Paused:     v.game.Paused(),
		Splits:     refine.Split,
		Collapses:  refine.Collapsed,
		GridMisses: v.game.GridMisses(),
		Overlays:   v.overlays.EnabledOverlays(),
	})
	v.hud.DrawControls(int32(v.screenHeight), controlsLegend+" | "+v.overlays.KeyLegend())

	if v.overlays.IsEnabled(OverlayPerf) {
		v.perf.Draw(v.game.PerfStats())
	}

	if v.overlays.IsEnabled(OverlayTuner) {
		t := v.game.Tuner()
		action := v.tuner.Draw(&t)
		if action.Reset {
			t = v.defaults
			action.Changed = true
		}
		if action.Changed {
			v.game.SetTuner(t)
		}
		if action.Restart {
			v.game.Restart()
		}
	}
}
