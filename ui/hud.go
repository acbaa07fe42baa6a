package ui

import (
	"fmt"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/growth/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Nodes      int
	Slots      int
	Free       int
	Chains     int
	Tick       int32
	Speed      int
	FPS        int32
	Paused     bool
	Splits     int
	Collapses  int
	GridMisses int
	Overlays   []OverlayID // enabled overlays
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Nodes: %d | Chains: %d | Slots: %d (%d free)", data.Nodes, data.Chains, data.Slots, data.Free),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Speed: %dx | FPS: %d | +%d -%d", data.Tick, data.Speed, data.FPS, data.Splits, data.Collapses),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	y := int32(95)
	if len(data.Overlays) > 0 {
		names := make([]string, len(data.Overlays))
		for i, id := range data.Overlays {
			names[i] = string(id)
		}
		rl.DrawText("Overlays: "+strings.Join(names, ", "), 10, y, 14, rl.Gray)
		y += 18
	}
	if data.GridMisses > 0 {
		rl.DrawText(fmt.Sprintf("%d nodes outside grid", data.GridMisses), 10, y, 14, h.renderer.Theme.WarnColor)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase step timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a perf panel at the given position.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Height returns the panel height in pixels.
func (p *PerfPanel) Height() int32 {
	t := p.renderer.Theme
	return int32(len(telemetry.Phases)+4)*t.LineHeight + 2*t.Padding
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	lh := r.Theme.LineHeight
	r.DrawPanel(p.x, p.y, 240, p.Height())

	x := p.x + r.Theme.Padding
	y := p.y + r.Theme.Padding
	y = r.DrawSectionHeader(x, y, "Step Performance")
	y = r.DrawLabelValue(x, y, "avg tick", fmt.Sprintf("%dus", stats.AvgTickDuration.Microseconds()))
	y = r.DrawLabelValue(x, y, "ticks/s", fmt.Sprintf("%.0f", stats.TicksPerSecond))
	y = r.DrawLabelValue(x, y, "ns/node", fmt.Sprintf("%.0f", stats.NsPerNode))

	dominant, _ := stats.Dominant()
	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := r.Theme.LabelColor
		if phase == dominant && pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = r.Theme.WarnColor
		}
		rl.DrawText(fmt.Sprintf("%-14s %5.1f%%", phase, pct), x, y, r.Theme.FontSize, color)
		y += lh
	}
}
