package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/growth/systems"
)

// TunerAction reports what the user did in the tuner panel this frame.
type TunerAction struct {
	Changed bool // a slider moved
	Restart bool
	Reset   bool // restore the tuner the panel was created with
}

// TunerPanel edits a systems.Tuner with one slider per field.
type TunerPanel struct {
	renderer *Renderer
	sliders  []SliderDescriptor
	x, y     int32
	width    int32
}

// NewTunerPanel creates a tuner panel anchored at (x, y).
func NewTunerPanel(x, y, width int32) *TunerPanel {
	return &TunerPanel{
		renderer: NewRenderer(),
		sliders:  TunerSliders(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (p *TunerPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Height returns the panel height in pixels.
func (p *TunerPanel) Height() int32 {
	th := p.renderer.Theme
	return int32(len(p.sliders))*(th.LineHeight+22) + th.LineHeight + 40 + 2*th.Padding
}

// Draw renders the panel and applies slider edits to t.
func (p *TunerPanel) Draw(t *systems.Tuner) TunerAction {
	r := p.renderer
	th := r.Theme
	r.DrawPanel(p.x, p.y, p.width, p.Height())

	x := float32(p.x + th.Padding)
	y := p.y + th.Padding
	y = r.DrawSectionHeader(int32(x), y, "Tuner")

	sliderW := float32(p.width - 2*th.Padding - 60)
	var action TunerAction
	for _, s := range p.sliders {
		r.DrawLabel(int32(x), y, s.Label)
		y += th.LineHeight

		old := s.Get(t)
		v := gui.SliderBar(
			rl.Rectangle{X: x, Y: float32(y), Width: sliderW, Height: 16},
			"", "",
			old, s.Min, s.Max,
		)
		rl.DrawText(fmt.Sprintf(s.Format, v), int32(x+sliderW)+8, y+2, th.FontSize, th.ValueColor)
		if v != old {
			s.Set(t, v)
			action.Changed = true
		}
		y += 22
	}

	y += 6
	half := (float32(p.width) - 3*float32(th.Padding)) / 2
	if gui.Button(rl.Rectangle{X: x, Y: float32(y), Width: half, Height: 24}, "Restart") {
		action.Restart = true
	}
	if gui.Button(rl.Rectangle{X: x + half + float32(th.Padding), Y: float32(y), Width: half, Height: 24}, "Defaults") {
		action.Reset = true
	}
	return action
}

// Contains reports whether screen point (sx, sy) lies over the panel.
func (p *TunerPanel) Contains(sx, sy float32) bool {
	return sx >= float32(p.x) && sx <= float32(p.x+p.width) &&
		sy >= float32(p.y) && sy <= float32(p.y+p.Height())
}
