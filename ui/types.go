// Package ui provides the on-screen panels for the graphical host: a HUD,
// a perf panel, overlay toggles and a descriptor-driven tuner panel.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/growth/systems"
)

// SliderDescriptor binds one tuner field to a slider.
type SliderDescriptor struct {
	Label    string
	Min, Max float32
	Format   string // Printf format for the value
	Get      func(*systems.Tuner) float32
	Set      func(*systems.Tuner, float32)
}

// TunerSliders returns the sliders shown in the tuner panel, in order.
func TunerSliders() []SliderDescriptor {
	return []SliderDescriptor{
		{
			Label: "Scale", Min: 0.1, Max: 5, Format: "%.2f",
			Get: func(t *systems.Tuner) float32 { return float32(t.Scale) },
			Set: func(t *systems.Tuner, v float32) { t.Scale = float64(v) },
		},
		{
			Label: "Time Step", Min: 0.001, Max: 0.5, Format: "%.3f",
			Get: func(t *systems.Tuner) float32 { return float32(t.TimeStep) },
			Set: func(t *systems.Tuner, v float32) { t.TimeStep = float64(v) },
		},
		{
			Label: "Min Distance", Min: 0.1, Max: 10, Format: "%.2f",
			Get: func(t *systems.Tuner) float32 { return float32(t.MinDistance) },
			Set: func(t *systems.Tuner, v float32) { t.MinDistance = float64(v) },
		},
		{
			Label: "Max Distance", Min: 1, Max: 30, Format: "%.2f",
			Get: func(t *systems.Tuner) float32 { return float32(t.MaxDistance) },
			Set: func(t *systems.Tuner, v float32) { t.MaxDistance = float64(v) },
		},
		{
			Label: "Repulsion Distance", Min: 1, Max: 60, Format: "%.1f",
			Get: func(t *systems.Tuner) float32 { return float32(t.RepulsionDistance) },
			Set: func(t *systems.Tuner, v float32) { t.RepulsionDistance = float64(v) },
		},
		{
			Label: "Repulsion Force", Min: 0, Max: 2, Format: "%.2f",
			Get: func(t *systems.Tuner) float32 { return float32(t.RepulsionForce) },
			Set: func(t *systems.Tuner, v float32) { t.RepulsionForce = float64(v) },
		},
		{
			Label: "Attraction Force", Min: 0, Max: 2, Format: "%.2f",
			Get: func(t *systems.Tuner) float32 { return float32(t.AttractionForce) },
			Set: func(t *systems.Tuner, v float32) { t.AttractionForce = float64(v) },
		},
		{
			Label: "Alignment Force", Min: 0, Max: 2, Format: "%.2f",
			Get: func(t *systems.Tuner) float32 { return float32(t.AlignmentForce) },
			Set: func(t *systems.Tuner, v float32) { t.AlignmentForce = float64(v) },
		},
		{
			Label: "Grid Level", Min: 2, Max: 10, Format: "%.0f",
			Get: func(t *systems.Tuner) float32 { return float32(t.GridLevel) },
			Set: func(t *systems.Tuner, v float32) { t.GridLevel = int(v + 0.5) },
		},
		{
			Label: "Damping", Min: 0, Max: 1, Format: "%.2f",
			Get: func(t *systems.Tuner) float32 { return float32(t.Damping) },
			Set: func(t *systems.Tuner, v float32) { t.Damping = float64(v) },
		},
	}
}

// Theme holds UI styling constants.
type Theme struct {
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	WarnColor      rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		WarnColor:      rl.Orange,
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     90,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}
