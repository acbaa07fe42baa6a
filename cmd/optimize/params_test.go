package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/growth/config"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, back[i], def[i])
		}
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	got := pv.Clamp([]float64{-1, 100, 0.3, 1})
	want := []float64{0.05, 2.0, 0.3, 2.0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
}

func TestApplyAndExtract(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	values := []float64{0.7, 0.4, 0.9, 12}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("%s: got %v, want %v", pv.Specs[i].Name, got[i], values[i])
		}
	}
	if cfg.SystemsTuner().RepulsionDistance != 12 {
		t.Errorf("tuner not updated: %+v", cfg.SystemsTuner())
	}
}

func TestComputeFitness(t *testing.T) {
	tests := []struct {
		name string
		run  runResult
		want float64
	}{
		{"no growth", runResult{Growth: 1}, 0},
		{"doubled", runResult{Growth: 2}, -math.Log(2)},
		{"irregular", runResult{Growth: 1, EdgeCV: 0.5}, weightEdgeCV * 0.5},
		{"blown up", runResult{Growth: 1, BlownUp: true}, blowUpPenalty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeFitness(tt.run); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateShortRun(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, 20, 100000, []int64{1, 2}, cfg)

	f := fe.Evaluate(pv.DefaultVector())
	if math.IsNaN(f) || math.IsInf(f, 0) {
		t.Fatalf("fitness = %v", f)
	}
	run := fe.LastRun()
	if run.Ticks != 20 {
		t.Errorf("ticks = %d, want 20", run.Ticks)
	}
	if run.Growth <= 0 {
		t.Errorf("growth = %v, want > 0", run.Growth)
	}
}
