package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/growth/systems"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.WorldW != float64(cfg.Screen.Width) || cfg.Derived.WorldH != float64(cfg.Screen.Height) {
		t.Errorf("world = %vx%v, want screen size %dx%d",
			cfg.Derived.WorldW, cfg.Derived.WorldH, cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Derived.BruteNeighbors {
		t.Error("expected grid neighbor search by default")
	}
	if cfg.Derived.VelocityMode != systems.VelocityRecompute {
		t.Error("expected recompute velocity mode by default")
	}

	tuner := cfg.SystemsTuner()
	if tuner.MinDistance != 1 || tuner.MaxDistance != 5 || tuner.RepulsionDistance != 10 {
		t.Errorf("unexpected default distances: %+v", tuner)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	overlay := "tuner:\n  max_distance: 8\nphysics:\n  velocity_mode: damped\n"
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tuner.MaxDistance != 8 {
		t.Errorf("max_distance = %v, want 8", cfg.Tuner.MaxDistance)
	}
	// Fields absent from the overlay keep their defaults.
	if cfg.Tuner.MinDistance != 1 {
		t.Errorf("min_distance = %v, want default 1", cfg.Tuner.MinDistance)
	}
	if cfg.Derived.VelocityMode != systems.VelocityDamped {
		t.Error("expected damped velocity mode")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		overlay string
	}{
		{"neighbor search", "physics:\n  neighbor_search: octree\n"},
		{"velocity mode", "physics:\n  velocity_mode: verlet\n"},
		{"negative world height", "world:\n  height: -5\n"},
		{"zero screen fallback", "screen:\n  width: 0\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tc.overlay), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestWriteYAMLRoundTripsTuner(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	tuner := cfg.SystemsTuner()
	tuner.AlignmentForce = 0.3
	cfg.SetTuner(tuner)

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.SystemsTuner() != tuner {
		t.Errorf("tuner = %+v, want %+v", back.SystemsTuner(), tuner)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestMustInit(t *testing.T) {
	prev := global
	t.Cleanup(func() { global = prev })

	MustInit("")
	if Cfg().Seed.Count != 10 {
		t.Errorf("seed count = %d, want 10", Cfg().Seed.Count)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustInit with a missing file did not panic")
		}
	}()
	MustInit(filepath.Join(t.TempDir(), "missing.yaml"))
}
