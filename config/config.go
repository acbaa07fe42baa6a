// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/growth/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Grid      GridConfig      `yaml:"grid"`
	Tuner     TunerConfig     `yaml:"tuner"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Seed      SeedConfig      `yaml:"seed"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Debug     DebugConfig     `yaml:"debug"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the play area. The boundary is the rectangle
// [0,width]x[0,height].
type WorldConfig struct {
	Width  float64 `yaml:"width"`  // 0 = screen width
	Height float64 `yaml:"height"` // 0 = screen height
	Unit   float64 `yaml:"unit"`   // world length of one tuner distance unit at scale 1
}

// GridConfig holds spatial grid settings. Level is taken from the tuner.
type GridConfig struct {
	BoundaryGap float64 `yaml:"boundary_gap"` // indexed margin around the world
}

// TunerConfig mirrors systems.Tuner.
type TunerConfig struct {
	Scale             float64 `yaml:"scale"`
	TimeStep          float64 `yaml:"time_step"`
	MinDistance       float64 `yaml:"min_distance"`
	MaxDistance       float64 `yaml:"max_distance"`
	RepulsionDistance float64 `yaml:"repulsion_distance"`
	RepulsionForce    float64 `yaml:"repulsion_force"`
	AttractionForce   float64 `yaml:"attraction_force"`
	AlignmentForce    float64 `yaml:"alignment_force"`
	GridLevel         int     `yaml:"grid_level"`
	Damping           float64 `yaml:"damping"`
}

// PhysicsConfig selects the neighbor search and velocity variants.
type PhysicsConfig struct {
	NeighborSearch string `yaml:"neighbor_search"` // grid | brute
	VelocityMode   string `yaml:"velocity_mode"`   // recompute | damped
}

// SeedConfig describes the initial shape.
type SeedConfig struct {
	Count          int     `yaml:"count"`           // nodes on the circle
	Group          int     `yaml:"group"`           // nodes per open chain, 0 = one closed loop
	RadiusFraction float64 `yaml:"radius_fraction"` // radius as a fraction of world height
	Jitter         float64 `yaml:"jitter"`          // radial noise amplitude as a fraction of radius
	NoiseSeed      int64   `yaml:"noise_seed"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // ticks per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// DebugConfig holds diagnostics switches.
type DebugConfig struct {
	ValidateTopology bool `yaml:"validate_topology"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW         float64
	WorldH         float64
	VelocityMode   systems.VelocityMode
	BruteNeighbors bool
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() error {
	c.Derived.WorldW = c.World.Width
	if c.Derived.WorldW == 0 {
		c.Derived.WorldW = float64(c.Screen.Width)
	}
	c.Derived.WorldH = c.World.Height
	if c.Derived.WorldH == 0 {
		c.Derived.WorldH = float64(c.Screen.Height)
	}
	if c.World.Unit == 0 {
		c.World.Unit = 1
	}
	if !(c.Derived.WorldW > 0) || !(c.Derived.WorldH > 0) {
		return fmt.Errorf("world size %vx%v must be positive", c.Derived.WorldW, c.Derived.WorldH)
	}

	switch c.Physics.NeighborSearch {
	case "", "grid":
		c.Derived.BruteNeighbors = false
	case "brute":
		c.Derived.BruteNeighbors = true
	default:
		return fmt.Errorf("unknown physics.neighbor_search %q", c.Physics.NeighborSearch)
	}

	switch c.Physics.VelocityMode {
	case "", "recompute":
		c.Derived.VelocityMode = systems.VelocityRecompute
	case "damped":
		c.Derived.VelocityMode = systems.VelocityDamped
	default:
		return fmt.Errorf("unknown physics.velocity_mode %q", c.Physics.VelocityMode)
	}
	return nil
}

// SystemsTuner converts the tuner section to the stepping parameter bag.
func (c *Config) SystemsTuner() systems.Tuner {
	t := c.Tuner
	return systems.Tuner{
		Scale:             t.Scale,
		TimeStep:          t.TimeStep,
		MinDistance:       t.MinDistance,
		MaxDistance:       t.MaxDistance,
		RepulsionDistance: t.RepulsionDistance,
		RepulsionForce:    t.RepulsionForce,
		AttractionForce:   t.AttractionForce,
		AlignmentForce:    t.AlignmentForce,
		GridLevel:         t.GridLevel,
		Damping:           t.Damping,
	}
}

// SetTuner stores tuner values back into the config, e.g. before WriteYAML.
func (c *Config) SetTuner(t systems.Tuner) {
	c.Tuner = TunerConfig{
		Scale:             t.Scale,
		TimeStep:          t.TimeStep,
		MinDistance:       t.MinDistance,
		MaxDistance:       t.MaxDistance,
		RepulsionDistance: t.RepulsionDistance,
		RepulsionForce:    t.RepulsionForce,
		AttractionForce:   t.AttractionForce,
		AlignmentForce:    t.AlignmentForce,
		GridLevel:         t.GridLevel,
		Damping:           t.Damping,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
