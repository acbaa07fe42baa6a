// Package systems provides the stages of a differential growth step:
// spatial indexing, the chain topology store, forces, integration,
// boundary containment and topology refinement.
package systems

// Epsilon scales the insertion distance into the lower repulsion cutoff.
const Epsilon = 1e-2

// VelocityMode selects how the integrator treats velocity between steps.
type VelocityMode int

const (
	// VelocityRecompute replaces velocity with the force field each step.
	VelocityRecompute VelocityMode = iota
	// VelocityDamped carries velocity across steps, scaled by Tuner.Damping.
	VelocityDamped
)

// Tuner is the parameter bag read by a step. It is never written by the core.
type Tuner struct {
	Scale    float64
	TimeStep float64

	MinDistance       float64
	MaxDistance       float64
	RepulsionDistance float64

	RepulsionForce  float64
	AttractionForce float64
	AlignmentForce  float64

	GridLevel int

	// Damping is only used with VelocityDamped.
	Damping float64
}

// DefaultTuner returns the stock parameters.
func DefaultTuner() Tuner {
	return Tuner{
		Scale:             1,
		TimeStep:          0.01,
		MinDistance:       1,
		MaxDistance:       5,
		RepulsionDistance: 10,
		RepulsionForce:    0.2,
		AttractionForce:   0.5,
		AlignmentForce:    0.45,
		GridLevel:         5,
		Damping:           0.9,
	}
}

// Distances holds tuner lengths converted to world units.
type Distances struct {
	Attract float64 // minDistance
	Insert  float64 // maxDistance
	Repulse float64 // repulsionDistance
	Eps     float64 // lower repulsion cutoff
	DT      float64 // integration step
}

// Scaled converts the tuner lengths using unit world lengths per tuner unit.
func (t Tuner) Scaled(unit float64) Distances {
	s := t.Scale * unit
	d := Distances{
		Attract: t.MinDistance * s,
		Insert:  t.MaxDistance * s,
		Repulse: t.RepulsionDistance * s,
		DT:      t.TimeStep * t.Scale,
	}
	d.Eps = d.Insert * Epsilon
	return d
}
