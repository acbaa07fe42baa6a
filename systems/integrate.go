package systems

import "gonum.org/v1/gonum/spatial/r2"

// Integrator advances positions from velocities.
type Integrator struct {
	Mode    VelocityMode
	Damping float64
}

// Integrate updates velocity from field according to the mode, then moves
// every live node by vel*dt. No clamping happens here.
func (in Integrator) Integrate(topo *Topology, field []r2.Vec, dt float64) {
	for h := range topo.Live() {
		n := topo.Node(h)
		var f r2.Vec
		if h < len(field) {
			f = field[h]
		}
		switch in.Mode {
		case VelocityDamped:
			n.Vel = r2.Add(r2.Scale(in.Damping, n.Vel), f)
		default:
			n.Vel = f
		}
		n.Pos = r2.Add(n.Pos, r2.Scale(dt, n.Vel))
	}
}
