package game

import (
	"github.com/pthm-cable/growth/systems"
	"github.com/pthm-cable/growth/telemetry"
)

// simulationStep runs one tick: grid, forces, integrate, boundary, refine.
func (g *Game) simulationStep() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseSpatialGrid)
	g.ensureGrid(g.tuner.GridLevel)
	g.updateSpatialGrid()

	g.perfCollector.StartPhase(telemetry.PhaseForces)
	forces := systems.NewForceModel(g.tuner, g.unit)
	g.updateVelocity(forces)

	g.perfCollector.StartPhase(telemetry.PhaseIntegrate)
	integrator := systems.Integrator{Mode: g.velocity, Damping: g.tuner.Damping}
	integrator.Integrate(g.topo, g.field, forces.Dist.DT)

	g.perfCollector.StartPhase(telemetry.PhaseBoundary)
	g.boundary.Apply(g.topo)

	g.perfCollector.StartPhase(telemetry.PhaseRefine)
	g.refiner.Dist = forces.Dist
	g.lastRefine = g.refiner.Refine(g.topo)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.collector.RecordRefine(g.lastRefine)
	g.collector.RecordGridMisses(g.gridMisses)
	if g.validate {
		g.validateTopology()
	}
	g.flushTelemetry()

	g.perfCollector.EndTick(g.topo.LiveCount())
}

// updateSpatialGrid rebuilds the grid from live node positions and records
// the element id of every handle.
func (g *Game) updateSpatialGrid() {
	g.grid.Clear()
	g.gridMisses = 0

	n := g.topo.Slots()
	if cap(g.elementIDs) < n {
		g.elementIDs = make([]int, n)
	}
	g.elementIDs = g.elementIDs[:n]
	for i := range g.elementIDs {
		g.elementIDs[i] = -1
	}

	for h := range g.topo.Live() {
		eid := g.grid.Insert(h, g.topo.Node(h).Pos)
		if eid < 0 {
			g.gridMisses++
		}
		g.elementIDs[h] = eid
	}
}

// updateVelocity fills the velocity field for every live node.
func (g *Game) updateVelocity(forces systems.ForceModel) {
	var src systems.NeighborSource
	if g.brute {
		src = systems.BruteNeighbors{Topo: g.topo}
	} else {
		g.grid.CheckFanout(forces.QueryRange())
		src = systems.GridNeighbors{Grid: g.grid, ElementIDs: g.elementIDs}
	}
	g.field = forces.Apply(g.topo, src, g.field)
}

// validateTopology panics with an index dump if the topology is corrupt.
func (g *Game) validateTopology() {
	if err := g.topo.Validate(); err != nil {
		g.logger.Error("topology invalid",
			"tick", g.tick,
			"error", err,
			"indices", g.topo.Dump(),
		)
		panic(err)
	}
}
