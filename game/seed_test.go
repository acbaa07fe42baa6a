package game

import (
	"math"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/systems"
)

func TestCircleSeedChains(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		group      int
		wantSizes  []int
		wantClosed bool
	}{
		{"closed loop", 10, 0, []int{10}, true},
		{"pairs", 10, 2, []int{2, 2, 2, 2, 2}, false},
		{"ragged tail", 7, 3, []int{3, 3, 1}, false},
		{"one open chain", 5, 5, []int{5}, false},
		{"empty", 0, 0, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := CircleSeed{Radius: 10, Count: tt.count, Group: tt.group}
			chains := s.Chains()
			if len(chains) != len(tt.wantSizes) {
				t.Fatalf("got %d chains, want %d", len(chains), len(tt.wantSizes))
			}
			for i, c := range chains {
				if len(c.Points) != tt.wantSizes[i] {
					t.Errorf("chain %d has %d points, want %d", i, len(c.Points), tt.wantSizes[i])
				}
				if c.Closed != tt.wantClosed {
					t.Errorf("chain %d closed = %v, want %v", i, c.Closed, tt.wantClosed)
				}
			}
		})
	}
}

func TestCircleSeedOnCircle(t *testing.T) {
	center := r2.Vec{X: 50, Y: -20}
	s := CircleSeed{Center: center, Radius: 30, Count: 8}
	pts := s.Points()

	for i, p := range pts {
		if d := r2.Norm(r2.Sub(p, center)); math.Abs(d-30) > 1e-9 {
			t.Errorf("point %d at distance %v, want 30", i, d)
		}
	}
	if math.Abs(pts[0].X-80) > 1e-9 || math.Abs(pts[0].Y+20) > 1e-9 {
		t.Errorf("first point = %v, want (80,-20)", pts[0])
	}
}

func TestCircleSeedJitter(t *testing.T) {
	s := CircleSeed{Radius: 100, Count: 64, Jitter: 0.2, NoiseSeed: 3}
	a := s.Points()
	b := s.Points()

	varied := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("jitter is not deterministic at %d: %v vs %v", i, a[i], b[i])
		}
		d := r2.Norm(a[i])
		if d < 80-1e-9 || d > 120+1e-9 {
			t.Errorf("point %d radius %v outside [80,120]", i, d)
		}
		if math.Abs(d-100) > 1e-6 {
			varied = true
		}
	}
	if !varied {
		t.Error("jitter had no effect")
	}
}

func TestStaticSeedAppends(t *testing.T) {
	topo := systems.NewTopology(0)
	seed := StaticSeed{
		{Points: []r2.Vec{{X: 0}, {X: 1}, {X: 1, Y: 1}}, Closed: true},
		{Points: []r2.Vec{{X: 5}, {X: 6}}},
	}
	for _, c := range seed.Chains() {
		topo.AppendChain(c.Points, c.Closed)
	}
	if topo.LiveCount() != 5 {
		t.Errorf("live = %d, want 5", topo.LiveCount())
	}
	if err := topo.Validate(); err != nil {
		t.Error(err)
	}
}

func TestInitializeWithStaticSeed(t *testing.T) {
	g := newTestGame(t, testConfig(t))
	g.Initialize(circle(10, 100), testTuner())
	for range 3 {
		g.Step(testTuner())
	}

	// Reseed from the grown curve and check it is reproduced exactly.
	var seed StaticSeed
	for c := range g.Topology().Chains() {
		var pts []r2.Vec
		for h := range g.Topology().Walk(c.Head) {
			pts = append(pts, g.Topology().Node(h).Pos)
		}
		seed = append(seed, SeedChain{Points: pts, Closed: c.Closed})
	}
	want := slices.Collect(g.LivePositions())

	tuner := testTuner()
	tuner.AttractionForce = 0.25
	g.Initialize(seed, tuner)

	got := slices.Collect(g.LivePositions())
	if !slices.Equal(got, want) {
		t.Errorf("restored %d positions, want %d matching", len(got), len(want))
	}
	if g.Tick() != 0 {
		t.Errorf("tick = %d, want 0", g.Tick())
	}
	if g.Tuner() != tuner {
		t.Errorf("tuner = %+v, want %+v", g.Tuner(), tuner)
	}
}
