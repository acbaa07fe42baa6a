package game

import (
	"math"

	"github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/growth/config"
)

// SeedChain is one chain of an initial shape.
type SeedChain struct {
	Points []r2.Vec
	Closed bool
}

// Seed produces the chains a simulation starts from.
type Seed interface {
	Chains() []SeedChain
}

// StaticSeed is a fixed list of chains.
type StaticSeed []SeedChain

// Chains returns the chains unchanged.
func (s StaticSeed) Chains() []SeedChain { return s }

// CircleSeed places Count nodes evenly on a circle. With Group == 0 they
// form one closed loop; otherwise they are split into open chains of
// Group consecutive nodes.
type CircleSeed struct {
	Center r2.Vec
	Radius float64
	Count  int
	Group  int

	// Jitter perturbs the radius by up to Jitter*Radius using simplex
	// noise sampled around the unit circle, so the shape stays seamless.
	Jitter    float64
	NoiseSeed int64
}

// SeedFromConfig builds the configured circle centered in the world.
func SeedFromConfig(cfg *config.Config) CircleSeed {
	return CircleSeed{
		Center:    r2.Vec{X: cfg.Derived.WorldW / 2, Y: cfg.Derived.WorldH / 2},
		Radius:    cfg.Seed.RadiusFraction * cfg.Derived.WorldH,
		Count:     cfg.Seed.Count,
		Group:     cfg.Seed.Group,
		Jitter:    cfg.Seed.Jitter,
		NoiseSeed: cfg.Seed.NoiseSeed,
	}
}

// Points returns the circle samples in angular order.
func (s CircleSeed) Points() []r2.Vec {
	if s.Count <= 0 {
		return nil
	}
	var noise opensimplex.Noise
	if s.Jitter != 0 {
		noise = opensimplex.New(s.NoiseSeed)
	}

	pts := make([]r2.Vec, s.Count)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(s.Count)
		dir := r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
		r := s.Radius
		if noise != nil {
			r *= 1 + s.Jitter*noise.Eval2(dir.X, dir.Y)
		}
		pts[i] = r2.Add(s.Center, r2.Scale(r, dir))
	}
	return pts
}

// Chains implements Seed.
func (s CircleSeed) Chains() []SeedChain {
	pts := s.Points()
	if len(pts) == 0 {
		return nil
	}
	if s.Group <= 0 {
		return []SeedChain{{Points: pts, Closed: true}}
	}
	var chains []SeedChain
	for i := 0; i < len(pts); i += s.Group {
		end := min(i+s.Group, len(pts))
		chains = append(chains, SeedChain{Points: pts[i:end]})
	}
	return chains
}
