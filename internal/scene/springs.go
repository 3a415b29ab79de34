package scene

import (
	"math"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/world"
)

// Springs hangs a row of balls on zero-length springs anchored to a fixed
// body, each with a box dropped on top. Unless DampingRatio is set, the
// ratio sweeps from 0 towards twice critical along the row.
type Springs struct {
	Count        int
	Stiffness    float64
	DampingRatio float64
	Radius       float64
	BoxDensity   float64
}

func NewSprings() *Springs {
	return &Springs{
		Count:      30,
		Stiffness:  1.0e3,
		Radius:     0.5,
		BoxDensity: 100,
	}
}

func (s *Springs) Name() string { return "springs" }

func (s *Springs) Configure(args config.SceneConfig) {
	s.Count = ifZero(args.Count, s.Count)
	s.Stiffness = ifZero(args.Stiffness, s.Stiffness)
	s.DampingRatio = ifZero(args.DampingRatio, s.DampingRatio)
}

// Damping returns the damping coefficient of spring i.
func (s *Springs) Damping(i int, mass float64) float64 {
	critical := 2 * math.Sqrt(s.Stiffness*mass)
	ratio := s.DampingRatio
	if ratio == 0 {
		ratio = float64(i) / (float64(s.Count) / 2)
	}
	return ratio * critical
}

func (s *Springs) Build(w *world.World) (Info, error) {
	b := &builder{w: w}
	ground := b.body(dynamics.RigidBodyDesc{Status: dynamics.Fixed})

	const mass = 1.0
	box := collision.Cuboid(geom.Splat(s.Radius))

	for i := 0; i < s.Count; i++ {
		x := -6 + 1.5*float64(i)
		ballPos := pt(x, 4.5, 0)

		ball := b.body(dynamics.RigidBodyDesc{
			Status:      dynamics.Dynamic,
			Translation: ballPos,
			Mass:        mass,
		})
		b.collider(collision.NewColliderDesc(collision.Ball(s.Radius)), ball)

		anchor := ballPos.Sub(geom.Unit(geom.Y, 3))
		b.joint(dynamics.SpringJoint(0, s.Stiffness, s.Damping(i, mass), anchor, geom.Vector{}), ground, ball)
		b.track(ball)

		top := b.body(dynamics.RigidBodyDesc{
			Status:      dynamics.Dynamic,
			Translation: ballPos.Add(geom.Unit(geom.Y, 3)),
			Mass:        s.BoxDensity * box.Volume(),
		})
		b.collider(collision.NewColliderDesc(box), top)
	}
	return b.done(s.Name())
}
