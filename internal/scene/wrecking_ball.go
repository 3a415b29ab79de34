package scene

import (
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/world"
)

// WreckingBall swings a heavy ball on a rope into a Tower.
type WreckingBall struct {
	Tower      *Tower
	RopeLength float64
	BallMass   float64
	BallRadius float64
	Anchor     geom.Vector
	Start      geom.Vector
}

func NewWreckingBall() *WreckingBall {
	return &WreckingBall{
		Tower:      NewTower(),
		RopeLength: 5,
		BallMass:   10,
		BallRadius: 1,
		Anchor:     pt(0, 10, 0),
		Start:      pt(-3, 8, 3),
	}
}

func (wb *WreckingBall) Name() string { return "wrecking-ball" }

func (wb *WreckingBall) Configure(args config.SceneConfig) {
	wb.Tower.Configure(args)
	wb.RopeLength = ifZero(args.RopeLength, wb.RopeLength)
	wb.BallMass = ifZero(args.BallMass, wb.BallMass)
}

func (wb *WreckingBall) Build(w *world.World) (Info, error) {
	b := &builder{w: w}
	b.floor(pt(1, 2.5, 1), pt(5, 0.1, 5))
	wb.Tower.build(b, false)

	anchor := b.body(dynamics.RigidBodyDesc{Status: dynamics.Fixed, Translation: wb.Anchor})
	b.collider(collision.NewColliderDesc(collision.Cuboid(geom.Splat(0.1))), anchor)

	ball := b.body(dynamics.RigidBodyDesc{
		Status:      dynamics.Dynamic,
		Translation: wb.Start,
		Mass:        wb.BallMass,
	})
	b.collider(collision.NewColliderDesc(collision.Ball(wb.BallRadius)), ball)
	b.joint(dynamics.RopeJoint(wb.RopeLength, geom.Vector{}, geom.Vector{}), ball, anchor)
	b.track(ball)

	return b.done(wb.Name())
}
