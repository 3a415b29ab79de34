package scene

import (
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/world"
)

// Drop stacks Count balls in a column above a wide floor. A single ball
// starts at the origin, well clear of the floor, so the first steps are pure
// free fall.
type Drop struct {
	Count       int
	Radius      float64
	Spacing     float64
	FloorDepth  float64
	Restitution float64
}

func NewDrop() *Drop {
	return &Drop{
		Count:      1,
		Radius:     0.5,
		Spacing:    1.5,
		FloorDepth: 10,
	}
}

func (d *Drop) Name() string { return "drop" }

func (d *Drop) Configure(args config.SceneConfig) {
	d.Count = ifZero(args.Count, d.Count)
	d.Spacing = ifZero(args.Spacing, d.Spacing)
	d.Restitution = ifZero(args.Restitution, d.Restitution)
}

func (d *Drop) Build(w *world.World) (Info, error) {
	b := &builder{w: w}
	b.floor(pt(0, -d.FloorDepth-0.5, 0), pt(50, 0.5, 50))

	for i := 0; i < d.Count; i++ {
		h := b.body(dynamics.RigidBodyDesc{
			Status:      dynamics.Dynamic,
			Translation: geom.Unit(geom.Y, float64(i)*d.Spacing),
			Mass:        1,
		})
		desc := collision.NewColliderDesc(collision.Ball(d.Radius))
		desc.Restitution = d.Restitution
		b.collider(desc, h)
		b.track(h)
	}
	return b.done(d.Name())
}
