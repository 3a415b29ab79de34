package scene

import (
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/world"
)

// Pyramid stacks rows of unit boxes, each row one shorter than the last.
type Pyramid struct {
	Height int
	Half   float64
	Gap    float64
}

func NewPyramid() *Pyramid {
	return &Pyramid{Height: 8, Half: 0.5, Gap: 0.05}
}

func (p *Pyramid) Name() string { return "pyramid" }

func (p *Pyramid) Configure(args config.SceneConfig) {
	p.Height = ifZero(args.Height, p.Height)
	p.Gap = ifZero(args.Spacing, p.Gap)
}

func (p *Pyramid) Build(w *world.World) (Info, error) {
	b := &builder{w: w}
	b.floor(pt(0, -0.5, 0), pt(40, 0.5, 40))

	size := 2 * p.Half
	step := size + p.Gap
	shape := collision.Cuboid(geom.Splat(p.Half))

	for row := 0; row < p.Height; row++ {
		n := p.Height - row
		y := p.Half + float64(row)*size
		for j := 0; j < n; j++ {
			x := (float64(j) - float64(n-1)/2) * step
			h := b.body(dynamics.RigidBodyDesc{
				Status:      dynamics.Dynamic,
				Translation: pt(x, y, 0),
				Mass:        1,
			})
			b.collider(collision.NewColliderDesc(shape), h)
			if row == p.Height-1 {
				b.track(h)
			}
		}
	}
	return b.done(p.Name())
}
