package scene

import (
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/world"
)

// Tower is a block of small cubes resting on a raised platform. Layers
// alternate their fill order; in 2D each layer is a single row.
type Tower struct {
	Width  int
	Height int
	Half   float64
	Mass   float64
	BaseY  float64
}

func NewTower() *Tower {
	return &Tower{
		Width:  5,
		Height: 15,
		Half:   0.1,
		Mass:   0.05,
		BaseY:  3,
	}
}

func (t *Tower) Name() string { return "tower" }

func (t *Tower) Configure(args config.SceneConfig) {
	t.Width = ifZero(args.Width, t.Width)
	t.Height = ifZero(args.Height, t.Height)
}

func (t *Tower) Build(w *world.World) (Info, error) {
	b := &builder{w: w}
	b.floor(pt(1, 2.5, 1), pt(5, 0.1, 5))
	t.build(b, true)
	return b.done(t.Name())
}

// build adds the blocks. With track set, the first block of the top layer is
// tracked.
func (t *Tower) build(b *builder, track bool) {
	shift := t.Half * 2
	centerX := shift * float64(t.Width/2)
	centerZ := shift

	depth := 1
	if geom.Dim == 3 {
		depth = t.Width
	}

	for i := 0; i < t.Height; i++ {
		even := i%2 == 0
		y := float64(i)*shift + t.BaseY
		for j := 0; j < t.Width; j++ {
			for k := 0; k < depth; k++ {
				x := float64(j)*shift - centerX
				z := float64(k)*shift - centerZ
				if !even && depth > 1 {
					x = float64(k)*shift - centerX
					z = float64(j)*shift - centerZ
				}
				h := b.body(dynamics.RigidBodyDesc{
					Status:      dynamics.Dynamic,
					Translation: pt(x, y, z),
					Mass:        t.Mass,
				})
				b.collider(collision.NewColliderDesc(collision.Cuboid(geom.Splat(t.Half))), h)
				if track && i == t.Height-1 && j == 0 && k == 0 {
					b.track(h)
				}
			}
		}
	}
}
