// Package scene builds the demo worlds: a free-fall drop, a cuboid tower, a
// wrecking ball on a rope, a row of damped springs and a box pyramid.
//
// Scenes are written against geom.Dim so the same layout runs in both
// builds. The third coordinate is dropped in 2D.
package scene

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
	"github.com/san-kum/rigidsim/internal/world"
)

// Scene populates an empty world.
type Scene interface {
	Name() string
	Configure(args config.SceneConfig)
	Build(w *world.World) (Info, error)
}

// Info describes what a build produced. Tracked bodies are the ones worth
// recording trajectories for.
type Info struct {
	Bodies    int
	Colliders int
	Joints    int
	Tracked   []handle.Handle
}

func (i Info) String() string {
	return fmt.Sprintf("%d bodies, %d colliders, %d joints", i.Bodies, i.Colliders, i.Joints)
}

// pt builds a vector from up to three coordinates, ignoring those beyond Dim.
func pt(c ...float64) geom.Vector {
	var v geom.Vector
	for i := 0; i < len(c) && i < geom.Dim; i++ {
		v[i] = c[i]
	}
	return v
}

// builder accumulates Info while creating entities so scene code stays flat.
type builder struct {
	w    *world.World
	info Info
	err  error
}

func (b *builder) body(desc dynamics.RigidBodyDesc) handle.Handle {
	b.info.Bodies++
	return b.w.CreateRigidBody(desc)
}

func (b *builder) collider(desc collision.ColliderDesc, parent handle.Handle) {
	if b.err != nil {
		return
	}
	if _, err := b.w.CreateCollider(desc, parent); err != nil {
		b.err = err
		return
	}
	b.info.Colliders++
}

func (b *builder) joint(params dynamics.JointParams, b1, b2 handle.Handle) {
	if b.err != nil {
		return
	}
	if _, err := b.w.CreateJoint(params, b1, b2); err != nil {
		b.err = err
		return
	}
	b.info.Joints++
}

func (b *builder) track(h handle.Handle) { b.info.Tracked = append(b.info.Tracked, h) }

func (b *builder) done(name string) (Info, error) {
	if b.err != nil {
		return b.info, fmt.Errorf("build %s: %w", name, b.err)
	}
	return b.info, nil
}

// floor adds a fixed cuboid body.
func (b *builder) floor(center geom.Vector, half geom.Vector) handle.Handle {
	h := b.body(dynamics.RigidBodyDesc{Status: dynamics.Fixed, Translation: center})
	b.collider(collision.NewColliderDesc(collision.Cuboid(half)), h)
	return h
}

func ifZero[T int | float64](v, def T) T {
	if v == 0 {
		return def
	}
	return v
}
