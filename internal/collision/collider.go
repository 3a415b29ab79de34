package collision

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

// ColliderDesc describes a collider to attach to a body.
type ColliderDesc struct {
	Shape       Shape
	Offset      geom.Vector
	Friction    float64
	Restitution float64
	Sensor      bool
	UserData    uint64
}

// NewColliderDesc returns a solid collider with friction 0.5 and no bounce.
func NewColliderDesc(shape Shape) ColliderDesc {
	return ColliderDesc{Shape: shape, Friction: 0.5}
}

// Collider is a shape attached to exactly one body. The body owns the
// collider's lifetime; Parent is a back-reference only.
type Collider struct {
	Shape       Shape
	Offset      geom.Vector
	Parent      handle.Handle
	Friction    float64
	Restitution float64
	Sensor      bool
	UserData    uint64
}

// Position returns the collider center for a parent at bodyPos.
func (c *Collider) Position(bodyPos geom.Vector) geom.Vector {
	return bodyPos.Add(c.Offset)
}

// ColliderSet stores colliders behind generational handles.
type ColliderSet struct {
	arena *handle.Arena[Collider]
}

func NewColliderSet() *ColliderSet {
	return &ColliderSet{arena: handle.NewArena[Collider](64)}
}

// Insert attaches a new collider to parent and records it in the body's
// collider list.
func (s *ColliderSet) Insert(desc ColliderDesc, parent handle.Handle, bodies *dynamics.BodySet) (handle.Handle, error) {
	if err := desc.Shape.Validate(); err != nil {
		return handle.Invalid, err
	}
	if !bodies.Contains(parent) {
		return handle.Invalid, fmt.Errorf("%w: %v", ErrInvalidParent, parent)
	}
	h := s.arena.Insert(Collider{
		Shape:       desc.Shape,
		Offset:      desc.Offset,
		Parent:      parent,
		Friction:    desc.Friction,
		Restitution: desc.Restitution,
		Sensor:      desc.Sensor,
		UserData:    desc.UserData,
	})
	bodies.AttachCollider(parent, h)
	return h, nil
}

func (s *ColliderSet) Get(h handle.Handle) (Collider, bool) {
	c, ok := s.arena.Get(h)
	if !ok {
		return Collider{}, false
	}
	return *c, true
}

func (s *ColliderSet) GetMut(h handle.Handle) (*Collider, bool) { return s.arena.Get(h) }

func (s *ColliderSet) Contains(h handle.Handle) bool { return s.arena.Contains(h) }

func (s *ColliderSet) Len() int { return s.arena.Len() }

func (s *ColliderSet) Handles() []handle.Handle { return s.arena.Handles() }

func (s *ColliderSet) Each(fn func(handle.Handle, *Collider)) { s.arena.Each(fn) }

// Remove frees the collider slot only.
func (s *ColliderSet) Remove(h handle.Handle) (Collider, bool) { return s.arena.Remove(h) }

// Resolve turns a host key into a live collider handle. The key must carry the
// current generation and the parent body must still list the collider.
func (s *ColliderSet) Resolve(key uint64, bodies *dynamics.BodySet) (handle.Handle, bool) {
	h := handle.FromRaw(key)
	c, ok := s.arena.Get(h)
	if !ok {
		return handle.Invalid, false
	}
	parent, ok := bodies.GetMut(c.Parent)
	if !ok || !parent.HasCollider(h) {
		return handle.Invalid, false
	}
	return h, true
}

// WorldAABB returns the bounds of h at its parent's current position.
func (s *ColliderSet) WorldAABB(h handle.Handle, bodies *dynamics.BodySet) (geom.AABB, bool) {
	c, ok := s.arena.Get(h)
	if !ok {
		return geom.AABB{}, false
	}
	b, ok := bodies.GetMut(c.Parent)
	if !ok {
		return geom.AABB{}, false
	}
	return c.Shape.AABB(c.Position(b.Position)), true
}
