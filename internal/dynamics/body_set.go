package dynamics

import (
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

// BodySet stores rigid bodies behind generational handles.
type BodySet struct {
	arena *handle.Arena[RigidBody]
}

func NewBodySet() *BodySet {
	return &BodySet{arena: handle.NewArena[RigidBody](64)}
}

func (s *BodySet) Insert(desc RigidBodyDesc) handle.Handle {
	return s.arena.Insert(newRigidBody(desc))
}

// Get returns a copy of the body named by h.
func (s *BodySet) Get(h handle.Handle) (RigidBody, bool) {
	b, ok := s.arena.Get(h)
	if !ok {
		return RigidBody{}, false
	}
	return b.clone(), true
}

// GetMut returns the stored body. The pointer is invalidated by Insert.
func (s *BodySet) GetMut(h handle.Handle) (*RigidBody, bool) {
	return s.arena.Get(h)
}

func (s *BodySet) Contains(h handle.Handle) bool { return s.arena.Contains(h) }

func (s *BodySet) Len() int { return s.arena.Len() }

func (s *BodySet) Handles() []handle.Handle { return s.arena.Handles() }

// Each visits bodies in ascending slot order.
func (s *BodySet) Each(fn func(handle.Handle, *RigidBody)) { s.arena.Each(fn) }

// Remove frees the body slot only. Attached colliders and joints are left
// dangling; callers outside the pipeline should use its removal operations.
func (s *BodySet) Remove(h handle.Handle) (RigidBody, bool) {
	return s.arena.Remove(h)
}

func (s *BodySet) SetTranslation(h handle.Handle, p geom.Vector) bool {
	b, ok := s.arena.Get(h)
	if ok {
		b.Position = p
	}
	return ok
}

func (s *BodySet) SetLinvel(h handle.Handle, v geom.Vector) bool {
	b, ok := s.arena.Get(h)
	if ok {
		b.LinearVelocity = v
	}
	return ok
}

// ApplyImpulse changes the velocity of a dynamic body by impulse/mass.
func (s *BodySet) ApplyImpulse(h handle.Handle, impulse geom.Vector) bool {
	b, ok := s.arena.Get(h)
	if ok && b.IsDynamic() {
		b.LinearVelocity = b.LinearVelocity.Add(impulse.Mul(b.invMass))
	}
	return ok
}

// AddForce accumulates a force applied during the next step.
func (s *BodySet) AddForce(h handle.Handle, f geom.Vector) bool {
	b, ok := s.arena.Get(h)
	if ok {
		b.Force = b.Force.Add(f)
	}
	return ok
}

// AttachCollider records that collider c belongs to body h.
func (s *BodySet) AttachCollider(h, c handle.Handle) bool {
	b, ok := s.arena.Get(h)
	if !ok {
		return false
	}
	if !b.HasCollider(c) {
		b.colliders = append(b.colliders, c)
	}
	return true
}

// DetachCollider reports whether c was attached to h.
func (s *BodySet) DetachCollider(h, c handle.Handle) bool {
	b, ok := s.arena.Get(h)
	if !ok {
		return false
	}
	var found bool
	b.colliders, found = removeHandle(b.colliders, c)
	return found
}

func (s *BodySet) attachJoint(h, j handle.Handle) bool {
	b, ok := s.arena.Get(h)
	if ok {
		b.joints = append(b.joints, j)
	}
	return ok
}

// DetachJoint reports whether j was linked to h.
func (s *BodySet) DetachJoint(h, j handle.Handle) bool {
	b, ok := s.arena.Get(h)
	if !ok {
		return false
	}
	var found bool
	b.joints, found = removeHandle(b.joints, j)
	return found
}
