package dynamics

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

// JointKind identifies the constraint a joint enforces.
type JointKind int

const (
	// JointBall pins anchor points of both bodies together.
	JointBall JointKind = iota
	// JointRevolute pins anchors and carries a hinge axis per body.
	JointRevolute
	// JointSpring pulls anchors towards a rest length.
	JointSpring
	// JointRope keeps anchors within a maximum distance.
	JointRope
)

func (k JointKind) String() string {
	switch k {
	case JointBall:
		return "ball"
	case JointRevolute:
		return "revolute"
	case JointSpring:
		return "spring"
	case JointRope:
		return "rope"
	default:
		return fmt.Sprintf("JointKind(%d)", int(k))
	}
}

// JointParams describes the constraint between two bodies. Anchors are in the
// local frame of their body.
type JointParams struct {
	Kind             JointKind
	Anchor1, Anchor2 geom.Vector
	Axis1, Axis2     geom.Vector
	RestLength       float64
	Stiffness        float64
	Damping          float64
	MaxLength        float64
}

func BallJoint(anchor1, anchor2 geom.Vector) JointParams {
	return JointParams{Kind: JointBall, Anchor1: anchor1, Anchor2: anchor2}
}

// RevoluteJoint constrains the anchors like a ball joint. Bodies carry no
// orientation, so the axes are kept for reporting only.
func RevoluteJoint(anchor1, axis1, anchor2, axis2 geom.Vector) JointParams {
	return JointParams{Kind: JointRevolute, Anchor1: anchor1, Anchor2: anchor2, Axis1: axis1, Axis2: axis2}
}

func SpringJoint(restLength, stiffness, damping float64, anchor1, anchor2 geom.Vector) JointParams {
	return JointParams{
		Kind:       JointSpring,
		Anchor1:    anchor1,
		Anchor2:    anchor2,
		RestLength: restLength,
		Stiffness:  stiffness,
		Damping:    damping,
	}
}

func RopeJoint(maxLength float64, anchor1, anchor2 geom.Vector) JointParams {
	return JointParams{Kind: JointRope, Anchor1: anchor1, Anchor2: anchor2, MaxLength: maxLength}
}

// Joint links two bodies.
type Joint struct {
	JointParams
	Body1, Body2 handle.Handle

	// Impulse is the accumulated constraint impulse of the last step.
	Impulse geom.Vector
}

// JointSet stores joints behind generational handles.
type JointSet struct {
	arena *handle.Arena[Joint]
}

func NewJointSet() *JointSet {
	return &JointSet{arena: handle.NewArena[Joint](16)}
}

// Insert creates a joint between b1 and b2 and links it to both bodies.
func (s *JointSet) Insert(bodies *BodySet, params JointParams, b1, b2 handle.Handle) (handle.Handle, error) {
	if !bodies.Contains(b1) || !bodies.Contains(b2) {
		return handle.Invalid, fmt.Errorf("%w: joint bodies %v, %v", ErrInvalidBody, b1, b2)
	}
	if b1 == b2 {
		return handle.Invalid, fmt.Errorf("%w: joint attaches body %v to itself", ErrInvalidBody, b1)
	}
	h := s.arena.Insert(Joint{JointParams: params, Body1: b1, Body2: b2})
	bodies.attachJoint(b1, h)
	bodies.attachJoint(b2, h)
	return h, nil
}

// Get returns a copy of the joint, or false if h is stale.
func (s *JointSet) Get(h handle.Handle) (Joint, bool) {
	j, ok := s.arena.Get(h)
	if !ok {
		return Joint{}, false
	}
	return *j, true
}

func (s *JointSet) GetMut(h handle.Handle) (*Joint, bool) { return s.arena.Get(h) }

func (s *JointSet) Contains(h handle.Handle) bool { return s.arena.Contains(h) }

func (s *JointSet) Len() int { return s.arena.Len() }

func (s *JointSet) Handles() []handle.Handle { return s.arena.Handles() }

func (s *JointSet) Each(fn func(handle.Handle, *Joint)) { s.arena.Each(fn) }

// Remove frees the joint slot only; body links are the caller's concern.
func (s *JointSet) Remove(h handle.Handle) (Joint, bool) { return s.arena.Remove(h) }
