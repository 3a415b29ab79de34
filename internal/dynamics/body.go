// Package dynamics owns the rigid bodies and joints stepped by the pipeline.
//
// [BodySet] and [JointSet] are generational arenas. They only store entities
// and the cross-links between them; cascading removal is coordinated by the
// pipeline package so that broad phase and narrow phase state is purged in the
// right order.
package dynamics

import (
	"slices"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

// BodyStatus selects how the integrator treats a body.
type BodyStatus int

const (
	// Dynamic bodies respond to gravity, forces, contacts and joints.
	Dynamic BodyStatus = iota
	// Fixed bodies never move.
	Fixed
	// Kinematic bodies move with their velocity and ignore forces.
	Kinematic
)

func (s BodyStatus) String() string {
	switch s {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	case Kinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// ParseBodyStatus is the inverse of [BodyStatus.String].
func ParseBodyStatus(s string) (BodyStatus, bool) {
	switch s {
	case "dynamic", "":
		return Dynamic, true
	case "fixed", "static":
		return Fixed, true
	case "kinematic":
		return Kinematic, true
	}
	return Dynamic, false
}

// RigidBodyDesc describes a body to insert.
type RigidBodyDesc struct {
	Status         BodyStatus
	Translation    geom.Vector
	LinearVelocity geom.Vector
	// Mass of a dynamic body. Zero means unit mass.
	Mass          float64
	LinearDamping float64
	// GravityScale multiplies gravity for this body. Nil means 1.
	GravityScale *float64
	UserData     uint64
}

// RigidBody is a translational rigid body.
type RigidBody struct {
	Status         BodyStatus
	Position       geom.Vector
	LinearVelocity geom.Vector
	Force          geom.Vector
	LinearDamping  float64
	GravityScale   float64
	UserData       uint64

	mass      float64
	invMass   float64
	colliders []handle.Handle
	joints    []handle.Handle
}

func newRigidBody(d RigidBodyDesc) RigidBody {
	b := RigidBody{
		Status:         d.Status,
		Position:       d.Translation,
		LinearVelocity: d.LinearVelocity,
		LinearDamping:  d.LinearDamping,
		GravityScale:   1,
		UserData:       d.UserData,
	}
	if d.GravityScale != nil {
		b.GravityScale = *d.GravityScale
	}
	b.SetMass(d.Mass)
	return b
}

func (b *RigidBody) IsDynamic() bool { return b.Status == Dynamic }

func (b *RigidBody) Mass() float64 { return b.mass }

// InvMass is zero for any body that is not dynamic.
func (b *RigidBody) InvMass() float64 {
	if b.Status != Dynamic {
		return 0
	}
	return b.invMass
}

// SetMass sets the body mass. Non-positive values fall back to 1.
func (b *RigidBody) SetMass(m float64) {
	if m <= 0 {
		m = 1
	}
	b.mass = m
	b.invMass = 1 / m
}

// Colliders returns the handles of colliders attached to the body.
func (b *RigidBody) Colliders() []handle.Handle { return slices.Clone(b.colliders) }

// Joints returns the handles of joints that reference the body.
func (b *RigidBody) Joints() []handle.Handle { return slices.Clone(b.joints) }

func (b *RigidBody) HasCollider(h handle.Handle) bool { return slices.Contains(b.colliders, h) }

func (b *RigidBody) clone() RigidBody {
	c := *b
	c.colliders = slices.Clone(b.colliders)
	c.joints = slices.Clone(b.joints)
	return c
}

func removeHandle(list []handle.Handle, h handle.Handle) ([]handle.Handle, bool) {
	i := slices.Index(list, h)
	if i < 0 {
		return list, false
	}
	return slices.Delete(list, i, i+1), true
}
