package integrators

import (
	"math"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

type contactConstraint struct {
	pair           *collision.ContactPair
	b1, b2         *dynamics.RigidBody
	im1, im2       float64
	mass           float64
	normal         geom.Vector
	depth          float64
	start1, start2 geom.Vector
	target         float64
	normalImpulse  float64
	tangentImpulse geom.Vector
}

// currentDepth estimates penetration from how far the bodies moved along the
// normal since the manifold was computed.
func (c *contactConstraint) currentDepth() float64 {
	d1 := c.b1.Position.Sub(c.start1)
	d2 := c.b2.Position.Sub(c.start2)
	return c.depth - d2.Sub(d1).Dot(c.normal)
}

type jointConstraint struct {
	joint    *dynamics.Joint
	b1, b2   *dynamics.RigidBody
	im1, im2 float64
	mass     float64
	impulse  geom.Vector
	rope     float64
}

func (j *jointConstraint) separation() geom.Vector {
	p1 := j.b1.Position.Add(j.joint.Anchor1)
	p2 := j.b2.Position.Add(j.joint.Anchor2)
	return p2.Sub(p1)
}

func (j *jointConstraint) apply(impulse geom.Vector) {
	j.b1.LinearVelocity = j.b1.LinearVelocity.Sub(impulse.Mul(j.im1))
	j.b2.LinearVelocity = j.b2.LinearVelocity.Add(impulse.Mul(j.im2))
}

type solver struct {
	contacts []contactConstraint
	joints   []jointConstraint
}

// build collects the constraints that can move at least one body.
func (s *solver) build(bodies *dynamics.BodySet, joints *dynamics.JointSet, np *collision.NarrowPhase) {
	s.contacts = s.contacts[:0]
	s.joints = s.joints[:0]

	for _, cp := range np.Touching() {
		b1, ok1 := bodies.GetMut(cp.Body1)
		b2, ok2 := bodies.GetMut(cp.Body2)
		if !ok1 || !ok2 {
			continue
		}
		im1, im2 := b1.InvMass(), b2.InvMass()
		if im1+im2 == 0 {
			continue
		}
		s.contacts = append(s.contacts, contactConstraint{
			pair:   cp,
			b1:     b1,
			b2:     b2,
			im1:    im1,
			im2:    im2,
			mass:   1 / (im1 + im2),
			normal: cp.Manifold.Normal,
			depth:  cp.Manifold.Depth,
			start1: b1.Position,
			start2: b2.Position,
		})
	}

	joints.Each(func(_ handle.Handle, j *dynamics.Joint) {
		b1, ok1 := bodies.GetMut(j.Body1)
		b2, ok2 := bodies.GetMut(j.Body2)
		if !ok1 || !ok2 {
			return
		}
		im1, im2 := b1.InvMass(), b2.InvMass()
		if im1+im2 == 0 {
			return
		}
		s.joints = append(s.joints, jointConstraint{joint: j, b1: b1, b2: b2, im1: im1, im2: im2, mass: 1 / (im1 + im2)})
	})
}

// prepareRestitution records the bounce velocity each contact should reach.
func (s *solver) prepareRestitution(threshold float64) {
	for i := range s.contacts {
		c := &s.contacts[i]
		vn := c.b2.LinearVelocity.Sub(c.b1.LinearVelocity).Dot(c.normal)
		c.target = 0
		if -vn > threshold {
			c.target = -c.pair.Manifold.Restitution * vn
		}
	}
}

func applyForces(bodies *dynamics.BodySet, gravity geom.Vector, dt float64) {
	bodies.Each(func(_ handle.Handle, b *dynamics.RigidBody) {
		if !b.IsDynamic() {
			return
		}
		acc := gravity.Mul(b.GravityScale).Add(b.Force.Mul(b.InvMass()))
		b.LinearVelocity = b.LinearVelocity.Add(acc.Mul(dt))
		if b.LinearDamping > 0 {
			b.LinearVelocity = b.LinearVelocity.Mul(1 / (1 + dt*b.LinearDamping))
		}
	})
}

// applySprings integrates spring joints implicitly so that stiff springs stay
// stable at the step size.
func (s *solver) applySprings(dt float64) {
	for i := range s.joints {
		j := &s.joints[i]
		if j.joint.Kind != dynamics.JointSpring {
			continue
		}
		d := j.separation()
		length := d.Len()
		if length == 0 {
			continue
		}
		n := d.Mul(1 / length)
		u := j.b2.LinearVelocity.Sub(j.b1.LinearVelocity).Dot(n)
		k, c := j.joint.Stiffness, j.joint.Damping
		lambda := -dt * (k*(length-j.joint.RestLength) + (k*dt+c)*u) / (1 + dt*(k*dt+c)/j.mass)
		impulse := n.Mul(lambda)
		j.impulse = j.impulse.Add(impulse)
		j.apply(impulse)
	}
}

func (s *solver) solveVelocity(params *dynamics.IntegrationParameters, dt float64, iterations int) {
	bias := params.JointERP / dt
	for it := 0; it < iterations; it++ {
		for i := range s.joints {
			s.solveJoint(&s.joints[i], bias)
		}
		for i := range s.contacts {
			s.solveContact(&s.contacts[i])
		}
	}
}

func (s *solver) solveJoint(j *jointConstraint, bias float64) {
	switch j.joint.Kind {
	case dynamics.JointBall, dynamics.JointRevolute:
		rel := j.b2.LinearVelocity.Sub(j.b1.LinearVelocity)
		impulse := rel.Add(j.separation().Mul(bias)).Mul(-j.mass)
		j.impulse = j.impulse.Add(impulse)
		j.apply(impulse)

	case dynamics.JointRope:
		d := j.separation()
		length := d.Len()
		if length <= j.joint.MaxLength || length == 0 {
			return
		}
		n := d.Mul(1 / length)
		vn := j.b2.LinearVelocity.Sub(j.b1.LinearVelocity).Dot(n)
		lambda := -j.mass * (vn + bias*(length-j.joint.MaxLength))
		acc := math.Min(j.rope+lambda, 0)
		lambda, j.rope = acc-j.rope, acc
		impulse := n.Mul(lambda)
		j.impulse = j.impulse.Add(impulse)
		j.apply(impulse)
	}
}

func (s *solver) solveContact(c *contactConstraint) {
	rel := c.b2.LinearVelocity.Sub(c.b1.LinearVelocity)
	vn := rel.Dot(c.normal)

	lambda := -c.mass * (vn - c.target)
	acc := math.Max(c.normalImpulse+lambda, 0)
	lambda, c.normalImpulse = acc-c.normalImpulse, acc
	c.b1.LinearVelocity = c.b1.LinearVelocity.Sub(c.normal.Mul(lambda * c.im1))
	c.b2.LinearVelocity = c.b2.LinearVelocity.Add(c.normal.Mul(lambda * c.im2))

	rel = c.b2.LinearVelocity.Sub(c.b1.LinearVelocity)
	tangent := rel.Sub(c.normal.Mul(rel.Dot(c.normal)))
	next := c.tangentImpulse.Sub(tangent.Mul(c.mass))
	limit := c.pair.Manifold.Friction * c.normalImpulse
	if l := next.Len(); l > limit {
		if l > 0 {
			next = next.Mul(limit / l)
		}
	}
	applied := next.Sub(c.tangentImpulse)
	c.tangentImpulse = next
	c.b1.LinearVelocity = c.b1.LinearVelocity.Sub(applied.Mul(c.im1))
	c.b2.LinearVelocity = c.b2.LinearVelocity.Add(applied.Mul(c.im2))
}

func integratePositions(bodies *dynamics.BodySet, dt float64) {
	bodies.Each(func(_ handle.Handle, b *dynamics.RigidBody) {
		if b.Status == dynamics.Fixed {
			return
		}
		b.Position = b.Position.Add(b.LinearVelocity.Mul(dt))
	})
}

// correctPositions projects penetrating bodies apart, leaving the allowed
// linear error in place.
func (s *solver) correctPositions(params *dynamics.IntegrationParameters, iterations int) {
	for it := 0; it < iterations; it++ {
		for i := range s.contacts {
			c := &s.contacts[i]
			depth := c.currentDepth() - params.AllowedLinearError
			if depth <= 0 {
				continue
			}
			correction := c.normal.Mul(depth * params.ERP * c.mass)
			c.b1.Position = c.b1.Position.Sub(correction.Mul(c.im1))
			c.b2.Position = c.b2.Position.Add(correction.Mul(c.im2))
		}
	}
}

// rebase refreshes the depth estimate so the next substep starts from the
// current positions.
func (s *solver) rebase() {
	for i := range s.contacts {
		c := &s.contacts[i]
		c.depth = c.currentDepth()
		c.start1, c.start2 = c.b1.Position, c.b2.Position
	}
}

// finish publishes the accumulated impulses.
func (s *solver) finish() {
	for i := range s.contacts {
		c := &s.contacts[i]
		c.pair.NormalImpulse = c.normalImpulse
		c.pair.TangentImpulse = c.tangentImpulse
	}
	for i := range s.joints {
		s.joints[i].joint.Impulse = s.joints[i].impulse
	}
}

func clearForces(bodies *dynamics.BodySet) {
	bodies.Each(func(_ handle.Handle, b *dynamics.RigidBody) {
		b.Force = geom.Vector{}
	})
}
