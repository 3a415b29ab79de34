package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/pipeline"
)

var _ = Describe("PhysicsPipeline", func() {
	var (
		params    dynamics.IntegrationParameters
		bp        *collision.BroadPhase
		np        *collision.NarrowPhase
		bodies    *dynamics.BodySet
		colliders *collision.ColliderSet
		joints    *dynamics.JointSet
		events    *collision.EventCollector
		p         *pipeline.PhysicsPipeline
	)

	gravity := geom.Unit(geom.Y, -9.8)

	step := func() error {
		return p.Step(gravity, &params, bp, np, bodies, colliders, joints)
	}

	addBall := func(status dynamics.BodyStatus, pos geom.Vector) (handle.Handle, handle.Handle) {
		b := bodies.Insert(dynamics.RigidBodyDesc{Status: status, Translation: pos})
		c, err := colliders.Insert(collision.NewColliderDesc(collision.Ball(0.5)), b, bodies)
		Expect(err).NotTo(HaveOccurred())
		return b, c
	}

	invariants := func() []pipeline.Violation {
		return pipeline.CheckInvariants(bp, np, bodies, colliders, joints)
	}

	BeforeEach(func() {
		params = dynamics.DefaultIntegrationParameters()
		bp = collision.NewBroadPhase(0)
		np = collision.NewNarrowPhase()
		bodies = dynamics.NewBodySet()
		colliders = collision.NewColliderSet()
		joints = dynamics.NewJointSet()
		events = &collision.EventCollector{}
		p = pipeline.New(pipeline.WithEventHandler(events))
	})

	Describe("stepping", func() {
		It("drops a body onto a fixed floor and keeps it there", func() {
			half := geom.Splat(10)
			half[geom.Y] = 0.5
			floor := bodies.Insert(dynamics.RigidBodyDesc{Status: dynamics.Fixed, Translation: geom.Unit(geom.Y, -0.5)})
			_, err := colliders.Insert(collision.NewColliderDesc(collision.Cuboid(half)), floor, bodies)
			Expect(err).NotTo(HaveOccurred())
			ball, _ := addBall(dynamics.Dynamic, geom.Unit(geom.Y, 2))

			for i := 0; i < 180; i++ {
				Expect(step()).To(Succeed())
			}

			b, ok := bodies.Get(ball)
			Expect(ok).To(BeTrue())
			Expect(b.Position[geom.Y]).To(BeNumerically("~", 0.5, 0.02))
			Expect(np.Touching()).To(HaveLen(1))
			Expect(invariants()).To(BeEmpty())
		})

		It("behaves the same with the small-steps solver", func() {
			p = pipeline.New(pipeline.WithIntegrator(integrators.NewSmallSteps()))
			ball, _ := addBall(dynamics.Dynamic, geom.Vector{})

			Expect(step()).To(Succeed())

			b, _ := bodies.Get(ball)
			Expect(b.LinearVelocity[geom.Y]).To(BeNumerically("~", -9.8/60, 1e-9))
			Expect(p.Integrator().Name()).To(Equal("small-steps"))
		})

		It("never creates or destroys entities", func() {
			addBall(dynamics.Dynamic, geom.Vector{})
			addBall(dynamics.Dynamic, geom.Unit(geom.X, 0.9))

			for i := 0; i < 10; i++ {
				Expect(step()).To(Succeed())
			}
			Expect(bodies.Len()).To(Equal(2))
			Expect(colliders.Len()).To(Equal(2))
		})
	})

	Describe("removing colliders", func() {
		var (
			ball, other handle.Handle
		)

		BeforeEach(func() {
			_, ball = addBall(dynamics.Dynamic, geom.Vector{})
			_, other = addBall(dynamics.Fixed, geom.Unit(geom.X, 0.9))
			Expect(step()).To(Succeed())
			Expect(events.Drain()).To(HaveLen(1))
		})

		It("purges every derived structure", func() {
			removed, err := p.RemoveCollider(ball.Raw(), bp, np, bodies, colliders)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeTrue())

			Expect(bp.Entries()).NotTo(ContainElement(ball))
			Expect(np.Len()).To(BeZero())
			Expect(invariants()).To(BeEmpty())
			Expect(events.Drain()).To(ConsistOf(collision.ContactEvent{
				Kind: collision.ContactStopped,
				Pair: collision.NewColliderPair(ball, other),
			}))
		})

		It("is idempotent", func() {
			_, err := p.RemoveCollider(ball.Raw(), bp, np, bodies, colliders)
			Expect(err).NotTo(HaveOccurred())
			events.Drain()

			removed, err := p.RemoveCollider(ball.Raw(), bp, np, bodies, colliders)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeFalse())
			Expect(events.Len()).To(BeZero())
			Expect(colliders.Handles()).To(ConsistOf(other))
		})

		It("rejects removal from inside an event handler", func() {
			var inner error
			p.SetEventHandler(collision.EventHandlerFunc(func(collision.ContactEvent) {
				_, inner = p.RemoveCollider(other.Raw(), bp, np, bodies, colliders)
			}))

			_, err := p.RemoveCollider(ball.Raw(), bp, np, bodies, colliders)
			Expect(err).NotTo(HaveOccurred())
			Expect(inner).To(MatchError(pipeline.ErrPipelineLocked))
			Expect(colliders.Contains(other)).To(BeTrue())
		})
	})

	Describe("removing bodies", func() {
		It("cascades to colliders and joints", func() {
			b, _ := addBall(dynamics.Dynamic, geom.Vector{})
			_, err := colliders.Insert(collision.NewColliderDesc(collision.Ball(0.2)), b, bodies)
			Expect(err).NotTo(HaveOccurred())
			left, _ := addBall(dynamics.Dynamic, geom.Unit(geom.X, -2))
			right, _ := addBall(dynamics.Dynamic, geom.Unit(geom.X, 2))
			_, err = joints.Insert(bodies, dynamics.BallJoint(geom.Vector{}, geom.Unit(geom.X, -2)), b, right)
			Expect(err).NotTo(HaveOccurred())
			_, err = joints.Insert(bodies, dynamics.SpringJoint(2, 100, 1, geom.Vector{}, geom.Vector{}), left, b)
			Expect(err).NotTo(HaveOccurred())
			Expect(step()).To(Succeed())

			removed, err := p.RemoveRigidBody(b, bp, np, bodies, colliders, joints)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeTrue())

			Expect(bodies.Contains(b)).To(BeFalse())
			Expect(colliders.Len()).To(Equal(2))
			Expect(joints.Len()).To(BeZero())
			for _, h := range []handle.Handle{left, right} {
				body, _ := bodies.Get(h)
				Expect(body.Joints()).To(BeEmpty())
			}
			Expect(invariants()).To(BeEmpty())
		})
	})
})
