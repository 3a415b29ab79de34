// Package world bundles a pipeline with the sets it steps and exposes the
// operations a host driver needs: creating entities, stepping, coordinated
// removal, update paths and deterministic snapshots.
package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
	"github.com/san-kum/rigidsim/internal/pipeline"
)

type Options struct {
	Gravity    geom.Vector
	Params     dynamics.IntegrationParameters
	CellSize   float64
	Integrator pipeline.Integrator
	Logger     *zap.Logger
	Events     collision.EventHandler
}

// DefaultOptions uses earth gravity along -Y and the default parameters.
func DefaultOptions() Options {
	return Options{
		Gravity:  geom.Unit(geom.Y, -9.81),
		Params:   dynamics.DefaultIntegrationParameters(),
		CellSize: collision.DefaultCellSize,
	}
}

// World is not safe for concurrent use. Readers may inspect it between steps.
type World struct {
	gravity geom.Vector
	params  dynamics.IntegrationParameters
	logger  *zap.Logger

	pipeline  *pipeline.PhysicsPipeline
	bp        *collision.BroadPhase
	np        *collision.NarrowPhase
	bodies    *dynamics.BodySet
	colliders *collision.ColliderSet
	joints    *dynamics.JointSet

	tick uint64
	time float64
}

func New(opts Options) (*World, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &World{
		gravity: opts.Gravity,
		params:  opts.Params,
		logger:  logger,
		pipeline: pipeline.New(
			pipeline.WithLogger(logger.Named("pipeline")),
			pipeline.WithIntegrator(opts.Integrator),
			pipeline.WithEventHandler(opts.Events),
		),
		bp:        collision.NewBroadPhase(opts.CellSize),
		np:        collision.NewNarrowPhase(),
		bodies:    dynamics.NewBodySet(),
		colliders: collision.NewColliderSet(),
		joints:    dynamics.NewJointSet(),
	}
	logger.Debug("world created",
		zap.Int("dim", geom.Dim),
		zap.String("integrator", w.pipeline.Integrator().Name()),
		zap.Float64("dt", opts.Params.Dt),
	)
	return w, nil
}

func (w *World) CreateRigidBody(desc dynamics.RigidBodyDesc) handle.Handle {
	return w.bodies.Insert(desc)
}

func (w *World) CreateCollider(desc collision.ColliderDesc, parent handle.Handle) (handle.Handle, error) {
	return w.colliders.Insert(desc, parent, w.bodies)
}

func (w *World) CreateJoint(params dynamics.JointParams, body1, body2 handle.Handle) (handle.Handle, error) {
	return w.joints.Insert(w.bodies, params, body1, body2)
}

// Step advances the world by one fixed step using its own gravity.
func (w *World) Step() error {
	return w.advance(w.pipeline.Step(w.gravity, &w.params, w.bp, w.np, w.bodies, w.colliders, w.joints))
}

// StepWithGravity steps with gravity given as raw components; the slice must
// have exactly geom.Dim entries.
func (w *World) StepWithGravity(gravity []float64) error {
	return w.advance(w.pipeline.StepComponents(gravity, &w.params, w.bp, w.np, w.bodies, w.colliders, w.joints))
}

func (w *World) advance(err error) error {
	if err != nil {
		return err
	}
	w.tick++
	w.time += w.params.Dt
	return nil
}

// RemoveCollider removes the collider named by a host key; see
// pipeline.PhysicsPipeline.RemoveCollider.
func (w *World) RemoveCollider(key uint64) (bool, error) {
	return w.pipeline.RemoveCollider(key, w.bp, w.np, w.bodies, w.colliders)
}

func (w *World) RemoveColliderHandle(h handle.Handle) (bool, error) {
	return w.pipeline.RemoveColliderHandle(h, w.bp, w.np, w.bodies, w.colliders)
}

func (w *World) RemoveRigidBody(h handle.Handle) (bool, error) {
	return w.pipeline.RemoveRigidBody(h, w.bp, w.np, w.bodies, w.colliders, w.joints)
}

func (w *World) RemoveJoint(h handle.Handle) (bool, error) {
	return w.pipeline.RemoveJoint(h, w.bodies, w.joints)
}

func (w *World) Body(h handle.Handle) (dynamics.RigidBody, bool) { return w.bodies.Get(h) }

func (w *World) Collider(h handle.Handle) (collision.Collider, bool) { return w.colliders.Get(h) }

func (w *World) Joint(h handle.Handle) (dynamics.Joint, bool) { return w.joints.Get(h) }

func (w *World) Bodies() []handle.Handle { return w.bodies.Handles() }

func (w *World) Colliders() []handle.Handle { return w.colliders.Handles() }

func (w *World) Joints() []handle.Handle { return w.joints.Handles() }

// EachBody visits bodies in slot order. fn must not mutate the world.
func (w *World) EachBody(fn func(handle.Handle, *dynamics.RigidBody)) { w.bodies.Each(fn) }

// EachCollider visits colliders in slot order. fn must not mutate the world.
func (w *World) EachCollider(fn func(handle.Handle, *collision.Collider)) { w.colliders.Each(fn) }

func (w *World) SetTranslation(h handle.Handle, p geom.Vector) bool {
	return w.bodies.SetTranslation(h, p)
}

func (w *World) SetLinvel(h handle.Handle, v geom.Vector) bool {
	return w.bodies.SetLinvel(h, v)
}

func (w *World) ApplyImpulse(h handle.Handle, impulse geom.Vector) bool {
	return w.bodies.ApplyImpulse(h, impulse)
}

func (w *World) AddForce(h handle.Handle, f geom.Vector) bool {
	return w.bodies.AddForce(h, f)
}

func (w *World) Gravity() geom.Vector { return w.gravity }

func (w *World) SetGravity(g geom.Vector) { w.gravity = g }

func (w *World) Params() dynamics.IntegrationParameters { return w.params }

// SetParams replaces the integration parameters after validating them.
func (w *World) SetParams(p dynamics.IntegrationParameters) error {
	if err := p.Validate(); err != nil {
		return err
	}
	w.params = p
	return nil
}

func (w *World) SetEventHandler(h collision.EventHandler) { w.pipeline.SetEventHandler(h) }

func (w *World) AddObserver(o pipeline.Observer) { w.pipeline.AddObserver(o) }

// Contacts returns copies of the touching, non-sensor contact pairs.
func (w *World) Contacts() []collision.ContactPair {
	touching := w.np.Touching()
	out := make([]collision.ContactPair, len(touching))
	for i, cp := range touching {
		out[i] = *cp
	}
	return out
}

func (w *World) CandidatePairs() []collision.ColliderPair { return w.bp.Candidates() }

func (w *World) BroadPhaseEntries() []handle.Handle { return w.bp.Entries() }

func (w *World) ContactPairCount() int { return w.np.Len() }

func (w *World) Counters() pipeline.Counters { return w.pipeline.Counters() }

func (w *World) IntegratorName() string { return w.pipeline.Integrator().Name() }

func (w *World) Tick() uint64 { return w.tick }

// Time is the simulated time in seconds.
func (w *World) Time() float64 { return w.time }

func (w *World) CheckInvariants() []pipeline.Violation {
	return pipeline.CheckInvariants(w.bp, w.np, w.bodies, w.colliders, w.joints)
}
