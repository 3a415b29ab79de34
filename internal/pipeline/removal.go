package pipeline

import (
	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/handle"
)

// RemoveCollider removes the collider named by a host key, as produced by
// handle.Handle.Raw. A key that does not resolve, or whose collider is no
// longer listed by its parent body, is a no-op returning false.
func (p *PhysicsPipeline) RemoveCollider(
	key uint64,
	bp *collision.BroadPhase,
	np *collision.NarrowPhase,
	bodies *dynamics.BodySet,
	colliders *collision.ColliderSet,
) (bool, error) {
	if bp == nil || np == nil || bodies == nil || colliders == nil {
		return false, nil
	}
	if p.locked {
		return false, ErrPipelineLocked
	}
	h, ok := colliders.Resolve(key, bodies)
	if !ok {
		p.logger.Debug("collider key does not resolve", zap.Uint64("key", key))
		return false, nil
	}
	return p.RemoveColliderHandle(h, bp, np, bodies, colliders)
}

// RemoveColliderHandle removes a collider by handle. Stale handles are a
// no-op returning false.
func (p *PhysicsPipeline) RemoveColliderHandle(
	h handle.Handle,
	bp *collision.BroadPhase,
	np *collision.NarrowPhase,
	bodies *dynamics.BodySet,
	colliders *collision.ColliderSet,
) (bool, error) {
	if bp == nil || np == nil || bodies == nil || colliders == nil {
		return false, nil
	}
	if p.locked {
		return false, ErrPipelineLocked
	}

	p.locked = true
	defer func() { p.locked = false }()

	removed, events := p.purgeCollider(h, bp, np, bodies, colliders)

	p.dispatch(events)
	return removed, nil
}

// RemoveRigidBody removes a body together with every collider it owns and
// every joint attached to it.
func (p *PhysicsPipeline) RemoveRigidBody(
	h handle.Handle,
	bp *collision.BroadPhase,
	np *collision.NarrowPhase,
	bodies *dynamics.BodySet,
	colliders *collision.ColliderSet,
	joints *dynamics.JointSet,
) (bool, error) {
	if bp == nil || np == nil || bodies == nil || colliders == nil || joints == nil {
		return false, nil
	}
	if p.locked {
		return false, ErrPipelineLocked
	}
	body, ok := bodies.Get(h)
	if !ok {
		return false, nil
	}

	p.locked = true
	defer func() { p.locked = false }()

	var events []collision.ContactEvent
	for _, c := range body.Colliders() {
		_, evs := p.purgeCollider(c, bp, np, bodies, colliders)
		events = append(events, evs...)
	}
	for _, j := range body.Joints() {
		p.detachJoint(j, bodies, joints)
	}
	bodies.Remove(h)
	p.counters.BodiesRemoved++
	p.logger.Debug("body removed",
		zap.Stringer("body", h),
		zap.Int("colliders", len(body.Colliders())),
		zap.Int("joints", len(body.Joints())),
	)

	p.dispatch(events)
	return true, nil
}

// RemoveJoint detaches a joint from both bodies and frees its slot.
func (p *PhysicsPipeline) RemoveJoint(h handle.Handle, bodies *dynamics.BodySet, joints *dynamics.JointSet) (bool, error) {
	if bodies == nil || joints == nil {
		return false, nil
	}
	if p.locked {
		return false, ErrPipelineLocked
	}
	return p.detachJoint(h, bodies, joints), nil
}

func (p *PhysicsPipeline) purgeCollider(
	h handle.Handle,
	bp *collision.BroadPhase,
	np *collision.NarrowPhase,
	bodies *dynamics.BodySet,
	colliders *collision.ColliderSet,
) (bool, []collision.ContactEvent) {
	c, ok := colliders.Get(h)
	if !ok {
		return false, nil
	}

	bp.RemoveEntriesFor(h)
	events := np.RemoveContactsFor(h)
	bodies.DetachCollider(c.Parent, h)
	colliders.Remove(h)

	p.counters.CollidersRemoved++
	p.logger.Debug("collider removed",
		zap.Stringer("collider", h),
		zap.Stringer("body", c.Parent),
		zap.Int("contacts", len(events)),
	)
	return true, events
}

func (p *PhysicsPipeline) detachJoint(h handle.Handle, bodies *dynamics.BodySet, joints *dynamics.JointSet) bool {
	j, ok := joints.Remove(h)
	if !ok {
		return false
	}
	bodies.DetachJoint(j.Body1, h)
	bodies.DetachJoint(j.Body2, h)
	p.counters.JointsRemoved++
	p.logger.Debug("joint removed", zap.Stringer("joint", h), zap.Stringer("kind", j.Kind))
	return true
}
