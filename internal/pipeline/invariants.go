package pipeline

import (
	"fmt"
	"slices"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/handle"
)

// Violation is a cross-structure reference to an entity that does not
// resolve, or a link that is not mirrored on the other side.
type Violation struct {
	Structure string
	Handle    handle.Handle
	Detail    string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s %v: %s", v.Structure, v.Handle, v.Detail)
}

// CheckInvariants walks every derived structure and entity link and reports
// anything dangling. A correct pipeline never produces violations.
func CheckInvariants(
	bp *collision.BroadPhase,
	np *collision.NarrowPhase,
	bodies *dynamics.BodySet,
	colliders *collision.ColliderSet,
	joints *dynamics.JointSet,
) []Violation {
	var out []Violation
	add := func(structure string, h handle.Handle, format string, args ...any) {
		out = append(out, Violation{Structure: structure, Handle: h, Detail: fmt.Sprintf(format, args...)})
	}

	for _, h := range bp.Entries() {
		if !colliders.Contains(h) {
			add("broad phase", h, "proxy for missing collider")
		}
	}
	for _, pair := range bp.Candidates() {
		if !colliders.Contains(pair.A) || !colliders.Contains(pair.B) {
			add("broad phase", pair.A, "candidate pair with %v references a missing collider", pair.B)
		}
	}

	for _, cp := range np.ContactPairs() {
		if !colliders.Contains(cp.Pair.A) || !colliders.Contains(cp.Pair.B) {
			add("narrow phase", cp.Pair.A, "contact with %v references a missing collider", cp.Pair.B)
		}
		if !bodies.Contains(cp.Body1) || !bodies.Contains(cp.Body2) {
			add("narrow phase", cp.Pair.A, "contact with %v references a missing body", cp.Pair.B)
		}
	}

	colliders.Each(func(h handle.Handle, c *collision.Collider) {
		parent, ok := bodies.GetMut(c.Parent)
		if !ok {
			add("colliders", h, "parent %v does not resolve", c.Parent)
			return
		}
		if !parent.HasCollider(h) {
			add("colliders", h, "parent %v does not list it", c.Parent)
		}
	})

	bodies.Each(func(h handle.Handle, b *dynamics.RigidBody) {
		for _, ch := range b.Colliders() {
			c, ok := colliders.Get(ch)
			if !ok {
				add("bodies", h, "owns missing collider %v", ch)
				continue
			}
			if c.Parent != h {
				add("bodies", h, "owns collider %v whose parent is %v", ch, c.Parent)
			}
		}
		for _, jh := range b.Joints() {
			j, ok := joints.Get(jh)
			if !ok {
				add("bodies", h, "references missing joint %v", jh)
				continue
			}
			if j.Body1 != h && j.Body2 != h {
				add("bodies", h, "references joint %v that does not attach it", jh)
			}
		}
	})

	joints.Each(func(h handle.Handle, j *dynamics.Joint) {
		for _, bh := range []handle.Handle{j.Body1, j.Body2} {
			b, ok := bodies.GetMut(bh)
			if !ok {
				add("joints", h, "attached to missing body %v", bh)
				continue
			}
			if !slices.Contains(b.Joints(), h) {
				add("joints", h, "body %v does not list it", bh)
			}
		}
	})

	return out
}
