package collision

import (
	"slices"

	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

// ContactPair is the narrow phase state of one candidate pair.
type ContactPair struct {
	Pair         ColliderPair
	Body1, Body2 handle.Handle
	Manifold     Manifold
	Touching     bool
	Sensor       bool

	// Impulses accumulated by the solver during the last step.
	NormalImpulse  float64
	TangentImpulse geom.Vector
}

// NarrowPhase maintains one ContactPair per broad phase candidate.
type NarrowPhase struct {
	contacts map[ColliderPair]*ContactPair
	order    []ColliderPair
}

func NewNarrowPhase() *NarrowPhase {
	return &NarrowPhase{contacts: make(map[ColliderPair]*ContactPair)}
}

// RefreshContacts recomputes manifolds for candidates and drops pairs that are
// no longer candidates. It returns the touch transitions in pair order.
func (np *NarrowPhase) RefreshContacts(candidates []ColliderPair, bodies *dynamics.BodySet, colliders *ColliderSet) []ContactEvent {
	var events []ContactEvent

	live := make(map[ColliderPair]struct{}, len(candidates))
	for _, pair := range candidates {
		c1, ok1 := colliders.GetMut(pair.A)
		c2, ok2 := colliders.GetMut(pair.B)
		if !ok1 || !ok2 {
			continue
		}
		b1, ok1 := bodies.GetMut(c1.Parent)
		b2, ok2 := bodies.GetMut(c2.Parent)
		if !ok1 || !ok2 {
			continue
		}
		live[pair] = struct{}{}

		cp, exists := np.contacts[pair]
		if !exists {
			cp = &ContactPair{Pair: pair}
			np.contacts[pair] = cp
		}
		cp.Body1, cp.Body2 = c1.Parent, c2.Parent
		cp.Sensor = c1.Sensor || c2.Sensor
		cp.Manifold = computeManifold(c1.Shape, c1.Position(b1.Position), c2.Shape, c2.Position(b2.Position))
		cp.Manifold.Friction = combineFriction(c1.Friction, c2.Friction)
		cp.Manifold.Restitution = combineRestitution(c1.Restitution, c2.Restitution)

		touching := cp.Manifold.Depth >= 0
		switch {
		case touching && !cp.Touching:
			events = append(events, ContactEvent{Kind: ContactStarted, Pair: pair, Sensor: cp.Sensor})
		case !touching && cp.Touching:
			events = append(events, ContactEvent{Kind: ContactStopped, Pair: pair, Sensor: cp.Sensor})
		}
		if !touching {
			cp.NormalImpulse = 0
			cp.TangentImpulse = geom.Vector{}
		}
		cp.Touching = touching
	}

	for _, pair := range np.order {
		if _, ok := live[pair]; ok {
			continue
		}
		if cp := np.contacts[pair]; cp.Touching {
			events = append(events, ContactEvent{Kind: ContactStopped, Pair: pair, Sensor: cp.Sensor})
		}
		delete(np.contacts, pair)
	}

	np.rebuildOrder()
	sortEvents(events)
	return events
}

// RemoveContactsFor drops every pair involving h and returns stopped events
// for the pairs that were touching.
func (np *NarrowPhase) RemoveContactsFor(h handle.Handle) []ContactEvent {
	var events []ContactEvent
	for _, pair := range np.order {
		if !pair.Contains(h) {
			continue
		}
		if cp := np.contacts[pair]; cp.Touching {
			events = append(events, ContactEvent{Kind: ContactStopped, Pair: pair, Sensor: cp.Sensor})
		}
		delete(np.contacts, pair)
	}
	if len(np.contacts) != len(np.order) {
		np.rebuildOrder()
	}
	return events
}

// ContactPair returns the state of the pair (a, b) in either order.
func (np *NarrowPhase) ContactPair(a, b handle.Handle) (*ContactPair, bool) {
	cp, ok := np.contacts[NewColliderPair(a, b)]
	return cp, ok
}

// ContactPairs returns every tracked pair in sorted order.
func (np *NarrowPhase) ContactPairs() []*ContactPair {
	out := make([]*ContactPair, 0, len(np.order))
	for _, pair := range np.order {
		out = append(out, np.contacts[pair])
	}
	return out
}

// Touching returns the non-sensor pairs in contact, in sorted order.
func (np *NarrowPhase) Touching() []*ContactPair {
	var out []*ContactPair
	for _, pair := range np.order {
		if cp := np.contacts[pair]; cp.Touching && !cp.Sensor {
			out = append(out, cp)
		}
	}
	return out
}

func (np *NarrowPhase) Len() int { return len(np.contacts) }

func (np *NarrowPhase) rebuildOrder() {
	np.order = np.order[:0]
	for pair := range np.contacts {
		np.order = append(np.order, pair)
	}
	sortPairs(np.order)
}

func sortEvents(events []ContactEvent) {
	slices.SortStableFunc(events, func(x, y ContactEvent) int { return comparePairs(x.Pair, y.Pair) })
}
