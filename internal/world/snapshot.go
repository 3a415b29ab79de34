package world

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

type BodyState struct {
	Handle    uint64    `msgpack:"h" json:"handle"`
	Status    string    `msgpack:"s" json:"status"`
	Position  []float64 `msgpack:"p" json:"position"`
	Velocity  []float64 `msgpack:"v" json:"velocity"`
	Colliders []uint64  `msgpack:"c,omitempty" json:"colliders,omitempty"`
	Joints    []uint64  `msgpack:"j,omitempty" json:"joints,omitempty"`
}

type ColliderState struct {
	Handle      uint64    `msgpack:"h" json:"handle"`
	Parent      uint64    `msgpack:"b" json:"parent"`
	Shape       string    `msgpack:"s" json:"shape"`
	Radius      float64   `msgpack:"r,omitempty" json:"radius,omitempty"`
	HalfExtents []float64 `msgpack:"e,omitempty" json:"half_extents,omitempty"`
	Offset      []float64 `msgpack:"o" json:"offset"`
	Sensor      bool      `msgpack:"x,omitempty" json:"sensor,omitempty"`
}

type JointState struct {
	Handle  uint64    `msgpack:"h" json:"handle"`
	Kind    string    `msgpack:"k" json:"kind"`
	Body1   uint64    `msgpack:"b1" json:"body1"`
	Body2   uint64    `msgpack:"b2" json:"body2"`
	Impulse []float64 `msgpack:"i" json:"impulse"`
}

type ContactState struct {
	A       uint64    `msgpack:"a" json:"a"`
	B       uint64    `msgpack:"b" json:"b"`
	Normal  []float64 `msgpack:"n" json:"normal"`
	Depth   float64   `msgpack:"d" json:"depth"`
	Impulse float64   `msgpack:"i" json:"impulse"`
}

// Snapshot is a plain, ordered copy of the world state. Two worlds that
// evolved identically produce byte-identical encoded snapshots.
type Snapshot struct {
	Dim       int             `msgpack:"dim" json:"dim"`
	Tick      uint64          `msgpack:"tick" json:"tick"`
	Time      float64         `msgpack:"time" json:"time"`
	Gravity   []float64       `msgpack:"g" json:"gravity"`
	Bodies    []BodyState     `msgpack:"bodies" json:"bodies"`
	Colliders []ColliderState `msgpack:"colliders" json:"colliders"`
	Joints    []JointState    `msgpack:"joints" json:"joints"`
	Contacts  []ContactState  `msgpack:"contacts" json:"contacts"`
}

func rawHandles(hs []handle.Handle) []uint64 {
	if len(hs) == 0 {
		return nil
	}
	out := make([]uint64, len(hs))
	for i, h := range hs {
		out[i] = h.Raw()
	}
	return out
}

func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Dim:     geom.Dim,
		Tick:    w.tick,
		Time:    w.time,
		Gravity: geom.Components(w.gravity),
	}

	w.bodies.Each(func(h handle.Handle, b *dynamics.RigidBody) {
		s.Bodies = append(s.Bodies, BodyState{
			Handle:    h.Raw(),
			Status:    b.Status.String(),
			Position:  geom.Components(b.Position),
			Velocity:  geom.Components(b.LinearVelocity),
			Colliders: rawHandles(b.Colliders()),
			Joints:    rawHandles(b.Joints()),
		})
	})

	w.colliders.Each(func(h handle.Handle, c *collision.Collider) {
		cs := ColliderState{
			Handle: h.Raw(),
			Parent: c.Parent.Raw(),
			Shape:  c.Shape.Kind.String(),
			Offset: geom.Components(c.Offset),
			Sensor: c.Sensor,
		}
		if c.Shape.Kind == collision.ShapeBall {
			cs.Radius = c.Shape.Radius
		} else {
			cs.HalfExtents = geom.Components(c.Shape.HalfExtents)
		}
		s.Colliders = append(s.Colliders, cs)
	})

	w.joints.Each(func(h handle.Handle, j *dynamics.Joint) {
		s.Joints = append(s.Joints, JointState{
			Handle:  h.Raw(),
			Kind:    j.Kind.String(),
			Body1:   j.Body1.Raw(),
			Body2:   j.Body2.Raw(),
			Impulse: geom.Components(j.Impulse),
		})
	})

	for _, cp := range w.np.Touching() {
		s.Contacts = append(s.Contacts, ContactState{
			A:       cp.Pair.A.Raw(),
			B:       cp.Pair.B.Raw(),
			Normal:  geom.Components(cp.Manifold.Normal),
			Depth:   cp.Manifold.Depth,
			Impulse: cp.NormalImpulse,
		})
	}
	return s
}

// EncodeSnapshot returns the msgpack encoding of Snapshot.
func (w *World) EncodeSnapshot() ([]byte, error) {
	s := w.Snapshot()
	data, err := msgpack.Marshal(&s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Dim != geom.Dim {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w: snapshot has %d, build has %d", geom.ErrDimensionMismatch, s.Dim, geom.Dim)
	}
	return s, nil
}
