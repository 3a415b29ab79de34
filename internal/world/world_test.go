package world

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

func newWorld(t *testing.T) *World {
	t.Helper()
	opts := DefaultOptions()
	opts.Gravity = geom.Unit(geom.Y, -9.8)
	w, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func addFloor(t *testing.T, w *World) handle.Handle {
	t.Helper()
	half := geom.Splat(10)
	half[geom.Y] = 0.5
	b := w.CreateRigidBody(dynamics.RigidBodyDesc{Status: dynamics.Fixed, Translation: geom.Unit(geom.Y, -0.5)})
	if _, err := w.CreateCollider(collision.NewColliderDesc(collision.Cuboid(half)), b); err != nil {
		t.Fatal(err)
	}
	return b
}

func addBox(t *testing.T, w *World, pos geom.Vector) (handle.Handle, handle.Handle) {
	t.Helper()
	b := w.CreateRigidBody(dynamics.RigidBodyDesc{Translation: pos, Mass: 1})
	c, err := w.CreateCollider(collision.NewColliderDesc(collision.Cuboid(geom.Splat(0.5))), b)
	if err != nil {
		t.Fatal(err)
	}
	return b, c
}

func TestNewRejectsInvalidParams(t *testing.T) {
	opts := DefaultOptions()
	opts.Params.MaxVelocityIterations = 0
	if _, err := New(opts); !errors.Is(err, dynamics.ErrInvalidParameters) {
		t.Errorf("expected ErrInvalidParameters, got %v", err)
	}
}

func TestSetParamsRejectsNonFinite(t *testing.T) {
	w := newWorld(t)
	b, _ := addBox(t, w, geom.Unit(geom.Y, 3))

	for _, dt := range []float64{math.NaN(), math.Inf(1)} {
		p := w.Params()
		p.Dt = dt
		if err := w.SetParams(p); !errors.Is(err, dynamics.ErrInvalidParameters) {
			t.Errorf("dt %v: expected ErrInvalidParameters, got %v", dt, err)
		}
	}
	if err := w.Step(); err != nil {
		t.Fatal(err)
	}
	body, _ := w.Body(b)
	if !geom.IsFinite(body.Position) || w.Params().Dt != DefaultOptions().Params.Dt {
		t.Errorf("rejected parameters leaked into the world: dt %v, position %v", w.Params().Dt, body.Position)
	}
}

func TestWorldFreeFall(t *testing.T) {
	w := newWorld(t)
	addFloor(t, w)
	b, _ := addBox(t, w, geom.Unit(geom.Y, 3))

	gravity := make([]float64, geom.Dim)
	gravity[geom.Y] = -9.8
	if err := w.StepWithGravity(gravity); err != nil {
		t.Fatal(err)
	}

	body, _ := w.Body(b)
	v := body.LinearVelocity[geom.Y]
	if math.Abs(v+9.8/60) > 1e-9 {
		t.Errorf("velocity.y = %v", v)
	}
	if math.Abs(body.Position[geom.Y]-(3+v/60)) > 1e-9 {
		t.Errorf("position.y = %v", body.Position[geom.Y])
	}
	if len(w.Contacts()) != 0 {
		t.Error("expected no contacts yet")
	}
	if w.Tick() != 1 || math.Abs(w.Time()-1.0/60) > 1e-12 {
		t.Errorf("unexpected clock: tick %d time %v", w.Tick(), w.Time())
	}
}

func TestWorldStepWithGravityMismatch(t *testing.T) {
	w := newWorld(t)
	b, _ := addBox(t, w, geom.Unit(geom.Y, 3))
	before, err := w.EncodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}

	if err := w.StepWithGravity(make([]float64, geom.Dim+1)); !errors.Is(err, geom.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	after, _ := w.EncodeSnapshot()
	if !bytes.Equal(before, after) {
		t.Error("world changed after a rejected step")
	}
	if body, _ := w.Body(b); body.Position[geom.Y] != 3 {
		t.Errorf("body moved to %v", body.Position)
	}
}

func TestWorldRemoveColliderTwice(t *testing.T) {
	w := newWorld(t)
	addFloor(t, w)
	_, c := addBox(t, w, geom.Unit(geom.Y, 0.49))
	for i := 0; i < 3; i++ {
		if err := w.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if len(w.Contacts()) != 1 {
		t.Fatalf("expected the box to rest on the floor, contacts %v", w.Contacts())
	}

	if ok, err := w.RemoveCollider(c.Raw()); !ok || err != nil {
		t.Fatalf("RemoveCollider = %v, %v", ok, err)
	}
	once, _ := w.EncodeSnapshot()
	entries := w.BroadPhaseEntries()

	if ok, err := w.RemoveCollider(c.Raw()); ok || err != nil {
		t.Errorf("second RemoveCollider = %v, %v", ok, err)
	}
	twice, _ := w.EncodeSnapshot()
	if !bytes.Equal(once, twice) || len(w.BroadPhaseEntries()) != len(entries) {
		t.Error("second removal changed world state")
	}
	if w.ContactPairCount() != 0 {
		t.Error("contacts still reference the removed collider")
	}
	if v := w.CheckInvariants(); len(v) != 0 {
		t.Errorf("invariants violated: %v", v)
	}
}

func TestWorldUpdatePaths(t *testing.T) {
	w := newWorld(t)
	b, _ := addBox(t, w, geom.Vector{})

	if !w.SetTranslation(b, geom.Unit(geom.X, 2)) || !w.SetLinvel(b, geom.Unit(geom.Y, 1)) {
		t.Fatal("update paths should accept a live handle")
	}
	w.ApplyImpulse(b, geom.Unit(geom.X, 3))
	body, _ := w.Body(b)
	if body.Position[geom.X] != 2 || body.LinearVelocity[geom.X] != 3 || body.LinearVelocity[geom.Y] != 1 {
		t.Errorf("unexpected body %+v", body)
	}

	if ok, _ := w.RemoveRigidBody(b); !ok {
		t.Fatal("expected body removal")
	}
	if w.SetTranslation(b, geom.Vector{}) || w.AddForce(b, geom.Splat(1)) || w.ApplyImpulse(b, geom.Splat(1)) {
		t.Error("update paths must reject a stale handle")
	}
	if len(w.Colliders()) != 0 {
		t.Error("body removal should remove its collider")
	}
}

func TestWorldJoints(t *testing.T) {
	w := newWorld(t)
	anchor := w.CreateRigidBody(dynamics.RigidBodyDesc{Status: dynamics.Fixed})
	bob, _ := addBox(t, w, geom.Unit(geom.Y, -2))
	j, err := w.CreateJoint(dynamics.RopeJoint(2, geom.Vector{}, geom.Vector{}), anchor, bob)
	if err != nil {
		t.Fatal(err)
	}
	if joint, ok := w.Joint(j); !ok || joint.Kind != dynamics.JointRope {
		t.Errorf("unexpected joint %+v", joint)
	}
	if ok, _ := w.RemoveJoint(j); !ok {
		t.Error("expected joint removal")
	}
	if _, ok := w.Joint(j); ok {
		t.Error("removed joint still resolves")
	}
}

func buildPile(t *testing.T) *World {
	w := newWorld(t)
	addFloor(t, w)
	for i := 0; i < 8; i++ {
		pos := geom.Unit(geom.Y, 0.5+float64(i)*1.2)
		pos[geom.X] = float64(i%3) * 0.3
		addBox(t, w, pos)
	}
	anchor := w.CreateRigidBody(dynamics.RigidBodyDesc{Status: dynamics.Fixed, Translation: geom.Unit(geom.Y, 12)})
	start := geom.Unit(geom.X, 4)
	start[geom.Y] = 3
	ball := w.CreateRigidBody(dynamics.RigidBodyDesc{Translation: start, Mass: 10})
	if _, err := w.CreateCollider(collision.NewColliderDesc(collision.Ball(0.8)), ball); err != nil {
		t.Fatal(err)
	}
	if _, err := w.CreateJoint(dynamics.RopeJoint(12, geom.Vector{}, geom.Vector{}), anchor, ball); err != nil {
		t.Fatal(err)
	}
	return w
}

func TestSnapshotDeterminism(t *testing.T) {
	a, b := buildPile(t), buildPile(t)
	for i := 0; i < 240; i++ {
		if err := a.Step(); err != nil {
			t.Fatal(err)
		}
		if err := b.Step(); err != nil {
			t.Fatal(err)
		}
	}

	sa, err := a.EncodeSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	sb, _ := b.EncodeSnapshot()
	if !bytes.Equal(sa, sb) {
		t.Fatal("identical worlds produced different snapshots")
	}

	decoded, err := DecodeSnapshot(sa)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Tick != 240 || len(decoded.Bodies) != a.bodies.Len() || len(decoded.Joints) != 1 {
		t.Errorf("unexpected decoded snapshot: tick %d, %d bodies, %d joints", decoded.Tick, len(decoded.Bodies), len(decoded.Joints))
	}
	if len(decoded.Contacts) == 0 {
		t.Error("settled pile should report contacts")
	}
}

func TestDecodeSnapshotDimension(t *testing.T) {
	w := newWorld(t)
	s := w.Snapshot()
	s.Dim = geom.Dim + 1
	data, err := msgpack.Marshal(&s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeSnapshot(data); !errors.Is(err, geom.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
