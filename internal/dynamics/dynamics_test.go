package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

func TestIntegrationParametersValidate(t *testing.T) {
	defaults := DefaultIntegrationParameters()
	if err := defaults.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(p *IntegrationParameters)
	}{
		{"zero dt", func(p *IntegrationParameters) { p.Dt = 0 }},
		{"negative dt", func(p *IntegrationParameters) { p.Dt = -0.01 }},
		{"no velocity iterations", func(p *IntegrationParameters) { p.MaxVelocityIterations = 0 }},
		{"negative position iterations", func(p *IntegrationParameters) { p.MaxPositionIterations = -1 }},
		{"erp above one", func(p *IntegrationParameters) { p.ERP = 1.5 }},
		{"negative joint erp", func(p *IntegrationParameters) { p.JointERP = -0.1 }},
		{"negative slop", func(p *IntegrationParameters) { p.AllowedLinearError = -1 }},
		{"nan dt", func(p *IntegrationParameters) { p.Dt = math.NaN() }},
		{"infinite dt", func(p *IntegrationParameters) { p.Dt = math.Inf(1) }},
		{"nan erp", func(p *IntegrationParameters) { p.ERP = math.NaN() }},
		{"nan joint erp", func(p *IntegrationParameters) { p.JointERP = math.NaN() }},
		{"infinite slop", func(p *IntegrationParameters) { p.AllowedLinearError = math.Inf(1) }},
		{"nan prediction", func(p *IntegrationParameters) { p.PredictionDistance = math.NaN() }},
		{"infinite restitution threshold", func(p *IntegrationParameters) { p.RestitutionVelocityThreshold = math.Inf(-1) }},
		{"negative restitution threshold", func(p *IntegrationParameters) { p.RestitutionVelocityThreshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultIntegrationParameters()
			tt.mutate(&p)
			if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
				t.Errorf("expected ErrInvalidParameters, got %v", err)
			}
		})
	}
}

func TestBodySetInsertAndUpdate(t *testing.T) {
	s := NewBodySet()
	h := s.Insert(RigidBodyDesc{Translation: geom.Unit(geom.Y, 5), Mass: 2})

	b, ok := s.Get(h)
	if !ok {
		t.Fatal("inserted body should resolve")
	}
	if b.Position[geom.Y] != 5 || b.GravityScale != 1 || b.Mass() != 2 {
		t.Errorf("unexpected body %+v", b)
	}

	s.ApplyImpulse(h, geom.Unit(geom.X, 4))
	b, _ = s.Get(h)
	if b.LinearVelocity[geom.X] != 2 {
		t.Errorf("impulse 4 on mass 2 should give v=2, got %v", b.LinearVelocity)
	}

	fixed := s.Insert(RigidBodyDesc{Status: Fixed})
	s.ApplyImpulse(fixed, geom.Unit(geom.X, 4))
	fb, _ := s.Get(fixed)
	if fb.LinearVelocity != (geom.Vector{}) || fb.InvMass() != 0 {
		t.Errorf("fixed body must not respond to impulses: %+v", fb)
	}
}

func TestBodySetStaleHandle(t *testing.T) {
	s := NewBodySet()
	h := s.Insert(RigidBodyDesc{})
	s.Remove(h)

	if s.SetTranslation(h, geom.Splat(1)) {
		t.Error("update through a stale handle should fail")
	}
	if s.AttachCollider(h, handle.New(0, 0)) {
		t.Error("attach to a stale body should fail")
	}

	h2 := s.Insert(RigidBodyDesc{})
	if _, ok := s.Get(h); ok {
		t.Error("stale handle resolved after slot reuse")
	}
	if !s.Contains(h2) {
		t.Error("new handle should resolve")
	}
}

func TestBodyColliderLinks(t *testing.T) {
	s := NewBodySet()
	h := s.Insert(RigidBodyDesc{})
	c := handle.New(3, 1)

	s.AttachCollider(h, c)
	s.AttachCollider(h, c)
	b, _ := s.Get(h)
	if len(b.Colliders()) != 1 {
		t.Errorf("attaching twice should not duplicate, got %v", b.Colliders())
	}

	if !s.DetachCollider(h, c) {
		t.Error("expected detach to find the collider")
	}
	if s.DetachCollider(h, c) {
		t.Error("second detach should report false")
	}
}

func TestJointSetInsert(t *testing.T) {
	bodies := NewBodySet()
	joints := NewJointSet()
	a := bodies.Insert(RigidBodyDesc{Status: Fixed})
	b := bodies.Insert(RigidBodyDesc{Translation: geom.Unit(geom.X, 1)})

	j, err := joints.Insert(bodies, BallJoint(geom.Vector{}, geom.Unit(geom.X, -1)), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, bh := range []handle.Handle{a, b} {
		body, _ := bodies.Get(bh)
		if js := body.Joints(); len(js) != 1 || js[0] != j {
			t.Errorf("body %v joints = %v, want [%v]", bh, js, j)
		}
	}

	got, ok := joints.Get(j)
	if !ok || got.Kind != JointBall || got.Body1 != a || got.Body2 != b {
		t.Errorf("unexpected joint %+v", got)
	}

	if _, err := joints.Insert(bodies, BallJoint(geom.Vector{}, geom.Vector{}), a, a); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("self joint should fail with ErrInvalidBody, got %v", err)
	}

	bodies.Remove(b)
	if _, err := joints.Insert(bodies, RopeJoint(5, geom.Vector{}, geom.Vector{}), a, b); !errors.Is(err, ErrInvalidBody) {
		t.Errorf("joint to removed body should fail, got %v", err)
	}
}

func TestParseBodyStatus(t *testing.T) {
	for _, s := range []BodyStatus{Dynamic, Fixed, Kinematic} {
		got, ok := ParseBodyStatus(s.String())
		if !ok || got != s {
			t.Errorf("ParseBodyStatus(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseBodyStatus("floating"); ok {
		t.Error("unknown status should not parse")
	}
}
