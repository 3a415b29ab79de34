package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

type fakeWorld struct {
	bodies   *dynamics.BodySet
	contacts []collision.ContactPair
	gravity  geom.Vector
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{bodies: dynamics.NewBodySet(), gravity: geom.Unit(geom.Y, -10)}
}

func (f *fakeWorld) EachBody(fn func(handle.Handle, *dynamics.RigidBody)) { f.bodies.Each(fn) }
func (f *fakeWorld) Contacts() []collision.ContactPair { return f.contacts }
func (f *fakeWorld) Gravity() geom.Vector { return f.gravity }

func TestMechanicalEnergy(t *testing.T) {
	w := newFakeWorld()
	w.bodies.Insert(dynamics.RigidBodyDesc{
		Status:         dynamics.Dynamic,
		Translation:    geom.Unit(geom.Y, 2),
		LinearVelocity: geom.Unit(geom.X, 3),
		Mass:           2,
	})
	w.bodies.Insert(dynamics.RigidBodyDesc{Status: dynamics.Fixed, Translation: geom.Unit(geom.Y, 100)})

	// KE = 0.5*2*9, PE = 2*10*2
	if got := MechanicalEnergy(w); math.Abs(got-49) > 1e-12 {
		t.Errorf("expected 49, got %v", got)
	}
	if got := KineticEnergy(w); math.Abs(got-9) > 1e-12 {
		t.Errorf("expected 9, got %v", got)
	}
}

func TestEnergyReset(t *testing.T) {
	w := newFakeWorld()
	w.bodies.Insert(dynamics.RigidBodyDesc{Status: dynamics.Dynamic, LinearVelocity: geom.Splat(1), Mass: 1})

	m := NewEnergy()
	m.Observe(w, 0)
	if m.Value() == 0 {
		t.Error("expected non-zero energy")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero energy after reset")
	}
}

func TestEnergyDrift(t *testing.T) {
	w := newFakeWorld()
	h := w.bodies.Insert(dynamics.RigidBodyDesc{Status: dynamics.Dynamic, Translation: geom.Unit(geom.Y, 1), Mass: 1})

	m := NewEnergyDrift()
	m.Observe(w, 0)
	w.bodies.SetTranslation(h, geom.Unit(geom.Y, 0.5))
	m.Observe(w, 1)

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected drift 0.5, got %v", got)
	}

	m.Reset()
	if got := m.Value(); got != 0 {
		t.Errorf("reset should clear the drift, got %v", got)
	}
	m.Observe(w, 2)
	w.bodies.SetTranslation(h, geom.Unit(geom.Y, 0.25))
	m.Observe(w, 3)
	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("drift after reset should be measured from the new first sample, got %v", got)
	}
}

func TestContactMetrics(t *testing.T) {
	w := newFakeWorld()
	w.contacts = []collision.ContactPair{
		{Touching: true, Manifold: collision.Manifold{Depth: 0.01}, NormalImpulse: 2},
		{Touching: true, Manifold: collision.Manifold{Depth: 0.03}, NormalImpulse: -1},
	}

	tests := []struct {
		metric Metric
		want   float64
	}{
		{NewContacts(), 2},
		{NewPenetration(), 0.03},
		{NewImpulse(), 3},
	}

	for _, tt := range tests {
		t.Run(tt.metric.Name(), func(t *testing.T) {
			tt.metric.Observe(w, 0)
			if got := tt.metric.Value(); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			tt.metric.Reset()
			if tt.metric.Value() != 0 {
				t.Error("expected zero after reset")
			}
		})
	}
}

func TestStability(t *testing.T) {
	w := newFakeWorld()
	h := w.bodies.Insert(dynamics.RigidBodyDesc{Status: dynamics.Dynamic, Mass: 1})

	s := NewStability(10)
	s.Observe(w, 0)
	w.bodies.SetLinvel(h, geom.Unit(geom.X, math.NaN()))
	s.Observe(w, 1)

	if got := s.Value(); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
}

func TestCollect(t *testing.T) {
	w := newFakeWorld()
	w.bodies.Insert(dynamics.RigidBodyDesc{Status: dynamics.Dynamic, Mass: 1})
	w.bodies.Insert(dynamics.RigidBodyDesc{Status: dynamics.Fixed})

	ms := Defaults()
	for _, m := range ms {
		m.Observe(w, 0)
	}
	got := Collect(ms)
	if len(got) != len(ms) {
		t.Fatalf("expected %d values, got %d", len(ms), len(got))
	}
	if got["bodies"] != 2 {
		t.Errorf("expected 2 bodies, got %v", got["bodies"])
	}
	if got["stability"] != 1 {
		t.Errorf("expected stable run, got %v", got["stability"])
	}
}
