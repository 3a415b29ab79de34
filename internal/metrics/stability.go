package metrics

import (
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

// Stability is the fraction of samples in which every body had a finite
// state and a speed below the threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(w World, t float64) {
	s.samples++
	bad := false
	w.EachBody(func(_ handle.Handle, b *dynamics.RigidBody) {
		if bad {
			return
		}
		if !geom.IsFinite(b.Position) || !geom.IsFinite(b.LinearVelocity) || b.LinearVelocity.Len() > s.threshold {
			bad = true
		}
	})
	if bad {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// BodyCount reports the number of live bodies at the last sample.
type BodyCount struct {
	name string
	n    int
}

func NewBodyCount() *BodyCount {
	return &BodyCount{name: "bodies"}
}

func (b *BodyCount) Name() string { return b.name }

func (b *BodyCount) Observe(w World, t float64) {
	b.n = 0
	w.EachBody(func(handle.Handle, *dynamics.RigidBody) { b.n++ })
}

func (b *BodyCount) Value() float64 { return float64(b.n) }

func (b *BodyCount) Reset() { b.n = 0 }
