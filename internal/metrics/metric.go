package metrics

import (
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

// World is the read-only view metrics sample. *world.World satisfies it.
type World interface {
	EachBody(fn func(handle.Handle, *dynamics.RigidBody))
	Contacts() []collision.ContactPair
	Gravity() geom.Vector
}

type Metric interface {
	Name() string
	Observe(w World, t float64)
	Value() float64
	Reset()
}

// Defaults returns a fresh set of the standard run metrics.
func Defaults() []Metric {
	return []Metric{
		NewEnergy(),
		NewEnergyDrift(),
		NewContacts(),
		NewPenetration(),
		NewBodyCount(),
		NewStability(100),
		NewImpulse(),
	}
}

// Collect reads every metric into a map keyed by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
