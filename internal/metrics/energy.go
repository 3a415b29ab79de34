package metrics

import (
	"math"

	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/handle"
)

// MechanicalEnergy sums kinetic and gravitational potential energy of the
// dynamic bodies. Potential energy is measured against the origin.
func MechanicalEnergy(w World) float64 {
	g := w.Gravity()
	total := 0.0
	w.EachBody(func(_ handle.Handle, b *dynamics.RigidBody) {
		if !b.IsDynamic() {
			return
		}
		m := b.Mass()
		v := b.LinearVelocity
		total += 0.5*m*v.Dot(v) - m*b.GravityScale*g.Dot(b.Position)
	})
	return total
}

// KineticEnergy sums 0.5*m*v^2 over the dynamic bodies.
func KineticEnergy(w World) float64 {
	total := 0.0
	w.EachBody(func(_ handle.Handle, b *dynamics.RigidBody) {
		if b.IsDynamic() {
			total += 0.5 * b.Mass() * b.LinearVelocity.Dot(b.LinearVelocity)
		}
	})
	return total
}

// Energy reports the mean mechanical energy over the run.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(w World, t float64) {
	e.totalEnergy += MechanicalEnergy(w)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative departure from the first sample.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(w World, t float64) {
	energy := MechanicalEnergy(w)

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
