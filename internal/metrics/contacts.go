package metrics

import "math"

// Contacts reports the peak number of touching contact pairs.
type Contacts struct {
	name string
	peak int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string { return c.name }

func (c *Contacts) Observe(w World, t float64) {
	if n := len(w.Contacts()); n > c.peak {
		c.peak = n
	}
}

func (c *Contacts) Value() float64 { return float64(c.peak) }

func (c *Contacts) Reset() { c.peak = 0 }

// Penetration reports the deepest overlap seen in any touching pair.
type Penetration struct {
	name string
	max  float64
}

func NewPenetration() *Penetration {
	return &Penetration{name: "max_penetration"}
}

func (p *Penetration) Name() string { return p.name }

func (p *Penetration) Observe(w World, t float64) {
	for _, cp := range w.Contacts() {
		p.max = math.Max(p.max, cp.Manifold.Depth)
	}
}

func (p *Penetration) Value() float64 { return p.max }

func (p *Penetration) Reset() { p.max = 0 }

// Impulse reports the mean total normal impulse applied per step.
type Impulse struct {
	name    string
	sum     float64
	samples int
}

func NewImpulse() *Impulse {
	return &Impulse{name: "contact_impulse"}
}

func (c *Impulse) Name() string {
	return c.name
}

func (c *Impulse) Observe(w World, t float64) {
	for _, cp := range w.Contacts() {
		c.sum += math.Abs(cp.NormalImpulse)
	}
	c.samples++
}

func (c *Impulse) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *Impulse) Reset() {
	c.sum = 0
	c.samples = 0
}
