package integrators

import (
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
)

// PGS is a projected Gauss-Seidel solver running all velocity iterations over
// a single full step.
type PGS struct {
	s solver
}

func NewPGS() *PGS {
	return &PGS{}
}

func (p *PGS) Name() string { return "pgs" }

func (p *PGS) Integrate(bodies *dynamics.BodySet, joints *dynamics.JointSet, np *collision.NarrowPhase, params *dynamics.IntegrationParameters, gravity geom.Vector) {
	dt := params.Dt

	p.s.build(bodies, joints, np)
	p.s.prepareRestitution(params.RestitutionVelocityThreshold)
	applyForces(bodies, gravity, dt)
	p.s.applySprings(dt)
	p.s.solveVelocity(params, dt, params.MaxVelocityIterations)
	integratePositions(bodies, dt)
	p.s.correctPositions(params, params.MaxPositionIterations)
	p.s.finish()
	clearForces(bodies)
}
