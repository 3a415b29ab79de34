package integrators

import (
	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
)

// SmallSteps splits the step into MaxVelocityIterations substeps of one
// solver pass each. Contact manifolds are computed once per step; their depth
// is re-estimated from body motion between substeps.
type SmallSteps struct {
	s solver
}

func NewSmallSteps() *SmallSteps {
	return &SmallSteps{}
}

func (m *SmallSteps) Name() string { return "small-steps" }

func (m *SmallSteps) Integrate(bodies *dynamics.BodySet, joints *dynamics.JointSet, np *collision.NarrowPhase, params *dynamics.IntegrationParameters, gravity geom.Vector) {
	substeps := max(params.MaxVelocityIterations, 1)
	dt := params.Dt / float64(substeps)

	m.s.build(bodies, joints, np)
	m.s.prepareRestitution(params.RestitutionVelocityThreshold)
	for i := 0; i < substeps; i++ {
		applyForces(bodies, gravity, dt)
		m.s.applySprings(dt)
		m.s.solveVelocity(params, dt, 1)
		integratePositions(bodies, dt)
		m.s.correctPositions(params, params.MaxPositionIterations)
		m.s.rebase()
	}
	m.s.finish()
	clearForces(bodies)
}
