package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/integrators"
)

// Counters track pipeline activity since creation.
type Counters struct {
	Steps            uint64
	SkippedSteps     uint64
	ContactEvents    uint64
	CollidersRemoved uint64
	BodiesRemoved    uint64
	JointsRemoved    uint64
	LastStep         time.Duration
}

// PhysicsPipeline owns no entities. Every call receives the sets it operates
// on, and the caller keeps the same sets together between calls.
type PhysicsPipeline struct {
	logger     *zap.Logger
	integrator Integrator
	events     collision.EventHandler
	observers  []Observer

	locked   bool
	counters Counters
}

// New returns a pipeline using the PGS integrator and a no-op logger unless
// options say otherwise.
func New(opts ...Option) *PhysicsPipeline {
	p := &PhysicsPipeline{
		logger:     zap.NewNop(),
		integrator: integrators.NewPGS(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *PhysicsPipeline) SetEventHandler(h collision.EventHandler) { p.events = h }

func (p *PhysicsPipeline) AddObserver(o Observer) { p.observers = append(p.observers, o) }

func (p *PhysicsPipeline) Integrator() Integrator { return p.integrator }

func (p *PhysicsPipeline) Counters() Counters { return p.counters }

// Locked reports whether a step or removal is in progress.
func (p *PhysicsPipeline) Locked() bool { return p.locked }

// Step advances the world by params.Dt. A nil set or nil params turns the call
// into a no-op. Invalid parameters and re-entrant calls return an error
// before anything is mutated.
func (p *PhysicsPipeline) Step(
	gravity geom.Vector,
	params *dynamics.IntegrationParameters,
	bp *collision.BroadPhase,
	np *collision.NarrowPhase,
	bodies *dynamics.BodySet,
	colliders *collision.ColliderSet,
	joints *dynamics.JointSet,
) error {
	if params == nil || bp == nil || np == nil || bodies == nil || colliders == nil || joints == nil {
		p.counters.SkippedSteps++
		p.logger.Debug("step skipped: missing set")
		return nil
	}
	if p.locked {
		return ErrPipelineLocked
	}
	if err := params.Validate(); err != nil {
		return err
	}
	if !geom.IsFinite(gravity) {
		return fmt.Errorf("%w: gravity must be finite, got %v", dynamics.ErrInvalidParameters, gravity)
	}

	p.locked = true
	defer func() { p.locked = false }()
	start := time.Now()

	bp.UpdateCandidates(bodies, colliders, params.PredictionDistance)
	candidates := bp.Candidates()
	events := np.RefreshContacts(candidates, bodies, colliders)
	p.dispatch(events)
	p.integrator.Integrate(bodies, joints, np, params, gravity)

	p.counters.Steps++
	p.counters.LastStep = time.Since(start)
	info := StepInfo{
		Step:       p.counters.Steps,
		Candidates: len(candidates),
		Contacts:   len(np.Touching()),
		Events:     len(events),
		Elapsed:    p.counters.LastStep,
	}
	for _, o := range p.observers {
		o.OnStep(info)
	}
	return nil
}

// StepComponents is Step with gravity given as raw components. A slice whose
// length differs from geom.Dim fails with geom.ErrDimensionMismatch and
// leaves every set untouched.
func (p *PhysicsPipeline) StepComponents(
	gravity []float64,
	params *dynamics.IntegrationParameters,
	bp *collision.BroadPhase,
	np *collision.NarrowPhase,
	bodies *dynamics.BodySet,
	colliders *collision.ColliderSet,
	joints *dynamics.JointSet,
) error {
	g, err := geom.VectorFromComponents(gravity)
	if err != nil {
		return fmt.Errorf("step gravity: %w", err)
	}
	return p.Step(g, params, bp, np, bodies, colliders, joints)
}

func (p *PhysicsPipeline) dispatch(events []collision.ContactEvent) {
	p.counters.ContactEvents += uint64(len(events))
	if p.events == nil {
		return
	}
	for _, e := range events {
		p.events.HandleContactEvent(e)
	}
}
