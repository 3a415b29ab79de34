package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/dynamics"
	"github.com/san-kum/rigidsim/internal/geom"
)

// Integrator advances bodies by one fixed step.
type Integrator interface {
	Name() string
	Integrate(bodies *dynamics.BodySet, joints *dynamics.JointSet, np *collision.NarrowPhase, params *dynamics.IntegrationParameters, gravity geom.Vector)
}

// StepInfo summarizes a completed step.
type StepInfo struct {
	Step       uint64
	Candidates int
	Contacts   int
	Events     int
	Elapsed    time.Duration
}

// Observer is notified after every completed step.
type Observer interface {
	OnStep(StepInfo)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(StepInfo)

func (f ObserverFunc) OnStep(info StepInfo) { f(info) }

type Option func(*PhysicsPipeline)

func WithLogger(logger *zap.Logger) Option {
	return func(p *PhysicsPipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithIntegrator(i Integrator) Option {
	return func(p *PhysicsPipeline) {
		if i != nil {
			p.integrator = i
		}
	}
}

func WithEventHandler(h collision.EventHandler) Option {
	return func(p *PhysicsPipeline) { p.events = h }
}

func WithObserver(o Observer) Option {
	return func(p *PhysicsPipeline) { p.observers = append(p.observers, o) }
}
