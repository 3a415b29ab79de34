package experiment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/collision"
	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/pipeline"
	"github.com/san-kum/rigidsim/internal/scene"
	"github.com/san-kum/rigidsim/internal/world"
)

// Hook runs before every step. Automation scripts implement it.
type Hook interface {
	BeforeStep(w *world.World, tick uint64) error
}

type HookFunc func(w *world.World, tick uint64) error

func (f HookFunc) BeforeStep(w *world.World, tick uint64) error { return f(w, tick) }

type Result struct {
	Scene      string
	Integrator string
	Dt         float64
	Steps      int
	Elapsed    time.Duration

	// Times[i] is the simulated time of sample i. Positions[i] holds the
	// tracked bodies' positions, geom.Dim values per body.
	Times     []float64
	Tracked   []uint64
	Positions [][]float64
	Energy    []float64
	Contacts  []int

	Metrics  map[string]float64
	Counters pipeline.Counters
	Events   int
	Final    world.Snapshot
}

type Experiment struct {
	cfg     *config.Config
	logger  *zap.Logger
	world   *world.World
	info    scene.Info
	metrics []metrics.Metric
	hooks   []Hook
	events  *collision.EventCollector
}

func New(cfg *config.Config, logger *zap.Logger) *Experiment {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Experiment{cfg: cfg, logger: logger}
}

// Setup creates the world and populates it with sc.
func (e *Experiment) Setup(sc scene.Scene, integrator pipeline.Integrator, ms []metrics.Metric) error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	gravity, err := e.cfg.GravityVector()
	if err != nil {
		return err
	}

	e.events = &collision.EventCollector{}
	w, err := world.New(world.Options{
		Gravity:    gravity,
		Params:     e.cfg.IntegrationParameters(),
		CellSize:   e.cfg.CellSize,
		Integrator: integrator,
		Logger:     e.logger,
		Events:     e.events,
	})
	if err != nil {
		return err
	}

	sc.Configure(e.cfg.SceneArgs)
	info, err := sc.Build(w)
	if err != nil {
		return err
	}

	e.world = w
	e.info = info
	e.metrics = ms
	e.logger.Info("scene ready",
		zap.String("scene", sc.Name()),
		zap.String("integrator", w.IntegratorName()),
		zap.Int("dim", geom.Dim),
		zap.Stringer("contents", info),
	)
	return nil
}

func (e *Experiment) AddHook(h Hook) { e.hooks = append(e.hooks, h) }

// World returns the world built by Setup, or nil.
func (e *Experiment) World() *world.World { return e.world }

func (e *Experiment) Info() scene.Info { return e.info }

// Run steps the world for the configured duration, sampling after every
// step. A cancelled context stops the run and returns the partial result.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.world == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	steps := e.cfg.Steps()
	result := &Result{
		Scene:      e.cfg.Scene,
		Integrator: e.world.IntegratorName(),
		Dt:         e.cfg.Params.Dt,
		Times:      make([]float64, 0, steps+1),
		Positions:  make([][]float64, 0, steps+1),
		Energy:     make([]float64, 0, steps+1),
		Contacts:   make([]int, 0, steps+1),
		Metrics:    make(map[string]float64),
	}
	for _, h := range e.info.Tracked {
		result.Tracked = append(result.Tracked, h.Raw())
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	start := time.Now()
	e.sample(result)

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if runErr = e.runHooks(); runErr != nil {
			break
		}
		if err := e.world.Step(); err != nil {
			runErr = fmt.Errorf("step %d: %w", i, err)
			break
		}
		result.Events += len(e.events.Drain())
		result.Steps++

		for _, m := range e.metrics {
			m.Observe(e.world, e.world.Time())
		}
		e.sample(result)
	}

	result.Elapsed = time.Since(start)
	result.Metrics = metrics.Collect(e.metrics)
	result.Counters = e.world.Counters()
	result.Final = e.world.Snapshot()

	e.logger.Info("run finished",
		zap.Int("steps", result.Steps),
		zap.Duration("elapsed", result.Elapsed),
		zap.Int("events", result.Events),
	)
	return result, runErr
}

func (e *Experiment) runHooks() error {
	for _, h := range e.hooks {
		if err := h.BeforeStep(e.world, e.world.Tick()); err != nil {
			return fmt.Errorf("tick %d: %w", e.world.Tick(), err)
		}
	}
	return nil
}

func (e *Experiment) sample(r *Result) {
	pos := make([]float64, 0, len(e.info.Tracked)*geom.Dim)
	for _, h := range e.info.Tracked {
		b, ok := e.world.Body(h)
		if !ok {
			pos = append(pos, make([]float64, geom.Dim)...)
			continue
		}
		pos = append(pos, geom.Components(b.Position)...)
	}
	r.Times = append(r.Times, e.world.Time())
	r.Positions = append(r.Positions, pos)
	r.Energy = append(r.Energy, metrics.MechanicalEnergy(e.world))
	r.Contacts = append(r.Contacts, len(e.world.Contacts()))
}
