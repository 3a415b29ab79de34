package automation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/geom"
)

// sweepParams maps a sweepable parameter to its setter.
var sweepParams = map[string]func(*config.Config, float64){
	"dt":                  func(c *config.Config, v float64) { c.Params.Dt = v },
	"erp":                 func(c *config.Config, v float64) { c.Params.ERP = v },
	"joint_erp":           func(c *config.Config, v float64) { c.Params.JointERP = v },
	"velocity_iterations": func(c *config.Config, v float64) { c.Params.VelocityIterations = int(v) },
	"cell_size":           func(c *config.Config, v float64) { c.CellSize = v },
	"gravity":             func(c *config.Config, v float64) { c.Gravity = geom.Components(geom.Unit(geom.Y, v)) },
	"stiffness":           func(c *config.Config, v float64) { c.SceneArgs.Stiffness = v },
	"damping_ratio":       func(c *config.Config, v float64) { c.SceneArgs.DampingRatio = v },
	"restitution":         func(c *config.Config, v float64) { c.SceneArgs.Restitution = v },
}

// SweepParams lists the parameter names RunSweep accepts.
func SweepParams() []string {
	names := make([]string, 0, len(sweepParams))
	for name := range sweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParameterSweep runs Base once per evenly spaced value of Param, with up
// to Workers runs in flight.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	ParamMin float64
	ParamMax float64
	NumSteps int
	Workers  int
}

type SweepResult struct {
	ParamValue     float64
	Stability      float64
	EnergyDrift    float64
	MaxPenetration float64
	Elapsed        time.Duration
}

// Values returns the parameter values the sweep visits.
func (s *ParameterSweep) Values() []float64 {
	values := make([]float64, s.NumSteps)
	step := 0.0
	if s.NumSteps > 1 {
		step = (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	}
	for i := range values {
		values[i] = s.ParamMin + float64(i)*step
	}
	return values
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, logger *zap.Logger) ([]SweepResult, error) {
	set, ok := sweepParams[sweep.Param]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter: %s", sweep.Param)
	}
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	values := sweep.Values()
	cfgs := make([]*config.Config, len(values))
	for i, v := range values {
		cfgs[i] = sweep.Base.Clone()
		set(cfgs[i], v)
	}

	logger.Info("sweep",
		zap.String("param", sweep.Param),
		zap.Int("points", len(values)),
		zap.Int("workers", max(sweep.Workers, 1)),
	)
	runs, err := experiment.NewEnsemble(registry, sweep.Workers, logger).Run(ctx, cfgs)
	if err != nil {
		return nil, fmt.Errorf("sweep %s: %w", sweep.Param, err)
	}

	results := make([]SweepResult, len(runs))
	for i, result := range runs {
		results[i] = SweepResult{
			ParamValue:     values[i],
			Stability:      result.Metrics["stability"],
			EnergyDrift:    result.Metrics["energy_drift"],
			MaxPenetration: result.Metrics["max_penetration"],
			Elapsed:        result.Elapsed,
		}
	}
	return results, nil
}
