package experiment

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/integrators"
	"github.com/san-kum/rigidsim/internal/metrics"
	"github.com/san-kum/rigidsim/internal/pipeline"
	"github.com/san-kum/rigidsim/internal/scene"
)

type Registry struct {
	scenes      map[string]func() scene.Scene
	integrators map[string]func() pipeline.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		scenes:      make(map[string]func() scene.Scene),
		integrators: make(map[string]func() pipeline.Integrator),
	}

	r.scenes["drop"] = func() scene.Scene { return scene.NewDrop() }
	r.scenes["tower"] = func() scene.Scene { return scene.NewTower() }
	r.scenes["wrecking-ball"] = func() scene.Scene { return scene.NewWreckingBall() }
	r.scenes["springs"] = func() scene.Scene { return scene.NewSprings() }
	r.scenes["pyramid"] = func() scene.Scene { return scene.NewPyramid() }

	r.integrators["pgs"] = func() pipeline.Integrator { return integrators.NewPGS() }
	r.integrators["small-steps"] = func() pipeline.Integrator { return integrators.NewSmallSteps() }

	return r
}

func (r *Registry) GetScene(name string) (scene.Scene, error) {
	fn, ok := r.scenes[name]
	if !ok {
		return nil, fmt.Errorf("unknown scene: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetIntegrator(name string) (pipeline.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListScenes() []string { return sortedKeys(r.scenes) }

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }

func (r *Registry) DefaultMetrics() []metrics.Metric {
	return metrics.Defaults()
}

// Prepare resolves cfg against the registry and returns a set-up experiment.
func (r *Registry) Prepare(cfg *config.Config, logger *zap.Logger) (*Experiment, error) {
	sc, err := r.GetScene(cfg.Scene)
	if err != nil {
		return nil, err
	}
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	exp := New(cfg, logger)
	if err := exp.Setup(sc, integ, r.DefaultMetrics()); err != nil {
		return nil, fmt.Errorf("setup %s: %w", cfg.Scene, err)
	}
	return exp, nil
}
