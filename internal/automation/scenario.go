package automation

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
)

// Scenario defines a sequence of runs, each optionally driven by a script.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run. Preset, when set, is looked up under Scene
// and the remaining non-zero fields override it.
type ScenarioStep struct {
	Scene      string             `yaml:"scene"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	Duration   float64            `yaml:"duration"`
	SceneArgs  config.SceneConfig `yaml:"scene_params"`
	Script     *Script            `yaml:"script"`
	SaveAs     string             `yaml:"save_as"`
}

// StepResult pairs a run with the script outcomes observed during it.
type StepResult struct {
	Name     string
	Result   *experiment.Result
	Outcomes []Outcome
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	for i, step := range scenario.Steps {
		if step.Script == nil {
			continue
		}
		if err := step.Script.Validate(); err != nil {
			return nil, fmt.Errorf("step %d script: %w", i+1, err)
		}
	}
	return &scenario, nil
}

func (s ScenarioStep) config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Scene, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", s.Scene, s.Preset)
		}
	}
	if s.Scene != "" {
		cfg.Scene = s.Scene
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.SceneArgs != (config.SceneConfig{}) {
		cfg.SceneArgs = s.SceneArgs
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, logger *zap.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("scenario step",
			zap.String("scenario", scenario.Name),
			zap.Int("step", i+1),
			zap.Int("of", len(scenario.Steps)),
			zap.String("scene", step.Scene),
		)

		cfg, err := step.config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp, err := registry.Prepare(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		var runner *Runner
		if step.Script != nil {
			runner = NewRunner(step.Script, exp.Info(), logger)
			exp.AddHook(runner)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		name := step.SaveAs
		if name == "" {
			name = fmt.Sprintf("%s-%d", cfg.Scene, i+1)
		}
		sr := StepResult{Name: name, Result: result}
		if runner != nil {
			sr.Outcomes = runner.Outcomes()
		}
		results = append(results, sr)
	}

	return results, nil
}
