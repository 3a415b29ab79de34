package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
	"github.com/san-kum/rigidsim/internal/geom"
	"github.com/san-kum/rigidsim/internal/handle"
)

func prepare(t *testing.T, cfg *config.Config) *experiment.Experiment {
	t.Helper()
	exp, err := experiment.NewRegistry().Prepare(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	return exp
}

func shortDrop() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Duration = 0.5
	cfg.SceneArgs.Count = 2
	return cfg
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		target error
	}{
		{"unknown action", "actions:\n  - tick: 1\n    action: explode\n    key: 1\n", ErrInvalidAction},
		{"missing target", "actions:\n  - tick: 1\n    action: remove_body\n", ErrInvalidAction},
		{"both targets", "actions:\n  - tick: 1\n    action: remove_body\n    key: 1\n    tracked: 0\n", ErrInvalidAction},
		{"tracked joint", "actions:\n  - tick: 1\n    action: remove_joint\n    tracked: 0\n", ErrInvalidAction},
		{"vector arity", "actions:\n  - tick: 1\n    action: set_gravity\n    vector: [1, 2, 3, 4]\n", geom.ErrDimensionMismatch},
		{"bad yaml", "actions: [", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestParseScriptSortsByTick(t *testing.T) {
	s, err := ParseScript([]byte("name: x\nactions:\n  - tick: 9\n    action: remove_body\n    tracked: 0\n  - tick: 2\n    action: remove_body\n    tracked: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Actions[0].Tick != 2 || s.Actions[1].Tick != 9 {
		t.Errorf("actions not sorted: %+v", s.Actions)
	}
}

func TestRunnerRemovesAndReportsStaleKeys(t *testing.T) {
	exp := prepare(t, shortDrop())
	info := exp.Info()
	w := exp.World()

	ball, _ := w.Body(info.Tracked[0])
	colliderKey := ball.Colliders()[0].Raw()
	zero := 0

	script := &Script{Actions: []Action{
		{Tick: 3, Kind: RemoveCollider, Key: &colliderKey},
		{Tick: 5, Kind: RemoveCollider, Key: &colliderKey},
		{Tick: 7, Kind: RemoveBody, Tracked: &zero},
		{Tick: 8, Kind: RemoveBody, Tracked: &zero},
	}}
	runner := NewRunner(script, info, nil)
	exp.AddHook(runner)

	if _, err := exp.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !runner.Done() {
		t.Error("runner should have applied every action")
	}

	want := []bool{true, false, true, false}
	out := runner.Outcomes()
	if len(out) != len(want) {
		t.Fatalf("expected %d outcomes, got %d", len(want), len(out))
	}
	for i := range want {
		if out[i].Applied != want[i] {
			t.Errorf("outcome %d: applied=%v, want %v", i, out[i].Applied, want[i])
		}
	}
	if _, ok := w.Body(info.Tracked[0]); ok {
		t.Error("tracked body should be gone")
	}
	if v := w.CheckInvariants(); len(v) != 0 {
		t.Errorf("invariant violations: %v", v)
	}
}

func TestRunnerImpulseAndGravity(t *testing.T) {
	exp := prepare(t, shortDrop())
	info := exp.Info()
	w := exp.World()
	one := 1

	script := &Script{Actions: []Action{
		{Tick: 0, Kind: SetGravity, Vector: make([]float64, geom.Dim)},
		{Tick: 0, Kind: Impulse, Tracked: &one, Vector: geom.Components(geom.Unit(geom.X, 2))},
	}}
	runner := NewRunner(script, info, nil)
	if err := runner.BeforeStep(w, 0); err != nil {
		t.Fatal(err)
	}
	if err := w.Step(); err != nil {
		t.Fatal(err)
	}

	b, _ := w.Body(info.Tracked[1])
	if b.LinearVelocity[geom.X] != 2 || b.LinearVelocity[geom.Y] != 0 {
		t.Errorf("expected velocity (2, 0), got %v", b.LinearVelocity)
	}
}

func TestRunnerOutOfRangeTrackedIsStale(t *testing.T) {
	exp := prepare(t, shortDrop())
	idx := 42
	runner := NewRunner(&Script{Actions: []Action{{Tick: 0, Kind: RemoveCollider, Tracked: &idx}}}, exp.Info(), nil)

	if err := runner.BeforeStep(exp.World(), 0); err != nil {
		t.Fatal(err)
	}
	out := runner.Outcomes()
	if len(out) != 1 || out[0].Applied || out[0].Key != handle.Invalid.Raw() {
		t.Errorf("unexpected outcome %+v", out)
	}
}

func TestLoadAndRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	body := `name: cascade
description: drop two balls and pull one out mid-fall
steps:
  - scene: drop
    duration: 0.25
    scene_params:
      count: 2
    script:
      actions:
        - tick: 4
          action: remove_body
          tracked: 0
  - scene: springs
    preset: critical
    duration: 0.1
    save_as: spring
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	results, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "drop-1" || results[1].Name != "spring" {
		t.Errorf("unexpected names %q %q", results[0].Name, results[1].Name)
	}
	if len(results[0].Outcomes) != 1 || !results[0].Outcomes[0].Applied {
		t.Errorf("expected one applied outcome, got %+v", results[0].Outcomes)
	}
	if results[0].Result.Counters.BodiesRemoved != 1 {
		t.Errorf("expected one body removed, got %d", results[0].Result.Counters.BodiesRemoved)
	}
}

func TestRunScenarioUnknownPreset(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{{Scene: "tower", Preset: "huge"}}}
	if _, err := RunScenario(context.Background(), sc, experiment.NewRegistry(), nil); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestRunSweep(t *testing.T) {
	base := shortDrop()
	base.Duration = 0.1

	results, err := RunSweep(context.Background(), &ParameterSweep{
		Base:     base,
		Param:    "erp",
		ParamMin: 0.1,
		ParamMax: 0.5,
		NumSteps: 3,
		Workers:  2,
	}, experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if math.Abs(results[1].ParamValue-0.3) > 1e-12 {
		t.Errorf("expected midpoint 0.3, got %v", results[1].ParamValue)
	}
	if base.Params.ERP != config.DefaultConfig().Params.ERP {
		t.Error("sweep must not modify the base config")
	}

	if _, err := RunSweep(context.Background(), &ParameterSweep{Base: base, Param: "mass", NumSteps: 2}, experiment.NewRegistry(), nil); err == nil {
		t.Error("expected error for unknown parameter")
	}
}

func TestGridSearchCombinations(t *testing.T) {
	g := &GridSearch{
		Params: []string{"erp", "velocity_iterations"},
		Ranges: [][]float64{{0.1, 0.2}, {4, 8, 12}},
	}
	combos := g.combinations(0, make(map[string]float64), nil)
	if len(combos) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(combos))
	}
	if combos[1]["erp"] != 0.1 || combos[1]["velocity_iterations"] != 8 {
		t.Errorf("last parameter should vary fastest, got %v", combos[1])
	}
	if combos[5]["erp"] != 0.2 || combos[5]["velocity_iterations"] != 12 {
		t.Errorf("last combination %v", combos[5])
	}
}

func TestGridSearch(t *testing.T) {
	base := shortDrop()
	base.Duration = 0.1

	g := &GridSearch{
		Base:     base,
		Params:   []string{"erp", "velocity_iterations"},
		Ranges:   [][]float64{{0.1, 0.2}, {4, 8}},
		Metric:   "stability",
		Maximize: true,
		Workers:  2,
	}
	best, err := g.Search(context.Background(), experiment.NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if best.Evaluated != 4 || best.Value != 1 {
		t.Errorf("evaluated %d, best %v", best.Evaluated, best.Value)
	}
	if best.Params["erp"] != 0.1 || best.Params["velocity_iterations"] != 4 {
		t.Errorf("ties should keep the first combination, got %v", best.Params)
	}

	tests := []struct {
		name string
		g    *GridSearch
	}{
		{"missing range", &GridSearch{Base: base, Params: []string{"erp"}, Metric: "stability"}},
		{"unknown param", &GridSearch{Base: base, Params: []string{"mass"}, Ranges: [][]float64{{1}}, Metric: "stability"}},
		{"empty range", &GridSearch{Base: base, Params: []string{"erp"}, Ranges: [][]float64{{}}, Metric: "stability"}},
		{"unknown metric", &GridSearch{Base: base, Params: []string{"erp"}, Ranges: [][]float64{{0.2}}, Metric: "score"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.g.Search(context.Background(), experiment.NewRegistry(), nil); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
