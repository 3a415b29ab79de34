package automation

import (
	"context"
	"fmt"
	"maps"
	"math"

	"go.uber.org/zap"

	"github.com/san-kum/rigidsim/internal/config"
	"github.com/san-kum/rigidsim/internal/experiment"
)

// GridSearch runs Base at every combination of the listed parameter values
// and keeps the combination with the best Metric. By default the metric
// closest to zero wins; Maximize picks the largest instead.
type GridSearch struct {
	Base     *config.Config
	Params   []string
	Ranges   [][]float64
	Metric   string
	Maximize bool
	Workers  int
}

type SearchResult struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
}

// combinations expands the grid depth first, so the last parameter varies
// fastest.
func (g *GridSearch) combinations(depth int, current map[string]float64, out []map[string]float64) []map[string]float64 {
	if depth == len(g.Params) {
		return append(out, maps.Clone(current))
	}
	for _, v := range g.Ranges[depth] {
		current[g.Params[depth]] = v
		out = g.combinations(depth+1, current, out)
	}
	return out
}

func (g *GridSearch) better(v, best float64) bool {
	if g.Maximize {
		return v > best
	}
	return math.Abs(v) < math.Abs(best)
}

// Search evaluates the whole grid. Ties keep the earliest combination.
func (g *GridSearch) Search(ctx context.Context, registry *experiment.Registry, logger *zap.Logger) (*SearchResult, error) {
	if len(g.Params) == 0 || len(g.Params) != len(g.Ranges) {
		return nil, fmt.Errorf("grid search needs one range per parameter, got %d params and %d ranges", len(g.Params), len(g.Ranges))
	}
	for i, name := range g.Params {
		if _, ok := sweepParams[name]; !ok {
			return nil, fmt.Errorf("unknown search parameter: %s", name)
		}
		if len(g.Ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", name)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	combos := g.combinations(0, make(map[string]float64), nil)
	cfgs := make([]*config.Config, len(combos))
	for i, combo := range combos {
		cfgs[i] = g.Base.Clone()
		for _, name := range g.Params {
			sweepParams[name](cfgs[i], combo[name])
		}
	}

	logger.Info("grid search",
		zap.Strings("params", g.Params),
		zap.String("metric", g.Metric),
		zap.Int("points", len(combos)),
	)
	runs, err := experiment.NewEnsemble(registry, g.Workers, logger).Run(ctx, cfgs)
	if err != nil {
		return nil, fmt.Errorf("grid search: %w", err)
	}

	var best *SearchResult
	for i, result := range runs {
		v, ok := result.Metrics[g.Metric]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", g.Metric)
		}
		if best == nil || g.better(v, best.Value) {
			best = &SearchResult{Params: combos[i], Value: v}
		}
	}
	best.Evaluated = len(runs)
	return best, nil
}
