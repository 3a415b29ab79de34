package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rigidsim/internal/config"
)

// Ensemble runs independent configurations, at most Workers at a time.
// Every run builds its own world, so runs share nothing but the registry.
type Ensemble struct {
	registry *Registry
	workers  int
	logger   *zap.Logger
}

func NewEnsemble(registry *Registry, workers int, logger *zap.Logger) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ensemble{registry: registry, workers: workers, logger: logger}
}

// Run returns one result per configuration, in input order. The first
// failure cancels the runs that have not finished yet.
func (e *Ensemble) Run(ctx context.Context, cfgs []*config.Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, cfg := range cfgs {
		g.Go(func() error {
			exp, err := e.registry.Prepare(cfg, nil)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			result, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = result
			e.logger.Debug("ensemble run done",
				zap.Int("run", i),
				zap.String("scene", cfg.Scene),
				zap.Duration("elapsed", result.Elapsed),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
