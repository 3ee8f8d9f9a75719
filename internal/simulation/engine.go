package simulation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Input validation failures abort the batch before it starts. In-flight
// simulation failures never do.
var (
	ErrMissingParticipant = errors.New("both participants are required")
	ErrInvalidCount       = errors.New("requested simulation count must be positive")
)

// Engine runs the full simulation batch for one participant pair: it spreads
// the requested count across the scenario catalog, drives each slot through
// the simulator and the metric extractor, and collects the successes.
type Engine struct {
	simulator   *Simulator
	extractor   *Extractor
	concurrency int
	logger      *zap.Logger
}

// NewEngine returns a batch engine. Concurrency caps how many simulations
// (and therefore oracle conversations) run at once; values below one mean
// sequential execution.
func NewEngine(extractor *Extractor, concurrency int, logger *zap.Logger) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Engine{
		simulator:   NewSimulator(logger),
		extractor:   extractor,
		concurrency: concurrency,
		logger:      logger,
	}
}

// RunBatch executes the requested number of simulations between the two
// participants. Results keep scenario order then slot order. A failing slot
// is logged and skipped; cancellation stops issuing new slots but the
// results collected so far are still returned and score cleanly.
func (e *Engine) RunBatch(ctx context.Context, a, b ResponseProvider, requested int) ([]*Result, error) {
	if a == nil || b == nil {
		return nil, ErrMissingParticipant
	}
	if requested <= 0 {
		return nil, ErrInvalidCount
	}

	slots := make([]Scenario, 0, requested)
	for _, allocation := range Distribute(requested) {
		e.logger.Info("scheduling simulations",
			zap.String("scenario", allocation.Scenario.ID),
			zap.Int("count", allocation.Count),
		)
		for i := 0; i < allocation.Count; i++ {
			slots = append(slots, allocation.Scenario)
		}
	}

	// Slot-indexed so concurrent workers never contend on ordering.
	collected := make([]*Result, len(slots))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, scenario := range slots {
		// Stop issuing new simulations once the batch is cancelled.
		if gctx.Err() != nil {
			break
		}

		i, scenario := i, scenario
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			conversation, err := e.simulator.Run(gctx, a, b, scenario)
			if err != nil {
				// A failed slot contributes nothing; siblings keep running.
				e.logger.Warn("simulation failed",
					zap.String("scenario", scenario.ID),
					zap.Int("slot", i),
					zap.Error(err),
				)
				return nil
			}

			metrics := e.extractor.Extract(gctx, conversation, scenario)

			collected[i] = &Result{
				ID:           uuid.NewString(),
				Scenario:     scenario.ID,
				Conversation: conversation,
				Metrics:      metrics,
				CreatedAt:    time.Now().UTC(),
			}
			return nil
		})
	}

	// Workers never return errors; Wait only observes context cancellation.
	_ = g.Wait()

	results := make([]*Result, 0, len(collected))
	for _, result := range collected {
		if result != nil {
			results = append(results, result)
		}
	}

	failed := len(slots) - len(results)
	fields := []zap.Field{
		zap.Int("requested", requested),
		zap.Int("completed", len(results)),
		zap.Int("failed", failed),
	}
	if ctx.Err() != nil {
		e.logger.Warn("batch interrupted, returning partial results", fields...)
	} else {
		e.logger.Info("batch complete", fields...)
	}

	return results, nil
}
