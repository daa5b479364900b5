package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/id"
)

// Options tune one engine run beyond what the scenario itself configures.
type Options struct {
	// Seed overrides the scenario's return model seed.
	Seed string
	// Trials overrides the scenario's stochastic run count. Values below 1
	// fall back to the scenario, then to a single path.
	Trials int
	// Explain keeps full per-module audit records for the canonical path.
	Explain bool
	// Monthly keeps the per-month balance series in the result.
	Monthly bool
}

// Engine runs simulations. It is safe for concurrent use; every run owns its
// state exclusively.
type Engine struct {
	log      Logger
	progress *ProgressBroker
}

func NewEngine(log Logger) *Engine {
	if log == nil {
		log = NopLogger{}
	}
	return &Engine{log: log, progress: NewProgressBroker()}
}

// Progress exposes the run progress broker.
func (e *Engine) Progress() *ProgressBroker { return e.progress }

// Run executes one simulation and always returns a terminal SimulationRun
// envelope. Validation failures and internal errors produce an error-status
// run plus the error; cancellation mid-way through a stochastic run produces
// a success-status run flagged as partial.
func (e *Engine) Run(ctx context.Context, input *domain.SimulationInput, opts Options) (*domain.SimulationRun, error) {
	run := &domain.SimulationRun{
		ID:         id.New(),
		ScenarioID: input.Snapshot.Scenario.ID,
		StartedAt:  time.Now().UTC(),
	}
	result, err := e.execute(ctx, run.ID, input, opts)
	run.FinishedAt = time.Now().UTC()
	if err != nil {
		run.Status = domain.RunError
		run.ErrorMessage = err.Error()
		e.log.Errorf("run %s failed: %v", run.ID, err)
		return run, err
	}
	run.Status = domain.RunSuccess
	run.Result = result
	return run, nil
}

func (e *Engine) execute(ctx context.Context, runID string, input *domain.SimulationInput, opts Options) (result *domain.SimulationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("simulation panic: %v", r)
		}
	}()
	defer e.progress.Forget(runID)

	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	rm := input.Snapshot.Scenario.Strategies.ReturnModel
	seed := opts.Seed
	if seed == "" {
		seed = rm.Seed
	}
	if seed == "" {
		seed = "default"
	}
	trials := opts.Trials
	if trials < 1 {
		trials = rm.StochasticRuns
	}
	if trials < 1 {
		trials = 1
	}
	if rm.Mode != domain.ReturnStochastic {
		// Non-stochastic paths are identical across trials.
		trials = 1
	}

	e.log.Infof("run %s: %d months, %d trials, seed %q", runID, input.Settings.Months, trials, seed)

	if trials == 1 {
		path, err := runPath(input, seed+":trial:0", opts.Explain, e.log)
		if err != nil {
			return nil, err
		}
		return buildResult(path, nil, false, opts), nil
	}

	out, err := runStochastic(ctx, input, seed, trials, opts.Explain, e.log, func(completed int) {
		e.progress.Publish(domain.ProgressUpdate{
			RunID:     runID,
			Completed: completed,
			Target:    trials,
			UpdatedAt: time.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	if out.Cancelled {
		e.progress.Publish(domain.ProgressUpdate{
			RunID:     runID,
			Completed: len(out.Trials),
			Target:    trials,
			Cancelled: true,
			UpdatedAt: time.Now().UTC(),
		})
	}
	return buildResult(out.Canonical, out.Trials, out.Cancelled, opts), nil
}

// buildResult assembles the result envelope from the canonical path and the
// optional trial digests.
func buildResult(path *pathOutcome, trials []domain.StochasticRunSummary, cancelled bool, opts Options) *domain.SimulationResult {
	result := &domain.SimulationResult{
		Yearly: path.Yearly,
		Trials: trials,
		Summary: domain.ResultSummary{
			EndingBalance:           path.EndingBalance,
			MinBalance:              path.MinBalance,
			MaxBalance:              path.MaxBalance,
			GuardrailAvg:            path.GuardrailAvg,
			GuardrailMin:            path.GuardrailMin,
			DepletionMonth:          path.DepletionMonth,
			ShortfallMonths:         path.ShortfallMonths,
			StochasticRunsCancelled: cancelled,
		},
	}
	if opts.Monthly {
		result.Monthly = path.Monthly
	}
	if opts.Explain {
		result.Explanations = path.Explanations
	}
	return result
}
