package simulation

import (
	"context"
	"fmt"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// stochasticOutcome is the Monte Carlo digest: the canonical trial's full
// path plus a per-trial summary. Cancelled marks a partial result.
type stochasticOutcome struct {
	Canonical *pathOutcome
	Trials    []domain.StochasticRunSummary
	Cancelled bool
}

// runStochastic runs the requested number of independent trials. Each trial
// derives its own random streams from "<seed>:trial:<n>" so results are
// reproducible regardless of trial count, and owns a fresh ledger so no
// state leaks between trials. Only trial zero keeps full explanations.
// Cancellation is honored between trials; finished trials are kept.
func runStochastic(ctx context.Context, input *domain.SimulationInput, seed string, trials int, explain bool, log Logger, onTrial func(completed int)) (*stochasticOutcome, error) {
	out := &stochasticOutcome{}
	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			out.Cancelled = true
			log.Warnf("stochastic run cancelled after %d of %d trials", i, trials)
			break
		}

		trialSeed := fmt.Sprintf("%s:trial:%d", seed, i)
		path, err := runPath(input, trialSeed, explain && i == 0, log)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		if i == 0 {
			out.Canonical = path
		}
		out.Trials = append(out.Trials, domain.StochasticRunSummary{
			Trial:                i,
			EndingBalance:        path.EndingBalance,
			MinBalance:           path.MinBalance,
			GuardrailAvg:         path.GuardrailAvg,
			GuardrailMin:         path.GuardrailMin,
			GuardrailBelowOnePct: path.GuardrailBelowOnePct,
		})
		if onTrial != nil {
			onTrial(i + 1)
		}
	}
	if out.Canonical == nil {
		// Cancelled before the first trial finished. Cancellation is not a
		// failure; the envelope carries no balances, only the flag.
		out.Canonical = &pathOutcome{GuardrailAvg: one, GuardrailMin: one}
	}
	return out, nil
}
