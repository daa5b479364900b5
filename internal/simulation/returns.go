package simulation

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// BuildReturns precomputes every holding's monthly return sequence for one
// path, plus the monthly cash yield. Sequences are generated up front so a
// path's market outcome is fixed by the seed before any module runs.
//
// Deterministic mode compounds each holding's expected return. Stochastic
// mode scales persistence-weighted shocks by the holding's monthly
// volatility; the correlated model shares one "market" stream across
// holdings while the independent model derives a stream per holding id.
// Historical mode replays actual years starting from a seeded offset,
// wrapping around the table.
func BuildReturns(snap *domain.SimulationSnapshot, rm domain.ReturnModelStrategy, months int, seed string) (map[string][]decimal.Decimal, decimal.Decimal) {
	returns := make(map[string][]decimal.Decimal)

	cashAnnual, _ := rm.CashYield.Float64()
	cashYield := decimal.NewFromFloat(monthlyEquivalent(cashAnnual))

	switch rm.Mode {
	case domain.ReturnStochastic:
		var shared []float64
		if rm.Correlation != domain.CorrelationIndependent {
			shared = drawShocks(NewRandSource(seed, "market"), rm, months)
		}
		for _, acct := range snap.Investments {
			for _, h := range acct.Holdings {
				shocks := shared
				if shocks == nil {
					shocks = drawShocks(NewRandSource(seed, "holding:"+h.ID), rm, months)
				}
				returns[h.ID] = stochasticSeries(&h, rm, shocks)
			}
		}
	case domain.ReturnHistorical:
		if len(snap.Tables.HistoricalReturns) > 0 {
			src := NewRandSource(seed, "historical")
			start := int(src.Uniform() * float64(len(snap.Tables.HistoricalReturns)))
			for _, acct := range snap.Investments {
				for _, h := range acct.Holdings {
					returns[h.ID] = historicalSeries(&h, snap.Tables.HistoricalReturns, start, months)
				}
			}
			break
		}
		fallthrough
	default: // deterministic
		for _, acct := range snap.Investments {
			for _, h := range acct.Holdings {
				annual, _ := h.ExpectedReturn.Float64()
				monthly := decimal.NewFromFloat(monthlyEquivalent(annual))
				seq := make([]decimal.Decimal, months)
				for t := range seq {
					seq[t] = monthly
				}
				returns[h.ID] = seq
			}
		}
	}
	return returns, cashYield
}

func drawShocks(src *RandSource, rm domain.ReturnModelStrategy, months int) []float64 {
	p, _ := rm.Persistence.Float64()
	if rm.SequenceModel == domain.SequenceRegime {
		return src.AnnualRegimeSequence(months, p)
	}
	return src.ShockSequence(months, MonthlyPersistence(p))
}

func stochasticSeries(h *domain.Holding, rm domain.ReturnModelStrategy, shocks []float64) []decimal.Decimal {
	annual, _ := h.ExpectedReturn.Float64()
	base := monthlyEquivalent(annual)

	vol, _ := h.Volatility.Float64()
	scale, _ := rm.VolatilityScale.Float64()
	if scale == 0 {
		scale = 1
	}
	volMonthly := vol / math.Sqrt(12) * scale

	seq := make([]decimal.Decimal, len(shocks))
	for t, shock := range shocks {
		r := base + shock*volMonthly
		if r < -0.99 {
			r = -0.99
		}
		seq[t] = decimal.NewFromFloat(r)
	}
	return seq
}

func historicalSeries(h *domain.Holding, years []domain.HistoricalYear, start, months int) []decimal.Decimal {
	seq := make([]decimal.Decimal, months)
	for t := 0; t < months; t++ {
		year := years[(start+t/12)%len(years)]
		annual, ok := year.Returns[h.HoldingType]
		if !ok {
			annual = h.ExpectedReturn
		}
		f, _ := annual.Float64()
		seq[t] = decimal.NewFromFloat(monthlyEquivalent(f))
	}
	return seq
}
