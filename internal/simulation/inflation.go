package simulation

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
)

// InflationIndex holds cumulative price indexes per inflation type, one value
// per month boundary (index[0] = 1), plus the assumptions needed for
// out-of-domain fallback compounding.
type InflationIndex struct {
	StartDate   time.Time
	Months      int
	Series      map[domain.InflationType][]decimal.Decimal
	Assumptions map[domain.InflationType]domain.InflationAssumption
}

// BuildInflationIndex precomputes the cumulative index for every configured
// inflation type over the run horizon.
//
// Deterministic mode compounds each type's constant monthly-equivalent rate.
// Stochastic mode draws a single persistence-weighted shock sequence from the
// "inflation" stream, shared across types and scaled by each type's stdev, so
// medical and general inflation move together. Annual persistence converts to
// a monthly AR(1) coefficient unless the regime sequence model holds one
// shock per calendar year.
func BuildInflationIndex(rm domain.ReturnModelStrategy, startDate time.Time, months int, seed string) *InflationIndex {
	idx := &InflationIndex{
		StartDate:   startDate,
		Months:      months,
		Series:      make(map[domain.InflationType][]decimal.Decimal),
		Assumptions: rm.Inflation,
	}

	var shocks []float64
	if rm.Mode == domain.ReturnStochastic {
		src := NewRandSource(seed, "inflation")
		p, _ := rm.Persistence.Float64()
		if rm.SequenceModel == domain.SequenceRegime {
			shocks = src.AnnualRegimeSequence(months, p)
		} else {
			shocks = src.ShockSequence(months, MonthlyPersistence(p))
		}
	}

	for typ, assume := range rm.Inflation {
		if typ == domain.InflationNone {
			continue
		}
		series := make([]decimal.Decimal, months+1)
		series[0] = decimal.NewFromInt(1)

		annual, _ := assume.Rate.Float64()
		base := monthlyEquivalent(annual)
		stdevMonthly := 0.0
		if shocks != nil {
			sd, _ := assume.StdDev.Float64()
			stdevMonthly = sd / math.Sqrt(12)
		}

		for t := 1; t <= months; t++ {
			rate := base
			if shocks != nil {
				rate += shocks[t-1] * stdevMonthly
			}
			if rate < -0.99 {
				rate = -0.99
			}
			series[t] = series[t-1].Mul(decimal.NewFromFloat(1 + rate))
		}
		idx.Series[typ] = series
	}
	return idx
}

// monthlyEquivalent converts an annual rate to its compounding monthly rate.
func monthlyEquivalent(annual float64) float64 {
	return math.Pow(1+annual, 1.0/12.0) - 1
}

// Apply adjusts an amount for inflation of the given type between two dates.
// Direction-agnostic: when to precedes from the ratio deflates. Amounts are
// returned unchanged for type none, equal dates, or zero/non-finite input.
// The precomputed index is preferred whenever both dates fall inside its
// domain; otherwise per-year rate compounding with optional year overrides is
// used.
func (idx *InflationIndex) Apply(amount decimal.Decimal, typ domain.InflationType, from, to time.Time) decimal.Decimal {
	if typ == domain.InflationNone || amount.IsZero() || from.Equal(to) {
		return amount
	}

	series, ok := idx.Series[typ]
	if ok {
		fi, fok := idx.monthOffset(from)
		ti, tok := idx.monthOffset(to)
		if fok && tok {
			return amount.Mul(series[ti]).Div(series[fi])
		}
	}
	return amount.Mul(idx.fallbackFactor(typ, from, to))
}

// AtMonth returns the index ratio from month 0 to month t for a type, 1 when
// the type has no series.
func (idx *InflationIndex) AtMonth(typ domain.InflationType, t int) decimal.Decimal {
	series, ok := idx.Series[typ]
	if !ok || t < 0 || t >= len(series) {
		return decimal.NewFromInt(1)
	}
	return series[t]
}

func (idx *InflationIndex) monthOffset(d time.Time) (int, bool) {
	if d.Before(idx.StartDate) {
		if idx.StartDate.Year() == d.Year() && idx.StartDate.Month() == d.Month() {
			return 0, true
		}
		return 0, false
	}
	m := dateutil.MonthsBetween(idx.StartDate, d)
	if m > idx.Months {
		return 0, false
	}
	return m, true
}

// fallbackFactor compounds year by year using the override map where present,
// else the flat annual rate. Partial years compound fractionally by month.
func (idx *InflationIndex) fallbackFactor(typ domain.InflationType, from, to time.Time) decimal.Decimal {
	assume, ok := idx.Assumptions[typ]
	if !ok {
		return decimal.NewFromInt(1)
	}

	inverted := false
	if to.Before(from) {
		from, to = to, from
		inverted = true
	}

	factor := 1.0
	cursor := from
	for cursor.Before(to) {
		yearEnd := dateutil.BeginningOfYear(cursor).AddDate(1, 0, 0)
		segmentEnd := yearEnd
		if to.Before(segmentEnd) {
			segmentEnd = to
		}
		rate, _ := assume.Rate.Float64()
		if override, found := assume.YearOverrides[cursor.Year()]; found {
			rate, _ = override.Float64()
		}
		months := dateutil.MonthsBetween(cursor, segmentEnd)
		if months == 0 && cursor.Before(segmentEnd) {
			months = 1
		}
		factor *= math.Pow(1+rate, float64(months)/12.0)
		cursor = segmentEnd
	}

	d := decimal.NewFromFloat(factor)
	if inverted {
		return decimal.NewFromInt(1).Div(d)
	}
	return d
}
