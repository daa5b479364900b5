package simulation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

func inflModel(mode domain.ReturnMode) domain.ReturnModelStrategy {
	return domain.ReturnModelStrategy{
		Mode:          mode,
		SequenceModel: domain.SequenceIndependent,
		Seed:          "infl-test",
		Persistence:   dec("0.3"),
		Inflation: map[domain.InflationType]domain.InflationAssumption{
			domain.InflationGeneral: {Rate: dec("0.025"), StdDev: dec("0.012")},
			domain.InflationMedical: {Rate: dec("0.045"), StdDev: dec("0.018")},
		},
	}
}

func TestDeterministicIndexCompoundsAnnualRate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := BuildInflationIndex(inflModel(domain.ReturnDeterministic), start, 24, "s")

	// Twelve monthly-equivalent steps compound back to the annual rate.
	year1 := idx.AtMonth(domain.InflationGeneral, 12)
	assert.True(t, year1.Sub(dec("1.025")).Abs().LessThan(dec("0.0001")), "got %s", year1)

	year2 := idx.AtMonth(domain.InflationGeneral, 24)
	assert.True(t, year2.Sub(dec("1.050625")).Abs().LessThan(dec("0.0002")), "got %s", year2)

	// Medical inflation runs its own faster stream.
	medical := idx.AtMonth(domain.InflationMedical, 12)
	assert.True(t, medical.Sub(dec("1.045")).Abs().LessThan(dec("0.0001")), "got %s", medical)
}

func TestApplyIsDirectionAgnostic(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2028, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := BuildInflationIndex(inflModel(domain.ReturnDeterministic), start, 36, "s")

	amount := dec("1000")
	inflated := idx.Apply(amount, domain.InflationGeneral, start, later)
	back := idx.Apply(inflated, domain.InflationGeneral, later, start)
	assert.True(t, back.Sub(amount).Abs().LessThan(dec("0.0001")), "round trip drifted to %s", back)
}

func TestApplyIdentityCases(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := start.AddDate(1, 0, 0)
	idx := BuildInflationIndex(inflModel(domain.ReturnDeterministic), start, 24, "s")

	amount := dec("500")
	assert.True(t, idx.Apply(amount, domain.InflationNone, start, later).Equal(amount))
	assert.True(t, idx.Apply(amount, domain.InflationGeneral, start, start).Equal(amount))
	assert.True(t, idx.Apply(decimal.Zero, domain.InflationGeneral, start, later).IsZero())
}

func TestApplyFallbackUsesYearOverrides(t *testing.T) {
	rm := inflModel(domain.ReturnDeterministic)
	assume := rm.Inflation[domain.InflationGeneral]
	assume.YearOverrides = map[int]decimal.Decimal{2040: dec("0.10")}
	rm.Inflation[domain.InflationGeneral] = assume

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := BuildInflationIndex(rm, start, 12, "s")

	// 2040 is far outside the 12-month index domain; the override year must
	// compound at 10 percent.
	from := time.Date(2040, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2041, 1, 1, 0, 0, 0, 0, time.UTC)
	got := idx.Apply(dec("1000"), domain.InflationGeneral, from, to)
	assert.True(t, got.Sub(dec("1100")).Abs().LessThan(dec("1")), "got %s", got)
}

func TestStochasticIndexIsSeedDeterministic(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := BuildInflationIndex(inflModel(domain.ReturnStochastic), start, 120, "seed-a")
	b := BuildInflationIndex(inflModel(domain.ReturnStochastic), start, 120, "seed-a")
	c := BuildInflationIndex(inflModel(domain.ReturnStochastic), start, 120, "seed-b")

	for m := 0; m <= 120; m += 12 {
		assert.True(t, a.AtMonth(domain.InflationGeneral, m).Equal(b.AtMonth(domain.InflationGeneral, m)),
			"same seed diverged at month %d", m)
	}
	assert.False(t, a.AtMonth(domain.InflationGeneral, 120).Equal(c.AtMonth(domain.InflationGeneral, 120)),
		"different seeds should diverge")
}

func TestStochasticTypesShareShocks(t *testing.T) {
	// General and medical ride the same shock stream scaled by their own
	// stdev, so a high-inflation path is high for both.
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	idx := BuildInflationIndex(inflModel(domain.ReturnStochastic), start, 12, "shared")

	general := idx.AtMonth(domain.InflationGeneral, 12)
	medical := idx.AtMonth(domain.InflationMedical, 12)
	genHigh := general.GreaterThan(dec("1.025"))
	medHigh := medical.GreaterThan(dec("1.045"))
	assert.Equal(t, genHigh, medHigh, "general %s medical %s moved apart", general, medical)
}
