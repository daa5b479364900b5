package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	input := &domain.SimulationInput{}
	Normalize(input)

	strat := input.Snapshot.Scenario.Strategies
	assert.Equal(t, domain.ReturnDeterministic, strat.ReturnModel.Mode)
	assert.Equal(t, domain.CorrelationCorrelated, strat.ReturnModel.Correlation)
	assert.True(t, strat.ReturnModel.VolatilityScale.Equal(decimal.NewFromInt(1)))
	assert.NotEmpty(t, strat.ReturnModel.Seed)
	assert.Contains(t, strat.ReturnModel.Inflation, domain.InflationGeneral)
	assert.Contains(t, strat.ReturnModel.Inflation, domain.InflationMedical)

	assert.Equal(t, domain.AllBuckets, strat.Withdrawal.Order)
	assert.Equal(t, domain.GuardrailNone, strat.Withdrawal.Guardrail.Kind)
	assert.Equal(t, domain.LotAverage, strat.TaxableLot.Method)
	assert.Equal(t, 73, strat.RMD.StartAge)
	assert.Equal(t, domain.RMDExcessSpend, strat.RMD.ExcessHandling)
	assert.Equal(t, 65, strat.Healthcare.MedicareAge)
	assert.Equal(t, domain.FilingMarried, strat.Tax.FilingStatus)
	assert.False(t, strat.Death.EstateExemption.IsZero())

	tables := input.Snapshot.Tables
	assert.NotEmpty(t, tables.OrdinaryBrackets[domain.FilingSingle])
	assert.NotEmpty(t, tables.OrdinaryBrackets[domain.FilingMarried])
	assert.NotEmpty(t, tables.RMDDivisors)
	assert.NotEmpty(t, tables.WageIndex)
	assert.Equal(t, 2, tables.IRMAALookbackYears)
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	input := &domain.SimulationInput{}
	input.Settings.Months = 120
	strat := &input.Snapshot.Scenario.Strategies
	strat.ReturnModel.Mode = domain.ReturnStochastic
	strat.ReturnModel.Seed = "my-seed"
	strat.Tax.FilingStatus = domain.FilingSingle
	strat.Withdrawal.Order = []domain.TaxBucket{domain.BucketRoth}
	strat.RMD.StartAge = 75

	Normalize(input)

	assert.Equal(t, 120, input.Settings.Months)
	assert.Equal(t, domain.ReturnStochastic, strat.ReturnModel.Mode)
	assert.Equal(t, "my-seed", strat.ReturnModel.Seed)
	assert.Equal(t, domain.FilingSingle, strat.Tax.FilingStatus)
	assert.Equal(t, []domain.TaxBucket{domain.BucketRoth}, strat.Withdrawal.Order)
	assert.Equal(t, 75, strat.RMD.StartAge)
}

func TestNormalizeMergesPartialInflation(t *testing.T) {
	input := &domain.SimulationInput{}
	strat := &input.Snapshot.Scenario.Strategies
	strat.ReturnModel.Inflation = map[domain.InflationType]domain.InflationAssumption{
		domain.InflationGeneral: {Rate: decimal.RequireFromString("0.04")},
	}

	Normalize(input)

	// The explicit rate survives; the missing streams get defaults.
	assert.True(t, strat.ReturnModel.Inflation[domain.InflationGeneral].Rate.Equal(decimal.RequireFromString("0.04")))
	assert.Contains(t, strat.ReturnModel.Inflation, domain.InflationMedical)
	assert.Contains(t, strat.ReturnModel.Inflation, domain.InflationBenefit)
}
