package config

import (
	"github.com/rpgo/retirement-simulator/internal/domain"
)

// Normalize fills every unset strategy and table field with its default so
// downstream code never branches on missing configuration. Explicitly set
// zero-able fields keep their meaning: only empty or zero values merge.
func Normalize(input *domain.SimulationInput) {
	normalizeStrategies(&input.Snapshot.Scenario.Strategies)
	normalizeTables(&input.Snapshot.Tables)
}

func normalizeStrategies(s *domain.Strategies) {
	def := DefaultStrategies()

	rm := &s.ReturnModel
	if rm.Mode == "" {
		rm.Mode = def.ReturnModel.Mode
	}
	if rm.SequenceModel == "" {
		rm.SequenceModel = def.ReturnModel.SequenceModel
	}
	if rm.Correlation == "" {
		rm.Correlation = def.ReturnModel.Correlation
	}
	if rm.VolatilityScale.IsZero() {
		rm.VolatilityScale = def.ReturnModel.VolatilityScale
	}
	if rm.Seed == "" {
		rm.Seed = def.ReturnModel.Seed
	}
	if rm.StochasticRuns == 0 {
		rm.StochasticRuns = def.ReturnModel.StochasticRuns
	}
	if rm.Inflation == nil {
		rm.Inflation = def.ReturnModel.Inflation
	} else {
		for typ, assume := range def.ReturnModel.Inflation {
			if _, ok := rm.Inflation[typ]; !ok {
				rm.Inflation[typ] = assume
			}
		}
	}

	if s.Rebalancing.FrequencyMonths == 0 {
		s.Rebalancing.FrequencyMonths = def.Rebalancing.FrequencyMonths
	}
	if s.Rebalancing.DriftThreshold.IsZero() {
		s.Rebalancing.DriftThreshold = def.Rebalancing.DriftThreshold
	}
	if s.CashBuffer.TargetMonths == 0 {
		s.CashBuffer.TargetMonths = def.CashBuffer.TargetMonths
	}
	if s.CashBuffer.RefillBelowPct == 0 {
		s.CashBuffer.RefillBelowPct = def.CashBuffer.RefillBelowPct
	}

	if len(s.Withdrawal.Order) == 0 {
		s.Withdrawal.Order = def.Withdrawal.Order
		s.Withdrawal.DrainCashFirst = def.Withdrawal.DrainCashFirst
	}
	if s.Withdrawal.Guardrail.Kind == "" {
		s.Withdrawal.Guardrail.Kind = domain.GuardrailNone
	}
	if s.TaxableLot.Method == "" {
		s.TaxableLot.Method = def.TaxableLot.Method
	}
	if s.RothConversion.TargetBracketCeiling.IsZero() {
		s.RothConversion.TargetBracketCeiling = def.RothConversion.TargetBracketCeiling
	}
	if s.RMD.StartAge == 0 {
		s.RMD.StartAge = def.RMD.StartAge
	}
	if s.RMD.ExcessHandling == "" {
		s.RMD.ExcessHandling = def.RMD.ExcessHandling
	}

	if s.Healthcare.MedicareAge == 0 {
		s.Healthcare.MedicareAge = def.Healthcare.MedicareAge
	}
	if s.Healthcare.MonthlyPreMedicare.IsZero() && s.Healthcare.MonthlyMedicare.IsZero() {
		s.Healthcare.MonthlyPreMedicare = def.Healthcare.MonthlyPreMedicare
		s.Healthcare.MonthlyMedicare = def.Healthcare.MonthlyMedicare
	}

	if s.Tax.FilingStatus == "" {
		s.Tax.FilingStatus = def.Tax.FilingStatus
	}
	if s.Tax.PolicyYear == 0 {
		s.Tax.PolicyYear = def.Tax.PolicyYear
	}

	if s.Death.EstateExemption.IsZero() {
		s.Death.EstateExemption = def.Death.EstateExemption
	}
	if s.Death.EstateTaxRate.IsZero() {
		s.Death.EstateTaxRate = def.Death.EstateTaxRate
	}
}

func normalizeTables(t *domain.ReferenceTables) {
	def := DefaultTables()

	if len(t.WageIndex) == 0 {
		t.WageIndex = def.WageIndex
	}
	if t.BendPoints.First.IsZero() {
		t.BendPoints = def.BendPoints
	}
	if len(t.RetirementAges) == 0 {
		t.RetirementAges = def.RetirementAges
	}
	if len(t.RMDDivisors) == 0 {
		t.RMDDivisors = def.RMDDivisors
	}
	if len(t.OrdinaryBrackets) == 0 {
		t.OrdinaryBrackets = def.OrdinaryBrackets
	}
	if len(t.CapGainsBrackets) == 0 {
		t.CapGainsBrackets = def.CapGainsBrackets
	}
	if len(t.StandardDeduction) == 0 {
		t.StandardDeduction = def.StandardDeduction
	}
	if len(t.IRMAATiers) == 0 {
		t.IRMAATiers = def.IRMAATiers
	}
	if t.IRMAALookbackYears == 0 {
		t.IRMAALookbackYears = def.IRMAALookbackYears
	}
}
