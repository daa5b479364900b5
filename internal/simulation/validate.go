package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// ValidateInput checks the frozen input before the monthly loop starts.
// Malformed fields raise ValidationError; settings that contradict each
// other raise ConfigurationInconsistencyError.
func ValidateInput(input *domain.SimulationInput) error {
	if input.Settings.Months < 0 {
		return validationErrorf("settings.months", "must not be negative, got %d", input.Settings.Months)
	}
	if input.Settings.StartDate.IsZero() {
		return validationErrorf("settings.start_date", "required")
	}
	snap := &input.Snapshot
	if len(snap.People) == 0 {
		return validationErrorf("people", "at least one person required")
	}
	seen := make(map[string]bool, len(snap.People))
	for i, p := range snap.People {
		if p.ID == "" {
			return validationErrorf("people", "person %d has no id", i)
		}
		if seen[p.ID] {
			return validationErrorf("people", "duplicate person id %q", p.ID)
		}
		seen[p.ID] = true
		if p.BirthDate.IsZero() {
			return validationErrorf("people", "person %q has no birth date", p.ID)
		}
	}
	for _, ss := range snap.SocialSecurity {
		if snap.PersonByID(ss.PersonID) == nil {
			return validationErrorf("social_security", "unknown person %q", ss.PersonID)
		}
		if ss.ClaimDate.IsZero() {
			return validationErrorf("social_security", "person %q has no claim date", ss.PersonID)
		}
	}
	for _, wp := range snap.WorkPeriods {
		if snap.PersonByID(wp.PersonID) == nil {
			return validationErrorf("work_periods", "unknown person %q", wp.PersonID)
		}
		if !wp.End.After(wp.Start) {
			return validationErrorf("work_periods", "person %q period end not after start", wp.PersonID)
		}
	}
	for _, item := range snap.Spending {
		if item.Monthly.IsNegative() {
			return validationErrorf("spending", "item %q has negative amount", item.Label)
		}
	}
	for _, acct := range snap.Investments {
		for _, h := range acct.Holdings {
			if h.Balance.IsNegative() {
				return validationErrorf("investments", "holding %q has negative balance", h.ID)
			}
		}
	}
	return validateStrategies(&snap.Scenario.Strategies)
}

func validateStrategies(strat *domain.Strategies) error {
	valid := make(map[domain.TaxBucket]bool, len(domain.AllBuckets))
	for _, b := range domain.AllBuckets {
		valid[b] = true
	}
	for _, b := range strat.Withdrawal.Order {
		if !valid[b] {
			return &ConfigurationInconsistencyError{Reason: "unknown withdrawal bucket " + string(b)}
		}
	}

	switch strat.Withdrawal.Guardrail.Kind {
	case "", domain.GuardrailNone, domain.GuardrailLegacy, domain.GuardrailCapWants,
		domain.GuardrailPortfolioHealth, domain.GuardrailGuyton:
	default:
		return &ConfigurationInconsistencyError{
			Reason: "unknown guardrail kind " + string(strat.Withdrawal.Guardrail.Kind),
		}
	}

	if n := len(strat.Death.Beneficiaries); n > 0 {
		sum := decimal.Zero
		for _, b := range strat.Death.Beneficiaries {
			sum = sum.Add(b.SharePct)
		}
		if !sum.Equal(decimal.NewFromInt(1)) {
			return &ConfigurationInconsistencyError{
				Reason: "beneficiary shares sum to " + sum.String() + ", want 1",
			}
		}
	}

	if strat.CashBuffer.Enabled && strat.CashBuffer.TargetMonths <= 0 {
		return &ConfigurationInconsistencyError{Reason: "cash buffer enabled with no target months"}
	}
	if strat.RothLadder.Enabled && strat.RothLadder.AnnualAmount.IsNegative() {
		return &ConfigurationInconsistencyError{Reason: "roth ladder annual amount is negative"}
	}
	return nil
}
