package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
)

// Age 59.5 in months, the penalty boundary for tax-advantaged withdrawals.
const penaltyFreeAgeMonths = 59*12 + 6

func nextMonth(d time.Time) time.Time { return dateutil.AddMonths(d, 1) }

// fundingModule fixes the month's guardrail factor and pre-funds cash for the
// planned spending that follows it in the pipeline. It must run before every
// spending module so they all see the same factor and a funded cash balance.
type fundingModule struct{}

func (m *fundingModule) ID() string { return ModuleFunding }

func (m *fundingModule) Run(mc *MonthContext) error {
	needs, wants := plannedLineItems(mc)
	healthcare := plannedHealthcare(mc)
	charitable, _ := plannedCharitable(mc)
	other := healthcare.Add(charitable)

	factor := guardrailFactor(mc, needs, wants, other)
	mc.Guard.Factor = factor
	mc.Guard.FactorSum = mc.Guard.FactorSum.Add(factor)
	if mc.Guard.Months == 0 || factor.LessThan(mc.Guard.FactorMin) {
		mc.Guard.FactorMin = factor
	}
	mc.Guard.Months++
	if factor.LessThan(one) {
		mc.Guard.MonthsBelowOne++
	}

	plan := needs.Add(wants.Mul(factor)).Add(other)
	if !plan.IsPositive() {
		return nil
	}

	need := plan
	if mc.Strat.Withdrawal.DrainCashFirst {
		need = plan.Sub(mc.Ledger.CashBalance())
	}
	if need.IsPositive() {
		funded := fundFromPortfolio(mc, need)
		mc.Ledger.DepositCash(funded)
		if funded.LessThan(need) {
			mc.Log.Debugf("month %d: funded %s of %s planned", mc.Month, funded, need)
		}
	}
	return nil
}

// fundFromPortfolio raises cash by selling holdings in the configured bucket
// order and returns the gross amount raised, at most the requested amount.
// Realized gains, ordinary income, and early-withdrawal penalty bases are
// routed into the year's tax state; the proceeds are NOT deposited, the
// caller decides where they go.
func fundFromPortfolio(mc *MonthContext, amount decimal.Decimal) decimal.Decimal {
	raised := decimal.Zero
	for _, bucket := range mc.Strat.Withdrawal.Order {
		remaining := amount.Sub(raised)
		if !remaining.IsPositive() {
			break
		}
		raised = raised.Add(fundFromBucket(mc, bucket, remaining))
	}
	mc.MonthFunded = mc.MonthFunded.Add(raised)
	return raised
}

func fundFromBucket(mc *MonthContext, bucket domain.TaxBucket, amount decimal.Decimal) decimal.Decimal {
	raised := decimal.Zero
	for _, h := range mc.Ledger.HoldingsInBucket(bucket) {
		remaining := amount.Sub(raised)
		if !remaining.IsPositive() {
			break
		}
		if !h.Balance.IsPositive() {
			continue
		}
		raised = raised.Add(sellFromHolding(mc, h, remaining))
	}
	return raised
}

// sellFromHolding withdraws up to the requested amount from one holding,
// applying the bucket's tax and penalty rules.
func sellFromHolding(mc *MonthContext, h *HoldingState, requested decimal.Decimal) decimal.Decimal {
	penalty := false
	take := requested

	switch h.TaxType {
	case domain.BucketTraditional:
		ok, withPenalty := traditionalAccess(mc, h.OwnerID)
		if !ok {
			return decimal.Zero
		}
		penalty = withPenalty
	case domain.BucketRoth:
		take, penalty = rothEarningsAccess(mc, h.OwnerID, requested)
		if !take.IsPositive() {
			return decimal.Zero
		}
	}

	res := mc.Ledger.Withdraw(h, take)
	if !res.Gross.IsPositive() {
		return decimal.Zero
	}

	switch h.TaxType {
	case domain.BucketTaxable:
		mc.Tax.CapitalGains = mc.Tax.CapitalGains.Add(res.Gain)
	case domain.BucketTraditional:
		mc.Tax.OrdinaryIncome = mc.Tax.OrdinaryIncome.Add(res.Gross)
		mc.TraditionalTakenYear[h.OwnerID] = mc.TraditionalTakenYear[h.OwnerID].Add(res.Gross)
		if penalty {
			mc.Tax.PenaltyBase = mc.Tax.PenaltyBase.Add(res.Gross)
		}
	case domain.BucketRoth:
		mc.Ledger.ConsumeMaturedLadder(mc.Date, res.Gross)
		mc.Tax.TaxFreeIncome = mc.Tax.TaxFreeIncome.Add(res.Gross)
		if penalty {
			mc.Tax.PenaltyBase = mc.Tax.PenaltyBase.Add(res.Gross)
		}
	case domain.BucketRothBasis, domain.BucketHSA:
		// Contributory basis and qualified medical money come out free.
		mc.Tax.TaxFreeIncome = mc.Tax.TaxFreeIncome.Add(res.Gross)
	}

	mc.Rec.Action(domain.ActionRecord{
		Kind:      domain.ActionWithdraw,
		Requested: requested,
		Resolved:  res.Gross,
		SourceID:  h.ID,
		TaxType:   h.TaxType,
		Penalty:   penalty,
	})
	return res.Gross
}

// traditionalAccess decides whether a traditional holding may be tapped and
// whether the 10 percent penalty applies. Under 59.5, a 72(t) schedule waives
// the penalty, AllowPenalty accepts it, and otherwise the holding is skipped.
func traditionalAccess(mc *MonthContext, ownerID string) (ok, penalty bool) {
	if ownerAgeMonths(mc, ownerID) >= penaltyFreeAgeMonths {
		return true, false
	}
	er := mc.Strat.EarlyRetirement
	if er.Use72t {
		return true, false
	}
	if er.AllowPenalty {
		return true, true
	}
	return false, false
}

// rothEarningsAccess caps an early Roth earnings withdrawal at the matured
// ladder principal unless penalties are accepted.
func rothEarningsAccess(mc *MonthContext, ownerID string, requested decimal.Decimal) (take decimal.Decimal, penalty bool) {
	if ownerAgeMonths(mc, ownerID) >= penaltyFreeAgeMonths {
		return requested, false
	}
	matured := mc.Ledger.MaturedLadder(mc.Date)
	if matured.GreaterThanOrEqual(requested) {
		return requested, false
	}
	if mc.Strat.EarlyRetirement.AllowPenalty {
		return requested, true
	}
	return matured, false
}

// ownerAgeMonths resolves the holding owner's age, falling back to the oldest
// living person for household accounts with no owner recorded.
func ownerAgeMonths(mc *MonthContext, ownerID string) int {
	if p := mc.Snap.PersonByID(ownerID); p != nil {
		return mc.AgeMonths(p)
	}
	if p := mc.OldestAlive(); p != nil {
		return mc.AgeMonths(p)
	}
	return 0
}
