package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// cashBufferModule keeps a target number of months of planned spending in
// cash, refilled from taxable holdings once the balance drops below the
// refill threshold. The refill is an internal transfer; realized gains land
// in the year's tax state.
type cashBufferModule struct{}

func (m *cashBufferModule) ID() string { return ModuleCashBuffer }

func (m *cashBufferModule) Run(mc *MonthContext) error {
	cb := mc.Strat.CashBuffer
	if !cb.Enabled || cb.TargetMonths <= 0 {
		return nil
	}

	needs, wants := plannedLineItems(mc)
	monthly := needs.Add(wants).Add(plannedHealthcare(mc))
	target := monthly.Mul(decimal.NewFromInt(int64(cb.TargetMonths)))
	if !target.IsPositive() {
		return nil
	}

	balance := mc.Ledger.CashBalance()
	threshold := target.Mul(decimal.NewFromInt(int64(cb.RefillBelowPct))).Div(decimal.NewFromInt(100))
	if balance.GreaterThanOrEqual(threshold) {
		return nil
	}

	raised := fundFromBucket(mc, domain.BucketTaxable, target.Sub(balance))
	if raised.IsPositive() {
		mc.Ledger.DepositCash(raised)
		mc.Log.Debugf("month %d: cash buffer refilled %s", mc.Month, raised)
	}
	return nil
}
