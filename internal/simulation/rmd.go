package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// rmdModule forces each December the year's remaining required minimum
// distribution per person: the year-start traditional balance over the age
// divisor, less distributions already taken (withdrawals and QCDs both
// count). The excess beyond what spending consumed is routed per strategy.
type rmdModule struct {
	totalMonths int
}

func (m *rmdModule) ID() string { return ModuleRMD }

func (m *rmdModule) Run(mc *MonthContext) error {
	if !mc.IsDecember(m.totalMonths) {
		return nil
	}
	startAge := mc.Strat.RMD.StartAge
	if startAge <= 0 {
		startAge = 73
	}

	for i := range mc.Snap.People {
		p := &mc.Snap.People[i]
		if !mc.Alive[p.ID] || mc.AgeYears(p) < startAge {
			continue
		}
		base := mc.YearStartTraditional[p.ID]
		if !base.IsPositive() {
			continue
		}
		divisor := RMDDivisor(mc.Snap.Tables.RMDDivisors, mc.AgeYears(p))
		if !divisor.IsPositive() {
			mc.Log.Warnf("no rmd divisor for age %d", mc.AgeYears(p))
			continue
		}
		required := base.Div(divisor)
		remaining := required.Sub(mc.TraditionalTakenYear[p.ID])
		if !remaining.IsPositive() {
			continue
		}
		m.distribute(mc, p.ID, remaining)
	}
	return nil
}

// distribute withdraws the forced amount from the person's traditional
// holdings and routes it per the excess handling strategy.
func (m *rmdModule) distribute(mc *MonthContext, personID string, amount decimal.Decimal) {
	taken := decimal.Zero
	for _, h := range mc.Ledger.HoldingsInBucket(domain.BucketTraditional) {
		if h.OwnerID != personID {
			continue
		}
		remaining := amount.Sub(taken)
		if !remaining.IsPositive() {
			break
		}
		res := mc.Ledger.Withdraw(h, remaining)
		if !res.Gross.IsPositive() {
			continue
		}
		taken = taken.Add(res.Gross)
		mc.Rec.Action(domain.ActionRecord{
			Kind:      domain.ActionRMD,
			Requested: remaining,
			Resolved:  res.Gross,
			SourceID:  h.ID,
			TaxType:   domain.BucketTraditional,
		})
	}
	if !taken.IsPositive() {
		return
	}

	mc.Tax.OrdinaryIncome = mc.Tax.OrdinaryIncome.Add(taken)
	mc.TraditionalTakenYear[personID] = mc.TraditionalTakenYear[personID].Add(taken)

	switch mc.Strat.RMD.ExcessHandling {
	case domain.RMDExcessReinvest:
		if hs := mc.Ledger.HoldingsInBucket(domain.BucketTaxable); len(hs) > 0 {
			mc.Ledger.Deposit(hs[0], taken, mc.Date)
			mc.Rec.Action(domain.ActionRecord{
				Kind:      domain.ActionDeposit,
				Requested: taken,
				Resolved:  taken,
				TargetID:  hs[0].ID,
				TaxType:   domain.BucketTaxable,
			})
			return
		}
		mc.Ledger.DepositCash(taken)
	case domain.RMDExcessConvert:
		if hs := mc.Ledger.HoldingsInBucket(domain.BucketRoth); len(hs) > 0 {
			mc.Ledger.Deposit(hs[0], taken, mc.Date)
			mc.Ledger.RecordConversion(mc.Date, taken)
			mc.Rec.Action(domain.ActionRecord{
				Kind:      domain.ActionConvert,
				Requested: taken,
				Resolved:  taken,
				TargetID:  hs[0].ID,
				TaxType:   domain.BucketRoth,
			})
			return
		}
		mc.Ledger.DepositCash(taken)
	default: // spend
		mc.Ledger.DepositCash(taken)
	}
}
