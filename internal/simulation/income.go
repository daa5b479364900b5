package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// incomeModule pays active work periods: net salary to cash, 401k/HSA
// contributions into the owner's holdings.
type incomeModule struct{}

func (m *incomeModule) ID() string { return ModuleIncome }

func (m *incomeModule) Run(mc *MonthContext) error {
	for _, wp := range mc.Snap.WorkPeriods {
		if !mc.Alive[wp.PersonID] {
			continue
		}
		if mc.Date.Before(wp.Start) || !mc.Date.Before(wp.End) {
			continue
		}

		gross := mc.Adjust(wp.MonthlyIncome, domain.InflationGeneral)
		pretax := mc.Adjust(wp.Pretax401k, domain.InflationGeneral)
		roth := mc.Adjust(wp.Roth401k, domain.InflationGeneral)
		hsa := mc.Adjust(wp.HSAContribution, domain.InflationGeneral)
		match := mc.Adjust(wp.EmployerMatch, domain.InflationGeneral)

		net := gross.Sub(pretax).Sub(roth).Sub(hsa)
		if net.IsNegative() {
			net = decimal.Zero
		}
		mc.Ledger.DepositCash(net)

		// Pretax 401k and HSA contributions reduce the wage base; Roth does
		// not.
		mc.Tax.OrdinaryIncome = mc.Tax.OrdinaryIncome.Add(gross.Sub(pretax).Sub(hsa))
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:          "salary",
			Category:       "work",
			Amount:         net,
			OrdinaryIncome: gross.Sub(pretax).Sub(hsa),
		})

		m.contribute(mc, wp.PersonID, domain.BucketTraditional, pretax.Add(match), "401k")
		m.contribute(mc, wp.PersonID, domain.BucketRoth, roth, "roth 401k")
		m.contribute(mc, wp.PersonID, domain.BucketHSA, hsa, "hsa")
	}
	return nil
}

// contribute deposits into the person's first holding of the bucket, or cash
// when they hold none.
func (m *incomeModule) contribute(mc *MonthContext, personID string, bucket domain.TaxBucket, amount decimal.Decimal, label string) {
	if !amount.IsPositive() {
		return
	}
	var target *HoldingState
	for _, h := range mc.Ledger.HoldingsInBucket(bucket) {
		if h.OwnerID == personID {
			target = h
			break
		}
	}
	if target == nil {
		hs := mc.Ledger.HoldingsInBucket(bucket)
		if len(hs) > 0 {
			target = hs[0]
		}
	}

	if target == nil {
		mc.Ledger.DepositCash(amount)
	} else {
		mc.Ledger.Deposit(target, amount, mc.Date)
		mc.Rec.Action(domain.ActionRecord{
			Kind:      domain.ActionDeposit,
			Requested: amount,
			Resolved:  amount,
			TargetID:  target.ID,
			TaxType:   bucket,
		})
	}
	mc.Contributions = mc.Contributions.Add(amount)
	mc.YearContributions = mc.YearContributions.Add(amount)
	mc.Rec.Cashflow(domain.CashflowItem{
		Label:    label + " contribution",
		Category: "contribution",
		Amount:   amount,
		TaxFree:  amount,
	})
}

// socialSecurityModule pays claimed benefits, COLA-adjusted by the benefit
// inflation stream.
type socialSecurityModule struct{}

func (m *socialSecurityModule) ID() string { return ModuleSocialSecurity }

func (m *socialSecurityModule) Run(mc *MonthContext) error {
	for i := range mc.Snap.People {
		p := &mc.Snap.People[i]
		if !mc.Alive[p.ID] {
			continue
		}
		ss := mc.Snap.SocialSecurityFor(p.ID)
		if ss == nil || mc.Date.Before(ss.ClaimDate) {
			continue
		}

		est, ok := mc.Benefits[p.ID]
		if !ok {
			est = EstimateBenefit(p, ss, &mc.Snap.Tables)
			mc.Benefits[p.ID] = est
			if est.Clamped {
				mc.Log.Warnf("social security claim age clamped for %s", p.ID)
			}
		}

		amount := mc.Adjust(est.Monthly, domain.InflationBenefit)
		if !amount.IsPositive() {
			continue
		}
		mc.Ledger.DepositCash(amount)
		mc.Tax.SSBenefits = mc.Tax.SSBenefits.Add(amount)
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:    "social security " + p.ID,
			Category: "benefit",
			Amount:   amount,
		})
	}
	return nil
}

// pensionsModule pays recurring pensions, with survivor continuation at the
// configured share.
type pensionsModule struct{}

func (m *pensionsModule) ID() string { return ModulePensions }

func (m *pensionsModule) Run(mc *MonthContext) error {
	for _, pen := range mc.Strat.Pensions {
		if mc.Date.Before(pen.Start) {
			continue
		}
		amount := pen.Monthly
		if pen.COLAAdjusted {
			amount = mc.Adjust(amount, domain.InflationBenefit)
		}
		if pen.PersonID != "" && !mc.Alive[pen.PersonID] {
			amount = amount.Mul(pen.SurvivorShare)
		}
		if !amount.IsPositive() {
			continue
		}
		mc.Ledger.DepositCash(amount)
		mc.Tax.OrdinaryIncome = mc.Tax.OrdinaryIncome.Add(amount)
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:          pen.Label,
			Category:       "pension",
			Amount:         amount,
			OrdinaryIncome: amount,
		})
	}
	return nil
}

// eventsModule applies one-off dated cashflows falling inside this month.
type eventsModule struct{}

func (m *eventsModule) ID() string { return ModuleEvents }

func (m *eventsModule) Run(mc *MonthContext) error {
	monthEnd := nextMonth(mc.Date)
	for _, ev := range mc.Strat.Events {
		if ev.Date.Before(mc.Date) || !ev.Date.Before(monthEnd) {
			continue
		}
		item := domain.CashflowItem{Label: ev.Label, Category: "event", Amount: ev.Amount}
		if ev.Amount.IsPositive() {
			mc.Ledger.DepositCash(ev.Amount)
			if ev.Taxable {
				mc.Tax.OrdinaryIncome = mc.Tax.OrdinaryIncome.Add(ev.Amount)
				item.OrdinaryIncome = ev.Amount
			} else {
				item.TaxFree = ev.Amount
			}
		} else {
			need := ev.Amount.Neg()
			got := mc.Ledger.WithdrawCash(need)
			if got.LessThan(need) {
				// Event spending beyond cash is funded from the portfolio.
				got = got.Add(fundFromPortfolio(mc, need.Sub(got)))
			}
			mc.Spending = mc.Spending.Add(got)
			mc.YearSpending = mc.YearSpending.Add(got)
			item.Amount = got.Neg()
		}
		mc.Rec.Cashflow(item)
	}
	return nil
}
