package simulation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// QCD eligibility age in months (70.5).
const qcdAgeMonths = 70*12 + 6

// spendCash pays an expense from cash, topping up from the portfolio when
// cash falls short. The unpayable remainder is recorded as shortfall rather
// than failing the path.
func spendCash(mc *MonthContext, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	got := mc.Ledger.WithdrawCash(amount)
	if got.LessThan(amount) {
		extra := fundFromPortfolio(mc, amount.Sub(got))
		got = got.Add(extra)
	}
	if short := amount.Sub(got); short.IsPositive() {
		mc.Shortfall = mc.Shortfall.Add(short)
	}
	mc.Spending = mc.Spending.Add(got)
	mc.YearSpending = mc.YearSpending.Add(got)
	return got
}

// plannedLineItems totals this month's active spending line items, inflated
// to current dollars and split into needs and wants.
func plannedLineItems(mc *MonthContext) (needs, wants decimal.Decimal) {
	for _, item := range mc.Snap.Spending {
		if !lineItemActive(&item, mc) {
			continue
		}
		amount := mc.Adjust(item.Monthly, item.InflationType)
		if item.Category == domain.SpendWant {
			wants = wants.Add(amount)
		} else {
			needs = needs.Add(amount)
		}
	}
	return needs, wants
}

func lineItemActive(item *domain.SpendingLineItem, mc *MonthContext) bool {
	if item.Start != nil && mc.Date.Before(*item.Start) {
		return false
	}
	if item.End != nil && !mc.Date.Before(*item.End) {
		return false
	}
	return true
}

// spendingModule pays the recurring line items. Wants are scaled by the
// guardrail factor fixed earlier in the month by the funding module.
type spendingModule struct{}

func (m *spendingModule) ID() string { return ModuleSpending }

func (m *spendingModule) Run(mc *MonthContext) error {
	for _, item := range mc.Snap.Spending {
		if !lineItemActive(&item, mc) {
			continue
		}
		amount := mc.Adjust(item.Monthly, item.InflationType)
		if item.Category == domain.SpendWant {
			amount = amount.Mul(mc.Guard.Factor)
		}
		spent := spendCash(mc, amount)
		if !spent.IsPositive() {
			continue
		}
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:    item.Label,
			Category: string(item.Category),
			Amount:   spent.Neg(),
		})
	}
	return nil
}

// plannedHealthcare totals the month's medical spending: the pre-Medicare or
// Medicare premium per living person scaled by the age curve, IRMAA
// surcharges from the lookback year's MAGI, and any active long-term care
// block. All amounts ride medical inflation.
func plannedHealthcare(mc *MonthContext) decimal.Decimal {
	hc := mc.Strat.Healthcare
	total := decimal.Zero
	for i := range mc.Snap.People {
		p := &mc.Snap.People[i]
		if !mc.Alive[p.ID] {
			continue
		}
		age := mc.AgeYears(p)

		base := hc.MonthlyPreMedicare
		onMedicare := age >= hc.MedicareAge
		if onMedicare {
			base = hc.MonthlyMedicare
		}
		person := mc.Adjust(base, domain.InflationMedical).Mul(ageCurveFactor(hc.AgeCurve, age))

		if onMedicare {
			person = person.Add(irmaaForMonth(mc))
		}
		if ltc := hc.LongTermCare; ltc != nil && age >= ltc.StartAge {
			elapsed := mc.AgeMonths(p) - ltc.StartAge*12
			if elapsed < ltc.DurationMonths {
				person = person.Add(mc.Adjust(ltc.Monthly, domain.InflationMedical))
			}
		}
		total = total.Add(person)
	}
	return total
}

// irmaaForMonth resolves the Medicare surcharge from MAGI two years back (the
// configured lookback). Years before the simulation start carry no surcharge.
func irmaaForMonth(mc *MonthContext) decimal.Decimal {
	tables := &mc.Snap.Tables
	lookback := tables.IRMAALookbackYears
	if lookback <= 0 {
		lookback = 2
	}
	magi, ok := mc.MAGIHistory[mc.Date.Year()-lookback]
	if !ok {
		return decimal.Zero
	}
	tiers := tables.IRMAATiers[mc.Filing]
	return IRMAASurcharge(tiers, magi)
}

// ageCurveFactor interpolates the declining-health multiplier at an age,
// clamping outside the table. An empty curve means no scaling.
func ageCurveFactor(curve []domain.AgeCurvePoint, age int) decimal.Decimal {
	if len(curve) == 0 {
		return one
	}
	sorted := make([]domain.AgeCurvePoint, len(curve))
	copy(sorted, curve)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Age < sorted[j].Age })

	if age <= sorted[0].Age {
		return sorted[0].Factor
	}
	last := sorted[len(sorted)-1]
	if age >= last.Age {
		return last.Factor
	}
	for i := 1; i < len(sorted); i++ {
		if age <= sorted[i].Age {
			lo, hi := sorted[i-1], sorted[i]
			span := decimal.NewFromInt(int64(hi.Age - lo.Age))
			t := decimal.NewFromInt(int64(age - lo.Age)).Div(span)
			return lo.Factor.Add(hi.Factor.Sub(lo.Factor).Mul(t))
		}
	}
	return last.Factor
}

// healthcareModule pays the month's medical costs.
type healthcareModule struct{}

func (m *healthcareModule) ID() string { return ModuleHealthcare }

func (m *healthcareModule) Run(mc *MonthContext) error {
	amount := plannedHealthcare(mc)
	spent := spendCash(mc, amount)
	if spent.IsPositive() {
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:    "healthcare",
			Category: "healthcare",
			Amount:   spent.Neg(),
		})
	}
	return nil
}

// plannedCharitable splits the month's giving into a cash-funded part and a
// qualified charitable distribution taken straight from traditional money.
func plannedCharitable(mc *MonthContext) (cash, qcd decimal.Decimal) {
	monthly := mc.Adjust(mc.Strat.Charitable.Monthly, domain.InflationGeneral)
	if !monthly.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	if mc.Strat.Charitable.UseQCD && anyAliveAgeMonths(mc, qcdAgeMonths) {
		return decimal.Zero, monthly
	}
	return monthly, decimal.Zero
}

func anyAliveAgeMonths(mc *MonthContext, months int) bool {
	for i := range mc.Snap.People {
		p := &mc.Snap.People[i]
		if mc.Alive[p.ID] && mc.AgeMonths(p) >= months {
			return true
		}
	}
	return false
}

// charitableModule pays recurring giving. A QCD leaves traditional accounts
// directly, is excluded from ordinary income, and counts toward the year's
// required distribution.
type charitableModule struct{}

func (m *charitableModule) ID() string { return ModuleCharitable }

func (m *charitableModule) Run(mc *MonthContext) error {
	cash, qcd := plannedCharitable(mc)

	if cash.IsPositive() {
		spent := spendCash(mc, cash)
		if spent.IsPositive() {
			mc.Rec.Cashflow(domain.CashflowItem{
				Label:    "charitable giving",
				Category: "charitable",
				Amount:   spent.Neg(),
			})
		}
	}

	if qcd.IsPositive() {
		given := decimal.Zero
		for _, h := range mc.Ledger.HoldingsInBucket(domain.BucketTraditional) {
			remaining := qcd.Sub(given)
			if !remaining.IsPositive() {
				break
			}
			p := mc.Snap.PersonByID(h.OwnerID)
			if p == nil || !mc.Alive[h.OwnerID] || mc.AgeMonths(p) < qcdAgeMonths {
				continue
			}
			res := mc.Ledger.Withdraw(h, remaining)
			if !res.Gross.IsPositive() {
				continue
			}
			given = given.Add(res.Gross)
			mc.TraditionalTakenYear[h.OwnerID] = mc.TraditionalTakenYear[h.OwnerID].Add(res.Gross)
			mc.Rec.Action(domain.ActionRecord{
				Kind:      domain.ActionWithdraw,
				Requested: remaining,
				Resolved:  res.Gross,
				SourceID:  h.ID,
				TaxType:   h.TaxType,
			})
		}
		if given.IsPositive() {
			mc.Spending = mc.Spending.Add(given)
			mc.YearSpending = mc.YearSpending.Add(given)
			mc.Rec.Cashflow(domain.CashflowItem{
				Label:    "qualified charitable distribution",
				Category: "charitable",
				Amount:   given.Neg(),
				TaxFree:  given,
			})
		}
	}
	return nil
}
