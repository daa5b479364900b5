package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

var penaltyRate = decimal.RequireFromString("0.10")

// taxesModule settles the calendar year each December: the taxable share of
// Social Security, federal ordinary and capital gains tax, the flat state
// rate, and early-withdrawal penalties. Payment comes from cash, then the
// portfolio; an unpayable remainder is shortfall. Income generated while
// funding the payment itself rolls into the next year's state.
type taxesModule struct {
	totalMonths int
}

func (m *taxesModule) ID() string { return ModuleTaxes }

func (m *taxesModule) Run(mc *MonthContext) error {
	if !mc.IsDecember(m.totalMonths) {
		return nil
	}
	year := mc.Tax.Year
	tables := &mc.Snap.Tables

	preOrdinary := mc.Tax.OrdinaryIncome
	preGains := mc.Tax.CapitalGains
	prePenaltyBase := mc.Tax.PenaltyBase
	preTaxFree := mc.Tax.TaxFreeIncome

	taxableSS := taxableSocialSecurity(mc.Tax.SSBenefits, preOrdinary.Add(preGains), mc.Filing)
	ordinary := preOrdinary.Add(taxableSS)

	fed := OrdinaryTax(tables, mc.Filing, ordinary)

	ordinaryTaxable := ordinary.Sub(tables.StandardDeduction[mc.Filing])
	if ordinaryTaxable.IsNegative() {
		ordinaryTaxable = decimal.Zero
	}
	gains := preGains
	if gains.IsNegative() {
		gains = decimal.Zero
	}
	capGainsTax := CapitalGainsTax(tables, mc.Filing, ordinaryTaxable, gains)

	state := ordinary.Add(gains).Mul(mc.Strat.Tax.StateRate)
	if state.IsNegative() {
		state = decimal.Zero
	}
	penalties := prePenaltyBase.Mul(penaltyRate)

	total := fed.Add(capGainsTax).Add(state).Add(penalties)
	magi := ordinary.Add(preGains)
	mc.MAGIHistory[year] = magi

	paid := decimal.Zero
	if total.IsPositive() {
		paid = mc.Ledger.WithdrawCash(total)
		if paid.LessThan(total) {
			paid = paid.Add(fundFromPortfolio(mc, total.Sub(paid)))
		}
		if short := total.Sub(paid); short.IsPositive() {
			mc.Shortfall = mc.Shortfall.Add(short)
			mc.Log.Warnf("year %d: unpaid tax %s", year, short)
		}
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:    "taxes",
			Category: "taxes",
			Amount:   paid.Neg(),
		})
	}

	mc.SettledTax = domain.TaxLedgerYear{
		OrdinaryIncome: ordinary,
		CapitalGains:   preGains,
		TaxFreeIncome:  preTaxFree,
		TaxPaid:        paid,
		Penalties:      penalties,
		MAGI:           magi,
	}

	// Funding the payment may have realized new income; it belongs to the
	// next tax year.
	mc.Tax = &TaxYearState{
		Year:           year + 1,
		OrdinaryIncome: mc.Tax.OrdinaryIncome.Sub(preOrdinary),
		CapitalGains:   mc.Tax.CapitalGains.Sub(preGains),
		TaxFreeIncome:  mc.Tax.TaxFreeIncome.Sub(preTaxFree),
		PenaltyBase:    mc.Tax.PenaltyBase.Sub(prePenaltyBase),
	}
	return nil
}
