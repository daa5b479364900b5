package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// deathModule handles mortality at each person's life expectancy boundary:
// the funeral expense, spousal transfer of accounts with a step-up in
// taxable basis, the filing status switch, and the estate settlement when
// the last person dies.
type deathModule struct{}

func (m *deathModule) ID() string { return ModuleDeath }

func (m *deathModule) Run(mc *MonthContext) error {
	if !mc.Strat.Death.ModelDeath {
		return nil
	}
	for i := range mc.Snap.People {
		p := &mc.Snap.People[i]
		if !mc.Alive[p.ID] || mc.AgeYears(p) < p.LifeExpectancyYears {
			continue
		}
		mc.Alive[p.ID] = false
		mc.Log.Infof("month %d: %s dies at age %d", mc.Month, p.ID, mc.AgeYears(p))

		if funeral := mc.Adjust(mc.Strat.Death.FuneralCost, domain.InflationGeneral); funeral.IsPositive() {
			spent := spendCash(mc, funeral)
			if spent.IsPositive() {
				mc.Rec.Cashflow(domain.CashflowItem{
					Label:    "funeral " + p.ID,
					Category: "death",
					Amount:   spent.Neg(),
				})
			}
		}

		if survivor := mc.OldestAlive(); survivor != nil {
			m.transferToSurvivor(mc, p.ID, survivor.ID)
		} else {
			m.settleEstate(mc)
		}
	}
	return nil
}

// transferToSurvivor rolls the decedent's holdings over to the surviving
// spouse. Taxable lots step up to the date-of-death value. The death year
// still settles under the current filing status; the survivor files single
// starting the following January.
func (m *deathModule) transferToSurvivor(mc *MonthContext, deceasedID, survivorID string) {
	for _, h := range mc.Ledger.Holdings {
		if h.Removed || h.OwnerID != deceasedID {
			continue
		}
		h.OwnerID = survivorID
		if h.TaxType == domain.BucketTaxable {
			h.StepUpBasis(mc.Date)
		}
	}
	mc.PendingFiling = domain.FilingSingle
}

// settleEstate liquidates everything, pays estate tax above the exemption,
// and distributes the net to beneficiaries. The distribution leaves the
// simulated system entirely.
func (m *deathModule) settleEstate(mc *MonthContext) {
	gross := mc.Ledger.TotalBalance()
	if !gross.IsPositive() {
		return
	}

	// Heirs inherit with stepped-up basis, so liquidation realizes no gains.
	for _, c := range mc.Ledger.Cash {
		c.Balance = decimal.Zero
	}
	for _, h := range mc.Ledger.Holdings {
		if h.Removed {
			continue
		}
		h.Balance = decimal.Zero
		h.Lots = nil
		h.Removed = true
	}

	tax := EstateTax(gross, mc.Strat.Death.EstateExemption, mc.Strat.Death.EstateTaxRate)
	net := gross.Sub(tax)
	mc.Legacy = net

	if tax.IsPositive() {
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:    "estate tax",
			Category: "death",
			Amount:   tax.Neg(),
		})
	}
	if len(mc.Strat.Death.Beneficiaries) == 0 {
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:    "estate distribution",
			Category: "death",
			Amount:   net.Neg(),
		})
		return
	}
	for _, b := range mc.Strat.Death.Beneficiaries {
		share := net.Mul(b.SharePct)
		if !share.IsPositive() {
			continue
		}
		mc.Rec.Cashflow(domain.CashflowItem{
			Label:    "bequest " + b.Name,
			Category: "death",
			Amount:   share.Neg(),
		})
	}
}
