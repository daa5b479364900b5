package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// rothConversionModule fills the year's remaining ordinary-income headroom
// with a traditional-to-Roth conversion each December. The converted amount
// is ordinary income this year and starts a five-year ladder clock.
type rothConversionModule struct {
	totalMonths int
}

func (m *rothConversionModule) ID() string { return ModuleRothConversion }

func (m *rothConversionModule) Run(mc *MonthContext) error {
	rc := mc.Strat.RothConversion
	if !rc.Enabled || !mc.IsDecember(m.totalMonths) {
		return nil
	}

	ceiling := mc.Adjust(rc.TargetBracketCeiling, domain.InflationGeneral)
	taxableSS := taxableSocialSecurity(mc.Tax.SSBenefits, mc.Tax.OrdinaryIncome.Add(mc.Tax.CapitalGains), mc.Filing)
	ordinary := mc.Tax.OrdinaryIncome.Add(taxableSS)

	deduction := mc.Snap.Tables.StandardDeduction[mc.Filing]
	taxable := ordinary.Sub(deduction)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	headroom := ceiling.Sub(taxable)

	if rc.AvoidIRMAA {
		if limit := irmaaHeadroom(mc, ordinary.Add(mc.Tax.CapitalGains)); limit.LessThan(headroom) {
			headroom = limit
		}
	}
	if !headroom.IsPositive() {
		return nil
	}

	converted := convertTraditionalToRoth(mc, headroom)
	if converted.IsPositive() {
		mc.Log.Debugf("year %d: converted %s to roth", mc.Date.Year(), converted)
	}
	return nil
}

// irmaaHeadroom returns how much more MAGI fits under the first surcharge
// tier, zero when already over it or no tiers are configured.
func irmaaHeadroom(mc *MonthContext, magi decimal.Decimal) decimal.Decimal {
	tiers := mc.Snap.Tables.IRMAATiers[mc.Filing]
	if len(tiers) == 0 || tiers[0].MaxMAGI == nil {
		return decimal.Zero
	}
	headroom := tiers[0].MaxMAGI.Sub(magi)
	if headroom.IsNegative() {
		return decimal.Zero
	}
	return headroom
}

// convertTraditionalToRoth moves up to the requested amount from traditional
// holdings into the first Roth holding. The move is an internal transfer with
// no net cashflow; the gross amount is ordinary income. Conversions do not
// count toward required minimum distributions.
func convertTraditionalToRoth(mc *MonthContext, amount decimal.Decimal) decimal.Decimal {
	roths := mc.Ledger.HoldingsInBucket(domain.BucketRoth)
	if len(roths) == 0 {
		mc.Log.Warnf("roth conversion skipped: no roth holding")
		return decimal.Zero
	}
	target := roths[0]

	converted := decimal.Zero
	for _, h := range mc.Ledger.HoldingsInBucket(domain.BucketTraditional) {
		remaining := amount.Sub(converted)
		if !remaining.IsPositive() {
			break
		}
		res := mc.Ledger.Withdraw(h, remaining)
		if !res.Gross.IsPositive() {
			continue
		}
		converted = converted.Add(res.Gross)
		mc.Ledger.Deposit(target, res.Gross, mc.Date)
		mc.Rec.Action(domain.ActionRecord{
			Kind:      domain.ActionConvert,
			Requested: remaining,
			Resolved:  res.Gross,
			SourceID:  h.ID,
			TargetID:  target.ID,
			TaxType:   domain.BucketTraditional,
		})
	}
	if converted.IsPositive() {
		mc.Tax.OrdinaryIncome = mc.Tax.OrdinaryIncome.Add(converted)
		mc.Ledger.RecordConversion(mc.Date, converted)
	}
	return converted
}

// rothLadderModule converts a fixed inflation-adjusted amount each December,
// building tranches that mature for penalty-free early withdrawal sixty
// months later.
type rothLadderModule struct {
	totalMonths int
}

func (m *rothLadderModule) ID() string { return ModuleRothLadder }

func (m *rothLadderModule) Run(mc *MonthContext) error {
	rl := mc.Strat.RothLadder
	if !rl.Enabled || !rl.AnnualAmount.IsPositive() || !mc.IsDecember(m.totalMonths) {
		return nil
	}
	amount := mc.Adjust(rl.AnnualAmount, domain.InflationGeneral)
	converted := convertTraditionalToRoth(mc, amount)
	if converted.LessThan(amount) {
		mc.Log.Debugf("year %d: ladder converted %s of %s", mc.Date.Year(), converted, amount)
	}
	return nil
}
