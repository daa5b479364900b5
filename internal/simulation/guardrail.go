package simulation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

var one = decimal.NewFromInt(1)

// guardrailFactor dispatches the configured guardrail algorithm once per
// funding run and returns the factor applied to discretionary wants.
func guardrailFactor(mc *MonthContext, needs, wants, other decimal.Decimal) decimal.Decimal {
	g := mc.Strat.Withdrawal.Guardrail
	switch g.Kind {
	case domain.GuardrailLegacy:
		return legacyFactor(mc, g.LegacyPct)
	case domain.GuardrailCapWants:
		return capWantsFactor(mc, g.CapRate, needs.Add(other), wants)
	case domain.GuardrailPortfolioHealth:
		return portfolioHealthFactor(mc, g.HealthPoints)
	case domain.GuardrailGuyton:
		return guytonFactor(mc, g.Guyton, needs.Add(wants).Add(other))
	default:
		return one
	}
}

// legacyFactor is the original fixed percent band: wants are cut by the
// configured percent when the inflation-adjusted portfolio health ratio falls
// below the band, and raised by it when the ratio clears the top of the band.
func legacyFactor(mc *MonthContext, pct decimal.Decimal) decimal.Decimal {
	ratio := healthRatio(mc)
	switch {
	case ratio.LessThan(one.Sub(pct)):
		return one.Sub(pct)
	case ratio.GreaterThan(one.Add(pct)):
		return one.Add(pct)
	default:
		return one
	}
}

// capWantsFactor cuts wants so the month's total withdrawal stays within the
// annual rate limit.
func capWantsFactor(mc *MonthContext, capRate, nonWants, wants decimal.Decimal) decimal.Decimal {
	if !wants.IsPositive() {
		return one
	}
	capMonthly := mc.Ledger.TotalBalance().Mul(capRate).Div(decimal.NewFromInt(12))
	headroom := capMonthly.Sub(nonWants)
	if headroom.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if headroom.GreaterThanOrEqual(wants) {
		return one
	}
	return headroom.Div(wants)
}

// portfolioHealthFactor linearly interpolates the configured health curve at
// the current health ratio, clamping outside the table.
func portfolioHealthFactor(mc *MonthContext, points []domain.HealthPoint) decimal.Decimal {
	if len(points) == 0 {
		return one
	}
	sorted := make([]domain.HealthPoint, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ratio.LessThan(sorted[j].Ratio) })

	ratio := healthRatio(mc)
	if ratio.LessThanOrEqual(sorted[0].Ratio) {
		return sorted[0].Factor
	}
	last := sorted[len(sorted)-1]
	if ratio.GreaterThanOrEqual(last.Ratio) {
		return last.Factor
	}
	for i := 1; i < len(sorted); i++ {
		if ratio.LessThanOrEqual(sorted[i].Ratio) {
			lo, hi := sorted[i-1], sorted[i]
			span := hi.Ratio.Sub(lo.Ratio)
			if span.IsZero() {
				return lo.Factor
			}
			t := ratio.Sub(lo.Ratio).Div(span)
			return lo.Factor.Add(hi.Factor.Sub(lo.Factor).Mul(t))
		}
	}
	return last.Factor
}

// guytonFactor applies a bounded percent cut when the trailing withdrawal
// rate rises above the baseline by the trigger threshold, holding each cut
// for the minimum duration.
func guytonFactor(mc *MonthContext, params domain.GuytonParams, plannedMonthly decimal.Decimal) decimal.Decimal {
	g := mc.Guard
	if g.BaselineRate.IsZero() && mc.InitialBalance.IsPositive() {
		g.BaselineRate = plannedMonthly.Mul(decimal.NewFromInt(12)).Div(mc.InitialBalance)
	}

	if g.CutMonthsLeft > 0 {
		g.CutMonthsLeft--
		return one.Sub(params.AppliedPct)
	}

	balance := mc.Ledger.TotalBalance()
	if !balance.IsPositive() || g.BaselineRate.IsZero() {
		return one
	}
	trailing := decimal.Zero
	for _, w := range g.TrailingFunded {
		trailing = trailing.Add(w)
	}
	if n := len(g.TrailingFunded); n > 0 && n < 12 {
		trailing = trailing.Mul(decimal.NewFromInt(12)).Div(decimal.NewFromInt(int64(n)))
	}
	rate := trailing.Div(balance)
	if rate.GreaterThan(g.BaselineRate.Mul(one.Add(params.TriggerPct))) {
		g.CutMonthsLeft = params.DurationMonths - 1
		if g.CutMonthsLeft < 0 {
			g.CutMonthsLeft = 0
		}
		return one.Sub(params.AppliedPct)
	}
	return one
}

// healthRatio compares the current portfolio against the inflation-adjusted
// starting portfolio.
func healthRatio(mc *MonthContext) decimal.Decimal {
	target := mc.Adjust(mc.InitialBalance, domain.InflationGeneral)
	if !target.IsPositive() {
		return one
	}
	return mc.Ledger.TotalBalance().Div(target)
}
