package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// growthModule applies this month's market return to every live holding and
// the cash yield to cash accounts. It runs first so every later module sees
// post-growth balances.
type growthModule struct{}

func (m *growthModule) ID() string { return ModuleGrowth }

func (m *growthModule) Run(mc *MonthContext) error {
	for _, h := range mc.Ledger.Holdings {
		if h.Removed || !h.Balance.IsPositive() {
			continue
		}
		r := mc.holdingReturn(h)
		growth := h.Balance.Mul(r)
		h.Balance = h.Balance.Add(growth)
		if h.Balance.IsNegative() {
			growth = growth.Sub(h.Balance)
			h.Balance = decimal.Zero
		}
		mc.Rec.Market(domain.MarketReturnRecord{HoldingID: h.ID, Return: r, Growth: growth})
	}

	if mc.CashYield.IsPositive() {
		for _, c := range mc.Ledger.Cash {
			if !c.Balance.IsPositive() {
				continue
			}
			growth := c.Balance.Mul(mc.CashYield)
			c.Balance = c.Balance.Add(growth)
			mc.Rec.Market(domain.MarketReturnRecord{HoldingID: c.ID, Return: mc.CashYield, Growth: growth})
		}
	}
	return nil
}

// holdingReturn resolves the precomputed monthly return for a holding,
// falling back to the deterministic monthly-equivalent expected return.
func (mc *MonthContext) holdingReturn(h *HoldingState) decimal.Decimal {
	if seq, ok := mc.Returns[h.ID]; ok && mc.Month < len(seq) {
		return seq[mc.Month]
	}
	f, _ := h.ExpectedReturn.Float64()
	return decimal.NewFromFloat(monthlyEquivalent(f))
}
