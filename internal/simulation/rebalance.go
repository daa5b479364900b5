package simulation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// rebalanceModule moves money between holdings inside each account toward
// the target allocation: the glidepath when one is configured, otherwise the
// account's starting weights. Sales in taxable accounts realize gains; all
// moves are internal transfers with no net cashflow.
type rebalanceModule struct{}

func (m *rebalanceModule) ID() string { return ModuleRebalance }

func (m *rebalanceModule) Run(mc *MonthContext) error {
	rb := mc.Strat.Rebalancing
	if !rb.Enabled {
		return nil
	}
	freq := rb.FrequencyMonths
	if freq <= 0 {
		freq = 12
	}
	if mc.Month == 0 || mc.Month%freq != 0 {
		return nil
	}

	for _, holdings := range holdingsByAccount(mc.Ledger) {
		m.rebalanceAccount(mc, holdings)
	}
	return nil
}

func (m *rebalanceModule) rebalanceAccount(mc *MonthContext, holdings []*HoldingState) {
	if len(holdings) < 2 {
		return
	}
	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.Balance)
	}
	if !total.IsPositive() {
		return
	}

	weights := targetWeights(mc, holdings)
	if weights == nil {
		return
	}

	// Skip the account while every holding is inside the drift band.
	drifted := false
	for _, h := range holdings {
		target := total.Mul(weights[h.ID])
		if h.Balance.Sub(target).Abs().GreaterThan(total.Mul(mc.Strat.Rebalancing.DriftThreshold)) {
			drifted = true
			break
		}
	}
	if !drifted {
		return
	}

	// Sell overweight holdings first, then buy the underweight ones from the
	// proceeds pool.
	pool := decimal.Zero
	for _, h := range holdings {
		target := total.Mul(weights[h.ID])
		excess := h.Balance.Sub(target)
		if !excess.IsPositive() {
			continue
		}
		res := mc.Ledger.Withdraw(h, excess)
		if h.TaxType == domain.BucketTaxable {
			mc.Tax.CapitalGains = mc.Tax.CapitalGains.Add(res.Gain)
		}
		pool = pool.Add(res.Gross)
		mc.Rec.Action(domain.ActionRecord{
			Kind:      domain.ActionRebalance,
			Requested: excess,
			Resolved:  res.Gross,
			SourceID:  h.ID,
			TaxType:   h.TaxType,
		})
	}
	for _, h := range holdings {
		if !pool.IsPositive() {
			break
		}
		target := total.Mul(weights[h.ID])
		deficit := target.Sub(h.Balance)
		if !deficit.IsPositive() {
			continue
		}
		buy := decimal.Min(deficit, pool)
		pool = pool.Sub(buy)
		mc.Ledger.Deposit(h, buy, mc.Date)
		mc.Rec.Action(domain.ActionRecord{
			Kind:      domain.ActionRebalance,
			Requested: deficit,
			Resolved:  buy,
			TargetID:  h.ID,
			TaxType:   h.TaxType,
		})
	}
	// Rounding leftovers stay in the first holding.
	if pool.IsPositive() {
		mc.Ledger.Deposit(holdings[0], pool, mc.Date)
	}
}

// targetWeights resolves normalized per-holding weights, or nil when no
// target applies to this account.
func targetWeights(mc *MonthContext, holdings []*HoldingState) map[string]decimal.Decimal {
	raw := make(map[string]decimal.Decimal, len(holdings))
	sum := decimal.Zero

	if mc.Strat.Glidepath.Enabled && len(mc.Strat.Glidepath.Points) > 0 {
		alloc := glidepathAllocations(mc)
		// Split each holding type's weight across same-type holdings by
		// current balance.
		typeTotals := make(map[string]decimal.Decimal)
		for _, h := range holdings {
			typeTotals[h.HoldingType] = typeTotals[h.HoldingType].Add(h.Balance)
		}
		for _, h := range holdings {
			w := alloc[h.HoldingType]
			if tt := typeTotals[h.HoldingType]; tt.IsPositive() {
				w = w.Mul(h.Balance.Div(tt))
			}
			raw[h.ID] = w
			sum = sum.Add(w)
		}
	} else {
		weights := mc.InitialWeights[holdings[0].AccountID]
		if weights == nil {
			return nil
		}
		for _, h := range holdings {
			raw[h.ID] = weights[h.ID]
			sum = sum.Add(weights[h.ID])
		}
	}

	if !sum.IsPositive() {
		return nil
	}
	for id, w := range raw {
		raw[id] = w.Div(sum)
	}
	return raw
}

// glidepathAllocations picks the allocation for the oldest living person's
// age: the last point at or below the age, else the first point.
func glidepathAllocations(mc *MonthContext) map[string]decimal.Decimal {
	points := make([]domain.GlidepathPoint, len(mc.Strat.Glidepath.Points))
	copy(points, mc.Strat.Glidepath.Points)
	sort.Slice(points, func(i, j int) bool { return points[i].Age < points[j].Age })

	age := 0
	if p := mc.OldestAlive(); p != nil {
		age = mc.AgeYears(p)
	}
	chosen := points[0]
	for _, pt := range points {
		if pt.Age <= age {
			chosen = pt
		}
	}
	return chosen.Allocations
}

// holdingsByAccount groups live holdings, preserving ledger order within and
// across accounts.
func holdingsByAccount(l *Ledger) [][]*HoldingState {
	index := make(map[string]int)
	var groups [][]*HoldingState
	for _, h := range l.Holdings {
		if h.Removed {
			continue
		}
		i, ok := index[h.AccountID]
		if !ok {
			i = len(groups)
			index[h.AccountID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], h)
	}
	return groups
}
