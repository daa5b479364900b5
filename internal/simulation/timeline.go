package simulation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
)

// pathOutcome is everything one simulated path produces.
type pathOutcome struct {
	Yearly       []domain.YearlyPoint
	Monthly      []domain.MonthlyPoint
	Explanations []domain.MonthExplanation

	EndingBalance decimal.Decimal
	MinBalance    decimal.Decimal
	MaxBalance    decimal.Decimal

	GuardrailAvg         decimal.Decimal
	GuardrailMin         decimal.Decimal
	GuardrailBelowOnePct decimal.Decimal

	DepletionMonth  *int
	ShortfallMonths int
}

// runPath drives one deterministic path month by month. Every path owns its
// ledger, random streams, and context; two calls with the same input and
// seed produce identical outcomes.
func runPath(input *domain.SimulationInput, seed string, explain bool, log Logger) (*pathOutcome, error) {
	snap := &input.Snapshot
	strat := &snap.Scenario.Strategies
	start := input.Settings.StartDate
	months := input.Settings.Months

	ledger := NewLedger(snap)
	infl := BuildInflationIndex(strat.ReturnModel, start, months, seed)
	returns, cashYield := BuildReturns(snap, strat.ReturnModel, months, seed)
	rec := NewRecorder(explain)

	filing := strat.Tax.FilingStatus
	if filing == "" {
		filing = domain.FilingMarried
	}

	mc := &MonthContext{
		Snap:                 snap,
		Strat:                strat,
		Ledger:               ledger,
		Infl:                 infl,
		Rec:                  rec,
		Log:                  log,
		Returns:              returns,
		CashYield:            cashYield,
		Tax:                  &TaxYearState{Year: start.Year()},
		MAGIHistory:          make(map[int]decimal.Decimal),
		Guard:                &GuardrailState{Factor: one, FactorMin: one},
		Filing:               filing,
		Alive:                make(map[string]bool, len(snap.People)),
		Benefits:             make(map[string]BenefitEstimate),
		YearStartTraditional: make(map[string]decimal.Decimal),
		TraditionalTakenYear: make(map[string]decimal.Decimal),
		InitialWeights:       initialWeights(ledger),
		InitialBalance:       ledger.TotalBalance(),
	}
	for _, p := range snap.People {
		mc.Alive[p.ID] = true
	}
	snapshotYearStart(mc)

	out := &pathOutcome{
		MinBalance: mc.InitialBalance,
		MaxBalance: mc.InitialBalance,
	}
	modules := buildModules(months)

	for t := 0; t < months; t++ {
		date := dateutil.AddMonths(start, t)
		if t > 0 && date.Year() != mc.Date.Year() {
			snapshotYearStart(mc)
			mc.TraditionalTakenYear = make(map[string]decimal.Decimal)
			if mc.PendingFiling != "" {
				mc.Filing = mc.PendingFiling
				mc.PendingFiling = ""
			}
		}
		mc.Month = t
		mc.Date = date
		mc.Contributions = decimal.Zero
		mc.Spending = decimal.Zero
		mc.Shortfall = decimal.Zero
		mc.MonthFunded = decimal.Zero

		rec.BeginMonth(t, date)
		for _, mod := range modules {
			rec.BeginModule(mod.ID())
			if err := mod.Run(mc); err != nil {
				return nil, fmt.Errorf("month %d module %s: %w", t, mod.ID(), err)
			}
			rec.EndModule()
		}
		rec.EndMonth(accountBalances(ledger), mc.Contributions)

		balance := ledger.TotalBalance()
		out.Monthly = append(out.Monthly, domain.MonthlyPoint{Month: t, Date: date, TotalBalance: balance})
		if balance.LessThan(out.MinBalance) {
			out.MinBalance = balance
		}
		if balance.GreaterThan(out.MaxBalance) {
			out.MaxBalance = balance
		}
		if out.DepletionMonth == nil && !balance.IsPositive() && anyAlive(mc) {
			m := t
			out.DepletionMonth = &m
			log.Warnf("portfolio depleted at month %d", t)
		}
		if mc.Shortfall.IsPositive() {
			out.ShortfallMonths++
		}

		mc.Guard.TrailingFunded = append(mc.Guard.TrailingFunded, mc.MonthFunded)
		if len(mc.Guard.TrailingFunded) > 12 {
			mc.Guard.TrailingFunded = mc.Guard.TrailingFunded[1:]
		}

		if mc.IsDecember(months) {
			out.Yearly = append(out.Yearly, domain.YearlyPoint{
				Year:          date.Year(),
				Date:          date,
				EndingBalance: balance,
				Contributions: mc.YearContributions,
				Spending:      mc.YearSpending,
				Taxes:         mc.SettledTax,
			})
			mc.YearContributions = decimal.Zero
			mc.YearSpending = decimal.Zero
			mc.SettledTax = domain.TaxLedgerYear{}
		}
	}

	out.EndingBalance = ledger.TotalBalance()
	out.Explanations = rec.Months()
	if mc.Guard.Months > 0 {
		n := decimal.NewFromInt(int64(mc.Guard.Months))
		out.GuardrailAvg = mc.Guard.FactorSum.Div(n)
		out.GuardrailMin = mc.Guard.FactorMin
		out.GuardrailBelowOnePct = decimal.NewFromInt(int64(mc.Guard.MonthsBelowOne)).Div(n)
	} else {
		out.GuardrailAvg = one
		out.GuardrailMin = one
	}
	return out, nil
}

// snapshotYearStart records each person's traditional balance, the base for
// the year's required minimum distribution.
func snapshotYearStart(mc *MonthContext) {
	mc.YearStartTraditional = make(map[string]decimal.Decimal)
	for _, h := range mc.Ledger.HoldingsInBucket(domain.BucketTraditional) {
		mc.YearStartTraditional[h.OwnerID] = mc.YearStartTraditional[h.OwnerID].Add(h.Balance)
	}
}

// initialWeights captures each account's starting allocation, the rebalance
// target when no glidepath is configured.
func initialWeights(l *Ledger) map[string]map[string]decimal.Decimal {
	weights := make(map[string]map[string]decimal.Decimal)
	for _, group := range holdingsByAccount(l) {
		total := decimal.Zero
		for _, h := range group {
			total = total.Add(h.Balance)
		}
		if !total.IsPositive() {
			continue
		}
		m := make(map[string]decimal.Decimal, len(group))
		for _, h := range group {
			m[h.ID] = h.Balance.Div(total)
		}
		weights[group[0].AccountID] = m
	}
	return weights
}

func accountBalances(l *Ledger) []domain.AccountBalance {
	var out []domain.AccountBalance
	for _, c := range l.Cash {
		out = append(out, domain.AccountBalance{AccountID: c.ID, Balance: c.Balance})
	}
	for _, h := range l.Holdings {
		if !h.Removed {
			out = append(out, domain.AccountBalance{AccountID: h.ID, Balance: h.Balance})
		}
	}
	return out
}

func anyAlive(mc *MonthContext) bool {
	for _, alive := range mc.Alive {
		if alive {
			return true
		}
	}
	return false
}
