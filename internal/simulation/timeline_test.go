package simulation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// basicInput is a one-person household with a single 100k taxable holding,
// no inflation, and no cash yield, so balance arithmetic stays exact.
func basicInput(months int) *domain.SimulationInput {
	return &domain.SimulationInput{
		Snapshot: domain.SimulationSnapshot{
			Scenario: domain.Scenario{
				ID: "test-scenario",
				Strategies: domain.Strategies{
					ReturnModel: domain.ReturnModelStrategy{
						Mode: domain.ReturnDeterministic,
						Inflation: map[domain.InflationType]domain.InflationAssumption{
							domain.InflationGeneral: {Rate: decimal.Zero},
							domain.InflationMedical: {Rate: decimal.Zero},
							domain.InflationBenefit: {Rate: decimal.Zero},
						},
					},
					Withdrawal: domain.WithdrawalStrategy{
						Order:          append([]domain.TaxBucket(nil), domain.AllBuckets...),
						DrainCashFirst: true,
						Guardrail:      domain.GuardrailConfig{Kind: domain.GuardrailNone},
					},
					TaxableLot: domain.TaxableLotStrategy{Method: domain.LotAverage},
					RMD:        domain.RMDStrategy{StartAge: 73, ExcessHandling: domain.RMDExcessSpend},
					Healthcare: domain.HealthcareStrategy{MedicareAge: 65},
					Tax:        domain.TaxStrategy{FilingStatus: domain.FilingSingle},
				},
			},
			People: []domain.Person{{
				ID:                  "ann",
				BirthDate:           time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
				LifeExpectancyYears: 95,
			}},
			Investments: []domain.InvestmentAccount{{
				ID: "brokerage", OwnerID: "ann",
				Holdings: []domain.Holding{{
					ID:             "stock",
					TaxType:        domain.BucketTaxable,
					HoldingType:    "stocks",
					Balance:        dec("100000"),
					ExpectedReturn: dec("0.05"),
				}},
			}},
			Tables: domain.ReferenceTables{
				StandardDeduction: map[domain.FilingStatus]decimal.Decimal{
					domain.FilingSingle: dec("15000"),
				},
				OrdinaryBrackets: map[domain.FilingStatus][]domain.TaxBracket{
					domain.FilingSingle: {{UpTo: nil, Rate: dec("0.22")}},
				},
				CapGainsBrackets: map[domain.FilingStatus][]domain.TaxBracket{
					domain.FilingSingle: {{UpTo: nil, Rate: dec("0.15")}},
				},
				RMDDivisors: map[int]decimal.Decimal{73: dec("26.5")},
			},
		},
		Settings: domain.SimulationSettings{
			StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Months:    months,
		},
	}
}

func TestRunPathGrowthOnly(t *testing.T) {
	out, err := runPath(basicInput(12), "s", false, NopLogger{})
	require.NoError(t, err)

	// 100k at 5% annual over 12 monthly-equivalent steps.
	assert.True(t, out.EndingBalance.Sub(dec("105000")).Abs().LessThan(dec("0.01")),
		"ending %s", out.EndingBalance)
	require.Len(t, out.Yearly, 1)
	assert.Equal(t, 2026, out.Yearly[0].Year)
	assert.Len(t, out.Monthly, 12)
	assert.Nil(t, out.DepletionMonth)
	assert.Equal(t, 0, out.ShortfallMonths)
	assert.True(t, out.GuardrailAvg.Equal(dec("1")))
}

func TestRunPathCashOnlyYield(t *testing.T) {
	// A single 100k cash account at a 5% annual yield, no holdings at all.
	input := basicInput(12)
	input.Snapshot.Investments = nil
	input.Snapshot.CashAccounts = []domain.CashAccount{{ID: "savings", Balance: dec("100000")}}
	input.Snapshot.Scenario.Strategies.ReturnModel.CashYield = dec("0.05")

	out, err := runPath(input, "s", false, NopLogger{})
	require.NoError(t, err)

	assert.True(t, out.EndingBalance.Sub(dec("105000")).Abs().LessThan(dec("0.01")),
		"ending %s", out.EndingBalance)
	require.Len(t, out.Yearly, 1)
	assert.Nil(t, out.DepletionMonth)
}

func TestRunPathPartialFinalYear(t *testing.T) {
	// An 18-month horizon closes 2026 in December and 2027 at the final
	// month.
	out, err := runPath(basicInput(18), "s", false, NopLogger{})
	require.NoError(t, err)
	require.Len(t, out.Yearly, 2)
	assert.Equal(t, 2026, out.Yearly[0].Year)
	assert.Equal(t, 2027, out.Yearly[1].Year)
}

func TestRunPathSpendingDrawsDown(t *testing.T) {
	input := basicInput(12)
	input.Snapshot.Spending = []domain.SpendingLineItem{{
		Label: "living", Monthly: dec("1000"),
		Category: domain.SpendNeed, InflationType: domain.InflationGeneral,
	}}

	out, err := runPath(input, "s", false, NopLogger{})
	require.NoError(t, err)

	assert.True(t, out.Yearly[0].Spending.Equal(dec("12000")), "spending %s", out.Yearly[0].Spending)
	assert.True(t, out.EndingBalance.LessThan(dec("105000")))
	assert.True(t, out.EndingBalance.GreaterThan(dec("90000")))
}

func TestRunPathReconciliation(t *testing.T) {
	// Every month: sum of module cash totals plus market totals equals the
	// change in total balance. Internal transfers must cancel out.
	input := basicInput(24)
	input.Snapshot.Spending = []domain.SpendingLineItem{{
		Label: "living", Monthly: dec("1500"),
		Category: domain.SpendNeed, InflationType: domain.InflationGeneral,
	}}

	out, err := runPath(input, "s", true, NopLogger{})
	require.NoError(t, err)
	require.Len(t, out.Explanations, 24)

	prev := dec("100000")
	for _, month := range out.Explanations {
		total := decimal.Zero
		for _, b := range month.Balances {
			total = total.Add(b.Balance)
		}
		explained := decimal.Zero
		for _, mod := range month.Modules {
			explained = explained.Add(mod.CashTotal).Add(mod.MarketTotal)
		}
		delta := total.Sub(prev)
		assert.True(t, delta.Sub(explained).Abs().LessThan(dec("0.000001")),
			"month %d: delta %s explained %s", month.Month, delta, explained)
		prev = total
	}
}

func TestRunPathWithdrawalOrder(t *testing.T) {
	// With a traditional-first order and zero returns, spending must come
	// entirely out of the traditional holding.
	input := basicInput(12)
	input.Snapshot.Investments = []domain.InvestmentAccount{{
		ID: "mixed", OwnerID: "ann",
		Holdings: []domain.Holding{
			{ID: "ira", TaxType: domain.BucketTraditional, HoldingType: "stocks", Balance: dec("50000")},
			{ID: "stock", TaxType: domain.BucketTaxable, HoldingType: "stocks", Balance: dec("50000")},
		},
	}}
	input.Snapshot.Scenario.Strategies.Withdrawal.Order = []domain.TaxBucket{
		domain.BucketTraditional, domain.BucketTaxable,
	}
	input.Snapshot.Spending = []domain.SpendingLineItem{{
		Label: "living", Monthly: dec("1000"),
		Category: domain.SpendNeed, InflationType: domain.InflationGeneral,
	}}

	out, err := runPath(input, "s", true, NopLogger{})
	require.NoError(t, err)

	final := out.Explanations[len(out.Explanations)-1]
	balances := make(map[string]decimal.Decimal)
	for _, b := range final.Balances {
		balances[b.AccountID] = b.Balance
	}
	assert.True(t, balances["stock"].Equal(dec("50000")), "taxable touched: %s", balances["stock"])
	// 12k spent; ordinary income stays under the deduction so no tax due.
	assert.True(t, balances["ira"].Equal(dec("38000")), "ira %s", balances["ira"])
}

func TestRunPathShortfallClampsWithoutError(t *testing.T) {
	input := basicInput(24)
	input.Snapshot.Investments[0].Holdings[0].Balance = dec("10000")
	input.Snapshot.Investments[0].Holdings[0].ExpectedReturn = decimal.Zero
	input.Snapshot.Spending = []domain.SpendingLineItem{{
		Label: "living", Monthly: dec("1000"),
		Category: domain.SpendNeed, InflationType: domain.InflationGeneral,
	}}

	out, err := runPath(input, "s", false, NopLogger{})
	require.NoError(t, err)
	require.NotNil(t, out.DepletionMonth)
	assert.Equal(t, 9, *out.DepletionMonth)
	assert.Greater(t, out.ShortfallMonths, 10)
	assert.True(t, out.EndingBalance.IsZero())
}

func TestRunPathSurvivorFilesSingleNextYear(t *testing.T) {
	// A spouse dying in July leaves the death year settling as married; the
	// survivor's single status applies from the next January. Spending draws
	// 24k/year of ordinary income from the IRA, under the married deduction
	// but over the single one.
	input := basicInput(24)
	input.Snapshot.People = []domain.Person{
		{ID: "ann", BirthDate: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC), LifeExpectancyYears: 95},
		{ID: "bo", BirthDate: time.Date(1960, 7, 1, 0, 0, 0, 0, time.UTC), LifeExpectancyYears: 66},
	}
	input.Snapshot.Investments = []domain.InvestmentAccount{{
		ID: "retirement", OwnerID: "ann",
		Holdings: []domain.Holding{{
			ID: "ira", TaxType: domain.BucketTraditional, HoldingType: "bonds", Balance: dec("100000"),
		}},
	}}
	input.Snapshot.Spending = []domain.SpendingLineItem{{
		Label: "living", Monthly: dec("2000"),
		Category: domain.SpendNeed, InflationType: domain.InflationGeneral,
	}}
	strat := &input.Snapshot.Scenario.Strategies
	strat.Tax.FilingStatus = domain.FilingMarried
	strat.Death.ModelDeath = true
	tables := &input.Snapshot.Tables
	tables.StandardDeduction[domain.FilingMarried] = dec("30000")
	tables.OrdinaryBrackets[domain.FilingMarried] = []domain.TaxBracket{{UpTo: nil, Rate: dec("0.22")}}
	tables.CapGainsBrackets[domain.FilingMarried] = []domain.TaxBracket{{UpTo: nil, Rate: dec("0.15")}}

	out, err := runPath(input, "s", false, NopLogger{})
	require.NoError(t, err)
	require.Len(t, out.Yearly, 2)

	assert.True(t, out.Yearly[0].Taxes.TaxPaid.IsZero(),
		"death year settled %s, want the married deduction to cover it", out.Yearly[0].Taxes.TaxPaid)
	// (24000 - 15000) * 0.22 once the survivor files single.
	assert.True(t, out.Yearly[1].Taxes.TaxPaid.Equal(dec("1980")),
		"survivor year paid %s", out.Yearly[1].Taxes.TaxPaid)
}

func TestRunPathDeterminism(t *testing.T) {
	input := basicInput(60)
	input.Snapshot.Scenario.Strategies.ReturnModel.Mode = domain.ReturnStochastic
	input.Snapshot.Scenario.Strategies.ReturnModel.Persistence = dec("0.3")
	input.Snapshot.Investments[0].Holdings[0].Volatility = dec("0.15")

	a, err := runPath(input, "seed-x", false, NopLogger{})
	require.NoError(t, err)
	b, err := runPath(input, "seed-x", false, NopLogger{})
	require.NoError(t, err)
	c, err := runPath(input, "seed-y", false, NopLogger{})
	require.NoError(t, err)

	assert.True(t, a.EndingBalance.Equal(b.EndingBalance), "same seed must match: %s vs %s",
		a.EndingBalance, b.EndingBalance)
	assert.False(t, a.EndingBalance.Equal(c.EndingBalance), "different seeds should diverge")
}

func TestModuleOrderConstraints(t *testing.T) {
	pos := make(map[string]int, len(DefaultModuleOrder))
	for i, id := range DefaultModuleOrder {
		pos[id] = i
	}

	assert.Equal(t, 0, pos[ModuleGrowth], "growth runs first")
	assert.Less(t, pos[ModuleFunding], pos[ModuleSpending], "funding fixes the factor before spending")
	assert.Less(t, pos[ModuleFunding], pos[ModuleHealthcare])
	assert.Less(t, pos[ModuleFunding], pos[ModuleCharitable])
	assert.Less(t, pos[ModuleRMD], pos[ModuleTaxes], "forced distributions land in the year they settle")
	assert.Less(t, pos[ModuleRothConversion], pos[ModuleTaxes])
	assert.Equal(t, len(DefaultModuleOrder)-1, pos[ModuleDeath], "death runs last")

	mods := buildModules(12)
	require.Len(t, mods, len(DefaultModuleOrder))
	for i, m := range mods {
		assert.Equal(t, DefaultModuleOrder[i], m.ID())
	}
}
