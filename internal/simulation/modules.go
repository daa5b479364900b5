package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
)

// Module ids in pipeline order. The order is data so tests can assert the
// documented before/after relationships: funding precedes every spending
// module (the guardrail factor must be fixed before wants are spent), taxes
// runs after all income and withdrawal modules, and death runs last.
const (
	ModuleGrowth         = "growth"
	ModuleIncome         = "income"
	ModuleSocialSecurity = "social_security"
	ModulePensions       = "pensions"
	ModuleEvents         = "events"
	ModuleFunding        = "funding"
	ModuleSpending       = "spending"
	ModuleHealthcare     = "healthcare"
	ModuleCharitable     = "charitable"
	ModuleCashBuffer     = "cash_buffer"
	ModuleRothConversion = "roth_conversion"
	ModuleRothLadder     = "roth_ladder"
	ModuleRMD            = "rmd"
	ModuleRebalance      = "rebalance"
	ModuleTaxes          = "taxes"
	ModuleDeath          = "death"
)

// DefaultModuleOrder is the fixed execution order for every simulated month.
var DefaultModuleOrder = []string{
	ModuleGrowth,
	ModuleIncome,
	ModuleSocialSecurity,
	ModulePensions,
	ModuleEvents,
	ModuleFunding,
	ModuleSpending,
	ModuleHealthcare,
	ModuleCharitable,
	ModuleCashBuffer,
	ModuleRothConversion,
	ModuleRothLadder,
	ModuleRMD,
	ModuleRebalance,
	ModuleTaxes,
	ModuleDeath,
}

// Module is one step of the monthly pipeline. Modules read and mutate the
// path context and record their cashflows and actions.
type Module interface {
	ID() string
	Run(mc *MonthContext) error
}

// TaxYearState accumulates one calendar year's tax-relevant totals. The
// taxes module settles it in December and the timeline resets it.
type TaxYearState struct {
	Year           int
	OrdinaryIncome decimal.Decimal
	CapitalGains   decimal.Decimal
	TaxFreeIncome  decimal.Decimal
	SSBenefits     decimal.Decimal
	PenaltyBase    decimal.Decimal
	TaxPaid        decimal.Decimal
	Penalties      decimal.Decimal
	MAGI           decimal.Decimal
}

// GuardrailState persists guardrail decisions across months.
type GuardrailState struct {
	Factor         decimal.Decimal
	BaselineRate   decimal.Decimal
	CutMonthsLeft  int
	TrailingFunded []decimal.Decimal // last 12 months of portfolio funding
	FactorSum      decimal.Decimal
	FactorMin      decimal.Decimal
	Months         int
	MonthsBelowOne int
}

// MonthContext is the mutable state of one simulation path. It is created
// once per path and carried through every month; per-month accumulators are
// reset by the timeline driver. Each stochastic trial owns its context
// exclusively.
type MonthContext struct {
	Month int
	Date  time.Time

	Snap   *domain.SimulationSnapshot
	Strat  *domain.Strategies
	Ledger *Ledger
	Infl   *InflationIndex
	Rec    *Recorder
	Log    Logger

	// Precomputed per-holding monthly return sequences and cash yield.
	Returns   map[string][]decimal.Decimal
	CashYield decimal.Decimal // monthly-equivalent rate

	Tax         *TaxYearState
	MAGIHistory map[int]decimal.Decimal
	Guard       *GuardrailState

	// Filing starts from the tax strategy. A spouse's death year still
	// settles under the old status; PendingFiling holds the switch until the
	// timeline crosses into the next January. Strategies are shared across
	// trials and never mutated.
	Filing        domain.FilingStatus
	PendingFiling domain.FilingStatus

	// SettledTax is the most recent December settlement, read by the timeline
	// when it closes the year's point.
	SettledTax domain.TaxLedgerYear

	// Legacy is the after-tax estate value distributed when the last person
	// dies.
	Legacy decimal.Decimal

	Alive    map[string]bool
	Benefits map[string]BenefitEstimate // resolved SS benefit per person

	// Per-person sum of traditional balances at the start of the year, the
	// RMD base, and traditional distributions taken so far this year.
	YearStartTraditional map[string]decimal.Decimal
	TraditionalTakenYear map[string]decimal.Decimal

	// Initial allocation weights per account, the rebalance target when no
	// glidepath is configured.
	InitialWeights map[string]map[string]decimal.Decimal

	InitialBalance decimal.Decimal

	// Per-month accumulators.
	Contributions decimal.Decimal
	Spending      decimal.Decimal
	Shortfall     decimal.Decimal
	MonthFunded   decimal.Decimal // gross portfolio withdrawals this month

	// Per-year accumulators.
	YearContributions decimal.Decimal
	YearSpending      decimal.Decimal
}

// StartYear returns the first simulated month's year.
func (mc *MonthContext) StartYear() int { return mc.Infl.StartDate.Year() }

// AgeYears returns a person's age in whole years at the current month.
func (mc *MonthContext) AgeYears(p *domain.Person) int {
	return dateutil.Age(p.BirthDate, mc.Date)
}

// AgeMonths returns a person's age in whole months at the current month.
func (mc *MonthContext) AgeMonths(p *domain.Person) int {
	return dateutil.AgeInMonths(p.BirthDate, mc.Date)
}

// AnyAliveAtLeast reports whether any living person has reached the age.
func (mc *MonthContext) AnyAliveAtLeast(age int) bool {
	for _, p := range mc.Snap.People {
		if mc.Alive[p.ID] && mc.AgeYears(&p) >= age {
			return true
		}
	}
	return false
}

// OldestAlive returns the oldest living person, or nil when everyone has
// died.
func (mc *MonthContext) OldestAlive() *domain.Person {
	var oldest *domain.Person
	for i := range mc.Snap.People {
		p := &mc.Snap.People[i]
		if !mc.Alive[p.ID] {
			continue
		}
		if oldest == nil || p.BirthDate.Before(oldest.BirthDate) {
			oldest = p
		}
	}
	return oldest
}

// Adjust inflates an amount from the path start date to the current month.
func (mc *MonthContext) Adjust(amount decimal.Decimal, typ domain.InflationType) decimal.Decimal {
	return amount.Mul(mc.Infl.AtMonth(typ, mc.Month))
}

// IsDecember reports whether this month settles the calendar year: December,
// or the final month of the horizon.
func (mc *MonthContext) IsDecember(totalMonths int) bool {
	return mc.Date.Month() == time.December || mc.Month == totalMonths-1
}

// buildModules wires the pipeline in DefaultModuleOrder.
func buildModules(totalMonths int) []Module {
	return []Module{
		&growthModule{},
		&incomeModule{},
		&socialSecurityModule{},
		&pensionsModule{},
		&eventsModule{},
		&fundingModule{},
		&spendingModule{},
		&healthcareModule{},
		&charitableModule{},
		&cashBufferModule{},
		&rothConversionModule{totalMonths: totalMonths},
		&rothLadderModule{totalMonths: totalMonths},
		&rmdModule{totalMonths: totalMonths},
		&rebalanceModule{},
		&taxesModule{totalMonths: totalMonths},
		&deathModule{},
	}
}
