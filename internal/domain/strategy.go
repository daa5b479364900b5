package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InflationType selects which assumption stream adjusts an amount.
type InflationType string

const (
	InflationNone    InflationType = "none"
	InflationGeneral InflationType = "general"
	InflationMedical InflationType = "medical"
	InflationBenefit InflationType = "benefit"
)

// ReturnMode selects how market returns are produced.
type ReturnMode string

const (
	ReturnDeterministic ReturnMode = "deterministic"
	ReturnStochastic    ReturnMode = "stochastic"
	ReturnHistorical    ReturnMode = "historical"
)

// SequenceModel selects shock granularity for stochastic mode.
type SequenceModel string

const (
	SequenceIndependent SequenceModel = "independent"
	SequenceRegime      SequenceModel = "regime"
)

// CorrelationModel selects whether per-holding shocks share one stream.
type CorrelationModel string

const (
	CorrelationCorrelated  CorrelationModel = "correlated"
	CorrelationIndependent CorrelationModel = "independent"
)

// InflationAssumption parameterizes one inflation stream.
type InflationAssumption struct {
	Rate          decimal.Decimal         `yaml:"rate" json:"rate"`
	StdDev        decimal.Decimal         `yaml:"std_dev" json:"std_dev"`
	YearOverrides map[int]decimal.Decimal `yaml:"year_overrides,omitempty" json:"year_overrides,omitempty"`
}

// ReturnModelStrategy configures market returns and inflation generation.
type ReturnModelStrategy struct {
	Mode            ReturnMode                            `yaml:"mode" json:"mode"`
	SequenceModel   SequenceModel                         `yaml:"sequence_model" json:"sequence_model"`
	VolatilityScale decimal.Decimal                       `yaml:"volatility_scale" json:"volatility_scale"`
	Correlation     CorrelationModel                      `yaml:"correlation" json:"correlation"`
	CashYield       decimal.Decimal                       `yaml:"cash_yield" json:"cash_yield"`
	Seed            string                                `yaml:"seed" json:"seed"`
	Persistence     decimal.Decimal                       `yaml:"persistence" json:"persistence"`
	StochasticRuns  int                                   `yaml:"stochastic_runs" json:"stochastic_runs"`
	Inflation       map[InflationType]InflationAssumption `yaml:"inflation" json:"inflation"`
}

// GlidepathPoint is one age-indexed allocation target across holding types.
type GlidepathPoint struct {
	Age         int                        `yaml:"age" json:"age"`
	Allocations map[string]decimal.Decimal `yaml:"allocations" json:"allocations"`
}

// GlidepathStrategy is an age-indexed target allocation schedule.
type GlidepathStrategy struct {
	Enabled bool             `yaml:"enabled" json:"enabled"`
	Points  []GlidepathPoint `yaml:"points,omitempty" json:"points,omitempty"`
}

// RebalancingStrategy configures periodic rebalancing toward the glidepath.
type RebalancingStrategy struct {
	Enabled         bool            `yaml:"enabled" json:"enabled"`
	FrequencyMonths int             `yaml:"frequency_months" json:"frequency_months"`
	DriftThreshold  decimal.Decimal `yaml:"drift_threshold" json:"drift_threshold"`
}

// CashBufferStrategy keeps a number of months of spending in cash, refilled
// from taxable holdings when it falls below the refill threshold.
type CashBufferStrategy struct {
	Enabled         bool `yaml:"enabled" json:"enabled"`
	TargetMonths    int  `yaml:"target_months" json:"target_months"`
	RefillBelowPct  int  `yaml:"refill_below_pct" json:"refill_below_pct"`
}

// GuardrailKind tags the active guardrail algorithm; exactly one applies.
type GuardrailKind string

const (
	GuardrailNone            GuardrailKind = "none"
	GuardrailLegacy          GuardrailKind = "legacy"
	GuardrailCapWants        GuardrailKind = "cap_wants"
	GuardrailPortfolioHealth GuardrailKind = "portfolio_health"
	GuardrailGuyton          GuardrailKind = "guyton"
)

// HealthPoint maps a portfolio health ratio to a wants factor; factors are
// linearly interpolated between points.
type HealthPoint struct {
	Ratio  decimal.Decimal `yaml:"ratio" json:"ratio"`
	Factor decimal.Decimal `yaml:"factor" json:"factor"`
}

// GuytonParams configures the Guyton rule: cut wants by AppliedPct when the
// trailing withdrawal rate rises TriggerPct above its baseline, holding each
// cut for at least DurationMonths.
type GuytonParams struct {
	TriggerPct     decimal.Decimal `yaml:"trigger_pct" json:"trigger_pct"`
	AppliedPct     decimal.Decimal `yaml:"applied_pct" json:"applied_pct"`
	DurationMonths int             `yaml:"duration_months" json:"duration_months"`
}

// GuardrailConfig is a tagged union over the mutually exclusive guardrail
// algorithms. Only the fields for Kind are read.
type GuardrailConfig struct {
	Kind         GuardrailKind   `yaml:"kind" json:"kind"`
	LegacyPct    decimal.Decimal `yaml:"legacy_pct,omitempty" json:"legacy_pct,omitempty"`
	CapRate      decimal.Decimal `yaml:"cap_rate,omitempty" json:"cap_rate,omitempty"`
	HealthPoints []HealthPoint   `yaml:"health_points,omitempty" json:"health_points,omitempty"`
	Guyton       GuytonParams    `yaml:"guyton,omitempty" json:"guyton,omitempty"`
}

// WithdrawalStrategy configures funding: the bucket order, cash draining, and
// the guardrail that scales wants.
type WithdrawalStrategy struct {
	Order          []TaxBucket     `yaml:"order" json:"order"`
	DrainCashFirst bool            `yaml:"drain_cash_first" json:"drain_cash_first"`
	Guardrail      GuardrailConfig `yaml:"guardrail" json:"guardrail"`
}

// TaxableLotStrategy selects the cost-basis method for taxable sales.
type TaxableLotStrategy struct {
	Method LotMethod `yaml:"method" json:"method"`
}

// EarlyRetirementStrategy controls pre-59.5 access to tax-advantaged money.
type EarlyRetirementStrategy struct {
	AllowPenalty bool `yaml:"allow_penalty" json:"allow_penalty"`
	Use72t       bool `yaml:"use_72t" json:"use_72t"`
}

// RothConversionStrategy fills ordinary-income headroom up to the bracket
// ceiling with traditional-to-Roth conversions each December.
type RothConversionStrategy struct {
	Enabled              bool            `yaml:"enabled" json:"enabled"`
	TargetBracketCeiling decimal.Decimal `yaml:"target_bracket_ceiling" json:"target_bracket_ceiling"`
	AvoidIRMAA           bool            `yaml:"avoid_irmaa" json:"avoid_irmaa"`
}

// RothLadderStrategy converts a fixed annual amount; tranches become
// penalty-free sixty months after conversion.
type RothLadderStrategy struct {
	Enabled      bool            `yaml:"enabled" json:"enabled"`
	AnnualAmount decimal.Decimal `yaml:"annual_amount" json:"annual_amount"`
}

// RMDExcessHandling routes a forced distribution beyond the spending need.
type RMDExcessHandling string

const (
	RMDExcessSpend    RMDExcessHandling = "spend"
	RMDExcessReinvest RMDExcessHandling = "reinvest"
	RMDExcessConvert  RMDExcessHandling = "convert"
)

// RMDStrategy configures required minimum distributions.
type RMDStrategy struct {
	StartAge       int               `yaml:"start_age" json:"start_age"`
	ExcessHandling RMDExcessHandling `yaml:"excess_handling" json:"excess_handling"`
}

// CharitableStrategy is recurring monthly giving.
type CharitableStrategy struct {
	Monthly decimal.Decimal `yaml:"monthly" json:"monthly"`
	UseQCD  bool            `yaml:"use_qcd" json:"use_qcd"`
}

// LongTermCareConfig is a bounded late-life expense block.
type LongTermCareConfig struct {
	StartAge       int             `yaml:"start_age" json:"start_age"`
	Monthly        decimal.Decimal `yaml:"monthly" json:"monthly"`
	DurationMonths int             `yaml:"duration_months" json:"duration_months"`
}

// AgeCurvePoint scales healthcare spending by age, interpolated linearly.
type AgeCurvePoint struct {
	Age    int             `yaml:"age" json:"age"`
	Factor decimal.Decimal `yaml:"factor" json:"factor"`
}

// HealthcareStrategy configures medical spending before and after Medicare
// age, the declining-health age curve, and long-term care.
type HealthcareStrategy struct {
	MonthlyPreMedicare decimal.Decimal     `yaml:"monthly_pre_medicare" json:"monthly_pre_medicare"`
	MonthlyMedicare    decimal.Decimal     `yaml:"monthly_medicare" json:"monthly_medicare"`
	MedicareAge        int                 `yaml:"medicare_age" json:"medicare_age"`
	AgeCurve           []AgeCurvePoint     `yaml:"age_curve,omitempty" json:"age_curve,omitempty"`
	LongTermCare       *LongTermCareConfig `yaml:"long_term_care,omitempty" json:"long_term_care,omitempty"`
}

// FilingStatus is the household federal filing status.
type FilingStatus string

const (
	FilingSingle  FilingStatus = "single"
	FilingMarried FilingStatus = "married"
)

// TaxStrategy configures the household's tax posture.
type TaxStrategy struct {
	FilingStatus FilingStatus    `yaml:"filing_status" json:"filing_status"`
	StateCode    string          `yaml:"state_code" json:"state_code"`
	StateRate    decimal.Decimal `yaml:"state_rate" json:"state_rate"`
	PolicyYear   int             `yaml:"policy_year" json:"policy_year"`
}

// Beneficiary receives a share of the net estate. Shares must sum to 1.
type Beneficiary struct {
	Name     string          `yaml:"name" json:"name"`
	SharePct decimal.Decimal `yaml:"share_pct" json:"share_pct"`
}

// DeathStrategy configures mortality modeling and the estate settlement.
type DeathStrategy struct {
	ModelDeath      bool            `yaml:"model_death" json:"model_death"`
	FuneralCost     decimal.Decimal `yaml:"funeral_cost" json:"funeral_cost"`
	EstateExemption decimal.Decimal `yaml:"estate_exemption" json:"estate_exemption"`
	EstateTaxRate   decimal.Decimal `yaml:"estate_tax_rate" json:"estate_tax_rate"`
	Beneficiaries   []Beneficiary   `yaml:"beneficiaries,omitempty" json:"beneficiaries,omitempty"`
}

// OneOffEvent is a dated single cashflow; positive amounts are income.
type OneOffEvent struct {
	Label   string          `yaml:"label" json:"label"`
	Date    time.Time       `yaml:"date" json:"date"`
	Amount  decimal.Decimal `yaml:"amount" json:"amount"`
	Taxable bool            `yaml:"taxable" json:"taxable"`
}

// Pension is a recurring monthly benefit starting on a date.
type Pension struct {
	Label         string          `yaml:"label" json:"label"`
	PersonID      string          `yaml:"person_id" json:"person_id"`
	Start         time.Time       `yaml:"start" json:"start"`
	Monthly       decimal.Decimal `yaml:"monthly" json:"monthly"`
	COLAAdjusted  bool            `yaml:"cola_adjusted" json:"cola_adjusted"`
	SurvivorShare decimal.Decimal `yaml:"survivor_share" json:"survivor_share"`
}

// Strategies is the scenario's composite policy configuration. Every
// sub-strategy has a complete default; config.Normalize deep-merges partial
// overrides so the engine never sees a missing required field.
type Strategies struct {
	ReturnModel     ReturnModelStrategy     `yaml:"return_model" json:"return_model"`
	Glidepath       GlidepathStrategy       `yaml:"glidepath" json:"glidepath"`
	Rebalancing     RebalancingStrategy     `yaml:"rebalancing" json:"rebalancing"`
	CashBuffer      CashBufferStrategy      `yaml:"cash_buffer" json:"cash_buffer"`
	Withdrawal      WithdrawalStrategy      `yaml:"withdrawal" json:"withdrawal"`
	TaxableLot      TaxableLotStrategy      `yaml:"taxable_lot" json:"taxable_lot"`
	EarlyRetirement EarlyRetirementStrategy `yaml:"early_retirement" json:"early_retirement"`
	RothConversion  RothConversionStrategy  `yaml:"roth_conversion" json:"roth_conversion"`
	RothLadder      RothLadderStrategy      `yaml:"roth_ladder" json:"roth_ladder"`
	RMD             RMDStrategy             `yaml:"rmd" json:"rmd"`
	Charitable      CharitableStrategy      `yaml:"charitable" json:"charitable"`
	Healthcare      HealthcareStrategy      `yaml:"healthcare" json:"healthcare"`
	Tax             TaxStrategy             `yaml:"tax" json:"tax"`
	Death           DeathStrategy           `yaml:"death" json:"death"`
	Events          []OneOffEvent           `yaml:"events,omitempty" json:"events,omitempty"`
	Pensions        []Pension               `yaml:"pensions,omitempty" json:"pensions,omitempty"`
}

// Scenario names a strategy set.
type Scenario struct {
	ID         string     `yaml:"id" json:"id"`
	Name       string     `yaml:"name" json:"name"`
	Strategies Strategies `yaml:"strategies" json:"strategies"`
}
