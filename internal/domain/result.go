package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ActionKind labels an account action taken by a module.
type ActionKind string

const (
	ActionWithdraw  ActionKind = "withdraw"
	ActionDeposit   ActionKind = "deposit"
	ActionConvert   ActionKind = "convert"
	ActionRebalance ActionKind = "rebalance"
	ActionRMD       ActionKind = "rmd"
)

// CashflowItem is one labeled cash movement with its tax-treated breakdown.
// Amount is signed from the household's point of view: income positive,
// spending negative.
type CashflowItem struct {
	Label          string          `json:"label"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	OrdinaryIncome decimal.Decimal `json:"ordinary_income"`
	CapitalGains   decimal.Decimal `json:"capital_gains"`
	TaxFree        decimal.Decimal `json:"tax_free"`
}

// ActionRecord is one account action with requested vs. resolved amounts.
// Resolved < Requested signals a clamp (shortfall or empty source).
type ActionRecord struct {
	Kind      ActionKind      `json:"kind"`
	Requested decimal.Decimal `json:"requested"`
	Resolved  decimal.Decimal `json:"resolved"`
	SourceID  string          `json:"source_id,omitempty"`
	TargetID  string          `json:"target_id,omitempty"`
	TaxType   TaxBucket       `json:"tax_type,omitempty"`
	Penalty   bool            `json:"penalty,omitempty"`
}

// MarketReturnRecord is one holding's growth for the month.
type MarketReturnRecord struct {
	HoldingID string          `json:"holding_id"`
	Return    decimal.Decimal `json:"return"`
	Growth    decimal.Decimal `json:"growth"`
}

// ModuleRunExplanation is one module's full audit record for one month.
type ModuleRunExplanation struct {
	ModuleID      string               `json:"module_id"`
	Cashflows     []CashflowItem       `json:"cashflows,omitempty"`
	Actions       []ActionRecord       `json:"actions,omitempty"`
	MarketReturns []MarketReturnRecord `json:"market_returns,omitempty"`
	CashTotal     decimal.Decimal      `json:"cash_total"`
	MarketTotal   decimal.Decimal      `json:"market_total"`
}

// AccountBalance is a point-in-time balance snapshot.
type AccountBalance struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// MonthExplanation reconstructs one simulated month: summing every module's
// CashTotal and MarketTotal must equal the delta in total balance.
type MonthExplanation struct {
	Month         int                    `json:"month"`
	Date          time.Time              `json:"date"`
	Modules       []ModuleRunExplanation `json:"modules"`
	Balances      []AccountBalance       `json:"balances"`
	Contributions decimal.Decimal        `json:"contributions"`
}

// TaxLedgerYear summarizes a calendar year's tax accounting.
type TaxLedgerYear struct {
	OrdinaryIncome decimal.Decimal `json:"ordinary_income"`
	CapitalGains   decimal.Decimal `json:"capital_gains"`
	TaxFreeIncome  decimal.Decimal `json:"tax_free_income"`
	TaxPaid        decimal.Decimal `json:"tax_paid"`
	Penalties      decimal.Decimal `json:"penalties"`
	MAGI           decimal.Decimal `json:"magi"`
}

// YearlyPoint is one year of the result timeline.
type YearlyPoint struct {
	Year          int             `json:"year"`
	Date          time.Time       `json:"date"`
	EndingBalance decimal.Decimal `json:"ending_balance"`
	Contributions decimal.Decimal `json:"contributions"`
	Spending      decimal.Decimal `json:"spending"`
	Taxes         TaxLedgerYear   `json:"taxes"`
}

// MonthlyPoint is one month of the optional monthly timeline.
type MonthlyPoint struct {
	Month        int             `json:"month"`
	Date         time.Time       `json:"date"`
	TotalBalance decimal.Decimal `json:"total_balance"`
}

// StochasticRunSummary is the per-trial digest kept for every Monte Carlo
// trial. Full explanations are kept only for the canonical trial.
type StochasticRunSummary struct {
	Trial                int             `json:"trial"`
	EndingBalance        decimal.Decimal `json:"ending_balance"`
	MinBalance           decimal.Decimal `json:"min_balance"`
	GuardrailAvg         decimal.Decimal `json:"guardrail_avg"`
	GuardrailMin         decimal.Decimal `json:"guardrail_min"`
	GuardrailBelowOnePct decimal.Decimal `json:"guardrail_below_one_pct"`
}

// ResultSummary aggregates a run.
type ResultSummary struct {
	EndingBalance           decimal.Decimal `json:"ending_balance"`
	MinBalance              decimal.Decimal `json:"min_balance"`
	MaxBalance              decimal.Decimal `json:"max_balance"`
	GuardrailAvg            decimal.Decimal `json:"guardrail_avg"`
	GuardrailMin            decimal.Decimal `json:"guardrail_min"`
	DepletionMonth          *int            `json:"depletion_month,omitempty"`
	ShortfallMonths         int             `json:"shortfall_months"`
	StochasticRunsCancelled bool            `json:"stochastic_runs_cancelled,omitempty"`
}

// SimulationResult is built incrementally during one run.
type SimulationResult struct {
	Yearly       []YearlyPoint          `json:"yearly"`
	Monthly      []MonthlyPoint         `json:"monthly,omitempty"`
	Explanations []MonthExplanation     `json:"explanations,omitempty"`
	Trials       []StochasticRunSummary `json:"trials,omitempty"`
	Summary      ResultSummary          `json:"summary"`
}

// RunStatus is the terminal state of a SimulationRun.
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunError   RunStatus = "error"
)

// SimulationRun is the engine's output envelope.
type SimulationRun struct {
	ID           string            `json:"id"`
	ScenarioID   string            `json:"scenario_id"`
	StartedAt    time.Time         `json:"started_at"`
	FinishedAt   time.Time         `json:"finished_at"`
	Status       RunStatus         `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Result       *SimulationResult `json:"result,omitempty"`
}

// ProgressUpdate is published between stochastic trials.
type ProgressUpdate struct {
	RunID     string    `json:"run_id"`
	Completed int       `json:"completed"`
	Target    int       `json:"target"`
	Cancelled bool      `json:"cancelled"`
	UpdatedAt time.Time `json:"updated_at"`
}
