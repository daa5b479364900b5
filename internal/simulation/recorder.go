package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// Recorder captures per-module cashflows, actions, and market returns for
// audit output. A disabled recorder swallows everything so stochastic trials
// beyond the canonical one pay no memory cost.
type Recorder struct {
	enabled bool
	months  []domain.MonthExplanation
	cur     *domain.MonthExplanation
	curMod  *domain.ModuleRunExplanation
}

func NewRecorder(enabled bool) *Recorder {
	return &Recorder{enabled: enabled}
}

func (r *Recorder) Enabled() bool { return r.enabled }

func (r *Recorder) BeginMonth(month int, date time.Time) {
	if !r.enabled {
		return
	}
	r.cur = &domain.MonthExplanation{Month: month, Date: date}
}

func (r *Recorder) BeginModule(id string) {
	if !r.enabled {
		return
	}
	r.curMod = &domain.ModuleRunExplanation{ModuleID: id}
}

// Cashflow records an external cash movement. The signed amount feeds the
// module's CashTotal, which the reconciliation invariant checks against the
// month's balance delta.
func (r *Recorder) Cashflow(item domain.CashflowItem) {
	if !r.enabled || r.curMod == nil {
		return
	}
	r.curMod.Cashflows = append(r.curMod.Cashflows, item)
	r.curMod.CashTotal = r.curMod.CashTotal.Add(item.Amount)
}

// Action records an account action. Internal transfers carry no cashflow.
func (r *Recorder) Action(a domain.ActionRecord) {
	if !r.enabled || r.curMod == nil {
		return
	}
	r.curMod.Actions = append(r.curMod.Actions, a)
}

// Market records one holding's growth for the month.
func (r *Recorder) Market(m domain.MarketReturnRecord) {
	if !r.enabled || r.curMod == nil {
		return
	}
	r.curMod.MarketReturns = append(r.curMod.MarketReturns, m)
	r.curMod.MarketTotal = r.curMod.MarketTotal.Add(m.Growth)
}

func (r *Recorder) EndModule() {
	if !r.enabled || r.cur == nil || r.curMod == nil {
		return
	}
	r.cur.Modules = append(r.cur.Modules, *r.curMod)
	r.curMod = nil
}

func (r *Recorder) EndMonth(balances []domain.AccountBalance, contributions decimal.Decimal) {
	if !r.enabled || r.cur == nil {
		return
	}
	r.cur.Balances = balances
	r.cur.Contributions = contributions
	r.months = append(r.months, *r.cur)
	r.cur = nil
}

func (r *Recorder) Months() []domain.MonthExplanation {
	return r.months
}
