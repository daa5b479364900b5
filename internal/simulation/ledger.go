package simulation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// CashState is the live balance of one cash account.
type CashState struct {
	ID      string
	Balance decimal.Decimal
}

// HoldingState is the live state of one holding, owned exclusively by one
// trial's ledger.
type HoldingState struct {
	ID             string
	AccountID      string
	OwnerID        string
	TaxType        domain.TaxBucket
	HoldingType    string
	Balance        decimal.Decimal
	ExpectedReturn decimal.Decimal
	Volatility     decimal.Decimal
	Lots           []domain.Lot
	Removed        bool
}

// LadderTranche is one Roth conversion awaiting its five-year holding period.
type LadderTranche struct {
	Date      time.Time
	Remaining decimal.Decimal
}

// Ledger holds the authoritative balances for one simulation path. Each
// stochastic trial gets its own ledger cloned from the snapshot; no state is
// shared across trials.
type Ledger struct {
	Cash      []*CashState
	Holdings  []*HoldingState
	LotMethod domain.LotMethod
	Ladder    []LadderTranche
}

// WithdrawalResult reports a holding sale: gross proceeds, consumed basis,
// and the realized gain routed into the tax ledger.
type WithdrawalResult struct {
	Gross decimal.Decimal
	Basis decimal.Decimal
	Gain  decimal.Decimal
}

// NewLedger builds a ledger from the frozen snapshot.
func NewLedger(snap *domain.SimulationSnapshot) *Ledger {
	l := &Ledger{LotMethod: snap.Scenario.Strategies.TaxableLot.Method}
	for _, c := range snap.CashAccounts {
		l.Cash = append(l.Cash, &CashState{ID: c.ID, Balance: c.Balance})
	}
	for _, acct := range snap.Investments {
		for _, h := range acct.Holdings {
			hs := &HoldingState{
				ID:             h.ID,
				AccountID:      acct.ID,
				OwnerID:        acct.OwnerID,
				TaxType:        h.TaxType,
				HoldingType:    h.HoldingType,
				Balance:        h.Balance,
				ExpectedReturn: h.ExpectedReturn,
				Volatility:     h.Volatility,
			}
			hs.Lots = append(hs.Lots, h.Lots...)
			// A holding with no recorded lots gets a synthetic full-basis lot
			// so basis accounting stays closed.
			if len(hs.Lots) == 0 && h.Balance.IsPositive() {
				hs.Lots = []domain.Lot{{Date: time.Time{}, Amount: h.Balance}}
			}
			l.Holdings = append(l.Holdings, hs)
		}
	}
	return l
}

// TotalBalance sums cash and live holdings.
func (l *Ledger) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, c := range l.Cash {
		total = total.Add(c.Balance)
	}
	for _, h := range l.Holdings {
		if !h.Removed {
			total = total.Add(h.Balance)
		}
	}
	return total
}

// Holding finds a holding by id.
func (l *Ledger) Holding(id string) *HoldingState {
	for _, h := range l.Holdings {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// HoldingsInBucket returns live holdings with the given tax type.
func (l *Ledger) HoldingsInBucket(bucket domain.TaxBucket) []*HoldingState {
	var out []*HoldingState
	for _, h := range l.Holdings {
		if !h.Removed && h.TaxType == bucket && h.Balance.IsPositive() {
			out = append(out, h)
		}
	}
	return out
}

// PrimaryCash returns the first cash account, the settlement point for every
// module cashflow.
func (l *Ledger) PrimaryCash() *CashState {
	if len(l.Cash) == 0 {
		l.Cash = append(l.Cash, &CashState{ID: "cash"})
	}
	return l.Cash[0]
}

// CashBalance sums all cash accounts.
func (l *Ledger) CashBalance() decimal.Decimal {
	total := decimal.Zero
	for _, c := range l.Cash {
		total = total.Add(c.Balance)
	}
	return total
}

// DepositCash adds to the primary cash account.
func (l *Ledger) DepositCash(amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	c := l.PrimaryCash()
	c.Balance = c.Balance.Add(amount)
}

// WithdrawCash removes up to amount from cash accounts, returning the amount
// actually taken. Balances never go negative; the difference is the caller's
// funding shortfall to resolve elsewhere.
func (l *Ledger) WithdrawCash(amount decimal.Decimal) decimal.Decimal {
	remaining := amount
	for _, c := range l.Cash {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		take := decimal.Min(c.Balance, remaining)
		c.Balance = c.Balance.Sub(take)
		remaining = remaining.Sub(take)
	}
	return amount.Sub(remaining)
}

// Deposit adds to a holding and appends (or merges, under the average
// method) a cost-basis lot dated at the contribution month.
func (l *Ledger) Deposit(h *HoldingState, amount decimal.Decimal, date time.Time) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	h.Balance = h.Balance.Add(amount)
	if l.LotMethod == domain.LotAverage && len(h.Lots) > 0 {
		h.Lots[0].Amount = h.Lots[0].Amount.Add(amount)
		return
	}
	h.Lots = append(h.Lots, domain.Lot{Date: date, Amount: amount})
}

// Withdraw sells up to amount from a holding, consuming basis lots per the
// configured method and clamping at the available balance. Realized gain is
// proceeds minus consumed basis; basis consumed per lot never exceeds the
// lot's remaining amount.
func (l *Ledger) Withdraw(h *HoldingState, amount decimal.Decimal) WithdrawalResult {
	if amount.LessThanOrEqual(decimal.Zero) || h.Balance.LessThanOrEqual(decimal.Zero) {
		return WithdrawalResult{}
	}
	gross := decimal.Min(amount, h.Balance)

	totalBasis := h.TotalBasis()
	var consumed decimal.Decimal
	switch l.LotMethod {
	case domain.LotAverage:
		// Weighted share of pooled basis.
		if h.Balance.IsPositive() {
			consumed = totalBasis.Mul(gross).Div(h.Balance)
		}
		l.consumeProRata(h, consumed)
	case domain.LotLIFO:
		consumed = l.consumeOrdered(h, gross, true)
	default: // FIFO
		consumed = l.consumeOrdered(h, gross, false)
	}
	if consumed.GreaterThan(gross) {
		consumed = gross
	}

	h.Balance = h.Balance.Sub(gross)
	return WithdrawalResult{Gross: gross, Basis: consumed, Gain: gross.Sub(consumed)}
}

// consumeOrdered drains lots oldest-first (FIFO) or newest-first (LIFO),
// capping total consumption at the proceeds so a lot carrying basis above
// market value cannot manufacture negative gains beyond reality.
func (l *Ledger) consumeOrdered(h *HoldingState, gross decimal.Decimal, newestFirst bool) decimal.Decimal {
	remaining := gross
	consumed := decimal.Zero
	indexes := make([]int, len(h.Lots))
	for i := range indexes {
		if newestFirst {
			indexes[i] = len(h.Lots) - 1 - i
		} else {
			indexes[i] = i
		}
	}
	for _, i := range indexes {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		take := decimal.Min(h.Lots[i].Amount, remaining)
		h.Lots[i].Amount = h.Lots[i].Amount.Sub(take)
		consumed = consumed.Add(take)
		remaining = remaining.Sub(take)
	}
	h.compactLots()
	return consumed
}

// consumeProRata reduces every lot proportionally (average method).
func (l *Ledger) consumeProRata(h *HoldingState, basis decimal.Decimal) {
	total := h.TotalBasis()
	if total.LessThanOrEqual(decimal.Zero) {
		return
	}
	for i := range h.Lots {
		share := h.Lots[i].Amount.Mul(basis).Div(total)
		h.Lots[i].Amount = h.Lots[i].Amount.Sub(share)
	}
	h.compactLots()
}

// TotalBasis sums remaining lot amounts.
func (h *HoldingState) TotalBasis() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range h.Lots {
		total = total.Add(lot.Amount)
	}
	return total
}

// StepUpBasis resets all lots to current market value, as at death.
func (h *HoldingState) StepUpBasis(date time.Time) {
	h.Lots = []domain.Lot{{Date: date, Amount: h.Balance}}
}

func (h *HoldingState) compactLots() {
	kept := h.Lots[:0]
	for _, lot := range h.Lots {
		if lot.Amount.GreaterThan(decimal.Zero) {
			kept = append(kept, lot)
		}
	}
	h.Lots = kept
}

// RecordConversion appends a Roth ladder tranche.
func (l *Ledger) RecordConversion(date time.Time, amount decimal.Decimal) {
	if amount.IsPositive() {
		l.Ladder = append(l.Ladder, LadderTranche{Date: date, Remaining: amount})
	}
}

// MaturedLadder returns the total converted principal whose five-year clock
// has run out by the given date.
func (l *Ledger) MaturedLadder(at time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, tr := range l.Ladder {
		if !tr.Date.AddDate(5, 0, 0).After(at) {
			total = total.Add(tr.Remaining)
		}
	}
	return total
}

// ConsumeMaturedLadder burns matured tranches oldest-first.
func (l *Ledger) ConsumeMaturedLadder(at time.Time, amount decimal.Decimal) {
	for i := range l.Ladder {
		if amount.LessThanOrEqual(decimal.Zero) {
			return
		}
		if l.Ladder[i].Date.AddDate(5, 0, 0).After(at) {
			continue
		}
		take := decimal.Min(l.Ladder[i].Remaining, amount)
		l.Ladder[i].Remaining = l.Ladder[i].Remaining.Sub(take)
		amount = amount.Sub(take)
	}
}
