package simulation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func lotDate(y, m int) time.Time {
	return time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
}

func newTestHolding(balance string, lots ...domain.Lot) *HoldingState {
	return &HoldingState{
		ID:      "h1",
		TaxType: domain.BucketTaxable,
		Balance: dec(balance),
		Lots:    lots,
	}
}

func TestWithdrawAverageBasis(t *testing.T) {
	// Balance 200, basis 100: selling half consumes half the basis.
	l := &Ledger{LotMethod: domain.LotAverage}
	h := newTestHolding("200", domain.Lot{Date: lotDate(2020, 1), Amount: dec("100")})

	res := l.Withdraw(h, dec("100"))
	assert.True(t, res.Gross.Equal(dec("100")), "gross %s", res.Gross)
	assert.True(t, res.Basis.Equal(dec("50")), "basis %s", res.Basis)
	assert.True(t, res.Gain.Equal(dec("50")), "gain %s", res.Gain)
	assert.True(t, h.Balance.Equal(dec("100")))
	assert.True(t, h.TotalBasis().Equal(dec("50")))
}

func TestWithdrawFIFOConsumesOldestFirst(t *testing.T) {
	l := &Ledger{LotMethod: domain.LotFIFO}
	h := newTestHolding("300",
		domain.Lot{Date: lotDate(2018, 1), Amount: dec("60")},
		domain.Lot{Date: lotDate(2022, 1), Amount: dec("90")},
	)

	res := l.Withdraw(h, dec("80"))
	assert.True(t, res.Basis.Equal(dec("80")), "basis %s", res.Basis)
	assert.True(t, res.Gain.IsZero(), "gain %s", res.Gain)
	// Oldest lot fully consumed, 20 taken from the newer one.
	require.Len(t, h.Lots, 1)
	assert.True(t, h.Lots[0].Amount.Equal(dec("70")))
}

func TestWithdrawLIFOConsumesNewestFirst(t *testing.T) {
	l := &Ledger{LotMethod: domain.LotLIFO}
	h := newTestHolding("300",
		domain.Lot{Date: lotDate(2018, 1), Amount: dec("60")},
		domain.Lot{Date: lotDate(2022, 1), Amount: dec("90")},
	)

	res := l.Withdraw(h, dec("80"))
	assert.True(t, res.Basis.Equal(dec("80")))
	require.Len(t, h.Lots, 2)
	assert.True(t, h.Lots[0].Amount.Equal(dec("60")), "old lot untouched")
	assert.True(t, h.Lots[1].Amount.Equal(dec("10")))
}

func TestWithdrawMethodsAgreeOnTotalGain(t *testing.T) {
	// Draining the whole holding realizes the same total gain regardless of
	// lot method.
	for _, method := range []domain.LotMethod{domain.LotAverage, domain.LotFIFO, domain.LotLIFO} {
		l := &Ledger{LotMethod: method}
		h := newTestHolding("500",
			domain.Lot{Date: lotDate(2015, 1), Amount: dec("120")},
			domain.Lot{Date: lotDate(2019, 6), Amount: dec("80")},
		)
		totalGain := decimal.Zero
		for i := 0; i < 5; i++ {
			res := l.Withdraw(h, dec("100"))
			totalGain = totalGain.Add(res.Gain)
		}
		assert.True(t, totalGain.Equal(dec("300")), "%s total gain %s", method, totalGain)
		assert.True(t, h.Balance.IsZero())
	}
}

func TestWithdrawClampsAtBalance(t *testing.T) {
	l := &Ledger{LotMethod: domain.LotAverage}
	h := newTestHolding("50", domain.Lot{Date: lotDate(2020, 1), Amount: dec("50")})

	res := l.Withdraw(h, dec("80"))
	assert.True(t, res.Gross.Equal(dec("50")))
	assert.True(t, h.Balance.IsZero())

	res = l.Withdraw(h, dec("10"))
	assert.True(t, res.Gross.IsZero(), "empty holding yields nothing")
}

func TestWithdrawCashNeverGoesNegative(t *testing.T) {
	l := &Ledger{Cash: []*CashState{{ID: "c1", Balance: dec("30")}}}
	got := l.WithdrawCash(dec("100"))
	assert.True(t, got.Equal(dec("30")))
	assert.True(t, l.CashBalance().IsZero())
}

func TestNewLedgerSynthesizesFullBasisLot(t *testing.T) {
	snap := &domain.SimulationSnapshot{
		Investments: []domain.InvestmentAccount{{
			ID: "acct", OwnerID: "p1",
			Holdings: []domain.Holding{{ID: "h1", TaxType: domain.BucketTaxable, Balance: dec("1000")}},
		}},
	}
	l := NewLedger(snap)
	require.Len(t, l.Holdings, 1)
	assert.True(t, l.Holdings[0].TotalBasis().Equal(dec("1000")))
}

func TestStepUpBasis(t *testing.T) {
	h := newTestHolding("400", domain.Lot{Date: lotDate(2010, 1), Amount: dec("100")})
	h.StepUpBasis(lotDate(2030, 6))
	assert.True(t, h.TotalBasis().Equal(dec("400")))

	l := &Ledger{LotMethod: domain.LotAverage}
	res := l.Withdraw(h, dec("400"))
	assert.True(t, res.Gain.IsZero(), "no gain after step-up, got %s", res.Gain)
}

func TestLadderMaturity(t *testing.T) {
	l := &Ledger{}
	l.RecordConversion(lotDate(2025, 12), dec("40000"))
	l.RecordConversion(lotDate(2026, 12), dec("40000"))

	assert.True(t, l.MaturedLadder(lotDate(2030, 11)).IsZero(), "nothing matured before five years")
	assert.True(t, l.MaturedLadder(lotDate(2030, 12)).Equal(dec("40000")))
	assert.True(t, l.MaturedLadder(lotDate(2031, 12)).Equal(dec("80000")))

	l.ConsumeMaturedLadder(lotDate(2031, 12), dec("50000"))
	assert.True(t, l.MaturedLadder(lotDate(2031, 12)).Equal(dec("30000")))
}
