package simulation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// fundContext builds a context for one person of the given age with the given
// holdings, ready for direct fundFromPortfolio calls.
func fundContext(ageYears int, holdings []*HoldingState) *MonthContext {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	person := domain.Person{
		ID:        "p1",
		BirthDate: now.AddDate(-ageYears, 0, 0),
	}
	snap := &domain.SimulationSnapshot{People: []domain.Person{person}}
	for _, h := range holdings {
		h.OwnerID = "p1"
		if len(h.Lots) == 0 && h.Balance.IsPositive() {
			h.Lots = []domain.Lot{{Amount: h.Balance}}
		}
	}
	return &MonthContext{
		Date:  now,
		Snap:  snap,
		Strat: &domain.Strategies{Withdrawal: domain.WithdrawalStrategy{Order: domain.AllBuckets}},
		Ledger: &Ledger{
			Holdings:  holdings,
			LotMethod: domain.LotAverage,
		},
		Rec:                  NewRecorder(false),
		Log:                  NopLogger{},
		Tax:                  &TaxYearState{Year: 2026},
		Alive:                map[string]bool{"p1": true},
		TraditionalTakenYear: make(map[string]decimal.Decimal),
	}
}

func TestFundFromPortfolioWalksBucketOrder(t *testing.T) {
	mc := fundContext(66, []*HoldingState{
		{ID: "brokerage", TaxType: domain.BucketTaxable, Balance: dec("1000")},
		{ID: "ira", TaxType: domain.BucketTraditional, Balance: dec("5000")},
	})

	raised := fundFromPortfolio(mc, dec("3000"))
	assert.True(t, raised.Equal(dec("3000")), "raised %s", raised)
	// Taxable drains fully before traditional is touched.
	assert.True(t, mc.Ledger.Holding("brokerage").Balance.IsZero())
	assert.True(t, mc.Ledger.Holding("ira").Balance.Equal(dec("3000")))
	assert.True(t, mc.Tax.OrdinaryIncome.Equal(dec("2000")))
	assert.True(t, mc.TraditionalTakenYear["p1"].Equal(dec("2000")))
	assert.True(t, mc.MonthFunded.Equal(dec("3000")))
}

func TestFundFromPortfolioRealizesGains(t *testing.T) {
	mc := fundContext(66, []*HoldingState{{
		ID:      "brokerage",
		TaxType: domain.BucketTaxable,
		Balance: dec("10000"),
		Lots:    []domain.Lot{{Amount: dec("4000")}},
	}})

	fundFromPortfolio(mc, dec("5000"))
	// 5000 proceeds carry 2000 of basis under the average method.
	assert.True(t, mc.Tax.CapitalGains.Equal(dec("3000")), "gains %s", mc.Tax.CapitalGains)
}

func TestTraditionalSkippedBeforePenaltyAge(t *testing.T) {
	mc := fundContext(50, []*HoldingState{
		{ID: "ira", TaxType: domain.BucketTraditional, Balance: dec("5000")},
	})

	raised := fundFromPortfolio(mc, dec("1000"))
	assert.True(t, raised.IsZero(), "raised %s", raised)
	assert.True(t, mc.Ledger.Holding("ira").Balance.Equal(dec("5000")))
	assert.True(t, mc.Tax.OrdinaryIncome.IsZero())
}

func TestTraditionalEarlyWithPenalty(t *testing.T) {
	mc := fundContext(50, []*HoldingState{
		{ID: "ira", TaxType: domain.BucketTraditional, Balance: dec("5000")},
	})
	mc.Strat.EarlyRetirement.AllowPenalty = true

	raised := fundFromPortfolio(mc, dec("1000"))
	assert.True(t, raised.Equal(dec("1000")))
	assert.True(t, mc.Tax.PenaltyBase.Equal(dec("1000")))
	assert.True(t, mc.Tax.OrdinaryIncome.Equal(dec("1000")))
}

func TestTraditionalEarlyUnder72t(t *testing.T) {
	mc := fundContext(50, []*HoldingState{
		{ID: "ira", TaxType: domain.BucketTraditional, Balance: dec("5000")},
	})
	mc.Strat.EarlyRetirement.Use72t = true

	raised := fundFromPortfolio(mc, dec("1000"))
	assert.True(t, raised.Equal(dec("1000")))
	assert.True(t, mc.Tax.PenaltyBase.IsZero(), "72t waives the penalty")
}

func TestRothEarningsCappedAtMaturedLadder(t *testing.T) {
	mc := fundContext(50, []*HoldingState{
		{ID: "roth", TaxType: domain.BucketRoth, Balance: dec("50000")},
	})
	// One matured tranche and one still inside its five-year clock.
	mc.Ledger.RecordConversion(mc.Date.AddDate(-6, 0, 0), dec("8000"))
	mc.Ledger.RecordConversion(mc.Date.AddDate(-2, 0, 0), dec("20000"))

	raised := fundFromPortfolio(mc, dec("15000"))
	assert.True(t, raised.Equal(dec("8000")), "raised %s", raised)
	assert.True(t, mc.Tax.TaxFreeIncome.Equal(dec("8000")))
	assert.True(t, mc.Tax.PenaltyBase.IsZero())
	// The matured principal is consumed; a second draw finds nothing.
	second := fundFromPortfolio(mc, dec("1000"))
	assert.True(t, second.IsZero(), "second draw %s", second)
}

func TestRothBasisAndHSAAreTaxFree(t *testing.T) {
	mc := fundContext(50, []*HoldingState{
		{ID: "roth-basis", TaxType: domain.BucketRothBasis, Balance: dec("3000")},
		{ID: "hsa", TaxType: domain.BucketHSA, Balance: dec("2000")},
	})

	raised := fundFromPortfolio(mc, dec("4000"))
	assert.True(t, raised.Equal(dec("4000")))
	assert.True(t, mc.Tax.TaxFreeIncome.Equal(dec("4000")))
	assert.True(t, mc.Tax.PenaltyBase.IsZero())
	assert.True(t, mc.Tax.OrdinaryIncome.IsZero())
}

func TestFundFromPortfolioClampsAtAvailable(t *testing.T) {
	mc := fundContext(66, []*HoldingState{
		{ID: "brokerage", TaxType: domain.BucketTaxable, Balance: dec("700")},
	})

	raised := fundFromPortfolio(mc, dec("5000"))
	assert.True(t, raised.Equal(dec("700")), "raised %s", raised)
}
