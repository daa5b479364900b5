package simulation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

func decp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func testBrackets() []domain.TaxBracket {
	return []domain.TaxBracket{
		{UpTo: decp("10000"), Rate: dec("0.10")},
		{UpTo: decp("50000"), Rate: dec("0.20")},
		{UpTo: nil, Rate: dec("0.30")},
	}
}

func TestBracketTax(t *testing.T) {
	tests := []struct {
		name     string
		income   string
		expected string
	}{
		{"zero", "0", "0"},
		{"inside first bracket", "5000", "500"},
		{"exactly first boundary", "10000", "1000"},
		{"spanning two brackets", "30000", "5000"},
		{"into the unbounded top", "100000", "24000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BracketTax(testBrackets(), dec(tt.income))
			assert.True(t, got.Equal(dec(tt.expected)), "got %s want %s", got, tt.expected)
		})
	}
}

func TestBracketTaxMonotone(t *testing.T) {
	prev := decimal.Zero
	for income := 0; income <= 200000; income += 7500 {
		tax := BracketTax(testBrackets(), decimal.NewFromInt(int64(income)))
		assert.True(t, tax.GreaterThanOrEqual(prev), "tax decreased at income %d", income)
		prev = tax
	}
}

func testTables() *domain.ReferenceTables {
	return &domain.ReferenceTables{
		OrdinaryBrackets: map[domain.FilingStatus][]domain.TaxBracket{
			domain.FilingSingle: testBrackets(),
		},
		CapGainsBrackets: map[domain.FilingStatus][]domain.TaxBracket{
			domain.FilingSingle: {
				{UpTo: decp("40000"), Rate: dec("0")},
				{UpTo: nil, Rate: dec("0.15")},
			},
		},
		StandardDeduction: map[domain.FilingStatus]decimal.Decimal{
			domain.FilingSingle: dec("15000"),
		},
	}
}

func TestOrdinaryTaxAppliesDeduction(t *testing.T) {
	tables := testTables()
	// 20000 income - 15000 deduction = 5000 taxable at 10%.
	got := OrdinaryTax(tables, domain.FilingSingle, dec("20000"))
	assert.True(t, got.Equal(dec("500")), "got %s", got)

	// Below the deduction owes nothing.
	got = OrdinaryTax(tables, domain.FilingSingle, dec("9000"))
	assert.True(t, got.IsZero())
}

func TestCapitalGainsTaxStacksOnOrdinary(t *testing.T) {
	tables := testTables()

	// Gains alone inside the zero bracket.
	got := CapitalGainsTax(tables, domain.FilingSingle, decimal.Zero, dec("30000"))
	assert.True(t, got.IsZero(), "got %s", got)

	// Ordinary income pushes the same gains over the zero bracket edge.
	got = CapitalGainsTax(tables, domain.FilingSingle, dec("35000"), dec("30000"))
	// Stacked: 35000..65000; 5000 at 0%, 25000 at 15%.
	assert.True(t, got.Equal(dec("3750")), "got %s", got)
}

func TestIRMAASurcharge(t *testing.T) {
	tiers := []domain.IRMAATier{
		{MaxMAGI: decp("106000"), MonthlyPartB: dec("0"), MonthlyPartD: dec("0")},
		{MaxMAGI: decp("133000"), MonthlyPartB: dec("74"), MonthlyPartD: dec("13.70")},
		{MaxMAGI: nil, MonthlyPartB: dec("185"), MonthlyPartD: dec("35.30")},
	}

	assert.True(t, IRMAASurcharge(tiers, dec("90000")).IsZero())
	assert.True(t, IRMAASurcharge(tiers, dec("120000")).Equal(dec("87.70")))
	// Above every bounded tier lands in the unbounded top.
	assert.True(t, IRMAASurcharge(tiers, dec("500000")).Equal(dec("220.30")))
}

func TestRMDDivisor(t *testing.T) {
	divisors := map[int]decimal.Decimal{73: dec("26.5"), 74: dec("25.5"), 75: dec("24.6")}

	assert.True(t, RMDDivisor(divisors, 73).Equal(dec("26.5")))
	assert.True(t, RMDDivisor(divisors, 75).Equal(dec("24.6")))
	// Beyond the table walks down one per year with a floor of one.
	assert.True(t, RMDDivisor(divisors, 77).Equal(dec("22.6")))
	assert.True(t, RMDDivisor(divisors, 120).Equal(dec("1")))
}

func TestEstateTax(t *testing.T) {
	exemption, rate := dec("1000000"), dec("0.40")

	assert.True(t, EstateTax(dec("800000"), exemption, rate).IsZero())
	assert.True(t, EstateTax(dec("1500000"), exemption, rate).Equal(dec("200000")))
}

func TestTaxableSocialSecurity(t *testing.T) {
	tests := []struct {
		name    string
		benefit string
		other   string
		filing  domain.FilingStatus
		want    string
	}{
		{"below base threshold", "20000", "15000", domain.FilingMarried, "0"},
		{"all benefits, no other income", "24000", "0", domain.FilingMarried, "0"},
		{"middle tier married", "24000", "24000", domain.FilingMarried, "2000"},
		{"high income hits 85 percent cap", "30000", "200000", domain.FilingMarried, "25500"},
		{"high income single", "30000", "200000", domain.FilingSingle, "25500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := taxableSocialSecurity(dec(tt.benefit), dec(tt.other), tt.filing)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}
