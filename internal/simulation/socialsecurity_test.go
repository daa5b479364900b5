package simulation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

func ssTables() *domain.ReferenceTables {
	return &domain.ReferenceTables{
		WageIndex: map[int]decimal.Decimal{
			2000: dec("32154.82"),
			2020: dec("55628.60"),
		},
		BendPoints: domain.BendPoints{Year: 2025, First: dec("1226"), Second: dec("7391")},
		RetirementAges: []domain.RetirementAgeRow{
			{BirthYearFrom: 1943, BirthYearTo: 1954, NRAMonths: 66 * 12},
			{BirthYearFrom: 1960, BirthYearTo: 2100, NRAMonths: 67 * 12},
		},
	}
}

func ssPerson(birthYear int) *domain.Person {
	return &domain.Person{
		ID:        "p1",
		BirthDate: time.Date(birthYear, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestComputePIABendPoints(t *testing.T) {
	bends := domain.BendPoints{First: dec("1226"), Second: dec("7391")}

	tests := []struct {
		name string
		aime string
		want string
	}{
		{"below first bend", "1000", "900"},
		{"at first bend", "1226", "1103.40"},
		{"between bends", "5000", "2311.08"},
		{"above second bend", "10000", "3467.55"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computePIA(dec(tt.aime), bends)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestAdjustForClaimAge(t *testing.T) {
	pia := dec("2000")
	nra := 67 * 12

	tests := []struct {
		name        string
		claimMonths int
		want        string
	}{
		// 60 months early: 36 at 5/9 of 1% plus 24 at 5/12 of 1% = 30%.
		{"earliest claim at 62", 62 * 12, "1400"},
		{"one year early", 66 * 12, "1866.6666666666666"},
		{"at normal retirement age", 67 * 12, "2000"},
		// 36 delayed months at 2/3 of 1% = 24%.
		{"delayed to 70", 70 * 12, "2480"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adjustForClaimAge(pia, tt.claimMonths, nra)
			assert.True(t, got.Sub(dec(tt.want)).Abs().LessThan(dec("0.01")),
				"got %s want %s", got, tt.want)
		})
	}
}

func TestEstimateBenefitHonorsOverride(t *testing.T) {
	override := dec("2750")
	ss := &domain.SocialSecurityStrategy{
		PersonID:        "p1",
		ClaimDate:       time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		MonthlyOverride: &override,
	}
	est := EstimateBenefit(ssPerson(1963), ss, ssTables())
	assert.True(t, est.Monthly.Equal(override))
}

func TestEstimateBenefitClampsClaimAge(t *testing.T) {
	ss := &domain.SocialSecurityStrategy{
		PersonID: "p1",
		// Claim at 58, below the earliest allowed age of 62.
		ClaimDate: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC),
		Earnings:  []domain.EarningsRecord{{Year: 2000, Amount: dec("50000")}},
	}
	est := EstimateBenefit(ssPerson(1963), ss, ssTables())
	assert.True(t, est.Clamped)
	assert.Equal(t, 62*12, est.ClaimAgeMonths)
}

func TestComputeAIMETopYearsAveraging(t *testing.T) {
	person := ssPerson(1960)
	// One year of earnings averages over the full 420 months.
	earnings := []domain.EarningsRecord{{Year: 2020, Amount: dec("42000")}}
	aime := computeAIME(person, earnings, ssTables().WageIndex)
	assert.True(t, aime.Equal(dec("100")), "got %s", aime)
}

func TestNormalRetirementAgeClamps(t *testing.T) {
	rows := ssTables().RetirementAges
	assert.Equal(t, 66*12, normalRetirementAgeMonths(1950, rows))
	assert.Equal(t, 67*12, normalRetirementAgeMonths(1980, rows))
	// Outside the table clamps to the nearest bound.
	assert.Equal(t, 66*12, normalRetirementAgeMonths(1900, rows))
	assert.Equal(t, 67*12, normalRetirementAgeMonths(2150, rows))
}
