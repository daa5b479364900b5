package simulation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"github.com/rpgo/retirement-simulator/pkg/dateutil"
)

const (
	ssTopYears       = 35
	ssEarliestClaim  = 62 * 12 // months of age
	ssLatestClaim    = 70 * 12
	ssEarlyFirstBand = 36 // months at 5/9 of 1%
)

// BenefitEstimate carries the monthly benefit along with the AIME/PIA
// intermediates for audit output.
type BenefitEstimate struct {
	Monthly        decimal.Decimal
	AIME           decimal.Decimal
	PIA            decimal.Decimal
	ClaimYear      int
	ClaimAgeMonths int
	NRAMonths      int
	Clamped        bool
}

// EstimateBenefit computes a person's Social Security benefit from their
// earnings history: wage-index each year to age 60, average the top 35
// indexed years (zero-filling gaps) into AIME, run the two-bend-point PIA
// formula, then adjust for the claim age against the birth-year normal
// retirement age.
func EstimateBenefit(person *domain.Person, ss *domain.SocialSecurityStrategy, tables *domain.ReferenceTables) BenefitEstimate {
	est := BenefitEstimate{ClaimYear: ss.ClaimDate.Year()}

	if ss.MonthlyOverride != nil {
		est.Monthly = *ss.MonthlyOverride
		return est
	}

	est.AIME = computeAIME(person, ss.Earnings, tables.WageIndex)
	est.PIA = computePIA(est.AIME, tables.BendPoints)
	est.NRAMonths = normalRetirementAgeMonths(person.BirthDate.Year(), tables.RetirementAges)

	claimMonths := dateutil.AgeInMonths(person.BirthDate, ss.ClaimDate)
	if claimMonths < ssEarliestClaim {
		claimMonths = ssEarliestClaim
		est.Clamped = true
	}
	if claimMonths > ssLatestClaim {
		claimMonths = ssLatestClaim
		est.Clamped = true
	}
	est.ClaimAgeMonths = claimMonths

	est.Monthly = adjustForClaimAge(est.PIA, claimMonths, est.NRAMonths)
	return est
}

// computeAIME wage-indexes each historical earning by the ratio of the index
// in the person's age-60 year to the index in the earning year, then averages
// the top 35 years over 420 months. Fewer than 35 years zero-fill.
func computeAIME(person *domain.Person, earnings []domain.EarningsRecord, wageIndex map[int]decimal.Decimal) decimal.Decimal {
	if len(earnings) == 0 {
		return decimal.Zero
	}
	age60Year := person.BirthDate.Year() + 60
	baseIndex := lookupWageIndex(wageIndex, age60Year)

	indexed := make([]decimal.Decimal, 0, len(earnings))
	for _, e := range earnings {
		v := e.Amount
		// Earnings at or after age 60 are taken at face value.
		if e.Year < age60Year {
			yearIndex := lookupWageIndex(wageIndex, e.Year)
			if yearIndex.IsPositive() {
				v = v.Mul(baseIndex).Div(yearIndex)
			}
		}
		indexed = append(indexed, v)
	}
	sort.Slice(indexed, func(i, j int) bool { return indexed[i].GreaterThan(indexed[j]) })
	if len(indexed) > ssTopYears {
		indexed = indexed[:ssTopYears]
	}

	var sum decimal.Decimal
	for _, v := range indexed {
		sum = sum.Add(v)
	}
	return sum.Div(decimal.NewFromInt(ssTopYears * 12))
}

// computePIA applies the 90%/32%/15% marginal benefit rates at the bend
// points.
func computePIA(aime decimal.Decimal, bends domain.BendPoints) decimal.Decimal {
	first := decimal.Min(aime, bends.First)
	pia := first.Mul(decimal.NewFromFloat(0.90))
	if aime.GreaterThan(bends.First) {
		second := decimal.Min(aime, bends.Second).Sub(bends.First)
		pia = pia.Add(second.Mul(decimal.NewFromFloat(0.32)))
	}
	if aime.GreaterThan(bends.Second) {
		pia = pia.Add(aime.Sub(bends.Second).Mul(decimal.NewFromFloat(0.15)))
	}
	return pia
}

// normalRetirementAgeMonths resolves the NRA row for a birth year, clamping
// to the nearest table bound when the year falls outside the table.
func normalRetirementAgeMonths(birthYear int, rows []domain.RetirementAgeRow) int {
	if len(rows) == 0 {
		return 67 * 12
	}
	for _, row := range rows {
		if birthYear >= row.BirthYearFrom && birthYear <= row.BirthYearTo {
			return row.NRAMonths
		}
	}
	if birthYear < rows[0].BirthYearFrom {
		return rows[0].NRAMonths
	}
	return rows[len(rows)-1].NRAMonths
}

// adjustForClaimAge applies the month-denominated early-claim reduction
// (5/9 of 1% for the first 36 months, 5/12 of 1% beyond) or the delayed
// credit (2/3 of 1% per month) relative to the normal retirement age.
func adjustForClaimAge(pia decimal.Decimal, claimMonths, nraMonths int) decimal.Decimal {
	one := decimal.NewFromInt(1)
	switch {
	case claimMonths < nraMonths:
		early := nraMonths - claimMonths
		band := early
		if band > ssEarlyFirstBand {
			band = ssEarlyFirstBand
		}
		reduction := decimal.NewFromFloat(5.0 / 9.0 / 100.0).Mul(decimal.NewFromInt(int64(band)))
		if early > ssEarlyFirstBand {
			extra := early - ssEarlyFirstBand
			reduction = reduction.Add(decimal.NewFromFloat(5.0 / 12.0 / 100.0).Mul(decimal.NewFromInt(int64(extra))))
		}
		return pia.Mul(one.Sub(reduction))
	case claimMonths > nraMonths:
		delayed := claimMonths - nraMonths
		credit := decimal.NewFromFloat(2.0 / 3.0 / 100.0).Mul(decimal.NewFromInt(int64(delayed)))
		return pia.Mul(one.Add(credit))
	default:
		return pia
	}
}

func lookupWageIndex(wageIndex map[int]decimal.Decimal, year int) decimal.Decimal {
	if v, ok := wageIndex[year]; ok {
		return v
	}
	// Clamp to the nearest tabulated year.
	best, found := decimal.Zero, false
	bestYear := 0
	for y, v := range wageIndex {
		if !found || abs(year-y) < abs(year-bestYear) {
			best, bestYear, found = v, y, true
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// taxableSocialSecurity determines the federally taxable share of benefits
// from provisional income (other ordinary income plus half of benefits).
func taxableSocialSecurity(annualBenefit, otherIncome decimal.Decimal, filing domain.FilingStatus) decimal.Decimal {
	if annualBenefit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	t1 := decimal.NewFromInt(32000)
	t2 := decimal.NewFromInt(44000)
	if filing == domain.FilingSingle {
		t1 = decimal.NewFromInt(25000)
		t2 = decimal.NewFromInt(34000)
	}
	provisional := otherIncome.Add(annualBenefit.Mul(decimal.NewFromFloat(0.5)))

	switch {
	case provisional.LessThanOrEqual(t1):
		return decimal.Zero
	case provisional.LessThanOrEqual(t2):
		half := annualBenefit.Mul(decimal.NewFromFloat(0.5))
		return decimal.Min(provisional.Sub(t1).Mul(decimal.NewFromFloat(0.5)), half)
	default:
		pct85 := decimal.NewFromFloat(0.85)
		capped := annualBenefit.Mul(pct85)
		stacked := provisional.Sub(t2).Mul(pct85).Add(t2.Sub(t1).Mul(decimal.NewFromFloat(0.5)))
		return decimal.Min(capped, stacked)
	}
}
