package simulation

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

// BracketTax walks a marginal rate schedule ascending, taxing each slice at
// its rate. A nil UpTo marks the unbounded top bracket. tax(0) == 0 and the
// result is non-decreasing in income.
func BracketTax(brackets []domain.TaxBracket, income decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	tax := decimal.Zero
	prev := decimal.Zero
	for _, b := range brackets {
		if b.UpTo == nil {
			tax = tax.Add(income.Sub(prev).Mul(b.Rate))
			break
		}
		top := decimal.Min(income, *b.UpTo)
		if top.GreaterThan(prev) {
			tax = tax.Add(top.Sub(prev).Mul(b.Rate))
		}
		if income.LessThanOrEqual(*b.UpTo) {
			break
		}
		prev = *b.UpTo
	}
	return tax
}

// OrdinaryTax applies the standard deduction and the ordinary schedule.
// The deduction never produces negative taxable income.
func OrdinaryTax(tables *domain.ReferenceTables, filing domain.FilingStatus, ordinaryIncome decimal.Decimal) decimal.Decimal {
	taxable := ordinaryIncome.Sub(tables.StandardDeduction[filing])
	if taxable.LessThan(decimal.Zero) {
		taxable = decimal.Zero
	}
	return BracketTax(tables.OrdinaryBrackets[filing], taxable)
}

// CapitalGainsTax stacks gains on top of ordinary taxable income: each gain
// slice is taxed at the rate of the bracket it lands in.
func CapitalGainsTax(tables *domain.ReferenceTables, filing domain.FilingStatus, ordinaryTaxable, gains decimal.Decimal) decimal.Decimal {
	if gains.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if ordinaryTaxable.LessThan(decimal.Zero) {
		ordinaryTaxable = decimal.Zero
	}
	full := BracketTax(tables.CapGainsBrackets[filing], ordinaryTaxable.Add(gains))
	base := BracketTax(tables.CapGainsBrackets[filing], ordinaryTaxable)
	return full.Sub(base)
}

// IRMAASurcharge looks up the combined Part B/D monthly surcharge for the
// tier whose MaxMAGI bound exceeds the lookback-year MAGI. MAGI above every
// bound lands in the unbounded top tier.
func IRMAASurcharge(tiers []domain.IRMAATier, magi decimal.Decimal) decimal.Decimal {
	for _, tier := range tiers {
		if tier.MaxMAGI == nil || magi.LessThanOrEqual(*tier.MaxMAGI) {
			return tier.MonthlyPartB.Add(tier.MonthlyPartD)
		}
	}
	return decimal.Zero
}

// RMDDivisor returns the life-expectancy divisor for an age. Ages beyond the
// oldest tabulated entry reuse the last divisor decremented per year, floored
// at 1.
func RMDDivisor(divisors map[int]decimal.Decimal, age int) decimal.Decimal {
	if v, ok := divisors[age]; ok {
		return v
	}
	maxAge := 0
	for a := range divisors {
		if a > maxAge {
			maxAge = a
		}
	}
	if maxAge == 0 || age < maxAge {
		return decimal.Zero
	}
	v := divisors[maxAge].Sub(decimal.NewFromInt(int64(age - maxAge)))
	floor := decimal.NewFromInt(1)
	if v.LessThan(floor) {
		return floor
	}
	return v
}

// EstateTax applies the flat rate on value above the exemption.
func EstateTax(value, exemption, rate decimal.Decimal) decimal.Decimal {
	taxable := value.Sub(exemption)
	if taxable.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return taxable.Mul(rate)
}
