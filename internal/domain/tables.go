package domain

import "github.com/shopspring/decimal"

// TaxBracket is one slice of a marginal rate schedule. UpTo nil marks the
// unbounded top bracket.
type TaxBracket struct {
	UpTo *decimal.Decimal `yaml:"up_to" json:"up_to"`
	Rate decimal.Decimal  `yaml:"rate" json:"rate"`
}

// IRMAATier is one Medicare surcharge tier. MaxMAGI nil marks the unbounded
// top tier.
type IRMAATier struct {
	MaxMAGI      *decimal.Decimal `yaml:"max_magi" json:"max_magi"`
	MonthlyPartB decimal.Decimal  `yaml:"monthly_part_b" json:"monthly_part_b"`
	MonthlyPartD decimal.Decimal  `yaml:"monthly_part_d" json:"monthly_part_d"`
}

// BendPoints are the PIA formula thresholds for a policy year.
type BendPoints struct {
	Year   int             `yaml:"year" json:"year"`
	First  decimal.Decimal `yaml:"first" json:"first"`
	Second decimal.Decimal `yaml:"second" json:"second"`
}

// RetirementAgeRow maps a birth-year range to a normal retirement age in
// months (e.g. 67 years = 804).
type RetirementAgeRow struct {
	BirthYearFrom int `yaml:"birth_year_from" json:"birth_year_from"`
	BirthYearTo   int `yaml:"birth_year_to" json:"birth_year_to"`
	NRAMonths     int `yaml:"nra_months" json:"nra_months"`
}

// HistoricalYear is one sampled year for historical return mode.
type HistoricalYear struct {
	Year      int                        `yaml:"year" json:"year"`
	Returns   map[string]decimal.Decimal `yaml:"returns" json:"returns"`
	Inflation decimal.Decimal            `yaml:"inflation" json:"inflation"`
}

// ReferenceTables carries the defaulted policy tables frozen into a snapshot.
type ReferenceTables struct {
	WageIndex          map[int]decimal.Decimal          `yaml:"wage_index" json:"wage_index"`
	BendPoints         BendPoints                       `yaml:"bend_points" json:"bend_points"`
	RetirementAges     []RetirementAgeRow               `yaml:"retirement_ages" json:"retirement_ages"`
	RMDDivisors        map[int]decimal.Decimal          `yaml:"rmd_divisors" json:"rmd_divisors"`
	OrdinaryBrackets   map[FilingStatus][]TaxBracket    `yaml:"ordinary_brackets" json:"ordinary_brackets"`
	CapGainsBrackets   map[FilingStatus][]TaxBracket    `yaml:"cap_gains_brackets" json:"cap_gains_brackets"`
	StandardDeduction  map[FilingStatus]decimal.Decimal `yaml:"standard_deduction" json:"standard_deduction"`
	IRMAATiers         map[FilingStatus][]IRMAATier     `yaml:"irmaa_tiers" json:"irmaa_tiers"`
	IRMAALookbackYears int                              `yaml:"irmaa_lookback_years" json:"irmaa_lookback_years"`
	HistoricalReturns  []HistoricalYear                 `yaml:"historical_returns,omitempty" json:"historical_returns,omitempty"`
}
