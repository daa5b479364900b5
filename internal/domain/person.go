package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Person is one member of the simulated household.
type Person struct {
	ID                  string    `yaml:"id" json:"id"`
	Name                string    `yaml:"name" json:"name"`
	BirthDate           time.Time `yaml:"birth_date" json:"birth_date"`
	LifeExpectancyYears int       `yaml:"life_expectancy_years" json:"life_expectancy_years"`
}

// EarningsRecord is one year of covered wages, used by the Social Security
// estimator.
type EarningsRecord struct {
	Year   int             `yaml:"year" json:"year"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// SocialSecurityStrategy fixes a person's claim date. MonthlyOverride skips
// the AIME/PIA estimate entirely when the user already knows the benefit.
type SocialSecurityStrategy struct {
	PersonID        string           `yaml:"person_id" json:"person_id"`
	ClaimDate       time.Time        `yaml:"claim_date" json:"claim_date"`
	MonthlyOverride *decimal.Decimal `yaml:"monthly_override,omitempty" json:"monthly_override,omitempty"`
	Earnings        []EarningsRecord `yaml:"earnings,omitempty" json:"earnings,omitempty"`
}

// WorkPeriod is a span of future employment with its pay and plan
// contributions, all monthly amounts.
type WorkPeriod struct {
	PersonID        string          `yaml:"person_id" json:"person_id"`
	Start           time.Time       `yaml:"start" json:"start"`
	End             time.Time       `yaml:"end" json:"end"`
	MonthlyIncome   decimal.Decimal `yaml:"monthly_income" json:"monthly_income"`
	Pretax401k      decimal.Decimal `yaml:"pretax_401k" json:"pretax_401k"`
	Roth401k        decimal.Decimal `yaml:"roth_401k" json:"roth_401k"`
	EmployerMatch   decimal.Decimal `yaml:"employer_match" json:"employer_match"`
	HSAContribution decimal.Decimal `yaml:"hsa_contribution" json:"hsa_contribution"`
}

// SpendingCategory distinguishes essential from discretionary spending.
// Guardrails only ever scale wants.
type SpendingCategory string

const (
	SpendNeed SpendingCategory = "need"
	SpendWant SpendingCategory = "want"
)

// SpendingLineItem is one recurring monthly expense in today's dollars.
type SpendingLineItem struct {
	Label         string           `yaml:"label" json:"label"`
	Monthly       decimal.Decimal  `yaml:"monthly" json:"monthly"`
	Category      SpendingCategory `yaml:"category" json:"category"`
	Start         *time.Time       `yaml:"start,omitempty" json:"start,omitempty"`
	End           *time.Time       `yaml:"end,omitempty" json:"end,omitempty"`
	InflationType InflationType    `yaml:"inflation_type" json:"inflation_type"`
}
