package domain

import "time"

// SimulationSnapshot is the immutable input to one simulation run. It is
// frozen once at run start; the engine never re-reads live storage mid-run,
// which keeps a seeded run deterministic.
type SimulationSnapshot struct {
	Scenario       Scenario                 `yaml:"scenario" json:"scenario"`
	People         []Person                 `yaml:"people" json:"people"`
	SocialSecurity []SocialSecurityStrategy `yaml:"social_security,omitempty" json:"social_security,omitempty"`
	WorkPeriods    []WorkPeriod             `yaml:"work_periods,omitempty" json:"work_periods,omitempty"`
	Spending       []SpendingLineItem       `yaml:"spending,omitempty" json:"spending,omitempty"`
	CashAccounts   []CashAccount            `yaml:"cash_accounts,omitempty" json:"cash_accounts,omitempty"`
	Investments    []InvestmentAccount      `yaml:"investments,omitempty" json:"investments,omitempty"`
	Tables         ReferenceTables          `yaml:"tables" json:"tables"`
}

// SimulationSettings fixes the run horizon.
type SimulationSettings struct {
	StartDate time.Time `yaml:"start_date" json:"start_date"`
	Months    int       `yaml:"months" json:"months"`
}

// SimulationInput is the engine's single argument.
type SimulationInput struct {
	Snapshot SimulationSnapshot `yaml:"snapshot" json:"snapshot"`
	Settings SimulationSettings `yaml:"settings" json:"settings"`
}

// PersonByID finds a person in the snapshot.
func (s *SimulationSnapshot) PersonByID(id string) *Person {
	for i := range s.People {
		if s.People[i].ID == id {
			return &s.People[i]
		}
	}
	return nil
}

// SocialSecurityFor returns the claim strategy for a person, if any.
func (s *SimulationSnapshot) SocialSecurityFor(personID string) *SocialSecurityStrategy {
	for i := range s.SocialSecurity {
		if s.SocialSecurity[i].PersonID == personID {
			return &s.SocialSecurity[i]
		}
	}
	return nil
}
