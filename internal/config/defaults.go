package config

import (
	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-simulator/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }
func dp(s string) *decimal.Decimal { v := decimal.RequireFromString(s); return &v }

// DefaultStrategies returns the complete baseline policy. Normalize merges
// user overrides on top, so the engine never sees a missing required field.
func DefaultStrategies() domain.Strategies {
	return domain.Strategies{
		ReturnModel: domain.ReturnModelStrategy{
			Mode:            domain.ReturnDeterministic,
			SequenceModel:   domain.SequenceIndependent,
			Correlation:     domain.CorrelationCorrelated,
			VolatilityScale: d("1"),
			CashYield:       d("0.02"),
			Seed:            "default",
			Persistence:     d("0.2"),
			StochasticRuns:  200,
			Inflation: map[domain.InflationType]domain.InflationAssumption{
				domain.InflationGeneral: {Rate: d("0.025"), StdDev: d("0.012")},
				domain.InflationMedical: {Rate: d("0.045"), StdDev: d("0.018")},
				domain.InflationBenefit: {Rate: d("0.022"), StdDev: d("0.010")},
			},
		},
		Rebalancing: domain.RebalancingStrategy{
			FrequencyMonths: 12,
			DriftThreshold:  d("0.05"),
		},
		CashBuffer: domain.CashBufferStrategy{
			TargetMonths:   6,
			RefillBelowPct: 50,
		},
		Withdrawal: domain.WithdrawalStrategy{
			Order:          append([]domain.TaxBucket(nil), domain.AllBuckets...),
			DrainCashFirst: true,
			Guardrail:      domain.GuardrailConfig{Kind: domain.GuardrailNone},
		},
		TaxableLot: domain.TaxableLotStrategy{Method: domain.LotAverage},
		RothConversion: domain.RothConversionStrategy{
			TargetBracketCeiling: d("206700"),
		},
		RMD: domain.RMDStrategy{
			StartAge:       73,
			ExcessHandling: domain.RMDExcessSpend,
		},
		Healthcare: domain.HealthcareStrategy{
			MonthlyPreMedicare: d("1100"),
			MonthlyMedicare:    d("450"),
			MedicareAge:        65,
		},
		Tax: domain.TaxStrategy{
			FilingStatus: domain.FilingMarried,
			PolicyYear:   2025,
		},
		Death: domain.DeathStrategy{
			EstateExemption: d("13990000"),
			EstateTaxRate:   d("0.40"),
		},
	}
}

// DefaultTables returns the 2025 policy tables.
func DefaultTables() domain.ReferenceTables {
	return domain.ReferenceTables{
		WageIndex:        defaultWageIndex(),
		BendPoints:       domain.BendPoints{Year: 2025, First: d("1226"), Second: d("7391")},
		RetirementAges:   defaultRetirementAges(),
		RMDDivisors:      defaultRMDDivisors(),
		OrdinaryBrackets: defaultOrdinaryBrackets(),
		CapGainsBrackets: defaultCapGainsBrackets(),
		StandardDeduction: map[domain.FilingStatus]decimal.Decimal{
			domain.FilingSingle:  d("15000"),
			domain.FilingMarried: d("30000"),
		},
		IRMAATiers:         defaultIRMAATiers(),
		IRMAALookbackYears: 2,
	}
}

func defaultOrdinaryBrackets() map[domain.FilingStatus][]domain.TaxBracket {
	return map[domain.FilingStatus][]domain.TaxBracket{
		domain.FilingSingle: {
			{UpTo: dp("11925"), Rate: d("0.10")},
			{UpTo: dp("48475"), Rate: d("0.12")},
			{UpTo: dp("103350"), Rate: d("0.22")},
			{UpTo: dp("197300"), Rate: d("0.24")},
			{UpTo: dp("250525"), Rate: d("0.32")},
			{UpTo: dp("626350"), Rate: d("0.35")},
			{UpTo: nil, Rate: d("0.37")},
		},
		domain.FilingMarried: {
			{UpTo: dp("23850"), Rate: d("0.10")},
			{UpTo: dp("96950"), Rate: d("0.12")},
			{UpTo: dp("206700"), Rate: d("0.22")},
			{UpTo: dp("394600"), Rate: d("0.24")},
			{UpTo: dp("501050"), Rate: d("0.32")},
			{UpTo: dp("751600"), Rate: d("0.35")},
			{UpTo: nil, Rate: d("0.37")},
		},
	}
}

func defaultCapGainsBrackets() map[domain.FilingStatus][]domain.TaxBracket {
	return map[domain.FilingStatus][]domain.TaxBracket{
		domain.FilingSingle: {
			{UpTo: dp("48350"), Rate: d("0")},
			{UpTo: dp("533400"), Rate: d("0.15")},
			{UpTo: nil, Rate: d("0.20")},
		},
		domain.FilingMarried: {
			{UpTo: dp("96700"), Rate: d("0")},
			{UpTo: dp("600050"), Rate: d("0.15")},
			{UpTo: nil, Rate: d("0.20")},
		},
	}
}

func defaultIRMAATiers() map[domain.FilingStatus][]domain.IRMAATier {
	return map[domain.FilingStatus][]domain.IRMAATier{
		domain.FilingSingle: {
			{MaxMAGI: dp("106000"), MonthlyPartB: d("0"), MonthlyPartD: d("0")},
			{MaxMAGI: dp("133000"), MonthlyPartB: d("74.00"), MonthlyPartD: d("13.70")},
			{MaxMAGI: dp("167000"), MonthlyPartB: d("185.00"), MonthlyPartD: d("35.30")},
			{MaxMAGI: dp("200000"), MonthlyPartB: d("295.90"), MonthlyPartD: d("57.00")},
			{MaxMAGI: dp("500000"), MonthlyPartB: d("406.90"), MonthlyPartD: d("78.60")},
			{MaxMAGI: nil, MonthlyPartB: d("443.90"), MonthlyPartD: d("85.80")},
		},
		domain.FilingMarried: {
			{MaxMAGI: dp("212000"), MonthlyPartB: d("0"), MonthlyPartD: d("0")},
			{MaxMAGI: dp("266000"), MonthlyPartB: d("74.00"), MonthlyPartD: d("13.70")},
			{MaxMAGI: dp("334000"), MonthlyPartB: d("185.00"), MonthlyPartD: d("35.30")},
			{MaxMAGI: dp("400000"), MonthlyPartB: d("295.90"), MonthlyPartD: d("57.00")},
			{MaxMAGI: dp("750000"), MonthlyPartB: d("406.90"), MonthlyPartD: d("78.60")},
			{MaxMAGI: nil, MonthlyPartB: d("443.90"), MonthlyPartD: d("85.80")},
		},
	}
}

// defaultRMDDivisors is the IRS Uniform Lifetime Table. Ages beyond the table
// extrapolate down to a floor of one.
func defaultRMDDivisors() map[int]decimal.Decimal {
	return map[int]decimal.Decimal{
		73: d("26.5"), 74: d("25.5"), 75: d("24.6"), 76: d("23.7"),
		77: d("22.9"), 78: d("22.0"), 79: d("21.1"), 80: d("20.2"),
		81: d("19.4"), 82: d("18.5"), 83: d("17.7"), 84: d("16.8"),
		85: d("16.0"), 86: d("15.2"), 87: d("14.4"), 88: d("13.7"),
		89: d("12.9"), 90: d("12.2"), 91: d("11.5"), 92: d("10.8"),
		93: d("10.1"), 94: d("9.5"), 95: d("8.9"), 96: d("8.4"),
		97: d("7.8"), 98: d("7.3"), 99: d("6.8"), 100: d("6.4"),
	}
}

func defaultRetirementAges() []domain.RetirementAgeRow {
	return []domain.RetirementAgeRow{
		{BirthYearFrom: 1900, BirthYearTo: 1937, NRAMonths: 65 * 12},
		{BirthYearFrom: 1938, BirthYearTo: 1942, NRAMonths: 65*12 + 6},
		{BirthYearFrom: 1943, BirthYearTo: 1954, NRAMonths: 66 * 12},
		{BirthYearFrom: 1955, BirthYearTo: 1955, NRAMonths: 66*12 + 2},
		{BirthYearFrom: 1956, BirthYearTo: 1956, NRAMonths: 66*12 + 4},
		{BirthYearFrom: 1957, BirthYearTo: 1957, NRAMonths: 66*12 + 6},
		{BirthYearFrom: 1958, BirthYearTo: 1958, NRAMonths: 66*12 + 8},
		{BirthYearFrom: 1959, BirthYearTo: 1959, NRAMonths: 66*12 + 10},
		{BirthYearFrom: 1960, BirthYearTo: 2100, NRAMonths: 67 * 12},
	}
}

// defaultWageIndex is the national average wage index series. Years outside
// the table clamp to the nearest entry.
func defaultWageIndex() map[int]decimal.Decimal {
	return map[int]decimal.Decimal{
		1985: d("16822.51"), 1986: d("17321.82"), 1987: d("18426.51"),
		1988: d("19334.04"), 1989: d("20099.55"), 1990: d("21027.98"),
		1991: d("21811.60"), 1992: d("22935.42"), 1993: d("23132.67"),
		1994: d("23753.53"), 1995: d("24705.66"), 1996: d("25913.90"),
		1997: d("27426.00"), 1998: d("28861.44"), 1999: d("30469.84"),
		2000: d("32154.82"), 2001: d("32921.92"), 2002: d("33252.09"),
		2003: d("34064.95"), 2004: d("35648.55"), 2005: d("36952.94"),
		2006: d("38651.41"), 2007: d("40405.48"), 2008: d("41334.97"),
		2009: d("40711.61"), 2010: d("41673.83"), 2011: d("42979.61"),
		2012: d("44321.67"), 2013: d("44888.16"), 2014: d("46481.52"),
		2015: d("48098.63"), 2016: d("48642.15"), 2017: d("50321.89"),
		2018: d("52145.80"), 2019: d("54099.99"), 2020: d("55628.60"),
		2021: d("60575.07"), 2022: d("63795.13"), 2023: d("66621.80"),
		2024: d("69391.78"),
	}
}
