package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxBucket identifies the tax treatment of a holding and doubles as the unit
// of the configured withdrawal order.
type TaxBucket string

const (
	BucketTaxable     TaxBucket = "taxable"
	BucketTraditional TaxBucket = "traditional"
	BucketRothBasis   TaxBucket = "roth_basis"
	BucketRoth        TaxBucket = "roth"
	BucketHSA         TaxBucket = "hsa"
)

// AllBuckets is the canonical withdrawal-order domain. Order configs are
// default-filled against it so no bucket is ever unreachable.
var AllBuckets = []TaxBucket{BucketTaxable, BucketTraditional, BucketRothBasis, BucketRoth, BucketHSA}

// LotMethod selects how withdrawals consume cost-basis lots.
type LotMethod string

const (
	LotAverage LotMethod = "average"
	LotFIFO    LotMethod = "fifo"
	LotLIFO    LotMethod = "lifo"
)

// Lot is one cost-basis tranche of a holding.
type Lot struct {
	Date   time.Time       `yaml:"date" json:"date"`
	Amount decimal.Decimal `yaml:"amount" json:"amount"`
}

// CashAccount is a non-investment account; it earns the return model's cash
// yield and is the settlement point for every cashflow.
type CashAccount struct {
	ID      string          `yaml:"id" json:"id"`
	Name    string          `yaml:"name" json:"name"`
	Balance decimal.Decimal `yaml:"balance" json:"balance"`
}

// Holding is one position inside an investment account.
type Holding struct {
	ID             string          `yaml:"id" json:"id"`
	Name           string          `yaml:"name" json:"name"`
	TaxType        TaxBucket       `yaml:"tax_type" json:"tax_type"`
	HoldingType    string          `yaml:"holding_type" json:"holding_type"`
	Balance        decimal.Decimal `yaml:"balance" json:"balance"`
	ExpectedReturn decimal.Decimal `yaml:"expected_return" json:"expected_return"`
	Volatility     decimal.Decimal `yaml:"volatility" json:"volatility"`
	Lots           []Lot           `yaml:"lots,omitempty" json:"lots,omitempty"`
}

// InvestmentAccount groups holdings under one owner.
type InvestmentAccount struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	OwnerID  string    `yaml:"owner_id" json:"owner_id"`
	Holdings []Holding `yaml:"holdings" json:"holdings"`
}
