package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"rras-datagen/internal/classification"
)

// ============================================================================
// ENUMERATIONS
// ============================================================================

// CustomerType is the segment a customer belongs to.
type CustomerType string

const (
	Individual CustomerType = "INDIVIDUAL"
	Retail     CustomerType = "RETAIL"
	Corporate  CustomerType = "CORPORATE"
	SME        CustomerType = "SME"
)

// IsBusiness reports whether the customer is a legal entity.
func (t CustomerType) IsBusiness() bool {
	return t == Corporate || t == SME
}

// AccountType is the product family of an account.
type AccountType string

const (
	Savings AccountType = "SAVINGS"
	Current AccountType = "CURRENT"
	LoanAcc AccountType = "LOAN"
	Deposit AccountType = "DEPOSIT"
	Nostro  AccountType = "NOSTRO"
)

// ProductType is the lending product of a loan.
type ProductType string

const (
	Mortgage ProductType = "MORTGAGE"
	Auto     ProductType = "AUTO"
	Personal ProductType = "PERSONAL"
	SMELoan  ProductType = "SME_LOAN"
)

// CapitalTier is a Basel III capital tier.
type CapitalTier string

const (
	CET1 CapitalTier = "CET1"
	AT1  CapitalTier = "AT1"
	T2   CapitalTier = "T2"
)

// CapitalTiers lists tiers in order of loss absorbency.
var CapitalTiers = []CapitalTier{CET1, AT1, T2}

const (
	StatusActive = "ACTIVE"

	CollateralNone     = "NONE"
	CollateralProperty = "PROPERTY"
	CollateralVehicle  = "VEHICLE"

	FlowInflow  = "INFLOW"
	FlowOutflow = "OUTFLOW"
)

// ============================================================================
// CUSTOMER / ACCOUNT / LOAN GRAPH
// ============================================================================

// Customer is immutable once generated.
type Customer struct {
	ID                string       `json:"customer_id" db:"customer_id"`
	Type              CustomerType `json:"customer_type" db:"customer_type"`
	Name              string       `json:"name,omitempty" db:"-"` // not persisted by the relational sink
	SectorCode        string       `json:"sector_code" db:"-"`
	SectorName        string       `json:"sector_name,omitempty" db:"-"`
	Country           string       `json:"country" db:"country"`
	Town              string       `json:"town,omitempty" db:"-"`
	CountryRiskRating int          `json:"country_risk_rating" db:"country_risk_rating"`
	InternalRating    string       `json:"internal_rating" db:"internal_rating"`
	ExternalRating    *string      `json:"external_rating" db:"external_rating"`
	PD                float64      `json:"pd_value" db:"pd_value"`
	LGD               float64      `json:"lgd_value" db:"lgd_value"`
	IsFinancialInst   bool         `json:"is_financial_inst" db:"is_financial_inst"`
	IsPublicSector    bool         `json:"is_public_sector" db:"is_public_sector"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
}

// Account belongs to exactly one customer.
type Account struct {
	ID               string          `json:"account_id" db:"account_id"`
	CustomerID       string          `json:"customer_id" db:"customer_id"`
	Type             AccountType     `json:"account_type" db:"account_type"`
	Currency         string          `json:"currency" db:"currency"`
	Balance          decimal.Decimal `json:"balance" db:"balance"`
	AvailableBalance decimal.Decimal `json:"available_balance" db:"available_balance"`
	Status           string          `json:"status" db:"status"`
	OpenedAt         Date            `json:"opened_at" db:"-"`
}

// Loan belongs to exactly one LOAN account. Its classification fields are
// derived from the paired LoanPerformance and must only be changed through
// Reclassify.
type Loan struct {
	ID                  string                    `json:"loan_id" db:"loan_id"`
	AccountID           string                    `json:"account_id" db:"account_id"`
	CustomerID          string                    `json:"customer_id" db:"-"`
	Currency            string                    `json:"currency" db:"-"`
	PrincipalAmount     decimal.Decimal           `json:"principal_amount" db:"principal_amount"`
	OutstandingBalance  decimal.Decimal           `json:"outstanding_balance" db:"outstanding_balance"`
	InterestRate        float64                   `json:"interest_rate" db:"interest_rate"`
	OriginationDate     Date                      `json:"origination_date" db:"origination_date"`
	MaturityDate        Date                      `json:"maturity_date" db:"maturity_date"`
	CollateralType      string                    `json:"collateral_type" db:"collateral_type"`
	CollateralValue     decimal.Decimal           `json:"collateral_value" db:"collateral_value"`
	ProductType         ProductType               `json:"product_type" db:"product_type"`
	LoanPurpose         string                    `json:"loan_purpose" db:"loan_purpose"`
	AssetClass          classification.AssetClass `json:"asset_class" db:"asset_class"`
	Stage               classification.Stage      `json:"stage" db:"stage"`
	IsNPL               bool                      `json:"is_npl" db:"-"`
	RiskWeight          float64                   `json:"risk_weight" db:"-"`
	OriginalTermMonths  int                       `json:"original_term_months" db:"original_term_months"`
	RemainingTermMonths int                       `json:"remaining_term_months" db:"remaining_term_months"`
}

// LoanPerformance is the repayment status of a loan.
type LoanPerformance struct {
	LoanID            string          `json:"loan_id" db:"loan_id"`
	DaysPastDue       int             `json:"days_past_due" db:"days_past_due"`
	LastPaymentDate   Date            `json:"last_payment_date" db:"last_payment_date"`
	LastPaymentAmount decimal.Decimal `json:"last_payment_amount" db:"last_payment_amount"`
}

// Reclassify sets the loan's dpd-derived fields from perf. The risk weight
// is recomputed from pd and rng.
func (l *Loan) Reclassify(perf LoanPerformance, pd float64, rng classification.Rand) {
	c := classification.Classify(perf.DaysPastDue)
	l.AssetClass = c.AssetClass
	l.Stage = c.Stage
	l.IsNPL = c.NPL
	l.RiskWeight = classification.RiskWeight(c.DaysPastDue, pd, rng)
}

// CheckConsistent returns ErrInconsistentClassification when the stored
// class, stage or NPL flag disagree with perf's days past due.
func (l *Loan) CheckConsistent(perf LoanPerformance) error {
	c := classification.Classification{
		DaysPastDue: perf.DaysPastDue,
		AssetClass:  l.AssetClass,
		Stage:       l.Stage,
		NPL:         l.IsNPL,
	}
	if !c.Consistent() {
		return &ClassificationError{LoanID: l.ID, DaysPastDue: perf.DaysPastDue, AssetClass: l.AssetClass, Stage: l.Stage}
	}
	return nil
}

// OffBalanceSheetItem is a contingent exposure such as a guarantee.
type OffBalanceSheetItem struct {
	ID               string          `json:"item_id"`
	CustomerID       string          `json:"customer_id"`
	ItemType         string          `json:"item_type"`
	Currency         string          `json:"currency"`
	NotionalAmount   decimal.Decimal `json:"notional_amount"`
	CCF              float64         `json:"credit_conversion_factor"`
	CreditEquivalent decimal.Decimal `json:"credit_equivalent_amount"`
	IssueDate        Date            `json:"issue_date"`
	MaturityDate     Date            `json:"maturity_date"`
}

// ============================================================================
// REGULATORY SNAPSHOTS
// ============================================================================

// CapitalComponent is one line of the regulatory capital stack.
type CapitalComponent struct {
	AsOfDate             Date            `json:"as_of_date" db:"as_of_date"`
	Tier                 CapitalTier     `json:"component_type" db:"component_type"`
	Name                 string          `json:"component_name" db:"component_name"`
	Amount               decimal.Decimal `json:"amount" db:"amount"`
	Currency             string          `json:"currency" db:"currency"`
	RegulatoryAdjustment decimal.Decimal `json:"regulatory_adjustment" db:"regulatory_adjustment"`
}

// LiquidityAsset is a holding in the HQLA buffer.
type LiquidityAsset struct {
	AssetType      string          `json:"asset_type" db:"asset_type"`
	Currency       string          `json:"currency" db:"currency"`
	MarketValue    decimal.Decimal `json:"market_value" db:"market_value"`
	Haircut        float64         `json:"haircut_percentage" db:"haircut_percentage"`
	HQLALevel      int             `json:"hqla_level" db:"hqla_level"`
	IsUnencumbered bool            `json:"is_unencumbered" db:"is_unencumbered"`
	AsOfDate       Date            `json:"as_of_date" db:"as_of_date"`
}

// WeightedValue is the market value after haircut.
func (a LiquidityAsset) WeightedValue() decimal.Decimal {
	return a.MarketValue.Mul(decimal.NewFromFloat(1 - a.Haircut)).Round(2)
}

// LiquidityCashflow is a contractual flow used in LCR stress runs.
type LiquidityCashflow struct {
	FlowType       string          `json:"flow_type"`
	Category       string          `json:"category"`
	MaturityBucket string          `json:"maturity_bucket"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	StressFactor   float64         `json:"stress_factor"`
	AsOfDate       Date            `json:"as_of_date"`
}
