package entities

import "github.com/shopspring/decimal"

// Kind identifies a record kind at the sink boundary. The value doubles as
// the REST path segment.
type Kind string

const (
	KindCustomer          Kind = "customers"
	KindAccount           Kind = "accounts"
	KindLoan              Kind = "loans"
	KindLoanExposure      Kind = "loan_exposures"
	KindOffBalanceSheet   Kind = "off_balance_sheet"
	KindCapitalComponent  Kind = "capital_components"
	KindLiquidityAsset    Kind = "liquidity_assets"
	KindLiquidityCashflow Kind = "liquidity_cashflows"
)

// Record is anything that can be delivered to a sink.
type Record interface {
	RecordKind() Kind
}

func (*Customer) RecordKind() Kind            { return KindCustomer }
func (*Account) RecordKind() Kind             { return KindAccount }
func (*OffBalanceSheetItem) RecordKind() Kind { return KindOffBalanceSheet }
func (*CapitalComponent) RecordKind() Kind    { return KindCapitalComponent }
func (*LiquidityAsset) RecordKind() Kind      { return KindLiquidityAsset }
func (*LiquidityCashflow) RecordKind() Kind   { return KindLiquidityCashflow }
func (*LoanRecord) RecordKind() Kind          { return KindLoan }
func (*LoanExposure) RecordKind() Kind        { return KindLoanExposure }

// LoanRecord pairs a loan with its performance. Borrower is carried so the
// record can be flattened into a LoanExposure; it is never persisted.
type LoanRecord struct {
	Loan        Loan
	Performance LoanPerformance
	Borrower    *Customer
}

// LoanExposure is the flattened loan view consumed by the regulatory API.
type LoanExposure struct {
	LoanID             string          `json:"loan_id"`
	AccountID          string          `json:"account_id"`
	CustomerID         string          `json:"customer_id"`
	CustomerType       CustomerType    `json:"customer_type"`
	Country            string          `json:"country"`
	ProductType        ProductType     `json:"product_type"`
	Currency           string          `json:"currency"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	InterestRate       float64         `json:"interest_rate"`
	CollateralType     string          `json:"collateral_type"`
	CollateralValue    decimal.Decimal `json:"collateral_value"`
	PD                 float64         `json:"pd_value"`
	LGD                float64         `json:"lgd_value"`
	DaysPastDue        int             `json:"days_past_due"`
	AssetClass         string          `json:"asset_class"`
	Stage              int             `json:"stage"`
	IsNPL              bool            `json:"is_npl"`
	RiskWeight         float64         `json:"risk_weight"`
	OriginationDate    Date            `json:"origination_date"`
	MaturityDate       Date            `json:"maturity_date"`
	LastPaymentDate    Date            `json:"last_payment_date"`
}

// Exposure flattens r. Borrower fields are left empty when unknown.
func (r *LoanRecord) Exposure() *LoanExposure {
	l, p := r.Loan, r.Performance
	e := &LoanExposure{
		LoanID:             l.ID,
		AccountID:          l.AccountID,
		CustomerID:         l.CustomerID,
		ProductType:        l.ProductType,
		Currency:           l.Currency,
		PrincipalAmount:    l.PrincipalAmount,
		OutstandingBalance: l.OutstandingBalance,
		InterestRate:       l.InterestRate,
		CollateralType:     l.CollateralType,
		CollateralValue:    l.CollateralValue,
		DaysPastDue:        p.DaysPastDue,
		AssetClass:         string(l.AssetClass),
		Stage:              int(l.Stage),
		IsNPL:              l.IsNPL,
		RiskWeight:         l.RiskWeight,
		OriginationDate:    l.OriginationDate,
		MaturityDate:       l.MaturityDate,
		LastPaymentDate:    p.LastPaymentDate,
	}
	if b := r.Borrower; b != nil {
		e.CustomerType = b.Type
		e.Country = b.Country
		e.PD = b.PD
		e.LGD = b.LGD
	}
	return e
}
