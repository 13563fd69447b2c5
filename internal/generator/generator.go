// Package generator builds internally consistent customer, account and loan
// records. Every draw comes from a caller-supplied *rand.Rand and every
// identifier is claimed in a run-scoped State, so a seeded run reproduces
// exactly and never repeats an id.
package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"rras-datagen/internal/classification"
	"rras-datagen/internal/entities"
	"rras-datagen/internal/refdata"
)

const maxIDAttempts = 64

var (
	// ErrIDSpaceExhausted is returned when no unused identifier could be
	// drawn within maxIDAttempts.
	ErrIDSpaceExhausted = errors.New("identifier space exhausted")
	// ErrNotLoanAccount is returned when a loan is requested for an account
	// that is not LOAN-typed.
	ErrNotLoanAccount = errors.New("account is not a loan account")
)

// Generator draws records according to a Policy. It holds no mutable state
// of its own; uniqueness lives in the shared State.
type Generator struct {
	policy Policy
	state  *State
	asOf   time.Time
}

// New validates policy and returns a Generator that dates records relative
// to asOf.
func New(policy Policy, state *State, asOf time.Time) (*Generator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if state == nil {
		state = NewState()
	}
	return &Generator{policy: policy, state: state, asOf: asOf}, nil
}

// Policy returns the policy the generator was built with.
func (g *Generator) Policy() Policy { return g.policy }

// AsOf returns the reference date for generated records.
func (g *Generator) AsOf() time.Time { return g.asOf }

// Customer generates a customer. An empty override draws the type from the
// policy's business share.
func (g *Generator) Customer(rng *rand.Rand, override entities.CustomerType) (*entities.Customer, error) {
	id, err := g.newID(rng, CustomerIDs)
	if err != nil {
		return nil, err
	}

	typ := override
	if typ == "" {
		typ = g.policy.PersonalType
		if rng.Float64() < g.policy.BusinessShare {
			typ = pick(rng, g.policy.BusinessTypes)
		}
	}

	c := &entities.Customer{
		ID:                id,
		Type:              typ,
		Country:           refdata.HomeCountry,
		Town:              pick(rng, refdata.Towns),
		CountryRiskRating: 2 + rng.Intn(4),
		InternalRating:    pick(rng, refdata.InternalRatings),
		PD:                round(uniform(rng, g.policy.PD), 6),
		LGD:               round(uniform(rng, g.policy.LGD), 6),
		CreatedAt:         g.asOf,
	}
	if rng.Float64() < g.policy.ForeignCountryProb {
		c.Country = refdata.ForeignCountry
	}

	switch typ {
	case entities.Corporate:
		corp := pick(rng, refdata.Corporates)
		c.Name = corp.Name + " " + pick(rng, refdata.LegalSuffixes)
		c.SectorCode = corp.Sector
		c.IsPublicSector = corp.PublicSector
		c.IsFinancialInst = corp.Financial
	case entities.SME:
		c.Name = pick(rng, refdata.SMENames) + " " + pick(rng, refdata.LegalSuffixes)
		c.SectorCode = pick(rng, refdata.SMETradingSectors)
	default:
		c.Name = pick(rng, refdata.FirstNames) + " " + pick(rng, refdata.Surnames)
		c.SectorCode = refdata.HouseholdSector
	}
	c.SectorName = refdata.SectorName(c.SectorCode)
	return c, nil
}

// Account generates an account for customerID. LOAN accounts always open
// with a zero balance; the exposure lives on the loan.
func (g *Generator) Account(customerID string, rng *rand.Rand, override entities.AccountType) (*entities.Account, error) {
	id, err := g.newID(rng, AccountIDs)
	if err != nil {
		return nil, err
	}

	typ := override
	if typ == "" {
		typ = pick(rng, g.policy.AccountTypes)
	}
	currency := refdata.LocalCurrency
	if rng.Float64() < g.policy.ForeignCurrencyProb {
		currency = refdata.ForeignCurrency
	}
	balance := decimal.Zero
	if typ != entities.LoanAcc {
		balance = money(uniform(rng, g.policy.Balance))
	}

	return &entities.Account{
		ID:               id,
		CustomerID:       customerID,
		Type:             typ,
		Currency:         currency,
		Balance:          balance,
		AvailableBalance: balance,
		Status:           entities.StatusActive,
		OpenedAt:         entities.NewDate(g.asOf.AddDate(0, 0, -rng.Intn(5*365))),
	}, nil
}

// Loan generates a loan and its performance for a LOAN account. borrower
// supplies the probability of default used for the risk weight and may be
// nil.
func (g *Generator) Loan(account *entities.Account, borrower *entities.Customer, rng *rand.Rand) (*entities.LoanRecord, error) {
	if account.Type != entities.LoanAcc {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotLoanAccount, account.ID, account.Type)
	}
	id, err := g.newID(rng, LoanIDs)
	if err != nil {
		return nil, err
	}

	principal := money(uniform(rng, g.policy.Principal))
	// outstanding <= principal because the factor never exceeds 1.
	outstanding := principal.Mul(decimal.NewFromFloat(uniform(rng, g.policy.OutstandingFactor))).Round(2)

	origination := g.asOf.AddDate(0, 0, -(365 + rng.Intn(4*365+1)))
	term := pick(rng, refdata.LoanTermsMonths)
	maturity := origination.AddDate(0, term, 0)
	remaining := term - monthsBetween(origination, g.asOf)
	if remaining < 0 {
		remaining = 0
	}

	product := pick(rng, g.policy.ProductTypes)
	collateralType, collateralValue := g.collateral(rng, product, principal)

	loan := entities.Loan{
		ID:                  id,
		AccountID:           account.ID,
		CustomerID:          account.CustomerID,
		Currency:            account.Currency,
		PrincipalAmount:     principal,
		OutstandingBalance:  outstanding,
		InterestRate:        round(uniform(rng, g.policy.InterestRate), 4),
		OriginationDate:     entities.NewDate(origination),
		MaturityDate:        entities.NewDate(maturity),
		CollateralType:      collateralType,
		CollateralValue:     collateralValue,
		ProductType:         product,
		LoanPurpose:         loanPurpose(product),
		OriginalTermMonths:  term,
		RemainingTermMonths: remaining,
	}

	dpd := g.daysPastDue(rng)
	perf := entities.LoanPerformance{
		LoanID:            id,
		DaysPastDue:       dpd,
		LastPaymentDate:   entities.NewDate(g.asOf.AddDate(0, 0, -dpd)),
		LastPaymentAmount: principal.Div(decimal.NewFromInt(int64(term))).Round(2),
	}

	pd := 0.0
	if borrower != nil {
		pd = borrower.PD
	}
	loan.Reclassify(perf, pd, rng)

	return &entities.LoanRecord{Loan: loan, Performance: perf, Borrower: borrower}, nil
}

// OffBalanceSheet generates a contingent exposure for customer.
func (g *Generator) OffBalanceSheet(customer *entities.Customer, rng *rand.Rand) (*entities.OffBalanceSheetItem, error) {
	id, err := g.newID(rng, OffBalanceSheetIDs)
	if err != nil {
		return nil, err
	}

	itemType := pick(rng, classification.OffBalanceSheetTypes)
	notional := money(uniform(rng, g.policy.OffBalanceSheet))
	ccf := classification.CreditConversionFactor(itemType)
	issued := g.asOf.AddDate(0, 0, -rng.Intn(365))

	return &entities.OffBalanceSheetItem{
		ID:               id,
		CustomerID:       customer.ID,
		ItemType:         itemType,
		Currency:         refdata.LocalCurrency,
		NotionalAmount:   notional,
		CCF:              ccf,
		CreditEquivalent: notional.Mul(decimal.NewFromFloat(ccf)).Round(2),
		IssueDate:        entities.NewDate(issued),
		MaturityDate:     entities.NewDate(issued.AddDate(0, 6+rng.Intn(31), 0)),
	}, nil
}

func (g *Generator) collateral(rng *rand.Rand, product entities.ProductType, principal decimal.Decimal) (string, decimal.Decimal) {
	switch product {
	case entities.Mortgage:
		return entities.CollateralProperty, principal.Mul(decimal.NewFromFloat(g.policy.MortgageCoverage)).Round(2)
	case entities.Auto:
		return entities.CollateralVehicle, principal.Mul(decimal.NewFromFloat(g.policy.AutoCoverage)).Round(2)
	case entities.SMELoan:
		kind := pick(rng, refdata.SecuredCollateralTypes)
		if kind == entities.CollateralNone {
			return kind, decimal.Zero
		}
		return kind, principal.Mul(decimal.NewFromFloat(uniform(rng, g.policy.SecuredCoverage))).Round(2)
	default:
		return entities.CollateralNone, decimal.Zero
	}
}

func (g *Generator) daysPastDue(rng *rand.Rand) int {
	if rng.Float64() >= g.policy.DelinquencyProb {
		return 0
	}
	if g.policy.Delinquency == DelinquencyWeighted {
		b := pickBucket(rng, g.policy.DPDBuckets)
		return b.Min + rng.Intn(b.Max-b.Min+1)
	}
	return 1 + rng.Intn(g.policy.MaxDaysPastDue)
}

func (g *Generator) newID(rng *rand.Rand, kind IDKind) (string, error) {
	limit := int64(1)
	for i := 0; i < g.policy.IDDigits; i++ {
		limit *= 10
	}
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := fmt.Sprintf("%s%0*d", kind, g.policy.IDDigits, rng.Int63n(limit))
		if g.state.Claim(kind, id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: no free %s id after %d attempts", ErrIDSpaceExhausted, kind, maxIDAttempts)
}

func loanPurpose(p entities.ProductType) string {
	switch p {
	case entities.Mortgage:
		return "RESIDENTIAL"
	case entities.Auto:
		return "VEHICLE_PURCHASE"
	case entities.SMELoan:
		return "WORKING_CAPITAL"
	default:
		return "GENERAL_CONSUMPTION"
	}
}

func pickBucket(rng *rand.Rand, buckets []DPDBucket) DPDBucket {
	total := 0.0
	for _, b := range buckets {
		total += b.Weight
	}
	if total <= 0 {
		return buckets[0]
	}
	r := rng.Float64() * total
	for _, b := range buckets {
		if r < b.Weight {
			return b
		}
		r -= b.Weight
	}
	return buckets[len(buckets)-1]
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

func uniform(rng *rand.Rand, r Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

func round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func monthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()-from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}
