package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"rras-datagen/internal/entities"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validatePolicyBounds, Policy{})
	return v
}

// DelinquencyMode selects how days past due are drawn for delinquent loans.
type DelinquencyMode string

const (
	// DelinquencyUniform draws dpd uniformly from [1, MaxDaysPastDue].
	DelinquencyUniform DelinquencyMode = "uniform"
	// DelinquencyWeighted picks a bucket by weight, then a dpd inside it.
	DelinquencyWeighted DelinquencyMode = "weighted"
)

// ParseDelinquencyMode accepts "uniform" or "weighted" in any case.
func ParseDelinquencyMode(s string) (DelinquencyMode, error) {
	switch m := DelinquencyMode(strings.ToLower(strings.TrimSpace(s))); m {
	case DelinquencyUniform, DelinquencyWeighted:
		return m, nil
	default:
		return "", fmt.Errorf("unknown delinquency mode %q", s)
	}
}

// DPDBucket is an inclusive days-past-due range with a relative weight.
type DPDBucket struct {
	Min    int     `validate:"min=1"`
	Max    int     `validate:"gtefield=Min"`
	Weight float64 `validate:"min=0"`
}

// Range is an inclusive float range.
type Range struct {
	Min float64 `validate:"min=0"`
	Max float64 `validate:"gtefield=Min"`
}

// Policy holds every distribution the generator draws from.
type Policy struct {
	Name string

	// Customer mix. BusinessShare of customers are drawn from BusinessTypes,
	// the rest are PersonalType.
	BusinessShare      float64               `validate:"min=0,max=1"`
	PersonalType       entities.CustomerType `validate:"required"`
	BusinessTypes      []entities.CustomerType
	ForeignCountryProb float64 `validate:"min=0,max=1"`
	PD                 Range
	LGD                Range

	// Accounts per customer are drawn from [MinAccounts, MaxAccounts].
	MinAccounts         int                    `validate:"min=1"`
	MaxAccounts         int                    `validate:"gtefield=MinAccounts"`
	AccountTypes        []entities.AccountType `validate:"min=1"`
	ForeignCurrencyProb float64                `validate:"min=0,max=1"`
	Balance             Range

	Principal         Range
	OutstandingFactor Range
	InterestRate      Range
	ProductTypes      []entities.ProductType `validate:"min=1"`
	MortgageCoverage  float64                `validate:"gt=0"`
	AutoCoverage      float64                `validate:"gt=0"`
	SecuredCoverage   Range

	DelinquencyProb float64         `validate:"min=0,max=1"`
	Delinquency     DelinquencyMode `validate:"oneof=uniform weighted"`
	MaxDaysPastDue  int             `validate:"min=0,required_if=Delinquency uniform"`
	DPDBuckets      []DPDBucket     `validate:"required_if=Delinquency weighted,dive"`

	// OffBalanceSheetProb is the chance a business customer also carries a
	// contingent exposure.
	OffBalanceSheetProb float64 `validate:"min=0,max=1"`
	OffBalanceSheet     Range

	// IDDigits is the width of the numeric part of generated identifiers.
	IDDigits int `validate:"min=1,max=18"`
}

// BatchPolicy mirrors the one-shot relational seeding run: 80% retail,
// 1-3 accounts each, uniform delinquency.
func BatchPolicy() Policy {
	return Policy{
		Name:                "batch",
		BusinessShare:       0.2,
		PersonalType:        entities.Retail,
		BusinessTypes:       []entities.CustomerType{entities.Corporate, entities.SME},
		ForeignCountryProb:  0.1,
		PD:                  Range{0.001, 0.15},
		LGD:                 Range{0.20, 0.60},
		MinAccounts:         1,
		MaxAccounts:         3,
		AccountTypes:        []entities.AccountType{entities.Savings, entities.Current, entities.LoanAcc},
		ForeignCurrencyProb: 0.15,
		Balance:             Range{500, 500000},
		Principal:           Range{10000, 5000000},
		OutstandingFactor:   Range{0.1, 1.0},
		InterestRate:        Range{0.09, 0.28},
		ProductTypes:        []entities.ProductType{entities.Mortgage, entities.Auto, entities.Personal, entities.SMELoan},
		MortgageCoverage:    1.2,
		AutoCoverage:        1.0,
		SecuredCoverage:     Range{0.5, 1.0},
		DelinquencyProb:     0.15,
		Delinquency:         DelinquencyUniform,
		MaxDaysPastDue:      200,
		DPDBuckets:          DefaultDPDBuckets(),
		OffBalanceSheetProb: 0,
		OffBalanceSheet:     Range{50000, 2000000},
		IDDigits:            8,
	}
}

// StreamPolicy mirrors the continuous API-push run: an even split of
// individuals and corporates, one account each, weighted delinquency.
func StreamPolicy() Policy {
	p := BatchPolicy()
	p.Name = "stream"
	p.BusinessShare = 0.5
	p.PersonalType = entities.Individual
	p.BusinessTypes = []entities.CustomerType{entities.Corporate}
	p.MinAccounts = 1
	p.MaxAccounts = 1
	p.AccountTypes = []entities.AccountType{entities.Savings, entities.Current, entities.LoanAcc, entities.Deposit}
	p.ForeignCurrencyProb = 0.1
	p.DelinquencyProb = 0.1
	p.Delinquency = DelinquencyWeighted
	p.OffBalanceSheetProb = 0.3
	return p
}

// PolicyByName returns the named preset.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "", "batch":
		return BatchPolicy(), nil
	case "stream":
		return StreamPolicy(), nil
	default:
		return Policy{}, fmt.Errorf("unknown generation policy %q", name)
	}
}

// DefaultDPDBuckets skews delinquent loans towards early arrears.
func DefaultDPDBuckets() []DPDBucket {
	return []DPDBucket{
		{Min: 1, Max: 30, Weight: 0.40},
		{Min: 31, Max: 60, Weight: 0.25},
		{Min: 61, Max: 90, Weight: 0.15},
		{Min: 91, Max: 180, Weight: 0.12},
		{Min: 181, Max: 365, Weight: 0.08},
	}
}

// Validate checks the policy for ranges the generator cannot draw from.
// Problems are reported in field order.
func (p Policy) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid policy %q: %w", p.Name, err)
	}
	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Policy.")
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			problems = append(problems, fmt.Sprintf("%s fails %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid policy %q: %s", p.Name, strings.Join(problems, "; "))
}

// validatePolicyBounds covers the constraints that span nested ranges.
func validatePolicyBounds(sl validator.StructLevel) {
	p := sl.Current().Interface().(Policy)

	if p.BusinessShare > 0 && len(p.BusinessTypes) == 0 {
		sl.ReportError(p.BusinessTypes, "BusinessTypes", "BusinessTypes", "required_with_share", "")
	}
	if p.Principal.Min <= 0 {
		sl.ReportError(p.Principal.Min, "Principal.Min", "Min", "gt", "0")
	}
	ratios := []struct {
		name string
		r    Range
	}{
		{"PD", p.PD},
		{"LGD", p.LGD},
		{"OutstandingFactor", p.OutstandingFactor},
		{"InterestRate", p.InterestRate},
	}
	for _, ratio := range ratios {
		if ratio.r.Max > 1 {
			sl.ReportError(ratio.r.Max, ratio.name+".Max", "Max", "max", "1")
		}
	}
}
