package generator

import (
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rras-datagen/internal/classification"
	"rras-datagen/internal/entities"
)

var testAsOf = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func newTestGenerator(t *testing.T, p Policy) *Generator {
	t.Helper()
	g, err := New(p, NewState(), testAsOf)
	require.NoError(t, err)
	return g
}

func loanAccount(id string) *entities.Account {
	return &entities.Account{ID: id, CustomerID: "CUS1", Type: entities.LoanAcc, Currency: "LSL"}
}

func TestLoanOutstandingNeverExceedsPrincipal(t *testing.T) {
	g := newTestGenerator(t, BatchPolicy())
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		rec, err := g.Loan(loanAccount("ACC1"), nil, rng)
		require.NoError(t, err)
		l := rec.Loan
		require.True(t, l.PrincipalAmount.IsPositive())
		require.False(t, l.OutstandingBalance.IsNegative())
		require.True(t, l.OutstandingBalance.LessThanOrEqual(l.PrincipalAmount),
			"outstanding %s > principal %s", l.OutstandingBalance, l.PrincipalAmount)
		require.True(t, l.MaturityDate.After(l.OriginationDate.Time))
		require.LessOrEqual(t, l.RemainingTermMonths, l.OriginalTermMonths)
		require.GreaterOrEqual(t, l.RemainingTermMonths, 0)
	}
}

func TestLoanCollateralByProduct(t *testing.T) {
	p := BatchPolicy()
	g := newTestGenerator(t, p)
	rng := rand.New(rand.NewSource(11))

	seen := map[entities.ProductType]int{}
	for i := 0; i < 1000; i++ {
		rec, err := g.Loan(loanAccount("ACC1"), nil, rng)
		require.NoError(t, err)
		l := rec.Loan
		seen[l.ProductType]++

		switch l.ProductType {
		case entities.Mortgage:
			want := l.PrincipalAmount.Mul(decimal.NewFromFloat(p.MortgageCoverage))
			assert.Equal(t, entities.CollateralProperty, l.CollateralType)
			assert.True(t, l.CollateralValue.Sub(want).Abs().LessThanOrEqual(decimal.NewFromFloat(0.005)),
				"collateral %s, want %s", l.CollateralValue, want)
			assert.Equal(t, "RESIDENTIAL", l.LoanPurpose)
		case entities.Auto:
			assert.Equal(t, entities.CollateralVehicle, l.CollateralType)
			assert.True(t, l.CollateralValue.Equal(l.PrincipalAmount))
		case entities.Personal:
			assert.Equal(t, entities.CollateralNone, l.CollateralType)
			assert.True(t, l.CollateralValue.IsZero())
		case entities.SMELoan:
			if l.CollateralType == entities.CollateralNone {
				assert.True(t, l.CollateralValue.IsZero())
			} else {
				assert.True(t, l.CollateralValue.LessThanOrEqual(l.PrincipalAmount))
				assert.True(t, l.CollateralValue.IsPositive())
			}
		}
	}
	assert.Len(t, seen, 4)
}

func TestLoanClassificationMatchesDaysPastDue(t *testing.T) {
	for _, mode := range []DelinquencyMode{DelinquencyUniform, DelinquencyWeighted} {
		t.Run(string(mode), func(t *testing.T) {
			p := BatchPolicy()
			p.Delinquency = mode
			p.DelinquencyProb = 0.6
			g := newTestGenerator(t, p)
			rng := rand.New(rand.NewSource(3))

			delinquent := 0
			for i := 0; i < 1000; i++ {
				rec, err := g.Loan(loanAccount("ACC1"), nil, rng)
				require.NoError(t, err)
				dpd := rec.Performance.DaysPastDue
				require.NoError(t, rec.Loan.CheckConsistent(rec.Performance))
				require.Equal(t, dpd > 90, rec.Loan.IsNPL)
				require.Equal(t, rec.Loan.ID, rec.Performance.LoanID)
				require.True(t, testAsOf.AddDate(0, 0, -dpd).Equal(rec.Performance.LastPaymentDate.Time))

				if dpd > 0 {
					delinquent++
					if mode == DelinquencyUniform {
						require.LessOrEqual(t, dpd, p.MaxDaysPastDue)
					} else {
						require.LessOrEqual(t, dpd, 365)
					}
				}
				if dpd > 90 {
					require.Equal(t, 1.5, rec.Loan.RiskWeight)
				}
			}
			assert.InDelta(t, 600, delinquent, 80)
		})
	}
}

func TestLoanRejectsNonLoanAccount(t *testing.T) {
	g := newTestGenerator(t, BatchPolicy())
	_, err := g.Loan(&entities.Account{ID: "ACC9", Type: entities.Savings}, nil, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotLoanAccount))
}

func TestLoanAccountStartsAtZeroBalance(t *testing.T) {
	p := BatchPolicy()
	p.Balance = Range{1000000, 2000000}
	g := newTestGenerator(t, p)
	rng := rand.New(rand.NewSource(5))

	acct, err := g.Account("CUS1", rng, entities.LoanAcc)
	require.NoError(t, err)
	assert.True(t, acct.Balance.IsZero())
	assert.True(t, acct.AvailableBalance.IsZero())

	for i := 0; i < 500; i++ {
		acct, err := g.Account("CUS1", rng, "")
		require.NoError(t, err)
		if acct.Type == entities.LoanAcc {
			require.True(t, acct.Balance.IsZero())
			continue
		}
		require.True(t, acct.Balance.GreaterThanOrEqual(decimal.NewFromInt(1000000)))
		require.True(t, acct.Balance.LessThanOrEqual(decimal.NewFromInt(2000000)))
		require.Contains(t, []string{"LSL", "ZAR"}, acct.Currency)
		require.Equal(t, "CUS1", acct.CustomerID)
	}
}

func TestCustomerTypeDistribution(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		personal entities.CustomerType
		share    float64
	}{
		{"batch", BatchPolicy(), entities.Retail, 0.2},
		{"stream", StreamPolicy(), entities.Individual, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(t, tt.policy)
			rng := rand.New(rand.NewSource(99))

			business := 0
			const n = 4000
			for i := 0; i < n; i++ {
				c, err := g.Customer(rng, "")
				require.NoError(t, err)
				if c.Type.IsBusiness() {
					business++
					require.NotEqual(t, "HOU", c.SectorCode)
				} else {
					require.Equal(t, tt.personal, c.Type)
					require.Equal(t, "HOU", c.SectorCode)
				}
				require.NotEmpty(t, c.Name)
				require.GreaterOrEqual(t, c.PD, 0.001)
				require.LessOrEqual(t, c.PD, 0.15)
				require.GreaterOrEqual(t, c.LGD, 0.2)
				require.LessOrEqual(t, c.LGD, 0.6)
				require.GreaterOrEqual(t, c.CountryRiskRating, 2)
				require.LessOrEqual(t, c.CountryRiskRating, 5)
			}
			assert.InDelta(t, tt.share, float64(business)/n, 0.04)
		})
	}
}

func TestCustomerTypeOverride(t *testing.T) {
	g := newTestGenerator(t, BatchPolicy())
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		c, err := g.Customer(rng, entities.SME)
		require.NoError(t, err)
		assert.Equal(t, entities.SME, c.Type)
	}
}

func TestIdentifiersUniqueWithinRun(t *testing.T) {
	p := BatchPolicy()
	p.IDDigits = 3 // 1000 possible ids forces collisions
	g := newTestGenerator(t, p)
	rng := rand.New(rand.NewSource(13))

	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		c, err := g.Customer(rng, "")
		require.NoError(t, err)
		require.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Equal(t, 500, g.state.Count(CustomerIDs))
}

func TestIdentifierSpaceExhaustion(t *testing.T) {
	p := BatchPolicy()
	p.IDDigits = 1
	g := newTestGenerator(t, p)
	rng := rand.New(rand.NewSource(21))

	seen := map[string]bool{}
	var err error
	for i := 0; i < 20; i++ {
		var c *entities.Customer
		c, err = g.Customer(rng, "")
		if err != nil {
			break
		}
		require.False(t, seen[c.ID])
		seen[c.ID] = true
	}
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIDSpaceExhausted))
	assert.LessOrEqual(t, len(seen), 10)
}

func TestSharedStateAcrossGenerators(t *testing.T) {
	p := BatchPolicy()
	p.IDDigits = 2
	state := NewState()
	a, err := New(p, state, testAsOf)
	require.NoError(t, err)
	b, err := New(p, state, testAsOf)
	require.NoError(t, err)

	// Same seed would collide on every draw without the shared state.
	ra := rand.New(rand.NewSource(1))
	rb := rand.New(rand.NewSource(1))
	ids := map[string]bool{}
	for i := 0; i < 30; i++ {
		ca, err := a.Customer(ra, "")
		require.NoError(t, err)
		cb, err := b.Customer(rb, "")
		require.NoError(t, err)
		require.False(t, ids[ca.ID])
		ids[ca.ID] = true
		require.False(t, ids[cb.ID])
		ids[cb.ID] = true
	}
}

func TestGraphIsConsistent(t *testing.T) {
	g := newTestGenerator(t, BatchPolicy())
	rng := rand.New(rand.NewSource(17))

	for i := 0; i < 200; i++ {
		gr, err := g.Graph(rng)
		require.NoError(t, err)
		require.NotNil(t, gr.Customer)
		require.GreaterOrEqual(t, len(gr.Accounts), 1)
		require.LessOrEqual(t, len(gr.Accounts), 3)

		loanAccounts := 0
		for _, a := range gr.Accounts {
			require.Equal(t, gr.Customer.ID, a.CustomerID)
			if a.Type == entities.LoanAcc {
				loanAccounts++
				loans := gr.LoansFor(a.ID)
				require.Len(t, loans, 1)
				require.Equal(t, gr.Customer.ID, loans[0].Loan.CustomerID)
				require.Equal(t, a.Currency, loans[0].Loan.Currency)
				require.Same(t, gr.Customer, loans[0].Borrower)
			}
		}
		require.Len(t, gr.Loans, loanAccounts)
		require.Empty(t, gr.OffBalanceSheet)
	}
}

func TestStreamGraphHasOneAccount(t *testing.T) {
	p := StreamPolicy()
	p.OffBalanceSheetProb = 1
	g := newTestGenerator(t, p)
	rng := rand.New(rand.NewSource(23))

	items := 0
	for i := 0; i < 200; i++ {
		gr, err := g.Graph(rng)
		require.NoError(t, err)
		require.Len(t, gr.Accounts, 1)
		if gr.Customer.Type.IsBusiness() {
			require.Len(t, gr.OffBalanceSheet, 1)
			item := gr.OffBalanceSheet[0]
			items++
			assert.Equal(t, gr.Customer.ID, item.CustomerID)
			assert.Equal(t, classification.CreditConversionFactor(item.ItemType), item.CCF)
			assert.True(t, item.CreditEquivalent.LessThanOrEqual(item.NotionalAmount))
			assert.True(t, item.MaturityDate.After(item.IssueDate.Time))
		} else {
			require.Empty(t, gr.OffBalanceSheet)
		}
	}
	assert.Positive(t, items)
}

func TestSeededGenerationIsReproducible(t *testing.T) {
	run := func() []byte {
		g := newTestGenerator(t, BatchPolicy())
		rng := rand.New(rand.NewSource(2024))
		var graphs []*Graph
		for i := 0; i < 25; i++ {
			gr, err := g.Graph(rng)
			require.NoError(t, err)
			graphs = append(graphs, gr)
		}
		b, err := json.Marshal(graphs)
		require.NoError(t, err)
		return b
	}
	assert.JSONEq(t, string(run()), string(run()))
}

func TestCustomerSectorNameResolves(t *testing.T) {
	g := newTestGenerator(t, StreamPolicy())
	rng := rand.New(rand.NewSource(21))

	for i := 0; i < 200; i++ {
		c, err := g.Customer(rng, "")
		require.NoError(t, err)
		require.NotEmpty(t, c.SectorName, "sector %s has no name", c.SectorCode)
	}
}

func TestPolicyValidate(t *testing.T) {
	require.NoError(t, BatchPolicy().Validate())
	require.NoError(t, StreamPolicy().Validate())

	bad := BatchPolicy()
	bad.OutstandingFactor = Range{0.1, 1.5}
	bad.MinAccounts = 0
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OutstandingFactor.Max fails max=1")
	assert.Contains(t, err.Error(), "MinAccounts fails min=1")
	assert.Equal(t, err.Error(), bad.Validate().Error())

	bad = BatchPolicy()
	bad.Delinquency = "sometimes"
	assert.Error(t, bad.Validate())

	_, err = New(bad, nil, testAsOf)
	assert.Error(t, err)
}

func TestPolicyValidateRanges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Policy)
		field  string
	}{
		{"inverted interest rate", func(p *Policy) { p.InterestRate = Range{0.28, 0.09} }, "InterestRate.Max"},
		{"inverted secured coverage", func(p *Policy) { p.SecuredCoverage = Range{1.0, 0.5} }, "SecuredCoverage.Max"},
		{"inverted off balance sheet", func(p *Policy) { p.OffBalanceSheet = Range{2000000, 50000} }, "OffBalanceSheet.Max"},
		{"pd above one", func(p *Policy) { p.PD = Range{0.1, 1.2} }, "PD.Max"},
		{"negative balance", func(p *Policy) { p.Balance = Range{-1, 10} }, "Balance.Min"},
		{"zero principal", func(p *Policy) { p.Principal = Range{0, 10} }, "Principal.Min"},
		{"probability above one", func(p *Policy) { p.DelinquencyProb = 1.5 }, "DelinquencyProb"},
		{"no business types", func(p *Policy) { p.BusinessTypes = nil }, "BusinessTypes"},
		{"bad bucket", func(p *Policy) {
			p.Delinquency = DelinquencyWeighted
			p.DPDBuckets = []DPDBucket{{Min: 30, Max: 10, Weight: 1}}
		}, "DPDBuckets[0].Max"},
		{"weighted without buckets", func(p *Policy) {
			p.Delinquency = DelinquencyWeighted
			p.DPDBuckets = nil
		}, "DPDBuckets"},
		{"id digits", func(p *Policy) { p.IDDigits = 19 }, "IDDigits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BatchPolicy()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("STREAM")
	require.NoError(t, err)
	assert.Equal(t, "stream", p.Name)

	p, err = PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "batch", p.Name)

	_, err = PolicyByName("hourly")
	assert.Error(t, err)

	m, err := ParseDelinquencyMode(" Weighted ")
	require.NoError(t, err)
	assert.Equal(t, DelinquencyWeighted, m)
	_, err = ParseDelinquencyMode("never")
	assert.Error(t, err)
}
