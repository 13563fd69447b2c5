package generator

import (
	"math/rand"

	"rras-datagen/internal/entities"
)

// Graph is one customer with everything generated beneath it.
type Graph struct {
	Customer        *entities.Customer              `json:"customer"`
	Accounts        []*entities.Account             `json:"accounts"`
	Loans           []*entities.LoanRecord          `json:"loans,omitempty"`
	OffBalanceSheet []*entities.OffBalanceSheetItem `json:"off_balance_sheet,omitempty"`
}

// Graph generates a customer, its accounts, a loan for every LOAN account
// and, for business customers, possibly an off-balance-sheet item.
func (g *Generator) Graph(rng *rand.Rand) (*Graph, error) {
	customer, err := g.Customer(rng, "")
	if err != nil {
		return nil, err
	}
	out := &Graph{Customer: customer}

	n := g.policy.MinAccounts + rng.Intn(g.policy.MaxAccounts-g.policy.MinAccounts+1)
	for i := 0; i < n; i++ {
		acct, err := g.Account(customer.ID, rng, "")
		if err != nil {
			return nil, err
		}
		out.Accounts = append(out.Accounts, acct)

		if acct.Type != entities.LoanAcc {
			continue
		}
		rec, err := g.Loan(acct, customer, rng)
		if err != nil {
			return nil, err
		}
		out.Loans = append(out.Loans, rec)
	}

	if customer.Type.IsBusiness() && rng.Float64() < g.policy.OffBalanceSheetProb {
		item, err := g.OffBalanceSheet(customer, rng)
		if err != nil {
			return nil, err
		}
		out.OffBalanceSheet = append(out.OffBalanceSheet, item)
	}
	return out, nil
}

// LoansFor returns the loans booked against accountID.
func (gr *Graph) LoansFor(accountID string) []*entities.LoanRecord {
	var out []*entities.LoanRecord
	for _, l := range gr.Loans {
		if l.Loan.AccountID == accountID {
			out = append(out, l)
		}
	}
	return out
}
