package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rras-datagen/internal/entities"
)

func TestResultHelpers(t *testing.T) {
	ok := Result{Kind: entities.KindCustomer, Key: "CUS1"}
	assert.True(t, ok.OK())
	assert.False(t, ok.Transient())

	down := Failed(entities.KindAccount, Transient(errors.New("connection refused")))
	assert.False(t, down.OK())
	assert.True(t, down.Transient())
	assert.Contains(t, down.Err.Error(), "connection refused")

	unsupported := Unsupported(entities.KindLiquidityCashflow)
	assert.ErrorIs(t, unsupported.Err, ErrUnsupportedKind)
	assert.False(t, unsupported.Transient())

	assert.Nil(t, Transient(nil))
}

func TestNaturalKey(t *testing.T) {
	asOf := entities.NewDate(time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "CUS00000001", NaturalKey(&entities.Customer{ID: "CUS00000001"}))
	assert.Equal(t, "LN1", NaturalKey(&entities.LoanRecord{Loan: entities.Loan{ID: "LN1"}}))
	assert.Equal(t, "2025-06-30/CET1/Retained Earnings",
		NaturalKey(&entities.CapitalComponent{AsOfDate: asOf, Tier: entities.CET1, Name: "Retained Earnings"}))
	assert.Equal(t, "2025-06-30/CASH/LSL",
		NaturalKey(&entities.LiquidityAsset{AsOfDate: asOf, AssetType: "CASH", Currency: "LSL"}))
}

func TestMemorySink(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	res := m.Put(ctx, &entities.Customer{ID: "CUS1"})
	require.True(t, res.OK())
	assert.Equal(t, "CUS1", res.Key)
	assert.False(t, res.Duplicate)

	res = m.Put(ctx, &entities.Customer{ID: "CUS1"})
	require.True(t, res.OK())
	assert.True(t, res.Duplicate)
	assert.Equal(t, 1, m.Count(entities.KindCustomer))

	m.Put(ctx, &entities.Account{ID: "ACC1", CustomerID: "CUS1"})
	recs := m.Records(entities.KindAccount)
	require.Len(t, recs, 1)
	assert.Equal(t, "CUS1", recs[0].(*entities.Account).CustomerID)

	require.NoError(t, m.Close())
	assert.True(t, m.Closed())
}

func TestMemorySinkRestrictedKinds(t *testing.T) {
	m := NewMemory(entities.KindCustomer)
	assert.True(t, m.Supports(entities.KindCustomer))
	assert.False(t, m.Supports(entities.KindLoan))

	res := m.Put(context.Background(), &entities.LoanRecord{})
	assert.ErrorIs(t, res.Err, ErrUnsupportedKind)
	assert.Zero(t, m.Count(entities.KindLoan))
}

func TestMemorySinkCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewMemory().Put(ctx, &entities.Customer{ID: "CUS1"})
	assert.ErrorIs(t, res.Err, context.Canceled)
}
