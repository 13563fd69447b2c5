package snapshot

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rras-datagen/internal/entities"
)

var asOf = time.Date(2025, 12, 31, 15, 0, 0, 0, time.UTC)

func TestFixedCapitalStack(t *testing.T) {
	stack := FixedCapitalStack(asOf)
	require.Len(t, stack, 6)

	totals := map[entities.CapitalTier]decimal.Decimal{}
	for _, c := range stack {
		totals[c.Tier] = totals[c.Tier].Add(c.Amount)
		assert.Equal(t, "2025-12-31", c.AsOfDate.String())
		assert.Equal(t, "LSL", c.Currency)
		assert.True(t, c.RegulatoryAdjustment.IsZero())
	}
	assert.True(t, totals[entities.CET1].Equal(decimal.NewFromInt(800000000)))
	assert.True(t, totals[entities.AT1].Equal(decimal.NewFromInt(100000000)))
	assert.True(t, totals[entities.T2].Equal(decimal.NewFromInt(175000000)))
}

func TestFixedLiquidityAssets(t *testing.T) {
	assets := FixedLiquidityAssets(asOf)
	require.Len(t, assets, 5)

	for _, a := range assets {
		assert.True(t, a.IsUnencumbered)
		switch a.AssetType {
		case "CORP_BONDS":
			assert.Equal(t, 2, a.HQLALevel)
			assert.Equal(t, 0.15, a.Haircut)
		default:
			assert.Equal(t, 1, a.HQLALevel, a.AssetType)
			assert.Zero(t, a.Haircut)
		}
	}
}

func TestWeightedHQLA(t *testing.T) {
	snap, err := Build(nil, asOf, ModeFixed)
	require.NoError(t, err)

	// corporate bonds lose 15%, the rest are level 1
	want := decimal.NewFromInt(120000000 + 300000000 + 150000000 + 45000000 + 42500000)
	assert.True(t, snap.WeightedHQLA().Equal(want), snap.WeightedHQLA().String())
	assert.True(t, (&Snapshot{}).WeightedHQLA().IsZero())
}

func TestRandomCapitalComponent(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	for i := 0; i < 300; i++ {
		for _, tier := range entities.CapitalTiers {
			c := RandomCapitalComponent(rng, asOf, tier)
			bounds := capitalRanges[tier]
			assert.Equal(t, tier, c.Tier)
			require.False(t, c.Amount.IsNegative())
			require.True(t, c.Amount.GreaterThanOrEqual(decimal.NewFromFloat(bounds[0])))
			require.True(t, c.Amount.LessThanOrEqual(decimal.NewFromFloat(bounds[1])))
			require.NotEmpty(t, c.Name)

			if tier == entities.CET1 {
				require.True(t, c.RegulatoryAdjustment.LessThanOrEqual(decimal.Zero))
				limit := c.Amount.Mul(decimal.NewFromFloat(maxCET1Deduction))
				require.True(t, c.RegulatoryAdjustment.Neg().LessThanOrEqual(limit.Add(decimal.NewFromFloat(0.01))))
			} else {
				require.True(t, c.RegulatoryAdjustment.IsZero())
			}
		}
	}
}

func TestRandomCashflow(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 500; i++ {
		cf := RandomCashflow(rng, asOf)
		require.GreaterOrEqual(t, cf.StressFactor, 0.5)
		require.LessOrEqual(t, cf.StressFactor, 1.0)
		require.Contains(t, []string{entities.FlowInflow, entities.FlowOutflow}, cf.FlowType)
		require.NotEmpty(t, cf.Category)
		require.NotEmpty(t, cf.MaturityBucket)
		require.True(t, cf.Amount.IsPositive())
	}
}

func TestRandomLiquidityAssetIsEligible(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	for i := 0; i < 200; i++ {
		a := RandomLiquidityAsset(rng, asOf)
		require.Contains(t, []int{1, 2}, a.HQLALevel)
		require.GreaterOrEqual(t, a.Haircut, 0.0)
		require.LessOrEqual(t, a.Haircut, 1.0)
		require.True(t, a.MarketValue.IsPositive())
	}
}

func TestBuild(t *testing.T) {
	fixed, err := Build(nil, asOf, ModeFixed)
	require.NoError(t, err)
	assert.Len(t, fixed.Capital, 6)
	assert.Len(t, fixed.Liquidity, 5)
	assert.Empty(t, fixed.Cashflows)

	random, err := Build(rand.New(rand.NewSource(1)), asOf, ModeRandom)
	require.NoError(t, err)
	assert.Len(t, random.Capital, 3)
	assert.Len(t, random.Liquidity, 1)
	assert.Len(t, random.Cashflows, 1)

	_, err = Build(nil, asOf, "weekly")
	assert.Error(t, err)

	m, err := ParseMode("RANDOM")
	require.NoError(t, err)
	assert.Equal(t, ModeRandom, m)
}
