// Package snapshot produces the capital stack and liquidity positions the
// bank reports for an as-of date. It is independent of the customer graph.
package snapshot

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rras-datagen/internal/classification"
	"rras-datagen/internal/entities"
	"rras-datagen/internal/refdata"
)

// Mode selects between the illustrative fixed snapshot and randomized ones.
type Mode string

const (
	ModeFixed  Mode = "fixed"
	ModeRandom Mode = "random"
)

// ParseMode accepts "fixed" or "random" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeFixed, ModeRandom:
		return m, nil
	default:
		return "", fmt.Errorf("unknown snapshot mode %q", s)
	}
}

// Snapshot is everything reported for one as-of date.
type Snapshot struct {
	AsOf      entities.Date                 `json:"as_of"`
	Capital   []*entities.CapitalComponent  `json:"capital"`
	Liquidity []*entities.LiquidityAsset    `json:"liquidity"`
	Cashflows []*entities.LiquidityCashflow `json:"cashflows,omitempty"`
}

// WeightedHQLA sums the liquidity buffer after haircuts.
func (s *Snapshot) WeightedHQLA() decimal.Decimal {
	total := decimal.Zero
	for _, a := range s.Liquidity {
		total = total.Add(a.WeightedValue())
	}
	return total
}

// Build returns a fixed or randomized snapshot for asOf. rng is only used in
// random mode.
func Build(rng *rand.Rand, asOf time.Time, mode Mode) (*Snapshot, error) {
	s := &Snapshot{AsOf: entities.NewDate(asOf)}
	switch mode {
	case ModeFixed:
		s.Capital = FixedCapitalStack(asOf)
		s.Liquidity = FixedLiquidityAssets(asOf)
	case ModeRandom:
		for _, tier := range entities.CapitalTiers {
			s.Capital = append(s.Capital, RandomCapitalComponent(rng, asOf, tier))
		}
		s.Liquidity = append(s.Liquidity, RandomLiquidityAsset(rng, asOf))
		s.Cashflows = append(s.Cashflows, RandomCashflow(rng, asOf))
	default:
		return nil, fmt.Errorf("unknown snapshot mode %q", mode)
	}
	return s, nil
}

// FixedCapitalStack is a stylized capital stack for a mid-sized Lesotho
// bank, in LSL.
func FixedCapitalStack(asOf time.Time) []*entities.CapitalComponent {
	rows := []struct {
		tier   entities.CapitalTier
		name   string
		amount int64
	}{
		{entities.CET1, "Paid Up Ordinary Shares", 500000000},
		{entities.CET1, "Retained Earnings", 250000000},
		{entities.CET1, "Statutory Reserves", 50000000},
		{entities.AT1, "Perpetual Non-Cumulative Pref Shares", 100000000},
		{entities.T2, "Subordinated Debt", 150000000},
		{entities.T2, "General Provisions (Standard Assets)", 25000000},
	}

	date := entities.NewDate(asOf)
	out := make([]*entities.CapitalComponent, 0, len(rows))
	for _, r := range rows {
		out = append(out, &entities.CapitalComponent{
			AsOfDate:             date,
			Tier:                 r.tier,
			Name:                 r.name,
			Amount:               decimal.NewFromInt(r.amount),
			Currency:             refdata.LocalCurrency,
			RegulatoryAdjustment: decimal.Zero,
		})
	}
	return out
}

// FixedLiquidityAssets is a stylized HQLA portfolio.
func FixedLiquidityAssets(asOf time.Time) []*entities.LiquidityAsset {
	rows := []struct {
		assetType string
		currency  string
		value     int64
	}{
		{"CENTRAL_BANK_RESERVES", refdata.LocalCurrency, 120000000},
		{"GOVT_SECURITIES", refdata.LocalCurrency, 300000000}, // Lesotho government bonds
		{"GOVT_SECURITIES", refdata.ForeignCurrency, 150000000},
		{"CASH", refdata.LocalCurrency, 45000000},
		{"CORP_BONDS", refdata.ForeignCurrency, 50000000},
	}

	date := entities.NewDate(asOf)
	out := make([]*entities.LiquidityAsset, 0, len(rows))
	for _, r := range rows {
		out = append(out, liquidityAsset(r.assetType, r.currency, decimal.NewFromInt(r.value), date))
	}
	return out
}

var capitalRanges = map[entities.CapitalTier][2]float64{
	entities.CET1: {300e6, 900e6},
	entities.AT1:  {50e6, 150e6},
	entities.T2:   {50e6, 200e6},
}

// maxCET1Deduction is the largest regulatory deduction (goodwill,
// intangibles, deferred tax) drawn for CET1, as a share of the amount.
const maxCET1Deduction = 0.05

// RandomCapitalComponent draws a component of tier with an amount from the
// tier's range.
func RandomCapitalComponent(rng *rand.Rand, asOf time.Time, tier entities.CapitalTier) *entities.CapitalComponent {
	bounds, ok := capitalRanges[tier]
	if !ok {
		bounds = capitalRanges[entities.T2]
	}
	amount := decimal.NewFromFloat(bounds[0] + rng.Float64()*(bounds[1]-bounds[0])).Round(2)

	adjustment := decimal.Zero
	if tier == entities.CET1 {
		adjustment = amount.Mul(decimal.NewFromFloat(rng.Float64() * maxCET1Deduction)).Round(2).Neg()
	}

	names := refdata.CapitalComponentNames[string(tier)]
	name := string(tier) + " Capital"
	if len(names) > 0 {
		name = names[rng.Intn(len(names))]
	}

	return &entities.CapitalComponent{
		AsOfDate:             entities.NewDate(asOf),
		Tier:                 tier,
		Name:                 name,
		Amount:               amount,
		Currency:             refdata.LocalCurrency,
		RegulatoryAdjustment: adjustment,
	}
}

// RandomLiquidityAsset draws an HQLA-eligible holding.
func RandomLiquidityAsset(rng *rand.Rand, asOf time.Time) *entities.LiquidityAsset {
	assetType := classification.HQLAAssetTypes[rng.Intn(len(classification.HQLAAssetTypes))]
	currency := refdata.LocalCurrency
	if rng.Float64() < 0.3 {
		currency = refdata.ForeignCurrency
	}
	value := decimal.NewFromFloat(10e6 + rng.Float64()*290e6).Round(2)
	return liquidityAsset(assetType, currency, value, entities.NewDate(asOf))
}

// RandomCashflow draws one contractual flow with a stress factor in
// [0.5, 1.0].
func RandomCashflow(rng *rand.Rand, asOf time.Time) *entities.LiquidityCashflow {
	flowType := entities.FlowInflow
	if rng.Float64() < 0.5 {
		flowType = entities.FlowOutflow
	}
	categories := refdata.CashflowCategories[flowType]
	currency := refdata.LocalCurrency
	if rng.Float64() < 0.2 {
		currency = refdata.ForeignCurrency
	}

	return &entities.LiquidityCashflow{
		FlowType:       flowType,
		Category:       categories[rng.Intn(len(categories))],
		MaturityBucket: refdata.MaturityBuckets[rng.Intn(len(refdata.MaturityBuckets))],
		Amount:         decimal.NewFromFloat(1e6 + rng.Float64()*99e6).Round(2),
		Currency:       currency,
		StressFactor:   0.5 + float64(rng.Intn(51))/100,
		AsOfDate:       entities.NewDate(asOf),
	}
}

func liquidityAsset(assetType, currency string, value decimal.Decimal, date entities.Date) *entities.LiquidityAsset {
	h, _ := classification.HQLALevelFor(assetType)
	return &entities.LiquidityAsset{
		AssetType:      assetType,
		Currency:       currency,
		MarketValue:    value,
		Haircut:        h.Haircut,
		HQLALevel:      h.Level,
		IsUnencumbered: true,
		AsOfDate:       date,
	}
}
