// Package classification maps loan risk inputs to the Central Bank of
// Lesotho asset classes, IFRS 9 stages, risk weights and NPL flags.
//
// All functions are pure. The only randomized output, RiskWeight for
// performing low-PD exposures, draws from an injected Rand so callers can
// reproduce it.
package classification

import "math"

// AssetClass is the prudential asset classification of a loan.
type AssetClass string

const (
	Standard    AssetClass = "STANDARD"    // 0-30 days past due
	Watch       AssetClass = "WATCH"       // 31-60
	Substandard AssetClass = "SUBSTANDARD" // 61-90
	Doubtful    AssetClass = "DOUBTFUL"    // 91-180
	Loss        AssetClass = "LOSS"        // over 180
)

// Stage is the IFRS 9 impairment stage.
type Stage int

const (
	Stage1 Stage = 1
	Stage2 Stage = 2
	Stage3 Stage = 3
)

// NPLThresholdDays is the dpd above which a loan is non-performing.
const NPLThresholdDays = 90

const (
	defaultedRiskWeight = 1.5
	highPDRiskWeight    = 1.0
	highPDThreshold     = 0.15
	minRiskWeight       = 0.35
	maxRiskWeight       = 1.0
)

// Rand is the subset of *rand.Rand used by RiskWeight.
type Rand interface {
	Float64() float64
}

// AssetClassFor buckets days past due. Upper bounds are inclusive.
func AssetClassFor(dpd int) AssetClass {
	switch {
	case dpd <= 30:
		return Standard
	case dpd <= 60:
		return Watch
	case dpd <= 90:
		return Substandard
	case dpd <= 180:
		return Doubtful
	default:
		return Loss
	}
}

// StageFor maps an asset class to its IFRS 9 stage.
func StageFor(class AssetClass) Stage {
	switch class {
	case Standard:
		return Stage1
	case Watch:
		return Stage2
	default:
		return Stage3
	}
}

// IsNPL reports whether a loan with the given dpd is non-performing.
func IsNPL(dpd int) bool {
	return dpd > NPLThresholdDays
}

// RiskWeight returns the credit risk weight for an exposure.
func RiskWeight(dpd int, pd float64, rng Rand) float64 {
	if dpd > NPLThresholdDays {
		return defaultedRiskWeight
	}
	if pd > highPDThreshold {
		return highPDRiskWeight
	}
	w := minRiskWeight + rng.Float64()*(maxRiskWeight-minRiskWeight)
	return math.Min(maxRiskWeight, math.Round(w*100)/100)
}

// Classification is the dpd-derived state stored alongside a loan.
type Classification struct {
	DaysPastDue int        `json:"days_past_due"`
	AssetClass  AssetClass `json:"asset_class"`
	Stage       Stage      `json:"stage"`
	NPL         bool       `json:"is_npl"`
}

// Classify derives the full classification for dpd. Negative values are
// clamped to zero.
func Classify(dpd int) Classification {
	if dpd < 0 {
		dpd = 0
	}
	class := AssetClassFor(dpd)
	return Classification{
		DaysPastDue: dpd,
		AssetClass:  class,
		Stage:       StageFor(class),
		NPL:         IsNPL(dpd),
	}
}

// Consistent reports whether the class, stage and NPL flag of c agree with
// the mapping table for its dpd. Negative dpd is read as zero.
func (c Classification) Consistent() bool {
	want := Classify(c.DaysPastDue)
	return c.AssetClass == want.AssetClass && c.Stage == want.Stage && c.NPL == want.NPL
}
