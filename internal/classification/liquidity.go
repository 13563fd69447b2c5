package classification

// HQLA describes the Basel III liquidity eligibility of an asset type.
type HQLA struct {
	Level   int     `json:"hqla_level"`
	Haircut float64 `json:"haircut_percentage"`
}

var hqlaTable = map[string]HQLA{
	"CASH":                  {Level: 1, Haircut: 0},
	"CENTRAL_BANK_RESERVES": {Level: 1, Haircut: 0},
	"GOVT_SECURITIES":       {Level: 1, Haircut: 0},
	"CORP_BONDS":            {Level: 2, Haircut: 0.15}, // level 2A
	"COVERED_BONDS":         {Level: 2, Haircut: 0.15}, // level 2A
	"LISTED_EQUITIES":       {Level: 2, Haircut: 0.50}, // level 2B
}

// HQLAAssetTypes lists every eligible asset type in a stable order.
var HQLAAssetTypes = []string{
	"CASH", "CENTRAL_BANK_RESERVES", "GOVT_SECURITIES",
	"CORP_BONDS", "COVERED_BONDS", "LISTED_EQUITIES",
}

// HQLALevelFor returns the level and haircut for assetType. The boolean is
// false for assets that do not count towards the liquidity buffer.
func HQLALevelFor(assetType string) (HQLA, bool) {
	h, ok := hqlaTable[assetType]
	return h, ok
}

// Off-balance-sheet item types.
const (
	Guarantee         = "GUARANTEE"
	LetterOfCredit    = "LETTER_OF_CREDIT"
	UndrawnCommitment = "UNDRAWN_COMMITMENT"
	PerformanceBond   = "PERFORMANCE_BOND"
)

// OffBalanceSheetTypes lists the supported item types.
var OffBalanceSheetTypes = []string{Guarantee, LetterOfCredit, UndrawnCommitment, PerformanceBond}

// CreditConversionFactor returns the standardised CCF for an
// off-balance-sheet item type. Unknown types convert at 100%.
func CreditConversionFactor(itemType string) float64 {
	switch itemType {
	case LetterOfCredit:
		return 0.2
	case UndrawnCommitment, PerformanceBond:
		return 0.5
	default:
		return 1.0
	}
}
