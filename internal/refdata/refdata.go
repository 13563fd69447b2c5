// Package refdata holds the fixed reference lists used to make generated
// records look like they came from a Lesotho bank's core banking system.
package refdata

const (
	// LocalCurrency is the Lesotho Loti.
	LocalCurrency = "LSL"
	// ForeignCurrency is the South African Rand, pegged 1:1 to the Loti.
	ForeignCurrency = "ZAR"

	HomeCountry    = "Lesotho"
	ForeignCountry = "South Africa"
)

// Towns are the district towns customers are domiciled in.
var Towns = []string{
	"Maseru", "Teyateyaneng", "Mafeteng", "Hlotse", "Mohale's Hoek",
	"Maputsoe", "Qacha's Nek", "Quthing", "Butha-Buthe", "Mokhotlong", "Thaba-Tseka",
}

var FirstNames = []string{
	"Thabo", "Mpho", "Lerato", "Tsepo", "Moshoeshoe", "Nthabiseng",
	"Refiloe", "Khotso", "Palesa", "Rethabile", "Bokang", "Neo",
	"Limpho", "Teboho", "Karabo", "Maseeiso", "Lineo",
}

var Surnames = []string{
	"Mokoena", "Dlamini", "Molapo", "Ramabanta", "Phiri", "Radebe",
	"Mosoeu", "Maqelepo", "Letsie", "Chabeli", "Nhlapo", "Sehloho",
	"Tau", "Moloi", "Tlali", "Majara",
}

// Corporate is a business name together with the sector it trades in.
type Corporate struct {
	Name         string
	Sector       string
	PublicSector bool
	Financial    bool
}

var Corporates = []Corporate{
	{Name: "Maluti Mountain Brewery", Sector: "MFG"},
	{Name: "Letseng Diamonds", Sector: "MIN"},
	{Name: "Lesotho Flour Mills", Sector: "MFG"},
	{Name: "Matekane Group", Sector: "CON"},
	{Name: "Lesotho Electricity Company", Sector: "UTL", PublicSector: true},
	{Name: "Water and Sewerage Company", Sector: "UTL", PublicSector: true},
	{Name: "Econet Telecom Lesotho", Sector: "TEL"},
	{Name: "Vodacom Lesotho", Sector: "TEL"},
	{Name: "Alliance Insurance", Sector: "FIN", Financial: true},
	{Name: "Lesotho Post Bank", Sector: "FIN", PublicSector: true, Financial: true},
	{Name: "Loti Brick", Sector: "CON"},
	{Name: "Basotho Canners", Sector: "AGR"},
}

// LegalSuffixes are appended to corporate names.
var LegalSuffixes = []string{"Holdings", "Ltd", "Pty Ltd", "Trading"}

// Sectors maps sector codes to their descriptions.
var Sectors = []struct {
	Code, Name string
}{
	{"AGR", "Agriculture"},
	{"MIN", "Mining and Quarrying"},
	{"MFG", "Manufacturing"},
	{"UTL", "Electricity and Water"},
	{"CON", "Construction"},
	{"TRD", "Wholesale and Retail Trade"},
	{"TEL", "Telecommunications"},
	{"FIN", "Financial Services"},
	{"TRN", "Transport"},
	{"HOU", "Households"},
}

// SectorName returns the description of code, or "" if it is unknown.
func SectorName(code string) string {
	for _, s := range Sectors {
		if s.Code == code {
			return s.Name
		}
	}
	return ""
}

// HouseholdSector is the sector code for individuals and retail customers.
const HouseholdSector = "HOU"

// SMETradingSectors are the sectors small businesses are drawn from.
var SMETradingSectors = []string{"AGR", "TRD", "CON", "TRN", "MFG"}

// SMENames are trading names for small businesses.
var SMENames = []string{
	"Khotso General Dealer", "Mafeteng Hardware", "Thaba-Bosiu Transport",
	"Hlotse Butchery", "Maseru Panel Beaters", "Quthing Agri Supplies",
	"Sehlabathebe Lodge", "Roma Valley Bakery",
}

var InternalRatings = []string{"AAA", "AA", "A", "BBB", "BB", "B", "CCC"}

// LoanTermsMonths are the tenors products are originated with.
var LoanTermsMonths = []int{12, 24, 36, 60, 120, 240}

// SecuredCollateralTypes are drawn for SME loans.
var SecuredCollateralTypes = []string{"EQUIPMENT", "INVENTORY", "RECEIVABLES", "NONE"}

// CapitalComponentNames lists illustrative component names per Basel tier.
var CapitalComponentNames = map[string][]string{
	"CET1": {"Paid Up Ordinary Shares", "Retained Earnings", "Statutory Reserves", "Share Premium"},
	"AT1":  {"Perpetual Non-Cumulative Pref Shares", "AT1 Contingent Convertible Notes"},
	"T2":   {"Subordinated Debt", "General Provisions (Standard Assets)", "Revaluation Reserves"},
}

// CashflowCategories are the LCR inflow/outflow categories per flow type.
var CashflowCategories = map[string][]string{
	"INFLOW":  {"LOAN_REPAYMENTS", "INTERBANK_PLACEMENTS", "SECURITIES_MATURING"},
	"OUTFLOW": {"RETAIL_DEPOSITS", "WHOLESALE_FUNDING", "UNDRAWN_COMMITMENTS", "DERIVATIVE_PAYABLES"},
}

var MaturityBuckets = []string{"0-7D", "8-30D", "31-90D", "91-180D", "181-365D", ">1Y"}
