package extract

// Field names a scalar metric on the company page.
type Field string

const (
	FieldCurrentPrice  Field = "current_price"
	FieldPERatio       Field = "pe_ratio"
	FieldBookValue     Field = "book_value"
	FieldROE           Field = "roe"
	FieldROCE          Field = "roce"
	FieldDividendYield Field = "dividend_yield"
	FieldWeek52High    Field = "week52_high"
	FieldWeek52Low     Field = "week52_low"
	FieldPEGRatio      Field = "peg_ratio"
	FieldDebtToEquity  Field = "debt_to_equity"
	FieldProfitMargin  Field = "profit_margin"
)

// Fields lists the numeric fields in the order they are extracted.
var Fields = []Field{
	FieldCurrentPrice,
	FieldPERatio,
	FieldBookValue,
	FieldROE,
	FieldROCE,
	FieldDividendYield,
	FieldWeek52High,
	FieldWeek52Low,
	FieldPEGRatio,
	FieldDebtToEquity,
	FieldProfitMargin,
}

// Rule pairs a label substring with the parser applied to the value text.
// Labels match case-sensitively.
type Rule struct {
	Label string
	Parse ValueParser
}

// ItemSelector describes one rendering of the label/value list.
// Values are tried in order until one yields non-empty text.
type ItemSelector struct {
	Item   string
	Label  string
	Values []string
}

// Heuristics holds every page-template dependent constant. Bump Version
// whenever a selector, label or keyword changes.
type Heuristics struct {
	Version string

	Items          []ItemSelector
	Rules          map[Field][]Rule
	MarketCapLabel []string

	NameSelectors []string

	SectorKeywords     []string
	SectorContext      []string
	SectorContextLines int
	SectorLink         string

	PeerTitles      []string
	QuarterlyTitles []string
	AnnualTitles    []string
}

// DefaultHeuristics matches the screener.in company page layout.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		Version: "screener-2024.2",
		Items: []ItemSelector{
			{Item: "li.flex.flex-space-between", Label: "span.name", Values: []string{"span.value"}},
			{Item: "#top-ratios li", Label: ".name", Values: []string{".value", ".number"}},
		},
		Rules: map[Field][]Rule{
			FieldCurrentPrice:  {{Label: "Current Price", Parse: ParseNumber}},
			FieldPERatio:       {{Label: "Stock P/E", Parse: ParseNumber}},
			FieldBookValue:     {{Label: "Book Value", Parse: ParseNumber}},
			FieldROE:           {{Label: "ROE", Parse: ParsePercent}},
			FieldROCE:          {{Label: "ROCE", Parse: ParsePercent}},
			FieldDividendYield: {{Label: "Dividend Yield", Parse: ParsePercent}},
			FieldWeek52High:    {{Label: "High / Low", Parse: ParseHigh}},
			FieldWeek52Low:     {{Label: "High / Low", Parse: ParseLow}},
			FieldPEGRatio: {
				{Label: "PEG Ratio", Parse: ParseNumber},
				{Label: "PEG", Parse: ParseNumber},
			},
			FieldDebtToEquity: {
				{Label: "Debt to equity", Parse: ParseNumber},
				{Label: "Debt / Equity", Parse: ParseNumber},
				{Label: "D/E", Parse: ParseNumber},
			},
			FieldProfitMargin: {
				{Label: "Net Profit Margin", Parse: ParsePercent},
				{Label: "OPM", Parse: ParsePercent},
			},
		},
		MarketCapLabel: []string{"Market Cap"},
		NameSelectors:  []string{"h1.h2", "h1", ".page-title"},
		SectorKeywords: []string{
			"IT Services", "Software", "Information Technology", "Technology Services",
			"Beverages", "Banking", "Financial Services", "Private Banks", "Public Sector Banks",
			"Pharmaceuticals", "Automobiles", "Telecom", "Energy", "FMCG", "Metals",
			"Capital Goods", "Healthcare", "Textiles", "Chemicals", "Retail",
			"Real Estate", "Power", "Sugar", "Breweries & Distilleries", "Oil & Gas",
			"Infrastructure", "Media",
		},
		SectorContext:      []string{"Peer", "comparison"},
		SectorContextLines: 10,
		SectorLink:         `.company-info a[href*="/sector/"]`,
		PeerTitles:         []string{"peer", "comparison"},
		QuarterlyTitles:    []string{"quarterly"},
		AnnualTitles:       []string{"annual", "yearly", "profit & loss"},
	}
}
