package types

// RawTable is a located HTML table. Rows may be ragged.
type RawTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Cell returns the cell at row/col, or false when the row is too short.
func (t *RawTable) Cell(row, col int) (string, bool) {
	if t == nil || row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return "", false
	}
	return t.Rows[row][col], true
}

// Empty reports whether the table is absent or has no rows.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Records maps each row onto the headers. Cells past the last header are
// dropped, missing cells are left out of the map.
func (t *RawTable) Records() []map[string]string {
	if t.Empty() {
		return nil
	}
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// MetricRecord is one company's point-in-time snapshot. Every numeric field
// is 0 when the page did not carry it.
type MetricRecord struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	Sector        string    `json:"sector"`
	CurrentPrice  float64   `json:"current_price"`
	MarketCap     MarketCap `json:"market_cap"`
	PERatio       float64   `json:"pe_ratio"`
	BookValue     float64   `json:"book_value"`
	ROE           Percent   `json:"roe"`
	ROCE          Percent   `json:"roce"`
	DividendYield Percent   `json:"dividend_yield"`
	ProfitMargin  Percent   `json:"profit_margin"`
	Week52High    float64   `json:"week52_high"`
	Week52Low     float64   `json:"week52_low"`
	PEGRatio      float64   `json:"peg_ratio"`
	DebtToEquity  float64   `json:"debt_to_equity"`

	PeerComparison   *RawTable `json:"peer_comparison,omitempty"`
	QuarterlyResults *RawTable `json:"quarterly_results,omitempty"`
	AnnualResults    *RawTable `json:"annual_results,omitempty"`
}

// QuarterlyTrend summarises the most recent quarters, newest against oldest.
// QuartersAnalyzed == 0 means no usable table.
type QuarterlyTrend struct {
	SalesGrowth       float64 `json:"sales_growth"`
	ProfitGrowth      float64 `json:"profit_growth"`
	MarginImprovement bool    `json:"margin_improvement"`
	QuartersAnalyzed  int     `json:"quarters_analyzed"`
}

// AnnualTrend summarises the debt-to-equity trajectory over recent years.
// YearsAnalyzed == 0 means no usable table.
type AnnualTrend struct {
	AvgDebtToEquity float64 `json:"avg_debt_to_equity"`
	DebtDecreasing  bool    `json:"debt_decreasing"`
	YearsAnalyzed   int     `json:"years_analyzed"`
}

// SecondaryInfo is the flat quote-summary mapping from the secondary source.
// Ratios are fractions as the provider reports them.
type SecondaryInfo struct {
	Symbol         string  `json:"symbol"`
	PEGRatio       float64 `json:"pegRatio"`
	TrailingPE     float64 `json:"trailingPE"`
	ForwardPE      float64 `json:"forwardPE"`
	DebtToEquity   float64 `json:"debtToEquity"`
	EarningsGrowth float64 `json:"earningsGrowth"`
	RevenueGrowth  float64 `json:"revenueGrowth"`
	ProfitMargins  float64 `json:"profitMargins"`
	ReturnOnEquity float64 `json:"returnOnEquity"`
	ReturnOnAssets float64 `json:"returnOnAssets"`
	MarketCap      float64 `json:"marketCap"`
	Price          float64 `json:"regularMarketPrice"`
}

// PE prefers trailing over forward earnings.
func (s *SecondaryInfo) PE() float64 {
	if s.TrailingPE > 0 {
		return s.TrailingPE
	}
	return s.ForwardPE
}
