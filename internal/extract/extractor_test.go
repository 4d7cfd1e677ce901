package extract

import (
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-screener/internal/types"
)

func loadDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func loadFixture(t *testing.T) []byte {
	t.Helper()
	b, err := os.ReadFile("testdata/company.html")
	require.NoError(t, err)
	return b
}

func TestExtractCompanyPage(t *testing.T) {
	e := NewExtractor(DefaultHeuristics())

	res, err := e.ExtractHTML("acme", loadFixture(t))
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "ACME", rec.Symbol)
	assert.Equal(t, "Acme Chemicals Ltd", rec.Name)
	assert.Equal(t, "Chemicals", rec.Sector)
	assert.Equal(t, 1234.5, rec.CurrentPrice)
	assert.Equal(t, 18.0, rec.PERatio)
	assert.Equal(t, 250.0, rec.BookValue)
	assert.Equal(t, 1500.0, rec.Week52High)
	assert.Equal(t, 900.0, rec.Week52Low)

	assert.Equal(t, types.ScreenerPercent(22), rec.ROE)
	assert.Equal(t, types.ScreenerPercent(24.5), rec.ROCE)
	assert.Equal(t, types.ScreenerPercent(0.8), rec.DividendYield)
	assert.Equal(t, 0.8, rec.DividendYield.Points(), "screener percentages are never rescaled")

	assert.Equal(t, types.MarketCapFormatted, rec.MarketCap.Kind())
	assert.Equal(t, "₹ 9,552 Cr.", rec.MarketCap.Text())
	assert.Equal(t, "Cr", rec.MarketCap.Unit())

	require.NotNil(t, rec.PeerComparison)
	assert.Equal(t, []string{"S.No.", "Name", "CMP Rs.", "P/E"}, rec.PeerComparison.Headers)
	assert.Len(t, rec.PeerComparison.Rows, 2)

	require.NotNil(t, rec.QuarterlyResults)
	assert.Equal(t, []string{"Period", "Sales", "Expenses", "Other Income", "Net Profit"}, rec.QuarterlyResults.Headers)
	assert.Equal(t, "Dec 2024", rec.QuarterlyResults.Rows[0][0], "periods are newest first")

	require.NotNil(t, rec.AnnualResults)
	assert.Equal(t, []string{"Period", "Debt to Equity", "ROCE %"}, rec.AnnualResults.Headers)
	assert.Equal(t, []string{"Mar 2024", "0.4", "24"}, rec.AnnualResults.Rows[0])

	assert.ElementsMatch(t, []string{"peg_ratio", "debt_to_equity", "profit_margin"}, res.Misses)
	assert.Equal(t, "h1.h2", res.Paths["name"])
	assert.Equal(t, PathSectorKeyword, res.Paths["sector"])
	assert.Equal(t, "li.flex.flex-space-between[Stock P/E]", res.Paths["pe_ratio"])
	assert.Equal(t, "h2:Quarterly Results", res.Paths["quarterly_results"])
}

func TestExtractDefaultsWhenFieldsMissing(t *testing.T) {
	e := NewExtractor(DefaultHeuristics())

	res, err := e.ExtractHTML("EMPTY", []byte(`<html><body><p>Page under maintenance</p></body></html>`))
	require.NoError(t, err)
	rec := res.Record

	assert.Equal(t, "Unknown", rec.Name)
	assert.Equal(t, "Unknown", rec.Sector)
	assert.Equal(t, "0", rec.MarketCap.Text())
	for _, v := range []float64{
		rec.CurrentPrice, rec.PERatio, rec.BookValue, rec.Week52High, rec.Week52Low,
		rec.PEGRatio, rec.DebtToEquity,
		rec.ROE.Value, rec.ROCE.Value, rec.DividendYield.Value, rec.ProfitMargin.Value,
	} {
		assert.Zero(t, v)
	}
	assert.Nil(t, rec.PeerComparison)
	assert.Nil(t, rec.QuarterlyResults)
	assert.Nil(t, rec.AnnualResults)

	assert.Equal(t, PathNoName, res.Paths["name"])
	assert.Equal(t, PathNoSector, res.Paths["sector"])
	assert.Equal(t, PathNoLabel, res.Paths["market_cap"])
	assert.Equal(t, PathHeadingMiss, res.Paths["quarterly_results"])
	assert.Len(t, res.Misses, len(Fields)+6)
}

func TestMetricRuleOrder(t *testing.T) {
	e := NewExtractor(DefaultHeuristics())

	tests := []struct {
		name     string
		html     string
		field    Field
		want     float64
		wantPath string
		found    bool
	}{
		{
			name:     "first rule wins",
			html:     `<ul><li class="flex flex-space-between"><span class="name">PEG Ratio</span><span class="value">1.4</span></li></ul>`,
			field:    FieldPEGRatio,
			want:     1.4,
			wantPath: "li.flex.flex-space-between[PEG Ratio]",
			found:    true,
		},
		{
			name:     "second label variant",
			html:     `<ul><li class="flex flex-space-between"><span class="name">Debt / Equity</span><span class="value">0.35</span></li></ul>`,
			field:    FieldDebtToEquity,
			want:     0.35,
			wantPath: "li.flex.flex-space-between[Debt / Equity]",
			found:    true,
		},
		{
			name:     "top ratios number fallback",
			html:     `<ul id="top-ratios"><li><span class="name">OPM</span><span class="number">18.5 %</span></li></ul>`,
			field:    FieldProfitMargin,
			want:     18.5,
			wantPath: "#top-ratios li[OPM]",
			found:    true,
		},
		{
			name:     "unparseable value falls through",
			html:     `<ul><li class="flex flex-space-between"><span class="name">Stock P/E</span><span class="value">--</span></li></ul>`,
			field:    FieldPERatio,
			want:     0,
			wantPath: PathNoLabel,
			found:    false,
		},
		{
			name:     "labels are case sensitive",
			html:     `<ul><li class="flex flex-space-between"><span class="name">stock p/e</span><span class="value">12</span></li></ul>`,
			field:    FieldPERatio,
			want:     0,
			wantPath: PathNoLabel,
			found:    false,
		},
		{
			name:     "low side missing",
			html:     `<ul><li class="flex flex-space-between"><span class="name">High / Low</span><span class="value">₹ 1,500</span></li></ul>`,
			field:    FieldWeek52Low,
			want:     0,
			wantPath: PathNoLabel,
			found:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Metric(loadDoc(t, tt.html), tt.field)
			assert.Equal(t, tt.want, got.Value)
			assert.Equal(t, tt.found, got.Found)
			assert.Equal(t, tt.wantPath, got.Path)
		})
	}
}

func TestNameFallbacks(t *testing.T) {
	e := NewExtractor(DefaultHeuristics())

	got := e.Name(loadDoc(t, `<h1>Plain Heading Co</h1>`))
	assert.Equal(t, Lookup[string]{Value: "Plain Heading Co", Found: true, Path: "h1"}, got)

	got = e.Name(loadDoc(t, `<div class="page-title">  Title   Only  </div>`))
	assert.Equal(t, Lookup[string]{Value: "Title Only", Found: true, Path: ".page-title"}, got)
}

func TestSectorFallsBackToLink(t *testing.T) {
	e := NewExtractor(DefaultHeuristics())

	html := `<div class="company-info"><a href="/company/compare/00000004/">Power</a>
<a href="/sector/banks/">Private Banks</a></div>
<p>Banking without any peer section</p>`
	got := e.Sector(loadDoc(t, html))

	assert.Equal(t, "Private Banks", got.Value)
	assert.Equal(t, PathSectorLink, got.Path)
	assert.True(t, got.Found)
}

func TestSectorKeywordNeedsPeerContext(t *testing.T) {
	h := DefaultHeuristics()
	h.SectorContextLines = 2
	e := NewExtractor(h)

	html := "<div>\nPeer comparison\none\ntwo\nthree\nSoftware\n</div>"
	got := e.Sector(loadDoc(t, html))
	assert.False(t, got.Found, "keyword too far from the peer heading")

	html = "<div>\nPeer comparison\nSoftware\n</div>"
	got = e.Sector(loadDoc(t, html))
	assert.Equal(t, "Software", got.Value)
}
