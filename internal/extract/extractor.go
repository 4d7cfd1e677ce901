package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"equity-screener/internal/types"
)

// Extractor reads a company page into a MetricRecord. It never fails on a
// missing field; the field keeps its default and the miss is reported.
type Extractor struct {
	h Heuristics
}

func NewExtractor(h Heuristics) *Extractor {
	return &Extractor{h: h}
}

// Result is the record plus the path every step took.
type Result struct {
	Record *types.MetricRecord
	Paths  map[string]string
	Misses []string
}

func (r *Result) note(field, path string, ok bool) {
	r.Paths[field] = path
	if !ok {
		r.Misses = append(r.Misses, field)
	}
}

// ExtractHTML parses body and extracts it.
func (e *Extractor) ExtractHTML(symbol string, body []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document for %s: %w", symbol, err)
	}
	return e.Extract(symbol, doc), nil
}

// Extract runs every step against doc.
func (e *Extractor) Extract(symbol string, doc *goquery.Document) *Result {
	rec := &types.MetricRecord{Symbol: strings.ToUpper(strings.TrimSpace(symbol))}
	res := &Result{Record: rec, Paths: make(map[string]string)}

	name := e.Name(doc)
	rec.Name = name.Value
	res.note("name", name.Path, name.Found)

	sector := e.Sector(doc)
	rec.Sector = sector.Value
	res.note("sector", sector.Path, sector.Found)

	mc := e.MarketCap(doc)
	rec.MarketCap = mc.Value
	res.note("market_cap", mc.Path, mc.Found)

	for _, f := range Fields {
		l := e.Metric(doc, f)
		res.note(string(f), l.Path, l.Found)
		assign(rec, f, l.Value)
	}

	peers := LocateTable(doc, e.h.PeerTitles)
	rec.PeerComparison = peers.Value
	res.note("peer_comparison", peers.Path, peers.Found)

	quarterly := LocateTable(doc, e.h.QuarterlyTitles)
	rec.QuarterlyResults = PeriodRows(quarterly.Value)
	res.note("quarterly_results", quarterly.Path, quarterly.Found)

	annual := LocateTable(doc, e.h.AnnualTitles)
	rec.AnnualResults = PeriodRows(annual.Value)
	res.note("annual_results", annual.Path, annual.Found)

	return res
}

func assign(rec *types.MetricRecord, f Field, v float64) {
	switch f {
	case FieldCurrentPrice:
		rec.CurrentPrice = v
	case FieldPERatio:
		rec.PERatio = v
	case FieldBookValue:
		rec.BookValue = v
	case FieldROE:
		rec.ROE = types.ScreenerPercent(v)
	case FieldROCE:
		rec.ROCE = types.ScreenerPercent(v)
	case FieldDividendYield:
		rec.DividendYield = types.ScreenerPercent(v)
	case FieldWeek52High:
		rec.Week52High = v
	case FieldWeek52Low:
		rec.Week52Low = v
	case FieldPEGRatio:
		rec.PEGRatio = v
	case FieldDebtToEquity:
		rec.DebtToEquity = v
	case FieldProfitMargin:
		rec.ProfitMargin = types.ScreenerPercent(v)
	}
}

// Metric tries each rule for f in order; the first label that matches and
// parses wins.
func (e *Extractor) Metric(doc *goquery.Document, f Field) Lookup[float64] {
	for _, rule := range e.h.Rules[f] {
		for _, sel := range e.h.Items {
			text, ok := e.valueFor(doc, sel, rule.Label)
			if !ok {
				continue
			}
			if v, ok := rule.Parse(text); ok {
				return found(v, sel.Item+"["+rule.Label+"]")
			}
			break
		}
	}
	return notFound(0.0, PathNoLabel)
}

// MarketCap returns the value text unparsed so its unit survives.
func (e *Extractor) MarketCap(doc *goquery.Document) Lookup[types.MarketCap] {
	for _, label := range e.h.MarketCapLabel {
		for _, sel := range e.h.Items {
			if text, ok := e.valueFor(doc, sel, label); ok && text != "" {
				return found(types.FormattedMarketCap(text), sel.Item+"["+label+"]")
			}
		}
	}
	return notFound(types.FormattedMarketCap("0"), PathNoLabel)
}

// valueFor returns the value text of the first item whose label contains
// label.
func (e *Extractor) valueFor(doc *goquery.Document, sel ItemSelector, label string) (string, bool) {
	var (
		text    string
		matched bool
	)
	doc.Find(sel.Item).EachWithBreak(func(_ int, item *goquery.Selection) bool {
		if !strings.Contains(item.Find(sel.Label).First().Text(), label) {
			return true
		}
		matched = true
		for _, v := range sel.Values {
			if t := collapseSpace(item.Find(v).First().Text()); t != "" {
				text = t
				break
			}
		}
		return false
	})
	return text, matched
}

// Name tries each name selector in order.
func (e *Extractor) Name(doc *goquery.Document) Lookup[string] {
	for _, s := range e.h.NameSelectors {
		if t := collapseSpace(doc.Find(s).First().Text()); t != "" {
			return found(t, s)
		}
	}
	return notFound("Unknown", PathNoName)
}

// Sector returns the first keyword that appears on a line preceded, within
// SectorContextLines, by a peer-comparison line. The sector link is the
// fallback.
func (e *Extractor) Sector(doc *goquery.Document) Lookup[string] {
	lines := strings.Split(doc.Text(), "\n")
	for _, kw := range e.h.SectorKeywords {
		for i, line := range lines {
			if i == 0 || !strings.Contains(line, kw) {
				continue
			}
			start := max(0, i-e.h.SectorContextLines)
			if e.nearContext(lines[start:i]) {
				return found(kw, PathSectorKeyword)
			}
		}
	}
	if e.h.SectorLink != "" {
		if t := collapseSpace(doc.Find(e.h.SectorLink).First().Text()); t != "" {
			return found(t, PathSectorLink)
		}
	}
	return notFound("Unknown", PathNoSector)
}

func (e *Extractor) nearContext(lines []string) bool {
	for _, l := range lines {
		for _, c := range e.h.SectorContext {
			if strings.Contains(l, c) {
				return true
			}
		}
	}
	return false
}
