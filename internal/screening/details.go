package screening

import (
	"context"
	"fmt"

	"equity-screener/internal/logger"
	"equity-screener/internal/trend"
	"equity-screener/internal/types"
)

// StockDetails is the display view of one company. Ratios are in
// percentage points whichever provider supplied them.
type StockDetails struct {
	Symbol         string               `json:"symbol"`
	Name           string               `json:"name"`
	Sector         string               `json:"sector"`
	CurrentPrice   float64              `json:"current_price"`
	MarketCap      string               `json:"market_cap"`
	PERatio        float64              `json:"pe_ratio"`
	PEGRatio       float64              `json:"peg_ratio"`
	BookValue      float64              `json:"book_value"`
	ROE            float64              `json:"roe"`
	ROCE           float64              `json:"roce"`
	DividendYield  float64              `json:"dividend_yield"`
	DebtToEquity   float64              `json:"debt_to_equity"`
	Week52High     float64              `json:"52w_high"`
	Week52Low      float64              `json:"52w_low"`
	Quarterly      types.QuarterlyTrend `json:"quarterly_trend"`
	Annual         types.AnnualTrend    `json:"annual_trend"`
	PeerComparison []map[string]string  `json:"peer_comparison,omitempty"`
}

// Details builds the display view for symbol from the company page, filling
// gaps from the secondary source when one is configured.
func (e *Engine) Details(ctx context.Context, symbol string) (*StockDetails, error) {
	timer := logger.StartOperation(ctx, "screening.details", "symbol", symbol)
	d, err := e.details(timer.GetContext(), symbol)
	if err != nil {
		timer.EndWithError(err)
		return nil, err
	}
	timer.End("sector", d.Sector)
	return d, nil
}

func (e *Engine) details(ctx context.Context, symbol string) (*StockDetails, error) {
	rec := &types.MetricRecord{Symbol: symbol, Name: "Unknown", Sector: "Unknown"}

	body, docErr := e.docs.FetchDocument(ctx, symbol)
	if docErr == nil {
		res, err := e.extractor.ExtractHTML(symbol, body)
		if err != nil {
			docErr = err
		} else {
			rec = res.Record
		}
	}
	if docErr != nil && e.secondary == nil {
		return nil, fmt.Errorf("details for %s: %w", symbol, docErr)
	}

	if e.secondary != nil {
		info, err := e.secondary.Info(ctx, rec.Symbol)
		switch {
		case err != nil && docErr != nil:
			return nil, fmt.Errorf("details for %s: %w (secondary: %v)", symbol, docErr, err)
		case err != nil:
			logger.Debug(ctx, "Secondary lookup failed", "symbol", symbol, "error", err.Error())
		default:
			fillFromSecondary(rec, info)
		}
	}
	e.backfillPrice(ctx, rec)

	q := trend.Quarterly(rec.QuarterlyResults)
	a := trend.Annual(rec.AnnualResults)
	if a.YearsAnalyzed > 0 && a.AvgDebtToEquity > 0 {
		rec.DebtToEquity = a.AvgDebtToEquity
	}

	return &StockDetails{
		Symbol:         rec.Symbol,
		Name:           rec.Name,
		Sector:         rec.Sector,
		CurrentPrice:   round2(rec.CurrentPrice),
		MarketCap:      rec.MarketCap.Display(),
		PERatio:        round2(rec.PERatio),
		PEGRatio:       round2(rec.PEGRatio),
		BookValue:      round2(rec.BookValue),
		ROE:            round2(rec.ROE.Points()),
		ROCE:           round2(rec.ROCE.Points()),
		DividendYield:  round2(rec.DividendYield.Points()),
		DebtToEquity:   round2(rec.DebtToEquity),
		Week52High:     round2(rec.Week52High),
		Week52Low:      round2(rec.Week52Low),
		Quarterly:      q,
		Annual:         a,
		PeerComparison: rec.PeerComparison.Records(),
	}, nil
}

// fillFromSecondary copies provider values into fields the page left at 0.
// The provider's ratios are fractions and keep that provenance.
func fillFromSecondary(rec *types.MetricRecord, info *types.SecondaryInfo) {
	if rec.CurrentPrice == 0 {
		rec.CurrentPrice = info.Price
	}
	if v, ok := rec.MarketCap.Normalize(); (!ok || v == 0) && info.MarketCap > 0 {
		rec.MarketCap = types.NumericMarketCap(info.MarketCap)
	}
	if rec.PERatio == 0 {
		rec.PERatio = info.PE()
	}
	if rec.PEGRatio == 0 {
		rec.PEGRatio = info.PEGRatio
	}
	if rec.ROE.IsZero() && info.ReturnOnEquity != 0 {
		rec.ROE = types.YahooPercent(info.ReturnOnEquity)
	}
	if rec.ROCE.IsZero() && info.ReturnOnAssets != 0 {
		rec.ROCE = types.YahooPercent(info.ReturnOnAssets)
	}
	if rec.ProfitMargin.IsZero() && info.ProfitMargins != 0 {
		rec.ProfitMargin = types.YahooPercent(info.ProfitMargins)
	}
	// The provider reports D/E in percent (45.2 for 0.452).
	if rec.DebtToEquity == 0 && info.DebtToEquity > 0 {
		rec.DebtToEquity = info.DebtToEquity / 100
	}
}
