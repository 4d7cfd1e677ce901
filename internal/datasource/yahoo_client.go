package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"equity-screener/internal/api"
	"equity-screener/internal/logger"
	"equity-screener/internal/types"
)

// ErrNoQuote means the quote-summary response carried no result.
var ErrNoQuote = errors.New("no quote summary")

const quoteSummaryModules = "defaultKeyStatistics,financialData,summaryDetail,price"

// YahooClient looks up quote-summary statistics for {SYMBOL}{suffix}.
type YahooClient struct {
	client  *api.Client
	suffix  string
	limiter *MultiRateLimiter
}

func NewYahooClient(baseURL, suffix string, timeout time.Duration, limiter *MultiRateLimiter) *YahooClient {
	return &YahooClient{
		client: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(timeout),
			api.WithHeaders(api.YahooFinanceHeaders()),
		),
		suffix:  suffix,
		limiter: limiter,
	}
}

type rawValue struct {
	Raw float64 `json:"raw"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			DefaultKeyStatistics struct {
				PEGRatio       rawValue `json:"pegRatio"`
				ForwardPE      rawValue `json:"forwardPE"`
				EarningsGrowth rawValue `json:"earningsQuarterlyGrowth"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				DebtToEquity   rawValue `json:"debtToEquity"`
				EarningsGrowth rawValue `json:"earningsGrowth"`
				RevenueGrowth  rawValue `json:"revenueGrowth"`
				ProfitMargins  rawValue `json:"profitMargins"`
				ReturnOnEquity rawValue `json:"returnOnEquity"`
				ReturnOnAssets rawValue `json:"returnOnAssets"`
				CurrentPrice   rawValue `json:"currentPrice"`
			} `json:"financialData"`
			SummaryDetail struct {
				TrailingPE rawValue `json:"trailingPE"`
				ForwardPE  rawValue `json:"forwardPE"`
				MarketCap  rawValue `json:"marketCap"`
			} `json:"summaryDetail"`
			Price struct {
				RegularMarketPrice rawValue `json:"regularMarketPrice"`
				MarketCap          rawValue `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

// Info fetches the flat info mapping for symbol.
func (y *YahooClient) Info(ctx context.Context, symbol string) (*types.SecondaryInfo, error) {
	ticker := NormalizeSymbol(symbol) + y.suffix
	path := "/v10/finance/quoteSummary/" + url.PathEscape(ticker) + "?modules=" + url.QueryEscape(quoteSummaryModules)

	if err := y.limiter.Wait(ctx, SourceSecondary); err != nil {
		return nil, err
	}
	logger.Fetch(ctx, SourceSecondary, symbol, path)

	resp, err := y.client.GET(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("quote summary for %s: %w", ticker, err)
	}

	var qs quoteSummaryResponse
	if err := resp.ParseJSON(&qs); err != nil {
		return nil, err
	}
	if qs.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("%w for %s: %s", ErrNoQuote, ticker, qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoQuote, ticker)
	}

	r := qs.QuoteSummary.Result[0]
	info := &types.SecondaryInfo{
		Symbol:         ticker,
		PEGRatio:       r.DefaultKeyStatistics.PEGRatio.Raw,
		TrailingPE:     r.SummaryDetail.TrailingPE.Raw,
		ForwardPE:      firstNonZero(r.SummaryDetail.ForwardPE.Raw, r.DefaultKeyStatistics.ForwardPE.Raw),
		DebtToEquity:   r.FinancialData.DebtToEquity.Raw,
		EarningsGrowth: firstNonZero(r.FinancialData.EarningsGrowth.Raw, r.DefaultKeyStatistics.EarningsGrowth.Raw),
		RevenueGrowth:  r.FinancialData.RevenueGrowth.Raw,
		ProfitMargins:  r.FinancialData.ProfitMargins.Raw,
		ReturnOnEquity: r.FinancialData.ReturnOnEquity.Raw,
		ReturnOnAssets: r.FinancialData.ReturnOnAssets.Raw,
		MarketCap:      firstNonZero(r.Price.MarketCap.Raw, r.SummaryDetail.MarketCap.Raw),
		Price:          firstNonZero(r.Price.RegularMarketPrice.Raw, r.FinancialData.CurrentPrice.Raw),
	}
	return info, nil
}

func firstNonZero(vals ...float64) float64 {
	for _, v := range vals {
		if v != 0 {
			return v
		}
	}
	return 0
}
