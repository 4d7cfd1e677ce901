package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"equity-screener/internal/api"
	"equity-screener/internal/logger"
)

var (
	// ErrDocumentUnavailable means neither the company page nor the search
	// fallback produced a document.
	ErrDocumentUnavailable = errors.New("document unavailable")
	// ErrNoSearchResult means the search page listed no company.
	ErrNoSearchResult = errors.New("no search result")
)

// CompanySearch resolves a symbol to a company page path.
type CompanySearch interface {
	Search(ctx context.Context, symbol string) (string, error)
}

// ScreenerConfig configures ScreenerClient
type ScreenerConfig struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Retry     *api.RetryConfig
}

// ScreenerClient fetches company pages from screener.in. The direct URL is
// tried first; any non-success status falls back to the search page.
type ScreenerClient struct {
	client  *api.Client
	search  CompanySearch
	limiter *MultiRateLimiter
	cache   *Cache
	retry   *api.RetryConfig
}

// NewScreenerClient creates a new Screener.in client. cache and limiter may
// be nil.
func NewScreenerClient(cfg ScreenerConfig, limiter *MultiRateLimiter, cache *Cache) *ScreenerClient {
	client := api.NewClient(
		api.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		api.WithTimeout(cfg.Timeout),
		api.WithHeaders(api.BrowserHeaders(cfg.UserAgent)),
		api.WithLogging(true),
	)
	return &ScreenerClient{
		client:  client,
		search:  NewCollySearch(cfg.BaseURL, cfg.UserAgent, cfg.Timeout),
		limiter: limiter,
		cache:   cache,
		retry:   cfg.Retry,
	}
}

// WithSearch replaces the search fallback.
func (sc *ScreenerClient) WithSearch(s CompanySearch) *ScreenerClient {
	sc.search = s
	return sc
}

// CompanyPath is the direct page path for symbol.
func CompanyPath(symbol string) string {
	return "/company/" + url.PathEscape(strings.ToUpper(symbol)) + "/"
}

// FetchDocument returns the company page HTML for symbol.
func (sc *ScreenerClient) FetchDocument(ctx context.Context, symbol string) ([]byte, error) {
	symbol = NormalizeSymbol(symbol)
	key := MakeKey(SourceScreener, symbol)

	body, cached, err := sc.cache.GetOrFetch(key, func() ([]byte, error) {
		return sc.fetch(ctx, symbol)
	})
	if err != nil {
		return nil, err
	}
	if cached {
		logger.Debug(ctx, "Document served from cache", "symbol", symbol)
	}
	return body, nil
}

func (sc *ScreenerClient) fetch(ctx context.Context, symbol string) ([]byte, error) {
	path := CompanyPath(symbol)
	body, err := sc.get(ctx, symbol, path)
	if err == nil {
		return body, nil
	}
	if api.StatusCode(err) == 0 {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnavailable, symbol, err)
	}

	logger.Debug(ctx, "Company page unavailable, searching", "symbol", symbol, "status", api.StatusCode(err))

	if err := sc.limiter.Wait(ctx, SourceScreener); err != nil {
		return nil, err
	}
	found, err := sc.search.Search(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: search: %v", ErrDocumentUnavailable, symbol, err)
	}

	body, err = sc.get(ctx, symbol, found)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnavailable, symbol, err)
	}
	return body, nil
}

func (sc *ScreenerClient) get(ctx context.Context, symbol, path string) ([]byte, error) {
	if err := sc.limiter.Wait(ctx, SourceScreener); err != nil {
		return nil, err
	}
	logger.Fetch(ctx, SourceScreener, symbol, path)

	req := api.NewRequest(http.MethodGet, path).WithContext(ctx)
	resp, err := sc.client.DoWithRetry(req, sc.retry)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// NormalizeSymbol upper-cases symbol and drops exchange suffixes.
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".NS")
	s = strings.TrimSuffix(s, ".BO")
	return s
}
