package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

// CollySearch scrapes the site's search page and returns the first
// company card's link.
type CollySearch struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
}

func NewCollySearch(baseURL, userAgent string, timeout time.Duration) *CollySearch {
	return &CollySearch{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// SearchURL is the search page for symbol.
func (s *CollySearch) SearchURL(symbol string) string {
	return s.baseURL + "/search/?q=" + url.QueryEscape(symbol)
}

// Search returns the path (with query) of the first a.company-card result.
func (s *CollySearch) Search(ctx context.Context, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", s.baseURL, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Hostname()),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	if s.timeout > 0 {
		c.SetRequestTimeout(s.timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", s.userAgent)
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var (
		href      string
		scrapeErr error
	)
	c.OnHTML("a.company-card[href]", func(e *colly.HTMLElement) {
		if href != "" {
			return
		}
		href = e.Request.AbsoluteURL(e.Attr("href"))
	})
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("search returned status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(s.SearchURL(symbol)); err != nil {
		return "", err
	}
	c.Wait()

	if scrapeErr != nil {
		return "", scrapeErr
	}
	if href == "" {
		return "", fmt.Errorf("%w for %s", ErrNoSearchResult, symbol)
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid search result %q: %w", href, err)
	}
	return u.RequestURI(), nil
}
