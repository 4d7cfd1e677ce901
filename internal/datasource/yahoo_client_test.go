package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteSummaryJSON = `{"quoteSummary":{"result":[{
"defaultKeyStatistics":{"pegRatio":{"raw":1.25},"forwardPE":{"raw":17.5},"earningsQuarterlyGrowth":{"raw":0.3}},
"financialData":{"debtToEquity":{"raw":42.5},"earningsGrowth":{"raw":0.18},"revenueGrowth":{"raw":0.12},
"profitMargins":{"raw":0.105},"returnOnEquity":{"raw":0.22},"returnOnAssets":{"raw":0.09},"currentPrice":{"raw":1230}},
"summaryDetail":{"trailingPE":{"raw":19.2},"marketCap":{"raw":95520000000}},
"price":{"regularMarketPrice":{"raw":1234.5}}
}],"error":null}}`

func TestYahooInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/ACME.NS", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("modules"), "financialData")
		fmt.Fprint(w, quoteSummaryJSON)
	}))
	defer srv.Close()

	info, err := NewYahooClient(srv.URL, ".NS", time.Second, nil).Info(context.Background(), "acme")
	require.NoError(t, err)

	assert.Equal(t, "ACME.NS", info.Symbol)
	assert.Equal(t, 1.25, info.PEGRatio)
	assert.Equal(t, 19.2, info.TrailingPE)
	assert.Equal(t, 17.5, info.ForwardPE)
	assert.Equal(t, 19.2, info.PE())
	assert.Equal(t, 42.5, info.DebtToEquity)
	assert.Equal(t, 0.18, info.EarningsGrowth, "financial data wins over key statistics")
	assert.Equal(t, 0.105, info.ProfitMargins)
	assert.Equal(t, 0.22, info.ReturnOnEquity)
	assert.Equal(t, 95520000000.0, info.MarketCap, "summary detail fills a missing price block figure")
	assert.Equal(t, 1234.5, info.Price)
}

func TestYahooInfoErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"provider error", http.StatusOK, `{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`},
		{"empty result", http.StatusOK, `{"quoteSummary":{"result":[],"error":null}}`},
		{"http error", http.StatusNotFound, `{}`},
		{"bad json", http.StatusOK, `{"quoteSummary":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			info, err := NewYahooClient(srv.URL, ".NS", time.Second, nil).Info(context.Background(), "ZZZ")
			assert.Error(t, err)
			assert.Nil(t, info)
		})
	}
}
