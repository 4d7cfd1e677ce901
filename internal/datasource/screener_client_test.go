package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equity-screener/internal/api"
)

const companyHTML = `<html><body><h1>Acme</h1></body></html>`

func newTestClient(t *testing.T, baseURL string, cache *Cache) *ScreenerClient {
	t.Helper()
	return NewScreenerClient(ScreenerConfig{
		BaseURL:   baseURL,
		UserAgent: "screener-test",
		Timeout:   2 * time.Second,
		Retry:     &api.RetryConfig{MaxAttempts: 1},
	}, nil, cache)
}

func TestFetchDocumentDirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company/ACME/", r.URL.Path)
		assert.Equal(t, "screener-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, companyHTML)
	}))
	defer srv.Close()

	body, err := newTestClient(t, srv.URL, nil).FetchDocument(context.Background(), " acme.ns ")
	require.NoError(t, err)
	assert.Equal(t, companyHTML, string(body))
}

func TestFetchDocumentFallsBackToSearch(t *testing.T) {
	var searched atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/company/ACME/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		searched.Store(true)
		assert.Equal(t, "ACME", r.URL.Query().Get("q"))
		fmt.Fprint(w, `<html><body>
<a class="company-card" href="/company/ACME1/consolidated/">Acme Industries</a>
<a class="company-card" href="/company/ACME2/">Acme Other</a>
</body></html>`)
	})
	mux.HandleFunc("/company/ACME1/consolidated/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, companyHTML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	body, err := newTestClient(t, srv.URL, nil).FetchDocument(context.Background(), "ACME")
	require.NoError(t, err)
	assert.True(t, searched.Load())
	assert.Equal(t, companyHTML, string(body))
}

func TestFetchDocumentSearchFindsNothing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/company/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/search/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No results</p></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, nil).FetchDocument(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrDocumentUnavailable)
}

func TestFetchDocumentNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	_, err := newTestClient(t, baseURL, nil).FetchDocument(context.Background(), "ACME")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentUnavailable))
}

func TestFetchDocumentUsesCache(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, companyHTML)
	}))
	defer srv.Close()

	cache, err := NewCache(t.TempDir(), time.Hour)
	require.NoError(t, err)
	client := newTestClient(t, srv.URL, cache)

	for i := 0; i < 3; i++ {
		body, err := client.FetchDocument(context.Background(), "ACME")
		require.NoError(t, err)
		assert.Equal(t, companyHTML, string(body))
	}
	assert.Equal(t, int32(1), hits.Load())
}

type stubSearch struct {
	path string
	err  error
}

func (s stubSearch) Search(context.Context, string) (string, error) { return s.path, s.err }

func TestFetchDocumentWithStubSearch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/company/TATA/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/company/TATAMOTORS/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, companyHTML)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := newTestClient(t, srv.URL, nil).WithSearch(stubSearch{path: "/company/TATAMOTORS/"})
	body, err := client.FetchDocument(context.Background(), "tata")
	require.NoError(t, err)
	assert.Equal(t, companyHTML, string(body))

	client.WithSearch(stubSearch{err: ErrNoSearchResult})
	_, err = client.FetchDocument(context.Background(), "tata")
	assert.ErrorIs(t, err, ErrDocumentUnavailable)
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "RELIANCE", NormalizeSymbol(" reliance.ns"))
	assert.Equal(t, "TCS", NormalizeSymbol("TCS.BO"))
	assert.Equal(t, "/company/M&M/", CompanyPath("m&m"))
}
