package datasource

import (
	"context"
	"errors"
	"fmt"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"equity-screener/internal/logger"
)

// ErrNoPrice means the broker returned no quote for the instrument.
var ErrNoPrice = errors.New("no last traded price")

// ltpClient is the slice of the Kite Connect client this package uses.
type ltpClient interface {
	GetLTP(instruments ...string) (kiteconnect.QuoteLTP, error)
}

// KiteClient looks up last traded prices through Kite Connect.
type KiteClient struct {
	kc       ltpClient
	exchange string
	limiter  *MultiRateLimiter
}

// NewKiteClient creates a Kite client for the given credentials.
func NewKiteClient(apiKey, accessToken, exchange string, limiter *MultiRateLimiter) *KiteClient {
	kc := kiteconnect.New(apiKey)
	kc.SetAccessToken(accessToken)
	return &KiteClient{kc: kc, exchange: exchange, limiter: limiter}
}

// Instrument returns the exchange-qualified instrument key for symbol.
func (k *KiteClient) Instrument(symbol string) string {
	return k.exchange + ":" + NormalizeSymbol(symbol)
}

// LastPrice returns the last traded price for symbol.
func (k *KiteClient) LastPrice(ctx context.Context, symbol string) (float64, error) {
	if err := k.limiter.Wait(ctx, SourceKite); err != nil {
		return 0, err
	}

	instrument := k.Instrument(symbol)
	logger.Fetch(ctx, SourceKite, symbol, instrument)

	quotes, err := k.kc.GetLTP(instrument)
	if err != nil {
		return 0, fmt.Errorf("ltp for %s: %w", instrument, err)
	}
	q, ok := quotes[instrument]
	if !ok || q.LastPrice <= 0 {
		return 0, fmt.Errorf("%w for %s", ErrNoPrice, instrument)
	}
	return q.LastPrice, nil
}
