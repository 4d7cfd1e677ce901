package screening

import (
	"context"

	"equity-screener/internal/types"
)

// DocumentSource returns the company page HTML for a ticker.
type DocumentSource interface {
	FetchDocument(ctx context.Context, symbol string) ([]byte, error)
}

// SecondarySource is the quote-summary lookup used to backfill PEG.
type SecondarySource interface {
	Info(ctx context.Context, symbol string) (*types.SecondaryInfo, error)
}

// PriceSource returns a last traded price.
type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
}
