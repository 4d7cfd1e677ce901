package interfaces

import (
	"context"

	"equity-screener/internal/screening"
)

// Screener ranks a candidate universe against screening criteria
type Screener interface {
	// Screen runs one screening pass and returns the ranked shortlist
	Screen(ctx context.Context, c screening.Criteria) (*screening.ScreenResult, error)

	// Details returns the display view of a single company
	Details(ctx context.Context, symbol string) (*screening.StockDetails, error)
}
