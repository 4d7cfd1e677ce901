package screeningobs

import (
	"context"
	"time"

	"equity-screener/internal/interfaces"
	"equity-screener/internal/logger"
	"equity-screener/internal/screening"
	"equity-screener/internal/trace"
)

// observableScreener wraps Screener with logging and tracing
type observableScreener struct {
	inner interfaces.Screener
}

// Wrap wraps a Screener with observability middleware
func Wrap(s interfaces.Screener) interfaces.Screener {
	return &observableScreener{inner: s}
}

// Screen wraps the Screen method with logging and tracing
func (o *observableScreener) Screen(ctx context.Context, c screening.Criteria) (*screening.ScreenResult, error) {
	ctx, span := trace.StartSpan(ctx, "screening.Screen")
	defer span.End()

	fields := []any{
		"max_peg", c.MaxPEG,
		"pe_range", []float64{c.MinPE, c.MaxPE},
		"max_debt_to_equity", c.MaxDebtToEquity,
		"max_results", c.MaxResults,
		"candidate_override", len(c.CandidateList),
	}

	logger.InfoSkip(ctx, 1, "Starting screening", fields...)
	start := time.Now()

	result, err := o.inner.Screen(ctx, c)

	fields = append(fields, "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Screening failed", err, fields...)
		span.RecordError(err)
		return nil, err
	}

	fields = append(fields,
		"run_id", result.RunID,
		"scanned", result.Scanned,
		"matched", len(result.Candidates),
		"early_stopped", result.EarlyStopped,
		"timed_out", result.TimedOut,
		"cached", result.Cached,
	)
	if len(result.Candidates) > 0 {
		top := result.Candidates[0]
		fields = append(fields, "top_symbol", top.Symbol, "top_score", top.MatchScore)
	}
	if result.TimedOut {
		logger.WarnSkip(ctx, 1, "Screening timed out, returning partial results", fields...)
	} else {
		logger.InfoSkip(ctx, 1, "Screening completed", fields...)
	}

	return result, nil
}

// Details wraps the Details method with logging and tracing
func (o *observableScreener) Details(ctx context.Context, symbol string) (*screening.StockDetails, error) {
	ctx, span := trace.StartSpan(ctx, "screening.Details")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching stock details", "symbol", symbol)
	start := time.Now()

	details, err := o.inner.Details(ctx, symbol)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Stock details failed", err, "symbol", symbol, "duration_ms", duration)
		span.RecordError(err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Stock details retrieved",
		"symbol", symbol,
		"sector", details.Sector,
		"market_cap", details.MarketCap,
		"duration_ms", duration,
	)
	return details, nil
}
