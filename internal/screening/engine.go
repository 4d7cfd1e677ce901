package screening

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"equity-screener/internal/extract"
	"equity-screener/internal/logger"
	"equity-screener/internal/trend"
	"equity-screener/internal/types"
)

// DefaultOverallTimeout bounds a run when the caller sets no deadline.
const DefaultOverallTimeout = 5 * time.Minute

// Engine runs the sequential fetch, extract, filter and score pipeline.
// Upstream pacing belongs to the sources.
type Engine struct {
	docs      DocumentSource
	secondary SecondarySource
	prices    PriceSource
	extractor *extract.Extractor
	scorer    *Scorer
	universe  *Universe
	results   *ResultCache
	timeout   time.Duration
	now       func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithSecondary enables PEG backfill from s.
func WithSecondary(s SecondarySource) Option {
	return func(e *Engine) { e.secondary = s }
}

// WithPrices enables current price backfill from p.
func WithPrices(p PriceSource) Option {
	return func(e *Engine) { e.prices = p }
}

// WithResultCache serves repeated runs from c.
func WithResultCache(c *ResultCache) Option {
	return func(e *Engine) { e.results = c }
}

// WithOverallTimeout bounds each run. Non-positive means DefaultOverallTimeout.
func WithOverallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a screening engine.
func NewEngine(docs DocumentSource, extractor *extract.Extractor, scorer *Scorer, universe *Universe, opts ...Option) *Engine {
	e := &Engine{
		docs:      docs,
		extractor: extractor,
		scorer:    scorer,
		universe:  universe,
		timeout:   DefaultOverallTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.timeout <= 0 {
		e.timeout = DefaultOverallTimeout
	}
	return e
}

// filter is one ordered screening predicate.
type filter struct {
	reason string
	pass   func(c Criteria, ev *evaluation) bool
}

var filters = []filter{
	// An estimated PEG is PE/10, so the PE bounds decide it instead.
	{ReasonPEG, func(c Criteria, ev *evaluation) bool {
		return ev.pegEstimated || ev.record.PEGRatio <= c.MaxPEG
	}},
	{ReasonPE, func(c Criteria, ev *evaluation) bool {
		pe := ev.record.PERatio
		return pe > 0 && pe >= c.MinPE && pe <= c.MaxPE
	}},
	{ReasonDebt, func(c Criteria, ev *evaluation) bool {
		return ev.record.DebtToEquity <= c.MaxDebtToEquity || ev.annual.DebtDecreasing
	}},
	{ReasonSalesGrowth, func(c Criteria, ev *evaluation) bool {
		return c.MinSalesGrowth <= 0 || ev.quarterly.SalesGrowth >= c.MinSalesGrowth
	}},
	{ReasonProfitGrowth, func(c Criteria, ev *evaluation) bool {
		return c.MinProfitGrowth <= 0 || ev.quarterly.ProfitGrowth >= c.MinProfitGrowth
	}},
	{ReasonMarginImprovement, func(c Criteria, ev *evaluation) bool {
		return !c.RequireMarginImprovement || ev.quarterly.QuartersAnalyzed == 0 || ev.quarterly.MarginImprovement
	}},
}

// disqualify returns the reason of the first failing filter, or "".
func disqualify(c Criteria, ev *evaluation) string {
	for _, f := range filters {
		if !f.pass(c, ev) {
			return f.reason
		}
	}
	return ""
}

// Screen ranks the universe against c. Per-candidate failures are counted
// and skipped; only invalid criteria or an empty universe return an error.
// When the run's deadline passes, the candidates scored so far are returned
// with TimedOut set.
func (e *Engine) Screen(ctx context.Context, c Criteria) (*ScreenResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	symbols, err := e.universe.Symbols(c.CandidateList)
	if err != nil {
		return nil, err
	}

	if removed := e.results.Cleanup(); removed > 0 {
		logger.Debug(ctx, "Evicted expired screening results", "removed", removed, "remaining", e.results.Len())
	}

	key := c.Key() + "#" + strings.Join(symbols, ",")
	if cached, ok := e.results.Get(key); ok {
		logger.Debug(ctx, "Screening served from result cache", "run_id", cached.RunID)
		return cached, nil
	}

	result := e.run(ctx, c, symbols)
	if !result.TimedOut {
		e.results.Set(key, result)
	}
	return result, nil
}

func (e *Engine) run(ctx context.Context, c Criteria, symbols []string) *ScreenResult {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	started := e.now()
	result := &ScreenResult{
		RunID:        uuid.NewString(),
		StartedAt:    started,
		Criteria:     c,
		Universe:     symbols,
		Disqualified: make(map[string]int),
	}

	timer := logger.StartOperation(ctx, "screening.run",
		"run_id", result.RunID,
		"universe_size", len(symbols),
		"max_results", c.MaxResults,
	)
	ctx = timer.GetContext()

	survivors := make([]ScoredCandidate, 0, 2*c.MaxResults)
	for _, symbol := range symbols {
		if len(survivors) >= 2*c.MaxResults {
			result.EarlyStopped = true
			break
		}
		if ctx.Err() != nil {
			result.TimedOut = true
			break
		}

		result.Scanned++
		cand, reason, err := e.evaluate(ctx, c, symbol)
		if err != nil {
			if ctx.Err() != nil {
				result.TimedOut = true
				break
			}
			result.Disqualified[ReasonUnavailable]++
			logger.Warn(ctx, "Skipping candidate", "symbol", symbol, "error", err.Error())
			continue
		}
		if reason != "" {
			result.Disqualified[reason]++
			logger.Screen(ctx, symbol, OutcomeDisqualified, 0, reason)
			continue
		}

		logger.Screen(ctx, symbol, OutcomeScored, cand.MatchScore, "")
		survivors = append(survivors, *cand)
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].MatchScore > survivors[j].MatchScore
	})
	if len(survivors) > c.MaxResults {
		survivors = survivors[:c.MaxResults]
	}
	result.Candidates = survivors
	result.Duration = e.now().Sub(started)

	timer.End(
		"scanned", result.Scanned,
		"matched", len(result.Candidates),
		"early_stopped", result.EarlyStopped,
		"timed_out", result.TimedOut,
	)
	return result
}

// evaluate runs one candidate from fetch to score. A non-empty reason means
// the candidate was disqualified; an error means it had no usable document.
func (e *Engine) evaluate(ctx context.Context, c Criteria, symbol string) (*ScoredCandidate, string, error) {
	ev, err := e.prepare(ctx, symbol)
	if err != nil {
		return nil, "", err
	}
	if reason := disqualify(c, ev); reason != "" {
		return nil, reason, nil
	}
	return e.candidate(ev), "", nil
}

// prepare fetches, extracts and enriches one record.
func (e *Engine) prepare(ctx context.Context, symbol string) (*evaluation, error) {
	body, err := e.docs.FetchDocument(ctx, symbol)
	if err != nil {
		return nil, err
	}
	res, err := e.extractor.ExtractHTML(symbol, body)
	if err != nil {
		return nil, err
	}
	if len(res.Misses) > 0 {
		logger.Debug(ctx, "Extraction fell back to defaults", "symbol", symbol, "fields", res.Misses)
	}

	rec := res.Record
	ev := &evaluation{
		record:    rec,
		quarterly: trend.Quarterly(rec.QuarterlyResults),
		annual:    trend.Annual(rec.AnnualResults),
	}
	if ev.annual.YearsAnalyzed > 0 && ev.annual.AvgDebtToEquity > 0 {
		rec.DebtToEquity = ev.annual.AvgDebtToEquity
	}

	e.backfillPrice(ctx, rec)
	ev.pegEstimated = e.backfillPEG(ctx, rec)
	return ev, nil
}

// backfillPEG fills a missing PEG from the secondary source, then from
// PE/10. It reports whether the estimate was used.
func (e *Engine) backfillPEG(ctx context.Context, rec *types.MetricRecord) bool {
	if rec.PEGRatio != 0 || rec.PERatio <= 0 {
		return false
	}

	if e.secondary != nil {
		info, err := e.secondary.Info(ctx, rec.Symbol)
		switch {
		case err != nil:
			logger.Debug(ctx, "Secondary lookup failed", "symbol", rec.Symbol, "error", err.Error())
		case info.PEGRatio > 0:
			rec.PEGRatio = info.PEGRatio
		default:
			rec.PEGRatio = PEGFromGrowth(rec.PERatio, info.EarningsGrowth)
		}
	}

	if rec.PEGRatio == 0 {
		rec.PEGRatio = rec.PERatio / 10
		return true
	}
	return false
}

// PEGFromGrowth is pe / growth in percentage points. A growth below 1 is
// read as a fraction. Non-positive inputs give 0.
func PEGFromGrowth(pe, growth float64) float64 {
	if pe <= 0 || growth <= 0 {
		return 0
	}
	if growth < 1 {
		growth *= 100
	}
	return pe / growth
}

func (e *Engine) backfillPrice(ctx context.Context, rec *types.MetricRecord) {
	if rec.CurrentPrice > 0 || e.prices == nil {
		return
	}
	price, err := e.prices.LastPrice(ctx, rec.Symbol)
	if err != nil {
		logger.Debug(ctx, "Price backfill failed", "symbol", rec.Symbol, "error", err.Error())
		return
	}
	rec.CurrentPrice = price
}

func (e *Engine) candidate(ev *evaluation) *ScoredCandidate {
	rec := ev.record
	return &ScoredCandidate{
		Symbol:            rec.Symbol,
		Name:              rec.Name,
		Sector:            rec.Sector,
		CurrentPrice:      round2(rec.CurrentPrice),
		MarketCap:         rec.MarketCap.Text(),
		PERatio:           round2(rec.PERatio),
		PEGRatio:          round2(rec.PEGRatio),
		PEGEstimated:      ev.pegEstimated,
		DebtToEquity:      round2(rec.DebtToEquity),
		ProfitMargin:      round2(rec.ProfitMargin.Points()),
		ROE:               round2(rec.ROE.Points()),
		ROCE:              round2(rec.ROCE.Points()),
		SalesGrowth:       round2(ev.quarterly.SalesGrowth),
		ProfitGrowth:      round2(ev.quarterly.ProfitGrowth),
		MarginImprovement: ev.quarterly.MarginImprovement,
		DebtDecreasing:    ev.annual.DebtDecreasing,
		MatchScore:        e.scorer.Score(rec, ev.quarterly, ev.annual),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// IsCriteriaError reports whether err rejected the caller's input.
func IsCriteriaError(err error) bool {
	return errors.Is(err, ErrInvalidCriteria)
}
