package screening

import (
	"time"

	"equity-screener/internal/types"
)

// Candidate outcomes as logged and counted.
const (
	OutcomeScored       = "SCORED"
	OutcomeDisqualified = "DISQUALIFIED"
)

// Disqualification reasons, in filter order. ReasonUnavailable is counted
// for candidates whose document could not be fetched or parsed.
const (
	ReasonUnavailable       = "unavailable"
	ReasonPEG               = "peg"
	ReasonPE                = "pe"
	ReasonDebt              = "debt_to_equity"
	ReasonSalesGrowth       = "sales_growth"
	ReasonProfitGrowth      = "profit_growth"
	ReasonMarginImprovement = "margin_improvement"
)

// ScoredCandidate is one row of the ranked output. Display fields are
// rounded to two decimals; MatchScore is not.
type ScoredCandidate struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Sector            string  `json:"sector"`
	CurrentPrice      float64 `json:"current_price"`
	MarketCap         string  `json:"market_cap"`
	PERatio           float64 `json:"pe_ratio"`
	PEGRatio          float64 `json:"peg_ratio"`
	PEGEstimated      bool    `json:"peg_estimated"`
	DebtToEquity      float64 `json:"debt_to_equity"`
	ProfitMargin      float64 `json:"profit_margin"`
	ROE               float64 `json:"roe"`
	ROCE              float64 `json:"roce"`
	SalesGrowth       float64 `json:"sales_growth"`
	ProfitGrowth      float64 `json:"profit_growth"`
	MarginImprovement bool    `json:"margin_improvement"`
	DebtDecreasing    bool    `json:"debt_decreasing"`
	MatchScore        float64 `json:"match_score"`
}

// ScreenResult is the outcome of one screening run. An empty Candidates
// list is a valid result.
type ScreenResult struct {
	RunID        string            `json:"run_id"`
	StartedAt    time.Time         `json:"started_at"`
	Duration     time.Duration     `json:"duration_ns"`
	Criteria     Criteria          `json:"criteria"`
	Universe     []string          `json:"universe"`
	Scanned      int               `json:"scanned"`
	Disqualified map[string]int    `json:"disqualified"`
	EarlyStopped bool              `json:"early_stopped"`
	TimedOut     bool              `json:"timed_out"`
	Cached       bool              `json:"cached"`
	Candidates   []ScoredCandidate `json:"candidates"`
}

// evaluation is the per-candidate working state, discarded after scoring.
type evaluation struct {
	record       *types.MetricRecord
	quarterly    types.QuarterlyTrend
	annual       types.AnnualTrend
	pegEstimated bool
}
