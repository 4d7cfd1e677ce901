package screening

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"equity-screener/internal/types"
)

// Band awards Points when Min <= v <= Max.
type Band struct {
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Points float64 `yaml:"points"`
}

// Tier awards Points against a single limit. Whether the limit is a floor
// or a ceiling depends on the term using it.
type Tier struct {
	Limit  float64 `yaml:"limit"`
	Points float64 `yaml:"points"`
}

// ScoreTable holds the additive scoring breakpoints. Bands and tiers are
// tried in order and the first match wins.
type ScoreTable struct {
	Version string `yaml:"version"`

	// PEG: (PEGCeiling - peg) * PEGMultiplier when 0 < peg < PEGCeiling.
	PEGCeiling    float64 `yaml:"peg_ceiling"`
	PEGMultiplier float64 `yaml:"peg_multiplier"`

	PEBands []Band `yaml:"pe_bands"`

	DebtFree  float64 `yaml:"debt_free"`
	DebtTiers []Tier  `yaml:"debt_tiers"` // debt <= limit

	DebtDecreasing float64 `yaml:"debt_decreasing"`

	SalesGrowthTiers  []Tier  `yaml:"sales_growth_tiers"`  // growth > limit
	ProfitGrowthTiers []Tier  `yaml:"profit_growth_tiers"` // growth > limit
	MarginImprovement float64 `yaml:"margin_improvement"`
	ROETiers          []Tier  `yaml:"roe_tiers"` // roe > limit
}

// DefaultScoreTable returns the compatibility breakpoints.
func DefaultScoreTable() ScoreTable {
	return ScoreTable{
		Version:       "score-2024.1",
		PEGCeiling:    2,
		PEGMultiplier: 10,
		// The second band only catches what the first missed: 5-10 and 20-25.
		PEBands: []Band{
			{Min: 10, Max: 20, Points: 15},
			{Min: 5, Max: 25, Points: 10},
		},
		DebtFree: 20,
		DebtTiers: []Tier{
			{Limit: 0.3, Points: 15},
			{Limit: 0.5, Points: 10},
		},
		DebtDecreasing: 10,
		SalesGrowthTiers: []Tier{
			{Limit: 20, Points: 15},
			{Limit: 10, Points: 10},
			{Limit: 5, Points: 5},
		},
		ProfitGrowthTiers: []Tier{
			{Limit: 30, Points: 15},
			{Limit: 20, Points: 10},
			{Limit: 10, Points: 5},
		},
		MarginImprovement: 10,
		ROETiers: []Tier{
			{Limit: 25, Points: 10},
			{Limit: 20, Points: 7},
			{Limit: 15, Points: 5},
		},
	}
}

// LoadScoreTable reads a YAML score table. Omitted keys keep their
// defaults.
func LoadScoreTable(path string) (ScoreTable, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ScoreTable{}, err
	}
	t := DefaultScoreTable()
	if err := yaml.Unmarshal(b, &t); err != nil {
		return ScoreTable{}, fmt.Errorf("failed to parse score table %s: %w", path, err)
	}
	return t, nil
}

// Scorer computes the additive match score.
type Scorer struct {
	table ScoreTable
}

func NewScorer(table ScoreTable) *Scorer {
	return &Scorer{table: table}
}

// Table returns the breakpoints in use.
func (s *Scorer) Table() ScoreTable { return s.table }

// Score sums every term for one surviving candidate.
func (s *Scorer) Score(rec *types.MetricRecord, q types.QuarterlyTrend, a types.AnnualTrend) float64 {
	score := s.pegTerm(rec.PEGRatio)
	score += s.peTerm(rec.PERatio)
	score += s.debtTerm(rec.DebtToEquity)
	if a.DebtDecreasing {
		score += s.table.DebtDecreasing
	}
	score += above(s.table.SalesGrowthTiers, q.SalesGrowth)
	score += above(s.table.ProfitGrowthTiers, q.ProfitGrowth)
	if q.MarginImprovement {
		score += s.table.MarginImprovement
	}
	score += above(s.table.ROETiers, rec.ROE.Points())
	return score
}

func (s *Scorer) pegTerm(peg float64) float64 {
	if peg > 0 && peg < s.table.PEGCeiling {
		return (s.table.PEGCeiling - peg) * s.table.PEGMultiplier
	}
	return 0
}

func (s *Scorer) peTerm(pe float64) float64 {
	for _, b := range s.table.PEBands {
		if pe >= b.Min && pe <= b.Max {
			return b.Points
		}
	}
	return 0
}

func (s *Scorer) debtTerm(de float64) float64 {
	if de == 0 {
		return s.table.DebtFree
	}
	for _, t := range s.table.DebtTiers {
		if de <= t.Limit {
			return t.Points
		}
	}
	return 0
}

func above(tiers []Tier, v float64) float64 {
	for _, t := range tiers {
		if v > t.Limit {
			return t.Points
		}
	}
	return 0
}
