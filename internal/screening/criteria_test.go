package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCriteriaAreValid(t *testing.T) {
	c := DefaultCriteria()
	require.NoError(t, c.Validate())
	assert.Equal(t, 3.0, c.MaxPEG)
	assert.Equal(t, 5.0, c.MinPE)
	assert.Equal(t, 35.0, c.MaxPE)
	assert.Equal(t, 1.0, c.MaxDebtToEquity)
	assert.Equal(t, 10, c.MaxResults)
}

func TestParseCriteria(t *testing.T) {
	c, err := ParseCriteria(map[string]string{
		"max_pe":                     "25",
		"Min_Sales_Growth":           " 8.5 ",
		"require_margin_improvement": "true",
		"max_results":                "5",
		"candidate_list":             "tcs, infy,,wipro ",
	}, DefaultCriteria())
	require.NoError(t, err)

	assert.Equal(t, 25.0, c.MaxPE)
	assert.Equal(t, 8.5, c.MinSalesGrowth)
	assert.True(t, c.RequireMarginImprovement)
	assert.Equal(t, 5, c.MaxResults)
	assert.Equal(t, []string{"TCS", "INFY", "WIPRO"}, c.CandidateList)
	assert.Equal(t, 3.0, c.MaxPEG, "unset keys keep defaults")
}

func TestParseCriteriaRejects(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]string
	}{
		{"unknown key", map[string]string{"max_beta": "1"}},
		{"non numeric", map[string]string{"max_pe": "cheap"}},
		{"nan threshold", map[string]string{"min_sales_growth": "NaN"}},
		{"infinite threshold", map[string]string{"min_profit_growth": "+Inf"}},
		{"negative infinity", map[string]string{"max_debt_to_equity": "-Inf"}},
		{"bad bool", map[string]string{"require_margin_improvement": "maybe"}},
		{"bad int", map[string]string{"max_results": "2.5"}},
		{"min pe above max pe", map[string]string{"min_pe": "40"}},
		{"negative peg", map[string]string{"max_peg": "-1"}},
		{"zero results", map[string]string{"max_results": "0"}},
		{"too many results", map[string]string{"max_results": "500"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCriteria(tt.input, DefaultCriteria())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCriteria)
			assert.True(t, IsCriteriaError(err))
		})
	}
}

func TestParseCriteriaDoesNotAliasDefaults(t *testing.T) {
	defaults := DefaultCriteria()
	defaults.CandidateList = []string{"TCS"}

	c, err := ParseCriteria(nil, defaults)
	require.NoError(t, err)
	c.CandidateList[0] = "INFY"
	assert.Equal(t, "TCS", defaults.CandidateList[0])
}

func TestCriteriaKey(t *testing.T) {
	a := DefaultCriteria()
	b := DefaultCriteria()
	assert.Equal(t, a.Key(), b.Key())

	b.MinProfitGrowth = 1
	assert.NotEqual(t, a.Key(), b.Key())

	a.CandidateList = []string{"TCS", "INFY"}
	b = DefaultCriteria()
	b.CandidateList = []string{"INFY", "TCS"}
	assert.NotEqual(t, a.Key(), b.Key(), "scan order is part of the key")
}

func TestSplitSymbols(t *testing.T) {
	assert.Equal(t, []string{"M&M", "TCS"}, SplitSymbols(" m&m ,tcs"))
	assert.Nil(t, SplitSymbols(" , "))
}
