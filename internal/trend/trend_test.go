package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"equity-screener/internal/types"
)

func quarterTable(rows ...[]string) *types.RawTable {
	return &types.RawTable{
		Headers: []string{"Quarter", "Sales", "Expenses", "Other Income", "Net Profit"},
		Rows:    rows,
	}
}

func TestQuarterlyGrowth(t *testing.T) {
	table := quarterTable(
		[]string{"Dec 2024", "1,200", "1,010", "8", "130"},
		[]string{"Sep 2024", "1,150", "970", "7", "120"},
		[]string{"Jun 2024", "1,100", "930", "4", "115"},
		[]string{"Mar 2024", "1,050", "890", "6", "110"},
	)

	got := Quarterly(table)

	assert.InDelta(t, 14.2857, got.SalesGrowth, 1e-4)
	assert.InDelta(t, 18.1818, got.ProfitGrowth, 1e-4)
	assert.True(t, got.MarginImprovement)
	assert.Equal(t, 4, got.QuartersAnalyzed)
}

func TestQuarterlyIgnoresRowsBeyondFour(t *testing.T) {
	recent := [][]string{
		{"Q4", "200", "", "", "30"},
		{"Q3", "180", "", "", "25"},
		{"Q2", "170", "", "", "22"},
		{"Q1", "160", "", "", "20"},
	}
	base := Quarterly(quarterTable(recent...))
	extended := Quarterly(quarterTable(append(recent,
		[]string{"Q0", "10", "", "", "1"},
		[]string{"Q-1", "5", "", "", "900"},
	)...))

	assert.Equal(t, base, extended)
}

func TestQuarterlyTooFewUsableRows(t *testing.T) {
	tests := []struct {
		name  string
		table *types.RawTable
	}{
		{"nil table", nil},
		{"no rows", quarterTable()},
		{"single row", quarterTable([]string{"Q1", "100", "", "", "10"})},
		{"one usable of three", quarterTable(
			[]string{"Q3", "100", "", "", "10"},
			[]string{"Q2", "n/a", "", "", "9"},
			[]string{"Q1", "90"},
		)},
		{"no profit column", &types.RawTable{
			Headers: []string{"Quarter", "Sales", "Operating Profit"},
			Rows:    [][]string{{"Q2", "100", "10"}, {"Q1", "90", "9"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, types.QuarterlyTrend{}, Quarterly(tt.table))
		})
	}
}

func TestQuarterlySkipsUnparseableRow(t *testing.T) {
	got := Quarterly(quarterTable(
		[]string{"Q4", "120", "", "", "12"},
		[]string{"Q3", "--", "", "", "11"},
		[]string{"Q2", "100", "", "", "10"},
	))

	assert.Equal(t, 2, got.QuartersAnalyzed)
	assert.InDelta(t, 20.0, got.SalesGrowth, 1e-9)
	assert.InDelta(t, 20.0, got.ProfitGrowth, 1e-9)
	assert.False(t, got.MarginImprovement, "equal margins are not an improvement")
}

func TestQuarterlyGuards(t *testing.T) {
	got := Quarterly(quarterTable(
		[]string{"Q2", "100", "", "", "5"},
		[]string{"Q1", "0", "", "", "-4"},
	))

	assert.Equal(t, 2, got.QuartersAnalyzed)
	assert.Zero(t, got.SalesGrowth, "zero base")
	assert.Zero(t, got.ProfitGrowth, "loss base")
	assert.True(t, got.MarginImprovement, "zero sales margin counts as 0")
}

func TestQuarterlyColumnPriority(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Other Income", "Revenue", "Profit after tax"},
		Rows:    [][]string{{"1", "200", "20"}, {"50", "100", "10"}},
	}

	got := Quarterly(table)
	assert.InDelta(t, 100.0, got.SalesGrowth, 1e-9, "revenue beats income")
	assert.InDelta(t, 100.0, got.ProfitGrowth, 1e-9)
}

func TestAnnual(t *testing.T) {
	table := &types.RawTable{
		Headers: []string{"Year", "Sales", "Debt to Equity"},
		Rows: [][]string{
			{"Mar 2024", "500", "0.4"},
			{"Mar 2023", "450", "0.5"},
			{"Mar 2022", "400", "0.6"},
			{"Mar 2021", "350", "5.0"},
		},
	}

	got := Annual(table)
	assert.InDelta(t, 0.5, got.AvgDebtToEquity, 1e-9)
	assert.True(t, got.DebtDecreasing)
	assert.Equal(t, 3, got.YearsAnalyzed)
}

func TestAnnualEdgeCases(t *testing.T) {
	t.Run("d/e header and rising debt", func(t *testing.T) {
		got := Annual(&types.RawTable{
			Headers: []string{"Year", "D/E"},
			Rows:    [][]string{{"2024", "0.9"}, {"2023", "n/a"}, {"2022", "0.3"}},
		})
		assert.InDelta(t, 0.6, got.AvgDebtToEquity, 1e-9)
		assert.False(t, got.DebtDecreasing)
		assert.Equal(t, 2, got.YearsAnalyzed)
	})

	t.Run("single year cannot decrease", func(t *testing.T) {
		got := Annual(&types.RawTable{
			Headers: []string{"Year", "Debt / Equity"},
			Rows:    [][]string{{"2024", "0.2"}},
		})
		assert.Equal(t, types.AnnualTrend{AvgDebtToEquity: 0.2, YearsAnalyzed: 1}, got)
	})

	t.Run("no debt column", func(t *testing.T) {
		got := Annual(&types.RawTable{
			Headers: []string{"Year", "Sales"},
			Rows:    [][]string{{"2024", "1"}},
		})
		assert.Equal(t, types.AnnualTrend{}, got)
	})

	t.Run("no usable values", func(t *testing.T) {
		got := Annual(&types.RawTable{
			Headers: []string{"Year", "Debt to equity"},
			Rows:    [][]string{{"2024", "-"}, {"2023"}},
		})
		assert.Equal(t, types.AnnualTrend{}, got)
	})
}
