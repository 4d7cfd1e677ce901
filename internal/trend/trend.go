package trend

import (
	"strings"

	"equity-screener/internal/extract"
	"equity-screener/internal/types"
)

const (
	// MaxQuarters is how many of the newest quarters are compared.
	MaxQuarters = 4
	// MaxYears is how many of the newest years feed the debt trend.
	MaxYears = 3
)

// Quarterly compares the newest usable quarter against the oldest one among
// the first MaxQuarters rows. Rows must be newest first. A row whose sales
// or profit cell does not parse is skipped.
func Quarterly(t *types.RawTable) types.QuarterlyTrend {
	if t.Empty() {
		return types.QuarterlyTrend{}
	}

	salesIdx := findColumn(t.Headers, contains("sales"), contains("revenue"), contains("income"))
	profitIdx := findColumn(t.Headers, func(h string) bool {
		return strings.Contains(h, "profit") && (strings.Contains(h, "net") || strings.Contains(h, "after"))
	})
	if salesIdx < 0 || profitIdx < 0 {
		return types.QuarterlyTrend{}
	}

	var sales, profits []float64
	for r := 0; r < len(t.Rows) && r < MaxQuarters; r++ {
		s, ok := cellValue(t, r, salesIdx)
		if !ok {
			continue
		}
		p, ok := cellValue(t, r, profitIdx)
		if !ok {
			continue
		}
		sales = append(sales, s)
		profits = append(profits, p)
	}
	if len(sales) < 2 {
		return types.QuarterlyTrend{}
	}

	newest, oldest := 0, len(sales)-1
	return types.QuarterlyTrend{
		SalesGrowth:       growth(sales[newest], sales[oldest]),
		ProfitGrowth:      growth(profits[newest], profits[oldest]),
		MarginImprovement: margin(profits[newest], sales[newest]) > margin(profits[oldest], sales[oldest]),
		QuartersAnalyzed:  len(sales),
	}
}

// Annual averages the debt-to-equity column over the first MaxYears rows.
// DebtDecreasing needs at least two usable years.
func Annual(t *types.RawTable) types.AnnualTrend {
	if t.Empty() {
		return types.AnnualTrend{}
	}

	debtIdx := findColumn(t.Headers, func(h string) bool {
		return (strings.Contains(h, "debt") && strings.Contains(h, "equity")) || strings.Contains(h, "d/e")
	})
	if debtIdx < 0 {
		return types.AnnualTrend{}
	}

	var values []float64
	for r := 0; r < len(t.Rows) && r < MaxYears; r++ {
		if v, ok := cellValue(t, r, debtIdx); ok {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return types.AnnualTrend{}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return types.AnnualTrend{
		AvgDebtToEquity: sum / float64(len(values)),
		DebtDecreasing:  len(values) >= 2 && values[0] < values[len(values)-1],
		YearsAnalyzed:   len(values),
	}
}

// findColumn returns the first header matching the first predicate that
// matches anything, so "Sales" beats a later "Other Income". Headers are
// lower-cased before matching.
func findColumn(headers []string, preds ...func(string) bool) int {
	for _, pred := range preds {
		for i, h := range headers {
			if pred(strings.ToLower(h)) {
				return i
			}
		}
	}
	return -1
}

func contains(sub string) func(string) bool {
	return func(h string) bool { return strings.Contains(h, sub) }
}

func cellValue(t *types.RawTable, row, col int) (float64, bool) {
	cell, ok := t.Cell(row, col)
	if !ok {
		return 0, false
	}
	return extract.ParseCell(cell)
}

// growth is 0 when the base period is zero or a loss.
func growth(newest, oldest float64) float64 {
	if oldest <= 0 {
		return 0
	}
	return (newest - oldest) / oldest * 100
}

func margin(profit, sales float64) float64 {
	if sales == 0 {
		return 0
	}
	return profit / sales
}
