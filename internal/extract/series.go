package extract

import (
	"strings"

	"equity-screener/internal/types"
)

// PeriodRows returns t with one row per period, newest first.
//
// Company pages render results with metric labels down the first column and
// periods across, oldest on the left. Such a table is recognised by a blank
// first header over a column that is mostly labels; it is transposed and the
// periods reversed. Any other table is returned unchanged.
func PeriodRows(t *types.RawTable) *types.RawTable {
	if t.Empty() || !labelsDownFirstColumn(t) {
		return t
	}

	periods := t.Headers[1:]
	out := &types.RawTable{Headers: make([]string, 0, len(t.Rows)+1)}
	out.Headers = append(out.Headers, "Period")
	for _, row := range t.Rows {
		label := ""
		if len(row) > 0 {
			label = strings.TrimSpace(strings.TrimSuffix(row[0], "+"))
		}
		out.Headers = append(out.Headers, label)
	}

	for j := len(periods) - 1; j >= 0; j-- {
		row := make([]string, 0, len(t.Rows)+1)
		row = append(row, periods[j])
		for i := range t.Rows {
			cell, _ := t.Cell(i, j+1)
			row = append(row, cell)
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func labelsDownFirstColumn(t *types.RawTable) bool {
	if len(t.Headers) < 2 || strings.TrimSpace(t.Headers[0]) != "" {
		return false
	}
	labels := 0
	for i := range t.Rows {
		cell, ok := t.Cell(i, 0)
		if !ok {
			continue
		}
		if _, numeric := ParseCell(cell); !numeric && cell != "" {
			labels++
		}
	}
	return labels*2 > len(t.Rows)
}
