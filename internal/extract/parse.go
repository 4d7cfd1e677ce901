package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// ValueParser turns a label's value text into a number.
type ValueParser func(text string) (float64, bool)

var (
	numberPattern = regexp.MustCompile(`[\d]+\.?\d*`)
	cellPattern   = regexp.MustCompile(`-?\d+\.?\d*`)
	cleaner       = strings.NewReplacer("₹", "", ",", "")
)

// ParseNumber strips the rupee sign and thousands separators and reads the
// first unsigned number in the text.
func ParseNumber(text string) (float64, bool) {
	cleaned := strings.TrimSpace(cleaner.Replace(text))
	m := numberPattern.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParsePercent drops a trailing % and parses the rest. The number is kept
// in whatever scale the page shows.
func ParsePercent(text string) (float64, bool) {
	return ParseNumber(strings.TrimSuffix(strings.TrimSpace(text), "%"))
}

// ParseHigh reads the first side of an "a / b" pair.
func ParseHigh(text string) (float64, bool) {
	parts := strings.Split(text, "/")
	return ParseNumber(parts[0])
}

// ParseLow reads the second side of an "a / b" pair.
func ParseLow(text string) (float64, bool) {
	parts := strings.Split(text, "/")
	if len(parts) < 2 {
		return 0, false
	}
	return ParseNumber(parts[1])
}

// ParseCell reads a table cell, keeping a leading minus so loss periods are
// real numbers rather than parse failures.
func ParseCell(text string) (float64, bool) {
	cleaned := strings.TrimSpace(cleaner.Replace(text))
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	m := cellPattern.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
