package types

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MarketCapKind tags which representation a MarketCap holds.
type MarketCapKind int

const (
	MarketCapUnknown MarketCapKind = iota
	MarketCapNumeric
	MarketCapFormatted
)

// Multipliers for the unit suffixes pages render market cap with.
var marketCapUnits = map[string]float64{
	"Cr":   1e7,
	"Lakh": 1e5,
	"B":    1e9,
	"T":    1e12,
}

var (
	unitSuffix   = regexp.MustCompile(`(?i)(?:^|[^a-z])(crore|cr|lakhs?|lacs?|l|bn|b|tn|t)\.?\s*$`)
	leadingValue = regexp.MustCompile(`\d+\.?\d*`)
)

// MarketCap is either an absolute figure (Numeric) or the text a page
// displayed along with its unit (Formatted). Scoring never looks at it.
type MarketCap struct {
	kind  MarketCapKind
	value float64
	text  string
	unit  string
}

// NumericMarketCap wraps an absolute rupee figure.
func NumericMarketCap(v float64) MarketCap {
	return MarketCap{kind: MarketCapNumeric, value: v}
}

// FormattedMarketCap keeps text as displayed and records its unit suffix,
// if one is recognised.
func FormattedMarketCap(text string) MarketCap {
	text = strings.TrimSpace(text)
	return MarketCap{kind: MarketCapFormatted, text: text, unit: detectUnit(text)}
}

func detectUnit(text string) string {
	m := unitSuffix.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	switch strings.ToLower(m[1]) {
	case "cr", "crore":
		return "Cr"
	case "l", "lakh", "lakhs", "lac", "lacs":
		return "Lakh"
	case "b", "bn":
		return "B"
	case "t", "tn":
		return "T"
	}
	return ""
}

func (m MarketCap) Kind() MarketCapKind { return m.kind }
func (m MarketCap) Unit() string        { return m.unit }

// Text returns the raw text for Formatted values and "0" when nothing was
// extracted.
func (m MarketCap) Text() string {
	switch m.kind {
	case MarketCapFormatted:
		if m.text == "" {
			return "0"
		}
		return m.text
	case MarketCapNumeric:
		return strconv.FormatFloat(m.value, 'f', -1, 64)
	}
	return "0"
}

// Normalize converts either form to an absolute figure. ok is false when
// the text carries no number.
func (m MarketCap) Normalize() (float64, bool) {
	switch m.kind {
	case MarketCapNumeric:
		return m.value, true
	case MarketCapFormatted:
		cleaned := strings.NewReplacer("₹", "", ",", "", " ", "").Replace(m.text)
		num := leadingValue.FindString(cleaned)
		if num == "" {
			return 0, false
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		if mult, ok := marketCapUnits[m.unit]; ok {
			v *= mult
		}
		return v, true
	}
	return 0, false
}

// Display renders Formatted values untouched. Numeric values are scaled
// into T, B or Cr at the 1e12, 1e10 and 1e7 breakpoints.
func (m MarketCap) Display() string {
	if m.kind != MarketCapNumeric {
		return m.Text()
	}
	v := m.value
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.2f T", v/1e12)
	case v >= 1e10:
		return fmt.Sprintf("%.2f B", v/1e9)
	case v >= 1e7:
		return fmt.Sprintf("%.2f Cr", v/1e7)
	}
	return groupThousands(int64(v + 0.5))
}

func (m MarketCap) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Display())
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
