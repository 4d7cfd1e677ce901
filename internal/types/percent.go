package types

// Source identifies which provider produced a value.
type Source string

const (
	SourceUnknown  Source = ""
	SourceScreener Source = "screener"
	SourceYahoo    Source = "yahoo"
)

// Percent carries a ratio together with the provider it came from. The
// screener pages render percentage points (22.5), the quote-summary API
// returns fractions (0.225).
type Percent struct {
	Value  float64 `json:"value"`
	Source Source  `json:"source,omitempty"`
}

func ScreenerPercent(v float64) Percent { return Percent{Value: v, Source: SourceScreener} }
func YahooPercent(v float64) Percent    { return Percent{Value: v, Source: SourceYahoo} }

// Points returns the value in percentage points. Provenance decides when it
// is known; otherwise 0 < v <= 1 is read as a fraction.
func (p Percent) Points() float64 {
	switch p.Source {
	case SourceScreener:
		return p.Value
	case SourceYahoo:
		return p.Value * 100
	}
	if p.Value > 0 && p.Value <= 1 {
		return p.Value * 100
	}
	return p.Value
}

func (p Percent) IsZero() bool { return p.Value == 0 }
