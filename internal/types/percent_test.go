package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentPoints(t *testing.T) {
	tests := []struct {
		name string
		p    Percent
		want float64
	}{
		{"screener points kept", ScreenerPercent(0.8), 0.8},
		{"screener large", ScreenerPercent(22.5), 22.5},
		{"yahoo fraction scaled", YahooPercent(0.225), 22.5},
		{"yahoo above one still scaled", YahooPercent(1.5), 150},
		{"unknown fraction", Percent{Value: 0.5}, 50},
		{"unknown one", Percent{Value: 1}, 100},
		{"unknown points", Percent{Value: 22}, 22},
		{"unknown negative", Percent{Value: -0.2}, -0.2},
		{"zero", Percent{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.p.Points(), 1e-9)
		})
	}
}

func TestPercentIsZero(t *testing.T) {
	assert.True(t, Percent{}.IsZero())
	assert.True(t, YahooPercent(0).IsZero())
	assert.False(t, ScreenerPercent(0.1).IsZero())
}
