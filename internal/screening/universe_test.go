package screening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverseSymbols(t *testing.T) {
	u := NewUniverse([]string{"tcs", "INFY", " TCS ", "", "WIPRO", "ITC"}, 3)

	got, err := u.Symbols(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"TCS", "INFY", "WIPRO"}, got)
}

func TestUniverseOverride(t *testing.T) {
	u := NewUniverse([]string{"TCS"}, 2)

	got, err := u.Symbols([]string{"hdfcbank", "sbin", "axisbank"})
	require.NoError(t, err)
	assert.Equal(t, []string{"HDFCBANK", "SBIN"}, got, "the scan limit applies to overrides too")
}

func TestUniverseUnbounded(t *testing.T) {
	got, err := NewUniverse([]string{"A", "B", "C"}, 0).Symbols(nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestUniverseEmpty(t *testing.T) {
	_, err := NewUniverse(nil, 10).Symbols(nil)
	assert.ErrorIs(t, err, ErrEmptyUniverse)

	_, err = NewUniverse([]string{"TCS"}, 10).Symbols([]string{" ", ""})
	assert.ErrorIs(t, err, ErrEmptyUniverse)
}
