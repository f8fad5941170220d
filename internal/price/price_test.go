package price

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrice_Equals(t *testing.T) {
	t.Parallel()

	var tests = []struct {
		name     string
		a        Price
		b        Price
		expected bool
	}{
		{name: "same number and currency", a: New("100.00", "MDL"), b: New("100.00", "MDL"), expected: true},
		{name: "numeric equality across formats", a: New("100.00", "MDL"), b: New("100.0", "MDL"), expected: true},
		{name: "different amount", a: New("100.00", "MDL"), b: New("99.99", "MDL"), expected: false},
		{name: "different currency", a: New("100.00", "MDL"), b: New("100.00", "EUR"), expected: false},
		{name: "unparsable number", a: New("abc", "MDL"), b: New("100.00", "MDL"), expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.expected, tt.a.Equals(tt.b))
		})
	}
}

func TestPrice_GreaterThan(t *testing.T) {
	t.Parallel()

	require.True(t, New("100.01", "MDL").GreaterThan(New("100.00", "MDL")))
	require.False(t, New("100.00", "MDL").GreaterThan(New("100.00", "MDL")))
	require.False(t, New("200.00", "EUR").GreaterThan(New("100.00", "MDL")))
	require.False(t, New("x", "MDL").GreaterThan(New("100.00", "MDL")))
}

func TestPrice_IsPositive(t *testing.T) {
	t.Parallel()

	require.True(t, New("0.01", "MDL").IsPositive())
	require.False(t, New("0", "MDL").IsPositive())
	require.False(t, New("-5.00", "MDL").IsPositive())
	require.False(t, New("", "MDL").IsPositive())
}

func TestPrice_String(t *testing.T) {
	t.Parallel()
	require.Equal(t, "100.00 MDL", New("100.00", "MDL").String())
}
