package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100", "100"},
		{"100.5", "100.5"},
		{"100.50", "100.50"}, // scale is preserved, never trimmed
		{"0.01", "0.01"},
		{"999999.99", "999999.99"},
		{"0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatAmount(d))
			// Stable: formatting the same value twice yields identical bytes.
			assert.Equal(t, FormatAmount(d), FormatAmount(d))
		})
	}
}

func TestFormatAmount_FromInt(t *testing.T) {
	assert.Equal(t, "100", FormatAmount(decimal.NewFromInt(100)))
}
