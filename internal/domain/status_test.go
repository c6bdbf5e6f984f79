package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want TransactionStatus
	}{
		{"COMPLETE", StatusComplete},
		{"PENDING", StatusPending},
		{"FULL_REFUND", StatusFullRefund},
		{"PARTIAL_REFUND", StatusPartialRefund},
		{"AMBIGUOUS", StatusAmbiguous},
		{"NOT_FOUND", StatusNotFound},
		{"CANCELED", StatusCanceled},
		{"", StatusUnknown},
		{"complete", StatusUnknown}, // gateway statuses are case-sensitive
		{"SETTLED", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run("raw="+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.raw))
		})
	}
}

func TestTransactionStatus_IsKnown(t *testing.T) {
	assert.True(t, StatusComplete.IsKnown())
	assert.True(t, StatusCanceled.IsKnown())
	assert.False(t, StatusUnknown.IsKnown())
	assert.False(t, TransactionStatus("whatever").IsKnown())
}
