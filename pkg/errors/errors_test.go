package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGatewayErrorFormatting(t *testing.T) {
	err := NewGatewayError("STATUS_REQUEST_FAILED", "HTTP request failed", CategoryNetworkError, true)
	assert.Equal(t, "STATUS_REQUEST_FAILED: HTTP request failed", err.Error())

	err.GatewayMessage = "connection refused"
	assert.Equal(t, "STATUS_REQUEST_FAILED: HTTP request failed (gateway: connection refused)", err.Error())
	assert.True(t, err.IsRetriable)
	assert.Equal(t, CategoryNetworkError, err.Category)
}

func TestValidationErrorFormatting(t *testing.T) {
	err := NewValidationError("amount", "must be a positive decimal")
	assert.Equal(t, "validation error on field 'amount': must be a positive decimal", err.Error())
}
