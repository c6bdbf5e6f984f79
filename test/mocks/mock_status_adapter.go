package mocks

import (
	"context"

	"github.com/nepalpay/esewa-service/internal/domain/ports"
)

// MockStatusAdapter is a mock implementation of StatusAdapter for testing
type MockStatusAdapter struct {
	GetStatusFunc func(ctx context.Context, req *ports.StatusRequest) (string, error)
	Calls         []*ports.StatusRequest
}

// NewMockStatusAdapter creates a new mock status adapter
func NewMockStatusAdapter(fn func(ctx context.Context, req *ports.StatusRequest) (string, error)) *MockStatusAdapter {
	return &MockStatusAdapter{
		GetStatusFunc: fn,
		Calls:         []*ports.StatusRequest{},
	}
}

// GetStatus executes the mock function and captures the call
func (m *MockStatusAdapter) GetStatus(ctx context.Context, req *ports.StatusRequest) (string, error) {
	m.Calls = append(m.Calls, req)
	if m.GetStatusFunc != nil {
		return m.GetStatusFunc(ctx, req)
	}
	return "COMPLETE", nil
}

// Reset clears captured calls
func (m *MockStatusAdapter) Reset() {
	m.Calls = []*ports.StatusRequest{}
}
