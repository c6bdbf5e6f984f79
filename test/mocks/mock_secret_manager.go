package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/nepalpay/esewa-service/internal/domain/ports"
)

// MockSecretManager is an in-memory SecretManagerAdapter for testing
type MockSecretManager struct {
	mu      sync.Mutex
	secrets map[string]string

	GetErr error // forced error for GetSecret, if set
}

// NewMockSecretManager creates a mock secret manager seeded with the given secrets
func NewMockSecretManager(seed map[string]string) *MockSecretManager {
	secrets := make(map[string]string, len(seed))
	for k, v := range seed {
		secrets[k] = v
	}
	return &MockSecretManager{secrets: secrets}
}

// GetSecret retrieves a secret by path
func (m *MockSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.secrets[path]
	if !ok {
		return nil, fmt.Errorf("secret not found: %s", path)
	}
	return &ports.Secret{Value: value, Version: "v1", Metadata: map[string]string{}}, nil
}

// PutSecret stores a secret
func (m *MockSecretManager) PutSecret(ctx context.Context, path, value string, metadata map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[path] = value
	return "v1", nil
}

// DeleteSecret removes a secret
func (m *MockSecretManager) DeleteSecret(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.secrets[path]; !ok {
		return fmt.Errorf("secret not found: %s", path)
	}
	delete(m.secrets, path)
	return nil
}
