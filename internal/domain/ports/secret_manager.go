package ports

import "context"

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The signing secret value
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for retrieving merchant signing
// secrets from a secret management backend.
// Supports multiple backends: local filesystem (development), AWS Secrets
// Manager, HashiCorp Vault.
//
// Path convention: "esewa/merchants/{product_code}/secret".
//
// Implementations are responsible for authentication with the backend and
// for caching with an appropriate TTL. Secret values must never appear in
// logs or serialized output.
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path
	// Returns error if the secret does not exist, permissions are
	// insufficient, or the backend is unreachable.
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret (provisioning/rotation)
	// Returns the new version identifier.
	PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (version string, err error)

	// DeleteSecret permanently deletes a secret (admin operations only)
	DeleteSecret(ctx context.Context, path string) error
}
