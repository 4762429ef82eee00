package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., API passphrase)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretReader defines the port for reading secrets from a secret management service
// Supports multiple backends: AWS Secrets Manager, HashiCorp Vault, local filesystem
// Implementation is responsible for:
//   - Authentication with the secret manager service
//   - Caching secrets appropriately (with TTL)
type SecretReader interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - AWS: "merchantwarrior/{merchant}/passphrase" or a full ARN
	//   - Vault: "merchantwarrior/{merchant}" under the configured KV mount
	//   - Local: file path relative to the base directory
	// Returns error if the secret does not exist, access is denied or the
	// service cannot be reached.
	GetSecret(ctx context.Context, path string) (*Secret, error)
}
