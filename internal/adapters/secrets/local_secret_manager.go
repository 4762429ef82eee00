package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/kevin07696/merchantwarrior-go/internal/adapters/ports"
)

// localSecretManager implements SecretReader using the local filesystem
// WARNING: This is for development only. Use AWS Secrets Manager or Vault in production.
type localSecretManager struct {
	basePath string
	logger   *zap.Logger
	cache    *secretCache
}

// NewLocalSecretManager creates a new local filesystem secret manager
func NewLocalSecretManager(basePath string, logger *zap.Logger) ports.SecretReader {
	return &localSecretManager{
		basePath: basePath,
		logger:   logger,
		cache:    newSecretCache(true, DefaultCacheTTL),
	}
}

// GetSecret reads a plain text or JSON {"value": ...} file below the base path
func (m *localSecretManager) GetSecret(ctx context.Context, secretPath string) (*ports.Secret, error) {
	if cached := m.cache.get(secretPath); cached != nil {
		return cached, nil
	}

	filePath := filepath.Join(m.basePath, filepath.Clean("/"+secretPath))

	m.logger.Debug("Reading secret from filesystem",
		zap.String("path", secretPath),
	)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("secret not found: %s", secretPath)
		}
		return nil, fmt.Errorf("failed to read secret: %w", err)
	}

	var secret *ports.Secret

	// Support both plain text and JSON format
	var secretData struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
		secret = &ports.Secret{
			Value:     secretData.Value,
			Version:   "v1",
			Metadata:  secretData.Tags,
			CreatedAt: secretData.CreatedAt,
		}
	} else {
		secret = &ports.Secret{
			Value:   strings.TrimRight(string(data), "\r\n"),
			Version: "v1",
		}
	}

	m.cache.set(secretPath, secret)

	return secret, nil
}
