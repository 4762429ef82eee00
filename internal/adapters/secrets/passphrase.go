package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kevin07696/merchantwarrior-go/internal/adapters/ports"
)

// ErrNoPassphrase is returned when neither a secret nor a fallback is available
var ErrNoPassphrase = errors.New("API passphrase is not configured")

// ResolvePassphrase returns the secret at path when reader and path are set,
// otherwise fallback.
func ResolvePassphrase(ctx context.Context, reader ports.SecretReader, path, fallback string) (string, error) {
	if reader == nil || path == "" {
		if fallback == "" {
			return "", ErrNoPassphrase
		}
		return fallback, nil
	}

	secret, err := reader.GetSecret(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve API passphrase: %w", err)
	}

	value := strings.TrimRight(secret.Value, "\r\n")
	if value == "" {
		return "", fmt.Errorf("secret %s: %w", path, ErrNoPassphrase)
	}
	return value, nil
}
