// Package mocks provides shared mock implementations for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/kevin07696/merchantwarrior-go/internal/adapters/ports"
)

// MockSecretReader provides a testify mock of ports.SecretReader.
type MockSecretReader struct {
	mock.Mock
}

func (m *MockSecretReader) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Secret), args.Error(1)
}
