package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/merchantwarrior-go/internal/adapters/ports"
	"github.com/kevin07696/merchantwarrior-go/internal/testutil/mocks"
)

func TestResolvePassphrase(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(m *mocks.MockSecretReader)
		path     string
		fallback string
		want     string
		wantErr  error
	}{
		{
			name:     "secret wins over fallback",
			setup:    func(m *mocks.MockSecretReader) { m.On("GetSecret", mock.Anything, "mw/pass").Return(&ports.Secret{Value: "from-secret\r\n"}, nil) },
			path:     "mw/pass",
			fallback: "from-env",
			want:     "from-secret",
		},
		{
			name:     "surrounding spaces are part of the secret",
			setup:    func(m *mocks.MockSecretReader) { m.On("GetSecret", mock.Anything, "mw/pass").Return(&ports.Secret{Value: " pass phrase \n"}, nil) },
			path:     "mw/pass",
			fallback: "from-env",
			want:     " pass phrase ",
		},
		{
			name:     "no path uses fallback",
			path:     "",
			fallback: "from-env",
			want:     "from-env",
		},
		{
			name:    "nothing configured",
			wantErr: ErrNoPassphrase,
		},
		{
			name:     "empty secret",
			setup:    func(m *mocks.MockSecretReader) { m.On("GetSecret", mock.Anything, "mw/pass").Return(&ports.Secret{Value: "\n"}, nil) },
			path:     "mw/pass",
			fallback: "from-env",
			wantErr:  ErrNoPassphrase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := new(mocks.MockSecretReader)
			if tt.setup != nil {
				tt.setup(reader)
			}

			got, err := ResolvePassphrase(context.Background(), reader, tt.path, tt.fallback)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			reader.AssertExpectations(t)
		})
	}
}

func TestResolvePassphrase_ReaderError(t *testing.T) {
	reader := new(mocks.MockSecretReader)
	backendErr := errors.New("permission denied")
	reader.On("GetSecret", mock.Anything, "mw/pass").Return(nil, backendErr)

	_, err := ResolvePassphrase(context.Background(), reader, "mw/pass", "from-env")

	require.ErrorIs(t, err, backendErr)
	assert.Contains(t, err.Error(), "failed to resolve API passphrase")
	reader.AssertExpectations(t)
}

func TestResolvePassphrase_NilReader(t *testing.T) {
	got, err := ResolvePassphrase(context.Background(), nil, "mw/pass", "from-env")

	require.NoError(t, err)
	assert.Equal(t, "from-env", got)
}
