package secrets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newVaultServer serves a KV v2 secret, a KV v1 secret and AppRole login
func newVaultServer(t *testing.T, wantToken string, reads *atomic.Int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/approle/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["role_id"] != "role" || body["secret_id"] != "secret-id" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":["invalid role or secret ID"]}`))
			return
		}
		_, _ = w.Write([]byte(`{"auth":{"client_token":"approle-token","lease_duration":3600}}`))
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != wantToken {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		reads.Add(1)

		switch r.URL.Path {
		case "/v1/secret/data/merchantwarrior/passphrase":
			_, _ = w.Write([]byte(`{"data":{"data":{"value":"vault-pass","owner":"payments"},"metadata":{"version":3,"created_time":"2026-01-01T00:00:00Z"}}}`))
		case "/v1/kv/merchantwarrior/passphrase":
			_, _ = w.Write([]byte(`{"data":{"value":"kv1-pass"}}`))
		case "/v1/secret/data/merchantwarrior/empty":
			_, _ = w.Write([]byte(`{"data":{"data":{"other":"x"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVaultAdapter_KVv2(t *testing.T) {
	var reads atomic.Int32
	srv := newVaultServer(t, "root-token", &reads)
	cfg := DefaultVaultConfig(srv.URL)
	cfg.Token = "root-token"

	adapter, err := NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	secret, err := adapter.GetSecret(context.Background(), "merchantwarrior/passphrase")

	require.NoError(t, err)
	assert.Equal(t, "vault-pass", secret.Value)
	assert.Equal(t, "3", secret.Version)
	assert.Equal(t, "2026-01-01T00:00:00Z", secret.CreatedAt)
	assert.Equal(t, map[string]string{"owner": "payments"}, secret.Metadata)

	_, err = adapter.GetSecret(context.Background(), "merchantwarrior/passphrase")
	require.NoError(t, err)
	assert.Equal(t, int32(1), reads.Load(), "second read is served from cache")
}

func TestVaultAdapter_KVv1(t *testing.T) {
	var reads atomic.Int32
	srv := newVaultServer(t, "root-token", &reads)
	cfg := DefaultVaultConfig(srv.URL)
	cfg.Token = "root-token"
	cfg.MountPath = "kv"
	cfg.KVVersion = "v1"

	adapter, err := NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	secret, err := adapter.GetSecret(context.Background(), "merchantwarrior/passphrase")

	require.NoError(t, err)
	assert.Equal(t, "kv1-pass", secret.Value)
	assert.Equal(t, "1", secret.Version)
}

func TestVaultAdapter_AppRole(t *testing.T) {
	var reads atomic.Int32
	srv := newVaultServer(t, "approle-token", &reads)
	cfg := DefaultVaultConfig(srv.URL)
	cfg.AuthMethod = "approle"
	cfg.RoleID = "role"
	cfg.SecretID = "secret-id"

	adapter, err := NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	secret, err := adapter.GetSecret(context.Background(), "merchantwarrior/passphrase")

	require.NoError(t, err)
	assert.Equal(t, "vault-pass", secret.Value)
}

func TestVaultAdapter_AuthErrors(t *testing.T) {
	var reads atomic.Int32
	srv := newVaultServer(t, "root-token", &reads)

	tests := []struct {
		name    string
		mutate  func(cfg *VaultConfig)
		wantErr string
	}{
		{
			name:    "missing token",
			mutate:  func(cfg *VaultConfig) { cfg.Token = "" },
			wantErr: "token is required",
		},
		{
			name: "approle without secret id",
			mutate: func(cfg *VaultConfig) {
				cfg.AuthMethod = "approle"
				cfg.RoleID = "role"
			},
			wantErr: "role_id and secret_id are required",
		},
		{
			name: "approle rejected",
			mutate: func(cfg *VaultConfig) {
				cfg.AuthMethod = "approle"
				cfg.RoleID = "role"
				cfg.SecretID = "wrong"
			},
			wantErr: "AppRole login failed",
		},
		{
			name:    "unsupported method",
			mutate:  func(cfg *VaultConfig) { cfg.AuthMethod = "kubernetes" },
			wantErr: "unsupported auth method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultVaultConfig(srv.URL)
			tt.mutate(cfg)

			adapter, err := NewVaultAdapter(context.Background(), cfg, zap.NewNop())

			require.Error(t, err)
			assert.Nil(t, adapter)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestVaultAdapter_ReadErrors(t *testing.T) {
	var reads atomic.Int32
	srv := newVaultServer(t, "root-token", &reads)
	cfg := DefaultVaultConfig(srv.URL)
	cfg.Token = "root-token"

	adapter, err := NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = adapter.GetSecret(context.Background(), "merchantwarrior/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret not found")

	_, err = adapter.GetSecret(context.Background(), "merchantwarrior/empty")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no value key")
}
