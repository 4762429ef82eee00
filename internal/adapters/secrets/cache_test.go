package secrets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kevin07696/merchantwarrior-go/internal/adapters/ports"
)

func TestSecretCache_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := newSecretCache(true, time.Minute)
	cache.now = func() time.Time { return now }

	secret := &ports.Secret{Value: "pass"}
	cache.set("merchantwarrior/passphrase", secret)

	assert.Same(t, secret, cache.get("merchantwarrior/passphrase"))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, cache.get("merchantwarrior/passphrase"))
	assert.Empty(t, cache.entries)
}

func TestSecretCache_Disabled(t *testing.T) {
	cache := newSecretCache(false, time.Minute)

	cache.set("path", &ports.Secret{Value: "pass"})

	assert.Nil(t, cache.get("path"))
}

func TestSecretCache_DefaultTTL(t *testing.T) {
	cache := newSecretCache(true, 0)

	assert.Equal(t, DefaultCacheTTL, cache.ttl)
}
