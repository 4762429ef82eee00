package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kevin07696/merchantwarrior-go/pkg/merchantwarrior"
)

// Secret manager backends
const (
	SecretManagerEnv   = "env"
	SecretManagerLocal = "local"
	SecretManagerAWS   = "aws"
	SecretManagerVault = "vault"
)

// Config holds all application configuration
type Config struct {
	Merchant MerchantConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// MerchantConfig holds Merchant Warrior account configuration
type MerchantConfig struct {
	MerchantUUID  string
	APIKey        string
	APIPassphrase string // may be replaced by the secret manager value
	TestMode      bool   // sandbox endpoints (default: true)
	Timeout       int    // Request timeout in seconds (default: 30)
	PaymentURL    string // optional endpoint override, e.g. a local simulator
	TokenURL      string
}

// SecretsConfig selects where the API passphrase is read from
type SecretsConfig struct {
	Manager        string // env, local, aws, vault
	PassphrasePath string // secret path of the passphrase, empty to use MW_API_PASSPHRASE
	LocalPath      string
	AWS            AWSConfig
	Vault          VaultConfig
}

// AWSConfig holds AWS Secrets Manager configuration
type AWSConfig struct {
	Region   string
	Profile  string
	Endpoint string // LocalStack or other compatible endpoint
}

// VaultConfig holds HashiCorp Vault configuration
type VaultConfig struct {
	Address   string
	Token     string
	MountPath string
	RoleID    string // AppRole auth when Token is empty
	SecretID  string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Merchant: MerchantConfig{
			MerchantUUID:  getEnv("MW_MERCHANT_UUID", ""),
			APIKey:        getEnv("MW_API_KEY", ""),
			APIPassphrase: getEnv("MW_API_PASSPHRASE", ""),
			TestMode:      getEnvAsBool("MW_TEST_MODE", true),
			Timeout:       getEnvAsInt("MW_HTTP_TIMEOUT_SECONDS", 30),
			PaymentURL:    getEnv("MW_PAYMENT_URL", ""),
			TokenURL:      getEnv("MW_TOKEN_URL", ""),
		},
		Secrets: SecretsConfig{
			Manager:        getEnv("SECRET_MANAGER", SecretManagerEnv),
			PassphrasePath: getEnv("MW_PASSPHRASE_SECRET", ""),
			LocalPath:      getEnv("LOCAL_SECRETS_PATH", "./secrets"),
			AWS: AWSConfig{
				Region:   getEnv("AWS_REGION", "us-east-1"),
				Profile:  getEnv("AWS_PROFILE", ""),
				Endpoint: getEnv("AWS_ENDPOINT", ""),
			},
			Vault: VaultConfig{
				Address:   getEnv("VAULT_ADDR", "http://localhost:8200"),
				Token:     getEnv("VAULT_TOKEN", ""),
				MountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
				RoleID:    getEnv("VAULT_ROLE_ID", ""),
				SecretID:  getEnv("VAULT_SECRET_ID", ""),
			},
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.Merchant.MerchantUUID == "" {
		return fmt.Errorf("MW_MERCHANT_UUID is required")
	}
	if c.Merchant.APIKey == "" {
		return fmt.Errorf("MW_API_KEY is required")
	}
	if (c.Merchant.PaymentURL == "") != (c.Merchant.TokenURL == "") {
		return fmt.Errorf("MW_PAYMENT_URL and MW_TOKEN_URL must be set together")
	}
	if c.Merchant.Timeout < 0 {
		return fmt.Errorf("MW_HTTP_TIMEOUT_SECONDS must not be negative")
	}

	switch c.Secrets.Manager {
	case SecretManagerEnv:
		if c.Merchant.APIPassphrase == "" {
			return fmt.Errorf("MW_API_PASSPHRASE is required when SECRET_MANAGER=env")
		}
	case SecretManagerLocal, SecretManagerAWS, SecretManagerVault:
		if c.Secrets.PassphrasePath == "" && c.Merchant.APIPassphrase == "" {
			return fmt.Errorf("MW_PASSPHRASE_SECRET or MW_API_PASSPHRASE is required")
		}
	default:
		return fmt.Errorf("SECRET_MANAGER %q is not supported", c.Secrets.Manager)
	}
	return nil
}

// ClientConfig returns the merchantwarrior client configuration
func (c *MerchantConfig) ClientConfig() merchantwarrior.Config {
	return merchantwarrior.Config{
		MerchantUUID:  c.MerchantUUID,
		APIKey:        c.APIKey,
		APIPassphrase: c.APIPassphrase,
		TestMode:      c.TestMode,
	}
}

// ClientOptions returns the endpoint override, if configured
func (c *MerchantConfig) ClientOptions() []merchantwarrior.Option {
	if c.PaymentURL == "" {
		return nil
	}
	return []merchantwarrior.Option{merchantwarrior.WithBaseURLs(c.PaymentURL, c.TokenURL)}
}

// HTTPTimeout returns the request timeout
func (c *MerchantConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
