package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kevin07696/merchantwarrior-go/internal/adapters/ports"
	"github.com/kevin07696/merchantwarrior-go/internal/adapters/secrets"
	"github.com/kevin07696/merchantwarrior-go/internal/config"
)

// initSecretReader initializes the secret manager selected by SECRET_MANAGER
// Supports:
//   - env (default): the passphrase comes from MW_API_PASSPHRASE, no reader
//   - local: files under LOCAL_SECRETS_PATH (development only)
//   - aws: AWS Secrets Manager in AWS_REGION
//   - vault: HashiCorp Vault at VAULT_ADDR, token or AppRole auth
func initSecretReader(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretReader, error) {
	switch cfg.Manager {
	case config.SecretManagerEnv:
		return nil, nil

	case config.SecretManagerLocal:
		logger.Warn("Using local secret manager - NOT for production use!",
			zap.String("base_path", cfg.LocalPath),
		)
		return secrets.NewLocalSecretManager(cfg.LocalPath, logger), nil

	case config.SecretManagerAWS:
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWS.Region)
		awsCfg.Profile = cfg.AWS.Profile
		awsCfg.Endpoint = cfg.AWS.Endpoint

		reader, err := secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AWS Secrets Manager: %w", err)
		}
		return reader, nil

	case config.SecretManagerVault:
		vaultCfg := secrets.DefaultVaultConfig(cfg.Vault.Address)
		vaultCfg.MountPath = cfg.Vault.MountPath
		vaultCfg.Token = cfg.Vault.Token
		if cfg.Vault.Token == "" && cfg.Vault.RoleID != "" {
			vaultCfg.AuthMethod = "approle"
			vaultCfg.RoleID = cfg.Vault.RoleID
			vaultCfg.SecretID = cfg.Vault.SecretID
		}

		reader, err := secrets.NewVaultAdapter(ctx, vaultCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Vault: %w", err)
		}
		return reader, nil

	default:
		return nil, fmt.Errorf("unsupported SECRET_MANAGER: %s", cfg.Manager)
	}
}
