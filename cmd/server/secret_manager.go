package main

import (
	"context"
	"fmt"
	"time"

	"github.com/nepalpay/esewa-service/internal/adapters/secrets"
	"github.com/nepalpay/esewa-service/internal/config"
	"github.com/nepalpay/esewa-service/internal/domain/ports"
	"go.uber.org/zap"
)

// initSecretManager builds the configured secret manager backend
func initSecretManager(ctx context.Context, cfg config.SecretsConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	cacheTTL := time.Duration(cfg.CacheTTLSecs) * time.Second

	switch cfg.Backend {
	case "local":
		logger.Info("Using local filesystem secret manager",
			zap.String("path", cfg.LocalPath),
		)
		return secrets.NewLocalSecretManager(cfg.LocalPath, logger), nil

	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.AWSRegion)
		awsCfg.Endpoint = cfg.AWSEndpoint
		awsCfg.CacheTTL = cacheTTL
		awsCfg.EnableCache = cfg.EnableCaching
		return secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)

	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.VaultAddress)
		vaultCfg.Token = cfg.VaultToken
		vaultCfg.MountPath = cfg.VaultMount
		vaultCfg.CacheTTL = cacheTTL
		vaultCfg.EnableCache = cfg.EnableCaching
		return secrets.NewVaultAdapter(ctx, vaultCfg, logger)

	default:
		return nil, fmt.Errorf("unsupported secrets backend: %s", cfg.Backend)
	}
}
