package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Esewa    EsewaConfig
	Secrets  SecretsConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int
	Host        string
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// EsewaConfig holds eSewa gateway configuration
type EsewaConfig struct {
	Environment string // "test" or "production"
	ProductCode string // Merchant product code (sandbox default: EPAYTEST)
	SecretKey   string // Signing secret; empty means resolve via secret manager
	SuccessURL  string // Redirect target after a successful payment
	FailureURL  string // Redirect target after a failed payment
	VerifyMode  string // "echo" (observed gateway behavior) or "recompute"
	Timeout     int    // Status request timeout in seconds (default: 30)
}

// SecretsConfig holds secret manager backend configuration
type SecretsConfig struct {
	Backend       string // "local", "aws", or "vault"
	LocalPath     string // Base path for the local filesystem backend
	AWSRegion     string
	AWSEndpoint   string // Custom endpoint (LocalStack)
	VaultAddress  string
	VaultToken    string
	VaultMount    string
	CacheTTLSecs  int
	EnableCaching bool
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvAsInt("SERVER_PORT", 8080),
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "esewa_service"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
		},
		Esewa: EsewaConfig{
			Environment: getEnv("ESEWA_ENVIRONMENT", "test"),
			ProductCode: getEnv("ESEWA_PRODUCT_CODE", ""),
			SecretKey:   getEnv("ESEWA_SECRET_KEY", ""),
			SuccessURL:  getEnv("ESEWA_SUCCESS_URL", ""),
			FailureURL:  getEnv("ESEWA_FAILURE_URL", ""),
			VerifyMode:  getEnv("ESEWA_VERIFY_MODE", "echo"),
			Timeout:     getEnvAsInt("ESEWA_TIMEOUT", 30),
		},
		Secrets: SecretsConfig{
			Backend:       getEnv("SECRETS_BACKEND", "local"),
			LocalPath:     getEnv("SECRETS_LOCAL_PATH", ".secrets"),
			AWSRegion:     getEnv("SECRETS_AWS_REGION", "ap-south-1"),
			AWSEndpoint:   getEnv("SECRETS_AWS_ENDPOINT", ""),
			VaultAddress:  getEnv("SECRETS_VAULT_ADDR", ""),
			VaultToken:    getEnv("SECRETS_VAULT_TOKEN", ""),
			VaultMount:    getEnv("SECRETS_VAULT_MOUNT", "secret"),
			CacheTTLSecs:  getEnvAsInt("SECRETS_CACHE_TTL", 300),
			EnableCaching: getEnvAsBool("SECRETS_CACHE_ENABLED", true),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	// Validate required fields
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.Esewa.Environment != "test" && cfg.Esewa.Environment != "production" {
		return nil, fmt.Errorf("ESEWA_ENVIRONMENT must be \"test\" or \"production\", got %q", cfg.Esewa.Environment)
	}
	if cfg.Esewa.VerifyMode != "echo" && cfg.Esewa.VerifyMode != "recompute" {
		return nil, fmt.Errorf("ESEWA_VERIFY_MODE must be \"echo\" or \"recompute\", got %q", cfg.Esewa.VerifyMode)
	}
	if cfg.Secrets.Backend == "vault" && cfg.Secrets.VaultAddress == "" {
		return nil, fmt.Errorf("SECRETS_VAULT_ADDR is required for the vault backend")
	}

	return cfg, nil
}

// ConnectionString returns PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// DatabaseURL returns PostgreSQL connection URL for pgxpool
func (c *DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
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
