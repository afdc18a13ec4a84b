package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/avierno/envauth/internal/acquire"
	"github.com/avierno/envauth/internal/coordinator"
	"github.com/avierno/envauth/internal/environment"
	"github.com/avierno/envauth/internal/secretstore"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText     LogFormat = "text"
	LogFormatJSON     LogFormat = "json"
	LogFormatOTLP     LogFormat = "otlp"
	LogFormatOTLPGRPC LogFormat = "otlp-grpc"
	LogFormatStdout   LogFormat = "stdout"
)

// SecretStorageType represents the different storage backends for secrets.
type SecretStorageType string

const (
	SecretStorageTypeKeyring SecretStorageType = "keyring"
	SecretStorageTypeFile    SecretStorageType = "file"
	SecretStorageTypeMemory  SecretStorageType = "memory"
)

// Default configuration values
const (
	DefaultConfigLogFormat          = LogFormatText
	DefaultConfigSecretStorage      = SecretStorageTypeKeyring
	DefaultConfigKeyringService     = "envauth"
	DefaultConfigSafetyMargin       = coordinator.DefaultSafetyMargin
	DefaultConfigInteractiveTimeout = acquire.DefaultInteractiveTimeout
)

// CacheConfig holds token cache behavior configuration.
type CacheConfig struct {
	// SafetyMargin is subtracted from token expiry when judging cache validity.
	SafetyMargin time.Duration `json:"safety_margin"`
}

// InteractiveConfig holds user-interactive flow configuration.
type InteractiveConfig struct {
	// Timeout bounds waiting for user action in interactive and device-code flows.
	Timeout time.Duration `json:"timeout"`
}

// SecretsConfig describes how to construct the secret store.
type SecretsConfig struct {
	Storage SecretStorageType `json:"storage" validate:"required,oneof=keyring file memory"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	KeyringService string `json:"keyring_service,omitempty"` // For keyring storage: service namespace
	Dir            string `json:"dir,omitempty"`             // For file storage: secrets directory
}

// NewStore creates a secret store from the configuration.
func (s *SecretsConfig) NewStore() (secretstore.Store, error) {
	switch s.Storage {
	case SecretStorageTypeKeyring:
		return secretstore.NewKeyringStore(s.KeyringService)
	case SecretStorageTypeFile:
		return secretstore.NewFileStore(s.Dir)
	case SecretStorageTypeMemory:
		return secretstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported secret storage type: %s", s.Storage)
	}
}

// EnvironmentConfig declares one environment to acquire tokens for.
type EnvironmentConfig struct {
	ID       string `json:"id" validate:"required"`
	Method   string `json:"method" validate:"required,oneof=interactive device_code service_principal username_password"`
	TenantID string `json:"tenant_id" validate:"required"`
	ClientID string `json:"client_id" validate:"required"`
	Username string `json:"username,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

// toEnvironment converts the declaration into the immutable value object.
func (e *EnvironmentConfig) toEnvironment() *environment.Environment {
	return &environment.Environment{
		ID:       e.ID,
		Method:   environment.AuthenticationMethod(e.Method),
		TenantID: e.TenantID,
		ClientID: e.ClientID,
		Username: e.Username,
		Scope:    e.Scope,
	}
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to Info if unset).
	LogLevel     slog.Level          `json:"log_level"`
	LogFormat    LogFormat           `json:"log_format" validate:"oneof=text json otlp otlp-grpc stdout"`
	Cache        CacheConfig         `json:"cache"`
	Interactive  InteractiveConfig   `json:"interactive"`
	Secrets      SecretsConfig       `json:"secrets"`
	Environments []EnvironmentConfig `json:"environments" validate:"dive"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Cache.SafetyMargin == 0 {
		c.Cache.SafetyMargin = DefaultConfigSafetyMargin
	}
	if c.Interactive.Timeout == 0 {
		c.Interactive.Timeout = DefaultConfigInteractiveTimeout
	}
	if c.Secrets.Storage == "" {
		c.Secrets.Storage = DefaultConfigSecretStorage
	}

	switch c.Secrets.Storage {
	case SecretStorageTypeKeyring:
		if c.Secrets.KeyringService == "" {
			c.Secrets.KeyringService = DefaultConfigKeyringService
		}
	case SecretStorageTypeFile:
		if c.Secrets.Dir == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("secrets.dir required (auto-detect failed: %w)", err)
			}
			c.Secrets.Dir = filepath.Join(configDir, "envauth", "secrets")
		}
	case SecretStorageTypeMemory:
		// nothing to default
	}

	return nil
}

// Validate validates the configuration using struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Secrets.Storage == SecretStorageTypeFile && c.Secrets.Dir == "" {
		return fmt.Errorf("secrets.dir required for file storage")
	}

	seen := make(map[string]bool, len(c.Environments))
	for i := range c.Environments {
		env := &c.Environments[i]
		if seen[env.ID] {
			return fmt.Errorf("duplicate environment id %q", env.ID)
		}
		seen[env.ID] = true

		method := environment.AuthenticationMethod(env.Method)
		if method.RequiresUsernamePassword() && env.Username == "" {
			return fmt.Errorf("environment %q: username required for username_password method", env.ID)
		}
	}

	return nil
}

// Environment returns the declared environment with the given id.
func (c *Config) Environment(id string) (*environment.Environment, error) {
	for i := range c.Environments {
		if c.Environments[i].ID == id {
			return c.Environments[i].toEnvironment(), nil
		}
	}
	return nil, fmt.Errorf("unknown environment %q", id)
}
