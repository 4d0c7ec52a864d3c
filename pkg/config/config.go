// -------------------------------------------------------------------------------
// vault-bootstrap - Configuration
//
// YAML configuration loading and validation for the bootstrap daemon.
// Supports single files or conf.d style directories, where later files
// override the settings of earlier ones. Validates vault, logging and metrics
// settings. Vault connection variables from the environment live in env.go.
// -------------------------------------------------------------------------------

// Package config provides YAML and environment configuration loading.
package config

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// Config represents the complete application configuration.
type Config struct {
	Vault      VaultConfig      `yaml:"vault"`
	Prometheus PrometheusConfig `yaml:"prometheus"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// VaultConfig holds explicit Vault connection settings. When Address is
// empty the client is configured from VAULT_ADDR and VAULT_CREDENTIAL.
type VaultConfig struct {
	Address        string `yaml:"address,omitempty"`
	Credential     string `yaml:"credential,omitempty"`
	CredentialFile string `yaml:"credential_file,omitempty"`
}

// PrometheusConfig holds Prometheus metrics server settings.
type PrometheusConfig struct {
	Port            int           `yaml:"port"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// LoggingConfig holds logging output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// -------------------------------------------------------------------------
// PUBLIC FUNCTIONS
// -------------------------------------------------------------------------

// LoadConfig loads and validates configuration from a file or directory.
func LoadConfig(path string) (*Config, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	var files []string
	if stat.IsDir() {
		files, err = listConfigFiles(path)
		if err != nil {
			return nil, err
		}
	} else {
		files = []string{path}
	}

	var config Config
	for _, file := range files {
		if err := loadConfigFromFile(file, &config); err != nil {
			return nil, err
		}
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	config := &Config{}
	_ = validateConfig(config)
	return config
}

// -------------------------------------------------------------------------
// PRIVATE FUNCTIONS
// -------------------------------------------------------------------------

// loadConfigFromFile parses a YAML file over the fields already in config.
func loadConfigFromFile(filename string, config *Config) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return nil
}

// listConfigFiles returns the YAML files of a directory in lexical order.
func listConfigFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		if !strings.HasSuffix(filename, ".yml") && !strings.HasSuffix(filename, ".yaml") {
			continue
		}

		files = append(files, filepath.Join(dir, filename))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no .yml or .yaml files found in directory %s", dir)
	}

	sort.Strings(files)
	return files, nil
}

// validateConfig validates the configuration and sets defaults.
func validateConfig(config *Config) error {
	if err := validateVaultConfig(&config.Vault); err != nil {
		return fmt.Errorf("vault: %w", err)
	}

	if config.Prometheus.Port == 0 {
		config.Prometheus.Port = 9090
	}
	if config.Prometheus.Port < 0 || config.Prometheus.Port > 65535 {
		return fmt.Errorf("prometheus.port must be between 1 and 65535, got %d", config.Prometheus.Port)
	}
	if config.Prometheus.RefreshInterval == 0 {
		config.Prometheus.RefreshInterval = 10 * time.Second
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}

	if config.Logging.Format != "json" && config.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be 'json' or 'text', got '%s'", config.Logging.Format)
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("logging.level must be one of 'debug', 'info', 'warn', 'error', got '%s'", config.Logging.Level)
	}

	return nil
}

// validateVaultConfig validates the explicit connection settings.
func validateVaultConfig(vault *VaultConfig) error {
	if vault.Credential != "" && vault.CredentialFile != "" {
		return fmt.Errorf("only one of credential or credential_file can be specified")
	}

	if vault.Address == "" {
		if vault.Credential != "" || vault.CredentialFile != "" {
			return fmt.Errorf("address is required when a credential is configured")
		}
		return nil
	}

	if vault.Credential == "" && vault.CredentialFile == "" {
		return fmt.Errorf("credential or credential_file is required when address is set")
	}

	return nil
}

// -------------------------------------------------------------------------
// METHODS
// -------------------------------------------------------------------------

// ResolveCredential returns the configured credential, reading
// CredentialFile when set.
func (v *VaultConfig) ResolveCredential() (string, error) {
	if v.CredentialFile != "" {
		data, err := os.ReadFile(v.CredentialFile)
		if err != nil {
			return "", fmt.Errorf("failed to read credential file %s: %w", v.CredentialFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	return v.Credential, nil
}

// Validate checks the connection settings, for use after they have been
// changed outside LoadConfig.
func (v *VaultConfig) Validate() error {
	if err := validateVaultConfig(v); err != nil {
		return fmt.Errorf("vault: %w", err)
	}
	return nil
}

// IsExplicit reports whether the Vault connection is configured explicitly
// rather than from the environment.
func (v *VaultConfig) IsExplicit() bool {
	return v.Address != ""
}
