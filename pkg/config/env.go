package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Environment variable names read by LoadVaultEnv.
const (
	EnvAddress    = "VAULT_ADDR"
	EnvCredential = "VAULT_CREDENTIAL"
	EnvToken      = "VAULT_TOKEN"
)

// VaultEnv holds the Vault connection variables, prefixed with VAULT.
// Pointer fields stay nil when the variable is unset.
type VaultEnv struct {
	// Addr is the VAULT_ADDR environment variable
	Addr string

	// Credential is the VAULT_CREDENTIAL environment variable, either a token
	// or roleId:secretId[:mountPath]
	Credential *string

	// Token is the legacy VAULT_TOKEN environment variable
	Token *string
}

// LoadVaultEnv reads the VAULT_ prefixed connection variables.
func LoadVaultEnv() (*VaultEnv, error) {
	var env VaultEnv
	if err := envconfig.Process("vault", &env); err != nil {
		return nil, fmt.Errorf("failed to process vault environment: %w", err)
	}
	return &env, nil
}

// ResolveCredential returns VAULT_CREDENTIAL, falling back to VAULT_TOKEN
// only when VAULT_CREDENTIAL is unset.
func (e *VaultEnv) ResolveCredential() string {
	if e.Credential != nil {
		return *e.Credential
	}
	if e.Token != nil {
		return *e.Token
	}
	return ""
}
