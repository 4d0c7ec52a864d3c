// -------------------------------------------------------------------------------
// vault-bootstrap - AppRole Authentication
//
// AppRole-based authentication for Vault. Logs in with the role_id and
// secret_id parsed from the credential string and installs the returned
// client token on the API client.
// -------------------------------------------------------------------------------

package vault

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hashicorp/vault/api"
)

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// AppRoleAuth implements AppRole-based Vault authentication.
type AppRoleAuth struct {
	RoleID    string
	SecretID  string
	MountPath string
}

// -------------------------------------------------------------------------
// CONSTRUCTOR
// -------------------------------------------------------------------------

// NewAppRoleAuth creates a new AppRole authenticator.
func NewAppRoleAuth(roleID, secretID, mountPath string) *AppRoleAuth {
	return &AppRoleAuth{
		RoleID:    roleID,
		SecretID:  secretID,
		MountPath: mountPath,
	}
}

// -------------------------------------------------------------------------
// METHODS
// -------------------------------------------------------------------------

// Kind reports AuthKindAppRole.
func (a *AppRoleAuth) Kind() AuthKind {
	return AuthKindAppRole
}

// Authenticate performs AppRole authentication with Vault.
func (a *AppRoleAuth) Authenticate(ctx context.Context, client *api.Client) error {
	mountPath := a.MountPath
	if mountPath == "" {
		mountPath = DefaultAppRoleMountPath
	}

	loginPath := fmt.Sprintf("auth/%s/login", mountPath)
	loginData := map[string]interface{}{
		"role_id":   a.RoleID,
		"secret_id": a.SecretID,
	}

	slog.Debug("Attempting AppRole authentication",
		"mount_path", mountPath,
		"role_id", a.RoleID)

	resp, err := client.Logical().WriteWithContext(ctx, loginPath, loginData)
	if err != nil {
		return fmt.Errorf("failed to authenticate with AppRole: %w", err)
	}

	if resp == nil || resp.Auth == nil {
		return fmt.Errorf("no authentication information returned from AppRole auth")
	}

	client.SetToken(resp.Auth.ClientToken)
	slog.Info("Successfully authenticated with AppRole", "mount_path", mountPath)

	return nil
}
