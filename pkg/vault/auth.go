package vault

import (
	"context"
	"strings"

	"github.com/hashicorp/vault/api"
)

const (
	// appRoleDelimiter separates role_id, secret_id and the optional mount
	// path in an AppRole credential.
	appRoleDelimiter = ":"

	// DefaultAppRoleMountPath is used when an AppRole credential does not
	// name a mount.
	DefaultAppRoleMountPath = "approle"
)

// AuthKind identifies which authentication method a credential selected.
type AuthKind string

const (
	AuthKindNone    AuthKind = "none"
	AuthKindToken   AuthKind = "token"
	AuthKindAppRole AuthKind = "approle"
)

// AuthMethod authenticates a Vault API client.
type AuthMethod interface {
	Kind() AuthKind
	Authenticate(ctx context.Context, client *api.Client) error
}

// SelectAuthMethod picks the authentication method from the shape of the
// credential string: blank selects NoAuth, a credential containing ':' is
// parsed as roleId:secretId[:mountPath], anything else is a token.
func SelectAuthMethod(credential string) AuthMethod {
	if strings.TrimSpace(credential) == "" {
		return &NoAuth{}
	}

	if strings.Contains(credential, appRoleDelimiter) {
		parts := strings.SplitN(credential, appRoleDelimiter, 3)

		mountPath := DefaultAppRoleMountPath
		if len(parts) == 3 {
			mountPath = parts[2]
		}

		return NewAppRoleAuth(parts[0], parts[1], mountPath)
	}

	return NewTokenAuth(credential)
}
