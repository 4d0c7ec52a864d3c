package vault

import (
	"context"

	"github.com/hashicorp/vault/api"
)

// TokenAuth implements token-based authentication
type TokenAuth struct {
	Token string
}

// NewTokenAuth creates a new token authenticator
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{
		Token: token,
	}
}

func (t *TokenAuth) Kind() AuthKind {
	return AuthKindToken
}

// Authenticate sets the token on the Vault client
func (t *TokenAuth) Authenticate(_ context.Context, client *api.Client) error {
	client.SetToken(t.Token)
	return nil
}

// NoAuth leaves the client without a token.
type NoAuth struct{}

func (n *NoAuth) Kind() AuthKind {
	return AuthKindNone
}

// Authenticate clears any token api.NewClient picked up from VAULT_TOKEN.
func (n *NoAuth) Authenticate(_ context.Context, client *api.Client) error {
	client.ClearToken()
	return nil
}
