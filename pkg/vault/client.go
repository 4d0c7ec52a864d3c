// -------------------------------------------------------------------------------
// vault-bootstrap - Vault Client
//
// Authenticated HashiCorp Vault client handle. Wraps the API client for
// consumers and exposes the token lookup/renew calls used by the renewal
// loop.
// -------------------------------------------------------------------------------

// Package vault provisions authenticated HashiCorp Vault clients and keeps
// their token leases renewed.
package vault

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"
)

//go:generate mockgen -source=client.go -destination=mock_session.go -package=vault

// -------------------------------------------------------------------------
// INTERFACES
// -------------------------------------------------------------------------

// Session is the token capability surface the renewal loop needs.
type Session interface {
	LookupSelf(ctx context.Context) (*api.Secret, error)
	RenewSelf(ctx context.Context) (*api.Secret, error)
}

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// Client is an authenticated handle to a Vault server.
type Client struct {
	client   *api.Client
	address  string
	authKind AuthKind
}

// ConnectFunc constructs an authenticated Client.
type ConnectFunc func(ctx context.Context, address string, method AuthMethod) (*Client, error)

// -------------------------------------------------------------------------
// CONSTRUCTOR
// -------------------------------------------------------------------------

// NewClient creates a Vault client for address and authenticates it with
// method.
func NewClient(ctx context.Context, address string, method AuthMethod) (*Client, error) {
	cfg := api.DefaultConfig()
	if cfg.Error != nil {
		return nil, fmt.Errorf("failed to read vault client defaults: %w", cfg.Error)
	}
	cfg.Address = address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if err := method.Authenticate(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to authenticate with vault: %w", err)
	}

	return &Client{
		client:   client,
		address:  address,
		authKind: method.Kind(),
	}, nil
}

// -------------------------------------------------------------------------
// METHODS
// -------------------------------------------------------------------------

// API returns the underlying Vault API client.
func (c *Client) API() *api.Client {
	return c.client
}

// Address returns the Vault server address.
func (c *Client) Address() string {
	return c.address
}

// AuthKind returns the authentication method the client was created with.
func (c *Client) AuthKind() AuthKind {
	return c.authKind
}

// LookupSelf returns the metadata of the client's current token.
func (c *Client) LookupSelf(ctx context.Context) (*api.Secret, error) {
	return c.client.Auth().Token().LookupSelfWithContext(ctx)
}

// RenewSelf renews the client's current token using the server's default
// increment.
func (c *Client) RenewSelf(ctx context.Context) (*api.Secret, error) {
	return c.client.Auth().Token().RenewSelfWithContext(ctx, 0)
}
