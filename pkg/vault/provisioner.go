// -------------------------------------------------------------------------------
// vault-bootstrap - Client Provisioner
//
// Builds authenticated Vault clients from explicit parameters or from the
// process environment, starts a renewal task for every client it builds,
// and memoizes one default client per provisioner.
// -------------------------------------------------------------------------------

package vault

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"vault-bootstrap/pkg/config"
)

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// Provisioner hands out authenticated Vault clients.
type Provisioner struct {
	renewer *Renewer
	connect ConnectFunc
	loadEnv func() (*config.VaultEnv, error)
	spawn   func(*Client) uint64

	mu            sync.Mutex
	defaultClient atomic.Pointer[Client]
}

// -------------------------------------------------------------------------
// CONSTRUCTOR
// -------------------------------------------------------------------------

// NewProvisioner creates a Provisioner whose clients are renewed by renewer.
// A nil renewer gets a fresh one with no observer.
func NewProvisioner(renewer *Renewer) *Provisioner {
	if renewer == nil {
		renewer = NewRenewer(nil, nil)
	}

	return &Provisioner{
		renewer: renewer,
		connect: NewClient,
		loadEnv: config.LoadVaultEnv,
		spawn:   renewer.Start,
	}
}

var defaultProvisioner = sync.OnceValue(func() *Provisioner {
	return NewProvisioner(nil)
})

// DefaultProvisioner returns the process-wide Provisioner. Its renewal
// tasks report to no observer; callers that export metrics build their own
// Provisioner with NewProvisioner.
func DefaultProvisioner() *Provisioner {
	return defaultProvisioner()
}

// GetDefaultClient returns the process-wide default client. See
// Provisioner.GetDefaultClient.
func GetDefaultClient(ctx context.Context) (*Client, error) {
	return DefaultProvisioner().GetDefaultClient(ctx)
}

// GetClient builds a client with the process-wide Provisioner. See
// Provisioner.GetClient.
func GetClient(ctx context.Context, address, credential string) (*Client, error) {
	return DefaultProvisioner().GetClient(ctx, address, credential)
}

// -------------------------------------------------------------------------
// PUBLIC METHODS
// -------------------------------------------------------------------------

// GetDefaultClient returns the client configured by VAULT_ADDR and
// VAULT_CREDENTIAL (or VAULT_TOKEN), building it on first use. It returns
// nil and no error when VAULT_ADDR is unset. Later calls return the same
// client; only one client and one renewal task are ever created, even for
// concurrent first callers.
func (p *Provisioner) GetDefaultClient(ctx context.Context) (*Client, error) {
	if client := p.defaultClient.Load(); client != nil {
		return client, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client := p.defaultClient.Load(); client != nil {
		return client, nil
	}

	env, err := p.loadEnv()
	if err != nil {
		return nil, err
	}

	if isBlank(env.Addr) {
		return nil, nil
	}

	credential := env.ResolveCredential()
	if isBlank(credential) {
		return nil, &ConfigurationError{
			Variables: []string{config.EnvCredential, config.EnvToken},
		}
	}

	client, err := p.GetClient(ctx, env.Addr, credential)
	if err != nil {
		return nil, err
	}

	p.defaultClient.Store(client)
	return client, nil
}

// GetClient builds a new client for address authenticated with credential
// and starts its renewal task. Both arguments are required.
func (p *Provisioner) GetClient(ctx context.Context, address, credential string) (*Client, error) {
	if isBlank(address) {
		return nil, invalidArgument("address")
	}
	if isBlank(credential) {
		return nil, invalidArgument("credential")
	}

	slog.Info("Creating Vault client", "address", address)

	method := SelectAuthMethod(credential)

	client, err := p.connect(ctx, address, method)
	if err != nil {
		return nil, err
	}

	p.renewer.observer.ClientCreated(method.Kind())
	p.spawn(client)

	return client, nil
}

// -------------------------------------------------------------------------
// PRIVATE FUNCTIONS
// -------------------------------------------------------------------------

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
