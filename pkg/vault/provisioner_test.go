package vault

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"vault-bootstrap/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type connectCall struct {
	address string
	method  AuthMethod
}

// newTestProvisioner returns a provisioner whose collaborator calls are
// recorded instead of reaching a Vault server.
func newTestProvisioner(env *config.VaultEnv) (*Provisioner, *[]connectCall, *atomic.Int32) {
	p := NewProvisioner(NewRenewer(nil, nil))

	var mu sync.Mutex
	var calls []connectCall
	p.connect = func(_ context.Context, address string, method AuthMethod) (*Client, error) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, connectCall{address: address, method: method})
		return &Client{address: address, authKind: method.Kind()}, nil
	}

	var spawned atomic.Int32
	p.spawn = func(*Client) uint64 {
		return uint64(spawned.Add(1))
	}

	p.loadEnv = func() (*config.VaultEnv, error) {
		return env, nil
	}

	return p, &calls, &spawned
}

func stringPtr(s string) *string {
	return &s
}

func TestProvisioner_GetClient(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		expect     AuthMethod
	}{
		{
			name:       "approle with default mount",
			credential: "roleA:secretB",
			expect:     &AppRoleAuth{RoleID: "roleA", SecretID: "secretB", MountPath: "approle"},
		},
		{
			name:       "approle with custom mount",
			credential: "roleA:secretB:custom-mount",
			expect:     &AppRoleAuth{RoleID: "roleA", SecretID: "secretB", MountPath: "custom-mount"},
		},
		{
			name:       "token",
			credential: "s.abcdef123",
			expect:     &TokenAuth{Token: "s.abcdef123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, calls, spawned := newTestProvisioner(nil)

			client, err := p.GetClient(context.Background(), "http://vault.local:8200", tt.credential)
			require.NoError(t, err)
			require.NotNil(t, client)

			require.Len(t, *calls, 1)
			assert.Equal(t, "http://vault.local:8200", (*calls)[0].address)
			assert.Equal(t, tt.expect, (*calls)[0].method)
			assert.EqualValues(t, 1, spawned.Load())
		})
	}
}

func TestProvisioner_GetClient_InvalidArguments(t *testing.T) {
	tests := []struct {
		name       string
		address    string
		credential string
	}{
		{name: "empty address", address: "", credential: "s.token"},
		{name: "whitespace address", address: "  \t", credential: "s.token"},
		{name: "empty credential", address: "http://vault.local:8200", credential: ""},
		{name: "whitespace credential", address: "http://vault.local:8200", credential: " \n"},
		{name: "both empty", address: "", credential: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, calls, spawned := newTestProvisioner(nil)

			client, err := p.GetClient(context.Background(), tt.address, tt.credential)
			assert.Nil(t, client)
			assert.ErrorIs(t, err, ErrInvalidArgument)

			assert.Empty(t, *calls, "no collaborator call expected")
			assert.Zero(t, spawned.Load())
		})
	}
}

func TestProvisioner_GetClient_ConnectFailure(t *testing.T) {
	p, _, spawned := newTestProvisioner(nil)
	p.connect = func(context.Context, string, AuthMethod) (*Client, error) {
		return nil, errors.New("login failed")
	}

	client, err := p.GetClient(context.Background(), "http://vault.local:8200", "roleA:secretB")
	assert.Nil(t, client)
	assert.EqualError(t, err, "login failed")
	assert.Zero(t, spawned.Load())
}

func TestProvisioner_GetClient_ReportsCreation(t *testing.T) {
	observer := &recordingObserver{}
	p, _, _ := newTestProvisioner(nil)
	p.renewer = NewRenewer(nil, observer)

	_, err := p.GetClient(context.Background(), "http://vault.local:8200", "roleA:secretB")
	require.NoError(t, err)

	assert.Equal(t, []AuthKind{AuthKindAppRole}, observer.created)
}

func TestProvisioner_GetDefaultClient(t *testing.T) {
	tests := []struct {
		name            string
		env             *config.VaultEnv
		expectClient    bool
		expectConfigErr bool
		expectMethod    AuthMethod
	}{
		{
			name: "address unset",
			env:  &config.VaultEnv{Credential: stringPtr("s.token")},
		},
		{
			name: "address whitespace",
			env:  &config.VaultEnv{Addr: "   ", Credential: stringPtr("s.token")},
		},
		{
			name:            "credential unset",
			env:             &config.VaultEnv{Addr: "http://vault.local:8200"},
			expectConfigErr: true,
		},
		{
			name:            "credential whitespace",
			env:             &config.VaultEnv{Addr: "http://vault.local:8200", Credential: stringPtr(" ")},
			expectConfigErr: true,
		},
		{
			name:            "empty credential does not fall back",
			env:             &config.VaultEnv{Addr: "http://vault.local:8200", Credential: stringPtr(""), Token: stringPtr("s.legacy")},
			expectConfigErr: true,
		},
		{
			name:         "primary credential",
			env:          &config.VaultEnv{Addr: "http://vault.local:8200", Credential: stringPtr("roleA:secretB"), Token: stringPtr("s.legacy")},
			expectClient: true,
			expectMethod: &AppRoleAuth{RoleID: "roleA", SecretID: "secretB", MountPath: "approle"},
		},
		{
			name:         "legacy token fallback",
			env:          &config.VaultEnv{Addr: "http://vault.local:8200", Token: stringPtr("s.legacy")},
			expectClient: true,
			expectMethod: &TokenAuth{Token: "s.legacy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, calls, spawned := newTestProvisioner(tt.env)

			client, err := p.GetDefaultClient(context.Background())

			if tt.expectConfigErr {
				var configErr *ConfigurationError
				require.ErrorAs(t, err, &configErr)
				assert.Equal(t, []string{"VAULT_CREDENTIAL", "VAULT_TOKEN"}, configErr.Variables)
				assert.Contains(t, err.Error(), "VAULT_CREDENTIAL")
				assert.Contains(t, err.Error(), "VAULT_TOKEN")
				assert.Nil(t, client)
				assert.Empty(t, *calls)
				return
			}

			require.NoError(t, err)

			if !tt.expectClient {
				assert.Nil(t, client)
				assert.Empty(t, *calls)
				assert.Zero(t, spawned.Load())
				return
			}

			require.NotNil(t, client)
			require.Len(t, *calls, 1)
			assert.Equal(t, tt.expectMethod, (*calls)[0].method)
			assert.EqualValues(t, 1, spawned.Load())
		})
	}
}

func TestProvisioner_GetDefaultClient_Memoized(t *testing.T) {
	env := &config.VaultEnv{Addr: "http://vault.local:8200", Credential: stringPtr("s.token")}
	p, calls, spawned := newTestProvisioner(env)

	first, err := p.GetDefaultClient(context.Background())
	require.NoError(t, err)
	second, err := p.GetDefaultClient(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, *calls, 1)
	assert.EqualValues(t, 1, spawned.Load())
}

func TestProvisioner_GetDefaultClient_ErrorNotCached(t *testing.T) {
	env := &config.VaultEnv{Addr: "http://vault.local:8200"}
	p, calls, _ := newTestProvisioner(env)

	_, err := p.GetDefaultClient(context.Background())
	require.Error(t, err)

	env.Credential = stringPtr("s.token")
	client, err := p.GetDefaultClient(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Len(t, *calls, 1)
}

func TestProvisioner_GetDefaultClient_ConcurrentFirstCallers(t *testing.T) {
	env := &config.VaultEnv{Addr: "http://vault.local:8200", Credential: stringPtr("roleA:secretB")}
	p, calls, spawned := newTestProvisioner(env)

	const callers = 64
	clients := make([]*Client, callers)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			client, err := p.GetDefaultClient(context.Background())
			assert.NoError(t, err)
			clients[i] = client
		}(i)
	}

	close(start)
	wg.Wait()

	assert.Len(t, *calls, 1)
	assert.EqualValues(t, 1, spawned.Load())
	for _, client := range clients {
		assert.Same(t, clients[0], client)
	}
}

func TestProvisioner_GetDefaultClient_FromEnvironment(t *testing.T) {
	server := newFakeVault(t, false)

	t.Setenv("VAULT_ADDR", server.URL)
	t.Setenv("VAULT_CREDENTIAL", "roleA:secretB")
	t.Setenv("VAULT_TOKEN", "s.legacy")

	tasks := NewTaskRegistry()
	p := NewProvisioner(NewRenewer(tasks, nil))

	client, err := p.GetDefaultClient(context.Background())
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, AuthKindAppRole, client.AuthKind())
	assert.Equal(t, "s.approle-token", client.API().Token())

	require.Eventually(t, func() bool {
		snapshot := tasks.Snapshot()
		return len(snapshot) == 1 && snapshot[0].State == TaskInactive
	}, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, server.renewals.Load())
}

func TestDefaultProvisioner(t *testing.T) {
	for _, name := range []string{config.EnvAddress, config.EnvCredential, config.EnvToken} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}

	assert.Same(t, DefaultProvisioner(), DefaultProvisioner())

	client, err := GetDefaultClient(context.Background())
	require.NoError(t, err)
	assert.Nil(t, client)

	client, err = GetClient(context.Background(), " ", "s.token")
	assert.Nil(t, client)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
