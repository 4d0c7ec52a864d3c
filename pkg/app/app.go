// -------------------------------------------------------------------------------
// vault-bootstrap - Application Lifecycle
//
// Core application orchestration: provisions the Vault client, runs the
// metrics/status server and the metrics updater, and handles graceful
// shutdown. Token renewal tasks are detached and outlive Stop.
// -------------------------------------------------------------------------------

// Package app provides the main application lifecycle orchestration.
package app

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vault-bootstrap/pkg/config"
	"vault-bootstrap/pkg/health"
	"vault-bootstrap/pkg/logging"
	"vault-bootstrap/pkg/metrics"
	"vault-bootstrap/pkg/vault"
)

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// App orchestrates the bootstrap daemon lifecycle.
type App struct {
	config        *config.Config
	tasks         *vault.TaskRegistry
	provisioner   *vault.Provisioner
	healthChecker health.Checker
	collector     *metrics.Collector
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup

	mu     sync.RWMutex
	client *vault.Client
}

// -------------------------------------------------------------------------
// CONSTRUCTOR
// -------------------------------------------------------------------------

// New creates a new App instance with the given configuration.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logging.SetupLogger(&cfg.Logging)

	tasks := vault.NewTaskRegistry()
	healthChecker := health.NewRenewalChecker(tasks)
	collector := metrics.NewCollector(tasks, healthChecker)
	provisioner := vault.NewProvisioner(vault.NewRenewer(tasks, collector))

	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		config:        cfg,
		tasks:         tasks,
		provisioner:   provisioner,
		healthChecker: healthChecker,
		collector:     collector,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// -------------------------------------------------------------------------
// LIFECYCLE
// -------------------------------------------------------------------------

// Run provisions the Vault client and starts the background workers. It
// fails if the client cannot be provisioned.
func (a *App) Run() error {
	slog.Info("Starting vault-bootstrap application")

	client, err := a.provisionClient()
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.client = client
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.collector.StartServer(a.config.Prometheus.Port); err != nil {
			slog.Error("Metrics server error", "error", err)
		}
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.runMetricsUpdater()
	}()

	return nil
}

// Stop gracefully shuts down the application and waits for workers to finish.
func (a *App) Stop() {
	slog.Info("Stopping vault-bootstrap application")
	a.cancel()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.collector.Shutdown(shutdownCtx); err != nil {
		slog.Error("Metrics server shutdown error", "error", err)
	}

	a.wg.Wait()
}

// Client returns the provisioned Vault client, or nil when Vault is not
// configured.
func (a *App) Client() *vault.Client {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.client
}

// Tasks returns the renewal task registry.
func (a *App) Tasks() *vault.TaskRegistry {
	return a.tasks
}

// -------------------------------------------------------------------------
// PRIVATE METHODS
// -------------------------------------------------------------------------

// provisionClient builds the client from explicit config, or the default
// client from the environment otherwise.
func (a *App) provisionClient() (*vault.Client, error) {
	if a.config.Vault.IsExplicit() {
		credential, err := a.config.Vault.ResolveCredential()
		if err != nil {
			return nil, err
		}

		client, err := a.provisioner.GetClient(a.ctx, a.config.Vault.Address, credential)
		if err != nil {
			return nil, fmt.Errorf("failed to provision vault client: %w", err)
		}
		return client, nil
	}

	client, err := a.provisioner.GetDefaultClient(a.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to provision default vault client: %w", err)
	}

	if client == nil {
		slog.Warn("VAULT_ADDR is not set, secret management is disabled")
	}

	return client, nil
}

// -------------------------------------------------------------------------
// BACKGROUND WORKERS
// -------------------------------------------------------------------------

// runMetricsUpdater periodically updates Prometheus metrics.
func (a *App) runMetricsUpdater() {
	a.collector.UpdateMetrics()

	ticker := time.NewTicker(a.config.Prometheus.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.collector.UpdateMetrics()
		}
	}
}
