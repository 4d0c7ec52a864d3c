// -------------------------------------------------------------------------------
// vault-bootstrap - Metrics Collector
//
// Prometheus metrics for client provisioning and token renewal. Exposes
// counters for created clients and renewal outcomes, a gauge for the last
// successful renewal, and per-state counts of renewal tasks. Serves them
// together with the status API.
// -------------------------------------------------------------------------------

// Package metrics provides Prometheus metrics for token renewal monitoring.
package metrics

// -------------------------------------------------------------------------
// IMPORTS
// -------------------------------------------------------------------------

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"vault-bootstrap/pkg/health"
	"vault-bootstrap/pkg/vault"
	"vault-bootstrap/pkg/web"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vault_bootstrap"

var _ vault.Observer = (*Collector)(nil)

// -------------------------------------------------------------------------
// TYPES
// -------------------------------------------------------------------------

// Collector gathers and exposes renewal metrics for Prometheus.
type Collector struct {
	tasks         health.TaskSource
	healthChecker health.Checker
	registry      *prometheus.Registry

	clientsCreated       *prometheus.CounterVec
	renewalsTotal        *prometheus.CounterVec
	lastRenewedTimestamp prometheus.Gauge
	renewalTasks         *prometheus.GaugeVec

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// -------------------------------------------------------------------------
// CONSTRUCTOR
// -------------------------------------------------------------------------

// NewCollector creates a new metrics collector with the given dependencies.
func NewCollector(tasks health.TaskSource, healthChecker health.Checker) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		tasks:         tasks,
		healthChecker: healthChecker,
		registry:      registry,

		clientsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "clients_created_total",
				Help:      "The total number of Vault clients created, by authentication method.",
			},
			[]string{"auth_method"},
		),

		renewalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renewals_total",
				Help:      "The total number of token renewals, by status.",
			},
			[]string{"status"},
		),

		lastRenewedTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_renewal_timestamp_seconds",
				Help:      "The timestamp of the last successful token renewal, in seconds since the Unix epoch.",
			},
		),

		renewalTasks: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "renewal_tasks",
				Help:      "The number of token renewal tasks, by state.",
			},
			[]string{"state"},
		),
	}

	registry.MustRegister(c.clientsCreated)
	registry.MustRegister(c.renewalsTotal)
	registry.MustRegister(c.lastRenewedTimestamp)
	registry.MustRegister(c.renewalTasks)

	return c
}

// -------------------------------------------------------------------------
// PUBLIC METHODS
// -------------------------------------------------------------------------

// Handler returns the mux serving /metrics and the status API.
func (c *Collector) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	status := web.NewStatus(c.tasks, c.healthChecker)
	status.RegisterHandlers(mux)

	return mux
}

// StartServer serves metrics and status on port until Shutdown is called.
func (c *Collector) StartServer(port int) error {
	addr := fmt.Sprintf(":%d", port)
	server := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.server = server
	c.mu.Unlock()

	slog.Info("Starting HTTP server", "address", addr, "endpoints", []string{"/metrics", "/healthz", "/api/status"})

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server started by StartServer.
func (c *Collector) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	server := c.server
	c.closed = true
	c.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// UpdateMetrics refreshes the per-state renewal task counts.
func (c *Collector) UpdateMetrics() {
	counts := map[vault.TaskState]int{
		vault.TaskStarting: 0,
		vault.TaskRenewing: 0,
		vault.TaskInactive: 0,
		vault.TaskFailed:   0,
		vault.TaskStopped:  0,
	}

	for _, task := range c.tasks.Snapshot() {
		counts[task.State]++
	}

	for state, count := range counts {
		c.renewalTasks.WithLabelValues(string(state)).Set(float64(count))
	}
}

// ClientCreated counts a newly provisioned client.
func (c *Collector) ClientCreated(kind vault.AuthKind) {
	c.clientsCreated.WithLabelValues(string(kind)).Inc()
}

// RenewalSucceeded counts a successful renewal.
func (c *Collector) RenewalSucceeded(at time.Time) {
	c.renewalsTotal.WithLabelValues("success").Inc()
	c.lastRenewedTimestamp.Set(float64(at.Unix()))
}

// RenewalFailed counts a failed renewal.
func (c *Collector) RenewalFailed() {
	c.renewalsTotal.WithLabelValues("error").Inc()
}
