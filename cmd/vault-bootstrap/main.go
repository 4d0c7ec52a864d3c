// -------------------------------------------------------------------------------
// vault-bootstrap - CLI Entry Point
//
// Provisions an authenticated HashiCorp Vault client from the environment
// (VAULT_ADDR, VAULT_CREDENTIAL or VAULT_TOKEN) or from explicit settings,
// keeps its token lease renewed, and serves Prometheus metrics and renewal
// status until interrupted.
// -------------------------------------------------------------------------------

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"vault-bootstrap/pkg/app"
	"vault-bootstrap/pkg/config"

	"github.com/spf13/pflag"
)

// -------------------------------------------------------------------------
// BUILD METADATA
// -------------------------------------------------------------------------

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

// -------------------------------------------------------------------------
// MAIN
// -------------------------------------------------------------------------

func main() {
	// --- Parse command line flags ---
	var configPath string
	var address string
	var credential string
	var showVersion bool

	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file or directory")
	pflag.StringVarP(&address, "address", "a", "", "Vault server address (overrides VAULT_ADDR)")
	pflag.StringVar(&credential, "credential", "", "Vault token or roleId:secretId[:mountPath] (requires --address)")
	pflag.BoolVarP(&showVersion, "version", "v", false, "Show version information")
	pflag.Parse()

	if showVersion {
		fmt.Printf("vault-bootstrap %s (commit: %s, built: %s)\n", version, commit, buildTime)
		os.Exit(0)
	}

	// --- Load configuration ---
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			slog.Error("Failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := applyVaultFlags(cfg, address, credential); err != nil {
		slog.Error("Invalid command line flags", "error", err)
		os.Exit(1)
	}

	// --- Initialize and start application ---
	application, err := app.New(cfg)
	if err != nil {
		slog.Error("Failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("Failed to start application", "error", err)
		application.Stop()
		os.Exit(1)
	}

	slog.Info("Application started",
		"version", version,
		"commit", commit,
	)

	// --- Wait for shutdown signal ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// --- Graceful shutdown ---
	slog.Info("Shutdown signal received, stopping application...")
	application.Stop()
	slog.Info("Application stopped")
}

// -------------------------------------------------------------------------
// HELPERS
// -------------------------------------------------------------------------

// applyVaultFlags overrides the vault section of cfg with --address and
// --credential. A configured credential is kept when only --address is given.
func applyVaultFlags(cfg *config.Config, address, credential string) error {
	if address == "" {
		if credential != "" {
			return fmt.Errorf("--credential requires --address")
		}
		return nil
	}

	cfg.Vault.Address = address
	if credential != "" {
		cfg.Vault.Credential = credential
		cfg.Vault.CredentialFile = ""
	}

	return cfg.Vault.Validate()
}
