package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/buildgate/buildgate/internal/audit"
	"github.com/buildgate/buildgate/internal/clog"
	"github.com/buildgate/buildgate/internal/config"
	"github.com/buildgate/buildgate/internal/executor"
	"github.com/buildgate/buildgate/internal/gateway"
	"github.com/buildgate/buildgate/internal/sandbox"
	"github.com/buildgate/buildgate/internal/tool"
)

// shutdownGrace is how long in-flight requests may finish after a
// termination signal.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway server",
	Long: `Run the buildgate HTTP gateway.

Loads the configuration, builds the tool catalog, and serves POST /mcp
and GET /health until interrupted. SIGINT or SIGTERM triggers a graceful
shutdown that lets in-flight tool calls finish.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Auth.Token == "" {
		return fmt.Errorf("no auth token configured; run 'buildgate setup' or set %s", config.EnvToken)
	}

	level := clog.ParseLevel(cfg.Log.Level)
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = clog.DefaultLogPath()
	}
	if err := clog.Configure(logPath, level, false); err != nil {
		return fmt.Errorf("failed to configure logging: %w", err)
	}
	defer func() { _ = clog.Close() }()

	auditFile, err := openAuditLog(logPath)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer auditFile.Close()

	server := buildServer(cfg, audit.NewLogger(auditFile))
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}
	fmt.Printf("buildgate listening on %s\n", server.ListenAddr())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	clog.Info("received %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown incomplete: %w", err)
	}
	return nil
}

// buildServer wires the configuration into the gateway's collaborators.
func buildServer(cfg *config.Config, auditLogger *audit.Logger) *gateway.Server {
	box := sandbox.New(cfg.Batch.AllowedDirs, cfg.Batch.AllowedExtensions)
	host := executor.NewHostExecutor(cfg.Exec.MaxOutputBytes)
	registry := tool.NewCatalog(tool.CatalogConfig{
		Shell:          cfg.Exec.Shell,
		PowerShell:     cfg.Exec.PowerShell,
		DefaultTimeout: cfg.Exec.TimeoutDuration(2 * time.Minute),
	}, box, host)

	limiter := gateway.NewRateLimiter(
		cfg.RateLimit.WindowDuration(time.Minute),
		cfg.RateLimit.MaxRequests,
	)

	return gateway.NewServer(cfg.Listen, registry, gateway.NewAuthenticator(cfg.Auth.Token), limiter, auditLogger)
}

// openAuditLog opens audit.log for appending in the same directory as
// the main log file.
func openAuditLog(logPath string) (*os.File, error) {
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dir, "audit.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}
