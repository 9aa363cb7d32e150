package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"evalgo.org/hostconf/internal/api"
	"evalgo.org/hostconf/internal/logging"
	"evalgo.org/hostconf/internal/metrics"
	"evalgo.org/hostconf/internal/validation"
)

var (
	serveInventory string
	servePort      int
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Start the provisioning server",
	Long: `Load and validate the inventory, then serve provisioning documents over HTTP.

The inventory is read once at startup. A missing inventory, a schema
violation or a broken template stops the server before it listens.

Examples:
  hostconf serve
  hostconf serve --inventory /etc/hostconf/hosts.yml --port 8080
  HC_RENDER_ALLOW_CUSTOM_TEMPLATES=true hostconf serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveInventory, "inventory", "i", "", "inventory file (default: inventory.path from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default: server.port from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveInventory != "" {
		cfg.Inventory.Path = serveInventory
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	logger, closer, err := logging.FromConfig(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer closer.Close()

	log := logger.WithComponent("serve")

	svc, doc, err := loadService(cfg, nil)
	if err != nil {
		log.Error("startup failed", "inventory", cfg.Inventory.Path, "error", err)
		return err
	}

	for _, w := range validation.Lint(doc, svc.Index().Policy().Key) {
		log.Warn("inventory lint", "field", w.Field, "message", w.Message)
	}
	for _, c := range svc.Index().Conflicts() {
		log.Warn("duplicate MAC",
			"mac", c.MAC,
			"host", c.Hostname,
			"interface", c.Interface,
			"winner", c.Winner.Hostname+"."+c.Winner.Interface,
		)
	}

	// Create API server
	server := api.New(cfg, svc, logger, metrics.New())

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		if err == nil {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
