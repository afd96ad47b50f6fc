package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/habitsync/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/habitsync/internal/logger"
)

const shutdownTimeout = 10 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by the habit web app.

Routes:
  GET  /api/health
  GET  /api/auth/google            start the Google consent flow
  GET  /api/auth/google/callback   finish it and create the log sheet
  GET  /api/auth/status
  POST /api/auth/disconnect
  POST /api/append-log
  GET  /api/get-logs
  POST /api/sync-logs
  GET  /api/state/get
  POST /api/state/set

The server stops gracefully on interrupt.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides SERVER_ADDR and PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ensureServices()
	defer closeServices()

	// Choose the store before listening so a strict deployment with a
	// missing or unreachable backend fails at boot.
	if credentialStore != nil {
		if err := credentialStore.Select(cmd.Context()); err != nil {
			return fmt.Errorf("selecting credential store: %w", err)
		}
		logger.Info("credential store ready", "backend", credentialStore.Name())
	}

	api, err := httpapi.New(&httpapi.Ports{
		Connection: connectionService,
		Logs:       logService,
		State:      stateService,
	}, httpapi.Options{
		FrontendURL: cfg.Server.FrontendURL,
		Region:      cfg.Server.Region,
	})
	if err != nil {
		return err
	}

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := httpapi.NewServer(api.Routes())
	if err := server.Start(addr); err != nil {
		return err
	}
	logger.Info("http api listening", "addr", server.Addr())
	fmt.Fprintf(cmd.OutOrStdout(), "habitsync API listening on %s\n", server.Addr())

	var serveErr error
	select {
	case <-cmd.Context().Done():
	case serveErr = <-server.Err():
		logger.Error("http api stopped", "error", serveErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return serveErr
}
