package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/elbader17/sheetrelay/pkg/server"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the relay HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Server.Address = address
			}

			logger := newLogger(cfg, nil)
			svc, err := newRelayService(cfg, logger)
			if err != nil {
				return err
			}

			srv := server.New(svc, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Listen(cfg.Server.Address)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info().Msg("Shutting down sheetrelay...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("Error during shutdown")
				return err
			}
			logger.Info().Msg("Server stopped gracefully")
			return nil
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "listen address, overrides server.address")
	return cmd
}
