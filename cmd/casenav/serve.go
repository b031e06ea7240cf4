package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/casenav"
	"github.com/aretw0/casenav/internal/cli"
	httpAdapter "github.com/aretw0/casenav/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the navigation engine as a JSON API over HTTP, with server-sent events per session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Listen = listen
		}
		logger, err := cli.NewLogger(cfg, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		st, err := cli.Build(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithVersion(strings.TrimSpace(casenav.Version)),
		}
		if st.Metrics != nil {
			opts = append(opts, httpAdapter.WithMetrics(st.Metrics.Handler()))
		}

		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           httpAdapter.NewHandler(st.Engine, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting casenav server", "addr", srv.Addr, "apps_dir", cfg.AppsDir, "store", cfg.Store.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			logger.Info("Shutting down", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "Address to listen on (overrides listen)")
}
