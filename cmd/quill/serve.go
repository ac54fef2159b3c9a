package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/quill/pkg/adapters/http"
	"github.com/aretw0/quill/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored sessions over HTTP",
	Long:  `Exposes stored anchors as JSON and process metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := getLogger(cmd)
		if err != nil {
			return err
		}
		port, _ := cmd.Flags().GetString("port")

		be, err := getBackend(cmd)
		if err != nil {
			return err
		}
		defer be.Close()

		srv := &http.Server{
			Addr: ":" + port,
			Handler: httpAdapter.NewHandler(be.Store,
				httpAdapter.WithGatherer(prometheus.DefaultGatherer),
				httpAdapter.WithLogger(logger),
			),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := runner.SignalContext(cmd.Context())
		defer stop()

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting quill server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err

		case <-ctx.Done():
			logger.Info("shutting down")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("quill server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
