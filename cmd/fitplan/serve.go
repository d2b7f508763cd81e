// ABOUTME: CLI command for running the HTTP API.
// ABOUTME: Serves the gin router until SIGINT/SIGTERM, then shuts down gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/harperreed/fitplan/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the JSON HTTP API.

ROUTES:

  GET  /healthz
  GET  /users/:id/profile               PUT to create or update
  POST /users/:id/plans/:date           Generate (201) or regenerate (200)
  GET  /users/:id/plans/:date
  POST /users/:id/plans/:date/swap      {"slot": "lunch", "exclude": [...]}
  POST /users/:id/plans/:date/water     {"ml": 250}
  GET  /users/:id/plans/:date/summary
  GET  /rotation/:day?tier=1800
  POST /content/reload

A missing profile answers 412, storage failures answer 500 with
"retryable": true.

The listen address comes from --addr, FITPLAN_LISTEN_ADDR or
"listen_addr" in the config file (default :8080).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveAddr
		if addr == "" {
			addr = cfg.GetListenAddr()
		}

		gin.SetMode(gin.ReleaseMode)
		router := api.NewRouter(api.NewHandler(plans, repo, loader, logger))
		srv := &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
		logger.Info("http server started", "addr", addr)

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	rootCmd.AddCommand(serveCmd)
}
