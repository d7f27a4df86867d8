package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"missionreport/api"
	"missionreport/config"
	"missionreport/logger"
)

var startServerPort string

const shutdownTimeout = 5 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the API server",
	Long: `Starts the HTTP API server. Press Ctrl+C to shut it down gracefully;
requests in flight get a few seconds to finish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := startServerPort
		if !cmd.Flags().Changed("port") {
			port = config.AppConfig.Server.Port
		}
		if port == "" {
			logger.Error("Start Command: Server port is empty after checking flag and config, defaulting to 8778")
			port = "8778"
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := buildServices(ctx)
		if err != nil {
			return err
		}
		svc.installHandlers()

		server := &http.Server{
			Addr:              ":" + port,
			Handler:           api.NewRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Start Command: Listening on :%s", port)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Start Command: Shutdown signal received...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("Start Command: Graceful shutdown failed: %v", err)
				return err
			}
			logger.Info("Start Command: Gracefully stopped.")
			return nil
		})

		if err := g.Wait(); err != nil {
			logger.Error("Start Command: server exited: %v", err)
			return err
		}
		return nil
	},
}

func init() {
	startCmd.Flags().StringVarP(&startServerPort, "port", "p", "8778", "Port for the API server (overrides config)")
	rootCmd.AddCommand(startCmd)
}
