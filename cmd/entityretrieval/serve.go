package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/entityretrieval/entityretrieval/internal/httpapi"
	"github.com/entityretrieval/entityretrieval/internal/retrieval"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP lookup server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		metrics, shutdownTelemetry, err := initMetrics(ctx)
		if err != nil {
			return err
		}
		defer shutdownTelemetry(context.Background())

		s, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer s.Close()

		svc := retrieval.NewService(s)
		server := httpapi.New(svc, s, metrics)

		httpServer := &http.Server{
			Addr:    cfg.Server.ListenAddr,
			Handler: server.Handler(),
		}

		slog.Info("entityretrieval serving", "listen_addr", cfg.Server.ListenAddr)

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping…")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}

		slog.Info("goodbye")
		return nil
	},
}
