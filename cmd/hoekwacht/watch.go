package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hoekwacht/hoekwacht/internal/api"
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the background watcher (and optionally the HTTP API)",
		Long: `Start the polling loop that matches active search requests against the
configured ad source on a fixed interval and alerts clients about new
matches. With --serve, the HTTP API runs alongside it.`,
		RunE: runWatch,
	}

	cmd.Flags().Bool("serve", false, "also serve the HTTP API")
	cmd.Flags().String("port", "", "HTTP port (overrides server.port)")

	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	w, err := initWatcher(store)
	if err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	serve, _ := cmd.Flags().GetBool("serve")
	if !serve {
		<-ctx.Done()
		return nil
	}

	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = viper.GetString("server.port")
	}

	handler := api.NewHandler(store, w, viper.GetString("uploads.dir"))
	router := api.SetupRouter(handler, viper.GetString("server.environment"))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP API listening", "addr", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
	case serveErr := <-errCh:
		return fmt.Errorf("http server: %w", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	return nil
}
