package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/api"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/backend"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/config"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/database"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/pipeline"
	"github.com/SAMUEL-ST-16/ExtractReq/internal/theme"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ExtractReq HTTP service",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	store, err := database.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	themeManager := theme.NewManager(store, theme.Mode(cfg.Theme.Default))
	if err := themeManager.Initialize(ctx); err != nil {
		log.Warn().Err(err).Msg("Theme preference unavailable, using ambient default")
	}

	client := backend.NewClient(
		cfg.Backend.StructuredURL,
		cfg.Backend.LegacyURL,
		time.Duration(cfg.Backend.TimeoutSeconds)*time.Second,
	)
	controller := pipeline.NewController(pipeline.NewStateStore(), client, store)
	pipeline.DemoDelay = time.Duration(cfg.Demo.DelayMs) * time.Millisecond

	router := api.NewRouter(cfg, controller, store, themeManager, staticFS)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("theme", string(themeManager.Current())).Msg("ExtractReq listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}
	return nil
}
