package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressroom/pressroom/internal/api"
	"github.com/pressroom/pressroom/pkg/pressroom/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load configuration", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sel, err := cfg.BuildSelector(ctx, logger)
	if err != nil {
		logger.Error("build storage selector", "err", err)
		os.Exit(1)
	}
	go sel.Run(ctx)

	blobs, err := cfg.BuildBlobStore(ctx)
	if err != nil {
		logger.Error("build blob store", "err", err)
		os.Exit(1)
	}

	server := api.NewServer(api.Options{
		Selector:   sel,
		Blobs:      blobs,
		Logger:     logger,
		JWTSecret:  cfg.Auth.JwtSecret,
		BypassAuth: cfg.Auth.BypassAuthInNonProd && !cfg.Production(),
	})

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: server.Routes(),
	}

	go func() {
		status := sel.Status()
		logger.Info("pressroom server starting",
			"port", cfg.Port,
			"environment", cfg.Environment,
			"storage_type", status.StorageType,
			"can_persist", status.CanPersist,
			"blob_backend", cfg.Storage.Type)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	logger.Info("server exiting")
}
