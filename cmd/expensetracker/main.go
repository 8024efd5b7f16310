package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	apphttp "expensetracker/internal/http"
	"expensetracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).Validate)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	app, err := backend.NewFactory(logger).Build(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Categories:   app.Categories,
		Transactions: app.Transactions,
		Dashboard:    app.Dashboard,
		Store:        app.Store,
	}, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if err := app.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err.Error())
		}
	})

	logger.Info("Starting expensetracker server",
		"port", cfg.Port, "backend", cfg.DataBackend, "cache", cfg.CacheBackend, "events", app.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		_ = app.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
