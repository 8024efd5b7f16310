package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/amqp"
	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
	"expensetracker/internal/sheets"
	gsheet "expensetracker/internal/sheets/google"
	memsheet "expensetracker/internal/sheets/memory"
	"expensetracker/internal/worker"
)

const connectAttempts = 5

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig((*config.Config).ValidateWorker)
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting expensetracker-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Error("The worker needs a shared store, memory backend is not supported")
		os.Exit(1)
	}

	store, err := backend.NewFactory(logger).OpenStore(backendCfg)
	if err != nil {
		logger.Error("Failed to open store", log.FieldError, err.Error(), "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer store.Close()

	ledger, err := openLedger(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err.Error(), "sheets_backend", cfg.SheetsBackend)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, nil)

	client, err := amqp.ConnectWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, connectAttempts, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	mirror := worker.NewMirrorWorker(store, ledger, logger)

	// Catch up on anything written while the worker was down.
	if n, err := mirror.Resync(ctx); err != nil {
		logger.Error("Startup resync failed", log.FieldError, err.Error(), "mirrored", n)
	} else {
		logger.Info("Startup resync complete", "mirrored", n)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, mirror.HandleEvent)
	})
	if cfg.ResyncInterval > 0 {
		g.Go(func() error {
			periodicResync(gctx, mirror, cfg.ResyncInterval, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

// periodicResync re-mirrors the whole store every interval until ctx ends.
func periodicResync(ctx context.Context, mirror *worker.MirrorWorker, interval time.Duration, logger *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := mirror.Resync(ctx); err != nil {
				logger.Error("Periodic resync failed", log.FieldError, err.Error())
			}
		}
	}
}

func openLedger(cfg *config.Config, logger *log.Logger) (sheets.LedgerWriter, error) {
	if cfg.SheetsBackend == "memory" {
		logger.Warn("Using in-memory ledger, mirrored rows are not persisted")
		return memsheet.New(), nil
	}
	return gsheet.New(context.Background(), gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleCredentialsJSON,
		CredentialsFile: cfg.GoogleCredentialsFile,
	}, logger)
}
