package main

import (
	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/log"
	"expensetracker/internal/storage"
	"expensetracker/internal/storage/postgres"
)

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long:  `Apply every pending schema migration to the database selected by DATA_BACKEND.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMigrate(e)
		},
	}
}

func runMigrate(e *env) error {
	logger := e.logger.With(log.FieldOperation, log.OpMigrate, "backend", e.backend.Type.String())

	switch e.backend.Type {
	case backend.SQLiteBackend:
		if err := storage.RunMigrations(e.backend.SQLiteDBPath); err != nil {
			return err
		}
		logger.Info("Migrations applied", "db_path", e.backend.SQLiteDBPath)
	case backend.PostgresBackend:
		if err := postgres.RunMigrations(e.backend.DatabaseURL); err != nil {
			return err
		}
		logger.Info("Migrations applied")
	default:
		logger.Warn("Nothing to migrate for this backend")
	}
	return nil
}
