package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/cli"
	"expensetracker/internal/config"
	"expensetracker/internal/log"
)

// env is what every command needs once flags have been applied.
type env struct {
	cfg     *config.Config
	logger  *log.Logger
	backend backend.Config
}

func newRootCmd() *cobra.Command {
	var (
		dataBackend string
		logLevel    string
		e           env
	)

	root := &cobra.Command{
		Use:           "expensetracker-admin",
		Short:         "Maintenance commands for the expense tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.LoadEnvFile()
			cfg := config.Load()
			if cmd.Flags().Changed("backend") {
				cfg.DataBackend = dataBackend
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			bc, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			e = env{cfg: cfg, logger: cli.SetupLogger(cfg, log.ComponentAdmin), backend: bc}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dataBackend, "backend", "", "data backend (sqlite, postgres, memory); defaults to DATA_BACKEND")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(migrateCmd(&e))
	root.AddCommand(seedCmd(&e))
	root.AddCommand(summaryCmd(&e))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
