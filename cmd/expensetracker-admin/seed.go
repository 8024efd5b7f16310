package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/services"
)

func seedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the starter categories",
		Long: `Insert a starter set of income and expense categories.
Nothing is written when at least one category already exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := backend.NewFactory(e.logger).Build(cmd.Context(), e.backend)
			if err != nil {
				return err
			}
			defer app.Cleanup()

			n, err := app.Categories.Seed(cmd.Context(), services.DefaultCategories)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Categories already present, nothing seeded.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories.\n", n)
			return nil
		},
	}
}
