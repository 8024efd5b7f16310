package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"expensetracker/internal/backend"
	"expensetracker/internal/core"
	"expensetracker/internal/services"
)

func summaryCmd(e *env) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard totals for the last 7 days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := backend.NewFactory(e.logger).Build(cmd.Context(), e.backend)
			if err != nil {
				return err
			}
			defer app.Cleanup()

			d := app.Dashboard.Load(cmd.Context())
			if d.Degraded() {
				return errors.New(d.Notice)
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			return printSummary(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the dashboard as JSON")
	return cmd
}

func printSummary(w io.Writer, d services.Dashboard) error {
	s := d.Summary
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Window\t%s to %s\n", s.Window.Start, s.Window.End)
	fmt.Fprintf(tw, "Total income\t%s\n", core.FormatCurrency(s.TotalIncome))
	fmt.Fprintf(tw, "Total expense\t%s\n", core.FormatCurrency(s.TotalExpense))
	fmt.Fprintf(tw, "Balance\t%s\n", core.FormatCurrency(s.Balance))

	if len(s.ByCategory) > 0 {
		fmt.Fprintln(tw, "\nExpense by category\t")
		for _, ct := range s.ByCategory {
			fmt.Fprintf(tw, "  %s\t%s\t%d%%\n", ct.Label, ct.Formatted, s.Share(ct))
		}
	}
	if len(d.Recent) > 0 {
		fmt.Fprintln(tw, "\nRecent\t")
		for _, t := range d.Recent {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", t.Date.Label(), t.Category.TitleWithIcon(), t.FormattedAmount(), t.Note)
		}
	}
	return tw.Flush()
}
