package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/config"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/database"
	"github.com/syn-namon/toronto-crime-rate-dashboard/internal/report"
)

// NewRunsCmd creates the runs command.
func NewRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored forecast runs",
		Long: `Runs lists forecast runs stored in the results database.

With --last, the most recent run's output table is written as CSV instead,
so past results can be re-exported without recomputation.

Examples:
  # List stored runs
  crimecast runs

  # Re-export the latest run's output table
  crimecast runs --last

  # Latest citywide run only
  crimecast runs --last --scope citywide`,
		Args: cobra.NoArgs,
		RunE: runRunsCmd,
	}

	cmd.Flags().Bool("last", false, "Write the most recent run's output table as CSV")
	cmd.Flags().StringP("scope", "s", "", "Filter by scope: citywide or neighbourhood")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

// runRunsCmd executes the runs command.
func runRunsCmd(cmd *cobra.Command, _ []string) error {
	last, err := cmd.Flags().GetBool("last")
	if err != nil {
		return err
	}
	scope, err := cmd.Flags().GetString("scope")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	// The database must already exist: listing runs never creates one.
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no stored runs: %w", err)
	}
	defer db.Close()

	if last {
		run, err := db.LatestRun(cmd.Context(), scope)
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("no stored runs match")
		}
		_, err = report.NewCSVWriter(os.Stdout).Write(run)
		return err
	}

	runs, err := db.ListRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tSCOPE\tSTARTED\tELAPSED\tRESULTS\tSKIPS\tFALLBACKS")
	for _, meta := range runs {
		if scope != "" && meta.Scope != scope {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			meta.RunID,
			meta.Scope,
			meta.StartedAt.Format("2006-01-02 15:04:05"),
			meta.Elapsed.String(),
			meta.ResultCount,
			meta.SkipCount,
			meta.FallbackCount,
		)
	}
	return tw.Flush()
}
