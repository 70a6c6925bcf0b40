package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/dashboard"
)

func init() {
	rootCmd.AddCommand(analyticsCmd)
}

var analyticsCmd = &cobra.Command{
	Use:   "analytics [run-id]",
	Short: "Show a run's analytics dashboard",
	Long: `Show word counts, quality scores, source and citation statistics,
and publication trends for a stored run (latest if no ID).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalytics,
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)

	d := dashboard.Build(run.Document.Analytics)
	if humanOutput {
		fmt.Print(dashboard.FormatTable(d))
		return nil
	}
	return outputJSON(d)
}
