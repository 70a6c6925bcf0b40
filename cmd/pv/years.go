package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/query"
)

func init() {
	rootCmd.AddCommand(yearsCmd)
}

var yearsCmd = &cobra.Command{
	Use:   "years [run-id]",
	Short: "List the publication years covered by a run",
	Long: `List every year from the oldest to the newest parseable publication
year in a run's references. These are the values accepted by --year.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runYears,
}

func runYears(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)

	years := query.YearRange(run.Document.References())
	if !humanOutput {
		if years == nil {
			years = []int{}
		}
		return outputJSON(years)
	}
	if len(years) == 0 {
		fmt.Println("No publication years")
		return nil
	}
	for _, y := range years {
		fmt.Println(y)
	}
	return nil
}
