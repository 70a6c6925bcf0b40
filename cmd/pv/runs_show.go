package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/research"
)

func init() {
	runsCmd.AddCommand(runsShowCmd)
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a stored run (latest if no ID)",
	Long: `Show a stored run. JSON output is the full backend document.

Examples:
  pv runs show
  pv runs show 3f2a --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRunsShow,
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	run := mustGetRun(db, args)
	if !humanOutput {
		return outputJSON(run)
	}

	doc := run.Document
	fmt.Printf("%s\n", doc.Topic)
	fmt.Printf("  ID:      %s\n", run.ID)
	fmt.Printf("  Created: %s (%s)\n", run.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(run.CreatedAt))
	fmt.Printf("  Style:   %s\n", run.Style)
	fmt.Printf("  Papers:  %d\n", len(doc.References()))
	fmt.Printf("  Draft:   %s words in %d sections\n",
		humanize.Comma(int64(doc.Draft.WordCount())), len(doc.Draft.Sections))
	printSummariesHuman(doc.Summaries)
	return nil
}

func printSummariesHuman(s research.Summaries) {
	if len(s.KeyFindings) > 0 {
		fmt.Println("\nKey findings:")
		for _, f := range s.KeyFindings {
			fmt.Printf("  - %s\n", f)
		}
	}
	if len(s.Thematic) > 0 {
		fmt.Println("\nThemes:")
		for _, t := range s.Thematic {
			fmt.Printf("  %s: %s\n", t.Theme, strings.TrimSpace(t.Summary))
		}
	}
	if len(s.Methodology) > 0 {
		fmt.Println("\nMethodology:")
		for _, m := range s.Methodology {
			fmt.Printf("  %s: %s\n", m.Approach, strings.TrimSpace(m.Description))
		}
	}
}
