package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/storage"
)

var runsLimit int

func init() {
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", DefaultListLimit, "Maximum runs to show (0 for all)")
	runsSearchCmd.Flags().IntVarP(&runsLimit, "limit", "n", DefaultListLimit, "Maximum runs to show (0 for all)")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsSearchCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored runs",
	Long: `Manage runs stored in the local database.

Run IDs may be abbreviated to any unique prefix.`,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search stored runs by topic, paper title or author",
	Long: `Full-text search over stored runs.

Examples:
  pv runs search healthcare
  pv runs search "smith diagnosis"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRunsSearch,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	runs, err := db.ListRuns(runsLimit)
	if err != nil {
		exitWithError(ExitError, "listing runs: %v", err)
	}
	return outputRuns(runs)
}

func runRunsSearch(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()

	runs, err := db.SearchRuns(strings.Join(args, " "), runsLimit)
	if err != nil {
		exitWithError(ExitError, "searching runs: %v", err)
	}
	return outputRuns(runs)
}

func outputRuns(runs []storage.RunSummary) error {
	if !humanOutput {
		if runs == nil {
			runs = []storage.RunSummary{}
		}
		return outputJSON(runs)
	}
	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}
	fmt.Print(formatRunsTable(runs))
	return nil
}

// formatRunsTable renders run summaries as an aligned table.
func formatRunsTable(runs []storage.RunSummary) string {
	const idWidth = 8
	topicWidth := len("TOPIC")
	for _, r := range runs {
		topicWidth = max(topicWidth, len([]rune(truncateString(r.Topic, ListTopicMaxLen))))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s  %s  %s  %s  %s\n",
		padRight("ID", idWidth),
		padRight("TOPIC", topicWidth),
		padRight("STYLE", 7),
		padLeft("PAPERS", 6),
		padLeft("WORDS", 7),
		"CREATED")
	for _, r := range runs {
		fmt.Fprintf(&sb, "%s  %s  %s  %s  %s  %s\n",
			padRight(shortID(r.ID), idWidth),
			padRight(truncateString(r.Topic, ListTopicMaxLen), topicWidth),
			padRight(r.Style, 7),
			padLeft(humanize.Comma(int64(r.PaperCount)), 6),
			padLeft(humanize.Comma(int64(r.WordCount)), 7),
			humanize.Time(r.CreatedAt))
	}
	return sb.String()
}
