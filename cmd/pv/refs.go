package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/query"
	"github.com/matsen/paperview/internal/reference"
)

var (
	refsSearch string
	refsSort   string
	refsYear   string
	refsLimit  int
)

func init() {
	refsCmd.PersistentFlags().StringVarP(&refsSearch, "search", "q", "", "Keep references whose title, author or journal contains this text")
	refsCmd.PersistentFlags().StringVar(&refsSort, "sort", query.ByRelevance.String(), "Sort by relevance, year, citations or alphabetical")
	refsCmd.PersistentFlags().StringVarP(&refsYear, "year", "y", query.AllYears, "Keep references from this year")
	refsCmd.Flags().IntVarP(&refsLimit, "limit", "n", 0, "Maximum references to show (0 for all)")
	rootCmd.AddCommand(refsCmd)
}

var refsCmd = &cobra.Command{
	Use:   "refs [run-id]",
	Short: "Query a run's references",
	Long: `List the references of a stored run (latest if no ID), filtered and sorted.

Examples:
  pv refs --sort year
  pv refs 3f2a --search smith --year 2021
  pv refs --sort citations -n 10 --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefs,
}

// mustQueryState builds the query state from the refs flags, exits on error.
func mustQueryState() query.State {
	state, err := queryState(refsSearch, refsSort, refsYear)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return state
}

func queryState(search, sort, year string) (query.State, error) {
	state := query.DefaultState()
	state.Search = search
	state.Year = year
	if sort != "" {
		key, ok := query.ParseSortKey(sort)
		if !ok {
			names := make([]string, 0, len(query.SortKeys()))
			for _, k := range query.SortKeys() {
				names = append(names, k.String())
			}
			return state, fmt.Errorf("invalid sort %q (use %s)", sort, strings.Join(names, ", "))
		}
		state.Sort = key
	}
	return state, nil
}

func runRefs(cmd *cobra.Command, args []string) error {
	state := mustQueryState()

	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)

	refs := query.Run(run.Document.References(), state)
	if refsLimit > 0 && len(refs) > refsLimit {
		refs = refs[:refsLimit]
	}

	if !humanOutput {
		return outputJSON(refs)
	}
	if len(refs) == 0 {
		fmt.Println("No references match")
		return nil
	}
	fmt.Print(formatRefsTable(refs))
	return nil
}

// formatRefsTable renders references as an aligned table.
func formatRefsTable(refs []reference.Reference) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s  %s  %s  %s  %s\n",
		padRight("YEAR", 4), padLeft("REL", 4), padLeft("CITES", 6), padRight("FIRST AUTHOR", 20), "TITLE")
	for _, r := range refs {
		fmt.Fprintf(&sb, "%s  %s  %s  %s  %s\n",
			padRight(r.Year.String(), 4),
			padLeft(fmt.Sprintf("%d%%", r.RelevancePercent()), 4),
			padLeft(humanize.Comma(int64(r.CitationsCount)), 6),
			padRight(truncateString(r.FirstAuthor(), 20), 20),
			truncateString(r.Title, RefTitleMaxLen))
	}
	return sb.String()
}
