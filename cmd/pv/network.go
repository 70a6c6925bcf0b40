package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/export"
	"github.com/matsen/paperview/internal/viz"
)

var (
	networkHTML   string
	networkLayout string
)

func init() {
	networkCmd.Flags().StringVar(&networkHTML, "html", "", "Write an interactive HTML graph to this file")
	networkCmd.Flags().StringVar(&networkLayout, "layout", "force", "Graph layout for --html ("+strings.Join(viz.ValidLayouts, ", ")+")")
	rootCmd.AddCommand(networkCmd)
}

var networkCmd = &cobra.Command{
	Use:   "network [run-id]",
	Short: "Show the keyword network linking a run's papers",
	Long: `Show the citation network of a stored run (latest if no ID).
Papers are linked when they share keywords. Runs whose backend response
has no network get one built from the references.

Examples:
  pv network --human
  pv network 3f2a --html network.html --layout circle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNetwork,
}

func runNetwork(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)

	n := run.Document.Network()
	if networkHTML != "" {
		return writeNetworkHTML(run.Document.Topic, n)
	}
	if !humanOutput {
		return outputJSON(n)
	}

	s := n.Stats
	fmt.Printf("Papers:          %d\n", s.TotalPapers)
	fmt.Printf("Connections:     %d\n", s.TotalConnections)
	fmt.Printf("Avg. per paper:  %.2f\n", s.AverageConnections)
	fmt.Printf("Density:         %.2f\n", s.Density)
	if s.MostConnectedPaper != "" {
		fmt.Printf("Most connected:  %s\n", truncateString(s.MostConnectedPaper, RefTitleMaxLen))
	}
	if len(n.CentralPapers) > 0 {
		fmt.Println("\nCentral papers:")
		for i, ref := range n.CentralPapers {
			fmt.Printf("  %d. %s\n", i+1, truncateString(ref.Title, RefTitleMaxLen))
		}
	}
	return nil
}

func writeNetworkHTML(topic string, n citation.Network) error {
	page, err := viz.GenerateHTML(viz.FromNetwork(topic, n), viz.HTMLOptions{Layout: networkLayout})
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	path := config.ExpandPath(networkHTML)
	if err := export.WriteFileAtomic(path, []byte(page)); err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}
	if humanOutput {
		fmt.Printf("Saved %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Path: path, Count: len(n.Nodes)})
}
