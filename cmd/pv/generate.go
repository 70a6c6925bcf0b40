package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/research"
	"github.com/matsen/paperview/internal/storage"
)

var (
	generateStyle     string
	generateLength    string
	generateMaxPapers int
	generateFocus     []string
	generateSources   []string
	generateNoSave    bool
	generateFull      bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateStyle, "style", "s", "", "Citation style (apa, mla, chicago, ieee); defaults to config")
	generateCmd.Flags().StringVar(&generateLength, "length", backend.LengthMedium, "Draft length (short, medium, long)")
	generateCmd.Flags().IntVar(&generateMaxPapers, "max-papers", backend.DefaultMaxPapers, "Maximum papers to retrieve")
	generateCmd.Flags().StringSliceVar(&generateFocus, "focus", nil, "Focus areas (repeatable)")
	generateCmd.Flags().StringSliceVar(&generateSources, "source", nil, "Restrict to sources, e.g. arxiv, semantic_scholar (repeatable)")
	generateCmd.Flags().BoolVar(&generateNoSave, "no-save", false, "Do not store the run in the local database")
	generateCmd.Flags().BoolVar(&generateFull, "full", false, "Output the full backend document instead of a summary")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate <topic>",
	Short: "Generate a literature review for a topic",
	Long: `Ask the backend to search sources, summarize papers and draft a review.

The run is stored locally so 'pv browse', 'pv refs' and 'pv cite' can
reopen it without calling the backend again.

Examples:
  pv generate "machine learning in healthcare"
  pv generate "CRISPR off-target effects" --style ieee --length long
  pv generate "graph neural networks" --source arxiv --max-papers 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

// GenerateResponse summarizes a generated run.
type GenerateResponse struct {
	Run        *storage.RunSummary `json:"run,omitempty"`
	Topic      string              `json:"topic"`
	Status     string              `json:"status"`
	PaperCount int                 `json:"paper_count"`
	WordCount  int                 `json:"word_count"`
}

func runGenerate(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(strings.Join(args, " "))
	if topic == "" {
		exitWithError(ExitError, "topic must not be empty")
	}
	if !validLength(generateLength) {
		exitWithError(ExitError, "invalid --length %q (use short, medium or long)", generateLength)
	}
	if generateMaxPapers <= 0 {
		exitWithError(ExitError, "--max-papers must be positive")
	}

	req := backend.NewRequest(topic, mustParseStyle(generateStyle))
	req.Length = generateLength
	req.MaxPapers = generateMaxPapers
	req.FocusAreas = generateFocus
	req.Sources = generateSources

	client := newBackendClient()
	if humanOutput {
		fmt.Fprintf(os.Stderr, "Researching %q via %s (this can take a few minutes)...\n", topic, client.BaseURL())
	}

	doc, err := client.Generate(context.Background(), req)
	if err != nil {
		exitWithBackendError(err)
	}

	resp := GenerateResponse{
		Topic:      doc.Topic,
		Status:     doc.Status,
		PaperCount: len(doc.References()),
		WordCount:  doc.Draft.WordCount(),
	}
	if !generateNoSave {
		db := mustOpenDatabase()
		defer db.Close()
		sum, err := db.SaveRun(doc, req.CitationStyle)
		if err != nil {
			exitWithError(ExitError, "saving run: %v", err)
		}
		resp.Run = &sum
	}

	if generateFull {
		return outputJSON(doc)
	}
	if humanOutput {
		printGenerateHuman(resp, doc)
		return nil
	}
	return outputJSON(resp)
}

func validLength(length string) bool {
	switch length {
	case backend.LengthShort, backend.LengthMedium, backend.LengthLong:
		return true
	}
	return false
}

func printGenerateHuman(resp GenerateResponse, doc *research.Document) {
	fmt.Printf("%s\n", resp.Topic)
	fmt.Printf("  %s papers, %s words in draft\n",
		humanize.Comma(int64(resp.PaperCount)), humanize.Comma(int64(resp.WordCount)))
	for _, f := range doc.Summaries.KeyFindings {
		fmt.Printf("  - %s\n", f)
	}
	if resp.Run != nil {
		fmt.Printf("\nSaved as run %s\n", shortID(resp.Run.ID))
		fmt.Printf("Open it with: pv browse %s\n", shortID(resp.Run.ID))
	}
}

// shortID abbreviates a run ID for display; prefixes resolve back to runs.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
