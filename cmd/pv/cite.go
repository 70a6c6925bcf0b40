package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/clipboard"
	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/export"
	"github.com/matsen/paperview/internal/reference"
)

var (
	citeStyle    string
	citeIndex    int
	citeInText   bool
	citeCopy     bool
	citeDownload bool
	citeDir      string
)

func init() {
	citeCmd.Flags().StringVarP(&citeStyle, "style", "s", "", "Citation style (apa, mla, chicago, ieee); defaults to the run's style")
	citeCmd.Flags().IntVarP(&citeIndex, "index", "i", 0, "Only the citation at this 1-based position")
	citeCmd.Flags().BoolVar(&citeInText, "in-text", false, "Output in-text citations such as (Smith, 2021)")
	citeCmd.Flags().BoolVarP(&citeCopy, "copy", "c", false, "Copy the citations to the clipboard")
	citeCmd.Flags().BoolVarP(&citeDownload, "download", "d", false, "Write references_<style>.txt to the download directory")
	citeCmd.Flags().StringVar(&citeDir, "dir", "", "Directory for --download; defaults to config download_dir")
	rootCmd.AddCommand(citeCmd)
}

var citeCmd = &cobra.Command{
	Use:   "cite [run-id]",
	Short: "Format a run's bibliography",
	Long: `Format the bibliography of a stored run (latest if no ID).

References keep the order the backend returned them in, so [n]
placeholders in the draft match the numbering here.

Examples:
  pv cite --human
  pv cite --style mla --copy
  pv cite -i 3 --style ieee --copy
  pv cite 3f2a --style chicago --download`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCite,
}

// CiteResponse is the JSON output of the cite command.
type CiteResponse struct {
	Style     string   `json:"style"`
	Citations []string `json:"citations"`
	Copied    bool     `json:"copied,omitempty"`
	Path      string   `json:"path,omitempty"`
}

func runCite(cmd *cobra.Command, args []string) error {
	if err := validateCiteFlags(citeInText, citeDownload); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)

	style := mustParseStyle(citeStyle)
	if citeStyle == "" {
		if s, ok := citation.ParseStyle(run.Style); ok {
			style = s
		}
	}

	refs := run.Document.References()
	if citeIndex != 0 {
		if citeIndex < 1 || citeIndex > len(refs) {
			exitWithError(ExitDataError, "--index %d out of range (1-%d)", citeIndex, len(refs))
		}
		refs = refs[citeIndex-1 : citeIndex]
	}

	citations := formatCitations(refs, style, citeInText)
	text := citation.Join(citations)
	resp := CiteResponse{Style: style.String(), Citations: citations}

	if citeCopy {
		if err := clipboard.Copy(text); err != nil {
			if errors.Is(err, clipboard.ErrClipboardUnavailable) {
				exitWithError(ExitError, "clipboard unavailable: install xclip, xsel or wl-clipboard")
			}
			exitWithError(ExitError, "copying citations: %v", err)
		}
		resp.Copied = true
	}
	if citeDownload {
		dir := citeDir
		if dir == "" {
			mustLoadConfig()
			dir = config.GetDownloadDir()
		}
		path, err := export.WriteCitations(config.ExpandPath(dir), refs, style)
		if err != nil {
			exitWithError(ExitError, "writing citations: %v", err)
		}
		resp.Path = path
	}

	if !humanOutput {
		return outputJSON(resp)
	}
	if text != "" {
		fmt.Println(text)
	}
	if resp.Copied {
		fmt.Printf("\nCopied %d citations (%s)\n", len(citations), style.Label())
	}
	if resp.Path != "" {
		fmt.Printf("\nSaved %s\n", resp.Path)
	}
	return nil
}

// validateCiteFlags rejects flag combinations whose outputs would disagree.
// The download file always holds the full bibliography.
func validateCiteFlags(inText, download bool) error {
	if inText && download {
		return fmt.Errorf("--in-text cannot be combined with --download; the file holds full references")
	}
	return nil
}

func formatCitations(refs []reference.Reference, style citation.Style, inText bool) []string {
	if !inText {
		return citation.FormatAll(refs, style)
	}
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = citation.InText(ref)
	}
	return out
}
