package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/export"
	"github.com/matsen/paperview/internal/research"
	"github.com/matsen/paperview/internal/storage"
)

var (
	draftSection string
	draftResolve bool
	draftStyle   string
	draftFormat  string
	draftDir     string
	draftFile    string
)

func init() {
	draftShowCmd.Flags().StringVar(&draftSection, "section", "", "Only this section, e.g. introduction")
	draftShowCmd.Flags().BoolVarP(&draftResolve, "resolve", "r", false, "Replace [n] placeholders with citations")
	draftShowCmd.Flags().StringVarP(&draftStyle, "style", "s", "", "Citation style for --resolve; defaults to the run's style")

	draftExportCmd.Flags().StringVarP(&draftFormat, "format", "f", "md", "Output format (md, html)")
	draftExportCmd.Flags().StringVar(&draftDir, "dir", "", "Output directory; defaults to config download_dir")
	draftExportCmd.Flags().BoolVarP(&draftResolve, "resolve", "r", false, "Replace [n] placeholders with citations")
	draftExportCmd.Flags().StringVarP(&draftStyle, "style", "s", "", "Citation style for --resolve; defaults to the run's style")

	draftEditCmd.Flags().StringVar(&draftFile, "file", "-", "Read the new content from this file ('-' for stdin)")

	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftExportCmd)
	draftCmd.AddCommand(draftEditCmd)
	rootCmd.AddCommand(draftCmd)
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Show, export or edit a run's paper draft",
}

var draftShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the draft (latest run if no ID)",
	Long: `Show the draft of a stored run. Human output is Markdown.

Examples:
  pv draft show --human
  pv draft show 3f2a --section introduction --human
  pv draft show --resolve --style apa --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDraftShow,
}

var draftExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Write the draft as Markdown or HTML",
	Long: `Write the draft to a file named after its title.

Examples:
  pv draft export
  pv draft export 3f2a --format html --resolve --dir ~/papers`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDraftExport,
}

var draftEditCmd = &cobra.Command{
	Use:   "edit <run-id> <section>",
	Short: "Replace a draft section's content",
	Long: `Replace the content of one draft section and store the run.
Use the section name "abstract" to replace the abstract.

Examples:
  pv draft edit 3f2a conclusion --file conclusion.md
  echo "New text." | pv draft edit 3f2a introduction`,
	Args: cobra.ExactArgs(2),
	RunE: runDraftEdit,
}

// resolvedDraft returns the run's draft, with placeholders replaced when
// --resolve is set.
func resolvedDraft(run *storage.Run) research.Draft {
	draft := run.Document.Draft
	if !draftResolve {
		return draft
	}
	style := mustParseStyle(draftStyle)
	if draftStyle == "" {
		if s, ok := citation.ParseStyle(run.Style); ok {
			style = s
		}
	}
	return draft.ReplaceCitations(run.Document.References(), style)
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)
	draft := resolvedDraft(run)

	if draftSection != "" {
		sec, ok := draft.Sections[draftSection]
		if !ok {
			exitWithError(ExitDataError, "no section %q (have: %s)", draftSection, strings.Join(sectionNames(draft), ", "))
		}
		if humanOutput {
			fmt.Printf("## %s\n\n%s\n", research.SectionHeading(draftSection), sec.Content)
			return nil
		}
		return outputJSON(map[string]any{
			"name":       draftSection,
			"content":    sec.Content,
			"word_count": sec.WordCount,
		})
	}

	if humanOutput {
		fmt.Print(draft.Markdown())
		return nil
	}
	return outputJSON(draft)
}

func runDraftExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseDraftFormat(draftFormat)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)
	draft := resolvedDraft(run)
	if len(draft.Sections) == 0 && draft.Abstract == "" {
		exitWithError(ExitDataError, "run %s has no draft", shortID(run.ID))
	}

	dir := draftDir
	if dir == "" {
		mustLoadConfig()
		dir = config.GetDownloadDir()
	}
	path, err := export.WriteDraft(config.ExpandPath(dir), draft, format)
	if err != nil {
		exitWithError(ExitError, "writing draft: %v", err)
	}

	if humanOutput {
		fmt.Printf("Saved %s\n", path)
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Path: path})
}

func runDraftEdit(cmd *cobra.Command, args []string) error {
	section := strings.TrimSpace(args[1])
	if section == "" {
		exitWithError(ExitError, "section name must not be empty")
	}

	content, err := readInput(draftFile)
	if err != nil {
		exitWithError(ExitError, "reading content: %v", err)
	}

	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args[:1])

	draft := run.Document.Draft
	if section == "abstract" {
		draft = draft.WithAbstract(content)
	} else {
		draft = draft.WithSection(section, content)
	}
	if err := db.UpdateDraft(run.ID, draft); err != nil {
		exitWithError(ExitError, "saving draft: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s in run %s (%d words)\n",
			research.SectionHeading(section), shortID(run.ID), research.CountWords(content))
		return nil
	}
	return outputJSON(map[string]any{
		"status":     "updated",
		"id":         run.ID,
		"section":    section,
		"word_count": research.CountWords(content),
	})
}

func sectionNames(d research.Draft) []string {
	secs := d.OrderedSections()
	names := make([]string, len(secs))
	for i, s := range secs {
		names[i] = s.Name
	}
	return names
}

// readInput reads a file, or stdin for "-", trimming trailing whitespace.
func readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(config.ExpandPath(path))
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), " \t\r\n"), nil
}
