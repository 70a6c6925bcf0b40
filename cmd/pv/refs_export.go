package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/export"
	"github.com/matsen/paperview/internal/query"
	"github.com/matsen/paperview/internal/reference"
	"github.com/matsen/paperview/internal/storage"
)

var (
	refsExportFormat string
	refsExportOut    string
	refsExportMerge  bool
)

func init() {
	refsExportCmd.Flags().StringVarP(&refsExportFormat, "format", "f", "bibtex", "Output format (bibtex, jsonl)")
	refsExportCmd.Flags().StringVarP(&refsExportOut, "out", "o", "", "Write to this file instead of stdout")
	refsExportCmd.Flags().BoolVar(&refsExportMerge, "merge", false, "Add to an existing file, skipping references it already has")
	refsCmd.AddCommand(refsExportCmd)
}

var refsExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Export references as BibTeX or JSONL",
	Long: `Export a run's references (latest if no ID) as BibTeX or JSONL.

The --search, --sort and --year flags of 'pv refs' apply.
With --merge the references are added to --out, skipping entries
already present (matched by DOI, then cite key or ID).

Examples:
  pv refs export > refs.bib
  pv refs export --format jsonl -o refs.jsonl
  pv refs export 3f2a --year 2021 -o ~/thesis/refs.bib --merge`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefsExport,
}

func runRefsExport(cmd *cobra.Command, args []string) error {
	if refsExportMerge && refsExportOut == "" {
		exitWithError(ExitError, "--merge requires --out")
	}
	state := mustQueryState()

	db := mustOpenDatabase()
	defer db.Close()
	run := mustGetRun(db, args)
	refs := query.Run(run.Document.References(), state)

	switch refsExportFormat {
	case "bibtex", "bib":
		return exportBibTeX(refs)
	case "jsonl":
		return exportJSONL(refs)
	default:
		exitWithError(ExitError, "invalid --format %q (use bibtex or jsonl)", refsExportFormat)
	}
	return nil
}

func exportBibTeX(refs []reference.Reference) error {
	if refsExportOut == "" {
		fmt.Print(export.ToBibTeXList(refs))
		return nil
	}

	path := expandOut(refsExportOut)
	var (
		n   int
		err error
	)
	if refsExportMerge {
		n, err = export.AppendBibTeX(path, refs)
	} else {
		n = len(refs)
		err = export.WriteFileAtomic(path, []byte(export.ToBibTeXList(refs)))
	}
	if err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}
	return outputWritten(path, n, len(refs))
}

func exportJSONL(refs []reference.Reference) error {
	if refsExportOut == "" {
		for _, ref := range refs {
			if err := outputJSONCompact(ref); err != nil {
				return err
			}
		}
		return nil
	}

	path := expandOut(refsExportOut)
	var (
		n   int
		err error
	)
	if refsExportMerge {
		n, err = storage.Merge(path, refs)
	} else {
		n = len(refs)
		err = storage.WriteAll(path, refs)
	}
	if err != nil {
		exitWithError(ExitError, "writing %s: %v", path, err)
	}
	return outputWritten(path, n, len(refs))
}

func outputWritten(path string, written, total int) error {
	if humanOutput {
		if skipped := total - written; skipped > 0 {
			fmt.Printf("Wrote %d references to %s (%d already present)\n", written, path, skipped)
		} else {
			fmt.Printf("Wrote %d references to %s\n", written, path)
		}
		return nil
	}
	return outputJSON(StatusResponse{Status: "written", Path: path, Count: written})
}

func expandOut(path string) string {
	if path == "-" {
		exitWithError(ExitError, "omit --out to write to stdout")
	}
	return config.ExpandPath(path)
}
