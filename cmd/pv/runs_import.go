package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/research"
)

var runsImportStyle string

func init() {
	runsImportCmd.Flags().StringVarP(&runsImportStyle, "style", "s", "", "Citation style to record for the run; defaults to config")
	runsCmd.AddCommand(runsImportCmd)
}

var runsImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Store a saved backend response as a run",
	Long: `Store a backend response saved to a file (or '-' for stdin) as a run.

Examples:
  pv generate "protein design" --full --no-save > run.json
  pv runs import run.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRunsImport,
}

func runRunsImport(cmd *cobra.Command, args []string) error {
	style := mustParseStyle(runsImportStyle)

	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			exitWithError(ExitError, "opening %s: %v", args[0], err)
		}
		defer f.Close()
		r = f
	}

	doc, err := research.Decode(r)
	if errors.Is(err, research.ErrGenerationFailed) {
		exitWithError(ExitDataError, "refusing to import a failed run: %v", err)
	}
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	db := mustOpenDatabase()
	defer db.Close()

	sum, err := db.SaveRun(doc, style.String())
	if err != nil {
		exitWithError(ExitError, "saving run: %v", err)
	}

	if humanOutput {
		fmt.Printf("Imported %q as run %s (%d papers)\n", sum.Topic, shortID(sum.ID), sum.PaperCount)
		return nil
	}
	return outputJSON(sum)
}
