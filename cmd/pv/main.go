// Package main provides the pv CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pv",
	Short: "Generate, browse and cite literature reviews",
	Long: `pv talks to a paper-generation backend that searches academic sources,
summarizes papers, and drafts a review for a research topic.

Core features:
  - Interactive browser with papers, summaries, citations, draft and analytics tabs
  - Citations in APA, MLA, Chicago and IEEE styles
  - Filter and sort references by text, year, relevance and citations
  - Export references as JSONL or BibTeX and drafts as Markdown or HTML

Runs are stored in a local SQLite database so they can be reopened offline.
All commands output JSON by default; use --human for readable output.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Allow PV_API_KEY and PV_BACKEND_URL to come from a local .env
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// mustOpenDatabase opens the run database, exits on error.
// The caller is responsible for calling Close() on the returned DB.
func mustOpenDatabase() *storage.DB {
	if err := config.EnsureDir(config.DataDir()); err != nil {
		exitWithError(ExitConfigError, "creating data directory: %v", err)
	}
	db, err := storage.OpenDB(config.DBPath())
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return db
}

// mustLoadConfig loads the global config, exits on error.
func mustLoadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustGetRun loads the run named by args[0], or the latest run when no
// ID is given. Exits on error.
func mustGetRun(db *storage.DB, args []string) *storage.Run {
	var (
		run *storage.Run
		err error
	)
	if len(args) > 0 && args[0] != "" {
		run, err = db.GetRun(args[0])
	} else {
		run, err = db.LatestRun()
	}

	switch {
	case err == nil:
		return run
	case errors.Is(err, storage.ErrRunNotFound) && len(args) == 0:
		exitWithError(ExitDataError, "no stored runs\n\nRun 'pv generate <topic>' or 'pv browse' first.")
	case errors.Is(err, storage.ErrRunNotFound), errors.Is(err, storage.ErrAmbiguousID):
		exitWithError(ExitDataError, "%v", err)
	default:
		exitWithError(ExitError, "loading run: %v", err)
	}
	return nil
}

// newBackendClient builds a backend client from config and environment.
func newBackendClient() *backend.Client {
	mustLoadConfig()
	opts := []backend.ClientOption{
		backend.WithBaseURL(config.GetBackendURL()),
		backend.WithTimeout(config.GetTimeout()),
		backend.WithRateLimit(config.GetRateLimit()),
	}
	if key := config.GetAPIKey(); key != "" {
		opts = append(opts, backend.WithAPIKey(key))
	}
	return backend.NewClient(opts...)
}
