package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/config"
	"github.com/matsen/paperview/internal/storage"
	"github.com/matsen/paperview/internal/tui"
)

var (
	browseLatest bool
	browseTopic  string
	browseStyle  string
)

func init() {
	browseCmd.Flags().BoolVar(&browseLatest, "latest", false, "Open the most recent stored run")
	browseCmd.Flags().StringVarP(&browseTopic, "topic", "t", "", "Pre-fill the search topic")
	browseCmd.Flags().StringVarP(&browseStyle, "style", "s", "", "Citation style (apa, mla, chicago, ieee); defaults to config")
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse [run-id]",
	Short: "Open the interactive browser",
	Long: `Open the interactive browser.

Without arguments pv starts at the topic search. Pass a run ID (or a
unique prefix) or --latest to reopen a stored run.

Keys:
  tab / 1-5   switch between Papers, Summaries, Citations, Draft, Analytics
  /  s  y     search, change sort, cycle year filter (Papers)
  c  y  Y  d  change style, copy one, copy all, download (Citations)
  e  ctrl+s   edit and save a draft section (Draft)
  n  q        new search, quit

Diagnostics are written to the log file shown by 'pv config path'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	style := mustParseStyle(browseStyle)

	if err := config.EnsureDir(config.StateDir()); err != nil {
		exitWithError(ExitConfigError, "creating state directory: %v", err)
	}
	logFile, err := tea.LogToFile(config.LogPath(), "pv")
	if err != nil {
		exitWithError(ExitConfigError, "opening log file: %v", err)
	}
	defer logFile.Close()

	db := mustOpenDatabase()
	defer db.Close()

	var run *storage.Run
	if len(args) > 0 || browseLatest {
		run = mustGetRun(db, args)
		if browseStyle == "" {
			if s, ok := citation.ParseStyle(run.Style); ok {
				style = s
			}
		}
	}

	model := tui.New(tui.Config{
		Generator:   newBackendClient(),
		Store:       db,
		Style:       style,
		DownloadDir: config.GetDownloadDir(),
		Timeout:     config.GetTimeout(),
		Run:         run,
		Topic:       browseTopic,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		exitWithError(ExitError, "running browser: %v", err)
	}
	return nil
}
