package tui

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/export"
	"github.com/matsen/paperview/internal/reference"
	"github.com/matsen/paperview/internal/research"
)

type generatedMsg struct {
	doc   *research.Document
	runID string
	err   error
}

type copiedMsg struct {
	what string
	err  error
}

type downloadedMsg struct {
	path string
	err  error
}

type draftSavedMsg struct {
	section string
	err     error
}

type clearStatusMsg struct {
	seq int
}

// generateCmd calls the backend and stores a successful run.
func generateCmd(cfg Config, req backend.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()

		start := time.Now()
		doc, err := cfg.Generator.Generate(ctx, req)
		if err != nil {
			log.Printf("generate %q failed after %s: %v", req.Topic, time.Since(start).Round(time.Millisecond), err)
			return generatedMsg{err: err}
		}
		log.Printf("generate %q: %d references in %s", req.Topic, len(doc.References()), time.Since(start).Round(time.Millisecond))

		var runID string
		if cfg.Store != nil {
			sum, err := cfg.Store.SaveRun(doc, req.CitationStyle)
			if err != nil {
				log.Printf("saving run: %v", err)
			} else {
				runID = sum.ID
			}
		}
		return generatedMsg{doc: doc, runID: runID}
	}
}

func copyCmd(copyFn func(string) error, text, what string) tea.Cmd {
	return func() tea.Msg {
		err := copyFn(text)
		if err != nil {
			log.Printf("copy %s: %v", what, err)
		}
		return copiedMsg{what: what, err: err}
	}
}

func downloadCmd(dir string, refs []reference.Reference, style citation.Style) tea.Cmd {
	return func() tea.Msg {
		path, err := export.WriteCitations(dir, refs, style)
		if err != nil {
			log.Printf("download %s citations: %v", style, err)
		}
		return downloadedMsg{path: path, err: err}
	}
}

func saveDraftCmd(store RunStore, runID, section string, draft research.Draft) tea.Cmd {
	return func() tea.Msg {
		err := store.UpdateDraft(runID, draft)
		if err != nil {
			log.Printf("saving draft section %s: %v", section, err)
		}
		return draftSavedMsg{section: section, err: err}
	}
}
