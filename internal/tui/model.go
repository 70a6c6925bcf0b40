// Package tui is the interactive bubbletea front end: topic search, a
// loading step, and tabbed results.
package tui

import (
	"context"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/clipboard"
	"github.com/matsen/paperview/internal/query"
	"github.com/matsen/paperview/internal/reference"
	"github.com/matsen/paperview/internal/research"
	"github.com/matsen/paperview/internal/storage"
)

// statusTTL is how long a transient status such as "Copied" stays visible.
const statusTTL = 2 * time.Second

// Generator produces a research document for a topic.
type Generator interface {
	Generate(ctx context.Context, req backend.Request) (*research.Document, error)
}

// RunStore persists runs and draft edits.
type RunStore interface {
	SaveRun(doc *research.Document, style string) (storage.RunSummary, error)
	UpdateDraft(id string, draft research.Draft) error
}

// Config wires runtime options into the TUI program.
type Config struct {
	Generator   Generator
	Store       RunStore // Optional
	Style       citation.Style
	DownloadDir string
	Timeout     time.Duration
	Copy        func(string) error // Defaults to clipboard.Copy

	// Optional: open an existing run instead of the search step.
	Run   *storage.Run
	Topic string // Pre-filled topic
}

type step int

const (
	stepSearch step = iota
	stepLoading
	stepResults
)

type tab int

const (
	tabPapers tab = iota
	tabSummaries
	tabCitations
	tabDraft
	tabAnalytics
	tabCount
)

var tabNames = [...]string{
	tabPapers:    "Papers",
	tabSummaries: "Summaries",
	tabCitations: "Citations",
	tabDraft:     "Draft",
	tabAnalytics: "Analytics",
}

func (t tab) String() string {
	if t < 0 || t >= tabCount {
		return ""
	}
	return tabNames[t]
}

// Model is the root bubbletea model.
type Model struct {
	cfg  Config
	step step
	tab  tab
	err  error

	topic   textinput.Model
	spinner spinner.Model

	doc   *research.Document
	runID string

	// Papers tab
	pipeline    *query.Pipeline
	search      textinput.Model
	searching   bool
	years       []int
	yearIdx     int // -1 means all years
	paperCursor int
	expanded    map[string]bool

	// Citations tab
	style          citation.Style
	citationCursor int

	// Draft tab
	sectionCursor  int
	editor         textarea.Model
	editing        bool
	editingSection string

	// Summaries and Analytics tabs
	pager viewport.Model

	status    string
	statusErr bool
	statusSeq int

	width  int
	height int
}

// New returns a Model ready to be mounted into a Program.
func New(cfg Config) Model {
	if cfg.Copy == nil {
		cfg.Copy = clipboard.Copy
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = backend.DefaultTimeout
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "."
	}

	topic := textinput.New()
	topic.Placeholder = "Research topic, e.g. machine learning in healthcare"
	topic.CharLimit = 300
	topic.Width = 60
	topic.SetValue(cfg.Topic)
	topic.Focus()

	search := textinput.New()
	search.Placeholder = "title, author or journal"
	search.Prompt = "/ "
	search.CharLimit = 120

	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.SetWidth(80)
	editor.SetHeight(15)

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	m := Model{
		cfg:      cfg,
		step:     stepSearch,
		topic:    topic,
		spinner:  spin,
		search:   search,
		yearIdx:  -1,
		expanded: make(map[string]bool),
		style:    cfg.Style,
		editor:   editor,
		pager:    viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	if cfg.Run != nil && cfg.Run.Document != nil {
		m.loadDocument(cfg.Run.Document, cfg.Run.ID)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.step == stepResults {
		return nil
	}
	return textinput.Blink
}

// loadDocument switches to the results step for doc.
func (m *Model) loadDocument(doc *research.Document, runID string) {
	m.doc = doc
	m.runID = runID
	m.step = stepResults
	m.tab = tabPapers
	m.err = nil

	refs := doc.References()
	m.pipeline = query.NewPipeline(refs)
	m.years = m.pipeline.Years()
	m.yearIdx = -1
	m.paperCursor = 0
	m.citationCursor = 0
	m.sectionCursor = 0
	m.expanded = make(map[string]bool)
	m.search.SetValue("")
	m.searching = false
	m.editing = false
	m.topic.Blur()
}

// references returns the bibliography in backend order.
func (m Model) references() []reference.Reference {
	if m.doc == nil {
		return nil
	}
	return m.doc.References()
}

// results returns the filtered and sorted papers.
func (m Model) results() []reference.Reference {
	if m.pipeline == nil {
		return nil
	}
	return m.pipeline.Results()
}

// yearLabel describes the active year filter.
func (m Model) yearLabel() string {
	if m.yearIdx < 0 || m.yearIdx >= len(m.years) {
		return query.AllYears
	}
	return strconv.Itoa(m.years[m.yearIdx])
}

// refKey identifies a reference for the expanded set.
func refKey(ref reference.Reference) string {
	switch {
	case ref.ID != "":
		return ref.ID
	case ref.DOI != "":
		return "doi:" + ref.DOI
	default:
		return "title:" + ref.Title
	}
}

func (m *Model) setStatus(msg string) tea.Cmd {
	m.status = msg
	m.statusErr = false
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return clearStatusMsg{seq: seq}
	})
}

func (m *Model) setError(msg string) tea.Cmd {
	cmd := m.setStatus(msg)
	m.statusErr = true
	return cmd
}
