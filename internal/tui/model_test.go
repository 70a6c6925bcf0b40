package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/clipboard"
	"github.com/matsen/paperview/internal/query"
	"github.com/matsen/paperview/internal/research"
	"github.com/matsen/paperview/internal/storage"
)

func loadFixture(t *testing.T) *research.Document {
	t.Helper()
	f, err := os.Open(filepath.Join("..", "research", "testdata", "document.json"))
	require.NoError(t, err)
	defer f.Close()
	doc, err := research.Decode(f)
	require.NoError(t, err)
	return doc
}

type fakeGenerator struct {
	doc  *research.Document
	err  error
	reqs []backend.Request
}

func (g *fakeGenerator) Generate(_ context.Context, req backend.Request) (*research.Document, error) {
	g.reqs = append(g.reqs, req)
	return g.doc, g.err
}

type fakeStore struct {
	styles []string
	drafts map[string]research.Draft
	err    error
}

func (s *fakeStore) SaveRun(doc *research.Document, style string) (storage.RunSummary, error) {
	s.styles = append(s.styles, style)
	return storage.RunSummary{ID: "run-1", Topic: doc.Topic}, s.err
}

func (s *fakeStore) UpdateDraft(id string, draft research.Draft) error {
	if s.drafts == nil {
		s.drafts = map[string]research.Draft{}
	}
	s.drafts[id] = draft
	return s.err
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return model, cmd
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = send(t, m, key(k))
	}
	return m
}

// loaded returns a model showing the fixture as stored run "run-1".
func loaded(t *testing.T, cfg Config) Model {
	t.Helper()
	cfg.Run = &storage.Run{
		RunSummary: storage.RunSummary{ID: "run-1"},
		Document:   loadFixture(t),
	}
	return New(cfg)
}

func resultIDs(m Model) []string {
	var ids []string
	for _, ref := range m.results() {
		ids = append(ids, ref.ID)
	}
	return ids
}

func TestNewStartsAtSearch(t *testing.T) {
	m := New(Config{Topic: "protein folding"})
	assert.Equal(t, stepSearch, m.step)
	assert.Equal(t, "protein folding", m.topic.Value())
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "Citation style: APA")
}

func TestNewWithRunOpensResults(t *testing.T) {
	m := loaded(t, Config{})
	assert.Equal(t, stepResults, m.step)
	assert.Equal(t, "run-1", m.runID)
	assert.Nil(t, m.Init())
	assert.Equal(t, []int{2019, 2020, 2021}, m.years)
}

func TestSearchRequiresTopic(t *testing.T) {
	m := New(Config{Generator: &fakeGenerator{}})
	m, cmd := send(t, m, key("enter"))
	assert.Equal(t, stepSearch, m.step)
	assert.NotNil(t, cmd)
	assert.True(t, m.statusErr)
	assert.Equal(t, "Enter a research topic", m.status)
}

func TestSearchWithoutBackend(t *testing.T) {
	m := New(Config{Topic: "ml"})
	m, _ = send(t, m, key("enter"))
	assert.Equal(t, stepSearch, m.step)
	assert.True(t, m.statusErr)
}

func TestGenerateFlow(t *testing.T) {
	gen := &fakeGenerator{doc: loadFixture(t)}
	store := &fakeStore{}
	m := New(Config{Generator: gen, Store: store, Style: citation.IEEE, Topic: "  ml in healthcare "})

	m, cmd := send(t, m, key("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, stepLoading, m.step)
	assert.Contains(t, m.View(), `Researching "ml in healthcare"`)

	msg := generateCmd(m.cfg, backend.NewRequest(m.topic.Value(), m.style))()
	gm, ok := msg.(generatedMsg)
	require.True(t, ok)
	require.NoError(t, gm.err)
	assert.Equal(t, "run-1", gm.runID)
	require.Len(t, gen.reqs, 1)
	assert.Equal(t, "ml in healthcare", gen.reqs[0].Topic)
	assert.Equal(t, "ieee", gen.reqs[0].CitationStyle)
	assert.Equal(t, []string{"ieee"}, store.styles)

	m, _ = send(t, m, gm)
	assert.Equal(t, stepResults, m.step)
	assert.Equal(t, tabPapers, m.tab)
	assert.Equal(t, "Found 2 papers", m.status)
	assert.Equal(t, []string{"p1", "p2"}, resultIDs(m))
}

func TestGenerateStoreFailureStillShowsResults(t *testing.T) {
	gen := &fakeGenerator{doc: loadFixture(t)}
	store := &fakeStore{err: errors.New("disk full")}
	cfg := Config{Generator: gen, Store: store, Timeout: backend.DefaultTimeout}

	gm := generateCmd(cfg, backend.NewRequest("ml", citation.APA))().(generatedMsg)
	require.NoError(t, gm.err)
	assert.Empty(t, gm.runID)
	assert.NotNil(t, gm.doc)
}

func TestGenerateError(t *testing.T) {
	m := New(Config{Generator: &fakeGenerator{}, Topic: "ml"})
	m, _ = send(t, m, key("enter"))
	require.Equal(t, stepLoading, m.step)

	m, _ = send(t, m, generatedMsg{err: backend.ErrNetworkError})
	assert.Equal(t, stepSearch, m.step)
	assert.ErrorIs(t, m.err, backend.ErrNetworkError)
	assert.Contains(t, m.View(), "Error:")
}

func TestLoadingIgnoresKeys(t *testing.T) {
	m := New(Config{Generator: &fakeGenerator{}, Topic: "ml"})
	m, _ = send(t, m, key("enter"))
	m = press(t, m, "q", "enter")
	assert.Equal(t, stepLoading, m.step)

	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTabSwitching(t *testing.T) {
	m := loaded(t, Config{})

	m = press(t, m, "tab")
	assert.Equal(t, tabSummaries, m.tab)
	assert.Contains(t, m.View(), "Key findings")

	m = press(t, m, "shift+tab", "shift+tab")
	assert.Equal(t, tabAnalytics, m.tab)
	assert.Contains(t, m.View(), "Total words: 12")

	m = press(t, m, "3")
	assert.Equal(t, tabCitations, m.tab)
	m = press(t, m, "tab", "tab")
	assert.Equal(t, tabAnalytics, m.tab)
	m = press(t, m, "tab")
	assert.Equal(t, tabPapers, m.tab)
}

func TestPapersSort(t *testing.T) {
	m := loaded(t, Config{})
	assert.Equal(t, []string{"p1", "p2"}, resultIDs(m))

	m, _ = send(t, m, key("s"))
	assert.Equal(t, "Sort: year", m.status)
	m = press(t, m, "s", "s")
	assert.Equal(t, "Sort: alphabetical", m.status)
	assert.Equal(t, []string{"p2", "p1"}, resultIDs(m))
	assert.Contains(t, m.View(), "Sort: alphabetical")
}

func TestPapersYearFilter(t *testing.T) {
	m := loaded(t, Config{})

	m = press(t, m, "y")
	assert.Equal(t, "2019", m.yearLabel())
	assert.Equal(t, []string{"p2"}, resultIDs(m))

	m = press(t, m, "y")
	assert.Empty(t, resultIDs(m))
	assert.Contains(t, m.View(), "No papers match")

	m = press(t, m, "y")
	assert.Equal(t, []string{"p1"}, resultIDs(m))

	m = press(t, m, "y")
	assert.Equal(t, query.AllYears, m.yearLabel())
	assert.Len(t, resultIDs(m), 2)
}

func TestPapersSearch(t *testing.T) {
	m := loaded(t, Config{})

	m = press(t, m, "/")
	require.True(t, m.searching)
	m = press(t, m, "d", "i", "a", "z")
	assert.Equal(t, []string{"p2"}, resultIDs(m))

	// Keys go to the search box while it is focused.
	m = press(t, m, "q")
	assert.Equal(t, stepResults, m.step)
	assert.Empty(t, resultIDs(m))

	m = press(t, m, "esc")
	assert.False(t, m.searching)
	assert.Empty(t, m.search.Value())
	assert.Len(t, resultIDs(m), 2)
}

func TestPapersSearchEnterKeepsFilter(t *testing.T) {
	m := loaded(t, Config{})
	m = press(t, m, "/", "J", "A", "M", "A", "enter")
	assert.False(t, m.searching)
	assert.Equal(t, []string{"p2"}, resultIDs(m))

	m = press(t, m, "esc")
	assert.Len(t, resultIDs(m), 2)
}

func TestPapersCursorAndExpand(t *testing.T) {
	m := loaded(t, Config{})
	m = press(t, m, "down", "down", "down")
	assert.Equal(t, 1, m.paperCursor)
	m = press(t, m, "up", "up")
	assert.Equal(t, 0, m.paperCursor)

	assert.NotContains(t, m.View(), "Authors: A Smith, B Lee")
	m = press(t, m, "enter")
	assert.True(t, m.expanded["p1"])
	assert.Contains(t, m.View(), "Authors: A Smith, B Lee")
	m = press(t, m, "enter")
	assert.False(t, m.expanded["p1"])
}

func TestCitationsCopy(t *testing.T) {
	var copied []string
	copyFn := func(s string) error {
		copied = append(copied, s)
		return nil
	}
	m := loaded(t, Config{Copy: copyFn})
	refs := m.references()
	m = press(t, m, "3", "down")

	m, cmd := send(t, m, key("y"))
	require.NotNil(t, cmd)
	msg := cmd()
	require.Equal(t, []string{citation.Format(refs[1], citation.APA)}, copied)

	m, _ = send(t, m, msg)
	assert.Equal(t, "Copied citation 2", m.status)
	assert.False(t, m.statusErr)

	m, _ = send(t, m, key("c"))
	assert.Equal(t, citation.MLA, m.style)
	assert.Equal(t, "Style: MLA", m.status)

	_, cmd = send(t, m, key("Y"))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, citation.Bibliography(refs, citation.MLA), copied[1])
}

func TestCitationsCopyUnavailable(t *testing.T) {
	copyFn := func(string) error { return clipboard.ErrClipboardUnavailable }
	m := loaded(t, Config{Copy: copyFn})
	m = press(t, m, "3")

	_, cmd := send(t, m, key("y"))
	require.NotNil(t, cmd)
	m, _ = send(t, m, cmd())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.status, "Clipboard unavailable")
}

func TestCitationsDownload(t *testing.T) {
	dir := t.TempDir()
	m := loaded(t, Config{DownloadDir: dir})
	m = press(t, m, "3", "c", "c", "c")
	require.Equal(t, citation.IEEE, m.style)

	_, cmd := send(t, m, key("d"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(downloadedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, filepath.Join(dir, "references_ieee.txt"), msg.path)

	data, err := os.ReadFile(msg.path)
	require.NoError(t, err)
	assert.Equal(t, citation.Bibliography(m.references(), citation.IEEE), string(data))

	m, _ = send(t, m, msg)
	assert.Equal(t, "Saved "+msg.path, m.status)
}

func TestDraftEditSaves(t *testing.T) {
	store := &fakeStore{}
	m := loaded(t, Config{Store: store})
	m = press(t, m, "4")
	assert.Contains(t, m.View(), "Machine Learning in Healthcare: A Review")

	m = press(t, m, "down")
	m, cmd := send(t, m, key("e"))
	require.NotNil(t, cmd)
	require.True(t, m.editing)
	assert.Equal(t, "conclusion", m.editingSection)
	assert.Equal(t, "More prospective studies are needed.", m.editor.Value())

	m.editor.SetValue("Prospective trials are the next step.")
	m, cmd = send(t, m, key("ctrl+s"))
	require.NotNil(t, cmd)
	assert.False(t, m.editing)
	assert.Equal(t, "Prospective trials are the next step.", m.doc.Draft.Sections["conclusion"].Content)
	assert.Equal(t, 6, m.doc.Draft.Sections["conclusion"].WordCount)

	msg, ok := cmd().(draftSavedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	assert.Equal(t, m.doc.Draft, store.drafts["run-1"])

	m, _ = send(t, m, msg)
	assert.Equal(t, "Saved Conclusion", m.status)
}

func TestDraftEditWithoutStore(t *testing.T) {
	m := loaded(t, Config{})
	m = press(t, m, "4", "e")
	m.editor.SetValue("Short intro.")
	m, _ = send(t, m, key("ctrl+s"))
	assert.Equal(t, "Short intro.", m.doc.Draft.Sections["introduction"].Content)
	assert.Contains(t, m.status, "not persisted")
}

func TestDraftEditCancel(t *testing.T) {
	m := loaded(t, Config{})
	m = press(t, m, "4", "e")
	m.editor.SetValue("discarded")
	m = press(t, m, "esc")
	assert.False(t, m.editing)
	assert.Equal(t, "Edit cancelled", m.status)
	assert.Equal(t, "Machine learning is changing care [1] [2].", m.doc.Draft.Sections["introduction"].Content)
}

func TestNewSearchFromResults(t *testing.T) {
	m := loaded(t, Config{})
	m = press(t, m, "n")
	assert.Equal(t, stepSearch, m.step)
	assert.Empty(t, m.topic.Value())

	m = press(t, m, "esc")
	assert.Equal(t, stepResults, m.step)
}

func TestQuitFromResults(t *testing.T) {
	m := loaded(t, Config{})
	_, cmd := send(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestStatusExpiry(t *testing.T) {
	m := loaded(t, Config{})
	m.setStatus("first")
	stale := m.statusSeq
	m.setStatus("second")

	m, _ = send(t, m, clearStatusMsg{seq: stale})
	assert.Equal(t, "second", m.status)

	m, _ = send(t, m, clearStatusMsg{seq: m.statusSeq})
	assert.Empty(t, m.status)
}

func TestResize(t *testing.T) {
	m := loaded(t, Config{})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, 118, m.pager.Width)
	assert.Equal(t, 40-chromeHeight, m.pager.Height)
	assert.True(t, strings.Contains(m.View(), "1 Papers"))
}

func TestVisibleWindow(t *testing.T) {
	tests := []struct {
		cursor, n, height int
		start, end        int
	}{
		{0, 5, 10, 0, 5},
		{0, 20, 10, 0, 10},
		{10, 20, 10, 5, 15},
		{19, 20, 10, 10, 20},
		{3, 20, 0, 0, 20},
	}
	for _, tt := range tests {
		start, end := visibleWindow(tt.cursor, tt.n, tt.height)
		assert.Equal(t, tt.start, start, "start for %+v", tt)
		assert.Equal(t, tt.end, end, "end for %+v", tt)
	}
}
