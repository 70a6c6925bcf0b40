package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matsen/paperview/internal/backend"
	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/clipboard"
	"github.com/matsen/paperview/internal/research"
)

// chromeHeight is the number of lines used by header, tabs and footer.
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if m.step != stepLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case generatedMsg:
		return m.handleGenerated(msg)

	case copiedMsg:
		if msg.err != nil {
			if errors.Is(msg.err, clipboard.ErrClipboardUnavailable) {
				return m, m.setError("Clipboard unavailable on this system")
			}
			return m, m.setError("Copy failed: " + msg.err.Error())
		}
		return m, m.setStatus("Copied " + msg.what)

	case downloadedMsg:
		if msg.err != nil {
			return m, m.setError("Download failed: " + msg.err.Error())
		}
		return m, m.setStatus("Saved " + msg.path)

	case draftSavedMsg:
		if msg.err != nil {
			return m, m.setError("Saving draft failed: " + msg.err.Error())
		}
		return m, m.setStatus("Saved " + research.SectionHeading(msg.section))

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.step {
		case stepSearch:
			return m.updateSearchStep(msg)
		case stepLoading:
			return m, nil
		case stepResults:
			return m.updateResults(msg)
		}
	}

	return m.forward(msg)
}

// forward passes messages such as cursor blinks to the focused input.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.step == stepSearch:
		m.topic, cmd = m.topic.Update(msg)
	case m.editing:
		m.editor, cmd = m.editor.Update(msg)
	case m.searching:
		m.search, cmd = m.search.Update(msg)
	}
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	bodyHeight := max(height-chromeHeight, 3)
	m.pager.Width = max(width-2, 20)
	m.pager.Height = bodyHeight
	m.topic.Width = min(max(width-10, 20), 80)
	m.search.Width = max(width-10, 20)
	m.editor.SetWidth(max(width-4, 20))
	m.editor.SetHeight(max(bodyHeight-4, 3))
	m.syncPager()
}

func (m Model) updateSearchStep(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		topic := strings.TrimSpace(m.topic.Value())
		if topic == "" {
			return m, m.setError("Enter a research topic")
		}
		if m.cfg.Generator == nil {
			return m, m.setError("No backend configured")
		}
		m.step = stepLoading
		m.err = nil
		m.topic.Blur()
		req := backend.NewRequest(topic, m.style)
		return m, tea.Batch(m.spinner.Tick, generateCmd(m.cfg, req))

	case "esc":
		if m.doc != nil {
			m.step = stepResults
			m.topic.Blur()
			return m, nil
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.topic, cmd = m.topic.Update(msg)
	return m, cmd
}

func (m Model) handleGenerated(msg generatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.step = stepSearch
		m.err = msg.err
		m.topic.Focus()
		return m, textinput.Blink
	}
	m.loadDocument(msg.doc, msg.runID)
	m.syncPager()
	return m, m.setStatus(fmt.Sprintf("Found %d papers", len(m.references())))
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.updateEditor(msg)
	}
	if m.searching {
		return m.updateSearchInput(msg)
	}

	key := msg.String()
	switch key {
	case "q":
		return m, tea.Quit
	case "tab":
		m.switchTab((m.tab + 1) % tabCount)
		return m, nil
	case "shift+tab":
		m.switchTab((m.tab + tabCount - 1) % tabCount)
		return m, nil
	case "1", "2", "3", "4", "5":
		m.switchTab(tab(key[0] - '1'))
		return m, nil
	case "n":
		m.step = stepSearch
		m.topic.SetValue("")
		m.topic.Focus()
		return m, textinput.Blink
	}

	switch m.tab {
	case tabPapers:
		return m.updatePapers(msg)
	case tabCitations:
		return m.updateCitations(msg)
	case tabDraft:
		return m.updateDraft(msg)
	default:
		var cmd tea.Cmd
		m.pager, cmd = m.pager.Update(msg)
		return m, cmd
	}
}

func (m *Model) switchTab(t tab) {
	if t == m.tab {
		return
	}
	m.tab = t
	m.syncPager()
}

// syncPager refreshes the viewport content for the pager tabs.
func (m *Model) syncPager() {
	if m.doc == nil {
		return
	}
	switch m.tab {
	case tabSummaries:
		m.pager.SetContent(renderSummaries(m.doc, m.pager.Width))
	case tabAnalytics:
		m.pager.SetContent(renderAnalytics(m.doc.Analytics, m.pager.Width))
	default:
		return
	}
	m.pager.GotoTop()
}

func (m Model) updatePapers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.results()

	switch msg.String() {
	case "up", "k":
		m.paperCursor = max(m.paperCursor-1, 0)
	case "down", "j":
		m.paperCursor = min(m.paperCursor+1, max(len(results)-1, 0))
	case "home", "g":
		m.paperCursor = 0
	case "end", "G":
		m.paperCursor = max(len(results)-1, 0)
	case "enter", " ":
		if m.paperCursor < len(results) {
			key := refKey(results[m.paperCursor])
			m.expanded[key] = !m.expanded[key]
		}
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "s":
		m.pipeline.SetSort(m.pipeline.State().Sort.Next())
		m.paperCursor = 0
		return m, m.setStatus("Sort: " + m.pipeline.State().Sort.String())
	case "y":
		if len(m.years) == 0 {
			return m, m.setStatus("No publication years to filter by")
		}
		m.yearIdx++
		if m.yearIdx >= len(m.years) {
			m.yearIdx = -1
		}
		m.pipeline.SetYear(m.yearLabel())
		m.paperCursor = 0
		return m, m.setStatus("Year: " + m.yearLabel())
	case "esc":
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.pipeline.SetSearch("")
			m.paperCursor = 0
		}
	}
	return m, nil
}

func (m Model) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.pipeline.SetSearch("")
		m.paperCursor = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.pipeline.SetSearch(m.search.Value())
	m.paperCursor = min(m.paperCursor, max(len(m.results())-1, 0))
	return m, cmd
}

func (m Model) updateCitations(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	refs := m.references()

	switch msg.String() {
	case "up", "k":
		m.citationCursor = max(m.citationCursor-1, 0)
	case "down", "j":
		m.citationCursor = min(m.citationCursor+1, max(len(refs)-1, 0))
	case "c":
		m.style = m.style.Next()
		return m, m.setStatus("Style: " + m.style.Label())
	case "y":
		if m.citationCursor >= len(refs) {
			return m, nil
		}
		text := citation.Format(refs[m.citationCursor], m.style)
		return m, copyCmd(m.cfg.Copy, text, fmt.Sprintf("citation %d", m.citationCursor+1))
	case "Y":
		if len(refs) == 0 {
			return m, nil
		}
		return m, copyCmd(m.cfg.Copy, citation.Bibliography(refs, m.style), fmt.Sprintf("%d citations", len(refs)))
	case "d":
		if len(refs) == 0 {
			return m, nil
		}
		return m, downloadCmd(m.cfg.DownloadDir, refs, m.style)
	}
	return m, nil
}

func (m Model) updateDraft(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sections := m.doc.Draft.OrderedSections()

	switch msg.String() {
	case "up", "k":
		m.sectionCursor = max(m.sectionCursor-1, 0)
	case "down", "j":
		m.sectionCursor = min(m.sectionCursor+1, max(len(sections)-1, 0))
	case "e":
		if m.sectionCursor >= len(sections) {
			return m, m.setStatus("No sections to edit")
		}
		sec := sections[m.sectionCursor]
		m.editing = true
		m.editingSection = sec.Name
		m.editor.SetValue(sec.Content)
		m.editor.Focus()
		return m, textarea.Blink
	}
	return m, nil
}

func (m Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		name := m.editingSection
		m.doc.Draft = m.doc.Draft.WithSection(name, m.editor.Value())
		m.editing = false
		m.editor.Blur()
		if m.cfg.Store == nil || m.runID == "" {
			return m, m.setStatus("Updated " + research.SectionHeading(name) + " (not persisted)")
		}
		return m, saveDraftCmd(m.cfg.Store, m.runID, name, m.doc.Draft)
	case "esc":
		m.editing = false
		m.editor.Blur()
		return m, m.setStatus("Edit cancelled")
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}
