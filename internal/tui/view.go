package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/dashboard"
	"github.com/matsen/paperview/internal/reference"
	"github.com/matsen/paperview/internal/research"
)

func (m Model) View() string {
	var body string
	switch m.step {
	case stepSearch:
		body = m.viewSearch()
	case stepLoading:
		body = m.viewLoading()
	default:
		body = m.viewResults()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.viewFooter())
}

func (m Model) viewSearch() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("paperview"))
	b.WriteString("\n")
	b.WriteString(subtitleStyle.Render("Generate a literature review and draft for a research topic"))
	b.WriteString("\n\n")
	b.WriteString(m.topic.View())
	b.WriteString("\n\n")
	b.WriteString(helperStyle.Render("Citation style: " + m.style.Label()))
	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(wordwrap.String("Error: "+m.err.Error(), m.wrapWidth())))
	}
	return b.String()
}

func (m Model) viewLoading() string {
	topic := strings.TrimSpace(m.topic.Value())
	return fmt.Sprintf("%s Researching %q...\n\n%s",
		m.spinner.View(), topic,
		helperStyle.Render("Searching sources, summarizing papers and drafting. This can take a few minutes."))
}

func (m Model) viewResults() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.doc.Topic))
	b.WriteString("  ")
	b.WriteString(helperStyle.Render(fmt.Sprintf("%d papers", len(m.references()))))
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	switch m.tab {
	case tabPapers:
		b.WriteString(m.viewPapers())
	case tabCitations:
		b.WriteString(m.viewCitations())
	case tabDraft:
		b.WriteString(m.viewDraft())
	default:
		b.WriteString(m.pager.View())
	}
	return b.String()
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, tabCount)
	for t := tab(0); t < tabCount; t++ {
		label := fmt.Sprintf("%d %s", int(t)+1, t)
		if t == m.tab {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewFooter() string {
	var status string
	switch {
	case m.status != "" && m.statusErr:
		status = errorStyle.Render(m.status)
	case m.status != "":
		status = statusStyle.Render(m.status)
	}
	return "\n" + status + "\n" + helperStyle.Render(m.helpText())
}

func (m Model) helpText() string {
	switch {
	case m.step == stepSearch:
		return "enter: search • esc: back • ctrl+c: quit"
	case m.step == stepLoading:
		return "ctrl+c: quit"
	case m.editing:
		return "ctrl+s: save • esc: cancel"
	case m.searching:
		return "type to filter • enter: done • esc: clear"
	}
	common := "tab/1-5: switch • n: new search • q: quit"
	switch m.tab {
	case tabPapers:
		return "↑/↓: move • enter: details • /: search • s: sort • y: year • " + common
	case tabCitations:
		return "↑/↓: move • c: style • y: copy • Y: copy all • d: download • " + common
	case tabDraft:
		return "↑/↓: section • e: edit • " + common
	default:
		return "↑/↓/pgup/pgdn: scroll • " + common
	}
}

// visibleWindow returns the [start, end) range of n items that keeps
// cursor on screen given height rows.
func visibleWindow(cursor, n, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height/2
	start = max(min(start, n-height), 0)
	return start, start + height
}

func (m Model) bodyHeight() int {
	return max(m.height-chromeHeight-2, 3)
}

func (m Model) wrapWidth() int {
	return max(m.width-4, 20)
}

func (m Model) viewPapers() string {
	var b strings.Builder

	state := m.pipeline.State()
	controls := fmt.Sprintf("Sort: %s   Year: %s", state.Sort, m.yearLabel())
	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString(metaStyle.Render(controls))
	b.WriteString("\n\n")

	results := m.results()
	if len(results) == 0 {
		b.WriteString(helperStyle.Render("No papers match the current filters."))
		return b.String()
	}

	// Expanded entries take several lines; reserve room for them.
	height := m.bodyHeight() - 3
	if len(m.expanded) > 0 {
		height = max(height/3, 1)
	}
	start, end := visibleWindow(m.paperCursor, len(results), height)
	for i := start; i < end; i++ {
		b.WriteString(m.viewPaper(results[i], i == m.paperCursor))
	}
	if end < len(results) || start > 0 {
		b.WriteString(helperStyle.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(results))))
	}
	return b.String()
}

func (m Model) viewPaper(ref reference.Reference, selected bool) string {
	var b strings.Builder
	prefix := "  "
	title := ref.Title
	if selected {
		prefix = cursorStyle.Render("> ")
		title = cursorStyle.Render(title)
	}
	b.WriteString(prefix)
	b.WriteString(title)
	b.WriteString("  ")
	b.WriteString(scoreStyle.Render(fmt.Sprintf("%d%%", ref.RelevancePercent())))
	b.WriteString("\n")

	meta := []string{citation.InText(ref)}
	if ref.Journal != "" {
		meta = append(meta, ref.Journal)
	}
	meta = append(meta, humanize.Comma(int64(ref.CitationsCount))+" citations")
	b.WriteString("    ")
	b.WriteString(metaStyle.Render(strings.Join(meta, " · ")))
	b.WriteString("\n")

	if !m.expanded[refKey(ref)] {
		return b.String()
	}

	width := m.wrapWidth() - 4
	if len(ref.Authors) > 0 {
		b.WriteString(indent(wordwrap.String("Authors: "+strings.Join(ref.Authors, ", "), width), "    "))
		b.WriteString("\n")
	}
	if ref.DOI != "" {
		b.WriteString("    DOI: " + ref.DOI + "\n")
	}
	if ref.URL != "" {
		b.WriteString("    URL: " + ref.URL + "\n")
	}
	if len(ref.Keywords) > 0 {
		b.WriteString(indent(wordwrap.String("Keywords: "+strings.Join(ref.Keywords, ", "), width), "    "))
		b.WriteString("\n")
	}
	if ref.Abstract != "" {
		b.WriteString("\n")
		b.WriteString(indent(wordwrap.String(ref.Abstract, width), "    "))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) viewCitations() string {
	var b strings.Builder
	b.WriteString(metaStyle.Render("Style: " + m.style.Label()))
	b.WriteString("\n\n")

	refs := m.references()
	if len(refs) == 0 {
		b.WriteString(helperStyle.Render("No citations."))
		return b.String()
	}

	width := m.wrapWidth() - 5
	start, end := visibleWindow(m.citationCursor, len(refs), max((m.bodyHeight()-3)/3, 1))
	for i := start; i < end; i++ {
		text := wordwrap.String(citation.Format(refs[i], m.style), width)
		num := fmt.Sprintf("[%d] ", i+1)
		if i == m.citationCursor {
			num = cursorStyle.Render(num)
		}
		lines := strings.Split(text, "\n")
		b.WriteString(num + lines[0] + "\n")
		for _, line := range lines[1:] {
			b.WriteString("     " + line + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewDraft() string {
	if m.editing {
		return sectionStyle.Render("Editing "+research.SectionHeading(m.editingSection)) + "\n\n" + m.editor.View()
	}

	draft := m.doc.Draft
	var b strings.Builder
	if draft.Title != "" {
		b.WriteString(sectionStyle.Render(draft.Title))
		b.WriteString("  ")
	}
	b.WriteString(helperStyle.Render(humanize.Comma(int64(draft.WordCount())) + " words"))
	b.WriteString("\n\n")

	sections := draft.OrderedSections()
	if len(sections) == 0 {
		b.WriteString(helperStyle.Render("No draft was generated."))
		return b.String()
	}

	var list strings.Builder
	for i, sec := range sections {
		line := fmt.Sprintf("%s (%d)", sec.Heading(), sec.WordCount)
		if i == m.sectionCursor {
			list.WriteString(cursorStyle.Render("> " + line))
		} else {
			list.WriteString("  " + line)
		}
		list.WriteString("\n")
	}

	cur := sections[min(m.sectionCursor, len(sections)-1)]
	previewWidth := max(m.wrapWidth()-lipgloss.Width(list.String())-6, 20)
	preview := wordwrap.String(cur.Content, previewWidth)
	previewLines := strings.Split(preview, "\n")
	if limit := m.bodyHeight() - 4; len(previewLines) > limit && limit > 0 {
		previewLines = append(previewLines[:limit], helperStyle.Render("…"))
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		list.String(),
		boxStyle.Width(previewWidth+2).Render(strings.Join(previewLines, "\n")),
	))
	return b.String()
}

// renderSummaries renders the summaries tab content.
func renderSummaries(doc *research.Document, width int) string {
	s := doc.Summaries
	width = max(width-2, 20)

	var b strings.Builder
	if len(s.KeyFindings) > 0 {
		b.WriteString(sectionStyle.Render("Key findings"))
		b.WriteString("\n")
		for _, f := range s.KeyFindings {
			b.WriteString(bullet(f, width))
		}
		b.WriteString("\n")
	}
	if len(s.Thematic) > 0 {
		b.WriteString(sectionStyle.Render("Themes"))
		b.WriteString("\n")
		for _, t := range s.Thematic {
			b.WriteString(subtitleStyle.Render(t.Theme))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(t.Summary, width))
			b.WriteString("\n\n")
		}
	}
	if len(s.Methodology) > 0 {
		b.WriteString(sectionStyle.Render("Methodology"))
		b.WriteString("\n")
		for _, meth := range s.Methodology {
			b.WriteString(bullet(meth.Approach+": "+meth.Description, width))
		}
		b.WriteString("\n")
	}
	if len(s.Individual) > 0 {
		b.WriteString(sectionStyle.Render("Papers"))
		b.WriteString("\n")
		for _, p := range s.Individual {
			b.WriteString(subtitleStyle.Render(p.Title))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(p.Summary, width))
			b.WriteString("\n\n")
		}
	}
	if b.Len() == 0 {
		return helperStyle.Render("No summaries available.")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderAnalytics renders the analytics tab content.
func renderAnalytics(a research.Analytics, width int) string {
	d := dashboard.Build(a)
	sections := d.Sections()
	if len(sections) == 0 {
		return helperStyle.Render("No analytics available.")
	}

	labelWidth := 0
	for _, s := range sections {
		for _, r := range s.Rows {
			labelWidth = max(labelWidth, lipgloss.Width(r.Label))
		}
	}
	labelWidth = min(labelWidth, max(width/3, 10))

	var b strings.Builder
	if d.TotalWords != "" {
		b.WriteString(titleStyle.Render("Total words: " + d.TotalWords))
		b.WriteString("\n\n")
	}
	for _, s := range sections {
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, r := range s.Rows {
			label := lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth).Render(r.Label)
			fmt.Fprintf(&b, "  %s  %8s  %s\n", label, r.Value, barStyle.Render(r.Bar()))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func bullet(text string, width int) string {
	wrapped := wordwrap.String(text, max(width-4, 10))
	lines := strings.Split(wrapped, "\n")
	var b strings.Builder
	for i, line := range lines {
		if i == 0 {
			b.WriteString("  • " + line + "\n")
		} else {
			b.WriteString("    " + line + "\n")
		}
	}
	return b.String()
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
