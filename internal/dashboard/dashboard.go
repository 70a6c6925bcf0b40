// Package dashboard turns run analytics into display rows.
package dashboard

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/matsen/paperview/internal/research"
)

// BarWidth is the number of cells in a percentage bar.
const BarWidth = 20

// totalKey is the word_counts entry holding the draft total.
const totalKey = "total"

// Row is one labelled metric.
type Row struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Percent int    `json:"percent"` // 0..100; share of total or score
}

// Bar renders the row's percentage as a fixed-width bar.
func (r Row) Bar() string {
	return Bar(r.Percent, BarWidth)
}

// Section is a titled group of rows.
type Section struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// Dashboard is the render-ready view of a run's analytics.
type Dashboard struct {
	TotalWords string  `json:"total_words"`
	WordCounts Section `json:"word_counts"`
	Quality    Section `json:"quality"`
	Sources    Section `json:"sources"`
	Citations  Section `json:"citations"`
	ByYear     Section `json:"by_year"`
	ByTopic    Section `json:"by_topic"`
}

// Sections returns the non-empty sections in display order.
func (d Dashboard) Sections() []Section {
	var out []Section
	for _, s := range []Section{d.WordCounts, d.Quality, d.Sources, d.Citations, d.ByYear, d.ByTopic} {
		if len(s.Rows) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Build derives a Dashboard from analytics.
func Build(a research.Analytics) Dashboard {
	return Dashboard{
		TotalWords: humanize.Comma(int64(totalWords(a.WordCounts))),
		WordCounts: Section{Title: "Word Count", Rows: wordCountRows(a.WordCounts)},
		Quality:    Section{Title: "Quality", Rows: qualityRows(a.QualityScores)},
		Sources:    Section{Title: "Sources", Rows: sourceRows(a.SourceStats)},
		Citations:  Section{Title: "Citations", Rows: citationRows(a.CitationStats)},
		ByYear:     Section{Title: "Publications by Year", Rows: yearRows(a.Trends.ByYear)},
		ByTopic:    Section{Title: "Publications by Topic", Rows: countRows(a.Trends.ByTopic, nil)},
	}
}

// totalWords prefers the backend total and falls back to the section sum.
func totalWords(counts map[string]int) int {
	if t, ok := counts[totalKey]; ok {
		return t
	}
	sum := 0
	for _, n := range counts {
		sum += n
	}
	return sum
}

func wordCountRows(counts map[string]int) []Row {
	sections := make(map[string]int, len(counts))
	for k, v := range counts {
		if k != totalKey {
			sections[k] = v
		}
	}
	return countRows(sections, research.SectionHeading)
}

// countRows sorts by count descending, then label, with each row's share
// of the total.
func countRows(counts map[string]int, label func(string) string) []Row {
	keys := make([]string, 0, len(counts))
	total := 0
	for k, v := range counts {
		keys = append(keys, k)
		total += v
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		l := k
		if label != nil {
			l = label(k)
		}
		rows = append(rows, Row{Label: l, Value: humanize.Comma(int64(counts[k])), Percent: share(counts[k], total)})
	}
	return rows
}

// yearRows orders numeric years ascending; other keys follow sorted.
func yearRows(counts map[string]int) []Row {
	keys := make([]string, 0, len(counts))
	total := 0
	for k, v := range counts {
		keys = append(keys, k)
		total += v
	}
	sort.Slice(keys, func(i, j int) bool {
		yi, erri := strconv.Atoi(keys[i])
		yj, errj := strconv.Atoi(keys[j])
		switch {
		case erri == nil && errj == nil:
			return yi < yj
		case erri == nil:
			return true
		case errj == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, Row{Label: k, Value: humanize.Comma(int64(counts[k])), Percent: share(counts[k], total)})
	}
	return rows
}

func qualityRows(scores map[string]float64) []Row {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		p := Percent(scores[k])
		rows = append(rows, Row{Label: research.SectionHeading(k), Value: fmt.Sprintf("%d%%", p), Percent: p})
	}
	return rows
}

func sourceRows(s research.SourceStats) []Row {
	if s.TotalSources == 0 && len(s.BySource) == 0 {
		return nil
	}
	rows := []Row{
		{Label: "Total", Value: humanize.Comma(int64(s.TotalSources)), Percent: 100},
		{Label: "Avg. citations", Value: humanize.CommafWithDigits(s.AverageCitations, 1)},
	}
	if s.OldestYear > 0 && s.NewestYear > 0 {
		rows = append(rows, Row{Label: "Years", Value: fmt.Sprintf("%d-%d", s.OldestYear, s.NewestYear)})
	}
	return append(rows, countRows(s.BySource, research.SectionHeading)...)
}

func citationRows(c research.CitationStats) []Row {
	if c == (research.CitationStats{}) {
		return nil
	}
	rel := Percent(c.AverageRelevance)
	return []Row{
		{Label: "Total", Value: humanize.Comma(int64(c.TotalCitations))},
		{Label: "Unique authors", Value: humanize.Comma(int64(c.UniqueAuthors))},
		{Label: "Avg. relevance", Value: fmt.Sprintf("%d%%", rel), Percent: rel},
	}
}

// Percent converts a 0..1 score to a rounded, clamped percentage.
func Percent(score float64) int {
	if math.IsNaN(score) {
		return 0
	}
	p := int(math.Round(score * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func share(n, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(n) * 100 / float64(total)))
}

// Bar renders percent as width cells of filled and empty blocks.
func Bar(percent, width int) string {
	if width <= 0 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(math.Round(float64(percent) * float64(width) / 100))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
