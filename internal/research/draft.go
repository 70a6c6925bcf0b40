package research

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/matsen/paperview/internal/citation"
	"github.com/matsen/paperview/internal/reference"
)

// Draft is a generated paper draft.
type Draft struct {
	Title    string             `json:"title"`
	Authors  []string           `json:"authors,omitempty"`
	Abstract string             `json:"abstract"`
	Sections map[string]Section `json:"sections"`
	Metadata DraftMetadata      `json:"metadata"`
}

// DraftMetadata carries generation details.
type DraftMetadata struct {
	Topic          string   `json:"topic,omitempty"`
	WordCount      int      `json:"word_count"`
	GenerationDate string   `json:"generation_date,omitempty"`
	Structure      []string `json:"structure,omitempty"` // Section order
}

// Section is one named part of the draft.
type Section struct {
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// UnmarshalJSON accepts either a bare string or {content, word_count}.
func (s *Section) UnmarshalJSON(data []byte) error {
	var content string
	if err := json.Unmarshal(data, &content); err == nil {
		*s = Section{Content: content, WordCount: CountWords(content)}
		return nil
	}
	type plain Section
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decoding section: %w", err)
	}
	if p.WordCount == 0 {
		p.WordCount = CountWords(p.Content)
	}
	*s = Section(p)
	return nil
}

// NamedSection pairs a section with its key.
type NamedSection struct {
	Name string
	Section
}

// Heading returns a display heading for the section key:
// "literature_review" → "Literature Review".
func (n NamedSection) Heading() string {
	return SectionHeading(n.Name)
}

// SectionHeading converts a section key into a heading.
func SectionHeading(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// OrderedSections returns sections in metadata structure order, followed
// by any sections the structure does not mention, sorted by name.
func (d Draft) OrderedSections() []NamedSection {
	out := make([]NamedSection, 0, len(d.Sections))
	seen := map[string]bool{}
	for _, name := range d.Metadata.Structure {
		sec, ok := d.Sections[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, NamedSection{Name: name, Section: sec})
	}

	var rest []string
	for name := range d.Sections {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, NamedSection{Name: name, Section: d.Sections[name]})
	}
	return out
}

// WordCount returns the total words across all sections.
func (d Draft) WordCount() int {
	total := 0
	for _, sec := range d.Sections {
		total += sec.WordCount
	}
	return total
}

// clone returns a copy of d whose maps and slices can be modified freely.
func (d Draft) clone() Draft {
	c := d
	c.Sections = make(map[string]Section, len(d.Sections))
	for k, v := range d.Sections {
		c.Sections[k] = v
	}
	c.Authors = append([]string(nil), d.Authors...)
	c.Metadata.Structure = append([]string(nil), d.Metadata.Structure...)
	return c
}

// WithSection returns a copy of d with the named section's content
// replaced and word counts recomputed. New sections are appended to the
// structure.
func (d Draft) WithSection(name, content string) Draft {
	c := d.clone()
	if _, exists := c.Sections[name]; !exists {
		c.Metadata.Structure = append(c.Metadata.Structure, name)
	}
	c.Sections[name] = Section{Content: content, WordCount: CountWords(content)}
	c.Metadata.WordCount = c.WordCount()
	return c
}

// WithAbstract returns a copy of d with a new abstract.
func (d Draft) WithAbstract(abstract string) Draft {
	c := d.clone()
	c.Abstract = abstract
	return c
}

// ReplaceCitations returns a copy of d with "[n]" placeholders in the
// abstract and sections replaced by citations of refs in style.
func (d Draft) ReplaceCitations(refs []reference.Reference, style citation.Style) Draft {
	c := d.clone()
	c.Abstract = citation.ReplacePlaceholders(c.Abstract, refs, style)
	for name, sec := range c.Sections {
		content := citation.ReplacePlaceholders(sec.Content, refs, style)
		c.Sections[name] = Section{Content: content, WordCount: CountWords(content)}
	}
	c.Metadata.WordCount = c.WordCount()
	return c
}

// Markdown renders the draft as a Markdown document.
func (d Draft) Markdown() string {
	var b strings.Builder
	if d.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", d.Title)
	}
	if len(d.Authors) > 0 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(d.Authors, ", "))
	}
	if d.Abstract != "" {
		fmt.Fprintf(&b, "## Abstract\n\n%s\n\n", strings.TrimSpace(d.Abstract))
	}
	for _, sec := range d.OrderedSections() {
		fmt.Fprintf(&b, "## %s\n\n", sec.Heading())
		if content := strings.TrimSpace(sec.Content); content != "" {
			fmt.Fprintf(&b, "%s\n\n", content)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
