// Package export writes bibliographies and drafts to files.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/matsen/paperview/internal/author"
	"github.com/matsen/paperview/internal/reference"
)

// ToBibTeX converts a reference to BibTeX format.
func ToBibTeX(ref reference.Reference) string {
	entryType := determineEntryType(ref)
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, CiteKey(ref))

	if authors := formatAuthors(ref.Authors); authors != "" {
		fmt.Fprintf(&b, "  author = {%s},\n", authors)
	}

	title := strings.TrimSpace(ref.Title)
	if title == "" {
		title = "Untitled"
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(title))

	if ref.Journal != "" {
		fieldName := "journal"
		if entryType == "inproceedings" {
			fieldName = "booktitle"
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", fieldName, escapeLatex(ref.Journal))
	}

	writeField(&b, "year", ref.Year.String())
	writeField(&b, "volume", ref.Volume)
	writeField(&b, "number", ref.Issue)
	writeField(&b, "pages", strings.ReplaceAll(ref.Pages, "-", "--"))
	writeField(&b, "doi", normalizeDOI(ref.DOI))
	writeField(&b, "url", ref.URL)

	if len(ref.Keywords) > 0 {
		fmt.Fprintf(&b, "  keywords = {%s},\n", escapeLatex(strings.Join(ref.Keywords, ", ")))
	}
	if ref.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(ref.Abstract))
	}

	b.WriteString("}\n")

	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s = {%s},\n", name, value)
}

// ToBibTeXList converts multiple references to BibTeX format.
func ToBibTeXList(refs []reference.Reference) string {
	entries := make([]string, 0, len(refs))
	for _, ref := range refs {
		entries = append(entries, ToBibTeX(ref))
	}
	return strings.Join(entries, "\n")
}

// CiteKey returns the reference ID when it is a usable key, otherwise a
// key built from the first author's family name and the year ("Smith2021").
func CiteKey(ref reference.Reference) string {
	if id := strings.TrimSpace(ref.ID); id != "" && !strings.ContainsAny(id, " ,{}") {
		return id
	}

	last := author.Parse(ref.FirstAuthor()).Last
	var b strings.Builder
	for _, r := range last {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		b.WriteString("ref")
	}
	if y, ok := ref.Year.Int(); ok {
		fmt.Fprintf(&b, "%d", y)
	}
	return b.String()
}

// determineEntryType returns the BibTeX entry type for a reference.
func determineEntryType(ref reference.Reference) string {
	journal := strings.ToLower(ref.Journal)

	if strings.Contains(journal, "proceedings") ||
		strings.Contains(journal, "conference") ||
		strings.Contains(journal, "workshop") ||
		strings.Contains(journal, "symposium") {
		return "inproceedings"
	}

	if journal == "" && ref.Source == "arxiv" {
		return "misc"
	}

	return "article"
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First"
func formatAuthors(authors []string) string {
	var formatted []string
	for _, a := range authors {
		name := author.Parse(a)
		if name.Last == "" {
			continue
		}
		formatted = append(formatted, escapeLatex(name.Sorted()))
	}
	return strings.Join(formatted, " and ")
}

var latexReplacer = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}
