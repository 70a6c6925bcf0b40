package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/matsen/paperview/internal/research"
)

// DraftFormat selects how a draft is written.
type DraftFormat string

// Supported draft formats.
const (
	DraftMarkdown DraftFormat = "md"
	DraftHTML     DraftFormat = "html"
)

// ParseDraftFormat accepts "md", "markdown" or "html".
func ParseDraftFormat(s string) (DraftFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return DraftMarkdown, nil
	case "html":
		return DraftHTML, nil
	}
	return "", fmt.Errorf("unknown draft format %q (valid: md, html)", s)
}

// DraftHTMLPage renders the draft as a standalone HTML page.
func DraftHTMLPage(d research.Draft) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(d.Markdown()))

	title := d.Title
	if title == "" {
		title = "Draft"
	}
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
		Title: title,
	})
	return markdown.Render(doc, renderer)
}

// RenderDraft returns the draft in format f.
func RenderDraft(d research.Draft, f DraftFormat) ([]byte, error) {
	switch f {
	case DraftMarkdown:
		return []byte(d.Markdown()), nil
	case DraftHTML:
		return DraftHTMLPage(d), nil
	}
	return nil, fmt.Errorf("unknown draft format %q", f)
}

// DraftFilename derives a file name from the draft title.
func DraftFilename(d research.Draft, f DraftFormat) string {
	slug := slugify(d.Title)
	if slug == "" {
		slug = "draft"
	}
	return slug + "." + string(f)
}

// WriteDraft writes the draft into dir and returns the file path.
func WriteDraft(dir string, d research.Draft, f DraftFormat) (string, error) {
	content, err := RenderDraft(d, f)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, DraftFilename(d, f))
	if err := WriteFileAtomic(path, content); err != nil {
		return "", err
	}
	return path, nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
