package citation

import (
	"strings"

	"github.com/matsen/paperview/internal/reference"
)

// EntrySeparator separates entries in exported and copied bibliographies.
const EntrySeparator = "\n\n"

// FormatAll formats every reference in order.
func FormatAll(refs []reference.Reference, style Style) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		out[i] = Format(ref, style)
	}
	return out
}

// Join joins formatted citations with a blank line between entries.
func Join(citations []string) string {
	return strings.Join(citations, EntrySeparator)
}

// Bibliography formats refs and joins them into a single text block.
// The clipboard and the downloaded file carry exactly this text.
func Bibliography(refs []reference.Reference, style Style) string {
	return Join(FormatAll(refs, style))
}

// Filename returns the download file name for a style's bibliography.
func Filename(style Style) string {
	return "references_" + style.String() + ".txt"
}

// InText returns a parenthetical in-text citation: "(Smith, 2021)".
func InText(ref reference.Reference) string {
	first := strings.TrimSpace(ref.FirstAuthor())
	if first == "" {
		first = "Unknown"
	}
	if ref.Year == "" {
		return "(" + first + ")"
	}
	return "(" + first + ", " + ref.Year.String() + ")"
}
